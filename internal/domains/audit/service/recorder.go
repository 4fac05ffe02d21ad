package service

import (
	"context"

	"github.com/hibiken/asynq"

	"shop-backend/internal/domains/audit/model"
	"shop-backend/internal/infrastructure/queue"
	"shop-backend/internal/shared"
	"shop-backend/internal/shared/utils"
	"shop-backend/pkg/logger"
)

// Recorder hands audit entries to the background writer.
// Recording never fails the caller.
type Recorder interface {
	Record(ctx context.Context, e model.Entry)
}

type queueRecorder struct {
	queue queue.Enqueuer
}

func NewRecorder(q queue.Enqueuer) Recorder {
	return &queueRecorder{queue: q}
}

func (r *queueRecorder) Record(ctx context.Context, e model.Entry) {
	task, err := utils.NewTask(shared.TypeWriteAuditLog, e,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(5),
	)
	if err != nil {
		logger.Error("Failed to build audit task", err)
		return
	}

	if _, err := r.queue.EnqueueContext(ctx, task); err != nil {
		logger.ErrorWithFields("Failed to enqueue audit log", err, map[string]interface{}{
			"action":        e.Action,
			"resource_type": e.ResourceType,
			"resource_id":   e.ResourceID,
		})
	}
}

// RecordAll emits one entry per resource id with shared values.
func RecordAll(ctx context.Context, r Recorder, actor shared.Actor, action, resourceType string, ids []string, newValues map[string]interface{}) {
	for _, id := range ids {
		r.Record(ctx, model.NewEntry(actor, action, resourceType, id, nil, newValues))
	}
}
