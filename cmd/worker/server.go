package main

import (
	"context"

	"github.com/hibiken/asynq"

	"shop-backend/internal/infrastructure/queue"
	"shop-backend/internal/shared"
	"shop-backend/pkg/container"
	"shop-backend/pkg/logger"
)

func newServer(c *container.Container) *asynq.Server {
	return asynq.NewServer(
		queue.RedisOpt(c.Config.Redis),
		asynq.Config{
			Queues: map[string]int{
				shared.QueueCritical: 6,
				shared.QueueDefault:  3,
				shared.QueueLow:      1,
			},
			Concurrency: c.Config.Queue.Concurrency,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logger.ErrorWithFields("[WORKER] task failed", err, map[string]interface{}{
					"type":      task.Type(),
					"retry":     retried,
					"max_retry": maxRetry,
				})
			}),
		},
	)
}

func newMux(w *container.Workers) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(shared.TypeWriteAuditLog, w.WriteAuditLog.ProcessTask)
	mux.HandleFunc(shared.TypeSendOrderConfirmation, w.SendOrderConfirmation.ProcessTask)
	mux.HandleFunc(shared.TypeExpirePendingOrders, w.ExpirePendingOrders.ProcessTask)
	return mux
}

func newScheduler(c *container.Container) (*queue.Scheduler, error) {
	scheduler := queue.NewScheduler(c.Config.Redis)
	if err := scheduler.RegisterJobs(); err != nil {
		return nil, err
	}
	return scheduler, nil
}
