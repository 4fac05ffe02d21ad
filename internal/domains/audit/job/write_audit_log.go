package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"shop-backend/internal/domains/audit/model"
	"shop-backend/internal/domains/audit/repository"
	"shop-backend/internal/shared/utils"
	"shop-backend/pkg/logger"
)

type WriteAuditLogHandler struct {
	repo repository.Repository
}

func NewWriteAuditLogHandler(repo repository.Repository) *WriteAuditLogHandler {
	return &WriteAuditLogHandler{repo: repo}
}

func (h *WriteAuditLogHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var entry model.Entry
	if err := utils.UnmarshalTask(t, &entry); err != nil {
		return err
	}

	if err := h.repo.Insert(ctx, &entry); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}

	logger.Debug("Audit log written: " + entry.Action + " " + entry.ResourceID)
	return nil
}
