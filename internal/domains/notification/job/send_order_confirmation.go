package job

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hibiken/asynq"

	"shop-backend/internal/domains/notification/model"
	"shop-backend/internal/domains/notification/service"
	"shop-backend/internal/shared/utils"
	"shop-backend/pkg/logger"
)

// ================================================
// ORDER CONFIRMATION EMAIL JOB HANDLER
// ================================================

type SendOrderConfirmationHandler struct {
	mailer service.OrderMailer
}

func NewSendOrderConfirmationHandler(mailer service.OrderMailer) *SendOrderConfirmationHandler {
	return &SendOrderConfirmationHandler{mailer: mailer}
}

func (h *SendOrderConfirmationHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p model.OrderConfirmationPayload
	if err := utils.UnmarshalTask(t, &p); err != nil {
		return err
	}

	if err := h.mailer.SendOrderConfirmation(ctx, p); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("send order confirmation: %w", err)
	}

	logger.Info("Order confirmation email sent", map[string]interface{}{
		"order_id":     p.OrderID,
		"order_number": p.OrderNumber,
	})
	return nil
}
