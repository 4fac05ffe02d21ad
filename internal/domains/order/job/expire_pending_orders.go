package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"shop-backend/internal/domains/order/service"
	"shop-backend/pkg/logger"
)

// ================================================
// EXPIRE PENDING ORDERS JOB HANDLER
// ================================================

type ExpirePendingOrdersHandler struct {
	orderService service.ServiceInterface
	ttl          time.Duration
}

func NewExpirePendingOrdersHandler(orderService service.ServiceInterface, ttl time.Duration) *ExpirePendingOrdersHandler {
	return &ExpirePendingOrdersHandler{orderService: orderService, ttl: ttl}
}

func (h *ExpirePendingOrdersHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	expired, err := h.orderService.ExpirePendingOrders(ctx, h.ttl)
	if err != nil {
		return fmt.Errorf("expire pending orders: %w", err)
	}
	if expired > 0 {
		logger.Info("Expired pending orders", map[string]interface{}{
			"expired_count": expired,
			"ttl":           h.ttl.String(),
		})
	}
	return nil
}
