package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	auditModel "shop-backend/internal/domains/audit/model"
	auditService "shop-backend/internal/domains/audit/service"
	"shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/order/repository"
	"shop-backend/internal/domains/payment/gateway"
	productModel "shop-backend/internal/domains/product/model"
	"shop-backend/internal/infrastructure/events"
	"shop-backend/internal/shared"
	"shop-backend/internal/shared/query"
	"shop-backend/pkg/database"
	"shop-backend/pkg/logger"
)

const expireBatchSize = 100

type OrderService struct {
	repo      repository.Repository
	stock     StockRestorer
	payments  Payments
	tx        database.TxRunner
	audit     auditService.Recorder
	publisher events.Publisher
	now       func() time.Time
}

func NewOrderService(
	repo repository.Repository,
	stock StockRestorer,
	payments Payments,
	tx database.TxRunner,
	audit auditService.Recorder,
	publisher events.Publisher,
) ServiceInterface {
	return &OrderService{
		repo:      repo,
		stock:     stock,
		payments:  payments,
		tx:        tx,
		audit:     audit,
		publisher: publisher,
		now:       time.Now,
	}
}

// =====================================================
// CUSTOMER
// =====================================================

func (s *OrderService) ListMyOrders(ctx context.Context, userID uuid.UUID, filter model.ListOrdersFilter) (*model.ListOrdersResponse, error) {
	filter.UserID = &userID
	return s.list(ctx, filter)
}

// GetMyOrder hides orders owned by someone else behind NotFound.
func (s *OrderService) GetMyOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, model.ErrOrderNotFound
	}
	return o, nil
}

// CancelMyOrder cancels an unpaid pending order of the caller.
func (s *OrderService) CancelMyOrder(ctx context.Context, actor shared.Actor, orderID uuid.UUID, req model.CancelOrderRequest) (*model.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(actor.ID)
	if err != nil {
		return nil, model.ErrOrderNotFound
	}

	var order *model.Order
	err = s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		o, err := s.repo.GetForUpdateTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if o.UserID != userID {
			return model.ErrOrderNotFound
		}
		if o.Status != model.StatusPending || o.IsPaid() {
			return model.ErrNotCancellable.WithDetails(map[string]interface{}{
				"currentStatus": o.Status,
			})
		}

		o.Transition(model.StatusCancelled, s.now())
		o.PaymentStatus = model.PaymentFailed

		notes := "Cancelled by customer"
		if req.Reason != "" {
			notes += ": " + req.Reason
		}
		if err := s.repo.UpdateStatusTx(ctx, tx, o, model.StatusPending, &userID, notes); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, auditModel.NewEntry(actor, auditModel.ActionOrderStatusChanged, auditModel.ResourceOrder,
		order.ID.String(),
		map[string]interface{}{"status": model.StatusPending},
		map[string]interface{}{"status": order.Status, "reason": req.Reason}))
	events.PublishBestEffort(ctx, s.publisher, order.ID.String(),
		events.NewEvent(events.TypeOrderCancelled, model.NewEventData(order)))
	return order, nil
}

// =====================================================
// ADMIN
// =====================================================

func (s *OrderService) AdminListOrders(ctx context.Context, filter model.ListOrdersFilter) (*model.ListOrdersResponse, error) {
	filter.UserID = nil
	return s.list(ctx, filter)
}

func (s *OrderService) AdminGetOrder(ctx context.Context, orderID uuid.UUID) (*model.OrderDetailResponse, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.History(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &model.OrderDetailResponse{Order: o, History: history}, nil
}

// UpdateStatus applies a fulfilment transition. Cancelling a paid order
// restocks it in the same transaction and refunds after commit.
func (s *OrderService) UpdateStatus(ctx context.Context, actor shared.Actor, orderID uuid.UUID, req model.UpdateStatusRequest) (*model.Order, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		order  *model.Order
		before model.Status
		refund bool
	)
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		o, err := s.repo.GetForUpdateTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !o.Status.CanTransitionTo(req.Status) {
			return model.ErrInvalidTransition.WithDetails(map[string]interface{}{
				"currentStatus":      o.Status,
				"allowedTransitions": o.Status.AllowedTransitions(),
			})
		}

		before = o.Status
		wasPaid := o.IsPaid()
		o.Transition(req.Status, s.now())

		if req.Status == model.StatusCancelled {
			if wasPaid {
				if err := s.stock.RestockTx(ctx, tx, stockLines(o)); err != nil {
					return err
				}
				refund = o.PaymentIntentID != nil
			} else {
				o.PaymentStatus = model.PaymentFailed
			}
		}

		if err := s.repo.UpdateStatusTx(ctx, tx, o, before, actorID(actor), req.Notes); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if refund {
		s.refundCancelled(ctx, order, model.ToMinorUnits(order.Total))
	}

	s.audit.Record(ctx, auditModel.NewEntry(actor, auditModel.ActionOrderStatusChanged, auditModel.ResourceOrder,
		order.ID.String(),
		map[string]interface{}{"status": before},
		map[string]interface{}{"status": order.Status, "paymentStatus": order.PaymentStatus, "notes": req.Notes}))

	if order.Status == model.StatusCancelled {
		events.PublishBestEffort(ctx, s.publisher, order.ID.String(),
			events.NewEvent(events.TypeOrderCancelled, model.NewEventData(order)))
	}
	return order, nil
}

// refundCancelled is best effort: a failed refund leaves payment COMPLETED for manual follow-up.
func (s *OrderService) refundCancelled(ctx context.Context, o *model.Order, amount int64) {
	if _, err := s.payments.Refund(ctx, *o.PaymentIntentID, amount); err != nil {
		logger.ErrorWithFields("Refund after cancellation failed", err, map[string]interface{}{
			"order_id": o.ID.String(),
		})
		return
	}
	if err := s.repo.SetPaymentStatus(ctx, o.ID, model.PaymentRefunded); err != nil {
		logger.ErrorWithFields("Failed to mark order refunded", err, map[string]interface{}{
			"order_id": o.ID.String(),
		})
		return
	}
	o.PaymentStatus = model.PaymentRefunded
}

// =====================================================
// WORKER
// =====================================================

// ExpirePendingOrders cancels unpaid orders older than olderThan.
// Orders holding an intent are checked with the processor first: an intent
// still processing is left for a later run, and a captured one is cancelled
// as paid and refunded.
func (s *OrderService) ExpirePendingOrders(ctx context.Context, olderThan time.Duration) (int, error) {
	ids, err := s.repo.ListStalePending(ctx, s.now().Add(-olderThan), expireBatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		ok, err := s.expireOne(ctx, id)
		if err != nil {
			logger.ErrorWithFields("Failed to expire pending order", err, map[string]interface{}{
				"order_id": id.String(),
			})
			continue
		}
		if ok {
			expired++
		}
	}
	return expired, nil
}

func (s *OrderService) expireOne(ctx context.Context, id uuid.UUID) (bool, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if current.Status != model.StatusPending || current.IsPaid() {
		return false, nil
	}

	var captured *gateway.Intent
	if current.PaymentIntentID != nil {
		intent, err := s.payments.GetIntent(ctx, *current.PaymentIntentID)
		if err != nil {
			return false, err
		}
		switch intent.Status {
		case gateway.IntentProcessing:
			logger.Info("Skipping expiry, payment still processing", map[string]interface{}{
				"order_id":  id.String(),
				"intent_id": intent.ID,
			})
			return false, nil
		case gateway.IntentSucceeded:
			captured = intent
		}
	}

	var order *model.Order
	err = s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		o, err := s.repo.GetForUpdateTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if o.Status != model.StatusPending || o.IsPaid() {
			return nil
		}
		now := s.now()
		o.Transition(model.StatusCancelled, now)
		notes := "Payment window expired"
		o.PaymentStatus = model.PaymentFailed
		if captured != nil {
			o.PaymentStatus = model.PaymentCompleted
			o.PaidAt = &now
			notes = "Payment window expired after capture"
		}
		if err := s.repo.UpdateStatusTx(ctx, tx, o, model.StatusPending, nil, notes); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil || order == nil {
		return false, err
	}

	if captured != nil {
		s.refundCancelled(ctx, order, captured.Amount)
	}
	events.PublishBestEffort(ctx, s.publisher, order.ID.String(),
		events.NewEvent(events.TypeOrderCancelled, model.NewEventData(order)))
	return true, nil
}

// =====================================================
// HELPERS
// =====================================================

func (s *OrderService) list(ctx context.Context, filter model.ListOrdersFilter) (*model.ListOrdersResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &model.ListOrdersResponse{
		Orders:     orders,
		Pagination: query.NewPagination(filter.Page, total),
	}, nil
}

func stockLines(o *model.Order) []productModel.StockLine {
	lines := make([]productModel.StockLine, len(o.Items))
	for i, it := range o.Items {
		lines[i] = productModel.StockLine{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return lines
}

func actorID(actor shared.Actor) *uuid.UUID {
	id, err := uuid.Parse(actor.ID)
	if err != nil {
		return nil
	}
	return &id
}
