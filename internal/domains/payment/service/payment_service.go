package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"

	"shop-backend/internal/config"
	notificationModel "shop-backend/internal/domains/notification/model"
	orderModel "shop-backend/internal/domains/order/model"
	orderRepo "shop-backend/internal/domains/order/repository"
	"shop-backend/internal/domains/payment/gateway"
	"shop-backend/internal/domains/payment/model"
	productModel "shop-backend/internal/domains/product/model"
	"shop-backend/internal/infrastructure/events"
	"shop-backend/internal/infrastructure/queue"
	"shop-backend/internal/infrastructure/telemetry"
	"shop-backend/internal/shared"
	"shop-backend/internal/shared/apperror"
	"shop-backend/internal/shared/utils"
	"shop-backend/pkg/database"
	"shop-backend/pkg/logger"
)

// =====================================================
// PAYMENT SERVICE IMPLEMENTATION
// =====================================================
type PaymentService struct {
	orders    orderRepo.Repository
	products  ProductStore
	cart      CartClearer
	gateway   gateway.Gateway
	tx        database.TxRunner
	queue     queue.Enqueuer
	publisher events.Publisher
	metrics   *telemetry.ShopMetrics
	checkout  config.CheckoutConfig
	currency  string
	now       func() time.Time
}

func NewPaymentService(
	orders orderRepo.Repository,
	products ProductStore,
	cart CartClearer,
	gw gateway.Gateway,
	tx database.TxRunner,
	enqueuer queue.Enqueuer,
	publisher events.Publisher,
	metrics *telemetry.ShopMetrics,
	cfg config.Config,
) ServiceInterface {
	return &PaymentService{
		orders:    orders,
		products:  products,
		cart:      cart,
		gateway:   gw,
		tx:        tx,
		queue:     enqueuer,
		publisher: publisher,
		metrics:   metrics,
		checkout:  cfg.Checkout,
		currency:  cfg.Payment.Currency,
		now:       time.Now,
	}
}

// =====================================================
// CREATE PAYMENT INTENT
// =====================================================

// CreatePaymentIntent starts checkout.
//
// Flow for new items:
// 1. Validate request (empty cart and non-positive quantities fail here)
// 2. Load products, require active and in stock
// 3. Price the order server side
// 4. Persist PENDING order with items
// 5. Open the intent and store its id
//
// A gateway failure cancels the new order with payment FAILED.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, userID uuid.UUID, req model.CreatePaymentIntentRequest) (*model.PaymentIntentResponse, error) {
	// Step 1: Validate request
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.IsRetry() {
		return s.retryIntent(ctx, userID, uuid.MustParse(req.OrderID))
	}

	// Step 2-3: Load products and price the order
	order, err := s.buildOrder(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	// Step 4: Persist PENDING order
	if err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		return s.orders.CreateTx(ctx, tx, order)
	}); err != nil {
		return nil, err
	}
	s.metrics.OrderCreated(ctx)

	// Step 5: Open the payment intent
	intent, err := s.gateway.CreateIntent(ctx, gateway.CreateIntentParams{
		Amount:         orderModel.ToMinorUnits(order.Total),
		Currency:       s.currency,
		OrderID:        order.ID.String(),
		IdempotencyKey: "order-" + order.ID.String(),
	})
	if err != nil {
		s.abandonOrder(ctx, order.ID, userID, err)
		return nil, upstreamError(err)
	}

	if err := s.orders.SetPaymentIntent(ctx, order.ID, intent.ID); err != nil {
		return nil, err
	}
	order.PaymentIntentID = &intent.ID

	logger.Info("Order created", map[string]interface{}{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"total":        order.Total.StringFixed(2),
		"gateway":      s.gateway.Name(),
	})
	return s.intentResponse(order, intent), nil
}

// buildOrder prices req from current catalog data. Client totals are never read.
func (s *PaymentService) buildOrder(ctx context.Context, userID uuid.UUID, req model.CreatePaymentIntentRequest) (*orderModel.Order, error) {
	ids := make([]uuid.UUID, len(req.Items))
	for i, it := range req.Items {
		ids[i] = uuid.MustParse(it.ProductID)
	}

	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]productModel.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var unavailable []map[string]interface{}
	items := make([]orderModel.OrderItem, 0, len(req.Items))
	for i, it := range req.Items {
		p, ok := byID[ids[i]]
		switch {
		case !ok || !p.IsActive:
			unavailable = append(unavailable, map[string]interface{}{
				"productId": ids[i].String(),
				"reason":    "not available",
			})
		case p.Stock < it.Quantity:
			unavailable = append(unavailable, map[string]interface{}{
				"productId": ids[i].String(),
				"reason":    "insufficient stock",
				"available": p.Stock,
				"requested": it.Quantity,
			})
		default:
			items = append(items, orderModel.OrderItem{
				ProductID:   p.ID,
				ProductName: p.Name,
				ProductSKU:  p.SKU,
				Quantity:    it.Quantity,
				UnitPrice:   p.Price,
			})
		}
	}
	if len(unavailable) > 0 {
		return nil, orderModel.ErrProductUnavailable.WithDetails(map[string]interface{}{
			"products": unavailable,
		})
	}

	now := s.now()
	id := uuid.New()
	order := &orderModel.Order{
		ID:            id,
		OrderNumber:   utils.HumanNumber("ORD", now, id, 8),
		UserID:        userID,
		Status:        orderModel.StatusPending,
		PaymentStatus: orderModel.PaymentProcessing,
		Shipping:      *req.Shipping,
		Items:         items,
	}
	order.ApplyTotals(orderModel.CalculateTotals(order.Items, s.checkout))
	return order, nil
}

// retryIntent opens a fresh intent for a PENDING order whose earlier attempt failed.
func (s *PaymentService) retryIntent(ctx context.Context, userID, orderID uuid.UUID) (*model.PaymentIntentResponse, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, orderModel.ErrOrderNotFound
	}
	if order.Status != orderModel.StatusPending || order.IsPaid() {
		return nil, orderModel.ErrNotPayable.WithDetails(map[string]interface{}{
			"currentStatus": order.Status,
			"paymentStatus": order.PaymentStatus,
		})
	}

	intent, err := s.gateway.CreateIntent(ctx, gateway.CreateIntentParams{
		Amount:         orderModel.ToMinorUnits(order.Total),
		Currency:       s.currency,
		OrderID:        order.ID.String(),
		IdempotencyKey: fmt.Sprintf("order-%s-retry-%d", order.ID, s.now().UnixNano()),
	})
	if err != nil {
		s.metrics.PaymentFailed(ctx, "gateway_error")
		if setErr := s.orders.SetPaymentStatus(ctx, order.ID, orderModel.PaymentFailed); setErr != nil {
			logger.Error("Failed to mark payment failed", setErr)
		}
		return nil, upstreamError(err)
	}

	if err := s.orders.SetPaymentIntent(ctx, order.ID, intent.ID); err != nil {
		return nil, err
	}
	order.PaymentIntentID = &intent.ID
	order.PaymentStatus = orderModel.PaymentProcessing
	return s.intentResponse(order, intent), nil
}

// abandonOrder cancels a freshly created order whose intent could not be opened.
func (s *PaymentService) abandonOrder(ctx context.Context, orderID, userID uuid.UUID, cause error) {
	s.metrics.PaymentFailed(ctx, "gateway_error")

	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		o, err := s.orders.GetForUpdateTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if o.Status != orderModel.StatusPending {
			return nil
		}
		o.Transition(orderModel.StatusCancelled, s.now())
		o.PaymentStatus = orderModel.PaymentFailed
		return s.orders.UpdateStatusTx(ctx, tx, o, orderModel.StatusPending, &userID, "Payment provider error: "+cause.Error())
	})
	if err != nil {
		logger.ErrorWithFields("Failed to cancel order after gateway error", err, map[string]interface{}{
			"order_id": orderID.String(),
		})
	}
}

func (s *PaymentService) intentResponse(o *orderModel.Order, intent *gateway.Intent) *model.PaymentIntentResponse {
	return &model.PaymentIntentResponse{
		OrderID:         o.ID.String(),
		OrderNumber:     o.OrderNumber,
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		Amount:          intent.Amount,
		Currency:        s.currency,
		Totals:          o.Totals(),
	}
}

// =====================================================
// CONFIRM PAYMENT
// =====================================================

// ConfirmPayment finalizes an order after the processor captured payment.
//
// On success one transaction locks the order, re-checks totals, decrements
// stock, marks it CONFIRMED and clears the cart. A stock conflict rolls the
// transaction back, refunds the intent and cancels the order.
func (s *PaymentService) ConfirmPayment(ctx context.Context, userID uuid.UUID, req model.ConfirmPaymentRequest) (*model.ConfirmPaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 1: Load the caller's order
	order, err := s.loadForConfirm(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	if order.Status == orderModel.StatusConfirmed {
		return &model.ConfirmPaymentResponse{Completed: true, Status: string(gateway.IntentSucceeded), Order: order}, nil
	}
	if order.PaymentIntentID == nil {
		return nil, orderModel.ErrNotPayable.WithMessage("Order has no payment in progress")
	}

	// Step 2: Ask the processor
	intent, err := s.gateway.GetIntent(ctx, *order.PaymentIntentID)
	if err != nil {
		return nil, upstreamError(err)
	}

	switch {
	case intent.Status == gateway.IntentSucceeded:
		return s.finalize(ctx, userID, order.ID, intent)

	case intent.Status.IsFailed():
		s.metrics.PaymentFailed(ctx, string(intent.Status))
		if order.Status == orderModel.StatusPending {
			if err := s.orders.SetPaymentStatus(ctx, order.ID, orderModel.PaymentFailed); err != nil {
				return nil, err
			}
		}
		return nil, model.ErrPaymentFailed.WithDetails(map[string]interface{}{
			"orderId": order.ID.String(),
			"status":  intent.Status,
		})

	default:
		return &model.ConfirmPaymentResponse{Completed: false, Status: string(intent.Status), Order: order}, nil
	}
}

func (s *PaymentService) loadForConfirm(ctx context.Context, userID uuid.UUID, req model.ConfirmPaymentRequest) (*orderModel.Order, error) {
	var (
		order *orderModel.Order
		err   error
	)
	if req.OrderID != "" {
		order, err = s.orders.GetByID(ctx, uuid.MustParse(req.OrderID))
	} else {
		order, err = s.orders.GetByPaymentIntent(ctx, req.PaymentIntentID)
	}
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, orderModel.ErrOrderNotFound
	}
	if req.OrderID != "" && req.PaymentIntentID != "" &&
		(order.PaymentIntentID == nil || *order.PaymentIntentID != req.PaymentIntentID) {
		return nil, model.ErrIntentMismatch
	}
	return order, nil
}

// finalize runs the confirmation transaction and the post-commit side effects.
func (s *PaymentService) finalize(ctx context.Context, userID, orderID uuid.UUID, intent *gateway.Intent) (*model.ConfirmPaymentResponse, error) {
	var (
		order            *orderModel.Order
		alreadyConfirmed bool
	)
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		o, err := s.orders.GetForUpdateTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		order = o

		switch {
		case o.Status == orderModel.StatusConfirmed:
			alreadyConfirmed = true
			return nil
		case o.Status != orderModel.StatusPending:
			return orderModel.ErrNotPayable.WithDetails(map[string]interface{}{
				"currentStatus": o.Status,
				"paymentStatus": o.PaymentStatus,
			})
		}

		items := append([]orderModel.OrderItem(nil), o.Items...)
		totals := orderModel.CalculateTotals(items, s.checkout)
		if !totals.Equal(o.Totals()) || intent.Amount != orderModel.ToMinorUnits(o.Total) {
			return orderModel.ErrTotalMismatch.WithDetails(map[string]interface{}{
				"orderTotal":   o.Total.StringFixed(2),
				"recomputed":   totals.Total.StringFixed(2),
				"intentAmount": intent.Amount,
			})
		}

		if err := s.products.DecrementStockTx(ctx, tx, stockLines(o)); err != nil {
			return err
		}

		o.Transition(orderModel.StatusConfirmed, s.now())
		if err := s.orders.UpdateStatusTx(ctx, tx, o, orderModel.StatusPending, &userID, "Payment confirmed"); err != nil {
			return err
		}
		return s.cart.ClearTx(ctx, tx, o.UserID)
	})

	switch {
	case err == nil:
	case needsCompensation(err):
		return nil, s.compensate(ctx, userID, orderID, intent, err)
	case errors.Is(err, orderModel.ErrNotPayable) && order != nil && order.Status == orderModel.StatusCancelled:
		// Captured after the order was cancelled.
		return nil, s.refundLateCapture(ctx, order, intent)
	default:
		return nil, err
	}

	if alreadyConfirmed {
		return &model.ConfirmPaymentResponse{Completed: true, Status: string(intent.Status), Order: order}, nil
	}

	// Step 3: Best-effort side effects, the order stays confirmed regardless
	s.enqueueConfirmationEmail(ctx, order)
	events.PublishBestEffort(ctx, s.publisher, order.ID.String(),
		events.NewEvent(events.TypeOrderConfirmed, orderModel.NewEventData(order)))
	s.metrics.OrderConfirmed(ctx, s.gateway.Name())

	logger.Info("Order confirmed", map[string]interface{}{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"intent_id":    intent.ID,
	})
	return &model.ConfirmPaymentResponse{Completed: true, Status: string(intent.Status), Order: order}, nil
}

func needsCompensation(err error) bool {
	return errors.Is(err, productModel.ErrInsufficientStock) || errors.Is(err, orderModel.ErrTotalMismatch)
}

// compensate refunds a captured intent whose order could not be fulfilled
// and cancels the order. The original conflict is returned to the caller.
func (s *PaymentService) compensate(ctx context.Context, userID, orderID uuid.UUID, intent *gateway.Intent, cause error) error {
	refunded := true
	if _, err := s.gateway.Refund(ctx, intent.ID, intent.Amount); err != nil {
		refunded = false
		logger.ErrorWithFields("Refund during compensation failed", err, map[string]interface{}{
			"order_id":  orderID.String(),
			"intent_id": intent.ID,
		})
	}
	s.metrics.PaymentCompensated(ctx, refunded)

	var cancelled *orderModel.Order
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		o, err := s.orders.GetForUpdateTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if o.Status != orderModel.StatusPending {
			return nil
		}
		o.Transition(orderModel.StatusCancelled, s.now())
		o.PaymentStatus = orderModel.PaymentFailed
		if refunded {
			o.PaymentStatus = orderModel.PaymentRefunded
		}
		if err := s.orders.UpdateStatusTx(ctx, tx, o, orderModel.StatusPending, &userID, "Cancelled at confirmation: "+conflictReason(cause)); err != nil {
			return err
		}
		cancelled = o
		return nil
	})
	if err != nil {
		logger.ErrorWithFields("Failed to cancel order during compensation", err, map[string]interface{}{
			"order_id": orderID.String(),
		})
	}
	if cancelled != nil {
		events.PublishBestEffort(ctx, s.publisher, cancelled.ID.String(),
			events.NewEvent(events.TypeOrderCancelled, orderModel.NewEventData(cancelled)))
	}

	details := map[string]interface{}{
		"orderId":  orderID.String(),
		"refunded": refunded,
	}
	base := orderModel.ErrProductUnavailable
	if appErr, ok := apperror.As(cause); ok {
		for k, v := range appErr.Details {
			details[k] = v
		}
		if errors.Is(cause, orderModel.ErrTotalMismatch) {
			base = orderModel.ErrTotalMismatch
		}
	}
	return base.WithDetails(details).Wrap(cause)
}

// refundLateCapture returns money captured for an order that was already cancelled.
func (s *PaymentService) refundLateCapture(ctx context.Context, o *orderModel.Order, intent *gateway.Intent) error {
	if o.PaymentStatus == orderModel.PaymentRefunded {
		return model.ErrAlreadyRefunded
	}
	if _, err := s.gateway.Refund(ctx, intent.ID, intent.Amount); err != nil {
		logger.ErrorWithFields("Refund of late capture failed", err, map[string]interface{}{
			"order_id":  o.ID.String(),
			"intent_id": intent.ID,
		})
		return orderModel.ErrNotPayable.WithDetails(map[string]interface{}{
			"currentStatus": o.Status,
			"refunded":      false,
		})
	}
	s.metrics.PaymentCompensated(ctx, true)
	if err := s.orders.SetPaymentStatus(ctx, o.ID, orderModel.PaymentRefunded); err != nil {
		logger.Error("Failed to mark late capture refunded", err)
	}
	return model.ErrAlreadyRefunded
}

func (s *PaymentService) enqueueConfirmationEmail(ctx context.Context, o *orderModel.Order) {
	lines := make([]notificationModel.EmailLine, len(o.Items))
	for i, it := range o.Items {
		lines[i] = notificationModel.EmailLine{
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
			Subtotal:  it.Subtotal.StringFixed(2),
		}
	}
	payload := notificationModel.OrderConfirmationPayload{
		OrderID:     o.ID.String(),
		OrderNumber: o.OrderNumber,
		Email:       o.Shipping.Email,
		FullName:    o.Shipping.FullName,
		Subtotal:    o.Subtotal.StringFixed(2),
		Tax:         o.Tax.StringFixed(2),
		ShippingFee: o.ShippingFee.StringFixed(2),
		Total:       o.Total.StringFixed(2),
		Currency:    s.currency,
		Items:       lines,
	}

	task, err := utils.NewTask(shared.TypeSendOrderConfirmation, payload,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(3),
		asynq.TaskID("order-confirmation-"+o.ID.String()),
	)
	if err == nil {
		_, err = s.queue.EnqueueContext(context.WithoutCancel(ctx), task)
	}
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		logger.ErrorWithFields("Failed to enqueue order confirmation email", err, map[string]interface{}{
			"order_id": o.ID.String(),
		})
	}
}

// =====================================================
// HELPERS
// =====================================================

func stockLines(o *orderModel.Order) []productModel.StockLine {
	lines := make([]productModel.StockLine, len(o.Items))
	for i, it := range o.Items {
		lines[i] = productModel.StockLine{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return lines
}

func upstreamError(err error) error {
	if _, ok := apperror.As(err); ok {
		return err
	}
	return gateway.ErrGatewayUnavailable.Wrap(err)
}

func conflictReason(err error) string {
	if appErr, ok := apperror.As(err); ok {
		return appErr.Message
	}
	return err.Error()
}
