package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shop-backend/internal/domains/order/model"
)

type Repository interface {
	// CreateTx inserts the order, its items and the initial history row.
	CreateTx(ctx context.Context, tx pgx.Tx, o *model.Order) error
	// SetPaymentIntent records a new payment attempt and marks payment PROCESSING.
	SetPaymentIntent(ctx context.Context, id uuid.UUID, intentID string) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	GetByPaymentIntent(ctx context.Context, intentID string) (*model.Order, error)
	// GetForUpdateTx locks the order row until the transaction ends.
	GetForUpdateTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// UpdateStatusTx persists status fields when the row is still in from.
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, o *model.Order, from model.Status, changedBy *uuid.UUID, notes string) error
	// SetPaymentStatus changes only the payment status.
	SetPaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error

	List(ctx context.Context, filter model.ListOrdersFilter) ([]model.Order, int64, error)
	History(ctx context.Context, orderID uuid.UUID) ([]model.StatusHistory, error)
	ListStalePending(ctx context.Context, createdBefore time.Time, limit int) ([]uuid.UUID, error)
}
