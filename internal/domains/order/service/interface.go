package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/payment/gateway"
	productModel "shop-backend/internal/domains/product/model"
	"shop-backend/internal/shared"
)

type ServiceInterface interface {
	// Customer
	ListMyOrders(ctx context.Context, userID uuid.UUID, filter model.ListOrdersFilter) (*model.ListOrdersResponse, error)
	GetMyOrder(ctx context.Context, userID, orderID uuid.UUID) (*model.Order, error)
	CancelMyOrder(ctx context.Context, actor shared.Actor, orderID uuid.UUID, req model.CancelOrderRequest) (*model.Order, error)

	// Admin
	AdminListOrders(ctx context.Context, filter model.ListOrdersFilter) (*model.ListOrdersResponse, error)
	AdminGetOrder(ctx context.Context, orderID uuid.UUID) (*model.OrderDetailResponse, error)
	UpdateStatus(ctx context.Context, actor shared.Actor, orderID uuid.UUID, req model.UpdateStatusRequest) (*model.Order, error)

	// Worker
	ExpirePendingOrders(ctx context.Context, olderThan time.Duration) (int, error)
}

// StockRestorer puts cancelled quantities back on the shelf.
type StockRestorer interface {
	RestockTx(ctx context.Context, tx pgx.Tx, lines []productModel.StockLine) error
}

// Payments is the slice of the processor the order flows need:
// looking up an intent and returning captured money.
type Payments interface {
	GetIntent(ctx context.Context, intentID string) (*gateway.Intent, error)
	Refund(ctx context.Context, intentID string, amount int64) (*gateway.Refund, error)
}
