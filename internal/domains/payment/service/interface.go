package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shop-backend/internal/domains/payment/model"
	productModel "shop-backend/internal/domains/product/model"
)

type ServiceInterface interface {
	// CreatePaymentIntent persists a PENDING order (or reuses one on retry)
	// and opens a payment intent for its total.
	CreatePaymentIntent(ctx context.Context, userID uuid.UUID, req model.CreatePaymentIntentRequest) (*model.PaymentIntentResponse, error)
	// ConfirmPayment finalizes the order once the processor reports success.
	ConfirmPayment(ctx context.Context, userID uuid.UUID, req model.ConfirmPaymentRequest) (*model.ConfirmPaymentResponse, error)
}

// ProductStore is the slice of the catalog checkout needs.
type ProductStore interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]productModel.Product, error)
	DecrementStockTx(ctx context.Context, tx pgx.Tx, lines []productModel.StockLine) error
}

type CartClearer interface {
	ClearTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error
}
