package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"shop-backend/internal/domains/product/model"
	"shop-backend/internal/shared/query"
)

// =====================================================
// PRODUCT REPOSITORY INTERFACE
// =====================================================
type ProductRepository interface {
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p *model.Product) error
	BulkUpdate(ctx context.Context, ids []uuid.UUID, upd *query.Update) (int64, error)

	// Stock mutations run inside the caller's transaction.
	DecrementStockTx(ctx context.Context, tx pgx.Tx, lines []model.StockLine) error
	RestockTx(ctx context.Context, tx pgx.Tx, lines []model.StockLine) error

	ListCategories(ctx context.Context, activeOnly bool) ([]model.Category, error)
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// =====================================================
// IMAGE REPOSITORY INTERFACE
// =====================================================
type ImageRepository interface {
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductImage, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.ProductImage, error)
	Add(ctx context.Context, img *model.ProductImage) error
	Reorder(ctx context.Context, productID uuid.UUID, imageIDs []uuid.UUID) error
	SetPrimary(ctx context.Context, imageID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	BulkUpdate(ctx context.Context, ids []uuid.UUID, upd *query.Update) (int64, error)
}
