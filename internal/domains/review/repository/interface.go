package repository

import (
	"context"

	"github.com/google/uuid"

	"shop-backend/internal/domains/review/model"
)

type Repository interface {
	// Create inserts r. A second review of the same product by the same user is ErrAlreadyReviewed.
	Create(ctx context.Context, r *model.Review) error
	ProductExists(ctx context.Context, productID uuid.UUID) (bool, error)
	// HasVerifiedPurchase reports whether the user has a confirmed or delivered order containing the product.
	HasVerifiedPurchase(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	List(ctx context.Context, filter model.ListReviewsFilter) ([]model.Review, int64, error)
	SetVisibility(ctx context.Context, ids []uuid.UUID, visible bool) (int64, error)
}
