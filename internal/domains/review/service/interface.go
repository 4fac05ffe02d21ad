package service

import (
	"context"

	"github.com/google/uuid"

	"shop-backend/internal/domains/review/model"
	"shop-backend/internal/shared"
)

type ServiceInterface interface {
	Create(ctx context.Context, actor shared.Actor, productID uuid.UUID, req model.CreateReviewRequest) (*model.Review, error)
	ListForProduct(ctx context.Context, productID uuid.UUID, filter model.ListReviewsFilter) (*model.ListReviewsResponse, error)

	AdminList(ctx context.Context, filter model.ListReviewsFilter) (*model.ListReviewsResponse, error)
	BulkSetVisibility(ctx context.Context, actor shared.Actor, req model.BulkVisibilityRequest) (*model.BulkUpdateResponse, error)
}
