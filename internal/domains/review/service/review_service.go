package service

import (
	"context"

	"github.com/google/uuid"

	auditModel "shop-backend/internal/domains/audit/model"
	auditService "shop-backend/internal/domains/audit/service"
	"shop-backend/internal/domains/review/model"
	"shop-backend/internal/domains/review/repository"
	"shop-backend/internal/shared"
	"shop-backend/internal/shared/apperror"
	"shop-backend/internal/shared/query"
	"shop-backend/internal/shared/utils"
)

type ReviewService struct {
	repo  repository.Repository
	audit auditService.Recorder
}

func NewReviewService(repo repository.Repository, audit auditService.Recorder) ServiceInterface {
	return &ReviewService{repo: repo, audit: audit}
}

// Create stores a visible review. The verified flag is derived from the
// caller's order history, never taken from the request.
func (s *ReviewService) Create(ctx context.Context, actor shared.Actor, productID uuid.UUID, req model.CreateReviewRequest) (*model.Review, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(actor.ID)
	if err != nil {
		return nil, apperror.ErrUnauthenticated
	}

	exists, err := s.repo.ProductExists(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrProductNotFound
	}

	verified, err := s.repo.HasVerifiedPurchase(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	review := &model.Review{
		ID:                 uuid.New(),
		ProductID:          productID,
		UserID:             userID,
		Rating:             req.Rating,
		Title:              req.Title,
		Content:            req.Content,
		IsVisible:          true,
		IsVerifiedPurchase: verified,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// ListForProduct returns only visible reviews.
func (s *ReviewService) ListForProduct(ctx context.Context, productID uuid.UUID, filter model.ListReviewsFilter) (*model.ListReviewsResponse, error) {
	visible := true
	filter.ProductID = &productID
	filter.IsVisible = &visible
	filter.UserID = nil
	return s.list(ctx, filter)
}

func (s *ReviewService) AdminList(ctx context.Context, filter model.ListReviewsFilter) (*model.ListReviewsResponse, error) {
	return s.list(ctx, filter)
}

func (s *ReviewService) BulkSetVisibility(ctx context.Context, actor shared.Actor, req model.BulkVisibilityRequest) (*model.BulkUpdateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ids, err := utils.ParseUUIDs(req.IDs)
	if err != nil {
		return nil, apperror.ErrValidation.Wrap(err)
	}

	n, err := s.repo.SetVisibility(ctx, ids, *req.IsVisible)
	if err != nil {
		return nil, err
	}

	auditService.RecordAll(ctx, s.audit, actor, auditModel.ActionReviewBulkUpdated, auditModel.ResourceReview,
		req.IDs, map[string]interface{}{"isVisible": *req.IsVisible})
	return &model.BulkUpdateResponse{Updated: n}, nil
}

func (s *ReviewService) list(ctx context.Context, filter model.ListReviewsFilter) (*model.ListReviewsResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	reviews, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &model.ListReviewsResponse{
		Reviews:    reviews,
		Pagination: query.NewPagination(filter.Page, total),
	}, nil
}
