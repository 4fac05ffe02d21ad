package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	auditModel "shop-backend/internal/domains/audit/model"
	auditService "shop-backend/internal/domains/audit/service"
	"shop-backend/internal/domains/product/model"
	"shop-backend/internal/shared"
	"shop-backend/internal/shared/apperror"
	"shop-backend/internal/shared/query"
	"shop-backend/internal/shared/utils"
)

func (s *ProductService) ListImages(ctx context.Context, productID uuid.UUID) ([]model.ProductImage, error) {
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.images.ListByProduct(ctx, productID)
}

func (s *ProductService) AddImage(ctx context.Context, actor shared.Actor, productID uuid.UUID, req model.AddImageRequest) (*model.ProductImage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	img := &model.ProductImage{
		ProductID: productID,
		URL:       strings.TrimSpace(req.URL),
		AltText:   req.AltText,
		IsPrimary: req.IsPrimary,
	}
	if err := s.images.Add(ctx, img); err != nil {
		return nil, err
	}
	return img, nil
}

func (s *ProductService) ReorderImages(ctx context.Context, productID uuid.UUID, req model.ReorderImagesRequest) ([]model.ProductImage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ids, err := utils.ParseUUIDs(req.ImageIDs)
	if err != nil {
		return nil, apperror.ErrValidation.Wrap(err)
	}
	if err := s.images.Reorder(ctx, productID, ids); err != nil {
		return nil, err
	}
	return s.images.ListByProduct(ctx, productID)
}

func (s *ProductService) DeleteImage(ctx context.Context, id uuid.UUID) error {
	return s.images.Delete(ctx, id)
}

// BulkUpdateImages sets alt text on every image. Only one image can be made
// primary per request since a product has a single primary image.
func (s *ProductService) BulkUpdateImages(ctx context.Context, actor shared.Actor, req model.BulkUpdateImagesRequest) (*model.BulkUpdateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.IsPrimary != nil && *req.IsPrimary && len(req.IDs) != 1 {
		return nil, apperror.Validation(map[string]interface{}{
			"isPrimary": "can only be set on a single image",
		})
	}
	ids, err := utils.ParseUUIDs(req.IDs)
	if err != nil {
		return nil, apperror.ErrValidation.Wrap(err)
	}

	changes := map[string]interface{}{}
	var updated int64

	if req.IsPrimary != nil && *req.IsPrimary {
		if err := s.images.SetPrimary(ctx, ids[0]); err != nil {
			return nil, err
		}
		changes["isPrimary"] = true
		updated = 1
	}

	var upd query.Update
	if req.AltText != nil {
		upd.Set("alt_text", *req.AltText)
		changes["altText"] = *req.AltText
	}
	if req.IsPrimary != nil && !*req.IsPrimary {
		upd.Set("is_primary", false)
		changes["isPrimary"] = false
	}
	if !upd.Empty() {
		if updated, err = s.images.BulkUpdate(ctx, ids, &upd); err != nil {
			return nil, err
		}
	}

	auditService.RecordAll(ctx, s.audit, actor, auditModel.ActionImageBulkUpdated,
		auditModel.ResourceProductImage, req.IDs, changes)
	return &model.BulkUpdateResponse{Updated: updated}, nil
}
