package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	auditModel "shop-backend/internal/domains/audit/model"
	auditService "shop-backend/internal/domains/audit/service"
	"shop-backend/internal/domains/product/model"
	"shop-backend/internal/domains/product/repository"
	"shop-backend/internal/shared"
	"shop-backend/internal/shared/apperror"
	"shop-backend/internal/shared/query"
	"shop-backend/internal/shared/utils"
)

type ProductService struct {
	repo   repository.ProductRepository
	images repository.ImageRepository
	audit  auditService.Recorder
}

func NewProductService(
	repo repository.ProductRepository,
	images repository.ImageRepository,
	audit auditService.Recorder,
) ServiceInterface {
	return &ProductService{
		repo:   repo,
		images: images,
		audit:  audit,
	}
}

// =====================================================
// STOREFRONT
// =====================================================

func (s *ProductService) ListProducts(ctx context.Context, filter model.ProductFilter) (*model.ListProductsResponse, error) {
	filter.ActiveOnly = true
	filter.IsActive = nil
	filter.LowStock = nil

	resp, err := s.list(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range resp.Products {
		resp.Products[i].HidePrivate()
	}
	return resp, nil
}

func (s *ProductService) GetProduct(ctx context.Context, idOrSlug string) (*model.Product, error) {
	var (
		p   *model.Product
		err error
	)
	if id, perr := uuid.Parse(idOrSlug); perr == nil {
		p, err = s.repo.GetByID(ctx, id)
	} else {
		p, err = s.repo.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, model.ErrProductNotFound
	}

	images, err := s.images.ListByProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Images = images
	p.HidePrivate()
	return p, nil
}

func (s *ProductService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListCategories(ctx, true)
}

// =====================================================
// ADMIN PRODUCTS
// =====================================================

func (s *ProductService) AdminListProducts(ctx context.Context, filter model.ProductFilter) (*model.ListProductsResponse, error) {
	filter.ActiveOnly = false
	return s.list(ctx, filter)
}

func (s *ProductService) list(ctx context.Context, filter model.ProductFilter) (*model.ListProductsResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &model.ListProductsResponse{
		Products:   products,
		Pagination: query.NewPagination(filter.Page, total),
	}, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, actor shared.Actor, req model.CreateProductRequest) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	categoryID, err := s.resolveCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}

	p := &model.Product{
		Name:             strings.TrimSpace(req.Name),
		SKU:              req.SKU,
		Brand:            req.Brand,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Price:            req.Price,
		CompareAtPrice:   req.CompareAtPrice,
		CostPrice:        req.CostPrice,
		Stock:            req.Stock,
		CategoryID:       categoryID,
		IsActive:         req.IsActive == nil || *req.IsActive,
		IsFeatured:       req.IsFeatured,
	}
	p.Slug = utils.GenerateSlug(p.Name)

	err = s.repo.Create(ctx, p)
	if errors.Is(err, model.ErrSlugTaken) {
		// Same name as an existing product: retry once with a short suffix.
		p.Slug = fmt.Sprintf("%s-%s", utils.GenerateSlug(p.Name), uuid.NewString()[:8])
		err = s.repo.Create(ctx, p)
	}
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, auditModel.NewEntry(actor, auditModel.ActionProductCreated,
		auditModel.ResourceProduct, p.ID.String(), nil, productSnapshot(p)))
	return p, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, actor shared.Actor, id uuid.UUID, req model.UpdateProductRequest) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := productSnapshot(p)

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.SKU != nil {
		p.SKU = req.SKU
	}
	if req.Brand != nil {
		p.Brand = req.Brand
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.ShortDescription != nil {
		p.ShortDescription = req.ShortDescription
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.CompareAtPrice != nil {
		p.CompareAtPrice = req.CompareAtPrice
	}
	if req.CostPrice != nil {
		p.CostPrice = req.CostPrice
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.CategoryID != nil {
		if p.CategoryID, err = s.resolveCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		p.IsFeatured = *req.IsFeatured
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, auditModel.NewEntry(actor, auditModel.ActionProductUpdated,
		auditModel.ResourceProduct, p.ID.String(), before, productSnapshot(p)))
	return p, nil
}

func (s *ProductService) BulkUpdateProducts(ctx context.Context, actor shared.Actor, req model.BulkUpdateProductsRequest) (*model.BulkUpdateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	ids, err := utils.ParseUUIDs(req.IDs)
	if err != nil {
		return nil, apperror.ErrValidation.Wrap(err)
	}

	var upd query.Update
	changes := map[string]interface{}{}
	if req.IsActive != nil {
		upd.Set("is_active", *req.IsActive)
		changes["isActive"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		upd.Set("is_featured", *req.IsFeatured)
		changes["isFeatured"] = *req.IsFeatured
	}
	if req.CategoryID != nil {
		categoryID, err := s.resolveCategory(ctx, req.CategoryID)
		if err != nil {
			return nil, err
		}
		upd.Set("category_id", *categoryID)
		changes["categoryId"] = categoryID.String()
	}

	n, err := s.repo.BulkUpdate(ctx, ids, &upd)
	if err != nil {
		return nil, err
	}

	auditService.RecordAll(ctx, s.audit, actor, auditModel.ActionProductBulkUpdated,
		auditModel.ResourceProduct, req.IDs, changes)
	return &model.BulkUpdateResponse{Updated: n}, nil
}

func (s *ProductService) resolveCategory(ctx context.Context, raw *string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, apperror.Validation(map[string]interface{}{"categoryId": "must be a valid UUID"})
	}
	ok, err := s.repo.CategoryExists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrCategoryNotFound
	}
	return &id, nil
}

func productSnapshot(p *model.Product) map[string]interface{} {
	return map[string]interface{}{
		"name":       p.Name,
		"slug":       p.Slug,
		"price":      p.Price.String(),
		"stock":      p.Stock,
		"isActive":   p.IsActive,
		"isFeatured": p.IsFeatured,
	}
}
