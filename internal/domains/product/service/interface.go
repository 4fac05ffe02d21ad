package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"shop-backend/internal/domains/product/model"
	"shop-backend/internal/shared"
)

// ServiceInterface covers the storefront catalog and the admin product surface.
type ServiceInterface interface {
	// Storefront
	ListProducts(ctx context.Context, filter model.ProductFilter) (*model.ListProductsResponse, error)
	GetProduct(ctx context.Context, idOrSlug string) (*model.Product, error)
	ListCategories(ctx context.Context) ([]model.Category, error)

	// Admin
	AdminListProducts(ctx context.Context, filter model.ProductFilter) (*model.ListProductsResponse, error)
	CreateProduct(ctx context.Context, actor shared.Actor, req model.CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, actor shared.Actor, id uuid.UUID, req model.UpdateProductRequest) (*model.Product, error)
	BulkUpdateProducts(ctx context.Context, actor shared.Actor, req model.BulkUpdateProductsRequest) (*model.BulkUpdateResponse, error)
	ExportProductsToExcel(ctx context.Context, filter model.ProductFilter) (*excelize.File, int, error)

	ListImages(ctx context.Context, productID uuid.UUID) ([]model.ProductImage, error)
	AddImage(ctx context.Context, actor shared.Actor, productID uuid.UUID, req model.AddImageRequest) (*model.ProductImage, error)
	ReorderImages(ctx context.Context, productID uuid.UUID, req model.ReorderImagesRequest) ([]model.ProductImage, error)
	DeleteImage(ctx context.Context, id uuid.UUID) error
	BulkUpdateImages(ctx context.Context, actor shared.Actor, req model.BulkUpdateImagesRequest) (*model.BulkUpdateResponse, error)
}
