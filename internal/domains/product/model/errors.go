package model

import "shop-backend/internal/shared/apperror"

const (
	ErrCodeProductNotFound   = "PRD001"
	ErrCodeCategoryNotFound  = "PRD002"
	ErrCodeSlugTaken         = "PRD003"
	ErrCodeImageNotFound     = "PRD004"
	ErrCodeInsufficientStock = "PRD005"
	ErrCodeInvalidImageOrder = "PRD006"
)

var (
	ErrProductNotFound   = apperror.New(apperror.KindNotFound, ErrCodeProductNotFound, "Product not found")
	ErrCategoryNotFound  = apperror.New(apperror.KindNotFound, ErrCodeCategoryNotFound, "Category not found")
	ErrSlugTaken         = apperror.New(apperror.KindStateConflict, ErrCodeSlugTaken, "A product with this slug or SKU already exists")
	ErrImageNotFound     = apperror.New(apperror.KindNotFound, ErrCodeImageNotFound, "Image not found")
	ErrInsufficientStock = apperror.New(apperror.KindStateConflict, ErrCodeInsufficientStock, "Insufficient stock or product unavailable")
	ErrInvalidImageOrder = apperror.New(apperror.KindValidation, ErrCodeInvalidImageOrder, "Image order must list every image of the product exactly once")
)
