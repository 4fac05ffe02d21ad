package model

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"

	"shop-backend/internal/shared/query"
)

// =====================================================
// LIST REQUESTS
// =====================================================

// ProductFilter backs both the storefront and the admin product list.
type ProductFilter struct {
	Search     string           `json:"search"`
	Category   string           `json:"category"`
	Brand      string           `json:"brand"`
	MinPrice   *decimal.Decimal `json:"minPrice"`
	MaxPrice   *decimal.Decimal `json:"maxPrice"`
	Featured   *bool            `json:"featured"`
	IsActive   *bool            `json:"isActive"`
	LowStock   *int             `json:"lowStock"`
	SortBy     string           `json:"sortBy"`
	SortOrder  string           `json:"sortOrder"`
	Page       query.Page       `json:"-"`
	ActiveOnly bool             `json:"-"`
}

func (f ProductFilter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.MinPrice, validation.By(nonNegative)),
		validation.Field(&f.MaxPrice, validation.By(nonNegative), validation.By(func(v interface{}) error {
			if f.MinPrice != nil && f.MaxPrice != nil && f.MaxPrice.LessThan(*f.MinPrice) {
				return errors.New("must be greater than or equal to minPrice")
			}
			return nil
		})),
		validation.Field(&f.LowStock, validation.Min(0)),
		validation.Field(&f.SortOrder, validation.In("", "asc", "desc", "ASC", "DESC")),
	)
}

type ListProductsResponse struct {
	Products   []Product        `json:"products"`
	Pagination query.Pagination `json:"pagination"`
}

// =====================================================
// ADMIN WRITE REQUESTS
// =====================================================

type CreateProductRequest struct {
	Name             string           `json:"name"`
	SKU              *string          `json:"sku"`
	Brand            *string          `json:"brand"`
	Description      *string          `json:"description"`
	ShortDescription *string          `json:"shortDescription"`
	Price            decimal.Decimal  `json:"price"`
	CompareAtPrice   *decimal.Decimal `json:"compareAtPrice"`
	CostPrice        *decimal.Decimal `json:"costPrice"`
	Stock            int              `json:"stock"`
	CategoryID       *string          `json:"categoryId"`
	IsActive         *bool            `json:"isActive"`
	IsFeatured       bool             `json:"isFeatured"`
}

func (r CreateProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(2, 255)),
		validation.Field(&r.SKU, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.ShortDescription, validation.Length(0, 500)),
		validation.Field(&r.Price, validation.By(positive)),
		validation.Field(&r.CompareAtPrice, validation.By(nonNegative)),
		validation.Field(&r.CostPrice, validation.By(nonNegative)),
		validation.Field(&r.Stock, validation.Min(0)),
		validation.Field(&r.CategoryID, validation.NilOrNotEmpty, is.UUID),
	)
}

// UpdateProductRequest only touches the fields that are present.
type UpdateProductRequest struct {
	Name             *string          `json:"name"`
	SKU              *string          `json:"sku"`
	Brand            *string          `json:"brand"`
	Description      *string          `json:"description"`
	ShortDescription *string          `json:"shortDescription"`
	Price            *decimal.Decimal `json:"price"`
	CompareAtPrice   *decimal.Decimal `json:"compareAtPrice"`
	CostPrice        *decimal.Decimal `json:"costPrice"`
	Stock            *int             `json:"stock"`
	CategoryID       *string          `json:"categoryId"`
	IsActive         *bool            `json:"isActive"`
	IsFeatured       *bool            `json:"isFeatured"`
}

func (r UpdateProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(2, 255)),
		validation.Field(&r.SKU, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.ShortDescription, validation.Length(0, 500)),
		validation.Field(&r.Price, validation.By(positive)),
		validation.Field(&r.CompareAtPrice, validation.By(nonNegative)),
		validation.Field(&r.CostPrice, validation.By(nonNegative)),
		validation.Field(&r.Stock, validation.Min(0)),
		validation.Field(&r.CategoryID, validation.NilOrNotEmpty, is.UUID),
	)
}

// BulkUpdateProductsRequest applies the same change to every listed product.
type BulkUpdateProductsRequest struct {
	IDs        []string `json:"ids"`
	IsActive   *bool    `json:"isActive"`
	IsFeatured *bool    `json:"isFeatured"`
	CategoryID *string  `json:"categoryId"`
}

func (r BulkUpdateProductsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IDs, validation.Required, validation.Length(1, 100), validation.Each(is.UUID)),
		validation.Field(&r.CategoryID, validation.NilOrNotEmpty, is.UUID),
		validation.Field(&r.IsActive, validation.By(func(interface{}) error {
			if r.IsActive == nil && r.IsFeatured == nil && r.CategoryID == nil {
				return errors.New("at least one of isActive, isFeatured, categoryId is required")
			}
			return nil
		})),
	)
}

// =====================================================
// IMAGE REQUESTS
// =====================================================

type AddImageRequest struct {
	URL       string `json:"url"`
	AltText   string `json:"altText"`
	IsPrimary bool   `json:"isPrimary"`
}

func (r AddImageRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.URL, validation.Required, is.URL, validation.Length(1, 500)),
		validation.Field(&r.AltText, validation.Length(0, 255)),
	)
}

type ReorderImagesRequest struct {
	ImageIDs []string `json:"imageIds"`
}

func (r ReorderImagesRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ImageIDs, validation.Required, validation.Each(is.UUID)),
	)
}

type BulkUpdateImagesRequest struct {
	IDs       []string `json:"ids"`
	AltText   *string  `json:"altText"`
	IsPrimary *bool    `json:"isPrimary"`
}

func (r BulkUpdateImagesRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IDs, validation.Required, validation.Length(1, 100), validation.Each(is.UUID)),
		validation.Field(&r.AltText, validation.Length(0, 255), validation.By(func(interface{}) error {
			if r.AltText == nil && r.IsPrimary == nil {
				return errors.New("at least one of altText, isPrimary is required")
			}
			return nil
		})),
	)
}

type BulkUpdateResponse struct {
	Updated int64 `json:"updated"`
}

// =====================================================
// RULES
// =====================================================

func positive(value interface{}) error {
	switch v := value.(type) {
	case decimal.Decimal:
		if !v.IsPositive() {
			return errors.New("must be greater than 0")
		}
	case *decimal.Decimal:
		if v != nil && !v.IsPositive() {
			return errors.New("must be greater than 0")
		}
	}
	return nil
}

func nonNegative(value interface{}) error {
	switch v := value.(type) {
	case decimal.Decimal:
		if v.IsNegative() {
			return errors.New("must not be negative")
		}
	case *decimal.Decimal:
		if v != nil && v.IsNegative() {
			return errors.New("must not be negative")
		}
	}
	return nil
}
