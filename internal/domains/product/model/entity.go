package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// PRODUCT ENTITY
// =====================================================
type Product struct {
	ID               uuid.UUID        `json:"id"`
	Name             string           `json:"name"`
	Slug             string           `json:"slug"`
	SKU              *string          `json:"sku,omitempty"`
	Brand            *string          `json:"brand,omitempty"`
	Description      *string          `json:"description,omitempty"`
	ShortDescription *string          `json:"shortDescription,omitempty"`
	Price            decimal.Decimal  `json:"price"`
	CompareAtPrice   *decimal.Decimal `json:"compareAtPrice,omitempty"`
	CostPrice        *decimal.Decimal `json:"costPrice,omitempty"`
	Stock            int              `json:"stock"`
	CategoryID       *uuid.UUID       `json:"categoryId,omitempty"`
	CategoryName     *string          `json:"categoryName,omitempty"`
	CategorySlug     *string          `json:"categorySlug,omitempty"`
	IsActive         bool             `json:"isActive"`
	IsFeatured       bool             `json:"isFeatured"`
	PrimaryImage     *string          `json:"primaryImage,omitempty"`
	Images           []ProductImage   `json:"images,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// InStock reports whether qty units can be sold right now.
func (p *Product) InStock(qty int) bool {
	return p.IsActive && p.Stock >= qty
}

// HidePrivate clears fields that only admins may see.
func (p *Product) HidePrivate() {
	p.CostPrice = nil
}

// ProductImage is one entry of a product's ordered gallery.
type ProductImage struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	URL       string    `json:"url"`
	AltText   string    `json:"altText"`
	Position  int       `json:"position"`
	IsPrimary bool      `json:"isPrimary"`
	CreatedAt time.Time `json:"createdAt"`
}

type Category struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description,omitempty"`
	ParentID    *uuid.UUID `json:"parentId,omitempty"`
	IsActive    bool       `json:"isActive"`
	SortOrder   int        `json:"sortOrder"`
}

// StockLine is a product/quantity pair used by stock mutations.
type StockLine struct {
	ProductID uuid.UUID
	Quantity  int
}
