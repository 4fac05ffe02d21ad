package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shop-backend/internal/shared/apperror"
)

const MaxQuantityPerItem = 99

// CartItem is one cart line joined with the current product data.
type CartItem struct {
	ProductID    uuid.UUID       `json:"productId"`
	Quantity     int             `json:"quantity"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	IsActive     bool            `json:"isActive"`
	PrimaryImage *string         `json:"primaryImage,omitempty"`
	LineTotal    decimal.Decimal `json:"lineTotal"`
	Available    bool            `json:"available"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type Cart struct {
	Items     []CartItem      `json:"items"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// NewCart derives line totals and the subtotal from current prices.
// Unavailable lines are shown but not counted.
func NewCart(items []CartItem) *Cart {
	cart := &Cart{Items: items, Subtotal: decimal.Zero}
	if cart.Items == nil {
		cart.Items = []CartItem{}
	}
	for i := range cart.Items {
		it := &cart.Items[i]
		it.LineTotal = it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		it.Available = it.IsActive && it.Stock >= it.Quantity
		if it.Available {
			cart.ItemCount += it.Quantity
			cart.Subtotal = cart.Subtotal.Add(it.LineTotal)
		}
	}
	return cart
}

// Line is a product/quantity pair sent by the client.
type Line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (l Line) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.ProductID, validation.Required, is.UUID),
		validation.Field(&l.Quantity, validation.Required, validation.Min(1), validation.Max(MaxQuantityPerItem)),
	)
}

// SyncCartRequest replaces the whole cart.
type SyncCartRequest struct {
	Items []Line `json:"items"`
}

func (r SyncCartRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Items, validation.Length(0, 100), validation.By(uniqueProducts)),
	)
}

func uniqueProducts(value interface{}) error {
	lines, _ := value.([]Line)
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if _, dup := seen[l.ProductID]; dup {
			return errors.New("each product may appear only once")
		}
		seen[l.ProductID] = struct{}{}
	}
	return nil
}

const ErrCodeProductUnavailable = "CRT001"

var ErrProductUnavailable = apperror.New(apperror.KindStateConflict, ErrCodeProductUnavailable,
	"One or more products are unavailable")
