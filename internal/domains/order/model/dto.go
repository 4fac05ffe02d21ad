package model

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"shop-backend/internal/shared/query"
)

const MaxItemsPerOrder = 50

func (a ShippingAddress) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.FullName, validation.Required, validation.Length(2, 255)),
		validation.Field(&a.Email, validation.Required, is.EmailFormat),
		validation.Field(&a.Phone, validation.Required, validation.Length(6, 32)),
		validation.Field(&a.Line1, validation.Required, validation.Length(1, 255)),
		validation.Field(&a.Line2, validation.Length(0, 255)),
		validation.Field(&a.City, validation.Required, validation.Length(1, 120)),
		validation.Field(&a.PostalCode, validation.Required, validation.Length(2, 20)),
		validation.Field(&a.Country, validation.Required, validation.Length(2, 2), is.UpperCase),
	)
}

// ItemRequest is a product/quantity pair posted at checkout.
type ItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (r ItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required, is.UUID),
		validation.Field(&r.Quantity, validation.By(func(interface{}) error {
			if r.Quantity <= 0 {
				return errors.New("must be greater than 0")
			}
			return nil
		})),
	)
}

// ListOrdersFilter backs both the customer and admin order lists.
type ListOrdersFilter struct {
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	From          *time.Time    `json:"from"`
	To            *time.Time    `json:"to"`
	Search        string        `json:"search"`
	SortBy        string        `json:"sortBy"`
	SortOrder     string        `json:"sortOrder"`
	UserID        *uuid.UUID    `json:"-"`
	Page          query.Page    `json:"-"`
}

func (f ListOrdersFilter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Status, validation.In(
			StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled)),
		validation.Field(&f.PaymentStatus, validation.In(
			PaymentProcessing, PaymentCompleted, PaymentFailed, PaymentRefunded)),
		validation.Field(&f.To, validation.By(func(interface{}) error {
			if f.From != nil && f.To != nil && f.To.Before(*f.From) {
				return errors.New("must not be before from")
			}
			return nil
		})),
	)
}

type ListOrdersResponse struct {
	Orders     []Order          `json:"orders"`
	Pagination query.Pagination `json:"pagination"`
}

// UpdateStatusRequest is the admin fulfilment update.
type UpdateStatusRequest struct {
	Status Status `json:"status"`
	Notes  string `json:"notes"`
}

func (r *UpdateStatusRequest) Normalize() {
	r.Status = Status(strings.ToUpper(strings.TrimSpace(string(r.Status))))
}

func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.By(func(interface{}) error {
			if !r.Status.IsValid() {
				return errors.New("must be a valid order status")
			}
			return nil
		})),
		validation.Field(&r.Notes, validation.Length(0, 1000)),
	)
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

func (r CancelOrderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Reason, validation.Length(0, 500)),
	)
}

// OrderDetailResponse is an order with its status history.
type OrderDetailResponse struct {
	*Order
	History []StatusHistory `json:"history"`
}
