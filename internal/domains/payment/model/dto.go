package model

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	orderModel "shop-backend/internal/domains/order/model"
)

// CreatePaymentIntentRequest starts checkout for new items, or retries
// payment of an existing pending order when OrderID is set.
type CreatePaymentIntentRequest struct {
	Items    []orderModel.ItemRequest    `json:"items"`
	Shipping *orderModel.ShippingAddress `json:"shipping"`
	OrderID  string                      `json:"orderId"`
}

// IsRetry reports whether the request targets an existing order.
func (r CreatePaymentIntentRequest) IsRetry() bool {
	return r.OrderID != ""
}

func (r CreatePaymentIntentRequest) Validate() error {
	if r.IsRetry() {
		return validation.ValidateStruct(&r,
			validation.Field(&r.OrderID, is.UUID),
			validation.Field(&r.Items, validation.Empty.Error("must be empty when orderId is set")),
		)
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Items,
			validation.Required.Error("cart is empty"),
			validation.Length(1, orderModel.MaxItemsPerOrder),
			validation.By(uniqueProducts),
		),
		validation.Field(&r.Shipping, validation.Required),
	)
}

func uniqueProducts(value interface{}) error {
	items, _ := value.([]orderModel.ItemRequest)
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.ProductID]; dup {
			return errors.New("each product may appear only once")
		}
		seen[it.ProductID] = struct{}{}
	}
	return nil
}

// ConfirmPaymentRequest identifies the intent to confirm by its id or its order.
type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
	OrderID         string `json:"orderId"`
}

func (r ConfirmPaymentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PaymentIntentID, validation.When(r.OrderID == "",
			validation.Required.Error("paymentIntentId or orderId is required"))),
		validation.Field(&r.OrderID, is.UUID),
	)
}

type PaymentIntentResponse struct {
	OrderID         string            `json:"orderId"`
	OrderNumber     string            `json:"orderNumber"`
	ClientSecret    string            `json:"clientSecret"`
	PaymentIntentID string            `json:"paymentIntentId"`
	Amount          int64             `json:"amount"`
	Currency        string            `json:"currency"`
	Totals          orderModel.Totals `json:"totals"`
}

type ConfirmPaymentResponse struct {
	Completed bool              `json:"completed"`
	Status    string            `json:"status"`
	Order     *orderModel.Order `json:"order"`
}
