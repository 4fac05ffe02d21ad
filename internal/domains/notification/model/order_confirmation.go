package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// OrderConfirmationPayload is the body of the email:order_confirmation task.
type OrderConfirmationPayload struct {
	OrderID     string      `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	Email       string      `json:"email"`
	FullName    string      `json:"full_name"`
	Subtotal    string      `json:"subtotal"`
	Tax         string      `json:"tax"`
	ShippingFee string      `json:"shipping_fee"`
	Total       string      `json:"total"`
	Currency    string      `json:"currency"`
	Items       []EmailLine `json:"items"`
}

type EmailLine struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

func (p OrderConfirmationPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.OrderNumber, validation.Required),
		validation.Field(&p.Email, validation.Required, is.EmailFormat),
		validation.Field(&p.Items, validation.Required),
	)
}
