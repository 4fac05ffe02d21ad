package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shop-backend/internal/config"
)

// =====================================================
// STATUSES
// =====================================================

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentProcessing PaymentStatus = "PROCESSING"
	PaymentCompleted  PaymentStatus = "COMPLETED"
	PaymentFailed     PaymentStatus = "FAILED"
	PaymentRefunded   PaymentStatus = "REFUNDED"
)

// transitions lists the fulfilment moves staff may make by hand.
// PENDING -> CONFIRMED only happens through payment confirmation.
var transitions = map[Status][]Status{
	StatusPending:    {StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// AllowedTransitions returns the statuses reachable from s.
func (s Status) AllowedTransitions() []Status {
	return append([]Status{}, transitions[s]...)
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// =====================================================
// ORDER
// =====================================================

type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type OrderItem struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"orderId"`
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	ProductSKU  *string         `json:"productSku,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID              uuid.UUID       `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	UserID          uuid.UUID       `json:"userId"`
	Status          Status          `json:"status"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	PaymentIntentID *string         `json:"paymentIntentId,omitempty"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	ShippingFee     decimal.Decimal `json:"shippingFee"`
	Total           decimal.Decimal `json:"total"`
	Shipping        ShippingAddress `json:"shipping"`
	Items           []OrderItem     `json:"items,omitempty"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	CancelledAt     *time.Time      `json:"cancelledAt,omitempty"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Totals returns the stored money fields.
func (o *Order) Totals() Totals {
	return Totals{Subtotal: o.Subtotal, Tax: o.Tax, ShippingFee: o.ShippingFee, Total: o.Total}
}

// ApplyTotals copies computed money fields onto the order.
func (o *Order) ApplyTotals(t Totals) {
	o.Subtotal, o.Tax, o.ShippingFee, o.Total = t.Subtotal, t.Tax, t.ShippingFee, t.Total
}

// IsPaid reports whether money was captured and not returned.
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentCompleted
}

// Transition moves the order to next and stamps the matching timestamp.
func (o *Order) Transition(next Status, at time.Time) {
	o.Status = next
	switch next {
	case StatusConfirmed:
		o.PaymentStatus = PaymentCompleted
		o.PaidAt = &at
	case StatusCancelled:
		o.CancelledAt = &at
	case StatusDelivered:
		o.DeliveredAt = &at
	}
}

type StatusHistory struct {
	ID         uuid.UUID  `json:"id"`
	OrderID    uuid.UUID  `json:"orderId"`
	FromStatus *Status    `json:"fromStatus,omitempty"`
	ToStatus   Status     `json:"toStatus"`
	ChangedBy  *uuid.UUID `json:"changedBy,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// =====================================================
// TOTALS
// =====================================================

type Totals struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
	Total       decimal.Decimal `json:"total"`
}

// Equal compares totals by value.
func (t Totals) Equal(other Totals) bool {
	return t.Subtotal.Equal(other.Subtotal) &&
		t.Tax.Equal(other.Tax) &&
		t.ShippingFee.Equal(other.ShippingFee) &&
		t.Total.Equal(other.Total)
}

// CalculateTotals prices items with the checkout rules. Line subtotals are
// written back onto items.
func CalculateTotals(items []OrderItem, cfg config.CheckoutConfig) Totals {
	subtotal := decimal.Zero
	for i := range items {
		items[i].Subtotal = items[i].UnitPrice.Mul(decimal.NewFromInt(int64(items[i].Quantity))).Round(2)
		subtotal = subtotal.Add(items[i].Subtotal)
	}

	tax := subtotal.Mul(cfg.TaxRate).Round(2)

	shipping := cfg.FlatShippingFee
	if subtotal.GreaterThanOrEqual(cfg.FreeShippingThreshold) || len(items) == 0 {
		shipping = decimal.Zero
	}

	return Totals{
		Subtotal:    subtotal,
		Tax:         tax,
		ShippingFee: shipping,
		Total:       subtotal.Add(tax).Add(shipping),
	}
}

// ToMinorUnits converts an amount to cents for the payment gateway.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
