package service

import (
	"context"
	"fmt"
	"strings"

	"shop-backend/internal/domains/notification/model"
	"shop-backend/internal/infrastructure/email"
)

// OrderMailer renders and sends order notifications.
type OrderMailer interface {
	SendOrderConfirmation(ctx context.Context, p model.OrderConfirmationPayload) error
}

type orderMailer struct {
	email   email.EmailService
	appName string
}

func NewOrderMailer(emailService email.EmailService, appName string) OrderMailer {
	return &orderMailer{email: emailService, appName: appName}
}

func (m *orderMailer) SendOrderConfirmation(ctx context.Context, p model.OrderConfirmationPayload) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid order confirmation payload: %w", err)
	}
	return m.email.SendEmail(ctx, email.EmailRequest{
		To:      []string{p.Email},
		Subject: fmt.Sprintf("%s: order %s confirmed", m.appName, p.OrderNumber),
		Body:    RenderOrderConfirmation(p),
	})
}

// RenderOrderConfirmation builds the plain-text receipt.
func RenderOrderConfirmation(p model.OrderConfirmationPayload) string {
	currency := strings.ToUpper(p.Currency)
	name := p.FullName
	if name == "" {
		name = "there"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Thanks for your order. Payment for order %s has been received.\n\n", p.OrderNumber)
	for _, it := range p.Items {
		fmt.Fprintf(&b, "  %d x %s @ %s %s = %s %s\n", it.Quantity, it.Name, it.UnitPrice, currency, it.Subtotal, currency)
	}
	fmt.Fprintf(&b, "\nSubtotal: %s %s\n", p.Subtotal, currency)
	fmt.Fprintf(&b, "Tax:      %s %s\n", p.Tax, currency)
	fmt.Fprintf(&b, "Shipping: %s %s\n", p.ShippingFee, currency)
	fmt.Fprintf(&b, "Total:    %s %s\n\n", p.Total, currency)
	b.WriteString("We will let you know when it ships.\n")
	return b.String()
}
