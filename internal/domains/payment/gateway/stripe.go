package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeGateway uses the Stripe PaymentIntents API.
type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil)}
}

func (g *StripeGateway) Name() string { return "stripe" }

func (g *StripeGateway) CreateIntent(ctx context.Context, p CreateIntentParams) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(p.Amount),
		Currency: stripe.String(p.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("order_id", p.OrderID)
	if p.IdempotencyKey != "" {
		params.SetIdempotencyKey(p.IdempotencyKey)
	}

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return toIntent(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, intentID string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return toIntent(pi), nil
}

func (g *StripeGateway) Refund(ctx context.Context, intentID string, amount int64) (*Refund, error) {
	params := &stripe.RefundParams{PaymentIntent: stripe.String(intentID)}
	params.Context = ctx
	if amount > 0 {
		params.Amount = stripe.Int64(amount)
	}
	params.SetIdempotencyKey("refund_" + intentID)

	re, err := g.api.Refunds.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return &Refund{ID: re.ID, Status: string(re.Status), Amount: re.Amount}, nil
}

func toIntent(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       IntentStatus(pi.Status),
		OrderID:      pi.Metadata["order_id"],
	}
}

// mapStripeError sorts processor errors into declines, missing intents and outages.
func mapStripeError(err error) error {
	var se *stripe.Error
	if !errors.As(err, &se) {
		return ErrGatewayUnavailable.Wrap(err)
	}
	switch {
	case se.Type == stripe.ErrorTypeCard:
		return ErrCardDeclined.WithMessage("Payment was declined: %s", se.Msg).Wrap(err)
	case se.HTTPStatusCode == http.StatusNotFound:
		return ErrIntentNotFound.Wrap(err)
	case se.Type == stripe.ErrorTypeInvalidRequest:
		return ErrCardDeclined.WithMessage("Payment request rejected: %s", se.Msg).Wrap(err)
	default:
		return ErrGatewayUnavailable.Wrap(err)
	}
}
