package gateway

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func TestDemoGateway(t *testing.T) {
	ctx := context.Background()
	g := NewDemoGateway("usd")

	intent, err := g.CreateIntent(ctx, CreateIntentParams{Amount: 5884, Currency: "usd", OrderID: "o-1"})
	require.NoError(t, err)
	assert.Contains(t, intent.ClientSecret, intent.ID)
	assert.Equal(t, "o-1", intent.OrderID)

	fetched, err := g.GetIntent(ctx, intent.ID)
	require.NoError(t, err)
	assert.Equal(t, IntentSucceeded, fetched.Status)
	assert.Equal(t, int64(5884), fetched.Amount)

	refund, err := g.Refund(ctx, intent.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5884), refund.Amount)

	_, err = g.GetIntent(ctx, "pi_live_123")
	assert.ErrorIs(t, err, ErrIntentNotFound)

	_, err = g.CreateIntent(ctx, CreateIntentParams{Amount: 0})
	assert.ErrorIs(t, err, ErrCardDeclined)
}

func TestMapStripeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"card error", &stripe.Error{Type: stripe.ErrorTypeCard, Msg: "insufficient funds"}, ErrCardDeclined},
		{"missing intent", &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, HTTPStatusCode: http.StatusNotFound}, ErrIntentNotFound},
		{"bad request", &stripe.Error{Type: stripe.ErrorTypeInvalidRequest, HTTPStatusCode: http.StatusBadRequest}, ErrCardDeclined},
		{"api error", &stripe.Error{Type: stripe.ErrorTypeAPI, HTTPStatusCode: http.StatusInternalServerError}, ErrGatewayUnavailable},
		{"network", errors.New("dial tcp: timeout"), ErrGatewayUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapStripeError(tt.err), tt.want)
		})
	}
}

func TestIntentStatusIsFailed(t *testing.T) {
	assert.True(t, IntentCanceled.IsFailed())
	assert.True(t, IntentRequiresPaymentMethod.IsFailed())
	assert.False(t, IntentProcessing.IsFailed())
	assert.False(t, IntentSucceeded.IsFailed())
}
