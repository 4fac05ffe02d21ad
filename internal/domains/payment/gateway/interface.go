package gateway

import (
	"context"

	"shop-backend/internal/shared/apperror"
)

// =====================================================
// GATEWAY INTERFACE
// =====================================================

// IntentStatus mirrors the processor's payment intent lifecycle.
type IntentStatus string

const (
	IntentSucceeded             IntentStatus = "succeeded"
	IntentProcessing            IntentStatus = "processing"
	IntentRequiresAction        IntentStatus = "requires_action"
	IntentRequiresConfirmation  IntentStatus = "requires_confirmation"
	IntentRequiresPaymentMethod IntentStatus = "requires_payment_method"
	IntentCanceled              IntentStatus = "canceled"
)

// IsFailed reports whether the attempt is over without capture.
func (s IntentStatus) IsFailed() bool {
	return s == IntentRequiresPaymentMethod || s == IntentCanceled
}

type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       IntentStatus
	OrderID      string
}

type CreateIntentParams struct {
	Amount         int64 // minor units
	Currency       string
	OrderID        string
	IdempotencyKey string
}

type Refund struct {
	ID     string
	Status string
	Amount int64
}

// Gateway talks to the card processor.
type Gateway interface {
	Name() string
	CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error)
	GetIntent(ctx context.Context, intentID string) (*Intent, error)
	// Refund returns amount (minor units) of a captured intent. Zero refunds everything.
	Refund(ctx context.Context, intentID string, amount int64) (*Refund, error)
}

const (
	ErrCodeGatewayUnavailable = "PAY001"
	ErrCodeCardDeclined       = "PAY002"
	ErrCodeIntentNotFound     = "PAY003"
)

var (
	ErrGatewayUnavailable = apperror.New(apperror.KindUpstreamFatal, ErrCodeGatewayUnavailable, "Payment provider is unavailable")
	ErrCardDeclined       = apperror.New(apperror.KindUpstream, ErrCodeCardDeclined, "Payment was declined")
	ErrIntentNotFound     = apperror.New(apperror.KindNotFound, ErrCodeIntentNotFound, "Payment intent not found")
)
