package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const demoPrefix = "pi_demo_"

// DemoGateway approves every payment without contacting a processor.
// Intent ids carry the amount so lookups survive restarts.
type DemoGateway struct {
	currency string
}

func NewDemoGateway(currency string) *DemoGateway {
	return &DemoGateway{currency: currency}
}

func (g *DemoGateway) Name() string { return "demo" }

func (g *DemoGateway) CreateIntent(_ context.Context, params CreateIntentParams) (*Intent, error) {
	if params.Amount <= 0 {
		return nil, ErrCardDeclined.WithMessage("Amount must be positive")
	}
	id := fmt.Sprintf("%s%s_%d", demoPrefix, strings.ReplaceAll(uuid.NewString(), "-", ""), params.Amount)
	return &Intent{
		ID:           id,
		ClientSecret: id + "_secret_demo",
		Amount:       params.Amount,
		Currency:     params.Currency,
		Status:       IntentRequiresPaymentMethod,
		OrderID:      params.OrderID,
	}, nil
}

func (g *DemoGateway) GetIntent(_ context.Context, intentID string) (*Intent, error) {
	amount, err := demoAmount(intentID)
	if err != nil {
		return nil, ErrIntentNotFound.Wrap(err)
	}
	return &Intent{
		ID:       intentID,
		Amount:   amount,
		Currency: g.currency,
		Status:   IntentSucceeded,
	}, nil
}

func (g *DemoGateway) Refund(_ context.Context, intentID string, amount int64) (*Refund, error) {
	captured, err := demoAmount(intentID)
	if err != nil {
		return nil, ErrIntentNotFound.Wrap(err)
	}
	if amount == 0 || amount > captured {
		amount = captured
	}
	return &Refund{
		ID:     "re_demo_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		Status: "succeeded",
		Amount: amount,
	}, nil
}

func demoAmount(intentID string) (int64, error) {
	if !strings.HasPrefix(intentID, demoPrefix) {
		return 0, fmt.Errorf("not a demo intent: %q", intentID)
	}
	idx := strings.LastIndexByte(intentID, '_')
	amount, err := strconv.ParseInt(intentID[idx+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed demo intent %q: %w", intentID, err)
	}
	return amount, nil
}
