package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var ErrNotConfigured = errors.New("payment provider is not configured")

// Intent is a created payment authorization the client confirms on-device.
type Intent struct {
	ID           string
	ClientSecret string
}

// Gateway places, captures and releases manual-capture holds.
type Gateway interface {
	CreateHold(ctx context.Context, amount int64, currency string, userID int64) (*Intent, error)
	Capture(ctx context.Context, intentID string) error
	Release(ctx context.Context, intentID string) error
}

// StripeGateway implements Gateway with Stripe PaymentIntents.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway returns a gateway bound to secretKey. An empty key yields
// a gateway whose calls fail with ErrNotConfigured.
func NewStripeGateway(secretKey string) *StripeGateway {
	if secretKey == "" {
		return &StripeGateway{}
	}
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api}
}

func (g *StripeGateway) CreateHold(ctx context.Context, amount int64, currency string, userID int64) (*Intent, error) {
	if g.api == nil {
		return nil, ErrNotConfigured
	}
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amount),
		Currency:      stripe.String(currency),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
	}
	params.Context = ctx
	params.AddMetadata("user_id", strconv.FormatInt(userID, 10))

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create payment intent: %w", err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *StripeGateway) Capture(ctx context.Context, intentID string) error {
	if g.api == nil {
		return ErrNotConfigured
	}
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	params.SetIdempotencyKey("capture-" + intentID)

	if _, err := g.api.PaymentIntents.Capture(intentID, params); err != nil {
		return fmt.Errorf("stripe capture %s: %w", intentID, err)
	}
	return nil
}

func (g *StripeGateway) Release(ctx context.Context, intentID string) error {
	if g.api == nil {
		return ErrNotConfigured
	}
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	params.SetIdempotencyKey("cancel-" + intentID)

	if _, err := g.api.PaymentIntents.Cancel(intentID, params); err != nil {
		return fmt.Errorf("stripe cancel %s: %w", intentID, err)
	}
	return nil
}
