package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type paymentIntentGetter interface {
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type StripeVerifier struct {
	intents paymentIntentGetter
}

func NewStripeVerifier(secretKey string) *StripeVerifier {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeVerifier{intents: sc.PaymentIntents}
}

func (s *StripeVerifier) Name() string {
	return "stripe"
}

// Verify treats the reference as a PaymentIntent id.
func (s *StripeVerifier) Verify(ctx context.Context, reference string) (*Charge, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := s.intents.Get(reference, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return nil, ErrChargeNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment intent: %w", err)
	}

	return &Charge{
		Reference: pi.ID,
		Status:    string(pi.Status),
		Settled:   pi.Status == stripe.PaymentIntentStatusSucceeded,
		Amount:    minorUnits(pi.AmountReceived),
		Currency:  string(pi.Currency),
	}, nil
}
