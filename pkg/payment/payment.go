package payment

import (
	"context"
	"errors"
	"fmt"
)

var ErrChargeNotFound = errors.New("payment not found")

// Charge is the gateway's view of an online payment.
type Charge struct {
	Reference string
	Status    string
	Settled   bool
	Amount    float64
	Currency  string
}

// Verifier looks up a payment the rider already made through a gateway.
type Verifier interface {
	Verify(ctx context.Context, reference string) (*Charge, error)
	Name() string
}

type Config struct {
	Provider          string // stripe, razorpay, or empty to disable
	StripeSecretKey   string
	RazorpayKeyID     string
	RazorpayKeySecret string
}

// NewVerifier returns nil when no gateway is configured.
func NewVerifier(cfg *Config) (Verifier, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "stripe":
		if cfg.StripeSecretKey == "" {
			return nil, errors.New("stripe secret key is required")
		}
		return NewStripeVerifier(cfg.StripeSecretKey), nil
	case "razorpay":
		if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
			return nil, errors.New("razorpay key id and secret are required")
		}
		return NewRazorpayVerifier(cfg.RazorpayKeyID, cfg.RazorpayKeySecret), nil
	default:
		return nil, fmt.Errorf("unsupported payment provider %q", cfg.Provider)
	}
}

// minorUnits converts gateway amounts, which are integers in the smallest
// currency unit, to the decimal amounts the ledger stores.
func minorUnits(amount int64) float64 {
	return float64(amount) / 100
}
