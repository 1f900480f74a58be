package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/razorpay/razorpay-go"
)

type paymentFetcher interface {
	Fetch(paymentID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type RazorpayVerifier struct {
	payments paymentFetcher
}

func NewRazorpayVerifier(keyID, keySecret string) *RazorpayVerifier {
	return &RazorpayVerifier{payments: razorpay.NewClient(keyID, keySecret).Payment}
}

func (r *RazorpayVerifier) Name() string {
	return "razorpay"
}

// Verify treats the reference as a Razorpay payment id. The client has no
// context support, so ctx is only checked before the call.
func (r *RazorpayVerifier) Verify(ctx context.Context, reference string) (*Charge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := r.payments.Fetch(reference, nil, nil)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "does not exist") {
			return nil, ErrChargeNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment: %w", err)
	}

	status, _ := body["status"].(string)
	currency, _ := body["currency"].(string)
	id, _ := body["id"].(string)

	return &Charge{
		Reference: id,
		Status:    status,
		Settled:   status == "captured",
		Amount:    minorUnits(numberField(body["amount"])),
		Currency:  currency,
	}, nil
}

func numberField(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int:
		return int64(n)
	case int64:
		return n
	}
	return 0
}
