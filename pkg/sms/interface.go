package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidRequest = errors.New("invalid sms request")

type SMSProvider interface {
	SendSMS(ctx context.Context, request *SMSRequest) (*SMSResponse, error)
	Name() string
}

type SMSRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
	Type    string `json:"type"` // transactional, promotional
}

type SMSResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

type Config struct {
	Provider     string
	TwilioSID    string
	TwilioToken  string
	TwilioFrom   string
	AWSRegion    string
	AWSAccessKey string
	AWSSecretKey string
	SenderID     string
}

// NewProvider builds the provider named in config. It returns nil without an
// error when SMS delivery is disabled.
func NewProvider(ctx context.Context, config *Config) (SMSProvider, error) {
	switch strings.ToLower(config.Provider) {
	case "":
		return nil, nil
	case "twilio":
		if config.TwilioSID == "" || config.TwilioToken == "" || config.TwilioFrom == "" {
			return nil, errors.New("twilio requires TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_FROM_NUMBER")
		}
		return NewTwilioProvider(config.TwilioSID, config.TwilioToken, config.TwilioFrom), nil
	case "aws", "sns":
		return NewAWSSNSProvider(ctx, config.AWSRegion, config.AWSAccessKey, config.AWSSecretKey, config.SenderID)
	default:
		return nil, fmt.Errorf("unknown sms provider %q", config.Provider)
	}
}

func validateRequest(request *SMSRequest) error {
	if request == nil {
		return fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}
	if strings.TrimSpace(request.To) == "" {
		return fmt.Errorf("%w: missing recipient", ErrInvalidRequest)
	}
	if strings.TrimSpace(request.Message) == "" {
		return fmt.Errorf("%w: empty message", ErrInvalidRequest)
	}
	return nil
}
