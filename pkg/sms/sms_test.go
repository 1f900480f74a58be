package sms

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSNS struct {
	mock.Mock
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*sns.PublishOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSNSSendSMSIncludesMessageBody(t *testing.T) {
	client := &mockSNS{}
	provider := &AWSSNSProvider{client: client, senderID: "Tricy"}

	client.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return aws.ToString(in.PhoneNumber) == "+639171234567" &&
			aws.ToString(in.Message) == "Driver Assigned" &&
			aws.ToString(in.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue) == "Tricy"
	})).Return(&sns.PublishOutput{MessageId: aws.String("m-1")}, nil)

	resp, err := provider.SendSMS(context.Background(), &SMSRequest{
		To:      "+639171234567",
		Message: "Driver Assigned",
	})

	require.NoError(t, err)
	assert.Equal(t, "m-1", resp.MessageID)
	assert.Equal(t, "sent", resp.Status)
	client.AssertExpectations(t)
}

func TestSNSSendSMSFailure(t *testing.T) {
	client := &mockSNS{}
	provider := &AWSSNSProvider{client: client}
	client.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	resp, err := provider.SendSMS(context.Background(), &SMSRequest{To: "+15551234567", Message: "hi"})

	assert.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "failed", resp.Status)
}

func TestSendSMSValidatesRequest(t *testing.T) {
	provider := &AWSSNSProvider{client: &mockSNS{}}

	_, err := provider.SendSMS(context.Background(), &SMSRequest{Message: "hi"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = NewTwilioProvider("sid", "token", "+15550000000").SendSMS(context.Background(), &SMSRequest{To: "+15551234567"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider(context.Background(), &Config{})
	require.NoError(t, err)
	assert.Nil(t, provider)

	provider, err = NewProvider(context.Background(), &Config{
		Provider:    "Twilio",
		TwilioSID:   "sid",
		TwilioToken: "token",
		TwilioFrom:  "+15550000000",
	})
	require.NoError(t, err)
	assert.Equal(t, "twilio", provider.Name())

	_, err = NewProvider(context.Background(), &Config{Provider: "twilio"})
	assert.Error(t, err)

	_, err = NewProvider(context.Background(), &Config{Provider: "pigeon"})
	assert.Error(t, err)
}
