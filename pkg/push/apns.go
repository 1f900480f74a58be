package push

import (
	"context"
	"fmt"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/token"
)

type APNSProvider struct {
	client *apns2.Client
	topic  string
}

func NewAPNSProvider(keyFile, keyID, teamID, topic string, production bool) (*APNSProvider, error) {
	authKey, err := token.AuthKeyFromFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load auth key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   keyID,
		TeamID:  teamID,
	})
	if production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNSProvider{client: client, topic: topic}, nil
}

func (a *APNSProvider) Name() string {
	return "apns"
}

func (a *APNSProvider) Send(ctx context.Context, msg *Message) (string, error) {
	response, err := a.client.PushWithContext(ctx, buildAPNSNotification(a.topic, msg))
	if err != nil {
		return "", fmt.Errorf("failed to send APNS notification: %w", err)
	}
	if !response.Sent() {
		return "", fmt.Errorf("APNS error: %s", response.Reason)
	}
	return response.ApnsID, nil
}

func buildAPNSNotification(topic string, msg *Message) *apns2.Notification {
	aps := map[string]interface{}{
		"alert": map[string]interface{}{
			"title": msg.Title,
			"body":  msg.Body,
		},
		"sound": "default",
	}
	if msg.Category != "" {
		aps["category"] = msg.Category
	}

	payload := map[string]interface{}{"aps": aps}
	for key, value := range msg.Data {
		payload[key] = value
	}

	notification := &apns2.Notification{
		DeviceToken: msg.Token,
		Topic:       topic,
		Payload:     payload,
		Priority:    apns2.PriorityLow,
	}
	if msg.HighPriority {
		notification.Priority = apns2.PriorityHigh
	}
	return notification
}
