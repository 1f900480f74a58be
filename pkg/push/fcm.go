package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

type FCMProvider struct {
	client *messaging.Client
}

func NewFCMProvider(ctx context.Context, credentialsFile string) (*FCMProvider, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	return &FCMProvider{client: client}, nil
}

func (f *FCMProvider) Name() string {
	return "fcm"
}

func (f *FCMProvider) Send(ctx context.Context, msg *Message) (string, error) {
	id, err := f.client.Send(ctx, buildFCMMessage(msg))
	if err != nil {
		return "", fmt.Errorf("failed to send FCM message: %w", err)
	}
	return id, nil
}

func buildFCMMessage(msg *Message) *messaging.Message {
	priority := "normal"
	if msg.HighPriority {
		priority = "high"
	}

	return &messaging.Message{
		Token: msg.Token,
		Data:  msg.Data,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Android: &messaging.AndroidConfig{
			Priority: priority,
			Notification: &messaging.AndroidNotification{
				Tag:       msg.Category,
				ChannelID: msg.Category,
			},
		},
	}
}
