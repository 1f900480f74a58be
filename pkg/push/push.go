package push

import (
	"context"
	"errors"
	"fmt"
)

const (
	PlatformAndroid = "android"
	PlatformIOS     = "ios"
)

var ErrUnsupportedPlatform = errors.New("no push provider for platform")

// Message is a single device notification. Data is delivered alongside the
// alert and is what the app reads to deep link.
type Message struct {
	Token        string
	Title        string
	Body         string
	Category     string
	Data         map[string]string
	HighPriority bool
}

type Provider interface {
	Send(ctx context.Context, msg *Message) (string, error)
	Name() string
}

type Config struct {
	FCMCredentialsFile string
	APNSKeyFile        string
	APNSKeyID          string
	APNSTeamID         string
	APNSTopic          string
	APNSProduction     bool
}

// Router sends each message through the provider registered for the
// device platform.
type Router struct {
	providers map[string]Provider
}

func NewRouter(providers map[string]Provider) *Router {
	return &Router{providers: providers}
}

// NewRouterFromConfig builds a provider for every platform that has
// credentials. It returns nil when no platform is configured.
func NewRouterFromConfig(ctx context.Context, cfg *Config) (*Router, error) {
	providers := make(map[string]Provider)

	if cfg.FCMCredentialsFile != "" {
		fcm, err := NewFCMProvider(ctx, cfg.FCMCredentialsFile)
		if err != nil {
			return nil, err
		}
		providers[PlatformAndroid] = fcm
	}

	if cfg.APNSKeyFile != "" {
		apns, err := NewAPNSProvider(cfg.APNSKeyFile, cfg.APNSKeyID, cfg.APNSTeamID, cfg.APNSTopic, cfg.APNSProduction)
		if err != nil {
			return nil, err
		}
		providers[PlatformIOS] = apns
	}

	if len(providers) == 0 {
		return nil, nil
	}
	return NewRouter(providers), nil
}

func (r *Router) Push(ctx context.Context, platform string, msg *Message) (string, error) {
	provider, ok := r.providers[platform]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, platform)
	}
	if msg.Token == "" {
		return "", errors.New("device token is empty")
	}
	return provider.Send(ctx, msg)
}

func (r *Router) Platforms() []string {
	platforms := make([]string, 0, len(r.providers))
	for _, p := range []string{PlatformAndroid, PlatformIOS} {
		if _, ok := r.providers[p]; ok {
			platforms = append(platforms, p)
		}
	}
	return platforms
}
