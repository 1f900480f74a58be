package storage

import (
	"context"
	"errors"
	"fmt"
)

var ErrObjectNotFound = errors.New("object not found")

// Store keeps small documents under slash separated keys.
type Store interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Name() string
}

type Config struct {
	Provider string // s3, gcs, local, or empty to disable

	Bucket string

	AWSRegion    string
	AWSAccessKey string
	AWSSecretKey string

	GCSCredentialsFile string

	LocalPath string
}

// NewStore returns nil when no provider is configured.
func NewStore(ctx context.Context, cfg *Config) (Store, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "s3":
		return NewS3Store(ctx, cfg.AWSRegion, cfg.Bucket, cfg.AWSAccessKey, cfg.AWSSecretKey)
	case "gcs":
		return NewGCSStore(ctx, cfg.Bucket, cfg.GCSCredentialsFile)
	case "local":
		return NewLocalStore(cfg.LocalPath)
	default:
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.Provider)
	}
}
