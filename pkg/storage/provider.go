package storage

import (
	"context"
	"fmt"
)

const (
	ProviderLocal  = "local"
	ProviderS3     = "s3"
	ProviderGCS    = "gcs"
	ProviderMemory = "memory"
)

// Options selects and configures a provider.
type Options struct {
	Provider      string
	LocalPath     string
	PublicBaseURL string
	SigningSecret string
	S3            S3Options
	GCS           GCSOptions
}

func NewProvider(ctx context.Context, opts Options) (StorageProvider, error) {
	switch opts.Provider {
	case ProviderLocal:
		return NewLocalStorage(opts.LocalPath, opts.PublicBaseURL, opts.SigningSecret)
	case ProviderS3:
		return NewAWSS3Storage(ctx, opts.S3)
	case ProviderGCS:
		return NewGCPStorage(ctx, opts.GCS)
	case ProviderMemory:
		return NewMemoryStorage(opts.PublicBaseURL, opts.SigningSecret), nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", opts.Provider)
	}
}
