package storage

import (
	"context"
	"io"

	"github.com/dukerupert/billing-importer/internal"
)

// Storage is where finished run logs are archived.
type Storage interface {
	// Put stores a file and returns its URL/path for retrieval.
	// The key should be unique per run (e.g., "<run id>/account_import_failures_<run id>.log").
	Put(ctx context.Context, key string, content io.Reader, contentType string) (string, error)
}

// NewStorage creates a Storage implementation based on configuration.
// Returns nil with no error when archiving is disabled ("none").
func NewStorage(ctx context.Context, cfg internal.ArchiveConfig) (Storage, error) {
	switch cfg.Provider {
	case "none", "":
		return nil, nil
	case "local":
		return NewLocalStorage(cfg.LocalPath)
	case "s3":
		return NewS3Storage(ctx, S3Config{
			Bucket:      cfg.S3Bucket,
			Region:      cfg.S3Region,
			Endpoint:    cfg.S3Endpoint,
			AccessKeyID: cfg.S3AccessKey,
			SecretKey:   cfg.S3SecretKey,
			Prefix:      cfg.S3Prefix,
		})
	default:
		return nil, ErrUnknownProvider(cfg.Provider)
	}
}
