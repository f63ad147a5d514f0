package storage

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"media-store/internal/config"
	domain "media-store/internal/domain/media"
	"media-store/internal/infrastructure/metrics"
)

// New creates the storage backend selected by configuration.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.Storage, error) {
	if cfg.IsLocalStorage() {
		localStorage, err := NewLocalStorage(cfg, log)
		if err != nil {
			return nil, err
		}
		return localStorage, nil
	}

	s3Storage, err := NewS3Storage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return s3Storage, nil
}

func observe(backend, operation string, start time.Time, err *error) {
	status := "success"
	if err != nil && *err != nil {
		status = "error"
	}
	metrics.RecordStorageOperation(backend, operation, status, time.Since(start).Seconds())
}
