package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sharebrasil/portal/internal/platform/storage"
)

// StoreOpener opens the durable object store.
type StoreOpener func(ctx context.Context, credentialsJSON, publicBase string) (storage.Store, error)

// OpenGCS is the StoreOpener used by the binaries.
func OpenGCS(ctx context.Context, credentialsJSON, publicBase string) (storage.Store, error) {
	return storage.NewGCS(ctx, credentialsJSON, publicBase)
}

// NewObjectStore opens the object store through open. Outside production a
// failure falls back to an in-memory store; in production it is fatal since
// receipt URLs would point at objects that are never persisted.
func NewObjectStore(ctx context.Context, cfg *Config, logger *slog.Logger, open StoreOpener) (storage.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	store, err := open(ctx, cfg.GCSCredentialsJSON, cfg.PublicBaseURL())
	if err == nil {
		return store, nil
	}
	if cfg.IsProduction() {
		return nil, fmt.Errorf("open object store: %w", err)
	}
	logger.Warn("object store unavailable, keeping uploads in memory", slog.Any("error", err))
	return storage.NewMemory(cfg.PublicBaseURL()), nil
}
