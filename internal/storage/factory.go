package storage

import (
	"context"
	"fmt"

	"github.com/dln-law/payments-portal/internal/config"
)

type FactoryResult struct {
	Driver string
	Store  Store

	// Close releases the backing connection. Always non-nil.
	Close func() error
}

// FromConfig builds the configured store. Redis connectivity is checked up
// front so a bad URL fails at startup rather than on the first submission.
func FromConfig(ctx context.Context, cfg config.StorageConfig) (FactoryResult, error) {
	switch cfg.Driver {
	case "", config.StorageMemory:
		return FactoryResult{
			Driver: config.StorageMemory,
			Store:  NewMemoryStore(),
			Close:  func() error { return nil },
		}, nil

	case config.StorageRedis:
		if cfg.RedisURL == "" {
			return FactoryResult{}, fmt.Errorf("storage: redis_url is required for the redis driver")
		}
		client, err := Connect(ctx, cfg.RedisURL)
		if err != nil {
			return FactoryResult{}, err
		}
		store := NewRedisStore(client, cfg.KeyPrefix, cfg.TTL)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return FactoryResult{}, fmt.Errorf("failed to reach redis: %w", err)
		}
		return FactoryResult{Driver: config.StorageRedis, Store: store, Close: store.Close}, nil

	default:
		return FactoryResult{}, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
