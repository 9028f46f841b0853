// Package store provides the key-value store backing provider response
// caches. The aggregator's snapshot itself is held in memory only; the store
// exists so individual adapters can survive transient upstream outages, and
// optionally survive process restarts when backed by Postgres.
package store

import (
	"context"
	"time"
)

// Store is a minimal TTL'd key-value interface.
type Store interface {
	// Get returns the value for key. The second return is false when the key
	// is absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores value under key with the given TTL. A non-positive TTL means
	// no expiry.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}
