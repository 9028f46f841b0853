package store

import (
	"context"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// MemoryStore is an in-process Store backed by go-cache. It is the default
// backend; contents do not survive a restart.
type MemoryStore struct {
	cache *cache.Cache
}

// NewMemoryStore creates a new in-memory store. defaultTTL applies to entries
// stored with a non-positive TTL.
func NewMemoryStore(defaultTTL time.Duration) *MemoryStore {
	if defaultTTL <= 0 {
		defaultTTL = cache.NoExpiration
	}
	return &MemoryStore{
		cache: cache.New(defaultTTL, 2*time.Minute),
	}
}

// Get returns the value for key if present and unexpired.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, found := s.cache.Get(key)
	if !found {
		return nil, false, nil
	}
	data, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}
	return data, true, nil
}

// Put stores value under key with the given TTL.
func (s *MemoryStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	s.cache.Set(key, value, ttl)
	return nil
}

// Delete removes a key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
