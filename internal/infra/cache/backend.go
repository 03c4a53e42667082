// Package cache implements the cache-aside layer used by the catalog and
// bookmark services, plus the deterministic key scheme it is addressed by.
package cache

import (
	"context"
	"time"
)

// Backend is the external key-value store contract the cache-aside layer is
// built on.
type Backend interface {
	// Get returns the stored value. The boolean reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key. A non-positive ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes keys in one batch.
	Delete(ctx context.Context, keys ...string) error
	// Keys enumerates keys matching a glob pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}
