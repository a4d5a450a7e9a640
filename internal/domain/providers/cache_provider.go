package providers

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when a key is absent or expired.
var ErrCacheMiss = errors.New("cache: key not found")

// CacheProvider defines the interface for caching operations. Entries
// are immutable once written; expiry is lazy, checked on read.
type CacheProvider interface {
	// Get retrieves a value from cache. Returns ErrCacheMiss for an
	// absent or expired key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with a TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache.
	Delete(ctx context.Context, key string) error

	// Flush removes every entry.
	Flush(ctx context.Context) error

	// Count returns the number of live entries.
	Count(ctx context.Context) (int64, error)
}
