package cache

import (
	"context"

	"time"

	"github.com/karlseguin/ccache/v3"

	"github.com/eventrove/marketplace-backend/internal/domain/providers"
)

// MemoryAdapter implements the CacheProvider interface with an
// in-process ccache instance. Expiry is lazy: expired items are
// reported as misses on read and evicted by ccache's LRU, with no
// sweep thread of our own.
type MemoryAdapter struct {
	cache *ccache.Cache[[]byte]
}

// NewMemoryAdapter creates a new in-process cache adapter
func NewMemoryAdapter(maxEntries int64) *MemoryAdapter {
	if maxEntries <= 0 {
		maxEntries = 5000
	}
	return &MemoryAdapter{
		cache: ccache.New(ccache.Configure[[]byte]().MaxSize(maxEntries)),
	}
}

// Get retrieves a value from cache
func (a *MemoryAdapter) Get(_ context.Context, key string) ([]byte, error) {
	item := a.cache.Get(key)
	if item == nil || item.Expired() {
		return nil, providers.ErrCacheMiss
	}
	return item.Value(), nil
}

// Set stores a value in cache with a TTL
func (a *MemoryAdapter) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	a.cache.Set(key, value, ttl)
	return nil
}

// Delete removes a value from cache
func (a *MemoryAdapter) Delete(_ context.Context, key string) error {
	a.cache.Delete(key)
	return nil
}

// Flush removes every entry
func (a *MemoryAdapter) Flush(_ context.Context) error {
	a.cache.Clear()
	return nil
}

// Count returns the number of live entries
func (a *MemoryAdapter) Count(_ context.Context) (int64, error) {
	return int64(a.cache.ItemCount()), nil
}
