package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventrove/marketplace-backend/internal/domain/entities"
	"github.com/eventrove/marketplace-backend/internal/domain/providers"
	"github.com/eventrove/marketplace-backend/internal/infrastructure/observability"
)

const (
	adaptiveBaseTTL = 120 * time.Second
	adaptiveStepTTL = 130 * time.Second
	adaptiveMaxTTL  = 900 * time.Second
)

// ComputeFunc produces a cacheable payload on miss.
type ComputeFunc func(ctx context.Context) (interface{}, error)

// CacheStats reports result cache activity since creation.
type CacheStats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Entries int64   `json:"entries"`
	HitRate float64 `json:"hit_rate"`
}

// ResultCacheService memoizes discovery payloads behind a key derived
// from the normalized query. Writers racing on an expired key may each
// recompute; that is harmless because computation is a pure idempotent
// read and writes are last-writer-wins.
type ResultCacheService struct {
	provider providers.CacheProvider
	metrics  *observability.Metrics
	logger   zerolog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewResultCacheService creates a new result cache service
func NewResultCacheService(provider providers.CacheProvider, metrics *observability.Metrics) *ResultCacheService {
	return &ResultCacheService{
		provider: provider,
		metrics:  metrics,
		logger:   observability.ComponentLogger("result_cache"),
	}
}

// CacheKey derives the cache key for a normalized query against a
// collection. Field order is fixed and absent fields are omitted, so
// semantically identical queries collide regardless of parameter order.
func CacheKey(collection string, q *entities.SearchQuery) string {
	sum := sha256.Sum256([]byte(collection + "|" + q.Canonical()))
	return collection + ":" + hex.EncodeToString(sum[:])
}

// GetOrCompute returns the cached payload for key, computing and
// storing it on miss. dest is populated either way. The compute runs on
// a context detached from request cancellation: if the client has gone
// away the result still lands in the cache for subsequent callers.
func (s *ResultCacheService) GetOrCompute(ctx context.Context, key string, ttl time.Duration, dest interface{}, compute ComputeFunc) (bool, error) {
	if cached, err := s.provider.Get(ctx, key); err == nil {
		if err := json.Unmarshal(cached, dest); err == nil {
			s.hits.Add(1)
			observability.RecordCacheHit(ctx, s.metrics, "search")
			return true, nil
		}
		// Corrupt entry: treat as a miss and recompute.
		s.logger.Warn().Str("key", key).Msg("discarding corrupt cache entry")
		_ = s.provider.Delete(ctx, key)
	}

	s.misses.Add(1)
	observability.RecordCacheMiss(ctx, s.metrics, "search")

	computeCtx := context.WithoutCancel(ctx)
	payload, err := compute(computeCtx)
	if err != nil {
		return false, err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return false, err
	}
	if err := s.provider.Set(computeCtx, key, data, ttl); err != nil {
		// A failed write only costs the next caller a recompute.
		s.logger.Warn().Str("key", key).Err(err).Msg("failed to store cache entry")
	}

	return false, json.Unmarshal(data, dest)
}

// AdaptiveTTL maps query specificity to a TTL: broad queries have
// volatile result sets and expire quickly, narrow queries live longer.
// The mapping is monotonic, 120s for an unfiltered query up to 900s.
func (s *ResultCacheService) AdaptiveTTL(q *entities.SearchQuery) time.Duration {
	ttl := adaptiveBaseTTL + time.Duration(q.Specificity())*adaptiveStepTTL
	if ttl > adaptiveMaxTTL {
		ttl = adaptiveMaxTTL
	}
	return ttl
}

// Clear performs a full invalidation. There is no per-key
// invalidation; precision is traded for simplicity.
func (s *ResultCacheService) Clear(ctx context.Context) error {
	return s.provider.Flush(ctx)
}

// Stats reports hit/miss counters and the live entry count
func (s *ResultCacheService) Stats(ctx context.Context) CacheStats {
	entries, err := s.provider.Count(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to count cache entries")
	}

	hits := s.hits.Load()
	misses := s.misses.Load()
	stats := CacheStats{
		Hits:    hits,
		Misses:  misses,
		Entries: entries,
	}
	if hits+misses > 0 {
		stats.HitRate = float64(hits) / float64(hits+misses)
	}
	return stats
}
