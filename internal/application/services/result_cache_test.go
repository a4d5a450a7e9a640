package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventrove/marketplace-backend/internal/application/services"
	"github.com/eventrove/marketplace-backend/internal/domain/entities"
	"github.com/eventrove/marketplace-backend/internal/domain/providers"
)

// fakeProvider is an in-memory CacheProvider with instant expiry
// control, so cache tests do not depend on wall-clock sleeps.
type fakeProvider struct {
	entries map[string][]byte
	setErr  error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{entries: make(map[string][]byte)}
}

func (p *fakeProvider) Get(_ context.Context, key string) ([]byte, error) {
	if value, ok := p.entries[key]; ok {
		return value, nil
	}
	return nil, providers.ErrCacheMiss
}

func (p *fakeProvider) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if p.setErr != nil {
		return p.setErr
	}
	p.entries[key] = value
	return nil
}

func (p *fakeProvider) Delete(_ context.Context, key string) error {
	delete(p.entries, key)
	return nil
}

func (p *fakeProvider) Flush(_ context.Context) error {
	p.entries = make(map[string][]byte)
	return nil
}

func (p *fakeProvider) Count(_ context.Context) (int64, error) {
	return int64(len(p.entries)), nil
}

type payload struct {
	Value string `json:"value"`
}

func TestGetOrCompute_MissThenHit(t *testing.T) {
	cache := services.NewResultCacheService(newFakeProvider(), nil)
	computes := 0
	compute := func(ctx context.Context) (interface{}, error) {
		computes++
		return payload{Value: "computed"}, nil
	}

	var first payload
	hit, err := cache.GetOrCompute(context.Background(), "k", time.Minute, &first, compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "computed", first.Value)

	var second payload
	hit, err = cache.GetOrCompute(context.Background(), "k", time.Minute, &second, compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "computed", second.Value)
	assert.Equal(t, 1, computes)
}

func TestGetOrCompute_ComputeErrorPropagates(t *testing.T) {
	cache := services.NewResultCacheService(newFakeProvider(), nil)
	wantErr := errors.New("store down")

	var dest payload
	hit, err := cache.GetOrCompute(context.Background(), "k", time.Minute, &dest, func(ctx context.Context) (interface{}, error) {
		return nil, wantErr
	})
	assert.False(t, hit)
	assert.ErrorIs(t, err, wantErr)
}

func TestGetOrCompute_CorruptEntryIsAMiss(t *testing.T) {
	provider := newFakeProvider()
	provider.entries["k"] = []byte("{not json")
	cache := services.NewResultCacheService(provider, nil)

	var dest payload
	hit, err := cache.GetOrCompute(context.Background(), "k", time.Minute, &dest, func(ctx context.Context) (interface{}, error) {
		return payload{Value: "fresh"}, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "fresh", dest.Value)

	// The corrupt entry was replaced.
	var again payload
	hit, err = cache.GetOrCompute(context.Background(), "k", time.Minute, &again, func(ctx context.Context) (interface{}, error) {
		t.Fatal("should not recompute")
		return nil, nil
	})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "fresh", again.Value)
}

func TestGetOrCompute_StoreFailureStillServes(t *testing.T) {
	provider := newFakeProvider()
	provider.setErr = errors.New("write refused")
	cache := services.NewResultCacheService(provider, nil)

	var dest payload
	hit, err := cache.GetOrCompute(context.Background(), "k", time.Minute, &dest, func(ctx context.Context) (interface{}, error) {
		return payload{Value: "computed"}, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "computed", dest.Value)
}

func TestGetOrCompute_SurvivesCancelledRequest(t *testing.T) {
	provider := newFakeProvider()
	cache := services.NewResultCacheService(provider, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var dest payload
	_, err := cache.GetOrCompute(ctx, "k", time.Minute, &dest, func(ctx context.Context) (interface{}, error) {
		// The compute context must not inherit the cancellation.
		require.NoError(t, ctx.Err())
		return payload{Value: "computed"}, nil
	})
	require.NoError(t, err)
	assert.Contains(t, provider.entries, "k")
}

func TestCacheKey_OrderIndependent(t *testing.T) {
	a := &entities.SearchQuery{Text: "wedding", Amenities: []string{"Parking", "wifi"}, Page: 1, Limit: 20}
	b := &entities.SearchQuery{Text: "Wedding", Amenities: []string{"WIFI", "parking"}, Page: 1, Limit: 20}

	assert.Equal(t, services.CacheKey("suppliers", a), services.CacheKey("suppliers", b))
	assert.NotEqual(t, services.CacheKey("suppliers", a), services.CacheKey("packages", a))
}

func TestAdaptiveTTL_MonotonicAndBounded(t *testing.T) {
	cache := services.NewResultCacheService(newFakeProvider(), nil)

	broad := &entities.SearchQuery{Page: 1, Limit: 20}
	assert.Equal(t, 120*time.Second, cache.AdaptiveTTL(broad))

	previous := time.Duration(0)
	q := &entities.SearchQuery{Page: 1, Limit: 20}
	steps := []func(){
		func() { q.Text = "dj" },
		func() { q.Category = "Entertainment" },
		func() { q.Location = "Accra" },
		func() { q.MinPrice = floatPtr(100) },
		func() { q.MinRating = floatPtr(4) },
		func() { q.MinGuests = intPtr(10) },
		func() { q.Amenities = []string{"wifi"} },
		func() { q.VerifiedOnly = true },
	}
	for _, step := range steps {
		step()
		ttl := cache.AdaptiveTTL(q)
		assert.GreaterOrEqual(t, ttl, previous)
		assert.LessOrEqual(t, ttl, 900*time.Second)
		previous = ttl
	}
	// Fully specified queries hit the cap.
	assert.Equal(t, 900*time.Second, previous)
}

func TestClearAndStats(t *testing.T) {
	provider := newFakeProvider()
	cache := services.NewResultCacheService(provider, nil)

	var dest payload
	_, err := cache.GetOrCompute(context.Background(), "k1", time.Minute, &dest, func(ctx context.Context) (interface{}, error) {
		return payload{Value: "v"}, nil
	})
	require.NoError(t, err)
	_, err = cache.GetOrCompute(context.Background(), "k1", time.Minute, &dest, func(ctx context.Context) (interface{}, error) {
		return nil, errors.New("unreachable")
	})
	require.NoError(t, err)

	stats := cache.Stats(context.Background())
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Entries)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)

	require.NoError(t, cache.Clear(context.Background()))
	stats = cache.Stats(context.Background())
	assert.Equal(t, int64(0), stats.Entries)
}
