package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventrove/marketplace-backend/internal/api/handlers"
	"github.com/eventrove/marketplace-backend/internal/application/services"
	"github.com/eventrove/marketplace-backend/internal/domain/entities"
	"github.com/eventrove/marketplace-backend/internal/domain/providers"
	"github.com/eventrove/marketplace-backend/internal/domain/repositories"
	"github.com/eventrove/marketplace-backend/pkg/config"
)

type stubCandidateRepo struct {
	candidates []*entities.Candidate
}

func (r *stubCandidateRepo) Read(ctx context.Context, collection string) ([]*entities.Candidate, error) {
	return r.FindWithOptions(ctx, collection, repositories.CandidateFilter{}, repositories.FindOptions{})
}

func (r *stubCandidateRepo) FindWithOptions(_ context.Context, _ string, filter repositories.CandidateFilter, _ repositories.FindOptions) ([]*entities.Candidate, error) {
	var out []*entities.Candidate
	for _, c := range r.candidates {
		if filter.ApprovedOnly && !c.Approved {
			continue
		}
		if filter.VerifiedOnly && !c.Verified {
			continue
		}
		if filter.FeaturedOnly && !c.Featured {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type stubCacheProvider struct {
	entries map[string][]byte
}

func (p *stubCacheProvider) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := p.entries[key]; ok {
		return v, nil
	}
	return nil, providers.ErrCacheMiss
}

func (p *stubCacheProvider) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	p.entries[key] = value
	return nil
}

func (p *stubCacheProvider) Delete(_ context.Context, key string) error {
	delete(p.entries, key)
	return nil
}

func (p *stubCacheProvider) Flush(_ context.Context) error {
	p.entries = map[string][]byte{}
	return nil
}

func (p *stubCacheProvider) Count(_ context.Context) (int64, error) {
	return int64(len(p.entries)), nil
}

type stubAnalyticsRepo struct{}

func (stubAnalyticsRepo) LogEvent(context.Context, *entities.SearchEvent) error { return nil }
func (stubAnalyticsRepo) TermCounts(context.Context, time.Time, int) ([]*entities.TrendingTerm, error) {
	return []*entities.TrendingTerm{}, nil
}
func (stubAnalyticsRepo) TermsByPrefix(context.Context, string, int) ([]*repositories.TermRow, error) {
	return []*repositories.TermRow{}, nil
}
func (stubAnalyticsRepo) History(context.Context, string, int, int) ([]*entities.SearchEvent, int, error) {
	return []*entities.SearchEvent{}, 0, nil
}
func (stubAnalyticsRepo) ZeroResultQueries(context.Context, int) ([]*entities.SearchEvent, error) {
	return []*entities.SearchEvent{}, nil
}
func (stubAnalyticsRepo) Overview(context.Context) (*repositories.AnalyticsOverview, error) {
	return &repositories.AnalyticsOverview{}, nil
}
func (stubAnalyticsRepo) DailyVolume(context.Context, int) ([]*repositories.DailyCount, error) {
	return []*repositories.DailyCount{}, nil
}
func (stubAnalyticsRepo) SessionStats(context.Context) (*repositories.SessionStats, error) {
	return &repositories.SessionStats{}, nil
}
func (stubAnalyticsRepo) PerformanceStats(context.Context) (*repositories.PerformanceStats, error) {
	return &repositories.PerformanceStats{}, nil
}

func testSearchConfig() config.SearchConfig {
	return config.SearchConfig{
		MaxListLimit:       100,
		MaxSuggestionLimit: 50,
		PackageTTLSeconds:  600,
		SuggestTTLSeconds:  3600,
		FacetTTLSeconds:    86400,
		SpotlightCount:     6,
	}
}

func newTestHandler(candidates []*entities.Candidate) *handlers.SearchHandler {
	cfg := testSearchConfig()
	svc := services.NewSearchService(
		&stubCandidateRepo{candidates: candidates},
		services.NewQueryNormalizer(),
		services.NewSearchRankingService(),
		services.NewResultCacheService(&stubCacheProvider{entries: map[string][]byte{}}, nil),
		services.NewSearchAnalyticsService(stubAnalyticsRepo{}),
		services.NewRotationService(),
		cfg,
		nil,
	)
	return handlers.NewSearchHandler(svc)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestSearchSuppliers_Envelope(t *testing.T) {
	handler := newTestHandler([]*entities.Candidate{
		{ID: "s1", Name: "Garden Palace", Approved: true},
		{ID: "s2", Name: "Skyline Hall", Approved: true},
	})

	req := httptest.NewRequest("GET", "/api/search/suppliers?text=garden", nil)
	w := httptest.NewRecorder()
	handler.SearchSuppliers(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	body := decodeEnvelope(t, w)
	require.Contains(t, body, "data")
	require.Contains(t, body, "timestamp")
	_, err := time.Parse(time.RFC3339, body["timestamp"].(string))
	assert.NoError(t, err)

	data := body["data"].(map[string]interface{})
	pagination := data["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pagination["total"])
}

func TestSearchSuppliers_CacheHitHeader(t *testing.T) {
	handler := newTestHandler([]*entities.Candidate{
		{ID: "s1", Name: "Garden Palace", Approved: true},
	})

	for i, want := range []string{"MISS", "HIT"} {
		req := httptest.NewRequest("GET", "/api/search/suppliers?text=garden", nil)
		w := httptest.NewRecorder()
		handler.SearchSuppliers(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "call %d", i)
		assert.Equal(t, want, w.Header().Get("X-Cache"), "call %d", i)
	}
}

func TestSearchSuppliers_OversizedTextRejected(t *testing.T) {
	handler := newTestHandler(nil)

	req := httptest.NewRequest("GET", "/api/search/suppliers?text="+strings.Repeat("a", 300), nil)
	w := httptest.NewRecorder()
	handler.SearchSuppliers(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeEnvelope(t, w)
	assert.Contains(t, body, "error")
}

func TestAdvancedSearch_InvalidBody(t *testing.T) {
	handler := newTestHandler(nil)

	req := httptest.NewRequest("POST", "/api/search/advanced", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	handler.AdvancedSearch(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdvancedSearch_CollectionSelector(t *testing.T) {
	handler := newTestHandler([]*entities.Candidate{
		{ID: "p1", Name: "Deluxe Package", Approved: true},
	})

	body := `{"collection":"packages","text":"deluxe","limit":5}`
	req := httptest.NewRequest("POST", "/api/search/advanced", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.AdvancedSearch(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("POST", "/api/search/advanced", strings.NewReader(`{"collection":"unknown"}`))
	w = httptest.NewRecorder()
	handler.AdvancedSearch(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuggestions_ShortQueryReturnsEmpty(t *testing.T) {
	handler := newTestHandler(nil)

	req := httptest.NewRequest("GET", "/api/search/suggestions?q=g", nil)
	w := httptest.NewRecorder()
	handler.Suggestions(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["count"])
}

func TestSpotlight_ReturnsSelection(t *testing.T) {
	handler := newTestHandler([]*entities.Candidate{
		{ID: "s1", Approved: true, Verified: true, Featured: true},
		{ID: "s2", Approved: true, Verified: true, Featured: true},
		{ID: "s3", Approved: true, Verified: false, Featured: true},
	})

	req := httptest.NewRequest("GET", "/api/search/spotlight", nil)
	w := httptest.NewRecorder()
	handler.Spotlight(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["count"])
}

func TestFacets_Handler(t *testing.T) {
	handler := newTestHandler([]*entities.Candidate{
		{ID: "s1", Category: "Venues", Approved: true},
		{ID: "s2", Category: "Venues", Approved: true},
		{ID: "s3", Category: "Catering", Approved: false},
	})

	req := httptest.NewRequest("GET", "/api/search/categories", nil)
	w := httptest.NewRecorder()
	handler.Facets(handlers.FacetCategories)(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	data := body["data"].(map[string]interface{})
	// Both collections are scanned; the stub serves the same set for
	// each, so counts double.
	assert.Equal(t, float64(4), data["Venues"])
}

func TestCacheStatsAndClear(t *testing.T) {
	handler := newTestHandler([]*entities.Candidate{
		{ID: "s1", Name: "Garden Palace", Approved: true},
	})

	req := httptest.NewRequest("GET", "/api/search/suppliers?text=garden", nil)
	handler.SearchSuppliers(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	handler.CacheStats(w, httptest.NewRequest("GET", "/api/search/cache/stats", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["entries"])

	w = httptest.NewRecorder()
	handler.ClearCache(w, httptest.NewRequest("POST", "/api/search/cache/clear", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.CacheStats(w, httptest.NewRequest("GET", "/api/search/cache/stats", nil))
	body = decodeEnvelope(t, w)
	data = body["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["entries"])
}
