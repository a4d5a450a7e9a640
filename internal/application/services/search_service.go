package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/eventrove/marketplace-backend/internal/domain/entities"
	"github.com/eventrove/marketplace-backend/internal/domain/repositories"
	"github.com/eventrove/marketplace-backend/internal/infrastructure/observability"
	"github.com/eventrove/marketplace-backend/pkg/config"
	apperrors "github.com/eventrove/marketplace-backend/pkg/errors"
)

// Facet kinds served by the directory.
const (
	FacetCategories = "categories"
	FacetAmenities  = "amenities"
	FacetLocations  = "locations"
)

// RequestMeta carries the caller identity the external auth
// collaborator resolved for this request.
type RequestMeta struct {
	UserID    string
	SessionID string
}

// SearchService is the discovery pipeline: normalize, serve from the
// result cache or fetch-and-rank, then hand the completed search to
// the analytics aggregator off the critical path.
type SearchService struct {
	candidates repositories.CandidateRepository
	normalizer *QueryNormalizer
	ranker     *SearchRankingService
	cache      *ResultCacheService
	analytics  *SearchAnalyticsService
	rotation   *RotationService
	cfg        config.SearchConfig
	metrics    *observability.Metrics
}

// NewSearchService creates a new search service
func NewSearchService(
	candidates repositories.CandidateRepository,
	normalizer *QueryNormalizer,
	ranker *SearchRankingService,
	cache *ResultCacheService,
	analytics *SearchAnalyticsService,
	rotation *RotationService,
	cfg config.SearchConfig,
	metrics *observability.Metrics,
) *SearchService {
	return &SearchService{
		candidates: candidates,
		normalizer: normalizer,
		ranker:     ranker,
		cache:      cache,
		analytics:  analytics,
		rotation:   rotation,
		cfg:        cfg,
		metrics:    metrics,
	}
}

// Search runs the full discovery pipeline for one collection. The
// returned flag reports whether the page came from cache.
func (s *SearchService) Search(ctx context.Context, collection string, raw map[string]string, meta RequestMeta) (*entities.SearchResult, bool, error) {
	if collection != entities.CollectionSuppliers && collection != entities.CollectionPackages {
		return nil, false, apperrors.NewValidationErrorf("unknown collection %q", collection)
	}

	start := time.Now()

	query, err := s.normalizer.Normalize(raw, SearchLimits().WithMaxLimit(s.cfg.MaxListLimit))
	if err != nil {
		return nil, false, err
	}

	ttl := time.Duration(s.cfg.PackageTTLSeconds) * time.Second
	if collection == entities.CollectionSuppliers {
		// Primary supplier search uses the adaptive policy instead of
		// a fixed TTL.
		ttl = s.cache.AdaptiveTTL(query)
	}

	var result entities.SearchResult
	hit, err := s.cache.GetOrCompute(ctx, CacheKey(collection, query), ttl, &result, func(ctx context.Context) (interface{}, error) {
		return s.fetchAndRank(ctx, collection, query)
	})
	if err != nil {
		return nil, false, err
	}

	duration := time.Since(start)
	observability.RecordSearchMetric(ctx, s.metrics, collection, hit, duration)
	s.recordEvent(meta, collection, query, &result, hit, duration)

	return &result, hit, nil
}

// fetchAndRank pulls the candidate set and runs the ranker over it.
// The store-side filter is only a fast path; the ranker re-applies
// every hard filter.
func (s *SearchService) fetchAndRank(ctx context.Context, collection string, query *entities.SearchQuery) (*entities.SearchResult, error) {
	filter := repositories.CandidateFilter{
		ApprovedOnly: true,
		VerifiedOnly: query.VerifiedOnly,
		FeaturedOnly: query.FeaturedOnly,
	}
	candidates, err := s.candidates.FindWithOptions(ctx, collection, filter, repositories.FindOptions{})
	if err != nil {
		return nil, err
	}
	return s.ranker.Rank(candidates, query), nil
}

// Suggestions serves autocomplete for a prefix, cached with a fixed TTL
func (s *SearchService) Suggestions(ctx context.Context, prefix string, limit int) ([]*entities.Suggestion, error) {
	limits := SuggestionLimits().WithMaxLimit(s.cfg.MaxSuggestionLimit)
	if utf8.RuneCountInString(prefix) > limits.MaxTextLen {
		return nil, apperrors.NewValidationErrorf("query text exceeds %d characters", limits.MaxTextLen)
	}
	if limit <= 0 {
		limit = limits.DefaultLimit
	}
	if limit > limits.MaxLimit {
		limit = limits.MaxLimit
	}

	normalized := NormalizeTerm(prefix)
	if utf8.RuneCountInString(normalized) < 2 {
		return []*entities.Suggestion{}, nil
	}

	key := fmt.Sprintf("suggest:%s:%d", normalized, limit)
	ttl := time.Duration(s.cfg.SuggestTTLSeconds) * time.Second

	var suggestions []*entities.Suggestion
	_, err := s.cache.GetOrCompute(ctx, key, ttl, &suggestions, func(ctx context.Context) (interface{}, error) {
		return s.analytics.Autocomplete(ctx, normalized, limit)
	})
	if err != nil {
		return nil, err
	}
	if suggestions == nil {
		suggestions = []*entities.Suggestion{}
	}
	return suggestions, nil
}

// Facets returns aggregate counts of approved candidates grouped by
// one attribute, cached for a day.
func (s *SearchService) Facets(ctx context.Context, kind string) (map[string]int, error) {
	switch kind {
	case FacetCategories, FacetAmenities, FacetLocations:
	default:
		return nil, apperrors.NewValidationErrorf("unknown facet %q", kind)
	}

	ttl := time.Duration(s.cfg.FacetTTLSeconds) * time.Second

	var counts map[string]int
	_, err := s.cache.GetOrCompute(ctx, "facets:"+kind, ttl, &counts, func(ctx context.Context) (interface{}, error) {
		return s.computeFacet(ctx, kind)
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// computeFacet aggregates over the full candidate set; approval is
// checked here rather than through the store-side fast path.
func (s *SearchService) computeFacet(ctx context.Context, kind string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, collection := range []string{entities.CollectionSuppliers, entities.CollectionPackages} {
		candidates, err := s.candidates.Read(ctx, collection)
		if err != nil {
			return nil, err
		}
		for _, c := range candidates {
			if !c.Approved {
				continue
			}
			switch kind {
			case FacetCategories:
				if c.Category != "" {
					counts[c.Category]++
				}
			case FacetAmenities:
				for _, a := range c.Amenities {
					counts[a]++
				}
			case FacetLocations:
				if c.Location != "" {
					counts[c.Location]++
				}
			}
		}
	}
	return counts, nil
}

// Spotlight returns the current hour's deterministic rotation of
// featured, verified suppliers. The pool is read sorted by _id so
// every instance permutes the same input.
func (s *SearchService) Spotlight(ctx context.Context, count int) ([]*entities.Candidate, error) {
	if count <= 0 {
		count = s.cfg.SpotlightCount
	}

	pool, err := s.candidates.FindWithOptions(ctx, entities.CollectionSuppliers, repositories.CandidateFilter{
		ApprovedOnly: true,
		VerifiedOnly: true,
		FeaturedOnly: true,
	}, repositories.FindOptions{SortBy: "_id"})
	if err != nil {
		return nil, err
	}

	selected := s.rotation.SelectSpotlight(pool, SeedForTime(time.Now()), count)
	if selected == nil {
		selected = []*entities.Candidate{}
	}
	return selected, nil
}

// ClearCache performs a full search cache invalidation
func (s *SearchService) ClearCache(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

// CacheStats reports result cache activity
func (s *SearchService) CacheStats(ctx context.Context) CacheStats {
	return s.cache.Stats(ctx)
}

// recordEvent dispatches the search to the analytics aggregator after
// the response is assembled; the write never blocks the response.
func (s *SearchService) recordEvent(meta RequestMeta, collection string, query *entities.SearchQuery, result *entities.SearchResult, cached bool, duration time.Duration) {
	filters, err := json.Marshal(query)
	if err != nil {
		filters = nil
	}

	s.analytics.RecordSearch(&entities.SearchEvent{
		UserID:       meta.UserID,
		SessionID:    meta.SessionID,
		QueryText:    query.Text,
		Filters:      filters,
		Collection:   collection,
		ResultsCount: result.Pagination.Total,
		DurationMs:   int(duration.Milliseconds()),
		Cached:       cached,
	})
}
