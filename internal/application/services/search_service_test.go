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
	"github.com/eventrove/marketplace-backend/internal/domain/repositories"
	"github.com/eventrove/marketplace-backend/pkg/config"
	apperrors "github.com/eventrove/marketplace-backend/pkg/errors"
)

// fakeCandidateRepo serves fixed collections, honoring the store-side
// fast-path filter the same way the document adapter does.
type fakeCandidateRepo struct {
	collections map[string][]*entities.Candidate
	err         error
	reads       int
}

func (r *fakeCandidateRepo) Read(ctx context.Context, collection string) ([]*entities.Candidate, error) {
	return r.FindWithOptions(ctx, collection, repositories.CandidateFilter{}, repositories.FindOptions{})
}

func (r *fakeCandidateRepo) FindWithOptions(_ context.Context, collection string, filter repositories.CandidateFilter, _ repositories.FindOptions) ([]*entities.Candidate, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.reads++

	var out []*entities.Candidate
	for _, c := range r.collections[collection] {
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

func searchTestConfig() config.SearchConfig {
	return config.SearchConfig{
		MaxListLimit:       100,
		MaxSuggestionLimit: 50,
		PackageTTLSeconds:  600,
		SuggestTTLSeconds:  3600,
		FacetTTLSeconds:    86400,
		SpotlightCount:     6,
	}
}

func newTestSearchService(candidates *fakeCandidateRepo, analytics *fakeAnalyticsRepo) *services.SearchService {
	return services.NewSearchService(
		candidates,
		services.NewQueryNormalizer(),
		services.NewSearchRankingService(),
		services.NewResultCacheService(newFakeProvider(), nil),
		services.NewSearchAnalyticsService(analytics),
		services.NewRotationService(),
		searchTestConfig(),
		nil,
	)
}

func supplierFixtures() *fakeCandidateRepo {
	return &fakeCandidateRepo{collections: map[string][]*entities.Candidate{
		entities.CollectionSuppliers: {
			{ID: "s1", Name: "Garden Palace", Category: "Venues", Approved: true, Verified: true, Rating: 4.5},
			{ID: "s2", Name: "Garden Catering", Category: "Catering", Approved: true, Rating: 4.0},
			{ID: "s3", Name: "Hidden Venue", Category: "Venues", Approved: false},
		},
		entities.CollectionPackages: {
			{ID: "p1", Name: "Garden Wedding Package", Category: "Venues", Approved: true},
		},
	}}
}

func TestSearch_RanksAndCaches(t *testing.T) {
	repo := supplierFixtures()
	analytics := newFakeAnalyticsRepo()
	svc := newTestSearchService(repo, analytics)

	raw := map[string]string{"text": "garden"}
	meta := services.RequestMeta{UserID: "u1", SessionID: "sess-1"}

	result, cached, err := svc.Search(context.Background(), entities.CollectionSuppliers, raw, meta)
	require.NoError(t, err)
	assert.False(t, cached)
	// The unapproved supplier never surfaces.
	assert.Equal(t, 2, result.Pagination.Total)
	assert.Equal(t, 1, repo.reads)

	again, cached, err := svc.Search(context.Background(), entities.CollectionSuppliers, raw, meta)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, result.Pagination.Total, again.Pagination.Total)
	assert.Equal(t, 1, repo.reads, "cache hit must not reread the store")
}

func TestSearch_HonorsConfiguredLimitCeiling(t *testing.T) {
	suppliers := make([]*entities.Candidate, 12)
	for i := range suppliers {
		suppliers[i] = &entities.Candidate{
			ID:       string(rune('a' + i)),
			Name:     "Garden Supplier",
			Approved: true,
		}
	}
	repo := &fakeCandidateRepo{collections: map[string][]*entities.Candidate{
		entities.CollectionSuppliers: suppliers,
	}}

	cfg := searchTestConfig()
	cfg.MaxListLimit = 5
	svc := services.NewSearchService(
		repo,
		services.NewQueryNormalizer(),
		services.NewSearchRankingService(),
		services.NewResultCacheService(newFakeProvider(), nil),
		services.NewSearchAnalyticsService(newFakeAnalyticsRepo()),
		services.NewRotationService(),
		cfg,
		nil,
	)

	result, _, err := svc.Search(context.Background(), entities.CollectionSuppliers, map[string]string{
		"limit": "50",
	}, services.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Pagination.Limit)
	assert.Len(t, result.Items, 5)
	assert.Equal(t, 12, result.Pagination.Total)
}

func TestSearch_UnknownCollection(t *testing.T) {
	svc := newTestSearchService(supplierFixtures(), newFakeAnalyticsRepo())

	_, _, err := svc.Search(context.Background(), "venues", map[string]string{}, services.RequestMeta{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestSearch_EmitsEventAfterResponse(t *testing.T) {
	repo := supplierFixtures()
	analytics := newFakeAnalyticsRepo()
	svc := newTestSearchService(repo, analytics)

	_, _, err := svc.Search(context.Background(), entities.CollectionSuppliers, map[string]string{
		"text": "Garden Palace",
	}, services.RequestMeta{UserID: "u1", SessionID: "sess-9"})
	require.NoError(t, err)

	select {
	case event := <-analytics.logged:
		assert.Equal(t, "u1", event.UserID)
		assert.Equal(t, "sess-9", event.SessionID)
		assert.Equal(t, "garden palace", event.NormalizedQuery)
		assert.Equal(t, entities.CollectionSuppliers, event.Collection)
		assert.Equal(t, 1, event.ResultsCount)
		assert.False(t, event.Cached)
		assert.NotEmpty(t, event.Filters)
	case <-time.After(2 * time.Second):
		t.Fatal("search event was never recorded")
	}
}

func TestSearch_StoreFailurePropagatesAsExternal(t *testing.T) {
	repo := &fakeCandidateRepo{err: apperrors.NewExternalError("candidate store unavailable", errors.New("dial timeout"))}
	svc := newTestSearchService(repo, newFakeAnalyticsRepo())

	_, _, err := svc.Search(context.Background(), entities.CollectionSuppliers, map[string]string{}, services.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeExternal, apperrors.TypeOf(err))
}

func TestSearch_InvalidQueryRejected(t *testing.T) {
	svc := newTestSearchService(supplierFixtures(), newFakeAnalyticsRepo())

	longText := make([]byte, 201)
	for i := range longText {
		longText[i] = 'q'
	}
	_, _, err := svc.Search(context.Background(), entities.CollectionSuppliers, map[string]string{
		"text": string(longText),
	}, services.RequestMeta{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestSuggestions_ShortPrefix(t *testing.T) {
	svc := newTestSearchService(supplierFixtures(), newFakeAnalyticsRepo())

	suggestions, err := svc.Suggestions(context.Background(), "g", 10)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestSuggestions_ServedFromAnalytics(t *testing.T) {
	analytics := newFakeAnalyticsRepo()
	analytics.add("garden wedding", time.Now())
	analytics.add("garden wedding", time.Now())
	analytics.add("garden furniture", time.Now())
	svc := newTestSearchService(supplierFixtures(), analytics)

	suggestions, err := svc.Suggestions(context.Background(), "Garden", 10)
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "garden wedding", suggestions[0].Text)
}

func TestSuggestions_HonorsConfiguredLimitCeiling(t *testing.T) {
	analytics := newFakeAnalyticsRepo()
	analytics.add("garden wedding", time.Now())
	analytics.add("garden furniture", time.Now())
	analytics.add("garden marquee", time.Now())

	cfg := searchTestConfig()
	cfg.MaxSuggestionLimit = 1
	svc := services.NewSearchService(
		supplierFixtures(),
		services.NewQueryNormalizer(),
		services.NewSearchRankingService(),
		services.NewResultCacheService(newFakeProvider(), nil),
		services.NewSearchAnalyticsService(analytics),
		services.NewRotationService(),
		cfg,
		nil,
	)

	suggestions, err := svc.Suggestions(context.Background(), "garden", 10)
	require.NoError(t, err)
	assert.Len(t, suggestions, 1)
}

func TestFacets_CountsApprovedOnly(t *testing.T) {
	svc := newTestSearchService(supplierFixtures(), newFakeAnalyticsRepo())

	counts, err := svc.Facets(context.Background(), services.FacetCategories)
	require.NoError(t, err)
	// Two approved Venues entries (one supplier, one package), one
	// Catering; the unapproved Venues supplier is excluded.
	assert.Equal(t, 2, counts["Venues"])
	assert.Equal(t, 1, counts["Catering"])
}

func TestFacets_UnknownKind(t *testing.T) {
	svc := newTestSearchService(supplierFixtures(), newFakeAnalyticsRepo())

	_, err := svc.Facets(context.Background(), "colors")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestSpotlight_FeaturedVerifiedOnly(t *testing.T) {
	repo := &fakeCandidateRepo{collections: map[string][]*entities.Candidate{
		entities.CollectionSuppliers: {
			{ID: "s1", Approved: true, Verified: true, Featured: true},
			{ID: "s2", Approved: true, Verified: true, Featured: true},
			{ID: "s3", Approved: true, Verified: true, Featured: false},
			{ID: "s4", Approved: true, Verified: false, Featured: true},
		},
	}}
	svc := newTestSearchService(repo, newFakeAnalyticsRepo())

	selected, err := svc.Spotlight(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, selected, 2)
	for _, c := range selected {
		assert.True(t, c.Featured)
		assert.True(t, c.Verified)
	}
}

func TestSpotlight_StableWithinTheHour(t *testing.T) {
	repo := &fakeCandidateRepo{collections: map[string][]*entities.Candidate{
		entities.CollectionSuppliers: func() []*entities.Candidate {
			pool := make([]*entities.Candidate, 10)
			for i := range pool {
				pool[i] = &entities.Candidate{
					ID:       string(rune('a' + i)),
					Approved: true, Verified: true, Featured: true,
				}
			}
			return pool
		}(),
	}}
	svc := newTestSearchService(repo, newFakeAnalyticsRepo())

	first, err := svc.Spotlight(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, first, 4)

	// Seed changes at most once across two immediate calls; repeated
	// calls inside one hour return the same sequence.
	again, err := svc.Spotlight(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, again, 4)
	for i := range first {
		assert.Equal(t, first[i].ID, again[i].ID)
	}
}
