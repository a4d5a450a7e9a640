package services

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/eventrove/marketplace-backend/internal/domain/entities"
	"github.com/eventrove/marketplace-backend/internal/domain/repositories"
	apperrors "github.com/eventrove/marketplace-backend/pkg/errors"
)

const (
	maxAnalyticsLimit = 50

	// Autocomplete blends frequency with recency: a term seen within
	// the last day earns up to recencyWeight on top of its raw count.
	recencyWeight  = 10.0
	recencyHalfAge = 24 * time.Hour
)

// SearchAnalyticsService records completed searches and aggregates them
// into trending, popular and autocomplete signals. Recording is
// best-effort and never fails or delays the search that triggered it.
type SearchAnalyticsService struct {
	repo repositories.SearchAnalyticsRepository
}

// NewSearchAnalyticsService creates a new search analytics service
func NewSearchAnalyticsService(repo repositories.SearchAnalyticsRepository) *SearchAnalyticsService {
	return &SearchAnalyticsService{repo: repo}
}

// RecordSearch appends a search event in the background. The request
// context may already be cancelled by the time the write runs, so a
// fresh context with a short timeout is used; failures are logged and
// swallowed.
func (s *SearchAnalyticsService) RecordSearch(event *entities.SearchEvent) {
	event.NormalizedQuery = NormalizeTerm(event.QueryText)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.repo.LogEvent(ctx, event); err != nil {
			log.Warn().Err(err).Str("query", event.QueryText).Msg("failed to log search event")
		}
	}()
}

// Autocomplete ranks known query terms matching prefix by a blend of
// frequency and recency. Prefixes shorter than two characters return
// an empty list without touching storage.
func (s *SearchAnalyticsService) Autocomplete(ctx context.Context, prefix string, limit int) ([]*entities.Suggestion, error) {
	normalized := NormalizeTerm(prefix)
	if utf8.RuneCountInString(normalized) < 2 {
		return []*entities.Suggestion{}, nil
	}
	limit = clampLimit(limit, 10)

	// Over-fetch so the recency blend can reorder before truncation.
	rows, err := s.repo.TermsByPrefix(ctx, normalized, limit*3)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	suggestions := make([]*entities.Suggestion, 0, len(rows))
	for _, row := range rows {
		suggestions = append(suggestions, &entities.Suggestion{
			Text:  row.Term,
			Score: blendScore(row.Count, now.Sub(row.LastSeen)),
		})
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

// Trending returns terms ranked by count within the requested rolling
// window. An unrecognized window is a validation error, not a silent
// fallback.
func (s *SearchAnalyticsService) Trending(ctx context.Context, window string, limit int) ([]*entities.TrendingTerm, error) {
	d, ok := entities.TrendingWindow(window).Duration()
	if !ok {
		return nil, apperrors.NewValidationErrorf("invalid time range %q", window)
	}
	limit = clampLimit(limit, 10)

	terms, err := s.repo.TermCounts(ctx, time.Now().Add(-d), limit)
	if err != nil {
		return nil, err
	}
	if terms == nil {
		terms = []*entities.TrendingTerm{}
	}
	return terms, nil
}

// Popular returns the all-time frequency ranking
func (s *SearchAnalyticsService) Popular(ctx context.Context, limit int) ([]*entities.TrendingTerm, error) {
	limit = clampLimit(limit, 10)

	terms, err := s.repo.TermCounts(ctx, time.Time{}, limit)
	if err != nil {
		return nil, err
	}
	if terms == nil {
		terms = []*entities.TrendingTerm{}
	}
	return terms, nil
}

// History returns one page of a user's past search events
func (s *SearchAnalyticsService) History(ctx context.Context, userID string, page, limit int) ([]*entities.SearchEvent, *entities.Pagination, error) {
	if page < 1 {
		page = 1
	}
	limit = clampLimit(limit, 20)

	events, total, err := s.repo.History(ctx, userID, page, limit)
	if err != nil {
		return nil, nil, err
	}
	if events == nil {
		events = []*entities.SearchEvent{}
	}

	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}
	return events, &entities.Pagination{Total: total, Page: page, Limit: limit, Pages: pages}, nil
}

// Overview aggregates all-time search activity for the admin dashboard
func (s *SearchAnalyticsService) Overview(ctx context.Context) (*repositories.AnalyticsOverview, []*entities.SearchEvent, error) {
	overview, err := s.repo.Overview(ctx)
	if err != nil {
		return nil, nil, err
	}

	zeroResult, err := s.repo.ZeroResultQueries(ctx, 20)
	if err != nil {
		return nil, nil, err
	}
	return overview, zeroResult, nil
}

// Trends returns per-day search volume for the trailing days
func (s *SearchAnalyticsService) Trends(ctx context.Context, days int) ([]*repositories.DailyCount, error) {
	if days <= 0 || days > 90 {
		days = 30
	}
	return s.repo.DailyVolume(ctx, days)
}

// UserBehavior aggregates per-session statistics
func (s *SearchAnalyticsService) UserBehavior(ctx context.Context) (*repositories.SessionStats, error) {
	return s.repo.SessionStats(ctx)
}

// Performance splits search latency by cache outcome
func (s *SearchAnalyticsService) Performance(ctx context.Context) (*repositories.PerformanceStats, error) {
	return s.repo.PerformanceStats(ctx)
}

// NormalizeTerm lowercases a query term and collapses interior
// whitespace so trivially different spellings aggregate together.
func NormalizeTerm(term string) string {
	return strings.Join(strings.Fields(strings.ToLower(term)), " ")
}

// blendScore favors frequency, with a recency bonus decaying over age
func blendScore(count int64, age time.Duration) float64 {
	if age < 0 {
		age = 0
	}
	return float64(count) + recencyWeight/(1.0+age.Hours()/recencyHalfAge.Hours())
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxAnalyticsLimit {
		return maxAnalyticsLimit
	}
	return limit
}
