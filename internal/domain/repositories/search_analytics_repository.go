package repositories

import (
	"context"
	"time"

	"github.com/eventrove/marketplace-backend/internal/domain/entities"
)

// TermRow is a grouped query term with frequency and last occurrence.
type TermRow struct {
	Term     string
	Count    int64
	LastSeen time.Time
}

// AnalyticsOverview aggregates all-time search activity.
type AnalyticsOverview struct {
	TotalSearches  int64   `json:"total_searches"`
	UniqueSessions int64   `json:"unique_sessions"`
	AvgResults     float64 `json:"avg_results"`
	CacheHitRate   float64 `json:"cache_hit_rate"`
	ZeroResultRate float64 `json:"zero_result_rate"`
}

// DailyCount is one day of search volume.
type DailyCount struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

// SessionStats summarizes per-session behavior.
type SessionStats struct {
	Sessions              int64   `json:"sessions"`
	AvgSearchesPerSession float64 `json:"avg_searches_per_session"`
	AvgDurationMs         float64 `json:"avg_duration_ms"`
}

// PerformanceStats splits latency by cache outcome.
type PerformanceStats struct {
	AvgDurationMs   float64 `json:"avg_duration_ms"`
	AvgCachedMs     float64 `json:"avg_cached_ms"`
	AvgUncachedMs   float64 `json:"avg_uncached_ms"`
	CacheHitRate    float64 `json:"cache_hit_rate"`
	SearchesLast24h int64   `json:"searches_last_24h"`
}

// SearchAnalyticsRepository persists and aggregates search events.
type SearchAnalyticsRepository interface {
	// LogEvent appends a search event.
	LogEvent(ctx context.Context, event *entities.SearchEvent) error

	// TermCounts returns normalized terms by frequency since the given
	// time. A zero time means all time.
	TermCounts(ctx context.Context, since time.Time, limit int) ([]*entities.TrendingTerm, error)

	// TermsByPrefix returns grouped terms matching a normalized prefix.
	TermsByPrefix(ctx context.Context, prefix string, limit int) ([]*TermRow, error)

	// History returns one page of a user's past events plus the total.
	History(ctx context.Context, userID string, page, limit int) ([]*entities.SearchEvent, int, error)

	// ZeroResultQueries returns recent searches that produced no results.
	ZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error)

	// Overview aggregates all-time activity.
	Overview(ctx context.Context) (*AnalyticsOverview, error)

	// DailyVolume returns per-day search counts for the trailing days.
	DailyVolume(ctx context.Context, days int) ([]*DailyCount, error)

	// SessionStats aggregates per-session behavior.
	SessionStats(ctx context.Context) (*SessionStats, error)

	// PerformanceStats splits latency by cache outcome.
	PerformanceStats(ctx context.Context) (*PerformanceStats, error)
}
