package database

import (
	"context"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"

	"github.com/eventrove/marketplace-backend/internal/domain/entities"
	"github.com/eventrove/marketplace-backend/internal/domain/repositories"
	"github.com/eventrove/marketplace-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/eventrove/marketplace-backend/pkg/errors"
)

// SearchAnalyticsAdapter implements SearchAnalyticsRepository over the
// append-only search_events table.
type SearchAnalyticsAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSearchAnalyticsAdapter creates a new search analytics adapter
func NewSearchAnalyticsAdapter(client *postgres.Client) repositories.SearchAnalyticsRepository {
	return &SearchAnalyticsAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// LogEvent appends a search event
func (a *SearchAnalyticsAdapter) LogEvent(ctx context.Context, event *entities.SearchEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	record := goqu.Record{
		"id":               event.ID,
		"user_id":          event.UserID,
		"session_id":       event.SessionID,
		"query_text":       event.QueryText,
		"normalized_query": event.NormalizedQuery,
		"filters":          []byte(event.Filters),
		"collection":       event.Collection,
		"results_count":    event.ResultsCount,
		"duration_ms":      event.DurationMs,
		"cached":           event.Cached,
		"created_at":       event.CreatedAt,
	}

	query, args, err := a.db.Insert("search_events").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build event insert", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to log search event", err)
	}

	return nil
}

// TermCounts returns normalized terms by frequency since the given time
func (a *SearchAnalyticsAdapter) TermCounts(ctx context.Context, since time.Time, limit int) ([]*entities.TrendingTerm, error) {
	if limit <= 0 {
		limit = 10
	}

	ds := a.db.From("search_events").
		Select(goqu.C("normalized_query"), goqu.COUNT("*").As("count")).
		Where(goqu.C("normalized_query").Neq("")).
		GroupBy(goqu.C("normalized_query")).
		Order(goqu.I("count").Desc(), goqu.C("normalized_query").Asc()).
		Limit(uint(limit))
	if !since.IsZero() {
		ds = ds.Where(goqu.C("created_at").Gte(since))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build term counts query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query term counts", err)
	}
	defer rows.Close()

	var terms []*entities.TrendingTerm
	for rows.Next() {
		t := &entities.TrendingTerm{}
		if err := rows.Scan(&t.Term, &t.Count); err != nil {
			return nil, apperrors.NewInternalError("failed to scan term count", err)
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// TermsByPrefix returns grouped terms matching a normalized prefix
func (a *SearchAnalyticsAdapter) TermsByPrefix(ctx context.Context, prefix string, limit int) ([]*repositories.TermRow, error) {
	if limit <= 0 {
		limit = 10
	}

	query, args, err := a.db.From("search_events").
		Select(
			goqu.C("normalized_query"),
			goqu.COUNT("*").As("count"),
			goqu.MAX("created_at").As("last_seen"),
		).
		Where(goqu.C("normalized_query").Like(escapeLike(prefix) + "%")).
		GroupBy(goqu.C("normalized_query")).
		Order(goqu.I("count").Desc(), goqu.I("last_seen").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build prefix query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query terms by prefix", err)
	}
	defer rows.Close()

	var terms []*repositories.TermRow
	for rows.Next() {
		t := &repositories.TermRow{}
		if err := rows.Scan(&t.Term, &t.Count, &t.LastSeen); err != nil {
			return nil, apperrors.NewInternalError("failed to scan term row", err)
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}

// History returns one page of a user's past events plus the total
func (a *SearchAnalyticsAdapter) History(ctx context.Context, userID string, page, limit int) ([]*entities.SearchEvent, int, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	var total int
	countQuery, countArgs, err := a.db.From("search_events").
		Select(goqu.COUNT("*")).
		Where(goqu.C("user_id").Eq(userID)).
		ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build history count query", err)
	}
	if err := a.client.DB().QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewInternalError("failed to count history", err)
	}

	query, args, err := a.db.From("search_events").
		Select(eventColumns()...).
		Where(goqu.C("user_id").Eq(userID)).
		Order(goqu.C("created_at").Desc()).
		Limit(uint(limit)).
		Offset(uint((page - 1) * limit)).
		ToSQL()
	if err != nil {
		return nil, 0, apperrors.NewInternalError("failed to build history query", err)
	}

	events, err := a.queryEvents(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ZeroResultQueries returns recent searches that produced no results
func (a *SearchAnalyticsAdapter) ZeroResultQueries(ctx context.Context, limit int) ([]*entities.SearchEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	query, args, err := a.db.From("search_events").
		Select(eventColumns()...).
		Where(goqu.C("results_count").Eq(0)).
		Order(goqu.C("created_at").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build zero result query", err)
	}

	return a.queryEvents(ctx, query, args...)
}

// Overview aggregates all-time activity
func (a *SearchAnalyticsAdapter) Overview(ctx context.Context) (*repositories.AnalyticsOverview, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(DISTINCT session_id),
			COALESCE(AVG(results_count), 0),
			COALESCE(AVG(CASE WHEN cached THEN 1.0 ELSE 0.0 END), 0),
			COALESCE(AVG(CASE WHEN results_count = 0 THEN 1.0 ELSE 0.0 END), 0)
		FROM search_events
	`

	o := &repositories.AnalyticsOverview{}
	err := a.client.DB().QueryRowContext(ctx, query).Scan(
		&o.TotalSearches,
		&o.UniqueSessions,
		&o.AvgResults,
		&o.CacheHitRate,
		&o.ZeroResultRate,
	)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to aggregate analytics overview", err)
	}
	return o, nil
}

// DailyVolume returns per-day search counts for the trailing days
func (a *SearchAnalyticsAdapter) DailyVolume(ctx context.Context, days int) ([]*repositories.DailyCount, error) {
	if days <= 0 {
		days = 30
	}

	query := `
		SELECT date_trunc('day', created_at) AS day, COUNT(*)
		FROM search_events
		WHERE created_at >= NOW() - ($1 || ' days')::interval
		GROUP BY day
		ORDER BY day
	`

	rows, err := a.client.DB().QueryContext(ctx, query, days)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query daily volume", err)
	}
	defer rows.Close()

	var counts []*repositories.DailyCount
	for rows.Next() {
		c := &repositories.DailyCount{}
		if err := rows.Scan(&c.Day, &c.Count); err != nil {
			return nil, apperrors.NewInternalError("failed to scan daily count", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// SessionStats aggregates per-session behavior
func (a *SearchAnalyticsAdapter) SessionStats(ctx context.Context) (*repositories.SessionStats, error) {
	query := `
		SELECT
			COUNT(DISTINCT session_id),
			CASE WHEN COUNT(DISTINCT session_id) = 0 THEN 0
			     ELSE COUNT(*)::float / COUNT(DISTINCT session_id) END,
			COALESCE(AVG(duration_ms), 0)
		FROM search_events
	`

	s := &repositories.SessionStats{}
	err := a.client.DB().QueryRowContext(ctx, query).Scan(
		&s.Sessions,
		&s.AvgSearchesPerSession,
		&s.AvgDurationMs,
	)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to aggregate session stats", err)
	}
	return s, nil
}

// PerformanceStats splits latency by cache outcome
func (a *SearchAnalyticsAdapter) PerformanceStats(ctx context.Context) (*repositories.PerformanceStats, error) {
	query := `
		SELECT
			COALESCE(AVG(duration_ms), 0),
			COALESCE(AVG(duration_ms) FILTER (WHERE cached), 0),
			COALESCE(AVG(duration_ms) FILTER (WHERE NOT cached), 0),
			COALESCE(AVG(CASE WHEN cached THEN 1.0 ELSE 0.0 END), 0),
			COUNT(*) FILTER (WHERE created_at >= NOW() - interval '24 hours')
		FROM search_events
	`

	p := &repositories.PerformanceStats{}
	err := a.client.DB().QueryRowContext(ctx, query).Scan(
		&p.AvgDurationMs,
		&p.AvgCachedMs,
		&p.AvgUncachedMs,
		&p.CacheHitRate,
		&p.SearchesLast24h,
	)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to aggregate performance stats", err)
	}
	return p, nil
}

func (a *SearchAnalyticsAdapter) queryEvents(ctx context.Context, query string, args ...interface{}) ([]*entities.SearchEvent, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query search events", err)
	}
	defer rows.Close()

	var events []*entities.SearchEvent
	for rows.Next() {
		e := &entities.SearchEvent{}
		var filters []byte
		err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.SessionID,
			&e.QueryText,
			&e.NormalizedQuery,
			&filters,
			&e.Collection,
			&e.ResultsCount,
			&e.DurationMs,
			&e.Cached,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan search event", err)
		}
		e.Filters = filters
		events = append(events, e)
	}
	return events, rows.Err()
}

func eventColumns() []interface{} {
	return []interface{}{
		"id", "user_id", "session_id", "query_text", "normalized_query",
		"filters", "collection", "results_count", "duration_ms", "cached", "created_at",
	}
}

// escapeLike escapes LIKE metacharacters in user-supplied prefixes
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
