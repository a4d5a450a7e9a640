package entities

import (
	"encoding/json"
	"time"
)

// SearchEvent represents a single completed search for analytics.
// Append-only; never mutated after write.
type SearchEvent struct {
	ID              string          `json:"id" db:"id"`
	UserID          string          `json:"user_id,omitempty" db:"user_id"`
	SessionID       string          `json:"session_id" db:"session_id"`
	QueryText       string          `json:"query_text" db:"query_text"`
	NormalizedQuery string          `json:"normalized_query" db:"normalized_query"`
	Filters         json.RawMessage `json:"filters,omitempty" db:"filters"`
	Collection      string          `json:"collection" db:"collection"`
	ResultsCount    int             `json:"results_count" db:"results_count"`
	DurationMs      int             `json:"duration_ms" db:"duration_ms"`
	Cached          bool            `json:"cached" db:"cached"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}
