package entities

import "time"

// TrendingWindow enumerates the rolling windows trending terms are
// aggregated over.
type TrendingWindow string

const (
	Window1h  TrendingWindow = "1h"
	Window24h TrendingWindow = "24h"
	Window7d  TrendingWindow = "7d"
	Window30d TrendingWindow = "30d"
)

// Duration returns the rolling duration of the window, or false for an
// unrecognized window.
func (w TrendingWindow) Duration() (time.Duration, bool) {
	switch w {
	case Window1h:
		return time.Hour, true
	case Window24h:
		return 24 * time.Hour, true
	case Window7d:
		return 7 * 24 * time.Hour, true
	case Window30d:
		return 30 * 24 * time.Hour, true
	}
	return 0, false
}

// TrendingTerm is a normalized query term with its count inside a
// rolling window (or all time, for popular queries).
type TrendingTerm struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// Suggestion is an autocomplete candidate ranked by a blend of
// frequency and recency.
type Suggestion struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}
