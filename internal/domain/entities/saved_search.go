package entities

import "time"

// SavedSearch is a named, reusable snapshot of a SearchQuery owned
// exclusively by one user. Criteria are replayed verbatim on reuse.
type SavedSearch struct {
	ID                   string      `json:"id" db:"id"`
	UserID               string      `json:"user_id" db:"user_id"`
	Name                 string      `json:"name" db:"name"`
	Description          string      `json:"description,omitempty" db:"description"`
	Criteria             SearchQuery `json:"criteria" db:"criteria"`
	NotificationsEnabled bool        `json:"notifications_enabled" db:"notifications_enabled"`
	CreatedAt            time.Time   `json:"created_at" db:"created_at"`
	LastUsedAt           *time.Time  `json:"last_used_at,omitempty" db:"last_used_at"`
	UseCount             int         `json:"use_count" db:"use_count"`
}
