package repositories

import (
	"context"

	"github.com/eventrove/marketplace-backend/internal/domain/entities"
)

// SavedSearchRepository persists named query snapshots per user.
type SavedSearchRepository interface {
	// Create persists a saved search.
	Create(ctx context.Context, search *entities.SavedSearch) error

	// ListByUser returns all saved searches owned by a user.
	ListByUser(ctx context.Context, userID string) ([]*entities.SavedSearch, error)

	// GetByID returns a saved search only if the user owns it; a
	// non-owned or missing id is a not found error.
	GetByID(ctx context.Context, userID, id string) (*entities.SavedSearch, error)

	// Delete removes a saved search only if the user owns it; a
	// non-owned or missing id is a not found error.
	Delete(ctx context.Context, userID, id string) error

	// RecordUse bumps use_count and last_used_at for an owned search.
	RecordUse(ctx context.Context, userID, id string) error
}
