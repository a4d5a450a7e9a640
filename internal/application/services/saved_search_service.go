package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/eventrove/marketplace-backend/internal/domain/entities"
	"github.com/eventrove/marketplace-backend/internal/domain/repositories"
	apperrors "github.com/eventrove/marketplace-backend/pkg/errors"
)

const (
	minSavedSearchName = 3
	maxSavedSearchName = 100
)

// SavedSearchService persists named query snapshots per user. A saved
// search is visible to and mutable by its creator only; lookups for
// anyone else report not found, never forbidden, so existence is not
// leaked.
type SavedSearchService struct {
	repo       repositories.SavedSearchRepository
	normalizer *QueryNormalizer
}

// NewSavedSearchService creates a new saved search service
func NewSavedSearchService(repo repositories.SavedSearchRepository, normalizer *QueryNormalizer) *SavedSearchService {
	return &SavedSearchService{repo: repo, normalizer: normalizer}
}

// Save validates and persists a saved search. Criteria pass through
// the normalizer once at save time and are stored as an opaque
// snapshot afterwards.
func (s *SavedSearchService) Save(ctx context.Context, userID, name, description string, criteria map[string]string, notificationsEnabled bool) (*entities.SavedSearch, error) {
	if userID == "" {
		return nil, apperrors.NewUnauthorizedError("authentication required")
	}

	name = strings.TrimSpace(name)
	length := utf8.RuneCountInString(name)
	if length < minSavedSearchName || length > maxSavedSearchName {
		return nil, apperrors.NewValidationErrorf("name must be between %d and %d characters", minSavedSearchName, maxSavedSearchName)
	}

	query, err := s.normalizer.Normalize(criteria, SearchLimits())
	if err != nil {
		return nil, err
	}

	search := &entities.SavedSearch{
		UserID:               userID,
		Name:                 name,
		Description:          strings.TrimSpace(description),
		Criteria:             *query,
		NotificationsEnabled: notificationsEnabled,
	}
	if err := s.repo.Create(ctx, search); err != nil {
		return nil, err
	}
	return search, nil
}

// List returns all saved searches owned by the user
func (s *SavedSearchService) List(ctx context.Context, userID string) ([]*entities.SavedSearch, error) {
	if userID == "" {
		return nil, apperrors.NewUnauthorizedError("authentication required")
	}

	searches, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if searches == nil {
		searches = []*entities.SavedSearch{}
	}
	return searches, nil
}

// Delete removes a saved search owned by the user
func (s *SavedSearchService) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return apperrors.NewUnauthorizedError("authentication required")
	}
	return s.repo.Delete(ctx, userID, id)
}

// Use returns a saved search for replay, bumping its usage counters.
// The stored criteria are returned verbatim without re-validation.
func (s *SavedSearchService) Use(ctx context.Context, userID, id string) (*entities.SavedSearch, error) {
	if userID == "" {
		return nil, apperrors.NewUnauthorizedError("authentication required")
	}

	if err := s.repo.RecordUse(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, userID, id)
}
