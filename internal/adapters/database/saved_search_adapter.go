package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/eventrove/marketplace-backend/internal/domain/entities"
	"github.com/eventrove/marketplace-backend/internal/domain/repositories"
	"github.com/eventrove/marketplace-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/eventrove/marketplace-backend/pkg/errors"
)

// SavedSearchAdapter implements SavedSearchRepository. Criteria are
// stored as an opaque JSON snapshot and replayed verbatim.
type SavedSearchAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewSavedSearchAdapter creates a new saved search adapter
func NewSavedSearchAdapter(client *postgres.Client) repositories.SavedSearchRepository {
	return &SavedSearchAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create persists a saved search
func (a *SavedSearchAdapter) Create(ctx context.Context, search *entities.SavedSearch) error {
	if search.ID == "" {
		search.ID = uuid.New().String()
	}
	if search.CreatedAt.IsZero() {
		search.CreatedAt = time.Now().UTC()
	}

	criteria, err := json.Marshal(search.Criteria)
	if err != nil {
		return apperrors.NewInternalError("failed to serialize search criteria", err)
	}

	record := goqu.Record{
		"id":                    search.ID,
		"user_id":               search.UserID,
		"name":                  search.Name,
		"description":           search.Description,
		"criteria":              criteria,
		"notifications_enabled": search.NotificationsEnabled,
		"created_at":            search.CreatedAt,
		"use_count":             search.UseCount,
	}

	query, args, err := a.db.Insert("saved_searches").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build saved search insert", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create saved search", err)
	}

	return nil
}

// ListByUser returns all saved searches owned by a user
func (a *SavedSearchAdapter) ListByUser(ctx context.Context, userID string) ([]*entities.SavedSearch, error) {
	query, args, err := a.db.From("saved_searches").
		Select(savedSearchColumns()...).
		Where(goqu.C("user_id").Eq(userID)).
		Order(goqu.C("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build saved search list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list saved searches", err)
	}
	defer rows.Close()

	var searches []*entities.SavedSearch
	for rows.Next() {
		s, err := scanSavedSearch(rows.Scan)
		if err != nil {
			return nil, err
		}
		searches = append(searches, s)
	}
	return searches, rows.Err()
}

// GetByID returns a saved search only if the user owns it. Ownership is
// folded into the lookup so non-owners see not found, never forbidden.
func (a *SavedSearchAdapter) GetByID(ctx context.Context, userID, id string) (*entities.SavedSearch, error) {
	query, args, err := a.db.From("saved_searches").
		Select(savedSearchColumns()...).
		Where(goqu.C("id").Eq(id), goqu.C("user_id").Eq(userID)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build saved search query", err)
	}

	row := a.client.DB().QueryRowContext(ctx, query, args...)
	s, err := scanSavedSearch(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("saved search not found")
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Delete removes a saved search only if the user owns it
func (a *SavedSearchAdapter) Delete(ctx context.Context, userID, id string) error {
	query, args, err := a.db.Delete("saved_searches").
		Where(goqu.C("id").Eq(id), goqu.C("user_id").Eq(userID)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build saved search delete", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete saved search", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to read delete result", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("saved search not found")
	}
	return nil
}

// RecordUse bumps use_count and last_used_at for an owned search
func (a *SavedSearchAdapter) RecordUse(ctx context.Context, userID, id string) error {
	query, args, err := a.db.Update("saved_searches").
		Set(goqu.Record{
			"use_count":    goqu.L("use_count + 1"),
			"last_used_at": time.Now().UTC(),
		}).
		Where(goqu.C("id").Eq(id), goqu.C("user_id").Eq(userID)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build saved search update", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to record saved search use", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to read update result", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("saved search not found")
	}
	return nil
}

func savedSearchColumns() []interface{} {
	return []interface{}{
		"id", "user_id", "name", "description", "criteria",
		"notifications_enabled", "created_at", "last_used_at", "use_count",
	}
}

func scanSavedSearch(scan func(dest ...interface{}) error) (*entities.SavedSearch, error) {
	s := &entities.SavedSearch{}
	var criteria []byte
	var lastUsed sql.NullTime

	err := scan(
		&s.ID,
		&s.UserID,
		&s.Name,
		&s.Description,
		&criteria,
		&s.NotificationsEnabled,
		&s.CreatedAt,
		&lastUsed,
		&s.UseCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to scan saved search", err)
	}

	if lastUsed.Valid {
		s.LastUsedAt = &lastUsed.Time
	}
	if len(criteria) > 0 {
		if err := json.Unmarshal(criteria, &s.Criteria); err != nil {
			return nil, apperrors.NewInternalError("failed to decode search criteria", err)
		}
	}
	return s, nil
}
