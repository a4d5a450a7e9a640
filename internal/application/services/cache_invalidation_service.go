package services

import (
	"context"

	"github.com/eventrove/marketplace-backend/internal/domain/providers"
	"github.com/eventrove/marketplace-backend/internal/infrastructure/observability"
)

// CacheInvalidationService listens for listing mutations published by
// the admin/CRUD collaborator and flushes the result cache so stale
// pages never outlive their data by more than one delivery.
type CacheInvalidationService struct {
	bus   providers.EventBus
	cache *ResultCacheService
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(bus providers.EventBus, cache *ResultCacheService) *CacheInvalidationService {
	return &CacheInvalidationService{bus: bus, cache: cache}
}

// Start subscribes to listing updates and blocks until ctx is
// cancelled or the subscription closes.
func (s *CacheInvalidationService) Start(ctx context.Context) error {
	events, err := s.bus.Subscribe(ctx, providers.EventChannelListingUpdates)
	if err != nil {
		return err
	}

	logger := observability.GetLogger()
	logger.Info().Str("channel", providers.EventChannelListingUpdates).Msg("cache invalidation listener started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				logger.Warn().Msg("cache invalidation subscription closed")
				return nil
			}
			if err := s.cache.Clear(ctx); err != nil {
				logger.Error().Err(err).
					Str("event_type", event.EventType).
					Str("listing_id", event.ListingID).
					Msg("failed to flush result cache after listing update")
				continue
			}
			logger.Info().
				Str("event_type", event.EventType).
				Str("listing_id", event.ListingID).
				Msg("result cache flushed after listing update")
		}
	}
}
