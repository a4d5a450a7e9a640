package providers

import (
	"context"

	"github.com/eventrove/marketplace-backend/internal/domain/entities"
)

// EventChannelListingUpdates carries material mutations of listing data
// published by the admin/CRUD collaborator.
const EventChannelListingUpdates = "listing:updates"

// EventBus defines the interface for publishing and subscribing to
// listing events across instances.
type EventBus interface {
	// Publish publishes an event to all subscribers of a channel.
	Publish(ctx context.Context, channel string, event *entities.ListingEvent) error

	// Subscribe subscribes to events on a channel. The returned channel
	// is closed when ctx is cancelled.
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ListingEvent, error)

	// Close shuts down the bus and all subscriptions.
	Close() error
}
