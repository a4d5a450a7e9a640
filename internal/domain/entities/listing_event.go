package entities

import "time"

// Listing event types published by the admin/CRUD collaborator when
// listing data mutates materially.
const (
	ListingEventApprovalToggled = "approval_toggled"
	ListingEventUpdated         = "updated"
	ListingEventDeleted         = "deleted"
)

// ListingEvent signals a material mutation of supplier or package data.
// The discovery core consumes these to invalidate its result cache.
type ListingEvent struct {
	ID         string    `json:"id"`
	EventType  string    `json:"event_type"`
	Collection string    `json:"collection"`
	ListingID  string    `json:"listing_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
