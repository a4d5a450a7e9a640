package repositories

import (
	"context"

	"github.com/eventrove/marketplace-backend/internal/domain/entities"
)

// CandidateFilter is the simple predicate the candidate source accepts.
// Anything beyond it is the ranker's job.
type CandidateFilter struct {
	Category     string
	ApprovedOnly bool
	VerifiedOnly bool
	FeaturedOnly bool
}

// FindOptions narrow a candidate read on the fast path.
type FindOptions struct {
	Limit  int
	SortBy string // persisted field name, e.g. "_id"
}

// CandidateRepository is the read-only provider of supplier/package
// records, keyed by collection name. The discovery core never mutates
// listing records.
type CandidateRepository interface {
	// Read returns the full candidate set of a collection.
	Read(ctx context.Context, collection string) ([]*entities.Candidate, error)

	// FindWithOptions returns a filtered candidate set. The filter is a
	// store-side fast path; callers must not rely on it for correctness.
	FindWithOptions(ctx context.Context, collection string, filter CandidateFilter, opts FindOptions) ([]*entities.Candidate, error)
}
