package services

import (
	"time"

	"github.com/eventrove/marketplace-backend/internal/domain/entities"
)

// Linear congruential generator constants (Numerical Recipes). Full
// period modulo 2^32 with low correlation between successive draws.
const (
	lcgMultiplier uint64 = 1664525
	lcgIncrement  uint64 = 1013904223
	lcgModulus    uint64 = 1 << 32
)

// RotationService selects time-boxed spotlight candidates without any
// server-side scheduling state. Every process derives the same
// selection from wall-clock time alone, which substitutes for
// coordination across stateless instances.
type RotationService struct{}

// NewRotationService creates a new rotation service
func NewRotationService() *RotationService {
	return &RotationService{}
}

// SeedForTime derives the rotation seed for t. There is exactly one
// seed per UTC hour, globally.
func SeedForTime(t time.Time) int64 {
	t = t.UTC()
	return int64(t.Year())*10000 + int64(t.Month())*100 + int64(t.Day())*24 + int64(t.Hour())
}

// SelectSpotlight returns the first count candidates of a seeded
// Fisher-Yates permutation of pool. The selection is invariant for a
// fixed pool ordering and seed; a stable pool ordering (candidates
// sorted by a persisted key) is the caller's precondition.
func (s *RotationService) SelectSpotlight(pool []*entities.Candidate, seed int64, count int) []*entities.Candidate {
	if count <= 0 || len(pool) == 0 {
		return nil
	}

	shuffled := make([]*entities.Candidate, len(pool))
	copy(shuffled, pool)

	state := uint64(seed) % lcgModulus
	for i := len(shuffled) - 1; i > 0; i-- {
		state = (state*lcgMultiplier + lcgIncrement) % lcgModulus
		j := int(state % uint64(i+1))
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	if count > len(shuffled) {
		count = len(shuffled)
	}
	return shuffled[:count]
}
