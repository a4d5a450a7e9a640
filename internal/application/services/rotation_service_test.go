package services_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventrove/marketplace-backend/internal/application/services"
	"github.com/eventrove/marketplace-backend/internal/domain/entities"
)

func spotlightPool(n int) []*entities.Candidate {
	pool := make([]*entities.Candidate, n)
	for i := range pool {
		pool[i] = &entities.Candidate{ID: fmt.Sprintf("s%02d", i)}
	}
	return pool
}

func TestSeedForTime_OnePerUTCHour(t *testing.T) {
	base := time.Date(2026, time.March, 14, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, services.SeedForTime(base), services.SeedForTime(base.Add(59*time.Minute)))
	assert.NotEqual(t, services.SeedForTime(base), services.SeedForTime(base.Add(time.Hour)))

	// Zone offsets collapse to the same UTC hour.
	lagos := time.FixedZone("WAT", 3600)
	assert.Equal(t, services.SeedForTime(base), services.SeedForTime(base.In(lagos)))
}

func TestSeedForTime_Formula(t *testing.T) {
	at := time.Date(2026, time.March, 14, 15, 30, 45, 0, time.UTC)
	assert.Equal(t, int64(2026)*10000+3*100+14*24+15, services.SeedForTime(at))
}

func TestSelectSpotlight_ReproducibleForSameSeed(t *testing.T) {
	rotation := services.NewRotationService()
	pool := spotlightPool(12)

	first := rotation.SelectSpotlight(pool, 20260314, 6)
	require.Len(t, first, 6)

	for i := 0; i < 5; i++ {
		again := rotation.SelectSpotlight(pool, 20260314, 6)
		require.Len(t, again, 6)
		for j := range first {
			assert.Equal(t, first[j].ID, again[j].ID)
		}
	}
}

func TestSelectSpotlight_DifferentSeedsDiverge(t *testing.T) {
	rotation := services.NewRotationService()
	pool := spotlightPool(20)

	a := rotation.SelectSpotlight(pool, 1001, len(pool))
	b := rotation.SelectSpotlight(pool, 1002, len(pool))
	require.Len(t, a, len(pool))
	require.Len(t, b, len(pool))

	same := true
	for i := range a {
		if a[i].ID != b[i].ID {
			same = false
			break
		}
	}
	assert.False(t, same, "adjacent seeds should produce different selections")
}

func TestSelectSpotlight_DoesNotMutatePool(t *testing.T) {
	rotation := services.NewRotationService()
	pool := spotlightPool(8)
	ids := make([]string, len(pool))
	for i, c := range pool {
		ids[i] = c.ID
	}

	rotation.SelectSpotlight(pool, 42, 4)

	for i, c := range pool {
		assert.Equal(t, ids[i], c.ID)
	}
}

func TestSelectSpotlight_Bounds(t *testing.T) {
	rotation := services.NewRotationService()
	pool := spotlightPool(3)

	assert.Nil(t, rotation.SelectSpotlight(nil, 42, 6))
	assert.Nil(t, rotation.SelectSpotlight(pool, 42, 0))

	// A pool smaller than count yields the whole pool, permuted.
	selected := rotation.SelectSpotlight(pool, 42, 6)
	require.Len(t, selected, 3)
	seen := make(map[string]bool, len(selected))
	for _, c := range selected {
		seen[c.ID] = true
	}
	assert.Len(t, seen, 3)
}
