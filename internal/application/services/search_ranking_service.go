package services

import (
	"sort"
	"strings"

	"github.com/eventrove/marketplace-backend/internal/domain/entities"
)

// SearchRankingService scores and orders candidates against a
// normalized query. Rank is pure: the same inputs always produce the
// same ordering.
type SearchRankingService struct {
	wName        float64
	wDescription float64
	wCategory    float64
	wLocation    float64
	wAmenity     float64
	wRating      float64
	wStatus      float64

	maxAmenityMatches int
}

// NewSearchRankingService creates a ranking service with the default
// signal weights. Each signal contributes a bounded amount so no single
// signal dominates.
func NewSearchRankingService() *SearchRankingService {
	return &SearchRankingService{
		wName:             10.0,
		wDescription:      5.0,
		wCategory:         4.0,
		wLocation:         3.0,
		wAmenity:          1.0,
		wRating:           2.0,
		wStatus:           0.5,
		maxAmenityMatches: 3,
	}
}

// Rank applies hard filters, scores the survivors, orders them, and
// returns the requested page. Pagination reflects the full filtered
// set; a page past the end yields an empty item list, never an error.
func (s *SearchRankingService) Rank(candidates []*entities.Candidate, q *entities.SearchQuery) *entities.SearchResult {
	filtered := make([]*entities.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if s.passesHardFilters(c, q) {
			filtered = append(filtered, c)
		}
	}

	scored := make([]*entities.ScoredCandidate, len(filtered))
	for i, c := range filtered {
		score, breakdown := s.score(c, q)
		scored[i] = &entities.ScoredCandidate{
			Candidate:      c,
			RelevanceScore: score,
			Breakdown:      breakdown,
		}
	}

	s.order(scored, q.SortBy)

	total := len(scored)
	pages := 0
	if total > 0 {
		pages = (total + q.Limit - 1) / q.Limit
	}

	start := (q.Page - 1) * q.Limit
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}

	return &entities.SearchResult{
		Items: scored[start:end],
		Pagination: entities.Pagination{
			Total: total,
			Page:  q.Page,
			Limit: q.Limit,
			Pages: pages,
		},
	}
}

// passesHardFilters excludes candidates before scoring; failing a hard
// filter is never merely a penalty.
func (s *SearchRankingService) passesHardFilters(c *entities.Candidate, q *entities.SearchQuery) bool {
	if q.MinPrice != nil && c.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && c.Price > *q.MaxPrice {
		return false
	}
	if q.Category != "" && !strings.EqualFold(c.Category, q.Category) {
		return false
	}
	if q.VerifiedOnly && !c.Verified {
		return false
	}
	if q.ProOnly && !c.ProActive {
		return false
	}
	if q.FeaturedOnly && !c.Featured {
		return false
	}
	if q.MinRating != nil && c.Rating < *q.MinRating {
		return false
	}
	if q.MinGuests != nil && c.MaxGuests < *q.MinGuests {
		return false
	}
	return true
}

// score computes the additive weighted relevance of one candidate.
// Text matching is case-insensitive substring containment so behavior
// is identical whether candidates come from memory or a queried store.
func (s *SearchRankingService) score(c *entities.Candidate, q *entities.SearchQuery) (float64, map[string]float64) {
	breakdown := make(map[string]float64)

	text := strings.ToLower(strings.TrimSpace(q.Text))
	if text != "" {
		if strings.Contains(strings.ToLower(c.Name), text) {
			breakdown["name"] = s.wName
		}
		if strings.Contains(strings.ToLower(c.Description), text) {
			breakdown["description"] = s.wDescription
		}
	}

	if q.Category != "" && strings.EqualFold(c.Category, q.Category) {
		breakdown["category"] = s.wCategory
	}

	if q.Location != "" && strings.Contains(strings.ToLower(c.Location), strings.ToLower(q.Location)) {
		breakdown["location"] = s.wLocation
	}

	if len(q.Amenities) > 0 {
		matches := amenityOverlap(c.Amenities, q.Amenities)
		if matches > s.maxAmenityMatches {
			matches = s.maxAmenityMatches
		}
		if matches > 0 {
			breakdown["amenities"] = float64(matches) * s.wAmenity
		}
	}

	if c.Rating > 0 {
		breakdown["rating"] = c.Rating / 5.0 * s.wRating
	}

	status := 0.0
	if c.Featured {
		status += s.wStatus
	}
	if c.ProActive {
		status += s.wStatus
	}
	if status > 0 {
		breakdown["status"] = status
	}

	total := 0.0
	for _, v := range breakdown {
		total += v
	}
	return total, breakdown
}

// order sorts scored candidates for the requested ordering. Sorting is
// stable so equal keys keep the original candidate order, guaranteeing
// reproducible pagination across repeated calls.
func (s *SearchRankingService) order(scored []*entities.ScoredCandidate, sortBy entities.SortOption) {
	switch sortBy {
	case entities.SortPriceLow:
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].Candidate.Price < scored[j].Candidate.Price
		})
	case entities.SortPriceHigh:
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].Candidate.Price > scored[j].Candidate.Price
		})
	case entities.SortRating:
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].Candidate.Rating > scored[j].Candidate.Rating
		})
	case entities.SortNewest:
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].Candidate.CreatedAt.After(scored[j].Candidate.CreatedAt)
		})
	default:
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].RelevanceScore > scored[j].RelevanceScore
		})
	}
}

func amenityOverlap(have, want []string) int {
	if len(have) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(have))
	for _, a := range have {
		set[strings.ToLower(a)] = struct{}{}
	}
	matches := 0
	for _, a := range want {
		if _, ok := set[strings.ToLower(a)]; ok {
			matches++
		}
	}
	return matches
}
