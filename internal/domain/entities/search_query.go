package entities

import (
	"fmt"
	"sort"
	"strings"
)

// SortOption enumerates the supported result orderings.
type SortOption string

const (
	SortRelevance SortOption = "relevance"
	SortPriceLow  SortOption = "price-low"
	SortPriceHigh SortOption = "price-high"
	SortRating    SortOption = "rating"
	SortNewest    SortOption = "newest"
)

// ValidSortOption reports whether s is one of the enumerated orderings.
func ValidSortOption(s string) bool {
	switch SortOption(s) {
	case SortRelevance, SortPriceLow, SortPriceHigh, SortRating, SortNewest:
		return true
	}
	return false
}

// SearchQuery is the canonical, bounded form of a discovery request.
// Absent numeric filters are nil pointers, never zero values.
type SearchQuery struct {
	Text         string     `json:"text,omitempty"`
	Category     string     `json:"category,omitempty"`
	Location     string     `json:"location,omitempty"`
	MinPrice     *float64   `json:"min_price,omitempty"`
	MaxPrice     *float64   `json:"max_price,omitempty"`
	MinRating    *float64   `json:"min_rating,omitempty"`
	MinGuests    *int       `json:"min_guests,omitempty"`
	Amenities    []string   `json:"amenities,omitempty"`
	ProOnly      bool       `json:"pro_only,omitempty"`
	FeaturedOnly bool       `json:"featured_only,omitempty"`
	VerifiedOnly bool       `json:"verified_only,omitempty"`
	SortBy       SortOption `json:"sort_by"`
	Page         int        `json:"page"`
	Limit        int        `json:"limit"`
}

// Canonical returns a stable serialization of the query: fixed field
// order, absent fields omitted. Semantically identical queries produce
// identical strings regardless of how their parameters arrived.
func (q *SearchQuery) Canonical() string {
	var b strings.Builder

	write := func(field, value string) {
		if value == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString(field)
		b.WriteByte('=')
		b.WriteString(value)
	}

	write("text", strings.ToLower(q.Text))
	write("category", strings.ToLower(q.Category))
	write("location", strings.ToLower(q.Location))
	if q.MinPrice != nil {
		write("min_price", fmt.Sprintf("%g", *q.MinPrice))
	}
	if q.MaxPrice != nil {
		write("max_price", fmt.Sprintf("%g", *q.MaxPrice))
	}
	if q.MinRating != nil {
		write("min_rating", fmt.Sprintf("%g", *q.MinRating))
	}
	if q.MinGuests != nil {
		write("min_guests", fmt.Sprintf("%d", *q.MinGuests))
	}
	if len(q.Amenities) > 0 {
		amenities := make([]string, len(q.Amenities))
		for i, a := range q.Amenities {
			amenities[i] = strings.ToLower(a)
		}
		sort.Strings(amenities)
		write("amenities", strings.Join(amenities, ","))
	}
	if q.ProOnly {
		write("pro_only", "true")
	}
	if q.FeaturedOnly {
		write("featured_only", "true")
	}
	if q.VerifiedOnly {
		write("verified_only", "true")
	}
	write("sort_by", string(q.SortBy))
	write("page", fmt.Sprintf("%d", q.Page))
	write("limit", fmt.Sprintf("%d", q.Limit))

	return b.String()
}

// Specificity counts the populated filter dimensions of the query.
// It is the input to the adaptive cache TTL: narrower queries have
// higher specificity and more stable result sets.
func (q *SearchQuery) Specificity() int {
	n := 0
	if strings.TrimSpace(q.Text) != "" {
		n++
	}
	if q.Category != "" {
		n++
	}
	if q.Location != "" {
		n++
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		n++
	}
	if q.MinRating != nil {
		n++
	}
	if q.MinGuests != nil {
		n++
	}
	if len(q.Amenities) > 0 {
		n++
	}
	if q.ProOnly || q.FeaturedOnly || q.VerifiedOnly {
		n++
	}
	return n
}
