package services

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/eventrove/marketplace-backend/internal/domain/entities"
	apperrors "github.com/eventrove/marketplace-backend/pkg/errors"
)

// Limits bound a normalized query.
type Limits struct {
	MaxTextLen   int
	MaxLimit     int
	DefaultLimit int
}

// SearchLimits returns the bounds for list search requests
func SearchLimits() Limits {
	return Limits{MaxTextLen: 200, MaxLimit: 100, DefaultLimit: 20}
}

// SuggestionLimits returns the bounds for autocomplete requests
func SuggestionLimits() Limits {
	return Limits{MaxTextLen: 100, MaxLimit: 50, DefaultLimit: 10}
}

// WithMaxLimit overrides the page size ceiling. Non-positive values
// keep the default ceiling; the default page size never exceeds it.
func (l Limits) WithMaxLimit(max int) Limits {
	if max > 0 {
		l.MaxLimit = max
		if l.DefaultLimit > max {
			l.DefaultLimit = max
		}
	}
	return l
}

// QueryNormalizer parses raw query input into a canonical, bounded
// SearchQuery. Unknown keys are dropped, not passed through.
type QueryNormalizer struct{}

// NewQueryNormalizer creates a new query normalizer
func NewQueryNormalizer() *QueryNormalizer {
	return &QueryNormalizer{}
}

// Normalize validates and coerces raw string parameters. Oversized text
// is rejected rather than silently truncated; out-of-range limits are
// silently clamped since they are not security-relevant.
func (n *QueryNormalizer) Normalize(raw map[string]string, limits Limits) (*entities.SearchQuery, error) {
	text := raw["text"]
	if utf8.RuneCountInString(text) > limits.MaxTextLen {
		return nil, apperrors.NewValidationErrorf("query text exceeds %d characters", limits.MaxTextLen)
	}

	q := &entities.SearchQuery{
		Text:     strings.TrimSpace(text),
		Category: strings.TrimSpace(raw["category"]),
		Location: strings.TrimSpace(raw["location"]),
		SortBy:   entities.SortRelevance,
		Page:     1,
		Limit:    limits.DefaultLimit,
	}

	q.MinPrice = parseFloatFilter(raw["minPrice"])
	q.MaxPrice = parseFloatFilter(raw["maxPrice"])
	q.MinRating = parseFloatFilter(raw["minRating"])
	q.MinGuests = parseIntFilter(raw["minGuests"])

	if amenities := raw["amenities"]; amenities != "" {
		for _, a := range strings.Split(amenities, ",") {
			if a = strings.TrimSpace(a); a != "" {
				q.Amenities = append(q.Amenities, a)
			}
		}
	}

	// Boolean filters accept only the literal strings "true"/"false";
	// anything else is treated as absent.
	q.ProOnly = raw["proOnly"] == "true"
	q.FeaturedOnly = raw["featuredOnly"] == "true"
	q.VerifiedOnly = raw["verifiedOnly"] == "true"

	if sortBy := raw["sortBy"]; entities.ValidSortOption(sortBy) {
		q.SortBy = entities.SortOption(sortBy)
	}

	if page := parseIntFilter(raw["page"]); page != nil && *page >= 1 {
		q.Page = *page
	}

	if limit := parseIntFilter(raw["limit"]); limit != nil {
		q.Limit = *limit
	}
	if q.Limit < 1 {
		q.Limit = 1
	}
	if q.Limit > limits.MaxLimit {
		q.Limit = limits.MaxLimit
	}

	return q, nil
}

// RawQueryFromValues flattens URL query parameters to the raw map the
// normalizer reads, taking the first value of each key.
func RawQueryFromValues(values url.Values) map[string]string {
	raw := make(map[string]string, len(values))
	for key := range values {
		raw[key] = values.Get(key)
	}
	return raw
}

// RawQueryFromBody flattens a decoded JSON criteria object to the raw
// map the normalizer reads. Nested values are dropped along with any
// other unknown shapes.
func RawQueryFromBody(body map[string]interface{}) map[string]string {
	raw := make(map[string]string, len(body))
	for key, value := range body {
		switch v := value.(type) {
		case string:
			raw[key] = v
		case float64:
			raw[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			raw[key] = strconv.FormatBool(v)
		case []interface{}:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok {
					parts = append(parts, s)
				}
			}
			raw[key] = strings.Join(parts, ",")
		}
	}
	return raw
}

// parseFloatFilter coerces a numeric filter; parse failures and NaN
// drop the filter rather than defaulting to zero.
func parseFloatFilter(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func parseIntFilter(s string) *int {
	if s == "" {
		return nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &i
}
