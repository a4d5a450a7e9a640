package entities

import (
	"time"
)

// Collection names served by the candidate source.
const (
	CollectionSuppliers = "suppliers"
	CollectionPackages  = "packages"
)

// Candidate is the flattened view of a supplier or package record that
// the discovery engine ranks. Doc carries the source document as stored
// so responses can return the full record without a second fetch.
type Candidate struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Category    string                 `json:"category,omitempty"`
	Location    string                 `json:"location,omitempty"`
	Amenities   []string               `json:"amenities,omitempty"`
	Price       float64                `json:"price"`
	Rating      float64                `json:"rating"`
	ReviewCount int                    `json:"review_count"`
	MaxGuests   int                    `json:"max_guests,omitempty"`
	Featured    bool                   `json:"featured"`
	ProActive   bool                   `json:"pro_active"`
	Verified    bool                   `json:"verified"`
	Approved    bool                   `json:"approved"`
	CreatedAt   time.Time              `json:"created_at"`
	Doc         map[string]interface{} `json:"doc,omitempty"`
}

// ScoredCandidate pairs a candidate with the relevance score and the
// matched-field breakdown used to compute it. Created per query and
// discarded after response assembly.
type ScoredCandidate struct {
	Candidate      *Candidate         `json:"candidate"`
	RelevanceScore float64            `json:"relevance_score"`
	Breakdown      map[string]float64 `json:"score_breakdown,omitempty"`
}

// Pagination describes the full filtered set independently of the
// slice returned.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// SearchResult is a ranked, paginated page of candidates.
type SearchResult struct {
	Items      []*ScoredCandidate `json:"items"`
	Pagination Pagination         `json:"pagination"`
}

// Facets holds aggregate candidate counts grouped by attribute.
type Facets struct {
	Categories map[string]int `json:"categories"`
	Amenities  map[string]int `json:"amenities"`
	Locations  map[string]int `json:"locations"`
}
