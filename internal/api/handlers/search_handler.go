package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/eventrove/marketplace-backend/internal/api/middleware"
	"github.com/eventrove/marketplace-backend/internal/application/services"
	"github.com/eventrove/marketplace-backend/internal/domain/entities"
)

// Facet kinds routable at the HTTP layer.
const (
	FacetCategories = services.FacetCategories
	FacetAmenities  = services.FacetAmenities
	FacetLocations  = services.FacetLocations
)

// SearchHandler handles discovery HTTP requests
type SearchHandler struct {
	searchService *services.SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService *services.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// SearchSuppliers handles GET /api/search/suppliers
func (h *SearchHandler) SearchSuppliers(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, entities.CollectionSuppliers, services.RawQueryFromValues(r.URL.Query()))
}

// SearchPackages handles GET /api/search/packages
func (h *SearchHandler) SearchPackages(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, entities.CollectionPackages, services.RawQueryFromValues(r.URL.Query()))
}

// AdvancedSearch handles POST /api/search/advanced. The JSON body
// carries the same fields as the GET query string, plus an optional
// "collection" selector.
func (h *SearchHandler) AdvancedSearch(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	collection := entities.CollectionSuppliers
	if c, ok := body["collection"].(string); ok && c != "" {
		collection = c
	}
	delete(body, "collection")

	h.search(w, r, collection, services.RawQueryFromBody(body))
}

func (h *SearchHandler) search(w http.ResponseWriter, r *http.Request, collection string, raw map[string]string) {
	meta := services.RequestMeta{
		UserID:    middleware.UserID(r),
		SessionID: middleware.SessionID(r),
	}

	result, cached, err := h.searchService.Search(r.Context(), collection, raw, meta)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	respondWithData(w, http.StatusOK, result)
}

// Suggestions handles GET /api/search/suggestions
func (h *SearchHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	suggestions, err := h.searchService.Suggestions(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

// Facets handles GET /api/search/{categories|amenities|locations}
func (h *SearchHandler) Facets(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := h.searchService.Facets(r.Context(), kind)
		if err != nil {
			respondWithAppError(w, r, err)
			return
		}
		respondWithData(w, http.StatusOK, counts)
	}
}

// Spotlight handles GET /api/search/spotlight
func (h *SearchHandler) Spotlight(w http.ResponseWriter, r *http.Request) {
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))

	selected, err := h.searchService.Spotlight(r.Context(), count)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, map[string]interface{}{
		"suppliers": selected,
		"count":     len(selected),
	})
}

// CacheStats handles GET /api/search/cache/stats
func (h *SearchHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	respondWithData(w, http.StatusOK, h.searchService.CacheStats(r.Context()))
}

// ClearCache handles POST /api/search/cache/clear
func (h *SearchHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.searchService.ClearCache(r.Context()); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, map[string]string{"status": "cleared"})
}
