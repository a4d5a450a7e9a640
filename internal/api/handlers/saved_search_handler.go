package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/eventrove/marketplace-backend/internal/api/middleware"
	"github.com/eventrove/marketplace-backend/internal/application/services"
)

// SavedSearchHandler handles saved search HTTP requests
type SavedSearchHandler struct {
	savedSearches *services.SavedSearchService
}

// NewSavedSearchHandler creates a new saved search handler
func NewSavedSearchHandler(savedSearches *services.SavedSearchService) *SavedSearchHandler {
	return &SavedSearchHandler{savedSearches: savedSearches}
}

type saveSearchRequest struct {
	Name                 string                 `json:"name"`
	Description          string                 `json:"description"`
	Criteria             map[string]interface{} `json:"criteria"`
	NotificationsEnabled bool                   `json:"notificationsEnabled"`
}

// Save handles POST /api/search/saved
func (h *SavedSearchHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.savedSearches.Save(
		r.Context(),
		middleware.UserID(r),
		req.Name,
		req.Description,
		services.RawQueryFromBody(req.Criteria),
		req.NotificationsEnabled,
	)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusCreated, saved)
}

// List handles GET /api/search/saved
func (h *SavedSearchHandler) List(w http.ResponseWriter, r *http.Request) {
	saved, err := h.savedSearches.List(r.Context(), middleware.UserID(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, map[string]interface{}{
		"savedSearches": saved,
		"count":         len(saved),
	})
}

// Delete handles DELETE /api/search/saved/{id}
func (h *SavedSearchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "saved search ID is required")
		return
	}

	if err := h.savedSearches.Delete(r.Context(), middleware.UserID(r), id); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Use handles POST /api/search/saved/{id}/use
func (h *SavedSearchHandler) Use(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "saved search ID is required")
		return
	}

	saved, err := h.savedSearches.Use(r.Context(), middleware.UserID(r), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, saved)
}
