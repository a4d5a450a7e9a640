package handlers

import (
	"net/http"
	"strconv"

	"github.com/eventrove/marketplace-backend/internal/api/middleware"
	"github.com/eventrove/marketplace-backend/internal/application/services"
)

// AnalyticsHandler handles search analytics HTTP requests
type AnalyticsHandler struct {
	analytics *services.SearchAnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics *services.SearchAnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Trending handles GET /api/search/trending
func (h *AnalyticsHandler) Trending(w http.ResponseWriter, r *http.Request) {
	window := r.URL.Query().Get("timeRange")
	if window == "" {
		window = "24h"
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	terms, err := h.analytics.Trending(r.Context(), window, limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, map[string]interface{}{
		"timeRange": window,
		"terms":     terms,
		"count":     len(terms),
	})
}

// Popular handles GET /api/search/popular-queries
func (h *AnalyticsHandler) Popular(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	terms, err := h.analytics.Popular(r.Context(), limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, map[string]interface{}{
		"terms": terms,
		"count": len(terms),
	})
}

// History handles GET /api/search/history
func (h *AnalyticsHandler) History(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	events, pagination, err := h.analytics.History(r.Context(), middleware.UserID(r), page, limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, map[string]interface{}{
		"searches":   events,
		"pagination": pagination,
	})
}

// Overview handles GET /api/search/analytics
func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, zeroResults, err := h.analytics.Overview(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, map[string]interface{}{
		"overview":          overview,
		"zeroResultQueries": zeroResults,
	})
}

// Trends handles GET /api/search/analytics/trends
func (h *AnalyticsHandler) Trends(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	daily, err := h.analytics.Trends(r.Context(), days)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, map[string]interface{}{
		"daily": daily,
	})
}

// UserBehavior handles GET /api/search/analytics/user-behavior
func (h *AnalyticsHandler) UserBehavior(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.UserBehavior(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, stats)
}

// Performance handles GET /api/search/performance
func (h *AnalyticsHandler) Performance(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.Performance(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithData(w, http.StatusOK, stats)
}
