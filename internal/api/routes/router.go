package routes

import (
	"net/http"

	"github.com/eventrove/marketplace-backend/internal/api/handlers"
	"github.com/eventrove/marketplace-backend/internal/api/middleware"
	"github.com/eventrove/marketplace-backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	searchHandler      *handlers.SearchHandler
	analyticsHandler   *handlers.AnalyticsHandler
	savedSearchHandler *handlers.SavedSearchHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	searchHandler *handlers.SearchHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	savedSearchHandler *handlers.SavedSearchHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:                http.NewServeMux(),
		searchHandler:      searchHandler,
		analyticsHandler:   analyticsHandler,
		savedSearchHandler: savedSearchHandler,
		metrics:            metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Search endpoints
	r.mux.HandleFunc("GET /api/search/suppliers", r.searchHandler.SearchSuppliers)
	r.mux.HandleFunc("GET /api/search/packages", r.searchHandler.SearchPackages)
	r.mux.HandleFunc("POST /api/search/advanced", r.searchHandler.AdvancedSearch)
	r.mux.HandleFunc("GET /api/search/suggestions", r.searchHandler.Suggestions)
	r.mux.HandleFunc("GET /api/search/spotlight", r.searchHandler.Spotlight)

	// Facet endpoints
	r.mux.HandleFunc("GET /api/search/categories", r.searchHandler.Facets(handlers.FacetCategories))
	r.mux.HandleFunc("GET /api/search/amenities", r.searchHandler.Facets(handlers.FacetAmenities))
	r.mux.HandleFunc("GET /api/search/locations", r.searchHandler.Facets(handlers.FacetLocations))

	// Trend endpoints
	r.mux.HandleFunc("GET /api/search/trending", r.analyticsHandler.Trending)
	r.mux.HandleFunc("GET /api/search/popular-queries", r.analyticsHandler.Popular)

	// Per-user endpoints
	r.mux.HandleFunc("GET /api/search/history", middleware.RequireUser(r.analyticsHandler.History))
	r.mux.HandleFunc("POST /api/search/saved", middleware.RequireUser(r.savedSearchHandler.Save))
	r.mux.HandleFunc("GET /api/search/saved", middleware.RequireUser(r.savedSearchHandler.List))
	r.mux.HandleFunc("DELETE /api/search/saved/{id}", middleware.RequireUser(r.savedSearchHandler.Delete))
	r.mux.HandleFunc("POST /api/search/saved/{id}/use", middleware.RequireUser(r.savedSearchHandler.Use))

	// Admin endpoints
	r.mux.HandleFunc("GET /api/search/analytics", middleware.RequireAdmin(r.analyticsHandler.Overview))
	r.mux.HandleFunc("GET /api/search/analytics/trends", middleware.RequireAdmin(r.analyticsHandler.Trends))
	r.mux.HandleFunc("GET /api/search/analytics/user-behavior", middleware.RequireAdmin(r.analyticsHandler.UserBehavior))
	r.mux.HandleFunc("GET /api/search/performance", middleware.RequireAdmin(r.analyticsHandler.Performance))
	r.mux.HandleFunc("GET /api/search/cache/stats", middleware.RequireAdmin(r.searchHandler.CacheStats))
	r.mux.HandleFunc("POST /api/search/cache/clear", middleware.RequireAdmin(r.searchHandler.ClearCache))

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so error responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
