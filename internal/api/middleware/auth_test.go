package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eventrove/marketplace-backend/internal/api/middleware"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequireUser(t *testing.T) {
	handler := middleware.RequireUser(okHandler)

	req := httptest.NewRequest("GET", "/api/search/history", nil)
	w := httptest.NewRecorder()
	handler(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest("GET", "/api/search/history", nil)
	req.Header.Set(middleware.HeaderUserID, "u1")
	w = httptest.NewRecorder()
	handler(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	handler := middleware.RequireAdmin(okHandler)

	req := httptest.NewRequest("GET", "/api/search/analytics", nil)
	w := httptest.NewRecorder()
	handler(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest("GET", "/api/search/analytics", nil)
	req.Header.Set(middleware.HeaderUserID, "u1")
	req.Header.Set(middleware.HeaderUserRole, "member")
	w = httptest.NewRecorder()
	handler(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest("GET", "/api/search/analytics", nil)
	req.Header.Set(middleware.HeaderUserID, "u1")
	req.Header.Set(middleware.HeaderUserRole, middleware.RoleAdmin)
	w = httptest.NewRecorder()
	handler(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIdentityHelpers(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(middleware.HeaderUserID, "u1")
	req.Header.Set(middleware.HeaderUserRole, "admin")
	req.Header.Set(middleware.HeaderSessionID, "sess-1")

	assert.Equal(t, "u1", middleware.UserID(req))
	assert.Equal(t, "admin", middleware.UserRole(req))
	assert.Equal(t, "sess-1", middleware.SessionID(req))

	anon := httptest.NewRequest("GET", "/", nil)
	assert.Equal(t, "", middleware.UserID(anon))
}
