package middleware

import (
	"encoding/json"
	"net/http"
)

// Identity headers injected by the auth gateway in front of this
// service. Requests reaching us are already authenticated; the headers
// are trusted.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"
	HeaderSessionID = "X-Session-ID"
)

// RoleAdmin gates the analytics and cache administration endpoints.
const RoleAdmin = "admin"

// UserID returns the authenticated user id, empty for anonymous traffic.
func UserID(r *http.Request) string {
	return r.Header.Get(HeaderUserID)
}

// UserRole returns the caller's role as asserted by the gateway.
func UserRole(r *http.Request) string {
	return r.Header.Get(HeaderUserRole)
}

// SessionID returns the client session identifier, if the gateway
// forwarded one.
func SessionID(r *http.Request) string {
	return r.Header.Get(HeaderSessionID)
}

// RequireUser rejects requests without an authenticated user.
func RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if UserID(r) == "" {
			writeAuthError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r)
	}
}

// RequireAdmin rejects requests whose caller is not an admin.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if UserID(r) == "" {
			writeAuthError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if UserRole(r) != RoleAdmin {
			writeAuthError(w, http.StatusForbidden, "admin role required")
			return
		}
		next(w, r)
	}
}

func writeAuthError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
