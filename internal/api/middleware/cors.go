package middleware

import (
	"net/http"
	"os"
	"strings"
)

// allowedHeaders includes the trusted identity headers forwarded by the
// API gateway so browser clients behind it can pass them through.
const allowedHeaders = "Content-Type, Authorization, " +
	HeaderUserID + ", " + HeaderUserRole + ", " + HeaderSessionID

type corsPolicy struct {
	wildcard bool
	origins  map[string]struct{}
}

func loadCORSPolicy() corsPolicy {
	raw := os.Getenv("ALLOWED_ORIGINS")
	if raw == "" {
		// Wildcard is the development default; production sets ALLOWED_ORIGINS.
		return corsPolicy{wildcard: true}
	}

	origins := make(map[string]struct{})
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins[o] = struct{}{}
		}
	}
	return corsPolicy{origins: origins}
}

func (p corsPolicy) apply(w http.ResponseWriter, origin string) {
	switch {
	case p.wildcard:
		w.Header().Set("Access-Control-Allow-Origin", "*")
	default:
		if _, ok := p.origins[origin]; !ok {
			return
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)
	w.Header().Set("Access-Control-Max-Age", "600")
}

// CORSMiddleware adds CORS headers and answers preflight requests.
func CORSMiddleware(next http.Handler) http.Handler {
	policy := loadCORSPolicy()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			policy.apply(w, origin)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
