package router

import (
	"crypto/subtle"
	"net/http"
)

// HeaderAPIKey carries the back-office key for operator-only endpoints.
const HeaderAPIKey = "X-API-Key"

// RequireAPIKey guards an endpoint with a static key list. An empty list
// rejects every request.
func RequireAPIKey(keys []string) Middleware {
	allowed := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			allowed = append(allowed, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(HeaderAPIKey))
			if len(got) == 0 {
				writeJSON(w, errorResponse{Message: "Authentication required"}, http.StatusUnauthorized)
				return
			}

			match := 0
			for _, k := range allowed {
				match |= subtle.ConstantTimeCompare(got, k)
			}
			if match != 1 {
				writeJSON(w, errorResponse{Message: "Invalid api key"}, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
