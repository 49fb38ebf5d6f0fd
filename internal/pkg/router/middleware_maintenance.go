package router

import (
	"net/http"
	"slices"

	"github.com/shandysiswandi/chequeflow/internal/pkg/config"
)

// middlewareMaintenance answers 503 for routes listed under
// app.maintenance.endpoints, e.g. "/api/v1/approvals".
// The list is read on every request so a config reload applies immediately.
func middlewareMaintenance(cfg config.Config) Middleware {
	return func(next http.Handler) http.Handler {
		if cfg == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if slices.Contains(cfg.GetArray("app.maintenance.endpoints"), matchedRoutePath(r)) {
				w.Header().Set("Retry-After", "120")
				writeJSON(w, errorResponse{Message: "Service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
