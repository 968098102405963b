package middleware

import (
	"net/http"
	"time"

	"github.com/qj0r9j0vc2/slack-tableflip/internal/infrastructure/observability"
)

// Observability records HTTP metrics for requests. Paths outside routes are
// labelled "other" to keep the route label bounded.
func Observability(metrics *observability.Metrics, routes ...string) func(http.Handler) http.Handler {
	known := make(map[string]bool, len(routes))
	for _, route := range routes {
		known[route] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			metrics.HTTPRequestsActive.Add(r.Context(), 1)
			defer metrics.HTTPRequestsActive.Add(r.Context(), -1)

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			route := r.URL.Path
			if !known[route] {
				route = "other"
			}
			metrics.RecordHTTPRequest(r.Context(), r.Method, route, rw.statusCode, time.Since(start))
		})
	}
}
