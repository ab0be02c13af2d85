package mw

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dalebar/viaductecho-backend/internal/metrics"
)

// Metrics counts requests per chi route pattern and status class.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(ww, r)

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = "unmatched"
			}
			status := ww.status
			if status == 0 {
				status = http.StatusOK
			}
			class := strconv.Itoa(status/100) + "xx"
			metrics.HTTPRequests.WithLabelValues(pattern, class).Inc()
		})
	}
}
