package mw

import (
	"crypto/subtle"
	"net/http"

	"github.com/dalebar/viaductecho-backend/internal/logger"
)

// AdminKey guards the admin routes with an X-API-Key header check. The
// comparison is constant-time so the key length and prefix never leak
// through response timing. An empty configured key rejects everything.
func AdminKey(key string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				http.Error(w, "admin API disabled", http.StatusForbidden)
				return
			}

			got := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				log.Warn("admin auth rejected", logger.String("remote_ip", r.RemoteAddr))
				http.Error(w, "invalid API key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
