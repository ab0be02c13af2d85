package mw

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the configured origins to call the API from the browser.
// An empty list falls back to allowing everything, which suits a
// public read-only news API.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	})
}
