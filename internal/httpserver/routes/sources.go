package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalebar/viaductecho-backend/internal/httpserver/deps"
	"github.com/dalebar/viaductecho-backend/internal/httpserver/handlers"
)

func init() { Register(registerSources) }

func registerSources(r chi.Router, d deps.Deps) {
	r.Route("/api/v1/sources", func(r chi.Router) {
		r.Get("/", handlers.ListSources(d))
		r.Get("/{source}/articles", handlers.SourceArticles(d))
	})
}
