package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalebar/viaductecho-backend/internal/httpserver/deps"
	"github.com/dalebar/viaductecho-backend/internal/httpserver/handlers"
)

func init() { Register(registerArticles) }

func registerArticles(r chi.Router, d deps.Deps) {
	r.Route("/api/v1/articles", func(r chi.Router) {
		r.Get("/", handlers.ListArticles(d))
		r.Get("/recent", handlers.RecentArticles(d))
		r.Get("/search", handlers.SearchArticles(d))
		r.Get("/{id}", handlers.GetArticle(d))
	})
}
