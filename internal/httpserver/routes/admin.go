package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalebar/viaductecho-backend/internal/httpserver/deps"
	"github.com/dalebar/viaductecho-backend/internal/httpserver/handlers"
	"github.com/dalebar/viaductecho-backend/internal/httpserver/mw"
)

func init() { Register(registerAdmin) }

func registerAdmin(r chi.Router, d deps.Deps) {
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(mw.AdminKey(d.AdminAPIKey, d.Logger))

		r.Route("/venues", func(r chi.Router) {
			r.Post("/", handlers.CreateVenue(d))
			r.Patch("/{id}", handlers.UpdateVenue(d))
			r.Delete("/{id}", handlers.DeleteVenue(d))
		})

		r.Route("/events", func(r chi.Router) {
			r.Post("/", handlers.CreateEvent(d))
			r.Patch("/{id}", handlers.UpdateEvent(d))
			r.Delete("/{id}", handlers.DeleteEvent(d))
			r.Post("/{id}/feature", handlers.FeatureEvent(d))
		})

		r.Delete("/articles/{id}", handlers.DeleteArticle(d))

		r.Post("/aggregation/news/trigger", handlers.TriggerNews(d))
		r.Post("/aggregation/events/trigger", handlers.TriggerEvents(d))
		r.Post("/publish", handlers.Publish(d))
		r.Post("/images", handlers.UploadImage(d))
	})
}
