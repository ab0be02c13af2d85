package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalebar/viaductecho-backend/internal/httpserver/deps"
	"github.com/dalebar/viaductecho-backend/internal/httpserver/handlers"
)

func init() { Register(registerVenues) }

func registerVenues(r chi.Router, d deps.Deps) {
	r.Route("/api/v1/venues", func(r chi.Router) {
		r.Get("/", handlers.ListVenues(d))
		r.Get("/{id}", handlers.GetVenue(d))
		r.Get("/{id}/events", handlers.VenueEvents(d))
	})
}
