package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalebar/viaductecho-backend/internal/httpserver/deps"
	"github.com/dalebar/viaductecho-backend/internal/httpserver/handlers"
)

func init() { Register(registerEvents) }

func registerEvents(r chi.Router, d deps.Deps) {
	r.Route("/api/v1/events", func(r chi.Router) {
		r.Get("/", handlers.ListEvents(d))
		r.Get("/calendar", handlers.EventsCalendar(d))
		r.Get("/types", handlers.EventTypes(d))
		r.Get("/{id}", handlers.GetEvent(d))
	})
}
