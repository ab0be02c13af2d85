package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dalebar/viaductecho-backend/internal/httpserver/deps"
	"github.com/dalebar/viaductecho-backend/internal/model"
	"github.com/dalebar/viaductecho-backend/internal/store"
)

type paginatedVenues struct {
	Venues     []model.Venue    `json:"venues"`
	Pagination store.Pagination `json:"pagination"`
}

// ListVenues serves the paginated venue directory.
func ListVenues(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, perPage := pageParams(r, d)
		venueType := r.URL.Query().Get("venue_type")

		venues, total, err := d.Store.VenuesPaginated(page, perPage, venueType)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, paginatedVenues{
			Venues:     venues,
			Pagination: store.NewPagination(page, perPage, total),
		})
	}
}

// GetVenue serves one venue by numeric id or slug.
func GetVenue(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "id")

		var venue *model.Venue
		var err error
		if id, ok := pathID(raw); ok {
			venue, err = d.Store.VenueByID(id)
		} else {
			venue, err = d.Store.VenueBySlug(raw)
		}
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, venue)
	}
}

// VenueEvents serves upcoming events at one venue, addressed by numeric
// id or slug.
func VenueEvents(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "id")

		var venue *model.Venue
		var err error
		if id, ok := pathID(raw); ok {
			venue, err = d.Store.VenueByID(id)
		} else {
			venue, err = d.Store.VenueBySlug(raw)
		}
		if err != nil {
			storeError(w, err)
			return
		}

		var fromDate *time.Time
		if raw := r.URL.Query().Get("from_date"); raw != "" {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid from_date, want YYYY-MM-DD")
				return
			}
			fromDate = &parsed
		}
		limit := queryInt(r, "limit", 20)

		events, err := d.Store.EventsByVenue(venue.ID, fromDate, limit)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"venue":  venue,
			"events": events,
		})
	}
}
