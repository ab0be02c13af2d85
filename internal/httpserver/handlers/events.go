package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dalebar/viaductecho-backend/internal/cache"
	"github.com/dalebar/viaductecho-backend/internal/httpserver/deps"
	"github.com/dalebar/viaductecho-backend/internal/model"
	"github.com/dalebar/viaductecho-backend/internal/store"
)

type paginatedEvents struct {
	Events     []model.Event    `json:"events"`
	Pagination store.Pagination `json:"pagination"`
}

// ListEvents serves the filtered, paginated upcoming-events feed.
func ListEvents(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, perPage := pageParams(r, d)

		filters, ok := eventFilters(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid date filter, want YYYY-MM-DD")
			return
		}

		events, total, err := d.Store.EventsPaginated(page, perPage, filters)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, paginatedEvents{
			Events:     events,
			Pagination: store.NewPagination(page, perPage, total),
		})
	}
}

func eventFilters(r *http.Request) (store.EventFilters, bool) {
	q := r.URL.Query()
	var f store.EventFilters

	for _, spec := range []struct {
		name string
		dest **time.Time
	}{
		{"from_date", &f.FromDate},
		{"to_date", &f.ToDate},
	} {
		raw := q.Get(spec.name)
		if raw == "" {
			continue
		}
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, false
		}
		*spec.dest = &parsed
	}

	f.EventType = q.Get("event_type")
	if raw := q.Get("venue_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			f.VenueID = uint(id)
		}
	}
	if raw := q.Get("is_free"); raw != "" {
		free := raw == "true" || raw == "1"
		f.IsFree = &free
	}
	f.FeaturedOnly = q.Get("featured") == "true" || q.Get("featured") == "1"
	return f, true
}

// EventsCalendar serves per-day event counts for one month, cached when
// Redis is configured.
func EventsCalendar(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		year := queryInt(r, "year", now.Year())
		month := queryInt(r, "month", int(now.Month()))
		if month < 1 || month > 12 {
			writeError(w, http.StatusBadRequest, "month must be between 1 and 12")
			return
		}

		key := cache.Key("calendar", strconv.Itoa(year), strconv.Itoa(month))

		var calendar map[string]int
		if !d.Cache.Get(r.Context(), key, &calendar) {
			var err error
			calendar, err = d.Store.CalendarData(year, month)
			if err != nil {
				storeError(w, err)
				return
			}
			d.Cache.Set(r.Context(), key, calendar)
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"year":     year,
			"month":    month,
			"calendar": calendar,
		})
	}
}

// EventTypes serves the distinct event types in use.
func EventTypes(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		types, err := d.Store.EventTypes()
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"event_types": types})
	}
}

// GetEvent serves one active event by numeric id or slug.
func GetEvent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "id")

		var event *model.Event
		var err error
		if id, ok := pathID(raw); ok {
			event, err = d.Store.EventByID(id)
		} else {
			event, err = d.Store.EventBySlug(raw)
		}
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, event)
	}
}
