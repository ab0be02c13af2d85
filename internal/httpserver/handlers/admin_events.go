package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dalebar/viaductecho-backend/internal/httpserver/deps"
	"github.com/dalebar/viaductecho-backend/internal/model"
)

type eventPayload struct {
	Title            *string    `json:"title"`
	Description      *string    `json:"description"`
	ShortDescription *string    `json:"short_description"`
	StartDatetime    *time.Time `json:"start_datetime"`
	EndDatetime      *time.Time `json:"end_datetime"`
	DoorsTime        *string    `json:"doors_time"`
	VenueID          *uint      `json:"venue_id"`
	EventType        *string    `json:"event_type"`
	ImageURL         *string    `json:"image_url"`
	TicketURL        *string    `json:"ticket_url"`
	PriceMin         *float64   `json:"price_min"`
	PriceMax         *float64   `json:"price_max"`
	IsFree           *bool      `json:"is_free"`
}

func (p eventPayload) updates() map[string]interface{} {
	u := make(map[string]interface{})
	if p.Title != nil {
		u["title"] = *p.Title
	}
	if p.Description != nil {
		u["description"] = *p.Description
	}
	if p.ShortDescription != nil {
		u["short_description"] = *p.ShortDescription
	}
	if p.StartDatetime != nil {
		u["start_datetime"] = *p.StartDatetime
	}
	if p.EndDatetime != nil {
		u["end_datetime"] = *p.EndDatetime
	}
	if p.DoorsTime != nil {
		u["doors_time"] = *p.DoorsTime
	}
	if p.EventType != nil {
		u["event_type"] = *p.EventType
	}
	if p.ImageURL != nil {
		u["image_url"] = *p.ImageURL
	}
	if p.TicketURL != nil {
		u["ticket_url"] = *p.TicketURL
	}
	if p.PriceMin != nil {
		u["price_min"] = decimal.NewFromFloat(*p.PriceMin)
	}
	if p.PriceMax != nil {
		u["price_max"] = decimal.NewFromFloat(*p.PriceMax)
	}
	if p.IsFree != nil {
		u["is_free"] = *p.IsFree
	}
	return u
}

// CreateEvent inserts an admin-curated event, still deduplicated by the
// event hash.
func CreateEvent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p eventPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if p.Title == nil || strings.TrimSpace(*p.Title) == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}
		if p.StartDatetime == nil {
			writeError(w, http.StatusBadRequest, "start_datetime is required")
			return
		}
		if p.VenueID == nil {
			writeError(w, http.StatusBadRequest, "venue_id is required")
			return
		}
		if _, err := d.Store.VenueByID(*p.VenueID); err != nil {
			storeError(w, err)
			return
		}

		event := &model.Event{
			Title:         *p.Title,
			Description:   deref(p.Description),
			StartDatetime: *p.StartDatetime,
			EndDatetime:   p.EndDatetime,
			DoorsTime:     deref(p.DoorsTime),
			VenueID:       *p.VenueID,
			EventType:     deref(p.EventType),
			ImageURL:      deref(p.ImageURL),
			TicketURL:     deref(p.TicketURL),
			SourceName:    "admin",
			SourceType:    "manual",
		}
		if event.EventType == "" {
			event.EventType = "other"
		}
		if p.ShortDescription != nil {
			event.ShortDescription = *p.ShortDescription
		}
		if p.PriceMin != nil {
			v := decimal.NewFromFloat(*p.PriceMin)
			event.PriceMin = &v
		}
		if p.PriceMax != nil {
			v := decimal.NewFromFloat(*p.PriceMax)
			event.PriceMax = &v
		}
		if p.IsFree != nil {
			event.IsFree = *p.IsFree
		}

		if err := d.Store.InsertEventFull(event); err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, event)
	}
}

// UpdateEvent applies a partial update; absent fields are untouched.
func UpdateEvent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid event id")
			return
		}

		var p eventPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		updates := p.updates()
		if len(updates) == 0 {
			writeError(w, http.StatusBadRequest, "no fields to update")
			return
		}

		event, err := d.Store.UpdateEvent(id, updates)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, event)
	}
}

// DeleteEvent soft-deletes an event. The row keeps its hash so the same
// occurrence cannot re-enter via aggregation.
func DeleteEvent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid event id")
			return
		}
		if err := d.Store.SoftDeleteEvent(id); err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// FeatureEvent toggles or sets the featured flag.
func FeatureEvent(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid event id")
			return
		}

		var body struct {
			Featured *bool `json:"featured"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Featured == nil {
			writeError(w, http.StatusBadRequest, "featured (bool) is required")
			return
		}

		event, err := d.Store.SetEventFeatured(id, *body.Featured)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, event)
	}
}
