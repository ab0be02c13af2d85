package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dalebar/viaductecho-backend/internal/httpserver/deps"
	"github.com/dalebar/viaductecho-backend/internal/model"
)

type venuePayload struct {
	Name         *string  `json:"name"`
	AddressLine1 *string  `json:"address_line1"`
	AddressLine2 *string  `json:"address_line2"`
	Town         *string  `json:"town"`
	Postcode     *string  `json:"postcode"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Description  *string  `json:"description"`
	VenueType    *string  `json:"venue_type"`
	Capacity     *int     `json:"capacity"`
	WebsiteURL   *string  `json:"website_url"`
	Phone        *string  `json:"phone"`
	ImageURL     *string  `json:"image_url"`
}

// updates maps only the fields present in the payload, keyed by column.
func (p venuePayload) updates() map[string]interface{} {
	u := make(map[string]interface{})
	set := func(col string, v any, present bool) {
		if present {
			u[col] = v
		}
	}
	set("name", deref(p.Name), p.Name != nil)
	set("address_line1", deref(p.AddressLine1), p.AddressLine1 != nil)
	set("address_line2", deref(p.AddressLine2), p.AddressLine2 != nil)
	set("town", deref(p.Town), p.Town != nil)
	set("postcode", deref(p.Postcode), p.Postcode != nil)
	set("description", deref(p.Description), p.Description != nil)
	set("venue_type", deref(p.VenueType), p.VenueType != nil)
	set("website_url", deref(p.WebsiteURL), p.WebsiteURL != nil)
	set("phone", deref(p.Phone), p.Phone != nil)
	set("image_url", deref(p.ImageURL), p.ImageURL != nil)
	if p.Latitude != nil {
		u["latitude"] = *p.Latitude
	}
	if p.Longitude != nil {
		u["longitude"] = *p.Longitude
	}
	if p.Capacity != nil {
		u["capacity"] = *p.Capacity
	}
	return u
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CreateVenue inserts an admin-curated venue, deduplicated the same way
// as sourced venues.
func CreateVenue(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p venuePayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if p.Name == nil || strings.TrimSpace(*p.Name) == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}

		in := model.VenueInput{
			Name:         *p.Name,
			AddressLine1: deref(p.AddressLine1),
			AddressLine2: deref(p.AddressLine2),
			Town:         deref(p.Town),
			Postcode:     deref(p.Postcode),
			Latitude:     p.Latitude,
			Longitude:    p.Longitude,
			Description:  deref(p.Description),
			VenueType:    deref(p.VenueType),
			Capacity:     p.Capacity,
			WebsiteURL:   deref(p.WebsiteURL),
			Phone:        deref(p.Phone),
			ImageURL:     deref(p.ImageURL),
			SourceName:   "admin",
		}

		venue, err := d.Store.GetOrCreateVenue(in)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, venue)
	}
}

// UpdateVenue applies a partial update; absent fields are untouched.
func UpdateVenue(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid venue id")
			return
		}

		var p venuePayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		updates := p.updates()
		if len(updates) == 0 {
			writeError(w, http.StatusBadRequest, "no fields to update")
			return
		}

		venue, err := d.Store.UpdateVenue(id, updates)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, venue)
	}
}

// DeleteVenue removes a venue with no remaining events.
func DeleteVenue(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid venue id")
			return
		}
		if err := d.Store.DeleteVenue(id); err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
