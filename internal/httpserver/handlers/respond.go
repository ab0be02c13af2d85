// Package handlers contains the HTTP handler constructors. Each takes
// the shared deps struct and returns a plain http.HandlerFunc.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dalebar/viaductecho-backend/internal/httpserver/deps"
	"github.com/dalebar/viaductecho-backend/internal/store"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// storeError maps the store's error taxonomy onto HTTP statuses.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrDuplicate):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, store.ErrVenueInUse):
		writeError(w, http.StatusConflict, "venue has events")
	case errors.Is(err, store.ErrBadTransition):
		writeError(w, http.StatusConflict, "illegal status change")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// queryInt returns the named query parameter or def when absent/invalid.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// pageParams reads page/per_page with the configured defaults. The store
// clamps again; this keeps the declared MaxPageSize authoritative here.
func pageParams(r *http.Request, d deps.Deps) (page, perPage int) {
	page = queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage = queryInt(r, "per_page", d.DefaultPageSize)
	if perPage < 1 {
		perPage = d.DefaultPageSize
	}
	if perPage > d.MaxPageSize {
		perPage = d.MaxPageSize
	}
	return page, perPage
}

// pathID parses a numeric path segment.
func pathID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
