package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dalebar/viaductecho-backend/internal/cache"
	"github.com/dalebar/viaductecho-backend/internal/httpserver/deps"
	"github.com/dalebar/viaductecho-backend/internal/model"
	"github.com/dalebar/viaductecho-backend/internal/store"
)

// ListSources serves per-source article statistics, cached when Redis
// is configured.
func ListSources(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := cache.Key("sources")

		var stats []model.SourceStat
		if !d.Cache.Get(r.Context(), key, &stats) {
			var err error
			stats, err = d.Store.SourceStats()
			if err != nil {
				storeError(w, err)
				return
			}
			d.Cache.Set(r.Context(), key, stats)
		}

		writeJSON(w, http.StatusOK, map[string]any{"sources": stats})
	}
}

// SourceArticles serves the paginated feed restricted to one source.
func SourceArticles(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source := chi.URLParam(r, "source")
		if source == "" {
			writeError(w, http.StatusBadRequest, "missing source name")
			return
		}
		page, perPage := pageParams(r, d)

		articles, total, err := d.Store.ArticlesPaginated(page, perPage, source, true)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, paginatedArticles{
			Articles:   articles,
			Pagination: store.NewPagination(page, perPage, total),
		})
	}
}
