package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dalebar/viaductecho-backend/internal/httpserver/deps"
	"github.com/dalebar/viaductecho-backend/internal/model"
	"github.com/dalebar/viaductecho-backend/internal/store"
)

type paginatedArticles struct {
	Articles   []model.Article  `json:"articles"`
	Pagination store.Pagination `json:"pagination"`
}

// ListArticles serves the paginated processed-article feed.
func ListArticles(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, perPage := pageParams(r, d)
		source := r.URL.Query().Get("source")

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

// RecentArticles serves articles from the last N hours (max one week).
func RecentArticles(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hours := queryInt(r, "hours", 24)
		if hours < 1 || hours > 168 {
			writeError(w, http.StatusBadRequest, "hours must be between 1 and 168")
			return
		}
		limit := queryInt(r, "limit", 50)

		articles, err := d.Store.RecentArticles(hours, limit)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"articles": articles})
	}
}

// SearchArticles runs the LIKE search. Queries under two characters are
// rejected here; the store also fails them closed.
func SearchArticles(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if len(query) < 2 {
			writeError(w, http.StatusBadRequest, "query must be at least 2 characters")
			return
		}
		page, perPage := pageParams(r, d)

		articles, total, err := d.Store.SearchArticles(query, page, perPage)
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

// GetArticle serves one processed article by numeric id.
func GetArticle(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid article id")
			return
		}

		article, err := d.Store.ArticleByID(id)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, article)
	}
}
