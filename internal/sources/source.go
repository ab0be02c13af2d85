// Package sources fetches raw articles from the configured news origins:
// RSS feeds and site-specific scrapers.
package sources

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dalebar/viaductecho-backend/internal/logger"
	"github.com/dalebar/viaductecho-backend/internal/model"
)

const userAgent = "Mozilla/5.0 (compatible; ViaductBot/1.0)"

// Source is one external origin of articles.
type Source interface {
	Name() string
	Type() string
	Fetch(ctx context.Context) ([]model.ArticleInput, error)
}

// FilterByKeywords keeps articles whose title or summary contains any of
// the keywords (case-insensitive substring match).
func FilterByKeywords(articles []model.ArticleInput, keywords []string) []model.ArticleInput {
	filtered := make([]model.ArticleInput, 0, len(articles))
	for _, a := range articles {
		title := strings.ToLower(a.Title)
		summary := strings.ToLower(a.Summary)
		for _, kw := range keywords {
			if strings.Contains(title, kw) || strings.Contains(summary, kw) {
				filtered = append(filtered, a)
				break
			}
		}
	}
	return filtered
}

// newHTTPClient builds the outbound client shared by the scrapers.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// get issues a GET with the bot user agent.
func get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	return client.Do(req)
}

// NewScraper returns the named scraper, or nil if unknown. The set is
// code-level because each scraper encodes one site's markup.
func NewScraper(name string, keywords []string, timeout time.Duration, log logger.Logger) Source {
	switch name {
	case "nub":
		return NewNubSource(keywords, timeout, log)
	case "totallystockport":
		return NewTotallyStockportSource(keywords, timeout, log)
	default:
		return nil
	}
}
