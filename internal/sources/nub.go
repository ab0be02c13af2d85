package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dalebar/viaductecho-backend/internal/logger"
	"github.com/dalebar/viaductecho-backend/internal/model"
	"github.com/dalebar/viaductecho-backend/internal/utils"
)

const nubDateLayout = "2006-01-02 15:04:05"

// NubSource scrapes the Stockport Nub News listing page. The article
// index is embedded as an ld+json script tag, so no HTML traversal of
// the list itself is needed.
type NubSource struct {
	name    string
	baseURL string
	client  *http.Client
	log     logger.Logger
}

type nubItem struct {
	Headline      string `json:"headline"`
	URL           string `json:"url"`
	DatePublished string `json:"datePublished"`
}

func NewNubSource(_ []string, timeout time.Duration, log logger.Logger) *NubSource {
	return &NubSource{
		name:    "Stockport Nub News",
		baseURL: "https://stockport.nub.news/news",
		client:  newHTTPClient(timeout),
		log:     log,
	}
}

func (n *NubSource) Name() string { return n.name }
func (n *NubSource) Type() string { return "Web scraping" }

func (n *NubSource) Fetch(ctx context.Context) ([]model.ArticleInput, error) {
	resp, err := get(ctx, n.client, n.baseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", n.baseURL, err)
	}
	defer utils.Close(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", n.baseURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", n.baseURL, err)
	}

	raw := doc.Find(`script[type="application/ld+json"]`).First().Text()
	if raw == "" {
		return nil, nil
	}
	return n.parseListing(raw)
}

// parseListing decodes the ld+json article index. Raw control
// characters inside string values break the JSON decoder, so they are
// replaced with spaces first.
func (n *NubSource) parseListing(raw string) ([]model.ArticleInput, error) {
	cleaned := stripControlChars(raw)

	var items []nubItem
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	articles := make([]model.ArticleInput, 0, len(items))
	for _, item := range items {
		pub, err := time.Parse(nubDateLayout, item.DatePublished)
		if err != nil {
			n.log.Warn("skipping article with bad date",
				logger.String("url", item.URL),
				logger.String("date", item.DatePublished))
			continue
		}
		articles = append(articles, model.ArticleInput{
			Title:   item.Headline,
			Link:    item.URL,
			Summary: item.Headline,
			Source:  n.name,
			Type:    "Web scraping",
			Pubdate: &pub,
		})
	}

	n.log.Info("listing scraped",
		logger.String("source", n.name),
		logger.Int("articles", len(articles)))
	return articles, nil
}

func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7F {
			return ' '
		}
		return r
	}, s)
}
