package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dalebar/viaductecho-backend/internal/logger"
	"github.com/dalebar/viaductecho-backend/internal/model"
	"github.com/dalebar/viaductecho-backend/internal/utils"
)

// TotallyStockportSource scrapes the Totally Stockport WordPress news
// listing.
type TotallyStockportSource struct {
	name     string
	baseURL  string
	keywords []string
	client   *http.Client
	log      logger.Logger
}

func NewTotallyStockportSource(keywords []string, timeout time.Duration, log logger.Logger) *TotallyStockportSource {
	return &TotallyStockportSource{
		name:     "Totally Stockport",
		baseURL:  "https://totallystockport.co.uk/latest-news/",
		keywords: keywords,
		client:   newHTTPClient(timeout),
		log:      log,
	}
}

func (t *TotallyStockportSource) Name() string { return t.name }
func (t *TotallyStockportSource) Type() string { return "Web Scraping" }

func (t *TotallyStockportSource) Fetch(ctx context.Context) ([]model.ArticleInput, error) {
	resp, err := get(ctx, t.client, t.baseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", t.baseURL, err)
	}
	defer utils.Close(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", t.baseURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", t.baseURL, err)
	}

	articles := t.parseListing(doc)
	filtered := FilterByKeywords(articles, t.keywords)
	t.log.Info("listing scraped",
		logger.String("source", t.name),
		logger.Int("articles", len(articles)),
		logger.Int("matched", len(filtered)))
	return filtered, nil
}

func (t *TotallyStockportSource) parseListing(doc *goquery.Document) []model.ArticleInput {
	posts := doc.Find("article.post")
	if posts.Length() == 0 {
		// Theme update fallback.
		posts = doc.Find("div.fusion-post-content")
	}

	var articles []model.ArticleInput
	posts.Each(func(_ int, post *goquery.Selection) {
		titleElem := post.Find("h2").First()
		if titleElem.Length() == 0 {
			titleElem = post.Find("h3").First()
		}
		link := titleElem.Find("a").First()
		if link.Length() == 0 {
			return
		}
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}

		articles = append(articles, model.ArticleInput{
			Title:   strings.TrimSpace(link.Text()),
			Link:    href,
			Summary: t.excerpt(post),
			Source:  t.name,
			Type:    "Web Scraping",
			Pubdate: t.pubdate(post),
		})
	})
	return articles
}

func (t *TotallyStockportSource) pubdate(post *goquery.Selection) *time.Time {
	dateElem := post.Find("span.updated").First()
	if dateElem.Length() == 0 {
		dateElem = post.Find("time").First()
	}
	if dateElem.Length() == 0 {
		return nil
	}

	text := strings.TrimSpace(dateElem.Text())
	for _, layout := range []string{"January 2, 2006", "2 January 2006"} {
		if parsed, err := time.Parse(layout, text); err == nil {
			return &parsed
		}
	}
	t.log.Warn("unparseable date", logger.String("date", text))
	return nil
}

func (t *TotallyStockportSource) excerpt(post *goquery.Selection) string {
	container := post.Find("div.fusion-post-content-container").First()
	if container.Length() == 0 {
		container = post.Find("div.post-content").First()
	}
	if container.Length() == 0 {
		return ""
	}

	summary := strings.TrimSpace(container.Find("p").First().Text())
	if summary == "" {
		summary = strings.TrimSpace(container.Text())
	}
	summary = strings.TrimSpace(strings.ReplaceAll(summary, "[...]", ""))
	if idx := strings.Index(summary, "Read More"); idx >= 0 {
		summary = strings.TrimSpace(summary[:idx])
	}
	return summary
}
