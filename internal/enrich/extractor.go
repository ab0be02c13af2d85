// Package enrich turns a raw article link into full content, an image
// and an AI summary.
package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dalebar/viaductecho-backend/internal/logger"
	"github.com/dalebar/viaductecho-backend/internal/utils"
)

const extractorUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// Extracted is the article body and lead image pulled from a page.
// Both fields may be empty; callers fall back to the feed summary.
type Extracted struct {
	Content  string
	ImageURL string
}

// Extractor scrapes article pages with per-site selectors.
type Extractor struct {
	client *http.Client
	log    logger.Logger
}

func NewExtractor(timeout time.Duration, log logger.Logger) *Extractor {
	return &Extractor{
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Extract fetches the page and dispatches on the host. Errors degrade
// to an empty result rather than failing the pipeline.
func (e *Extractor) Extract(ctx context.Context, url string) Extracted {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		e.log.Error("extraction request", logger.String("url", url), logger.Error(err))
		return Extracted{}
	}
	req.Header.Set("User-Agent", extractorUA)

	resp, err := e.client.Do(req)
	if err != nil {
		e.log.Error("extraction fetch", logger.String("url", url), logger.Error(err))
		return Extracted{}
	}
	defer utils.Close(resp.Body)
	if resp.StatusCode != http.StatusOK {
		e.log.Error("extraction fetch", logger.String("url", url), logger.Int("status", resp.StatusCode))
		return Extracted{}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		e.log.Error("extraction parse", logger.String("url", url), logger.Error(err))
		return Extracted{}
	}

	return extractFromDoc(doc, url)
}

func extractFromDoc(doc *goquery.Document, url string) Extracted {
	switch {
	case strings.Contains(url, "bbc.com") || strings.Contains(url, "bbc.co.uk"):
		return extractBBC(doc)
	case strings.Contains(url, "manchestereveningnews.co.uk"):
		return extractMEN(doc)
	case strings.Contains(url, "stockport.nub.news"):
		return extractNub(doc)
	default:
		return extractGeneric(doc)
	}
}

func extractBBC(doc *goquery.Document) Extracted {
	var paragraphs []string
	doc.Find(`div[data-component="text-block"]`).Each(func(_ int, div *goquery.Selection) {
		if p := strings.TrimSpace(div.Find("p").First().Text()); p != "" {
			paragraphs = append(paragraphs, p)
		}
	})
	return Extracted{
		Content:  strings.Join(paragraphs, "\n\n"),
		ImageURL: ogImage(doc),
	}
}

func extractMEN(doc *goquery.Document) Extracted {
	content := ""
	raw := doc.Find(`script[type="application/ld+json"]`).First().Text()
	if raw != "" {
		content = articleBody(raw)
	}
	return Extracted{Content: content, ImageURL: ogImage(doc)}
}

// articleBody pulls articleBody out of an ld+json blob that may be a
// single object or an array of them.
func articleBody(raw string) string {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		var list []map[string]any
		if err := json.Unmarshal([]byte(raw), &list); err != nil || len(list) == 0 {
			return ""
		}
		obj = list[0]
	}

	body, _ := obj["articleBody"].(string)
	if body == "" {
		return ""
	}
	body = strings.ReplaceAll(body, `\"`, `"`)
	body = strings.ReplaceAll(body, `\n`, "\n")
	return htmlTagRe.ReplaceAllString(body, "")
}

func extractNub(doc *goquery.Document) Extracted {
	content := strings.TrimSpace(doc.Find("div.prose").First().Text())

	imageURL := ""
	if img := doc.Find("div.w-full.overflow-hidden img").First(); img.Length() > 0 {
		imageURL, _ = img.Attr("src")
	}
	return Extracted{Content: content, ImageURL: imageURL}
}

func extractGeneric(doc *goquery.Document) Extracted {
	var paragraphs []string
	doc.Find("p").EachWithBreak(func(i int, p *goquery.Selection) bool {
		paragraphs = append(paragraphs, strings.TrimSpace(p.Text()))
		return i < 4
	})
	return Extracted{
		Content:  strings.Join(paragraphs, "\n\n"),
		ImageURL: ogImage(doc),
	}
}

func ogImage(doc *goquery.Document) string {
	content, _ := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	return content
}
