package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dalebar/viaductecho-backend/internal/logger"
	"github.com/dalebar/viaductecho-backend/internal/model"
)

func TestFilterByKeywords(t *testing.T) {
	articles := []model.ArticleInput{
		{Title: "Stockport market reopens", Summary: "after refurbishment"},
		{Title: "Weather warning", Summary: "heavy rain across Bramhall"},
		{Title: "National politics update", Summary: "nothing local here"},
		{Title: "UPPERCASE STOCKPORT NEWS", Summary: ""},
	}
	keywords := []string{"stockport", "bramhall"}

	got := FilterByKeywords(articles, keywords)
	if len(got) != 3 {
		t.Fatalf("FilterByKeywords() kept %d articles, want 3", len(got))
	}
	for _, a := range got {
		if a.Title == "National politics update" {
			t.Error("non-matching article survived the filter")
		}
	}
}

func TestFilterByKeywordsEmptyInput(t *testing.T) {
	if got := FilterByKeywords(nil, []string{"stockport"}); len(got) != 0 {
		t.Errorf("FilterByKeywords(nil) = %d articles, want 0", len(got))
	}
}

func TestFeedSourceFetch(t *testing.T) {
	const rss = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <item>
      <title>Stockport viaduct lit up for charity</title>
      <link>https://example.com/viaduct</link>
      <description>The landmark glows purple tonight.</description>
      <pubDate>Mon, 02 Dec 2024 08:30:00 GMT</pubDate>
    </item>
    <item>
      <title>London finance report</title>
      <link>https://example.com/finance</link>
      <description>Markets closed flat.</description>
    </item>
  </channel>
</rss>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rss))
	}))
	defer srv.Close()

	src := NewFeedSource("BBC News", srv.URL, []string{"stockport"}, 5*time.Second, logger.NewNop())
	got, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Fetch() = %d articles, want 1", len(got))
	}

	a := got[0]
	if a.Title != "Stockport viaduct lit up for charity" {
		t.Errorf("Title = %q", a.Title)
	}
	if a.Link != "https://example.com/viaduct" {
		t.Errorf("Link = %q", a.Link)
	}
	if a.Source != "BBC News" || a.Type != "RSS News" {
		t.Errorf("Source/Type = %q/%q", a.Source, a.Type)
	}
	if a.Pubdate == nil || a.Pubdate.UTC().Hour() != 8 {
		t.Errorf("Pubdate = %v", a.Pubdate)
	}
}

func TestNubParseListing(t *testing.T) {
	// Control character inside a headline, as served by the real site.
	raw := "[{\"headline\": \"Market hall\x0bupdate\", \"url\": \"https://stockport.nub.news/news/local-news/market\", \"datePublished\": \"2024-12-02 10:15:00\"}," +
		"{\"headline\": \"Broken date\", \"url\": \"https://stockport.nub.news/news/local-news/broken\", \"datePublished\": \"yesterday\"}]"

	src := NewNubSource(nil, 5*time.Second, logger.NewNop())
	got, err := src.parseListing(raw)
	if err != nil {
		t.Fatalf("parseListing() error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("parseListing() = %d articles, want 1 (bad date skipped)", len(got))
	}

	a := got[0]
	if a.Title != "Market hall update" {
		t.Errorf("Title = %q, want control char replaced", a.Title)
	}
	if a.Summary != a.Title {
		t.Errorf("Summary = %q, want headline", a.Summary)
	}
	if a.Pubdate == nil || a.Pubdate.Day() != 2 {
		t.Errorf("Pubdate = %v", a.Pubdate)
	}
}

func TestNubFetchNoScriptTag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>no listing here</p></body></html>"))
	}))
	defer srv.Close()

	src := NewNubSource(nil, 5*time.Second, logger.NewNop())
	src.baseURL = srv.URL

	got, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Fetch() = %d articles, want 0", len(got))
	}
}

func TestTotallyStockportParseListing(t *testing.T) {
	const page = `<html><body>
<article class="post">
  <h2><a href="https://totallystockport.co.uk/xmas-market/">Stockport Christmas market dates</a></h2>
  <time datetime="2024-12-02">December 2, 2024</time>
  <div class="fusion-post-content-container"><p>Full programme announced. [...] Read More</p></div>
</article>
<article class="post">
  <h3><a href="https://totallystockport.co.uk/heritage/">Heritage trail in Stockport town centre</a></h3>
  <time>2 December 2024</time>
</article>
<article class="post">
  <h2>No link here</h2>
</article>
</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatalf("goquery: %v", err)
	}

	src := NewTotallyStockportSource([]string{"stockport"}, 5*time.Second, logger.NewNop())
	got := src.parseListing(doc)
	if len(got) != 2 {
		t.Fatalf("parseListing() = %d articles, want 2", len(got))
	}

	first := got[0]
	if first.Title != "Stockport Christmas market dates" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Summary != "Full programme announced." {
		t.Errorf("Summary = %q, want boilerplate stripped", first.Summary)
	}
	if first.Pubdate == nil || first.Pubdate.Month() != time.December {
		t.Errorf("Pubdate = %v", first.Pubdate)
	}

	second := got[1]
	if second.Title != "Heritage trail in Stockport town centre" {
		t.Errorf("Title = %q", second.Title)
	}
	if second.Pubdate == nil || second.Pubdate.Day() != 2 {
		t.Errorf("Pubdate = %v, want alternative format parsed", second.Pubdate)
	}
}

func TestTotallyStockportFallbackSelector(t *testing.T) {
	const page = `<html><body>
<div class="fusion-post-content">
  <h2><a href="https://totallystockport.co.uk/a/">Stockport business awards</a></h2>
</div>
</body></html>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatalf("goquery: %v", err)
	}

	src := NewTotallyStockportSource([]string{"stockport"}, 5*time.Second, logger.NewNop())
	got := src.parseListing(doc)
	if len(got) != 1 {
		t.Fatalf("parseListing() = %d articles, want 1 via fallback", len(got))
	}
}

func TestNewScraper(t *testing.T) {
	log := logger.NewNop()
	if s := NewScraper("nub", nil, time.Second, log); s == nil || s.Name() != "Stockport Nub News" {
		t.Errorf("NewScraper(nub) = %v", s)
	}
	if s := NewScraper("totallystockport", nil, time.Second, log); s == nil || s.Name() != "Totally Stockport" {
		t.Errorf("NewScraper(totallystockport) = %v", s)
	}
	if s := NewScraper("unknown", nil, time.Second, log); s != nil {
		t.Errorf("NewScraper(unknown) = %v, want nil", s)
	}
}
