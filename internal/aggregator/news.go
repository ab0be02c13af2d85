// Package aggregator drives the two ingestion pipelines: news articles
// and events. Each Run is one complete pass over the configured sources.
package aggregator

import (
	"context"
	"time"

	"github.com/dalebar/viaductecho-backend/internal/enrich"
	"github.com/dalebar/viaductecho-backend/internal/logger"
	"github.com/dalebar/viaductecho-backend/internal/metrics"
	"github.com/dalebar/viaductecho-backend/internal/model"
	"github.com/dalebar/viaductecho-backend/internal/sources"
	"github.com/dalebar/viaductecho-backend/internal/store"
)

// Extractor pulls full content and a lead image from an article page.
type Extractor interface {
	Extract(ctx context.Context, url string) enrich.Extracted
}

// Summarizer produces the reader-facing summary.
type Summarizer interface {
	Summarize(ctx context.Context, content string) string
}

// ArticlePublisher pushes a finished post to the public site.
type ArticlePublisher interface {
	PublishArticle(ctx context.Context, article *model.Article, summary, imageURL string) error
}

// NewsStats summarises one news aggregation pass.
type NewsStats struct {
	Fetched    int `json:"fetched"`
	Inserted   int `json:"inserted"`
	Duplicates int `json:"duplicates"`
	Published  int `json:"published"`
	Errors     int `json:"errors"`
}

// News runs the article pipeline: fetch, dedup, enrich, publish.
type News struct {
	store      *store.Store
	sources    []sources.Source
	extractor  Extractor
	summarizer Summarizer
	publisher  ArticlePublisher // nil skips publishing
	delay      time.Duration
	log        logger.Logger
}

func NewNews(st *store.Store, srcs []sources.Source, ex Extractor, sum Summarizer, pub ArticlePublisher, delay time.Duration, log logger.Logger) *News {
	return &News{
		store:      st,
		sources:    srcs,
		extractor:  ex,
		summarizer: sum,
		publisher:  pub,
		delay:      delay,
		log:        log,
	}
}

// Run performs one aggregation pass. A failing source never aborts the
// pass; its articles are simply missing until the next run.
func (n *News) Run(ctx context.Context) NewsStats {
	started := time.Now()
	n.log.Info("⏳ news aggregation run started")

	var stats NewsStats
	for _, src := range n.sources {
		if ctx.Err() != nil {
			break
		}

		articles, err := src.Fetch(ctx)
		if err != nil {
			n.log.Error("source fetch failed", logger.String("source", src.Name()), logger.Error(err))
			metrics.SourceErrors.WithLabelValues(src.Name()).Inc()
			stats.Errors++
			continue
		}
		stats.Fetched += len(articles)

		for _, in := range articles {
			if ctx.Err() != nil {
				break
			}

			exists, err := n.store.ArticleExists(in.Link)
			if err != nil {
				n.log.Error("existence check failed", logger.String("link", in.Link), logger.Error(err))
				stats.Errors++
				continue
			}
			if exists {
				stats.Duplicates++
				metrics.ArticlesDuplicate.WithLabelValues(src.Name()).Inc()
				continue
			}

			if n.processArticle(ctx, in, &stats) {
				metrics.ArticlesInserted.WithLabelValues(src.Name()).Inc()
			} else {
				metrics.SourceErrors.WithLabelValues(src.Name()).Inc()
			}
			n.pause(ctx)
		}
	}

	metrics.AggregationRuns.WithLabelValues("news").Inc()
	metrics.AggregationDuration.WithLabelValues("news").Observe(time.Since(started).Seconds())
	n.log.Info("✅ news aggregation run complete",
		logger.Int("fetched", stats.Fetched),
		logger.Int("inserted", stats.Inserted),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("published", stats.Published),
		logger.Int("errors", stats.Errors))
	return stats
}

// processArticle walks one article through the full pipeline. Returns
// false when the article was not inserted.
func (n *News) processArticle(ctx context.Context, in model.ArticleInput, stats *NewsStats) bool {
	article, err := n.store.InsertArticle(in)
	if err != nil {
		n.log.Error("insert failed", logger.String("link", in.Link), logger.Error(err))
		stats.Errors++
		return false
	}
	stats.Inserted++

	extracted := n.extractor.Extract(ctx, article.OriginalLink)
	if extracted.Content != "" || extracted.ImageURL != "" {
		if err := n.store.UpdateContent(article.OriginalLink, extracted.Content, extracted.ImageURL); err != nil {
			n.log.Error("content update failed", logger.String("link", in.Link), logger.Error(err))
		}
	}

	content := extracted.Content
	if content == "" {
		content = article.OriginalSummary
	}
	summary := n.summarizer.Summarize(ctx, content)
	if err := n.store.UpdateAISummary(article.OriginalLink, summary); err != nil {
		n.log.Error("summary update failed", logger.String("link", in.Link), logger.Error(err))
	}

	if n.publisher != nil {
		if err := n.publisher.PublishArticle(ctx, article, summary, extracted.ImageURL); err != nil {
			// Left unprocessed so the next run retries the publish.
			n.log.Error("publish failed", logger.String("link", in.Link), logger.Error(err))
			stats.Errors++
			return true
		}
		stats.Published++
	}

	if err := n.store.MarkProcessed(article.OriginalLink); err != nil {
		n.log.Error("mark processed failed", logger.String("link", in.Link), logger.Error(err))
		stats.Errors++
	}
	return true
}

// pause spaces out article processing to stay polite to the scraped
// sites and the OpenAI rate limits.
func (n *News) pause(ctx context.Context) {
	if n.delay <= 0 {
		return
	}
	select {
	case <-time.After(n.delay):
	case <-ctx.Done():
	}
}
