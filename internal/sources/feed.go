package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/dalebar/viaductecho-backend/internal/logger"
	"github.com/dalebar/viaductecho-backend/internal/model"
)

// FeedSource aggregates one RSS/Atom feed (BBC Manchester, MEN, ...).
type FeedSource struct {
	name     string
	feedURL  string
	keywords []string
	parser   *gofeed.Parser
	timeout  time.Duration
	log      logger.Logger
}

func NewFeedSource(name, feedURL string, keywords []string, timeout time.Duration, log logger.Logger) *FeedSource {
	return &FeedSource{
		name:     name,
		feedURL:  feedURL,
		keywords: keywords,
		parser:   gofeed.NewParser(),
		timeout:  timeout,
		log:      log,
	}
}

func (f *FeedSource) Name() string { return f.name }
func (f *FeedSource) Type() string { return "RSS News" }

func (f *FeedSource) Fetch(ctx context.Context) ([]model.ArticleInput, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	feed, err := f.parser.ParseURLWithContext(f.feedURL, fetchCtx)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.feedURL, err)
	}

	articles := make([]model.ArticleInput, 0, len(feed.Items))
	for _, item := range feed.Items {
		articles = append(articles, f.fromItem(item))
	}

	filtered := FilterByKeywords(articles, f.keywords)
	f.log.Info("feed fetched",
		logger.String("source", f.name),
		logger.Int("items", len(articles)),
		logger.Int("matched", len(filtered)))
	return filtered, nil
}

func (f *FeedSource) fromItem(item *gofeed.Item) model.ArticleInput {
	var pubdate *time.Time
	if item.PublishedParsed != nil {
		t := *item.PublishedParsed
		pubdate = &t
	}
	return model.ArticleInput{
		Title:   item.Title,
		Link:    item.Link,
		Summary: item.Description,
		Source:  f.name,
		Type:    "RSS News",
		Pubdate: pubdate,
	}
}
