package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dalebar/viaductecho-backend/internal/aggregator"
	"github.com/dalebar/viaductecho-backend/internal/cache"
	"github.com/dalebar/viaductecho-backend/internal/config"
	"github.com/dalebar/viaductecho-backend/internal/enrich"
	"github.com/dalebar/viaductecho-backend/internal/httpserver"
	"github.com/dalebar/viaductecho-backend/internal/httpserver/deps"
	"github.com/dalebar/viaductecho-backend/internal/logger"
	"github.com/dalebar/viaductecho-backend/internal/publish"
	"github.com/dalebar/viaductecho-backend/internal/scheduler"
	"github.com/dalebar/viaductecho-backend/internal/sources"
	eventsrc "github.com/dalebar/viaductecho-backend/internal/sources/events"
	"github.com/dalebar/viaductecho-backend/internal/store"
	"github.com/dalebar/viaductecho-backend/internal/version"
)

type App struct {
	cfg          *config.Config
	logger       logger.Logger
	server       *httpserver.Server
	store        *store.Store
	cache        *cache.Cache
	newsRunner   *scheduler.NewsRunner
	eventsRunner *scheduler.EventsRunner
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	st, err := store.Open(cfg.DatabaseURL, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	// Redis is an optional read cache; an empty addr disables it and the
	// nil *cache.Cache degrades every call to a no-op.
	var cacheClient *cache.Cache
	if cfg.RedisAddr != "" {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		cacheClient, err = cache.New(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL, loggerClient)
		if err != nil {
			loggerClient.Warn("redis unavailable, serving without cache", logger.Error(err))
			cacheClient = nil
		}
	}

	news, events, err := BuildAggregators(cfg, st, loggerClient)
	if err != nil {
		return nil, err
	}

	newsTrigger := make(chan struct{}, 1)
	eventsTrigger := make(chan struct{}, 1)

	newsRunner := scheduler.NewNewsRunner(news, cfg.NewsInterval, cfg.NewsWindowStart, cfg.NewsWindowEnd, loggerClient, newsTrigger)
	eventsRunner := scheduler.NewEventsRunner(events, cfg.EventsInterval, loggerClient, eventsTrigger)

	d := deps.Deps{
		Logger:           loggerClient,
		Store:            st,
		Cache:            cacheClient,
		StartTime:        time.Now(),
		Version:          version.Version,
		Commit:           version.Commit,
		BuildDate:        version.BuildDate,
		GoVersion:        version.GoVersion,
		DefaultPageSize:  cfg.DefaultPageSize,
		MaxPageSize:      cfg.MaxPageSize,
		AdminAPIKey:      cfg.AdminAPIKey,
		NewsTrigger:      newsTrigger,
		EventsTrigger:    eventsTrigger,
		Events:           events,
		UploadDir:        cfg.UploadDir,
		MaxUploadBytes:   cfg.MaxUploadBytes,
		AllowedImageExts: cfg.AllowedImageExts,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:          cfg,
		logger:       loggerClient,
		server:       server,
		store:        st,
		cache:        cacheClient,
		newsRunner:   newsRunner,
		eventsRunner: eventsRunner,
	}, nil
}

// BuildAggregators wires the news and events pipelines from config. The
// one-shot aggregation commands use it without the server around it.
func BuildAggregators(cfg *config.Config, st *store.Store, loggerClient logger.Logger) (*aggregator.News, *aggregator.Events, error) {
	srcCfg, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load sources config: %w", err)
	}

	var newsSources []sources.Source
	for _, feed := range srcCfg.Feeds {
		newsSources = append(newsSources, sources.NewFeedSource(feed.Name, feed.URL, srcCfg.Keywords, cfg.HTTPTimeout, loggerClient))
	}
	for _, name := range srcCfg.Scrapers {
		scraper := sources.NewScraper(name, srcCfg.Keywords, cfg.HTTPTimeout, loggerClient)
		if scraper == nil {
			loggerClient.Warnf("unknown scraper %q in sources config, skipping", name)
			continue
		}
		newsSources = append(newsSources, scraper)
	}
	loggerClient.Infof("✅ %d news sources configured", len(newsSources))

	extractor := enrich.NewExtractor(cfg.HTTPTimeout, loggerClient)
	summarizer := enrich.NewSummarizer(cfg.OpenAIAPIKey, loggerClient)

	// Without GitHub credentials articles are still aggregated, just not
	// pushed to the site repo.
	var publisher *publish.Publisher
	if cfg.GitHubToken != "" && cfg.GitHubRepo != "" {
		publisher, err = publish.NewPublisher(cfg.GitHubToken, cfg.GitHubRepo, cfg.GitHubBranch, loggerClient)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build github publisher: %w", err)
		}
	} else {
		loggerClient.Info("github credentials not configured, publishing disabled")
	}

	var newsPublisher aggregator.ArticlePublisher
	var snapshotPublisher aggregator.SnapshotPublisher
	if publisher != nil {
		newsPublisher = publisher
		snapshotPublisher = publisher
	}

	news := aggregator.NewNews(st, newsSources, extractor, summarizer, newsPublisher, cfg.ArticleDelay, loggerClient)

	var eventSources []eventsrc.EventSource
	if cfg.SkiddleAPIKey != "" {
		skiddle, err := eventsrc.NewSkiddleSource(eventsrc.SkiddleConfig{
			APIKey:       cfg.SkiddleAPIKey,
			Latitude:     cfg.EventsLatitude,
			Longitude:    cfg.EventsLongitude,
			RadiusMiles:  cfg.EventsRadius,
			DaysAhead:    cfg.EventsDaysAhead,
			Prefixes:     srcCfg.PostcodePrefixes,
			Keywords:     srcCfg.Keywords,
			EventTypeMap: srcCfg.EventTypeMap,
			Timeout:      cfg.HTTPTimeout,
		}, loggerClient)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to build skiddle source: %w", err)
		}
		eventSources = append(eventSources, skiddle)
	} else {
		loggerClient.Info("skiddle API key not configured, events aggregation disabled")
	}

	events := aggregator.NewEvents(st, eventSources, snapshotPublisher, aggregator.EventsConfig{
		StaticDir:      cfg.StaticDir,
		UpcomingLimit:  cfg.UpcomingLimit,
		CalendarMonths: cfg.CalendarMonths,
	}, loggerClient)

	return news, events, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Viaduct Echo v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Viaduct Echo %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.newsRunner.Start(ctx)
	a.eventsRunner.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.newsRunner.Stop()
	a.eventsRunner.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warnf("failed to close store: %v", err)
	}

	a.logger.Info("✅ Viaduct Echo stopped cleanly")
	return nil
}
