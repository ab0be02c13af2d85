// Command newsagg runs a single news aggregation pass and exits. Useful
// for cron setups and manual backfills.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dalebar/viaductecho-backend/internal/app"
	"github.com/dalebar/viaductecho-backend/internal/config"
	"github.com/dalebar/viaductecho-backend/internal/logger"
	"github.com/dalebar/viaductecho-backend/internal/store"
)

func main() {
	cfg := config.Load()
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	st, err := store.Open(cfg.DatabaseURL, loggerClient)
	if err != nil {
		log.Fatalf("❌ newsagg failed to open store: %v", err)
	}
	defer func() { _ = st.Close() }()

	news, _, err := app.BuildAggregators(cfg, st, loggerClient)
	if err != nil {
		log.Fatalf("❌ newsagg failed to build pipeline: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats := news.Run(ctx)
	loggerClient.Info("✅ news aggregation finished",
		logger.Int("fetched", stats.Fetched),
		logger.Int("inserted", stats.Inserted),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("published", stats.Published),
		logger.Int("errors", stats.Errors),
	)
}
