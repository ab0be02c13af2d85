// Command eventsagg runs a single events aggregation pass, regenerates
// the static JSON snapshots, and exits.
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
		log.Fatalf("❌ eventsagg failed to open store: %v", err)
	}
	defer func() { _ = st.Close() }()

	_, events, err := app.BuildAggregators(cfg, st, loggerClient)
	if err != nil {
		log.Fatalf("❌ eventsagg failed to build pipeline: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats := events.Run(ctx)
	loggerClient.Info("✅ events aggregation finished",
		logger.Int("fetched", stats.Fetched),
		logger.Int("inserted", stats.Inserted),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("errors", stats.Errors),
		logger.Int64("marked_past", stats.MarkedPast),
	)

	files, err := events.GenerateStaticJSON(ctx)
	if err != nil {
		log.Fatalf("❌ eventsagg failed to write snapshots: %v", err)
	}
	loggerClient.Info("✅ static snapshots written", logger.Int("files", len(files)))
}
