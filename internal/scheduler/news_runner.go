// Package scheduler runs the aggregation pipelines on their timers. Each
// runner also listens on a manual trigger channel fed by the admin API.
package scheduler

import (
	"context"
	"time"

	"github.com/dalebar/viaductecho-backend/internal/aggregator"
	"github.com/dalebar/viaductecho-backend/internal/logger"
)

// NewsRunner fires the news pipeline every interval, but only inside the
// configured local-hour window. Scraped sites publish during the day;
// overnight runs would only burn API quota.
type NewsRunner struct {
	news          *aggregator.News
	interval      time.Duration
	windowStart   int // first allowed local hour, inclusive
	windowEnd     int // last allowed local hour, inclusive
	log           logger.Logger
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

func NewNewsRunner(news *aggregator.News, interval time.Duration, windowStart, windowEnd int, log logger.Logger, manualTrigger chan struct{}) *NewsRunner {
	return &NewsRunner{
		news:          news,
		interval:      interval,
		windowStart:   windowStart,
		windowEnd:     windowEnd,
		log:           log,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start launches the timer loop. A manual trigger bypasses the hour
// window; the periodic tick respects it.
func (r *NewsRunner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if !r.inWindow(time.Now()) {
					r.log.Info("news run skipped outside active hours")
					continue
				}
				r.news.Run(ctx)
			case <-r.manualTrigger:
				r.log.Info("manual news aggregation triggered")
				r.news.Run(ctx)
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	r.log.Info("🚀 news runner started",
		logger.Duration("interval", r.interval),
		logger.Int("window_start", r.windowStart),
		logger.Int("window_end", r.windowEnd))
}

func (r *NewsRunner) Stop() {
	close(r.stopCh)
}

func (r *NewsRunner) inWindow(t time.Time) bool {
	hour := t.Hour()
	return hour >= r.windowStart && hour <= r.windowEnd
}
