package scheduler

import (
	"context"
	"time"

	"github.com/dalebar/viaductecho-backend/internal/aggregator"
	"github.com/dalebar/viaductecho-backend/internal/logger"
)

// EventsRunner fires the events pipeline on its (daily) interval and
// regenerates the static JSON snapshots after each pass.
type EventsRunner struct {
	events        *aggregator.Events
	interval      time.Duration
	log           logger.Logger
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

func NewEventsRunner(events *aggregator.Events, interval time.Duration, log logger.Logger, manualTrigger chan struct{}) *EventsRunner {
	return &EventsRunner{
		events:        events,
		interval:      interval,
		log:           log,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

func (r *EventsRunner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.runOnce(ctx)
			case <-r.manualTrigger:
				r.log.Info("manual events aggregation triggered")
				r.runOnce(ctx)
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	r.log.Info("🚀 events runner started", logger.Duration("interval", r.interval))
}

func (r *EventsRunner) Stop() {
	close(r.stopCh)
}

func (r *EventsRunner) runOnce(ctx context.Context) {
	r.events.Run(ctx)
	if _, err := r.events.GenerateStaticJSON(ctx); err != nil {
		r.log.Error("static snapshot generation failed", logger.Error(err))
	}
}
