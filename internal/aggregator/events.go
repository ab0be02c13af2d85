package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	eventsrc "github.com/dalebar/viaductecho-backend/internal/sources/events"

	"github.com/dalebar/viaductecho-backend/internal/logger"
	"github.com/dalebar/viaductecho-backend/internal/metrics"
	"github.com/dalebar/viaductecho-backend/internal/model"
	"github.com/dalebar/viaductecho-backend/internal/store"
)

// SnapshotPublisher uploads generated JSON snapshots to the public site.
type SnapshotPublisher interface {
	UploadJSON(ctx context.Context, path string, data []byte) error
}

// EventsStats summarises one events aggregation pass.
type EventsStats struct {
	Fetched    int   `json:"fetched"`
	Inserted   int   `json:"inserted"`
	Duplicates int   `json:"duplicates"`
	Errors     int   `json:"errors"`
	MarkedPast int64 `json:"marked_past"`
}

// EventsConfig bounds the static snapshot generation.
type EventsConfig struct {
	StaticDir      string
	UpcomingLimit  int
	CalendarMonths int
}

// Events runs the event pipeline: fetch, resolve venues, insert-if-absent,
// sweep past events and regenerate the static JSON files.
type Events struct {
	store     *store.Store
	sources   []eventsrc.EventSource
	publisher SnapshotPublisher // nil keeps snapshots local only
	cfg       EventsConfig
	log       logger.Logger
}

func NewEvents(st *store.Store, srcs []eventsrc.EventSource, pub SnapshotPublisher, cfg EventsConfig, log logger.Logger) *Events {
	return &Events{store: st, sources: srcs, publisher: pub, cfg: cfg, log: log}
}

func (e *Events) Run(ctx context.Context) EventsStats {
	started := time.Now()
	e.log.Info("⏳ events aggregation run started")

	var stats EventsStats
	for _, src := range e.sources {
		if ctx.Err() != nil {
			break
		}

		events, err := src.Fetch(ctx)
		if err != nil {
			e.log.Error("event source fetch failed", logger.String("source", src.Name()), logger.Error(err))
			metrics.SourceErrors.WithLabelValues(src.Name()).Inc()
			stats.Errors++
			continue
		}
		stats.Fetched += len(events)

		for _, in := range events {
			outcome, err := e.processEvent(in)
			switch {
			case err != nil:
				stats.Errors++
				metrics.SourceErrors.WithLabelValues(src.Name()).Inc()
			case outcome == store.Inserted:
				stats.Inserted++
				metrics.EventsInserted.WithLabelValues(src.Name()).Inc()
			default:
				stats.Duplicates++
				metrics.EventsDuplicate.WithLabelValues(src.Name()).Inc()
			}
		}
	}

	past, err := e.store.MarkPastEvents()
	if err != nil {
		e.log.Error("past sweep failed", logger.Error(err))
		stats.Errors++
	}
	stats.MarkedPast = past

	metrics.AggregationRuns.WithLabelValues("events").Inc()
	metrics.AggregationDuration.WithLabelValues("events").Observe(time.Since(started).Seconds())
	e.log.Info("✅ events aggregation run complete",
		logger.Int("fetched", stats.Fetched),
		logger.Int("inserted", stats.Inserted),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int64("marked_past", stats.MarkedPast),
		logger.Int("errors", stats.Errors))
	return stats
}

// processEvent resolves the venue then inserts the event if its hash is
// new.
func (e *Events) processEvent(in model.EventInput) (store.InsertOutcome, error) {
	venue, err := e.store.GetOrCreateVenue(in.Venue)
	if err != nil {
		e.log.Error("venue resolution failed",
			logger.String("venue", in.Venue.Name), logger.Error(err))
		return 0, err
	}

	outcome, _, err := e.store.InsertEvent(in, venue)
	if err != nil {
		e.log.Error("event insert failed", logger.String("title", in.Title), logger.Error(err))
		return 0, err
	}
	return outcome, nil
}

// GenerateStaticJSON writes the site data files and, when a publisher
// is configured, mirrors them into the pages repository.
func (e *Events) GenerateStaticJSON(ctx context.Context) ([]string, error) {
	if err := os.MkdirAll(e.cfg.StaticDir, 0o755); err != nil {
		return nil, fmt.Errorf("create static dir: %w", err)
	}

	generatedAt := time.Now().Format(time.RFC3339)
	var written []string

	upcoming, err := e.store.UpcomingEvents(e.cfg.UpcomingLimit)
	if err != nil {
		return written, err
	}
	file, err := e.writeSnapshot(ctx, "events.json", map[string]any{
		"generated_at": generatedAt,
		"events":       upcoming,
		"total":        len(upcoming),
	})
	if err != nil {
		return written, err
	}
	written = append(written, file)

	calendar := make(map[string]int)
	now := time.Now()
	for offset := 0; offset < e.cfg.CalendarMonths; offset++ {
		month := now.AddDate(0, offset, 0)
		counts, err := e.store.CalendarData(month.Year(), int(month.Month()))
		if err != nil {
			return written, err
		}
		for day, count := range counts {
			calendar[day] = count
		}
	}
	file, err = e.writeSnapshot(ctx, "events-calendar.json", map[string]any{
		"generated_at": generatedAt,
		"calendar":     calendar,
	})
	if err != nil {
		return written, err
	}
	written = append(written, file)

	venues, err := e.store.AllVenues("")
	if err != nil {
		return written, err
	}
	file, err = e.writeSnapshot(ctx, "venues.json", map[string]any{
		"generated_at": generatedAt,
		"venues":       venues,
		"total":        len(venues),
	})
	if err != nil {
		return written, err
	}
	written = append(written, file)

	types, err := e.store.EventTypes()
	if err != nil {
		return written, err
	}
	file, err = e.writeSnapshot(ctx, "event-types.json", map[string]any{
		"generated_at": generatedAt,
		"event_types":  types,
	})
	if err != nil {
		return written, err
	}
	written = append(written, file)

	e.log.Info("static snapshots generated", logger.Int("files", len(written)))
	return written, nil
}

func (e *Events) writeSnapshot(ctx context.Context, name string, payload any) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}

	path := filepath.Join(e.cfg.StaticDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	if e.publisher != nil {
		if err := e.publisher.UploadJSON(ctx, "data/"+name, data); err != nil {
			// Local copy is intact; the next run retries the upload.
			e.log.Error("snapshot upload failed", logger.String("file", name), logger.Error(err))
		}
	}
	return path, nil
}
