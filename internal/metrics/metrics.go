// Package metrics exposes aggregation pipeline counters on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ArticlesInserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "viaduct_articles_inserted_total",
		Help: "Articles inserted into the store, by source.",
	}, []string{"source"})

	ArticlesDuplicate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "viaduct_articles_duplicate_total",
		Help: "Articles skipped because their link hash already existed.",
	}, []string{"source"})

	EventsInserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "viaduct_events_inserted_total",
		Help: "Events inserted into the store, by source.",
	}, []string{"source"})

	EventsDuplicate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "viaduct_events_duplicate_total",
		Help: "Events skipped because their event hash already existed.",
	}, []string{"source"})

	SourceErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "viaduct_source_errors_total",
		Help: "Fetch or processing failures, by source.",
	}, []string{"source"})

	AggregationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "viaduct_aggregation_runs_total",
		Help: "Completed aggregation runs, by pipeline.",
	}, []string{"pipeline"})

	AggregationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "viaduct_aggregation_duration_seconds",
		Help:    "Wall-clock duration of aggregation runs.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"pipeline"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "viaduct_http_requests_total",
		Help: "API requests, by route pattern and status class.",
	}, []string{"pattern", "status"})
)
