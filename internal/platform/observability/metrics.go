// Package observability provides Prometheus metrics and the health server.
//
// External calls (search, fetch, LLM, vector lookup) are instrumented
// uniformly through TrackCall at the call boundary.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

var (
	articlesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enricher_articles_processed_total",
		Help: "Articles driven to a terminal state, by outcome.",
	}, []string{"outcome"})

	articlesIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enricher_articles_ingested_total",
		Help: "Ingestion outcomes (created, duplicate, rejected).",
	}, []string{"outcome"})

	externalCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "enricher_external_call_duration_seconds",
		Help:    "Duration of external service calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "status"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "enricher_stage_duration_seconds",
		Help:    "Duration of pipeline stages per article.",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})
)

// TrackCall wraps one external service call, recording its duration and
// outcome. It is applied at every search/fetch/LLM/vector boundary.
func TrackCall(service string, fn func() error) error {
	start := time.Now()
	err := fn()

	status := statusOK
	if err != nil {
		status = statusError
	}

	externalCallDuration.WithLabelValues(service, status).Observe(time.Since(start).Seconds())

	return err
}

// ObserveStage records the duration of a pipeline stage.
func ObserveStage(stage string, start time.Time) {
	stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// CountProcessed increments the terminal-state counter for an article.
func CountProcessed(outcome string) {
	articlesProcessed.WithLabelValues(outcome).Inc()
}

// CountIngested increments the ingestion outcome counter.
func CountIngested(outcome string) {
	articlesIngested.WithLabelValues(outcome).Inc()
}
