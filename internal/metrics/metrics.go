// Package metrics exposes Prometheus instrumentation for the ingestion
// pipeline and the HTTP layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SessionsIngested counts successfully persisted sessions.
	SessionsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rangelog",
		Name:      "sessions_ingested_total",
		Help:      "Number of sessions successfully ingested.",
	})

	// ShotsIngested counts persisted shots.
	ShotsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rangelog",
		Name:      "shots_ingested_total",
		Help:      "Number of shots successfully ingested.",
	})

	// DuplicateSessions counts ingest attempts rejected by signature dedup.
	DuplicateSessions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rangelog",
		Name:      "duplicate_sessions_total",
		Help:      "Number of ingest attempts skipped as duplicates.",
	})

	// IngestFailures counts malformed, empty, and storage-failed ingests.
	IngestFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rangelog",
		Name:      "ingest_failures_total",
		Help:      "Number of failed ingest attempts.",
	})

	// HTTPRequests counts requests by method, route and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rangelog",
		Name:      "http_requests_total",
		Help:      "HTTP requests served.",
	}, []string{"method", "path", "status"})

	// HTTPDuration observes request latency by method and route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rangelog",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Handler returns the Prometheus scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
