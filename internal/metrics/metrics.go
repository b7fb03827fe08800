// Package metrics exposes Prometheus counters for the directory and media pipelines.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Directory outcomes.
const (
	DirectoryFresh     = "fresh"
	DirectoryRefreshed = "refreshed"
	DirectoryFallback  = "stale_fallback"
	DirectoryError     = "error"
)

// Media outcomes.
const (
	MediaHit         = "hit"
	MediaFetched     = "fetched"
	MediaPlaceholder = "placeholder"
)

var (
	directoryRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_requests_total",
			Help: "Directory snapshot requests by outcome",
		},
		[]string{"outcome"},
	)

	upstreamFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "directory_upstream_fetch_duration_seconds",
			Help:    "Duration of CSV download plus pipeline run",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		},
		[]string{"result"},
	)

	mediaRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_requests_total",
			Help: "Media proxy requests by outcome",
		},
		[]string{"outcome"},
	)

	mediaAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_upstream_attempts_total",
			Help: "Media upstream endpoint attempts by host and HTTP status",
		},
		[]string{"host", "status"},
	)
)

// ObserveDirectory counts one directory request.
func ObserveDirectory(outcome string) {
	directoryRequests.WithLabelValues(outcome).Inc()
}

// ObserveUpstreamFetch records how long a refresh took.
func ObserveUpstreamFetch(seconds float64, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	upstreamFetchDuration.WithLabelValues(result).Observe(seconds)
}

// ObserveMedia counts one media request.
func ObserveMedia(outcome string) {
	mediaRequests.WithLabelValues(outcome).Inc()
}

// ObserveMediaAttempt counts one upstream media attempt.
func ObserveMediaAttempt(host string, status int) {
	mediaAttempts.WithLabelValues(host, strconv.Itoa(status)).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
