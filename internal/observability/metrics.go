// Package observability exposes the service's prometheus metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yoxo_submissions_total",
		Help: "Completed assessment submissions by classified fatigue type.",
	}, []string{"fatigue_type"})

	enrichmentFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yoxo_enrichment_failures_total",
		Help: "Advice enrichment attempts that returned no advice due to an error.",
	})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yoxo_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status code.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})
)

// RecordSubmission counts one persisted assessment.
func RecordSubmission(fatigueType string) {
	submissionsTotal.WithLabelValues(fatigueType).Inc()
}

// RecordEnrichmentFailure counts one absorbed enrichment error.
func RecordEnrichmentFailure() {
	enrichmentFailuresTotal.Inc()
}

// ObserveRequest records one HTTP request's latency.
func ObserveRequest(route, status string, seconds float64) {
	requestDuration.WithLabelValues(route, status).Observe(seconds)
}
