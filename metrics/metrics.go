// Package metrics provides Prometheus metrics for the remedy service.
// HTTP metrics:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// Domain metrics:
//   - remedy_lookups_total: Counter with outcome label (found, not_found, invalid)
//   - pdf_render_duration_seconds: Histogram of renderer calls
//   - pdf_render_failures_total: Counter of failed renders
//   - pdf_cache_requests_total: Counter with result label (hit, miss)
//
// All metrics are registered with the Prometheus default registry
// during package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Lookup outcomes
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
)

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (clients seen since last cleanup)",
		},
	)

	RemedyLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remedy_lookups_total",
			Help: "Remedy lookups by outcome",
		},
		[]string{"outcome"},
	)

	PDFRenderDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pdf_render_duration_seconds",
			Help:    "Time spent converting HTML to PDF",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	PDFRenderFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pdf_render_failures_total",
			Help: "Failed HTML to PDF conversions",
		},
	)

	PDFCacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdf_cache_requests_total",
			Help: "PDF cache lookups by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(RemedyLookupsTotal)
	prometheus.MustRegister(PDFRenderDuration)
	prometheus.MustRegister(PDFRenderFailures)
	prometheus.MustRegister(PDFCacheRequests)
}

// ObserveLookup counts a lookup outcome
func ObserveLookup(outcome string) {
	RemedyLookupsTotal.WithLabelValues(outcome).Inc()
}

// ObserveCache counts a PDF cache hit or miss
func ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	PDFCacheRequests.WithLabelValues(result).Inc()
}
