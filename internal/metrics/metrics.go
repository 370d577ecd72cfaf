// Package metrics provides Prometheus metrics for the embed gateway.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pbichat"

// Result labels for metrics.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Registry holds every gateway metric plus the Go and process collectors.
var Registry = prometheus.NewRegistry()

var (
	// CredentialAcquireTotal counts access token acquisitions per strategy.
	CredentialAcquireTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "credentials",
			Name:      "acquire_total",
			Help:      "Total number of access token acquisitions",
		},
		[]string{"strategy", "result"},
	)

	// EmbedMintTotal counts embed token mints per strategy.
	EmbedMintTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "embed",
			Name:      "mint_total",
			Help:      "Total number of embed token mint attempts",
		},
		[]string{"strategy", "result"},
	)

	// EmbedFallbackTotal counts config requests that were not served by the first strategy.
	EmbedFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "embed",
			Name:      "fallback_total",
			Help:      "Total number of embed configs served by a fallback strategy",
		},
	)

	// ExportRequestsTotal counts export operations (submit, status, download).
	ExportRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "requests_total",
			Help:      "Total number of export operations",
		},
		[]string{"operation", "result"},
	)

	// UpstreamRequestsTotal counts outgoing requests by host and status code.
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of requests sent to the identity provider and reporting API",
		},
		[]string{"code", "method"},
	)

	// UpstreamRequestDuration observes outgoing request latency.
	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Latency of requests sent to upstream services",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// HTTPRequestsTotal counts handled gateway requests by route pattern and status code.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of requests handled by the gateway",
		},
		[]string{"route", "code"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of requests handled by the gateway",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		CredentialAcquireTotal,
		EmbedMintTotal,
		EmbedFallbackTotal,
		ExportRequestsTotal,
		UpstreamRequestsTotal,
		UpstreamRequestDuration,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}

// RecordCredentialAcquire records the outcome of a token acquisition.
func RecordCredentialAcquire(strategy string, err error) {
	CredentialAcquireTotal.WithLabelValues(strategy, result(err)).Inc()
}

// RecordMint records the outcome of a single mint attempt.
func RecordMint(strategy string, err error) {
	EmbedMintTotal.WithLabelValues(strategy, result(err)).Inc()
}

func RecordFallback() {
	EmbedFallbackTotal.Inc()
}

// RecordExport records the outcome of an export operation.
func RecordExport(operation string, err error) {
	ExportRequestsTotal.WithLabelValues(operation, result(err)).Inc()
}

// ObserveRequest records a handled request. route is the matched mux pattern;
// requests that matched nothing share one label value.
func ObserveRequest(route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// InstrumentTransport wraps rt with upstream request counters and latency.
func InstrumentTransport(rt http.RoundTripper) http.RoundTripper {
	return promhttp.InstrumentRoundTripperCounter(UpstreamRequestsTotal,
		promhttp.InstrumentRoundTripperDuration(UpstreamRequestDuration, rt))
}

// Handler serves the gateway registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
