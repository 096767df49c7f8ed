package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for presign_requests_total.
const (
	OutcomeIssued    = "issued"
	OutcomeInvalid   = "invalid"
	OutcomeFailed    = "failed"
	OutcomePreflight = "preflight"
)

// Metrics provides a self-contained Prometheus registry with the presigned
// URL counters.
type Metrics struct {
	reg      *prometheus.Registry
	requests *prometheus.CounterVec
	signing  prometheus.Histogram
}

// NewMetrics creates a Metrics instance with a fresh registry and registers collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "presign",
		Name:      "requests_total",
		Help:      "Total number of upload URL requests, partitioned by outcome.",
	}, []string{"outcome"})
	signing := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "presign",
		Name:      "signing_duration_seconds",
		Help:      "Histogram of time spent in the storage provider's signer.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	})

	reg.MustRegister(requests, signing)

	return &Metrics{
		reg:      reg,
		requests: requests,
		signing:  signing,
	}
}

// Handler returns an http.Handler that serves Prometheus metrics using the internal registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// ObserveRequest counts one request with the given outcome.
func (m *Metrics) ObserveRequest(outcome string) {
	m.requests.WithLabelValues(outcome).Inc()
}

// ObserveSigning records how long a signing call took.
func (m *Metrics) ObserveSigning(d time.Duration) {
	m.signing.Observe(d.Seconds())
}
