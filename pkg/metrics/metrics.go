package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector provides application metrics collection
type Collector struct {
	gatherer prometheus.Gatherer

	// API Metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec

	// Fetch cycle metrics
	CyclesTotal      *prometheus.CounterVec
	CycleErrorsTotal *prometheus.CounterVec
	CycleDuration    prometheus.Histogram

	// Provider metrics
	ProviderRequestsTotal   *prometheus.CounterVec
	ProviderRequestDuration *prometheus.HistogramVec
	UVUnavailableTotal      prometheus.Counter
}

// NewCollector creates a new metrics collector registered on reg.
// A nil reg uses a fresh private registry.
func NewCollector(namespace string, reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Collector{
		gatherer: reg,

		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Total number of API requests by path, method, and status",
			},
			[]string{"path", "method", "status"},
		),

		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"path"},
		),

		CyclesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cycles_total",
				Help:      "Fetch cycles by outcome (ready, failed, discarded)",
			},
			[]string{"outcome"},
		),

		CycleErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cycle_errors_total",
				Help:      "Failed fetch cycles by error kind",
			},
			[]string{"kind"},
		),

		CycleDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cycle_duration_seconds",
				Help:      "Duration of a complete fetch cycle in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
			},
		),

		ProviderRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_requests_total",
				Help:      "Outgoing provider requests by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),

		ProviderRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_request_duration_seconds",
				Help:      "Outgoing provider request duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"provider"},
		),

		UVUnavailableTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uv_unavailable_total",
				Help:      "Cycles whose UV index degraded to unavailable",
			},
		),
	}
}

// Handler exposes the collector's registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// RecordAPIRequest records an API request
func (c *Collector) RecordAPIRequest(path, method, status string, duration time.Duration) {
	c.APIRequestsTotal.WithLabelValues(path, method, status).Inc()
	c.APIRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordCycle records the outcome of a fetch cycle
func (c *Collector) RecordCycle(outcome string, duration time.Duration) {
	c.CyclesTotal.WithLabelValues(outcome).Inc()
	c.CycleDuration.Observe(duration.Seconds())
}

// RecordCycleError records the error kind of a failed cycle
func (c *Collector) RecordCycleError(kind string) {
	c.CycleErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordProviderRequest records an outgoing provider call
func (c *Collector) RecordProviderRequest(provider, outcome string, duration time.Duration) {
	c.ProviderRequestsTotal.WithLabelValues(provider, outcome).Inc()
	c.ProviderRequestDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordUVUnavailable records a cycle that served an unavailable UV index
func (c *Collector) RecordUVUnavailable() {
	c.UVUnavailableTotal.Inc()
}
