package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

// ImportMetrics holds Prometheus metrics for one import run. A run is a
// short-lived process, so metrics live in their own registry and are pushed
// to a Pushgateway when the run ends.
type ImportMetrics struct {
	registry *prometheus.Registry

	RowsProcessed   *prometheus.CounterVec
	AddressResolved *prometheus.CounterVec
	RemoteLookups   *prometheus.CounterVec
	APIRequests     *prometheus.CounterVec
	APILatency      *prometheus.HistogramVec
}

// NewImportMetrics creates and registers the import metrics.
func NewImportMetrics(namespace string) *ImportMetrics {
	if namespace == "" {
		namespace = "billing_importer"
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &ImportMetrics{
		registry: reg,

		RowsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_processed_total",
				Help:      "Import rows processed, by import kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		AddressResolved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "address",
				Name:      "resolved_total",
				Help:      "Addresses resolved, by path (remote or manual)",
			},
			[]string{"path"},
		),
		RemoteLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "address",
				Name:      "reference_lookups_total",
				Help:      "Reference table fetches from the platform, by table",
			},
			[]string{"table"},
		),
		APIRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "platform",
				Name:      "requests_total",
				Help:      "Platform API requests, by status code and method",
			},
			[]string{"code", "method"},
		),
		APILatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "platform",
				Name:      "request_duration_seconds",
				Help:      "Platform API request latency",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method"},
		),
	}
}

// RowProcessed counts one imported row.
func (m *ImportMetrics) RowProcessed(kind, outcome string) {
	m.RowsProcessed.WithLabelValues(kind, outcome).Inc()
}

// Resolved counts one resolved address.
func (m *ImportMetrics) Resolved(path string) {
	m.AddressResolved.WithLabelValues(path).Inc()
}

// RemoteLookup counts one reference table fetch.
func (m *ImportMetrics) RemoteLookup(table string) {
	m.RemoteLookups.WithLabelValues(table).Inc()
}

// InstrumentClient wraps the client's transport so every platform request
// is counted and timed.
func (m *ImportMetrics) InstrumentClient(c *http.Client) *http.Client {
	next := c.Transport
	if next == nil {
		next = http.DefaultTransport
	}

	instrumented := *c
	instrumented.Transport = promhttp.InstrumentRoundTripperCounter(m.APIRequests,
		promhttp.InstrumentRoundTripperDuration(m.APILatency, next))
	return &instrumented
}

// Gatherer exposes the run's registry.
func (m *ImportMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Push sends the run's metrics to a Pushgateway, grouped by run ID.
func (m *ImportMetrics) Push(ctx context.Context, url, job, runID string) error {
	pusher := push.New(url, job).Gatherer(m.registry)
	if runID != "" {
		pusher = pusher.Grouping("run_id", runID)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
