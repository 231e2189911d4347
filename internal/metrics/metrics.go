// Package metrics holds the Prometheus collectors of the reconciler.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shsdb"

// Row outcomes recorded by IngestedRows.
const (
	OutcomeDecoded  = "decoded"
	OutcomeSkipped  = "skipped"
	OutcomeRejected = "rejected"
)

// Metrics groups every collector on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	PendingReports     prometheus.Gauge
	BufferedReferences prometheus.Gauge
	JoinedRecords      prometheus.Counter
	Ticks              prometheus.Counter
	PublishFailures    *prometheus.CounterVec
	IngestedRows       *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go
// runtime collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		PendingReports: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "pending_reports",
			Help:      "Reports waiting for a matching reference record",
		}),
		BufferedReferences: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "buffered_references",
			Help:      "Reference records held in the join buffer",
		}),
		JoinedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "joined_records_total",
			Help:      "Joined records published",
		}),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "ticks_total",
			Help:      "Reconciliation passes over the pending reports",
		}),
		PublishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "commitlog",
			Name:      "publish_failures_total",
			Help:      "Failed publishes by topic",
		}, []string{"topic"}),
		IngestedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "rows_total",
			Help:      "Ingested rows by family and outcome",
		}, []string{"family", "outcome"}),
	}

	m.registry.MustRegister(
		m.PendingReports,
		m.BufferedReferences,
		m.JoinedRecords,
		m.Ticks,
		m.PublishFailures,
		m.IngestedRows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
