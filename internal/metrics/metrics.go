package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Outcome labels for graphql_operations_total.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the service's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	GraphQLOperations *prometheus.CounterVec
	BatchLoads        prometheus.Counter
	BatchDepartments  prometheus.Histogram
	BatchUnassigned   prometheus.Counter
	StreamEmissions   prometheus.Counter
}

// New builds the collectors and registers them, plus Go runtime metrics, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		GraphQLOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "graphql_operations_total",
			Help: "GraphQL root fields resolved, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		BatchLoads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "batch_loader_loads_total",
			Help: "Department employee batch loads performed.",
		}),
		BatchDepartments: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "batch_loader_departments",
			Help:    "Distinct departments per batch load.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}),
		BatchUnassigned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "batch_loader_unassigned_total",
			Help: "Employees loaded that matched no department of the batch.",
		}),
		StreamEmissions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stream_emissions_total",
			Help: "Employees emitted on allEmployee subscriptions.",
		}),
	}

	m.registry.MustRegister(
		m.GraphQLOperations,
		m.BatchLoads,
		m.BatchDepartments,
		m.BatchUnassigned,
		m.StreamEmissions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry to serve at /metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveOperation(operation string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.GraphQLOperations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ObserveBatch(departments, unassigned int) {
	if m == nil {
		return
	}
	m.BatchLoads.Inc()
	m.BatchDepartments.Observe(float64(departments))
	m.BatchUnassigned.Add(float64(unassigned))
}

func (m *Metrics) ObserveEmission() {
	if m == nil {
		return
	}
	m.StreamEmissions.Inc()
}
