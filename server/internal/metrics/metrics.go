package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "zkrest"

// Operation outcomes used as the "status" label.
const (
	StatusOK    = "ok"
	StatusError = "error"
	StatusFault = "fault"
)

// Metrics holds the gateway's Prometheus collectors on a private registry.
// All methods are no-ops on a nil *Metrics, so callers that run without
// metrics need no guards.
type Metrics struct {
	registry *prometheus.Registry

	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	treeNodes  prometheus.Histogram
	faults     prometheus.Counter
}

// New creates the collectors and registers them, together with the Go
// runtime and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "operations",
				Name:      "total",
				Help:      "Gateway operations by operation and outcome",
			},
			[]string{"op", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "operations",
				Name:      "duration_seconds",
				Help:      "Time spent in the store per gateway operation",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		treeNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tree",
			Name:      "nodes",
			Help:      "Number of descendants materialized per tree request",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		faults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "faults_total",
			Help:      "Requests that ended in an internal error",
		}),
	}
	m.registry.MustRegister(
		m.operations,
		m.duration,
		m.treeNodes,
		m.faults,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveOperation records one finished operation.
func (m *Metrics) ObserveOperation(op, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, status).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveTree records the size of a materialized tree.
func (m *Metrics) ObserveTree(nodes int) {
	if m == nil {
		return
	}
	m.treeNodes.Observe(float64(nodes))
}

// IncFault counts a request answered with HTTP 500.
func (m *Metrics) IncFault() {
	if m == nil {
		return
	}
	m.faults.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
