// Package metrics exposes Prometheus collectors for graph repository operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vanshika/moviegraph/internal/apperr"
)

// Outcome label values.
const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation_error"
	OutcomeQuery      = "query_error"
	OutcomeConnection = "connection_error"
	OutcomeError      = "error"
)

// Metrics records per-operation counts and latencies. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moviegraph",
			Subsystem: "repository",
			Name:      "operations_total",
			Help:      "Graph repository operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "moviegraph",
			Subsystem: "repository",
			Name:      "operation_duration_seconds",
			Help:      "Latency of graph repository operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.latency)
	}
	return m
}

// Observe records one finished operation.
func (m *Metrics) Observe(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, outcome(err)).Inc()
	m.latency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Operations exposes the counter vector, mainly for tests.
func (m *Metrics) Operations() *prometheus.CounterVec {
	return m.operations
}

func outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return OutcomeValidation
	case apperr.KindQuery:
		return OutcomeQuery
	case apperr.KindConnection:
		return OutcomeConnection
	default:
		return OutcomeError
	}
}
