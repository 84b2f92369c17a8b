// Package metrics exports cache and ledger measurements to Prometheus.
package metrics

import (
	"errors"
	"time"

	"github.com/amirasaad/bankcore/pkg/domain"
	"github.com/amirasaad/bankcore/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements metrics.Collector for Prometheus.
type PrometheusCollector struct {
	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
	cacheErrors  *prometheus.CounterVec
	cacheLatency *prometheus.HistogramVec
	circuitState *prometheus.GaugeVec

	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

// NewPrometheusCollector creates the collectors and registers them with reg.
func NewPrometheusCollector(namespace string, reg prometheus.Registerer) (*PrometheusCollector, error) {
	pc := &PrometheusCollector{
		cacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits per backend",
			},
			[]string{"backend"},
		),
		cacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of cache misses per backend",
			},
			[]string{"backend"},
		),
		cacheErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_errors_total",
				Help:      "Total number of cache errors per backend and operation",
			},
			[]string{"backend", "operation"},
		),
		cacheLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cache_operation_duration_seconds",
				Help:      "Cache operation latency per backend and operation",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
			},
			[]string{"backend", "operation"},
		),
		circuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cache_circuit_state",
				Help:      "Circuit breaker state per backend (0=closed, 1=open, 2=half-open)",
			},
			[]string{"backend"},
		),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_operations_total",
				Help:      "Ledger operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ledger_operation_duration_seconds",
				Help:      "Ledger operation latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	for _, c := range []prometheus.Collector{
		pc.cacheHits, pc.cacheMisses, pc.cacheErrors, pc.cacheLatency,
		pc.circuitState, pc.operations, pc.operationDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return pc, nil
}

// RecordGet implements metrics.Collector.
func (pc *PrometheusCollector) RecordGet(backend string, hit bool, err error, d time.Duration) {
	pc.cacheLatency.WithLabelValues(backend, "get").Observe(d.Seconds())
	switch {
	case err != nil:
		pc.cacheErrors.WithLabelValues(backend, "get").Inc()
	case hit:
		pc.cacheHits.WithLabelValues(backend).Inc()
	default:
		pc.cacheMisses.WithLabelValues(backend).Inc()
	}
}

// RecordSet implements metrics.Collector.
func (pc *PrometheusCollector) RecordSet(backend string, err error, d time.Duration) {
	pc.cacheLatency.WithLabelValues(backend, "set").Observe(d.Seconds())
	if err != nil {
		pc.cacheErrors.WithLabelValues(backend, "set").Inc()
	}
}

// RecordRemove implements metrics.Collector.
func (pc *PrometheusCollector) RecordRemove(backend string, err error, d time.Duration) {
	pc.cacheLatency.WithLabelValues(backend, "remove").Observe(d.Seconds())
	if err != nil {
		pc.cacheErrors.WithLabelValues(backend, "remove").Inc()
	}
}

// RecordCircuitState implements metrics.Collector.
func (pc *PrometheusCollector) RecordCircuitState(backend string, state metrics.CircuitState) {
	var v float64
	switch state {
	case metrics.CircuitOpen:
		v = 1
	case metrics.CircuitHalfOpen:
		v = 2
	}
	pc.circuitState.WithLabelValues(backend).Set(v)
}

// RecordOperation implements metrics.Collector.
func (pc *PrometheusCollector) RecordOperation(op string, err error, d time.Duration) {
	pc.operations.WithLabelValues(op, Outcome(err)).Inc()
	pc.operationDuration.WithLabelValues(op).Observe(d.Seconds())
}

// Outcome classifies an operation error into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInactive):
		return "inactive"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrAlreadyExists):
		return "duplicate"
	case errors.Is(err, domain.ErrInvalidOperation), errors.Is(err, domain.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}

var _ metrics.Collector = (*PrometheusCollector)(nil)
