// Package metrics defines the collector contract for cache and ledger instrumentation.
package metrics

import "time"

// Collector receives cache and ledger measurements. Implementations export them to a
// backend such as Prometheus.
type Collector interface {
	RecordGet(backend string, hit bool, err error, duration time.Duration)
	RecordSet(backend string, err error, duration time.Duration)
	RecordRemove(backend string, err error, duration time.Duration)
	RecordCircuitState(backend string, state CircuitState)
	// RecordOperation counts a ledger operation such as "deposit" by outcome.
	RecordOperation(op string, err error, duration time.Duration)
}

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	// CircuitClosed means the circuit breaker is allowing requests through.
	CircuitClosed CircuitState = iota
	// CircuitOpen means the circuit breaker is blocking requests.
	CircuitOpen
	// CircuitHalfOpen means the circuit breaker is testing if the backend has recovered.
	CircuitHalfOpen
)

// String returns the string representation of the circuit state.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// NoOpCollector discards everything.
type NoOpCollector struct{}

// RecordGet does nothing.
func (NoOpCollector) RecordGet(string, bool, error, time.Duration) {}

// RecordSet does nothing.
func (NoOpCollector) RecordSet(string, error, time.Duration) {}

// RecordRemove does nothing.
func (NoOpCollector) RecordRemove(string, error, time.Duration) {}

// RecordCircuitState does nothing.
func (NoOpCollector) RecordCircuitState(string, CircuitState) {}

// RecordOperation does nothing.
func (NoOpCollector) RecordOperation(string, error, time.Duration) {}

var _ Collector = NoOpCollector{}
