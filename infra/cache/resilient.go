package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/bankcore/pkg/cache"
	"github.com/amirasaad/bankcore/pkg/metrics"
	"github.com/sony/gobreaker"
)

// ResilientConfig configures the circuit breaker and per-call timeout.
type ResilientConfig struct {
	// Name labels logs and metrics, e.g. "redis".
	Name string
	// Timeout bounds every call to the wrapped cache. Zero disables it.
	Timeout time.Duration
	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32
	// Interval clears failure counts while closed. Zero never clears.
	Interval time.Duration
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
}

// DefaultResilientConfig returns defaults suited to a side cache.
func DefaultResilientConfig(name string) ResilientConfig {
	return ResilientConfig{
		Name:                name,
		Timeout:             250 * time.Millisecond,
		MaxRequests:         1,
		Interval:            time.Minute,
		OpenTimeout:         30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// ResilientCache wraps a cache.Cache with a circuit breaker, a call timeout
// and metrics. When the breaker is open calls fail fast with cache.ErrUnavailable.
type ResilientCache struct {
	next    cache.Cache
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
	name    string
	metrics metrics.Collector
	logger  *slog.Logger
}

// NewResilientCache wraps next. A nil collector records nothing.
func NewResilientCache(
	next cache.Cache,
	cfg ResilientConfig,
	collector metrics.Collector,
	logger *slog.Logger,
) *ResilientCache {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	rc := &ResilientCache{
		next:    next,
		timeout: cfg.Timeout,
		name:    cfg.Name,
		metrics: collector,
		logger:  logger.With("cache", cfg.Name, "layer", "resilient"),
	}

	threshold := cfg.ConsecutiveFailures
	rc.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, cache.ErrInvalidKey)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			rc.logger.Warn("Circuit breaker state changed", "from", from.String(), "to", to.String())
			rc.metrics.RecordCircuitState(name, circuitState(to))
		},
	})
	return rc
}

func circuitState(s gobreaker.State) metrics.CircuitState {
	switch s {
	case gobreaker.StateOpen:
		return metrics.CircuitOpen
	case gobreaker.StateHalfOpen:
		return metrics.CircuitHalfOpen
	default:
		return metrics.CircuitClosed
	}
}

// State returns the breaker state.
func (rc *ResilientCache) State() gobreaker.State {
	return rc.cb.State()
}

func (rc *ResilientCache) execute(ctx context.Context, op string, fn func(ctx context.Context) (any, error)) (any, error) {
	if rc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rc.timeout)
		defer cancel()
	}
	res, err := rc.cb.Execute(func() (any, error) {
		return fn(ctx)
	})
	if err == nil {
		return res, nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		rc.logger.Debug("Circuit breaker rejected request", "op", op)
		return nil, fmt.Errorf("%w: %s circuit open", cache.ErrUnavailable, rc.name)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %s %s timed out after %s", cache.ErrUnavailable, rc.name, op, rc.timeout)
	}
	return nil, err
}

// Get implements cache.Cache.
func (rc *ResilientCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	start := time.Now()
	res, err := rc.execute(ctx, "get", func(ctx context.Context) (any, error) {
		return rc.next.Get(ctx, key, dest)
	})
	hit, _ := res.(bool)
	rc.metrics.RecordGet(rc.name, hit, err, time.Since(start))
	return hit, err
}

// Set implements cache.Cache.
func (rc *ResilientCache) Set(ctx context.Context, key string, value any) error {
	return rc.SetWithExpiration(ctx, key, value, cache.Default)
}

// SetWithTTL implements cache.Cache.
func (rc *ResilientCache) SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	return rc.SetWithExpiration(ctx, key, value, cache.Expiration{Absolute: ttl})
}

// SetWithExpiration implements cache.Cache.
func (rc *ResilientCache) SetWithExpiration(ctx context.Context, key string, value any, exp cache.Expiration) error {
	start := time.Now()
	_, err := rc.execute(ctx, "set", func(ctx context.Context) (any, error) {
		return nil, rc.next.SetWithExpiration(ctx, key, value, exp)
	})
	rc.metrics.RecordSet(rc.name, err, time.Since(start))
	return err
}

// Remove implements cache.Cache.
func (rc *ResilientCache) Remove(ctx context.Context, key string) error {
	start := time.Now()
	_, err := rc.execute(ctx, "remove", func(ctx context.Context) (any, error) {
		return nil, rc.next.Remove(ctx, key)
	})
	rc.metrics.RecordRemove(rc.name, err, time.Since(start))
	return err
}

// RemoveByPattern implements cache.Cache.
func (rc *ResilientCache) RemoveByPattern(ctx context.Context, pattern string) error {
	start := time.Now()
	_, err := rc.execute(ctx, "remove_pattern", func(ctx context.Context) (any, error) {
		return nil, rc.next.RemoveByPattern(ctx, pattern)
	})
	rc.metrics.RecordRemove(rc.name, err, time.Since(start))
	return err
}

var _ cache.Cache = (*ResilientCache)(nil)
