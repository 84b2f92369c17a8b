// Package cache defines the side-cache contract used for account and ledger reads.
//
// The cache is an optimisation only. Every write to it follows an already
// committed store write, and callers log and swallow its errors.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidKey is returned for keys that fail ValidateKey.
	ErrInvalidKey = errors.New("invalid cache key")
	// ErrUnavailable is returned when the backend cannot be reached or its circuit is open.
	ErrUnavailable = errors.New("cache unavailable")
)

// Cache is a key/value store with explicit expiration and prefix invalidation.
//
// Get decodes the stored value into dest and reports whether the key was present.
// A miss is (false, nil); a backend failure is (false, err) and never a silent miss.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set stores value with the Default expiration.
	Set(ctx context.Context, key string, value any) error
	// SetWithTTL stores value with an absolute TTL and no sliding renewal.
	SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error
	// SetWithExpiration stores value with an absolute TTL and optional sliding renewal.
	SetWithExpiration(ctx context.Context, key string, value any, exp Expiration) error
	Remove(ctx context.Context, key string) error
	// RemoveByPattern removes every key starting with pattern. A trailing '*' is ignored
	// and the match is case-sensitive on every backend.
	RemoveByPattern(ctx context.Context, pattern string) error
}

// Expiration combines an absolute lifetime with an optional sliding window.
//
// With Sliding > 0 every hit pushes expiry to now+Sliding, but never past
// creation+Absolute. With Sliding == 0 the entry lives exactly Absolute.
type Expiration struct {
	Absolute time.Duration
	Sliding  time.Duration
}

// Presets.
var (
	Default = Expiration{Absolute: 5 * time.Minute, Sliding: 2 * time.Minute}
	Short   = Expiration{Absolute: time.Minute}
	Long    = Expiration{Absolute: time.Hour, Sliding: 15 * time.Minute}
)

// Normalize fills a zero Absolute from the Default preset and clamps Sliding to Absolute.
func (e Expiration) Normalize() Expiration {
	if e.Absolute <= 0 {
		e.Absolute = Default.Absolute
		if e.Sliding <= 0 {
			e.Sliding = Default.Sliding
		}
	}
	if e.Sliding < 0 {
		e.Sliding = 0
	}
	if e.Sliding > e.Absolute {
		e.Sliding = e.Absolute
	}
	return e
}

// Deadline returns when an entry created at created and last touched at touched expires.
func (e Expiration) Deadline(created, touched time.Time) time.Time {
	hard := created.Add(e.Absolute)
	if e.Sliding <= 0 {
		return hard
	}
	soft := touched.Add(e.Sliding)
	if soft.Before(hard) {
		return soft
	}
	return hard
}
