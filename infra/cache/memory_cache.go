package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/bankcore/pkg/cache"
)

// MemoryCache implements cache.Cache in process.
// Values are stored JSON encoded so readers never share memory with writers.
type MemoryCache struct {
	data   map[string]*cacheEntry
	mu     sync.RWMutex
	logger *slog.Logger
	now    func() time.Time

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

type cacheEntry struct {
	value     []byte
	exp       cache.Expiration
	createdAt time.Time
	expiresAt time.Time
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) { c.now = now }
}

// NewMemoryCache creates an in-memory cache and starts a janitor that removes
// expired entries every cleanupInterval. Call Close to stop it.
func NewMemoryCache(cleanupInterval time.Duration, logger *slog.Logger, opts ...MemoryOption) *MemoryCache {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &MemoryCache{
		data:   make(map[string]*cacheEntry),
		logger: logger.With("cache", "memory"),
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.wg.Add(1)
	go c.cleanup(cleanupInterval)

	return c
}

// Get decodes the value stored under key into dest.
// A hit on a sliding entry pushes its expiry forward.
func (c *MemoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	if err := cache.ValidateKey(key); err != nil {
		return false, err
	}
	now := c.now()

	c.mu.Lock()
	e, ok := c.data[key]
	if !ok {
		c.mu.Unlock()
		c.logger.Debug("Memory cache miss", "key", key)
		return false, nil
	}
	if !now.Before(e.expiresAt) {
		delete(c.data, key)
		c.mu.Unlock()
		c.logger.Debug("Memory cache expired", "key", key)
		return false, nil
	}
	if e.exp.Sliding > 0 {
		e.expiresAt = e.exp.Deadline(e.createdAt, now)
	}
	value := e.value
	c.mu.Unlock()

	if err := json.Unmarshal(value, dest); err != nil {
		c.logger.Error("Memory cache unmarshal error", "key", key, "error", err)
		return false, err
	}
	c.logger.Debug("Memory cache hit", "key", key)
	return true, nil
}

// Set stores value with the Default expiration.
func (c *MemoryCache) Set(ctx context.Context, key string, value any) error {
	return c.SetWithExpiration(ctx, key, value, cache.Default)
}

// SetWithTTL stores value for exactly ttl.
func (c *MemoryCache) SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	return c.SetWithExpiration(ctx, key, value, cache.Expiration{Absolute: ttl})
}

// SetWithExpiration stores value with an absolute and optional sliding expiration.
func (c *MemoryCache) SetWithExpiration(_ context.Context, key string, value any, exp cache.Expiration) error {
	if err := cache.ValidateKey(key); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Error("Memory cache marshal error", "key", key, "error", err)
		return err
	}
	exp = exp.Normalize()
	now := c.now()

	c.mu.Lock()
	c.data[key] = &cacheEntry{
		value:     data,
		exp:       exp,
		createdAt: now,
		expiresAt: exp.Deadline(now, now),
	}
	c.mu.Unlock()

	c.logger.Debug("Memory cache set", "key", key, "absolute", exp.Absolute, "sliding", exp.Sliding)
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (c *MemoryCache) Remove(_ context.Context, key string) error {
	if err := cache.ValidateKey(key); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
	c.logger.Debug("Memory cache remove", "key", key)
	return nil
}

// RemoveByPattern deletes every key that starts with pattern, ignoring a trailing '*'.
func (c *MemoryCache) RemoveByPattern(_ context.Context, pattern string) error {
	prefix := cache.PatternPrefix(pattern)
	removed := 0

	c.mu.Lock()
	for key := range c.data {
		if strings.HasPrefix(key, prefix) {
			delete(c.data, key)
			removed++
		}
	}
	c.mu.Unlock()

	c.logger.Debug("Memory cache remove by pattern", "pattern", pattern, "removed", removed)
	return nil
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Close stops the janitor. It is safe to call more than once.
func (c *MemoryCache) Close() error {
	c.once.Do(func() {
		close(c.stop)
		c.wg.Wait()
	})
	return nil
}

func (c *MemoryCache) cleanup(interval time.Duration) {
	defer c.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.evictExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *MemoryCache) evictExpired() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.data {
		if !now.Before(e.expiresAt) {
			delete(c.data, key)
		}
	}
}

var _ cache.Cache = (*MemoryCache)(nil)
