package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/amirasaad/bankcore/pkg/cache"
	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

// RedisCache implements cache.Cache on top of Redis.
//
// Each value is stored in an envelope that remembers its expiration policy so a
// hit can renew a sliding entry with PEXPIRE. RemoveByPattern walks the
// keyspace with SCAN and deletes matches.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

type envelope struct {
	Value     json.RawMessage `json:"v"`
	CreatedAt int64           `json:"c"`
	Absolute  time.Duration   `json:"a"`
	Sliding   time.Duration   `json:"s,omitempty"`
}

// NewRedisCache wraps client. Every key is stored under prefix.
func NewRedisCache(client redis.UniversalClient, prefix string, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{
		client: client,
		prefix: prefix,
		logger: logger.With("cache", "redis"),
		now:    time.Now,
	}
}

func (r *RedisCache) key(key string) string {
	return r.prefix + key
}

// Get decodes the value under key into dest. redis.Nil is a miss, any other
// error is returned as is.
func (r *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if err := cache.ValidateKey(key); err != nil {
		return false, err
	}
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("Redis cache miss", "key", key)
		return false, nil
	}
	if err != nil {
		r.logger.Error("Redis cache get error", "key", key, "error", err)
		return false, err
	}

	var env envelope
	if err := json.Unmarshal(val, &env); err != nil {
		r.logger.Error("Redis cache envelope error", "key", key, "error", err)
		return false, err
	}
	if err := json.Unmarshal(env.Value, dest); err != nil {
		r.logger.Error("Redis cache unmarshal error", "key", key, "error", err)
		return false, err
	}

	if env.Sliding > 0 {
		exp := cache.Expiration{Absolute: env.Absolute, Sliding: env.Sliding}
		now := r.now()
		ttl := exp.Deadline(time.Unix(0, env.CreatedAt), now).Sub(now)
		if ttl > 0 {
			if err := r.client.PExpire(ctx, r.key(key), ttl).Err(); err != nil {
				// the value is still good; only the renewal failed
				r.logger.Warn("Redis cache sliding renewal failed", "key", key, "error", err)
			}
		}
	}

	r.logger.Debug("Redis cache hit", "key", key)
	return true, nil
}

// Set stores value with the Default expiration.
func (r *RedisCache) Set(ctx context.Context, key string, value any) error {
	return r.SetWithExpiration(ctx, key, value, cache.Default)
}

// SetWithTTL stores value for exactly ttl.
func (r *RedisCache) SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	return r.SetWithExpiration(ctx, key, value, cache.Expiration{Absolute: ttl})
}

// SetWithExpiration stores value with an absolute and optional sliding expiration.
func (r *RedisCache) SetWithExpiration(ctx context.Context, key string, value any, exp cache.Expiration) error {
	if err := cache.ValidateKey(key); err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		r.logger.Error("Redis cache marshal error", "key", key, "error", err)
		return err
	}
	exp = exp.Normalize()
	now := r.now()
	data, err := json.Marshal(envelope{
		Value:     raw,
		CreatedAt: now.UnixNano(),
		Absolute:  exp.Absolute,
		Sliding:   exp.Sliding,
	})
	if err != nil {
		return err
	}

	ttl := exp.Deadline(now, now).Sub(now)
	if err := r.client.Set(ctx, r.key(key), data, ttl).Err(); err != nil {
		r.logger.Error("Redis cache set error", "key", key, "error", err)
		return err
	}
	r.logger.Debug("Redis cache set", "key", key, "ttl", ttl, "sliding", exp.Sliding)
	return nil
}

// Remove deletes key.
func (r *RedisCache) Remove(ctx context.Context, key string) error {
	if err := cache.ValidateKey(key); err != nil {
		return err
	}
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		r.logger.Error("Redis cache delete error", "key", key, "error", err)
		return err
	}
	r.logger.Debug("Redis cache delete", "key", key)
	return nil
}

// RemoveByPattern deletes every key starting with pattern (trailing '*' ignored).
// Glob metacharacters in pattern are matched literally.
func (r *RedisCache) RemoveByPattern(ctx context.Context, pattern string) error {
	match := escapeGlob(r.key(cache.PatternPrefix(pattern))) + "*"
	var (
		cursor  uint64
		removed int64
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			r.logger.Error("Redis cache scan error", "pattern", pattern, "error", err)
			return err
		}
		if len(keys) > 0 {
			n, err := r.client.Del(ctx, keys...).Result()
			if err != nil {
				r.logger.Error("Redis cache delete error", "pattern", pattern, "error", err)
				return err
			}
			removed += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	r.logger.Debug("Redis cache remove by pattern", "pattern", pattern, "removed", removed)
	return nil
}

// Ping checks connectivity.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch c {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

var _ cache.Cache = (*RedisCache)(nil)
