// Package service holds what the transaction and account services share:
// dependency defaults, side-cache access that never fails the caller,
// fire-and-forget auditing and operation metrics.
//
// Use the sub-packages:
//
//	import "github.com/amirasaad/bankcore/pkg/service/transaction"
//	import "github.com/amirasaad/bankcore/pkg/service/account"
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/amirasaad/bankcore/pkg/audit"
	"github.com/amirasaad/bankcore/pkg/cache"
	"github.com/amirasaad/bankcore/pkg/config"
	"github.com/amirasaad/bankcore/pkg/domain"
	"github.com/amirasaad/bankcore/pkg/domain/account"
	"github.com/amirasaad/bankcore/pkg/metrics"
	"github.com/amirasaad/bankcore/pkg/reference"
	"github.com/amirasaad/bankcore/pkg/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Base carries the dependencies every service needs.
type Base struct {
	Uow     repository.UnitOfWork
	Cache   cache.Cache
	Audit   audit.Sink
	Refs    *reference.Generator
	Metrics metrics.Collector
	Logger  *slog.Logger

	group singleflight.Group
}

// keyGenerations counts invalidations per cache key across every service in
// the process, so a load started before a write commits can tell it is stale.
type keyGenerations struct {
	mu sync.Mutex
	m  map[string]uint64
}

var generations = &keyGenerations{m: make(map[string]uint64)}

func (g *keyGenerations) get(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.m[key]
}

func (g *keyGenerations) bump(keys ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, key := range keys {
		g.m[key]++
	}
}

// NewBase builds a Base from deps, substituting defaults for optional ones.
func NewBase(deps config.Deps) *Base {
	b := &Base{
		Uow:     deps.Uow,
		Cache:   deps.Cache,
		Audit:   deps.Audit,
		Refs:    deps.References,
		Metrics: deps.Metrics,
		Logger:  deps.Logger,
	}
	if b.Logger == nil {
		b.Logger = slog.Default()
	}
	if b.Cache == nil {
		b.Cache = cache.Noop{}
	}
	if b.Audit == nil {
		b.Audit = audit.NewLogSink(b.Logger)
	}
	if b.Refs == nil {
		b.Refs = reference.New()
	}
	if b.Metrics == nil {
		b.Metrics = metrics.NoOpCollector{}
	}
	return b
}

// CacheGet reads key into dest. Backend errors are logged and reported as a miss.
func (b *Base) CacheGet(ctx context.Context, key string, dest any) bool {
	hit, err := b.Cache.Get(ctx, key, dest)
	if err != nil {
		b.Logger.Warn("cache get failed", "key", key, "error", err)
		return false
	}
	return hit
}

// CacheSet stores value under key. Errors are logged and dropped.
func (b *Base) CacheSet(ctx context.Context, key string, value any, exp cache.Expiration) {
	if err := b.Cache.SetWithExpiration(ctx, key, value, exp); err != nil {
		b.Logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// Invalidate removes keys. Errors are logged and dropped.
// Loads already in flight for these keys will not write their result back.
func (b *Base) Invalidate(ctx context.Context, keys ...string) {
	generations.bump(keys...)
	for _, key := range keys {
		if err := b.Cache.Remove(ctx, key); err != nil {
			b.Logger.Warn("cache invalidation failed", "key", key, "error", err)
		}
	}
}

// InvalidateAccount drops every cached view an account write can make stale.
func (b *Base) InvalidateAccount(ctx context.Context, accountNumber string, owner uuid.UUID) {
	b.Invalidate(ctx,
		cache.AccountKey(accountNumber),
		cache.UserAccountsKey(owner.String()),
		cache.AccountTransactionsKey(accountNumber),
		cache.DashboardStatsKey(owner.String()),
	)
}

// Record hands entry to the audit sink. A failing sink is logged and never
// surfaces to the caller.
func (b *Base) Record(ctx context.Context, entry *audit.Entry) {
	if err := b.Audit.Log(ctx, entry); err != nil {
		b.Logger.Error("audit log failed", "action", entry.Action, "entity_id", entry.EntityID, "error", err)
	}
}

// Observe records the outcome and duration of a named operation.
func (b *Base) Observe(op string, start time.Time, err error) {
	b.Metrics.RecordOperation(op, err, time.Since(start))
}

// Conflict turns a store version mismatch into a ConflictError carrying msg.
func Conflict(err error, msg string) error {
	if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
		return err
	}
	var ce *account.ConflictError
	if errors.As(err, &ce) {
		return err
	}
	return &account.ConflictError{Message: msg, Err: err}
}

// CacheFirst returns the cached value under key or loads, caches and returns it.
// Concurrent misses on the same key share one load, which is detached from the
// first caller's cancellation. A result is not cached if key was invalidated
// while it loaded.
func CacheFirst[T any](
	ctx context.Context,
	b *Base,
	key string,
	exp cache.Expiration,
	load func(ctx context.Context) (T, error),
) (T, error) {
	var cached T
	if b.CacheGet(ctx, key, &cached) {
		return cached, nil
	}
	v, err, _ := b.group.Do(key, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		gen := generations.get(key)
		fresh, err := load(loadCtx)
		if err != nil {
			return fresh, err
		}
		if generations.get(key) == gen {
			b.CacheSet(loadCtx, key, fresh, exp)
		}
		return fresh, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
