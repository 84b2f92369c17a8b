package cache

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/amirasaad/bankcore/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

type payload struct {
	Number  string `json:"number"`
	Balance string `json:"balance"`
}

func newTestMemoryCache(t *testing.T) (*MemoryCache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)), WithClock(clock.Now))
	t.Cleanup(func() { _ = c.Close() })
	return c, clock
}

func TestMemoryCache_GetSet(t *testing.T) {
	c, _ := newTestMemoryCache(t)
	ctx := context.Background()

	var got payload
	hit, err := c.Get(ctx, "account_A", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "account_A", payload{Number: "A", Balance: "10.00"}))
	hit, err = c.Get(ctx, "account_A", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, payload{Number: "A", Balance: "10.00"}, got)
}

func TestMemoryCache_ValuesAreCopied(t *testing.T) {
	c, _ := newTestMemoryCache(t)
	ctx := context.Background()

	list := []payload{{Number: "A"}}
	require.NoError(t, c.Set(ctx, "k", list))
	list[0].Number = "mutated"

	var got []payload
	hit, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, "A", got[0].Number)
}

func TestMemoryCache_AbsoluteTTL(t *testing.T) {
	c, clock := newTestMemoryCache(t)
	ctx := context.Background()
	require.NoError(t, c.SetWithTTL(ctx, "k", 1, time.Minute))

	var v int
	clock.Advance(59 * time.Second)
	hit, _ := c.Get(ctx, "k", &v)
	assert.True(t, hit)

	clock.Advance(time.Second)
	hit, _ = c.Get(ctx, "k", &v)
	assert.False(t, hit)
	assert.Equal(t, 0, c.Len(), "expired entry is dropped on read")
}

func TestMemoryCache_SlidingExpiration(t *testing.T) {
	c, clock := newTestMemoryCache(t)
	ctx := context.Background()
	require.NoError(t, c.SetWithExpiration(ctx, "k", 1, cache.Expiration{
		Absolute: 5 * time.Minute,
		Sliding:  2 * time.Minute,
	}))

	var v int
	// each read within the window renews it
	for i := 0; i < 4; i++ {
		clock.Advance(90 * time.Second)
		hit, err := c.Get(ctx, "k", &v)
		require.NoError(t, err)
		if i < 3 {
			assert.True(t, hit, "read %d", i)
		} else {
			assert.False(t, hit, "absolute bound reached at read %d", i)
		}
	}
}

func TestMemoryCache_SlidingLapses(t *testing.T) {
	c, clock := newTestMemoryCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", 1))

	var v int
	clock.Advance(2*time.Minute + time.Second)
	hit, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCache_Remove(t *testing.T) {
	c, _ := newTestMemoryCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", 1))
	require.NoError(t, c.Remove(ctx, "k"))
	require.NoError(t, c.Remove(ctx, "missing"))

	var v int
	hit, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCache_RemoveByPattern(t *testing.T) {
	c, _ := newTestMemoryCache(t)
	ctx := context.Background()
	for _, k := range []string{"transaction_1", "Transaction_2", "account_1", "account_transactions_1"} {
		require.NoError(t, c.Set(ctx, k, 1))
	}

	require.NoError(t, c.RemoveByPattern(ctx, "transaction_*"))
	assert.Equal(t, 3, c.Len())

	var v int
	hit, _ := c.Get(ctx, "Transaction_2", &v)
	assert.True(t, hit, "prefix match is case-sensitive")
	hit, _ = c.Get(ctx, "account_1", &v)
	assert.True(t, hit)
	hit, _ = c.Get(ctx, "account_transactions_1", &v)
	assert.True(t, hit)
}

func TestMemoryCache_InvalidKey(t *testing.T) {
	c, _ := newTestMemoryCache(t)
	ctx := context.Background()
	var v int
	_, err := c.Get(ctx, "", &v)
	assert.ErrorIs(t, err, cache.ErrInvalidKey)
	assert.ErrorIs(t, c.Set(ctx, "has space", 1), cache.ErrInvalidKey)
}

func TestMemoryCache_UnmarshalErrorIsNotAMiss(t *testing.T) {
	c, _ := newTestMemoryCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", "text"))

	var v int
	hit, err := c.Get(ctx, "k", &v)
	assert.Error(t, err)
	assert.False(t, hit)
}

func TestMemoryCache_JanitorEvicts(t *testing.T) {
	c, clock := newTestMemoryCache(t)
	ctx := context.Background()
	require.NoError(t, c.SetWithTTL(ctx, "k", 1, time.Second))
	clock.Advance(2 * time.Second)
	c.evictExpired()
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	c := NewMemoryCache(time.Millisecond, nil)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
