package transaction_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	infracache "github.com/amirasaad/bankcore/infra/cache"
	"github.com/amirasaad/bankcore/infra/repository/memory"
	"github.com/amirasaad/bankcore/pkg/audit"
	"github.com/amirasaad/bankcore/pkg/cache"
	"github.com/amirasaad/bankcore/pkg/config"
	"github.com/amirasaad/bankcore/pkg/domain/account"
	"github.com/amirasaad/bankcore/pkg/money"
	"github.com/amirasaad/bankcore/pkg/reference"
	"github.com/amirasaad/bankcore/pkg/repository"
	"github.com/amirasaad/bankcore/pkg/service/transaction"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	svc   *transaction.Service
	store *memory.Store
	cache *infracache.MemoryCache
	audit *audit.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	c := infracache.NewMemoryCache(time.Minute, discardLogger())
	t.Cleanup(func() { _ = c.Close() })
	sink := audit.NewMemory()
	svc := transaction.NewService(config.Deps{
		Uow:        store,
		Cache:      c,
		Audit:      sink,
		References: reference.New(),
		Logger:     discardLogger(),
	})
	return &fixture{svc: svc, store: store, cache: c, audit: sink}
}

// open seeds an Active account holding balance and returns it.
func (f *fixture) open(t *testing.T, number, balance string) *account.Account {
	t.Helper()
	acct, err := account.New().
		WithAccountNumber(number).
		WithUserID(uuid.New()).
		WithBalance(money.MustParse(balance)).
		Build()
	require.NoError(t, err)
	require.NoError(t, f.store.AccountRepository().Create(context.Background(), acct))
	return acct
}

func (f *fixture) balance(t *testing.T, number string) string {
	t.Helper()
	acct, err := f.store.AccountRepository().GetByNumber(context.Background(), number)
	require.NoError(t, err)
	return money.Format(acct.Balance)
}

func (f *fixture) setStatus(t *testing.T, number string, status account.Status) {
	t.Helper()
	ctx := context.Background()
	acct, err := f.store.AccountRepository().GetByNumber(ctx, number)
	require.NoError(t, err)
	_, err = acct.SetStatus(status, acct.UserID, time.Now())
	require.NoError(t, err)
	require.NoError(t, f.store.AccountRepository().Update(ctx, acct))
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, key string, value any) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockCache) SetWithTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *mockCache) SetWithExpiration(ctx context.Context, key string, value any, exp cache.Expiration) error {
	return m.Called(ctx, key, value, exp).Error(0)
}

func (m *mockCache) Remove(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockCache) RemoveByPattern(ctx context.Context, pattern string) error {
	return m.Called(ctx, pattern).Error(0)
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Log(ctx context.Context, entry *audit.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

// untouchableUow fails the test on any store access.
type untouchableUow struct {
	t *testing.T
}

func (u untouchableUow) Begin(context.Context) (repository.Unit, error) {
	u.t.Fatal("unexpected Begin")
	return nil, nil
}

func (u untouchableUow) Do(context.Context, func(repository.Unit) error) error {
	u.t.Fatal("unexpected Do")
	return nil
}

func (u untouchableUow) AccountRepository() repository.AccountRepository {
	u.t.Fatal("unexpected AccountRepository")
	return nil
}

func (u untouchableUow) TransactionRepository() repository.TransactionRepository {
	u.t.Fatal("unexpected TransactionRepository")
	return nil
}

func (u untouchableUow) AuditRepository() repository.AuditRepository {
	u.t.Fatal("unexpected AuditRepository")
	return nil
}
