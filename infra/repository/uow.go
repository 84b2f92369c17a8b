package repository

import (
	"context"
	"sync"

	"github.com/amirasaad/bankcore/pkg/repository"
	"gorm.io/gorm"
)

// UoW is the Postgres Ledger Store. Units map onto database transactions, and
// account updates are guarded by the version column.
type UoW struct {
	db *gorm.DB
}

// NewUoW creates a new UoW for the given *gorm.DB.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Begin starts a database transaction.
func (u *UoW) Begin(ctx context.Context) (repository.Unit, error) {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, MapGormErrorToDomain(tx.Error)
	}
	return &unit{tx: tx}, nil
}

// Do runs fn in a transaction boundary, committing only if fn returns nil.
func (u *UoW) Do(ctx context.Context, fn func(unit repository.Unit) error) error {
	return repository.Run(ctx, u, fn)
}

// AccountRepository returns a repository outside any transaction.
func (u *UoW) AccountRepository() repository.AccountRepository {
	return NewAccountRepository(u.db)
}

// TransactionRepository returns a repository outside any transaction.
func (u *UoW) TransactionRepository() repository.TransactionRepository {
	return NewTransactionRepository(u.db)
}

// AuditRepository returns a repository outside any transaction.
func (u *UoW) AuditRepository() repository.AuditRepository {
	return NewAuditRepository(u.db)
}

type unit struct {
	tx   *gorm.DB
	done bool
	mu   sync.Mutex
}

func (t *unit) AccountRepository() repository.AccountRepository {
	return NewAccountRepository(t.tx)
}

func (t *unit) TransactionRepository() repository.TransactionRepository {
	return NewTransactionRepository(t.tx)
}

func (t *unit) AuditRepository() repository.AuditRepository {
	return NewAuditRepository(t.tx)
}

func (t *unit) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	return MapGormErrorToDomain(t.tx.Commit().Error)
}

func (t *unit) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	return t.tx.Rollback().Error
}

var (
	_ repository.UnitOfWork = (*UoW)(nil)
	_ repository.Unit       = (*unit)(nil)
)
