package repository

import (
	"context"
)

// Unit is an open atomic unit. Writes made through its repositories become
// visible together on Commit or are discarded together on Rollback.
//
// Every Unit must be finished with Commit or Rollback. Rollback after a
// successful Commit is a no-op, so `defer unit.Rollback()` is always safe.
type Unit interface {
	AccountRepository() AccountRepository
	TransactionRepository() TransactionRepository
	AuditRepository() AuditRepository
	Commit() error
	Rollback() error
}

// UnitOfWork is the Ledger Store entry point.
//
// Begin opens an atomic unit. Do runs fn inside a fresh unit, commits when fn
// returns nil and rolls back otherwise (including on panic, which is re-raised).
// The repository accessors on UnitOfWork itself operate outside any unit and are
// meant for reads.
type UnitOfWork interface {
	Begin(ctx context.Context) (Unit, error)
	Do(ctx context.Context, fn func(unit Unit) error) error

	AccountRepository() AccountRepository
	TransactionRepository() TransactionRepository
	AuditRepository() AuditRepository
}

// Run is the shared Do implementation: Begin, fn, then Commit or Rollback.
func Run(ctx context.Context, u UnitOfWork, fn func(unit Unit) error) (err error) {
	unit, err := u.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = unit.Rollback()
			panic(p)
		}
		if err != nil {
			_ = unit.Rollback()
		}
	}()
	if err = fn(unit); err != nil {
		return err
	}
	return unit.Commit()
}
