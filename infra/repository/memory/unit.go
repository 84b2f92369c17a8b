package memory

import (
	"context"
	"sync"

	"github.com/amirasaad/bankcore/pkg/audit"
	"github.com/amirasaad/bankcore/pkg/domain/account"
	"github.com/amirasaad/bankcore/pkg/repository"
	"github.com/google/uuid"
)

type stagedAccount struct {
	acct        *account.Account
	baseVersion int64
	created     bool
}

type changeSet struct {
	accounts     map[uuid.UUID]*stagedAccount
	order        []uuid.UUID
	transactions []*account.Transaction
	audits       []*audit.Entry
}

func (cs *changeSet) stage(w *stagedAccount) {
	if _, ok := cs.accounts[w.acct.ID]; !ok {
		cs.order = append(cs.order, w.acct.ID)
	}
	cs.accounts[w.acct.ID] = w
}

func (cs *changeSet) stagedByNumber(number string) (*stagedAccount, bool) {
	for _, id := range cs.order {
		if w := cs.accounts[id]; w.acct.AccountNumber == number {
			return w, true
		}
	}
	return nil, false
}

// unit is an open atomic unit over a Store.
type unit struct {
	ctx   context.Context
	store *Store

	mu   sync.Mutex
	cs   *changeSet
	done bool
}

func newUnit(ctx context.Context, s *Store) *unit {
	return &unit{
		ctx:   ctx,
		store: s,
		cs:    &changeSet{accounts: make(map[uuid.UUID]*stagedAccount)},
	}
}

func (u *unit) AccountRepository() repository.AccountRepository {
	return &accountRepository{store: u.store, unit: u}
}

func (u *unit) TransactionRepository() repository.TransactionRepository {
	return &transactionRepository{store: u.store, unit: u}
}

func (u *unit) AuditRepository() repository.AuditRepository {
	return &auditRepository{store: u.store, unit: u}
}

// Commit applies every staged write or none of them.
func (u *unit) Commit() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done {
		return nil
	}
	u.done = true
	if err := u.ctx.Err(); err != nil {
		return err
	}
	if err := u.store.injected(OpCommit, nil); err != nil {
		return err
	}
	return u.store.commit(u.cs)
}

// Rollback discards staged writes. It is a no-op once the unit is finished.
func (u *unit) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.done = true
	u.cs = &changeSet{accounts: make(map[uuid.UUID]*stagedAccount)}
	return nil
}

func (u *unit) active() error {
	if u.done {
		return errUnitFinished
	}
	return u.ctx.Err()
}

var _ repository.Unit = (*unit)(nil)
