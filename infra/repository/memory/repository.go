package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/amirasaad/bankcore/pkg/audit"
	"github.com/amirasaad/bankcore/pkg/domain"
	"github.com/amirasaad/bankcore/pkg/domain/account"
	"github.com/amirasaad/bankcore/pkg/dto"
	"github.com/amirasaad/bankcore/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errUnitFinished = errors.New("memory: unit already committed or rolled back")

// scope resolves the unit a repository call writes through. Repositories
// obtained from the Store itself get a throwaway unit committed per call.
func scope(ctx context.Context, s *Store, u *unit) (*unit, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if u != nil {
		if err := u.active(); err != nil {
			return nil, false, err
		}
		return u, false, nil
	}
	return newUnit(ctx, s), true, nil
}

type accountRepository struct {
	store *Store
	unit  *unit
}

func (r *accountRepository) Create(ctx context.Context, acct *account.Account) error {
	u, auto, err := scope(ctx, r.store, r.unit)
	if err != nil {
		return err
	}
	if err := r.store.injected(OpCreateAccount, acct); err != nil {
		return err
	}
	exists, err := r.ExistsByNumber(ctx, acct.AccountNumber)
	if err != nil {
		return err
	}
	if exists {
		return &account.DuplicateError{AccountNumber: acct.AccountNumber}
	}
	u.mu.Lock()
	u.cs.stage(&stagedAccount{acct: acct.Clone(), created: true})
	u.mu.Unlock()
	if auto {
		return u.Commit()
	}
	return nil
}

func (r *accountRepository) lookup(match func(*account.Account) bool, fromStore func() (*account.Account, bool)) (*account.Account, bool) {
	if r.unit != nil {
		r.unit.mu.Lock()
		for _, id := range r.unit.cs.order {
			if w := r.unit.cs.accounts[id]; match(w.acct) {
				c := w.acct.Clone()
				r.unit.mu.Unlock()
				return c, true
			}
		}
		r.unit.mu.Unlock()
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return fromStore()
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	acct, ok := r.lookup(
		func(a *account.Account) bool { return a.ID == id },
		func() (*account.Account, bool) { return r.store.getAccount(id) },
	)
	if !ok {
		return nil, account.NewNotFoundError(id.String())
	}
	return acct, nil
}

func (r *accountRepository) GetByNumber(ctx context.Context, accountNumber string) (*account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	acct, ok := r.lookup(
		func(a *account.Account) bool { return a.AccountNumber == accountNumber },
		func() (*account.Account, bool) { return r.store.getAccountByNumber(accountNumber) },
	)
	if !ok {
		return nil, account.NewNotFoundError(accountNumber)
	}
	return acct, nil
}

func (r *accountRepository) ExistsByNumber(ctx context.Context, accountNumber string) (bool, error) {
	_, err := r.GetByNumber(ctx, accountNumber)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Update stages acct if its version matches the version this unit can see.
// The committed version is re-checked on Commit.
func (r *accountRepository) Update(ctx context.Context, acct *account.Account) error {
	u, auto, err := scope(ctx, r.store, r.unit)
	if err != nil {
		return err
	}
	if err := r.store.injected(OpUpdateAccount, acct); err != nil {
		return err
	}

	u.mu.Lock()
	staged, isStaged := u.cs.accounts[acct.ID]
	u.mu.Unlock()

	w := &stagedAccount{}
	if isStaged {
		if staged.acct.Version != acct.Version {
			return fmt.Errorf("account %s: %w", acct.AccountNumber, domain.ErrConcurrencyConflict)
		}
		w.baseVersion = staged.baseVersion
		w.created = staged.created
	} else {
		r.store.mu.RLock()
		current, ok := r.store.accounts[acct.ID]
		var version int64
		if ok {
			version = current.Version
		}
		r.store.mu.RUnlock()
		if !ok {
			return account.NewNotFoundError(acct.AccountNumber)
		}
		if version != acct.Version {
			return fmt.Errorf("account %s: %w", acct.AccountNumber, domain.ErrConcurrencyConflict)
		}
		w.baseVersion = version
	}

	next := acct.Clone()
	next.Version = acct.Version + 1
	w.acct = next

	u.mu.Lock()
	u.cs.stage(w)
	u.mu.Unlock()

	if auto {
		if err := u.Commit(); err != nil {
			return err
		}
	}
	acct.Version = next.Version
	return nil
}

func (r *accountRepository) collect(match func(*account.Account) bool) []*account.Account {
	seen := make(map[uuid.UUID]*account.Account)
	r.store.mu.RLock()
	for id, a := range r.store.accounts {
		if match(a) {
			seen[id] = a.Clone()
		}
	}
	r.store.mu.RUnlock()
	if r.unit != nil {
		r.unit.mu.Lock()
		for id, w := range r.unit.cs.accounts {
			if match(w.acct) {
				seen[id] = w.acct.Clone()
			}
		}
		r.unit.mu.Unlock()
	}
	out := make([]*account.Account, 0, len(seen))
	for _, a := range seen {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].AccountNumber < out[j].AccountNumber
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *accountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.collect(func(a *account.Account) bool { return a.UserID == userID }), nil
}

func (r *accountRepository) List(ctx context.Context) ([]*account.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.collect(func(*account.Account) bool { return true }), nil
}

type transactionRepository struct {
	store *Store
	unit  *unit
}

func (r *transactionRepository) Create(ctx context.Context, tx *account.Transaction) error {
	u, auto, err := scope(ctx, r.store, r.unit)
	if err != nil {
		return err
	}
	if err := r.store.injected(OpCreateTransaction, tx); err != nil {
		return err
	}
	if _, err := r.GetByReference(ctx, tx.Reference); err == nil {
		return fmt.Errorf("transaction %s: %w", tx.Reference, domain.ErrAlreadyExists)
	}
	c := *tx
	u.mu.Lock()
	u.cs.transactions = append(u.cs.transactions, &c)
	u.mu.Unlock()
	if auto {
		return u.Commit()
	}
	return nil
}

func (r *transactionRepository) GetByReference(ctx context.Context, reference string) (*account.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.unit != nil {
		r.unit.mu.Lock()
		for _, tx := range r.unit.cs.transactions {
			if tx.Reference == reference {
				c := *tx
				r.unit.mu.Unlock()
				return &c, nil
			}
		}
		r.unit.mu.Unlock()
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	i, ok := r.store.byReference[reference]
	if !ok {
		return nil, &account.NotFoundError{Entity: "transaction", Key: reference}
	}
	c := *r.store.transactions[i]
	return &c, nil
}

func (r *transactionRepository) collect(accountNumber string, filter dto.TransactionFilter) []*account.Transaction {
	var out []*account.Transaction
	r.store.mu.RLock()
	for _, tx := range r.store.transactions {
		if matches(tx, accountNumber, filter) {
			c := *tx
			out = append(out, &c)
		}
	}
	r.store.mu.RUnlock()
	if r.unit != nil {
		r.unit.mu.Lock()
		for _, tx := range r.unit.cs.transactions {
			if matches(tx, accountNumber, filter) {
				c := *tx
				out = append(out, &c)
			}
		}
		r.unit.mu.Unlock()
	}
	// Insertion order reversed first so equal timestamps list newest insert first.
	reverse(out)
	newestFirst(out)
	return out
}

func (r *transactionRepository) ListByAccountNumber(ctx context.Context, accountNumber string, filter dto.TransactionFilter) ([]*account.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if accountNumber == "" {
		return []*account.Transaction{}, nil
	}
	return r.collect(accountNumber, filter), nil
}

func (r *transactionRepository) List(ctx context.Context, filter dto.TransactionFilter) ([]*account.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.collect("", filter), nil
}

var typeOrder = []account.TransactionType{
	account.TransactionDeposit,
	account.TransactionWithdrawal,
	account.TransactionTransfer,
	account.TransactionTransferIn,
	account.TransactionTransferOut,
}

func (r *transactionRepository) SumByType(ctx context.Context, accountNumber string, filter dto.TransactionFilter) ([]repository.TypeTotal, error) {
	txs, err := r.ListByAccountNumber(ctx, accountNumber, filter)
	if err != nil {
		return nil, err
	}
	totals := make(map[account.TransactionType]*repository.TypeTotal)
	for _, tx := range txs {
		t, ok := totals[tx.Type]
		if !ok {
			t = &repository.TypeTotal{Type: tx.Type, Total: decimal.Zero}
			totals[tx.Type] = t
		}
		t.Total = t.Total.Add(tx.Amount)
		t.Count++
	}
	out := make([]repository.TypeTotal, 0, len(totals))
	for _, typ := range typeOrder {
		if t, ok := totals[typ]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

type auditRepository struct {
	store *Store
	unit  *unit
}

func (r *auditRepository) Create(ctx context.Context, entry *audit.Entry) error {
	u, auto, err := scope(ctx, r.store, r.unit)
	if err != nil {
		return err
	}
	c := *entry
	u.mu.Lock()
	u.cs.audits = append(u.cs.audits, &c)
	u.mu.Unlock()
	if auto {
		return u.Commit()
	}
	return nil
}
