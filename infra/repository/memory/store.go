// Package memory is an in-process Ledger Store.
//
// Committed state lives in Store behind a RWMutex. A Unit stages its writes
// privately and applies them in one critical section on Commit, after
// re-checking every account version it touched. A version that moved since
// it was read fails the whole Commit with domain.ErrConcurrencyConflict.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/amirasaad/bankcore/pkg/audit"
	"github.com/amirasaad/bankcore/pkg/domain"
	"github.com/amirasaad/bankcore/pkg/domain/account"
	"github.com/amirasaad/bankcore/pkg/dto"
	"github.com/amirasaad/bankcore/pkg/repository"
	"github.com/google/uuid"
)

// Fault operations passed to a FaultFunc.
const (
	OpCreateAccount     = "account.create"
	OpUpdateAccount     = "account.update"
	OpCreateTransaction = "transaction.create"
	OpCommit            = "commit"
)

// FaultFunc lets tests fail a store operation. target is the entity being
// written, or nil for OpCommit.
type FaultFunc func(op string, target any) error

// Store is an in-memory repository.UnitOfWork.
type Store struct {
	mu           sync.RWMutex
	accounts     map[uuid.UUID]*account.Account
	byNumber     map[string]uuid.UUID
	transactions []*account.Transaction
	byReference  map[string]int
	audits       []*audit.Entry

	faultMu sync.RWMutex
	fault   FaultFunc
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		accounts:    make(map[uuid.UUID]*account.Account),
		byNumber:    make(map[string]uuid.UUID),
		byReference: make(map[string]int),
	}
}

// SetFault installs f. Pass nil to clear it.
func (s *Store) SetFault(f FaultFunc) {
	s.faultMu.Lock()
	s.fault = f
	s.faultMu.Unlock()
}

func (s *Store) injected(op string, target any) error {
	s.faultMu.RLock()
	f := s.fault
	s.faultMu.RUnlock()
	if f == nil {
		return nil
	}
	return f(op, target)
}

// Begin implements repository.UnitOfWork.
func (s *Store) Begin(ctx context.Context) (repository.Unit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return newUnit(ctx, s), nil
}

// Do implements repository.UnitOfWork.
func (s *Store) Do(ctx context.Context, fn func(unit repository.Unit) error) error {
	return repository.Run(ctx, s, fn)
}

// AccountRepository returns a repository reading committed state.
// Writes through it commit immediately.
func (s *Store) AccountRepository() repository.AccountRepository {
	return &accountRepository{store: s}
}

// TransactionRepository returns a repository reading committed state.
func (s *Store) TransactionRepository() repository.TransactionRepository {
	return &transactionRepository{store: s}
}

// AuditRepository returns a repository appending committed audit entries.
func (s *Store) AuditRepository() repository.AuditRepository {
	return &auditRepository{store: s}
}

// AuditEntries returns a snapshot of the stored audit entries.
func (s *Store) AuditEntries() []*audit.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*audit.Entry, len(s.audits))
	copy(out, s.audits)
	return out
}

// TransactionCount returns the number of committed ledger entries.
func (s *Store) TransactionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transactions)
}

func (s *Store) getAccount(id uuid.UUID) (*account.Account, bool) {
	a, ok := s.accounts[id]
	if !ok {
		return nil, false
	}
	return a.Clone(), true
}

func (s *Store) getAccountByNumber(number string) (*account.Account, bool) {
	id, ok := s.byNumber[number]
	if !ok {
		return nil, false
	}
	return s.getAccount(id)
}

// apply writes a staged change set. The caller holds s.mu for writing and
// has already validated it.
func (s *Store) apply(cs *changeSet) {
	for _, id := range cs.order {
		w := cs.accounts[id]
		stored := w.acct.Clone()
		s.accounts[id] = stored
		s.byNumber[stored.AccountNumber] = id
	}
	for _, tx := range cs.transactions {
		c := *tx
		s.transactions = append(s.transactions, &c)
		s.byReference[c.Reference] = len(s.transactions) - 1
	}
	s.audits = append(s.audits, cs.audits...)
}

// validate checks a change set against committed state. The caller holds s.mu.
func (s *Store) validate(cs *changeSet) error {
	for _, id := range cs.order {
		w := cs.accounts[id]
		current, exists := s.accounts[id]
		if w.created {
			if exists {
				return fmt.Errorf("account %s: %w", id, domain.ErrAlreadyExists)
			}
			if _, taken := s.byNumber[w.acct.AccountNumber]; taken {
				return fmt.Errorf("account number %s: %w", w.acct.AccountNumber, domain.ErrAlreadyExists)
			}
			continue
		}
		if !exists || current.Version != w.baseVersion {
			return fmt.Errorf("account %s: %w", w.acct.AccountNumber, domain.ErrConcurrencyConflict)
		}
	}
	seen := make(map[string]struct{}, len(cs.transactions))
	for _, tx := range cs.transactions {
		if _, dup := s.byReference[tx.Reference]; dup {
			return fmt.Errorf("transaction %s: %w", tx.Reference, domain.ErrAlreadyExists)
		}
		if _, dup := seen[tx.Reference]; dup {
			return fmt.Errorf("transaction %s: %w", tx.Reference, domain.ErrAlreadyExists)
		}
		seen[tx.Reference] = struct{}{}
	}
	return nil
}

// commit validates and applies cs atomically.
func (s *Store) commit(cs *changeSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.validate(cs); err != nil {
		return err
	}
	s.apply(cs)
	return nil
}

func matches(tx *account.Transaction, number string, filter dto.TransactionFilter) bool {
	if number != "" && tx.AccountNumber != number {
		return false
	}
	if filter.From != nil && tx.CreatedAt.Before(*filter.From) {
		return false
	}
	if filter.To != nil && tx.CreatedAt.After(*filter.To) {
		return false
	}
	return true
}

// newestFirst orders by CreatedAt descending, later inserts first on ties.
func newestFirst(txs []*account.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
}

func reverse(txs []*account.Transaction) {
	for i, j := 0, len(txs)-1; i < j; i, j = i+1, j-1 {
		txs[i], txs[j] = txs[j], txs[i]
	}
}

var _ repository.UnitOfWork = (*Store)(nil)
