package repository

import (
	"context"

	"github.com/amirasaad/bankcore/pkg/audit"
	"github.com/amirasaad/bankcore/pkg/domain/account"
	"github.com/amirasaad/bankcore/pkg/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account data access operations.
//
// Get and GetByNumber return domain.ErrNotFound for unknown or soft-deleted accounts.
// Update is a compare-and-swap on Version: it succeeds only if the stored version
// still equals acct.Version, then bumps acct.Version. A mismatch returns
// domain.ErrConcurrencyConflict and writes nothing.
type AccountRepository interface {
	Create(ctx context.Context, acct *account.Account) error
	Get(ctx context.Context, id uuid.UUID) (*account.Account, error)
	GetByNumber(ctx context.Context, accountNumber string) (*account.Account, error)
	ExistsByNumber(ctx context.Context, accountNumber string) (bool, error)
	Update(ctx context.Context, acct *account.Account) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error)
	List(ctx context.Context) ([]*account.Account, error)
}

// TypeTotal is the sum and count of one transaction type.
type TypeTotal struct {
	Type  account.TransactionType
	Total decimal.Decimal
	Count int64
}

// TransactionRepository defines the interface for ledger entry access.
// Entries are append-only so there is no Update.
//
// List methods order by CreatedAt descending and treat filter bounds as inclusive.
type TransactionRepository interface {
	Create(ctx context.Context, tx *account.Transaction) error
	GetByReference(ctx context.Context, reference string) (*account.Transaction, error)
	ListByAccountNumber(ctx context.Context, accountNumber string, filter dto.TransactionFilter) ([]*account.Transaction, error)
	List(ctx context.Context, filter dto.TransactionFilter) ([]*account.Transaction, error)
	SumByType(ctx context.Context, accountNumber string, filter dto.TransactionFilter) ([]TypeTotal, error)
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *audit.Entry) error
}
