package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRead is a read-optimized DTO for ledger entries.
type TransactionRead struct {
	ID                   uuid.UUID `json:"id"`
	Reference            string    `json:"reference"`
	AccountNumber        string    `json:"account_number"`
	Type                 string    `json:"type"`
	Amount               string    `json:"amount"`
	BalanceBefore        string    `json:"balance_before"`
	BalanceAfter         string    `json:"balance_after"`
	Description          string    `json:"description"`
	Status               string    `json:"status"`
	RelatedAccountNumber string    `json:"related_account_number,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

// DepositCommand credits an account on behalf of ActorID.
type DepositCommand struct {
	AccountNumber string          `validate:"required,len=10"`
	Amount        decimal.Decimal `validate:"gt=0,lte=1000000"`
	Description   string          `validate:"required,min=3,max=500"`
	ActorID       uuid.UUID       `validate:"required"`
}

// WithdrawCommand debits an account on behalf of ActorID.
type WithdrawCommand struct {
	AccountNumber string          `validate:"required,len=10"`
	Amount        decimal.Decimal `validate:"gt=0,lte=1000000"`
	Description   string          `validate:"required,min=3,max=500"`
	ActorID       uuid.UUID       `validate:"required"`
}

// TransferCommand moves Amount between two accounts on behalf of ActorID.
type TransferCommand struct {
	FromAccountNumber string          `validate:"required,len=10"`
	ToAccountNumber   string          `validate:"required,len=10,nefield=FromAccountNumber"`
	Amount            decimal.Decimal `validate:"gt=0,lte=100000"`
	Description       string          `validate:"required,min=3,max=500"`
	ActorID           uuid.UUID       `validate:"required"`
}

// TransactionFilter restricts reads to an inclusive CreatedAt range.
// A zero filter means "everything".
type TransactionFilter struct {
	From *time.Time
	To   *time.Time
}

// IsZero reports whether neither bound is set.
func (f TransactionFilter) IsZero() bool {
	return f.From == nil && f.To == nil
}

// TransactionSummary aggregates the ledger entries of one account.
type TransactionSummary struct {
	AccountNumber    string `json:"account_number"`
	TotalDeposits    string `json:"total_deposits"`
	TotalWithdrawals string `json:"total_withdrawals"`
	TotalTransferIn  string `json:"total_transfer_in"`
	TotalTransferOut string `json:"total_transfer_out"`
	NetChange        string `json:"net_change"`
	Count            int    `json:"count"`
}
