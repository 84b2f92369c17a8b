package account

import (
	"time"

	"github.com/amirasaad/bankcore/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is one immutable ledger entry on one account.
// BalanceAfter always equals BalanceBefore plus Type.Sign() times Amount.
type Transaction struct {
	ID                   uuid.UUID
	Reference            string
	AccountID            uuid.UUID
	AccountNumber        string
	Type                 TransactionType
	Amount               decimal.Decimal
	BalanceBefore        decimal.Decimal
	BalanceAfter         decimal.Decimal
	Description          string
	Status               TransactionStatus
	RelatedAccountID     *uuid.UUID
	RelatedAccountNumber string
	CreatedAt            time.Time
	CreatedBy            uuid.UUID
}

// NewEntry records a Completed entry for acct. before and after are the balances
// captured around the mutation.
func NewEntry(
	reference string,
	acct *Account,
	typ TransactionType,
	amount, before, after decimal.Decimal,
	description string,
	actor uuid.UUID,
	at time.Time,
) *Transaction {
	return &Transaction{
		ID:            uuid.New(),
		Reference:     reference,
		AccountID:     acct.ID,
		AccountNumber: acct.AccountNumber,
		Type:          typ,
		Amount:        money.Round(amount),
		BalanceBefore: before,
		BalanceAfter:  after,
		Description:   description,
		Status:        TransactionCompleted,
		CreatedAt:     at,
		CreatedBy:     actor,
	}
}

// WithRelated links a transfer leg to its counterpart account.
func (t *Transaction) WithRelated(other *Account) *Transaction {
	id := other.ID
	t.RelatedAccountID = &id
	t.RelatedAccountNumber = other.AccountNumber
	return t
}

// IsBalanced reports whether the entry satisfies its sign convention.
func (t *Transaction) IsBalanced() bool {
	delta := t.Amount
	if t.Type.Sign() < 0 {
		delta = delta.Neg()
	}
	return t.BalanceBefore.Add(delta).Equal(t.BalanceAfter)
}
