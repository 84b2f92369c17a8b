// Package mapper holds the hand-written projections between domain entities and DTOs.
package mapper

import (
	"github.com/amirasaad/bankcore/pkg/domain/account"
	"github.com/amirasaad/bankcore/pkg/dto"
	"github.com/amirasaad/bankcore/pkg/money"
)

// AccountToRead projects an Account into its read DTO.
func AccountToRead(a *account.Account) *dto.AccountRead {
	if a == nil {
		return nil
	}
	return &dto.AccountRead{
		ID:            a.ID,
		AccountNumber: a.AccountNumber,
		UserID:        a.UserID,
		AccountType:   string(a.Type),
		Balance:       money.Format(a.Balance),
		Status:        string(a.Status),
		Currency:      a.Currency.String(),
		CreatedAt:     a.CreatedAt.UTC(),
	}
}

// AccountsToRead projects a slice of accounts, preserving order.
func AccountsToRead(accts []*account.Account) []*dto.AccountRead {
	out := make([]*dto.AccountRead, 0, len(accts))
	for _, a := range accts {
		out = append(out, AccountToRead(a))
	}
	return out
}

// TransactionToRead projects a ledger entry into its read DTO.
func TransactionToRead(t *account.Transaction) *dto.TransactionRead {
	if t == nil {
		return nil
	}
	return &dto.TransactionRead{
		ID:                   t.ID,
		Reference:            t.Reference,
		AccountNumber:        t.AccountNumber,
		Type:                 string(t.Type),
		Amount:               money.Format(t.Amount),
		BalanceBefore:        money.Format(t.BalanceBefore),
		BalanceAfter:         money.Format(t.BalanceAfter),
		Description:          t.Description,
		Status:               string(t.Status),
		RelatedAccountNumber: t.RelatedAccountNumber,
		CreatedAt:            t.CreatedAt.UTC(),
	}
}

// TransactionsToRead projects a slice of ledger entries, preserving order.
func TransactionsToRead(txs []*account.Transaction) []*dto.TransactionRead {
	out := make([]*dto.TransactionRead, 0, len(txs))
	for _, t := range txs {
		out = append(out, TransactionToRead(t))
	}
	return out
}
