package mapper_test

import (
	"testing"
	"time"

	"github.com/amirasaad/bankcore/pkg/domain/account"
	"github.com/amirasaad/bankcore/pkg/mapper"
	"github.com/amirasaad/bankcore/pkg/money"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountToRead(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("GET", 4*3600))
	acc, err := account.New().
		WithUserID(uuid.New()).
		WithAccountNumber("ABCDEF0123").
		WithType(account.TypeSavings).
		WithBalance(money.MustParse("12.5")).
		WithCreatedAt(created).
		Build()
	require.NoError(t, err)

	read := mapper.AccountToRead(acc)
	assert.Equal(t, acc.ID, read.ID)
	assert.Equal(t, "ABCDEF0123", read.AccountNumber)
	assert.Equal(t, "Savings", read.AccountType)
	assert.Equal(t, "12.50", read.Balance)
	assert.Equal(t, "Active", read.Status)
	assert.Equal(t, "USD", read.Currency)
	assert.Equal(t, time.UTC, read.CreatedAt.Location())
	assert.True(t, created.Equal(read.CreatedAt))

	assert.Nil(t, mapper.AccountToRead(nil))
	assert.Len(t, mapper.AccountsToRead([]*account.Account{acc, acc}), 2)
}

func TestTransactionToRead(t *testing.T) {
	src, err := account.New().WithUserID(uuid.New()).WithAccountNumber("AAAAAAAAAA").Build()
	require.NoError(t, err)
	dst, err := account.New().WithUserID(uuid.New()).WithAccountNumber("BBBBBBBBBB").Build()
	require.NoError(t, err)

	entry := account.NewEntry("TXN1", src, account.TransactionTransferOut,
		money.MustParse("20"), money.MustParse("50"), money.MustParse("30"), "rent", uuid.New(), time.Now()).
		WithRelated(dst)

	read := mapper.TransactionToRead(entry)
	assert.Equal(t, "TXN1", read.Reference)
	assert.Equal(t, "AAAAAAAAAA", read.AccountNumber)
	assert.Equal(t, "TransferOut", read.Type)
	assert.Equal(t, "20.00", read.Amount)
	assert.Equal(t, "50.00", read.BalanceBefore)
	assert.Equal(t, "30.00", read.BalanceAfter)
	assert.Equal(t, "Completed", read.Status)
	assert.Equal(t, "BBBBBBBBBB", read.RelatedAccountNumber)

	assert.Empty(t, mapper.TransactionsToRead(nil))
}
