package transaction_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/amirasaad/bankcore/infra/repository/memory"
	"github.com/amirasaad/bankcore/pkg/config"
	"github.com/amirasaad/bankcore/pkg/domain"
	"github.com/amirasaad/bankcore/pkg/domain/account"
	"github.com/amirasaad/bankcore/pkg/dto"
	"github.com/amirasaad/bankcore/pkg/money"
	"github.com/amirasaad/bankcore/pkg/service/transaction"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func deposit(number string, owner uuid.UUID, amount string) dto.DepositCommand {
	return dto.DepositCommand{AccountNumber: number, Amount: money.MustParse(amount), Description: "cash deposit", ActorID: owner}
}

func withdraw(number string, owner uuid.UUID, amount string) dto.WithdrawCommand {
	return dto.WithdrawCommand{AccountNumber: number, Amount: money.MustParse(amount), Description: "atm withdrawal", ActorID: owner}
}

func transfer(from, to string, owner uuid.UUID, amount string) dto.TransferCommand {
	return dto.TransferCommand{
		FromAccountNumber: from,
		ToAccountNumber:   to,
		Amount:            money.MustParse(amount),
		Description:       "rent",
		ActorID:           owner,
	}
}

func TestDeposit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.open(t, "AAAAAAAAAA", "0")

	tx, err := f.svc.Deposit(ctx, deposit("AAAAAAAAAA", acct.UserID, "1000"))
	require.NoError(t, err)

	assert.Equal(t, "Deposit", tx.Type)
	assert.Equal(t, "Completed", tx.Status)
	assert.Equal(t, "1000.00", tx.Amount)
	assert.Equal(t, "0.00", tx.BalanceBefore)
	assert.Equal(t, "1000.00", tx.BalanceAfter)
	assert.Equal(t, "cash deposit", tx.Description)
	assert.True(t, len(tx.Reference) > len("TXN"))
	assert.Equal(t, "1000.00", f.balance(t, "AAAAAAAAAA"))

	stored, err := f.store.AccountRepository().GetByNumber(ctx, "AAAAAAAAAA")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
	assert.Equal(t, acct.UserID, stored.UpdatedBy)

	entries := f.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, transaction.ActionDeposit, entries[0].Action)
	assert.Equal(t, tx.ID.String(), entries[0].EntityID)
	assert.Nil(t, entries[0].OldValue)
	require.NotNil(t, entries[0].NewValue)
	assert.Equal(t, "Deposited 1000.00 to AAAAAAAAAA", *entries[0].NewValue)
}

func TestDeposit_Preconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown account", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Deposit(ctx, deposit("0000000000", uuid.New(), "10"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
		var nf *account.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "0000000000", nf.Key)
	})

	t.Run("not the owner", func(t *testing.T) {
		f := newFixture(t)
		f.open(t, "AAAAAAAAAA", "0")
		_, err := f.svc.Deposit(ctx, deposit("AAAAAAAAAA", uuid.New(), "10"))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Equal(t, "0.00", f.balance(t, "AAAAAAAAAA"))
	})

	t.Run("frozen account", func(t *testing.T) {
		f := newFixture(t)
		acct := f.open(t, "AAAAAAAAAA", "0")
		f.setStatus(t, "AAAAAAAAAA", account.StatusFrozen)
		_, err := f.svc.Deposit(ctx, deposit("AAAAAAAAAA", acct.UserID, "10"))
		assert.ErrorIs(t, err, domain.ErrInactive)
		var inactive *account.InactiveError
		require.ErrorAs(t, err, &inactive)
		assert.Equal(t, account.StatusFrozen, inactive.Status)
	})

	t.Run("zero amount", func(t *testing.T) {
		f := newFixture(t)
		acct := f.open(t, "AAAAAAAAAA", "0")
		_, err := f.svc.Deposit(ctx, deposit("AAAAAAAAAA", acct.UserID, "0"))
		assert.ErrorIs(t, err, domain.ErrInvalidOperation)
		assert.Zero(t, f.store.TransactionCount())
		assert.Empty(t, f.audit.Entries())
	})
}

func TestMovements_RejectSubCentAmounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.open(t, "AAAAAAAAAA", "1")
	f.open(t, "BBBBBBBBBB", "0")
	subCent := decimal.RequireFromString("0.004")

	cmd := deposit("AAAAAAAAAA", a.UserID, "1")
	cmd.Amount = subCent
	_, err := f.svc.Deposit(ctx, cmd)
	assert.ErrorIs(t, err, account.ErrAmountPrecision)

	wcmd := withdraw("AAAAAAAAAA", a.UserID, "1")
	wcmd.Amount = subCent
	_, err = f.svc.Withdraw(ctx, wcmd)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)

	tcmd := transfer("AAAAAAAAAA", "BBBBBBBBBB", a.UserID, "1")
	tcmd.Amount = decimal.RequireFromString("0.005")
	_, _, err = f.svc.Transfer(ctx, tcmd)
	assert.ErrorIs(t, err, account.ErrAmountPrecision)

	assert.Equal(t, "1.00", f.balance(t, "AAAAAAAAAA"))
	assert.Equal(t, "0.00", f.balance(t, "BBBBBBBBBB"))
	assert.Zero(t, f.store.TransactionCount())
	assert.Empty(t, f.audit.Entries())
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t)
	acct := f.open(t, "AAAAAAAAAA", "1000")

	tx, err := f.svc.Withdraw(context.Background(), withdraw("AAAAAAAAAA", acct.UserID, "250.25"))
	require.NoError(t, err)
	assert.Equal(t, "Withdrawal", tx.Type)
	assert.Equal(t, "1000.00", tx.BalanceBefore)
	assert.Equal(t, "749.75", tx.BalanceAfter)
	assert.Equal(t, "749.75", f.balance(t, "AAAAAAAAAA"))
}

func TestWithdraw_InsufficientFunds(t *testing.T) {
	f := newFixture(t)
	acct := f.open(t, "AAAAAAAAAA", "1000")

	_, err := f.svc.Withdraw(context.Background(), withdraw("AAAAAAAAAA", acct.UserID, "2000"))
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	var insufficient *account.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "1000.00", money.Format(insufficient.Balance))
	assert.Equal(t, "2000.00", money.Format(insufficient.Requested))

	assert.Equal(t, "1000.00", f.balance(t, "AAAAAAAAAA"))
	assert.Zero(t, f.store.TransactionCount())
}

func TestTransfer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.open(t, "AAAAAAAAAA", "500")
	f.open(t, "BBBBBBBBBB", "100")

	debit, credit, err := f.svc.Transfer(ctx, transfer("AAAAAAAAAA", "BBBBBBBBBB", a.UserID, "200"))
	require.NoError(t, err)

	assert.Equal(t, "300.00", f.balance(t, "AAAAAAAAAA"))
	assert.Equal(t, "300.00", f.balance(t, "BBBBBBBBBB"))

	assert.Equal(t, "TransferOut", debit.Type)
	assert.Equal(t, "AAAAAAAAAA", debit.AccountNumber)
	assert.Equal(t, "BBBBBBBBBB", debit.RelatedAccountNumber)
	assert.Equal(t, "500.00", debit.BalanceBefore)
	assert.Equal(t, "300.00", debit.BalanceAfter)

	assert.Equal(t, "TransferIn", credit.Type)
	assert.Equal(t, "BBBBBBBBBB", credit.AccountNumber)
	assert.Equal(t, "AAAAAAAAAA", credit.RelatedAccountNumber)
	assert.Equal(t, "100.00", credit.BalanceBefore)
	assert.Equal(t, "300.00", credit.BalanceAfter)

	assert.Equal(t, debit.Amount, credit.Amount)
	assert.Equal(t, debit.Description, credit.Description)
	assert.NotEqual(t, debit.Reference, credit.Reference)

	aRows, err := f.store.TransactionRepository().ListByAccountNumber(ctx, "AAAAAAAAAA", dto.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, aRows, 1)
	bRows, err := f.store.TransactionRepository().ListByAccountNumber(ctx, "BBBBBBBBBB", dto.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, bRows, 1)

	entries := f.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, debit.ID.String()+","+credit.ID.String(), entries[0].EntityID)
}

func TestTransfer_SameAccountRejectedBeforeStoreAccess(t *testing.T) {
	svc := transaction.NewService(config.Deps{Uow: untouchableUow{t: t}, Logger: discardLogger()})

	_, _, err := svc.Transfer(context.Background(), transfer("1111111111", "1111111111", uuid.New(), "10"))
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	assert.ErrorIs(t, err, account.ErrCannotTransferToSameAccount)
}

func TestTransfer_MissingAccountsAreNamed(t *testing.T) {
	f := newFixture(t)
	a := f.open(t, "AAAAAAAAAA", "500")

	_, _, err := f.svc.Transfer(context.Background(), transfer("AAAAAAAAAA", "CCCCCCCCCC", a.UserID, "10"))
	var nf *account.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "CCCCCCCCCC", nf.Key)

	_, _, err = f.svc.Transfer(context.Background(), transfer("DDDDDDDDDD", "AAAAAAAAAA", a.UserID, "10"))
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "DDDDDDDDDD", nf.Key)
}

func TestTransfer_Preconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("destination inactive", func(t *testing.T) {
		f := newFixture(t)
		a := f.open(t, "AAAAAAAAAA", "500")
		f.open(t, "BBBBBBBBBB", "0")
		f.setStatus(t, "BBBBBBBBBB", account.StatusClosed)
		_, _, err := f.svc.Transfer(ctx, transfer("AAAAAAAAAA", "BBBBBBBBBB", a.UserID, "10"))
		assert.ErrorIs(t, err, domain.ErrInactive)
	})

	t.Run("actor does not own source", func(t *testing.T) {
		f := newFixture(t)
		f.open(t, "AAAAAAAAAA", "500")
		b := f.open(t, "BBBBBBBBBB", "0")
		_, _, err := f.svc.Transfer(ctx, transfer("AAAAAAAAAA", "BBBBBBBBBB", b.UserID, "10"))
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("insufficient funds", func(t *testing.T) {
		f := newFixture(t)
		a := f.open(t, "AAAAAAAAAA", "5")
		f.open(t, "BBBBBBBBBB", "0")
		_, _, err := f.svc.Transfer(ctx, transfer("AAAAAAAAAA", "BBBBBBBBBB", a.UserID, "10"))
		assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
		assert.Equal(t, "5.00", f.balance(t, "AAAAAAAAAA"))
		assert.Equal(t, "0.00", f.balance(t, "BBBBBBBBBB"))
	})
}

func TestTransfer_DestinationFaultRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	a := f.open(t, "AAAAAAAAAA", "500")
	f.open(t, "BBBBBBBBBB", "100")

	injected := errors.New("store fault")
	f.store.SetFault(func(op string, target any) error {
		if acct, ok := target.(*account.Account); ok && op == memory.OpUpdateAccount && acct.AccountNumber == "BBBBBBBBBB" {
			return injected
		}
		return nil
	})

	_, _, err := f.svc.Transfer(context.Background(), transfer("AAAAAAAAAA", "BBBBBBBBBB", a.UserID, "200"))
	require.ErrorIs(t, err, injected)

	assert.Equal(t, "500.00", f.balance(t, "AAAAAAAAAA"))
	assert.Equal(t, "100.00", f.balance(t, "BBBBBBBBBB"))
	assert.Zero(t, f.store.TransactionCount())
	assert.Empty(t, f.audit.Entries())
}

func TestTransfer_SecondLegInsertFaultRollsBack(t *testing.T) {
	f := newFixture(t)
	a := f.open(t, "AAAAAAAAAA", "500")
	f.open(t, "BBBBBBBBBB", "100")

	f.store.SetFault(func(op string, target any) error {
		if tx, ok := target.(*account.Transaction); ok && op == memory.OpCreateTransaction && tx.Type == account.TransactionTransferIn {
			return errors.New("insert failed")
		}
		return nil
	})

	_, _, err := f.svc.Transfer(context.Background(), transfer("AAAAAAAAAA", "BBBBBBBBBB", a.UserID, "200"))
	require.Error(t, err)
	assert.Equal(t, "500.00", f.balance(t, "AAAAAAAAAA"))
	assert.Equal(t, "100.00", f.balance(t, "BBBBBBBBBB"))
	assert.Zero(t, f.store.TransactionCount())
}

func TestDeposit_ConcurrentModificationSurfacesConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acct := f.open(t, "AAAAAAAAAA", "100")

	// Another writer commits between the engine's read and its update.
	var once sync.Once
	f.store.SetFault(func(op string, _ any) error {
		if op != memory.OpUpdateAccount {
			return nil
		}
		once.Do(func() {
			f.store.SetFault(nil)
			other, err := f.store.AccountRepository().GetByNumber(ctx, "AAAAAAAAAA")
			require.NoError(t, err)
			other.Credit(money.MustParse("1"), other.UserID, time.Now())
			require.NoError(t, f.store.AccountRepository().Update(ctx, other))
		})
		return nil
	})

	_, err := f.svc.Deposit(ctx, deposit("AAAAAAAAAA", acct.UserID, "50"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.True(t, domain.IsRetryable(err))

	var conflict *account.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, account.MsgAccountConflict, conflict.Message)

	assert.Equal(t, "101.00", f.balance(t, "AAAAAAAAAA"))
	assert.Zero(t, f.store.TransactionCount())
}

func TestTransfer_ConflictUsesTransferMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.open(t, "AAAAAAAAAA", "100")
	f.open(t, "BBBBBBBBBB", "0")

	var once sync.Once
	f.store.SetFault(func(op string, _ any) error {
		if op != memory.OpUpdateAccount {
			return nil
		}
		once.Do(func() {
			f.store.SetFault(nil)
			other, err := f.store.AccountRepository().GetByNumber(ctx, "BBBBBBBBBB")
			require.NoError(t, err)
			other.Credit(money.MustParse("1"), other.UserID, time.Now())
			require.NoError(t, f.store.AccountRepository().Update(ctx, other))
		})
		return nil
	})

	_, _, err := f.svc.Transfer(ctx, transfer("AAAAAAAAAA", "BBBBBBBBBB", a.UserID, "10"))
	var conflict *account.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, account.MsgTransferConflict, conflict.Message)
	assert.Equal(t, "100.00", f.balance(t, "AAAAAAAAAA"))
	assert.Equal(t, "1.00", f.balance(t, "BBBBBBBBBB"))
}

func TestConcurrentWithdrawsNeverOverdraw(t *testing.T) {
	for round := 0; round < 20; round++ {
		f := newFixture(t)
		acct := f.open(t, "AAAAAAAAAA", "1000")

		amounts := []string{"700", "600"}
		errs := make([]error, len(amounts))
		var wg sync.WaitGroup
		start := make(chan struct{})
		for i, amt := range amounts {
			wg.Add(1)
			go func(i int, amt string) {
				defer wg.Done()
				<-start
				_, errs[i] = f.svc.Withdraw(context.Background(), withdraw("AAAAAAAAAA", acct.UserID, amt))
			}(i, amt)
		}
		close(start)
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.True(t,
				errors.Is(err, domain.ErrInsufficientFunds) || errors.Is(err, domain.ErrConcurrencyConflict),
				"unexpected error: %v", err)
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 1, f.store.TransactionCount())

		final, err := money.Parse(f.balance(t, "AAAAAAAAAA"))
		require.NoError(t, err)
		assert.False(t, final.IsNegative())
		assert.Contains(t, []string{"300.00", "400.00"}, money.Format(final))
	}
}

func TestTransfersConserveMoney(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owners := map[string]uuid.UUID{}
	for _, n := range []string{"AAAAAAAAAA", "BBBBBBBBBB", "CCCCCCCCCC"} {
		owners[n] = f.open(t, n, "100").UserID
	}
	total := func() string {
		sum := money.Zero
		for n := range owners {
			sum = sum.Add(money.MustParse(f.balance(t, n)))
		}
		return money.Format(sum)
	}

	moves := []struct {
		from, to, amount string
	}{
		{"AAAAAAAAAA", "BBBBBBBBBB", "30.10"},
		{"BBBBBBBBBB", "CCCCCCCCCC", "129.99"},
		{"CCCCCCCCCC", "AAAAAAAAAA", "0.01"},
		{"AAAAAAAAAA", "CCCCCCCCCC", "70.00"},
		{"AAAAAAAAAA", "BBBBBBBBBB", "500.00"},
		{"CCCCCCCCCC", "BBBBBBBBBB", "299.97"},
	}
	for _, m := range moves {
		before := f.balance(t, m.from)
		debit, credit, err := f.svc.Transfer(ctx, transfer(m.from, m.to, owners[m.from], m.amount))
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
			assert.Equal(t, before, f.balance(t, m.from))
		} else {
			assert.Equal(t, money.Format(money.MustParse(debit.BalanceBefore).Sub(money.MustParse(m.amount))), debit.BalanceAfter)
			assert.Equal(t, money.Format(money.MustParse(credit.BalanceBefore).Add(money.MustParse(m.amount))), credit.BalanceAfter)
		}
		assert.Equal(t, "300.00", total())
		for n := range owners {
			assert.False(t, money.MustParse(f.balance(t, n)).IsNegative())
		}
	}

	all, err := f.store.TransactionRepository().List(ctx, dto.TransactionFilter{})
	require.NoError(t, err)
	for _, tx := range all {
		assert.True(t, tx.IsBalanced(), tx.Reference)
	}
}

func TestCacheAndAuditFailuresDoNotFailOperations(t *testing.T) {
	store := memory.NewStore()
	c := new(mockCache)
	c.On("Remove", mock.Anything, mock.Anything).Return(errors.New("redis down"))
	c.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, errors.New("redis down"))
	c.On("SetWithExpiration", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))
	sink := new(mockSink)
	sink.On("Log", mock.Anything, mock.Anything).Return(errors.New("audit down"))

	svc := transaction.NewService(config.Deps{Uow: store, Cache: c, Audit: sink, Logger: discardLogger()})
	acct, err := account.New().WithAccountNumber("AAAAAAAAAA").WithUserID(uuid.New()).Build()
	require.NoError(t, err)
	require.NoError(t, store.AccountRepository().Create(context.Background(), acct))

	_, err = svc.Deposit(context.Background(), deposit("AAAAAAAAAA", acct.UserID, "10"))
	require.NoError(t, err)

	txs, err := svc.GetAccountTransactions(context.Background(), "AAAAAAAAAA", dto.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, txs, 1)

	c.AssertCalled(t, "Remove", mock.Anything, "account_AAAAAAAAAA")
	c.AssertCalled(t, "Remove", mock.Anything, "user_accounts_"+acct.UserID.String())
	c.AssertCalled(t, "Remove", mock.Anything, "account_transactions_AAAAAAAAAA")
	c.AssertCalled(t, "Remove", mock.Anything, "dashboard_stats_"+acct.UserID.String())
	sink.AssertNumberOfCalls(t, "Log", 1)
}
