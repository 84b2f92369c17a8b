package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/amirasaad/bankcore/pkg/audit"
	"github.com/amirasaad/bankcore/pkg/domain/account"
	"github.com/amirasaad/bankcore/pkg/dto"
	"github.com/amirasaad/bankcore/pkg/mapper"
	"github.com/amirasaad/bankcore/pkg/money"
	"github.com/amirasaad/bankcore/pkg/repository"
	"github.com/amirasaad/bankcore/pkg/service"
)

// Deposit credits cmd.Amount to the account and records a Deposit entry.
//
// Checks run in order: the account exists, the actor owns it, it is Active,
// the amount is positive.
func (s *Service) Deposit(ctx context.Context, cmd dto.DepositCommand) (tx *dto.TransactionRead, err error) {
	start := time.Now()
	defer func() { s.Observe(ActionDeposit, start, err) }()

	logger := s.logger.With("account", cmd.AccountNumber, "actor", cmd.ActorID, "amount", money.Format(cmd.Amount))
	logger.Info("Deposit started")

	acct, err := s.Uow.AccountRepository().GetByNumber(ctx, cmd.AccountNumber)
	if err != nil {
		logger.Error("Deposit failed: account lookup", "error", err)
		return nil, err
	}
	if err = acct.ValidateDeposit(cmd.ActorID, cmd.Amount); err != nil {
		logger.Error("Deposit failed: validation", "error", err)
		return nil, err
	}

	var entry *account.Transaction
	err = s.Uow.Do(ctx, func(u repository.Unit) error {
		now := s.Refs.Now()
		before, after := acct.Credit(cmd.Amount, cmd.ActorID, now)
		if err := u.AccountRepository().Update(ctx, acct); err != nil {
			return err
		}
		entry = account.NewEntry(s.Refs.TransactionReference(), acct, account.TransactionDeposit,
			cmd.Amount, before, after, cmd.Description, cmd.ActorID, now)
		return u.TransactionRepository().Create(ctx, entry)
	})
	if err != nil {
		err = service.Conflict(err, account.MsgAccountConflict)
		logger.Error("Deposit failed: unit aborted", "error", err)
		return nil, err
	}

	s.Record(ctx, audit.NewEntry(ActionDeposit, entityTransaction, entry.ID.String(), "",
		fmt.Sprintf("Deposited %s to %s", money.Format(cmd.Amount), acct.AccountNumber), cmd.ActorID))
	s.InvalidateAccount(ctx, acct.AccountNumber, acct.UserID)

	logger.Info("Deposit completed", "reference", entry.Reference, "balance", money.Format(entry.BalanceAfter))
	return mapper.TransactionToRead(entry), nil
}

// Withdraw debits cmd.Amount from the account and records a Withdrawal entry.
// It checks everything Deposit checks plus sufficient funds.
func (s *Service) Withdraw(ctx context.Context, cmd dto.WithdrawCommand) (tx *dto.TransactionRead, err error) {
	start := time.Now()
	defer func() { s.Observe(ActionWithdraw, start, err) }()

	logger := s.logger.With("account", cmd.AccountNumber, "actor", cmd.ActorID, "amount", money.Format(cmd.Amount))
	logger.Info("Withdraw started")

	acct, err := s.Uow.AccountRepository().GetByNumber(ctx, cmd.AccountNumber)
	if err != nil {
		logger.Error("Withdraw failed: account lookup", "error", err)
		return nil, err
	}
	if err = acct.ValidateWithdraw(cmd.ActorID, cmd.Amount); err != nil {
		logger.Error("Withdraw failed: validation", "error", err)
		return nil, err
	}

	var entry *account.Transaction
	err = s.Uow.Do(ctx, func(u repository.Unit) error {
		now := s.Refs.Now()
		before, after, err := acct.Debit(cmd.Amount, cmd.ActorID, now)
		if err != nil {
			return err
		}
		if err := u.AccountRepository().Update(ctx, acct); err != nil {
			return err
		}
		entry = account.NewEntry(s.Refs.TransactionReference(), acct, account.TransactionWithdrawal,
			cmd.Amount, before, after, cmd.Description, cmd.ActorID, now)
		return u.TransactionRepository().Create(ctx, entry)
	})
	if err != nil {
		err = service.Conflict(err, account.MsgAccountConflict)
		logger.Error("Withdraw failed: unit aborted", "error", err)
		return nil, err
	}

	s.Record(ctx, audit.NewEntry(ActionWithdraw, entityTransaction, entry.ID.String(), "",
		fmt.Sprintf("Withdrew %s from %s", money.Format(cmd.Amount), acct.AccountNumber), cmd.ActorID))
	s.InvalidateAccount(ctx, acct.AccountNumber, acct.UserID)

	logger.Info("Withdraw completed", "reference", entry.Reference, "balance", money.Format(entry.BalanceAfter))
	return mapper.TransactionToRead(entry), nil
}

// Transfer moves cmd.Amount between two accounts. Both balance updates and
// both ledger legs commit together or not at all.
//
// The same-account check runs before any store access. Then: both accounts
// exist, the actor owns the source, both are Active, the amount is positive
// and the source can cover it.
func (s *Service) Transfer(ctx context.Context, cmd dto.TransferCommand) (debit, credit *dto.TransactionRead, err error) {
	start := time.Now()
	defer func() { s.Observe(ActionTransfer, start, err) }()

	logger := s.logger.With(
		"from", cmd.FromAccountNumber,
		"to", cmd.ToAccountNumber,
		"actor", cmd.ActorID,
		"amount", money.Format(cmd.Amount),
	)
	logger.Info("Transfer started")

	if cmd.FromAccountNumber == cmd.ToAccountNumber {
		logger.Error("Transfer failed: same account")
		return nil, nil, account.ErrCannotTransferToSameAccount
	}

	repo := s.Uow.AccountRepository()
	from, err := repo.GetByNumber(ctx, cmd.FromAccountNumber)
	if err != nil {
		logger.Error("Transfer failed: source lookup", "error", err)
		return nil, nil, err
	}
	to, err := repo.GetByNumber(ctx, cmd.ToAccountNumber)
	if err != nil {
		logger.Error("Transfer failed: destination lookup", "error", err)
		return nil, nil, err
	}
	if err = from.ValidateTransfer(cmd.ActorID, to, cmd.Amount); err != nil {
		logger.Error("Transfer failed: validation", "error", err)
		return nil, nil, err
	}

	var out, in *account.Transaction
	err = s.Uow.Do(ctx, func(u repository.Unit) error {
		now := s.Refs.Now()
		fromBefore, fromAfter, err := from.Debit(cmd.Amount, cmd.ActorID, now)
		if err != nil {
			return err
		}
		toBefore, toAfter := to.Credit(cmd.Amount, cmd.ActorID, now)

		accounts := u.AccountRepository()
		if err := accounts.Update(ctx, from); err != nil {
			return err
		}
		if err := accounts.Update(ctx, to); err != nil {
			return err
		}

		out = account.NewEntry(s.Refs.TransactionReference(), from, account.TransactionTransferOut,
			cmd.Amount, fromBefore, fromAfter, cmd.Description, cmd.ActorID, now).WithRelated(to)
		in = account.NewEntry(s.Refs.TransactionReference(), to, account.TransactionTransferIn,
			cmd.Amount, toBefore, toAfter, cmd.Description, cmd.ActorID, now).WithRelated(from)

		txs := u.TransactionRepository()
		if err := txs.Create(ctx, out); err != nil {
			return err
		}
		return txs.Create(ctx, in)
	})
	if err != nil {
		err = service.Conflict(err, account.MsgTransferConflict)
		logger.Error("Transfer failed: unit aborted", "error", err)
		return nil, nil, err
	}

	s.Record(ctx, audit.NewEntry(ActionTransfer, entityTransaction,
		out.ID.String()+","+in.ID.String(), "",
		fmt.Sprintf("Transferred %s from %s to %s", money.Format(cmd.Amount), from.AccountNumber, to.AccountNumber),
		cmd.ActorID))
	s.InvalidateAccount(ctx, from.AccountNumber, from.UserID)
	s.InvalidateAccount(ctx, to.AccountNumber, to.UserID)

	logger.Info("Transfer completed", "debit_reference", out.Reference, "credit_reference", in.Reference)
	return mapper.TransactionToRead(out), mapper.TransactionToRead(in), nil
}
