package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirasaad/bankcore/pkg/audit"
	"github.com/amirasaad/bankcore/pkg/cache"
	"github.com/amirasaad/bankcore/pkg/domain"
	"github.com/amirasaad/bankcore/pkg/domain/account"
	"github.com/amirasaad/bankcore/pkg/dto"
	"github.com/amirasaad/bankcore/pkg/mapper"
	"github.com/amirasaad/bankcore/pkg/money"
	"github.com/amirasaad/bankcore/pkg/repository"
	"github.com/amirasaad/bankcore/pkg/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateAccount opens an Active account under a freshly generated number.
//
// A positive initial deposit is recorded as a Completed Deposit entry in the
// same unit as the account, so neither exists without the other. A number
// that is already taken fails with account.DuplicateError; it is never
// overwritten.
func (s *Service) CreateAccount(ctx context.Context, cmd dto.AccountCreate) (read *dto.AccountRead, err error) {
	start := time.Now()
	defer func() { s.Observe(ActionCreateAccount, start, err) }()

	logger := s.logger.With("user", cmd.UserID, "actor", cmd.ActorID, "type", cmd.AccountType)
	logger.Info("CreateAccount started")

	if cmd.InitialDeposit.IsNegative() {
		logger.Error("CreateAccount failed: negative initial deposit")
		return nil, account.ErrNegativeInitialDeposit
	}
	if !money.HasValidScale(cmd.InitialDeposit) {
		logger.Error("CreateAccount failed: initial deposit precision")
		return nil, account.ErrAmountPrecision
	}

	number := s.Refs.AccountNumber()
	exists, err := s.Uow.AccountRepository().ExistsByNumber(ctx, number)
	if err != nil {
		logger.Error("CreateAccount failed: number lookup", "error", err)
		return nil, err
	}
	if exists {
		err = &account.DuplicateError{AccountNumber: number}
		logger.Error("CreateAccount failed: number collision", "account", number)
		return nil, err
	}

	now := s.Refs.Now()
	acct, err := account.New().
		WithAccountNumber(number).
		WithUserID(cmd.UserID).
		WithType(account.Type(cmd.AccountType)).
		WithCurrency(money.Code(cmd.Currency)).
		WithBalance(cmd.InitialDeposit).
		WithCreatedBy(cmd.ActorID).
		WithCreatedAt(now).
		Build()
	if err != nil {
		logger.Error("CreateAccount failed: domain error", "error", err)
		return nil, err
	}

	err = s.Uow.Do(ctx, func(u repository.Unit) error {
		if err := u.AccountRepository().Create(ctx, acct); err != nil {
			return err
		}
		if !money.IsPositive(acct.Balance) {
			return nil
		}
		entry := account.NewEntry(s.Refs.TransactionReference(), acct, account.TransactionDeposit,
			acct.Balance, decimal.Zero, acct.Balance, initialDepositDescription, cmd.ActorID, now)
		return u.TransactionRepository().Create(ctx, entry)
	})
	if err != nil {
		err = duplicate(err, number)
		logger.Error("CreateAccount failed: unit aborted", "error", err)
		return nil, err
	}

	s.Record(ctx, audit.NewEntry(ActionCreateAccount, entityAccount, acct.ID.String(), "",
		fmt.Sprintf("Created account %s", acct.AccountNumber), cmd.ActorID))

	read = mapper.AccountToRead(acct)
	s.CacheSet(ctx, cache.AccountKey(acct.AccountNumber), read, cache.Default)
	s.Invalidate(ctx, cache.UserAccountsKey(acct.UserID.String()))

	logger.Info("CreateAccount completed", "account", acct.AccountNumber, "balance", read.Balance)
	return read, nil
}

// UpdateStatus moves an account to status. Any status may follow any other.
// It returns true once the change is committed.
func (s *Service) UpdateStatus(
	ctx context.Context,
	accountID uuid.UUID,
	status account.Status,
	actorID uuid.UUID,
) (ok bool, err error) {
	start := time.Now()
	defer func() { s.Observe(ActionUpdateAccountStatus, start, err) }()

	logger := s.logger.With("account_id", accountID, "actor", actorID, "status", status)
	logger.Info("UpdateStatus started")

	acct, err := s.Uow.AccountRepository().Get(ctx, accountID)
	if err != nil {
		logger.Error("UpdateStatus failed: account lookup", "error", err)
		return false, err
	}
	old, err := acct.SetStatus(status, actorID, s.Refs.Now())
	if err != nil {
		logger.Error("UpdateStatus failed: domain error", "error", err)
		return false, err
	}

	err = s.Uow.Do(ctx, func(u repository.Unit) error {
		return u.AccountRepository().Update(ctx, acct)
	})
	if err != nil {
		err = service.Conflict(err, account.MsgStatusConflict)
		logger.Error("UpdateStatus failed: unit aborted", "error", err)
		return false, err
	}

	s.Record(ctx, audit.NewEntry(ActionUpdateAccountStatus, entityAccount, acct.ID.String(),
		"Status: "+string(old), "Status: "+string(status), actorID))
	s.Invalidate(ctx,
		cache.AccountKey(acct.AccountNumber),
		cache.UserAccountsKey(acct.UserID.String()),
	)

	logger.Info("UpdateStatus completed", "account", acct.AccountNumber, "old_status", old)
	return true, nil
}

// duplicate reports a unique violation on the new account as a DuplicateError.
func duplicate(err error, number string) error {
	var dup *account.DuplicateError
	if errors.As(err, &dup) || !errors.Is(err, domain.ErrAlreadyExists) {
		return err
	}
	return &account.DuplicateError{AccountNumber: number}
}
