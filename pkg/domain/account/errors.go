package account

import (
	"fmt"

	"github.com/amirasaad/bankcore/pkg/domain"
	"github.com/amirasaad/bankcore/pkg/money"
	"github.com/shopspring/decimal"
)

var (
	// ErrCannotTransferToSameAccount is returned when a transfer names the same account on both sides.
	ErrCannotTransferToSameAccount = fmt.Errorf("%w: cannot transfer to the same account", domain.ErrInvalidOperation)
	// ErrNonPositiveAmount is returned when a transaction amount is zero or negative.
	ErrNonPositiveAmount = fmt.Errorf("%w: transaction amount must be positive", domain.ErrInvalidOperation)
	// ErrAmountPrecision is returned when an amount carries more than two fractional digits.
	ErrAmountPrecision = fmt.Errorf("%w: amount cannot have more than 2 decimal places", domain.ErrInvalidOperation)
	// ErrNegativeInitialDeposit is returned when an account is opened with a negative balance.
	ErrNegativeInitialDeposit = fmt.Errorf("%w: initial deposit cannot be negative", domain.ErrInvalidOperation)
	// ErrInvalidType is returned for an unknown account type.
	ErrInvalidType = fmt.Errorf("%w: unknown account type", domain.ErrInvalidOperation)
	// ErrInvalidStatus is returned for an unknown account status.
	ErrInvalidStatus = fmt.Errorf("%w: unknown account status", domain.ErrInvalidOperation)
	// ErrNotOwner is returned when a user attempts to act on an account they do not own.
	ErrNotOwner = fmt.Errorf("%w: user does not own the account", domain.ErrUnauthorized)
	// ErrNilAccount is returned when a nil account is provided to a transfer.
	ErrNilAccount = fmt.Errorf("%w: nil account", domain.ErrInvalidOperation)
)

// NotFoundError names the account or transaction that could not be resolved.
type NotFoundError struct {
	Entity string
	Key    string
}

// NewNotFoundError returns a NotFoundError for an account key.
func NewNotFoundError(key string) *NotFoundError {
	return &NotFoundError{Entity: "account", Key: key}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

func (e *NotFoundError) Unwrap() error { return domain.ErrNotFound }

// InactiveError is returned when an active-only operation targets an account in another status.
type InactiveError struct {
	AccountNumber string
	Status        Status
}

func (e *InactiveError) Error() string {
	return fmt.Sprintf("account %s is %s", e.AccountNumber, e.Status)
}

func (e *InactiveError) Unwrap() error { return domain.ErrInactive }

// InsufficientFundsError carries the balance and requested amount so callers can build a message.
type InsufficientFundsError struct {
	AccountNumber string
	Balance       decimal.Decimal
	Requested     decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in account %s: balance %s, requested %s",
		e.AccountNumber, money.Format(e.Balance), money.Format(e.Requested))
}

func (e *InsufficientFundsError) Unwrap() error { return domain.ErrInsufficientFunds }

// DuplicateError is returned when a generated account number already exists.
type DuplicateError struct {
	AccountNumber string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("account number %s already exists", e.AccountNumber)
}

func (e *DuplicateError) Unwrap() error { return domain.ErrAlreadyExists }

// ConflictError is the retryable error surfaced when a version check fails at commit.
type ConflictError struct {
	Message string
	Err     error
}

func (e *ConflictError) Error() string { return e.Message }

// Unwrap exposes both the conflict sentinel and the store error that caused it.
func (e *ConflictError) Unwrap() []error {
	if e.Err == nil {
		return []error{domain.ErrConcurrencyConflict}
	}
	return []error{domain.ErrConcurrencyConflict, e.Err}
}

// Conflict messages shown to callers.
const (
	MsgAccountConflict  = "The account was modified by another transaction. Please try again."
	MsgTransferConflict = "One of the accounts was modified by another transaction. Please try again."
	MsgStatusConflict   = "The account was modified by another user. Please refresh and try again."
)
