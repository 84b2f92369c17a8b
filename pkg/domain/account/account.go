package account

import (
	"errors"
	"time"

	"github.com/amirasaad/bankcore/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is a customer account holding a balance.
// It is the aggregate root for balance changes.
//
// Invariants:
//   - AccountNumber never changes after creation.
//   - Balance is never negative after an engine-mediated operation.
//   - Version is bumped by the store on every persisted mutation.
type Account struct {
	ID            uuid.UUID
	AccountNumber string
	UserID        uuid.UUID
	Type          Type
	Balance       decimal.Decimal
	Status        Status
	Currency      money.Code
	CreatedAt     time.Time
	CreatedBy     uuid.UUID
	UpdatedAt     time.Time
	UpdatedBy     uuid.UUID
	Version       int64
}

// Builder provides a fluent API for constructing Account instances.
type Builder struct {
	id            uuid.UUID
	accountNumber string
	userID        uuid.UUID
	accountType   Type
	balance       decimal.Decimal
	status        Status
	currency      money.Code
	createdBy     uuid.UUID
	createdAt     time.Time
	version       int64
}

// New creates a new Builder with defaults: a fresh ID, Checking, Active, USD.
func New() *Builder {
	return &Builder{
		id:          uuid.New(),
		accountType: TypeChecking,
		status:      StatusActive,
		currency:    money.DefaultCurrency,
		createdAt:   time.Now().UTC(),
		balance:     decimal.Zero,
	}
}

// WithID sets the ID for the account being built.
func (b *Builder) WithID(id uuid.UUID) *Builder {
	b.id = id
	return b
}

// WithAccountNumber sets the account number. Mandatory.
func (b *Builder) WithAccountNumber(n string) *Builder {
	b.accountNumber = n
	return b
}

// WithUserID sets the owner. Mandatory.
func (b *Builder) WithUserID(userID uuid.UUID) *Builder {
	b.userID = userID
	return b
}

// WithType sets the account type.
func (b *Builder) WithType(t Type) *Builder {
	b.accountType = t
	return b
}

// WithCurrency sets the currency; an empty code keeps the default.
func (b *Builder) WithCurrency(code money.Code) *Builder {
	if code != "" {
		b.currency = code
	}
	return b
}

// WithBalance sets the balance. Used for the initial deposit and for hydration.
func (b *Builder) WithBalance(balance decimal.Decimal) *Builder {
	b.balance = balance
	return b
}

// WithStatus sets the status. Used for hydration.
func (b *Builder) WithStatus(s Status) *Builder {
	b.status = s
	return b
}

// WithCreatedBy stamps the creating actor.
func (b *Builder) WithCreatedBy(actor uuid.UUID) *Builder {
	b.createdBy = actor
	return b
}

// WithCreatedAt sets the creation timestamp.
func (b *Builder) WithCreatedAt(t time.Time) *Builder {
	b.createdAt = t
	return b
}

// WithVersion sets the version token. Used for hydration.
func (b *Builder) WithVersion(v int64) *Builder {
	b.version = v
	return b
}

// Build validates the collected fields and returns the Account.
func (b *Builder) Build() (*Account, error) {
	if b.userID == uuid.Nil {
		return nil, errors.New("userID is required")
	}
	if b.accountNumber == "" {
		return nil, errors.New("account number is required")
	}
	if !b.accountType.IsValid() {
		return nil, ErrInvalidType
	}
	if !b.status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if !b.currency.IsValid() {
		return nil, money.ErrInvalidCurrency
	}
	if b.balance.IsNegative() {
		return nil, ErrNegativeInitialDeposit
	}
	if !money.HasValidScale(b.balance) {
		return nil, ErrAmountPrecision
	}
	return &Account{
		ID:            b.id,
		AccountNumber: b.accountNumber,
		UserID:        b.userID,
		Type:          b.accountType,
		Balance:       money.Round(b.balance),
		Status:        b.status,
		Currency:      b.currency,
		CreatedAt:     b.createdAt,
		CreatedBy:     b.createdBy,
		UpdatedAt:     b.createdAt,
		UpdatedBy:     b.createdBy,
		Version:       b.version,
	}, nil
}

// IsActive reports whether active-only operations are allowed.
func (a *Account) IsActive() bool {
	return a.Status == StatusActive
}

// CheckOwner fails with ErrNotOwner unless userID owns the account.
func (a *Account) CheckOwner(userID uuid.UUID) error {
	if a.UserID != userID {
		return ErrNotOwner
	}
	return nil
}

// CheckActive fails with an InactiveError unless the account is Active.
func (a *Account) CheckActive() error {
	if !a.IsActive() {
		return &InactiveError{AccountNumber: a.AccountNumber, Status: a.Status}
	}
	return nil
}

// ValidateDeposit checks ownership, status and amount, in that order.
func (a *Account) ValidateDeposit(userID uuid.UUID, amount decimal.Decimal) error {
	if err := a.CheckOwner(userID); err != nil {
		return err
	}
	if err := a.CheckActive(); err != nil {
		return err
	}
	if err := CheckAmount(amount); err != nil {
		return err
	}
	return nil
}

// ValidateWithdraw is ValidateDeposit plus a sufficient-funds check.
func (a *Account) ValidateWithdraw(userID uuid.UUID, amount decimal.Decimal) error {
	if err := a.ValidateDeposit(userID, amount); err != nil {
		return err
	}
	return a.checkFunds(amount)
}

// ValidateTransfer checks a transfer from a to dest on behalf of userID.
// Ownership is checked on the source only.
func (a *Account) ValidateTransfer(userID uuid.UUID, dest *Account, amount decimal.Decimal) error {
	if dest == nil {
		return ErrNilAccount
	}
	if a.AccountNumber == dest.AccountNumber || a.ID == dest.ID {
		return ErrCannotTransferToSameAccount
	}
	if err := a.CheckOwner(userID); err != nil {
		return err
	}
	if err := a.CheckActive(); err != nil {
		return err
	}
	if err := dest.CheckActive(); err != nil {
		return err
	}
	if err := CheckAmount(amount); err != nil {
		return err
	}
	return a.checkFunds(amount)
}

// CheckAmount fails unless amount is positive with at most money.Scale fractional digits.
func CheckAmount(amount decimal.Decimal) error {
	if !money.IsPositive(amount) {
		return ErrNonPositiveAmount
	}
	if !money.HasValidScale(amount) {
		return ErrAmountPrecision
	}
	return nil
}

func (a *Account) checkFunds(amount decimal.Decimal) error {
	if a.Balance.LessThan(amount) {
		return &InsufficientFundsError{
			AccountNumber: a.AccountNumber,
			Balance:       a.Balance,
			Requested:     amount,
		}
	}
	return nil
}

// Credit adds amount to the balance and stamps the actor.
// It returns the balance before and after the change.
func (a *Account) Credit(amount decimal.Decimal, actor uuid.UUID, at time.Time) (before, after decimal.Decimal) {
	before = a.Balance
	a.Balance = money.Add(a.Balance, amount)
	a.touch(actor, at)
	return before, a.Balance
}

// Debit subtracts amount from the balance and stamps the actor.
// It refuses to take the balance below zero.
func (a *Account) Debit(amount decimal.Decimal, actor uuid.UUID, at time.Time) (before, after decimal.Decimal, err error) {
	if err = a.checkFunds(amount); err != nil {
		return a.Balance, a.Balance, err
	}
	before = a.Balance
	a.Balance, err = money.Sub(a.Balance, amount)
	if err != nil {
		return before, before, err
	}
	a.touch(actor, at)
	return before, a.Balance, nil
}

// SetStatus changes the status and stamps the actor. It returns the previous status.
func (a *Account) SetStatus(s Status, actor uuid.UUID, at time.Time) (Status, error) {
	if !s.IsValid() {
		return a.Status, ErrInvalidStatus
	}
	old := a.Status
	a.Status = s
	a.touch(actor, at)
	return old, nil
}

func (a *Account) touch(actor uuid.UUID, at time.Time) {
	a.UpdatedAt = at
	a.UpdatedBy = actor
}

// Clone returns a copy that can be mutated without affecting a.
func (a *Account) Clone() *Account {
	c := *a
	return &c
}
