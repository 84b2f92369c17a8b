package repository

import (
	"time"

	"github.com/amirasaad/bankcore/pkg/audit"
	"github.com/amirasaad/bankcore/pkg/domain/account"
	"github.com/amirasaad/bankcore/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account is the accounts table row.
type Account struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	AccountNumber string          `gorm:"type:varchar(20);uniqueIndex;not null"`
	UserID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	AccountType   string          `gorm:"type:varchar(32);not null"`
	Balance       decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Status        string          `gorm:"type:varchar(16);not null"`
	Currency      string          `gorm:"type:varchar(3);not null"`
	Version       int64           `gorm:"not null"`
	CreatedAt     time.Time
	CreatedBy     uuid.UUID `gorm:"type:uuid"`
	UpdatedAt     time.Time
	UpdatedBy     uuid.UUID      `gorm:"type:uuid"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for the Account model.
func (Account) TableName() string {
	return "accounts"
}

// Transaction is the transactions table row. Rows are never updated.
type Transaction struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Reference            string          `gorm:"type:varchar(64);uniqueIndex;not null"`
	AccountID            uuid.UUID       `gorm:"type:uuid;index;not null"`
	AccountNumber        string          `gorm:"type:varchar(20);index:idx_transactions_account_created,priority:1;not null"`
	Type                 string          `gorm:"type:varchar(16);not null"`
	Amount               decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	BalanceBefore        decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	BalanceAfter         decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Description          string          `gorm:"type:varchar(500)"`
	Status               string          `gorm:"type:varchar(16);not null"`
	RelatedAccountID     *uuid.UUID      `gorm:"type:uuid"`
	RelatedAccountNumber string          `gorm:"type:varchar(20)"`
	CreatedAt            time.Time       `gorm:"index:idx_transactions_account_created,priority:2"`
	CreatedBy            uuid.UUID       `gorm:"type:uuid"`
}

// TableName specifies the table name for the Transaction model.
func (Transaction) TableName() string {
	return "transactions"
}

// AuditLog is the audit_logs table row.
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Action     string    `gorm:"type:varchar(64);not null"`
	EntityType string    `gorm:"type:varchar(64);not null"`
	EntityID   string    `gorm:"type:varchar(64);index;not null"`
	OldValue   *string
	NewValue   *string
	ActorID    uuid.UUID `gorm:"type:uuid"`
	CreatedAt  time.Time
}

// TableName specifies the table name for the AuditLog model.
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Models lists every table for AutoMigrate.
func Models() []any {
	return []any{&Account{}, &Transaction{}, &AuditLog{}}
}

func accountToModel(a *account.Account) *Account {
	return &Account{
		ID:            a.ID,
		AccountNumber: a.AccountNumber,
		UserID:        a.UserID,
		AccountType:   string(a.Type),
		Balance:       a.Balance,
		Status:        string(a.Status),
		Currency:      string(a.Currency),
		Version:       a.Version,
		CreatedAt:     a.CreatedAt,
		CreatedBy:     a.CreatedBy,
		UpdatedAt:     a.UpdatedAt,
		UpdatedBy:     a.UpdatedBy,
	}
}

func accountFromModel(m *Account) *account.Account {
	return &account.Account{
		ID:            m.ID,
		AccountNumber: m.AccountNumber,
		UserID:        m.UserID,
		Type:          account.Type(m.AccountType),
		Balance:       money.Round(m.Balance),
		Status:        account.Status(m.Status),
		Currency:      money.Code(m.Currency),
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
		UpdatedAt:     m.UpdatedAt,
		UpdatedBy:     m.UpdatedBy,
		Version:       m.Version,
	}
}

func transactionToModel(t *account.Transaction) *Transaction {
	return &Transaction{
		ID:                   t.ID,
		Reference:            t.Reference,
		AccountID:            t.AccountID,
		AccountNumber:        t.AccountNumber,
		Type:                 string(t.Type),
		Amount:               t.Amount,
		BalanceBefore:        t.BalanceBefore,
		BalanceAfter:         t.BalanceAfter,
		Description:          t.Description,
		Status:               string(t.Status),
		RelatedAccountID:     t.RelatedAccountID,
		RelatedAccountNumber: t.RelatedAccountNumber,
		CreatedAt:            t.CreatedAt,
		CreatedBy:            t.CreatedBy,
	}
}

func transactionFromModel(m *Transaction) *account.Transaction {
	return &account.Transaction{
		ID:                   m.ID,
		Reference:            m.Reference,
		AccountID:            m.AccountID,
		AccountNumber:        m.AccountNumber,
		Type:                 account.TransactionType(m.Type),
		Amount:               money.Round(m.Amount),
		BalanceBefore:        money.Round(m.BalanceBefore),
		BalanceAfter:         money.Round(m.BalanceAfter),
		Description:          m.Description,
		Status:               account.TransactionStatus(m.Status),
		RelatedAccountID:     m.RelatedAccountID,
		RelatedAccountNumber: m.RelatedAccountNumber,
		CreatedAt:            m.CreatedAt,
		CreatedBy:            m.CreatedBy,
	}
}

func auditToModel(e *audit.Entry) *AuditLog {
	return &AuditLog{
		ID:         e.ID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		OldValue:   e.OldValue,
		NewValue:   e.NewValue,
		ActorID:    e.ActorID,
		CreatedAt:  e.CreatedAt,
	}
}
