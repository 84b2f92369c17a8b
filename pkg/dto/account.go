package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRead is a read-optimized DTO for account queries and cache entries.
// Balance is rendered with exactly two fractional digits.
type AccountRead struct {
	ID            uuid.UUID `json:"id"`
	AccountNumber string    `json:"account_number"`
	UserID        uuid.UUID `json:"user_id"`
	AccountType   string    `json:"account_type"`
	Balance       string    `json:"balance"`
	Status        string    `json:"status"`
	Currency      string    `json:"currency"`
	CreatedAt     time.Time `json:"created_at"`
}

// AccountCreate is the command for opening a new account.
type AccountCreate struct {
	UserID         uuid.UUID       `validate:"required"`
	AccountType    string          `validate:"required,oneof=Savings Checking BusinessChecking MoneyMarket"`
	Currency       string          `validate:"omitempty,len=3,uppercase"`
	InitialDeposit decimal.Decimal `validate:"gte=0"`
	ActorID        uuid.UUID       `validate:"required"`
}
