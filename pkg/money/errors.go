package money

import "errors"

// Common money package errors
var (
	// ErrInvalidAmount is returned when an amount cannot be parsed as a decimal.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidCurrency is returned for codes that are not three upper-case letters.
	ErrInvalidCurrency = errors.New("invalid currency code")

	// ErrNegativeAmount is returned when an operation would result in a negative amount
	ErrNegativeAmount = errors.New("resulting amount cannot be negative")

	// ErrTooManyDecimals is returned when an amount has more fractional digits than allowed.
	ErrTooManyDecimals = errors.New("amount has more than 2 decimal places")
)
