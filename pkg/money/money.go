// Package money provides helpers for fixed-point monetary amounts.
//
// Amounts are shopspring decimals rounded to Scale fractional digits.
// Arithmetic never goes through float64.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept for every amount.
const Scale int32 = 2

// Zero is the zero amount.
var Zero = decimal.Zero

// Parse converts a textual amount like "100.50" into a decimal.
// More than Scale fractional digits is rejected rather than rounded.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !HasValidScale(d) {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrTooManyDecimals, s)
	}
	return Round(d), nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FromInt returns a whole amount.
func FromInt(units int64) decimal.Decimal {
	return decimal.NewFromInt(units)
}

// Round rounds half away from zero to Scale digits.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// HasValidScale reports whether d has at most Scale fractional digits.
func HasValidScale(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(Scale))
}

// IsPositive reports whether d is strictly greater than zero.
func IsPositive(d decimal.Decimal) bool {
	return d.Sign() > 0
}

// Format renders d with exactly Scale fractional digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}

// FormatWithCode renders d followed by the currency code, e.g. "100.00 USD".
func FormatWithCode(d decimal.Decimal, code Code) string {
	return Format(d) + " " + code.String()
}

// Sub subtracts b from a and fails instead of producing a negative result.
func Sub(a, b decimal.Decimal) (decimal.Decimal, error) {
	r := a.Sub(b)
	if r.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	return Round(r), nil
}

// Add returns a + b rounded to Scale.
func Add(a, b decimal.Decimal) decimal.Decimal {
	return Round(a.Add(b))
}
