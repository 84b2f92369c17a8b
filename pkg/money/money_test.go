package money_test

import (
	"testing"

	"github.com/amirasaad/bankcore/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  error
	}{
		{"whole", "100", "100.00", nil},
		{"cents", "100.50", "100.50", nil},
		{"one digit", "0.5", "0.50", nil},
		{"negative", "-3.25", "-3.25", nil},
		{"too many decimals", "1.005", "", money.ErrTooManyDecimals},
		{"not a number", "abc", "", money.ErrInvalidAmount},
		{"empty", "", "", money.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := money.Parse(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, money.Format(d))
		})
	}
}

func TestSub(t *testing.T) {
	r, err := money.Sub(money.MustParse("10.00"), money.MustParse("2.50"))
	require.NoError(t, err)
	assert.True(t, r.Equal(money.MustParse("7.50")))

	_, err = money.Sub(money.MustParse("1.00"), money.MustParse("1.01"))
	assert.ErrorIs(t, err, money.ErrNegativeAmount)

	r, err = money.Sub(money.MustParse("1.00"), money.MustParse("1.00"))
	require.NoError(t, err)
	assert.True(t, r.IsZero())
}

func TestAddKeepsScale(t *testing.T) {
	r := money.Add(money.MustParse("0.10"), money.MustParse("0.20"))
	assert.Equal(t, "0.30", money.Format(r))
}

func TestHasValidScale(t *testing.T) {
	assert.True(t, money.HasValidScale(decimal.RequireFromString("12.34")))
	assert.True(t, money.HasValidScale(decimal.RequireFromString("12")))
	assert.False(t, money.HasValidScale(decimal.RequireFromString("12.345")))
}

func TestIsPositive(t *testing.T) {
	assert.True(t, money.IsPositive(money.MustParse("0.01")))
	assert.False(t, money.IsPositive(money.Zero))
	assert.False(t, money.IsPositive(money.MustParse("-1")))
}

func TestCodeIsValid(t *testing.T) {
	assert.True(t, money.USD.IsValid())
	assert.True(t, money.Code("GEL").IsValid())
	assert.False(t, money.Code("usd").IsValid())
	assert.False(t, money.Code("US").IsValid())
	assert.False(t, money.Code("USDX").IsValid())
}

func TestFormatWithCode(t *testing.T) {
	assert.Equal(t, "1000.00 USD", money.FormatWithCode(money.FromInt(1000), money.USD))
}
