package reference_test

import (
	"strings"
	"testing"
	"time"

	"github.com/amirasaad/bankcore/pkg/reference"
	"github.com/stretchr/testify/assert"
)

func TestAccountNumber(t *testing.T) {
	g := reference.New()
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		n := g.AccountNumber()
		assert.Len(t, n, reference.AccountNumberLength)
		assert.True(t, reference.IsAccountNumber(n), n)
		assert.Equal(t, strings.ToUpper(n), n)
		seen[n] = struct{}{}
	}
	assert.Len(t, seen, 1000)
}

func TestTransactionReference(t *testing.T) {
	fixed := time.Date(2024, 3, 9, 17, 4, 5, 0, time.FixedZone("GET", 4*3600))
	g := reference.New(reference.WithClock(func() time.Time { return fixed }))

	ref := g.TransactionReference()
	assert.Len(t, ref, len("TXN")+14+8)
	assert.True(t, strings.HasPrefix(ref, "TXN20240309130405"), "timestamp is rendered in UTC: %s", ref)

	custom := reference.New(reference.WithPrefix("TBS"), reference.WithClock(func() time.Time { return fixed }))
	assert.True(t, strings.HasPrefix(custom.TransactionReference(), "TBS20240309130405"))
}

func TestTransactionReferenceSortsByTime(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	g := reference.New(reference.WithClock(func() time.Time { return now }))
	first := g.TransactionReference()
	now = now.Add(time.Second)
	second := g.TransactionReference()
	assert.Less(t, first, second)
}

func TestIsAccountNumber(t *testing.T) {
	assert.True(t, reference.IsAccountNumber("0123456789"))
	assert.True(t, reference.IsAccountNumber("ABCDEF0123"))
	assert.False(t, reference.IsAccountNumber("abcdef0123"))
	assert.False(t, reference.IsAccountNumber("ABCDEFG123"))
	assert.False(t, reference.IsAccountNumber("ABC"))
}

func TestNowIsUTC(t *testing.T) {
	fixed := time.Date(2024, 3, 9, 17, 4, 5, 0, time.FixedZone("GET", 4*3600))
	g := reference.New(reference.WithClock(func() time.Time { return fixed }))
	assert.Equal(t, time.UTC, g.Now().Location())
	assert.True(t, g.Now().Equal(fixed))
}
