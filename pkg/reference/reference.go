// Package reference generates account numbers and transaction references.
package reference

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// AccountNumberLength is the fixed length of a generated account number.
	AccountNumberLength = 10
	// DefaultPrefix starts every transaction reference unless configured otherwise.
	DefaultPrefix = "TXN"

	timestampLayout = "20060102150405"
	suffixLength    = 8
)

// Generator produces account numbers and transaction references.
// It is safe for concurrent use.
type Generator struct {
	prefix string
	clock  func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithPrefix overrides the transaction reference prefix.
func WithPrefix(prefix string) Option {
	return func(g *Generator) {
		if prefix != "" {
			g.prefix = prefix
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(g *Generator) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// New returns a Generator using the wall clock and DefaultPrefix.
func New(opts ...Option) *Generator {
	g := &Generator{prefix: DefaultPrefix, clock: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AccountNumber returns a fresh 10 character upper-case hex account number.
// Uniqueness is probabilistic; callers still check for collisions.
func (g *Generator) AccountNumber() string {
	return randomHex()[:AccountNumberLength]
}

// TransactionReference returns prefix + UTC timestamp to the second + 8 random hex chars.
// References sort by creation second.
func (g *Generator) TransactionReference() string {
	var b strings.Builder
	b.Grow(len(g.prefix) + len(timestampLayout) + suffixLength)
	b.WriteString(g.prefix)
	b.WriteString(g.clock().UTC().Format(timestampLayout))
	b.WriteString(randomHex()[:suffixLength])
	return b.String()
}

// IsAccountNumber reports whether s has the shape of a generated account number.
func IsAccountNumber(s string) bool {
	if len(s) != AccountNumberLength {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'A' || r > 'F') {
			return false
		}
	}
	return true
}

func randomHex() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// Now returns the generator clock in UTC. Services stamp entities with it so
// timestamps and references agree.
func (g *Generator) Now() time.Time {
	return g.clock().UTC()
}
