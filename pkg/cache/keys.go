package cache

import (
	"fmt"
	"strings"
	"unicode"
)

// Key prefixes. Every key is prefix + identifier.
const (
	AccountPrefix             = "account_"
	UserAccountsPrefix        = "user_accounts_"
	AccountTransactionsPrefix = "account_transactions_"
	DashboardStatsPrefix      = "dashboard_stats_"
	TransactionPrefix         = "transaction_"

	maxKeyLength = 250
)

// AccountKey caches one account by number.
func AccountKey(accountNumber string) string { return AccountPrefix + accountNumber }

// UserAccountsKey caches the account list of one owner.
func UserAccountsKey(userID string) string { return UserAccountsPrefix + userID }

// AccountTransactionsKey caches the unfiltered ledger of one account.
func AccountTransactionsKey(accountNumber string) string {
	return AccountTransactionsPrefix + accountNumber
}

// DashboardStatsKey caches dashboard figures of one owner.
func DashboardStatsKey(userID string) string { return DashboardStatsPrefix + userID }

// TransactionKey caches a single ledger entry by reference.
func TransactionKey(reference string) string { return TransactionPrefix + reference }

// ValidateKey checks that key is non-empty, at most 250 bytes and free of
// whitespace and control characters.
func ValidateKey(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if len(key) > maxKeyLength {
		return fmt.Errorf("%w: key too long (max %d characters)", ErrInvalidKey, maxKeyLength)
	}
	for _, r := range key {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return fmt.Errorf("%w: key contains whitespace or control character", ErrInvalidKey)
		}
	}
	return nil
}

// PatternPrefix turns a RemoveByPattern argument into the prefix it matches.
func PatternPrefix(pattern string) string {
	return strings.TrimRight(pattern, "*")
}
