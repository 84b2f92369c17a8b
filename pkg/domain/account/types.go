package account

// Type is the product type of an account.
type Type string

// Account types.
const (
	TypeSavings          Type = "Savings"
	TypeChecking         Type = "Checking"
	TypeBusinessChecking Type = "BusinessChecking"
	TypeMoneyMarket      Type = "MoneyMarket"
)

// IsValid reports whether t is a known account type.
func (t Type) IsValid() bool {
	switch t {
	case TypeSavings, TypeChecking, TypeBusinessChecking, TypeMoneyMarket:
		return true
	}
	return false
}

// Status is the lifecycle status of an account.
type Status string

// Account statuses.
const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
	StatusFrozen   Status = "Frozen"
	StatusClosed   Status = "Closed"
)

// IsValid reports whether s is a known account status.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusFrozen, StatusClosed:
		return true
	}
	return false
}

// TransactionType classifies a ledger entry.
type TransactionType string

// Transaction types.
const (
	TransactionDeposit     TransactionType = "Deposit"
	TransactionWithdrawal  TransactionType = "Withdrawal"
	TransactionTransfer    TransactionType = "Transfer"
	TransactionTransferIn  TransactionType = "TransferIn"
	TransactionTransferOut TransactionType = "TransferOut"
)

// Sign is +1 for entries that credit the account and -1 for entries that debit it.
func (t TransactionType) Sign() int {
	switch t {
	case TransactionDeposit, TransactionTransferIn:
		return 1
	default:
		return -1
	}
}

// TransactionStatus is the processing status of a ledger entry.
type TransactionStatus string

// Transaction statuses.
const (
	TransactionPending   TransactionStatus = "Pending"
	TransactionCompleted TransactionStatus = "Completed"
	TransactionFailed    TransactionStatus = "Failed"
	TransactionReversed  TransactionStatus = "Reversed"
)
