// Package transaction is the money-movement engine: deposits, withdrawals and
// transfers with optimistic concurrency, plus ledger reads.
//
// Preconditions are checked against a snapshot read outside any unit. The
// writes then run in one atomic unit whose account updates are version
// checked, so a concurrent change between the read and the commit surfaces as
// an account.ConflictError and nothing is written. The engine never retries.
package transaction

import (
	"log/slog"

	"github.com/amirasaad/bankcore/pkg/config"
	"github.com/amirasaad/bankcore/pkg/service"
)

// Audit actions.
const (
	ActionDeposit  = "Deposit"
	ActionWithdraw = "Withdraw"
	ActionTransfer = "Transfer"

	entityTransaction = "Transaction"
)

// Service provides the transaction engine operations.
type Service struct {
	*service.Base
	logger *slog.Logger
}

// NewService creates a new Service with the provided dependencies.
func NewService(deps config.Deps) *Service {
	base := service.NewBase(deps)
	return &Service{
		Base:   base,
		logger: base.Logger.With("service", "transaction"),
	}
}
