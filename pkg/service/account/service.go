// Package account manages the account lifecycle: opening accounts with an
// optional initial deposit, status changes, and account reads.
package account

import (
	"log/slog"

	"github.com/amirasaad/bankcore/pkg/config"
	"github.com/amirasaad/bankcore/pkg/service"
)

// Audit actions.
const (
	ActionCreateAccount       = "CreateAccount"
	ActionUpdateAccountStatus = "UpdateAccountStatus"

	entityAccount = "Account"

	initialDepositDescription = "Initial deposit"
)

// Service provides account lifecycle operations.
type Service struct {
	*service.Base
	logger *slog.Logger
}

// NewService creates a new Service with the provided dependencies.
func NewService(deps config.Deps) *Service {
	base := service.NewBase(deps)
	return &Service{
		Base:   base,
		logger: base.Logger.With("service", "account"),
	}
}
