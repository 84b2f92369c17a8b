package account

import (
	"context"

	"github.com/amirasaad/bankcore/pkg/cache"
	"github.com/amirasaad/bankcore/pkg/dto"
	"github.com/amirasaad/bankcore/pkg/mapper"
	"github.com/amirasaad/bankcore/pkg/service"
	"github.com/google/uuid"
)

// GetAccountByNumber returns one account, from the cache when possible.
func (s *Service) GetAccountByNumber(ctx context.Context, accountNumber string) (*dto.AccountRead, error) {
	return service.CacheFirst(ctx, s.Base, cache.AccountKey(accountNumber), cache.Default,
		func(ctx context.Context) (*dto.AccountRead, error) {
			acct, err := s.Uow.AccountRepository().GetByNumber(ctx, accountNumber)
			if err != nil {
				s.logger.Error("GetAccountByNumber failed", "account", accountNumber, "error", err)
				return nil, err
			}
			return mapper.AccountToRead(acct), nil
		})
}

// GetAccountByID reads one account from the store and primes its cache entry.
func (s *Service) GetAccountByID(ctx context.Context, id uuid.UUID) (*dto.AccountRead, error) {
	acct, err := s.Uow.AccountRepository().Get(ctx, id)
	if err != nil {
		s.logger.Error("GetAccountByID failed", "account_id", id, "error", err)
		return nil, err
	}
	read := mapper.AccountToRead(acct)
	s.CacheSet(ctx, cache.AccountKey(acct.AccountNumber), read, cache.Default)
	return read, nil
}

// GetUserAccounts lists the accounts owned by userID, newest first.
func (s *Service) GetUserAccounts(ctx context.Context, userID uuid.UUID) ([]*dto.AccountRead, error) {
	return service.CacheFirst(ctx, s.Base, cache.UserAccountsKey(userID.String()), cache.Default,
		func(ctx context.Context) ([]*dto.AccountRead, error) {
			accts, err := s.Uow.AccountRepository().ListByUser(ctx, userID)
			if err != nil {
				s.logger.Error("GetUserAccounts failed", "user", userID, "error", err)
				return nil, err
			}
			return mapper.AccountsToRead(accts), nil
		})
}

// GetAllAccounts lists every account. It is not cached.
func (s *Service) GetAllAccounts(ctx context.Context) ([]*dto.AccountRead, error) {
	accts, err := s.Uow.AccountRepository().List(ctx)
	if err != nil {
		s.logger.Error("GetAllAccounts failed", "error", err)
		return nil, err
	}
	return mapper.AccountsToRead(accts), nil
}
