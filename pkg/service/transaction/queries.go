package transaction

import (
	"context"

	"github.com/amirasaad/bankcore/pkg/cache"
	"github.com/amirasaad/bankcore/pkg/domain/account"
	"github.com/amirasaad/bankcore/pkg/dto"
	"github.com/amirasaad/bankcore/pkg/mapper"
	"github.com/amirasaad/bankcore/pkg/money"
	"github.com/amirasaad/bankcore/pkg/service"
	"github.com/shopspring/decimal"
)

// GetAccountTransactions lists an account's entries, newest first.
//
// Without a date filter the result is served from the cache when present and
// cached for a minute otherwise. A filtered read always goes to the store.
// An unknown account yields an empty list.
func (s *Service) GetAccountTransactions(
	ctx context.Context,
	accountNumber string,
	filter dto.TransactionFilter,
) ([]*dto.TransactionRead, error) {
	logger := s.logger.With("account", accountNumber)

	load := func(ctx context.Context) ([]*dto.TransactionRead, error) {
		txs, err := s.Uow.TransactionRepository().ListByAccountNumber(ctx, accountNumber, filter)
		if err != nil {
			return nil, err
		}
		return mapper.TransactionsToRead(txs), nil
	}

	if !filter.IsZero() {
		txs, err := load(ctx)
		if err != nil {
			logger.Error("GetAccountTransactions failed", "error", err)
		}
		return txs, err
	}

	txs, err := service.CacheFirst(ctx, s.Base, cache.AccountTransactionsKey(accountNumber), cache.Short, load)
	if err != nil {
		logger.Error("GetAccountTransactions failed", "error", err)
		return nil, err
	}
	return txs, nil
}

// GetAllTransactions lists every entry in the store, newest first.
func (s *Service) GetAllTransactions(ctx context.Context, filter dto.TransactionFilter) ([]*dto.TransactionRead, error) {
	txs, err := s.Uow.TransactionRepository().List(ctx, filter)
	if err != nil {
		s.logger.Error("GetAllTransactions failed", "error", err)
		return nil, err
	}
	return mapper.TransactionsToRead(txs), nil
}

// GetTransaction returns one entry by reference. Entries never change, so
// they are cached with the long preset.
func (s *Service) GetTransaction(ctx context.Context, reference string) (*dto.TransactionRead, error) {
	return service.CacheFirst(ctx, s.Base, cache.TransactionKey(reference), cache.Long,
		func(ctx context.Context) (*dto.TransactionRead, error) {
			tx, err := s.Uow.TransactionRepository().GetByReference(ctx, reference)
			if err != nil {
				s.logger.Error("GetTransaction failed", "reference", reference, "error", err)
				return nil, err
			}
			return mapper.TransactionToRead(tx), nil
		})
}

// GetAccountSummary totals an account's entries per type over filter.
// NetChange is credits minus debits.
func (s *Service) GetAccountSummary(
	ctx context.Context,
	accountNumber string,
	filter dto.TransactionFilter,
) (*dto.TransactionSummary, error) {
	if _, err := s.Uow.AccountRepository().GetByNumber(ctx, accountNumber); err != nil {
		s.logger.Error("GetAccountSummary failed: account lookup", "account", accountNumber, "error", err)
		return nil, err
	}
	totals, err := s.Uow.TransactionRepository().SumByType(ctx, accountNumber, filter)
	if err != nil {
		s.logger.Error("GetAccountSummary failed", "account", accountNumber, "error", err)
		return nil, err
	}

	byType := make(map[account.TransactionType]decimal.Decimal, len(totals))
	net := decimal.Zero
	count := 0
	for _, t := range totals {
		byType[t.Type] = byType[t.Type].Add(t.Total)
		if t.Type.Sign() > 0 {
			net = net.Add(t.Total)
		} else {
			net = net.Sub(t.Total)
		}
		count += int(t.Count)
	}

	return &dto.TransactionSummary{
		AccountNumber:    accountNumber,
		TotalDeposits:    money.Format(byType[account.TransactionDeposit]),
		TotalWithdrawals: money.Format(byType[account.TransactionWithdrawal]),
		TotalTransferIn:  money.Format(byType[account.TransactionTransferIn]),
		TotalTransferOut: money.Format(byType[account.TransactionTransferOut].Add(byType[account.TransactionTransfer])),
		NetChange:        money.Format(net),
		Count:            count,
	}, nil
}
