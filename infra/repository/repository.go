package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirasaad/bankcore/pkg/audit"
	"github.com/amirasaad/bankcore/pkg/domain"
	"github.com/amirasaad/bankcore/pkg/domain/account"
	"github.com/amirasaad/bankcore/pkg/dto"
	"github.com/amirasaad/bankcore/pkg/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository returns an account repository over db.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, acct *account.Account) error {
	err := WrapError(func() error {
		return r.db.WithContext(ctx).Create(accountToModel(acct)).Error
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return &account.DuplicateError{AccountNumber: acct.AccountNumber}
	}
	return err
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	var m Account
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, account.NewNotFoundError(id.String())
		}
		return nil, MapGormErrorToDomain(err)
	}
	return accountFromModel(&m), nil
}

func (r *accountRepository) GetByNumber(ctx context.Context, accountNumber string) (*account.Account, error) {
	var m Account
	if err := r.db.WithContext(ctx).Where("account_number = ?", accountNumber).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, account.NewNotFoundError(accountNumber)
		}
		return nil, MapGormErrorToDomain(err)
	}
	return accountFromModel(&m), nil
}

func (r *accountRepository) ExistsByNumber(ctx context.Context, accountNumber string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Account{}).Where("account_number = ?", accountNumber).Count(&n).Error
	if err != nil {
		return false, MapGormErrorToDomain(err)
	}
	return n > 0, nil
}

// Update writes the mutable columns only if the stored version still
// matches acct.Version, then bumps acct.Version.
func (r *accountRepository) Update(ctx context.Context, acct *account.Account) error {
	res := r.db.WithContext(ctx).
		Model(&Account{}).
		Where("id = ? AND version = ?", acct.ID, acct.Version).
		Updates(map[string]any{
			"balance":    acct.Balance,
			"status":     string(acct.Status),
			"updated_at": acct.UpdatedAt,
			"updated_by": acct.UpdatedBy,
			"version":    gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("account %s version %d: %w", acct.AccountNumber, acct.Version, domain.ErrConcurrencyConflict)
	}
	acct.Version++
	return nil
}

func (r *accountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*account.Account, error) {
	var rows []Account
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return accountsFromModels(rows), nil
}

func (r *accountRepository) List(ctx context.Context) ([]*account.Account, error) {
	var rows []Account
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	return accountsFromModels(rows), nil
}

func accountsFromModels(rows []Account) []*account.Account {
	result := make([]*account.Account, 0, len(rows))
	for i := range rows {
		result = append(result, accountFromModel(&rows[i]))
	}
	return result
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository returns a ledger entry repository over db.
func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *account.Transaction) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(transactionToModel(tx)).Error
	})
}

func (r *transactionRepository) GetByReference(ctx context.Context, reference string) (*account.Transaction, error) {
	var m Transaction
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &account.NotFoundError{Entity: "transaction", Key: reference}
		}
		return nil, MapGormErrorToDomain(err)
	}
	return transactionFromModel(&m), nil
}

func withFilter(q *gorm.DB, filter dto.TransactionFilter) *gorm.DB {
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}
	return q
}

func (r *transactionRepository) ListByAccountNumber(ctx context.Context, accountNumber string, filter dto.TransactionFilter) ([]*account.Transaction, error) {
	q := r.db.WithContext(ctx).Where("account_number = ?", accountNumber)
	return r.find(withFilter(q, filter))
}

func (r *transactionRepository) List(ctx context.Context, filter dto.TransactionFilter) ([]*account.Transaction, error) {
	return r.find(withFilter(r.db.WithContext(ctx), filter))
}

func (r *transactionRepository) find(q *gorm.DB) ([]*account.Transaction, error) {
	var rows []Transaction
	if err := q.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	result := make([]*account.Transaction, 0, len(rows))
	for i := range rows {
		result = append(result, transactionFromModel(&rows[i]))
	}
	return result, nil
}

type typeTotalRow struct {
	Type  string
	Total decimal.Decimal
	Count int64
}

func (r *transactionRepository) SumByType(ctx context.Context, accountNumber string, filter dto.TransactionFilter) ([]repository.TypeTotal, error) {
	var rows []typeTotalRow
	q := r.db.WithContext(ctx).
		Model(&Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Where("account_number = ?", accountNumber)
	if err := withFilter(q, filter).Group("type").Order("type").Scan(&rows).Error; err != nil {
		return nil, MapGormErrorToDomain(err)
	}
	totals := make([]repository.TypeTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, repository.TypeTotal{
			Type:  account.TransactionType(row.Type),
			Total: row.Total,
			Count: row.Count,
		})
	}
	return totals, nil
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository returns an audit log repository over db.
func NewAuditRepository(db *gorm.DB) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *audit.Entry) error {
	return WrapError(func() error {
		return r.db.WithContext(ctx).Create(auditToModel(entry)).Error
	})
}
