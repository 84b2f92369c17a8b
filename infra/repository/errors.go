package repository

import (
	"errors"

	"github.com/amirasaad/bankcore/pkg/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation is the Postgres SQLSTATE for a unique index collision.
const pgUniqueViolation = "23505"

// MapGormErrorToDomain converts GORM errors to domain errors.
// It walks the error chain so wrapped GORM errors are mapped too.
// Untranslated Postgres unique violations map to ErrAlreadyExists.
func MapGormErrorToDomain(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return domain.ErrAlreadyExists
	}

	currentErr := err
	for currentErr != nil {
		switch {
		case errors.Is(currentErr, gorm.ErrDuplicatedKey):
			return domain.ErrAlreadyExists
		case errors.Is(currentErr, gorm.ErrRecordNotFound):
			return domain.ErrNotFound
		}
		currentErr = errors.Unwrap(currentErr)
	}

	return err
}

// WrapError runs a GORM operation and maps its error.
//
// Usage:
//
//	err := WrapError(func() error {
//	    return r.db.WithContext(ctx).Create(entry).Error
//	})
func WrapError(op func() error) error {
	return MapGormErrorToDomain(op())
}
