package domain

import (
	"errors"
	"net/http"
)

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized is returned when a user is not authorized to perform an action
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInactive is returned when an active-only operation targets an account that is not active
	ErrInactive = errors.New("account is not active")
	// ErrInsufficientFunds is returned when a debit exceeds the available balance
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidOperation is returned for semantically invalid requests such as a same-account transfer
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrConcurrencyConflict is returned when an optimistic version check fails at commit
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)

// IsRetryable reports whether the caller may reload state and retry the operation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// StatusCode maps a domain error to the HTTP status the web layer responds with.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConcurrencyConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrInactive),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrInvalidOperation),
		errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
