package service

import (
	"errors"
	"fmt"

	"github.com/samber/oops"
)

// Error kinds surfaced to callers. Handlers map them to HTTP statuses with
// errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrDuplicateUsername  = errors.New("username already in use")
	ErrDuplicateValue     = errors.New("value already set")
	ErrQuotaExceeded      = errors.New("quota exceeded")
	ErrStoreFailure       = errors.New("store failure")
)

// ValidationError carries a client-facing message for rejected input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error { return &ValidationError{Msg: msg} }

// QuotaExceededError reports a refused increase. Premium accounts are already
// on the highest tier; standard accounts are pointed at the upgrade.
type QuotaExceededError struct {
	Premium     bool
	StorageUsed int64
	Size        int64
	Ceiling     int64
}

func (e *QuotaExceededError) Error() string {
	if e.Premium {
		return "Out of storage!"
	}
	return "Out of storage! Consider upgrading to premium!"
}

func (e *QuotaExceededError) Is(target error) bool { return target == ErrQuotaExceeded }

// storeFailure wraps an unexpected backend error with the operation that
// failed. The result matches ErrStoreFailure and the original error.
func storeFailure(op string, err error, kv ...any) error {
	return oops.
		In("accounts").
		Code("store_failure").
		With("op", op).
		With(kv...).
		Wrap(errors.Join(ErrStoreFailure, err))
}

// hashFailure wraps an unexpected error from the credential hasher.
func hashFailure(err error) error {
	return oops.In("accounts").Code("hash_failure").Wrap(fmt.Errorf("%w: %w", ErrStoreFailure, err))
}
