package service

import (
	"context"
	"errors"

	"github.com/iliyamo/maker-accounts/internal/model"
	"github.com/iliyamo/maker-accounts/internal/repository"
)

const msgInvalidSize = "Size must be a non-negative number of bytes!"

// QuotaLedger tracks the bytes charged to each account against its tier
// ceiling. It only counts; the bytes live in the upload backend.
type QuotaLedger struct {
	store UsageStore
}

func NewQuotaLedger(store UsageStore) *QuotaLedger {
	return &QuotaLedger{store: store}
}

// Usage returns the tier flag and the bytes used.
func (l *QuotaLedger) Usage(ctx context.Context, accountID uint64) (model.Usage, error) {
	u, err := l.store.GetUsage(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Usage{}, ErrUnauthorized
	}
	if err != nil {
		return model.Usage{}, storeFailure("get usage", err, "account_id", accountID)
	}
	return u, nil
}

// Increase charges size bytes to the account. It is refused with a
// *QuotaExceededError, and nothing is written, when usage plus size would
// reach the tier ceiling.
func (l *QuotaLedger) Increase(ctx context.Context, accountID uint64, size int64) (model.Usage, error) {
	if size < 0 {
		return model.Usage{}, invalid(msgInvalidSize)
	}
	if size >= model.PremiumStorageCeiling {
		u, err := l.Usage(ctx, accountID)
		if err != nil {
			return model.Usage{}, err
		}
		return u, exceeded(u, size)
	}
	u, err := l.store.IncreaseUsage(ctx, accountID, size)
	switch {
	case errors.Is(err, repository.ErrLimitReached):
		return u, exceeded(u, size)
	case errors.Is(err, repository.ErrNotFound):
		return model.Usage{}, ErrUnauthorized
	case err != nil:
		return model.Usage{}, storeFailure("increase usage", err, "account_id", accountID, "size", size)
	}
	return u, nil
}

// Decrease releases size bytes from the account. Usage never drops below
// zero.
func (l *QuotaLedger) Decrease(ctx context.Context, accountID uint64, size int64) (model.Usage, error) {
	if size < 0 {
		return model.Usage{}, invalid(msgInvalidSize)
	}
	u, err := l.store.DecreaseUsage(ctx, accountID, size)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Usage{}, ErrUnauthorized
	}
	if err != nil {
		return model.Usage{}, storeFailure("decrease usage", err, "account_id", accountID, "size", size)
	}
	return u, nil
}

func exceeded(u model.Usage, size int64) *QuotaExceededError {
	return &QuotaExceededError{
		Premium:     u.Premium,
		StorageUsed: u.StorageUsed,
		Size:        size,
		Ceiling:     u.Ceiling(),
	}
}
