package service

import (
	"context"

	"github.com/iliyamo/maker-accounts/internal/model"
	"github.com/iliyamo/maker-accounts/internal/session"
)

// AccountStore is the durable record store behind the services. Lookups
// return repository.ErrNotFound for missing accounts, Create returns
// repository.ErrUsernameExists on conflict, SetPremium returns
// repository.ErrNoChange when the flag already has the value, and
// IncreaseUsage returns repository.ErrLimitReached (with the current usage)
// instead of writing past the tier ceiling.
type AccountStore interface {
	Create(ctx context.Context, username, passwordHash string) (model.Account, error)
	GetByUsername(ctx context.Context, username string) (model.Account, error)
	GetByID(ctx context.Context, id uint64) (model.Account, error)
	UpdatePasswordHash(ctx context.Context, id uint64, passwordHash string) error
	SetPremium(ctx context.Context, id uint64, premium bool) error
	List(ctx context.Context) ([]model.AccountSummary, error)
	Delete(ctx context.Context, id uint64) error
	UsageStore
}

// UsageStore is the part of the store the quota ledger needs.
type UsageStore interface {
	GetUsage(ctx context.Context, id uint64) (model.Usage, error)
	IncreaseUsage(ctx context.Context, id uint64, size int64) (model.Usage, error)
	DecreaseUsage(ctx context.Context, id uint64, size int64) (model.Usage, error)
}

// Hasher turns plaintext passwords into storable secrets and checks them.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
	VerifyDummy(plain string) bool
}

// SessionEnder ends sessions on behalf of account deletion.
type SessionEnder interface {
	End(ctx context.Context, s session.Session) error
	EndAll(ctx context.Context, accountID uint64) error
}
