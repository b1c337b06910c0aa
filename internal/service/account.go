package service

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/maker-accounts/internal/logging"
	"github.com/iliyamo/maker-accounts/internal/model"
	"github.com/iliyamo/maker-accounts/internal/queue"
	"github.com/iliyamo/maker-accounts/internal/repository"
	"github.com/iliyamo/maker-accounts/internal/session"
	"github.com/iliyamo/maker-accounts/internal/utils"
)

// AccountService covers the account lifecycle after signup.
type AccountService struct {
	store    AccountStore
	hasher   Hasher
	sessions SessionEnder
	events   EventPublisher
	log      logging.Logger
}

func NewAccountService(store AccountStore, hasher Hasher, sessions SessionEnder, events EventPublisher, log logging.Logger) *AccountService {
	if events == nil {
		events = NopPublisher{}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &AccountService{store: store, hasher: hasher, sessions: sessions, events: events, log: log}
}

// ChangePassword replaces the password of accountID. The old password is
// checked against the hash currently stored, not against the session.
func (s *AccountService) ChangePassword(ctx context.Context, accountID uint64, old, new1, new2 string) (model.PublicAccount, error) {
	if old == "" || new1 == "" || new2 == "" {
		return model.PublicAccount{}, invalid(msgAllFieldsRequired)
	}
	if new1 != new2 {
		return model.PublicAccount{}, invalid(msgPasswordMismatch)
	}
	if len(new1) > utils.MaxPasswordBytes {
		return model.PublicAccount{}, invalid(msgPasswordTooLong)
	}

	acct, err := s.store.GetByID(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.PublicAccount{}, ErrUnauthorized
	}
	if err != nil {
		return model.PublicAccount{}, storeFailure("get account", err, "account_id", accountID)
	}
	if !s.hasher.Verify(acct.PasswordHash, old) {
		return model.PublicAccount{}, ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(new1)
	if err != nil {
		return model.PublicAccount{}, hashFailure(err)
	}
	err = s.store.UpdatePasswordHash(ctx, accountID, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return model.PublicAccount{}, ErrUnauthorized
	}
	if err != nil {
		return model.PublicAccount{}, storeFailure("update password", err, "account_id", accountID)
	}
	return acct.Public(), nil
}

// SetPremium moves accountID to the premium (true) or standard (false) tier
// and returns the updated projection. Setting the current value again is
// ErrDuplicateValue.
func (s *AccountService) SetPremium(ctx context.Context, accountID uint64, premium bool) (model.PublicAccount, error) {
	err := s.store.SetPremium(ctx, accountID, premium)
	switch {
	case errors.Is(err, repository.ErrNoChange):
		return model.PublicAccount{}, ErrDuplicateValue
	case errors.Is(err, repository.ErrNotFound):
		return model.PublicAccount{}, ErrUnauthorized
	case err != nil:
		return model.PublicAccount{}, storeFailure("set premium", err, "account_id", accountID)
	}

	acct, err := s.store.GetByID(ctx, accountID)
	if err != nil {
		return model.PublicAccount{}, storeFailure("get account", err, "account_id", accountID)
	}
	return acct.Public(), nil
}

// List returns the id and username of every account.
func (s *AccountService) List(ctx context.Context) ([]model.AccountSummary, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, storeFailure("list accounts", err)
	}
	return out, nil
}

// Delete removes the account behind sess and ends sess together with any
// other session of that account. Deleting an account that is already gone
// still ends the session. Once the record is gone, failures to end sessions
// are logged rather than returned.
func (s *AccountService) Delete(ctx context.Context, sess session.Session) error {
	id := sess.Account.ID
	acct, err := s.store.GetByID(ctx, id)
	gone := errors.Is(err, repository.ErrNotFound)
	if err != nil && !gone {
		return storeFailure("get account", err, "account_id", id)
	}
	if !gone {
		if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return storeFailure("delete account", err, "account_id", id)
		}
	}

	if err := s.sessions.End(ctx, sess); err != nil {
		s.log.Warn(ctx, "ending session failed", "account_id", id, "error", err)
	}
	if err := s.sessions.EndAll(ctx, id); err != nil {
		s.log.Warn(ctx, "ending remaining sessions failed", "account_id", id, "error", err)
	}
	if gone {
		return nil
	}

	ev := queue.AccountDeletedEvent{
		AccountID:   id,
		Username:    acct.Username,
		StorageUsed: acct.StorageUsed,
		DeletedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.events.PublishAccountDeleted(ctx, ev); err != nil {
		s.log.Warn(ctx, "publishing account.deleted failed", "account_id", id, "error", err)
	}
	s.log.Info(ctx, "account deleted", "account_id", id)
	return nil
}
