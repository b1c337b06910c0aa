package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/maker-accounts/internal/model"
	"github.com/iliyamo/maker-accounts/internal/repository"
	"github.com/iliyamo/maker-accounts/internal/utils"
)

// MaxUsernameLength matches the width of accounts.username.
const MaxUsernameLength = 64

const (
	msgAllFieldsRequired = "All fields are required!"
	msgPasswordMismatch  = "Passwords do not match!"
	msgPasswordTooLong   = "Password must be at most 72 bytes!"
	msgUsernameTooLong   = "Username must be at most 64 characters!"
)

// Authenticator verifies credentials and creates accounts.
type Authenticator struct {
	store  AccountStore
	hasher Hasher
}

func NewAuthenticator(store AccountStore, hasher Hasher) *Authenticator {
	return &Authenticator{store: store, hasher: hasher}
}

// Authenticate returns the public projection of the account matching
// username and plain. An unknown username and a wrong password both yield
// ErrInvalidCredentials, and both pay for one bcrypt comparison.
func (a *Authenticator) Authenticate(ctx context.Context, username, plain string) (model.PublicAccount, error) {
	username = strings.TrimSpace(username)
	if username == "" || plain == "" {
		return model.PublicAccount{}, invalid(msgAllFieldsRequired)
	}

	acct, err := a.store.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		a.hasher.VerifyDummy(plain)
		return model.PublicAccount{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.PublicAccount{}, storeFailure("get account by username", err)
	}
	if !a.hasher.Verify(acct.PasswordHash, plain) {
		return model.PublicAccount{}, ErrInvalidCredentials
	}
	return acct.Public(), nil
}

// Signup creates a standard-tier account with no storage used.
func (a *Authenticator) Signup(ctx context.Context, username, plain, confirm string) (model.PublicAccount, error) {
	username = strings.TrimSpace(username)
	if username == "" || plain == "" || confirm == "" {
		return model.PublicAccount{}, invalid(msgAllFieldsRequired)
	}
	if plain != confirm {
		return model.PublicAccount{}, invalid(msgPasswordMismatch)
	}
	if len(username) > MaxUsernameLength {
		return model.PublicAccount{}, invalid(msgUsernameTooLong)
	}
	if len(plain) > utils.MaxPasswordBytes {
		return model.PublicAccount{}, invalid(msgPasswordTooLong)
	}

	hash, err := a.hasher.Hash(plain)
	if err != nil {
		return model.PublicAccount{}, hashFailure(err)
	}
	acct, err := a.store.Create(ctx, username, hash)
	if errors.Is(err, repository.ErrUsernameExists) {
		return model.PublicAccount{}, ErrDuplicateUsername
	}
	if err != nil {
		return model.PublicAccount{}, storeFailure("create account", err, "username", username)
	}
	return acct.Public(), nil
}
