package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupThenAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	acct := f.signup(t, "alice", "s3cret-pass")
	assert.Equal(t, "alice", acct.Username)
	assert.False(t, acct.Premium)
	assert.Zero(t, acct.StorageUsed)

	got, err := f.auth.Authenticate(ctx, "alice", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, acct, got)

	_, err = f.auth.Authenticate(ctx, "alice", "s3cret-pasS")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignup_StoresHashNotPlaintext(t *testing.T) {
	f := newFixture(t)

	acct := f.signup(t, "alice", "s3cret-pass")

	stored, err := f.store.GetByID(context.Background(), acct.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", stored.PasswordHash)
	assert.True(t, f.hasher.Verify(stored.PasswordHash, "s3cret-pass"))
}

func TestAuthenticate_UnknownUserLooksLikeWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "alice", "s3cret-pass")

	_, errUnknown := f.auth.Authenticate(context.Background(), "mallory", "s3cret-pass")
	_, errWrong := f.auth.Authenticate(context.Background(), "alice", "nope")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestAuthenticate_LongerThanStoredPasswordFails(t *testing.T) {
	f := newFixture(t)
	pw := strings.Repeat("p", 72)
	f.signup(t, "alice", pw)

	_, err := f.auth.Authenticate(context.Background(), "alice", pw+"anything-else")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Authenticate(context.Background(), "alice", pw)
	assert.NoError(t, err)
}

func TestAuthenticate_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Authenticate(context.Background(), "  ", "pw")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.auth.Authenticate(context.Background(), "alice", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAuthenticate_StoreFailure(t *testing.T) {
	f := newFixture(t)
	auth := NewAuthenticator(failingStore{f.store}, f.hasher)

	_, err := auth.Authenticate(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.ErrorIs(t, err, errBackend)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignup_Validation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name, user, pass, confirm, msg string
	}{
		{"missing username", "", "pw", "pw", msgAllFieldsRequired},
		{"missing password", "bob", "", "pw", msgAllFieldsRequired},
		{"missing confirm", "bob", "pw", "", msgAllFieldsRequired},
		{"mismatch", "bob", "pw1", "pw2", msgPasswordMismatch},
		{"long username", strings.Repeat("u", MaxUsernameLength+1), "pw", "pw", msgUsernameTooLong},
		{"long password", "bob", strings.Repeat("p", 73), strings.Repeat("p", 73), msgPasswordTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Signup(context.Background(), tt.user, tt.pass, tt.confirm)
			assert.ErrorIs(t, err, ErrValidation)
			assert.EqualError(t, err, tt.msg)
		})
	}

	list, err := f.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSignup_DuplicateUsername(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signup(t, "alice", "first-pass")

	_, err := f.auth.Signup(ctx, "alice", "second-pass", "second-pass")
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	list, err := f.store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.auth.Authenticate(ctx, "alice", "first-pass")
	assert.NoError(t, err)
}

func TestSignup_StoreFailure(t *testing.T) {
	f := newFixture(t)
	auth := NewAuthenticator(failingStore{f.store}, f.hasher)

	_, err := auth.Signup(context.Background(), "alice", "pw", "pw")
	assert.ErrorIs(t, err, ErrStoreFailure)
}
