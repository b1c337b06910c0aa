package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/maker-accounts/internal/model"
	"github.com/iliyamo/maker-accounts/internal/utils"
)

// Handle is what a client receives when a session starts.
type Handle struct {
	Token     string
	ExpiresAt time.Time
	Session   Session
}

// Manager issues, resolves and ends sessions.
type Manager struct {
	store  Store
	secret string
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(store Store, secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{store: store, secret: secret, ttl: ttl, now: time.Now}
}

// Start records a new session for acct and returns its signed token.
func (m *Manager) Start(ctx context.Context, acct model.PublicAccount) (Handle, error) {
	now := m.now().UTC()
	s := Session{
		ID:        uuid.NewString(),
		Account:   acct,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	tok, err := utils.NewSessionToken(m.secret, acct.ID, s.ID, s.ExpiresAt)
	if err != nil {
		return Handle{}, err
	}
	if err := m.store.Save(ctx, s, m.ttl); err != nil {
		return Handle{}, err
	}
	return Handle{Token: tok.Token, ExpiresAt: tok.Exp, Session: s}, nil
}

// Resolve returns the live session named by token.
func (m *Manager) Resolve(ctx context.Context, token string) (Session, error) {
	claims, err := utils.ParseSessionToken(m.secret, token)
	if err != nil {
		return Session{}, ErrNoSession
	}
	accountID, _ := claims.AccountID()

	s, err := m.store.Get(ctx, claims.SessionID)
	if err != nil {
		return Session{}, err
	}
	if s.Account.ID != accountID || !m.now().Before(s.ExpiresAt) {
		return Session{}, ErrNoSession
	}
	return s, nil
}

// End invalidates s. Ending a session that is already gone is not an error.
func (m *Manager) End(ctx context.Context, s Session) error {
	return m.store.Delete(ctx, s.Account.ID, s.ID)
}

// EndToken ends the session named by token. Tokens that no longer verify
// name nothing to end and are ignored.
func (m *Manager) EndToken(ctx context.Context, token string) error {
	claims, err := utils.ParseSessionToken(m.secret, token)
	if err != nil {
		return nil
	}
	accountID, _ := claims.AccountID()
	return m.store.Delete(ctx, accountID, claims.SessionID)
}

// EndAll invalidates every session of the account.
func (m *Manager) EndAll(ctx context.Context, accountID uint64) error {
	return m.store.DeleteAll(ctx, accountID)
}

// Refresh replaces the account projection stored in s, keeping its expiry.
func (m *Manager) Refresh(ctx context.Context, s Session, acct model.PublicAccount) (Session, error) {
	if acct.ID != s.Account.ID {
		return Session{}, errors.New("session: refresh with a different account")
	}
	ttl := s.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return Session{}, ErrNoSession
	}
	s.Account = acct
	if err := m.store.Save(ctx, s, ttl); err != nil {
		return Session{}, err
	}
	return s, nil
}
