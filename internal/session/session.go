// Package session binds authenticated accounts to server-side session
// records. A client holds a signed token naming the record; ending the
// session deletes the record, which invalidates the token immediately.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/maker-accounts/internal/model"
)

// ErrNoSession is returned when a token does not resolve to a live session.
var ErrNoSession = errors.New("no session")

// Session is the server-side record of an authenticated interaction. It
// carries only the public projection of the account.
type Session struct {
	ID        string              `json:"id"`
	Account   model.PublicAccount `json:"account"`
	CreatedAt time.Time           `json:"created_at"`
	ExpiresAt time.Time           `json:"expires_at"`
}

// Store persists session records. Delete and DeleteAll must not fail for
// records that are already gone.
type Store interface {
	Save(ctx context.Context, s Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, accountID uint64, id string) error
	DeleteAll(ctx context.Context, accountID uint64) error
}
