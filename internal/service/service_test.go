package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/maker-accounts/internal/logging"
	"github.com/iliyamo/maker-accounts/internal/model"
	"github.com/iliyamo/maker-accounts/internal/queue"
	"github.com/iliyamo/maker-accounts/internal/repository"
	"github.com/iliyamo/maker-accounts/internal/session"
	"github.com/iliyamo/maker-accounts/internal/utils"
)

var errBackend = errors.New("backend down")

// failingStore fails every call with errBackend.
type failingStore struct{ *repository.MemoryAccountRepo }

func (failingStore) GetByUsername(context.Context, string) (model.Account, error) {
	return model.Account{}, errBackend
}

func (failingStore) Create(context.Context, string, string) (model.Account, error) {
	return model.Account{}, errBackend
}

func (failingStore) List(context.Context) ([]model.AccountSummary, error) { return nil, errBackend }

func (failingStore) GetUsage(context.Context, uint64) (model.Usage, error) {
	return model.Usage{}, errBackend
}

func (failingStore) IncreaseUsage(context.Context, uint64, int64) (model.Usage, error) {
	return model.Usage{}, errBackend
}

func (failingStore) DecreaseUsage(context.Context, uint64, int64) (model.Usage, error) {
	return model.Usage{}, errBackend
}

type recordingPublisher struct {
	deleted []queue.AccountDeletedEvent
	err     error
}

func (p *recordingPublisher) PublishAccountDeleted(_ context.Context, ev queue.AccountDeletedEvent) error {
	p.deleted = append(p.deleted, ev)
	return p.err
}

type fixture struct {
	store     *repository.MemoryAccountRepo
	hasher    *utils.BcryptHasher
	sessions  *session.Manager
	publisher *recordingPublisher
	auth      *Authenticator
	accounts  *AccountService
	ledger    *QuotaLedger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     repository.NewMemoryAccountRepo(),
		hasher:    utils.NewBcryptHasher(bcrypt.MinCost),
		sessions:  session.NewManager(session.NewMemoryStore(), "svc-test", time.Hour),
		publisher: &recordingPublisher{},
	}
	f.auth = NewAuthenticator(f.store, f.hasher)
	f.accounts = NewAccountService(f.store, f.hasher, f.sessions, f.publisher, logging.Nop())
	f.ledger = NewQuotaLedger(f.store)
	return f
}

func (f *fixture) signup(t *testing.T, username, password string) model.PublicAccount {
	t.Helper()
	acct, err := f.auth.Signup(context.Background(), username, password, password)
	require.NoError(t, err)
	return acct
}
