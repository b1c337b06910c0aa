package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/maker-accounts/internal/model"
)

func newRepoWithMock(t *testing.T) (*AccountRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewAccountRepo(db), mock
}

var accountCols = []string{"id", "username", "password_hash", "premium", "storage_used", "created_at", "updated_at"}

const (
	selectByID       = `SELECT id,username,password_hash,premium,storage_used,created_at,updated_at FROM accounts WHERE id=\?`
	selectByUsername = `SELECT id,username,password_hash,premium,storage_used,created_at,updated_at FROM accounts WHERE username=\?`
	selectUsage      = `SELECT premium, storage_used FROM accounts WHERE id=\?`
)

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectExec(`INSERT INTO accounts \(username, password_hash, premium, storage_used\)`).
		WithArgs("alice", "hash").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery(selectByID).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow(7, "alice", "hash", false, int64(0), now, now))

	a, err := repo.Create(context.Background(), "  alice ", "hash")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), a.ID)
	assert.Equal(t, "alice", a.Username)
	assert.False(t, a.Premium)
	assert.Zero(t, a.StorageUsed)
}

func TestCreate_DuplicateUsername(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT INTO accounts`).
		WithArgs("alice", "hash").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice'"})

	_, err := repo.Create(context.Background(), "alice", "hash")
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT INTO accounts`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), "alice", "hash")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUsernameExists)
}

func TestGetByUsername_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectByUsername).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetByUsername_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(selectByUsername).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows(accountCols).AddRow(3, "bob", "h", true, int64(1200), now, now))

	a, err := repo.GetByUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, model.Account{ID: 3, Username: "bob", PasswordHash: "h", Premium: true, StorageUsed: 1200, CreatedAt: now, UpdatedAt: now}, a)
}

func TestUpdatePasswordHash_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE accounts SET password_hash=\?`).
		WithArgs("new", uint64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.UpdatePasswordHash(context.Background(), 9, "new"), ErrNotFound)
}

func TestSetPremium(t *testing.T) {
	t.Run("changed", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(`UPDATE accounts SET premium=\?`).
			WithArgs(true, uint64(1), true).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SetPremium(context.Background(), 1, true))
	})

	t.Run("already set", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(`UPDATE accounts SET premium=\?`).
			WithArgs(true, uint64(1), true).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(selectUsage).
			WithArgs(uint64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"premium", "storage_used"}).AddRow(true, int64(0)))

		assert.ErrorIs(t, repo.SetPremium(context.Background(), 1, true), ErrNoChange)
	})

	t.Run("missing account", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(`UPDATE accounts SET premium=\?`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(selectUsage).WillReturnError(sql.ErrNoRows)

		assert.ErrorIs(t, repo.SetPremium(context.Background(), 1, false), ErrNotFound)
	})
}

func TestList(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT id, username FROM accounts ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(1, "alice").AddRow(2, "bob"))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.AccountSummary{{ID: 1, Username: "alice"}, {ID: 2, Username: "bob"}}, got)
}

func TestList_Empty(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT id, username FROM accounts`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM accounts WHERE id=\?`).WithArgs(uint64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM accounts WHERE id=\?`).WithArgs(uint64(4)).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), 4))
	assert.ErrorIs(t, repo.Delete(context.Background(), 4), ErrNotFound)
}

func TestIncreaseUsage_Admitted(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE accounts SET storage_used = storage_used \+ \?`).
		WithArgs(int64(500), uint64(2), int64(500), model.PremiumStorageCeiling, model.StandardStorageCeiling).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectUsage).
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"premium", "storage_used"}).AddRow(true, int64(127_999_500)))

	u, err := repo.IncreaseUsage(context.Background(), 2, 500)
	require.NoError(t, err)
	assert.Equal(t, model.Usage{Premium: true, StorageUsed: 127_999_500}, u)
}

func TestIncreaseUsage_LimitReached(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE accounts SET storage_used = storage_used \+ \?`).
		WithArgs(int64(2), uint64(2), int64(2), model.PremiumStorageCeiling, model.StandardStorageCeiling).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(selectUsage).
		WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"premium", "storage_used"}).AddRow(false, int64(15_999_999)))

	u, err := repo.IncreaseUsage(context.Background(), 2, 2)
	assert.ErrorIs(t, err, ErrLimitReached)
	assert.Equal(t, int64(15_999_999), u.StorageUsed)
}

func TestIncreaseUsage_MissingAccount(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE accounts SET storage_used`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(selectUsage).WillReturnError(sql.ErrNoRows)

	_, err := repo.IncreaseUsage(context.Background(), 2, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecreaseUsage_ClampsAtZero(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`GREATEST\(storage_used - \?, 0\)`).
		WithArgs(int64(900), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectUsage).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"premium", "storage_used"}).AddRow(false, int64(0)))

	u, err := repo.DecreaseUsage(context.Background(), 5, 900)
	require.NoError(t, err)
	assert.Zero(t, u.StorageUsed)
}

func TestDecreaseUsage_MissingAccount(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`GREATEST`).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.DecreaseUsage(context.Background(), 5, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}
