package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/maker-accounts/internal/model"
)

// mysqlDuplicateEntry is the MySQL error number for a unique key violation.
const mysqlDuplicateEntry = 1062

const accountColumns = "id,username,password_hash,premium,storage_used,created_at,updated_at"

// AccountRepo persists accounts in the MySQL `accounts` table.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

// Create inserts an account with the given password hash and returns it.
// New accounts start on the standard tier with no storage used.
func (r *AccountRepo) Create(ctx context.Context, username, passwordHash string) (model.Account, error) {
	username = strings.TrimSpace(username)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (username, password_hash, premium, storage_used) VALUES (?,?,0,0)",
		username, passwordHash)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return model.Account{}, ErrUsernameExists
		}
		return model.Account{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Account{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByUsername fetches an account by its trimmed username.
func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (model.Account, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE username=? LIMIT 1",
		strings.TrimSpace(username))
	return scanAccount(row)
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (model.Account, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id=? LIMIT 1", id)
	return scanAccount(row)
}

func scanAccount(row *sql.Row) (model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Premium, &a.StorageUsed, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, ErrNotFound
	}
	return a, err
}

// UpdatePasswordHash overwrites the stored hash.
func (r *AccountRepo) UpdatePasswordHash(ctx context.Context, id uint64, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET password_hash=?, updated_at=UTC_TIMESTAMP() WHERE id=?",
		passwordHash, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetPremium sets the tier flag. It returns ErrNoChange when the flag already
// holds the requested value and ErrNotFound when the account is gone.
func (r *AccountRepo) SetPremium(ctx context.Context, id uint64, premium bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET premium=?, updated_at=UTC_TIMESTAMP() WHERE id=? AND premium<>?",
		premium, id, premium)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := r.GetUsage(ctx, id); err != nil {
		return err
	}
	return ErrNoChange
}

// List returns the id and username of every account, oldest first.
func (r *AccountRepo) List(ctx context.Context) ([]model.AccountSummary, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, username FROM accounts ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.AccountSummary{}
	for rows.Next() {
		var s model.AccountSummary
		if err := rows.Scan(&s.ID, &s.Username); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes the account.
func (r *AccountRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM accounts WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// GetUsage reads the tier flag and the storage counter.
func (r *AccountRepo) GetUsage(ctx context.Context, id uint64) (model.Usage, error) {
	var u model.Usage
	err := r.DB.QueryRowContext(ctx,
		"SELECT premium, storage_used FROM accounts WHERE id=? LIMIT 1", id).
		Scan(&u.Premium, &u.StorageUsed)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Usage{}, ErrNotFound
	}
	return u, err
}

// IncreaseUsage adds size to the counter only if the result stays below the
// account's tier ceiling. The check and the write are one statement, so
// concurrent callers cannot both pass on a stale read. When the condition
// fails the current usage is returned together with ErrLimitReached.
func (r *AccountRepo) IncreaseUsage(ctx context.Context, id uint64, size int64) (model.Usage, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE accounts SET storage_used = storage_used + ?, updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND storage_used + ? < IF(premium, ?, ?)`,
		size, id, size, model.PremiumStorageCeiling, model.StandardStorageCeiling)
	if err != nil {
		return model.Usage{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Usage{}, err
	}
	u, err := r.GetUsage(ctx, id)
	if err != nil {
		return model.Usage{}, err
	}
	if n == 0 {
		return u, ErrLimitReached
	}
	return u, nil
}

// DecreaseUsage subtracts size from the counter, stopping at zero.
func (r *AccountRepo) DecreaseUsage(ctx context.Context, id uint64, size int64) (model.Usage, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE accounts SET storage_used = GREATEST(storage_used - ?, 0), updated_at = UTC_TIMESTAMP()
		 WHERE id = ?`,
		size, id)
	if err != nil {
		return model.Usage{}, err
	}
	if err := requireRow(res); err != nil {
		return model.Usage{}, err
	}
	return r.GetUsage(ctx, id)
}

// requireRow maps "no rows affected" to ErrNotFound. The DSN sets
// clientFoundRows, so matched rows count even when no column changed.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
