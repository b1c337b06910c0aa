package database

import (
	"context"
	"database/sql"
)

// accountsTable is the only table the service owns. storage_used is signed so
// GREATEST(storage_used - ?, 0) never underflows.
const accountsTable = `CREATE TABLE IF NOT EXISTS accounts (
  id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
  username      VARCHAR(64)     NOT NULL,
  password_hash VARCHAR(255)    NOT NULL,
  premium       TINYINT(1)      NOT NULL DEFAULT 0,
  storage_used  BIGINT          NOT NULL DEFAULT 0,
  created_at    DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at    DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (id),
  UNIQUE KEY uq_accounts_username (username),
  CONSTRAINT chk_accounts_storage CHECK (storage_used >= 0)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// EnsureSchema creates the accounts table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, accountsTable)
	return err
}
