package model

import "time"

// Storage ceilings per tier, in bytes.
const (
	StandardStorageCeiling int64 = 16_000_000
	PremiumStorageCeiling  int64 = 128_000_000
)

// Ceiling returns the storage ceiling for the given tier.
func Ceiling(premium bool) int64 {
	if premium {
		return PremiumStorageCeiling
	}
	return StandardStorageCeiling
}

// Account represents a row of the `accounts` table.
//
// Fields:
//  ID           – primary key identifier, assigned on insert.
//  Username     – unique login name.
//  PasswordHash – bcrypt hash of the password; never leaves the server.
//  Premium      – tier flag (false = standard).
//  StorageUsed  – bytes currently charged to the account.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Account struct {
	ID           uint64    // accounts.id
	Username     string    // accounts.username
	PasswordHash string    // accounts.password_hash
	Premium      bool      // accounts.premium
	StorageUsed  int64     // accounts.storage_used
	CreatedAt    time.Time // accounts.created_at
	UpdatedAt    time.Time // accounts.updated_at
}

// Public returns the projection of the account that is safe to hand to a
// session or a client.
func (a Account) Public() PublicAccount {
	return PublicAccount{
		ID:          a.ID,
		Username:    a.Username,
		Premium:     a.Premium,
		StorageUsed: a.StorageUsed,
	}
}

// PublicAccount is an Account without its password hash.
type PublicAccount struct {
	ID          uint64 `json:"id"`
	Username    string `json:"username"`
	Premium     bool   `json:"premium"`
	StorageUsed int64  `json:"storageUsed"`
}

// AccountSummary is the entry returned when listing accounts.
type AccountSummary struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// Usage is the quota view of an account.
type Usage struct {
	Premium     bool  `json:"premium"`
	StorageUsed int64 `json:"storageUsed"`
}

// Ceiling returns the storage ceiling for the usage's tier.
func (u Usage) Ceiling() int64 { return Ceiling(u.Premium) }
