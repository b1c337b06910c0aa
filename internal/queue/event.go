// Package queue defines message payloads exchanged with the upload backend
// over the message broker, and the consumer for the messages it sends us.
package queue

// Queue names. Both are declared durable.
const (
	AccountDeletedQueue  = "account.deleted"
	StorageReleasedQueue = "storage.released"
)

// AccountDeletedEvent is published after an account is removed so the
// upload backend can purge the files it holds for that account.
type AccountDeletedEvent struct {
	AccountID   uint64 `json:"account_id"`
	Username    string `json:"username"`
	StorageUsed int64  `json:"storage_used"`
	DeletedAt   string `json:"deleted_at"`
}

// StorageReleasedEvent is sent by the upload backend when it frees bytes on
// its own (expiry, admin purge). The consumer credits them back to the
// account's quota.
type StorageReleasedEvent struct {
	AccountID  uint64 `json:"account_id"`
	Size       int64  `json:"size"`
	ReleasedAt string `json:"released_at"`
}
