// Package repository defines error types that are reused across the
// account stores. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when no account matches the lookup.
var ErrNotFound = errors.New("account not found")

// ErrUsernameExists is returned by Create when the username is taken.
var ErrUsernameExists = errors.New("username already exists")

// ErrNoChange is returned when an update would leave the record as it is,
// such as setting the premium flag to its current value.
var ErrNoChange = errors.New("value already set")

// ErrLimitReached is returned by IncreaseUsage when the increase would take
// the account to or past its tier ceiling. No write happens in that case.
var ErrLimitReached = errors.New("storage ceiling reached")
