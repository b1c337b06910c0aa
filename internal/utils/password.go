package utils

import (
	"crypto/rand"
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrEmptyPassword is returned when hashing an empty password.
	ErrEmptyPassword = errors.New("password cannot be empty")
	// ErrPasswordTooLong is returned for passwords bcrypt cannot take in full.
	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// BcryptHasher hashes and verifies passwords with bcrypt at a fixed cost.
type BcryptHasher struct {
	Cost int

	dummyOnce sync.Once
	dummy     []byte
}

// NewBcryptHasher returns a hasher using cost, falling back to
// bcrypt.DefaultCost when cost is outside bcrypt's range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{Cost: cost}
}

// Hash returns a salted bcrypt hash of plain.
func (h *BcryptHasher) Hash(plain string) (string, error) {
	return HashPassword(plain, h.Cost)
}

// Verify reports whether plain produced hash.
func (h *BcryptHasher) Verify(hash, plain string) bool {
	return VerifyPassword(hash, plain)
}

// VerifyDummy runs a full bcrypt comparison against a hash of random bytes at
// the hasher's cost and always reports false. Callers use it when no stored
// hash exists so the rejection takes as long as a wrong password.
func (h *BcryptHasher) VerifyDummy(plain string) bool {
	h.dummyOnce.Do(func() {
		secret := make([]byte, 32)
		_, _ = rand.Read(secret)
		h.dummy, _ = bcrypt.GenerateFromPassword(secret, h.Cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plain))
	return false
}

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	if len(plain) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain produced hash. bcrypt ignores input
// past MaxPasswordBytes, so longer inputs never match; they still pay for a
// comparison.
func VerifyPassword(hash, plain string) bool {
	if len(plain) > MaxPasswordBytes {
		_ = bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain[:MaxPasswordBytes]))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
