package utils // package utils provides helpers for password hashing and session tokens

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or
// claim checks.
var ErrInvalidToken = errors.New("invalid session token")

// SessionToken is a signed HS256 JWT that points at a server-side session
// record. The token alone grants nothing; the record must still exist.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// SessionClaims are the claims carried by a session token: the account ID as
// subject and the session ID under "sid".
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// AccountID parses the subject claim back into an account ID.
func (c SessionClaims) AccountID() (uint64, error) {
	return strconv.ParseUint(c.Subject, 10, 64)
}

// NewSessionToken signs a token for accountID and sessionID that expires
// at exp.
func NewSessionToken(secret string, accountID uint64, sessionID string, exp time.Time) (SessionToken, error) {
	now := time.Now().UTC()
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(accountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp.UTC()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp.UTC()}, nil
}

// ParseSessionToken verifies raw with secret and returns its claims. Tokens
// signed with anything other than HMAC are rejected.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
	var claims SessionClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return SessionClaims{}, ErrInvalidToken
	}
	if claims.SessionID == "" {
		return SessionClaims{}, ErrInvalidToken
	}
	if _, err := claims.AccountID(); err != nil {
		return SessionClaims{}, ErrInvalidToken
	}
	return claims, nil
}
