package middleware

// identity.go holds the context accessors shared by handlers and the other
// middleware.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/maker-accounts/internal/session"
)

const sessionKey = "session"

// CurrentSession returns the session stored by RequireSession.
func CurrentSession(c echo.Context) (session.Session, bool) {
	s, ok := c.Get(sessionKey).(session.Session)
	return s, ok
}

// SetSession replaces the session seen by later handlers in the chain.
func SetSession(c echo.Context, s session.Session) { c.Set(sessionKey, s) }

// accountID returns the authenticated account id as a string, or "guest".
func accountID(c echo.Context) string {
	s, ok := CurrentSession(c)
	if !ok {
		return "guest"
	}
	return strconv.FormatUint(s.Account.ID, 10)
}
