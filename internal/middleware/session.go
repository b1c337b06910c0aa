package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/maker-accounts/internal/session"
)

// SessionCookie names the cookie that carries the session token.
const SessionCookie = "maker_session"

// SessionResolver turns a token into a live session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (session.Session, error)
}

// RequireSession rejects requests without a live session with 401 and stores
// the resolved session in the context for CurrentSession.
func RequireSession(resolver SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := Token(c)
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			s, err := resolver.Resolve(c.Request().Context(), raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
			}
			c.Set(sessionKey, s)
			return next(c)
		}
	}
}

// Token returns the session token from the cookie, falling back to a Bearer
// Authorization header. It returns "" when neither is present.
func Token(c echo.Context) string {
	if ck, err := c.Cookie(SessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
