package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/maker-accounts/internal/logging"
	"github.com/iliyamo/maker-accounts/internal/middleware"
	"github.com/iliyamo/maker-accounts/internal/service"
	"github.com/iliyamo/maker-accounts/internal/session"
)

// AuthHandler bundles dependencies for the login, signup and logout
// endpoints.
type AuthHandler struct {
	Auth         *service.Authenticator
	Sessions     *session.Manager
	Cache        *middleware.ResponseCache
	CookieSecure bool
	Log          logging.Logger
}

func NewAuthHandler(auth *service.Authenticator, sessions *session.Manager, cache *middleware.ResponseCache, cookieSecure bool, log logging.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Sessions: sessions, Cache: cache, CookieSecure: cookieSecure, Log: log}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username" form:"username"`
	Pass     string `json:"pass" form:"pass"`
}

type signupReq struct {
	Username string `json:"username" form:"username"`
	Pass     string `json:"pass" form:"pass"`
	Pass2    string `json:"pass2" form:"pass2"`
}

// Login verifies credentials and starts a session.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidBody})
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	acct, err := h.Auth.Authenticate(ctx, req.Username, req.Pass)
	if err != nil {
		return fail(c, h.Log, err, msgGeneric)
	}
	hd, err := h.Sessions.Start(ctx, acct)
	if err != nil {
		return fail(c, h.Log, err, msgGeneric)
	}
	h.setCookie(c, hd)
	return c.JSON(http.StatusOK, echo.Map{"redirect": "/maker"})
}

// Signup creates an account and logs it in.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidBody})
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	acct, err := h.Auth.Signup(ctx, req.Username, req.Pass, req.Pass2)
	if err != nil {
		return fail(c, h.Log, err, msgGeneric)
	}
	if err := h.Cache.Invalidate(ctx); err != nil {
		h.Log.Warn(ctx, "invalidating account list cache failed", "error", err)
	}
	h.Log.Info(ctx, "account created", "account_id", acct.ID)

	hd, err := h.Sessions.Start(ctx, acct)
	if err != nil {
		return fail(c, h.Log, err, msgGeneric)
	}
	h.setCookie(c, hd)
	return c.JSON(http.StatusOK, echo.Map{"redirect": "/maker"})
}

// Logout ends the caller's session, if any, and clears the cookie. It
// always succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	if raw := middleware.Token(c); raw != "" {
		if err := h.Sessions.EndToken(ctx, raw); err != nil {
			h.Log.Warn(ctx, "ending session failed", "error", err)
		}
	}
	clearCookie(c, h.CookieSecure)
	return c.JSON(http.StatusOK, echo.Map{"redirect": "/"})
}

func (h *AuthHandler) setCookie(c echo.Context, hd session.Handle) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    hd.Token,
		Path:     "/",
		Expires:  hd.ExpiresAt,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
