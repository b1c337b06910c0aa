package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/maker-accounts/internal/logging"
	"github.com/iliyamo/maker-accounts/internal/middleware"
	"github.com/iliyamo/maker-accounts/internal/model"
	"github.com/iliyamo/maker-accounts/internal/service"
	"github.com/iliyamo/maker-accounts/internal/session"
)

const msgPremiumRequired = "enablePremium must be true or false!"

// AccountHandler serves the endpoints of a logged-in account.
type AccountHandler struct {
	Accounts     *service.AccountService
	Sessions     *session.Manager
	Cache        *middleware.ResponseCache
	CookieSecure bool
	Log          logging.Logger
}

func NewAccountHandler(accounts *service.AccountService, sessions *session.Manager, cache *middleware.ResponseCache, cookieSecure bool, log logging.Logger) *AccountHandler {
	return &AccountHandler{Accounts: accounts, Sessions: sessions, Cache: cache, CookieSecure: cookieSecure, Log: log}
}

type passwordReq struct {
	PasswordOld  string `json:"passwordOld" form:"passwordOld"`
	PasswordNew1 string `json:"passwordNew1" form:"passwordNew1"`
	PasswordNew2 string `json:"passwordNew2" form:"passwordNew2"`
}

type premiumReq struct {
	EnablePremium tierFlag `json:"enablePremium" form:"enablePremium"`
}

// ChangePassword replaces the caller's password after checking the old one.
// Existing sessions stay valid.
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgUnauthorized})
	}
	var req passwordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgInvalidBody})
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	_, err := h.Accounts.ChangePassword(ctx, sess.Account.ID, req.PasswordOld, req.PasswordNew1, req.PasswordNew2)
	if errors.Is(err, service.ErrInvalidCredentials) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgOldPasswordWrong})
	}
	if err != nil {
		return fail(c, h.Log, err, msgGeneric)
	}
	return c.JSON(http.StatusCreated, echo.Map{"redirect": "/account", "message": "Password Change Successful"})
}

// SetPremium moves the caller to the premium or standard tier and refreshes
// the session's copy of the account.
func (h *AccountHandler) SetPremium(c echo.Context) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgUnauthorized})
	}
	var req premiumReq
	if err := c.Bind(&req); err != nil || !req.EnablePremium.Set {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgPremiumRequired})
	}
	premium := req.EnablePremium.Value

	ctx, cancel := withTimeout(c)
	defer cancel()

	acct, err := h.Accounts.SetPremium(ctx, sess.Account.ID, premium)
	if errors.Is(err, service.ErrDuplicateValue) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": fmt.Sprintf("Premium status already set to %t!", premium)})
	}
	if err != nil {
		return fail(c, h.Log, err, msgGeneric)
	}

	if refreshed, err := h.Sessions.Refresh(ctx, sess, acct); err != nil {
		h.Log.Warn(ctx, "refreshing session after tier change failed", "account_id", acct.ID, "error", err)
	} else {
		middleware.SetSession(c, refreshed)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Premium status toggled"})
}

// ListAccounts returns the id and username of every account.
func (h *AccountHandler) ListAccounts(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	users, err := h.Accounts.List(ctx)
	if err != nil {
		return fail(c, h.Log, err, msgListFailed)
	}
	return c.JSON(http.StatusOK, struct {
		Users []model.AccountSummary `json:"users"`
	}{users})
}

// DeleteAccount removes the caller's account and logs it out.
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgUnauthorized})
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Accounts.Delete(ctx, sess); err != nil {
		return fail(c, h.Log, err, msgDeleteFailed)
	}
	if err := h.Cache.Invalidate(ctx); err != nil {
		h.Log.Warn(ctx, "invalidating account list cache failed", "error", err)
	}
	clearCookie(c, h.CookieSecure)
	return c.JSON(http.StatusOK, echo.Map{"redirect": "/"})
}
