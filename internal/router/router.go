// Package router registers the HTTP routes of the service.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/maker-accounts/internal/handler"
	"github.com/iliyamo/maker-accounts/internal/middleware"
)

// RegisterRoutes registers routes that need no session. Currently it exposes
// only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers login, signup and logout under /v1/auth. None of
// them requires an existing session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	g.POST("/signup", a.Signup)
	g.POST("/logout", a.Logout)
}

// RegisterAccount registers the endpoints of a logged-in account. Every route
// passes through RequireSession; the account list is additionally served
// through the response cache.
func RegisterAccount(e *echo.Echo, resolver middleware.SessionResolver, a *handler.AccountHandler, s *handler.StorageHandler) {
	auth := e.Group("/v1", middleware.RequireSession(resolver))

	auth.GET("/accounts", a.ListAccounts, a.Cache.Middleware())

	acct := auth.Group("/account")
	acct.POST("/password", a.ChangePassword)
	acct.POST("/premium", a.SetPremium)
	acct.DELETE("", a.DeleteAccount)

	acct.GET("/storage", s.GetUsage)
	acct.POST("/storage/increase", s.IncreaseUsage)
	acct.POST("/storage/decrease", s.DecreaseUsage)
}
