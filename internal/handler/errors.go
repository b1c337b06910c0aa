package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/maker-accounts/internal/logging"
	"github.com/iliyamo/maker-accounts/internal/service"
)

// requestTimeout bounds the store work done for a single request.
const requestTimeout = 5 * time.Second

const (
	msgGeneric           = "An error has occurred!"
	msgWrongCredentials  = "Wrong username or password!"
	msgUsernameTaken     = "Username already in use!"
	msgOldPasswordWrong  = "Old password is not correct!"
	msgInvalidBody       = "invalid body"
	msgUnauthorized      = "unauthorized"
	msgListFailed        = "Error retrieving accounts!"
	msgDeleteFailed      = "Error deleting account!"
	msgUsageFailed       = "Error retrieving used storage!"
	msgUsageUpdateFailed = "Error updating used storage total"
)

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// fail maps a service error to a JSON error response. Unexpected errors are
// logged and answered with internalMsg so backend details stay server-side.
func fail(c echo.Context, log logging.Logger, err error, internalMsg string) error {
	var (
		ve *service.ValidationError
		qe *service.QuotaExceededError
	)
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Msg})
	case errors.As(err, &qe):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": qe.Error()})
	case errors.Is(err, service.ErrDuplicateUsername):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgUsernameTaken})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgWrongCredentials})
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgUnauthorized})
	}
	log.Error(c.Request().Context(), internalMsg, "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": internalMsg})
}
