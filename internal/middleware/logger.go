package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/maker-accounts/internal/logging"
)

// RequestLogger logs one line per request with the authenticated account id.
// Request bodies are never logged.
func RequestLogger(log logging.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURIPath:  true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"path", v.URIPath,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"account_id", accountID(c),
			}
			ctx := c.Request().Context()
			if v.Error != nil {
				log.Error(ctx, "request failed", append(args, "error", v.Error)...)
				return nil
			}
			log.Info(ctx, "request", args...)
			return nil
		},
	})
}

