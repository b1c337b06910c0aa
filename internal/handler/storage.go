package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/maker-accounts/internal/logging"
	"github.com/iliyamo/maker-accounts/internal/middleware"
	"github.com/iliyamo/maker-accounts/internal/model"
	"github.com/iliyamo/maker-accounts/internal/service"
)

const msgSizeRequired = "Size must be a whole number of bytes!"

// StorageHandler exposes the quota ledger of the logged-in account.
type StorageHandler struct {
	Ledger *service.QuotaLedger
	Log    logging.Logger
}

func NewStorageHandler(ledger *service.QuotaLedger, log logging.Logger) *StorageHandler {
	return &StorageHandler{Ledger: ledger, Log: log}
}

type sizeReq struct {
	Size byteSize `json:"size" form:"size"`
}

// GetUsage returns the caller's tier and bytes used.
func (h *StorageHandler) GetUsage(c echo.Context) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgUnauthorized})
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	u, err := h.Ledger.Usage(ctx, sess.Account.ID)
	if err != nil {
		return fail(c, h.Log, err, msgUsageFailed)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

// IncreaseUsage charges size bytes before an upload.
func (h *StorageHandler) IncreaseUsage(c echo.Context) error {
	return h.adjust(c, h.Ledger.Increase)
}

// DecreaseUsage releases size bytes after a file is deleted.
func (h *StorageHandler) DecreaseUsage(c echo.Context) error {
	return h.adjust(c, h.Ledger.Decrease)
}

func (h *StorageHandler) adjust(c echo.Context, op func(ctx context.Context, accountID uint64, size int64) (model.Usage, error)) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msgUnauthorized})
	}
	var req sizeReq
	if err := c.Bind(&req); err != nil || !req.Size.Set {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msgSizeRequired})
	}

	ctx, cancel := withTimeout(c)
	defer cancel()

	if _, err := op(ctx, sess.Account.ID, req.Size.Bytes); err != nil {
		return fail(c, h.Log, err, msgUsageUpdateFailed)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Storage updated"})
}
