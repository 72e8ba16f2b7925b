package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ayaznasser/vehicle-registry/internal/repository"
)

// WalletHandler exposes the caller's wallet balance. Wallets are
// created alongside the account and mutated only by the escrow flow.
type WalletHandler struct {
	Wallets *repository.WalletRepo
}

func NewWalletHandler(w *repository.WalletRepo) *WalletHandler {
	return &WalletHandler{Wallets: w}
}

// Get returns the caller's wallet.
func (h *WalletHandler) Get(c echo.Context) error {
	actor := actorID(c)
	if actor == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	w, err := h.Wallets.Get(ctx, actor)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "wallet not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load wallet failed"})
	}
	return c.JSON(http.StatusOK, w)
}
