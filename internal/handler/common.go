// Package handler wires HTTP requests to repositories and the registry
// policy. Handlers own the request transaction: multi-record mutations
// run inside a single *sql.Tx with row locks, committed only after
// every policy check and write succeeded.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ayaznasser/vehicle-registry/internal/registry"
	"github.com/ayaznasser/vehicle-registry/internal/repository"
)

// Role claim values carried in access tokens. The government claim is
// granted only to the account configured as the government identity.
const (
	ClaimRoleGovernment = "GOVERNMENT"
	ClaimRoleUser       = "USER"
)

// actorID extracts the authenticated account ID stored in the context
// by the JWT middleware. JWT numeric claims decode as float64; string
// subjects are parsed for tokens minted by other issuers.
func actorID(c echo.Context) uint64 {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v)
	case uint64:
		return v
	case int64:
		return uint64(v)
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// registryError translates a registry sentinel into the HTTP response
// the client sees. Authorization failures map to 403, state conflicts
// to 409 and field validation to 400.
func registryError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, registry.ErrUnauthorizedGovernment),
		errors.Is(err, registry.ErrUnauthorizedOwner),
		errors.Is(err, registry.ErrUnauthorizedIssuer),
		errors.Is(err, registry.ErrIssuerNotVerified),
		errors.Is(err, registry.ErrBuyerNotVerified):
		return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
	case errors.Is(err, registry.ErrNotForSale),
		errors.Is(err, registry.ErrSalePriceNotSet),
		errors.Is(err, registry.ErrCannotBuyOwnVehicle),
		errors.Is(err, registry.ErrInvalidRequestStatus),
		errors.Is(err, registry.ErrBuyerMismatch),
		errors.Is(err, registry.ErrAlreadyProcessed),
		errors.Is(err, registry.ErrRecordMismatch),
		errors.Is(err, registry.ErrInsufficientFunds),
		errors.Is(err, registry.ErrVehicleInactive),
		errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, repository.ErrInsufficientFunds):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
}
