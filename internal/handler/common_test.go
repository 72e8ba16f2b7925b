package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/ayaznasser/vehicle-registry/internal/registry"
	"github.com/ayaznasser/vehicle-registry/internal/repository"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestActorID(t *testing.T) {
	cases := []struct {
		name string
		set  interface{}
		want uint64
	}{
		{"float64 claim", float64(42), 42},
		{"uint64", uint64(7), 7},
		{"int64", int64(9), 9},
		{"numeric string", "15", 15},
		{"garbage string", "abc", 0},
		{"unset", nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestContext(t)
			if tc.set != nil {
				c.Set("user_id", tc.set)
			}
			require.Equal(t, tc.want, actorID(c))
		})
	}
}

func TestRegistryErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{registry.ErrUnauthorizedGovernment, http.StatusForbidden},
		{registry.ErrUnauthorizedOwner, http.StatusForbidden},
		{registry.ErrUnauthorizedIssuer, http.StatusForbidden},
		{registry.ErrIssuerNotVerified, http.StatusForbidden},
		{registry.ErrBuyerNotVerified, http.StatusForbidden},
		{registry.ErrNotForSale, http.StatusConflict},
		{registry.ErrCannotBuyOwnVehicle, http.StatusConflict},
		{registry.ErrInvalidRequestStatus, http.StatusConflict},
		{registry.ErrAlreadyProcessed, http.StatusConflict},
		{registry.ErrRecordMismatch, http.StatusConflict},
		{registry.ErrInsufficientFunds, http.StatusConflict},
		{repository.ErrDuplicate, http.StatusConflict},
		{registry.ErrInvalidVIN, http.StatusBadRequest},
		{registry.ErrInvalidConditionScore, http.StatusBadRequest},
		{registry.ErrFieldTooLong, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			c, rec := newTestContext(t)
			require.NoError(t, registryError(c, tc.err))
			require.Equal(t, tc.code, rec.Code)
		})
	}
}
