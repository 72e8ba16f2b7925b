package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func runRequireRole(t *testing.T, role interface{}, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set("role", role)
	}

	handler := RequireRole(allowed...)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, handler(c))
	return rec
}

func TestRequireRoleAllowed(t *testing.T) {
	rec := runRequireRole(t, "GOVERNMENT", "GOVERNMENT")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleMultipleAllowed(t *testing.T) {
	rec := runRequireRole(t, "USER", "USER", "GOVERNMENT")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleForbidden(t *testing.T) {
	rec := runRequireRole(t, "USER", "GOVERNMENT")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleMissing(t *testing.T) {
	rec := runRequireRole(t, nil, "GOVERNMENT")
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleWrongType(t *testing.T) {
	rec := runRequireRole(t, 123, "GOVERNMENT")
	require.Equal(t, http.StatusForbidden, rec.Code)
}
