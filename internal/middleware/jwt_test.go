package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/ayaznasser/vehicle-registry/internal/utils"
)

const testSecret = "test-secret"

func runJWT(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := JWTAuth(testSecret)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, handler(c))
	return rec, c
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, _ := runJWT(t, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthMalformedHeader(t *testing.T) {
	rec, _ := runJWT(t, "Token abc")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthInvalidToken(t *testing.T) {
	rec, _ := runJWT(t, "Bearer not.a.jwt")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("other-secret", 7, "USER", 5)
	require.NoError(t, err)
	rec, _ := runJWT(t, "Bearer "+at.Token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthValidToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 7, "GOVERNMENT", 5)
	require.NoError(t, err)

	rec, c := runJWT(t, "Bearer "+at.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	// Numeric JWT claims decode as float64.
	require.Equal(t, float64(7), c.Get("user_id"))
	require.Equal(t, "GOVERNMENT", c.Get("role"))
}
