package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewAccessToken(t *testing.T) {
	at, err := NewAccessToken("test-secret", 42, "GOVERNMENT", 15)
	require.NoError(t, err)
	require.NotEmpty(t, at.Token)
	require.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), at.Exp, 5*time.Second)

	tok, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		require.IsType(t, &jwt.SigningMethodHMAC{}, tk.Method)
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims, ok := tok.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, float64(42), claims["sub"])
	require.Equal(t, "GOVERNMENT", claims["role"])
}

func TestNewAccessTokenWrongSecret(t *testing.T) {
	at, err := NewAccessToken("right", 1, "USER", 5)
	require.NoError(t, err)

	_, err = jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("wrong"), nil
	})
	require.Error(t, err)
}

func TestNewRefreshToken(t *testing.T) {
	rt, err := NewRefreshToken(7)
	require.NoError(t, err)
	require.Len(t, rt.Raw, 96) // 48 random bytes hex encoded
	require.WithinDuration(t, time.Now().UTC().Add(7*24*time.Hour), rt.Exp, 5*time.Second)

	other, err := NewRefreshToken(7)
	require.NoError(t, err)
	require.NotEqual(t, rt.Raw, other.Raw)
}

func TestHashRefreshRaw(t *testing.T) {
	h := HashRefreshRaw("token-value")
	require.Len(t, h, 64) // sha256 hex
	require.Equal(t, h, HashRefreshRaw("token-value"))
	require.NotEqual(t, h, HashRefreshRaw("other-value"))
}
