package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)

	require.True(t, VerifyPassword(hash, "s3cret"))
	require.False(t, VerifyPassword(hash, "wrong"))
	require.False(t, VerifyPassword("not-a-hash", "s3cret"))
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	h1, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)
	h2, err := HashPassword("same", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)
}
