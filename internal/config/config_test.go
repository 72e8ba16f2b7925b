package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEnvUint64(t *testing.T) {
	t.Setenv("TEST_BALANCE", "2500")
	require.Equal(t, uint64(2500), envUint64("TEST_BALANCE", 0))

	require.Equal(t, uint64(99), envUint64("TEST_UNSET_BALANCE", 99))

	t.Setenv("TEST_BAD_BALANCE", "not-a-number")
	require.Equal(t, uint64(7), envUint64("TEST_BAD_BALANCE", 7))

	t.Setenv("TEST_NEG_BALANCE", "-5")
	require.Equal(t, uint64(7), envUint64("TEST_NEG_BALANCE", 7))
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STR", "value")
	require.Equal(t, "value", envStr("TEST_STR", "def"))
	require.Equal(t, "def", envStr("TEST_STR_UNSET", "def"))

	t.Setenv("TEST_INT", "12")
	require.Equal(t, 12, envInt("TEST_INT", 1))
	require.Equal(t, 1, envInt("TEST_INT_UNSET", 1))

	t.Setenv("TEST_BOOL", "yes")
	require.True(t, envBool("TEST_BOOL", false))
	t.Setenv("TEST_BOOL", "off")
	require.False(t, envBool("TEST_BOOL", true))
	t.Setenv("TEST_BOOL", "maybe")
	require.True(t, envBool("TEST_BOOL", true))

	t.Setenv("TEST_DUR", "2m")
	require.Equal(t, 2*time.Minute, envDur("TEST_DUR", time.Second))
	require.Equal(t, time.Second, envDur("TEST_DUR_UNSET", time.Second))
}

func TestLoadRateLimitConfigBounds(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "0")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")

	cfg := LoadRateLimitConfig()
	require.Equal(t, 1, cfg.Capacity)
	require.Equal(t, 1, cfg.RefillTokens)
	// TTL is raised to cover at least five refill intervals.
	require.Equal(t, 10*time.Second, cfg.TTL)
}

func TestLoadCacheConfigMethods(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	cfg := LoadCacheConfig()
	require.True(t, cfg.Methods["GET"])
	require.True(t, cfg.Methods["HEAD"])
	require.False(t, cfg.Methods["POST"])
}
