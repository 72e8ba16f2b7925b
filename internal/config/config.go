package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. GovAccountID designates the single
// government identity: it is deployment configuration, not mutable
// state, and every government-only check compares against it.
type Config struct {
	Env             string // application environment (e.g. "dev", "prod")
	Port            string // HTTP port to listen on
	DBUser          string // database username
	DBPass          string // database password (optional)
	DBHost          string // database host address
	DBPort          string // database port number
	DBName          string // database name
	JWTSecret       string // secret used to sign JWTs
	AccessTTLMin    int    // access token time-to-live in minutes
	RefreshTTLDays  int    // refresh token time-to-live in days
	BcryptCost      int    // bcrypt cost for password hashing
	GovAccountID    uint64 // account ID of the designated government identity
	StartingBalance uint64 // wallet balance seeded for new accounts
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:             must("APP_ENV"),
		Port:            must("APP_PORT"),
		DBUser:          must("DB_USER"),
		DBPass:          os.Getenv("DB_PASS"), // empty allowed
		DBHost:          must("DB_HOST"),
		DBPort:          must("DB_PORT"),
		DBName:          must("DB_NAME"),
		JWTSecret:       must("JWT_SECRET"),
		AccessTTLMin:    mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:  mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:      mustInt("BCRYPT_COST"),
		GovAccountID:    mustUint64("GOV_ACCOUNT_ID"),
		StartingBalance: envUint64("WALLET_STARTING_BALANCE", 0),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// mustUint64 is like must() but for unsigned 64-bit values.
func mustUint64(key string) uint64 {
	s := must(key)
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		log.Fatalf("invalid uint for %s: %q", key, s)
	}
	return n
}

// envUint64 reads an optional unsigned value with a default.
func envUint64(key string, def uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.ParseUint(v, 10, 64); err == nil {
		return n
	}
	return def
}
