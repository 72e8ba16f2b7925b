package model

import "time"

// Account represents an authentication identity as stored in the
// `accounts` table. An account is the actor identity used across the
// registry: vehicle ownership, buy requests and report issuance all
// reference account IDs. Authorization roles live on named profiles,
// not on the account itself.
//
// Fields:
//  ID           – primary key identifier of the account.
//  Email        – unique email address used for login.
//  PasswordHash – bcrypt hashed password.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Account struct {
	ID           uint64    // accounts.id
	Email        string    // accounts.email
	PasswordHash string    // accounts.password_hash
	IsActive     bool      // accounts.is_active
	CreatedAt    time.Time // accounts.created_at
	UpdatedAt    time.Time // accounts.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table. Each
// refresh token belongs to an account and carries metadata for expiry
// and revocation. The plain token is never stored; only its SHA-256
// hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	AccountID uint64     // refresh_tokens.account_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
