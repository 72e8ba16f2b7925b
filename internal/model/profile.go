package model

import "time"

// Role is the declared function of a profile within the registry.
// Values match the `profiles.role` enum column.
type Role string

const (
	RoleNormal           Role = "NORMAL"
	RoleInspector        Role = "INSPECTOR"
	RoleConformityExpert Role = "CONFORMITY_EXPERT"
	RoleGovernment       Role = "GOVERNMENT"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleNormal, RoleInspector, RoleConformityExpert, RoleGovernment:
		return true
	}
	return false
}

// VerificationStatus tracks government review of a profile. A profile
// starts PENDING and moves exactly once to VERIFIED or REJECTED; there
// is no path back to PENDING.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationVerified VerificationStatus = "VERIFIED"
	VerificationRejected VerificationStatus = "REJECTED"
)

// Profile represents a named identity record in the `profiles` table.
// One account may hold several named profiles (for example a NORMAL
// profile and an INSPECTOR profile); the stable key is
// (account_id, name). Profiles are mutable only by the government
// (verification); there is no self-edit after creation.
//
// Fields:
//  ID                  – primary key identifier.
//  AccountID           – owning account (the actor identity).
//  Name                – profile name, unique per account, max 50 chars.
//  PublicDataURI       – off-chain public data pointer (max 200).
//  PrivateDataURI      – off-chain private data pointer (max 200).
//  EncryptedKeyForGov  – key blob readable by the government (max 100).
//  EncryptedKeyForUser – key blob readable by the user (max 100).
//  Role                – declared role, fixed at creation.
//  VerificationStatus  – PENDING / VERIFIED / REJECTED.
//  VerifiedAt          – when the government processed the profile.
//  VerifiedBy          – account that processed the profile.
//  CreatedAt           – creation timestamp.
//  UpdatedAt           – last update timestamp.
type Profile struct {
	ID                  uint64             // profiles.id
	AccountID           uint64             // profiles.account_id
	Name                string             // profiles.name
	PublicDataURI       string             // profiles.public_data_uri
	PrivateDataURI      string             // profiles.private_data_uri
	EncryptedKeyForGov  string             // profiles.encrypted_key_for_gov
	EncryptedKeyForUser string             // profiles.encrypted_key_for_user
	Role                Role               // profiles.role
	VerificationStatus  VerificationStatus // profiles.verification_status
	VerifiedAt          *time.Time         // profiles.verified_at (nullable)
	VerifiedBy          *uint64            // profiles.verified_by (nullable)
	CreatedAt           time.Time          // profiles.created_at
	UpdatedAt           time.Time          // profiles.updated_at
}
