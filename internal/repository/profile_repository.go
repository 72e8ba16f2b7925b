package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/ayaznasser/vehicle-registry/internal/model"
)

// ProfileRepo provides CRUD operations for named identity profiles.
// The uniqueness key (account_id, name) makes creation idempotent per
// logical identity; a second insert for the same pair fails with
// ErrDuplicate instead of producing a twin record.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

const profileColumns = `id, account_id, name, public_data_uri, private_data_uri,
	encrypted_key_for_gov, encrypted_key_for_user, role, verification_status,
	verified_at, verified_by, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (model.Profile, error) {
	var (
		p          model.Profile
		verifiedAt sql.NullTime
		verifiedBy sql.NullInt64
	)
	err := row.Scan(&p.ID, &p.AccountID, &p.Name, &p.PublicDataURI, &p.PrivateDataURI,
		&p.EncryptedKeyForGov, &p.EncryptedKeyForUser, &p.Role, &p.VerificationStatus,
		&verifiedAt, &verifiedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		p.VerifiedAt = &t
	}
	if verifiedBy.Valid {
		v := uint64(verifiedBy.Int64)
		p.VerifiedBy = &v
	}
	return p, nil
}

// Create inserts a new profile in PENDING state and populates the
// generated ID on the provided record.
func (r *ProfileRepo) Create(ctx context.Context, p *model.Profile) error {
	const q = `INSERT INTO profiles
		(account_id, name, public_data_uri, private_data_uri,
		 encrypted_key_for_gov, encrypted_key_for_user, role, verification_status)
		VALUES (?,?,?,?,?,?,?,?)`
	res, err := r.DB.ExecContext(ctx, q,
		p.AccountID, p.Name, p.PublicDataURI, p.PrivateDataURI,
		p.EncryptedKeyForGov, p.EncryptedKeyForUser, p.Role, model.VerificationPending)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.VerificationStatus = model.VerificationPending
	return nil
}

// GetByID fetches a profile by primary key.
func (r *ProfileRepo) GetByID(ctx context.Context, id uint64) (model.Profile, error) {
	return scanProfile(r.DB.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE id=? LIMIT 1", id))
}

// GetByAccountAndName fetches a profile by its stable identity key.
func (r *ProfileRepo) GetByAccountAndName(ctx context.Context, accountID uint64, name string) (model.Profile, error) {
	return scanProfile(r.DB.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE account_id=? AND name=? LIMIT 1",
		accountID, name))
}

// ListByAccount returns all profiles held by an account, oldest first.
func (r *ProfileRepo) ListByAccount(ctx context.Context, accountID uint64) ([]model.Profile, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE account_id=? ORDER BY id", accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetVerifiedByAccount returns a VERIFIED profile of the account, if
// any. Used by the escrow flow, which only requires that the buyer
// holds some verified identity.
func (r *ProfileRepo) GetVerifiedByAccount(ctx context.Context, accountID uint64) (model.Profile, error) {
	return scanProfile(r.DB.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE account_id=? AND verification_status=? ORDER BY id LIMIT 1",
		accountID, model.VerificationVerified))
}

// GetRoleProfile returns a profile of the account holding the given
// role. Report issuance looks the issuer up by role rather than by
// name so an account acting as inspector does not need to spell out
// which of its profiles applies.
func (r *ProfileRepo) GetRoleProfile(ctx context.Context, accountID uint64, role model.Role) (model.Profile, error) {
	return scanProfile(r.DB.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE account_id=? AND role=? ORDER BY id LIMIT 1",
		accountID, role))
}

// SetVerification stamps the verification outcome. The WHERE clause
// re-checks PENDING so a concurrent verifier cannot process the same
// profile twice; zero affected rows means the profile was already
// handled.
func (r *ProfileRepo) SetVerification(ctx context.Context, id uint64, status model.VerificationStatus, verifier uint64, at time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE profiles SET verification_status=?, verified_at=?, verified_by=?
		 WHERE id=? AND verification_status=?`,
		status, at, verifier, id, model.VerificationPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
