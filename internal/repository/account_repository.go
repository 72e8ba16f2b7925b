package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ayaznasser/vehicle-registry/internal/model"
	"github.com/ayaznasser/vehicle-registry/internal/utils"
)

// AccountRepo persists authentication accounts ('accounts' table).
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

// isDuplicateKey reports whether err is a MySQL duplicate-entry error (1062).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// Create inserts an account and seeds its wallet with the starting
// balance inside one transaction, returning the new account ID.
func (r *AccountRepo) Create(ctx context.Context, email, password string, cost int, startingBalance uint64) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO accounts (email, password_hash) VALUES (?,?)",
		email, hash)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO wallets (account_id, balance) VALUES (?,?)",
		uint64(id), startingBalance); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var a model.Account
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,is_active,created_at,updated_at FROM accounts WHERE email=? LIMIT 1",
		email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (model.Account, error) {
	var a model.Account
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,is_active,created_at,updated_at FROM accounts WHERE id=? LIMIT 1",
		id).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
