package repository

import (
	"context"
	"database/sql"

	"github.com/ayaznasser/vehicle-registry/internal/model"
)

// WalletRepo moves value between account balances. It is the fund
// custody primitive of the escrow protocol: debits, credits and
// transfers always run inside the same transaction as the record
// mutation they pay for, so a rolled-back request never moves money.
// Debits use a guarded UPDATE (balance >= amount in the WHERE clause)
// so a balance can never go negative regardless of interleaving.
type WalletRepo struct{ DB *sql.DB }

func NewWalletRepo(db *sql.DB) *WalletRepo { return &WalletRepo{DB: db} }

// Get returns the wallet of an account.
func (r *WalletRepo) Get(ctx context.Context, accountID uint64) (model.Wallet, error) {
	var w model.Wallet
	err := r.DB.QueryRowContext(ctx,
		"SELECT account_id, balance, updated_at FROM wallets WHERE account_id=? LIMIT 1",
		accountID).Scan(&w.AccountID, &w.Balance, &w.UpdatedAt)
	return w, err
}

// GetForUpdateTx returns the wallet with its row locked for the
// duration of the transaction.
func (r *WalletRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, accountID uint64) (model.Wallet, error) {
	var w model.Wallet
	err := tx.QueryRowContext(ctx,
		"SELECT account_id, balance, updated_at FROM wallets WHERE account_id=? LIMIT 1 FOR UPDATE",
		accountID).Scan(&w.AccountID, &w.Balance, &w.UpdatedAt)
	return w, err
}

// DebitTx subtracts amount from the account's balance. Returns
// ErrInsufficientFunds when the balance does not cover the amount and
// sql.ErrNoRows when the wallet does not exist.
func (r *WalletRepo) DebitTx(ctx context.Context, tx *sql.Tx, accountID, amount uint64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE wallets SET balance=balance-? WHERE account_id=? AND balance>=?",
		amount, accountID, amount)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var exists int
	if err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM wallets WHERE account_id=? LIMIT 1", accountID).Scan(&exists); err != nil {
		return err
	}
	return ErrInsufficientFunds
}

// CreditTx adds amount to the account's balance. Returns
// sql.ErrNoRows when the wallet does not exist.
func (r *WalletRepo) CreditTx(ctx context.Context, tx *sql.Tx, accountID, amount uint64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE wallets SET balance=balance+? WHERE account_id=?",
		amount, accountID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return sql.ErrNoRows
	}
	return nil
}

// TransferTx atomically moves amount from one account to another
// within the caller's transaction.
func (r *WalletRepo) TransferTx(ctx context.Context, tx *sql.Tx, from, to, amount uint64) error {
	if err := r.DebitTx(ctx, tx, from, amount); err != nil {
		return err
	}
	return r.CreditTx(ctx, tx, to, amount)
}
