package repository

import (
	"context"
	"database/sql"

	"github.com/ayaznasser/vehicle-registry/internal/model"
)

// BuyRequestRepo provides CRUD operations for escrowed purchase
// offers. The UNIQUE key over (vin, buyer_account_id) guarantees at
// most one live request per buyer per vehicle; a second create for the
// same pair fails with ErrDuplicate. Mutating methods run inside a
// caller-owned transaction together with the wallet movement they
// settle.
type BuyRequestRepo struct{ DB *sql.DB }

func NewBuyRequestRepo(db *sql.DB) *BuyRequestRepo { return &BuyRequestRepo{DB: db} }

const buyRequestColumns = `id, vin, buyer_account_id, seller_account_id, amount,
	status, message, created_at`

func scanBuyRequest(row interface{ Scan(...any) error }) (model.BuyRequest, error) {
	var (
		b       model.BuyRequest
		message sql.NullString
	)
	err := row.Scan(&b.ID, &b.VIN, &b.BuyerAccountID, &b.SellerAccountID, &b.Amount,
		&b.Status, &message, &b.CreatedAt)
	if err != nil {
		return b, err
	}
	if message.Valid {
		m := message.String
		b.Message = &m
	}
	return b, nil
}

// CreateTx inserts a PENDING request inside the caller's transaction
// and populates the generated ID.
func (r *BuyRequestRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.BuyRequest) error {
	var message any
	if b.Message != nil {
		message = *b.Message
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO buy_requests (vin, buyer_account_id, seller_account_id, amount, status, message)
		 VALUES (?,?,?,?,?,?)`,
		b.VIN, b.BuyerAccountID, b.SellerAccountID, b.Amount, model.BuyRequestPending, message)
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
	b.ID = uint64(id)
	b.Status = model.BuyRequestPending
	return nil
}

// GetByVINAndBuyer fetches a request by its stable key.
func (r *BuyRequestRepo) GetByVINAndBuyer(ctx context.Context, vin string, buyer uint64) (model.BuyRequest, error) {
	return scanBuyRequest(r.DB.QueryRowContext(ctx,
		"SELECT "+buyRequestColumns+" FROM buy_requests WHERE vin=? AND buyer_account_id=? LIMIT 1",
		vin, buyer))
}

// GetByVINAndBuyerForUpdateTx fetches a request by its stable key and
// locks the row. Concurrent accept/reject attempts on the same
// request serialize here; the loser observes the terminal status (or
// a missing row) the winner committed.
func (r *BuyRequestRepo) GetByVINAndBuyerForUpdateTx(ctx context.Context, tx *sql.Tx, vin string, buyer uint64) (model.BuyRequest, error) {
	return scanBuyRequest(tx.QueryRowContext(ctx,
		"SELECT "+buyRequestColumns+" FROM buy_requests WHERE vin=? AND buyer_account_id=? LIMIT 1 FOR UPDATE",
		vin, buyer))
}

// ListByBuyer returns all requests created by an account, newest first.
func (r *BuyRequestRepo) ListByBuyer(ctx context.Context, buyer uint64) ([]model.BuyRequest, error) {
	return r.list(ctx, "buyer_account_id", buyer)
}

// ListBySeller returns all requests addressed to an account as seller
// of record, newest first.
func (r *BuyRequestRepo) ListBySeller(ctx context.Context, seller uint64) ([]model.BuyRequest, error) {
	return r.list(ctx, "seller_account_id", seller)
}

func (r *BuyRequestRepo) list(ctx context.Context, column string, accountID uint64) ([]model.BuyRequest, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+buyRequestColumns+" FROM buy_requests WHERE "+column+"=? ORDER BY created_at DESC, id DESC",
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BuyRequest, 0)
	for rows.Next() {
		b, err := scanBuyRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// MarkAcceptedTx moves a PENDING request to ACCEPTED inside the
// caller's transaction. The status guard in the WHERE clause makes a
// colliding second accept observe zero affected rows.
func (r *BuyRequestRepo) MarkAcceptedTx(ctx context.Context, tx *sql.Tx, id uint64) (bool, error) {
	res, err := tx.ExecContext(ctx,
		"UPDATE buy_requests SET status=? WHERE id=? AND status=?",
		model.BuyRequestAccepted, id, model.BuyRequestPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteTx removes a request row inside the caller's transaction.
// Used by reject after the refund; the REJECTED status survives only
// in the response and the audit log.
func (r *BuyRequestRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM buy_requests WHERE id=?", id)
	return err
}
