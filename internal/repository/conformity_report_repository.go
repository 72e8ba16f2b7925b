package repository

import (
	"context"
	"database/sql"

	"github.com/ayaznasser/vehicle-registry/internal/model"
)

// ConformityReportRepo persists regulatory conformity reports.
// Structurally parallel to InspectionReportRepo: immutable after
// creation except the owner-acceptance bit, unique per
// (vehicle, expert, report id).
type ConformityReportRepo struct{ DB *sql.DB }

func NewConformityReportRepo(db *sql.DB) *ConformityReportRepo {
	return &ConformityReportRepo{DB: db}
}

const conformityColumns = `id, report_id, vehicle_id, expert_account_id, owner_account_id,
	report_date, conformity_status, modifications, mines_stamp, full_report_uri,
	notes, accepted_by_owner`

func scanConformityReport(row interface{ Scan(...any) error }) (model.ConformityReport, error) {
	var rep model.ConformityReport
	err := row.Scan(&rep.ID, &rep.ReportID, &rep.VehicleID, &rep.ExpertAccountID,
		&rep.OwnerAccountID, &rep.ReportDate, &rep.ConformityStatus, &rep.Modifications,
		&rep.MinesStamp, &rep.FullReportURI, &rep.Notes, &rep.AcceptedByOwner)
	return rep, err
}

// Create inserts a new unaccepted report and populates the generated ID.
func (r *ConformityReportRepo) Create(ctx context.Context, rep *model.ConformityReport) error {
	const q = `INSERT INTO conformity_reports
		(report_id, vehicle_id, expert_account_id, owner_account_id, report_date,
		 conformity_status, modifications, mines_stamp, full_report_uri, notes,
		 accepted_by_owner)
		VALUES (?,?,?,?,?,?,?,?,?,?,0)`
	res, err := r.DB.ExecContext(ctx, q,
		rep.ReportID, rep.VehicleID, rep.ExpertAccountID, rep.OwnerAccountID,
		rep.ReportDate, rep.ConformityStatus, rep.Modifications, rep.MinesStamp,
		rep.FullReportURI, rep.Notes)
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
	rep.ID = uint64(id)
	rep.AcceptedByOwner = false
	return nil
}

// GetByID fetches a report by primary key.
func (r *ConformityReportRepo) GetByID(ctx context.Context, id uint64) (model.ConformityReport, error) {
	return scanConformityReport(r.DB.QueryRowContext(ctx,
		"SELECT "+conformityColumns+" FROM conformity_reports WHERE id=? LIMIT 1", id))
}

// ListByVehicle returns all reports filed for a vehicle, newest first.
func (r *ConformityReportRepo) ListByVehicle(ctx context.Context, vehicleID uint64) ([]model.ConformityReport, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+conformityColumns+" FROM conformity_reports WHERE vehicle_id=? ORDER BY report_date DESC, id DESC",
		vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ConformityReport, 0)
	for rows.Next() {
		rep, err := scanConformityReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// AcceptTx sets the owner-acceptance bit inside the caller's
// transaction, which holds the vehicle row lock so the ownership check
// and the write commit together. Re-acceptance is a silent no-op.
func (r *ConformityReportRepo) AcceptTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE conformity_reports SET accepted_by_owner=1 WHERE id=?", id)
	return err
}
