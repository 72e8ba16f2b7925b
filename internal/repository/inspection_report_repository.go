package repository

import (
	"context"
	"database/sql"

	"github.com/ayaznasser/vehicle-registry/internal/model"
)

// InspectionReportRepo persists inspector condition reports. Reports
// are immutable after creation except the owner-approval bit. The
// UNIQUE key (vehicle_id, inspector_account_id, report_id) prevents an
// inspector from filing the same report twice.
type InspectionReportRepo struct{ DB *sql.DB }

func NewInspectionReportRepo(db *sql.DB) *InspectionReportRepo {
	return &InspectionReportRepo{DB: db}
}

const inspectionColumns = `id, report_id, vehicle_id, inspector_account_id, owner_account_id,
	report_date, overall_condition, engine_condition, body_condition,
	full_report_uri, report_summary, notes, approved_by_owner`

func scanInspectionReport(row interface{ Scan(...any) error }) (model.InspectionReport, error) {
	var rep model.InspectionReport
	err := row.Scan(&rep.ID, &rep.ReportID, &rep.VehicleID, &rep.InspectorAccountID,
		&rep.OwnerAccountID, &rep.ReportDate, &rep.OverallCondition, &rep.EngineCondition,
		&rep.BodyCondition, &rep.FullReportURI, &rep.ReportSummary, &rep.Notes,
		&rep.ApprovedByOwner)
	return rep, err
}

// Create inserts a new unapproved report and populates the generated ID.
func (r *InspectionReportRepo) Create(ctx context.Context, rep *model.InspectionReport) error {
	const q = `INSERT INTO inspection_reports
		(report_id, vehicle_id, inspector_account_id, owner_account_id, report_date,
		 overall_condition, engine_condition, body_condition,
		 full_report_uri, report_summary, notes, approved_by_owner)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,0)`
	res, err := r.DB.ExecContext(ctx, q,
		rep.ReportID, rep.VehicleID, rep.InspectorAccountID, rep.OwnerAccountID,
		rep.ReportDate, rep.OverallCondition, rep.EngineCondition, rep.BodyCondition,
		rep.FullReportURI, rep.ReportSummary, rep.Notes)
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
	rep.ApprovedByOwner = false
	return nil
}

// GetByID fetches a report by primary key.
func (r *InspectionReportRepo) GetByID(ctx context.Context, id uint64) (model.InspectionReport, error) {
	return scanInspectionReport(r.DB.QueryRowContext(ctx,
		"SELECT "+inspectionColumns+" FROM inspection_reports WHERE id=? LIMIT 1", id))
}

// ListByVehicle returns all reports filed for a vehicle, newest first.
func (r *InspectionReportRepo) ListByVehicle(ctx context.Context, vehicleID uint64) ([]model.InspectionReport, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+inspectionColumns+" FROM inspection_reports WHERE vehicle_id=? ORDER BY report_date DESC, id DESC",
		vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.InspectionReport, 0)
	for rows.Next() {
		rep, err := scanInspectionReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// ApproveTx sets the owner-approval bit inside the caller's
// transaction, which holds the vehicle row lock so the ownership check
// and the write commit together. Re-approval is a silent no-op: the
// UPDATE writes the value the row already carries.
func (r *InspectionReportRepo) ApproveTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE inspection_reports SET approved_by_owner=1 WHERE id=?", id)
	return err
}
