package repository

import (
	"context"
	"database/sql"

	"github.com/ayaznasser/vehicle-registry/internal/model"
)

// VehicleRepo provides CRUD operations for vehicle records. The VIN
// carries a UNIQUE key, so registering the same VIN twice fails with
// ErrDuplicate. Methods with a ...Tx suffix run inside a caller-owned
// transaction; the ForUpdate variants take the row lock that
// serializes competing mutations on the same vehicle.
type VehicleRepo struct{ DB *sql.DB }

func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{DB: db} }

const vehicleColumns = `id, vehicle_id, vin, brand, model, year, color, engine_number,
	owner_account_id, registered_by, registration_date, is_active, transfer_count,
	last_inspection_date, inspection_status, latest_inspection_report, mileage,
	is_for_sale, sale_price`

func scanVehicle(row interface{ Scan(...any) error }) (model.Vehicle, error) {
	var (
		v              model.Vehicle
		lastInspection sql.NullTime
		latestReport   sql.NullString
		salePrice      sql.NullInt64
	)
	err := row.Scan(&v.ID, &v.VehicleID, &v.VIN, &v.Brand, &v.Model, &v.Year, &v.Color,
		&v.EngineNumber, &v.OwnerAccountID, &v.RegisteredBy, &v.RegistrationDate,
		&v.IsActive, &v.TransferCount, &lastInspection, &v.InspectionStatus,
		&latestReport, &v.Mileage, &v.IsForSale, &salePrice)
	if err != nil {
		return v, err
	}
	if lastInspection.Valid {
		t := lastInspection.Time
		v.LastInspectionDate = &t
	}
	if latestReport.Valid {
		s := latestReport.String
		v.LatestInspectionReport = &s
	}
	if salePrice.Valid {
		p := uint64(salePrice.Int64)
		v.SalePrice = &p
	}
	return v, nil
}

// Create inserts a new vehicle record and populates the generated ID.
// New vehicles are active, unlisted and carry a zero transfer count.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	const q = `INSERT INTO vehicles
		(vehicle_id, vin, brand, model, year, color, engine_number,
		 owner_account_id, registered_by, registration_date, is_active, transfer_count,
		 last_inspection_date, inspection_status, latest_inspection_report, mileage,
		 is_for_sale, sale_price)
		VALUES (?,?,?,?,?,?,?,?,?,?,1,0,?,?,?,?,0,NULL)`
	var lastInspection any
	if v.LastInspectionDate != nil {
		lastInspection = *v.LastInspectionDate
	}
	var latestReport any
	if v.LatestInspectionReport != nil {
		latestReport = *v.LatestInspectionReport
	}
	res, err := r.DB.ExecContext(ctx, q,
		v.VehicleID, v.VIN, v.Brand, v.Model, v.Year, v.Color, v.EngineNumber,
		v.OwnerAccountID, v.RegisteredBy, v.RegistrationDate,
		lastInspection, v.InspectionStatus, latestReport, v.Mileage)
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
	v.ID = uint64(id)
	v.IsActive = true
	v.TransferCount = 0
	v.IsForSale = false
	v.SalePrice = nil
	return nil
}

// GetByVIN fetches a vehicle by its VIN.
func (r *VehicleRepo) GetByVIN(ctx context.Context, vin string) (model.Vehicle, error) {
	return scanVehicle(r.DB.QueryRowContext(ctx,
		"SELECT "+vehicleColumns+" FROM vehicles WHERE vin=? LIMIT 1", vin))
}

// GetByID fetches a vehicle by primary key.
func (r *VehicleRepo) GetByID(ctx context.Context, id uint64) (model.Vehicle, error) {
	return scanVehicle(r.DB.QueryRowContext(ctx,
		"SELECT "+vehicleColumns+" FROM vehicles WHERE id=? LIMIT 1", id))
}

// GetByVINForUpdateTx fetches a vehicle by VIN and locks its row for
// the duration of the transaction. Competing sale/transfer requests on
// the same vehicle serialize here; the loser re-reads state the winner
// already committed.
func (r *VehicleRepo) GetByVINForUpdateTx(ctx context.Context, tx *sql.Tx, vin string) (model.Vehicle, error) {
	return scanVehicle(tx.QueryRowContext(ctx,
		"SELECT "+vehicleColumns+" FROM vehicles WHERE vin=? LIMIT 1 FOR UPDATE", vin))
}

// GetByIDForUpdateTx is GetByVINForUpdateTx keyed by primary key.
func (r *VehicleRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Vehicle, error) {
	return scanVehicle(tx.QueryRowContext(ctx,
		"SELECT "+vehicleColumns+" FROM vehicles WHERE id=? LIMIT 1 FOR UPDATE", id))
}

// ListByOwner returns all vehicles currently owned by an account.
func (r *VehicleRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Vehicle, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+vehicleColumns+" FROM vehicles WHERE owner_account_id=? ORDER BY id", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// SetForSale lists a vehicle at the given price. The ownership guard
// in the WHERE clause makes the update a no-op when the vehicle
// changed hands between the caller's read and this write; the handler
// maps a false return to the unauthorized-owner error. The driver
// reports zero affected rows for an update that changes nothing, so a
// zero count re-checks ownership before concluding the caller lost it.
func (r *VehicleRepo) SetForSale(ctx context.Context, vin string, owner, price uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE vehicles SET is_for_sale=1, sale_price=? WHERE vin=? AND owner_account_id=?",
		price, vin, owner)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	return r.isOwner(ctx, vin, owner)
}

// CancelSale delists a vehicle and clears its price, with the same
// ownership guard as SetForSale.
func (r *VehicleRepo) CancelSale(ctx context.Context, vin string, owner uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE vehicles SET is_for_sale=0, sale_price=NULL WHERE vin=? AND owner_account_id=?",
		vin, owner)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	return r.isOwner(ctx, vin, owner)
}

func (r *VehicleRepo) isOwner(ctx context.Context, vin string, owner uint64) (bool, error) {
	var current uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT owner_account_id FROM vehicles WHERE vin=? LIMIT 1", vin).Scan(&current)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return current == owner, nil
}

// TransferOwnershipTx moves the vehicle to a new owner inside the
// caller's transaction: owner changes, the sale state is cleared and
// the transfer counter advances. Used by both escrow accepts and
// direct transfers.
func (r *VehicleRepo) TransferOwnershipTx(ctx context.Context, tx *sql.Tx, vehicleID, newOwner uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE vehicles SET owner_account_id=?, is_for_sale=0, sale_price=NULL,
		 transfer_count=transfer_count+1 WHERE id=?`,
		newOwner, vehicleID)
	return err
}
