package model

import "time"

// InspectionStatus mirrors the `vehicles.inspection_status` enum.
type InspectionStatus string

const (
	InspectionPending InspectionStatus = "PENDING"
	InspectionPassed  InspectionStatus = "PASSED"
	InspectionFailed  InspectionStatus = "FAILED"
	InspectionExpired InspectionStatus = "EXPIRED"
)

// Valid reports whether s is one of the known inspection statuses.
func (s InspectionStatus) Valid() bool {
	switch s {
	case InspectionPending, InspectionPassed, InspectionFailed, InspectionExpired:
		return true
	}
	return false
}

// Vehicle represents a canonical vehicle record in the `vehicles`
// table. Vehicles are created only by the government identity and are
// never deleted; ownership changes via an accepted buy request or a
// direct transfer. The VIN is globally unique (17 characters exactly)
// and is the lookup key used by every vehicle-scoped operation.
//
// The pair (IsForSale, SalePrice) is kept consistent on entry to and
// exit from a sale: SalePrice is set when listing and cleared when the
// listing is cancelled or the vehicle changes hands.
type Vehicle struct {
	ID                     uint64           // vehicles.id
	VehicleID              string           // vehicles.vehicle_id (government-issued identifier)
	VIN                    string           // vehicles.vin
	Brand                  string           // vehicles.brand
	Model                  string           // vehicles.model
	Year                   uint16           // vehicles.year
	Color                  string           // vehicles.color
	EngineNumber           string           // vehicles.engine_number
	OwnerAccountID         uint64           // vehicles.owner_account_id
	RegisteredBy           uint64           // vehicles.registered_by
	RegistrationDate       time.Time        // vehicles.registration_date
	IsActive               bool             // vehicles.is_active
	TransferCount          uint32           // vehicles.transfer_count
	LastInspectionDate     *time.Time       // vehicles.last_inspection_date (nullable)
	InspectionStatus       InspectionStatus // vehicles.inspection_status
	LatestInspectionReport *string          // vehicles.latest_inspection_report (nullable)
	Mileage                uint32           // vehicles.mileage
	IsForSale              bool             // vehicles.is_for_sale
	SalePrice              *uint64          // vehicles.sale_price (nullable)
}
