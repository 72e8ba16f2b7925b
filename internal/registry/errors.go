// Package registry implements the authorization policy and field
// validation of the vehicle registry. Every predicate operates on
// records that have already been loaded by the caller; the package
// performs no I/O. Handlers run these checks before applying any
// mutation so a failed request never leaves partial state, and they
// translate the sentinel errors below into HTTP responses.
package registry

import "errors"

// Authorization failures.
var (
	// ErrUnauthorizedGovernment is returned when an actor other than the
	// designated government identity attempts vehicle registration or
	// profile verification.
	ErrUnauthorizedGovernment = errors.New("unauthorized: government identity required")

	// ErrUnauthorizedOwner is returned when an actor who is not the
	// current owner of a vehicle attempts an owner-only operation.
	ErrUnauthorizedOwner = errors.New("unauthorized: not the vehicle owner")

	// ErrUnauthorizedIssuer is returned when a report issuer's role does
	// not match the report type.
	ErrUnauthorizedIssuer = errors.New("unauthorized: role does not permit issuing this report")

	// ErrIssuerNotVerified is returned when a report issuer holds the
	// right role but the profile is not VERIFIED.
	ErrIssuerNotVerified = errors.New("issuer profile is not verified")

	// ErrBuyerNotVerified is returned when a buy request is attempted
	// without a VERIFIED profile.
	ErrBuyerNotVerified = errors.New("buyer profile is not verified")
)

// State failures.
var (
	ErrNotForSale           = errors.New("vehicle is not for sale")
	ErrSalePriceNotSet      = errors.New("sale price is not set")
	ErrCannotBuyOwnVehicle  = errors.New("cannot buy your own vehicle")
	ErrInvalidRequestStatus = errors.New("buy request is not in the expected status")
	ErrBuyerMismatch        = errors.New("buy request buyer does not match")
	ErrAlreadyProcessed     = errors.New("profile verification already processed")
	ErrRecordMismatch       = errors.New("report does not reference the supplied vehicle")
	ErrInsufficientFunds    = errors.New("insufficient wallet balance")
	ErrVehicleInactive      = errors.New("vehicle record is inactive")
)

// Field validation failures.
var (
	ErrInvalidVIN              = errors.New("vin must be exactly 17 characters")
	ErrInvalidBrand            = errors.New("brand must be between 1 and 30 characters")
	ErrInvalidModel            = errors.New("model must be between 1 and 30 characters")
	ErrInvalidYear             = errors.New("year must be between 1900 and 2025")
	ErrInvalidEngineNumber     = errors.New("engine number is required")
	ErrInvalidColor            = errors.New("color must be at most 20 characters")
	ErrInvalidVehicleID        = errors.New("vehicle id must be between 1 and 50 characters")
	ErrInvalidInspectionStatus = errors.New("unknown inspection status")
	ErrInvalidProfileName      = errors.New("profile name must be between 1 and 50 characters")
	ErrInvalidRole             = errors.New("unknown role")
	ErrInvalidConditionScore   = errors.New("condition score must be between 1 and 10")
	ErrInvalidSalePrice        = errors.New("sale price must be greater than zero")
	ErrFieldTooLong            = errors.New("field exceeds its maximum length")
)
