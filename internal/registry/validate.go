package registry

import "github.com/ayaznasser/vehicle-registry/internal/model"

// Field caps. Storage pre-allocates fixed-width columns, so every
// string field carries a hard byte cap enforced before any write.
const (
	MaxVINLength          = 17
	MaxBrandLength        = 30
	MaxModelLength        = 30
	MaxColorLength        = 20
	MaxVehicleIDLength    = 50
	MaxEngineNumberLength = 50
	MinYear               = 1900
	MaxYear               = 2025

	MaxProfileNameLength  = 50
	MaxDataURILength      = 200
	MaxEncryptedKeyLength = 100

	MaxReportURILength        = 256
	MaxReportSummaryLength    = 512
	MaxInspectionNotesLength  = 200
	MaxModificationsLength    = 256
	MaxStampLength            = 256
	MaxConformityNotesLength  = 512
	MaxBuyRequestMessageLength = 200

	MinConditionScore = 1
	MaxConditionScore = 10
)

// ValidateVehicle checks the field constraints of a vehicle
// registration payload. VIN must be exactly 17 characters; brand and
// model 1-30; year 1900-2025; engine number non-empty.
func ValidateVehicle(v *model.Vehicle) error {
	if len(v.VIN) != MaxVINLength {
		return ErrInvalidVIN
	}
	if v.Brand == "" || len(v.Brand) > MaxBrandLength {
		return ErrInvalidBrand
	}
	if v.Model == "" || len(v.Model) > MaxModelLength {
		return ErrInvalidModel
	}
	if v.Year < MinYear || v.Year > MaxYear {
		return ErrInvalidYear
	}
	if v.EngineNumber == "" || len(v.EngineNumber) > MaxEngineNumberLength {
		return ErrInvalidEngineNumber
	}
	if len(v.Color) > MaxColorLength {
		return ErrInvalidColor
	}
	if v.VehicleID == "" || len(v.VehicleID) > MaxVehicleIDLength {
		return ErrInvalidVehicleID
	}
	if v.LatestInspectionReport != nil && len(*v.LatestInspectionReport) > MaxDataURILength {
		return ErrFieldTooLong
	}
	if !v.InspectionStatus.Valid() {
		return ErrInvalidInspectionStatus
	}
	return nil
}

// ValidateProfile checks profile creation fields: name 1-50, URIs up
// to 200, encrypted key blobs up to 100, role one of the known set.
func ValidateProfile(p *model.Profile) error {
	if p.Name == "" || len(p.Name) > MaxProfileNameLength {
		return ErrInvalidProfileName
	}
	if len(p.PublicDataURI) > MaxDataURILength || len(p.PrivateDataURI) > MaxDataURILength {
		return ErrFieldTooLong
	}
	if len(p.EncryptedKeyForGov) > MaxEncryptedKeyLength || len(p.EncryptedKeyForUser) > MaxEncryptedKeyLength {
		return ErrFieldTooLong
	}
	if !p.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}

// ValidateSalePrice rejects zero prices; a listed vehicle must carry a
// positive price.
func ValidateSalePrice(price uint64) error {
	if price == 0 {
		return ErrInvalidSalePrice
	}
	return nil
}

// ValidateBuyRequestMessage caps the optional free-text message.
func ValidateBuyRequestMessage(message *string) error {
	if message != nil && len(*message) > MaxBuyRequestMessageLength {
		return ErrFieldTooLong
	}
	return nil
}

func validScore(s uint8) bool {
	return s >= MinConditionScore && s <= MaxConditionScore
}

// ValidateInspectionReport checks condition score ranges (1-10
// inclusive) and the string caps of an inspection report.
func ValidateInspectionReport(r *model.InspectionReport) error {
	if !validScore(r.OverallCondition) || !validScore(r.EngineCondition) || !validScore(r.BodyCondition) {
		return ErrInvalidConditionScore
	}
	if len(r.FullReportURI) > MaxReportURILength {
		return ErrFieldTooLong
	}
	if len(r.ReportSummary) > MaxReportSummaryLength {
		return ErrFieldTooLong
	}
	if len(r.Notes) > MaxInspectionNotesLength {
		return ErrFieldTooLong
	}
	return nil
}

// ValidateConformityReport checks the string caps of a conformity
// report.
func ValidateConformityReport(r *model.ConformityReport) error {
	if len(r.Modifications) > MaxModificationsLength {
		return ErrFieldTooLong
	}
	if len(r.MinesStamp) > MaxStampLength {
		return ErrFieldTooLong
	}
	if len(r.FullReportURI) > MaxReportURILength {
		return ErrFieldTooLong
	}
	if len(r.Notes) > MaxConformityNotesLength {
		return ErrFieldTooLong
	}
	return nil
}
