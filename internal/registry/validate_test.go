package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ayaznasser/vehicle-registry/internal/model"
)

func validVehicle() *model.Vehicle {
	return &model.Vehicle{
		VehicleID:        "GOV-2024-000123",
		VIN:              "1HGBH41JXMN109186",
		Brand:            "Toyota",
		Model:            "Corolla",
		Year:             2020,
		Color:            "blue",
		EngineNumber:     "EN-445566",
		InspectionStatus: model.InspectionPending,
	}
}

func TestValidateVehicle(t *testing.T) {
	require.NoError(t, ValidateVehicle(validVehicle()))

	t.Run("vin must be exactly 17 chars", func(t *testing.T) {
		v := validVehicle()
		v.VIN = strings.Repeat("A", 16)
		require.ErrorIs(t, ValidateVehicle(v), ErrInvalidVIN)
		v.VIN = strings.Repeat("A", 18)
		require.ErrorIs(t, ValidateVehicle(v), ErrInvalidVIN)
		v.VIN = ""
		require.ErrorIs(t, ValidateVehicle(v), ErrInvalidVIN)
	})

	t.Run("brand and model caps", func(t *testing.T) {
		v := validVehicle()
		v.Brand = ""
		require.ErrorIs(t, ValidateVehicle(v), ErrInvalidBrand)
		v = validVehicle()
		v.Brand = strings.Repeat("b", MaxBrandLength+1)
		require.ErrorIs(t, ValidateVehicle(v), ErrInvalidBrand)
		v = validVehicle()
		v.Model = strings.Repeat("m", MaxModelLength+1)
		require.ErrorIs(t, ValidateVehicle(v), ErrInvalidModel)
	})

	t.Run("year bounds inclusive", func(t *testing.T) {
		v := validVehicle()
		v.Year = 1899
		require.ErrorIs(t, ValidateVehicle(v), ErrInvalidYear)
		v.Year = 1900
		require.NoError(t, ValidateVehicle(v))
		v.Year = 2025
		require.NoError(t, ValidateVehicle(v))
		v.Year = 2026
		require.ErrorIs(t, ValidateVehicle(v), ErrInvalidYear)
	})

	t.Run("engine number required", func(t *testing.T) {
		v := validVehicle()
		v.EngineNumber = ""
		require.ErrorIs(t, ValidateVehicle(v), ErrInvalidEngineNumber)
	})

	t.Run("government identifier required", func(t *testing.T) {
		v := validVehicle()
		v.VehicleID = ""
		require.ErrorIs(t, ValidateVehicle(v), ErrInvalidVehicleID)
	})

	t.Run("inspection status must be a known value", func(t *testing.T) {
		v := validVehicle()
		v.InspectionStatus = model.InspectionStatus("OVERDUE")
		require.ErrorIs(t, ValidateVehicle(v), ErrInvalidInspectionStatus)
	})
}

func TestValidateProfile(t *testing.T) {
	valid := func() *model.Profile {
		return &model.Profile{
			Name:          "main",
			PublicDataURI: "ipfs://Qm123",
			Role:          model.RoleNormal,
		}
	}
	require.NoError(t, ValidateProfile(valid()))

	p := valid()
	p.Name = ""
	require.ErrorIs(t, ValidateProfile(p), ErrInvalidProfileName)

	p = valid()
	p.Name = strings.Repeat("n", MaxProfileNameLength+1)
	require.ErrorIs(t, ValidateProfile(p), ErrInvalidProfileName)

	p = valid()
	p.PublicDataURI = strings.Repeat("u", MaxDataURILength+1)
	require.ErrorIs(t, ValidateProfile(p), ErrFieldTooLong)

	p = valid()
	p.EncryptedKeyForGov = strings.Repeat("k", MaxEncryptedKeyLength+1)
	require.ErrorIs(t, ValidateProfile(p), ErrFieldTooLong)

	p = valid()
	p.Role = model.Role("SUPERVISOR")
	require.ErrorIs(t, ValidateProfile(p), ErrInvalidRole)

	for _, role := range []model.Role{model.RoleNormal, model.RoleInspector, model.RoleConformityExpert, model.RoleGovernment} {
		p = valid()
		p.Role = role
		require.NoError(t, ValidateProfile(p))
	}
}

func TestValidateSalePrice(t *testing.T) {
	require.ErrorIs(t, ValidateSalePrice(0), ErrInvalidSalePrice)
	require.NoError(t, ValidateSalePrice(1))
}

func TestValidateBuyRequestMessage(t *testing.T) {
	require.NoError(t, ValidateBuyRequestMessage(nil))
	msg := "interested, can view this weekend"
	require.NoError(t, ValidateBuyRequestMessage(&msg))
	long := strings.Repeat("x", MaxBuyRequestMessageLength+1)
	require.ErrorIs(t, ValidateBuyRequestMessage(&long), ErrFieldTooLong)
}

func TestValidateInspectionReport(t *testing.T) {
	valid := func() *model.InspectionReport {
		return &model.InspectionReport{
			OverallCondition: 8,
			EngineCondition:  7,
			BodyCondition:    9,
			FullReportURI:    "https://reports.example/r/1",
			ReportSummary:    "minor wear",
		}
	}
	require.NoError(t, ValidateInspectionReport(valid()))

	t.Run("score bounds inclusive", func(t *testing.T) {
		for _, score := range []uint8{0, 11} {
			r := valid()
			r.OverallCondition = score
			require.ErrorIs(t, ValidateInspectionReport(r), ErrInvalidConditionScore)
		}
		for _, score := range []uint8{1, 10} {
			r := valid()
			r.OverallCondition = score
			r.EngineCondition = score
			r.BodyCondition = score
			require.NoError(t, ValidateInspectionReport(r))
		}
		r := valid()
		r.BodyCondition = 0
		require.ErrorIs(t, ValidateInspectionReport(r), ErrInvalidConditionScore)
	})

	t.Run("string caps", func(t *testing.T) {
		r := valid()
		r.FullReportURI = strings.Repeat("u", MaxReportURILength+1)
		require.ErrorIs(t, ValidateInspectionReport(r), ErrFieldTooLong)
		r = valid()
		r.ReportSummary = strings.Repeat("s", MaxReportSummaryLength+1)
		require.ErrorIs(t, ValidateInspectionReport(r), ErrFieldTooLong)
		r = valid()
		r.Notes = strings.Repeat("n", MaxInspectionNotesLength+1)
		require.ErrorIs(t, ValidateInspectionReport(r), ErrFieldTooLong)
	})
}

func TestValidateConformityReport(t *testing.T) {
	valid := func() *model.ConformityReport {
		return &model.ConformityReport{
			ConformityStatus: true,
			Modifications:    "exhaust replaced",
			MinesStamp:       "STAMP-7781",
			FullReportURI:    "https://reports.example/c/1",
		}
	}
	require.NoError(t, ValidateConformityReport(valid()))

	r := valid()
	r.Modifications = strings.Repeat("m", MaxModificationsLength+1)
	require.ErrorIs(t, ValidateConformityReport(r), ErrFieldTooLong)

	r = valid()
	r.MinesStamp = strings.Repeat("s", MaxStampLength+1)
	require.ErrorIs(t, ValidateConformityReport(r), ErrFieldTooLong)

	r = valid()
	r.Notes = strings.Repeat("n", MaxConformityNotesLength+1)
	require.ErrorIs(t, ValidateConformityReport(r), ErrFieldTooLong)
}
