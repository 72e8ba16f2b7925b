package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ayaznasser/vehicle-registry/internal/model"
	"github.com/ayaznasser/vehicle-registry/internal/registry"
	"github.com/ayaznasser/vehicle-registry/internal/repository"
)

// InspectionReportHandler serves the inspection report flow: a
// verified inspector issues a condition report against a vehicle, and
// the vehicle's current owner approves it. Approval is monotonic; a
// report never reverts to unapproved and is never deleted.
type InspectionReportHandler struct {
	DB       *sql.DB
	Policy   *registry.Policy
	Vehicles *repository.VehicleRepo
	Profiles *repository.ProfileRepo
	Reports  *repository.InspectionReportRepo
}

func NewInspectionReportHandler(db *sql.DB, p *registry.Policy, vehicles *repository.VehicleRepo,
	profiles *repository.ProfileRepo, reports *repository.InspectionReportRepo) *InspectionReportHandler {
	return &InspectionReportHandler{DB: db, Policy: p, Vehicles: vehicles, Profiles: profiles, Reports: reports}
}

type issueInspectionReq struct {
	ReportID         uint64 `json:"report_id"`
	OverallCondition uint8  `json:"overall_condition"`
	EngineCondition  uint8  `json:"engine_condition"`
	BodyCondition    uint8  `json:"body_condition"`
	FullReportURI    string `json:"full_report_uri"`
	ReportSummary    string `json:"report_summary"`
	Notes            string `json:"notes"`
}

// Issue files a new inspection report for a vehicle. The caller must
// hold a VERIFIED profile with the INSPECTOR role; the vehicle
// reference and current owner are snapshotted into the report at issue
// time.
func (h *InspectionReportHandler) Issue(c echo.Context) error {
	vin := c.Param("vin")
	var req issueInspectionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	actor := actorID(c)
	if actor == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	issuer, err := h.Profiles.GetRoleProfile(ctx, actor, model.RoleInspector)
	if err != nil {
		if err == sql.ErrNoRows {
			return registryError(c, registry.ErrUnauthorizedIssuer)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}
	if err := h.Policy.CanIssueInspectionReport(&issuer); err != nil {
		return registryError(c, err)
	}

	v, err := h.Vehicles.GetByVIN(ctx, vin)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load vehicle failed"})
	}

	rep := model.InspectionReport{
		ReportID:           req.ReportID,
		VehicleID:          v.ID,
		InspectorAccountID: actor,
		OwnerAccountID:     v.OwnerAccountID,
		ReportDate:         time.Now().UTC(),
		OverallCondition:   req.OverallCondition,
		EngineCondition:    req.EngineCondition,
		BodyCondition:      req.BodyCondition,
		FullReportURI:      req.FullReportURI,
		ReportSummary:      req.ReportSummary,
		Notes:              req.Notes,
	}
	if err := registry.ValidateInspectionReport(&rep); err != nil {
		return registryError(c, err)
	}

	if err := h.Reports.Create(ctx, &rep); err != nil {
		if err == repository.ErrDuplicate {
			return c.JSON(http.StatusConflict, echo.Map{"error": "report already filed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create report failed"})
	}
	return c.JSON(http.StatusCreated, rep)
}

// ListByVehicle returns all inspection reports filed for a vehicle.
func (h *InspectionReportHandler) ListByVehicle(c echo.Context) error {
	vin := c.Param("vin")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Vehicles.GetByVIN(ctx, vin)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load vehicle failed"})
	}
	reports, err := h.Reports.ListByVehicle(ctx, v.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list reports failed"})
	}
	return c.JSON(http.StatusOK, reports)
}

// Approve sets the owner-approval bit on a report. Only the current
// owner of the referenced vehicle may approve, and the report must
// actually reference the vehicle named in the path. The vehicle row is
// locked for the ownership check so an approval cannot interleave with
// a transfer that changes the owner. Re-approval is a silent no-op.
func (h *InspectionReportHandler) Approve(c echo.Context) error {
	vin := c.Param("vin")
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid report id"})
	}
	actor := actorID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rep, err := h.Reports.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "report not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load report failed"})
	}

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	v, err := h.Vehicles.GetByVINForUpdateTx(ctx, tx, vin)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load vehicle failed"})
	}
	if err := h.Policy.CanApproveReport(actor, rep.VehicleID, &v); err != nil {
		return registryError(c, err)
	}

	if err := h.Reports.ApproveTx(ctx, tx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "approve report failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	rep.ApprovedByOwner = true
	return c.JSON(http.StatusOK, rep)
}
