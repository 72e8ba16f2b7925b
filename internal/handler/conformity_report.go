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

// ConformityReportHandler serves the conformity report flow,
// structurally parallel to the inspection one: a verified conformity
// expert issues a report, the vehicle's current owner accepts it.
type ConformityReportHandler struct {
	DB       *sql.DB
	Policy   *registry.Policy
	Vehicles *repository.VehicleRepo
	Profiles *repository.ProfileRepo
	Reports  *repository.ConformityReportRepo
}

func NewConformityReportHandler(db *sql.DB, p *registry.Policy, vehicles *repository.VehicleRepo,
	profiles *repository.ProfileRepo, reports *repository.ConformityReportRepo) *ConformityReportHandler {
	return &ConformityReportHandler{DB: db, Policy: p, Vehicles: vehicles, Profiles: profiles, Reports: reports}
}

type issueConformityReq struct {
	ReportID         uint64 `json:"report_id"`
	ConformityStatus bool   `json:"conformity_status"`
	Modifications    string `json:"modifications"`
	MinesStamp       string `json:"mines_stamp"`
	FullReportURI    string `json:"full_report_uri"`
	Notes            string `json:"notes"`
}

// Issue files a new conformity report for a vehicle. The caller must
// hold a VERIFIED profile with the CONFORMITY_EXPERT role.
func (h *ConformityReportHandler) Issue(c echo.Context) error {
	vin := c.Param("vin")
	var req issueConformityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	actor := actorID(c)
	if actor == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	issuer, err := h.Profiles.GetRoleProfile(ctx, actor, model.RoleConformityExpert)
	if err != nil {
		if err == sql.ErrNoRows {
			return registryError(c, registry.ErrUnauthorizedIssuer)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}
	if err := h.Policy.CanIssueConformityReport(&issuer); err != nil {
		return registryError(c, err)
	}

	v, err := h.Vehicles.GetByVIN(ctx, vin)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load vehicle failed"})
	}

	rep := model.ConformityReport{
		ReportID:         req.ReportID,
		VehicleID:        v.ID,
		ExpertAccountID:  actor,
		OwnerAccountID:   v.OwnerAccountID,
		ReportDate:       time.Now().UTC(),
		ConformityStatus: req.ConformityStatus,
		Modifications:    req.Modifications,
		MinesStamp:       req.MinesStamp,
		FullReportURI:    req.FullReportURI,
		Notes:            req.Notes,
	}
	if err := registry.ValidateConformityReport(&rep); err != nil {
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

// ListByVehicle returns all conformity reports filed for a vehicle.
func (h *ConformityReportHandler) ListByVehicle(c echo.Context) error {
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

// Accept sets the owner-acceptance bit on a report, subject to the
// same ownership and vehicle-reference checks as inspection approval.
// The vehicle row is locked for the ownership check so an acceptance
// cannot interleave with a transfer. Re-acceptance is a silent no-op.
func (h *ConformityReportHandler) Accept(c echo.Context) error {
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

	if err := h.Reports.AcceptTx(ctx, tx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "accept report failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	rep.AcceptedByOwner = true
	return c.JSON(http.StatusOK, rep)
}
