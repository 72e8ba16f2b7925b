package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ayaznasser/vehicle-registry/internal/model"
	"github.com/ayaznasser/vehicle-registry/internal/queue"
	"github.com/ayaznasser/vehicle-registry/internal/registry"
	"github.com/ayaznasser/vehicle-registry/internal/repository"
	queue_publisher "github.com/ayaznasser/vehicle-registry/internal/service"
)

// VehicleHandler serves vehicle registration, lookup, sale listing and
// direct ownership transfer. Registration is restricted to the
// government identity; sale and transfer operations to the current
// owner.
type VehicleHandler struct {
	DB       *sql.DB
	Policy   *registry.Policy
	Vehicles *repository.VehicleRepo
	Profiles *repository.ProfileRepo
}

func NewVehicleHandler(db *sql.DB, p *registry.Policy, vehicles *repository.VehicleRepo, profiles *repository.ProfileRepo) *VehicleHandler {
	return &VehicleHandler{DB: db, Policy: p, Vehicles: vehicles, Profiles: profiles}
}

type registerVehicleReq struct {
	VehicleID              string     `json:"vehicle_id"`
	VIN                    string     `json:"vin"`
	Brand                  string     `json:"brand"`
	Model                  string     `json:"model"`
	Year                   uint16     `json:"year"`
	Color                  string     `json:"color"`
	EngineNumber           string     `json:"engine_number"`
	OwnerAccountID         uint64     `json:"owner_account_id"`
	Mileage                uint32     `json:"mileage"`
	LastInspectionDate     *time.Time `json:"last_inspection_date"`
	InspectionStatus       string     `json:"inspection_status"`
	LatestInspectionReport *string    `json:"latest_inspection_report"`
}

type listForSaleReq struct {
	Price uint64 `json:"price"`
}

type transferReq struct {
	RecipientAccountID uint64 `json:"recipient_account_id"`
}

// Register creates a new vehicle record. Government only; the VIN must
// be unused and the initial owner is named in the request.
func (h *VehicleHandler) Register(c echo.Context) error {
	var req registerVehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	actor := actorID(c)
	if err := h.Policy.CanRegisterVehicle(actor); err != nil {
		return registryError(c, err)
	}
	if req.OwnerAccountID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "owner_account_id required"})
	}

	status := model.InspectionStatus(req.InspectionStatus)
	if req.InspectionStatus == "" {
		status = model.InspectionPending
	}
	v := model.Vehicle{
		VehicleID:              req.VehicleID,
		VIN:                    req.VIN,
		Brand:                  req.Brand,
		Model:                  req.Model,
		Year:                   req.Year,
		Color:                  req.Color,
		EngineNumber:           req.EngineNumber,
		OwnerAccountID:         req.OwnerAccountID,
		RegisteredBy:           actor,
		RegistrationDate:       time.Now().UTC(),
		LastInspectionDate:     req.LastInspectionDate,
		InspectionStatus:       status,
		LatestInspectionReport: req.LatestInspectionReport,
		Mileage:                req.Mileage,
	}
	if err := registry.ValidateVehicle(&v); err != nil {
		return registryError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Vehicles.Create(ctx, &v); err != nil {
		if err == repository.ErrDuplicate {
			return c.JSON(http.StatusConflict, echo.Map{"error": "vin already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "register vehicle failed"})
	}
	return c.JSON(http.StatusCreated, v)
}

// Get returns a vehicle by VIN.
func (h *VehicleHandler) Get(c echo.Context) error {
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
	return c.JSON(http.StatusOK, v)
}

// ListMine returns the caller's vehicles.
func (h *VehicleHandler) ListMine(c echo.Context) error {
	actor := actorID(c)
	if actor == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	vehicles, err := h.Vehicles.ListByOwner(ctx, actor)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list vehicles failed"})
	}
	return c.JSON(http.StatusOK, vehicles)
}

// ListForSale lists a vehicle at a price. Owner only.
func (h *VehicleHandler) ListForSale(c echo.Context) error {
	vin := c.Param("vin")
	var req listForSaleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := registry.ValidateSalePrice(req.Price); err != nil {
		return registryError(c, err)
	}
	actor := actorID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Vehicles.GetByVIN(ctx, vin)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load vehicle failed"})
	}
	if err := h.Policy.CanModifyVehicle(actor, &v); err != nil {
		return registryError(c, err)
	}
	if !v.IsActive {
		return registryError(c, registry.ErrVehicleInactive)
	}

	// The ownership guard on the UPDATE closes the window between the
	// read above and the write: a concurrent accept or transfer that
	// moved the vehicle makes the update a no-op.
	ok, err := h.Vehicles.SetForSale(ctx, vin, actor, req.Price)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list vehicle failed"})
	}
	if !ok {
		return registryError(c, registry.ErrUnauthorizedOwner)
	}
	v.IsForSale = true
	price := req.Price
	v.SalePrice = &price
	return c.JSON(http.StatusOK, v)
}

// CancelSale delists a vehicle and clears its price. Owner only.
// Pending buy requests survive delisting; their escrow is released only
// by an explicit reject.
func (h *VehicleHandler) CancelSale(c echo.Context) error {
	vin := c.Param("vin")
	actor := actorID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	v, err := h.Vehicles.GetByVIN(ctx, vin)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load vehicle failed"})
	}
	if err := h.Policy.CanModifyVehicle(actor, &v); err != nil {
		return registryError(c, err)
	}

	ok, err := h.Vehicles.CancelSale(ctx, vin, actor)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel sale failed"})
	}
	if !ok {
		return registryError(c, registry.ErrUnauthorizedOwner)
	}
	v.IsForSale = false
	v.SalePrice = nil
	return c.JSON(http.StatusOK, v)
}

// Transfer moves ownership to a named recipient without escrow. Owner
// only; the recipient must hold a VERIFIED profile. Runs in a
// transaction with the vehicle row locked so a competing accept or
// transfer on the same vehicle serializes.
func (h *VehicleHandler) Transfer(c echo.Context) error {
	vin := c.Param("vin")
	var req transferReq
	if err := c.Bind(&req); err != nil || req.RecipientAccountID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "recipient_account_id required"})
	}
	actor := actorID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	recipient, err := h.Profiles.GetVerifiedByAccount(ctx, req.RecipientAccountID)
	if err != nil {
		if err == sql.ErrNoRows {
			return registryError(c, registry.ErrBuyerNotVerified)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load recipient failed"})
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
	if err := h.Policy.CheckDirectTransfer(actor, &v, &recipient); err != nil {
		return registryError(c, err)
	}

	if err := h.Vehicles.TransferOwnershipTx(ctx, tx, v.ID, req.RecipientAccountID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transfer failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	v.OwnerAccountID = req.RecipientAccountID
	v.IsForSale = false
	v.SalePrice = nil
	v.TransferCount++

	// Best-effort audit event; the transfer is already committed.
	_ = queue_publisher.PublishTransferCompleted(ctx, queue.TransferCompletedEvent{
		EventID:         uuid.NewString(),
		VIN:             v.VIN,
		VehicleID:       v.ID,
		Brand:           v.Brand,
		Model:           v.Model,
		SellerAccountID: actor,
		BuyerAccountID:  req.RecipientAccountID,
		TransferType:    queue.TransferTypeDirect,
		TransferCount:   v.TransferCount,
		CompletedAt:     time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, v)
}
