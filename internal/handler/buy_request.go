package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ayaznasser/vehicle-registry/internal/model"
	"github.com/ayaznasser/vehicle-registry/internal/queue"
	"github.com/ayaznasser/vehicle-registry/internal/registry"
	"github.com/ayaznasser/vehicle-registry/internal/repository"
	queue_publisher "github.com/ayaznasser/vehicle-registry/internal/service"
)

// BuyRequestHandler serves the escrow protocol. Creating a request
// debits the buyer's wallet by the listed price; those funds stay in
// custody of the request row until the seller accepts (paid out to the
// seller, ownership moves) or rejects (refunded, row deleted). Every
// state change runs inside one transaction with the vehicle, request
// and wallet rows locked, so concurrent accepts of the same request
// serialize and the loser observes the terminal state.
type BuyRequestHandler struct {
	DB       *sql.DB
	Policy   *registry.Policy
	Vehicles *repository.VehicleRepo
	Profiles *repository.ProfileRepo
	Wallets  *repository.WalletRepo
	Requests *repository.BuyRequestRepo
}

func NewBuyRequestHandler(db *sql.DB, p *registry.Policy, vehicles *repository.VehicleRepo,
	profiles *repository.ProfileRepo, wallets *repository.WalletRepo, requests *repository.BuyRequestRepo) *BuyRequestHandler {
	return &BuyRequestHandler{DB: db, Policy: p, Vehicles: vehicles, Profiles: profiles, Wallets: wallets, Requests: requests}
}

type createBuyRequestReq struct {
	Message *string `json:"message"`
}

// Create opens an escrowed offer on a listed vehicle. The buyer must
// hold a VERIFIED profile and a wallet covering the listed price; the
// price is debited before the request row is written, in the same
// transaction.
func (h *BuyRequestHandler) Create(c echo.Context) error {
	vin := c.Param("vin")
	var req createBuyRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := registry.ValidateBuyRequestMessage(req.Message); err != nil {
		return registryError(c, err)
	}
	buyer := actorID(c)
	if buyer == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var buyerProfile *model.Profile
	if p, err := h.Profiles.GetVerifiedByAccount(ctx, buyer); err == nil {
		buyerProfile = &p
	} else if err != sql.ErrNoRows {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
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
	wallet, err := h.Wallets.GetForUpdateTx(ctx, tx, buyer)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusConflict, echo.Map{"error": "wallet not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load wallet failed"})
	}
	if err := h.Policy.CheckCreateBuyRequest(buyer, buyerProfile, &v, &wallet); err != nil {
		return registryError(c, err)
	}

	amount := *v.SalePrice
	if err := h.Wallets.DebitTx(ctx, tx, buyer, amount); err != nil {
		if err == repository.ErrInsufficientFunds {
			return registryError(c, registry.ErrInsufficientFunds)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "debit failed"})
	}

	request := model.BuyRequest{
		VIN:             vin,
		BuyerAccountID:  buyer,
		SellerAccountID: v.OwnerAccountID,
		Amount:          amount,
		Message:         req.Message,
	}
	if err := h.Requests.CreateTx(ctx, tx, &request); err != nil {
		if err == repository.ErrDuplicate {
			return c.JSON(http.StatusConflict, echo.Map{"error": "buy request already exists for this vehicle"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create buy request failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true
	request.CreatedAt = time.Now().UTC()
	return c.JSON(http.StatusCreated, request)
}

// Accept settles an escrowed offer: the escrowed amount is credited to
// the seller and ownership moves to the buyer in the same transaction.
// The ACCEPTED row stays behind as an audit record.
func (h *BuyRequestHandler) Accept(c echo.Context) error {
	vin := c.Param("vin")
	buyer, err := strconv.ParseUint(c.Param("buyer"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid buyer id"})
	}
	actor := actorID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

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

	// Lock order: vehicle first, then request. Both accept and reject
	// follow it, so competing settlements cannot deadlock.
	v, err := h.Vehicles.GetByVINForUpdateTx(ctx, tx, vin)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load vehicle failed"})
	}
	request, err := h.Requests.GetByVINAndBuyerForUpdateTx(ctx, tx, vin, buyer)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "buy request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load buy request failed"})
	}
	if err := h.Policy.CheckAcceptBuyRequest(actor, buyer, &request, &v); err != nil {
		return registryError(c, err)
	}

	ok, err := h.Requests.MarkAcceptedTx(ctx, tx, request.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "accept failed"})
	}
	if !ok {
		return registryError(c, registry.ErrInvalidRequestStatus)
	}
	// Pay out the escrowed amount; the buyer was debited at creation.
	if err := h.Wallets.CreditTx(ctx, tx, actor, request.Amount); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payout failed"})
	}
	if err := h.Vehicles.TransferOwnershipTx(ctx, tx, v.ID, buyer); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transfer failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	request.Status = model.BuyRequestAccepted
	v.OwnerAccountID = buyer
	v.IsForSale = false
	v.SalePrice = nil
	v.TransferCount++

	// Best-effort audit event; the settlement is already committed.
	_ = queue_publisher.PublishTransferCompleted(ctx, queue.TransferCompletedEvent{
		EventID:         uuid.NewString(),
		VIN:             v.VIN,
		VehicleID:       v.ID,
		Brand:           v.Brand,
		Model:           v.Model,
		SellerAccountID: actor,
		BuyerAccountID:  buyer,
		AmountPaid:      request.Amount,
		TransferType:    queue.TransferTypeEscrow,
		TransferCount:   v.TransferCount,
		CompletedAt:     time.Now().UTC().Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, echo.Map{"request": request, "vehicle": v})
}

// Reject refunds the escrowed amount to the buyer and deletes the
// request row; the REJECTED status survives only in this response. The
// seller of record may reject, and so may the vehicle's current owner,
// which lets a new owner clear out stale offers left behind by an
// accepted sale.
func (h *BuyRequestHandler) Reject(c echo.Context) error {
	vin := c.Param("vin")
	buyer, err := strconv.ParseUint(c.Param("buyer"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid buyer id"})
	}
	actor := actorID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

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
	request, err := h.Requests.GetByVINAndBuyerForUpdateTx(ctx, tx, vin, buyer)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "buy request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load buy request failed"})
	}
	if err := h.Policy.CheckRejectBuyRequest(actor, &request, &v); err != nil {
		return registryError(c, err)
	}

	if err := h.Wallets.CreditTx(ctx, tx, request.BuyerAccountID, request.Amount); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refund failed"})
	}
	if err := h.Requests.DeleteTx(ctx, tx, request.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reject failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit failed"})
	}
	committed = true

	request.Status = model.BuyRequestRejected
	return c.JSON(http.StatusOK, request)
}

// List returns the caller's buy requests. ?role=seller lists requests
// addressed to the caller as seller of record; anything else lists the
// caller's own offers.
func (h *BuyRequestHandler) List(c echo.Context) error {
	actor := actorID(c)
	if actor == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var (
		requests []model.BuyRequest
		err      error
	)
	if c.QueryParam("role") == "seller" {
		requests, err = h.Requests.ListBySeller(ctx, actor)
	} else {
		requests, err = h.Requests.ListByBuyer(ctx, actor)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list buy requests failed"})
	}
	return c.JSON(http.StatusOK, requests)
}
