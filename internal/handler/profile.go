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

// ProfileHandler serves identity profile endpoints. An account may hold
// several named profiles (e.g. a personal one and an inspector one);
// each starts PENDING and becomes usable for gated operations only
// after the government verifies it.
type ProfileHandler struct {
	Policy   *registry.Policy
	Profiles *repository.ProfileRepo
}

func NewProfileHandler(p *registry.Policy, profiles *repository.ProfileRepo) *ProfileHandler {
	return &ProfileHandler{Policy: p, Profiles: profiles}
}

type createProfileReq struct {
	Name                string `json:"name"`
	PublicDataURI       string `json:"public_data_uri"`
	PrivateDataURI      string `json:"private_data_uri"`
	EncryptedKeyForGov  string `json:"encrypted_key_for_gov"`
	EncryptedKeyForUser string `json:"encrypted_key_for_user"`
	Role                string `json:"role"`
}

type verifyProfileReq struct {
	Status string `json:"status"` // VERIFIED | REJECTED
}

// Create registers a new PENDING profile for the caller.
func (h *ProfileHandler) Create(c echo.Context) error {
	var req createProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	actor := actorID(c)
	if actor == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role := model.Role(req.Role)
	if req.Role == "" {
		role = model.RoleNormal
	}
	p := model.Profile{
		AccountID:           actor,
		Name:                req.Name,
		PublicDataURI:       req.PublicDataURI,
		PrivateDataURI:      req.PrivateDataURI,
		EncryptedKeyForGov:  req.EncryptedKeyForGov,
		EncryptedKeyForUser: req.EncryptedKeyForUser,
		Role:                role,
	}
	if err := registry.ValidateProfile(&p); err != nil {
		return registryError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Profiles.Create(ctx, &p); err != nil {
		if err == repository.ErrDuplicate {
			return c.JSON(http.StatusConflict, echo.Map{"error": "profile name already exists for this account"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create profile failed"})
	}
	return c.JSON(http.StatusCreated, p)
}

// List returns the caller's own profiles.
func (h *ProfileHandler) List(c echo.Context) error {
	actor := actorID(c)
	if actor == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	profiles, err := h.Profiles.ListByAccount(ctx, actor)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list profiles failed"})
	}
	return c.JSON(http.StatusOK, profiles)
}

// Get returns a single profile. Only the profile holder and the
// government may read one; private URIs and key blobs are not exposed
// to anyone else.
func (h *ProfileHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid profile id"})
	}
	actor := actorID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Profiles.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}
	if p.AccountID != actor && !h.Policy.IsGovernment(actor) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, p)
}

// Verify stamps a PENDING profile VERIFIED or REJECTED. Government
// only; the decision is final and a second verification attempt
// conflicts.
func (h *ProfileHandler) Verify(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid profile id"})
	}
	var req verifyProfileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := model.VerificationStatus(req.Status)
	if status != model.VerificationVerified && status != model.VerificationRejected {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be VERIFIED or REJECTED"})
	}
	actor := actorID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Profiles.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "profile not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}
	if err := h.Policy.CanVerifyProfile(actor, &p); err != nil {
		return registryError(c, err)
	}

	now := time.Now().UTC()
	ok, err := h.Profiles.SetVerification(ctx, id, status, actor, now)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verify profile failed"})
	}
	if !ok {
		// A concurrent verifier won the PENDING guard.
		return registryError(c, registry.ErrAlreadyProcessed)
	}
	p.VerificationStatus = status
	p.VerifiedAt = &now
	p.VerifiedBy = &actor
	return c.JSON(http.StatusOK, p)
}
