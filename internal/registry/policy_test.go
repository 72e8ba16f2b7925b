package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ayaznasser/vehicle-registry/internal/model"
)

const govID uint64 = 42

func listedVehicle(owner uint64, price uint64) *model.Vehicle {
	return &model.Vehicle{
		ID:             7,
		VIN:            "1HGBH41JXMN109186",
		OwnerAccountID: owner,
		IsActive:       true,
		IsForSale:      true,
		SalePrice:      &price,
	}
}

func verifiedProfile(account uint64, role model.Role) *model.Profile {
	return &model.Profile{
		AccountID:          account,
		Name:               "main",
		Role:               role,
		VerificationStatus: model.VerificationVerified,
	}
}

func TestCanRegisterVehicle(t *testing.T) {
	p := NewPolicy(govID)

	require.NoError(t, p.CanRegisterVehicle(govID))
	require.ErrorIs(t, p.CanRegisterVehicle(99), ErrUnauthorizedGovernment)
	require.ErrorIs(t, p.CanRegisterVehicle(0), ErrUnauthorizedGovernment)
}

func TestCanVerifyProfile(t *testing.T) {
	p := NewPolicy(govID)
	pending := &model.Profile{VerificationStatus: model.VerificationPending}

	require.NoError(t, p.CanVerifyProfile(govID, pending))
	require.ErrorIs(t, p.CanVerifyProfile(99, pending), ErrUnauthorizedGovernment)

	done := &model.Profile{VerificationStatus: model.VerificationVerified}
	require.ErrorIs(t, p.CanVerifyProfile(govID, done), ErrAlreadyProcessed)

	rejected := &model.Profile{VerificationStatus: model.VerificationRejected}
	require.ErrorIs(t, p.CanVerifyProfile(govID, rejected), ErrAlreadyProcessed)
}

func TestCanModifyVehicle(t *testing.T) {
	p := NewPolicy(govID)
	v := listedVehicle(10, 500)

	require.NoError(t, p.CanModifyVehicle(10, v))
	require.ErrorIs(t, p.CanModifyVehicle(11, v), ErrUnauthorizedOwner)
	require.ErrorIs(t, p.CanModifyVehicle(0, v), ErrUnauthorizedOwner)
}

func TestCanIssueInspectionReport(t *testing.T) {
	p := NewPolicy(govID)

	require.NoError(t, p.CanIssueInspectionReport(verifiedProfile(5, model.RoleInspector)))

	// Role is checked before verification, so an unverified non-inspector
	// reports the role failure.
	wrongRole := &model.Profile{Role: model.RoleNormal, VerificationStatus: model.VerificationPending}
	require.ErrorIs(t, p.CanIssueInspectionReport(wrongRole), ErrUnauthorizedIssuer)

	unverified := &model.Profile{Role: model.RoleInspector, VerificationStatus: model.VerificationPending}
	require.ErrorIs(t, p.CanIssueInspectionReport(unverified), ErrIssuerNotVerified)
}

func TestCanIssueConformityReport(t *testing.T) {
	p := NewPolicy(govID)

	require.NoError(t, p.CanIssueConformityReport(verifiedProfile(5, model.RoleConformityExpert)))
	require.ErrorIs(t, p.CanIssueConformityReport(verifiedProfile(5, model.RoleInspector)), ErrUnauthorizedIssuer)

	unverified := &model.Profile{Role: model.RoleConformityExpert, VerificationStatus: model.VerificationRejected}
	require.ErrorIs(t, p.CanIssueConformityReport(unverified), ErrIssuerNotVerified)
}

func TestCanApproveReport(t *testing.T) {
	p := NewPolicy(govID)
	v := listedVehicle(10, 500)

	require.NoError(t, p.CanApproveReport(10, v.ID, v))

	// Vehicle-reference mismatch is reported before ownership.
	require.ErrorIs(t, p.CanApproveReport(11, v.ID+1, v), ErrRecordMismatch)
	require.ErrorIs(t, p.CanApproveReport(11, v.ID, v), ErrUnauthorizedOwner)
}

func TestCheckCreateBuyRequest(t *testing.T) {
	p := NewPolicy(govID)
	buyer := uint64(20)
	profile := verifiedProfile(buyer, model.RoleNormal)
	wallet := &model.Wallet{AccountID: buyer, Balance: 1000}

	require.NoError(t, p.CheckCreateBuyRequest(buyer, profile, listedVehicle(10, 500), wallet))

	inactive := listedVehicle(10, 500)
	inactive.IsActive = false
	require.ErrorIs(t, p.CheckCreateBuyRequest(buyer, profile, inactive, wallet), ErrVehicleInactive)

	unlisted := listedVehicle(10, 500)
	unlisted.IsForSale = false
	require.ErrorIs(t, p.CheckCreateBuyRequest(buyer, profile, unlisted, wallet), ErrNotForSale)

	noPrice := listedVehicle(10, 500)
	noPrice.SalePrice = nil
	require.ErrorIs(t, p.CheckCreateBuyRequest(buyer, profile, noPrice, wallet), ErrSalePriceNotSet)

	require.ErrorIs(t, p.CheckCreateBuyRequest(10, verifiedProfile(10, model.RoleNormal), listedVehicle(10, 500),
		&model.Wallet{AccountID: 10, Balance: 1000}), ErrCannotBuyOwnVehicle)

	require.ErrorIs(t, p.CheckCreateBuyRequest(buyer, nil, listedVehicle(10, 500), wallet), ErrBuyerNotVerified)

	pendingProfile := &model.Profile{AccountID: buyer, VerificationStatus: model.VerificationPending}
	require.ErrorIs(t, p.CheckCreateBuyRequest(buyer, pendingProfile, listedVehicle(10, 500), wallet), ErrBuyerNotVerified)

	broke := &model.Wallet{AccountID: buyer, Balance: 499}
	require.ErrorIs(t, p.CheckCreateBuyRequest(buyer, profile, listedVehicle(10, 500), broke), ErrInsufficientFunds)

	// Exact balance covers the price.
	exact := &model.Wallet{AccountID: buyer, Balance: 500}
	require.NoError(t, p.CheckCreateBuyRequest(buyer, profile, listedVehicle(10, 500), exact))
}

func TestCheckAcceptBuyRequest(t *testing.T) {
	p := NewPolicy(govID)
	seller, buyer := uint64(10), uint64(20)
	req := &model.BuyRequest{
		VIN:             "1HGBH41JXMN109186",
		BuyerAccountID:  buyer,
		SellerAccountID: seller,
		Amount:          500,
		Status:          model.BuyRequestPending,
	}

	require.NoError(t, p.CheckAcceptBuyRequest(seller, buyer, req, listedVehicle(seller, 500)))

	settled := *req
	settled.Status = model.BuyRequestAccepted
	require.ErrorIs(t, p.CheckAcceptBuyRequest(seller, buyer, &settled, listedVehicle(seller, 500)), ErrInvalidRequestStatus)

	require.ErrorIs(t, p.CheckAcceptBuyRequest(99, buyer, req, listedVehicle(seller, 500)), ErrUnauthorizedOwner)

	// Seller of record no longer owns the vehicle.
	require.ErrorIs(t, p.CheckAcceptBuyRequest(seller, buyer, req, listedVehicle(99, 500)), ErrUnauthorizedOwner)

	require.ErrorIs(t, p.CheckAcceptBuyRequest(seller, 21, req, listedVehicle(seller, 500)), ErrBuyerMismatch)

	delisted := listedVehicle(seller, 500)
	delisted.IsForSale = false
	require.ErrorIs(t, p.CheckAcceptBuyRequest(seller, buyer, req, delisted), ErrNotForSale)
}

func TestCheckRejectBuyRequest(t *testing.T) {
	p := NewPolicy(govID)
	seller, buyer := uint64(10), uint64(20)
	req := &model.BuyRequest{
		BuyerAccountID:  buyer,
		SellerAccountID: seller,
		Status:          model.BuyRequestPending,
	}

	require.NoError(t, p.CheckRejectBuyRequest(seller, req, listedVehicle(seller, 500)))

	settled := *req
	settled.Status = model.BuyRequestAccepted
	require.ErrorIs(t, p.CheckRejectBuyRequest(seller, &settled, listedVehicle(seller, 500)), ErrInvalidRequestStatus)

	require.ErrorIs(t, p.CheckRejectBuyRequest(99, req, listedVehicle(seller, 500)), ErrUnauthorizedOwner)
	require.ErrorIs(t, p.CheckRejectBuyRequest(0, req, listedVehicle(seller, 500)), ErrUnauthorizedOwner)

	// After a sale the new owner may refund stale offers addressed to
	// the previous owner.
	newOwner := uint64(30)
	require.NoError(t, p.CheckRejectBuyRequest(newOwner, req, listedVehicle(newOwner, 500)))
}

func TestCheckDirectTransfer(t *testing.T) {
	p := NewPolicy(govID)
	owner, recipient := uint64(10), uint64(20)
	v := listedVehicle(owner, 500)

	require.NoError(t, p.CheckDirectTransfer(owner, v, verifiedProfile(recipient, model.RoleNormal)))
	require.ErrorIs(t, p.CheckDirectTransfer(recipient, v, verifiedProfile(recipient, model.RoleNormal)), ErrUnauthorizedOwner)
	require.ErrorIs(t, p.CheckDirectTransfer(owner, v, nil), ErrBuyerNotVerified)

	pending := &model.Profile{AccountID: recipient, VerificationStatus: model.VerificationPending}
	require.ErrorIs(t, p.CheckDirectTransfer(owner, v, pending), ErrBuyerNotVerified)
}
