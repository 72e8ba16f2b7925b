package registry

import "github.com/ayaznasser/vehicle-registry/internal/model"

// Policy evaluates who may create or mutate which record in what
// state. The designated government identity is fixed deployment
// configuration, not mutable state, mirroring how the registry
// authority is provisioned.
type Policy struct {
	GovernmentAccountID uint64
}

// NewPolicy returns a Policy bound to the configured government identity.
func NewPolicy(governmentAccountID uint64) *Policy {
	return &Policy{GovernmentAccountID: governmentAccountID}
}

// IsGovernment reports whether the actor is the designated government
// identity.
func (p *Policy) IsGovernment(actor uint64) bool {
	return actor != 0 && actor == p.GovernmentAccountID
}

// CanRegisterVehicle permits vehicle creation only for the government
// identity.
func (p *Policy) CanRegisterVehicle(actor uint64) error {
	if !p.IsGovernment(actor) {
		return ErrUnauthorizedGovernment
	}
	return nil
}

// CanVerifyProfile permits profile verification only for the
// government identity, and only while the profile is still PENDING.
func (p *Policy) CanVerifyProfile(actor uint64, profile *model.Profile) error {
	if !p.IsGovernment(actor) {
		return ErrUnauthorizedGovernment
	}
	if profile.VerificationStatus != model.VerificationPending {
		return ErrAlreadyProcessed
	}
	return nil
}

// CanModifyVehicle permits sale listing, cancel-sale and transfer only
// for the vehicle's current owner.
func (p *Policy) CanModifyVehicle(actor uint64, vehicle *model.Vehicle) error {
	if actor == 0 || actor != vehicle.OwnerAccountID {
		return ErrUnauthorizedOwner
	}
	return nil
}

// CanIssueInspectionReport permits issuance only for a VERIFIED
// profile holding the INSPECTOR role. The role check runs first so an
// unverified non-inspector is reported as the wrong role, matching the
// original ordering.
func (p *Policy) CanIssueInspectionReport(issuer *model.Profile) error {
	if issuer.Role != model.RoleInspector {
		return ErrUnauthorizedIssuer
	}
	if issuer.VerificationStatus != model.VerificationVerified {
		return ErrIssuerNotVerified
	}
	return nil
}

// CanIssueConformityReport permits issuance only for a VERIFIED
// profile holding the CONFORMITY_EXPERT role.
func (p *Policy) CanIssueConformityReport(issuer *model.Profile) error {
	if issuer.Role != model.RoleConformityExpert {
		return ErrUnauthorizedIssuer
	}
	if issuer.VerificationStatus != model.VerificationVerified {
		return ErrIssuerNotVerified
	}
	return nil
}

// CanApproveReport permits approval only when the actor is the current
// owner of the vehicle and the report actually references that
// vehicle. reportVehicleID is the vehicle reference embedded in the
// report at issue time.
func (p *Policy) CanApproveReport(actor uint64, reportVehicleID uint64, vehicle *model.Vehicle) error {
	if reportVehicleID != vehicle.ID {
		return ErrRecordMismatch
	}
	if actor == 0 || actor != vehicle.OwnerAccountID {
		return ErrUnauthorizedOwner
	}
	return nil
}

// CheckCreateBuyRequest validates the preconditions of escrowed offer
// creation: the vehicle is listed with a price, the buyer is not the
// owner, the buyer profile is VERIFIED and the buyer wallet covers the
// price. Uniqueness of (VIN, buyer) is enforced by the storage key,
// not here.
func (p *Policy) CheckCreateBuyRequest(buyer uint64, buyerProfile *model.Profile, vehicle *model.Vehicle, wallet *model.Wallet) error {
	if !vehicle.IsActive {
		return ErrVehicleInactive
	}
	if !vehicle.IsForSale {
		return ErrNotForSale
	}
	if vehicle.SalePrice == nil {
		return ErrSalePriceNotSet
	}
	if buyer == vehicle.OwnerAccountID {
		return ErrCannotBuyOwnVehicle
	}
	if buyerProfile == nil || buyerProfile.VerificationStatus != model.VerificationVerified {
		return ErrBuyerNotVerified
	}
	if wallet == nil || wallet.Balance < *vehicle.SalePrice {
		return ErrInsufficientFunds
	}
	return nil
}

// CheckAcceptBuyRequest validates the preconditions of accepting an
// offer: the request is still PENDING, the caller is both the seller
// of record and the current owner, the supplied buyer matches the
// request and the vehicle is still listed.
func (p *Policy) CheckAcceptBuyRequest(actor uint64, buyer uint64, request *model.BuyRequest, vehicle *model.Vehicle) error {
	if request.Status != model.BuyRequestPending {
		return ErrInvalidRequestStatus
	}
	if actor == 0 || request.SellerAccountID != actor {
		return ErrUnauthorizedOwner
	}
	if vehicle.OwnerAccountID != actor {
		return ErrUnauthorizedOwner
	}
	if request.BuyerAccountID != buyer {
		return ErrBuyerMismatch
	}
	if !vehicle.IsForSale {
		return ErrNotForSale
	}
	return nil
}

// CheckRejectBuyRequest validates the preconditions of rejecting an
// offer: the request is still PENDING and the caller is the seller of
// record. After an accepted sale the seller of record for leftover
// requests is the previous owner, so rejection additionally accepts
// the vehicle's current owner; stale offers left behind by an accept
// can then be refunded by the new owner.
func (p *Policy) CheckRejectBuyRequest(actor uint64, request *model.BuyRequest, vehicle *model.Vehicle) error {
	if request.Status != model.BuyRequestPending {
		return ErrInvalidRequestStatus
	}
	if actor == 0 {
		return ErrUnauthorizedOwner
	}
	if request.SellerAccountID != actor && vehicle.OwnerAccountID != actor {
		return ErrUnauthorizedOwner
	}
	return nil
}

// CheckDirectTransfer validates an escrow-free ownership transfer: the
// caller owns the vehicle and the recipient holds a VERIFIED profile.
func (p *Policy) CheckDirectTransfer(actor uint64, vehicle *model.Vehicle, recipientProfile *model.Profile) error {
	if err := p.CanModifyVehicle(actor, vehicle); err != nil {
		return err
	}
	if recipientProfile == nil || recipientProfile.VerificationStatus != model.VerificationVerified {
		return ErrBuyerNotVerified
	}
	return nil
}
