package model

import "time"

// BuyRequestStatus mirrors the `buy_requests.status` enum. A request
// starts PENDING and terminates on ACCEPTED or REJECTED; both are
// final. REJECTED only ever appears in responses and events because
// rejected rows are deleted once the escrow is refunded.
type BuyRequestStatus string

const (
	BuyRequestPending  BuyRequestStatus = "PENDING"
	BuyRequestAccepted BuyRequestStatus = "ACCEPTED"
	BuyRequestRejected BuyRequestStatus = "REJECTED"
)

// BuyRequest represents an escrowed purchase offer in the
// `buy_requests` table. The buyer's wallet is debited by Amount when
// the request is created; those funds stay in custody of the request
// row until the seller accepts (paid out to the seller) or rejects
// (refunded to the buyer). Seller is a snapshot of the vehicle owner
// at creation time. At most one live request exists per (VIN, buyer).
type BuyRequest struct {
	ID              uint64           // buy_requests.id
	VIN             string           // buy_requests.vin
	BuyerAccountID  uint64           // buy_requests.buyer_account_id
	SellerAccountID uint64           // buy_requests.seller_account_id
	Amount          uint64           // buy_requests.amount
	Status          BuyRequestStatus // buy_requests.status
	Message         *string          // buy_requests.message (nullable)
	CreatedAt       time.Time        // buy_requests.created_at
}
