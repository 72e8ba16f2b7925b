// Package queue defines message payloads exchanged over the message broker.
package queue

// TransferCompletedEvent is published when a vehicle changes hands,
// either through an accepted escrow request or a direct transfer. It
// carries enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type TransferCompletedEvent struct {
	EventID         string `json:"event_id"` // uuid, for consumer-side dedup
	VIN             string `json:"vin"`
	VehicleID       uint64 `json:"vehicle_id"`
	Brand           string `json:"brand"`
	Model           string `json:"model"`
	SellerAccountID uint64 `json:"seller_account_id"`
	BuyerAccountID  uint64 `json:"buyer_account_id"`
	AmountPaid      uint64 `json:"amount_paid"`    // zero for direct transfers
	TransferType    string `json:"transfer_type"`  // ESCROW | DIRECT
	TransferCount   uint32 `json:"transfer_count"` // vehicle's counter after the transfer
	CompletedAt     string `json:"completed_at"`   // RFC 3339 UTC
}

// Transfer type values carried in TransferCompletedEvent.
const (
	TransferTypeEscrow = "ESCROW"
	TransferTypeDirect = "DIRECT"
)
