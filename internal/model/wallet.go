package model

import "time"

// Wallet holds the spendable balance of an account in the `wallets`
// table. Balances move only through the repository transfer/debit/
// credit primitives, always inside the same transaction as the record
// mutation they pay for.
type Wallet struct {
	AccountID uint64    // wallets.account_id
	Balance   uint64    // wallets.balance
	UpdatedAt time.Time // wallets.updated_at
}
