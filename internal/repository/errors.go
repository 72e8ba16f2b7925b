// Package repository defines the data access layer and the sentinel
// errors shared across repositories. Handlers compare against these
// values with errors.Is to map storage failures onto HTTP responses
// without inspecting driver-specific errors.
package repository

import "errors"

// ErrDuplicate is returned when an insert collides with a uniqueness
// key derived from the record's stable fields (a VIN, an
// (account, name) profile pair, a (VIN, buyer) request pair or a
// (vehicle, issuer, report id) triple). Handlers translate this into
// an HTTP 409 response.
var ErrDuplicate = errors.New("duplicate record")

// ErrInsufficientFunds is returned by wallet debits and transfers when
// the source balance does not cover the amount. The guarded UPDATE
// never lets a balance go negative.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrEmailExists is returned when account registration collides with
// an existing email address.
var ErrEmailExists = errors.New("email already exists")
