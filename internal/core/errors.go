package core

import "errors"

// Domain error kinds. Services wrap these with context via fmt.Errorf("%w"),
// callers match with errors.Is. No partial mutation ever survives one of
// these: every mutating operation is a single transaction.
var (
	// ErrInsufficientStock: demand exceeds available supply and backorder is
	// disallowed (Reserve), or a transfer exceeds the source's availability.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidQuantity: non-positive quantity on reserve/transfer/receive.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidArgument: malformed non-quantity input, e.g. a transfer whose
	// source and destination are the same warehouse, or a blank code.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvariantViolation: a mutation would leave qty_reserved > qty_on_hand
	// (outside the explicit backorder path) or drive qty_on_hand negative.
	ErrInvariantViolation = errors.New("stock invariant violation")

	// ErrNotFound: referenced tenant, warehouse, or variant does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists: a create collided with an existing row, e.g. a
	// duplicate warehouse code or variant SKU within a tenant.
	ErrAlreadyExists = errors.New("already exists")

	// ErrLockTimeout: a row lock could not be acquired in time. The caller may
	// retry the whole operation; nothing was applied.
	ErrLockTimeout = errors.New("lock timeout")
)
