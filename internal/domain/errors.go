package domain

import "errors"

// Ledger domain errors
var (
	// ErrInvalidQuantity is returned when a quantity is zero or negative
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrInsufficientStock is returned when a holder does not have enough
	// quantity to cover a debit; the absence of a ledger line counts as zero
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrStockNotFound is returned when a referenced stock item does not exist
	ErrStockNotFound = errors.New("stock item not found")

	// ErrTransferNotFound is returned when a transfer request cannot be found
	ErrTransferNotFound = errors.New("transfer request not found")

	// ErrInvalidTransferState is returned when a decision is attempted on a
	// transfer that already reached a terminal state
	ErrInvalidTransferState = errors.New("transfer is not in requested state")

	// ErrSameHolder is returned when source and destination holders match
	ErrSameHolder = errors.New("source and destination holders must differ")

	// ErrMissingActor is returned when an operation requires an acting user
	ErrMissingActor = errors.New("acting user is required")

	// ErrMissingSite is returned when a site-scoped operation has no site
	ErrMissingSite = errors.New("site is required")
)
