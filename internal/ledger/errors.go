package ledger

import "errors"

// Domain errors reported to the operator. All are recoverable; none are
// fatal to the process.
var (
	// ErrDuplicateAccount is returned when creating an account whose
	// number is already taken.
	ErrDuplicateAccount = errors.New("account number already exists")

	// ErrAccountNotFound is returned when the target account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidAmount is returned for deposits or withdrawals of a
	// non-positive amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds is returned when a withdrawal exceeds the
	// balance held in the requested currency.
	ErrInsufficientFunds = errors.New("insufficient balance")
)
