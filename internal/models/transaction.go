package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind discriminates the two supported transaction types.
type Kind string

const (
	Deposit  Kind = "deposit"
	Withdraw Kind = "withdraw"
)

// Transaction represents an intent to move money in or out of one account.
type Transaction struct {
	ID        string
	AccountID int
	Kind      Kind
	Currency  string
	Amount    decimal.Decimal
	CreatedAt time.Time
}

// ScheduledTransaction is a transaction registered to execute at FireAt.
// It fires exactly once and cannot be cancelled.
type ScheduledTransaction struct {
	Transaction
	FireAt time.Time
}
