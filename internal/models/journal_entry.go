package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry records one applied transaction for the audit journal.
// Amount is signed: deposits positive, withdrawals negative.
type JournalEntry struct {
	ID        string
	AccountID int
	Currency  string
	Amount    decimal.Decimal
	CreatedAt time.Time
}
