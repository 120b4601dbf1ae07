package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicTransactionApplied = "transaction_applied"
	TopicLowBalanceAlert    = "low_balance_alert"
)

type TransactionApplied struct {
	TransactionID string          `json:"transaction_id"`
	AccountID     int             `json:"account_id"`
	Kind          string          `json:"kind"`
	Currency      string          `json:"currency"`
	Amount        decimal.Decimal `json:"amount"`
	Balance       decimal.Decimal `json:"balance"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

type LowBalanceAlert struct {
	AccountID  int             `json:"account_id"`
	Currency   string          `json:"currency"`
	Balance    decimal.Decimal `json:"balance"`
	Threshold  decimal.Decimal `json:"threshold"`
	OccurredAt time.Time       `json:"occurred_at"`
}
