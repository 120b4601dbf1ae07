package models

import "github.com/shopspring/decimal"

// Account holds the per-currency balances and the alert history for one
// account. Absent currency means balance zero. Alerts are append-only and
// kept in chronological order.
type Account struct {
	ID       int
	Balances map[string]decimal.Decimal
	Alerts   []string
}

// NewAccount creates an empty account with the given number.
func NewAccount(id int) *Account {
	return &Account{
		ID:       id,
		Balances: make(map[string]decimal.Decimal),
	}
}

// Balance returns the balance for a currency, zero when the currency has
// never been touched.
func (a *Account) Balance(currency string) decimal.Decimal {
	if b, ok := a.Balances[currency]; ok {
		return b
	}
	return decimal.Zero
}
