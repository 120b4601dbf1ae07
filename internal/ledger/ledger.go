package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/banksim/bank-account-ledger/internal/interfaces"
	"github.com/banksim/bank-account-ledger/internal/models"
	"github.com/banksim/bank-account-ledger/internal/models/events"
)

// DefaultLowBalanceThreshold is the balance below which an alert is
// recorded, applied uniformly to every currency.
var DefaultLowBalanceThreshold = decimal.NewFromInt(100)

// Ledger owns every account and applies all deposits and withdrawals.
// Mutations to a given account are serialized behind that account's mutex,
// so the non-negative balance invariant holds even when scheduled
// transactions fire concurrently with operator commands.
type Ledger struct {
	store     interfaces.JournalStore
	publisher interfaces.EventPublisher
	log       zerolog.Logger
	threshold decimal.Decimal

	mapMu    sync.Mutex // protects accounts and muMap
	accounts map[int]*models.Account
	muMap    map[int]*sync.Mutex
}

// NewLedger creates an empty ledger. Applied transactions are journaled to
// store and mirrored to publisher; failures of either are logged and never
// fail the operation itself.
func NewLedger(store interfaces.JournalStore, publisher interfaces.EventPublisher, log zerolog.Logger) *Ledger {
	return &Ledger{
		store:     store,
		publisher: publisher,
		log:       log,
		threshold: DefaultLowBalanceThreshold,
		accounts:  make(map[int]*models.Account),
		muMap:     make(map[int]*sync.Mutex),
	}
}

// SetLowBalanceThreshold overrides the alert threshold. Call before any
// transactions are applied.
func (l *Ledger) SetLowBalanceThreshold(threshold decimal.Decimal) {
	l.threshold = threshold
}

// CreateAccount registers a new account under the given number. The number
// must be unused; on ErrDuplicateAccount the existing account is untouched.
func (l *Ledger) CreateAccount(id int) (*models.Account, error) {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	if _, exists := l.accounts[id]; exists {
		return nil, ErrDuplicateAccount
	}
	a := models.NewAccount(id)
	l.accounts[id] = a
	l.muMap[id] = &sync.Mutex{}

	l.log.Info().Int("account_id", id).Msg("account created")
	return snapshot(a), nil
}

// lookup resolves an account and its mutex. Accounts are never removed, so
// both stay valid after mapMu is released.
func (l *Ledger) lookup(id int) (*models.Account, *sync.Mutex, error) {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	a, ok := l.accounts[id]
	if !ok {
		return nil, nil, ErrAccountNotFound
	}
	return a, l.muMap[id], nil
}

// Deposit credits amount to the account's balance in the given currency and
// re-evaluates low-balance alerts. Returns the new balance.
func (l *Ledger) Deposit(ctx context.Context, id int, currency string, amount decimal.Decimal) (decimal.Decimal, error) {
	return l.apply(ctx, models.Transaction{
		ID:        uuid.New().String(),
		AccountID: id,
		Kind:      models.Deposit,
		Currency:  currency,
		Amount:    amount,
		CreatedAt: time.Now(),
	})
}

// Withdraw debits amount from the account's balance in the given currency
// and re-evaluates low-balance alerts. The balance never goes negative: a
// withdrawal exceeding it fails with ErrInsufficientFunds and changes
// nothing.
func (l *Ledger) Withdraw(ctx context.Context, id int, currency string, amount decimal.Decimal) (decimal.Decimal, error) {
	return l.apply(ctx, models.Transaction{
		ID:        uuid.New().String(),
		AccountID: id,
		Kind:      models.Withdraw,
		Currency:  currency,
		Amount:    amount,
		CreatedAt: time.Now(),
	})
}

// Apply executes a prepared transaction. It is the single entry point shared
// by immediate operations and by the scheduler at fire time.
func (l *Ledger) Apply(ctx context.Context, tx models.Transaction) (decimal.Decimal, error) {
	if tx.Kind != models.Deposit && tx.Kind != models.Withdraw {
		return decimal.Zero, fmt.Errorf("unknown transaction kind %q", tx.Kind)
	}
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	return l.apply(ctx, tx)
}

func (l *Ledger) apply(ctx context.Context, tx models.Transaction) (decimal.Decimal, error) {
	a, mu, err := l.lookup(tx.AccountID)
	if err != nil {
		return decimal.Zero, err
	}

	mu.Lock()
	defer mu.Unlock()

	if tx.Amount.Cmp(decimal.Zero) <= 0 {
		return decimal.Zero, ErrInvalidAmount
	}

	balance := a.Balance(tx.Currency)
	signed := tx.Amount
	switch tx.Kind {
	case models.Deposit:
		balance = balance.Add(tx.Amount)
	case models.Withdraw:
		if tx.Amount.Cmp(balance) > 0 {
			return decimal.Zero, ErrInsufficientFunds
		}
		balance = balance.Sub(tx.Amount)
		signed = tx.Amount.Neg()
	}
	a.Balances[tx.Currency] = balance

	l.scanAlerts(a)
	l.record(ctx, tx, signed, balance)
	return balance, nil
}

// scanAlerts re-scans every currency of the account and appends one alert
// per currency strictly below the threshold. A persistently low balance
// accumulates one alert per transaction; duplicates are intentional.
// Caller holds the account mutex.
func (l *Ledger) scanAlerts(a *models.Account) {
	for currency, balance := range a.Balances {
		if balance.Cmp(l.threshold) >= 0 {
			continue
		}
		a.Alerts = append(a.Alerts, fmt.Sprintf("Alert: Low balance in %s account.", currency))

		l.log.Warn().
			Int("account_id", a.ID).
			Str("currency", currency).
			Str("balance", balance.String()).
			Msg("low balance")

		if err := l.publisher.Publish(events.TopicLowBalanceAlert, events.LowBalanceAlert{
			AccountID:  a.ID,
			Currency:   currency,
			Balance:    balance,
			Threshold:  l.threshold,
			OccurredAt: time.Now(),
		}); err != nil {
			l.log.Error().Err(err).Msg("publish low balance alert")
		}
	}
}

// record journals the applied transaction and publishes its event. Sink
// failures are logged; the balance change has already happened and stands.
func (l *Ledger) record(ctx context.Context, tx models.Transaction, signed, balance decimal.Decimal) {
	entry := models.JournalEntry{
		ID:        tx.ID,
		AccountID: tx.AccountID,
		Currency:  tx.Currency,
		Amount:    signed,
		CreatedAt: tx.CreatedAt,
	}
	if err := l.store.SaveEntry(ctx, entry); err != nil {
		l.log.Error().Err(err).Str("transaction_id", tx.ID).Msg("journal entry not saved")
	}

	if err := l.publisher.Publish(events.TopicTransactionApplied, events.TransactionApplied{
		TransactionID: tx.ID,
		AccountID:     tx.AccountID,
		Kind:          string(tx.Kind),
		Currency:      tx.Currency,
		Amount:        tx.Amount,
		Balance:       balance,
		OccurredAt:    tx.CreatedAt,
	}); err != nil {
		l.log.Error().Err(err).Str("transaction_id", tx.ID).Msg("publish transaction applied")
	}
}

// Balance returns the balance held in the given currency, zero for a
// currency the account has never used.
func (l *Ledger) Balance(id int, currency string) (decimal.Decimal, error) {
	a, mu, err := l.lookup(id)
	if err != nil {
		return decimal.Zero, err
	}
	mu.Lock()
	defer mu.Unlock()
	return a.Balance(currency), nil
}

// Alerts returns the account's alert history in chronological order.
func (l *Ledger) Alerts(id int) ([]string, error) {
	a, mu, err := l.lookup(id)
	if err != nil {
		return nil, err
	}
	mu.Lock()
	defer mu.Unlock()

	out := make([]string, len(a.Alerts))
	copy(out, a.Alerts)
	return out, nil
}

// Account returns a snapshot of the account's current state.
func (l *Ledger) Account(id int) (*models.Account, error) {
	a, mu, err := l.lookup(id)
	if err != nil {
		return nil, err
	}
	mu.Lock()
	defer mu.Unlock()
	return snapshot(a), nil
}

// JournalEntries returns the audit journal for one account.
func (l *Ledger) JournalEntries(id int) ([]models.JournalEntry, error) {
	if _, _, err := l.lookup(id); err != nil {
		return nil, err
	}
	return l.store.EntriesByAccount(id)
}

// AllJournalEntries returns the full audit journal.
func (l *Ledger) AllJournalEntries() ([]models.JournalEntry, error) {
	return l.store.Entries()
}

// snapshot copies an account so callers cannot mutate ledger state.
// Caller holds the account mutex (or the account is freshly created).
func snapshot(a *models.Account) *models.Account {
	cp := models.Account{
		ID:       a.ID,
		Balances: make(map[string]decimal.Decimal, len(a.Balances)),
		Alerts:   make([]string, len(a.Alerts)),
	}
	for c, b := range a.Balances {
		cp.Balances[c] = b
	}
	copy(cp.Alerts, a.Alerts)
	return &cp
}
