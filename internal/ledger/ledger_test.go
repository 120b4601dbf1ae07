package ledger_test

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banksim/bank-account-ledger/internal/ledger"
	"github.com/banksim/bank-account-ledger/internal/logger"
	"github.com/banksim/bank-account-ledger/internal/models"
	"github.com/banksim/bank-account-ledger/internal/models/events"
	"github.com/banksim/bank-account-ledger/internal/storage/memory"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *capturePublisher) Publish(topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func (p *capturePublisher) count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.topics {
		if t == topic {
			n++
		}
	}
	return n
}

func newTestLedger(t *testing.T) (*ledger.Ledger, *memory.JournalStore, *capturePublisher) {
	t.Helper()
	store := memory.NewJournalStore()
	pub := &capturePublisher{}
	return ledger.NewLedger(store, pub, logger.NewWithWriter(io.Discard)), store, pub
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestCreateAccount(t *testing.T) {
	l, _, _ := newTestLedger(t)

	a, err := l.CreateAccount(100)
	require.NoError(t, err)
	require.Equal(t, 100, a.ID)
	require.Empty(t, a.Balances)

	_, err = l.CreateAccount(100)
	require.ErrorIs(t, err, ledger.ErrDuplicateAccount)
}

func TestDuplicateCreateLeavesStateUntouched(t *testing.T) {
	l, _, _ := newTestLedger(t)

	_, err := l.CreateAccount(100)
	require.NoError(t, err)
	_, err = l.Deposit(context.Background(), 100, "USD", dec(500))
	require.NoError(t, err)

	_, err = l.CreateAccount(100)
	require.ErrorIs(t, err, ledger.ErrDuplicateAccount)

	balance, err := l.Balance(100, "USD")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(500)), "balance = %s", balance)
}

func TestDepositAndWithdraw(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.CreateAccount(100)
	require.NoError(t, err)

	balance, err := l.Deposit(ctx, 100, "USD", dec(50))
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(50)))

	// Withdrawal beyond the balance fails whole, with no partial effect.
	_, err = l.Withdraw(ctx, 100, "USD", dec(80))
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	balance, err = l.Balance(100, "USD")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(50)))

	balance, err = l.Withdraw(ctx, 100, "USD", dec(30))
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(20)))
}

func TestInvalidAmounts(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.CreateAccount(1)
	require.NoError(t, err)
	_, err = l.Deposit(ctx, 1, "USD", dec(200))
	require.NoError(t, err)

	for _, amount := range []decimal.Decimal{decimal.Zero, dec(-5)} {
		_, err := l.Deposit(ctx, 1, "USD", amount)
		assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

		_, err = l.Withdraw(ctx, 1, "USD", amount)
		assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
	}

	balance, err := l.Balance(1, "USD")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(200)), "failed operations must not move the balance")
}

func TestUnknownAccount(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Deposit(ctx, 42, "USD", dec(10))
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
	_, err = l.Withdraw(ctx, 42, "USD", dec(10))
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
	_, err = l.Balance(42, "USD")
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
	_, err = l.Alerts(42)
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestUnknownCurrencyReadsZero(t *testing.T) {
	l, _, _ := newTestLedger(t)

	_, err := l.CreateAccount(7)
	require.NoError(t, err)

	balance, err := l.Balance(7, "JPY")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())

	// Reads are idempotent.
	again, err := l.Balance(7, "JPY")
	require.NoError(t, err)
	assert.True(t, balance.Equal(again))
}

func TestLowBalanceAlertsRepeat(t *testing.T) {
	l, _, pub := newTestLedger(t)
	ctx := context.Background()

	_, err := l.CreateAccount(200)
	require.NoError(t, err)

	_, err = l.Deposit(ctx, 200, "USD", dec(40))
	require.NoError(t, err)

	alerts, err := l.Alerts(200)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Alert: Low balance in USD account.", alerts[0])

	// Still below threshold after the second deposit: the re-scan appends
	// another alert rather than deduplicating.
	_, err = l.Deposit(ctx, 200, "USD", dec(10))
	require.NoError(t, err)

	alerts, err = l.Alerts(200)
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
	assert.Equal(t, 2, pub.count(events.TopicLowBalanceAlert))
}

func TestNoAlertAtOrAboveThreshold(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.CreateAccount(300)
	require.NoError(t, err)

	_, err = l.Deposit(ctx, 300, "USD", dec(100))
	require.NoError(t, err)

	alerts, err := l.Alerts(300)
	require.NoError(t, err)
	assert.Empty(t, alerts, "threshold is strict: exactly 100 does not alert")
}

func TestThresholdOverride(t *testing.T) {
	l, _, _ := newTestLedger(t)
	l.SetLowBalanceThreshold(dec(10))
	ctx := context.Background()

	_, err := l.CreateAccount(1)
	require.NoError(t, err)
	_, err = l.Deposit(ctx, 1, "USD", dec(50))
	require.NoError(t, err)

	alerts, err := l.Alerts(1)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestAlertScanCoversAllCurrencies(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.CreateAccount(1)
	require.NoError(t, err)
	_, err = l.Deposit(ctx, 1, "USD", dec(30))
	require.NoError(t, err)
	_, err = l.Deposit(ctx, 1, "EUR", dec(500))
	require.NoError(t, err)

	// The EUR deposit re-scans every currency: USD is still low, EUR is not.
	alerts, err := l.Alerts(1)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	for _, alert := range alerts {
		assert.Equal(t, "Alert: Low balance in USD account.", alert)
	}
}

func TestJournalRecordsSignedAmounts(t *testing.T) {
	l, store, pub := newTestLedger(t)
	ctx := context.Background()

	_, err := l.CreateAccount(1)
	require.NoError(t, err)
	_, err = l.Deposit(ctx, 1, "USD", dec(200))
	require.NoError(t, err)
	_, err = l.Withdraw(ctx, 1, "USD", dec(75))
	require.NoError(t, err)
	// Failed operations never reach the journal.
	_, err = l.Withdraw(ctx, 1, "USD", dec(10000))
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	entries, err := store.EntriesByAccount(1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Amount.Equal(dec(200)))
	assert.True(t, entries[1].Amount.Equal(dec(-75)))
	assert.Equal(t, 2, pub.count(events.TopicTransactionApplied))
}

func TestJournalEntriesUnknownAccount(t *testing.T) {
	l, _, _ := newTestLedger(t)

	_, err := l.JournalEntries(9)
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestApplyRejectsUnknownKind(t *testing.T) {
	l, _, _ := newTestLedger(t)

	_, err := l.CreateAccount(1)
	require.NoError(t, err)

	_, err = l.Apply(context.Background(), models.Transaction{
		AccountID: 1,
		Kind:      models.Kind("transfer"),
		Currency:  "USD",
		Amount:    dec(5),
	})
	assert.Error(t, err)
}

func TestConcurrentMutationsKeepInvariant(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.CreateAccount(1)
	require.NoError(t, err)
	_, err = l.Deposit(ctx, 1, "USD", dec(1000))
	require.NoError(t, err)

	// 100 deposits of 1 and 100 withdrawals of 10 race against each other;
	// per-account locking must keep the balance exact and non-negative.
	const n = 100
	var wg sync.WaitGroup
	wg.Add(2 * n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := l.Deposit(ctx, 1, "USD", dec(1))
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := l.Withdraw(ctx, 1, "USD", dec(10))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	balance, err := l.Balance(1, "USD")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(1000+n-10*n)), "balance = %s", balance)
}

func TestSnapshotIsolation(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.CreateAccount(1)
	require.NoError(t, err)
	_, err = l.Deposit(ctx, 1, "USD", dec(500))
	require.NoError(t, err)

	a, err := l.Account(1)
	require.NoError(t, err)
	a.Balances["USD"] = dec(0)

	balance, err := l.Balance(1, "USD")
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(500)), "mutating a snapshot must not touch ledger state")
}
