package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/banksim/bank-account-ledger/internal/ledger"
	"github.com/banksim/bank-account-ledger/internal/models"
)

// ErrStopped is returned by Schedule after the scheduler has been stopped.
var ErrStopped = errors.New("scheduler is stopped")

// Executor applies a transaction at fire time. Satisfied by *ledger.Ledger.
type Executor interface {
	Apply(ctx context.Context, tx models.Transaction) (decimal.Decimal, error)
}

// Scheduler holds pending deferred transactions in a min-heap keyed by fire
// time and drains them from a single dispatcher goroutine. Each due entry is
// fired in its own goroutine, so fires for the same account may run
// concurrently with each other and with operator commands; the ledger's
// per-account locking keeps that safe.
type Scheduler struct {
	executor Executor
	log      zerolog.Logger

	mu      sync.Mutex
	pending txHeap
	stopped bool

	wake      chan struct{}
	closeChan chan struct{}
	wg        sync.WaitGroup
}

// New creates a scheduler and starts its dispatcher.
func New(executor Executor, log zerolog.Logger) *Scheduler {
	s := &Scheduler{
		executor:  executor,
		log:       log,
		wake:      make(chan struct{}, 1),
		closeChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.dispatch()
	return s
}

// Schedule registers a transaction to execute at fireAt and returns without
// blocking. A fireAt at or before now makes the entry eligible immediately.
// The amount is not validated here; the executor validates at fire time.
func (s *Scheduler) Schedule(accountID int, kind models.Kind, currency string, amount decimal.Decimal, fireAt time.Time) (*models.ScheduledTransaction, error) {
	st := &models.ScheduledTransaction{
		Transaction: models.Transaction{
			ID:        uuid.New().String(),
			AccountID: accountID,
			Kind:      kind,
			Currency:  currency,
			Amount:    amount,
			CreatedAt: time.Now(),
		},
		FireAt: fireAt,
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, ErrStopped
	}
	heap.Push(&s.pending, st)
	s.mu.Unlock()

	// Nudge the dispatcher in case the new entry is now the earliest.
	select {
	case s.wake <- struct{}{}:
	default:
	}

	s.log.Info().
		Str("transaction_id", st.ID).
		Int("account_id", accountID).
		Str("kind", string(kind)).
		Time("fire_at", fireAt).
		Msg("transaction scheduled")
	return st, nil
}

// Pending reports how many transactions have not fired yet.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending.Len()
}

// Stop halts the dispatcher and waits for in-flight fires to finish.
// Entries still pending are discarded; individual entries can never be
// cancelled while the scheduler runs.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.closeChan)
	s.wg.Wait()
}

// dispatch sleeps until the earliest fire time, pops everything due, and
// hands each entry to its own goroutine. A wake signal re-evaluates the
// earliest entry after a Schedule call.
func (s *Scheduler) dispatch() {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		var delay time.Duration
		hasPending := s.pending.Len() > 0
		if hasPending {
			delay = time.Until(s.pending[0].FireAt)
		}
		s.mu.Unlock()

		if !hasPending {
			select {
			case <-s.wake:
				continue
			case <-s.closeChan:
				return
			}
		}

		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-s.wake:
				timer.Stop()
				continue
			case <-s.closeChan:
				timer.Stop()
				return
			}
		}

		for _, st := range s.popDue(time.Now()) {
			s.wg.Add(1)
			go s.fire(st)
		}
	}
}

// popDue removes and returns every entry with FireAt at or before now.
func (s *Scheduler) popDue(now time.Time) []*models.ScheduledTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*models.ScheduledTransaction
	for s.pending.Len() > 0 && !s.pending[0].FireAt.After(now) {
		due = append(due, heap.Pop(&s.pending).(*models.ScheduledTransaction))
	}
	return due
}

// fire executes one due transaction. The scheduling caller returned long
// ago, so outcomes are logged rather than returned: a missing account is a
// distinct no-op condition, and executor failures surface only through the
// account's subsequent state.
func (s *Scheduler) fire(st *models.ScheduledTransaction) {
	defer s.wg.Done()

	balance, err := s.executor.Apply(context.Background(), st.Transaction)
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		s.log.Warn().
			Str("transaction_id", st.ID).
			Int("account_id", st.AccountID).
			Msg("account missing at fire time, transaction dropped")
	case err != nil:
		s.log.Error().Err(err).
			Str("transaction_id", st.ID).
			Int("account_id", st.AccountID).
			Msg("scheduled transaction failed")
	default:
		s.log.Info().
			Str("transaction_id", st.ID).
			Int("account_id", st.AccountID).
			Str("balance", balance.String()).
			Time("fire_at", st.FireAt).
			Msg("scheduled transaction completed")
	}
}
