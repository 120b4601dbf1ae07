package memory

import (
	"context"
	"sync"

	"github.com/banksim/bank-account-ledger/internal/interfaces"
	"github.com/banksim/bank-account-ledger/internal/models"
)

// JournalStore is the in-memory implementation of interfaces.JournalStore
// and the default sink for the simulation: entries live for the process
// lifetime and are lost on exit. Safe for concurrent use.
type JournalStore struct {
	mu      sync.Mutex
	entries []models.JournalEntry
}

func NewJournalStore() *JournalStore {
	return &JournalStore{entries: make([]models.JournalEntry, 0)}
}

// SaveEntry appends one applied transaction to the journal.
func (s *JournalStore) SaveEntry(ctx context.Context, entry models.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	return nil
}

// Entries returns a copy of the whole journal in append order.
func (s *JournalStore) Entries() ([]models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]models.JournalEntry, len(s.entries))
	copy(copied, s.entries)
	return copied, nil
}

// EntriesByAccount returns the journal entries for one account in append
// order.
func (s *JournalStore) EntriesByAccount(accountID int) ([]models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []models.JournalEntry
	for _, e := range s.entries {
		if e.AccountID == accountID {
			result = append(result, e)
		}
	}
	return result, nil
}

var _ interfaces.JournalStore = (*JournalStore)(nil)
