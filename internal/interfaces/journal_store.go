package interfaces

import (
	"context"

	"github.com/banksim/bank-account-ledger/internal/models"
)

type JournalStore interface {
	SaveEntry(ctx context.Context, entry models.JournalEntry) error
	EntriesByAccount(accountID int) ([]models.JournalEntry, error)
	Entries() ([]models.JournalEntry, error)
}
