package postgres

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/banksim/bank-account-ledger/internal/interfaces"
	"github.com/banksim/bank-account-ledger/internal/models"
)

// JournalStore mirrors the audit journal to Postgres. The ledger itself
// stays in memory; this sink only gives the journal durability for audit.
type JournalStore struct {
	db *sql.DB
}

// Open connects to Postgres with the given DSN and verifies the
// connection.
func Open(dsn string) (*JournalStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return NewJournalStore(db), nil
}

func NewJournalStore(db *sql.DB) *JournalStore {
	return &JournalStore{db: db}
}

func (s *JournalStore) SaveEntry(ctx context.Context, entry models.JournalEntry) error {
	const query = `INSERT INTO journal_entries (id, account_id, currency, amount, created_at)
	VALUES ($1, $2, $3, $4, $5)`

	_, err := s.db.ExecContext(ctx, query, entry.ID, entry.AccountID, entry.Currency, entry.Amount, entry.CreatedAt)
	return err
}

func (s *JournalStore) Entries() ([]models.JournalEntry, error) {
	const query = `SELECT id, account_id, currency, amount, created_at FROM journal_entries
	ORDER BY created_at`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (s *JournalStore) EntriesByAccount(accountID int) ([]models.JournalEntry, error) {
	const query = `SELECT id, account_id, currency, amount, created_at FROM journal_entries
	WHERE account_id = $1 ORDER BY created_at`

	rows, err := s.db.Query(query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	for rows.Next() {
		var entry models.JournalEntry
		if err := rows.Scan(&entry.ID, &entry.AccountID, &entry.Currency, &entry.Amount, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Close releases the underlying connection pool.
func (s *JournalStore) Close() error {
	return s.db.Close()
}

var _ interfaces.JournalStore = (*JournalStore)(nil)
