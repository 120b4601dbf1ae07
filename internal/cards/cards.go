// Package cards tracks card status per account number. Pure bookkeeping:
// last write wins, no link to the ledger's balances.
package cards

import "sync"

// Status is the card state shown to the operator.
type Status string

const (
	StatusActive             Status = "Active"
	StatusBlocked            Status = "Blocked"
	StatusReplacementOrdered Status = "Replacement Ordered"
	StatusUnknown            Status = "Unknown"
)

type Manager struct {
	mu    sync.Mutex
	cards map[int]Status
}

func NewManager() *Manager {
	return &Manager{cards: make(map[int]Status)}
}

func (m *Manager) Activate(accountID int) {
	m.set(accountID, StatusActive)
}

func (m *Manager) Block(accountID int) {
	m.set(accountID, StatusBlocked)
}

func (m *Manager) OrderReplacement(accountID int) {
	m.set(accountID, StatusReplacementOrdered)
}

// Status returns the last recorded state, StatusUnknown when no card
// operation has touched the account.
func (m *Manager) Status(accountID int) Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.cards[accountID]; ok {
		return s
	}
	return StatusUnknown
}

func (m *Manager) set(accountID int, s Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cards[accountID] = s
}
