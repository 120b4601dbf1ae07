package cards_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banksim/bank-account-ledger/internal/cards"
)

func TestStatusTransitions(t *testing.T) {
	m := cards.NewManager()

	assert.Equal(t, cards.StatusUnknown, m.Status(1))

	m.Activate(1)
	assert.Equal(t, cards.StatusActive, m.Status(1))

	m.Block(1)
	assert.Equal(t, cards.StatusBlocked, m.Status(1))

	m.OrderReplacement(1)
	assert.Equal(t, cards.StatusReplacementOrdered, m.Status(1))

	// Other accounts are unaffected.
	assert.Equal(t, cards.StatusUnknown, m.Status(2))
}
