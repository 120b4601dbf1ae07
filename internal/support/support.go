// Package support keeps the customer-support ticket queue.
package support

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ticket is one reported issue.
type Ticket struct {
	ID        string
	Issue     string
	CreatedAt time.Time
}

// Desk is a FIFO ticket log; tickets are never resolved or removed.
type Desk struct {
	mu      sync.Mutex
	tickets []Ticket
}

func NewDesk() *Desk {
	return &Desk{}
}

// Open records a new ticket and returns it.
func (d *Desk) Open(issue string) Ticket {
	t := Ticket{
		ID:        uuid.New().String(),
		Issue:     issue,
		CreatedAt: time.Now(),
	}

	d.mu.Lock()
	d.tickets = append(d.tickets, t)
	d.mu.Unlock()
	return t
}

// All returns every ticket in creation order.
func (d *Desk) All() []Ticket {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Ticket, len(d.tickets))
	copy(out, d.tickets)
	return out
}
