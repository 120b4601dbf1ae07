package scheduler

import "github.com/banksim/bank-account-ledger/internal/models"

// txHeap is a min-heap of pending transactions ordered by fire time.
// Entries with equal fire times pop in no particular order.
type txHeap []*models.ScheduledTransaction

func (h txHeap) Len() int           { return len(h) }
func (h txHeap) Less(i, j int) bool { return h[i].FireAt.Before(h[j].FireAt) }
func (h txHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *txHeap) Push(x any) { *h = append(*h, x.(*models.ScheduledTransaction)) }

func (h *txHeap) Pop() any {
	old := *h
	n := len(old)
	st := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return st
}
