/*
locks.go - Per-invoice mutual exclusion

PURPOSE:
  The store offers no multi-document transactions and the engine's
  operations are read-validate-write sequences, so two concurrent payment
  mutations on the same invoice could both read the same credit snapshot,
  both pass the overpayment check, and together overpay the invoice.
  The engine closes that race with an advisory lock keyed by invoice id:
  operations on different invoices run concurrently, operations on the
  same invoice are serialized.

SEE ALSO:
  - engine.go: every operation holds the lock across its full span
*/
package ledger

import "sync"

// invoiceLocks hands out one mutex per invoice id. Entries are never
// reclaimed; the set of live invoices in a working set is small and a
// stale mutex is 8 words.
type invoiceLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newInvoiceLocks() *invoiceLocks {
	return &invoiceLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for id and returns its unlock func.
func (l *invoiceLocks) acquire(id string) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
