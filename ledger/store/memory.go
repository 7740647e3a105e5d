// Package store provides ledger.Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/dasunhq/idurar-erp-crm/ledger"
	"github.com/dasunhq/idurar-erp-crm/money"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements ledger.Store and ledger.SequenceAllocator. Documents
// are deep-copied on the way in and out so callers never share memory with
// the store.
type Memory struct {
	mu       sync.RWMutex
	invoices map[string]*ledger.Invoice
	payments map[string]*ledger.Payment
	quotes   map[string]*ledger.Quote
	counters map[string]int64
}

func NewMemory() *Memory {
	return &Memory{
		invoices: make(map[string]*ledger.Invoice),
		payments: make(map[string]*ledger.Payment),
		quotes:   make(map[string]*ledger.Quote),
		counters: make(map[string]int64),
	}
}

// =============================================================================
// INVOICES
// =============================================================================

func (m *Memory) GetInvoice(_ context.Context, id string) (*ledger.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inv, ok := m.invoices[id]
	if !ok || inv.Removed {
		return nil, ledger.ErrNotFound
	}
	return cloneInvoice(inv), nil
}

func (m *Memory) InsertInvoice(_ context.Context, inv *ledger.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

// UpdateInvoice replaces the stored document and bumps Version, reflecting
// the new version back onto the caller's document.
func (m *Memory) UpdateInvoice(_ context.Context, inv *ledger.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.invoices[inv.ID]
	if !ok || stored.Removed {
		return ledger.ErrNotFound
	}

	inv.Version = stored.Version + 1
	m.invoices[inv.ID] = cloneInvoice(inv)
	return nil
}

func (m *Memory) ApplyPaymentDelta(_ context.Context, invoiceID, paymentID string, delta money.Amount, status ledger.Status, attach ledger.Attach) (*ledger.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv, ok := m.invoices[invoiceID]
	if !ok || inv.Removed {
		return nil, ledger.ErrNotFound
	}

	inv.Credit = inv.Credit.Add(delta)
	inv.PaymentStatus = status
	inv.Version++

	switch attach {
	case ledger.AttachAdd:
		inv.PaymentIDs = append(inv.PaymentIDs, paymentID)
	case ledger.AttachRemove:
		ids := inv.PaymentIDs[:0]
		for _, id := range inv.PaymentIDs {
			if id != paymentID {
				ids = append(ids, id)
			}
		}
		inv.PaymentIDs = ids
	}

	return cloneInvoice(inv), nil
}

func (m *Memory) SoftDeleteInvoice(_ context.Context, id string) (*ledger.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inv, ok := m.invoices[id]
	if !ok || inv.Removed {
		return nil, ledger.ErrNotFound
	}

	inv.Removed = true

	// Cascade: a removed invoice leaves no live payments behind.
	for _, p := range m.payments {
		if p.Invoice.InvoiceID == id {
			p.Removed = true
		}
	}

	return cloneInvoice(inv), nil
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (m *Memory) GetPayment(_ context.Context, id string) (*ledger.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.payments[id]
	if !ok || p.Removed {
		return nil, ledger.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *Memory) InsertPayment(_ context.Context, p *ledger.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *p
	m.payments[p.ID] = &cp
	return nil
}

func (m *Memory) UpdatePayment(_ context.Context, p *ledger.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.payments[p.ID]
	if !ok || stored.Removed {
		return ledger.ErrNotFound
	}

	cp := *p
	m.payments[p.ID] = &cp
	return nil
}

func (m *Memory) SoftDeletePayment(_ context.Context, id string) (*ledger.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.payments[id]
	if !ok || p.Removed {
		return nil, ledger.ErrNotFound
	}

	p.Removed = true
	cp := *p
	return &cp, nil
}

// =============================================================================
// QUOTES
// =============================================================================

func (m *Memory) InsertQuote(_ context.Context, q *ledger.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cq := *q
	cq.Items = append([]ledger.LineItem(nil), q.Items...)
	m.quotes[q.ID] = &cq
	return nil
}

// =============================================================================
// SEQUENCE ALLOCATOR
// =============================================================================

// Next increments and returns the named counter. Monotonic under the
// store's own lock.
func (m *Memory) Next(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters[key]++
	return m.counters[key], nil
}

// =============================================================================
// INTERNAL
// =============================================================================

func cloneInvoice(inv *ledger.Invoice) *ledger.Invoice {
	cp := *inv
	cp.Items = append([]ledger.LineItem(nil), inv.Items...)
	cp.PaymentIDs = append([]string(nil), inv.PaymentIDs...)
	return &cp
}
