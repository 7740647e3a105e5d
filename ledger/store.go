/*
store.go - Persistence interface for invoices and payments

PURPOSE:
  Defines the boundary between the ledger engine and the document store.
  The store supplies single-document find/update/insert primitives only:
  no multi-document transactions are assumed of it, which is why the
  engine sequences its own writes and serializes per invoice.

DOCUMENT SEMANTICS:
  Reads exclude removed documents. Writes are whole-document, except
  ApplyPaymentDelta which is the one compound primitive: it attaches or
  detaches a payment id, adjusts credit by a delta, sets the derived
  status, and bumps the invoice version in a single invoice write -
  the $push/$inc/$set shape of the underlying update.

IMPLEMENTATIONS:
  - ledger/store/memory.go: in-memory, for tests and dev
  - store/sqlite/sqlite.go: production SQLite

SEE ALSO:
  - engine.go: the only caller of the mutating methods
*/
package ledger

import (
	"context"

	"github.com/dasunhq/idurar-erp-crm/money"
)

// =============================================================================
// STORE - document primitives
// =============================================================================

// Attach describes what ApplyPaymentDelta does with the payment id on the
// invoice's back-reference list.
type Attach int

const (
	AttachNone   Attach = iota // update in place, list untouched
	AttachAdd                  // append payment id
	AttachRemove               // pull payment id
)

// Store is the document persistence boundary.
// All Get methods return ErrNotFound for absent or removed documents.
type Store interface {
	// Invoices
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	InsertInvoice(ctx context.Context, inv *Invoice) error

	// UpdateInvoice replaces the stored document and bumps Version.
	UpdateInvoice(ctx context.Context, inv *Invoice) error

	// ApplyPaymentDelta adjusts an invoice for one payment mutation:
	// credit += delta, paymentStatus = status, payment id attached or
	// detached per attach, version bumped. One invoice write.
	ApplyPaymentDelta(ctx context.Context, invoiceID, paymentID string, delta money.Amount, status Status, attach Attach) (*Invoice, error)

	// SoftDeleteInvoice marks the invoice removed and cascade-soft-deletes
	// its payments. Returns the removed invoice.
	SoftDeleteInvoice(ctx context.Context, id string) (*Invoice, error)

	// Payments
	GetPayment(ctx context.Context, id string) (*Payment, error)
	InsertPayment(ctx context.Context, p *Payment) error
	UpdatePayment(ctx context.Context, p *Payment) error
	SoftDeletePayment(ctx context.Context, id string) (*Payment, error)

	// Quotes
	InsertQuote(ctx context.Context, q *Quote) error
}

// =============================================================================
// SEQUENCE ALLOCATOR - monotonic document numbers
// =============================================================================

// SequenceAllocator supplies unique, monotonically increasing document
// numbers, keyed by counter name ("last_invoice_number",
// "last_quote_number"). Backed by the settings storage.
type SequenceAllocator interface {
	Next(ctx context.Context, key string) (int64, error)
}

// Well-known counter keys.
const (
	SeqInvoice = "last_invoice_number"
	SeqQuote   = "last_quote_number"
)
