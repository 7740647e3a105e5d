/*
engine.go - Invoice/payment reconciliation engine

PURPOSE:
  The Engine is the only writer of Payment records and of Invoice credit
  and payment status. Each operation is a read -> validate -> write-payment
  -> write-invoice sequence; the two writes are logically linked but the
  store cannot execute them atomically.

SERIALIZATION:
  Operations against the same invoice are serialized with a per-invoice
  advisory lock (locks.go). Without it, two concurrent CreatePayment calls
  could both read the same credit, both pass the overpayment check, and
  together exceed total - discount. With it, the second caller sees the
  first caller's credit and is rejected with the recomputed maximum.

CONSISTENCY:
  If the invoice write fails after the payment write succeeded, the ledger
  is inconsistent: an orphan payment exists that invoice credit does not
  reflect. The engine cannot repair this locally - it logs the breach at
  error level and surfaces a ConsistencyError so callers and operators can
  reconcile.

OVERPAYMENT BOUNDARY:
  amount == maxAmount is accepted; only amount > maxAmount rejects.

SEE ALSO:
  - store.go: the persistence primitives the engine drives
  - totals.go, status.go: the pure computations it composes
*/
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dasunhq/idurar-erp-crm/money"
	"github.com/dasunhq/idurar-erp-crm/numbering"
)

// =============================================================================
// ENGINE
// =============================================================================

type Engine struct {
	store Store
	seq   SequenceAllocator
	log   zerolog.Logger
	locks *invoiceLocks
}

func NewEngine(store Store, seq SequenceAllocator, log zerolog.Logger) *Engine {
	return &Engine{
		store: store,
		seq:   seq,
		log:   log,
		locks: newInvoiceLocks(),
	}
}

// =============================================================================
// INPUTS
// =============================================================================

type CreatePaymentInput struct {
	InvoiceID string
	Amount    money.Amount
	ActorID   string

	// Administrative metadata, caller-supplied.
	Number      string
	Date        time.Time
	Mode        string
	Ref         string
	Description string
}

type UpdatePaymentInput struct {
	PaymentID string
	Amount    money.Amount

	Number      string
	Date        time.Time
	Mode        string
	Ref         string
	Description string
}

type RecalcInvoiceInput struct {
	InvoiceID string
	Items     []LineItem
	TaxRate   money.Amount
	Discount  money.Amount
	Note      string
}

type CreateInvoiceInput struct {
	Items    []LineItem
	TaxRate  money.Amount
	Discount money.Amount
	Note     string
	ActorID  string
}

type CreateQuoteInput struct {
	Items    []LineItem
	TaxRate  money.Amount
	Discount money.Amount
	Note     string
	ActorID  string
}

// =============================================================================
// PAYMENT OPERATIONS
// =============================================================================

// CreatePayment records a settlement against an invoice and applies the
// compensating invoice update (credit, status, payment back-reference).
//
// Sequence: validate -> load invoice -> overpayment check -> insert payment
// -> update invoice. The invoice lock spans the whole sequence.
func (e *Engine) CreatePayment(ctx context.Context, in CreatePaymentInput) (*Payment, error) {
	if in.Amount.IsZero() {
		return nil, ErrInvalidAmount
	}

	unlock := e.locks.acquire(in.InvoiceID)
	defer unlock()

	inv, err := e.store.GetInvoice(ctx, in.InvoiceID)
	if err != nil {
		return nil, err
	}

	maxAmount := inv.Net().Sub(inv.Credit)
	if in.Amount.GreaterThan(maxAmount) {
		return nil, &OverpaymentError{InvoiceID: inv.ID, MaxAmount: maxAmount}
	}

	newCredit := inv.Credit.Add(in.Amount)
	status := DeriveStatus(inv.Total, inv.Discount, newCredit)

	now := time.Now().UTC()
	p := &Payment{
		ID: uuid.NewString(),
		Invoice: InvoiceSnapshot{
			InvoiceID: inv.ID,
			Total:     inv.Total,
			Discount:  inv.Discount,
			Credit:    newCredit,
			// The delta write below bumps the version; under the invoice
			// lock nothing else can interleave.
			Version: inv.Version + 1,
		},
		Amount:      in.Amount,
		Number:      in.Number,
		Date:        in.Date,
		Mode:        in.Mode,
		Ref:         in.Ref,
		Description: in.Description,
		CreatedBy:   in.ActorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := e.store.InsertPayment(ctx, p); err != nil {
		return nil, err
	}

	if _, err := e.store.ApplyPaymentDelta(ctx, inv.ID, p.ID, in.Amount, status, AttachAdd); err != nil {
		return nil, e.consistencyBreach("CreatePayment", inv.ID, p.ID, err)
	}

	return p, nil
}

// UpdatePayment changes a payment's amount and administrative metadata,
// adjusting invoice credit by the difference.
//
// Total, discount, and prior credit are read from the payment's
// denormalized invoice snapshot rather than a fresh invoice read. Invoice
// edits since the snapshot (a discount change) are therefore not seen
// here until the next operation touches the invoice; the snapshot version
// records which invoice write it came from.
func (e *Engine) UpdatePayment(ctx context.Context, in UpdatePaymentInput) (*Payment, error) {
	if in.Amount.IsZero() {
		return nil, ErrInvalidAmount
	}

	// First read resolves the owning invoice so its lock can be taken;
	// the payment is re-read under the lock.
	probe, err := e.store.GetPayment(ctx, in.PaymentID)
	if err != nil {
		return nil, err
	}

	unlock := e.locks.acquire(probe.Invoice.InvoiceID)
	defer unlock()

	p, err := e.store.GetPayment(ctx, in.PaymentID)
	if err != nil {
		return nil, err
	}

	snap := p.Invoice
	previousAmount := p.Amount
	changedAmount := in.Amount.Sub(previousAmount)

	maxAmount := snap.Total.Sub(snap.Discount.Add(snap.Credit))
	if changedAmount.GreaterThan(maxAmount) {
		// User-facing ceiling includes the amount already applied.
		return nil, &OverpaymentError{
			InvoiceID: snap.InvoiceID,
			MaxAmount: maxAmount.Add(previousAmount),
		}
	}

	newCredit := snap.Credit.Add(changedAmount)
	status := DeriveStatus(snap.Total, snap.Discount, newCredit)

	p.Amount = in.Amount
	p.Number = in.Number
	p.Date = in.Date
	p.Mode = in.Mode
	p.Ref = in.Ref
	p.Description = in.Description
	p.UpdatedAt = time.Now().UTC()
	p.Invoice.Credit = newCredit
	p.Invoice.Version = snap.Version + 1

	if err := e.store.UpdatePayment(ctx, p); err != nil {
		return nil, err
	}

	if _, err := e.store.ApplyPaymentDelta(ctx, snap.InvoiceID, p.ID, changedAmount, status, AttachNone); err != nil {
		return nil, e.consistencyBreach("UpdatePayment", snap.InvoiceID, p.ID, err)
	}

	return p, nil
}

// DeletePayment soft-deletes a payment and rolls its amount out of the
// invoice credit. Create followed by Delete restores the invoice's credit
// and status exactly.
func (e *Engine) DeletePayment(ctx context.Context, paymentID string) (*Payment, error) {
	probe, err := e.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	unlock := e.locks.acquire(probe.Invoice.InvoiceID)
	defer unlock()

	p, err := e.store.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	snap := p.Invoice
	status := DeriveStatus(snap.Total, snap.Discount, snap.Credit.Sub(p.Amount))

	deleted, err := e.store.SoftDeletePayment(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	if _, err := e.store.ApplyPaymentDelta(ctx, snap.InvoiceID, p.ID, p.Amount.Neg(), status, AttachRemove); err != nil {
		return nil, e.consistencyBreach("DeletePayment", snap.InvoiceID, p.ID, err)
	}

	return deleted, nil
}

// =============================================================================
// INVOICE OPERATIONS
// =============================================================================

// RecalcInvoice recomputes totals and status after an items/taxRate/discount
// edit. Credit is never altered by item edits; status is re-derived against
// the existing credit. Everything lands in one invoice write.
func (e *Engine) RecalcInvoice(ctx context.Context, in RecalcInvoiceInput) (*Invoice, error) {
	totals, items, err := ComputeTotals(in.Items, in.TaxRate)
	if err != nil {
		return nil, err
	}
	if err := validateDiscount(in.Discount, totals.Total); err != nil {
		return nil, err
	}

	unlock := e.locks.acquire(in.InvoiceID)
	defer unlock()

	inv, err := e.store.GetInvoice(ctx, in.InvoiceID)
	if err != nil {
		return nil, err
	}

	inv.Items = items
	inv.TaxRate = in.TaxRate
	inv.SubTotal = totals.SubTotal
	inv.TaxTotal = totals.TaxTotal
	inv.Total = totals.Total
	inv.Discount = in.Discount
	inv.Note = in.Note
	inv.PaymentStatus = DeriveStatus(totals.Total, in.Discount, inv.Credit)
	inv.UpdatedAt = time.Now().UTC()

	if err := e.store.UpdateInvoice(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// CreateInvoice computes totals, allocates the next document number, and
// persists a fresh invoice with zero credit.
func (e *Engine) CreateInvoice(ctx context.Context, in CreateInvoiceInput) (*Invoice, error) {
	totals, items, err := ComputeTotals(in.Items, in.TaxRate)
	if err != nil {
		return nil, err
	}
	if err := validateDiscount(in.Discount, totals.Total); err != nil {
		return nil, err
	}

	seq, err := e.seq.Next(ctx, SeqInvoice)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	inv := &Invoice{
		ID:            uuid.NewString(),
		Number:        numbering.Generate(seq, numbering.DefaultLength),
		Year:          now.Year(),
		Items:         items,
		TaxRate:       in.TaxRate,
		SubTotal:      totals.SubTotal,
		TaxTotal:      totals.TaxTotal,
		Total:         totals.Total,
		Discount:      in.Discount,
		Credit:        money.Zero,
		PaymentStatus: DeriveStatus(totals.Total, in.Discount, money.Zero),
		Version:       1,
		Note:          in.Note,
		CreatedBy:     in.ActorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := e.store.InsertInvoice(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// DeleteInvoice soft-deletes an invoice. Its payments are cascade
// soft-deleted by the store in the same call, so a removed invoice never
// leaves live payments behind.
func (e *Engine) DeleteInvoice(ctx context.Context, invoiceID string) (*Invoice, error) {
	unlock := e.locks.acquire(invoiceID)
	defer unlock()

	return e.store.SoftDeleteInvoice(ctx, invoiceID)
}

// GetInvoice returns a live invoice.
func (e *Engine) GetInvoice(ctx context.Context, invoiceID string) (*Invoice, error) {
	return e.store.GetInvoice(ctx, invoiceID)
}

// GetPayment returns a live payment.
func (e *Engine) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	return e.store.GetPayment(ctx, paymentID)
}

// =============================================================================
// QUOTES - share totals computation, no payment relationship
// =============================================================================

// CreateQuote computes totals and persists a quote. Quotes carry no credit
// and no payments; they exist here because they reuse ComputeTotals and the
// sequence allocator.
func (e *Engine) CreateQuote(ctx context.Context, in CreateQuoteInput) (*Quote, error) {
	totals, items, err := ComputeTotals(in.Items, in.TaxRate)
	if err != nil {
		return nil, err
	}
	if err := validateDiscount(in.Discount, totals.Total); err != nil {
		return nil, err
	}

	seq, err := e.seq.Next(ctx, SeqQuote)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	q := &Quote{
		ID:        uuid.NewString(),
		Number:    numbering.Generate(seq, numbering.DefaultLength),
		Year:      now.Year(),
		Items:     items,
		TaxRate:   in.TaxRate,
		SubTotal:  totals.SubTotal,
		TaxTotal:  totals.TaxTotal,
		Total:     totals.Total,
		Discount:  in.Discount,
		Note:      in.Note,
		CreatedBy: in.ActorID,
		CreatedAt: now,
	}

	if err := e.store.InsertQuote(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// =============================================================================
// INTERNAL
// =============================================================================

func validateDiscount(discount, total money.Amount) error {
	if discount.IsNegative() || discount.GreaterThan(total) {
		return ErrInvalidDiscount
	}
	return nil
}

// consistencyBreach logs and wraps a failed invoice write that follows a
// successful payment write. The ledger is inconsistent at this point and
// nothing local can fix it.
func (e *Engine) consistencyBreach(op, invoiceID, paymentID string, err error) error {
	e.log.Error().
		Str("op", op).
		Str("invoice_id", invoiceID).
		Str("payment_id", paymentID).
		Err(err).
		Msg("invoice update failed after payment write; ledger inconsistent")
	return &ConsistencyError{Op: op, InvoiceID: invoiceID, PaymentID: paymentID, Err: err}
}
