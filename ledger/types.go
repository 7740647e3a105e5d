/*
Package ledger keeps invoice balances consistent with their payments.

PURPOSE:
  This package contains the reconciliation core: the types and engine that
  keep an invoice's outstanding balance, cumulative credit, and payment
  status in step with a create/update/delete stream of payment records.
  The backing store offers single-document primitives only - no
  multi-document transactions - so every operation here is a deliberate
  read -> validate -> write-payment -> write-invoice sequence.

KEY CONCEPTS IN THIS FILE (types.go):
  - Invoice: aggregate root carrying totals, discount, and credit
  - Payment: dependent settlement record owned by exactly one invoice
  - LineItem: quantity x price row; Total is derived, never stored alone
  - InvoiceSnapshot: invoice state denormalized onto a payment
  - Status: unpaid / partially / paid, always derived

OWNERSHIP:
  Invoice is the aggregate root. Payments have no independent lifecycle:
  they are created, amended, and soft-deleted only through the Engine.
  No other writer may touch Payment.Amount or Invoice.Credit.

SEE ALSO:
  - engine.go: the three payment operations plus invoice recalculation
  - totals.go: subtotal/tax/total computation
  - status.go: payment status derivation
*/
package ledger

import (
	"time"

	"github.com/dasunhq/idurar-erp-crm/money"
)

// =============================================================================
// STATUS - derived, never directly writable by callers
// =============================================================================

type Status string

const (
	StatusUnpaid    Status = "unpaid"
	StatusPartially Status = "partially"
	StatusPaid      Status = "paid"
)

// =============================================================================
// LINE ITEMS AND TOTALS
// =============================================================================

type LineItem struct {
	Name     string
	Quantity money.Amount
	Price    money.Amount

	// Total is derived from Quantity x Price by ComputeTotals.
	Total money.Amount
}

// Totals is the computed money summary of an items list.
type Totals struct {
	SubTotal money.Amount
	TaxTotal money.Amount
	Total    money.Amount
}

// =============================================================================
// INVOICE - aggregate root
// =============================================================================

// Invoice invariant: 0 <= Credit <= Total - Discount after every successful
// engine operation. A credit change that would break this is rejected before
// any write.
type Invoice struct {
	ID     string
	Number string
	Year   int

	Items    []LineItem
	TaxRate  money.Amount // flat percentage, e.g. 19 for 19%
	SubTotal money.Amount
	TaxTotal money.Amount
	Total    money.Amount
	Discount money.Amount

	// Credit is the cumulative net amount applied via payments.
	// Adjusted only by the Engine.
	Credit        money.Amount
	PaymentStatus Status

	// PaymentIDs is a back-reference, not ownership.
	PaymentIDs []string

	// Version increments on every invoice write. Payments record the
	// version they last saw so stale denormalized reads are detectable.
	Version int64

	Note      string
	Removed   bool
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Net returns Total - Discount, the ceiling Credit may reach.
func (inv *Invoice) Net() money.Amount {
	return inv.Total.Sub(inv.Discount)
}

// =============================================================================
// PAYMENT - dependent entity
// =============================================================================

// InvoiceSnapshot is the invoice state denormalized onto a payment.
// UpdatePayment reads total/discount/credit from here instead of issuing a
// second invoice round-trip. The snapshot is refreshed whenever the engine
// touches the payment; invoice edits in between (a discount change) are not
// reflected until then. Version identifies which invoice write produced it.
type InvoiceSnapshot struct {
	InvoiceID string
	Total     money.Amount
	Discount  money.Amount
	Credit    money.Amount
	Version   int64
}

type Payment struct {
	ID string

	// Invoice is the owning invoice's state as last seen by this payment.
	Invoice InvoiceSnapshot

	// Amount is strictly nonzero; positive amounts increase invoice credit.
	Amount money.Amount

	// Administrative metadata, caller-supplied and whitelisted.
	Number      string
	Date        time.Time
	Mode        string
	Ref         string
	Description string

	Removed   bool
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// QUOTE - shares totals computation, has no payment relationship
// =============================================================================

type Quote struct {
	ID     string
	Number string
	Year   int

	Items    []LineItem
	TaxRate  money.Amount
	SubTotal money.Amount
	TaxTotal money.Amount
	Total    money.Amount
	Discount money.Amount

	Note      string
	Removed   bool
	CreatedBy string
	CreatedAt time.Time
}
