/*
errors.go - Centralized error types for the ledger core

PURPOSE:
  All error kinds the ledger surfaces, in one place. Callers branch with
  errors.Is / errors.As; the structured types carry enough context to
  render a user message (the computed ceiling for overpayments, the ids
  involved in a consistency breach).

ERROR CATEGORIES:
  1. Validation errors - malformed input, rejected before any write
  2. Not-found errors - referenced invoice/payment absent or removed
  3. Overpayment - business rule violation, carries the allowed maximum
  4. Consistency - a dependent write failed after its sibling succeeded

USAGE:
  var opErr *ledger.OverpaymentError
  if errors.As(err, &opErr) {
      show(opErr.MaxAmount)
  }

SEE ALSO:
  - engine.go: the only producer of OverpaymentError and ConsistencyError
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/dasunhq/idurar-erp-crm/money"
)

// =============================================================================
// SENTINEL ERRORS - use with errors.Is()
// =============================================================================

var (
	// ErrInvalidAmount is returned when a payment amount is zero.
	ErrInvalidAmount = errors.New("payment amount cannot be zero")

	// ErrEmptyItems is returned when an invoice or quote has no line items.
	ErrEmptyItems = errors.New("items cannot be empty")

	// ErrInvalidDiscount is returned when a discount is negative or
	// exceeds the invoice total.
	ErrInvalidDiscount = errors.New("discount must be between zero and total")

	// ErrNotFound is returned when a referenced invoice or payment is
	// absent or already removed.
	ErrNotFound = errors.New("document not found")

	// ErrOverpayment is returned when a credit increase would exceed
	// total - discount.
	ErrOverpayment = errors.New("amount exceeds maximum payable")

	// ErrConsistency is returned when the invoice write fails after its
	// payment write succeeded. The ledger is left inconsistent; this must
	// be observable, never swallowed.
	ErrConsistency = errors.New("invoice update failed after payment write")
)

// =============================================================================
// STRUCTURED ERRORS - carry additional context
// =============================================================================

// OverpaymentError reports the maximum amount the caller may still apply.
// MaxAmount is the user-facing ceiling: for creates it is the remaining
// headroom, for updates it includes the payment's previous amount.
type OverpaymentError struct {
	InvoiceID string
	MaxAmount money.Amount
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("the max amount you can add is %s", e.MaxAmount)
}

func (e *OverpaymentError) Unwrap() error { return ErrOverpayment }

// ConsistencyError records an orphaned write: the payment side succeeded
// but the compensating invoice update did not. Operation names match the
// engine methods.
type ConsistencyError struct {
	Op        string
	InvoiceID string
	PaymentID string
	Err       error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: invoice %s not updated for payment %s: %v",
		e.Op, e.InvoiceID, e.PaymentID, e.Err)
}

func (e *ConsistencyError) Unwrap() error { return ErrConsistency }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is due to invalid client input
// or a business rule the caller can correct.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidDiscount) ||
		errors.Is(err, ErrEmptyItems) ||
		errors.Is(err, ErrOverpayment)
}

// IsNotFound reports whether the error indicates a missing document.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
