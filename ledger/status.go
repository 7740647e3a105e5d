/*
status.go - Payment status derivation

PURPOSE:
  Maps (total, discount, credit) to unpaid/partially/paid. Pure and total:
  every input combination maps to exactly one status.

ORDER OF CHECKS:
  paid is checked before partially. An overpaid state whose credit happens
  to equal the net amount still reports paid - rejecting credit > net is
  the engine's job, at the operation boundary, not this function's.

SEE ALSO:
  - engine.go: calls this after every credit change
*/
package ledger

import "github.com/dasunhq/idurar-erp-crm/money"

// DeriveStatus returns the payment status implied by an invoice's total,
// discount, and cumulative credit.
//
//	paid       credit == total - discount   (exact, money.Equal)
//	partially  0 < credit
//	unpaid     otherwise
func DeriveStatus(total, discount, credit money.Amount) Status {
	switch {
	case total.Sub(discount).Equal(credit):
		return StatusPaid
	case credit.IsPositive():
		return StatusPartially
	default:
		return StatusUnpaid
	}
}
