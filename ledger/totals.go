/*
totals.go - Invoice/quote totals computation

PURPOSE:
  Computes subtotal, tax, and grand total from a line-item list and a flat
  tax rate. Pure: identical inputs always yield identical outputs, and the
  caller's items slice is never mutated - callers get back a copy with
  per-item totals populated.

COMPUTATION:
  item.Total = quantity x price        (per item)
  SubTotal   = sum of item totals      (folded with money.Add)
  TaxTotal   = SubTotal x taxRate/100
  Total      = SubTotal + TaxTotal

SEE ALSO:
  - engine.go: RecalcInvoice, CreateInvoice, CreateQuote call this
*/
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/dasunhq/idurar-erp-crm/money"
)

var hundred = decimal.NewFromInt(100)

// ComputeTotals derives the money summary of an items list under a flat
// percentage tax rate. Returns ErrEmptyItems when items is empty.
//
// The returned slice is a copy with each item's Total populated; the input
// is left untouched.
func ComputeTotals(items []LineItem, taxRatePercent money.Amount) (Totals, []LineItem, error) {
	if len(items) == 0 {
		return Totals{}, nil, ErrEmptyItems
	}

	out := make([]LineItem, len(items))
	subTotal := money.Zero
	for i, item := range items {
		item.Total = item.Quantity.Mul(item.Price)
		subTotal = subTotal.Add(item.Total)
		out[i] = item
	}

	taxTotal := money.Amount{Value: subTotal.Value.Mul(taxRatePercent.Value.Div(hundred)).Round(money.Scale)}
	total := subTotal.Add(taxTotal)

	return Totals{SubTotal: subTotal, TaxTotal: taxTotal, Total: total}, out, nil
}
