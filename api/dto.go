/*
dto.go - Request/response data structures

PURPOSE:
  JSON shapes for the REST API. Monetary fields travel as decimal strings
  ("40.00"), never JSON numbers, so clients cannot smuggle binary-float
  drift into the ledger.

RESPONSE ENVELOPE:
  Every response carries {success, result, message}; business-rule
  rejections additionally carry maxAmount where it helps the client
  render a corrective message.

SEE ALSO:
  - handlers.go: fills these in
*/
package api

import (
	"time"

	"github.com/dasunhq/idurar-erp-crm/ledger"
	"github.com/dasunhq/idurar-erp-crm/money"
	"github.com/dasunhq/idurar-erp-crm/taxes"
)

// =============================================================================
// ENVELOPE
// =============================================================================

type Response struct {
	Success   bool   `json:"success"`
	Result    any    `json:"result"`
	Message   string `json:"message,omitempty"`
	MaxAmount string `json:"maxAmount,omitempty"`
}

// =============================================================================
// REQUESTS
// =============================================================================

type LineItemInput struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
}

type CreateInvoiceRequest struct {
	Items    []LineItemInput `json:"items"`
	TaxRate  string          `json:"taxRate"`
	Discount string          `json:"discount"`
	Note     string          `json:"note"`
}

type UpdateInvoiceRequest struct {
	Items    []LineItemInput `json:"items"`
	TaxRate  string          `json:"taxRate"`
	Discount string          `json:"discount"`
	Note     string          `json:"note"`
}

type CreateQuoteRequest struct {
	Items    []LineItemInput `json:"items"`
	TaxRate  string          `json:"taxRate"`
	Discount string          `json:"discount"`
	Note     string          `json:"note"`
}

type CreatePaymentRequest struct {
	Invoice     string `json:"invoice"`
	Amount      string `json:"amount"`
	Number      string `json:"number"`
	Date        string `json:"date"`
	Mode        string `json:"paymentMode"`
	Ref         string `json:"ref"`
	Description string `json:"description"`
}

type UpdatePaymentRequest struct {
	Amount      string `json:"amount"`
	Number      string `json:"number"`
	Date        string `json:"date"`
	Mode        string `json:"paymentMode"`
	Ref         string `json:"ref"`
	Description string `json:"description"`
}

type CreateTaxRequest struct {
	Name      string `json:"name"`
	Rate      string `json:"rate"`
	IsDefault bool   `json:"isDefault"`
}

type UpdateTaxRequest struct {
	Name      string `json:"name"`
	Rate      string `json:"rate"`
	IsDefault bool   `json:"isDefault"`
	Enabled   bool   `json:"enabled"`
}

// =============================================================================
// RESPONSES
// =============================================================================

type LineItemDTO struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
	Total    string `json:"total"`
}

type InvoiceDTO struct {
	ID            string        `json:"id"`
	Number        string        `json:"number"`
	Year          int           `json:"year"`
	Items         []LineItemDTO `json:"items"`
	TaxRate       string        `json:"taxRate"`
	SubTotal      string        `json:"subTotal"`
	TaxTotal      string        `json:"taxTotal"`
	Total         string        `json:"total"`
	Discount      string        `json:"discount"`
	Credit        string        `json:"credit"`
	PaymentStatus string        `json:"paymentStatus"`
	PaymentIDs    []string      `json:"payments"`
	Note          string        `json:"note,omitempty"`
	CreatedAt     string        `json:"createdAt"`
	UpdatedAt     string        `json:"updatedAt"`
}

type PaymentDTO struct {
	ID          string `json:"id"`
	Invoice     string `json:"invoice"`
	Amount      string `json:"amount"`
	Number      string `json:"number,omitempty"`
	Date        string `json:"date,omitempty"`
	Mode        string `json:"paymentMode,omitempty"`
	Ref         string `json:"ref,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedBy   string `json:"createdBy,omitempty"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type QuoteDTO struct {
	ID       string        `json:"id"`
	Number   string        `json:"number"`
	Year     int           `json:"year"`
	Items    []LineItemDTO `json:"items"`
	TaxRate  string        `json:"taxRate"`
	SubTotal string        `json:"subTotal"`
	TaxTotal string        `json:"taxTotal"`
	Total    string        `json:"total"`
	Discount string        `json:"discount"`
	Note     string        `json:"note,omitempty"`
}

type TaxDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Rate      string `json:"rate"`
	IsDefault bool   `json:"isDefault"`
	Enabled   bool   `json:"enabled"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func itemDTOs(items []ledger.LineItem) []LineItemDTO {
	out := make([]LineItemDTO, len(items))
	for i, it := range items {
		out[i] = LineItemDTO{
			Name:     it.Name,
			Quantity: it.Quantity.String(),
			Price:    it.Price.String(),
			Total:    it.Total.String(),
		}
	}
	return out
}

func invoiceDTO(inv *ledger.Invoice) InvoiceDTO {
	return InvoiceDTO{
		ID:            inv.ID,
		Number:        inv.Number,
		Year:          inv.Year,
		Items:         itemDTOs(inv.Items),
		TaxRate:       inv.TaxRate.String(),
		SubTotal:      inv.SubTotal.String(),
		TaxTotal:      inv.TaxTotal.String(),
		Total:         inv.Total.String(),
		Discount:      inv.Discount.String(),
		Credit:        inv.Credit.String(),
		PaymentStatus: string(inv.PaymentStatus),
		PaymentIDs:    inv.PaymentIDs,
		Note:          inv.Note,
		CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     inv.UpdatedAt.Format(time.RFC3339),
	}
}

func paymentDTO(p *ledger.Payment) PaymentDTO {
	dto := PaymentDTO{
		ID:          p.ID,
		Invoice:     p.Invoice.InvoiceID,
		Amount:      p.Amount.String(),
		Number:      p.Number,
		Mode:        p.Mode,
		Ref:         p.Ref,
		Description: p.Description,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
	if !p.Date.IsZero() {
		dto.Date = p.Date.Format("2006-01-02")
	}
	return dto
}

func quoteDTO(q *ledger.Quote) QuoteDTO {
	return QuoteDTO{
		ID:       q.ID,
		Number:   q.Number,
		Year:     q.Year,
		Items:    itemDTOs(q.Items),
		TaxRate:  q.TaxRate.String(),
		SubTotal: q.SubTotal.String(),
		TaxTotal: q.TaxTotal.String(),
		Total:    q.Total.String(),
		Discount: q.Discount.String(),
		Note:     q.Note,
	}
}

func taxDTO(t *taxes.Tax) TaxDTO {
	return TaxDTO{
		ID:        t.ID,
		Name:      t.Name,
		Rate:      t.Rate.String(),
		IsDefault: t.IsDefault,
		Enabled:   t.Enabled,
	}
}

// parseItems converts request items to domain line items.
func parseItems(in []LineItemInput) ([]ledger.LineItem, error) {
	items := make([]ledger.LineItem, len(in))
	for i, it := range in {
		q, err := money.FromString(it.Quantity)
		if err != nil {
			return nil, err
		}
		p, err := money.FromString(it.Price)
		if err != nil {
			return nil, err
		}
		items[i] = ledger.LineItem{Name: it.Name, Quantity: q, Price: p}
	}
	return items, nil
}

// parseAmount parses an optional decimal string, empty meaning zero.
func parseAmount(s string) (money.Amount, error) {
	if s == "" {
		return money.Zero, nil
	}
	return money.FromString(s)
}
