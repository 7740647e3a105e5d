/*
handlers.go - HTTP API handlers for the reconciliation ledger

PURPOSE:
  Exposes the ledger engine and tax service via REST. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.
  Authentication is out of scope here: the upstream middleware supplies
  the acting principal in the X-Admin-ID header.

ENDPOINTS:
  Invoices:
    POST   /api/invoices            Create invoice (totals computed)
    GET    /api/invoices/{id}       Read invoice
    PATCH  /api/invoices/{id}       Edit items/taxRate/discount (recalc)
    DELETE /api/invoices/{id}       Soft-delete (cascades payments)

  Payments:
    POST   /api/payments            Record payment against an invoice
    PATCH  /api/payments/{id}       Amend amount/metadata
    DELETE /api/payments/{id}       Soft-delete, credit rolled back

  Quotes:
    POST   /api/quotes              Create quote (totals computed)

  Taxes:
    GET    /api/taxes               List
    POST   /api/taxes               Create
    PATCH  /api/taxes/{id}          Update
    DELETE /api/taxes/{id}          Always 403 (taxes are permanent)
    POST   /api/taxes/{id}/default  Make default

ERROR HANDLING:
  Errors are returned in the response envelope with appropriate status:
  - 400: validation errors (zero amount, empty items, bad decimals)
  - 403: forbidden operations (tax delete)
  - 404: invoice/payment/tax not found or removed
  - 409: overpayment rejected (maxAmount included)
  - 422: tax set constraint violations
  - 500: internal errors, including ledger consistency breaches

SEE ALSO:
  - dto.go: request/response data structures
  - server.go: router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dasunhq/idurar-erp-crm/ledger"
	"github.com/dasunhq/idurar-erp-crm/taxes"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine *ledger.Engine
	Taxes  *taxes.Service
	Log    zerolog.Logger
}

func NewHandler(engine *ledger.Engine, taxSvc *taxes.Service, log zerolog.Logger) *Handler {
	return &Handler{Engine: engine, Taxes: taxSvc, Log: log}
}

// actorID returns the authenticated principal id supplied by the upstream
// auth middleware.
func actorID(r *http.Request) string {
	return r.Header.Get("X-Admin-ID")
}

// =============================================================================
// INVOICE HANDLERS
// =============================================================================

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	items, err := parseItems(req.Items)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	taxRate, err := parseAmount(req.TaxRate)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	discount, err := parseAmount(req.Discount)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	inv, err := h.Engine.CreateInvoice(r.Context(), ledger.CreateInvoiceInput{
		Items:    items,
		TaxRate:  taxRate,
		Discount: discount,
		Note:     req.Note,
		ActorID:  actorID(r),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, invoiceDTO(inv), "Invoice created successfully")
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Engine.GetInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, invoiceDTO(inv), "")
}

func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	var req UpdateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	items, err := parseItems(req.Items)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	taxRate, err := parseAmount(req.TaxRate)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	discount, err := parseAmount(req.Discount)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	inv, err := h.Engine.RecalcInvoice(r.Context(), ledger.RecalcInvoiceInput{
		InvoiceID: chi.URLParam(r, "id"),
		Items:     items,
		TaxRate:   taxRate,
		Discount:  discount,
		Note:      req.Note,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, invoiceDTO(inv), "Invoice updated successfully")
}

func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Engine.DeleteInvoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, invoiceDTO(inv), "Invoice deleted successfully")
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)")
		return
	}

	p, err := h.Engine.CreatePayment(r.Context(), ledger.CreatePaymentInput{
		InvoiceID:   req.Invoice,
		Amount:      amount,
		ActorID:     actorID(r),
		Number:      req.Number,
		Date:        date,
		Mode:        req.Mode,
		Ref:         req.Ref,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, paymentDTO(p), "Payment created successfully")
}

func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	var req UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)")
		return
	}

	p, err := h.Engine.UpdatePayment(r.Context(), ledger.UpdatePaymentInput{
		PaymentID:   chi.URLParam(r, "id"),
		Amount:      amount,
		Number:      req.Number,
		Date:        date,
		Mode:        req.Mode,
		Ref:         req.Ref,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, paymentDTO(p), "Payment updated successfully")
}

func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.Engine.DeletePayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, paymentDTO(p), "Payment deleted successfully")
}

// =============================================================================
// QUOTE HANDLERS
// =============================================================================

func (h *Handler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	items, err := parseItems(req.Items)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	taxRate, err := parseAmount(req.TaxRate)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}
	discount, err := parseAmount(req.Discount)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	q, err := h.Engine.CreateQuote(r.Context(), ledger.CreateQuoteInput{
		Items:    items,
		TaxRate:  taxRate,
		Discount: discount,
		Note:     req.Note,
		ActorID:  actorID(r),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, quoteDTO(q), "Quote created successfully")
}

// =============================================================================
// TAX HANDLERS
// =============================================================================

func (h *Handler) ListTaxes(w http.ResponseWriter, r *http.Request) {
	all, err := h.Taxes.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	dtos := make([]TaxDTO, len(all))
	for i := range all {
		dtos[i] = taxDTO(&all[i])
	}
	writeSuccess(w, http.StatusOK, dtos, "")
}

func (h *Handler) CreateTax(w http.ResponseWriter, r *http.Request) {
	var req CreateTaxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rate, err := parseAmount(req.Rate)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.Taxes.Create(r.Context(), taxes.CreateInput{
		Name:      req.Name,
		Rate:      rate,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, taxDTO(t), "Tax created successfully")
}

func (h *Handler) UpdateTax(w http.ResponseWriter, r *http.Request) {
	var req UpdateTaxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	rate, err := parseAmount(req.Rate)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.Taxes.Update(r.Context(), taxes.UpdateInput{
		ID:        chi.URLParam(r, "id"),
		Name:      req.Name,
		Rate:      rate,
		IsDefault: req.IsDefault,
		Enabled:   req.Enabled,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, taxDTO(t), "Tax updated successfully")
}

func (h *Handler) DeleteTax(w http.ResponseWriter, r *http.Request) {
	err := h.Taxes.Delete(r.Context(), chi.URLParam(r, "id"))
	h.writeError(w, err)
}

func (h *Handler) SetDefaultTax(w http.ResponseWriter, r *http.Request) {
	t, err := h.Taxes.SetDefault(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, taxDTO(t), "Default tax updated")
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, status int, result any, message string) {
	writeJSON(w, status, Response{Success: true, Result: result, Message: message})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Success: false, Message: message})
}

// writeError maps domain errors to HTTP statuses and the response envelope.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var opErr *ledger.OverpaymentError
	switch {
	case errors.As(err, &opErr):
		writeJSON(w, http.StatusConflict, Response{
			Success:   false,
			Message:   opErr.Error(),
			MaxAmount: opErr.MaxAmount.String(),
		})
	case ledger.IsNotFound(err) || errors.Is(err, taxes.ErrNotFound):
		writeFailure(w, http.StatusNotFound, "No document found")
	case errors.Is(err, taxes.ErrDeleteForbidden):
		writeFailure(w, http.StatusForbidden, err.Error())
	case errors.Is(err, taxes.ErrLastTax):
		writeFailure(w, http.StatusUnprocessableEntity, err.Error())
	case ledger.IsClientError(err):
		writeFailure(w, http.StatusBadRequest, err.Error())
	default:
		h.Log.Error().Err(err).Msg("internal error")
		writeFailure(w, http.StatusInternalServerError, "Internal server error")
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}
