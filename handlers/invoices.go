package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dukahub/backoffice/db"
	"github.com/dukahub/backoffice/ledger"
	"github.com/dukahub/backoffice/models"
)

// ListInvoices lists all invoices
// @Summary      List invoices
// @Description  Get all invoices with computed totals, payment and fulfillment status.
// @Tags         invoices
// @Produce      json
// @Param        payment_status  query     string  false  "Filter by payment status"
// @Param        customer_id     query     int     false  "Filter by customer"
// @Param        search          query     string  false  "Search by invoice number, notes, or customer name"
// @Success      200             {object}  Response{data=[]models.Invoice}
// @Router       /invoices [get]
// @Security     BasicAuth
func ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := Store.ListInvoices(r.Context(), db.InvoiceFilters{
		PaymentStatus: r.URL.Query().Get("payment_status"),
		CustomerID:    r.URL.Query().Get("customer_id"),
		Search:        r.URL.Query().Get("search"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

// GetInvoice retrieves a single invoice by ID
// @Summary      Get invoice
// @Description  Get one invoice with items, payments, delivery info, and computed totals.
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Response{data=models.Invoice}
// @Failure      404  {object}  Response{error=string}
// @Router       /invoices/{id} [get]
// @Security     BasicAuth
func GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	inv, err := Store.Invoice(r.Context(), id)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// CreateInvoice creates a new draft invoice
// @Summary      Create invoice
// @Description  Create a draft invoice with line items. Totals are computed, never supplied.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        invoice  body      models.InvoiceInput  true  "Invoice contents"
// @Success      201      {object}  Response{data=models.Invoice}
// @Failure      400      {object}  Response{error=string}
// @Router       /invoices [post]
// @Security     BasicAuth
func CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var input models.InvoiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	inv, err := Store.CreateInvoice(r.Context(), input)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

// UpdateInvoice updates a draft invoice
// @Summary      Update invoice
// @Description  Replace the header and item list of a draft. Finalized invoices reject edits.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true  "Invoice ID"
// @Param        invoice  body      models.InvoiceInput  true  "Updated invoice contents"
// @Success      200      {object}  Response{data=models.Invoice}
// @Failure      400      {object}  Response{error=string}
// @Failure      404      {object}  Response{error=string}
// @Failure      409      {object}  Response{error=string}
// @Router       /invoices/{id} [put]
// @Security     BasicAuth
func UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.InvoiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	inv, err := Store.UpdateDraftInvoice(r.Context(), id, input)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// DeleteInvoice deletes a draft invoice
// @Summary      Delete invoice
// @Description  Remove a draft invoice. Invoices past draft are part of the books and cannot be deleted.
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Failure      409  {object}  Response{error=string}
// @Router       /invoices/{id} [delete]
// @Security     BasicAuth
func DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	if err := Store.DeleteDraftInvoice(r.Context(), id); err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// PreviewTotals computes totals for a prospective item list
// @Summary      Preview invoice totals
// @Description  Compute subtotal, discount, tax, and total for a prospective item list without saving anything.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        invoice  body      models.InvoiceInput  true  "Items and tax rate"
// @Success      200      {object}  Response{data=ledger.Totals}
// @Failure      400      {object}  Response{error=string}
// @Router       /invoices/preview [post]
// @Security     BasicAuth
func PreviewTotals(w http.ResponseWriter, r *http.Request) {
	var input models.InvoiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	items := make([]models.InvoiceItem, len(input.Items))
	for i, it := range input.Items {
		items[i] = models.InvoiceItem{
			Description:     it.Description,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			DiscountPercent: it.DiscountPercent,
		}
	}
	totals, err := ledger.ComputeTotals(items, input.TaxRatePercent)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

// FinalizeInvoice moves a draft to sent
// @Summary      Finalize invoice
// @Description  Move a draft onto the payment track. Items become immutable.
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Response{data=models.Invoice}
// @Failure      404  {object}  Response{error=string}
// @Failure      409  {object}  Response{error=string}
// @Router       /invoices/{id}/finalize [post]
// @Security     BasicAuth
func FinalizeInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	inv, err := Ledger.Finalize(r.Context(), id)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// CancelInvoice cancels an invoice
// @Summary      Cancel invoice
// @Description  Terminate the payment axis. Not allowed once paid.
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Response{data=models.Invoice}
// @Failure      404  {object}  Response{error=string}
// @Failure      409  {object}  Response{error=string}
// @Router       /invoices/{id}/cancel [post]
// @Security     BasicAuth
func CancelInvoice(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	inv, err := Ledger.Cancel(r.Context(), id)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// RecordPayment records a payment against an invoice
// @Summary      Record payment
// @Description  Apply a payment to the outstanding balance. Overpayment is rejected, not clamped. Set full=true to pay the exact remaining balance.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true  "Invoice ID"
// @Param        payment  body      models.PaymentInput  true  "Payment details"
// @Success      201      {object}  Response{data=models.Invoice}
// @Failure      400      {object}  Response{error=string}
// @Failure      409      {object}  Response{error=string}
// @Failure      422      {object}  Response{error=string}
// @Router       /invoices/{id}/payments [post]
// @Security     BasicAuth
func RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.PaymentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	inv, err := Ledger.RecordPayment(r.Context(), id, input)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

// ListPayments lists all payments on an invoice
// @Summary      List invoice payments
// @Description  Get the append-only payment history of an invoice.
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Response{data=[]models.Payment}
// @Failure      404  {object}  Response{error=string}
// @Router       /invoices/{id}/payments [get]
// @Security     BasicAuth
func ListPayments(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	inv, err := Store.Invoice(r.Context(), id)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv.Payments)
}

// DispatchDelivery marks a delivery invoice out for delivery
// @Summary      Dispatch delivery
// @Description  Move a delivery-type invoice from pending to out_for_delivery. Pickup invoices skip this step.
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Response{data=models.Invoice}
// @Failure      404  {object}  Response{error=string}
// @Failure      409  {object}  Response{error=string}
// @Router       /invoices/{id}/delivery/dispatch [post]
// @Security     BasicAuth
func DispatchDelivery(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	inv, err := Ledger.Dispatch(r.Context(), id)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// CompleteDelivery marks an invoice delivered or picked up
// @Summary      Complete fulfillment
// @Description  Mark the invoice delivered (delivery type) or picked up (pickup type). Sets the completion date exactly once.
// @Tags         invoices
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  Response{data=models.Invoice}
// @Failure      404  {object}  Response{error=string}
// @Failure      409  {object}  Response{error=string}
// @Router       /invoices/{id}/delivery/complete [post]
// @Security     BasicAuth
func CompleteDelivery(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	inv, err := Ledger.CompleteFulfillment(r.Context(), id)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}
