package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dukahub/backoffice/models"
)

const txnSelectQuery = `SELECT id, amount, payment_method, reference, processed_at,
	reconciliation_status, invoice_id, created_at, updated_at
	FROM transactions`

func scanTransaction(scanner interface{ Scan(...any) error }) (models.Transaction, error) {
	var t models.Transaction
	err := scanner.Scan(&t.ID, &t.Amount, &t.PaymentMethod, &t.Reference, &t.ProcessedAt,
		&t.ReconciliationStatus, &t.InvoiceID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// ListTransactions lists payment feed transactions
// @Summary      List transactions
// @Description  Get observed payment transactions with their reconciliation state.
// @Tags         transactions
// @Produce      json
// @Param        reconciliation_status  query     string  false  "Filter by reconciliation status (pending, matched, disputed)"
// @Param        payment_method         query     string  false  "Filter by payment method"
// @Success      200                    {object}  Response{data=[]models.Transaction}
// @Router       /transactions [get]
// @Security     BasicAuth
func ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := txnSelectQuery
	var conditions []string
	var args []any

	if s := r.URL.Query().Get("reconciliation_status"); s != "" {
		conditions = append(conditions, "reconciliation_status = ?")
		args = append(args, s)
	}
	if m := r.URL.Query().Get("payment_method"); m != "" {
		conditions = append(conditions, "payment_method = ?")
		args = append(args, m)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := DB.Query(query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		txns = append(txns, t)
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

// GetTransaction retrieves a single transaction by ID
// @Summary      Get transaction
// @Description  Get one payment feed transaction.
// @Tags         transactions
// @Produce      json
// @Param        id   path      int  true  "Transaction ID"
// @Success      200  {object}  Response{data=models.Transaction}
// @Failure      404  {object}  Response{error=string}
// @Router       /transactions/{id} [get]
// @Security     BasicAuth
func GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	t, err := scanTransaction(DB.QueryRow(txnSelectQuery+" WHERE id = ?", id))
	if err != nil {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateTransaction records an observed payment event
// @Summary      Create transaction
// @Description  Record a payment observation from an external feed (M-Pesa statement, bank feed, till record). Starts pending reconciliation.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        transaction  body      models.TransactionInput  true  "Transaction contents"
// @Success      201          {object}  Response{data=models.Transaction}
// @Failure      400          {object}  Response{error=string}
// @Router       /transactions [post]
// @Security     BasicAuth
func CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var input models.TransactionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var id int
	err := DB.QueryRow(`INSERT INTO transactions (amount, payment_method, reference, processed_at)
		VALUES (?, ?, ?, ?) RETURNING id`,
		input.Amount, input.PaymentMethod, input.Reference, input.ProcessedAt).Scan(&id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	t, _ := scanTransaction(DB.QueryRow(txnSelectQuery+" WHERE id = ?", id))
	writeJSON(w, http.StatusCreated, t)
}

// candidateList is the response shape for ranked match proposals.
type candidateList struct {
	Transaction models.Transaction `json:"transaction"`
	Candidates  any                `json:"candidates"`
}

// ListCandidates ranks unmatched invoices for a transaction
// @Summary      Rank match candidates
// @Description  Rank unmatched invoices by amount proximity to this transaction. Read-only; confirming re-validates against current state.
// @Tags         transactions
// @Produce      json
// @Param        id   path      int  true  "Transaction ID"
// @Success      200  {object}  Response{data=candidateList}
// @Failure      404  {object}  Response{error=string}
// @Router       /transactions/{id}/candidates [get]
// @Security     BasicAuth
func ListCandidates(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	txn, candidates, err := Ledger.Candidates(r.Context(), id)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, candidateList{Transaction: *txn, Candidates: candidates})
}

type matchRequest struct {
	InvoiceID int `json:"invoice_id"`
}

// ConfirmMatch links a transaction to an invoice
// @Summary      Confirm match
// @Description  Link the transaction to an invoice and record the payment. Both effects commit atomically; a transaction already matched fails regardless of candidate.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Param        id     path      int           true  "Transaction ID"
// @Param        match  body      matchRequest  true  "Target invoice"
// @Success      200    {object}  Response{data=models.Transaction}
// @Failure      404    {object}  Response{error=string}
// @Failure      409    {object}  Response{error=string}
// @Router       /transactions/{id}/match [post]
// @Security     BasicAuth
func ConfirmMatch(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.InvoiceID <= 0 {
		writeError(w, http.StatusBadRequest, "invoice_id is required")
		return
	}
	txn, err := Ledger.ConfirmMatch(r.Context(), id, req.InvoiceID)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

// DisputeTransaction flags a pending transaction
// @Summary      Mark transaction disputed
// @Description  Flag a pending transaction for triage. No invoice is touched; a disputed transaction can still be matched later.
// @Tags         transactions
// @Produce      json
// @Param        id   path      int  true  "Transaction ID"
// @Success      200  {object}  Response{data=models.Transaction}
// @Failure      404  {object}  Response{error=string}
// @Failure      409  {object}  Response{error=string}
// @Router       /transactions/{id}/dispute [post]
// @Security     BasicAuth
func DisputeTransaction(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	txn, err := Ledger.MarkDisputed(r.Context(), id)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}
