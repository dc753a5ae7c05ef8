package handlers

import (
	"net/http"

	"github.com/dukahub/backoffice/db"
	"github.com/dukahub/backoffice/models"
)

type dashboardData struct {
	TotalCustomers    int `json:"total_customers"`
	TotalSuppliers    int `json:"total_suppliers"`
	TotalProducts     int `json:"total_products"`
	TotalInvoices     int `json:"total_invoices"`
	TotalTransactions int `json:"total_transactions"`

	OutstandingReceivable models.Money `json:"outstanding_receivable"`
	PaymentsReceived      models.Money `json:"payments_received"`

	PendingTransactions  int `json:"pending_transactions"`
	DisputedTransactions int `json:"disputed_transactions"`

	RecentPayments []models.Payment `json:"recent_payments"`
}

// GetDashboard retrieves dashboard summary statistics
// @Summary      Get dashboard
// @Description  Get record counts, the outstanding receivable total, reconciliation backlog, and recent payments.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  Response{data=dashboardData}
// @Router       /dashboard [get]
// @Security     BasicAuth
func GetDashboard(w http.ResponseWriter, r *http.Request) {
	var d dashboardData

	DB.QueryRow("SELECT COUNT(*) FROM customers").Scan(&d.TotalCustomers)
	DB.QueryRow("SELECT COUNT(*) FROM suppliers").Scan(&d.TotalSuppliers)
	DB.QueryRow("SELECT COUNT(*) FROM products").Scan(&d.TotalProducts)
	DB.QueryRow("SELECT COUNT(*) FROM invoices").Scan(&d.TotalInvoices)
	DB.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&d.TotalTransactions)

	DB.QueryRow("SELECT COALESCE(SUM(amount), 0) FROM payments").Scan(&d.PaymentsReceived)
	DB.QueryRow("SELECT COUNT(*) FROM transactions WHERE reconciliation_status = 'pending'").Scan(&d.PendingTransactions)
	DB.QueryRow("SELECT COUNT(*) FROM transactions WHERE reconciliation_status = 'disputed'").Scan(&d.DisputedTransactions)

	// Outstanding balances need the ledger's cent rounding, so they are
	// summed over loaded aggregates rather than in SQL.
	if unpaid, err := Store.ListInvoices(r.Context(), db.InvoiceFilters{}); err == nil {
		for _, inv := range unpaid {
			if inv.PaymentStatus == models.PaymentStatusSent || inv.PaymentStatus == models.PaymentStatusPartiallyPaid {
				d.OutstandingReceivable += inv.RemainingBalance
			}
		}
	}

	// Recent 5 payments
	rows, err := DB.Query(`SELECT id, invoice_id, amount, method, reference, notes, processed_at
		FROM payments ORDER BY processed_at DESC LIMIT 5`)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var p models.Payment
			if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Method, &p.Reference, &p.Notes, &p.ProcessedAt); err == nil {
				d.RecentPayments = append(d.RecentPayments, p)
			}
		}
	}
	if d.RecentPayments == nil {
		d.RecentPayments = []models.Payment{}
	}

	writeJSON(w, http.StatusOK, d)
}
