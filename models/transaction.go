package models

import "time"

// ReconciliationStatus tracks whether an observed payment transaction
// has been linked to an invoice. pending and disputed are both
// unresolved; disputed exists for triage visibility only and may still
// be matched later.
type ReconciliationStatus string

const (
	ReconciliationPending  ReconciliationStatus = "pending"
	ReconciliationMatched  ReconciliationStatus = "matched"
	ReconciliationDisputed ReconciliationStatus = "disputed"
)

// Transaction is an externally observed payment event (M-Pesa
// statement line, bank feed entry, till record). The reconciliation
// status and invoice link are the only fields this system mutates.
type Transaction struct {
	ID                   int                  `json:"id"`
	Amount               Money                `json:"amount"`
	PaymentMethod        PaymentMethod        `json:"payment_method"`
	Reference            *string              `json:"reference"`
	ProcessedAt          *string              `json:"processed_at"`
	ReconciliationStatus ReconciliationStatus `json:"reconciliation_status"`
	InvoiceID            *int                 `json:"invoice_id"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// TransactionInput is used for recording feed entries.
type TransactionInput struct {
	Amount        Money         `json:"amount"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Reference     *string       `json:"reference"`
	ProcessedAt   *string       `json:"processed_at"`
}

func (t *TransactionInput) Validate() string {
	if t.Amount <= 0 {
		return "amount must be positive"
	}
	if !ValidPaymentMethod(t.PaymentMethod) {
		return "payment_method must be one of: cash, mpesa, bank_transfer"
	}
	return ""
}
