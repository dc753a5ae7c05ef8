package ledger

import (
	"context"

	"github.com/dukahub/backoffice/models"
)

// Events emitted after a state change has committed. Delivery is
// fire-and-forget: a notification failure never rolls back the ledger.

// PaymentRecorded is emitted for every accepted payment, whether entered
// directly or via a confirmed reconciliation match.
type PaymentRecorded struct {
	InvoiceID int                  `json:"invoice_id"`
	PaymentID string               `json:"payment_id"`
	Amount    models.Money         `json:"amount"`
	Method    models.PaymentMethod `json:"method"`
	Reference *string              `json:"reference"`
}

// InvoiceStatusChanged is emitted when either axis moves. From/To carry
// the composite display label.
type InvoiceStatusChanged struct {
	InvoiceID int    `json:"invoice_id"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// TransactionMatched is emitted when a feed transaction is confirmed
// against an invoice.
type TransactionMatched struct {
	TransactionID int          `json:"transaction_id"`
	InvoiceID     int          `json:"invoice_id"`
	Amount        models.Money `json:"amount"`
}

// Notifier fans events out to delivery channels (SMS, email, push).
// Implementations must not block on delivery outcome.
type Notifier interface {
	Notify(ctx context.Context, event any)
}

// NopNotifier discards events.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, any) {}
