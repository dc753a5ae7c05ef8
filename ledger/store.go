package ledger

import (
	"context"

	"github.com/dukahub/backoffice/models"
)

// Store is the persistence collaborator. Injected, never ambient, so
// the engine is testable against an in-memory fake. The only consistency
// assumption is that a save is durable before it returns success.
type Store interface {
	// Invoice loads the full aggregate (items, payments, delivery) with
	// derived fields refreshed. Returns ErrInvoiceNotFound.
	Invoice(ctx context.Context, id int) (*models.Invoice, error)
	// SaveInvoice persists statuses, delivery completion and any newly
	// appended payments.
	SaveInvoice(ctx context.Context, inv *models.Invoice) error
	// Transaction returns ErrTransactionNotFound.
	Transaction(ctx context.Context, id int) (*models.Transaction, error)
	SaveTransaction(ctx context.Context, txn *models.Transaction) error
	// UnmatchedInvoices lists invoices still awaiting payment: status
	// sent or partially_paid with a positive remaining balance.
	UnmatchedInvoices(ctx context.Context) ([]models.Invoice, error)
	// InvoiceHasMatch reports whether some other matched transaction
	// already points at this invoice with the same amount. Guards
	// against counting one invoice against two transactions.
	InvoiceHasMatch(ctx context.Context, invoiceID int, amount models.Money) (bool, error)
	// InTx runs fn against a transactional view of the store; all writes
	// inside commit together or not at all.
	InTx(ctx context.Context, fn func(Store) error) error
}
