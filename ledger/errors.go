package ledger

import "errors"

// Operation error kinds. Every failure is per-operation and returned to
// the caller; nothing here is fatal to the process. Validation errors
// are recoverable by re-prompting; ErrIllegalTransition and
// ErrAlreadyMatched indicate a stale view and the caller should refresh
// before retrying. models.ErrInvalidAmount covers malformed monetary
// input.
var (
	ErrOverpayment           = errors.New("payment exceeds remaining balance")
	ErrIllegalTransition     = errors.New("illegal status transition")
	ErrInvoiceNotFound       = errors.New("invoice not found")
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrAlreadyMatched        = errors.New("already matched")
	ErrTransactionNotPending = errors.New("transaction is not pending")
)
