package ledger

import (
	"fmt"
	"time"

	"github.com/dukahub/backoffice/models"

	"github.com/google/uuid"
)

// RecordPayment validates and appends a payment to the invoice, then
// advances the payment axis. The payment list is append-only: entries
// are never edited or deleted, corrections are new entries.
//
// Validation order: the payment axis must accept payments (drafts and
// terminal states fail with ErrIllegalTransition), then amount > 0, then
// amount <= remaining balance. Overpayment is rejected outright, never
// clamped. The full flag substitutes the exact remaining balance for the
// amount, which makes it exempt from the overpayment check by
// construction.
//
// If the input carries an idempotency key already present on the
// invoice, the call is a replay: the existing payment is returned with
// replayed=true and nothing changes.
func RecordPayment(inv *models.Invoice, in models.PaymentInput, now time.Time) (payment *models.Payment, replayed bool, err error) {
	if !canRecordPayment(inv.PaymentStatus) {
		return nil, false, fmt.Errorf("record payment in %s: %w", inv.PaymentStatus, ErrIllegalTransition)
	}
	if err := Refresh(inv); err != nil {
		return nil, false, err
	}

	if in.IdempotencyKey != "" {
		for i := range inv.Payments {
			if inv.Payments[i].ID == in.IdempotencyKey {
				return &inv.Payments[i], true, nil
			}
		}
	}

	amount := in.Amount
	if in.Full {
		amount = inv.RemainingBalance
	}
	if amount <= 0 {
		return nil, false, fmt.Errorf("payment of %d cents: %w", amount, models.ErrInvalidAmount)
	}
	if amount > inv.RemainingBalance {
		return nil, false, fmt.Errorf("payment %d exceeds balance %d: %w", amount, inv.RemainingBalance, ErrOverpayment)
	}

	id := in.IdempotencyKey
	if id == "" {
		id = uuid.NewString()
	}
	inv.Payments = append(inv.Payments, models.Payment{
		ID:          id,
		InvoiceID:   inv.ID,
		Amount:      amount,
		Method:      in.Method,
		Reference:   in.Reference,
		Notes:       in.Notes,
		ProcessedAt: now,
	})

	inv.PaymentStatus = paymentStatusFor(inv.AmountPaid+amount, inv.TotalAmount)
	if err := Refresh(inv); err != nil {
		return nil, false, err
	}
	return &inv.Payments[len(inv.Payments)-1], false, nil
}
