package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukahub/backoffice/models"
)

// sentInvoice returns a finalized invoice totalling 2088 cents.
func sentInvoice() *models.Invoice {
	inv := draftInvoice()
	inv.PaymentStatus = models.PaymentStatusSent
	return inv
}

func TestRecordPayment(t *testing.T) {
	now := time.Now()

	t.Run("full payment marks paid", func(t *testing.T) {
		inv := sentInvoice()
		p, replayed, err := RecordPayment(inv, models.PaymentInput{Amount: 2088, Method: models.MethodMpesa}, now)
		require.NoError(t, err)
		assert.False(t, replayed)
		assert.Equal(t, models.Money(2088), p.Amount)
		assert.Equal(t, models.Money(0), inv.RemainingBalance)
		assert.Equal(t, models.PaymentStatusPaid, inv.PaymentStatus)
	})

	t.Run("partial payment marks partially_paid", func(t *testing.T) {
		inv := sentInvoice()
		_, _, err := RecordPayment(inv, models.PaymentInput{Amount: 1000, Method: models.MethodCash}, now)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPartiallyPaid, inv.PaymentStatus)
		assert.Equal(t, models.Money(1088), inv.RemainingBalance)

		// Second partial completes it.
		_, _, err = RecordPayment(inv, models.PaymentInput{Amount: 1088, Method: models.MethodCash}, now)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPaid, inv.PaymentStatus)
		assert.Equal(t, models.Money(0), inv.RemainingBalance)
	})

	t.Run("overpayment rejected, state unchanged", func(t *testing.T) {
		inv := sentInvoice()
		_, _, err := RecordPayment(inv, models.PaymentInput{Amount: 2500, Method: models.MethodMpesa}, now)
		assert.ErrorIs(t, err, ErrOverpayment)
		assert.Empty(t, inv.Payments)
		assert.Equal(t, models.PaymentStatusSent, inv.PaymentStatus)
	})

	t.Run("payment strictly decreases balance by its amount", func(t *testing.T) {
		inv := sentInvoice()
		require.NoError(t, Refresh(inv))
		before := inv.RemainingBalance
		_, _, err := RecordPayment(inv, models.PaymentInput{Amount: 700, Method: models.MethodCash}, now)
		require.NoError(t, err)
		assert.Equal(t, before-700, inv.RemainingBalance)
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		inv := sentInvoice()
		_, _, err := RecordPayment(inv, models.PaymentInput{Amount: 0, Method: models.MethodCash}, now)
		assert.ErrorIs(t, err, models.ErrInvalidAmount)
		_, _, err = RecordPayment(inv, models.PaymentInput{Amount: -5, Method: models.MethodCash}, now)
		assert.ErrorIs(t, err, models.ErrInvalidAmount)
	})

	t.Run("full flag pays the exact remaining balance", func(t *testing.T) {
		inv := sentInvoice()
		_, _, err := RecordPayment(inv, models.PaymentInput{Amount: 500, Method: models.MethodCash}, now)
		require.NoError(t, err)
		p, _, err := RecordPayment(inv, models.PaymentInput{Full: true, Method: models.MethodMpesa}, now)
		require.NoError(t, err)
		assert.Equal(t, models.Money(1588), p.Amount)
		assert.Equal(t, models.PaymentStatusPaid, inv.PaymentStatus)
	})

	t.Run("draft invoices reject payments", func(t *testing.T) {
		inv := draftInvoice()
		_, _, err := RecordPayment(inv, models.PaymentInput{Amount: 100, Method: models.MethodCash}, now)
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})

	t.Run("paid and cancelled are terminal", func(t *testing.T) {
		for _, status := range []models.PaymentStatus{models.PaymentStatusPaid, models.PaymentStatusCancelled} {
			inv := sentInvoice()
			inv.PaymentStatus = status
			_, _, err := RecordPayment(inv, models.PaymentInput{Amount: 100, Method: models.MethodCash}, now)
			assert.ErrorIs(t, err, ErrIllegalTransition, "from %s", status)
		}
	})

	t.Run("idempotency key replay is a no-op", func(t *testing.T) {
		inv := sentInvoice()
		key := uuid.NewString()
		in := models.PaymentInput{Amount: 1000, Method: models.MethodMpesa, IdempotencyKey: key}

		first, replayed, err := RecordPayment(inv, in, now)
		require.NoError(t, err)
		assert.False(t, replayed)

		second, replayed, err := RecordPayment(inv, in, now.Add(time.Minute))
		require.NoError(t, err)
		assert.True(t, replayed)
		assert.Equal(t, first.ID, second.ID)
		assert.Len(t, inv.Payments, 1)
		assert.Equal(t, models.Money(1088), inv.RemainingBalance)
	})

	t.Run("payments are append-only", func(t *testing.T) {
		inv := sentInvoice()
		_, _, err := RecordPayment(inv, models.PaymentInput{Amount: 300, Method: models.MethodCash}, now)
		require.NoError(t, err)
		_, _, err = RecordPayment(inv, models.PaymentInput{Amount: 400, Method: models.MethodBankTransfer}, now)
		require.NoError(t, err)
		require.Len(t, inv.Payments, 2)
		assert.Equal(t, models.Money(300), inv.Payments[0].Amount)
		assert.Equal(t, models.Money(400), inv.Payments[1].Amount)
		assert.Equal(t, models.Money(700), inv.AmountPaid)
	})
}
