package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukahub/backoffice/models"
)

func newTestService() (*Service, *memStore, *recordingNotifier) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	return NewService(store, notifier), store, notifier
}

func pendingTransaction(id int, amount models.Money) *models.Transaction {
	ref := "MPESA-REF"
	return &models.Transaction{
		ID:                   id,
		Amount:               amount,
		PaymentMethod:        models.MethodMpesa,
		Reference:            &ref,
		ReconciliationStatus: models.ReconciliationPending,
	}
}

func TestServiceRecordPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the payment and emits events", func(t *testing.T) {
		svc, store, notifier := newTestService()
		store.putInvoice(sentInvoice())

		inv, err := svc.RecordPayment(ctx, 1, models.PaymentInput{Amount: 1000, Method: models.MethodCash})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPartiallyPaid, inv.PaymentStatus)

		reloaded, err := store.Invoice(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, models.Money(1000), reloaded.AmountPaid)
		require.Len(t, reloaded.Payments, 1)

		events := notifier.all()
		require.Len(t, events, 2)
		paid, ok := events[0].(PaymentRecorded)
		require.True(t, ok)
		assert.Equal(t, 1, paid.InvoiceID)
		assert.Equal(t, models.Money(1000), paid.Amount)
		status, ok := events[1].(InvoiceStatusChanged)
		require.True(t, ok)
		assert.Equal(t, "sent", status.From)
		assert.Equal(t, "partially_paid", status.To)
	})

	t.Run("idempotency key replay leaves one payment and emits once", func(t *testing.T) {
		svc, store, notifier := newTestService()
		store.putInvoice(sentInvoice())
		in := models.PaymentInput{Amount: 500, Method: models.MethodMpesa, IdempotencyKey: uuid.NewString()}

		_, err := svc.RecordPayment(ctx, 1, in)
		require.NoError(t, err)
		_, err = svc.RecordPayment(ctx, 1, in)
		require.NoError(t, err)

		reloaded, err := store.Invoice(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, reloaded.Payments, 1)
		assert.Equal(t, models.Money(500), reloaded.AmountPaid)

		var recorded int
		for _, e := range notifier.all() {
			if _, ok := e.(PaymentRecorded); ok {
				recorded++
			}
		}
		assert.Equal(t, 1, recorded)
	})

	t.Run("unknown invoice", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.RecordPayment(ctx, 42, models.PaymentInput{Amount: 100, Method: models.MethodCash})
		assert.ErrorIs(t, err, ErrInvoiceNotFound)
	})

	t.Run("save failure surfaces as a wrapped storage error", func(t *testing.T) {
		svc, store, notifier := newTestService()
		store.putInvoice(sentInvoice())
		store.saveInvoiceErr = errors.New("disk full")

		_, err := svc.RecordPayment(ctx, 1, models.PaymentInput{Amount: 100, Method: models.MethodCash})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "saving invoice 1")
		assert.NotErrorIs(t, err, ErrOverpayment)
		assert.NotErrorIs(t, err, models.ErrInvalidAmount)
		assert.Empty(t, notifier.all())

		// The stored invoice is untouched.
		store.saveInvoiceErr = nil
		reloaded, err := store.Invoice(ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, reloaded.Payments)
	})
}

func TestServiceTransitions(t *testing.T) {
	ctx := context.Background()

	svc, store, notifier := newTestService()
	inv := draftInvoice()
	inv.Delivery = &models.DeliveryInfo{Type: models.DeliveryTypeDelivery}
	store.putInvoice(inv)

	out, err := svc.Finalize(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSent, out.PaymentStatus)

	out, err = svc.Dispatch(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.FulfillmentOutForDelivery, out.FulfillmentStatus)
	assert.Equal(t, "out_for_delivery", out.DisplayStatus)

	out, err = svc.CompleteFulfillment(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.FulfillmentDelivered, out.FulfillmentStatus)
	require.NotNil(t, out.Delivery.CompletedDate)

	// Every transition changed the display label, so each emitted one event.
	var changes []InvoiceStatusChanged
	for _, e := range notifier.all() {
		if c, ok := e.(InvoiceStatusChanged); ok {
			changes = append(changes, c)
		}
	}
	require.Len(t, changes, 3)
	assert.Equal(t, "draft", changes[0].From)
	assert.Equal(t, "delivered", changes[2].To)

	// Illegal transitions never reach the store.
	_, err = svc.Finalize(ctx, 1)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestServiceConfirmMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("matches, records payment, emits events", func(t *testing.T) {
		svc, store, notifier := newTestService()
		store.putInvoice(sentInvoice())
		store.putTransaction(pendingTransaction(7, 2088))

		txn, err := svc.ConfirmMatch(ctx, 7, 1)
		require.NoError(t, err)
		assert.Equal(t, models.ReconciliationMatched, txn.ReconciliationStatus)
		require.NotNil(t, txn.InvoiceID)
		assert.Equal(t, 1, *txn.InvoiceID)

		inv, err := store.Invoice(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPaid, inv.PaymentStatus)
		require.Len(t, inv.Payments, 1)
		assert.Equal(t, models.Money(2088), inv.Payments[0].Amount)

		events := notifier.all()
		require.Len(t, events, 3)
		matched, ok := events[0].(TransactionMatched)
		require.True(t, ok)
		assert.Equal(t, 7, matched.TransactionID)
		assert.Equal(t, 1, matched.InvoiceID)
		_, ok = events[1].(PaymentRecorded)
		require.True(t, ok)
		status, ok := events[2].(InvoiceStatusChanged)
		require.True(t, ok)
		assert.Equal(t, "paid", status.To)
	})

	t.Run("second confirm of the same transaction fails", func(t *testing.T) {
		svc, store, _ := newTestService()
		store.putInvoice(sentInvoice())
		other := sentInvoice()
		other.ID = 2
		store.putInvoice(other)
		store.putTransaction(pendingTransaction(7, 2088))

		_, err := svc.ConfirmMatch(ctx, 7, 1)
		require.NoError(t, err)

		_, err = svc.ConfirmMatch(ctx, 7, 2)
		assert.ErrorIs(t, err, ErrAlreadyMatched)

		// The second invoice saw no payment.
		inv, err := store.Invoice(ctx, 2)
		require.NoError(t, err)
		assert.Empty(t, inv.Payments)
	})

	t.Run("second transaction for an amount already matched is rejected", func(t *testing.T) {
		svc, store, _ := newTestService()
		store.putInvoice(sentInvoice())
		store.putTransaction(pendingTransaction(7, 1000))
		store.putTransaction(pendingTransaction(8, 1000))

		_, err := svc.ConfirmMatch(ctx, 7, 1)
		require.NoError(t, err)

		_, err = svc.ConfirmMatch(ctx, 8, 1)
		assert.ErrorIs(t, err, ErrAlreadyMatched)

		inv, err := store.Invoice(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, models.Money(1000), inv.AmountPaid)
	})

	t.Run("disputed transactions can still be matched", func(t *testing.T) {
		svc, store, _ := newTestService()
		store.putInvoice(sentInvoice())
		txn := pendingTransaction(7, 2088)
		txn.ReconciliationStatus = models.ReconciliationDisputed
		store.putTransaction(txn)

		confirmed, err := svc.ConfirmMatch(ctx, 7, 1)
		require.NoError(t, err)
		assert.Equal(t, models.ReconciliationMatched, confirmed.ReconciliationStatus)
	})

	t.Run("overpayment aborts the match", func(t *testing.T) {
		svc, store, notifier := newTestService()
		store.putInvoice(sentInvoice())
		store.putTransaction(pendingTransaction(7, 9999))

		_, err := svc.ConfirmMatch(ctx, 7, 1)
		assert.ErrorIs(t, err, ErrOverpayment)
		assert.Empty(t, notifier.all())

		txn, err := store.Transaction(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, models.ReconciliationPending, txn.ReconciliationStatus)
	})

	t.Run("unknown invoice or transaction", func(t *testing.T) {
		svc, store, _ := newTestService()
		store.putInvoice(sentInvoice())
		store.putTransaction(pendingTransaction(7, 100))

		_, err := svc.ConfirmMatch(ctx, 99, 1)
		assert.ErrorIs(t, err, ErrTransactionNotFound)
		_, err = svc.ConfirmMatch(ctx, 7, 99)
		assert.ErrorIs(t, err, ErrInvoiceNotFound)
	})
}

func TestServiceCandidates(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService()

	store.putInvoice(&models.Invoice{
		ID:            1,
		PaymentStatus: models.PaymentStatusSent,
		Items:         []models.InvoiceItem{{Description: "A", Quantity: 1, UnitPrice: 2088}},
	})
	paid := &models.Invoice{
		ID:            2,
		PaymentStatus: models.PaymentStatusPaid,
		Items:         []models.InvoiceItem{{Description: "B", Quantity: 1, UnitPrice: 2088}},
		Payments:      []models.Payment{{ID: "p", Amount: 2088, Method: models.MethodCash}},
	}
	store.putInvoice(paid)
	store.putTransaction(pendingTransaction(7, 2088))

	txn, candidates, err := svc.Candidates(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, txn.ID)
	require.Len(t, candidates, 1)
	assert.Equal(t, 1, candidates[0].Invoice.ID)
	assert.Equal(t, MatchExact, candidates[0].Quality)
}

func TestServiceMarkDisputed(t *testing.T) {
	ctx := context.Background()

	t.Run("pending becomes disputed", func(t *testing.T) {
		svc, store, _ := newTestService()
		store.putTransaction(pendingTransaction(7, 100))

		txn, err := svc.MarkDisputed(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, models.ReconciliationDisputed, txn.ReconciliationStatus)

		reloaded, err := store.Transaction(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, models.ReconciliationDisputed, reloaded.ReconciliationStatus)
	})

	t.Run("save failure surfaces and leaves the transaction pending", func(t *testing.T) {
		svc, store, _ := newTestService()
		store.putTransaction(pendingTransaction(7, 100))
		store.saveTransactionErr = errors.New("disk full")

		_, err := svc.MarkDisputed(ctx, 7)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "saving transaction 7")

		store.saveTransactionErr = nil
		reloaded, err := store.Transaction(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, models.ReconciliationPending, reloaded.ReconciliationStatus)
	})

	t.Run("only pending can be disputed", func(t *testing.T) {
		svc, store, _ := newTestService()
		for _, status := range []models.ReconciliationStatus{
			models.ReconciliationMatched,
			models.ReconciliationDisputed,
		} {
			txn := pendingTransaction(7, 100)
			txn.ReconciliationStatus = status
			store.putTransaction(txn)

			_, err := svc.MarkDisputed(ctx, 7)
			assert.ErrorIs(t, err, ErrTransactionNotPending, "from %s", status)
		}
	})
}
