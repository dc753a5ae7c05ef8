package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukahub/backoffice/models"
)

func draftInvoice() *models.Invoice {
	return &models.Invoice{
		ID:                1,
		PaymentStatus:     models.PaymentStatusDraft,
		FulfillmentStatus: models.FulfillmentPending,
		TaxRatePercent:    16,
		Items: []models.InvoiceItem{
			{Description: "Item", Quantity: 2, UnitPrice: 1000, DiscountPercent: 10},
		},
	}
}

func TestFinalize(t *testing.T) {
	inv := draftInvoice()
	require.NoError(t, Finalize(inv))
	assert.Equal(t, models.PaymentStatusSent, inv.PaymentStatus)

	// Only drafts can be finalized.
	assert.ErrorIs(t, Finalize(inv), ErrIllegalTransition)
}

func TestCancel(t *testing.T) {
	for _, from := range []models.PaymentStatus{
		models.PaymentStatusDraft,
		models.PaymentStatusSent,
		models.PaymentStatusPartiallyPaid,
	} {
		inv := draftInvoice()
		inv.PaymentStatus = from
		require.NoError(t, Cancel(inv), "cancel from %s", from)
		assert.Equal(t, models.PaymentStatusCancelled, inv.PaymentStatus)
	}

	for _, from := range []models.PaymentStatus{
		models.PaymentStatusPaid,
		models.PaymentStatusCancelled,
	} {
		inv := draftInvoice()
		inv.PaymentStatus = from
		assert.ErrorIs(t, Cancel(inv), ErrIllegalTransition, "cancel from %s", from)
	}
}

func TestDispatchAndComplete(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	t.Run("delivery path", func(t *testing.T) {
		inv := draftInvoice()
		inv.Delivery = &models.DeliveryInfo{Type: models.DeliveryTypeDelivery}

		require.NoError(t, Dispatch(inv))
		assert.Equal(t, models.FulfillmentOutForDelivery, inv.FulfillmentStatus)

		// Dispatching twice is illegal.
		assert.ErrorIs(t, Dispatch(inv), ErrIllegalTransition)

		require.NoError(t, ConfirmCompletion(inv, now))
		assert.Equal(t, models.FulfillmentDelivered, inv.FulfillmentStatus)
		require.NotNil(t, inv.Delivery.CompletedDate)
		assert.Equal(t, now, *inv.Delivery.CompletedDate)

		// Completed date is immutable: repeating the transition fails
		// and the date stays put.
		assert.ErrorIs(t, ConfirmCompletion(inv, now.Add(time.Hour)), ErrIllegalTransition)
		assert.Equal(t, now, *inv.Delivery.CompletedDate)
	})

	t.Run("pickup skips out_for_delivery", func(t *testing.T) {
		inv := draftInvoice()
		inv.Delivery = &models.DeliveryInfo{Type: models.DeliveryTypePickup}

		assert.ErrorIs(t, Dispatch(inv), ErrIllegalTransition)

		require.NoError(t, ConfirmCompletion(inv, now))
		assert.Equal(t, models.FulfillmentPickedUp, inv.FulfillmentStatus)
		require.NotNil(t, inv.Delivery.CompletedDate)
	})

	t.Run("no delivery info", func(t *testing.T) {
		inv := draftInvoice()
		assert.ErrorIs(t, Dispatch(inv), ErrIllegalTransition)
		assert.ErrorIs(t, ConfirmCompletion(inv, now), ErrIllegalTransition)
	})

	t.Run("delivery must be dispatched before completion", func(t *testing.T) {
		inv := draftInvoice()
		inv.Delivery = &models.DeliveryInfo{Type: models.DeliveryTypeDelivery}
		assert.ErrorIs(t, ConfirmCompletion(inv, now), ErrIllegalTransition)
	})
}

func TestAxesAdvanceIndependently(t *testing.T) {
	now := time.Now()
	inv := draftInvoice()
	inv.Delivery = &models.DeliveryInfo{Type: models.DeliveryTypeDelivery}
	require.NoError(t, Finalize(inv))

	// Pay in full, then move fulfillment: the paid invoice is still
	// pending delivery until dispatched.
	_, _, err := RecordPayment(inv, models.PaymentInput{Amount: 2088, Method: models.MethodMpesa}, now)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, inv.PaymentStatus)
	assert.Equal(t, models.FulfillmentPending, inv.FulfillmentStatus)

	require.NoError(t, Dispatch(inv))
	require.NoError(t, ConfirmCompletion(inv, now))
	assert.Equal(t, models.PaymentStatusPaid, inv.PaymentStatus)
	assert.Equal(t, models.FulfillmentDelivered, inv.FulfillmentStatus)
}

func TestDisplayLabel(t *testing.T) {
	tests := []struct {
		pay     models.PaymentStatus
		fulfill models.FulfillmentStatus
		want    string
	}{
		{models.PaymentStatusDraft, models.FulfillmentPending, "draft"},
		{models.PaymentStatusSent, models.FulfillmentPending, "sent"},
		{models.PaymentStatusPartiallyPaid, models.FulfillmentOutForDelivery, "out_for_delivery"},
		{models.PaymentStatusPaid, models.FulfillmentDelivered, "delivered"},
		{models.PaymentStatusPaid, models.FulfillmentPending, "paid"},
		{models.PaymentStatusCancelled, models.FulfillmentOutForDelivery, "cancelled"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DisplayLabel(tt.pay, tt.fulfill))
	}
}
