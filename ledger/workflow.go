package ledger

import (
	"fmt"
	"time"

	"github.com/dukahub/backoffice/models"
)

// The invoice lifecycle is two independent axes. Payment:
//
//	draft -> sent -> partially_paid -> paid
//	{draft, sent, partially_paid} -> cancelled
//
// paid and cancelled are terminal. Fulfillment (delivery type):
//
//	pending -> out_for_delivery -> delivered
//
// and for pickup type: pending -> picked_up. The axes never gate each
// other: a paid invoice can be pending delivery and a delivered one can
// be partially paid.

// canRecordPayment reports whether the payment axis accepts payments.
// Drafts must be finalized first; paid and cancelled are terminal.
func canRecordPayment(s models.PaymentStatus) bool {
	return s == models.PaymentStatusSent || s == models.PaymentStatusPartiallyPaid
}

// Finalize moves a draft onto the payment track.
func Finalize(inv *models.Invoice) error {
	if inv.PaymentStatus != models.PaymentStatusDraft {
		return fmt.Errorf("finalize from %s: %w", inv.PaymentStatus, ErrIllegalTransition)
	}
	inv.PaymentStatus = models.PaymentStatusSent
	return nil
}

// Cancel terminates the payment axis. Not allowed once paid.
func Cancel(inv *models.Invoice) error {
	switch inv.PaymentStatus {
	case models.PaymentStatusDraft, models.PaymentStatusSent, models.PaymentStatusPartiallyPaid:
		inv.PaymentStatus = models.PaymentStatusCancelled
		return nil
	}
	return fmt.Errorf("cancel from %s: %w", inv.PaymentStatus, ErrIllegalTransition)
}

// paymentStatusFor derives the payment-axis state after a payment.
func paymentStatusFor(paid, total models.Money) models.PaymentStatus {
	if paid >= total {
		return models.PaymentStatusPaid
	}
	return models.PaymentStatusPartiallyPaid
}

// Dispatch marks a delivery-type invoice as out for delivery. Pickup
// invoices never pass through this state.
func Dispatch(inv *models.Invoice) error {
	if inv.Delivery == nil || inv.Delivery.Type != models.DeliveryTypeDelivery {
		return fmt.Errorf("dispatch requires delivery fulfillment: %w", ErrIllegalTransition)
	}
	if inv.FulfillmentStatus != models.FulfillmentPending {
		return fmt.Errorf("dispatch from %s: %w", inv.FulfillmentStatus, ErrIllegalTransition)
	}
	inv.FulfillmentStatus = models.FulfillmentOutForDelivery
	return nil
}

// ConfirmCompletion finishes the fulfillment axis: out_for_delivery ->
// delivered for delivery type, pending -> picked_up for pickup type.
// The completed date is set exactly on this transition and is immutable
// afterwards.
func ConfirmCompletion(inv *models.Invoice, now time.Time) error {
	if inv.Delivery == nil {
		return fmt.Errorf("invoice has no fulfillment info: %w", ErrIllegalTransition)
	}
	switch inv.Delivery.Type {
	case models.DeliveryTypeDelivery:
		if inv.FulfillmentStatus != models.FulfillmentOutForDelivery {
			return fmt.Errorf("complete delivery from %s: %w", inv.FulfillmentStatus, ErrIllegalTransition)
		}
		inv.FulfillmentStatus = models.FulfillmentDelivered
	case models.DeliveryTypePickup:
		if inv.FulfillmentStatus != models.FulfillmentPending {
			return fmt.Errorf("complete pickup from %s: %w", inv.FulfillmentStatus, ErrIllegalTransition)
		}
		inv.FulfillmentStatus = models.FulfillmentPickedUp
	default:
		return fmt.Errorf("unknown fulfillment type %q: %w", inv.Delivery.Type, ErrIllegalTransition)
	}
	completed := now
	inv.Delivery.CompletedDate = &completed
	return nil
}

// DisplayLabel projects the two axes into the single composite label the
// legacy screens show. Presentation only — the axes are the source of
// truth.
func DisplayLabel(pay models.PaymentStatus, fulfillment models.FulfillmentStatus) string {
	if pay == models.PaymentStatusCancelled {
		return string(pay)
	}
	if fulfillment != models.FulfillmentPending {
		return string(fulfillment)
	}
	return string(pay)
}
