package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the payment axis of an invoice's lifecycle.
type PaymentStatus string

const (
	PaymentStatusDraft         PaymentStatus = "draft"
	PaymentStatusSent          PaymentStatus = "sent"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusCancelled     PaymentStatus = "cancelled"
)

// FulfillmentStatus is the delivery/pickup axis. It advances
// independently of the payment axis: a paid invoice can still be
// pending delivery, a delivered one can still be partially paid.
type FulfillmentStatus string

const (
	FulfillmentPending        FulfillmentStatus = "pending"
	FulfillmentOutForDelivery FulfillmentStatus = "out_for_delivery"
	FulfillmentDelivered      FulfillmentStatus = "delivered"
	FulfillmentPickedUp       FulfillmentStatus = "picked_up"
)

// PaymentMethod identifies how a payment was made.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodMpesa        PaymentMethod = "mpesa"
	MethodBankTransfer PaymentMethod = "bank_transfer"
)

// ValidPaymentMethod reports whether m is a known method.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case MethodCash, MethodMpesa, MethodBankTransfer:
		return true
	}
	return false
}

// DeliveryType distinguishes customer pickup from dispatched delivery.
type DeliveryType string

const (
	DeliveryTypePickup   DeliveryType = "pickup"
	DeliveryTypeDelivery DeliveryType = "delivery"
)

// InvoiceItem is a single line of an invoice. Identity within the
// invoice is the row id; fields are mutable only while the invoice is
// in draft.
type InvoiceItem struct {
	ID              int    `json:"id"`
	Description     string `json:"description"`
	Quantity        int    `json:"quantity"`
	UnitPrice       Money  `json:"unit_price"`
	DiscountPercent int    `json:"discount_percent"`
}

// Payment is one recorded payment against an invoice. Immutable once
// created: corrections are new payments or a transaction dispute, never
// edits.
type Payment struct {
	ID          string        `json:"id"`
	InvoiceID   int           `json:"invoice_id"`
	Amount      Money         `json:"amount"`
	Method      PaymentMethod `json:"method"`
	Reference   *string       `json:"reference"`
	Notes       *string       `json:"notes"`
	ProcessedAt time.Time     `json:"processed_at"`
}

// DeliveryInfo holds the fulfillment logistics for an invoice.
// CompletedDate is set exactly once, on the transition into
// delivered/picked_up.
type DeliveryInfo struct {
	Type           DeliveryType `json:"type"`
	ScheduledDate  *string      `json:"scheduled_date"`
	CompletedDate  *time.Time   `json:"completed_date"`
	RecipientName  *string      `json:"recipient_name"`
	RecipientPhone *string      `json:"recipient_phone"`
	Address        *string      `json:"address"`
	Notes          *string      `json:"notes"`
}

// Invoice is the aggregate: line items, payments, delivery info and the
// two status axes. Monetary totals are never stored — they are always
// recomputed from the items so they cannot drift.
type Invoice struct {
	ID                int               `json:"id"`
	CustomerID        *int              `json:"customer_id"`
	InvoiceNumber     string            `json:"invoice_number"`
	IssueDate         *string           `json:"issue_date"`
	DueDate           *string           `json:"due_date"`
	TaxRatePercent    int               `json:"tax_rate_percent"`
	PaymentStatus     PaymentStatus     `json:"payment_status"`
	FulfillmentStatus FulfillmentStatus `json:"fulfillment_status"`
	Items             []InvoiceItem     `json:"items"`
	Payments          []Payment         `json:"payments"`
	Delivery          *DeliveryInfo     `json:"delivery,omitempty"`
	Notes             *string           `json:"notes"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	// Computed fields, recomputed from items/payments on every load and
	// mutation. display_status is the legacy composite label, a
	// projection for the UI, never stored.
	SubtotalBeforeDiscount Money   `json:"subtotal_before_discount"`
	TotalDiscount          Money   `json:"total_discount"`
	SubtotalAfterDiscount  Money   `json:"subtotal_after_discount"`
	TaxAmount              Money   `json:"tax_amount"`
	TotalAmount            Money   `json:"total_amount"`
	AmountPaid             Money   `json:"amount_paid"`
	RemainingBalance       Money   `json:"remaining_balance"`
	DisplayStatus          string  `json:"display_status"`
	CustomerName           *string `json:"customer_name,omitempty"`
}

// InvoiceItemInput is one line of a draft invoice being created or
// edited.
type InvoiceItemInput struct {
	Description     string `json:"description"`
	Quantity        int    `json:"quantity"`
	UnitPrice       Money  `json:"unit_price"`
	DiscountPercent int    `json:"discount_percent"`
}

func (it *InvoiceItemInput) Validate() string {
	if it.Description == "" {
		return "item description is required"
	}
	if it.Quantity <= 0 {
		return "item quantity must be positive"
	}
	if it.UnitPrice < 0 {
		return "item unit_price must be non-negative"
	}
	if it.DiscountPercent < 0 || it.DiscountPercent > 100 {
		return "item discount_percent must be between 0 and 100"
	}
	return ""
}

// DeliveryInput sets up fulfillment for an invoice.
type DeliveryInput struct {
	Type           DeliveryType `json:"type"`
	ScheduledDate  *string      `json:"scheduled_date"`
	RecipientName  *string      `json:"recipient_name"`
	RecipientPhone *string      `json:"recipient_phone"`
	Address        *string      `json:"address"`
	Notes          *string      `json:"notes"`
}

func (d *DeliveryInput) Validate() string {
	switch d.Type {
	case DeliveryTypePickup, DeliveryTypeDelivery:
	default:
		return "delivery type must be one of: pickup, delivery"
	}
	if d.Type == DeliveryTypeDelivery && (d.Address == nil || *d.Address == "") {
		return "address is required for delivery"
	}
	return ""
}

// InvoiceInput is used for creating invoices and editing drafts.
type InvoiceInput struct {
	CustomerID     *int               `json:"customer_id"`
	InvoiceNumber  string             `json:"invoice_number"`
	IssueDate      *string            `json:"issue_date"`
	DueDate        *string            `json:"due_date"`
	TaxRatePercent int                `json:"tax_rate_percent"`
	Items          []InvoiceItemInput `json:"items"`
	Delivery       *DeliveryInput     `json:"delivery"`
	Notes          *string            `json:"notes"`
}

func (i *InvoiceInput) Validate() string {
	if i.InvoiceNumber == "" {
		return "invoice_number is required"
	}
	if i.TaxRatePercent < 0 || i.TaxRatePercent > 100 {
		return "tax_rate_percent must be between 0 and 100"
	}
	for n := range i.Items {
		if msg := i.Items[n].Validate(); msg != "" {
			return msg
		}
	}
	if i.Delivery != nil {
		if msg := i.Delivery.Validate(); msg != "" {
			return msg
		}
	}
	return ""
}

// PaymentInput records a payment against an invoice. When Full is set
// the amount is taken as the exact remaining balance and Amount is
// ignored. IdempotencyKey is an optional client-generated UUID: a
// replay with a key already present on the invoice is a no-op.
type PaymentInput struct {
	Amount         Money         `json:"amount"`
	Method         PaymentMethod `json:"method"`
	Reference      *string       `json:"reference"`
	Notes          *string       `json:"notes"`
	Full           bool          `json:"full"`
	IdempotencyKey string        `json:"idempotency_key"`
}

func (p *PaymentInput) Validate() string {
	if !ValidPaymentMethod(p.Method) {
		return "method must be one of: cash, mpesa, bank_transfer"
	}
	if !p.Full && p.Amount <= 0 {
		return "amount must be positive"
	}
	if p.IdempotencyKey != "" {
		if _, err := uuid.Parse(p.IdempotencyKey); err != nil {
			return "idempotency_key must be a UUID"
		}
	}
	return ""
}
