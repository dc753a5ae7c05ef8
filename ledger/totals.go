package ledger

import (
	"fmt"

	"github.com/dukahub/backoffice/models"
)

// Totals is the monetary breakdown of an invoice. Always derived from
// the current item list, never stored, so it cannot drift from its
// inputs.
type Totals struct {
	SubtotalBeforeDiscount models.Money `json:"subtotal_before_discount"`
	TotalDiscount          models.Money `json:"total_discount"`
	SubtotalAfterDiscount  models.Money `json:"subtotal_after_discount"`
	TaxAmount              models.Money `json:"tax_amount"`
	TotalAmount            models.Money `json:"total_amount"`
}

// ComputeTotals computes the invoice breakdown from line items and a tax
// rate. The order of operations is fixed: each line's discount is
// applied (and rounded) per line before summing, then tax is applied
// once to the post-discount aggregate — never per line. An empty item
// list yields all zeros.
func ComputeTotals(items []models.InvoiceItem, taxRatePercent int) (Totals, error) {
	var t Totals
	if taxRatePercent < 0 || taxRatePercent > 100 {
		return t, fmt.Errorf("tax rate %d: %w", taxRatePercent, models.ErrInvalidAmount)
	}
	for i, it := range items {
		if it.Quantity <= 0 {
			return Totals{}, fmt.Errorf("item %d quantity %d: %w", i, it.Quantity, models.ErrInvalidAmount)
		}
		if it.UnitPrice < 0 {
			return Totals{}, fmt.Errorf("item %d unit price: %w", i, models.ErrInvalidAmount)
		}
		lineSubtotal := models.Money(it.Quantity) * it.UnitPrice
		lineDiscount, err := lineSubtotal.ApplyPercent(it.DiscountPercent)
		if err != nil {
			return Totals{}, fmt.Errorf("item %d discount: %w", i, err)
		}
		t.SubtotalBeforeDiscount += lineSubtotal
		t.TotalDiscount += lineDiscount
	}
	t.SubtotalAfterDiscount = t.SubtotalBeforeDiscount - t.TotalDiscount
	tax, err := t.SubtotalAfterDiscount.ApplyPercent(taxRatePercent)
	if err != nil {
		return Totals{}, err
	}
	t.TaxAmount = tax
	t.TotalAmount = t.SubtotalAfterDiscount + t.TaxAmount
	return t, nil
}

// LineTotal is the discounted total for a single item, for display.
func LineTotal(it models.InvoiceItem) (models.Money, error) {
	subtotal := models.Money(it.Quantity) * it.UnitPrice
	discount, err := subtotal.ApplyPercent(it.DiscountPercent)
	if err != nil {
		return 0, err
	}
	return subtotal - discount, nil
}

// Refresh recomputes every derived field on the invoice: totals from
// items, amount paid from the payment list, remaining balance, and the
// composite display label. RemainingBalance is floored at zero as a
// display safety net only — overpayment is rejected at input, never
// clamped.
func Refresh(inv *models.Invoice) error {
	totals, err := ComputeTotals(inv.Items, inv.TaxRatePercent)
	if err != nil {
		return err
	}
	inv.SubtotalBeforeDiscount = totals.SubtotalBeforeDiscount
	inv.TotalDiscount = totals.TotalDiscount
	inv.SubtotalAfterDiscount = totals.SubtotalAfterDiscount
	inv.TaxAmount = totals.TaxAmount
	inv.TotalAmount = totals.TotalAmount

	var paid models.Money
	for _, p := range inv.Payments {
		paid += p.Amount
	}
	inv.AmountPaid = paid
	inv.RemainingBalance = inv.TotalAmount - paid
	if inv.RemainingBalance < 0 {
		inv.RemainingBalance = 0
	}
	inv.DisplayStatus = DisplayLabel(inv.PaymentStatus, inv.FulfillmentStatus)
	return nil
}
