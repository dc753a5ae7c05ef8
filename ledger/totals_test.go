package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukahub/backoffice/models"
)

func TestComputeTotals(t *testing.T) {
	t.Run("single discounted line with tax", func(t *testing.T) {
		// qty 2 x 1000c at 10% discount, 16% tax:
		// subtotal 2000, discount 200, after 1800, tax 288, total 2088
		items := []models.InvoiceItem{
			{Description: "Maize flour 2kg", Quantity: 2, UnitPrice: 1000, DiscountPercent: 10},
		}
		totals, err := ComputeTotals(items, 16)
		require.NoError(t, err)
		assert.Equal(t, models.Money(2000), totals.SubtotalBeforeDiscount)
		assert.Equal(t, models.Money(200), totals.TotalDiscount)
		assert.Equal(t, models.Money(1800), totals.SubtotalAfterDiscount)
		assert.Equal(t, models.Money(288), totals.TaxAmount)
		assert.Equal(t, models.Money(2088), totals.TotalAmount)
	})

	t.Run("empty item list is all zeros", func(t *testing.T) {
		totals, err := ComputeTotals(nil, 16)
		require.NoError(t, err)
		assert.Equal(t, Totals{}, totals)
	})

	t.Run("full discount never goes negative", func(t *testing.T) {
		items := []models.InvoiceItem{
			{Description: "Promo item", Quantity: 3, UnitPrice: 499, DiscountPercent: 100},
		}
		totals, err := ComputeTotals(items, 16)
		require.NoError(t, err)
		assert.Equal(t, models.Money(0), totals.SubtotalAfterDiscount)
		assert.Equal(t, models.Money(0), totals.TotalAmount)
	})

	t.Run("zero tax rate", func(t *testing.T) {
		items := []models.InvoiceItem{
			{Description: "Bread", Quantity: 1, UnitPrice: 6500},
		}
		totals, err := ComputeTotals(items, 0)
		require.NoError(t, err)
		assert.Equal(t, models.Money(0), totals.TaxAmount)
		assert.Equal(t, models.Money(6500), totals.TotalAmount)
	})

	t.Run("discount applies per line before summing", func(t *testing.T) {
		// Two lines where per-line rounding differs from rounding the sum:
		// 333 at 10% -> 33, twice = 66; 10% of 666 would round to 67.
		items := []models.InvoiceItem{
			{Description: "A", Quantity: 1, UnitPrice: 333, DiscountPercent: 10},
			{Description: "B", Quantity: 1, UnitPrice: 333, DiscountPercent: 10},
		}
		totals, err := ComputeTotals(items, 0)
		require.NoError(t, err)
		assert.Equal(t, models.Money(66), totals.TotalDiscount)
	})

	t.Run("line totals sum to the discounted subtotal", func(t *testing.T) {
		items := []models.InvoiceItem{
			{Description: "A", Quantity: 3, UnitPrice: 1234, DiscountPercent: 7},
			{Description: "B", Quantity: 1, UnitPrice: 999, DiscountPercent: 33},
			{Description: "C", Quantity: 12, UnitPrice: 85, DiscountPercent: 0},
			{Description: "D", Quantity: 2, UnitPrice: 10001, DiscountPercent: 100},
		}
		totals, err := ComputeTotals(items, 16)
		require.NoError(t, err)

		var sum models.Money
		for _, it := range items {
			lt, err := LineTotal(it)
			require.NoError(t, err)
			sum += lt
		}
		assert.Equal(t, totals.SubtotalAfterDiscount, sum)
	})

	t.Run("invalid inputs rejected", func(t *testing.T) {
		_, err := ComputeTotals([]models.InvoiceItem{{Description: "x", Quantity: 0, UnitPrice: 100}}, 16)
		assert.ErrorIs(t, err, models.ErrInvalidAmount)

		_, err = ComputeTotals([]models.InvoiceItem{{Description: "x", Quantity: 1, UnitPrice: -1}}, 16)
		assert.ErrorIs(t, err, models.ErrInvalidAmount)

		_, err = ComputeTotals([]models.InvoiceItem{{Description: "x", Quantity: 1, UnitPrice: 100, DiscountPercent: 101}}, 16)
		assert.ErrorIs(t, err, models.ErrInvalidAmount)

		_, err = ComputeTotals(nil, -1)
		assert.ErrorIs(t, err, models.ErrInvalidAmount)
	})
}

func TestRefresh(t *testing.T) {
	inv := &models.Invoice{
		PaymentStatus:     models.PaymentStatusSent,
		FulfillmentStatus: models.FulfillmentPending,
		TaxRatePercent:    16,
		Items: []models.InvoiceItem{
			{Description: "Item", Quantity: 2, UnitPrice: 1000, DiscountPercent: 10},
		},
		Payments: []models.Payment{
			{ID: "p1", Amount: 500, Method: models.MethodCash},
		},
	}
	require.NoError(t, Refresh(inv))
	assert.Equal(t, models.Money(2088), inv.TotalAmount)
	assert.Equal(t, models.Money(500), inv.AmountPaid)
	assert.Equal(t, models.Money(1588), inv.RemainingBalance)
	assert.Equal(t, "sent", inv.DisplayStatus)

	// Balance never exceeds total and never goes negative.
	assert.LessOrEqual(t, inv.RemainingBalance, inv.TotalAmount)
	assert.GreaterOrEqual(t, inv.RemainingBalance, models.Money(0))
}
