package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"invoicing-backend/models"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(qty, rate string) models.LineItem {
	q, r := d(qty), d(rate)
	return models.LineItem{Quantity: q, Rate: r, Amount: LineAmount(q, r)}
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name          string
		items         []models.LineItem
		taxRate       string
		discountType  models.DiscountType
		discountValue string
		amountPaid    string
		want          Totals
	}{
		{
			name:          "no items",
			items:         nil,
			taxRate:       "10",
			discountType:  models.DiscountNone,
			discountValue: "0",
			amountPaid:    "0",
			want:          Totals{d("0"), d("0"), d("0"), d("0"), d("0")},
		},
		{
			name:          "tax only", // 2 x 50.00 @ 10%
			items:         []models.LineItem{item("2", "50.00")},
			taxRate:       "10",
			discountType:  models.DiscountNone,
			discountValue: "0",
			amountPaid:    "0",
			want:          Totals{d("100.00"), d("0"), d("10.00"), d("110.00"), d("110.00")},
		},
		{
			name:          "percentage discount before tax",
			items:         []models.LineItem{item("2", "50.00")},
			taxRate:       "10",
			discountType:  models.DiscountPercentage,
			discountValue: "20",
			amountPaid:    "0",
			want:          Totals{d("100.00"), d("20.00"), d("8.00"), d("88.00"), d("88.00")},
		},
		{
			name:          "fixed discount",
			items:         []models.LineItem{item("1", "250.00")},
			taxRate:       "20",
			discountType:  models.DiscountFixed,
			discountValue: "50.00",
			amountPaid:    "0",
			want:          Totals{d("250.00"), d("50.00"), d("40.00"), d("240.00"), d("240.00")},
		},
		{
			name:          "fixed discount exceeding subtotal clamps base at zero",
			items:         []models.LineItem{item("1", "30.00")},
			taxRate:       "19",
			discountType:  models.DiscountFixed,
			discountValue: "100.00",
			amountPaid:    "0",
			want:          Totals{d("30.00"), d("100.00"), d("0"), d("0"), d("0")},
		},
		{
			name:          "free items are legal",
			items:         []models.LineItem{item("3", "0"), item("0.5", "0")},
			taxRate:       "19",
			discountType:  models.DiscountNone,
			discountValue: "0",
			amountPaid:    "0",
			want:          Totals{d("0.00"), d("0"), d("0.00"), d("0.00"), d("0.00")},
		},
		{
			name:          "tax rounds half up at the derived-field boundary",
			items:         []models.LineItem{item("1", "99.99")},
			taxRate:       "8.25",
			discountType:  models.DiscountNone,
			discountValue: "0",
			amountPaid:    "0",
			// 99.99 * 8.25% = 8.249175 -> 8.25
			want: Totals{d("99.99"), d("0"), d("8.25"), d("108.24"), d("108.24")},
		},
		{
			name:          "partial payment reduces balance",
			items:         []models.LineItem{item("2", "50.00")},
			taxRate:       "10",
			discountType:  models.DiscountPercentage,
			discountValue: "20",
			amountPaid:    "50.00",
			want:          Totals{d("100.00"), d("20.00"), d("8.00"), d("88.00"), d("38.00")},
		},
		{
			name:          "overpayment floors balance at zero",
			items:         []models.LineItem{item("2", "50.00")},
			taxRate:       "10",
			discountType:  models.DiscountNone,
			discountValue: "0",
			amountPaid:    "150.00",
			want:          Totals{d("100.00"), d("0"), d("10.00"), d("110.00"), d("0")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.items, d(tt.taxRate), tt.discountType, d(tt.discountValue), d(tt.amountPaid))

			requireEq(t, "subtotal", tt.want.Subtotal, got.Subtotal)
			requireEq(t, "discount_amount", tt.want.DiscountAmount, got.DiscountAmount)
			requireEq(t, "tax_amount", tt.want.TaxAmount, got.TaxAmount)
			requireEq(t, "total", tt.want.Total, got.Total)
			requireEq(t, "balance_due", tt.want.BalanceDue, got.BalanceDue)
		})
	}
}

func requireEq(t *testing.T, field string, want, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, got.Equal(want), "%s = %s, want %s", field, got, want)
}

func TestLineAmount(t *testing.T) {
	// 3 x 0.335 = 1.005 -> rounds half up to 1.01
	requireEq(t, "amount", d("1.01"), LineAmount(d("3"), d("0.335")))
	requireEq(t, "amount", d("0"), LineAmount(d("0"), d("12.50")))
	requireEq(t, "amount", d("1234.50"), LineAmount(d("1.5"), d("823")))
}

func TestComputeTotalsUsesStoredAmounts(t *testing.T) {
	// A manually overridden amount wins over quantity x rate.
	it := models.LineItem{Quantity: d("2"), Rate: d("50.00"), Amount: d("75.00")}
	got := ComputeTotals([]models.LineItem{it}, d("0"), models.DiscountNone, d("0"), d("0"))
	requireEq(t, "subtotal", d("75.00"), got.Subtotal)
}
