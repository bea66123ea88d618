package ledger

import (
	"github.com/shopspring/decimal"

	"invoicing-backend/models"
)

// Totals is the derived monetary state of an invoice.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	BalanceDue     decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// round2 rounds to 2 decimal places, half away from zero. All inputs here are
// non-negative, so this is plain round-half-up. Rounding happens at each
// derived-field boundary so stored per-step values and the final total agree.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineAmount is the stored amount for one item: quantity x rate, rounded.
// It is computed at item-write time; ComputeTotals sums stored amounts and
// never re-derives them, so manually overridden amounts survive.
func LineAmount(quantity, rate decimal.Decimal) decimal.Decimal {
	return round2(quantity.Mul(rate))
}

// ComputeTotals derives all monetary fields from the item amounts, tax rate,
// discount rule, and the amount already paid. Pure; the derivation order is
// fixed: subtotal, discount, taxable base, tax, total, balance due.
//
// A fixed discount larger than the subtotal clamps the taxable base at zero
// rather than going negative. Overpayment floors BalanceDue at zero; the
// excess is not tracked separately.
func ComputeTotals(items []models.LineItem, taxRate decimal.Decimal, discountType models.DiscountType, discountValue, amountPaid decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Amount)
	}

	var discount decimal.Decimal
	switch discountType {
	case models.DiscountPercentage:
		discount = round2(subtotal.Mul(discountValue).Div(hundred))
	case models.DiscountFixed:
		discount = discountValue
	default:
		discount = decimal.Zero
	}

	taxableBase := subtotal.Sub(discount)
	if taxableBase.IsNegative() {
		taxableBase = decimal.Zero
	}

	tax := round2(taxableBase.Mul(taxRate).Div(hundred))
	total := taxableBase.Add(tax)

	balance := total.Sub(amountPaid)
	if balance.IsNegative() {
		balance = decimal.Zero
	}

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		Total:          total,
		BalanceDue:     balance,
	}
}

// applyTotals writes a Totals result onto the invoice row.
func applyTotals(inv *models.Invoice, t Totals) {
	inv.Subtotal = t.Subtotal
	inv.DiscountAmount = t.DiscountAmount
	inv.TaxAmount = t.TaxAmount
	inv.Total = t.Total
	inv.BalanceDue = t.BalanceDue
}
