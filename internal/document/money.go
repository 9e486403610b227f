package document

import (
	"math"
	"strconv"
)

// DefaultTaxRate is the VAT rate applied to invoices and purchase orders.
const DefaultTaxRate = 0.15

// Limits on priced input. Within them every sum stays exact in cents.
const (
	MaxAmount    = 1e10
	MaxQuantity  = 1e9
	MaxLineItems = 100
)

// Money is an amount in cents. Sums over Money are exact and order independent.
type Money int64

// MoneyFromFloat rounds a decimal amount to the nearest cent. Values beyond
// ±MaxAmount are clamped and NaN is zero.
func MoneyFromFloat(v float64) Money {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Max(-MaxAmount, math.Min(MaxAmount, v))
	return Money(math.Round(v * 100))
}

// Float returns the amount in currency units.
func (m Money) Float() float64 {
	return float64(m) / 100
}

// String formats the amount with exactly two decimals.
func (m Money) String() string {
	sign := ""
	v := uint64(m)
	if m < 0 {
		sign = "-"
		v = -v
	}
	cents := v % 100
	frac := strconv.FormatUint(cents, 10)
	if cents < 10 {
		frac = "0" + frac
	}
	return sign + strconv.FormatUint(v/100, 10) + "." + frac
}

// LineItem is one priced row on an invoice or purchase order.
type LineItem struct {
	Description string  `json:"description" yaml:"description"`
	Quantity    float64 `json:"quantity" yaml:"quantity"`
	UnitPrice   float64 `json:"unitPrice" yaml:"unitPrice"`
}

// Total is quantity × unit price, rounded to the cent.
func (li LineItem) Total() Money {
	return MoneyFromFloat(li.Quantity * li.UnitPrice)
}

// Totals are always derived from the current line items.
type Totals struct {
	Rate     float64
	Subtotal Money
	Tax      Money
	Total    Money
}

// ComputeTotals sums the line items and applies rate to the subtotal.
func ComputeTotals(items []LineItem, rate float64) Totals {
	var subtotal Money
	for _, item := range items {
		subtotal += item.Total()
	}
	tax := Money(math.Round(float64(subtotal) * rate))
	return Totals{
		Rate:     rate,
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}

// RatePercent renders the rate as a whole or fractional percentage, e.g. "15%".
func (t Totals) RatePercent() string {
	pct := math.Round(t.Rate*100*1e4) / 1e4
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}
