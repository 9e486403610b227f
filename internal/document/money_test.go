package document

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotalsStandardInvoice(t *testing.T) {
	items := []LineItem{
		{Description: "Site survey", Quantity: 2, UnitPrice: 100.00},
		{Description: "Report", Quantity: 1, UnitPrice: 50.00},
	}

	totals := ComputeTotals(items, DefaultTaxRate)

	assert.Equal(t, "250.00", totals.Subtotal.String())
	assert.Equal(t, "37.50", totals.Tax.String())
	assert.Equal(t, "287.50", totals.Total.String())
	assert.Equal(t, "15%", totals.RatePercent())
}

func TestComputeTotalsOrderIndependent(t *testing.T) {
	items := []LineItem{
		{Quantity: 3, UnitPrice: 0.1},
		{Quantity: 1.5, UnitPrice: 19.99},
		{Quantity: 7, UnitPrice: 12.34},
		{Quantity: 0, UnitPrice: 999},
	}
	reversed := make([]LineItem, len(items))
	for i := range items {
		reversed[len(items)-1-i] = items[i]
	}

	assert.Equal(t, ComputeTotals(items, DefaultTaxRate), ComputeTotals(reversed, DefaultTaxRate))
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals := ComputeTotals(nil, DefaultTaxRate)
	assert.Equal(t, "0.00", totals.Subtotal.String())
	assert.Equal(t, "0.00", totals.Tax.String())
	assert.Equal(t, "0.00", totals.Total.String())
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		in   Money
		want string
	}{
		{in: 0, want: "0.00"},
		{in: 5, want: "0.05"},
		{in: 1234, want: "12.34"},
		{in: 100000, want: "1000.00"},
		{in: -250, want: "-2.50"},
		{in: math.MaxInt64, want: "92233720368547758.07"},
		{in: math.MinInt64, want: "-92233720368547758.08"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Fatalf("Money(%d).String() = %q, want %q", int64(tt.in), got, tt.want)
		}
	}
}

func TestLineItemTotalRoundsToCent(t *testing.T) {
	item := LineItem{Quantity: 2.5, UnitPrice: 3.333}
	if got := item.Total().String(); got != "8.33" {
		t.Fatalf("expected 8.33, got %s", got)
	}
}

func TestMoneyFromFloatClampsOutOfRange(t *testing.T) {
	assert.Equal(t, Money(MaxAmount*100), MoneyFromFloat(1e21))
	assert.Equal(t, Money(-MaxAmount*100), MoneyFromFloat(math.Inf(-1)))
	assert.Equal(t, Money(0), MoneyFromFloat(math.NaN()))
}

func TestComputeTotalsAtLimitsStaysExact(t *testing.T) {
	items := make([]LineItem, MaxLineItems)
	for i := range items {
		items[i] = LineItem{Quantity: 1, UnitPrice: MaxAmount}
	}
	totals := ComputeTotals(items, DefaultTaxRate)
	assert.Equal(t, "1000000000000.00", totals.Subtotal.String())
	assert.Equal(t, "150000000000.00", totals.Tax.String())
	assert.Equal(t, "1150000000000.00", totals.Total.String())
}
