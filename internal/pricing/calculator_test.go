package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/harborlane/importdesk-backend/pkg/enums"
)

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSubtotal(t *testing.T) {
	got := Subtotal(Breakdown{
		PurchasePrice:      dec("12000"),
		CarCost:            dec("500"),
		TransportationCost: dec("1800"),
		DutyCost:           dec("2400"),
		ClearingCost:       dec("350"),
		FixingCost:         dec("700"),
	})
	if !got.Equal(dec("17750")) {
		t.Fatalf("subtotal = %s, want 17750", got)
	}
}

func TestSubtotal_MissingPurchasePrice(t *testing.T) {
	got := Subtotal(Breakdown{CarCost: dec("500")})
	if !got.Equal(dec("500")) {
		t.Fatalf("subtotal = %s, want 500", got)
	}
}

func TestDiscount(t *testing.T) {
	cases := []struct {
		name         string
		subtotal     string
		discountType enums.DiscountType
		value        string
		wantDiscount string
		wantTotal    string
	}{
		{"none", "1000", enums.DiscountTypeNone, "50", "0", "1000"},
		{"fixed", "1000", enums.DiscountTypeFixed, "100", "100", "900"},
		{"fixed capped at subtotal", "500", enums.DiscountTypeFixed, "800", "500", "0"},
		{"fixed negative treated as zero", "500", enums.DiscountTypeFixed, "-10", "0", "500"},
		{"percentage", "1000", enums.DiscountTypePercentage, "25", "250", "750"},
		{"percentage clamped high", "1000", enums.DiscountTypePercentage, "150", "1000", "0"},
		{"percentage clamped low", "1000", enums.DiscountTypePercentage, "-5", "0", "1000"},
		{"unknown type degrades to none", "1000", enums.DiscountType("mystery"), "900", "0", "1000"},
		{"zero subtotal", "0", enums.DiscountTypePercentage, "40", "0", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			discount, total := Discount(dec(tc.subtotal), tc.discountType, dec(tc.value))
			if !discount.Equal(dec(tc.wantDiscount)) {
				t.Fatalf("discount = %s, want %s", discount, tc.wantDiscount)
			}
			if !total.Equal(dec(tc.wantTotal)) {
				t.Fatalf("total = %s, want %s", total, tc.wantTotal)
			}
		})
	}
}

func TestDiscount_TotalNeverExceedsSubtotalOrGoesNegative(t *testing.T) {
	subtotals := []string{"0", "1", "99.99", "1234.56", "1000000"}
	values := []string{"0", "10", "100", "250", "99999"}
	types := []enums.DiscountType{
		enums.DiscountTypeNone,
		enums.DiscountTypeFixed,
		enums.DiscountTypePercentage,
		enums.DiscountType("bogus"),
	}

	for _, s := range subtotals {
		for _, v := range values {
			for _, dt := range types {
				subtotal := dec(s)
				_, total := Discount(subtotal, dt, dec(v))
				if total.LessThan(decimal.Zero) {
					t.Fatalf("total %s < 0 for subtotal=%s type=%s value=%s", total, s, dt, v)
				}
				if total.GreaterThan(subtotal) {
					t.Fatalf("total %s > subtotal %s for type=%s value=%s", total, s, dt, v)
				}
			}
		}
	}
}
