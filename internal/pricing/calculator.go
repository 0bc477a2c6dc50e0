// Package pricing derives an order's discount amount and total cost from
// its subtotal and discount specification. Pure computation: no state,
// no I/O.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/harborlane/importdesk-backend/pkg/enums"
)

var hundred = decimal.NewFromInt(100)

// Breakdown is the itemized cost input to the subtotal. A missing vehicle
// purchase price contributes zero.
type Breakdown struct {
	PurchasePrice      decimal.Decimal
	CarCost            decimal.Decimal
	TransportationCost decimal.Decimal
	DutyCost           decimal.Decimal
	ClearingCost       decimal.Decimal
	FixingCost         decimal.Decimal
}

// Subtotal sums the vehicle purchase price and every cost line item.
func Subtotal(b Breakdown) decimal.Decimal {
	return b.PurchasePrice.
		Add(b.CarCost).
		Add(b.TransportationCost).
		Add(b.DutyCost).
		Add(b.ClearingCost).
		Add(b.FixingCost)
}

// Discount returns the discount amount and the resulting total cost for
// the given subtotal and discount specification.
//
// A fixed discount is capped at the subtotal, a percentage value is
// clamped into [0,100] before use, and an unknown discount type degrades
// to none rather than erroring. The total is floored at zero.
func Discount(subtotal decimal.Decimal, discountType enums.DiscountType, discountValue decimal.Decimal) (discount, total decimal.Decimal) {
	switch discountType {
	case enums.DiscountTypeFixed:
		discount = discountValue
		if discount.LessThan(decimal.Zero) {
			discount = decimal.Zero
		}
		if discount.GreaterThan(subtotal) {
			discount = subtotal
		}
	case enums.DiscountTypePercentage:
		pct := clampPercentage(discountValue)
		discount = subtotal.Mul(pct).Div(hundred)
	default:
		discount = decimal.Zero
	}

	total = subtotal.Sub(discount)
	if total.LessThan(decimal.Zero) {
		total = decimal.Zero
	}
	return discount, total
}

func clampPercentage(value decimal.Decimal) decimal.Decimal {
	if value.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	if value.GreaterThan(hundred) {
		return hundred
	}
	return value
}
