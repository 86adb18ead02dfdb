// Package pricing holds the money math shared by allocation and substitutes.
// All amounts are decimal to keep vendor totals exact; callers are expected to
// pass discount percentages in [0,100].
package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// UnitPrice returns the effective per-unit price after applying the discount
// percentage to the list price: mrp * (1 - discountPercent/100).
func UnitPrice(mrp, discountPercent decimal.Decimal) decimal.Decimal {
	discount := mrp.Mul(discountPercent).Div(hundred)
	return mrp.Sub(discount)
}

// LineTotal returns the discounted total for qty units.
func LineTotal(mrp, discountPercent decimal.Decimal, qty int) decimal.Decimal {
	return UnitPrice(mrp, discountPercent).Mul(decimal.NewFromInt(int64(qty)))
}

// GrossLineTotal returns the undiscounted total for qty units. Allocation uses
// it to derive per-bucket discount amounts.
func GrossLineTotal(mrp decimal.Decimal, qty int) decimal.Decimal {
	return mrp.Mul(decimal.NewFromInt(int64(qty)))
}
