package models

import "math"

// PortionLarge is the only portion that changes price and nutrition.
// Any other value (including empty) is treated as Standard.
const (
	PortionStandard = "Standard"
	PortionLarge    = "Large"
)

// TaxRate applied to the order subtotal at checkout
const TaxRate = 0.10

// PortionMultiplier returns the price/nutrition scaling factor for a portion
func PortionMultiplier(portion string) float64 {
	if portion == PortionLarge {
		return 1.5
	}
	return 1
}

// LineTotal computes one order line: price x portion multiplier x quantity
func LineTotal(price float64, portion string, quantity int) float64 {
	return roundCents(price * PortionMultiplier(portion) * float64(quantity))
}

// OrderTotals computes subtotal, tax and grand total from priced lines
func OrderTotals(items []OrderItem) (subtotal, tax, total float64) {
	for _, it := range items {
		subtotal += it.TotalPrice
	}
	subtotal = roundCents(subtotal)
	tax = roundCents(subtotal * TaxRate)
	total = roundCents(subtotal + tax)
	return subtotal, tax, total
}

// EstimatePrepTime derives the kitchen estimate for an order: the slowest
// item's preparation time plus two minutes for every additional line.
func EstimatePrepTime(items []OrderItem, menu map[uint]MenuItem) int {
	longest := 0
	for _, it := range items {
		if m, ok := menu[it.MenuItemID]; ok && m.PreparationTime > longest {
			longest = m.PreparationTime
		}
	}
	if longest == 0 {
		longest = 15
	}
	if extra := len(items) - 1; extra > 0 {
		longest += 2 * extra
	}
	return longest
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
