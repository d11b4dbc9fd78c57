package domain

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// DiscountPercent returns the rounded discount percentage between the old
// and current price. Zero is returned when the inputs describe no discount:
// non-positive old price, negative current price, or current >= old.
func DiscountPercent(oldPrice, currentPrice float64) int {
	if oldPrice <= 0 || currentPrice < 0 || currentPrice >= oldPrice {
		return 0
	}
	pct := (oldPrice - currentPrice) / oldPrice * 100
	return int(math.Round(pct))
}

// HasDiscount reports whether the price pair describes an actual discount.
func HasDiscount(oldPrice, currentPrice float64) bool {
	return DiscountPercent(oldPrice, currentPrice) > 0
}

// DiscountText formats the discount badge, e.g. "30% OFF". The empty string
// is returned when there is no discount to display.
func DiscountText(oldPrice, currentPrice float64) string {
	pct := DiscountPercent(oldPrice, currentPrice)
	if pct <= 0 {
		return ""
	}
	return strconv.Itoa(pct) + "% OFF"
}

// Savings returns the absolute amount saved versus the old price, never
// negative. The subtraction runs on decimals so float artifacts from the
// stored prices do not leak into the result.
func Savings(oldPrice, currentPrice float64) float64 {
	if oldPrice <= currentPrice {
		return 0
	}
	diff := decimal.NewFromFloat(oldPrice).Sub(decimal.NewFromFloat(currentPrice))
	out, _ := diff.Float64()
	return out
}

// FormatPrice renders a price for display with a dollar sign and exactly two
// fraction digits, e.g. "$35.00". No thousands grouping is applied.
func FormatPrice(price float64) string {
	return "$" + decimal.NewFromFloat(price).StringFixed(2)
}
