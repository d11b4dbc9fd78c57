// Package cart implements the pure cart algebra. All operations take a cart
// value and return a new one; nothing here touches persistence, and callers
// serialise access themselves.
package cart

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cartify/api/internal/domain"
)

// MaxLineQuantity is the inclusive cap on a single line's quantity.
const MaxLineQuantity = 99

// ErrQuantityExceeded indicates an operation would push a line above the cap.
var ErrQuantityExceeded = errors.New("cart: quantity exceeded")

// ErrInvalidQuantity indicates an add with a non-positive quantity.
var ErrInvalidQuantity = errors.New("cart: quantity must be at least 1")

// Add merges the item into the cart. An existing line with the same product
// identifier absorbs the incoming quantity, capped at MaxLineQuantity, and
// takes the incoming size/colour selections; untouched lines keep their
// positions. A new product appends. The input cart is never mutated.
func Add(c domain.Cart, item domain.CartItem) (domain.Cart, error) {
	productID := strings.TrimSpace(item.ProductID)
	if productID == "" {
		return c, errors.New("cart: product id is required")
	}
	if item.Quantity < 1 {
		return c, ErrInvalidQuantity
	}
	if item.Quantity > MaxLineQuantity {
		return c, ErrQuantityExceeded
	}

	items := cloneItems(c.Items)
	for i := range items {
		if items[i].ProductID != productID {
			continue
		}
		merged := items[i].Quantity + item.Quantity
		if merged > MaxLineQuantity {
			return c, ErrQuantityExceeded
		}
		items[i].Quantity = merged
		items[i].SelectedSize = item.SelectedSize
		items[i].SelectedColor = item.SelectedColor
		return domain.Cart{Items: items}, nil
	}

	item.ProductID = productID
	items = append(items, item)
	return domain.Cart{Items: items}, nil
}

// SetQuantity replaces the line's quantity. A non-positive quantity removes
// the line; a quantity above the cap fails with ErrQuantityExceeded. Setting
// an absent product is a no-op.
func SetQuantity(c domain.Cart, productID string, quantity int) (domain.Cart, error) {
	if quantity <= 0 {
		return Remove(c, productID), nil
	}
	if quantity > MaxLineQuantity {
		return c, ErrQuantityExceeded
	}

	items := cloneItems(c.Items)
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			return domain.Cart{Items: items}, nil
		}
	}
	return domain.Cart{Items: items}, nil
}

// Remove drops the line matching the product identifier; absent products
// are a no-op.
func Remove(c domain.Cart, productID string) domain.Cart {
	items := make([]domain.CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.ProductID == productID {
			continue
		}
		items = append(items, item)
	}
	return domain.Cart{Items: items}
}

// Clear returns an empty cart.
func Clear(domain.Cart) domain.Cart {
	return domain.Cart{Items: []domain.CartItem{}}
}

// Total sums price times quantity across all lines. The running sum is
// exact decimal arithmetic; rounding to two fraction digits happens once at
// the boundary.
func Total(c domain.Cart) float64 {
	sum := decimal.Zero
	for _, item := range c.Items {
		line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		sum = sum.Add(line)
	}
	out, _ := sum.Round(2).Float64()
	return out
}

// LineTotal returns price times quantity for a single line, rounded to two
// fraction digits.
func LineTotal(item domain.CartItem) float64 {
	line := decimal.NewFromFloat(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
	out, _ := line.Round(2).Float64()
	return out
}

// Count sums the quantities across all lines.
func Count(c domain.Cart) int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

func cloneItems(items []domain.CartItem) []domain.CartItem {
	if len(items) == 0 {
		return []domain.CartItem{}
	}
	dup := make([]domain.CartItem, len(items))
	copy(dup, items)
	return dup
}
