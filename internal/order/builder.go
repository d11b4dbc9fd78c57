// Package order constructs immutable orders from cart snapshots. The
// builder owns no state and defines no retry or persistence policy; callers
// store the result and clear the cart on persistence success.
package order

import (
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cartify/api/internal/cart"
	"github.com/cartify/api/internal/domain"
	"github.com/cartify/api/internal/validation"
)

// ErrEmptyCart indicates an order build was attempted on an empty cart.
var ErrEmptyCart = errors.New("order: cart is empty")

// ErrInvalidAddress indicates the delivery address failed validation.
var ErrInvalidAddress = errors.New("order: invalid delivery address")

// ErrNoSession indicates the operation requires a logged-in user.
var ErrNoSession = errors.New("order: no user session")

var errBuilderClockRequired = errors.New("order builder: clock is required")

// BuilderDeps wires the clock and identifier source for order construction.
type BuilderDeps struct {
	Clock    func() time.Time
	IDSource func() string
}

// Builder produces orders with injected time and identity so construction
// stays deterministic under test.
type Builder struct {
	now   func() time.Time
	newID func() string
}

// NewBuilder constructs a Builder, defaulting the id source to ULIDs.
func NewBuilder(deps BuilderDeps) (*Builder, error) {
	if deps.Clock == nil {
		return nil, errBuilderClockRequired
	}
	newID := deps.IDSource
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}
	return &Builder{now: deps.Clock, newID: newID}, nil
}

// Build assembles an order from the cart snapshot and delivery details.
// The cart is never mutated; items are deep copied so later cart changes
// cannot reach the order.
func (b *Builder) Build(userID string, c domain.Cart, deliveryAddress string) (domain.Order, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return domain.Order{}, ErrNoSession
	}
	if len(c.Items) == 0 {
		return domain.Order{}, ErrEmptyCart
	}

	address := validation.Sanitize(deliveryAddress)
	if res := validation.Address(address); !res.OK {
		return domain.Order{}, ErrInvalidAddress
	}

	orderID := strings.TrimSpace(b.newID())
	if orderID == "" {
		orderID = ulid.Make().String()
	}

	items := make([]domain.CartItem, len(c.Items))
	copy(items, c.Items)

	return domain.Order{
		OrderID:         orderID,
		UserID:          uid,
		Items:           items,
		TotalAmount:     cart.Total(c),
		OrderDate:       b.now().Format(domain.TimestampLayout),
		Status:          domain.OrderStatusPending,
		DeliveryAddress: address,
	}, nil
}
