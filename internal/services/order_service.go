package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/cartify/api/internal/domain"
	"github.com/cartify/api/internal/order"
	"github.com/cartify/api/internal/remote"
)

const ordersCollection = "orders"

var (
	errOrderCollectionRequired = errors.New("order service: item collection is required")
	errOrderCartsRequired      = errors.New("order service: cart accessor is required")
	errOrderClockRequired      = errors.New("order service: clock is required")
)

// ErrOrderNotCancellable indicates the order has already left the Pending state.
var ErrOrderNotCancellable = errors.New("order service: order cannot be cancelled")

type cartAccessor interface {
	GetCart(ctx context.Context, userID string) (CartView, error)
	ClearCart(ctx context.Context, userID string) error
}

// OrderServiceDeps wires the remote store, cart access and order identity
// for order operations.
type OrderServiceDeps struct {
	Collection remote.ItemCollection
	Carts      cartAccessor
	Clock      func() time.Time
	IDSource   func() string
	Logger     func(context.Context, string, map[string]any)
}

type orderService struct {
	collection remote.ItemCollection
	carts      cartAccessor
	builder    *order.Builder
	logger     func(context.Context, string, map[string]any)
}

// NewOrderService constructs an OrderService enforcing dependency validation.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Collection == nil {
		return nil, errOrderCollectionRequired
	}
	if deps.Carts == nil {
		return nil, errOrderCartsRequired
	}
	if deps.Clock == nil {
		return nil, errOrderClockRequired
	}

	builder, err := order.NewBuilder(order.BuilderDeps{
		Clock:    deps.Clock,
		IDSource: deps.IDSource,
	})
	if err != nil {
		return nil, err
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &orderService{
		collection: deps.Collection,
		carts:      deps.Carts,
		builder:    builder,
		logger:     logger,
	}, nil
}

// PlaceOrder snapshots the cart into a new pending order, stores it and
// clears the cart. Cart clearing runs after the order is durably stored, so
// a failed write never loses the cart.
func (s *orderService) PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (domain.Order, error) {
	uid := strings.TrimSpace(cmd.UserID)
	if uid == "" {
		return domain.Order{}, ErrNoSession
	}

	current, err := s.carts.GetCart(ctx, uid)
	if err != nil {
		return domain.Order{}, err
	}

	built, err := s.builder.Build(uid, current.Cart, cmd.DeliveryAddress)
	if err != nil {
		return domain.Order{}, err
	}

	doc, err := remote.Encode(built.OrderID, built)
	if err != nil {
		return domain.Order{}, errors.Join(ErrUnavailable, err)
	}
	if err := s.collection.Upsert(ctx, ordersCollection, doc); err != nil {
		return domain.Order{}, translateStoreError(err)
	}

	if err := s.carts.ClearCart(ctx, uid); err != nil {
		s.logger(ctx, "order.cart_clear_failed", map[string]any{
			"userID":  uid,
			"orderID": built.OrderID,
			"error":   err.Error(),
		})
	}

	s.logger(ctx, "order.placed", map[string]any{
		"userID":  uid,
		"orderID": built.OrderID,
		"total":   built.TotalAmount,
	})
	return built, nil
}

// ListOrders returns the user's orders newest first.
func (s *orderService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return nil, ErrNoSession
	}

	docs, err := s.collection.Query(ctx, ordersCollection, "userId", uid)
	if err != nil {
		return nil, translateStoreError(err)
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, doc := range docs {
		parsed, err := s.decodeOrder(ctx, doc)
		if err != nil {
			continue
		}
		orders = append(orders, parsed)
	}

	// The timestamp layout sorts lexicographically.
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].OrderDate > orders[j].OrderDate
	})
	return orders, nil
}

// GetOrder fetches one of the user's orders by identifier.
func (s *orderService) GetOrder(ctx context.Context, userID, orderID string) (domain.Order, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return domain.Order{}, ErrNoSession
	}
	id := strings.TrimSpace(orderID)
	if id == "" {
		return domain.Order{}, ErrInvalidInput
	}

	orders, err := s.ListOrders(ctx, uid)
	if err != nil {
		return domain.Order{}, err
	}
	for _, candidate := range orders {
		if candidate.OrderID == id {
			return candidate, nil
		}
	}
	return domain.Order{}, ErrNotFound
}

// CancelOrder moves a pending order to Cancelled.
func (s *orderService) CancelOrder(ctx context.Context, userID, orderID string) (domain.Order, error) {
	current, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	cancelled, ok := current.WithStatus(domain.OrderStatusCancelled)
	if !ok {
		return domain.Order{}, ErrOrderNotCancellable
	}

	patch := map[string]any{"status": string(cancelled.Status)}
	if err := s.collection.Update(ctx, ordersCollection, cancelled.OrderID, patch); err != nil {
		return domain.Order{}, translateStoreError(err)
	}

	s.logger(ctx, "order.cancelled", map[string]any{
		"userID":  cancelled.UserID,
		"orderID": cancelled.OrderID,
	})
	return cancelled, nil
}

func (s *orderService) decodeOrder(ctx context.Context, doc remote.Document) (domain.Order, error) {
	var parsed domain.Order
	if err := remote.Decode(doc, &parsed); err != nil {
		s.logger(ctx, "order.decode_failed", map[string]any{
			"documentID": doc.ID,
			"error":      err.Error(),
		})
		return domain.Order{}, err
	}
	if parsed.OrderID == "" {
		parsed.OrderID = doc.ID
	}
	parsed.Status = domain.ParseOrderStatus(string(parsed.Status))
	return parsed, nil
}
