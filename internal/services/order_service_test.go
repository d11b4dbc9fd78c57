package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cartify/api/internal/domain"
	"github.com/cartify/api/internal/order"
	"github.com/cartify/api/internal/remote"
)

func orderFixture(t *testing.T) (OrderService, CartService, *fakeCollection) {
	t.Helper()
	products := newFakeCollection()
	seedProducts(t, products,
		domain.Product{ID: "p1", Title: "Shirt", Price: 35},
		domain.Product{ID: "p2", Title: "Socks", Price: 9.95},
	)
	carts := newCartService(t, newFakeCollection(), products)
	orders := newFakeCollection()

	ids := []string{"o1", "o2", "o3"}
	svc, err := NewOrderService(OrderServiceDeps{
		Collection: orders,
		Carts:      carts,
		Clock:      func() time.Time { return time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC) },
		IDSource: func() string {
			id := ids[0]
			if len(ids) > 1 {
				ids = ids[1:]
			}
			return id
		},
	})
	if err != nil {
		t.Fatalf("NewOrderService: %v", err)
	}
	return svc, carts, orders
}

func fillCart(t *testing.T, carts CartService, userID string) {
	t.Helper()
	ctx := context.Background()
	if _, err := carts.AddItem(ctx, AddItemCommand{UserID: userID, ProductID: "p1", Quantity: 2}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := carts.AddItem(ctx, AddItemCommand{UserID: userID, ProductID: "p2", Quantity: 1}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
}

func TestNewOrderServiceValidatesDeps(t *testing.T) {
	if _, err := NewOrderService(OrderServiceDeps{}); err == nil {
		t.Fatalf("expected missing-collection error")
	}
}

func TestPlaceOrder(t *testing.T) {
	svc, carts, orders := orderFixture(t)
	ctx := context.Background()
	fillCart(t, carts, "u1")

	placed, err := svc.PlaceOrder(ctx, PlaceOrderCommand{UserID: "u1", DeliveryAddress: "1 Main Street, Springfield"})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if placed.OrderID != "o1" {
		t.Fatalf("OrderID = %q", placed.OrderID)
	}
	if placed.TotalAmount != 79.95 {
		t.Fatalf("TotalAmount = %v, want 79.95", placed.TotalAmount)
	}
	if placed.OrderDate != "2024-06-01 10:00:00" {
		t.Fatalf("OrderDate = %q", placed.OrderDate)
	}
	if placed.Status != domain.OrderStatusPending {
		t.Fatalf("Status = %q", placed.Status)
	}

	// The order is stored and the cart cleared.
	if _, ok := orders.get(ordersCollection, "o1"); !ok {
		t.Fatalf("order document not stored")
	}
	view, err := carts.GetCart(ctx, "u1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if view.ItemCount != 0 {
		t.Fatalf("cart not cleared after checkout: %+v", view)
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	svc, _, _ := orderFixture(t)
	_, err := svc.PlaceOrder(context.Background(), PlaceOrderCommand{UserID: "u1", DeliveryAddress: "1 Main Street"})
	if !errors.Is(err, order.ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
}

func TestPlaceOrderInvalidAddress(t *testing.T) {
	svc, carts, _ := orderFixture(t)
	ctx := context.Background()
	fillCart(t, carts, "u1")

	if _, err := svc.PlaceOrder(ctx, PlaceOrderCommand{UserID: "u1", DeliveryAddress: "  "}); !errors.Is(err, order.ErrInvalidAddress) {
		t.Fatalf("err = %v, want ErrInvalidAddress", err)
	}

	// The cart survives the rejected order.
	view, err := carts.GetCart(ctx, "u1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if view.ItemCount != 3 {
		t.Fatalf("cart changed by rejected order: %+v", view)
	}
}

func TestPlaceOrderRequiresSession(t *testing.T) {
	svc, _, _ := orderFixture(t)
	if _, err := svc.PlaceOrder(context.Background(), PlaceOrderCommand{UserID: " "}); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
}

func TestPlaceOrderStoreOutageKeepsCart(t *testing.T) {
	products := newFakeCollection()
	seedProducts(t, products, domain.Product{ID: "p1", Title: "Shirt", Price: 35})
	carts := newCartService(t, newFakeCollection(), products)
	orders := newFakeCollection()
	orders.failWith = unavailableErr()

	svc, err := NewOrderService(OrderServiceDeps{Collection: orders, Carts: carts, Clock: time.Now})
	if err != nil {
		t.Fatalf("NewOrderService: %v", err)
	}

	ctx := context.Background()
	if _, err := carts.AddItem(ctx, AddItemCommand{UserID: "u1", ProductID: "p1", Quantity: 1}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := svc.PlaceOrder(ctx, PlaceOrderCommand{UserID: "u1", DeliveryAddress: "1 Main Street"}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}

	view, err := carts.GetCart(ctx, "u1")
	if err != nil {
		t.Fatalf("GetCart: %v", err)
	}
	if view.ItemCount != 1 {
		t.Fatalf("cart lost on failed order write: %+v", view)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	svc, carts, orders := orderFixture(t)
	ctx := context.Background()
	fillCart(t, carts, "u1")
	if _, err := svc.PlaceOrder(ctx, PlaceOrderCommand{UserID: "u1", DeliveryAddress: "1 Main Street"}); err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	// A later order seeded directly.
	later := domain.Order{
		OrderID:   "o9",
		UserID:    "u1",
		Items:     []domain.CartItem{{ProductID: "p2", Price: 9.95, Quantity: 1}},
		OrderDate: "2024-07-15 09:30:00",
		Status:    domain.OrderStatusPending,
	}
	seedOrder(t, orders, later)

	got, err := svc.ListOrders(ctx, "u1")
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(orders) = %d", len(got))
	}
	if got[0].OrderID != "o9" || got[1].OrderID != "o1" {
		t.Fatalf("order = %q, %q", got[0].OrderID, got[1].OrderID)
	}
}

func TestGetOrderScopedToUser(t *testing.T) {
	svc, _, orders := orderFixture(t)
	ctx := context.Background()
	seedOrder(t, orders, domain.Order{
		OrderID:   "o1",
		UserID:    "u2",
		OrderDate: "2024-06-01 10:00:00",
		Status:    domain.OrderStatusPending,
	})

	// Another user's order is invisible.
	if _, err := svc.GetOrder(ctx, "u1", "o1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	got, err := svc.GetOrder(ctx, "u2", "o1")
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.UserID != "u2" {
		t.Fatalf("UserID = %q", got.UserID)
	}
}

func TestCancelOrder(t *testing.T) {
	svc, carts, orders := orderFixture(t)
	ctx := context.Background()
	fillCart(t, carts, "u1")
	if _, err := svc.PlaceOrder(ctx, PlaceOrderCommand{UserID: "u1", DeliveryAddress: "1 Main Street"}); err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	cancelled, err := svc.CancelOrder(ctx, "u1", "o1")
	if err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if cancelled.Status != domain.OrderStatusCancelled {
		t.Fatalf("Status = %q", cancelled.Status)
	}
	doc, _ := orders.get(ordersCollection, "o1")
	if doc.Data["status"] != "Cancelled" {
		t.Fatalf("stored status = %v", doc.Data["status"])
	}

	// Cancelling twice fails.
	if _, err := svc.CancelOrder(ctx, "u1", "o1"); !errors.Is(err, ErrOrderNotCancellable) {
		t.Fatalf("err = %v, want ErrOrderNotCancellable", err)
	}
}

func TestCancelDeliveredOrder(t *testing.T) {
	svc, _, orders := orderFixture(t)
	seedOrder(t, orders, domain.Order{
		OrderID:   "o5",
		UserID:    "u1",
		OrderDate: "2024-05-01 08:00:00",
		Status:    domain.OrderStatusDelivered,
	})

	if _, err := svc.CancelOrder(context.Background(), "u1", "o5"); !errors.Is(err, ErrOrderNotCancellable) {
		t.Fatalf("err = %v, want ErrOrderNotCancellable", err)
	}
}

func seedOrder(t *testing.T, collection *fakeCollection, o domain.Order) {
	t.Helper()
	doc, err := remote.Encode(o.OrderID, o)
	if err != nil {
		t.Fatalf("encode order: %v", err)
	}
	collection.seed(ordersCollection, doc)
}
