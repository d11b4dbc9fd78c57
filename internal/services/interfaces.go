package services

import (
	"context"

	"github.com/cartify/api/internal/domain"
	"github.com/cartify/api/internal/search"
)

// CatalogService exposes the product catalogue.
type CatalogService interface {
	ListProducts(ctx context.Context, categoryID string) ([]domain.Product, error)
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	Search(ctx context.Context, query string, filters search.Filters) ([]domain.Product, error)
	Suggestions(ctx context.Context, prefix string) ([]string, error)
}

// AddItemCommand describes a product being added to the cart.
type AddItemCommand struct {
	UserID        string
	ProductID     string
	Quantity      int
	SelectedSize  string
	SelectedColor string
}

// CartView is a cart together with its derived totals.
type CartView struct {
	Cart      domain.Cart
	Total     float64
	ItemCount int
}

// CartService maintains the persisted per-user cart.
type CartService interface {
	GetCart(ctx context.Context, userID string) (CartView, error)
	AddItem(ctx context.Context, cmd AddItemCommand) (CartView, error)
	SetQuantity(ctx context.Context, userID, productID string, quantity int) (CartView, error)
	RemoveItem(ctx context.Context, userID, productID string) (CartView, error)
	ClearCart(ctx context.Context, userID string) error
}

// PlaceOrderCommand carries the inputs for order placement.
type PlaceOrderCommand struct {
	UserID          string
	DeliveryAddress string
}

// OrderService places and reads orders.
type OrderService interface {
	PlaceOrder(ctx context.Context, cmd PlaceOrderCommand) (domain.Order, error)
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)
	GetOrder(ctx context.Context, userID, orderID string) (domain.Order, error)
	CancelOrder(ctx context.Context, userID, orderID string) (domain.Order, error)
}

// Credentials is an email/password pair for sign-in and sign-up.
type Credentials struct {
	Email    string
	Password string
	Name     string
}

// UserService owns the session, profile, favorites and preferences.
type UserService interface {
	SignIn(ctx context.Context, creds Credentials) (domain.Session, error)
	SignUp(ctx context.Context, creds Credentials) (domain.Session, error)
	SignOut(ctx context.Context) error
	SendPasswordReset(ctx context.Context, email string) error
	CurrentSession(ctx context.Context) (domain.Session, error)

	Profile(ctx context.Context, userID string) (domain.UserProfile, error)
	SaveProfile(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error)

	Favorites(ctx context.Context) ([]string, error)
	AddFavorite(ctx context.Context, productID string) error
	RemoveFavorite(ctx context.Context, productID string) error

	Preferences(ctx context.Context) (domain.Preferences, error)
	UpdatePreferences(ctx context.Context, prefs domain.Preferences) (domain.Preferences, error)
}
