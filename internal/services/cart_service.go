package services

import (
	"context"
	"errors"
	"strings"

	"github.com/cartify/api/internal/cart"
	"github.com/cartify/api/internal/domain"
	"github.com/cartify/api/internal/remote"
)

const cartsCollection = "carts"

var (
	errCartCollectionRequired = errors.New("cart service: item collection is required")
	errCartProductsRequired   = errors.New("cart service: product finder is required")
)

// ErrQuantityExceeded surfaces the per-line quantity cap to callers.
var ErrQuantityExceeded = cart.ErrQuantityExceeded

type productFinder interface {
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
}

// CartServiceDeps wires the remote store and catalogue lookup for cart operations.
type CartServiceDeps struct {
	Collection remote.ItemCollection
	Products   productFinder
	Logger     func(context.Context, string, map[string]any)
}

type cartService struct {
	collection remote.ItemCollection
	products   productFinder
	logger     func(context.Context, string, map[string]any)
}

// NewCartService constructs a CartService enforcing dependency validation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Collection == nil {
		return nil, errCartCollectionRequired
	}
	if deps.Products == nil {
		return nil, errCartProductsRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &cartService{
		collection: deps.Collection,
		products:   deps.Products,
		logger:     logger,
	}, nil
}

// GetCart loads the user's cart, returning an empty cart when none is stored.
func (s *cartService) GetCart(ctx context.Context, userID string) (CartView, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return CartView{}, ErrNoSession
	}

	current, err := s.load(ctx, uid)
	if err != nil {
		return CartView{}, err
	}
	return view(current), nil
}

// AddItem resolves the product and merges it into the cart.
func (s *cartService) AddItem(ctx context.Context, cmd AddItemCommand) (CartView, error) {
	uid := strings.TrimSpace(cmd.UserID)
	if uid == "" {
		return CartView{}, ErrNoSession
	}
	productID := strings.TrimSpace(cmd.ProductID)
	if productID == "" {
		return CartView{}, ErrInvalidInput
	}

	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return CartView{}, err
	}

	current, err := s.load(ctx, uid)
	if err != nil {
		return CartView{}, err
	}

	item := domain.CartItem{
		ProductID:     product.ID,
		Title:         product.Title,
		Price:         product.Price,
		ImageURL:      product.PrimaryImage(),
		Quantity:      cmd.Quantity,
		SelectedSize:  strings.TrimSpace(cmd.SelectedSize),
		SelectedColor: strings.TrimSpace(cmd.SelectedColor),
	}
	updated, err := cart.Add(current, item)
	if err != nil {
		return CartView{}, err
	}

	if err := s.persist(ctx, uid, updated); err != nil {
		return CartView{}, err
	}
	s.logger(ctx, "cart.item_added", map[string]any{
		"userID":    uid,
		"productID": product.ID,
		"quantity":  item.Quantity,
	})
	return view(updated), nil
}

// SetQuantity replaces a line's quantity; zero or less removes the line.
func (s *cartService) SetQuantity(ctx context.Context, userID, productID string, quantity int) (CartView, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return CartView{}, ErrNoSession
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return CartView{}, ErrInvalidInput
	}

	current, err := s.load(ctx, uid)
	if err != nil {
		return CartView{}, err
	}
	updated, err := cart.SetQuantity(current, pid, quantity)
	if err != nil {
		return CartView{}, err
	}

	if err := s.persist(ctx, uid, updated); err != nil {
		return CartView{}, err
	}
	return view(updated), nil
}

// RemoveItem drops a line from the cart. Removing an absent line is a no-op.
func (s *cartService) RemoveItem(ctx context.Context, userID, productID string) (CartView, error) {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return CartView{}, ErrNoSession
	}
	pid := strings.TrimSpace(productID)
	if pid == "" {
		return CartView{}, ErrInvalidInput
	}

	current, err := s.load(ctx, uid)
	if err != nil {
		return CartView{}, err
	}
	updated := cart.Remove(current, pid)

	if err := s.persist(ctx, uid, updated); err != nil {
		return CartView{}, err
	}
	return view(updated), nil
}

// ClearCart empties the user's cart.
func (s *cartService) ClearCart(ctx context.Context, userID string) error {
	uid := strings.TrimSpace(userID)
	if uid == "" {
		return ErrNoSession
	}
	if err := s.collection.Delete(ctx, cartsCollection, uid); err != nil && !isStoreNotFound(err) {
		return translateStoreError(err)
	}
	return nil
}

func (s *cartService) load(ctx context.Context, userID string) (domain.Cart, error) {
	docs, err := s.collection.Query(ctx, cartsCollection, "userId", userID)
	if err != nil {
		return domain.Cart{}, translateStoreError(err)
	}
	if len(docs) == 0 {
		return domain.Cart{}, nil
	}

	var stored struct {
		Items []domain.CartItem `json:"items"`
	}
	if err := remote.Decode(docs[0], &stored); err != nil {
		s.logger(ctx, "cart.decode_failed", map[string]any{
			"userID": userID,
			"error":  err.Error(),
		})
		return domain.Cart{}, nil
	}
	return domain.Cart{Items: stored.Items}, nil
}

func (s *cartService) persist(ctx context.Context, userID string, c domain.Cart) error {
	if len(c.Items) == 0 {
		if err := s.collection.Delete(ctx, cartsCollection, userID); err != nil && !isStoreNotFound(err) {
			return translateStoreError(err)
		}
		return nil
	}

	doc, err := remote.Encode(userID, map[string]any{
		"userId": userID,
		"items":  c.Items,
	})
	if err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	if err := s.collection.Upsert(ctx, cartsCollection, doc); err != nil {
		return translateStoreError(err)
	}
	return nil
}

func view(c domain.Cart) CartView {
	return CartView{
		Cart:      c,
		Total:     cart.Total(c),
		ItemCount: cart.Count(c),
	}
}
