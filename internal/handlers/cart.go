package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cartify/api/internal/domain"
	"github.com/cartify/api/internal/platform/requestctx"
	"github.com/cartify/api/internal/services"
)

// CartHandlers exposes the signed-in user's cart endpoints.
type CartHandlers struct {
	carts services.CartService
	users services.UserService
}

// NewCartHandlers constructs handlers backed by the cart and user services.
func NewCartHandlers(carts services.CartService, users services.UserService) *CartHandlers {
	return &CartHandlers{carts: carts, users: users}
}

// Routes wires the /me/cart endpoints onto the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/cart", h.getCart)
	r.Delete("/cart", h.clearCart)
	r.Post("/cart/items", h.addItem)
	r.Patch("/cart/items/{productID}", h.updateItem)
	r.Delete("/cart/items/{productID}", h.removeItem)
}

func (h *CartHandlers) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	view, err := h.carts.GetCart(ctx, uid)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartPayload(view))
}

func (h *CartHandlers) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
		Size      string `json:"size"`
		Color     string `json:"color"`
	}
	if err := decodeJSONBody(r, defaultMaxBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := h.carts.AddItem(ctx, services.AddItemCommand{
		UserID:        uid,
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		SelectedSize:  req.Size,
		SelectedColor: req.Color,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartPayload(view))
}

func (h *CartHandlers) updateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeJSONBody(r, defaultMaxBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	view, err := h.carts.SetQuantity(ctx, uid, chi.URLParam(r, "productID"), req.Quantity)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartPayload(view))
}

func (h *CartHandlers) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	view, err := h.carts.RemoveItem(ctx, uid, chi.URLParam(r, "productID"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildCartPayload(view))
}

func (h *CartHandlers) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	if err := h.carts.ClearCart(ctx, uid); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandlers) currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	ctx := r.Context()
	current, err := h.users.CurrentSession(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return "", false
	}
	requestctx.WithUserID(ctx, current.UserID)
	return current.UserID, true
}

type cartPayload struct {
	Items     []cartItemPayload `json:"items"`
	ItemCount int               `json:"itemCount"`
	Total     float64           `json:"total"`
	TotalText string            `json:"totalText"`
}

type cartItemPayload struct {
	ProductID     string  `json:"productId"`
	Title         string  `json:"title"`
	Price         float64 `json:"price"`
	ImageURL      string  `json:"imageUrl"`
	Quantity      int     `json:"quantity"`
	SelectedSize  string  `json:"selectedSize,omitempty"`
	SelectedColor string  `json:"selectedColor,omitempty"`
}

func buildCartPayload(view services.CartView) cartPayload {
	items := make([]cartItemPayload, 0, len(view.Cart.Items))
	for _, item := range view.Cart.Items {
		items = append(items, cartItemPayload{
			ProductID:     item.ProductID,
			Title:         item.Title,
			Price:         item.Price,
			ImageURL:      item.ImageURL,
			Quantity:      item.Quantity,
			SelectedSize:  item.SelectedSize,
			SelectedColor: item.SelectedColor,
		})
	}
	return cartPayload{
		Items:     items,
		ItemCount: view.ItemCount,
		Total:     view.Total,
		TotalText: domain.FormatPrice(view.Total),
	}
}
