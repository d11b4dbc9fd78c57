package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cartify/api/internal/domain"
	"github.com/cartify/api/internal/platform/httpx"
	"github.com/cartify/api/internal/platform/pagination"
	"github.com/cartify/api/internal/platform/requestctx"
	"github.com/cartify/api/internal/services"
)

// OrderHandlers exposes the signed-in user's order endpoints.
type OrderHandlers struct {
	orders services.OrderService
	users  services.UserService
}

// NewOrderHandlers constructs handlers backed by the order and user services.
func NewOrderHandlers(orders services.OrderService, users services.UserService) *OrderHandlers {
	return &OrderHandlers{orders: orders, users: users}
}

// Routes wires the /me/orders endpoints onto the provided router.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/orders", h.placeOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{orderID}", h.getOrder)
	r.Post("/orders/{orderID}/cancel", h.cancelOrder)
}

func (h *OrderHandlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		DeliveryAddress string `json:"deliveryAddress"`
	}
	if err := decodeJSONBody(r, defaultMaxBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	placed, err := h.orders.PlaceOrder(ctx, services.PlaceOrderCommand{
		UserID:          uid,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildOrderPayload(placed))
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	params, err := pagination.ParseParams(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("VALIDATION_FAILED", err.Error(), http.StatusBadRequest))
		return
	}

	orders, err := h.orders.ListOrders(ctx, uid)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	page, next, err := pagination.Slice(orders, params)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("VALIDATION_FAILED", err.Error(), http.StatusBadRequest))
		return
	}

	payloads := make([]orderPayload, 0, len(page))
	for _, o := range page {
		payloads = append(payloads, buildOrderPayload(o))
	}
	response := map[string]any{"orders": payloads}
	if next != "" {
		response["nextPageToken"] = next
	}
	writeJSONResponse(w, http.StatusOK, response)
}

func (h *OrderHandlers) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	found, err := h.orders.GetOrder(ctx, uid, chi.URLParam(r, "orderID"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOrderPayload(found))
}

func (h *OrderHandlers) cancelOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	cancelled, err := h.orders.CancelOrder(ctx, uid, chi.URLParam(r, "orderID"))
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildOrderPayload(cancelled))
}

func (h *OrderHandlers) currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	ctx := r.Context()
	current, err := h.users.CurrentSession(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return "", false
	}
	requestctx.WithUserID(ctx, current.UserID)
	return current.UserID, true
}

type orderPayload struct {
	OrderID         string            `json:"orderId"`
	Items           []cartItemPayload `json:"items"`
	TotalAmount     float64           `json:"totalAmount"`
	TotalText       string            `json:"totalText"`
	OrderDate       string            `json:"orderDate"`
	Status          string            `json:"status"`
	DeliveryAddress string            `json:"deliveryAddress"`
}

func buildOrderPayload(o domain.Order) orderPayload {
	items := make([]cartItemPayload, 0, len(o.Items))
	for _, item := range o.Items {
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
	return orderPayload{
		OrderID:         o.OrderID,
		Items:           items,
		TotalAmount:     o.TotalAmount,
		TotalText:       domain.FormatPrice(o.TotalAmount),
		OrderDate:       o.OrderDate,
		Status:          string(o.Status),
		DeliveryAddress: o.DeliveryAddress,
	}
}
