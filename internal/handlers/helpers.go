package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/cartify/api/internal/cart"
	"github.com/cartify/api/internal/order"
	"github.com/cartify/api/internal/platform/httpx"
	"github.com/cartify/api/internal/services"
	"github.com/cartify/api/internal/session"
)

const defaultMaxBodySize = 16 * 1024

var (
	errEmptyBody    = errors.New("request body is empty")
	errBodyTooLarge = errors.New("request body exceeds allowed size")
)

func writeJSONResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func readLimitedBody(r *http.Request, limit int64) ([]byte, error) {
	if r == nil || r.Body == nil {
		return nil, errEmptyBody
	}
	if limit <= 0 {
		limit = defaultMaxBodySize
	}
	reader := io.LimitReader(r.Body, limit+1)
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errEmptyBody
	}
	if int64(len(data)) > limit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

func decodeJSONBody(r *http.Request, limit int64, out any) error {
	data, err := readLimitedBody(r, limit)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.New("invalid JSON payload")
	}
	return nil
}

func writeBodyError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errBodyTooLarge):
		httpx.WriteError(ctx, w, httpx.NewError("PAYLOAD_TOO_LARGE", "request body exceeds allowed size", http.StatusRequestEntityTooLarge))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("VALIDATION_FAILED", err.Error(), http.StatusBadRequest))
	}
}

// writeServiceError maps service failures onto the wire error taxonomy.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrNoSession):
		httpx.WriteError(ctx, w, httpx.NewError("NO_SESSION", "sign in required", http.StatusUnauthorized))
	case errors.Is(err, cart.ErrQuantityExceeded):
		httpx.WriteError(ctx, w, httpx.NewError("QUANTITY_EXCEEDED", err.Error(), http.StatusConflict))
	case errors.Is(err, cart.ErrInvalidQuantity):
		httpx.WriteError(ctx, w, httpx.NewError("VALIDATION_FAILED", err.Error(), http.StatusBadRequest))
	case errors.Is(err, order.ErrEmptyCart):
		httpx.WriteError(ctx, w, httpx.NewError("EMPTY_CART", "cart is empty", http.StatusConflict))
	case errors.Is(err, order.ErrInvalidAddress):
		httpx.WriteError(ctx, w, httpx.NewError("INVALID_ADDRESS", "delivery address is invalid", http.StatusBadRequest))
	case errors.Is(err, order.ErrNoSession):
		httpx.WriteError(ctx, w, httpx.NewError("NO_SESSION", "sign in required", http.StatusUnauthorized))
	case errors.Is(err, services.ErrOrderNotCancellable):
		httpx.WriteError(ctx, w, httpx.NewError("ORDER_NOT_CANCELLABLE", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("VALIDATION_FAILED", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("NOT_FOUND", "resource not found", http.StatusNotFound))
	case errors.Is(err, session.ErrStoreIO):
		httpx.WriteError(ctx, w, httpx.NewError("STORE_IO", "local store unavailable", http.StatusServiceUnavailable))
	case errors.Is(err, services.ErrUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("STORE_IO", "backing store unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("INTERNAL", "internal server error", http.StatusInternalServerError))
	}
}
