package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cartify/api/internal/platform/httpx"
	"github.com/cartify/api/internal/remote/firebaseauth"
	"github.com/cartify/api/internal/services"
)

// AuthHandlers exposes sign-in, sign-up and sign-out endpoints.
type AuthHandlers struct {
	users services.UserService
}

// NewAuthHandlers constructs handlers backed by the user service.
func NewAuthHandlers(users services.UserService) *AuthHandlers {
	return &AuthHandlers{users: users}
}

// Routes wires the /auth endpoints onto the provided router.
func (h *AuthHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/signin", h.signIn)
	r.Post("/signup", h.signUp)
	r.Post("/signout", h.signOut)
	r.Post("/password-reset", h.passwordReset)
}

func (h *AuthHandlers) signIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSONBody(r, defaultMaxBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	current, err := h.users.SignIn(ctx, services.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, buildSessionPayload(current))
}

func (h *AuthHandlers) signUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := decodeJSONBody(r, defaultMaxBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	current, err := h.users.SignUp(ctx, services.Credentials{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, buildSessionPayload(current))
}

func (h *AuthHandlers) signOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.users.SignOut(ctx); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandlers) passwordReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSONBody(r, defaultMaxBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	if err := h.users.SendPasswordReset(ctx, req.Email); err != nil {
		if errors.Is(err, firebaseauth.ErrUserNotFound) {
			httpx.WriteError(ctx, w, httpx.NewError("NOT_FOUND", "no account exists for this email", http.StatusNotFound))
			return
		}
		writeServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *AuthHandlers) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, firebaseauth.ErrInvalidCredentials), errors.Is(err, firebaseauth.ErrUserNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("INVALID_CREDENTIALS", "email or password is incorrect", http.StatusUnauthorized))
	case errors.Is(err, firebaseauth.ErrEmailInUse):
		httpx.WriteError(ctx, w, httpx.NewError("EMAIL_IN_USE", "an account with this email already exists", http.StatusConflict))
	default:
		writeServiceError(ctx, w, err)
	}
}
