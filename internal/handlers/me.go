package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cartify/api/internal/domain"
	"github.com/cartify/api/internal/platform/httpx"
	"github.com/cartify/api/internal/platform/requestctx"
	"github.com/cartify/api/internal/services"
)

// MeHandlers exposes the signed-in user's profile, favorites and preference
// endpoints.
type MeHandlers struct {
	users services.UserService
}

// NewMeHandlers constructs handlers backed by the user service.
func NewMeHandlers(users services.UserService) *MeHandlers {
	return &MeHandlers{users: users}
}

// Routes wires the profile scoped endpoints onto the provided router.
func (h *MeHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/session", h.getSession)
	r.Get("/profile", h.getProfile)
	r.Put("/profile", h.putProfile)
	r.Get("/favorites", h.listFavorites)
	r.Put("/favorites/{productID}", h.addFavorite)
	r.Delete("/favorites/{productID}", h.removeFavorite)
	r.Get("/preferences", h.getPreferences)
	r.Put("/preferences", h.putPreferences)
}

func (h *MeHandlers) getSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	current, err := h.users.CurrentSession(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	requestctx.WithUserID(ctx, current.UserID)
	writeJSONResponse(w, http.StatusOK, buildSessionPayload(current))
}

func (h *MeHandlers) getProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	current, err := h.users.CurrentSession(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	requestctx.WithUserID(ctx, current.UserID)

	profile, err := h.users.Profile(ctx, current.UserID)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, profile)
}

func (h *MeHandlers) putProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	current, err := h.users.CurrentSession(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	requestctx.WithUserID(ctx, current.UserID)

	var req struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}
	if err := decodeJSONBody(r, defaultMaxBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}

	saved, err := h.users.SaveProfile(ctx, domain.UserProfile{
		UserID:  current.UserID,
		Email:   req.Email,
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, saved)
}

func (h *MeHandlers) listFavorites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	favorites, err := h.users.Favorites(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	if favorites == nil {
		favorites = []string{}
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"favorites": favorites})
}

func (h *MeHandlers) addFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.users.AddFavorite(ctx, chi.URLParam(r, "productID")); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MeHandlers) removeFavorite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.users.RemoveFavorite(ctx, chi.URLParam(r, "productID")); err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MeHandlers) getPreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	prefs, err := h.users.Preferences(ctx)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, prefs)
}

func (h *MeHandlers) putPreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.Preferences
	if err := decodeJSONBody(r, defaultMaxBodySize, &req); err != nil {
		writeBodyError(ctx, w, err)
		return
	}
	if strings.TrimSpace(string(req.Theme)) == "" || strings.TrimSpace(req.Language) == "" || strings.TrimSpace(req.Currency) == "" {
		httpx.WriteError(ctx, w, httpx.NewError("VALIDATION_FAILED", "theme, language and currency are required", http.StatusBadRequest))
		return
	}

	stored, err := h.users.UpdatePreferences(ctx, req)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, stored)
}

type sessionPayload struct {
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	LoggedIn      bool   `json:"loggedIn"`
	FirstTimeUser bool   `json:"firstTimeUser"`
	LastLogin     int64  `json:"lastLogin"`
}

func buildSessionPayload(s domain.Session) sessionPayload {
	return sessionPayload{
		UserID:        s.UserID,
		Email:         s.Email,
		Name:          s.Name,
		LoggedIn:      s.LoggedIn,
		FirstTimeUser: s.FirstTimeUser,
		LastLogin:     s.LastLogin,
	}
}
