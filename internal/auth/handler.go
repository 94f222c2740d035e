// Package auth exchanges operator credentials for an upstream bearer token and
// guards authenticated routes. The token and cached profile live in the
// server-side session, never in the browser.
package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/zedx-auto/garagepos/internal/platform/httpx"
	"github.com/zedx-auto/garagepos/internal/session"
	"github.com/zedx-auto/garagepos/internal/shopapi"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	api       *shopapi.Client
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, api *shopapi.Client) *Handler {
	return &Handler{
		logger:    logger,
		api:       api,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/me", h.handleMe)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	result, err := h.api.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, shopapi.ErrRejected) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid username or password")
			return
		}
		h.logger.Error("login upstream call failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Upstream Error", err.Error())
		return
	}

	sess := session.FromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.Login(result.AccessToken, &session.Profile{
		ID:          result.User.ID,
		Username:    result.User.Username,
		DisplayName: result.User.DisplayName,
		Role:        result.User.Role,
	})

	httpx.JSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"profile":       sess.Profile(),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := session.FromContext(r.Context()); sess != nil {
		sess.Destroy()
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"authenticated": false})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if sess == nil || !sess.Authenticated() {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "not signed in")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"profile":       sess.Profile(),
	})
}

// RequireAuth rejects requests whose session carries no upstream token. The
// check is local; no upstream call is made.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		if sess == nil || !sess.Authenticated() {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required, please login again")
			return
		}
		next.ServeHTTP(w, r)
	})
}
