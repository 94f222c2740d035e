// Package outgoing exposes the expense tracking endpoints. Records live
// upstream; this layer validates input and forwards calls with the
// operator's token.
package outgoing

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/zedx-auto/garagepos/internal/platform/httpx"
	"github.com/zedx-auto/garagepos/internal/session"
	"github.com/zedx-auto/garagepos/internal/shopapi"
)

// Handler manages outgoing payment endpoints.
type Handler struct {
	logger    *slog.Logger
	api       *shopapi.Client
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, api *shopapi.Client) *Handler {
	return &Handler{
		logger:    logger,
		api:       api,
		validator: validator.New(),
	}
}

// MountRoutes registers outgoing payment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.save)
	r.Put("/{id}", h.update)
	r.Put("/{id}/status", h.updateStatus)
}

type paymentForm struct {
	CategoryID  int64   `json:"categoryId" validate:"required,gt=0"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description string  `json:"description" validate:"max=500"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	pageNumber, _ := strconv.Atoi(r.URL.Query().Get("pageNumber"))
	if pageNumber < 1 {
		pageNumber = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	status := r.URL.Query().Get("status") != "false"
	page, err := h.bound(r).ListOutgoingPayments(r.Context(), pageNumber, pageSize, status)
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	now := time.Now()
	saved, err := h.bound(r).SaveOutgoingPayment(r.Context(), shopapi.OutgoingPayment{
		Category:    &shopapi.OutgoingPaymentCategory{ID: form.CategoryID},
		Amount:      form.Amount,
		Description: form.Description,
		DateTime:    &now,
		IsActive:    true,
	})
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, saved)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid outgoing payment id")
		return
	}
	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}
	saved, err := h.bound(r).UpdateOutgoingPayment(r.Context(), shopapi.OutgoingPayment{
		ID:          id,
		Category:    &shopapi.OutgoingPaymentCategory{ID: form.CategoryID},
		Amount:      form.Amount,
		Description: form.Description,
		IsActive:    true,
	})
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid outgoing payment id")
		return
	}
	status := r.URL.Query().Get("status") == "true"
	if err := h.bound(r).UpdateOutgoingPaymentStatus(r.Context(), id, status); err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "isActive": status})
}

func (h *Handler) decodeForm(w http.ResponseWriter, r *http.Request) (paymentForm, bool) {
	var form paymentForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return form, false
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return form, false
	}
	return form, true
}

func (h *Handler) bound(r *http.Request) *shopapi.Client {
	return h.api.WithToken(session.FromContext(r.Context()).Token())
}

func (h *Handler) respondUpstream(w http.ResponseWriter, err error) {
	httpx.RespondError(w, h.logger, err)
}
