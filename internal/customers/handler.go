// Package customers exposes the customer back-office endpoints, proxied to the
// upstream shop backend.
package customers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/zedx-auto/garagepos/internal/platform/httpx"
	"github.com/zedx-auto/garagepos/internal/session"
	"github.com/zedx-auto/garagepos/internal/shopapi"
)

// Handler manages customer endpoints.
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

// MountRoutes registers customer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.save)
	r.Put("/{id}", h.update)
	r.Get("/search", h.search)
	r.Put("/{id}/status", h.updateStatus)
}

func (h *Handler) bound(r *http.Request) *shopapi.Client {
	return h.api.WithToken(session.FromContext(r.Context()).Token())
}

type customerForm struct {
	Name          string `json:"name" validate:"required,max=200"`
	VehicleNumber string `json:"vehicleNumber" validate:"required,max=50"`
	MobileNumber  string `json:"mobileNumber" validate:"required,len=10,numeric"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	pageNumber, pageSize := pageParams(r)
	status := r.URL.Query().Get("status") != "false"
	page, err := h.bound(r).ListCustomers(r.Context(), pageNumber, pageSize, status)
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	var form customerForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	saved, err := h.bound(r).SaveCustomer(r.Context(), shopapi.Customer{
		Name:          form.Name,
		VehicleNumber: form.VehicleNumber,
		MobileNumber:  form.MobileNumber,
		IsActive:      true,
	})
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, saved)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer id")
		return
	}
	var form customerForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	saved, err := h.bound(r).UpdateCustomer(r.Context(), shopapi.Customer{
		ID:            id,
		Name:          form.Name,
		VehicleNumber: form.VehicleNumber,
		MobileNumber:  form.MobileNumber,
		IsActive:      true,
	})
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}

// search fans the term out to the mobile, vehicle and name endpoints; the
// merged result is de-duplicated by customer id.
func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "search term is required")
		return
	}
	matches, err := h.bound(r).SearchCustomers(r.Context(), term)
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payload": matches})
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer id")
		return
	}
	status := r.URL.Query().Get("status") == "true"
	if err := h.bound(r).UpdateCustomerStatus(r.Context(), id, status); err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "isActive": status})
}

func (h *Handler) respondUpstream(w http.ResponseWriter, err error) {
	httpx.RespondError(w, h.logger, err)
}

func pageParams(r *http.Request) (int, int) {
	pageNumber, _ := strconv.Atoi(r.URL.Query().Get("pageNumber"))
	if pageNumber < 1 {
		pageNumber = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 7
	}
	return pageNumber, pageSize
}
