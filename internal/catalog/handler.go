// Package catalog exposes the back-office reference data endpoints: services,
// payment methods, outgoing payment categories, shop details and users. All of
// them proxy the upstream shop backend.
package catalog

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

// Handler manages catalog endpoints.
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

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/services", func(r chi.Router) {
		r.Get("/", h.listServices)
		r.Post("/", h.saveService)
		r.Put("/{id}", h.updateService)
		r.Get("/search", h.searchServices)
		r.Put("/{id}/status", h.updateServiceStatus)
	})
	r.Route("/payment-methods", func(r chi.Router) {
		r.Get("/", h.listPaymentMethods)
		r.Post("/", h.savePaymentMethod)
		r.Put("/{id}", h.updatePaymentMethod)
		r.Put("/{id}/status", h.updatePaymentMethodStatus)
	})
	r.Route("/outgoing-categories", func(r chi.Router) {
		r.Get("/", h.listCategories)
		r.Post("/", h.saveCategory)
		r.Put("/{id}", h.updateCategory)
		r.Put("/{id}/status", h.updateCategoryStatus)
	})
	r.Route("/shop-details", func(r chi.Router) {
		r.Get("/", h.getShopDetails)
		r.Post("/", h.saveShopDetails)
		r.Put("/", h.updateShopDetails)
	})
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.listUsers)
		r.Post("/", h.saveUser)
		r.Put("/{id}", h.updateUser)
		r.Put("/{id}/status", h.updateUserStatus)
	})
}

func (h *Handler) bound(r *http.Request) *shopapi.Client {
	return h.api.WithToken(session.FromContext(r.Context()).Token())
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
		pageSize = 10
	}
	return pageNumber, pageSize
}

func statusParam(r *http.Request) bool {
	return r.URL.Query().Get("status") != "false"
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
