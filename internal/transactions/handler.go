// Package transactions exposes the transaction history back-office endpoints,
// proxied to the upstream shop backend.
package transactions

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zedx-auto/garagepos/internal/platform/httpx"
	"github.com/zedx-auto/garagepos/internal/session"
	"github.com/zedx-auto/garagepos/internal/shopapi"
)

// Handler manages transaction history endpoints.
type Handler struct {
	logger *slog.Logger
	api    *shopapi.Client
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, api *shopapi.Client) *Handler {
	return &Handler{logger: logger, api: api}
}

// MountRoutes registers transaction history routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Put("/details/{id}/status", h.updateDetailStatus)
}

func (h *Handler) bound(r *http.Request) *shopapi.Client {
	return h.api.WithToken(session.FromContext(r.Context()).Token())
}

// list serves one page of history. A customerId or transactionNo query filter
// narrows the page; customerId wins when both are present.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	pageNumber, pageSize := pageParams(r)
	api := h.bound(r)

	var (
		page *shopapi.TransactionPage
		err  error
	)
	switch {
	case r.URL.Query().Get("customerId") != "":
		customerID, parseErr := strconv.ParseInt(r.URL.Query().Get("customerId"), 10, 64)
		if parseErr != nil || customerID <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer id")
			return
		}
		page, err = api.TransactionsByCustomer(r.Context(), pageNumber, pageSize, customerID)
	case r.URL.Query().Get("transactionNo") != "":
		page, err = api.TransactionsByTransactionNo(r.Context(), pageNumber, pageSize, r.URL.Query().Get("transactionNo"))
	default:
		page, err = api.ListTransactions(r.Context(), pageNumber, pageSize)
	}
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) updateDetailStatus(w http.ResponseWriter, r *http.Request) {
	detailID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || detailID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid detail id")
		return
	}
	status := r.URL.Query().Get("status") == "true"
	if err := h.bound(r).UpdateTransactionDetailStatus(r.Context(), detailID, status); err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": detailID, "isActive": status})
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
