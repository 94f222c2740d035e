package pos

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/zedx-auto/garagepos/internal/platform/httpx"
	"github.com/zedx-auto/garagepos/internal/receipt"
	"github.com/zedx-auto/garagepos/internal/session"
)

// Handler manages POS endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	handoffs  *receipt.HandoffStore
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, handoffs *receipt.HandoffStore) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		handoffs:  handoffs,
		validator: validator.New(),
	}
}

// MountRoutes registers POS routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/cart", h.getCart)
	r.Post("/cart/items", h.addItem)
	r.Delete("/cart/items/{serviceID}", h.removeItem)
	r.Put("/cart/items/{serviceID}/quantity", h.setQuantity)
	r.Delete("/cart", h.clearCart)

	r.Post("/checkout", h.checkout)

	r.Get("/pending", h.listPending)
	r.Post("/pending/reopen", h.reopen)
	r.Post("/pending/finalize", h.finalize)

	r.Get("/receipts/{transactionNo}", h.getReceipt)
	r.Get("/receipts/{transactionNo}/pdf", h.getReceiptPDF)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.Cart(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cartView(cart))
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	cart, err := h.service.AddToCart(r.Context(), session.FromContext(r.Context()), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cartView(cart))
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	serviceID, err := strconv.ParseInt(chi.URLParam(r, "serviceID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid service id")
		return
	}
	cart, err := h.service.RemoveFromCart(r.Context(), session.FromContext(r.Context()), serviceID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cartView(cart))
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	serviceID, err := strconv.ParseInt(chi.URLParam(r, "serviceID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid service id")
		return
	}
	var req quantityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	cart, err := h.service.SetQuantity(r.Context(), session.FromContext(r.Context()), serviceID, req.Quantity)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cartView(cart))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearCart(r.Context(), session.FromContext(r.Context())); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cartView(&Cart{}))
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	result, err := h.service.Checkout(r.Context(), session.FromContext(r.Context()), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) listPending(w http.ResponseWriter, r *http.Request) {
	pageNumber, pageSize := pageParams(r)
	page, err := h.service.PendingSales(r.Context(), session.FromContext(r.Context()), pageNumber, pageSize)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) reopen(w http.ResponseWriter, r *http.Request) {
	var req ReopenRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	cart, txn, err := h.service.Reopen(r.Context(), session.FromContext(r.Context()), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"cart":        cartView(cart),
		"transaction": txn,
	})
}

func (h *Handler) finalize(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Finalize(r.Context(), session.FromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) getReceipt(w http.ResponseWriter, r *http.Request) {
	handoff, err := h.handoffs.Get(r.Context(), chi.URLParam(r, "transactionNo"))
	if err != nil {
		if errors.Is(err, receipt.ErrHandoffNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "receipt is not ready yet")
			return
		}
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, handoff)
}

func (h *Handler) getReceiptPDF(w http.ResponseWriter, r *http.Request) {
	transactionNo := chi.URLParam(r, "transactionNo")
	doc, err := h.handoffs.PDF(r.Context(), transactionNo)
	if err != nil {
		if errors.Is(err, receipt.ErrHandoffNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "no receipt document was rendered")
			return
		}
		h.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="receipt-`+transactionNo+`.pdf"`)
	_, _ = w.Write(doc)
}

// cartView decorates the cart with its running total.
func cartView(cart *Cart) map[string]any {
	return map[string]any{
		"lines": cart.Lines,
		"total": cart.Total(),
	}
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

// respondError maps POS and upstream failures onto problem responses.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrNoCustomer):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInvalidPIN):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, ErrSaleNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrNotPending), errors.Is(err, ErrNoPendingSale), errors.Is(err, ErrSagaOpen):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		httpx.RespondError(w, h.logger, err)
	}
}
