package catalog

import (
	"net/http"

	"github.com/zedx-auto/garagepos/internal/platform/httpx"
	"github.com/zedx-auto/garagepos/internal/shopapi"
)

type paymentMethodForm struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (h *Handler) listPaymentMethods(w http.ResponseWriter, r *http.Request) {
	pageNumber, pageSize := pageParams(r)
	page, err := h.bound(r).ListPaymentMethods(r.Context(), pageNumber, pageSize, statusParam(r))
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) savePaymentMethod(w http.ResponseWriter, r *http.Request) {
	var form paymentMethodForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	saved, err := h.bound(r).SavePaymentMethod(r.Context(), shopapi.PaymentMethod{Name: form.Name, IsActive: true})
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, saved)
}

func (h *Handler) updatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payment method id")
		return
	}
	var form paymentMethodForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	saved, err := h.bound(r).UpdatePaymentMethod(r.Context(), shopapi.PaymentMethod{ID: id, Name: form.Name, IsActive: true})
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}

func (h *Handler) updatePaymentMethodStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payment method id")
		return
	}
	status := r.URL.Query().Get("status") == "true"
	if err := h.bound(r).UpdatePaymentMethodStatus(r.Context(), id, status); err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "isActive": status})
}
