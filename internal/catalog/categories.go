package catalog

import (
	"net/http"

	"github.com/zedx-auto/garagepos/internal/platform/httpx"
	"github.com/zedx-auto/garagepos/internal/shopapi"
)

type categoryForm struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	pageNumber, pageSize := pageParams(r)
	page, err := h.bound(r).ListOutgoingPaymentCategories(r.Context(), pageNumber, pageSize, statusParam(r))
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) saveCategory(w http.ResponseWriter, r *http.Request) {
	var form categoryForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	saved, err := h.bound(r).SaveOutgoingPaymentCategory(r.Context(), shopapi.OutgoingPaymentCategory{Name: form.Name, IsActive: true})
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, saved)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid category id")
		return
	}
	var form categoryForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	saved, err := h.bound(r).UpdateOutgoingPaymentCategory(r.Context(), shopapi.OutgoingPaymentCategory{ID: id, Name: form.Name, IsActive: true})
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}

func (h *Handler) updateCategoryStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid category id")
		return
	}
	status := r.URL.Query().Get("status") == "true"
	if err := h.bound(r).UpdateOutgoingPaymentCategoryStatus(r.Context(), id, status); err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "isActive": status})
}
