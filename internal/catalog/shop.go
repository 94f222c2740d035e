package catalog

import (
	"net/http"

	"github.com/zedx-auto/garagepos/internal/platform/httpx"
	"github.com/zedx-auto/garagepos/internal/shopapi"
)

type shopDetailsForm struct {
	Name         string `json:"name" validate:"required,max=200"`
	Address      string `json:"address" validate:"required,max=500"`
	MobileNumber string `json:"mobileNumber" validate:"required,len=10,numeric"`
}

func (h *Handler) getShopDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.bound(r).GetShopDetails(r.Context())
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

func (h *Handler) saveShopDetails(w http.ResponseWriter, r *http.Request) {
	var form shopDetailsForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	saved, err := h.bound(r).SaveShopDetails(r.Context(), shopapi.ShopDetails{
		Name:         form.Name,
		Address:      form.Address,
		MobileNumber: form.MobileNumber,
		IsActive:     true,
	})
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, saved)
}

func (h *Handler) updateShopDetails(w http.ResponseWriter, r *http.Request) {
	var form struct {
		shopDetailsForm
		ID int64 `json:"id" validate:"required,gt=0"`
	}
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	saved, err := h.bound(r).UpdateShopDetails(r.Context(), shopapi.ShopDetails{
		ID:           form.ID,
		Name:         form.Name,
		Address:      form.Address,
		MobileNumber: form.MobileNumber,
		IsActive:     true,
	})
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}
