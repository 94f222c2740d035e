package catalog

import (
	"net/http"

	"github.com/zedx-auto/garagepos/internal/platform/httpx"
	"github.com/zedx-auto/garagepos/internal/shopapi"
)

type serviceForm struct {
	Name string `json:"name" validate:"required,max=200"`
	Icon string `json:"icon" validate:"max=50"`
}

func (h *Handler) listServices(w http.ResponseWriter, r *http.Request) {
	pageNumber, pageSize := pageParams(r)
	page, err := h.bound(r).ListServices(r.Context(), pageNumber, pageSize, statusParam(r))
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) saveService(w http.ResponseWriter, r *http.Request) {
	var form serviceForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	saved, err := h.bound(r).SaveService(r.Context(), shopapi.Service{Name: form.Name, Icon: form.Icon, IsActive: true})
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, saved)
}

func (h *Handler) updateService(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid service id")
		return
	}
	var form serviceForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	saved, err := h.bound(r).UpdateService(r.Context(), shopapi.Service{ID: id, Name: form.Name, Icon: form.Icon, IsActive: true})
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}

func (h *Handler) searchServices(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "name is required")
		return
	}
	matches, err := h.bound(r).ServicesByName(r.Context(), name)
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payload": matches})
}

func (h *Handler) updateServiceStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid service id")
		return
	}
	status := r.URL.Query().Get("status") == "true"
	if err := h.bound(r).UpdateServiceStatus(r.Context(), id, status); err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "isActive": status})
}
