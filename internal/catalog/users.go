package catalog

import (
	"net/http"

	"github.com/zedx-auto/garagepos/internal/platform/httpx"
	"github.com/zedx-auto/garagepos/internal/shopapi"
)

type userForm struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	DisplayName string `json:"displayName" validate:"required,max=100"`
	Role        string `json:"role" validate:"required,oneof=ADMIN CASHIER"`
	Password    string `json:"password" validate:"omitempty,min=6"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	pageNumber, pageSize := pageParams(r)
	page, err := h.bound(r).ListUsers(r.Context(), pageNumber, pageSize, statusParam(r))
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) saveUser(w http.ResponseWriter, r *http.Request) {
	var form userForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if form.Password == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "password is required")
		return
	}
	saved, err := h.bound(r).SaveUser(r.Context(), shopapi.User{
		Username:    form.Username,
		DisplayName: form.DisplayName,
		Role:        form.Role,
		Password:    form.Password,
		IsActive:    true,
	})
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, saved)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	var form userForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	saved, err := h.bound(r).UpdateUser(r.Context(), shopapi.User{
		ID:          id,
		Username:    form.Username,
		DisplayName: form.DisplayName,
		Role:        form.Role,
		Password:    form.Password,
		IsActive:    true,
	})
	if err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}

func (h *Handler) updateUserStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	status := r.URL.Query().Get("status") == "true"
	if err := h.bound(r).UpdateUserStatus(r.Context(), id, status); err != nil {
		h.respondUpstream(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "isActive": status})
}
