package shopapi

import (
	"errors"
	"net/http"
)

// HTTPStatus maps a client failure onto the status the gateway surfaces:
// missing token 401, upstream business rejection 422, anything else 502.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrAuthRequired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRejected):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

// HTTPStatus lets httpx.RespondError pick the right status for client failures.
func (e *APIError) HTTPStatus() int {
	return HTTPStatus(e)
}
