// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"
)

// statusCarrier is implemented by errors that know which HTTP status the
// gateway should surface for them.
type statusCarrier interface {
	HTTPStatus() int
}

// RespondError maps an error onto an RFC7807 problem response. Errors
// implementing HTTPStatus() int pick their own status; anything else is an
// internal error. Server-side statuses are logged with their cause.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	detail := ""
	var sc statusCarrier
	if errors.As(err, &sc) {
		status = sc.HTTPStatus()
		detail = err.Error()
	}
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", slog.Any("error", err))
	}
	Problem(w, status, http.StatusText(status), detail)
}
