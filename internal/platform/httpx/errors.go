// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/fabrica-erp/panel/internal/forms"
	"github.com/fabrica-erp/panel/internal/gateway"
)

// Sentinel errors for the JSON endpoints.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("validation failed")
	ErrBadRequest = errors.New("bad request")
)

// RespondError maps panel and API errors to RFC7807 responses.
func RespondError(w http.ResponseWriter, err error) {
	var verr *forms.ValidationError
	var herr *gateway.HTTPError
	var nerr *gateway.NetworkError
	switch {
	case errors.As(err, &verr):
		JSON(w, http.StatusUnprocessableEntity, ProblemDetail{
			Title:  "Validation Failed",
			Status: http.StatusUnprocessableEntity,
			Errors: verr.Fields,
		})
	case errors.Is(err, gateway.ErrSessionExpired):
		Problem(w, http.StatusUnauthorized, "Session Expired", "Tu sesión ha expirado")
	case errors.Is(err, ErrNotFound), gateway.IsNotFound(err):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation), errors.Is(err, ErrBadRequest):
		Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.As(err, &herr):
		Problem(w, http.StatusBadGateway, "Upstream Error", herr.Error())
	case errors.As(err, &nerr):
		Problem(w, http.StatusBadGateway, "Upstream Unavailable", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
