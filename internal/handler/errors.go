package handler

import (
	"errors"
	"net/http"

	"github.com/vdsasi/NoteSharingApp/internal/domain"
	"github.com/vdsasi/NoteSharingApp/pkg/response"
)

// writeDomainError maps the domain error taxonomy onto HTTP statuses.
// Anything outside the taxonomy (including ErrStorage) is a 500 with a
// generic body; details stay in the logs.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		response.BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrAnonymous):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, domain.ErrConflict):
		response.Conflict(w, err.Error())
	default:
		response.InternalError(w, "Internal server error")
	}
}
