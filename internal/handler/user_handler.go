package handler

import (
	"net/http"

	"github.com/vdsasi/NoteSharingApp/internal/middleware"
	"github.com/vdsasi/NoteSharingApp/internal/service"
	"github.com/vdsasi/NoteSharingApp/pkg/response"
)

type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(service *service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Me returns the requester's profile from the store rather than the
// session copy, so a profile read reflects the latest state.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.GetProfile(middleware.GetUserID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, profile)
}
