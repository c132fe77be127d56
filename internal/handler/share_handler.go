package handler

import (
	"encoding/json"
	"net/http"

	"github.com/vdsasi/NoteSharingApp/internal/domain"
	"github.com/vdsasi/NoteSharingApp/internal/middleware"
	"github.com/vdsasi/NoteSharingApp/internal/service"
	"github.com/vdsasi/NoteSharingApp/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// ShareHandler exposes the collaboration surface: collaborator management
// per note plus the share-target user search.
type ShareHandler struct {
	service  *service.CollabService
	validate *validator.Validate
}

func NewShareHandler(service *service.CollabService) *ShareHandler {
	return &ShareHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *ShareHandler) ListCollaborators(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	if noteID == "" {
		response.BadRequest(w, "Note ID is required")
		return
	}

	collaborators, err := h.service.ListCollaborators(noteID, middleware.GetUserID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, collaborators)
}

func (h *ShareHandler) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	if noteID == "" {
		response.BadRequest(w, "Note ID is required")
		return
	}

	var req domain.AddCollaboratorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	collaborators, err := h.service.AddCollaborator(noteID, middleware.GetUserID(r), req.Username)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, collaborators)
}

func (h *ShareHandler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	noteID := vars["id"]
	username := vars["username"]
	if noteID == "" || username == "" {
		response.BadRequest(w, "Note ID and username are required")
		return
	}

	collaborators, err := h.service.RemoveCollaborator(noteID, middleware.GetUserID(r), username)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, collaborators)
}

func (h *ShareHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.SearchUsers(r.URL.Query().Get("query"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, users)
}
