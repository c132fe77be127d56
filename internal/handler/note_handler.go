package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/vdsasi/NoteSharingApp/internal/domain"
	"github.com/vdsasi/NoteSharingApp/internal/middleware"
	"github.com/vdsasi/NoteSharingApp/internal/service"
	"github.com/vdsasi/NoteSharingApp/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type NoteHandler struct {
	service  *service.NoteService
	validate *validator.Validate
}

func NewNoteHandler(service *service.NoteService) *NoteHandler {
	return &NoteHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	note, err := h.service.Create(middleware.GetUserID(r), &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.Created(w, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.List(middleware.GetUserID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, notes)
}

func (h *NoteHandler) ListTrashed(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.ListTrashed(middleware.GetUserID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, notes)
}

func (h *NoteHandler) ListByTag(w http.ResponseWriter, r *http.Request) {
	notes, err := h.service.ListByTag(middleware.GetUserID(r), r.URL.Query().Get("tag"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, notes)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	if noteID == "" {
		response.BadRequest(w, "Note ID is required")
		return
	}

	note, err := h.service.Get(middleware.GetUserID(r), noteID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, note)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	if noteID == "" {
		response.BadRequest(w, "Note ID is required")
		return
	}

	var req domain.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	note, err := h.service.Update(middleware.GetUserID(r), noteID, &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, note)
}

func (h *NoteHandler) AutoSave(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	if noteID == "" {
		response.BadRequest(w, "Note ID is required")
		return
	}

	var req domain.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	note, err := h.service.AutoSave(middleware.GetUserID(r), noteID, &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	if noteID == "" {
		response.BadRequest(w, "Note ID is required")
		return
	}

	if err := h.service.SoftDelete(middleware.GetUserID(r), noteID); err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, map[string]string{"message": "Note moved to trash"})
}

func (h *NoteHandler) Restore(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	if noteID == "" {
		response.BadRequest(w, "Note ID is required")
		return
	}

	note, err := h.service.Restore(middleware.GetUserID(r), noteID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, note)
}

func (h *NoteHandler) TogglePin(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	if noteID == "" {
		response.BadRequest(w, "Note ID is required")
		return
	}

	note, err := h.service.TogglePin(middleware.GetUserID(r), noteID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, note)
}

func (h *NoteHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	if noteID == "" {
		response.BadRequest(w, "Note ID is required")
		return
	}

	versions, err := h.service.ListVersions(middleware.GetUserID(r), noteID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, versions)
}

func (h *NoteHandler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	noteID := vars["id"]
	if noteID == "" {
		response.BadRequest(w, "Note ID is required")
		return
	}

	versionIndex, err := strconv.Atoi(vars["index"])
	if err != nil {
		response.BadRequest(w, "Invalid version index")
		return
	}

	note, err := h.service.RestoreVersion(middleware.GetUserID(r), noteID, versionIndex)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	response.Success(w, note)
}
