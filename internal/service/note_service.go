package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vdsasi/NoteSharingApp/internal/domain"
	"github.com/vdsasi/NoteSharingApp/internal/repository"
	"github.com/vdsasi/NoteSharingApp/internal/websocket"

	"github.com/google/uuid"
)

// NotePolicy captures the lifecycle choices the product left open:
// whether a restored note keeps its pin and whether restoring an old
// version snapshots the current state first.
type NotePolicy struct {
	RestoreResetsPin         bool
	SnapshotOnVersionRestore bool
}

func DefaultNotePolicy() NotePolicy {
	return NotePolicy{
		RestoreResetsPin:         true,
		SnapshotOnVersionRestore: true,
	}
}

// NoteService is the single entry point for the note lifecycle: it
// enforces authorization, serializes writes per note and keeps the
// version log consistent with every edit.
type NoteService struct {
	repo        repository.NoteRepository
	versionRepo repository.NoteVersionRepository
	collabRepo  repository.CollaboratorRepository
	hub         *websocket.Manager
	policy      NotePolicy
	locks       sync.Map // note id -> *sync.Mutex
}

func NewNoteService(
	repo repository.NoteRepository,
	versionRepo repository.NoteVersionRepository,
	collabRepo repository.CollaboratorRepository,
	hub *websocket.Manager,
	policy NotePolicy,
) *NoteService {
	return &NoteService{
		repo:        repo,
		versionRepo: versionRepo,
		collabRepo:  collabRepo,
		hub:         hub,
		policy:      policy,
	}
}

// lockNote serializes mutations on a single note id. Snapshot plus field
// update commit as a unit under this lock.
func (s *NoteService) lockNote(noteID string) func() {
	v, _ := s.locks.LoadOrStore(noteID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *NoteService) Create(ownerID string, req *domain.CreateNoteRequest) (*domain.NoteResponse, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("title is required: %w", domain.ErrValidation)
	}

	now := time.Now()
	note := &domain.Note{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Title:     req.Title,
		Content:   req.Content,
		Tags:      domain.NormalizeTags(req.Tags),
		Pinned:    false,
		Trashed:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(note); err != nil {
		return nil, err
	}

	return note.Response(), nil
}

func (s *NoteService) Get(requesterID, noteID string) (*domain.NoteResponse, error) {
	note, err := s.findForRead(requesterID, noteID)
	if err != nil {
		return nil, err
	}
	return note.Response(), nil
}

func (s *NoteService) List(userID string) ([]*domain.NoteResponse, error) {
	shared, err := s.collabRepo.NoteIDsForUser(userID)
	if err != nil {
		return nil, err
	}

	notes, err := s.repo.List(userID, shared)
	if err != nil {
		return nil, err
	}
	return responses(notes), nil
}

func (s *NoteService) ListTrashed(userID string) ([]*domain.NoteResponse, error) {
	notes, err := s.repo.ListTrashed(userID)
	if err != nil {
		return nil, err
	}
	return responses(notes), nil
}

func (s *NoteService) ListByTag(userID, tag string) ([]*domain.NoteResponse, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, fmt.Errorf("tag is required: %w", domain.ErrValidation)
	}

	shared, err := s.collabRepo.NoteIDsForUser(userID)
	if err != nil {
		return nil, err
	}

	notes, err := s.repo.ListByTag(userID, tag, shared)
	if err != nil {
		return nil, err
	}
	return responses(notes), nil
}

// Update applies a partial edit, appending a snapshot of the pre-update
// title and content first so every edit is undoable.
func (s *NoteService) Update(requesterID, noteID string, req *domain.UpdateNoteRequest) (*domain.NoteResponse, error) {
	unlock := s.lockNote(noteID)
	defer unlock()

	note, err := s.findForEdit(requesterID, noteID)
	if err != nil {
		return nil, err
	}

	prev := *note
	if err := applyEdit(note, req); err != nil {
		return nil, err
	}

	if err := s.repo.Update(note); err != nil {
		return nil, err
	}

	// the snapshot commits only after the edit landed, so a failed or
	// rejected update never leaves an orphan version behind
	if err := s.snapshot(&prev); err != nil {
		return nil, err
	}

	s.broadcast(note, requesterID, websocket.TypeNoteUpdate)
	return note.Response(), nil
}

// AutoSave is an editor-driven periodic save: the same edit semantics as
// Update but without growing the version log.
func (s *NoteService) AutoSave(requesterID, noteID string, req *domain.UpdateNoteRequest) (*domain.NoteResponse, error) {
	unlock := s.lockNote(noteID)
	defer unlock()

	note, err := s.findForEdit(requesterID, noteID)
	if err != nil {
		return nil, err
	}

	if err := applyEdit(note, req); err != nil {
		return nil, err
	}

	if err := s.repo.Update(note); err != nil {
		return nil, err
	}

	s.broadcast(note, requesterID, websocket.TypeNoteUpdate)
	return note.Response(), nil
}

func (s *NoteService) TogglePin(requesterID, noteID string) (*domain.NoteResponse, error) {
	unlock := s.lockNote(noteID)
	defer unlock()

	note, err := s.findForEdit(requesterID, noteID)
	if err != nil {
		return nil, err
	}

	note.Pinned = !note.Pinned
	note.UpdatedAt = time.Now()

	if err := s.repo.Update(note); err != nil {
		return nil, err
	}

	s.broadcast(note, requesterID, websocket.TypeNotePin)
	return note.Response(), nil
}

// SoftDelete moves a note to the trash. Owner only; retries are safe
// because trashing a trashed note is a no-op.
func (s *NoteService) SoftDelete(requesterID, noteID string) error {
	unlock := s.lockNote(noteID)
	defer unlock()

	note, err := s.repo.FindByID(noteID)
	if err != nil {
		return err
	}
	if note.OwnerID != requesterID {
		return fmt.Errorf("only the owner can delete a note: %w", domain.ErrForbidden)
	}
	if note.Trashed {
		return nil
	}

	note.Trashed = true
	note.UpdatedAt = time.Now()

	if err := s.repo.Update(note); err != nil {
		return err
	}

	s.broadcast(note, requesterID, websocket.TypeNoteTrash)
	return nil
}

func (s *NoteService) Restore(requesterID, noteID string) (*domain.NoteResponse, error) {
	unlock := s.lockNote(noteID)
	defer unlock()

	note, err := s.repo.FindByID(noteID)
	if err != nil {
		return nil, err
	}
	if note.OwnerID != requesterID {
		return nil, fmt.Errorf("only the owner can restore a note: %w", domain.ErrForbidden)
	}
	if !note.Trashed {
		return nil, fmt.Errorf("note is not in the trash: %w", domain.ErrNotFound)
	}

	note.Trashed = false
	if s.policy.RestoreResetsPin {
		note.Pinned = false
	}
	note.UpdatedAt = time.Now()

	if err := s.repo.Update(note); err != nil {
		return nil, err
	}

	s.broadcast(note, requesterID, websocket.TypeNoteRestore)
	return note.Response(), nil
}

// ListVersions returns the version log oldest first.
func (s *NoteService) ListVersions(requesterID, noteID string) ([]*domain.NoteVersionResponse, error) {
	if _, err := s.findForRead(requesterID, noteID); err != nil {
		return nil, err
	}

	versions, err := s.versionRepo.ListByNote(noteID)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.NoteVersionResponse, 0, len(versions))
	for _, v := range versions {
		out = append(out, v.Response())
	}
	return out, nil
}

// RestoreVersion replaces the live title and content with the version at
// the given 1-based index (counting from the oldest version). The current
// state is snapshotted first so the restore itself is undoable.
func (s *NoteService) RestoreVersion(requesterID, noteID string, versionIndex int) (*domain.NoteResponse, error) {
	unlock := s.lockNote(noteID)
	defer unlock()

	note, err := s.findForEdit(requesterID, noteID)
	if err != nil {
		return nil, err
	}

	versions, err := s.versionRepo.ListByNote(noteID)
	if err != nil {
		return nil, err
	}
	if versionIndex < 1 || versionIndex > len(versions) {
		return nil, fmt.Errorf("version %d out of range: %w", versionIndex, domain.ErrNotFound)
	}
	target := versions[versionIndex-1]

	prev := *note
	note.Title = target.Title
	note.Content = target.Content
	note.UpdatedAt = time.Now()

	if err := s.repo.Update(note); err != nil {
		return nil, err
	}

	if s.policy.SnapshotOnVersionRestore {
		if err := s.snapshot(&prev); err != nil {
			return nil, err
		}
	}

	s.broadcast(note, requesterID, websocket.TypeNoteVersionRestore)
	return note.Response(), nil
}

// findForRead resolves a note for a reader. A trashed note is only
// visible to its owner; everyone else sees it as deleted.
func (s *NoteService) findForRead(requesterID, noteID string) (*domain.Note, error) {
	note, err := s.repo.FindByID(noteID)
	if err != nil {
		return nil, err
	}

	if note.Trashed && note.OwnerID != requesterID {
		return nil, fmt.Errorf("note %s: %w", noteID, domain.ErrNotFound)
	}

	if note.OwnerID != requesterID {
		isCollab, err := s.collabRepo.Exists(noteID, requesterID)
		if err != nil {
			return nil, err
		}
		if !isCollab {
			return nil, fmt.Errorf("no access to note %s: %w", noteID, domain.ErrForbidden)
		}
	}

	return note, nil
}

// findForEdit additionally rejects trashed notes; the trash is read-only
// until the note is restored.
func (s *NoteService) findForEdit(requesterID, noteID string) (*domain.Note, error) {
	note, err := s.findForRead(requesterID, noteID)
	if err != nil {
		return nil, err
	}
	if note.Trashed {
		return nil, fmt.Errorf("note %s is in the trash: %w", noteID, domain.ErrNotFound)
	}
	return note, nil
}

func (s *NoteService) snapshot(note *domain.Note) error {
	return s.versionRepo.Save(&domain.NoteVersion{
		ID:          uuid.New().String(),
		NoteID:      note.ID,
		Title:       note.Title,
		Content:     note.Content,
		VersionedAt: time.Now(),
	})
}

func applyEdit(note *domain.Note, req *domain.UpdateNoteRequest) error {
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return fmt.Errorf("title is required: %w", domain.ErrValidation)
		}
		note.Title = *req.Title
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if req.Tags != nil {
		note.Tags = domain.NormalizeTags(*req.Tags)
	}
	note.UpdatedAt = time.Now()
	return nil
}

func (s *NoteService) broadcast(note *domain.Note, actorID string, msgType websocket.MessageType) {
	if s.hub == nil {
		return
	}

	collabIDs, err := s.collabRepo.ListUserIDs(note.ID)
	if err != nil {
		return
	}

	msg, err := websocket.NewMessage(msgType, websocket.NoteEventPayload{
		NoteID:    note.ID,
		Title:     note.Title,
		Pinned:    note.Pinned,
		Trashed:   note.Trashed,
		UpdatedAt: note.UpdatedAt,
		ActorID:   actorID,
	})
	if err != nil {
		return
	}

	s.hub.BroadcastToUsers(append(collabIDs, note.OwnerID), msg, "")
}

func responses(notes []*domain.Note) []*domain.NoteResponse {
	out := make([]*domain.NoteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Response())
	}
	return out
}
