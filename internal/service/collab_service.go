package service

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/vdsasi/NoteSharingApp/internal/domain"
	"github.com/vdsasi/NoteSharingApp/internal/repository"
	"github.com/vdsasi/NoteSharingApp/internal/websocket"

	"github.com/google/uuid"
)

// Collaborator search queries shorter than this return nothing; the share
// dialog only suggests after two characters and the contract is enforced
// here rather than in the UI.
const minSearchQueryLen = 2

const maxSearchResults = 10

// CollabService owns the (note, user) sharing relation. Only the note's
// owner may grant or revoke access; collaborators may look but not touch.
type CollabService struct {
	noteRepo   repository.NoteRepository
	userRepo   repository.UserRepository
	collabRepo repository.CollaboratorRepository
	hub        *websocket.Manager
}

func NewCollabService(
	noteRepo repository.NoteRepository,
	userRepo repository.UserRepository,
	collabRepo repository.CollaboratorRepository,
	hub *websocket.Manager,
) *CollabService {
	return &CollabService{
		noteRepo:   noteRepo,
		userRepo:   userRepo,
		collabRepo: collabRepo,
		hub:        hub,
	}
}

func (s *CollabService) AddCollaborator(noteID, requesterID, targetUsername string) ([]domain.UserProfile, error) {
	note, err := s.noteRepo.FindByID(noteID)
	if err != nil {
		return nil, err
	}
	if note.OwnerID != requesterID {
		return nil, fmt.Errorf("only the owner can share a note: %w", domain.ErrForbidden)
	}

	target, err := s.userRepo.FindByUsername(targetUsername)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", targetUsername, err)
	}
	if target.ID == note.OwnerID {
		return nil, fmt.Errorf("owner already has access: %w", domain.ErrConflict)
	}

	err = s.collabRepo.Add(&domain.Collaborator{
		ID:      uuid.New().String(),
		NoteID:  noteID,
		UserID:  target.ID,
		AddedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(note, requesterID, target.Username, websocket.TypeCollaboratorAdded)
	return s.profiles(noteID)
}

func (s *CollabService) RemoveCollaborator(noteID, requesterID, targetUsername string) ([]domain.UserProfile, error) {
	note, err := s.noteRepo.FindByID(noteID)
	if err != nil {
		return nil, err
	}
	if note.OwnerID != requesterID {
		return nil, fmt.Errorf("only the owner can revoke sharing: %w", domain.ErrForbidden)
	}

	target, err := s.userRepo.FindByUsername(targetUsername)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", targetUsername, err)
	}

	if err := s.collabRepo.Remove(noteID, target.ID); err != nil {
		return nil, err
	}

	s.broadcast(note, requesterID, target.Username, websocket.TypeCollaboratorRemove)
	return s.profiles(noteID)
}

func (s *CollabService) ListCollaborators(noteID, requesterID string) ([]domain.UserProfile, error) {
	note, err := s.noteRepo.FindByID(noteID)
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

	return s.profiles(noteID)
}

// SearchUsers backs the share-target suggestion box.
func (s *CollabService) SearchUsers(query string) ([]domain.UserProfile, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minSearchQueryLen {
		return []domain.UserProfile{}, nil
	}

	users, err := s.userRepo.Search(query, maxSearchResults)
	if err != nil {
		return nil, err
	}

	out := make([]domain.UserProfile, 0, len(users))
	for _, u := range users {
		out = append(out, u.Profile())
	}
	return out, nil
}

func (s *CollabService) profiles(noteID string) ([]domain.UserProfile, error) {
	ids, err := s.collabRepo.ListUserIDs(noteID)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}

	out := make([]domain.UserProfile, 0, len(users))
	for _, u := range users {
		out = append(out, u.Profile())
	}
	return out, nil
}

func (s *CollabService) broadcast(note *domain.Note, actorID, username string, msgType websocket.MessageType) {
	if s.hub == nil {
		return
	}

	collabIDs, err := s.collabRepo.ListUserIDs(note.ID)
	if err != nil {
		return
	}

	msg, err := websocket.NewMessage(msgType, websocket.CollaboratorEventPayload{
		NoteID:   note.ID,
		Username: username,
		ActorID:  actorID,
	})
	if err != nil {
		return
	}

	s.hub.BroadcastToUsers(append(collabIDs, note.OwnerID), msg, "")
}
