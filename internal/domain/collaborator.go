package domain

import "time"

// Collaborator is a (note, user) edit grant. The owner is never a member
// of its own note's collaborator set.
type Collaborator struct {
	ID      string    `bson:"_id" json:"id"`
	NoteID  string    `bson:"noteId" json:"note_id"`
	UserID  string    `bson:"userId" json:"user_id"`
	AddedAt time.Time `bson:"addedAt" json:"added_at"`
}

type AddCollaboratorRequest struct {
	Username string `json:"username" validate:"required"`
}
