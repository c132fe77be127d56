package domain

import "time"

// NoteVersion is an immutable snapshot of a note's title and content,
// appended before every non-autosave edit.
type NoteVersion struct {
	ID          string    `bson:"_id" json:"id"`
	NoteID      string    `bson:"noteId" json:"note_id"`
	Title       string    `bson:"title" json:"title"`
	Content     string    `bson:"content" json:"content"`
	VersionedAt time.Time `bson:"versionedAt" json:"versioned_at"`
}

type NoteVersionResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	VersionedAt time.Time `json:"versioned_at"`
}

func (v *NoteVersion) Response() *NoteVersionResponse {
	return &NoteVersionResponse{
		ID:          v.ID,
		Title:       v.Title,
		Content:     v.Content,
		VersionedAt: v.VersionedAt,
	}
}
