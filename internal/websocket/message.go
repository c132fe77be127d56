package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	TypeNoteUpdate         MessageType = "note_update"
	TypeNoteTrash          MessageType = "note_trash"
	TypeNoteRestore        MessageType = "note_restore"
	TypeNotePin            MessageType = "note_pin"
	TypeNoteVersionRestore MessageType = "note_version_restore"
	TypeCollaboratorAdded  MessageType = "collaborator_added"
	TypeCollaboratorRemove MessageType = "collaborator_removed"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NoteEventPayload describes a lifecycle change on a note. ActorID lets
// clients skip events caused by their own user.
type NoteEventPayload struct {
	NoteID    string    `json:"note_id"`
	Title     string    `json:"title"`
	Pinned    bool      `json:"pinned"`
	Trashed   bool      `json:"trashed"`
	UpdatedAt time.Time `json:"updated_at"`
	ActorID   string    `json:"actor_id"`
}

type CollaboratorEventPayload struct {
	NoteID   string `json:"note_id"`
	Username string `json:"username"`
	ActorID  string `json:"actor_id"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	var payloadBytes json.RawMessage
	if payload != nil {
		bytes, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		payloadBytes = bytes
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

func (m *Message) UnmarshalPayload(v interface{}) error {
	if m.Payload == nil {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
