package domain

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
	// Joined fields
	SenderUsername    string `json:"sender_username,omitempty"`
	SenderDisplayName string `json:"sender_display_name,omitempty"`
}

// DisplayMessage is the shape the frontend renders inside an open
// conversation. Sender is "self" or "other" relative to the viewer.
type DisplayMessage struct {
	ID     uuid.UUID `json:"id"`
	Sender string    `json:"sender"`
	Text   string    `json:"text"`
	Time   time.Time `json:"time"`
	IsRead bool      `json:"is_read"`
}

// ToDisplay maps a message into its display shape for the given viewer.
func (m Message) ToDisplay(viewerID uuid.UUID) DisplayMessage {
	sender := "other"
	if m.SenderID == viewerID {
		sender = "self"
	}
	return DisplayMessage{
		ID:     m.ID,
		Sender: sender,
		Text:   m.Content,
		Time:   m.CreatedAt,
		IsRead: m.IsRead,
	}
}
