package ws

import (
	"encoding/json"
	"time"

	"github.com/davorm/tether/internal/domain"
	"github.com/google/uuid"
)

// Event types - Client → Server
const (
	EventTypePing = "ping"
)

// Event types - Server → Client
const (
	EventTypeMessageNew           = "message.new"
	EventTypeConversationRead     = "conversation.read"
	EventTypeRequestAccepted      = "request.accepted"
	EventTypeConversationSnapshot = "conversation.snapshot"
	EventTypePresence             = "presence"
	EventTypePong                 = "pong"
	EventTypeError                = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Server → Client payloads ---

type MessagePayload struct {
	domain.Message
}

type ConversationReadPayload struct {
	ViewerID uuid.UUID `json:"viewer_id"`
	PeerID   uuid.UUID `json:"peer_id"`
}

type RequestAcceptedPayload struct {
	domain.MessageRequest
}

type ConversationSnapshotPayload struct {
	Conversations []domain.Conversation `json:"conversations"`
}

type PresencePayload struct {
	UserID uuid.UUID `json:"user_id"`
	Status string    `json:"status"` // "online" | "offline"
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
