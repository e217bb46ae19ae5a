package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
)

// RequestMessageCap is the number of messages the initiator may send while
// the request is still pending.
const RequestMessageCap = 3

// MessageRequest gates messaging between two users who have not yet mutually
// engaged. SenderID is the initiator: the user whose first message created
// the request. Only the initiator is subject to the message cap, and only
// while Status is pending.
type MessageRequest struct {
	ID           uuid.UUID `json:"id"`
	SenderID     uuid.UUID `json:"sender_id"`
	ReceiverID   uuid.UUID `json:"receiver_id"`
	Status       string    `json:"status"`
	MessagesSent int       `json:"messages_sent"`
	CreatedAt    time.Time `json:"created_at"`
	// Joined fields
	SenderUsername    string `json:"sender_username,omitempty"`
	SenderDisplayName string `json:"sender_display_name,omitempty"`
}

// Pending reports whether the request still awaits acceptance.
func (r *MessageRequest) Pending() bool {
	return r.Status == RequestStatusPending
}

// Links reports whether the request connects the given unordered pair.
func (r *MessageRequest) Links(a, b uuid.UUID) bool {
	return (r.SenderID == a && r.ReceiverID == b) || (r.SenderID == b && r.ReceiverID == a)
}
