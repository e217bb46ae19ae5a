package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is the per-peer view the frontend lists. It is derived from
// messages, requests and the connection directory on demand and never stored.
type Conversation struct {
	PeerID            uuid.UUID  `json:"peer_id"`
	LastMessage       *string    `json:"last_message,omitempty"`
	LastMessageTime   *time.Time `json:"last_message_time,omitempty"`
	UnreadCount       int        `json:"unread_count"`
	IsMessageRequest  bool       `json:"is_message_request"`
	MessagesRemaining int        `json:"messages_remaining"`
	// Joined fields
	PeerUsername    string `json:"peer_username,omitempty"`
	PeerDisplayName string `json:"peer_display_name,omitempty"`
}
