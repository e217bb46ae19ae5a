package domain

import (
	"time"

	"github.com/google/uuid"
)

// Connection is an accepted relationship between two users, stored with
// User1ID < User2ID (canonical order).
type Connection struct {
	ID        uuid.UUID `json:"id"`
	User1ID   uuid.UUID `json:"user1_id"`
	User2ID   uuid.UUID `json:"user2_id"`
	CreatedAt time.Time `json:"created_at"`
	// Joined fields
	OtherUserID      uuid.UUID `json:"other_user_id"`
	OtherUsername    string    `json:"other_username"`
	OtherDisplayName string    `json:"other_display_name"`
	OtherStatus      string    `json:"other_status"`
}
