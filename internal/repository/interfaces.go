package repository

import (
	"context"

	"github.com/davorm/tether/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	// ListForUser returns every message the user sent or received,
	// ordered by creation time ascending.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Message, error)
	ListBetween(ctx context.Context, userA, userB uuid.UUID) ([]domain.Message, error)
	// MarkRead flips is_read on all unread messages from peer to viewer and
	// returns how many rows changed. Zero rows is not an error.
	MarkRead(ctx context.Context, peerID, viewerID uuid.UUID) (int64, error)
}

type MessageRequestRepository interface {
	Create(ctx context.Context, req *domain.MessageRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MessageRequest, error)
	// GetByPair returns the single request linking the unordered pair,
	// regardless of which side initiated, or nil.
	GetByPair(ctx context.Context, userA, userB uuid.UUID) (*domain.MessageRequest, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.MessageRequest, error)
	// ClaimSendSlot atomically increments messages_sent while the request is
	// pending and under the cap. It returns the count after the increment,
	// or claimed=false when the quota is already exhausted.
	ClaimSendSlot(ctx context.Context, id uuid.UUID, limit int) (sent int, claimed bool, err error)
	// Accept transitions the request to accepted. Accepting an already
	// accepted request is a no-op.
	Accept(ctx context.Context, id uuid.UUID) error
}

type ConnectionRepository interface {
	Create(ctx context.Context, conn *domain.Connection) error
	GetByUsers(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.Connection, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Connection, error)
	ListPeerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	Delete(ctx context.Context, user1ID, user2ID uuid.UUID) error
	AreConnected(ctx context.Context, userA, userB uuid.UUID) (bool, error)
}
