package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/davorm/tether/internal/cache"
	"github.com/davorm/tether/internal/domain"
	"github.com/davorm/tether/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrCannotConnectSelf = errors.New("cannot connect with yourself")
	ErrAlreadyConnected  = errors.New("you are already connected")
	ErrConnUserNotFound  = errors.New("user not found")
)

// ConnectionService is the peer directory: who the viewer may see in the
// conversation list. The messaging core gates quota, not eligibility, so
// nothing here is consulted on the send path.
type ConnectionService struct {
	connRepo  repository.ConnectionRepository
	userRepo  repository.UserRepository
	convCache *cache.ConversationCache
}

func NewConnectionService(connRepo repository.ConnectionRepository, userRepo repository.UserRepository, convCache *cache.ConversationCache) *ConnectionService {
	return &ConnectionService{
		connRepo:  connRepo,
		userRepo:  userRepo,
		convCache: convCache,
	}
}

// Connect creates an accepted connection between two users, canonical order.
func (s *ConnectionService) Connect(ctx context.Context, userID uuid.UUID, targetUsername string) (*domain.Connection, error) {
	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if target == nil {
		return nil, ErrConnUserNotFound
	}
	if userID == target.ID {
		return nil, ErrCannotConnectSelf
	}

	already, err := s.connRepo.AreConnected(ctx, userID, target.ID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, ErrAlreadyConnected
	}

	u1, u2 := userID, target.ID
	if u1.String() > u2.String() {
		u1, u2 = u2, u1
	}

	conn := &domain.Connection{
		ID:        uuid.New(),
		User1ID:   u1,
		User2ID:   u2,
		CreatedAt: time.Now(),
		// Joined info for the caller
		OtherUserID:      target.ID,
		OtherUsername:    target.Username,
		OtherDisplayName: target.DisplayName,
	}

	if err := s.connRepo.Create(ctx, conn); err != nil {
		return nil, fmt.Errorf("creating connection: %w", err)
	}

	s.convCache.Invalidate(ctx, userID, target.ID)

	return conn, nil
}

// List returns all of the user's connections.
func (s *ConnectionService) List(ctx context.Context, userID uuid.UUID) ([]domain.Connection, error) {
	conns, err := s.connRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if conns == nil {
		conns = []domain.Connection{}
	}
	return conns, nil
}

// Remove deletes a connection.
func (s *ConnectionService) Remove(ctx context.Context, userID, otherUserID uuid.UUID) error {
	u1, u2 := userID, otherUserID
	if u1.String() > u2.String() {
		u1, u2 = u2, u1
	}
	if err := s.connRepo.Delete(ctx, u1, u2); err != nil {
		return err
	}
	s.convCache.Invalidate(ctx, userID, otherUserID)
	return nil
}
