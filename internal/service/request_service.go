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
	ErrCannotMessageSelf  = errors.New("cannot send a message to yourself")
	ErrQuotaExhausted     = errors.New("message limit reached, wait for the other user to respond")
	ErrRequestNotFound    = errors.New("message request not found")
	ErrNotRequestReceiver = errors.New("only the request receiver can accept")
)

// SendTicket is the engine's verdict on one attempted send. When Blocked is
// true no message may be persisted and the caller must surface the quota
// error instead of a transport error.
type SendTicket struct {
	RequestID         uuid.UUID `json:"request_id"`
	MessagesRemaining int       `json:"messages_remaining"`
	Blocked           bool      `json:"blocked"`
}

// RequestService owns the message-request state machine: one request per
// unordered pair, created on first contact, counting initiator sends while
// pending and capped at domain.RequestMessageCap until the receiver accepts.
//
// A reply from the receiver does not accept the request implicitly; the
// initiator stays capped until an explicit Accept.
type RequestService struct {
	requestRepo repository.MessageRequestRepository
	convCache   *cache.ConversationCache
	notifier    Notifier
}

func NewRequestService(requestRepo repository.MessageRequestRepository, convCache *cache.ConversationCache) *RequestService {
	return &RequestService{
		requestRepo: requestRepo,
		convCache:   convCache,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *RequestService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Resolve returns the single request linking the pair, either direction,
// or nil when the two users have no request between them.
func (s *RequestService) Resolve(ctx context.Context, a, b uuid.UUID) (*domain.MessageRequest, error) {
	return s.requestRepo.GetByPair(ctx, a, b)
}

// ListForUser returns every request the user is a side of.
func (s *RequestService) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.MessageRequest, error) {
	reqs, err := s.requestRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []domain.MessageRequest{}
	}
	return reqs, nil
}

// PrepareSend runs the quota check for one send and records its effect:
//   - first contact creates a pending request with messages_sent = 1
//   - a pending initiator claims one slot atomically, or gets Blocked
//     once the cap is reached
//   - an accepted request, or the receiver replying, passes untouched
func (s *RequestService) PrepareSend(ctx context.Context, senderID, receiverID uuid.UUID) (*SendTicket, error) {
	if senderID == receiverID {
		return nil, ErrCannotMessageSelf
	}

	req, err := s.requestRepo.GetByPair(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	if req == nil {
		req = &domain.MessageRequest{
			ID:           uuid.New(),
			SenderID:     senderID,
			ReceiverID:   receiverID,
			Status:       domain.RequestStatusPending,
			MessagesSent: 1,
			CreatedAt:    time.Now(),
		}
		if err := s.requestRepo.Create(ctx, req); err != nil {
			return nil, fmt.Errorf("creating message request: %w", err)
		}
		return &SendTicket{
			RequestID:         req.ID,
			MessagesRemaining: domain.RequestMessageCap - 1,
		}, nil
	}

	// Quota only binds the initiator of a still-pending request. The
	// receiver replying, or anyone after acceptance, is uncapped (reported
	// as the full cap since it never applied to that role).
	if !req.Pending() || req.SenderID != senderID {
		return &SendTicket{
			RequestID:         req.ID,
			MessagesRemaining: domain.RequestMessageCap,
		}, nil
	}

	sent, claimed, err := s.requestRepo.ClaimSendSlot(ctx, req.ID, domain.RequestMessageCap)
	if err != nil {
		return nil, fmt.Errorf("claiming send slot: %w", err)
	}
	if !claimed {
		return &SendTicket{RequestID: req.ID, Blocked: true}, nil
	}

	return &SendTicket{
		RequestID:         req.ID,
		MessagesRemaining: domain.RequestMessageCap - sent,
	}, nil
}

// Accept transitions the request to accepted. Only the receiver may accept;
// accepting an already accepted request is a no-op, not an error.
func (s *RequestService) Accept(ctx context.Context, userID, requestID uuid.UUID) error {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrRequestNotFound
	}
	if req.ReceiverID != userID {
		return ErrNotRequestReceiver
	}
	if !req.Pending() {
		return nil
	}

	if err := s.requestRepo.Accept(ctx, requestID); err != nil {
		return fmt.Errorf("accepting message request: %w", err)
	}

	s.convCache.Invalidate(ctx, req.SenderID, req.ReceiverID)

	if s.notifier != nil {
		req.Status = domain.RequestStatusAccepted
		s.notifier.NotifyRequestAccepted(req)
	}
	return nil
}
