package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/davorm/tether/internal/cache"
	"github.com/davorm/tether/internal/domain"
	"github.com/davorm/tether/internal/repository"
	"github.com/google/uuid"
)

var (
	ErrEmptyContent     = errors.New("message content is required")
	ErrReceiverNotFound = errors.New("receiver not found")
)

// Notifier broadcasts real-time events to connected clients.
type Notifier interface {
	NotifyNewMessage(msg *domain.Message)
	NotifyConversationRead(viewerID, peerID uuid.UUID)
	NotifyRequestAccepted(req *domain.MessageRequest)
	NotifyConversationSnapshot(userID uuid.UUID, convs []domain.Conversation)
}

// SendResult carries the persisted message together with the quota state the
// frontend needs to disable the input.
type SendResult struct {
	Message           *domain.Message `json:"message"`
	MessagesRemaining int             `json:"messages_remaining"`
}

type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	requests    *RequestService
	convCache   *cache.ConversationCache
	notifier    Notifier

	// pairLocks serializes the quota check and the append per unordered
	// pair, so two in-flight sends cannot both pass the gate. The
	// conditional update in the request repo is the cross-process backstop.
	pairLocks sync.Map
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	requests *RequestService,
	convCache *cache.ConversationCache,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		requests:    requests,
		convCache:   convCache,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Send runs the full send path: validate, pass the request engine's quota
// gate, persist, invalidate caches, notify. A blocked send persists nothing
// and fails with ErrQuotaExhausted.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID uuid.UUID, content string) (*SendResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrReceiverNotFound
	}

	unlock := s.lockPair(senderID, receiverID)
	defer unlock()

	ticket, err := s.requests.PrepareSend(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if ticket.Blocked {
		return nil, ErrQuotaExhausted
	}

	msg := &domain.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	full, err := s.messageRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}

	s.convCache.Invalidate(ctx, senderID, receiverID)

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(full)
	}

	return &SendResult{Message: full, MessagesRemaining: ticket.MessagesRemaining}, nil
}

// ListForUser returns all messages the user sent or received, oldest first.
func (s *MessageService) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Message, error) {
	messages, err := s.messageRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// ListWith returns the messages exchanged with one peer, oldest first.
func (s *MessageService) ListWith(ctx context.Context, viewerID, peerID uuid.UUID) ([]domain.Message, error) {
	messages, err := s.messageRepo.ListBetween(ctx, viewerID, peerID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// MarkConversationRead flips the read flag on everything the peer sent the
// viewer. Safe to call on every poll tick while a conversation stays open;
// when nothing was unread it touches nothing and notifies no one.
func (s *MessageService) MarkConversationRead(ctx context.Context, viewerID, peerID uuid.UUID) error {
	flipped, err := s.messageRepo.MarkRead(ctx, peerID, viewerID)
	if err != nil {
		return fmt.Errorf("marking messages read: %w", err)
	}
	if flipped == 0 {
		return nil
	}

	s.convCache.Invalidate(ctx, viewerID)

	if s.notifier != nil {
		s.notifier.NotifyConversationRead(viewerID, peerID)
	}
	return nil
}

func (s *MessageService) lockPair(a, b uuid.UUID) func() {
	key := pairKey(a, b)
	v, _ := s.pairLocks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func pairKey(a, b uuid.UUID) string {
	if a.String() > b.String() {
		a, b = b, a
	}
	return a.String() + ":" + b.String()
}
