package service

import (
	"context"
	"sort"

	"github.com/davorm/tether/internal/cache"
	"github.com/davorm/tether/internal/domain"
	"github.com/davorm/tether/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ConversationService joins the connection directory, the message set and
// the request set into the per-peer view the frontend lists.
type ConversationService struct {
	connRepo    repository.ConnectionRepository
	messageRepo repository.MessageRepository
	requestRepo repository.MessageRequestRepository
	convCache   *cache.ConversationCache
}

func NewConversationService(
	connRepo repository.ConnectionRepository,
	messageRepo repository.MessageRepository,
	requestRepo repository.MessageRequestRepository,
	convCache *cache.ConversationCache,
) *ConversationService {
	return &ConversationService{
		connRepo:    connRepo,
		messageRepo: messageRepo,
		requestRepo: requestRepo,
		convCache:   convCache,
	}
}

// ListConversations builds the viewer's conversation list, most recent
// first. Results are cached briefly; writes invalidate the cache.
func (s *ConversationService) ListConversations(ctx context.Context, viewerID uuid.UUID) ([]domain.Conversation, error) {
	if convs, ok := s.convCache.Get(ctx, viewerID); ok {
		return convs, nil
	}

	var (
		peers    []domain.Connection
		messages []domain.Message
		requests []domain.MessageRequest
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		peers, err = s.connRepo.ListForUser(gctx, viewerID)
		return err
	})
	g.Go(func() error {
		var err error
		messages, err = s.messageRepo.ListForUser(gctx, viewerID)
		return err
	})
	g.Go(func() error {
		var err error
		requests, err = s.requestRepo.ListForUser(gctx, viewerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	convs := BuildConversations(viewerID, peers, messages, requests)
	SortByRecency(convs)

	s.convCache.Set(ctx, viewerID, convs)
	return convs, nil
}

// BuildConversations derives one Conversation per peer in the viewer's
// connection set. A peer with no messages yet still gets an entry (the
// frontend renders it as "start a conversation"). A pending request keeps
// the conversation flagged even after the cap is reached, with zero
// remaining for the initiator.
func BuildConversations(viewerID uuid.UUID, peers []domain.Connection, messages []domain.Message, requests []domain.MessageRequest) []domain.Conversation {
	convs := make([]domain.Conversation, 0, len(peers))

	for _, peer := range peers {
		peerID := peer.OtherUserID
		conv := domain.Conversation{
			PeerID:            peerID,
			PeerUsername:      peer.OtherUsername,
			PeerDisplayName:   peer.OtherDisplayName,
			MessagesRemaining: domain.RequestMessageCap,
		}

		// Messages arrive oldest first, so the last match wins.
		for i := range messages {
			msg := &messages[i]
			if msg.SenderID != peerID && msg.ReceiverID != peerID {
				continue
			}
			conv.LastMessage = &msg.Content
			conv.LastMessageTime = &msg.CreatedAt
			if msg.SenderID == peerID && !msg.IsRead {
				conv.UnreadCount++
			}
		}

		for i := range requests {
			req := &requests[i]
			if !req.Links(viewerID, peerID) {
				continue
			}
			if req.Pending() {
				conv.IsMessageRequest = true
				// Remaining count only means anything to the initiator;
				// the receiver is never capped.
				if req.SenderID == viewerID {
					conv.MessagesRemaining = domain.RequestMessageCap - req.MessagesSent
					if conv.MessagesRemaining < 0 {
						conv.MessagesRemaining = 0
					}
				}
			}
			break
		}

		convs = append(convs, conv)
	}

	return convs
}

// SortByRecency orders conversations newest activity first; peers without
// any messages sort last, alphabetically.
func SortByRecency(convs []domain.Conversation) {
	sort.SliceStable(convs, func(i, j int) bool {
		a, b := convs[i], convs[j]
		switch {
		case a.LastMessageTime == nil && b.LastMessageTime == nil:
			return a.PeerDisplayName < b.PeerDisplayName
		case a.LastMessageTime == nil:
			return false
		case b.LastMessageTime == nil:
			return true
		default:
			return a.LastMessageTime.After(*b.LastMessageTime)
		}
	})
}
