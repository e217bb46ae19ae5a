package ws

import (
	"log"

	"github.com/davorm/tether/internal/domain"
	"github.com/google/uuid"
)

// HubNotifier implements service.Notifier using the WebSocket Hub. Events
// go to both parties of a conversation where both care.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyNewMessage(msg *domain.Message) {
	evt, err := NewEvent(EventTypeMessageNew, MessagePayload{Message: *msg})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.SendToUser(msg.ReceiverID, evt)
	n.hub.SendToUser(msg.SenderID, evt)
}

func (n *HubNotifier) NotifyConversationRead(viewerID, peerID uuid.UUID) {
	evt, err := NewEvent(EventTypeConversationRead, ConversationReadPayload{
		ViewerID: viewerID,
		PeerID:   peerID,
	})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	// The peer gets the read receipt; the viewer's other devices get the
	// unread-count reset.
	n.hub.SendToUser(peerID, evt)
	n.hub.SendToUser(viewerID, evt)
}

func (n *HubNotifier) NotifyRequestAccepted(req *domain.MessageRequest) {
	evt, err := NewEvent(EventTypeRequestAccepted, RequestAcceptedPayload{MessageRequest: *req})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.SendToUser(req.SenderID, evt)
	n.hub.SendToUser(req.ReceiverID, evt)
}

func (n *HubNotifier) NotifyConversationSnapshot(userID uuid.UUID, convs []domain.Conversation) {
	evt, err := NewEvent(EventTypeConversationSnapshot, ConversationSnapshotPayload{Conversations: convs})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.SendToUser(userID, evt)
}
