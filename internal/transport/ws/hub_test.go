package ws

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHubRegisterAndSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub, nil, uuid.New())
	hub.register <- client

	// Give the hub time to process
	time.Sleep(50 * time.Millisecond)

	if len(hub.ActiveUserIDs()) != 1 {
		t.Fatalf("Expected 1 active user, got %d", len(hub.ActiveUserIDs()))
	}

	evt, err := NewEvent(EventTypeConversationRead, ConversationReadPayload{
		ViewerID: client.userID,
		PeerID:   uuid.New(),
	})
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}
	hub.SendToUser(client.userID, evt)

	select {
	case data := <-client.send:
		if !strings.Contains(string(data), EventTypeConversationRead) {
			t.Errorf("Expected a %s event, got %s", EventTypeConversationRead, data)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected an event on the client send channel")
	}

	// Sending to a user that is not connected must not panic or block.
	hub.SendToUser(uuid.New(), evt)

	hub.unregister <- client
	time.Sleep(50 * time.Millisecond)
	if len(hub.ActiveUserIDs()) != 0 {
		t.Errorf("Expected 0 active users after unregister, got %d", len(hub.ActiveUserIDs()))
	}
}

func TestHubReconnectKeepsNewClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	userID := uuid.New()
	old := NewClient(hub, nil, userID)
	hub.register <- old
	time.Sleep(50 * time.Millisecond)

	// Reconnect: a fresh client for the same user replaces the map entry,
	// then the old connection's read pump unregisters the old client.
	replacement := NewClient(hub, nil, userID)
	hub.register <- replacement
	hub.unregister <- old
	time.Sleep(50 * time.Millisecond)

	if len(hub.ActiveUserIDs()) != 1 {
		t.Fatalf("Expected the reconnected user to stay active, got %d users", len(hub.ActiveUserIDs()))
	}

	select {
	case _, ok := <-old.send:
		if ok {
			t.Error("Expected the old client's send channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("Expected the old client's send channel to be closed")
	}

	evt, err := NewEvent(EventTypeConversationRead, ConversationReadPayload{
		ViewerID: userID,
		PeerID:   uuid.New(),
	})
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}
	hub.SendToUser(userID, evt)

	select {
	case data := <-replacement.send:
		if !strings.Contains(string(data), EventTypeConversationRead) {
			t.Errorf("Expected a %s event, got %s", EventTypeConversationRead, data)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected the reconnected client to receive the event")
	}

	hub.unregister <- replacement
	time.Sleep(50 * time.Millisecond)
	if len(hub.ActiveUserIDs()) != 0 {
		t.Errorf("Expected 0 active users after final unregister, got %d", len(hub.ActiveUserIDs()))
	}
}
