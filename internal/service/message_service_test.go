package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/davorm/tether/internal/domain"
	"github.com/google/uuid"
)

func newTestMessageService() (*MessageService, *RequestService, *fakeMessageRepo, *fakeUserRepo) {
	msgRepo := newFakeMessageRepo()
	userRepo := newFakeUserRepo()
	reqSvc := NewRequestService(newFakeRequestRepo(), nil)
	msgSvc := NewMessageService(msgRepo, userRepo, reqSvc, nil)
	return msgSvc, reqSvc, msgRepo, userRepo
}

func addUser(t *testing.T, repo *fakeUserRepo, username string) uuid.UUID {
	t.Helper()
	user := &domain.User{
		ID:          uuid.New(),
		Email:       username + "@example.com",
		Username:    username,
		DisplayName: username,
		CreatedAt:   time.Now(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user.ID
}

func TestSendPersistsMessage(t *testing.T) {
	svc, _, msgRepo, userRepo := newTestMessageService()
	a := addUser(t, userRepo, "alice")
	b := addUser(t, userRepo, "bob")

	result, err := svc.Send(context.Background(), a, b, "hey there")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if result.Message == nil || result.Message.Content != "hey there" {
		t.Error("Expected the persisted message back")
	}
	if result.MessagesRemaining != 2 {
		t.Errorf("Expected 2 remaining, got %d", result.MessagesRemaining)
	}
	if msgRepo.count() != 1 {
		t.Errorf("Expected 1 stored message, got %d", msgRepo.count())
	}
}

func TestSendEmptyContent(t *testing.T) {
	svc, _, msgRepo, userRepo := newTestMessageService()
	a := addUser(t, userRepo, "alice")
	b := addUser(t, userRepo, "bob")

	if _, err := svc.Send(context.Background(), a, b, "   "); !errors.Is(err, ErrEmptyContent) {
		t.Errorf("Expected ErrEmptyContent, got %v", err)
	}
	if msgRepo.count() != 0 {
		t.Error("Validation failure must not persist a message")
	}
}

func TestSendUnknownReceiver(t *testing.T) {
	svc, _, _, userRepo := newTestMessageService()
	a := addUser(t, userRepo, "alice")

	if _, err := svc.Send(context.Background(), a, uuid.New(), "hello"); !errors.Is(err, ErrReceiverNotFound) {
		t.Errorf("Expected ErrReceiverNotFound, got %v", err)
	}
}

func TestFourthSendBlockedWithoutPersisting(t *testing.T) {
	svc, _, msgRepo, userRepo := newTestMessageService()
	a := addUser(t, userRepo, "alice")
	b := addUser(t, userRepo, "bob")

	for i := 0; i < 3; i++ {
		if _, err := svc.Send(context.Background(), a, b, "ping"); err != nil {
			t.Fatalf("send %d failed: %v", i+1, err)
		}
	}

	if _, err := svc.Send(context.Background(), a, b, "one too many"); !errors.Is(err, ErrQuotaExhausted) {
		t.Errorf("Expected ErrQuotaExhausted, got %v", err)
	}
	if msgRepo.count() != 3 {
		t.Errorf("Blocked send must not persist, expected 3 messages, got %d", msgRepo.count())
	}
}

// Full lifecycle: A exhausts the cap, B replies without affecting it, B
// accepts, A is unlimited.
func TestRequestLifecycle(t *testing.T) {
	svc, reqSvc, msgRepo, userRepo := newTestMessageService()
	a := addUser(t, userRepo, "alice")
	b := addUser(t, userRepo, "bob")

	for i := 0; i < 3; i++ {
		if _, err := svc.Send(context.Background(), a, b, "hello"); err != nil {
			t.Fatalf("send %d failed: %v", i+1, err)
		}
	}
	if _, err := svc.Send(context.Background(), a, b, "again"); !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("Expected quota error on 4th send, got %v", err)
	}

	// B replies while still pending. Allowed, and A's count is untouched.
	if _, err := svc.Send(context.Background(), b, a, "who is this?"); err != nil {
		t.Fatalf("receiver reply failed: %v", err)
	}
	req, _ := reqSvc.Resolve(context.Background(), a, b)
	if req.MessagesSent != 3 {
		t.Errorf("Reply changed messages_sent to %d", req.MessagesSent)
	}
	if req.Status != domain.RequestStatusPending {
		t.Errorf("Reply changed status to %q", req.Status)
	}
	if _, err := svc.Send(context.Background(), a, b, "still me"); !errors.Is(err, ErrQuotaExhausted) {
		t.Errorf("Initiator should stay capped until accept, got %v", err)
	}

	if err := reqSvc.Accept(context.Background(), b, req.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := svc.Send(context.Background(), a, b, "free at last"); err != nil {
			t.Fatalf("post-accept send %d failed: %v", i+1, err)
		}
	}
	if msgRepo.count() != 9 {
		t.Errorf("Expected 9 messages total, got %d", msgRepo.count())
	}
}

func TestMarkConversationReadIdempotent(t *testing.T) {
	svc, _, msgRepo, userRepo := newTestMessageService()
	notifier := &fakeNotifier{}
	svc.SetNotifier(notifier)
	a := addUser(t, userRepo, "alice")
	b := addUser(t, userRepo, "bob")

	if _, err := svc.Send(context.Background(), a, b, "read me"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if err := svc.MarkConversationRead(context.Background(), b, a); err != nil {
		t.Fatalf("MarkConversationRead failed: %v", err)
	}
	messages, _ := msgRepo.ListBetween(context.Background(), a, b)
	if !messages[0].IsRead {
		t.Error("Expected the message to be marked read")
	}
	if notifier.reads != 1 {
		t.Errorf("Expected 1 read notification, got %d", notifier.reads)
	}

	// Second call has nothing to flip and must notify no one.
	if err := svc.MarkConversationRead(context.Background(), b, a); err != nil {
		t.Fatalf("repeat MarkConversationRead failed: %v", err)
	}
	if notifier.reads != 1 {
		t.Errorf("Repeat mark-read fired a notification, got %d total", notifier.reads)
	}
}

func TestDisplayMapping(t *testing.T) {
	viewer := uuid.New()
	peer := uuid.New()
	msg := domain.Message{
		ID:         uuid.New(),
		SenderID:   viewer,
		ReceiverID: peer,
		Content:    "mine",
		CreatedAt:  time.Now(),
	}

	display := msg.ToDisplay(viewer)
	if display.Sender != "self" {
		t.Errorf("Expected sender 'self', got %q", display.Sender)
	}

	display = msg.ToDisplay(peer)
	if display.Sender != "other" {
		t.Errorf("Expected sender 'other', got %q", display.Sender)
	}
	if display.Text != "mine" {
		t.Errorf("Expected text 'mine', got %q", display.Text)
	}
}
