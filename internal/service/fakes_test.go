package service

import (
	"context"
	"sync"

	"github.com/davorm/tether/internal/domain"
	"github.com/google/uuid"
)

// In-memory repositories so the services can be exercised without a
// database. Mutex-guarded because the quota tests hammer them from
// multiple goroutines.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := *user
	r.users[user.ID] = &u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []domain.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.messages {
		if r.messages[i].ID == id {
			cp := r.messages[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMessageRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, m := range r.messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) ListBetween(ctx context.Context, userA, userB uuid.UUID) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, m := range r.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkRead(ctx context.Context, peerID, viewerID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var flipped int64
	for i := range r.messages {
		m := &r.messages[i]
		if m.SenderID == peerID && m.ReceiverID == viewerID && !m.IsRead {
			m.IsRead = true
			flipped++
		}
	}
	return flipped, nil
}

func (r *fakeMessageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*domain.MessageRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[uuid.UUID]*domain.MessageRequest)}
}

func (r *fakeRequestRepo) Create(ctx context.Context, req *domain.MessageRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *req
	r.requests[req.ID] = &cp
	return nil
}

func (r *fakeRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.MessageRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	cp := *req
	return &cp, nil
}

func (r *fakeRequestRepo) GetByPair(ctx context.Context, userA, userB uuid.UUID) (*domain.MessageRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, req := range r.requests {
		if req.Links(userA, userB) {
			cp := *req
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRequestRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.MessageRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MessageRequest
	for _, req := range r.requests {
		if req.SenderID == userID || req.ReceiverID == userID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) ClaimSendSlot(ctx context.Context, id uuid.UUID, limit int) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status != domain.RequestStatusPending || req.MessagesSent >= limit {
		return 0, false, nil
	}
	req.MessagesSent++
	return req.MessagesSent, true, nil
}

func (r *fakeRequestRepo) Accept(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req, ok := r.requests[id]; ok && req.Status == domain.RequestStatusPending {
		req.Status = domain.RequestStatusAccepted
	}
	return nil
}

type fakeConnectionRepo struct {
	mu    sync.Mutex
	conns []domain.Connection
}

func newFakeConnectionRepo() *fakeConnectionRepo {
	return &fakeConnectionRepo{}
}

func (r *fakeConnectionRepo) Create(ctx context.Context, conn *domain.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns = append(r.conns, *conn)
	return nil
}

func (r *fakeConnectionRepo) GetByUsers(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.conns {
		if c.User1ID == user1ID && c.User2ID == user2ID {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeConnectionRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Connection
	for _, c := range r.conns {
		if c.User1ID == userID || c.User2ID == userID {
			cp := c
			if c.User1ID == userID {
				cp.OtherUserID = c.User2ID
			} else {
				cp.OtherUserID = c.User1ID
			}
			out = append(out, cp)
		}
	}
	return out, nil
}

func (r *fakeConnectionRepo) ListPeerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	conns, _ := r.ListForUser(ctx, userID)
	ids := make([]uuid.UUID, 0, len(conns))
	for _, c := range conns {
		ids = append(ids, c.OtherUserID)
	}
	return ids, nil
}

func (r *fakeConnectionRepo) Delete(ctx context.Context, user1ID, user2ID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.conns {
		if c.User1ID == user1ID && c.User2ID == user2ID {
			r.conns = append(r.conns[:i], r.conns[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeConnectionRepo) AreConnected(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.conns {
		if (c.User1ID == userA && c.User2ID == userB) || (c.User1ID == userB && c.User2ID == userA) {
			return true, nil
		}
	}
	return false, nil
}

// fakeNotifier records which notifications fired.
type fakeNotifier struct {
	mu        sync.Mutex
	newMsgs   int
	reads     int
	accepts   int
	snapshots int
}

func (n *fakeNotifier) NotifyNewMessage(msg *domain.Message) {
	n.mu.Lock()
	n.newMsgs++
	n.mu.Unlock()
}

func (n *fakeNotifier) NotifyConversationRead(viewerID, peerID uuid.UUID) {
	n.mu.Lock()
	n.reads++
	n.mu.Unlock()
}

func (n *fakeNotifier) NotifyRequestAccepted(req *domain.MessageRequest) {
	n.mu.Lock()
	n.accepts++
	n.mu.Unlock()
}

func (n *fakeNotifier) NotifyConversationSnapshot(userID uuid.UUID, convs []domain.Conversation) {
	n.mu.Lock()
	n.snapshots++
	n.mu.Unlock()
}
