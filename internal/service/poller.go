package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// Presence reports which users currently hold a live connection. Implemented
// by the WebSocket hub.
type Presence interface {
	ActiveUserIDs() []uuid.UUID
}

// Poller is the fallback delivery path: on a fixed interval it rebuilds the
// conversation list of every connected user and pushes a snapshot, so a
// client whose push events were missed converges anyway. Ticks are fired
// regardless of whether the previous one finished; a slow fetch just gets
// superseded.
type Poller struct {
	convs    *ConversationService
	presence Presence
	notifier Notifier
	interval time.Duration
}

func NewPoller(convs *ConversationService, presence Presence, notifier Notifier, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		convs:    convs,
		presence: presence,
		notifier: notifier,
		interval: interval,
	}
}

// Run blocks until ctx is done. Call it in a goroutine.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	log.Printf("poller: refreshing every %s", p.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("poller: stopped")
			return
		case <-ticker.C:
			go p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	for _, userID := range p.presence.ActiveUserIDs() {
		convs, err := p.convs.ListConversations(ctx, userID)
		if err != nil {
			// Read-side failures are tolerated; the client keeps its
			// stale view until the next tick.
			log.Printf("poller: refresh for %s failed: %v", userID, err)
			continue
		}
		p.notifier.NotifyConversationSnapshot(userID, convs)
	}
}
