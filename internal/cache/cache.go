package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/davorm/tether/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Connect opens a Redis client and verifies the connection.
func Connect(redisURL string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: redisURL})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("unable to ping redis: %w", err)
	}
	return rdb, nil
}

// ConversationCache keeps each user's built conversation list for a short
// TTL so poll ticks don't hammer the store. A nil cache is a valid no-op.
type ConversationCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewConversationCache(rdb *redis.Client, ttl time.Duration) *ConversationCache {
	return &ConversationCache{rdb: rdb, ttl: ttl}
}

func (c *ConversationCache) Get(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, convKey(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var convs []domain.Conversation
	if err := json.Unmarshal(data, &convs); err != nil {
		log.Printf("cache: corrupt entry for %s: %v", userID, err)
		return nil, false
	}
	return convs, true
}

func (c *ConversationCache) Set(ctx context.Context, userID uuid.UUID, convs []domain.Conversation) {
	if c == nil || c.rdb == nil {
		return
	}
	data, err := json.Marshal(convs)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, convKey(userID), data, c.ttl).Err(); err != nil {
		log.Printf("cache: set failed for %s: %v", userID, err)
	}
}

// Invalidate drops the cached lists for the given users. Called after any
// write that changes what their conversation lists would show.
func (c *ConversationCache) Invalidate(ctx context.Context, userIDs ...uuid.UUID) {
	if c == nil || c.rdb == nil {
		return
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = convKey(id)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache: invalidate failed: %v", err)
	}
}

func convKey(userID uuid.UUID) string {
	return "conversations:" + userID.String()
}
