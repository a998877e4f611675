package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iamasit07/dm-chat/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	historyKeyPrefix = "history:"
	versionKeyPrefix = "history-version:"

	// must outlive every history entry written under an older version
	versionTTL = 24 * time.Hour
)

// HistoryCache caches whole conversations as JSON. Each room has a version counter that
// Invalidate bumps; entries live under the version they were read at and expire after ttl.
type HistoryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewHistoryCache(client *redis.Client, ttl time.Duration) *HistoryCache {
	return &HistoryCache{client: client, ttl: ttl}
}

func historyKey(room domain.RoomKey, version int64) string {
	return fmt.Sprintf("%s%d:%s", historyKeyPrefix, version, room.String())
}

func versionKey(room domain.RoomKey) string {
	return versionKeyPrefix + room.String()
}

func (c *HistoryCache) version(ctx context.Context, room domain.RoomKey) (int64, error) {
	ver, err := c.client.Get(ctx, versionKey(room)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return ver, err
}

// Get returns the cached list and the room's current version. A miss is (nil, version, false, nil).
func (c *HistoryCache) Get(ctx context.Context, room domain.RoomKey) ([]domain.ChatMessage, int64, bool, error) {
	ver, err := c.version(ctx, room)
	if err != nil {
		return nil, 0, false, err
	}

	data, err := c.client.Get(ctx, historyKey(room, ver)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ver, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}

	var messages []domain.ChatMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, 0, false, err
	}
	if messages == nil {
		messages = make([]domain.ChatMessage, 0)
	}
	return messages, ver, true, nil
}

// Set stores messages under version. Writing with a version older than the current one
// lands on a key no reader looks at and simply expires.
func (c *HistoryCache) Set(ctx context.Context, room domain.RoomKey, version int64, messages []domain.ChatMessage) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, historyKey(room, version), data, c.ttl).Err()
}

// Invalidate bumps the room version so every entry cached so far is unreachable.
func (c *HistoryCache) Invalidate(ctx context.Context, room domain.RoomKey) error {
	key := versionKey(room)
	ttl := versionTTL
	if c.ttl*2 > ttl {
		ttl = c.ttl * 2
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	return err
}
