package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
)

const keyPrefix = "storefront:session:"

// RedisSnapshotCache stores session snapshots as JSON strings.
type RedisSnapshotCache struct {
	rdb redis.Cmdable
}

func NewRedisSnapshotCache(rdb redis.Cmdable) *RedisSnapshotCache {
	return &RedisSnapshotCache{rdb: rdb}
}

func (c *RedisSnapshotCache) Load(ctx context.Context, sessionID string) (session.Snapshot, error) {
	raw, err := c.rdb.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.Snapshot{}, session.ErrCacheMiss
	}
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("get snapshot: %w", err)
	}

	var snap session.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return session.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func (c *RedisSnapshotCache) Save(ctx context.Context, sessionID string, snap session.Snapshot, ttl time.Duration) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.rdb.Set(ctx, key(sessionID), body, ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

func (c *RedisSnapshotCache) Delete(ctx context.Context, sessionID string) error {
	if err := c.rdb.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("del snapshot: %w", err)
	}
	return nil
}

func key(sessionID string) string {
	return keyPrefix + sessionID
}

var _ session.Cache = (*RedisSnapshotCache)(nil)
