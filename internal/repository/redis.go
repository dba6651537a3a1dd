// internal/repository/redis.go
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vacancy-workers/internal/applications"
)

// RedisIDGenerator issues application ids from an INCR counter so several
// API and worker processes never hand out the same id.
type RedisIDGenerator struct {
	client redis.Cmdable
	key    string
}

func NewRedisIDGenerator(client redis.Cmdable, prefix string) *RedisIDGenerator {
	return &RedisIDGenerator{client: client, key: prefix + ":application:seq"}
}

func (g *RedisIDGenerator) NextID(ctx context.Context) (applications.ApplicationID, error) {
	seq, err := g.client.Incr(ctx, g.key).Result()
	if err != nil {
		return "", fmt.Errorf("incr %s: %w", g.key, err)
	}
	return applications.FormatID(uint64(seq)), nil
}

// RedisStatusCache keeps the latest status view per application for ttl.
type RedisStatusCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisStatusCache(client redis.Cmdable, prefix string, ttl time.Duration) *RedisStatusCache {
	return &RedisStatusCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisStatusCache) key(id applications.ApplicationID) string {
	return c.prefix + ":application:status:" + string(id)
}

// GetStatus returns (nil, nil) on a cache miss.
func (c *RedisStatusCache) GetStatus(ctx context.Context, id applications.ApplicationID) (*applications.StatusView, error) {
	val, err := c.client.Get(ctx, c.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("status cache get: %w", err)
	}

	var view applications.StatusView
	if err := json.Unmarshal([]byte(val), &view); err != nil {
		return nil, fmt.Errorf("status cache decode: %w", err)
	}
	return &view, nil
}

func (c *RedisStatusCache) PutStatus(ctx context.Context, view applications.StatusView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("status cache encode: %w", err)
	}
	if err := c.client.Set(ctx, c.key(view.ApplicationID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("status cache set: %w", err)
	}
	return nil
}
