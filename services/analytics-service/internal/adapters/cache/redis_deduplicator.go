package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisDeduplicator struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeduplicator(client *redis.Client, ttl time.Duration) *RedisDeduplicator {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisDeduplicator{client: client, ttl: ttl}
}

func (d *RedisDeduplicator) MarkSeen(ctx context.Context, eventID string) (bool, error) {
	return d.client.SetNX(ctx, seenKey(eventID), "1", d.ttl).Result()
}

func seenKey(eventID string) string {
	return "analytics:event:" + eventID
}
