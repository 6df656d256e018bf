package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores each record as a plain string key.
type RedisBackend struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisBackend creates a backend on redisClient. A zero ttl keeps keys
// forever.
func NewRedisBackend(redisClient *redis.Client, ttl time.Duration) *RedisBackend {
	return &RedisBackend{redis: redisClient, ttl: ttl}
}

func (b *RedisBackend) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := b.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func (b *RedisBackend) Save(ctx context.Context, key string, data []byte) error {
	return b.redis.Set(ctx, key, data, b.ttl).Err()
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	return b.redis.Del(ctx, key).Err()
}

func (b *RedisBackend) Name() string { return "redis" }
