package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/huggnote/api/pkg/response"
)

// RateLimiter counts requests per user in fixed Redis windows
type RateLimiter struct {
	redis *redis.Client
}

// NewRateLimiter creates a limiter. A nil client disables limiting.
func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// Limit creates a rate limiting middleware
func (rl *RateLimiter) Limit(keyPrefix string, maxRequests int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl.redis == nil || maxRequests <= 0 {
			return c.Next()
		}

		userID := GetUserID(c)
		if userID == "" {
			return c.Next()
		}

		key := fmt.Sprintf("ratelimit:%s:%s", keyPrefix, userID)
		ctx := context.Background()

		count, err := rl.redis.Incr(ctx, key).Result()
		if err != nil {
			// If Redis fails, allow the request
			return c.Next()
		}

		if count == 1 {
			rl.redis.Expire(ctx, key, window)
		}

		if count > int64(maxRequests) {
			ttl, _ := rl.redis.TTL(ctx, key).Result()
			c.Set("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))
			return response.RateLimited(c)
		}

		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", maxRequests))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", maxRequests-int(count)))

		return c.Next()
	}
}

// PromptLimit limits prompt drafting per minute
func (rl *RateLimiter) PromptLimit(maxPerMin int) fiber.Handler {
	return rl.Limit("prompt", maxPerMin, time.Minute)
}

// SongLimit limits generation submissions per hour
func (rl *RateLimiter) SongLimit(maxPerHour int) fiber.Handler {
	return rl.Limit("songs", maxPerHour, time.Hour)
}
