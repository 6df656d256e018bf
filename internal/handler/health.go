package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports which collaborators are configured
type HealthHandler struct {
	groqConfigured     bool
	musicgptConfigured bool
	r2Configured       bool
	storeBackend       string
	redis              *redis.Client
}

func NewHealthHandler(groqConfigured, musicgptConfigured, r2Configured bool, storeBackend string, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		groqConfigured:     groqConfigured,
		musicgptConfigured: musicgptConfigured,
		r2Configured:       r2Configured,
		storeBackend:       storeBackend,
		redis:              redisClient,
	}
}

// Health handles GET /health
// @Summary      Health check
// @Tags         Health
// @Produce      json
// @Success      200 {object} map[string]interface{}
// @Router       /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	redisUp := false
	if h.redis != nil {
		ctx, cancel := context.WithTimeout(c.Context(), time.Second)
		redisUp = h.redis.Ping(ctx).Err() == nil
		cancel()
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"services": fiber.Map{
			"groq":     h.groqConfigured,
			"musicgpt": h.musicgptConfigured,
			"redis":    redisUp,
			"r2":       h.r2Configured,
			"store":    h.storeBackend,
		},
	})
}
