package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/huggnote/api/internal/auth"
	"github.com/huggnote/api/pkg/response"
)

// GatewayAuthMiddleware trusts the identity the gateway resolved through
// /auth/verify. The X-User-Id header is used as the store owner, so it must
// pass the same owner rules as a verified token.
func GatewayAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(auth.HeaderUserID)
		if raw == "" {
			return response.Unauthorized(c, "Missing user identity headers")
		}
		owner, err := auth.OwnerID(raw)
		if err != nil {
			return response.Unauthorized(c, "Invalid user identity header")
		}

		setIdentity(c, &auth.Identity{
			Owner: owner,
			Email: c.Get(auth.HeaderUserEmail),
			Name:  c.Get(auth.HeaderUserName),
		})
		return c.Next()
	}
}
