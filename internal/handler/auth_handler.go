package handler

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/huggnote/api/internal/auth"
)

// AuthHandler handles ForwardAuth verification for the API gateway
type AuthHandler struct {
	verifier  auth.TokenVerifier
	jwtSecret string
}

// NewAuthHandler creates a new auth handler for ForwardAuth verification
func NewAuthHandler(verifier auth.TokenVerifier, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		verifier:  verifier,
		jwtSecret: jwtSecret,
	}
}

// Verify handles GET /auth/verify. The gateway forwards the original
// request headers; 200 carries the X-User-* identity, 401 rejects.
func (h *AuthHandler) Verify(c *fiber.Ctx) error {
	tokenString := ""
	if authHeader := c.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		tokenString = parts[1]
	} else {
		// websocket handshakes carry the token in the forwarded URI
		if u, err := url.Parse(c.Get("X-Forwarded-Uri")); err == nil {
			tokenString = u.Query().Get("token")
		}
	}
	if tokenString == "" {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	if h.verifier != nil {
		identity, err := h.verifier.Verify(tokenString)
		if err == nil {
			return forwardIdentity(c, identity)
		}
		if h.jwtSecret == "" {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
	}

	if h.jwtSecret != "" {
		identity, err := auth.LegacyIdentity(tokenString, h.jwtSecret)
		if err == nil {
			return forwardIdentity(c, identity)
		}
	}

	return c.SendStatus(fiber.StatusUnauthorized)
}

func forwardIdentity(c *fiber.Ctx, identity *auth.Identity) error {
	c.Set(auth.HeaderUserID, identity.Owner)
	c.Set(auth.HeaderUserEmail, identity.Email)
	if identity.Name != "" {
		c.Set(auth.HeaderUserName, identity.Name)
	}
	return c.SendStatus(fiber.StatusOK)
}
