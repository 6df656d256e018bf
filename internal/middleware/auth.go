package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/huggnote/api/internal/auth"
	"github.com/huggnote/api/pkg/response"
)

// UserClaims is an alias for auth.LegacyClaims
type UserClaims = auth.LegacyClaims

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	verifier  auth.TokenVerifier
	jwtSecret string // fallback for legacy tokens
}

// NewAuthMiddleware creates a new auth middleware with OIDC JWKS verification
func NewAuthMiddleware(verifier auth.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// NewAuthMiddlewareWithFallback creates auth middleware with both JWKS and legacy HMAC support
func NewAuthMiddlewareWithFallback(verifier auth.TokenVerifier, jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		verifier:  verifier,
		jwtSecret: jwtSecret,
	}
}

// NewLegacyAuthMiddleware creates auth middleware using only HMAC signing (for testing/dev)
func NewLegacyAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
	}
}

// Authenticate validates the bearer token. Browsers cannot set headers on a
// websocket handshake, so a "token" query parameter is accepted as well.
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return response.Unauthorized(c, "Missing authorization header")
		}
		if tokenString == "" {
			return response.Unauthorized(c, "Invalid authorization header format")
		}

		// Try OIDC JWKS verification first
		if m.verifier != nil {
			identity, err := m.verifier.Verify(tokenString)
			if err == nil {
				setIdentity(c, identity)
				return c.Next()
			}
			if m.jwtSecret == "" {
				return response.Unauthorized(c, "Invalid or expired token")
			}
		}

		// Fallback to legacy HMAC verification
		if m.jwtSecret != "" {
			identity, err := auth.LegacyIdentity(tokenString, m.jwtSecret)
			if err != nil {
				return response.Unauthorized(c, "Invalid or expired token")
			}
			setIdentity(c, identity)
			return c.Next()
		}

		return response.Unauthorized(c, "Authentication not configured")
	}
}

func setIdentity(c *fiber.Ctx, identity *auth.Identity) {
	c.Locals("userId", identity.Owner)
	c.Locals("email", identity.Email)
	c.Locals("name", identity.Name)
}

// bearerToken returns the token and whether any credential was presented.
func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		if token := c.Query("token"); token != "" {
			return token, true
		}
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", true
	}
	return parts[1], true
}

// GetUserID returns the store owner resolved by the auth middleware.
func GetUserID(c *fiber.Ctx) string {
	if userID, ok := c.Locals("userId").(string); ok {
		return userID
	}
	return ""
}

// GenerateToken creates a new legacy JWT token (useful for testing)
func (m *AuthMiddleware) GenerateToken(userID, email string, ttl time.Duration) (string, error) {
	if m.jwtSecret == "" {
		return "", fiber.ErrUnauthorized
	}
	return auth.GenerateLegacyToken(userID, email, m.jwtSecret, ttl)
}
