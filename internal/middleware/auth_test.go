package middleware

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/huggnote/api/internal/auth"
)

const testSecret = "test-secret"

func newAuthApp(m *AuthMiddleware) *fiber.App {
	app := fiber.New()
	app.Get("/me", m.Authenticate(), func(c *fiber.Ctx) error {
		return c.SendString(GetUserID(c))
	})
	return app
}

func TestAuthenticateHeader(t *testing.T) {
	m := NewLegacyAuthMiddleware(testSecret)
	token, err := m.GenerateToken("user-1", "a@b.c", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := newAuthApp(m).Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthenticateQueryToken(t *testing.T) {
	m := NewLegacyAuthMiddleware(testSecret)
	token, _ := m.GenerateToken("user-1", "", time.Hour)

	resp, err := newAuthApp(m).Test(httptest.NewRequest("GET", "/me?token="+token, nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthenticateRejects(t *testing.T) {
	m := NewLegacyAuthMiddleware(testSecret)
	app := newAuthApp(m)

	cases := map[string]string{
		"missing":    "",
		"bad scheme": "Token abc",
		"garbage":    "Bearer abc",
	}
	for name, header := range cases {
		req := httptest.NewRequest("GET", "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != 401 {
			t.Errorf("%s: expected 401, got %d", name, resp.StatusCode)
		}
	}
}

func TestGatewayAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/me", GatewayAuthMiddleware(), func(c *fiber.Ctx) error {
		return c.SendString(GetUserID(c))
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("X-User-Id", "user-9")
	resp, _ := app.Test(req)
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/me", nil))
	if resp.StatusCode != 401 {
		t.Errorf("expected 401 without headers, got %d", resp.StatusCode)
	}
}

func TestRateLimiterWithoutRedis(t *testing.T) {
	app := fiber.New()
	app.Get("/x", NewRateLimiter(nil).PromptLimit(1), func(c *fiber.Ctx) error {
		return c.SendStatus(204)
	})
	for i := 0; i < 3; i++ {
		resp, _ := app.Test(httptest.NewRequest("GET", "/x", nil))
		if resp.StatusCode != 204 {
			t.Fatalf("request %d: expected 204, got %d", i, resp.StatusCode)
		}
	}
}

type stubVerifier struct {
	identity *auth.Identity
}

func (s stubVerifier) Verify(token string) (*auth.Identity, error) {
	if token != "oidc-token" {
		return nil, errors.New("unknown token")
	}
	return s.identity, nil
}

func (s stubVerifier) Close() error { return nil }

func TestAuthenticateOIDCOwnerWithLegacyFallback(t *testing.T) {
	m := NewAuthMiddlewareWithFallback(stubVerifier{identity: &auth.Identity{Owner: "mia@example.com"}}, testSecret)
	app := newAuthApp(m)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer oidc-token")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 || string(body) != "mia@example.com" {
		t.Fatalf("expected OIDC owner, got %d %q", resp.StatusCode, body)
	}

	legacy, _ := m.GenerateToken("user-1", "", time.Hour)
	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+legacy)
	resp, _ = app.Test(req)
	body, _ = io.ReadAll(resp.Body)
	if resp.StatusCode != 200 || string(body) != "user-1" {
		t.Fatalf("expected legacy owner, got %d %q", resp.StatusCode, body)
	}
}

func TestGatewayAuthRejectsUnsafeOwner(t *testing.T) {
	app := fiber.New()
	app.Get("/me", GatewayAuthMiddleware(), func(c *fiber.Ctx) error {
		return c.SendString(GetUserID(c))
	})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("X-User-Id", "../user-1")
	resp, _ := app.Test(req)
	if resp.StatusCode != 401 {
		t.Errorf("expected 401 for unsafe owner, got %d", resp.StatusCode)
	}
}
