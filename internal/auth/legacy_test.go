package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestLegacyTokenRoundTrip(t *testing.T) {
	token, err := GenerateLegacyToken("user-1", "a@b.c", "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateLegacyToken failed: %v", err)
	}

	claims, err := ValidateLegacyToken(token, "secret")
	if err != nil {
		t.Fatalf("ValidateLegacyToken failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "a@b.c" || claims.Issuer != "huggnote-api" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestLegacyTokenWrongSecret(t *testing.T) {
	token, _ := GenerateLegacyToken("user-1", "", "secret", 0)
	if _, err := ValidateLegacyToken(token, "other"); err == nil {
		t.Error("expected signature error")
	}
}

func TestLegacyTokenExpired(t *testing.T) {
	claims := LegacyClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if _, err := ValidateLegacyToken(token, "secret"); err == nil {
		t.Error("expected expiry error")
	}
}

func TestLegacyTokenWithoutUser(t *testing.T) {
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, LegacyClaims{Email: "x"}).SignedString([]byte("secret"))
	if _, err := ValidateLegacyToken(token, "secret"); err == nil {
		t.Error("expected error for token without userId")
	}
}
