package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const legacyIssuer = "huggnote-api"

// LegacyClaims represents legacy JWT claims (HMAC-signed tokens)
type LegacyClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// ValidateLegacyToken validates a token using HMAC signing
func ValidateLegacyToken(tokenString, secret string) (*LegacyClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &LegacyClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*LegacyClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

// LegacyIdentity validates an HMAC token and resolves its userId as owner.
func LegacyIdentity(tokenString, secret string) (*Identity, error) {
	claims, err := ValidateLegacyToken(tokenString, secret)
	if err != nil {
		return nil, err
	}
	owner, err := OwnerID(claims.UserID)
	if err != nil {
		return nil, err
	}
	return &Identity{Owner: owner, Email: claims.Email}, nil
}

// GenerateLegacyToken signs an HMAC token for userID. A zero ttl issues a
// token without expiry.
func GenerateLegacyToken(userID, email, secret string, ttl time.Duration) (string, error) {
	claims := LegacyClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   legacyIssuer,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
