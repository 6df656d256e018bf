package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/huggnote/api/internal/config"
)

// Claims that can name the store owner of an OIDC user.
const (
	OwnerClaimSubject  = "sub"
	OwnerClaimEmail    = "email"
	OwnerClaimUsername = "preferred_username"
)

// TokenVerifier resolves a bearer token to the caller's identity.
type TokenVerifier interface {
	Verify(tokenString string) (*Identity, error)
	Close() error
}

// Claims represents the JWT claims issued by the OIDC provider
type Claims struct {
	Email             string `json:"email,omitempty"`
	EmailVerified     bool   `json:"email_verified,omitempty"`
	Name              string `json:"name,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	jwt.RegisteredClaims
}

// JWKSVerifier checks provider-signed tokens and maps them onto store owners.
type JWKSVerifier struct {
	jwks       keyfunc.Keyfunc
	issuer     string
	audience   string
	ownerClaim string
	cancel     context.CancelFunc
}

// NewJWKSVerifier creates a verifier for tokens of the configured issuer.
// Keys come from cfg.JWKSURL, or from OIDC discovery when it is empty, and
// are refreshed in the background until Close.
func NewJWKSVerifier(cfg *config.OIDCConfig) (*JWKSVerifier, error) {
	if cfg.Issuer == "" {
		return nil, fmt.Errorf("oidc issuer is required")
	}

	ownerClaim := cfg.OwnerClaim
	if ownerClaim == "" {
		ownerClaim = OwnerClaimSubject
	}
	switch ownerClaim {
	case OwnerClaimSubject, OwnerClaimEmail, OwnerClaimUsername:
	default:
		return nil, fmt.Errorf("unsupported oidc owner claim %q", ownerClaim)
	}

	jwksURL := cfg.JWKSURL
	if jwksURL == "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		var err error
		jwksURL, err = discoverJWKSURL(ctx, cfg.Issuer)
		if err != nil {
			return nil, fmt.Errorf("failed to discover JWKS URL: %w", err)
		}
	}

	refreshCtx, cancel := context.WithCancel(context.Background())
	jwks, err := keyfunc.NewDefaultCtx(refreshCtx, []string{jwksURL})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create JWKS keyfunc: %w", err)
	}

	return &JWKSVerifier{
		jwks:       jwks,
		issuer:     cfg.Issuer,
		audience:   cfg.ClientID,
		ownerClaim: ownerClaim,
		cancel:     cancel,
	}, nil
}

// discoverJWKSURL fetches the discovery document of issuer. The document must
// name the same issuer.
func discoverJWKSURL(ctx context.Context, issuer string) (string, error) {
	discoveryURL := strings.TrimRight(issuer, "/") + "/.well-known/openid-configuration"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create discovery request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch discovery document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("discovery endpoint returned status %d", resp.StatusCode)
	}

	var doc struct {
		Issuer  string `json:"issuer"`
		JWKSURI string `json:"jwks_uri"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", fmt.Errorf("failed to decode discovery document: %w", err)
	}
	if doc.Issuer != "" && strings.TrimRight(doc.Issuer, "/") != strings.TrimRight(issuer, "/") {
		return "", fmt.Errorf("discovery document is for issuer %q", doc.Issuer)
	}
	if doc.JWKSURI == "" {
		return "", fmt.Errorf("jwks_uri not found in discovery document")
	}

	return doc.JWKSURI, nil
}

// Verify checks signature, issuer, expiry and audience, then resolves the
// owner from the configured claim.
func (v *JWKSVerifier) Verify(tokenString string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512", "EdDSA"}),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, v.jwks.Keyfunc, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	owner, err := v.owner(claims)
	if err != nil {
		return nil, err
	}
	return &Identity{Owner: owner, Email: claims.Email, Name: claims.Name}, nil
}

func (v *JWKSVerifier) owner(claims *Claims) (string, error) {
	var raw string
	switch v.ownerClaim {
	case OwnerClaimEmail:
		// an unverified address could be claimed by anyone
		if !claims.EmailVerified {
			return "", fmt.Errorf("email %q is not verified", claims.Email)
		}
		raw = strings.ToLower(claims.Email)
	case OwnerClaimUsername:
		raw = claims.PreferredUsername
	default:
		raw = claims.Subject
	}

	owner, err := OwnerID(raw)
	if err != nil {
		return "", fmt.Errorf("claim %s: %w", v.ownerClaim, err)
	}
	return owner, nil
}

// Close stops the background key refresh.
func (v *JWKSVerifier) Close() error {
	if v.cancel != nil {
		v.cancel()
	}
	return nil
}
