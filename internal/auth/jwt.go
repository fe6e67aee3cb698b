package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims holds the subset of claims the CLI needs to display who is
// logged in. Unlike the gateway (C12), this extraction is unverified: the
// token was already verified by the issuing authorization server, and the
// CLI only reads it to render a friendly username.
type JWTClaims struct {
	Subject   string
	Email     string
	Name      string
	Username  string
	ExpiresAt int64
}

// ExtractUserInfo parses a JWT without verifying its signature.
func ExtractUserInfo(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	out := &JWTClaims{}
	if v, ok := claims["sub"].(string); ok {
		out.Subject = v
	}
	if v, ok := claims["email"].(string); ok {
		out.Email = v
	}
	if v, ok := claims["name"].(string); ok {
		out.Name = v
	}
	if v, ok := claims["username"].(string); ok {
		out.Username = v
	}
	if v, ok := claims["exp"].(float64); ok {
		out.ExpiresAt = int64(v)
	}

	return out, nil
}

// GetDisplayName returns the best available human-readable identifier.
func (c *JWTClaims) GetDisplayName() string {
	switch {
	case c.Username != "":
		return c.Username
	case c.Name != "":
		return c.Name
	case c.Email != "":
		if at := strings.Index(c.Email, "@"); at > 0 {
			return c.Email[:at]
		}
		return c.Email
	default:
		return c.Subject
	}
}

// IsExpired reports whether the token's own exp claim has passed.
func (c *JWTClaims) IsExpired() bool {
	if c.ExpiresAt == 0 {
		return false
	}
	return time.Now().Unix() > c.ExpiresAt
}

// ExtractIDToken prefers the ID token for display info, falling back to the
// access token when no ID token was issued.
func ExtractIDToken(tokenResp *TokenResponse) (*JWTClaims, error) {
	if tokenResp.IDToken == "" {
		return ExtractUserInfo(tokenResp.AccessToken)
	}
	return ExtractUserInfo(tokenResp.IDToken)
}
