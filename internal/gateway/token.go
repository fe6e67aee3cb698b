package gateway

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is the verified, decoded form of a bearer token (spec.md §4.6
// point 4: subject, client, scopes, issuer, and raw claims carried forward
// into the request context).
type TokenInfo struct {
	Subject  string
	ClientID string
	Scopes   []string
	Issuer   string
	Claims   jwt.MapClaims
}

// VerifyToken validates signature, expiry, issuer, and (if configured)
// audience, per spec.md §4.6's verification sequence, in that order so the
// most specific error is reported first.
func VerifyToken(ctx context.Context, cache *KeyCache, raw string, cfg *Config) (*TokenInfo, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256", "RS384", "RS512"}))

	token, err := parser.ParseWithClaims(raw, claims, jwksKeyFunc(ctx, cache, cfg.JWTIssuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, newExpiredToken()
		}
		return nil, newInvalidSignature()
	}
	if !token.Valid {
		return nil, newInvalidSignature()
	}

	issuer, err := claims.GetIssuer()
	if err != nil || issuer != cfg.JWTIssuer {
		return nil, newInvalidIssuer()
	}

	if cfg.JWTAudience != "" && !audienceMatches(claims, cfg.JWTAudience) {
		return nil, newInvalidAudience()
	}

	subject, _ := claims.GetSubject()
	return &TokenInfo{
		Subject:  subject,
		ClientID: stringClaim(claims, "client_id"),
		Scopes:   scopeClaim(claims),
		Issuer:   issuer,
		Claims:   claims,
	}, nil
}

func audienceMatches(claims jwt.MapClaims, expected string) bool {
	aud, err := claims.GetAudience()
	if err != nil {
		return false
	}
	for _, a := range aud {
		if a == expected {
			return true
		}
	}
	return false
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, ok := claims[key].(string)
	if !ok {
		return ""
	}
	return v
}

// scopeClaim accepts either a space-delimited "scope" string (OAuth2
// convention) or a "scopes" array, matching what different providers emit.
func scopeClaim(claims jwt.MapClaims) []string {
	if s, ok := claims["scope"].(string); ok && s != "" {
		return splitSpaces(s)
	}
	if arr, ok := claims["scopes"].([]interface{}); ok {
		scopes := make([]string, 0, len(arr))
		for _, v := range arr {
			if s, ok := v.(string); ok {
				scopes = append(scopes, s)
			}
		}
		return scopes
	}
	return nil
}

func splitSpaces(s string) []string {
	var out []string
	start := -1
	for i, r := range s {
		if r == ' ' {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

// rsaPublicKeyFromJWK reconstructs an *rsa.PublicKey from a JWK's base64url
// modulus/exponent fields, per RFC 7518 §6.3.
func rsaPublicKeyFromJWK(key jwksKey) (*rsa.PublicKey, error) {
	if key.Kty != "RSA" {
		return nil, fmt.Errorf("unsupported JWK key type %q", key.Kty)
	}

	nBytes, err := base64.RawURLEncoding.DecodeString(key.N)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JWK modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(key.E)
	if err != nil {
		return nil, fmt.Errorf("failed to decode JWK exponent: %w", err)
	}

	n := new(big.Int).SetBytes(nBytes)
	e := new(big.Int).SetBytes(eBytes)

	return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
}
