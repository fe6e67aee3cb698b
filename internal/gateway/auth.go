package gateway

import (
	"context"
	"net/http"
	"strings"
)

// AuthContext carries the verified identity forward to the forwarded
// request, mirroring the Rust component's AuthContext (spec.md §4.6 point
// 4: "client_id, user_id, scopes, issuer, raw_token, additional_claims").
type AuthContext struct {
	ClientID         string
	UserID           string
	Scopes           []string
	Issuer           string
	RawToken         string
	AdditionalClaims map[string]interface{}
}

// extractBearerToken pulls the token out of the Authorization header,
// requiring the exact "Bearer " scheme (case-sensitive per RFC 6750).
func extractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", newUnauthorized("Missing authorization header")
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", newInvalidToken("Authorization header must use Bearer scheme")
	}
	token := strings.TrimPrefix(header, prefix)
	if token == "" {
		return "", newInvalidToken("Bearer token is empty")
	}
	return token, nil
}

// authenticate extracts and verifies the bearer token, producing an
// AuthContext on success.
func authenticate(ctx context.Context, r *http.Request, cache *KeyCache, cfg *Config) (*AuthContext, error) {
	raw, err := extractBearerToken(r)
	if err != nil {
		return nil, err
	}

	info, err := VerifyToken(ctx, cache, raw, cfg)
	if err != nil {
		return nil, err
	}

	return &AuthContext{
		ClientID:         info.ClientID,
		UserID:           info.Subject,
		Scopes:           info.Scopes,
		Issuer:           info.Issuer,
		RawToken:         raw,
		AdditionalClaims: info.Claims,
	}, nil
}

// applyAuthorizationRules enforces the configured allowed_subjects and
// required_claims restrictions on top of a successfully verified token
// (spec.md §4.6 point 5).
func applyAuthorizationRules(authCtx *AuthContext, cfg *Config) error {
	if len(cfg.AllowedSubs) > 0 {
		allowed := false
		for _, sub := range cfg.AllowedSubs {
			if sub == authCtx.UserID {
				allowed = true
				break
			}
		}
		if !allowed {
			return newUnauthorized("Subject not in allowed_subjects")
		}
	}

	for claim, expected := range cfg.RequiredClaims {
		actual, ok := authCtx.AdditionalClaims[claim]
		if !ok || actual != expected {
			return newUnauthorized("Required claim not satisfied: " + claim)
		}
	}

	return nil
}
