package gateway

import (
	"encoding/json"
	"net/http"
)

// handleDiscovery serves the three OAuth discovery documents unauthenticated,
// matching handle_discovery in the Rust component: path-prefix routing so a
// trailing path segment (e.g. a resource identifier) still matches.
func handleDiscovery(w http.ResponseWriter, r *http.Request, cfg *Config) bool {
	switch {
	case hasPrefix(r.URL.Path, "/.well-known/oauth-protected-resource"):
		writeDiscoveryJSON(w, oauthProtectedResource(r, cfg))
		return true
	case hasPrefix(r.URL.Path, "/.well-known/oauth-authorization-server"):
		writeDiscoveryJSON(w, oauthAuthorizationServer(cfg))
		return true
	case hasPrefix(r.URL.Path, "/.well-known/openid-configuration"):
		writeDiscoveryJSON(w, oauthAuthorizationServer(cfg))
		return true
	default:
		return false
	}
}

func hasPrefix(path, prefix string) bool {
	return len(path) >= len(prefix) && path[:len(prefix)] == prefix
}

func writeDiscoveryJSON(w http.ResponseWriter, doc interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_ = json.NewEncoder(w).Encode(doc)
}

// oauthProtectedResource describes this gateway as a protected resource
// (RFC 9728), pointing clients at the configured issuer.
func oauthProtectedResource(r *http.Request, cfg *Config) map[string]interface{} {
	resource := requestOrigin(r)
	return map[string]interface{}{
		"resource":               resource,
		"authorization_servers":  []string{cfg.JWTIssuer},
		"bearer_methods_supported": []string{"header"},
	}
}

// oauthAuthorizationServer mirrors the subset of RFC 8414 metadata a client
// needs to locate the issuer's own discovery document; this gateway is not
// itself an authorization server, so it simply republishes the configured
// issuer's well-known endpoints.
func oauthAuthorizationServer(cfg *Config) map[string]interface{} {
	return map[string]interface{}{
		"issuer":                                cfg.JWTIssuer,
		"jwks_uri":                               cfg.JWTIssuer + "/.well-known/jwks.json",
		"authorization_endpoint":                 cfg.JWTIssuer + "/authorize",
		"token_endpoint":                         cfg.JWTIssuer + "/oauth/token",
		"response_types_supported":               []string{"code"},
		"subject_types_supported":                []string{"public"},
		"id_token_signing_alg_values_supported":   []string{"RS256"},
		"token_endpoint_auth_methods_supported":   []string{"client_secret_post", "client_secret_basic"},
	}
}

func requestOrigin(r *http.Request) string {
	host := extractHost(r)
	scheme := "https"
	if isLocalHost(host) {
		scheme = "http"
	}
	return scheme + "://" + host
}
