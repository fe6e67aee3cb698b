package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
)

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, PUT, DELETE, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type, Authorization",
}

// Handler is the gateway's net/http entrypoint, implementing spec.md §4.6's
// request sequence: CORS preflight, discovery endpoints, authentication,
// authorization rules, then forwarding.
type Handler struct {
	Config *Config
	Keys   *KeyCache
}

func NewHandler(cfg *Config) *Handler {
	return &Handler{Config: cfg, Keys: NewKeyCache()}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeCORSPreflight(w)
		return
	}

	traceID := extractTraceID(r, h.Config.TraceHeader)

	if handleDiscovery(w, r, h.Config) {
		return
	}

	authCtx, err := authenticate(r.Context(), r, h.Keys, h.Config)
	if err != nil {
		writeErrorResponse(w, r, h.Config, toAuthError(err), traceID)
		return
	}

	if err := applyAuthorizationRules(authCtx, h.Config); err != nil {
		writeErrorResponse(w, r, h.Config, toAuthError(err), traceID)
		return
	}

	if h.Config.GatewayURL == "" || h.Config.GatewayURL == "none" {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
		return
	}

	forwardToGateway(w, r, h.Config, authCtx, traceID)
}

func toAuthError(err error) *AuthError {
	if ae, ok := err.(*AuthError); ok {
		return ae
	}
	return newInternal(err.Error())
}

func writeCORSPreflight(w http.ResponseWriter) {
	for k, v := range corsHeaders {
		w.Header().Set(k, v)
	}
	w.Header().Set("Access-Control-Max-Age", "86400")
	w.WriteHeader(http.StatusNoContent)
}

// writeErrorResponse builds the exact error envelope spec.md §4.6 mandates:
// a JSON body of {"error": code, "error_description": message}, CORS
// headers, and for 401s a WWW-Authenticate header carrying a
// resource_metadata pointer back at this gateway's discovery endpoint.
func writeErrorResponse(w http.ResponseWriter, r *http.Request, cfg *Config, authErr *AuthError, traceID string) {
	for k, v := range corsHeaders {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json")

	if authErr.StatusCode() == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", wwwAuthenticateHeader(r, authErr))
	}
	if traceID != "" {
		w.Header().Set(cfg.TraceHeader, traceID)
	}

	w.WriteHeader(authErr.StatusCode())
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             string(authErr.Kind),
		"error_description": authErr.Message,
	})
}

func wwwAuthenticateHeader(r *http.Request, authErr *AuthError) string {
	base := fmt.Sprintf(`Bearer error="%s", error_description="%s"`, authErr.Kind, authErr.Message)

	host := extractHost(r)
	if host == "" {
		return base
	}
	scheme := "https"
	if isLocalHost(host) {
		scheme = "http"
	}
	resourceURL := fmt.Sprintf("%s://%s/.well-known/oauth-protected-resource", scheme, host)
	return fmt.Sprintf(`%s, resource_metadata="%s"`, base, resourceURL)
}
