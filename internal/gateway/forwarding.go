package gateway

import (
	"io"
	"net/http"
	"strings"
)

// forwardToGateway proxies an authenticated request to the backend MCP
// server, injecting the verified identity as headers the backend can trust
// (the gateway has already done the authentication work) and preserving the
// trace header end-to-end.
func forwardToGateway(w http.ResponseWriter, r *http.Request, cfg *Config, authCtx *AuthContext, traceID string) {
	target := strings.TrimSuffix(cfg.GatewayURL, "/") + r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	outReq, err := http.NewRequestWithContext(r.Context(), r.Method, target, r.Body)
	if err != nil {
		writeErrorResponse(w, r, cfg, newInternal("Failed to build upstream request"), traceID)
		return
	}
	outReq.Header = r.Header.Clone()
	outReq.Header.Set("X-Auth-Client-Id", authCtx.ClientID)
	outReq.Header.Set("X-Auth-User-Id", authCtx.UserID)
	outReq.Header.Set("X-Auth-Issuer", authCtx.Issuer)
	if traceID != "" {
		outReq.Header.Set(cfg.TraceHeader, traceID)
	}

	resp, err := http.DefaultClient.Do(outReq)
	if err != nil {
		writeErrorResponse(w, r, cfg, newInternal("Failed to reach upstream gateway"), traceID)
		return
	}
	defer resp.Body.Close()

	for key, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}

func extractTraceID(r *http.Request, traceHeader string) string {
	return r.Header.Get(traceHeader)
}

func extractHost(r *http.Request) string {
	if host := r.Header.Get("Host"); host != "" {
		return host
	}
	if host := r.Header.Get("X-Forwarded-Host"); host != "" {
		return host
	}
	return r.Host
}

func isLocalHost(host string) bool {
	return strings.HasPrefix(host, "localhost") || strings.HasPrefix(host, "127.0.0.1")
}
