// Package gateway implements the JWT authentication gateway that sits in
// front of a deployed MCP backend (spec.md §4.6, C12). Ported from
// original_source/components/mcp-authorizer/src/lib.rs's Spin WASM HTTP
// component entrypoint to a standalone net/http server: spec.md treats the
// WASM host itself as an external collaborator, so only the gateway's
// request-handling logic is in scope here, not its hosting (see DESIGN.md).
package gateway

import (
	"fmt"
	"os"
)

// Config is sourced from environment variables, the standalone-binary
// analogue of the WASM component's Spin application variables
// (mcp_provider_type/mcp_jwt_issuer/mcp_jwt_audience, set by
// internal/manifest's gateway.go for the embedded deployment path).
type Config struct {
	JWTIssuer      string
	JWTAudience    string
	GatewayURL     string
	TraceHeader    string
	AllowedSubs    []string
	RequiredClaims map[string]string
}

const defaultTraceHeader = "x-trace-id"

// LoadConfig reads gateway configuration from the process environment.
func LoadConfig() (*Config, error) {
	issuer := os.Getenv("FTL_GATEWAY_JWT_ISSUER")
	if issuer == "" {
		return nil, fmt.Errorf("FTL_GATEWAY_JWT_ISSUER is required")
	}

	traceHeader := os.Getenv("FTL_GATEWAY_TRACE_HEADER")
	if traceHeader == "" {
		traceHeader = defaultTraceHeader
	}

	return &Config{
		JWTIssuer:   issuer,
		JWTAudience: os.Getenv("FTL_GATEWAY_JWT_AUDIENCE"),
		GatewayURL:  os.Getenv("FTL_GATEWAY_BACKEND_URL"),
		TraceHeader: traceHeader,
	}, nil
}
