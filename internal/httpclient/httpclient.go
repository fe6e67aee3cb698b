// Package httpclient is a thin, bearer-authenticated JSON client used by
// the control-plane API (C8). The OAuth device flow (C7) sends its own
// requests and does not use this package.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TokenSource returns the bearer token to attach to a request. Implemented
// by *auth.Manager in production; fakeable in tests.
type TokenSource interface {
	GetToken(ctx context.Context) (string, error)
}

// Client wraps http.Client with bearer-token injection and JSON
// marshal/unmarshal helpers. Grounded on internal/auth/oauth.go's
// url.Values/http.NewRequestWithContext request building, generalized to a
// reusable JSON transport.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Tokens  TokenSource
}

// New builds a Client with a 30s timeout, matching the teacher's
// authHTTPClient default.
func New(baseURL string, tokens TokenSource) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Tokens:  tokens,
	}
}

// StatusError carries a non-2xx response body for callers that want to
// inspect the control plane's error payload.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, string(e.Body))
}

// DoJSON issues method+path with body marshaled as JSON (if non-nil),
// attaches the bearer token, and unmarshals a 2xx response into out (if
// non-nil). Returns *StatusError for non-2xx responses.
func (c *Client) DoJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if c.Tokens != nil {
		token, err := c.Tokens.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to get auth token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: respBody}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
