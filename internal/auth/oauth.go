package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// deviceFlowScope is requested on every device authorization request.
const deviceFlowScope = "openid profile email offline_access"

// OAuthClient drives RFC 8628's device authorization grant against an
// AuthKit-compatible authorization server.
type OAuthClient struct {
	httpClient    HTTPClient
	authKitDomain string
	clientID      string
}

var _ OAuthProvider = (*OAuthClient)(nil)

// NewOAuthClient builds a client for the given tenant, falling back to the
// package defaults when either argument is empty.
func NewOAuthClient(authKitDomain, clientID string) *OAuthClient {
	if authKitDomain == "" {
		authKitDomain = DefaultAuthKitDomain
	}
	if clientID == "" {
		clientID = DefaultClientID
	}

	return &OAuthClient{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		authKitDomain: authKitDomain,
		clientID:      clientID,
	}
}

// StartDeviceFlow requests a device code and user verification URL.
func (c *OAuthClient) StartDeviceFlow(ctx context.Context) (*DeviceAuthResponse, error) {
	endpoint := fmt.Sprintf("https://%s/oauth2/device_authorization", c.authKitDomain)

	data := url.Values{
		"client_id": {c.clientID},
		"scope":     {deviceFlowScope},
	}

	body, status, err := c.post(ctx, endpoint, data)
	if err != nil {
		return nil, fmt.Errorf("failed to request device authorization: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("device authorization failed (status %d): %s", status, string(body))
	}

	var resp DeviceAuthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse device authorization response: %w", err)
	}
	if resp.Interval == 0 {
		resp.Interval = 5
	}

	return &resp, nil
}

// PollForToken polls the token endpoint until the user completes
// authorization, the device code expires, access is denied, or the overall
// login timeout (spec.md §4.3: 600s) elapses.
//
// Per spec.md §4.3/§9: a "slow_down" response extends the interval by
// exactly 5s. It never resets or multiplies the interval.
func (c *OAuthClient) PollForToken(ctx context.Context, deviceCode string, interval time.Duration) (*TokenResponse, error) {
	endpoint := fmt.Sprintf("https://%s/oauth2/token", c.authKitDomain)

	deadline := time.Now().Add(LoginTimeout)
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("Login timeout exceeded")
			}

			token, err := c.requestToken(ctx, endpoint, deviceCode)
			if err == nil {
				return token, nil
			}

			tokenErr, ok := err.(*TokenError)
			if !ok {
				return nil, err
			}

			switch {
			case tokenErr.IsAuthorizationPending():
				timer.Reset(interval)
			case tokenErr.IsSlowDown():
				interval += 5 * time.Second
				timer.Reset(interval)
			case tokenErr.IsExpired():
				return nil, fmt.Errorf("device code expired, please try again")
			case tokenErr.IsAccessDenied():
				return nil, fmt.Errorf("Access denied")
			default:
				return nil, tokenErr
			}
		}
	}
}

// requestToken makes a single poll-tick token request.
func (c *OAuthClient) requestToken(ctx context.Context, endpoint, deviceCode string) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":  {"urn:ietf:params:oauth:grant-type:device_code"},
		"device_code": {deviceCode},
		"client_id":   {c.clientID},
	}

	body, status, err := c.post(ctx, endpoint, data)
	if err != nil {
		return nil, fmt.Errorf("failed to request token: %w", err)
	}

	if status == http.StatusBadRequest {
		var tokenErr TokenError
		if err := json.Unmarshal(body, &tokenErr); err != nil {
			return nil, fmt.Errorf("failed to parse token error: %w", err)
		}
		return nil, &tokenErr
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("token request failed (status %d): %s", status, string(body))
	}

	var resp TokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	return &resp, nil
}

// RefreshToken exchanges a refresh token for a new access token.
func (c *OAuthClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	endpoint := fmt.Sprintf("https://%s/oauth2/token", c.authKitDomain)

	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {c.clientID},
	}

	body, status, err := c.post(ctx, endpoint, data)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("token refresh failed, token expired (status %d): %s", status, string(body))
	}

	var resp TokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse refreshed token: %w", err)
	}
	return &resp, nil
}

func (c *OAuthClient) post(ctx context.Context, endpoint string, data url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(data.Encode()))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}

	return body, resp.StatusCode, nil
}
