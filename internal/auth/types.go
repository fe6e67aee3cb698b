package auth

import (
	"context"
	"net/http"
	"time"
)

// Credentials represents stored OAuth credentials (spec.md §3, "Stored Credentials").
type Credentials struct {
	AuthKitDomain string     `json:"authkit_domain"`
	AccessToken   string     `json:"access_token"`
	RefreshToken  string     `json:"refresh_token,omitempty"`
	IDToken       string     `json:"id_token,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	ClientID      string     `json:"client_id,omitempty"`
}

// IsExpired reports whether the access token has a deadline that has passed.
// A nil ExpiresAt means the token carries no expiry and is never expired.
func (c *Credentials) IsExpired() bool {
	if c.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*c.ExpiresAt)
}

// AuthStatus is the result of an unauthenticated "am I logged in" check.
type AuthStatus struct {
	LoggedIn     bool
	Credentials  *Credentials
	NeedsRefresh bool
	Error        error
}

// DeviceAuthResponse is RFC 8628's device authorization response.
type DeviceAuthResponse struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete"`
	ExpiresIn               int    `json:"expires_in"`
	Interval                int    `json:"interval,omitempty"`
}

// TokenResponse is the token endpoint's success response.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
}

// TokenError is the token endpoint's RFC 8628 §3.5 error response.
type TokenError struct {
	ErrorCode        string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func (e *TokenError) Error() string {
	if e.ErrorDescription != "" {
		return e.ErrorCode + ": " + e.ErrorDescription
	}
	return e.ErrorCode
}

// IsAuthorizationPending reports the "keep polling, nothing happened yet" case.
func (e *TokenError) IsAuthorizationPending() bool { return e.ErrorCode == "authorization_pending" }

// IsSlowDown reports the "extend the poll interval" case.
func (e *TokenError) IsSlowDown() bool { return e.ErrorCode == "slow_down" }

// IsExpired reports that the device code itself (not the token) has expired.
func (e *TokenError) IsExpired() bool { return e.ErrorCode == "expired_token" }

// IsAccessDenied reports that the user declined the authorization request.
func (e *TokenError) IsAccessDenied() bool { return e.ErrorCode == "access_denied" }

// LoginConfig configures a single login attempt.
type LoginConfig struct {
	NoBrowser     bool
	AuthKitDomain string
	ClientID      string
	Force         bool
}

// HTTPClient is the capability interface C7 needs from C2; satisfied by
// *http.Client and by test doubles.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// OAuthProvider is the device-flow capability Manager depends on.
type OAuthProvider interface {
	StartDeviceFlow(ctx context.Context) (*DeviceAuthResponse, error)
	PollForToken(ctx context.Context, deviceCode string, interval time.Duration) (*TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error)
}

// BrowserOpener abstracts launching the system browser for testability.
type BrowserOpener interface {
	OpenURL(url string) error
}

const (
	// DefaultClientID is the OAuth client id used when none is configured.
	DefaultClientID = "client_01K2ADMPRAFT9X83PFVJBQ6T49"
	// DefaultAuthKitDomain is the AuthKit tenant used when none is configured.
	DefaultAuthKitDomain = "divine-lion-50-staging.authkit.app"
	// LoginTimeout is the total device-flow wait budget (spec.md §4.3, §5).
	LoginTimeout = 600 * time.Second
	// KeyringService is the keyring service name credentials are stored under.
	KeyringService = "ftl-cli"
	// KeyringUsername is the keyring account name credentials are stored under.
	KeyringUsername = "default"
)
