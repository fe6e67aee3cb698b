package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/fastertools/ftl-cli/internal/config"
	"github.com/pkg/browser"
)

// Manager orchestrates the OAuth device flow and credential lifecycle
// (spec.md §4.3, C7) on top of a CredentialStore (C1).
type Manager struct {
	store         CredentialStore
	oauthProvider OAuthProvider
	browserOpener BrowserOpener
	config        *LoginConfig
}

type defaultBrowserOpener struct{}

func (d *defaultBrowserOpener) OpenURL(url string) error {
	return browser.OpenURL(url)
}

func defaultLoginConfig(cfg *LoginConfig) *LoginConfig {
	if cfg != nil {
		return cfg
	}
	return &LoginConfig{
		AuthKitDomain: DefaultAuthKitDomain,
		ClientID:      DefaultClientID,
	}
}

// NewManager builds a Manager backed by the real OAuth provider and browser.
func NewManager(store CredentialStore, cfg *LoginConfig) *Manager {
	cfg = defaultLoginConfig(cfg)
	return &Manager{
		store:         store,
		oauthProvider: NewOAuthClient(cfg.AuthKitDomain, cfg.ClientID),
		browserOpener: &defaultBrowserOpener{},
		config:        cfg,
	}
}

// NewManagerWithProvider substitutes a custom OAuthProvider, primarily for tests.
func NewManagerWithProvider(store CredentialStore, provider OAuthProvider, cfg *LoginConfig) *Manager {
	cfg = defaultLoginConfig(cfg)
	return &Manager{
		store:         store,
		oauthProvider: provider,
		browserOpener: &defaultBrowserOpener{},
		config:        cfg,
	}
}

// NewManagerWithMocks substitutes every external dependency; browser opening
// is always disabled regardless of the supplied config.
func NewManagerWithMocks(store CredentialStore, provider OAuthProvider, opener BrowserOpener, cfg *LoginConfig) *Manager {
	cfg = defaultLoginConfig(cfg)
	cfg.NoBrowser = true
	return &Manager{
		store:         store,
		oauthProvider: provider,
		browserOpener: opener,
		config:        cfg,
	}
}

// StartDeviceFlow requests a device code and opens the verification URL in
// the user's browser unless NoBrowser is set or the user is already logged in.
func (m *Manager) StartDeviceFlow(ctx context.Context) (*DeviceAuthResponse, error) {
	if !m.config.Force {
		if creds, err := m.store.Load(); err == nil && creds != nil {
			if !creds.IsExpired() {
				return nil, fmt.Errorf("already logged in")
			}
			if creds.RefreshToken != "" {
				if _, err := m.Refresh(ctx, creds); err == nil {
					return nil, fmt.Errorf("already logged in (token refreshed)")
				}
			}
		}
	}

	deviceAuth, err := m.oauthProvider.StartDeviceFlow(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start device flow: %w", err)
	}

	if !m.config.NoBrowser && m.browserOpener != nil {
		_ = m.browserOpener.OpenURL(deviceAuth.VerificationURIComplete)
	}

	return deviceAuth, nil
}

// CompleteDeviceFlow polls until the user authorizes the request, then
// persists the resulting credentials.
func (m *Manager) CompleteDeviceFlow(ctx context.Context, deviceAuth *DeviceAuthResponse) (*Credentials, error) {
	interval := time.Duration(deviceAuth.Interval) * time.Second
	token, err := m.oauthProvider.PollForToken(ctx, deviceAuth.DeviceCode, interval)
	if err != nil {
		return nil, err
	}

	creds := &Credentials{
		AuthKitDomain: m.config.AuthKitDomain,
		AccessToken:   token.AccessToken,
		RefreshToken:  token.RefreshToken,
		IDToken:       token.IDToken,
		ClientID:      m.config.ClientID,
	}
	if token.ExpiresIn > 0 {
		expiresAt := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
		creds.ExpiresAt = &expiresAt
	}

	if err := m.store.Save(creds); err != nil {
		return nil, fmt.Errorf("failed to save credentials: %w", err)
	}

	if err := m.saveUserInfoFromToken(token); err != nil {
		fmt.Printf("Warning: failed to save user info: %v\n", err)
	}

	return creds, nil
}

// Login runs the complete device flow: start, then poll to completion.
func (m *Manager) Login(ctx context.Context) (*Credentials, error) {
	deviceAuth, err := m.StartDeviceFlow(ctx)
	if err != nil {
		return nil, err
	}
	return m.CompleteDeviceFlow(ctx, deviceAuth)
}

// Logout deletes stored credentials. Idempotent.
func (m *Manager) Logout() error {
	return m.store.Delete()
}

// Status reports whether the user is logged in and whether the token needs
// a refresh, without performing one.
func (m *Manager) Status() *AuthStatus {
	creds, err := m.store.Load()
	if err != nil || creds == nil {
		return &AuthStatus{LoggedIn: false, Error: err}
	}

	status := &AuthStatus{LoggedIn: true, Credentials: creds}
	if creds.IsExpired() {
		status.NeedsRefresh = true
	}
	return status
}

// GetToken returns a valid access token, transparently refreshing an expired
// one when a refresh token is available.
func (m *Manager) GetToken(ctx context.Context) (string, error) {
	creds, err := m.store.Load()
	if err != nil || creds == nil {
		return "", fmt.Errorf("not logged in")
	}

	if creds.IsExpired() {
		if creds.RefreshToken == "" {
			return "", fmt.Errorf("token expired and no refresh token available")
		}
		refreshed, err := m.Refresh(ctx, creds)
		if err != nil {
			return "", fmt.Errorf("failed to refresh token: %w", err)
		}
		creds = refreshed
	}

	return creds.AccessToken, nil
}

// Refresh exchanges the stored refresh token for new credentials (spec.md
// §4.3 "Refresh"): a missing refresh token or a failed exchange yields an
// error carrying the substring "expired" so callers can tell a stale
// session from a transient failure. A failure to save the refreshed
// credentials is reported without that substring.
func (m *Manager) Refresh(ctx context.Context, creds *Credentials) (*Credentials, error) {
	if creds.RefreshToken == "" {
		return nil, fmt.Errorf("session expired: no refresh token available, please run login")
	}

	token, err := m.oauthProvider.RefreshToken(ctx, creds.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("session expired: %w", err)
	}

	newCreds := &Credentials{
		AuthKitDomain: creds.AuthKitDomain,
		AccessToken:   token.AccessToken,
		RefreshToken:  creds.RefreshToken,
		ClientID:      creds.ClientID,
	}
	if token.RefreshToken != "" {
		newCreds.RefreshToken = token.RefreshToken
	}
	if token.ExpiresIn > 0 {
		expiresAt := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
		newCreds.ExpiresAt = &expiresAt
	}

	if err := m.store.Save(newCreds); err != nil {
		return nil, fmt.Errorf("failed to save refreshed credentials: %w", err)
	}
	return newCreds, nil
}

// GetOrRefreshToken is an alias kept for call-site clarity at deploy/build
// entry points that always want a fresh token.
func (m *Manager) GetOrRefreshToken(ctx context.Context) (string, error) {
	return m.GetToken(ctx)
}

// saveUserInfoFromToken extracts display info from the token and persists it
// to the user config store (C14) for `ftl auth`'s status line. Failure here
// is non-fatal: the login itself already succeeded.
func (m *Manager) saveUserInfoFromToken(token *TokenResponse) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	claims, err := ExtractIDToken(token)
	if err != nil {
		return fmt.Errorf("failed to extract user info: %w", err)
	}

	userInfo := &config.UserInfo{
		Username:  claims.GetDisplayName(),
		Email:     claims.Email,
		UserID:    claims.Subject,
		UpdatedAt: time.Now().Format(time.RFC3339),
	}
	return cfg.SetCurrentUser(userInfo)
}
