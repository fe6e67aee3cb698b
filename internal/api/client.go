// Package api is the control-plane REST client (spec.md §6, C8): apps,
// deployments, auth-config, and registry credentials.
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fastertools/ftl-cli/internal/httpclient"
)

// DefaultBaseURL is the production control-plane endpoint.
const DefaultBaseURL = "https://vnwyancgjj.execute-api.us-west-2.amazonaws.com"

// AppStatus mirrors the control-plane App state model (spec.md §3).
type AppStatus string

const (
	StatusPending  AppStatus = "Pending"
	StatusCreating AppStatus = "Creating"
	StatusActive   AppStatus = "Active"
	StatusFailed   AppStatus = "Failed"
	StatusDeleting AppStatus = "Deleting"
	StatusDeleted  AppStatus = "Deleted"
)

// App is the control-plane view of an application (spec.md §3).
type App struct {
	AppID         string    `json:"app_id"`
	AppName       string    `json:"app_name"`
	Status        AppStatus `json:"status"`
	ProviderURL   string    `json:"provider_url,omitempty"`
	ProviderError string    `json:"provider_error,omitempty"`
}

// Deployment is the control-plane view of a deployment (spec.md §3).
type Deployment struct {
	DeploymentID string    `json:"deployment_id"`
	AppID        string    `json:"app_id"`
	Status       AppStatus `json:"status"`
	Message      string    `json:"message,omitempty"`
}

// ToolsItem describes one deployed component's registry reference
// (spec.md §3 "Component reference" and §4.4 step 4c).
type ToolsItem struct {
	Name         string   `json:"name"`
	Tag          string   `json:"tag"`
	AllowedHosts []string `json:"allowed_hosts,omitempty"`
}

// CreateAppRequest is the POST /apps body.
type CreateAppRequest struct {
	AppName string `json:"app_name"`
}

// CreateDeploymentRequest is the POST /apps/{id}/deployments body
// (spec.md §4.4 step 7: component list plus merged variables).
type CreateDeploymentRequest struct {
	Tools     []ToolsItem       `json:"tools"`
	Variables map[string]string `json:"variables,omitempty"`
}

// AuthConfigRequest is the POST /apps/{id}/auth-config body, applied before
// the first deployment when access_control=private (spec.md §4.4 step 6).
type AuthConfigRequest struct {
	JWTIssuer   string `json:"jwt_issuer"`
	JWTAudience string `json:"jwt_audience,omitempty"`
}

// ECRCredentials is the POST /registry/ecr-token response: ephemeral OCI
// push credentials (spec.md §4.4 step 2).
type ECRCredentials struct {
	AuthorizationToken string `json:"authorization_token"`
	RegistryURI        string `json:"registry_uri"`
	ExpiresAt          string `json:"expires_at,omitempty"`
}

// CreateRepositoryRequest is the POST /registry/repositories body.
type CreateRepositoryRequest struct {
	ToolName string `json:"tool_name"`
}

// RepositoryResponse is the POST /registry/repositories response.
type RepositoryResponse struct {
	RepositoryURI string `json:"repository_uri"`
}

// Client is the hand-written control-plane client. The teacher's
// internal/api/client.go wraps an oapi-codegen-generated ClientWithResponses
// against a schema not present in the retrieved pack (see DESIGN.md); this
// client is written directly against spec.md §6's endpoint table on top of
// internal/httpclient (C2) instead.
type Client struct {
	http *httpclient.Client
}

// New builds a Client. tokens supplies bearer tokens per-request (typically
// *auth.Manager); baseURL defaults to DefaultBaseURL when empty.
func New(tokens httpclient.TokenSource, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: httpclient.New(baseURL, tokens)}
}

// CreateApp creates a new application (POST /apps).
func (c *Client) CreateApp(ctx context.Context, name string) (*App, error) {
	var app App
	if err := c.http.DoJSON(ctx, http.MethodPost, "/apps", CreateAppRequest{AppName: name}, &app); err != nil {
		return nil, fmt.Errorf("failed to create app: %w", err)
	}
	return &app, nil
}

// ListAppsByName filters apps by exact name (GET /apps?name=).
func (c *Client) ListAppsByName(ctx context.Context, name string) ([]App, error) {
	var apps []App
	path := "/apps?name=" + url.QueryEscape(name)
	if err := c.http.DoJSON(ctx, http.MethodGet, path, nil, &apps); err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}
	return apps, nil
}

// GetApp fetches a single app by id (GET /apps/{id}).
func (c *Client) GetApp(ctx context.Context, appID string) (*App, error) {
	var app App
	path := "/apps/" + url.PathEscape(appID)
	if err := c.http.DoJSON(ctx, http.MethodGet, path, nil, &app); err != nil {
		return nil, fmt.Errorf("failed to get app: %w", err)
	}
	return &app, nil
}

// ResolveOrCreateApp implements spec.md §4.4 step 5's list-then-create
// idiom: return the existing app by exact name, else create it.
func (c *Client) ResolveOrCreateApp(ctx context.Context, name string) (*App, error) {
	apps, err := c.ListAppsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(apps) > 0 {
		return &apps[0], nil
	}
	return c.CreateApp(ctx, name)
}

// UpdateAuthConfig applies access-control settings to an app (POST
// /apps/{id}/auth-config). Must be called before the first deployment when
// access_control=private (spec.md §4.4 step 6).
func (c *Client) UpdateAuthConfig(ctx context.Context, appID string, req AuthConfigRequest) error {
	path := "/apps/" + url.PathEscape(appID) + "/auth-config"
	if err := c.http.DoJSON(ctx, http.MethodPost, path, req, nil); err != nil {
		return fmt.Errorf("failed to update auth config: %w", err)
	}
	return nil
}

// CreateDeployment posts a deployment for an app (POST
// /apps/{id}/deployments).
func (c *Client) CreateDeployment(ctx context.Context, appID string, req CreateDeploymentRequest) (*Deployment, error) {
	var dep Deployment
	path := "/apps/" + url.PathEscape(appID) + "/deployments"
	if err := c.http.DoJSON(ctx, http.MethodPost, path, req, &dep); err != nil {
		return nil, fmt.Errorf("failed to create deployment: %w", err)
	}
	return &dep, nil
}

// GetECRCredentials fetches ephemeral OCI push credentials (POST
// /registry/ecr-token).
func (c *Client) GetECRCredentials(ctx context.Context) (*ECRCredentials, error) {
	var creds ECRCredentials
	if err := c.http.DoJSON(ctx, http.MethodPost, "/registry/ecr-token", nil, &creds); err != nil {
		return nil, fmt.Errorf("failed to get ECR credentials: %w", err)
	}
	return &creds, nil
}

// CreateRepository creates (or returns) the per-component repository (POST
// /registry/repositories).
func (c *Client) CreateRepository(ctx context.Context, toolName string) (*RepositoryResponse, error) {
	var resp RepositoryResponse
	req := CreateRepositoryRequest{ToolName: toolName}
	if err := c.http.DoJSON(ctx, http.MethodPost, "/registry/repositories", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to create repository for %q: %w", toolName, err)
	}
	return &resp, nil
}
