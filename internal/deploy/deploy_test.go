package deploy

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastertools/ftl-cli/internal/api"
	"github.com/fastertools/ftl-cli/internal/manifest"
)

func TestExtractVersionDefaultsWhenNothingFound(t *testing.T) {
	assert.Equal(t, DefaultVersion, ExtractVersion(t.TempDir()))
}

func TestBuildComponentInfosSkipsRegistryComponents(t *testing.T) {
	m := &manifest.Manifest{
		Component: map[string]manifest.ComponentSpec{
			"local":    {Path: "local", Wasm: "local/out.wasm"},
			"registry": {Source: &manifest.RegistrySource{Registry: "ghcr.io", Package: "ns:pkg", Version: "1.0.0"}},
		},
	}
	resolved := map[string]string{"local": "/tmp/local/out.wasm", "registry": "ignored"}

	infos := BuildComponentInfos(m, t.TempDir(), resolved)
	require.Len(t, infos, 1)
	assert.Equal(t, "local", infos[0].Name)
}

func TestMergeVariablesPrecedence(t *testing.T) {
	m := &manifest.Manifest{
		Variables: map[string]manifest.VariableSpec{
			"greeting": {Default: strPtr("hello")},
		},
		OAuth: &manifest.OAuthConfig{Issuer: "https://issuer.example", Audience: "aud"},
	}

	plan := mergeVariables(m, manifest.AccessPrivate, "https://issuer.example", map[string]string{"greeting": "overridden"})
	assert.Equal(t, "overridden", plan["greeting"])
	assert.Equal(t, "jwt", plan["mcp_provider_type"])
	assert.Equal(t, "https://issuer.example", plan["mcp_jwt_issuer"])
	assert.Equal(t, "aud", plan["mcp_jwt_audience"])
	assert.Equal(t, "true", plan["auth_enabled"])
}

func TestMergeVariablesAuthEnabledFalseForPublicAccess(t *testing.T) {
	m := &manifest.Manifest{}
	plan := mergeVariables(m, manifest.AccessPublic, "", nil)
	assert.Equal(t, "false", plan["auth_enabled"])
	assert.NotContains(t, plan, "mcp_provider_type")
}

func strPtr(s string) *string { return &s }

// fakeAPIClient is a hand-written test double for APIClient.
type fakeAPIClient struct {
	mu           sync.Mutex
	repoCalls    []string
	createErr    error
	app          *api.App
	appStatuses  []api.AppStatus
	statusIndex  int
	authConfiged bool
}

func (f *fakeAPIClient) GetECRCredentials(ctx context.Context) (*api.ECRCredentials, error) {
	return &api.ECRCredentials{AuthorizationToken: "QVdTOnNlY3JldA==", RegistryURI: "registry.example"}, nil
}

func (f *fakeAPIClient) CreateRepository(ctx context.Context, toolName string) (*api.RepositoryResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.repoCalls = append(f.repoCalls, toolName)
	return &api.RepositoryResponse{RepositoryURI: "registry.example/" + toolName}, nil
}

func (f *fakeAPIClient) ResolveOrCreateApp(ctx context.Context, name string) (*api.App, error) {
	return f.app, nil
}

func (f *fakeAPIClient) UpdateAuthConfig(ctx context.Context, appID string, req api.AuthConfigRequest) error {
	f.authConfiged = true
	return nil
}

func (f *fakeAPIClient) CreateDeployment(ctx context.Context, appID string, req api.CreateDeploymentRequest) (*api.Deployment, error) {
	return &api.Deployment{DeploymentID: "d-1", AppID: appID, Status: api.StatusPending}, nil
}

func (f *fakeAPIClient) GetApp(ctx context.Context, appID string) (*api.App, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	status := f.appStatuses[f.statusIndex]
	if f.statusIndex < len(f.appStatuses)-1 {
		f.statusIndex++
	}
	return &api.App{AppID: appID, Status: status, ProviderURL: "https://app.example"}, nil
}

type fakeExecutor struct {
	mu       sync.Mutex
	runCalls [][]string
	failPush bool
}

func (f *fakeExecutor) Run(ctx context.Context, name string, args []string, stdin string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runCalls = append(f.runCalls, append([]string{name}, args...))
	if f.failPush && name == "wkg" {
		return fmt.Errorf("push failed")
	}
	return nil
}

func (f *fakeExecutor) LooksInstalled(ctx context.Context, name string) bool { return true }

type instantClock struct{}

func (instantClock) Now() time.Time                             { return time.Unix(0, 0) }
func (instantClock) Sleep(ctx context.Context, d time.Duration) {}

func TestRunDryRunStopsBeforeRegistryLogin(t *testing.T) {
	m := &manifest.Manifest{
		Project:   manifest.ProjectSpec{Name: "myapp", AccessControl: manifest.AccessPublic},
		Component: map[string]manifest.ComponentSpec{"add": {Path: "add", Wasm: "add/out.wasm"}},
	}
	resolved := map[string]string{"add": "/tmp/add/out.wasm"}

	client := &fakeAPIClient{}
	exec := &fakeExecutor{}

	result, err := Run(context.Background(), m, t.TempDir(), resolved, client, exec, instantClock{}, nil, Options{DryRun: true})
	require.NoError(t, err)
	assert.NotNil(t, result.Plan)
	assert.Empty(t, exec.runCalls, "dry run must not invoke the registry tool")
}

func TestRunFailsWithNoLocalComponents(t *testing.T) {
	m := &manifest.Manifest{Project: manifest.ProjectSpec{Name: "myapp"}}
	_, err := Run(context.Background(), m, t.TempDir(), nil, &fakeAPIClient{}, &fakeExecutor{}, instantClock{}, nil, Options{})
	require.Error(t, err)
}

func TestRunSucceedsEndToEnd(t *testing.T) {
	m := &manifest.Manifest{
		Project:   manifest.ProjectSpec{Name: "myapp", AccessControl: manifest.AccessPrivate},
		OAuth:     &manifest.OAuthConfig{Issuer: "https://issuer.example"},
		Component: map[string]manifest.ComponentSpec{"add": {Path: "add", Wasm: "add/out.wasm"}},
	}
	resolved := map[string]string{"add": "/tmp/add/out.wasm"}

	client := &fakeAPIClient{
		app:         &api.App{AppID: "app-1", Status: api.StatusPending},
		appStatuses: []api.AppStatus{api.StatusPending, api.StatusActive},
	}
	exec := &fakeExecutor{}

	result, err := Run(context.Background(), m, t.TempDir(), resolved, client, exec, instantClock{}, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "app-1", result.AppID)
	assert.True(t, client.authConfiged, "private access control must update auth config")
	assert.Equal(t, []string{"add"}, client.repoCalls)
}

func TestRunPropagatesPushFailure(t *testing.T) {
	m := &manifest.Manifest{
		Project:   manifest.ProjectSpec{Name: "myapp"},
		Component: map[string]manifest.ComponentSpec{"add": {Path: "add", Wasm: "add/out.wasm"}},
	}
	resolved := map[string]string{"add": "/tmp/add/out.wasm"}

	client := &fakeAPIClient{app: &api.App{AppID: "app-1", Status: api.StatusActive}}
	exec := &fakeExecutor{failPush: true}

	_, err := Run(context.Background(), m, t.TempDir(), resolved, client, exec, instantClock{}, nil, Options{})
	require.Error(t, err)
}

func TestPollUntilActiveFailsOnAppFailedStatus(t *testing.T) {
	client := &fakeAPIClient{appStatuses: []api.AppStatus{api.StatusFailed}}
	_, err := pollUntilActive(context.Background(), client, "app-1", instantClock{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deployment failed")
}

func TestPollUntilActiveFailsOnDeletedDuringDeploy(t *testing.T) {
	client := &fakeAPIClient{appStatuses: []api.AppStatus{api.StatusDeleted}}
	_, err := pollUntilActive(context.Background(), client, "app-1", instantClock{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deleted")
}
