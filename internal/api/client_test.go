package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct{}

func (fakeTokens) GetToken(ctx context.Context) (string, error) { return "tok", nil }

func TestResolveOrCreateAppReturnsExistingApp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/apps", r.URL.Path)
		require.Equal(t, "myapp", r.URL.Query().Get("name"))
		w.Write([]byte(`[{"app_id":"abc","app_name":"myapp","status":"Active"}]`))
	}))
	defer srv.Close()

	c := New(fakeTokens{}, srv.URL)
	app, err := c.ResolveOrCreateApp(context.Background(), "myapp")
	require.NoError(t, err)
	assert.Equal(t, "abc", app.AppID)
	assert.Equal(t, StatusActive, app.Status)
}

func TestResolveOrCreateAppCreatesWhenMissing(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`[]`))
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"app_id":"new-id","app_name":"myapp","status":"Pending"}`))
		}
	}))
	defer srv.Close()

	c := New(fakeTokens{}, srv.URL)
	app, err := c.ResolveOrCreateApp(context.Background(), "myapp")
	require.NoError(t, err)
	assert.Equal(t, "new-id", app.AppID)
	assert.Equal(t, 2, calls)
}

func TestUpdateAuthConfigPostsIssuerAndAudience(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apps/app-1/auth-config", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(fakeTokens{}, srv.URL)
	err := c.UpdateAuthConfig(context.Background(), "app-1", AuthConfigRequest{JWTIssuer: "https://issuer.example"})
	require.NoError(t, err)
}

func TestCreateDeploymentReturnsDeployment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apps/app-1/deployments", r.URL.Path)
		w.Write([]byte(`{"deployment_id":"d-1","app_id":"app-1","status":"Pending"}`))
	}))
	defer srv.Close()

	c := New(fakeTokens{}, srv.URL)
	dep, err := c.CreateDeployment(context.Background(), "app-1", CreateDeploymentRequest{
		Tools: []ToolsItem{{Name: "add", Tag: "0.1.0"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "d-1", dep.DeploymentID)
}

func TestGetECRCredentialsDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/registry/ecr-token", r.URL.Path)
		w.Write([]byte(`{"authorization_token":"QVdTOnNlY3JldA==","registry_uri":"123.dkr.ecr.us-west-2.amazonaws.com"}`))
	}))
	defer srv.Close()

	c := New(fakeTokens{}, srv.URL)
	creds, err := c.GetECRCredentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "123.dkr.ecr.us-west-2.amazonaws.com", creds.RegistryURI)
}

func TestCreateRepositoryPassesToolName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/registry/repositories", r.URL.Path)
		w.Write([]byte(`{"repository_uri":"123.dkr.ecr.us-west-2.amazonaws.com/add"}`))
	}))
	defer srv.Close()

	c := New(fakeTokens{}, srv.URL)
	resp, err := c.CreateRepository(context.Background(), "add")
	require.NoError(t, err)
	assert.Equal(t, "123.dkr.ecr.us-west-2.amazonaws.com/add", resp.RepositoryURI)
}

func TestGetAppPropagatesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"not found"}`))
	}))
	defer srv.Close()

	c := New(fakeTokens{}, srv.URL)
	_, err := c.GetApp(context.Background(), "missing")
	require.Error(t, err)
}
