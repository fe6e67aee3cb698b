// Package deploy implements the deployment pipeline (spec.md §4.4, C10):
// push components to the registry, resolve the app, apply access control,
// and poll until the app is active.
package deploy

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fastertools/ftl-cli/internal/api"
	"github.com/fastertools/ftl-cli/internal/auth"
	"github.com/fastertools/ftl-cli/internal/manifest"
)

// ComponentInfo mirrors spec.md §3's Deployment Plan "ComponentInfo" tuple.
type ComponentInfo struct {
	Name         string
	SourcePath   string
	Version      string
	AllowedHosts []string
}

// BuildComponentInfos enumerates locally-sourced components from the
// project manifest (registry-sourced components are passed through
// unchanged per spec.md §4.4 step 1). resolvedPaths maps component name to
// its built .wasm file, the same mapping Transpile consumes.
func BuildComponentInfos(m *manifest.Manifest, projectRoot string, resolvedPaths map[string]string) []ComponentInfo {
	names := make([]string, 0, len(m.Component))
	for name := range m.Component {
		names = append(names, name)
	}
	sort.Strings(names)

	var infos []ComponentInfo
	for _, name := range names {
		c := m.Component[name]
		if c.IsRegistry() {
			continue
		}
		path, ok := resolvedPaths[name]
		if !ok {
			continue
		}
		infos = append(infos, ComponentInfo{
			Name:         name,
			SourcePath:   path,
			Version:      ExtractVersion(componentDir(projectRoot, c.Path)),
			AllowedHosts: c.AllowedOutboundHosts,
		})
	}
	return infos
}

func componentDir(projectRoot, componentPath string) string {
	if componentPath == "" {
		return projectRoot
	}
	return filepath.Join(projectRoot, componentPath)
}

// CommandExecutor runs an external registry tool with optional piped
// stdin, grounded on original_source's CommandExecutor trait
// (execute/execute_with_stdin).
type CommandExecutor interface {
	Run(ctx context.Context, name string, args []string, stdin string) error
	LooksInstalled(ctx context.Context, name string) bool
}

// Clock abstracts time for the poll loop's deterministic testing.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration)
}

// Reporter surfaces one status line per pushed component, matching C5's
// capability shape without importing it directly.
type Reporter interface {
	NewLine(prefix, initialMessage string) Line
}

type Line interface {
	SetMessage(msg string)
	Finish(symbol, msg string)
}

// APIClient is the subset of *api.Client the deploy pipeline calls,
// narrowed for dependency injection in tests.
type APIClient interface {
	GetECRCredentials(ctx context.Context) (*api.ECRCredentials, error)
	CreateRepository(ctx context.Context, toolName string) (*api.RepositoryResponse, error)
	ResolveOrCreateApp(ctx context.Context, name string) (*api.App, error)
	UpdateAuthConfig(ctx context.Context, appID string, req api.AuthConfigRequest) error
	CreateDeployment(ctx context.Context, appID string, req api.CreateDeploymentRequest) (*api.Deployment, error)
	GetApp(ctx context.Context, appID string) (*api.App, error)
}

// Options configures one Run invocation, sourced from `ftl deploy`'s flags
// (spec.md §6).
type Options struct {
	CLIVariables  map[string]string
	AccessControl string // overrides manifest.Project.AccessControl when non-empty
	JWTIssuer     string // overrides manifest.OAuth.Issuer when non-empty
	DryRun        bool
	PushPermits   int // defaults to 4 (spec.md §4.4 step 4)
}

// Result is returned on a successful deployment, and by a dry run, where
// only Plan is set.
type Result struct {
	AppID       string
	ProviderURL string
	Plan        map[string]string // redacted variable plan, always populated
}

// Run executes the deployment pipeline end to end.
func Run(ctx context.Context, m *manifest.Manifest, projectRoot string, resolvedPaths map[string]string,
	client APIClient, exec CommandExecutor, clock Clock, reporter Reporter, opts Options) (*Result, error) {

	infos := BuildComponentInfos(m, projectRoot, resolvedPaths)
	if len(infos) == 0 {
		return nil, fmt.Errorf("no locally-sourced components found to deploy")
	}

	accessControl := m.Project.AccessControl
	if opts.AccessControl != "" {
		accessControl = opts.AccessControl
	}
	issuer := ""
	if m.OAuth != nil {
		issuer = m.OAuth.Issuer
	}
	if opts.JWTIssuer != "" {
		issuer = opts.JWTIssuer
	}

	plan := mergeVariables(m, accessControl, issuer, opts.CLIVariables)
	redactedPlan := redactPlan(plan)

	if opts.DryRun {
		return &Result{Plan: redactedPlan}, nil
	}

	if err := loginToRegistry(ctx, client, exec); err != nil {
		return nil, err
	}

	if !exec.LooksInstalled(ctx, "wkg") {
		return nil, fmt.Errorf("wkg not found; install from https://github.com/bytecodealliance/wasm-pkg-tools")
	}

	tools, err := pushComponents(ctx, infos, client, exec, clock, reporter, permits(opts.PushPermits))
	if err != nil {
		return nil, err
	}

	app, err := client.ResolveOrCreateApp(ctx, m.Project.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve app: %w", err)
	}

	if accessControl == manifest.AccessPrivate {
		if err := client.UpdateAuthConfig(ctx, app.AppID, api.AuthConfigRequest{
			JWTIssuer:   issuer,
			JWTAudience: audienceOf(m),
		}); err != nil {
			return nil, fmt.Errorf("failed to apply auth config: %w", err)
		}
	}

	dep, err := client.CreateDeployment(ctx, app.AppID, api.CreateDeploymentRequest{
		Tools:     tools,
		Variables: plan,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create deployment: %w", err)
	}
	_ = dep

	return pollUntilActive(ctx, client, app.AppID, clock, redactedPlan)
}

func audienceOf(m *manifest.Manifest) string {
	if m.OAuth == nil {
		return ""
	}
	return m.OAuth.Audience
}

// mergeVariables implements spec.md §4.4 step 7's precedence, lowest to
// highest: manifest [variables] defaults, then access-control/oauth derived
// variables, then CLI --var overrides.
func mergeVariables(m *manifest.Manifest, accessControl, issuer string, cliVars map[string]string) map[string]string {
	out := make(map[string]string)

	for name, spec := range m.Variables {
		if spec.Default != nil {
			out[name] = *spec.Default
		}
	}

	out["auth_enabled"] = strconv.FormatBool(accessControl == manifest.AccessPrivate)

	if accessControl == manifest.AccessPrivate {
		out["mcp_provider_type"] = "jwt"
		if issuer != "" {
			out["mcp_jwt_issuer"] = issuer
		}
		if m.OAuth != nil && m.OAuth.Audience != "" {
			out["mcp_jwt_audience"] = m.OAuth.Audience
		}
	}

	for k, v := range cliVars {
		out[k] = v
	}
	return out
}

func redactPlan(plan map[string]string) map[string]string {
	redacted := make(map[string]string, len(plan))
	for k, v := range plan {
		redacted[k] = auth.RedactVariable(k, v)
	}
	return redacted
}

// loginToRegistry decodes the ECR authorization token (base64 of
// "AWS:password") and pipes the password to the registry tool's stdin-based
// login, matching original_source's docker_login exactly.
func loginToRegistry(ctx context.Context, client APIClient, exec CommandExecutor) error {
	creds, err := client.GetECRCredentials(ctx)
	if err != nil {
		return fmt.Errorf("failed to get registry credentials: %w", err)
	}

	decoded, err := base64.StdEncoding.DecodeString(creds.AuthorizationToken)
	if err != nil {
		return fmt.Errorf("failed to decode registry authorization token: %w", err)
	}
	parts := strings.SplitN(string(decoded), ":", 2)
	if len(parts) != 2 || parts[0] != "AWS" {
		return fmt.Errorf("invalid registry token format")
	}
	password := parts[1]

	args := []string{"login", "--username", "AWS", "--password-stdin", creds.RegistryURI}
	if err := exec.Run(ctx, "docker", args, password); err != nil {
		return fmt.Errorf("registry login failed: %w", err)
	}

	// wkg never reads Docker's credential store, so the docker login above
	// only covers a manual `docker push` fallback. Write wkg's own config
	// so the `wkg oci push` calls in pushComponents can authenticate.
	if err := configureWkgRegistryAuth(creds.RegistryURI, password); err != nil {
		return fmt.Errorf("failed to configure wkg registry auth: %w", err)
	}
	return nil
}

func permits(n int) int {
	if n <= 0 {
		return 4
	}
	return n
}
