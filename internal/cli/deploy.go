package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fastertools/ftl-cli/internal/api"
	"github.com/fastertools/ftl-cli/internal/auth"
	"github.com/fastertools/ftl-cli/internal/deploy"
	"github.com/fastertools/ftl-cli/internal/manifest"
	"github.com/fastertools/ftl-cli/internal/progress"
	"github.com/fastertools/ftl-cli/pkg/oci"
)

// newDeployCmd implements `ftl deploy [--var K=V]* [--access-control
// public|private] [--jwt-issuer U] [--dry-run] [--yes]` (spec.md §6, §4.4,
// C10): pushes every local component to the registry, resolves the app,
// applies access control, and polls until it is active.
func newDeployCmd() *cobra.Command {
	var cliVars map[string]string
	var accessControl string
	var jwtIssuer string
	var dryRun bool
	var yes bool
	var path string

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the application to the FTL platform",
		Long:  `Push every local component to the registry and deploy the application, polling until it is active.`,
		Example: `  ftl deploy
  ftl deploy --access-control private --jwt-issuer https://auth.example.com
  ftl deploy --var api_key=secret --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(context.Background(), deployOptions{
				Path:          path,
				CLIVariables:  cliVars,
				AccessControl: accessControl,
				JWTIssuer:     jwtIssuer,
				DryRun:        dryRun,
				Yes:           yes,
			})
		},
	}

	cmd.Flags().StringToStringVar(&cliVars, "var", nil, "set a deployment variable (can be used multiple times)")
	cmd.Flags().StringVar(&accessControl, "access-control", "", "access control mode (public, private), overrides the manifest")
	cmd.Flags().StringVar(&jwtIssuer, "jwt-issuer", "", "JWT issuer URL, overrides the manifest's [oauth] table")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the resolved deployment plan without deploying")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().StringVar(&path, "path", "", "project root (defaults to the current directory)")

	return cmd
}

type deployOptions struct {
	Path          string
	CLIVariables  map[string]string
	AccessControl string
	JWTIssuer     string
	DryRun        bool
	Yes           bool
}

func runDeploy(ctx context.Context, opts deployOptions) error {
	m, projectRoot, err := loadManifest(opts.Path)
	if err != nil {
		return err
	}

	resolvedPaths := resolveWasmPaths(m)
	if err := checkRegistryComponents(m); err != nil {
		return err
	}

	pipelineOpts := deploy.Options{
		CLIVariables:  opts.CLIVariables,
		AccessControl: opts.AccessControl,
		JWTIssuer:     opts.JWTIssuer,
		DryRun:        opts.DryRun,
	}

	if opts.DryRun {
		result, err := deploy.Run(ctx, m, projectRoot, resolvedPaths, nil, nil, nil, nil, pipelineOpts)
		if err != nil {
			return err
		}
		displayDeployPlan(m.Project.Name, result.Plan)
		return nil
	}

	store, err := auth.NewKeyringStore()
	if err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}
	manager := auth.NewManager(store, nil)

	if _, err := manager.GetOrRefreshToken(ctx); err != nil {
		return fmt.Errorf("not logged in to FTL; run %q first", "ftl login")
	}

	client := api.New(manager, "")

	if !opts.Yes {
		color.Cyan("About to deploy %q", m.Project.Name)
		if !promptConfirm("Continue?", true) {
			return fmt.Errorf("deployment cancelled")
		}
	}

	reporter := deploy.NewProgressReporter(progress.NewReporter())
	result, err := deploy.Run(ctx, m, projectRoot, resolvedPaths, client, deploy.SystemExecutor{}, deploy.SystemClock{}, reporter, pipelineOpts)
	if err != nil {
		return fmt.Errorf("deploy failed: %w", err)
	}

	Success("Deployed %q", m.Project.Name)
	if result.ProviderURL != "" {
		fmt.Printf("  URL: %s\n", result.ProviderURL)
	}
	return nil
}

// checkRegistryComponents confirms every registry-sourced component
// actually resolves before the local components are pushed, so a typo'd
// registry reference fails fast instead of surfacing only once the
// runtime manifest is assembled on the deployed host.
func checkRegistryComponents(m *manifest.Manifest) error {
	names := make([]string, 0, len(m.Component))
	for name := range m.Component {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		c := m.Component[name]
		if !c.IsRegistry() {
			continue
		}
		if _, err := oci.Inspect(c.Source.Registry, c.Source.Package, c.Source.Version); err != nil {
			return fmt.Errorf("registry component %q: %w", name, err)
		}
	}
	return nil
}

func displayDeployPlan(appName string, plan map[string]string) {
	fmt.Println()
	color.Cyan("Deployment plan for %q", appName)
	if len(plan) == 0 {
		fmt.Println("  (no variables)")
	}

	names := make([]string, 0, len(plan))
	for k := range plan {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Printf("  %s = %s\n", k, plan[k])
	}
	fmt.Println()
	fmt.Println("Dry run complete; no changes were made.")
}

func promptConfirm(message string, defaultYes bool) bool {
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultYes,
	}

	var result bool
	if err := survey.AskOne(prompt, &result); err != nil {
		return false
	}
	return result
}
