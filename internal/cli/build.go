package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastertools/ftl-cli/internal/build"
	"github.com/fastertools/ftl-cli/internal/manifest"
	"github.com/fastertools/ftl-cli/internal/progress"
)

// newBuildCmd implements `ftl build [--release] [--path P]` (spec.md §6,
// C9): runs every local component's build command in parallel.
func newBuildCmd() *cobra.Command {
	var release bool
	var path string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build all local components",
		Long:  `Build every locally-sourced component's build command in parallel.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), path, release)
		},
	}

	cmd.Flags().BoolVar(&release, "release", false, "build components in release mode")
	cmd.Flags().StringVar(&path, "path", "", "project root (defaults to the current directory)")

	return cmd
}

func runBuild(ctx context.Context, path string, release bool) error {
	m, projectRoot, err := loadManifest(path)
	if err != nil {
		return err
	}

	tasks := make([]build.Task, 0, len(m.Component))
	for name, c := range m.Component {
		if c.IsRegistry() || c.Build == nil {
			continue
		}
		tasks = append(tasks, build.Task{Name: name, Command: c.Build.Command, Workdir: c.Build.Workdir})
	}

	if len(tasks) == 0 {
		Info("No local components to build")
		return nil
	}

	reporter := build.NewProgressReporter(progress.NewReporter())
	if err := build.Run(ctx, tasks, projectRoot, release, reporter); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	Success("Build complete")
	return nil
}

// loadManifest locates and parses ftl.toml starting from path (or the
// current directory when empty), returning the manifest and the directory
// it was found in.
func loadManifest(path string) (*manifest.Manifest, string, error) {
	if path != "" {
		m, err := manifest.Load(path + "/ftl.toml")
		if err != nil {
			return nil, "", err
		}
		return m, path, nil
	}

	m, err := manifest.LoadAuto()
	if err != nil {
		return nil, "", err
	}
	return m, ".", nil
}
