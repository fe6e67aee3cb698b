package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/fastertools/ftl-cli/internal/manifest"
)

const gitignoreContents = "target/\ndist/\nbuild/\nnode_modules/\n*.wasm\n.spin/\n"

// newInitCmd implements `ftl init [NAME] [--here]` (spec.md §6).
func newInitCmd() *cobra.Command {
	var here bool

	cmd := &cobra.Command{
		Use:   "init [NAME]",
		Short: "Initialize a new FTL project",
		Long:  `Initialize a new FTL project with a starter ftl.toml manifest.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) > 0 {
				name = args[0]
			} else if here {
				name = filepath.Base(mustGetwd())
			} else {
				return fmt.Errorf("project name is required unless --here is set")
			}

			if !manifest.ValidName(name) {
				os.Exit(2)
			}

			return runInit(name, here)
		},
	}

	cmd.Flags().BoolVar(&here, "here", false, "initialize in the current directory instead of creating a new one")
	return cmd
}

func mustGetwd() string {
	dir, err := os.Getwd()
	if err != nil {
		return "project"
	}
	return dir
}

func runInit(name string, here bool) error {
	projectDir := name
	if here {
		projectDir = "."
	} else if _, err := os.Stat(projectDir); err == nil {
		Fatal("directory %s already exists", projectDir)
	}

	if err := os.MkdirAll(projectDir, 0750); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	manifestPath := filepath.Join(projectDir, "ftl.toml")
	if _, err := os.Stat(manifestPath); err == nil {
		Fatal("%s already exists", manifestPath)
	}

	m := &manifest.Manifest{
		Project: manifest.ProjectSpec{
			Name:          name,
			Version:       "0.1.0",
			AccessControl: manifest.AccessPublic,
		},
	}

	body, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to render ftl.toml: %w", err)
	}

	if err := os.WriteFile(manifestPath, body, 0644); err != nil {
		return fmt.Errorf("failed to write ftl.toml: %w", err)
	}
	Success("Created %s", manifestPath)

	gitignorePath := filepath.Join(projectDir, ".gitignore")
	if err := os.WriteFile(gitignorePath, []byte(gitignoreContents), 0644); err != nil {
		return fmt.Errorf("failed to write .gitignore: %w", err)
	}
	Success("Created %s", gitignorePath)

	fmt.Println()
	Info("Next steps:")
	if !here {
		fmt.Printf("  1. cd %s\n", name)
		fmt.Println("  2. Add a [component.<name>] table to ftl.toml")
		fmt.Println("  3. ftl build")
		fmt.Println("  4. ftl up")
	} else {
		fmt.Println("  1. Add a [component.<name>] table to ftl.toml")
		fmt.Println("  2. ftl build")
		fmt.Println("  3. ftl up")
	}

	return nil
}
