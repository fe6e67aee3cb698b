package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fastertools/ftl-cli/internal/auth"
	"github.com/fastertools/ftl-cli/internal/config"
)

// newLoginCmd implements `ftl login` (spec.md §6): OAuth device flow
// authentication against the platform's AuthKit domain.
func newLoginCmd() *cobra.Command {
	var noBrowser bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the FTL platform",
		Long:  `Authenticate with the FTL platform using the OAuth device code flow.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := auth.NewKeyringStore()
			if err != nil {
				return fmt.Errorf("failed to initialize credential store: %w", err)
			}

			manager := auth.NewManager(store, &auth.LoginConfig{NoBrowser: noBrowser})

			if status := manager.Status(); status.LoggedIn && !status.NeedsRefresh {
				color.Green("✓ Already logged in")
				return nil
			}

			ctx, cancel := context.WithTimeout(context.Background(), auth.LoginTimeout)
			defer cancel()

			deviceAuth, err := manager.StartDeviceFlow(ctx)
			if err != nil {
				return fmt.Errorf("failed to start authentication: %w", err)
			}

			fmt.Println("To complete login, visit:")
			color.Cyan("  %s", deviceAuth.VerificationURIComplete)
			fmt.Println("Or enter this code manually:")
			color.Yellow("  %s", deviceAuth.UserCode)
			fmt.Println()

			creds, err := manager.CompleteDeviceFlow(ctx, deviceAuth)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			color.Green("✓ Successfully logged in")
			if creds.ExpiresAt != nil {
				duration := time.Until(*creds.ExpiresAt)
				fmt.Printf("  Access token valid for %dh %dm\n", int(duration.Hours()), int(duration.Minutes())%60)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "don't attempt to open a browser automatically")
	return cmd
}

// newLogoutCmd implements `ftl logout` (spec.md §6): idempotent credential
// removal, always exiting 0.
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of the FTL platform",
		Long:  `Remove stored authentication credentials.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := auth.NewKeyringStore()
			if err != nil {
				return fmt.Errorf("failed to initialize credential store: %w", err)
			}

			manager := auth.NewManager(store, nil)
			if err := manager.Logout(); err != nil {
				color.Yellow("⚠ Not logged in")
				return nil
			}

			if cfg, err := config.Load(); err == nil {
				_ = cfg.ClearCurrentUser()
			}

			color.Green("✓ Successfully logged out")
			return nil
		},
	}
}

// newAuthCmd implements `ftl auth` (spec.md §6): displays the current
// authentication status, with no subcommands.
func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Show authentication status",
		Long:  `Display current authentication status and token validity.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := auth.NewKeyringStore()
			if err != nil {
				return fmt.Errorf("failed to initialize credential store: %w", err)
			}

			manager := auth.NewManager(store, nil)
			status := manager.Status()

			if !status.LoggedIn {
				fmt.Println("Not logged in")
				fmt.Printf("Run %s to authenticate\n", color.CyanString("ftl login"))
				return nil
			}

			color.Green("✓ Logged in")
			if cfg, err := config.Load(); err == nil {
				if user := cfg.GetCurrentUser(); user != nil && user.Email != "" {
					fmt.Printf("  as %s\n", color.CyanString(user.Email))
				}
			}

			if status.Credentials != nil && status.Credentials.ExpiresAt != nil {
				if status.Credentials.IsExpired() {
					color.Yellow("  Access token expired (will refresh on next use)")
				} else {
					duration := time.Until(*status.Credentials.ExpiresAt)
					fmt.Printf("  Access token valid for %dh %dm\n", int(duration.Hours()), int(duration.Minutes())%60)
				}
			}

			return nil
		},
	}
}
