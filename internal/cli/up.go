package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fastertools/ftl-cli/internal/build"
	"github.com/fastertools/ftl-cli/internal/devserver"
	"github.com/fastertools/ftl-cli/internal/progress"
)

const defaultDevServerPort = 3000

// newUpCmd implements `ftl up [--port N] [--build] [--watch] [--clear]
// [--log-dir D] [--path P]` (spec.md §6, §4.5, C11).
func newUpCmd() *cobra.Command {
	var port int
	var doBuild bool
	var watch bool
	var clear bool
	var logDir string
	var path string

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Run the FTL application locally",
		Long:  `Run the FTL application locally, optionally rebuilding and watching for changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, projectRoot, err := loadManifest(path)
			if err != nil {
				return err
			}

			// ctx governs process spawning only; interrupt delivery is a
			// separate signal so a graceful Terminate() isn't raced by
			// exec.CommandContext's own SIGKILL-on-cancel behavior.
			sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			interrupt := make(chan struct{}, 1)
			go func() {
				<-sigCtx.Done()
				interrupt <- struct{}{}
			}()

			cfg := devserver.Config{
				ProjectRoot: projectRoot,
				Port:        port,
				Build:       doBuild,
				Watch:       watch,
				Clear:       clear,
				LogDir:      logDir,
			}

			return devserver.Run(context.Background(), cfg, m, resolveWasmPaths(m), build.NewProgressReporter(progress.NewReporter()), interrupt)
		},
	}

	cmd.Flags().IntVar(&port, "port", defaultDevServerPort, "port the application listens on")
	cmd.Flags().BoolVar(&doBuild, "build", false, "build components before starting")
	cmd.Flags().BoolVar(&watch, "watch", false, "watch for file changes and rebuild/restart automatically")
	cmd.Flags().BoolVar(&clear, "clear", false, "clear the screen on each rebuild in watch mode")
	cmd.Flags().StringVar(&logDir, "log-dir", "", "directory for component stdout/stderr logs")
	cmd.Flags().StringVar(&path, "path", "", "project root (defaults to the current directory)")

	return cmd
}
