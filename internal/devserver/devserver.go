// Package devserver composes the build engine (C9), process supervisor
// (C3), and file watcher (C4) into the `ftl up` dev-server loop
// (spec.md §4.5, C11). Grounded directly on
// original_source/src/commands/up.rs's run_normal/run_with_watch, not the
// teacher Go CLI's internal/cli/up.go: the teacher delegates watching
// entirely to the external `spin watch` binary, but spec.md requires FTL
// to own the watch loop itself (see DESIGN.md).
package devserver

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fastertools/ftl-cli/internal/build"
	"github.com/fastertools/ftl-cli/internal/manifest"
	"github.com/fastertools/ftl-cli/internal/network"
	"github.com/fastertools/ftl-cli/internal/process"
	"github.com/fastertools/ftl-cli/internal/watch"
)

// DefaultHostBinary is the WASM host executable `up` shells out to.
const DefaultHostBinary = "spin"

// settleDelay lets the OS release the listening port between a terminated
// host and its respawn (spec.md §4.5 watch mode: "sleep 1s").
const settleDelay = time.Second

// Config configures one `ftl up` invocation.
type Config struct {
	ProjectRoot string
	Port        int
	Build       bool
	Watch       bool
	Clear       bool
	LogDir      string
	HostBinary  string // defaults to DefaultHostBinary
	Stdout      io.Writer
	Stderr      io.Writer
}

func (c Config) hostBinary() string {
	if c.HostBinary != "" {
		return c.HostBinary
	}
	return DefaultHostBinary
}

func (c Config) listenAddr() string {
	return fmt.Sprintf("127.0.0.1:%d", c.Port)
}

// println writes a status line, defaulting to os.Stdout.
func (c Config) println(a ...interface{}) {
	w := c.Stdout
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintln(w, a...)
}

// BuildTasks derives the parallel-build task list from the project
// manifest's local components.
func BuildTasks(m *manifest.Manifest) []build.Task {
	var tasks []build.Task
	for name, c := range m.Component {
		if c.IsRegistry() || c.Build == nil {
			continue
		}
		tasks = append(tasks, build.Task{Name: name, Command: c.Build.Command, Workdir: c.Build.Workdir})
	}
	return tasks
}

func runBuild(ctx context.Context, cfg Config, m *manifest.Manifest, reporter build.Reporter) error {
	tasks := BuildTasks(m)
	return build.Run(ctx, tasks, cfg.ProjectRoot, false, reporter)
}

func hostArgs(runtimeManifestPath, listenAddr, logDir string) []string {
	args := []string{"up", "-f", runtimeManifestPath, "--listen", listenAddr}
	if logDir != "" {
		args = append(args, "--log-dir", logDir)
	}
	return args
}

func spawnHost(ctx context.Context, cfg Config, runtimeManifestPath string) (*process.Process, error) {
	if !network.IsPortAvailable(cfg.Port) {
		return nil, fmt.Errorf("port %d is already in use", cfg.Port)
	}

	stdout, stderr := cfg.Stdout, cfg.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	args := hostArgs(runtimeManifestPath, cfg.listenAddr(), cfg.LogDir)
	return process.Spawn(ctx, cfg.hostBinary(), args, cfg.ProjectRoot, stdout, stderr)
}

// Run executes the dev-server loop. interrupt receives a value (or closes)
// on Ctrl+C; callers wire this to signal.Notify at the command layer so
// devserver stays free of os/signal itself.
func Run(ctx context.Context, cfg Config, m *manifest.Manifest, resolvedPaths map[string]string,
	reporter build.Reporter, interrupt <-chan struct{}) error {

	if cfg.Watch {
		return runWatch(ctx, cfg, m, resolvedPaths, reporter, interrupt)
	}
	return runNormal(ctx, cfg, m, resolvedPaths, reporter, interrupt)
}

func runNormal(ctx context.Context, cfg Config, m *manifest.Manifest, resolvedPaths map[string]string,
	reporter build.Reporter, interrupt <-chan struct{}) error {

	if cfg.Build {
		cfg.println("→ Building project before starting server...")
		if err := runBuild(ctx, cfg, m, reporter); err != nil {
			return err
		}
	}

	runtimePath, cleanup, err := manifest.EnsureRuntimeManifest(m, resolvedPaths, cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("failed to generate runtime manifest: %w", err)
	}
	defer cleanup()

	cfg.println("→ Starting server...")
	cfg.println(fmt.Sprintf("Server will start at http://%s", cfg.listenAddr()))
	cfg.println("Press Ctrl+C to stop")

	proc, err := spawnHost(ctx, cfg, runtimePath)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	select {
	case <-interrupt:
		cfg.println("Stopping server...")
		_ = proc.Terminate(5 * time.Second)
		return nil
	case err := <-proc.Done():
		if err != nil {
			return fmt.Errorf("server exited with error: %w", err)
		}
		return nil
	}
}

func runWatch(ctx context.Context, cfg Config, m *manifest.Manifest, resolvedPaths map[string]string,
	reporter build.Reporter, interrupt <-chan struct{}) error {

	cfg.println("→ Starting development server with auto-rebuild...")
	cfg.println("Watching for file changes")
	cfg.println(fmt.Sprintf("Server will start at http://%s", cfg.listenAddr()))
	cfg.println("Press Ctrl+C to stop")

	cfg.println("→ Running initial build...")
	if err := runBuild(ctx, cfg, m, reporter); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	runtimePath, cleanup, err := manifest.EnsureRuntimeManifest(m, resolvedPaths, cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("failed to generate runtime manifest: %w", err)
	}
	defer cleanup()

	proc, err := spawnHost(ctx, cfg, runtimePath)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	watcher, err := watch.New(cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer watcher.Close()

	running := true
	for {
		var done <-chan error
		if running {
			done = proc.Done()
		}

		select {
		case <-interrupt:
			if running {
				_ = proc.Terminate(5 * time.Second)
			}
			return nil

		case err := <-done:
			if err != nil {
				return fmt.Errorf("server exited with error: %w", err)
			}
			return nil

		case _, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if cfg.Clear {
				clearScreen(cfg)
			}
			if running {
				_ = proc.Terminate(5 * time.Second)
				running = false
			}

			time.Sleep(settleDelay)

			// On a failed rebuild, print the error and wait for the next
			// change; the host stays down until a successful rebuild
			// (spec.md §4.5 watch mode).
			if err := runBuild(ctx, cfg, m, reporter); err != nil {
				cfg.println(fmt.Sprintf("Build failed: %v", err))
				continue
			}

			proc, err = spawnHost(ctx, cfg, runtimePath)
			if err != nil {
				return fmt.Errorf("failed to respawn server after rebuild: %w", err)
			}
			running = true
		}
	}
}

func clearScreen(cfg Config) {
	w := cfg.Stdout
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprint(w, "\033[H\033[2J")
}
