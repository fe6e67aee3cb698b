// Package build runs a project's component build commands concurrently,
// bounded by a configurable worker limit, failing fast on the first error
// (spec.md §4.2).
package build

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Task describes one component's build step.
type Task struct {
	Name    string
	Command string
	Workdir string
}

// Line is one task's status line. *progress.Line satisfies this
// structurally, so callers pass a real Reporter in production and a fake
// in tests without either package importing the other.
type Line interface {
	SetMessage(msg string)
	Finish(symbol, msg string)
}

// Reporter creates a new status line per task.
type Reporter interface {
	NewLine(prefix, initialMessage string) Line
}

// MaxConcurrentBuildsEnv overrides the worker count; unset or invalid
// falls back to runtime.NumCPU().
const MaxConcurrentBuildsEnv = "FTL_MAX_CONCURRENT_BUILDS"

func maxWorkers(taskCount int) int {
	limit := runtime.NumCPU()
	if v := os.Getenv(MaxConcurrentBuildsEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if taskCount < limit {
		return taskCount
	}
	return limit
}

// Run builds every task concurrently, bounded by
// min(len(tasks), $FTL_MAX_CONCURRENT_BUILDS ?? NumCPU). As soon as one
// task fails, every task that has not yet started printing reports
// "Skipped due to error" and returns without running its command; tasks
// already running are allowed to finish. Once all goroutines have settled,
// Run returns the error of the task that recorded its failure first, which
// is not necessarily the earliest task in the slice.
func Run(ctx context.Context, tasks []Task, projectRoot string, release bool, reporter Reporter) error {
	if len(tasks) == 0 {
		return nil
	}

	workers := maxWorkers(len(tasks))
	sem := make(chan struct{}, workers)

	// firstErr holds the error of whichever task's CAS wins the race to
	// set it, not whichever task happens to sit earliest in the slice.
	var firstErr atomic.Pointer[error]

	var wg sync.WaitGroup
	wg.Add(len(tasks))

	for _, task := range tasks {
		task := task
		go func() {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			line := reporter.NewLine(task.Name, "Starting build...")

			if firstErr.Load() != nil {
				line.Finish("→", "Skipped due to error")
				return
			}

			start := time.Now()
			line.SetMessage("Building...")
			err := runOne(ctx, task, projectRoot, release)
			if err != nil {
				wrapped := fmt.Errorf("component %q build failed: %w", task.Name, err)
				firstErr.CompareAndSwap(nil, &wrapped)
				line.Finish("✗", fmt.Sprintf("Build failed: %v", err))
				return
			}

			line.Finish("✓", fmt.Sprintf("Built in %.1fs", time.Since(start).Seconds()))
		}()
	}

	wg.Wait()

	if p := firstErr.Load(); p != nil {
		return *p
	}
	return nil
}

func runOne(ctx context.Context, task Task, projectRoot string, release bool) error {
	command := task.Command
	if release {
		command = prepareReleaseCommand(command)
	}

	dir := projectRoot
	if task.Workdir != "" {
		dir = filepath.Join(projectRoot, task.Workdir)
	}

	shell, flag := "sh", "-c"
	if runtime.GOOS == "windows" {
		shell, flag = "cmd", "/C"
	}

	cmd := exec.CommandContext(ctx, shell, flag, command)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// prepareReleaseCommand rewrites a build command to request a release
// build, matching spec.md §8 property 3 exactly: `cargo build` gains
// `--release` unless already present; other commands (npm, etc.) are left
// untouched since they manage their own release mode.
func prepareReleaseCommand(command string) string {
	if strings.Contains(command, "--release") {
		return command
	}
	if strings.HasPrefix(command, "cargo build") {
		return strings.Replace(command, "cargo build", "cargo build --release", 1)
	}
	return command
}
