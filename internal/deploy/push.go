package deploy

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fastertools/ftl-cli/internal/api"
)

// pushComponents implements spec.md §4.4 step 4: a semaphore-bounded
// parallel push, fail-fast mirroring §4.2 (C9). For each component:
// create-or-return its repository, push `<repo>:<version>` via wkg, then
// record a ToolsItem.
func pushComponents(ctx context.Context, infos []ComponentInfo, client APIClient, exec CommandExecutor,
	clock Clock, reporter Reporter, permits int) ([]api.ToolsItem, error) {

	sem := make(chan struct{}, permits)
	var failed atomic.Bool
	tools := make([]api.ToolsItem, len(infos))
	errs := make([]error, len(infos))

	var wg sync.WaitGroup
	wg.Add(len(infos))

	for i, info := range infos {
		i, info := i, info
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			var line Line
			if reporter != nil {
				line = reporter.NewLine(info.Name, "Creating repository...")
			}

			if failed.Load() {
				if line != nil {
					line.Finish("→", "Skipped due to error")
				}
				return
			}

			start := clock.Now()

			repo, err := client.CreateRepository(ctx, info.Name)
			if err != nil {
				failed.CompareAndSwap(false, true)
				errs[i] = fmt.Errorf("failed to create repository for %q: %w", info.Name, err)
				if line != nil {
					line.Finish("✗", errs[i].Error())
				}
				return
			}

			if line != nil {
				line.SetMessage(fmt.Sprintf("Pushing v%s...", info.Version))
			}

			tag := fmt.Sprintf("%s:%s", repo.RepositoryURI, info.Version)
			if err := exec.Run(ctx, "wkg", []string{"oci", "push", tag, info.SourcePath}, ""); err != nil {
				failed.CompareAndSwap(false, true)
				errs[i] = fmt.Errorf("failed to push %q: %w", info.Name, err)
				if line != nil {
					line.Finish("✗", errs[i].Error())
				}
				return
			}

			tools[i] = api.ToolsItem{Name: info.Name, Tag: info.Version, AllowedHosts: info.AllowedHosts}
			if line != nil {
				line.Finish("✓", fmt.Sprintf("Pushed successfully in %.1fs", time.Since(start).Seconds()))
			}
		}()
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return tools, nil
}

// pollUntilActive implements spec.md §4.4 step 8's fixed poll FSM: 5s
// intervals, up to 60 iterations (5 minutes total).
func pollUntilActive(ctx context.Context, client APIClient, appID string, clock Clock, plan map[string]string) (*Result, error) {
	const maxAttempts = 60
	const interval = 5 * time.Second

	for attempt := 0; attempt < maxAttempts; attempt++ {
		app, err := client.GetApp(ctx, appID)
		if err != nil {
			return nil, fmt.Errorf("failed to get app status: %w", err)
		}

		switch app.Status {
		case api.StatusActive:
			return &Result{AppID: appID, ProviderURL: app.ProviderURL, Plan: plan}, nil
		case api.StatusFailed:
			return nil, fmt.Errorf("deployment failed: %s", app.ProviderError)
		case api.StatusDeleted, api.StatusDeleting:
			return nil, fmt.Errorf("app was deleted during deployment")
		case api.StatusPending, api.StatusCreating:
			// continue polling
		}

		clock.Sleep(ctx, interval)
	}

	return nil, fmt.Errorf("deployment timeout after 5 minutes")
}
