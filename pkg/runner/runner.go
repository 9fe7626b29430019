// Package runner orchestrates a full run: task discovery, the
// beforeAll hook, the concurrent task batch and the afterAll hook.
package runner

import (
	"context"
	"fmt"

	"github.com/entrhq/webshot/pkg/browser"
	"github.com/entrhq/webshot/pkg/config"
	"github.com/entrhq/webshot/pkg/logging"
	"github.com/entrhq/webshot/pkg/tasks"
)

// Options configure one run.
type Options struct {
	Profile *config.Profile
	Logging *logging.Factory
	Loader  tasks.Loader

	// Launch starts the browser. It is called only after discovery
	// succeeds, so a run with no tasks never launches one.
	Launch func() (browser.Browser, error)

	// Patterns are task file globs relative to the profile's tasks
	// directory. Empty means every file.
	Patterns []string

	// MaxConcurrency bounds the worker pool. Below 1 means sequential.
	MaxConcurrency int
}

// Run drives a profile through discovery, hooks and the task batch.
//
// Discovery and hook errors abort the run and propagate; task failures
// are isolated inside the scheduler and only show up in the summary.
// beforeAll completes before any task starts, and every task has been
// attempted before afterAll runs.
func Run(ctx context.Context, opts Options) (tasks.Summary, error) {
	log := opts.Logging.Core()

	files, err := tasks.Find(opts.Profile, opts.Patterns)
	if err != nil {
		return tasks.Summary{}, err
	}
	log.WithField("profile", opts.Profile.Name()).Infof("discovered %d tasks", len(files))

	b, err := opts.Launch()
	if err != nil {
		return tasks.Summary{}, fmt.Errorf("launching browser: %w", err)
	}
	defer func() {
		if closeErr := b.Close(); closeErr != nil {
			log.Warnf("closing browser: %v", closeErr)
		}
	}()

	hooks := &tasks.HookRunner{Loader: opts.Loader, Logging: opts.Logging}

	args, err := hooks.Run(ctx, opts.Profile, b, config.HookBeforeAll, true)
	if err != nil {
		return tasks.Summary{}, err
	}

	scheduler := &tasks.Scheduler{Loader: opts.Loader, Logging: opts.Logging}
	summary, err := scheduler.RunAll(ctx, opts.Profile, b, files, tasks.RunOptions{
		MaxConcurrency: opts.MaxConcurrency,
		Args:           args,
	})
	if err != nil {
		return summary, err
	}

	// afterAll cannot register arguments; anything it registers is
	// discarded.
	if _, err := hooks.Run(ctx, opts.Profile, b, config.HookAfterAll, false); err != nil {
		return summary, err
	}

	return summary, nil
}
