package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/entrhq/webshot/pkg/browser"
	"github.com/entrhq/webshot/pkg/config"
	"github.com/entrhq/webshot/pkg/logging"
	"github.com/entrhq/webshot/pkg/screenshot"
)

// RunOptions configure one scheduler run.
type RunOptions struct {
	// MaxConcurrency caps the number of workers. Values below 1 mean
	// strictly sequential execution; the effective level never exceeds
	// the task count.
	MaxConcurrency int

	// Args are the values a beforeAll hook registered. Merged into
	// every task's invocation context.
	Args map[string]interface{}
}

// Summary reports the outcome of a scheduler run.
type Summary struct {
	Total  int
	Failed int
}

// Scheduler runs a task batch against a shared browser using a bounded
// pool of workers draining one shared queue. A failing task is logged
// and skipped; it never aborts its siblings or the run.
type Scheduler struct {
	Loader  Loader
	Logging *logging.Factory
}

// RunAll executes every path in taskFilePaths exactly once and returns
// after all workers have drained the queue. The returned summary counts
// per-task failures; the error is reserved for scheduler-level faults
// and is nil even when every task failed.
func (s *Scheduler) RunAll(ctx context.Context, profile *config.Profile, b browser.Browser, taskFilePaths []string, opts RunOptions) (Summary, error) {
	log := s.Logging.Core()
	total := len(taskFilePaths)
	if total == 0 {
		return Summary{}, nil
	}

	workers := concurrencyFor(total, opts.MaxConcurrency)

	// Seeding a buffered channel and closing it gives each worker an
	// atomic pop: no path is delivered twice, draining order is
	// whatever the scheduler produces.
	queue := make(chan string, total)
	for _, path := range taskFilePaths {
		queue <- path
	}
	close(queue)

	var failed int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range queue {
				if err := s.runOne(ctx, profile, b, path, opts.Args); err != nil {
					atomic.AddInt64(&failed, 1)
					log.WithField("task", relativeTaskPath(profile, path)).
						Errorf("task failed: %+v", err)
				}
			}
		}()
	}
	wg.Wait()

	summary := Summary{Total: total, Failed: int(atomic.LoadInt64(&failed))}
	log.Infof("finished %d tasks, %d failed", summary.Total, summary.Failed)
	return summary, nil
}

// runOne loads and executes a single task module with a fresh
// per-task screenshot function. Panics from task code are converted to
// errors so one broken module cannot take the worker down.
func (s *Scheduler) runOne(ctx context.Context, profile *config.Profile, b browser.Browser, path string, args map[string]interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()

	fn, err := s.Loader.Load(path)
	if err != nil {
		return err
	}

	capture, err := screenshot.NewCaptureFunc(profile, path)
	if err != nil {
		return err
	}

	inv := &Invocation{
		Profile:    profile,
		Browser:    b,
		Logging:    s.Logging,
		Sleep:      time.Sleep,
		Screenshot: capture,
		Args:       args,
	}
	return fn(ctx, inv)
}

// concurrencyFor clamps the requested level to [1, taskCount].
func concurrencyFor(taskCount, requested int) int {
	if requested < 1 {
		requested = 1
	}
	if requested > taskCount {
		return taskCount
	}
	return requested
}

// relativeTaskPath identifies a task by its path inside the tasks
// directory, falling back to the absolute path when that fails.
func relativeTaskPath(profile *config.Profile, path string) string {
	rel, err := filepath.Rel(profile.TasksDirPath(), path)
	if err != nil {
		return path
	}
	return rel
}
