// Package tasks implements task discovery, lifecycle hooks and the
// bounded-concurrency scheduler that drives user task modules against a
// shared browser.
package tasks

import (
	"context"
	"time"

	"github.com/entrhq/webshot/pkg/browser"
	"github.com/entrhq/webshot/pkg/config"
	"github.com/entrhq/webshot/pkg/logging"
	"github.com/entrhq/webshot/pkg/screenshot"
)

// Func is the callable shape every task and hook module resolves to: a
// single function taking the invocation context, possibly failing.
type Func func(ctx context.Context, inv *Invocation) error

// Loader resolves an on-disk module path into a callable Func. It is
// the module-loading injection point: the default implementation
// evaluates JavaScript, tests substitute plain Go functions.
type Loader interface {
	Load(path string) (Func, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(path string) (Func, error)

// Load implements Loader.
func (f LoaderFunc) Load(path string) (Func, error) {
	return f(path)
}

// Invocation carries the fixed fields handed to a task or hook.
type Invocation struct {
	Profile *config.Profile
	Browser browser.Browser
	Logging *logging.Factory

	// Sleep suspends the calling task.
	Sleep func(d time.Duration)

	// Screenshot is the per-task capture function. Nil for hooks.
	Screenshot screenshot.CaptureFunc

	// Register stores a key/value pair for propagation to every task.
	// Non-nil only while a beforeAll hook runs.
	Register func(name string, value interface{})

	// Args holds the values a beforeAll hook registered. Read-only:
	// the map is frozen before any task starts and shared by
	// reference across all workers.
	Args map[string]interface{}
}
