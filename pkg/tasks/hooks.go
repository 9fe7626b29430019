package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/webshot/pkg/browser"
	"github.com/entrhq/webshot/pkg/config"
	"github.com/entrhq/webshot/pkg/logging"
)

// UnknownHookKeyError reports a lifecycle key this runner does not
// recognize. It signals a programming error in the caller, not bad user
// data, and propagates uncaught.
type UnknownHookKeyError struct {
	Key string
}

func (e *UnknownHookKeyError) Error() string {
	return fmt.Sprintf("unknown hook key %q", e.Key)
}

// HookRunner loads and executes at most one lifecycle script per
// recognized key. Unlike tasks, hooks are not failure-isolated: a hook
// error aborts the whole run.
type HookRunner struct {
	Loader  Loader
	Logging *logging.Factory
}

// Run executes the profile's hook for key, if one is declared, and
// returns the arguments it registered. A profile without a hook for key
// is a no-op returning an empty map: no module is loaded, no side
// effects occur. Registration is wired only when allowRegistration is
// true; calls made after the hook function returns are discarded.
func (h *HookRunner) Run(ctx context.Context, profile *config.Profile, b browser.Browser, key config.HookKey, allowRegistration bool) (map[string]interface{}, error) {
	if !config.IsValidHookKey(key) {
		return nil, &UnknownHookKeyError{Key: string(key)}
	}

	registered := make(map[string]interface{})

	path, ok := profile.HookPath(key)
	if !ok {
		return registered, nil
	}

	fn, err := h.Loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s hook: %w", key, err)
	}

	inv := &Invocation{
		Profile: profile,
		Browser: b,
		Logging: h.Logging,
		Sleep:   time.Sleep,
	}

	// The hook itself runs on one goroutine, but the register closure
	// may leak into timers or be called after return; the mutex and the
	// frozen flag keep the returned map stable either way.
	var mu sync.Mutex
	frozen := false
	if allowRegistration {
		inv.Register = func(name string, value interface{}) {
			mu.Lock()
			defer mu.Unlock()
			if !frozen {
				registered[name] = value
			}
		}
	}

	h.Logging.Core().WithField("hook", string(key)).Debug("running hook")
	if err := fn(ctx, inv); err != nil {
		return nil, fmt.Errorf("%s hook failed: %w", key, err)
	}

	mu.Lock()
	frozen = true
	snapshot := make(map[string]interface{}, len(registered))
	for k, v := range registered {
		snapshot[k] = v
	}
	mu.Unlock()

	return snapshot, nil
}
