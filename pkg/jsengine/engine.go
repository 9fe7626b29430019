// Package jsengine executes user task and hook modules with an
// embedded goja JavaScript interpreter. A module is CommonJS-lite: the
// file is evaluated with module/exports in scope and must leave a
// function on module.exports. Each invocation gets a fresh runtime, so
// tasks share nothing but the browser and the registered arguments.
package jsengine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dop251/goja"

	"github.com/entrhq/webshot/pkg/tasks"
)

// Loader loads JavaScript task modules. It implements tasks.Loader.
type Loader struct{}

// NewLoader returns the JavaScript module loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the module source. Evaluation is deferred to invocation
// time so every run of the task gets its own runtime and its own
// counter state.
func (l *Loader) Load(path string) (tasks.Func, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading task module: %w", err)
	}
	source := string(src)

	return func(_ context.Context, inv *tasks.Invocation) error {
		return runModule(path, source, inv)
	}, nil
}

// runModule evaluates the module in a fresh runtime and calls its
// exported function with the invocation context object.
func runModule(path, source string, inv *tasks.Invocation) error {
	vm := goja.New()

	if err := setupConsole(vm, inv); err != nil {
		return err
	}

	fn, err := compileModule(vm, path, source)
	if err != nil {
		return err
	}

	ctxObj, err := buildContext(vm, inv)
	if err != nil {
		return err
	}

	result, err := fn(goja.Undefined(), ctxObj)
	if err != nil {
		return normalizeException(err)
	}
	return settle(result)
}

// compileModule evaluates the source with module/exports bound and
// returns the exported function.
func compileModule(vm *goja.Runtime, path, source string) (goja.Callable, error) {
	module := vm.NewObject()
	exports := vm.NewObject()
	_ = module.Set("exports", exports)
	_ = vm.Set("module", module)
	_ = vm.Set("exports", exports)

	if _, err := vm.RunScript(path, source); err != nil {
		return nil, fmt.Errorf("evaluating module %s: %w", filepath.Base(path), normalizeException(err))
	}

	fn, ok := goja.AssertFunction(module.Get("exports"))
	if !ok {
		return nil, fmt.Errorf("module %s does not export a function", filepath.Base(path))
	}
	return fn, nil
}

// normalizeException turns a goja exception into a plain error carrying
// the JavaScript message and stack.
func normalizeException(err error) error {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return fmt.Errorf("%s", ex.String())
	}
	return err
}

// settle inspects the value a module function returned. Synchronous
// functions return plain values. An async function returns a promise;
// because every capability binding blocks, the promise is settled by
// the time the call returns, so a still-pending promise means the task
// awaited something the runner cannot drive.
func settle(v goja.Value) error {
	promise, ok := v.Export().(*goja.Promise)
	if !ok {
		return nil
	}
	switch promise.State() {
	case goja.PromiseStateRejected:
		return fmt.Errorf("task rejected: %s", promise.Result().String())
	case goja.PromiseStatePending:
		return errors.New("task returned a promise that never settled; tasks may only await context capabilities")
	default:
		return nil
	}
}
