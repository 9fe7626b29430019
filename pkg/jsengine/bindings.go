package jsengine

import (
	"errors"
	"fmt"
	"time"

	"github.com/dop251/goja"
	"github.com/sirupsen/logrus"

	"github.com/entrhq/webshot/pkg/browser"
	"github.com/entrhq/webshot/pkg/screenshot"
	"github.com/entrhq/webshot/pkg/tasks"
)

// nativeKey is the hidden slot on page/element wrappers holding the Go
// capture target, so ctx.screenshot(target, ...) can find its way back.
const nativeKey = "__native"

// buildContext assembles the single context object handed to the
// module function: the fixed fields first, then the registered
// arguments on top. Registered keys therefore shadow fixed fields, and
// existing task suites rely on that precedence.
func buildContext(vm *goja.Runtime, inv *tasks.Invocation) (*goja.Object, error) {
	obj := vm.NewObject()

	_ = obj.Set("profile", profileObject(vm, inv))
	if inv.Browser != nil {
		_ = obj.Set("browser", wrapBrowser(vm, inv.Browser))
	}
	_ = obj.Set("getLogger", getLoggerFunc(vm, inv))
	_ = obj.Set("sleep", sleepFunc(vm, inv))
	if inv.Screenshot != nil {
		_ = obj.Set("screenshot", screenshotFunc(vm, inv.Screenshot))
	}
	if inv.Register != nil {
		_ = obj.Set("register", registerFunc(vm, inv))
	}

	for key, value := range inv.Args {
		_ = obj.Set(key, vm.ToValue(value))
	}

	return obj, nil
}

func profileObject(vm *goja.Runtime, inv *tasks.Invocation) *goja.Object {
	obj := vm.NewObject()
	_ = obj.Set("name", inv.Profile.Name())
	_ = obj.Set("tasksDir", inv.Profile.TasksDirPath())
	_ = obj.Set("screenshotsDir", inv.Profile.ScreenshotsDirPath())
	if data := inv.Profile.Data(); data != nil {
		_ = obj.Set("data", vm.ToValue(data))
	} else {
		_ = obj.Set("data", vm.NewObject())
	}
	return obj
}

func getLoggerFunc(vm *goja.Runtime, inv *tasks.Invocation) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		entry, err := inv.Logging.GetLogger(name)
		if err != nil {
			throw(vm, err)
		}
		return loggerObject(vm, entry)
	}
}

// loggerObject exposes the leveled logger shape tasks expect. Fatal
// logs at fatal level without terminating the process; a task must not
// be able to kill the batch.
func loggerObject(vm *goja.Runtime, entry *logrus.Entry) *goja.Object {
	obj := vm.NewObject()
	levels := map[string]logrus.Level{
		"trace": logrus.TraceLevel,
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"fatal": logrus.FatalLevel,
	}
	for name, level := range levels {
		lvl := level
		_ = obj.Set(name, func(call goja.FunctionCall) goja.Value {
			entry.Log(lvl, exportArgs(call)...)
			return goja.Undefined()
		})
	}
	return obj
}

// setupConsole maps the global console onto a task-scoped logger so
// stray console.log calls land in the run log instead of stdout.
func setupConsole(vm *goja.Runtime, inv *tasks.Invocation) error {
	entry, err := inv.Logging.GetLogger("task")
	if err != nil {
		return fmt.Errorf("creating console logger: %w", err)
	}

	console := vm.NewObject()
	bind := func(name string, level logrus.Level) {
		_ = console.Set(name, func(call goja.FunctionCall) goja.Value {
			entry.Log(level, exportArgs(call)...)
			return goja.Undefined()
		})
	}
	bind("log", logrus.InfoLevel)
	bind("info", logrus.InfoLevel)
	bind("warn", logrus.WarnLevel)
	bind("error", logrus.ErrorLevel)
	bind("debug", logrus.DebugLevel)

	return vm.Set("console", console)
}

func exportArgs(call goja.FunctionCall) []interface{} {
	args := make([]interface{}, len(call.Arguments))
	for i, arg := range call.Arguments {
		args[i] = arg.Export()
	}
	return args
}

func sleepFunc(vm *goja.Runtime, inv *tasks.Invocation) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		ms := call.Argument(0).ToInteger()
		if ms > 0 {
			inv.Sleep(time.Duration(ms) * time.Millisecond)
		}
		return goja.Undefined()
	}
}

func registerFunc(vm *goja.Runtime, inv *tasks.Invocation) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		name := call.Argument(0).String()
		if name == "" {
			throw(vm, errors.New("register requires a non-empty name"))
		}
		inv.Register(name, call.Argument(1).Export())
		return goja.Undefined()
	}
}

func screenshotFunc(vm *goja.Runtime, capture screenshot.CaptureFunc) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		target, err := nativeTarget(call.Argument(0))
		if err != nil {
			throw(vm, err)
		}

		var name string
		if arg := call.Argument(1); !goja.IsUndefined(arg) && !goja.IsNull(arg) {
			name = arg.String()
		}

		var opts screenshot.CaptureOptions
		if arg := call.Argument(2); !goja.IsUndefined(arg) && !goja.IsNull(arg) {
			optsObj := arg.ToObject(vm)
			if v := optsObj.Get("type"); v != nil && !goja.IsUndefined(v) {
				opts.Type = v.String()
			}
			if v := optsObj.Get("fullPage"); v != nil && !goja.IsUndefined(v) {
				opts.FullPage = v.ToBoolean()
			}
			if v := optsObj.Get("quality"); v != nil && !goja.IsUndefined(v) {
				opts.Quality = int(v.ToInteger())
			}
		}

		if err := capture(target, name, opts); err != nil {
			throw(vm, err)
		}
		return goja.Undefined()
	}
}

// nativeTarget recovers the Go capture target from a page or element
// wrapper object.
func nativeTarget(v goja.Value) (browser.Target, error) {
	obj, ok := v.(*goja.Object)
	if !ok || obj == nil {
		return nil, errors.New("screenshot target must be a page or an element")
	}
	native := obj.Get(nativeKey)
	if native == nil {
		return nil, errors.New("screenshot target must be a page or an element")
	}
	target, ok := native.Export().(browser.Target)
	if !ok {
		return nil, errors.New("screenshot target must be a page or an element")
	}
	return target, nil
}

func wrapBrowser(vm *goja.Runtime, b browser.Browser) *goja.Object {
	obj := vm.NewObject()
	_ = obj.Set("newPage", func(goja.FunctionCall) goja.Value {
		page, err := b.NewPage()
		if err != nil {
			throw(vm, err)
		}
		return wrapPage(vm, page)
	})
	return obj
}

func wrapPage(vm *goja.Runtime, page browser.Page) goja.Value {
	obj := vm.NewObject()
	_ = obj.Set(nativeKey, vm.ToValue(page))

	_ = obj.Set("goto", func(call goja.FunctionCall) goja.Value {
		if err := page.Goto(call.Argument(0).String()); err != nil {
			throw(vm, err)
		}
		return goja.Undefined()
	})
	_ = obj.Set("$", func(call goja.FunctionCall) goja.Value {
		element, err := page.QuerySelector(call.Argument(0).String())
		if err != nil {
			throw(vm, err)
		}
		if element == nil {
			return goja.Null()
		}
		return wrapElement(vm, element)
	})
	_ = obj.Set("setViewport", func(call goja.FunctionCall) goja.Value {
		arg := call.Argument(0)
		if goja.IsUndefined(arg) || goja.IsNull(arg) {
			throw(vm, errors.New("setViewport requires {width, height}"))
		}
		optsObj := arg.ToObject(vm)
		width := intField(optsObj, "width")
		height := intField(optsObj, "height")
		if width <= 0 || height <= 0 {
			throw(vm, errors.New("setViewport requires positive width and height"))
		}
		if err := page.SetViewport(width, height); err != nil {
			throw(vm, err)
		}
		return goja.Undefined()
	})
	_ = obj.Set("url", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(page.URL())
	})
	_ = obj.Set("close", func(goja.FunctionCall) goja.Value {
		if err := page.Close(); err != nil {
			throw(vm, err)
		}
		return goja.Undefined()
	})
	return obj
}

func wrapElement(vm *goja.Runtime, element browser.Element) goja.Value {
	obj := vm.NewObject()
	_ = obj.Set(nativeKey, vm.ToValue(element))
	return obj
}

func intField(obj *goja.Object, key string) int {
	v := obj.Get(key)
	if v == nil || goja.IsUndefined(v) {
		return 0
	}
	return int(v.ToInteger())
}

// throw raises err as a JavaScript exception inside the runtime.
func throw(vm *goja.Runtime, err error) {
	panic(vm.NewGoError(err))
}
