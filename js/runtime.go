// Package js provides the event loop that owns all widget state and an
// embedded JavaScript runtime (goja) for page scripts.
package js

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
)

// Runtime wraps a goja runtime whose timers run on a Loop. It must only be
// used from the loop goroutine.
type Runtime struct {
	vm     *goja.Runtime
	loop   *Loop
	logger *slog.Logger

	mu      sync.Mutex
	errors  []error
	onError func(error)
}

// NewRuntime creates a JavaScript runtime scheduling its timers on loop.
func NewRuntime(loop *Loop, logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runtime{
		vm:     goja.New(),
		loop:   loop,
		logger: logger.With("component", "script"),
	}
	r.vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	r.setupConsole()
	r.setupTimers()
	r.setupWindow()

	return r
}

// VM returns the underlying goja runtime.
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

// Loop returns the loop the runtime schedules on.
func (r *Runtime) Loop() *Loop {
	return r.loop
}

// Set defines a global.
func (r *Runtime) Set(name string, value any) error {
	return r.vm.Set(name, value)
}

// SetOnError sets a callback for JavaScript errors.
func (r *Runtime) SetOnError(handler func(error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onError = handler
}

// Execute runs JavaScript code and returns the result.
func (r *Runtime) Execute(code string) (result goja.Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = fmt.Errorf("script execution panic: %v", p)
			r.record(err)
		}
	}()

	result, err = r.vm.RunString(code)
	if err != nil {
		r.record(err)
	}
	return result, err
}

// ExecuteScript compiles and runs code, naming it src in stack traces.
func (r *Runtime) ExecuteScript(code, src string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script compilation panic in %s: %v", src, p)
			r.record(err)
		}
	}()

	program, err := goja.Compile(src, code, false)
	if err != nil {
		r.record(err)
		return err
	}
	if _, err = r.vm.RunProgram(program); err != nil {
		r.record(err)
	}
	return err
}

// Call invokes a script function, recording any exception it throws.
func (r *Runtime) Call(fn goja.Callable, args ...goja.Value) (result goja.Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = fmt.Errorf("script callback panic: %v", p)
			r.record(err)
		}
	}()
	result, err = fn(goja.Undefined(), args...)
	if err != nil {
		r.record(err)
	}
	return result, err
}

func (r *Runtime) record(err error) {
	r.mu.Lock()
	r.errors = append(r.errors, err)
	handler := r.onError
	r.mu.Unlock()
	r.logger.Warn("script error", "error", err)
	if handler != nil {
		handler(err)
	}
}

// Errors returns all errors that occurred during execution.
func (r *Runtime) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error{}, r.errors...)
}

// ClearErrors clears the error list.
func (r *Runtime) ClearErrors() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = r.errors[:0]
}

// setupConsole maps console methods onto slog levels.
func (r *Runtime) setupConsole() {
	console := r.vm.NewObject()
	level := func(lvl slog.Level) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			r.logger.Log(context.Background(), lvl, formatArgs(call.Arguments), "source", "console")
			return goja.Undefined()
		}
	}
	console.Set("log", level(slog.LevelInfo))
	console.Set("info", level(slog.LevelInfo))
	console.Set("warn", level(slog.LevelWarn))
	console.Set("error", level(slog.LevelError))
	console.Set("debug", level(slog.LevelDebug))
	console.Set("trace", level(slog.LevelDebug))

	console.Set("assert", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 || !call.Arguments[0].ToBoolean() {
			msg := "Assertion failed"
			if len(call.Arguments) > 1 {
				msg += ": " + formatArgs(call.Arguments[1:])
			}
			r.logger.Error(msg, "source", "console")
		}
		return goja.Undefined()
	})

	counts := make(map[string]int)
	console.Set("count", func(call goja.FunctionCall) goja.Value {
		label := labelArg(call)
		counts[label]++
		r.logger.Info(fmt.Sprintf("%s: %d", label, counts[label]), "source", "console")
		return goja.Undefined()
	})
	console.Set("countReset", func(call goja.FunctionCall) goja.Value {
		delete(counts, labelArg(call))
		return goja.Undefined()
	})

	times := make(map[string]time.Time)
	console.Set("time", func(call goja.FunctionCall) goja.Value {
		times[labelArg(call)] = r.loop.Now()
		return goja.Undefined()
	})
	console.Set("timeEnd", func(call goja.FunctionCall) goja.Value {
		label := labelArg(call)
		if start, ok := times[label]; ok {
			r.logger.Info(fmt.Sprintf("%s: %v", label, r.loop.Now().Sub(start)), "source", "console")
			delete(times, label)
		}
		return goja.Undefined()
	})

	r.vm.Set("console", console)
}

func labelArg(call goja.FunctionCall) string {
	if len(call.Arguments) > 0 && !goja.IsUndefined(call.Arguments[0]) {
		return call.Arguments[0].String()
	}
	return "default"
}

// setupTimers installs setTimeout, setInterval, requestAnimationFrame and
// their cancel functions on top of the loop.
func (r *Runtime) setupTimers() {
	schedule := func(repeat bool) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 1 {
				return goja.Undefined()
			}
			callback, ok := goja.AssertFunction(call.Arguments[0])
			if !ok {
				return goja.Undefined()
			}
			delay := int64(0)
			if len(call.Arguments) > 1 {
				delay = call.Arguments[1].ToInteger()
			}
			if delay < 0 {
				delay = 0
			}
			var args []goja.Value
			if len(call.Arguments) > 2 {
				args = call.Arguments[2:]
			}
			fn := func() { r.Call(callback, args...) }
			var id TimerID
			if repeat {
				// Minimum interval of 4ms, as browsers clamp it.
				if delay < 4 {
					delay = 4
				}
				id = r.loop.SetInterval(fn, time.Duration(delay)*time.Millisecond)
			} else {
				id = r.loop.SetTimeout(fn, time.Duration(delay)*time.Millisecond)
			}
			return r.vm.ToValue(int(id))
		}
	}
	cancel := func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) > 0 {
			r.loop.ClearTimer(TimerID(call.Arguments[0].ToInteger()))
		}
		return goja.Undefined()
	}

	r.vm.Set("setTimeout", schedule(false))
	r.vm.Set("setInterval", schedule(true))
	r.vm.Set("clearTimeout", cancel)
	r.vm.Set("clearInterval", cancel)

	start := r.loop.Now()
	r.vm.Set("requestAnimationFrame", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		callback, ok := goja.AssertFunction(call.Arguments[0])
		if !ok {
			return goja.Undefined()
		}
		id := r.loop.NextFrame(func() {
			ts := float64(r.loop.Now().Sub(start)) / float64(time.Millisecond)
			r.Call(callback, r.vm.ToValue(ts))
		})
		return r.vm.ToValue(int(id))
	})
	r.vm.Set("cancelAnimationFrame", cancel)
}

// setupWindow makes window, self and globalThis the global object and adds
// the few window members page scripts use.
func (r *Runtime) setupWindow() {
	window := r.vm.GlobalObject()
	r.vm.Set("window", window)
	r.vm.Set("self", window)
	r.vm.Set("globalThis", window)

	navigator := r.vm.NewObject()
	navigator.Set("userAgent", "swipekit/1.0")
	navigator.Set("language", "en-US")
	navigator.Set("onLine", true)
	window.Set("navigator", navigator)

	window.Set("devicePixelRatio", 1.0)

	start := r.loop.Now()
	performance := r.vm.NewObject()
	performance.Set("now", func(call goja.FunctionCall) goja.Value {
		return r.vm.ToValue(float64(r.loop.Now().Sub(start)) / float64(time.Millisecond))
	})
	window.Set("performance", performance)

	r.vm.Set("queueMicrotask", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return goja.Undefined()
		}
		callback, ok := goja.AssertFunction(call.Arguments[0])
		if !ok {
			return goja.Undefined()
		}
		r.loop.Post(func() { r.Call(callback) })
		return goja.Undefined()
	})
}

// formatArgs formats function call arguments for console output.
func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = formatValue(arg)
	}
	return strings.Join(parts, " ")
}

// formatValue formats a single value for output.
func formatValue(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	return v.String()
}
