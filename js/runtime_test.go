package js

import (
	"strings"
	"testing"
	"time"
)

func newTestRuntime() (*Runtime, *Loop) {
	l, _ := newTestLoop()
	return NewRuntime(l, nil), l
}

func TestRuntimeBasic(t *testing.T) {
	r, _ := newTestRuntime()

	result, err := r.Execute("1 + 2")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.ToInteger() != 3 {
		t.Errorf("Expected 3, got %v", result.ToInteger())
	}
}

func TestRuntimeFunctions(t *testing.T) {
	r, _ := newTestRuntime()

	_, err := r.Execute(`
		function add(a, b) {
			return a + b;
		}
	`)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	result, err := r.Execute("add(3, 4)")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.ToInteger() != 7 {
		t.Errorf("Expected 7, got %v", result.ToInteger())
	}
}

func TestRuntimeConsole(t *testing.T) {
	r, _ := newTestRuntime()

	_, err := r.Execute(`
		console.log("test message");
		console.warn("warning");
		console.error("error");
		console.info("info");
		console.debug("debug");
		console.assert(false, "nope");
		console.count(); console.countReset();
		console.time("t"); console.timeEnd("t");
	`)
	if err != nil {
		t.Fatalf("console methods failed: %v", err)
	}
}

func TestRuntimeSetTimeout(t *testing.T) {
	r, l := newTestRuntime()

	_, err := r.Execute(`
		var called = false;
		setTimeout(function(v) {
			called = v;
		}, 10, "yes");
	`)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	l.Advance(9 * time.Millisecond)
	result, _ := r.Execute("called")
	if result.ToBoolean() {
		t.Fatal("setTimeout callback ran early")
	}

	l.Advance(time.Millisecond)
	result, err = r.Execute("called")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.String() != "yes" {
		t.Errorf("Expected 'yes', got %v", result.String())
	}
}

func TestRuntimeClearTimeout(t *testing.T) {
	r, l := newTestRuntime()

	_, err := r.Execute(`
		var called = false;
		var id = setTimeout(function() {
			called = true;
		}, 10);
		clearTimeout(id);
	`)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	l.Advance(20 * time.Millisecond)

	result, _ := r.Execute("called")
	if result.ToBoolean() {
		t.Error("setTimeout callback was called after clearTimeout")
	}
}

func TestRuntimeSetInterval(t *testing.T) {
	r, l := newTestRuntime()

	_, err := r.Execute(`
		var count = 0;
		var id = setInterval(function() {
			count++;
		}, 10);
	`)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	l.Advance(55 * time.Millisecond)
	_, _ = r.Execute("clearInterval(id)")
	l.Advance(50 * time.Millisecond)

	result, _ := r.Execute("count")
	if result.ToInteger() != 5 {
		t.Errorf("Expected count 5, got %v", result.ToInteger())
	}
}

func TestRuntimeRequestAnimationFrame(t *testing.T) {
	r, l := newTestRuntime()

	_, err := r.Execute(`
		var timestamp = null;
		requestAnimationFrame(function(ts) {
			timestamp = ts;
		});
	`)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	l.Advance(20 * time.Millisecond)

	result, _ := r.Execute("timestamp")
	if result.ToFloat() <= 0 {
		t.Errorf("Expected timestamp > 0, got %v", result.ToFloat())
	}
}

func TestRuntimePerformanceFollowsLoopClock(t *testing.T) {
	r, l := newTestRuntime()

	l.Advance(250 * time.Millisecond)
	result, err := r.Execute("performance.now()")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.ToFloat() != 250 {
		t.Errorf("Expected 250, got %v", result.ToFloat())
	}
}

func TestRuntimeQueueMicrotask(t *testing.T) {
	r, l := newTestRuntime()

	_, err := r.Execute(`
		var order = [];
		queueMicrotask(function() {
			order.push(1);
		});
		order.push(0);
	`)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	l.RunOnce()

	result, _ := r.Execute("order.join(',')")
	if result.String() != "0,1" {
		t.Errorf("Expected '0,1', got %v", result.String())
	}
}

func TestRuntimeGlobalThis(t *testing.T) {
	r, _ := newTestRuntime()

	result, err := r.Execute("globalThis === window && self === window")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !result.ToBoolean() {
		t.Error("Expected globalThis and self to be window")
	}
}

func TestRuntimeErrorHandling(t *testing.T) {
	r, _ := newTestRuntime()
	var seen []error
	r.SetOnError(func(err error) { seen = append(seen, err) })

	_, err := r.Execute("this is not valid javascript")
	if err == nil {
		t.Error("Expected error for invalid JavaScript")
	}
	if len(r.Errors()) != 1 || len(seen) != 1 {
		t.Errorf("Expected the error to be recorded once, got %d/%d", len(r.Errors()), len(seen))
	}

	r.ClearErrors()
	if len(r.Errors()) != 0 {
		t.Errorf("Expected errors to be cleared, got %d", len(r.Errors()))
	}
}

func TestRuntimeTimerCallbackErrorRecorded(t *testing.T) {
	r, l := newTestRuntime()

	_, err := r.Execute(`setTimeout(function() { throw new Error("late failure"); }, 1);`)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	l.Advance(5 * time.Millisecond)

	errs := r.Errors()
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "late failure") {
		t.Errorf("Expected the thrown error to be recorded, got %v", errs)
	}
}

func TestRuntimeExecuteScriptError(t *testing.T) {
	r, _ := newTestRuntime()

	err := r.ExecuteScript("undefinedFunction()", "page.js")
	if err == nil {
		t.Fatal("Expected a ReferenceError")
	}
	if !strings.Contains(err.Error(), "undefinedFunction") {
		t.Errorf("Expected error to name the missing function, got %v", err)
	}

	result, err := r.Execute("1 + 1")
	if err != nil || result.ToInteger() != 2 {
		t.Errorf("Runtime should still work after an error: %v", err)
	}
}
