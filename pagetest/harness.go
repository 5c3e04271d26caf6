package pagetest

import (
	"time"

	"github.com/dop251/goja"

	"github.com/chrisuehlinger/swipekit/page"
)

// Harness status constants for individual tests, as reported by the
// script side.
const (
	harnessPass    = 0
	harnessFail    = 1
	harnessTimeout = 2
	harnessNotRun  = 3
)

// harness installs the test globals into a page runtime and collects what
// they report.
type harness struct {
	page    *page.Page
	results []TestResult
	byName  map[string]int
}

func newHarness(p *page.Page) *harness {
	return &harness{page: p, byName: make(map[string]int)}
}

// install defines __report, advance and settle, then the script-side
// harness. It must run before the page's inline scripts.
func (h *harness) install() error {
	vm := h.page.Runtime.VM()
	if err := vm.Set("__report", h.report); err != nil {
		return err
	}
	if err := vm.Set("advance", func(call goja.FunctionCall) goja.Value {
		h.page.Loop.Advance(time.Duration(call.Argument(0).ToFloat() * float64(time.Millisecond)))
		return goja.Undefined()
	}); err != nil {
		return err
	}
	if err := vm.Set("settle", func(call goja.FunctionCall) goja.Value {
		limit := 5 * time.Second
		if arg := call.Argument(0); !goja.IsUndefined(arg) {
			limit = time.Duration(arg.ToFloat() * float64(time.Millisecond))
		}
		h.page.Loop.Settle(limit)
		return goja.Undefined()
	}); err != nil {
		return err
	}
	_, err := h.page.Runtime.Execute(harnessJS)
	return err
}

// report records one finished test. A test reported twice keeps its latest
// status.
func (h *harness) report(call goja.FunctionCall) goja.Value {
	obj := call.Argument(0).ToObject(h.page.Runtime.VM())
	if obj == nil {
		return goja.Undefined()
	}
	res := TestResult{Status: convertStatus(int(obj.Get("status").ToInteger()))}
	if name := obj.Get("name"); name != nil && !goja.IsUndefined(name) && !goja.IsNull(name) {
		res.Name = name.String()
	}
	if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) && !goja.IsNull(msg) {
		res.Message = msg.String()
	}
	if i, ok := h.byName[res.Name]; ok {
		h.results[i] = res
	} else {
		h.byName[res.Name] = len(h.results)
		h.results = append(h.results, res)
	}
	return goja.Undefined()
}

// finish marks every unfinished async test as timed out.
func (h *harness) finish() {
	vm := h.page.Runtime.VM()
	if fn, ok := goja.AssertFunction(vm.Get("__finish")); ok {
		h.page.Runtime.Call(fn)
	}
}

func convertStatus(status int) TestStatus {
	switch status {
	case harnessPass:
		return StatusPass
	case harnessFail:
		return StatusFail
	case harnessTimeout:
		return StatusTimeout
	case harnessNotRun:
		return StatusSkip
	default:
		return StatusError
	}
}

// harnessJS is a small testharness.js work-alike. Globals are assigned
// directly because the goja global object is not window.
const harnessJS = `
var Test_PASS = 0;
var Test_FAIL = 1;
var Test_TIMEOUT = 2;
var Test_NOTRUN = 3;

var _tests = [];

function AssertionError(message) {
    this.message = message;
}
AssertionError.prototype.toString = function() {
    return "AssertionError: " + this.message;
};

function _fmt(v) {
    return typeof v === "string" ? JSON.stringify(v) : String(v);
}

function _fail(description, message) {
    throw new AssertionError(description ? description + ": " + message : message);
}

function assert_true(actual, description) {
    if (actual !== true) _fail(description, "expected true got " + _fmt(actual));
}

function assert_false(actual, description) {
    if (actual !== false) _fail(description, "expected false got " + _fmt(actual));
}

function assert_equals(actual, expected, description) {
    if (actual !== expected) _fail(description, "expected " + _fmt(expected) + " but got " + _fmt(actual));
}

function assert_not_equals(actual, expected, description) {
    if (actual === expected) _fail(description, "got disallowed value " + _fmt(actual));
}

function assert_array_equals(actual, expected, description) {
    if (actual.length !== expected.length) {
        _fail(description, "lengths differ, expected " + expected.length + " got " + actual.length);
    }
    for (var i = 0; i < expected.length; i++) {
        if (actual[i] !== expected[i]) {
            _fail(description, "property " + i + ", expected " + _fmt(expected[i]) + " but got " + _fmt(actual[i]));
        }
    }
}

function Test(name) {
    this.name = name || ("test " + (_tests.length + 1));
    this.status = Test_NOTRUN;
    this.message = null;
    this.phase = 0;
    _tests.push(this);
}

Test.prototype.step = function(func, this_obj) {
    if (this.phase === 2) return;
    this.phase = 1;
    try {
        return func.apply(this_obj || this, Array.prototype.slice.call(arguments, 2));
    } catch (e) {
        this.status = Test_FAIL;
        this.message = e && e.message !== undefined ? e.message : String(e);
        this.phase = 2;
        __report(this);
    }
};

Test.prototype.step_func = function(func, this_obj) {
    var t = this;
    return function() {
        var args = arguments;
        return t.step(function() { return func.apply(this_obj || t, args); });
    };
};

Test.prototype.step_func_done = function(func, this_obj) {
    var t = this;
    return function() {
        var args = arguments;
        if (func) t.step(function() { func.apply(this_obj || t, args); });
        t.done();
    };
};

Test.prototype.step_timeout = function(func, ms) {
    return setTimeout(this.step_func(func), ms);
};

Test.prototype.done = function() {
    if (this.phase === 2) return;
    this.phase = 2;
    this.status = Test_PASS;
    __report(this);
};

function test(func, name) {
    var t = new Test(name);
    t.step(func, t, t);
    t.done();
}

function async_test(func, name) {
    if (typeof func === "string") {
        name = func;
        func = null;
    }
    var t = new Test(name);
    if (func) t.step(func, t, t);
    return t;
}

function __finish() {
    for (var i = 0; i < _tests.length; i++) {
        var t = _tests[i];
        if (t.phase !== 2) {
            t.phase = 2;
            t.status = Test_TIMEOUT;
            t.message = "test did not finish";
            __report(t);
        }
    }
}
`
