// Package pagetest runs fixture pages whose inline scripts exercise the
// page's widgets through a testharness-style API, on a simulated clock.
package pagetest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/chrisuehlinger/swipekit/config"
	"github.com/chrisuehlinger/swipekit/js"
	"github.com/chrisuehlinger/swipekit/network"
	"github.com/chrisuehlinger/swipekit/page"
)

// TestResult is the outcome of one test() or async_test().
type TestResult struct {
	Name    string
	Status  TestStatus
	Message string
}

// TestStatus represents the status of a test.
type TestStatus int

const (
	StatusPass TestStatus = iota
	StatusFail
	StatusTimeout
	StatusError
	StatusSkip
)

func (s TestStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusFail:
		return "FAIL"
	case StatusTimeout:
		return "TIMEOUT"
	case StatusError:
		return "ERROR"
	case StatusSkip:
		return "SKIP"
	default:
		return "UNKNOWN"
	}
}

// SuiteResult is the outcome of one fixture page.
type SuiteResult struct {
	File          string
	HarnessStatus string
	Tests         []TestResult
	Duration      time.Duration
	Error         string
}

// Runner runs fixture pages.
type Runner struct {
	Root    string        // Directory relative fixture paths are read from
	Timeout time.Duration // Simulated time each page may run for
	Results []SuiteResult

	cfg    *config.Config
	loader *network.Loader
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithConfig sets the page configuration.
func WithConfig(cfg *config.Config) Option {
	return func(r *Runner) { r.cfg = cfg }
}

// WithLoader sets the loader used for images and ajax panels.
func WithLoader(l *network.Loader) Option {
	return func(r *Runner) { r.loader = l }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner creates a runner reading fixtures from root.
func NewRunner(root string, opts ...Option) *Runner {
	r := &Runner{
		Root:    root,
		Timeout: 30 * time.Second,
		cfg:     config.Default(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run runs every fixture in order and records the results.
func (r *Runner) Run(paths ...string) []SuiteResult {
	for _, path := range paths {
		r.Results = append(r.Results, r.RunFile(path))
	}
	return r.Results
}

// RunFile runs one fixture page. Inline scripts run after widget init;
// afterwards the loop is settled for at most Timeout of simulated time and
// unfinished async tests time out.
func (r *Runner) RunFile(path string) SuiteResult {
	start := time.Now()
	result := SuiteResult{File: path}

	full := path
	if r.Root != "" && !filepath.IsAbs(path) {
		full = filepath.Join(r.Root, path)
	}
	opts := []page.Option{
		page.WithConfig(r.cfg),
		page.WithLogger(r.logger.With("fixture", path)),
		page.WithClock(js.NewManualClock(time.Unix(0, 0))),
	}
	if r.loader != nil {
		opts = append(opts, page.WithLoader(r.loader))
	}
	p, err := page.Load(context.Background(), full, opts...)
	if err != nil {
		result.Error = fmt.Sprintf("Failed to load fixture: %v", err)
		result.HarnessStatus = "ERROR"
		result.Duration = time.Since(start)
		return result
	}
	defer p.Close()

	h := newHarness(p)
	if err := h.install(); err != nil {
		result.Error = fmt.Sprintf("Failed to install harness: %v", err)
		result.HarnessStatus = "ERROR"
		result.Duration = time.Since(start)
		return result
	}

	p.Start()
	p.Settle(r.Timeout)
	h.finish()

	result.Tests = h.results
	result.HarnessStatus = "OK"
	if errs := p.Runtime.Errors(); len(errs) > 0 {
		result.HarnessStatus = "ERROR"
		result.Error = errs[0].Error()
	}
	result.Duration = time.Since(start)
	return result
}

// Summary returns a summary of the test results.
func (r *Runner) Summary() (passed, failed, skipped int) {
	for _, result := range r.Results {
		if result.HarnessStatus == "ERROR" && len(result.Tests) == 0 {
			failed++
		}
		for _, test := range result.Tests {
			switch test.Status {
			case StatusPass:
				passed++
			case StatusFail, StatusTimeout, StatusError:
				failed++
			case StatusSkip:
				skipped++
			}
		}
	}
	return
}

type subtestJSON struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type suiteJSON struct {
	Test     string        `json:"test"`
	Status   string        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration int64         `json:"duration"`
	Subtests []subtestJSON `json:"subtests"`
}

// ExportJSON exports results in the wptreport layout.
func (r *Runner) ExportJSON() ([]byte, error) {
	results := make([]suiteJSON, 0, len(r.Results))
	for _, suite := range r.Results {
		jr := suiteJSON{
			Test:     suite.File,
			Status:   suite.HarnessStatus,
			Message:  suite.Error,
			Duration: suite.Duration.Milliseconds(),
			Subtests: []subtestJSON{},
		}
		for _, test := range suite.Tests {
			jr.Subtests = append(jr.Subtests, subtestJSON{
				Name:    test.Name,
				Status:  test.Status.String(),
				Message: test.Message,
			})
		}
		results = append(results, jr)
	}
	return json.MarshalIndent(results, "", "  ")
}
