package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chrisuehlinger/swipekit/pagetest"
)

func testCmd(g *globals) *cobra.Command {
	var (
		timeout time.Duration
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "test <fixture.html>...",
		Short: "Run fixture pages with in-page tests",
		Long: `Run fixture pages whose inline scripts declare tests with test(),
async_test() and the assert_* helpers. Pages run on a simulated clock;
advance(ms) and settle(ms) move it forward.

Examples:
  swipekit test fixtures/*.html
  swipekit test --json fixtures/carousel.html`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(g, args, timeout, asJSON)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Simulated time each fixture may run")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output results as JSON")

	return cmd
}

func runTests(g *globals, files []string, timeout time.Duration, asJSON bool) error {
	e, err := g.setup(files[0])
	if err != nil {
		return err
	}
	runner := pagetest.NewRunner("",
		pagetest.WithConfig(e.cfg),
		pagetest.WithLoader(e.loader),
		pagetest.WithLogger(e.logger),
	)
	runner.Timeout = timeout

	for _, file := range files {
		fmt.Fprintf(os.Stderr, "Running: %s\n", file)
		result := runner.RunFile(file)
		runner.Results = append(runner.Results, result)
		if !asJSON {
			printResult(result)
		}
	}

	if asJSON {
		data, err := runner.ExportJSON()
		if err != nil {
			return fmt.Errorf("failed to export JSON: %w", err)
		}
		fmt.Println(string(data))
	}
	passed, failed, skipped := runner.Summary()
	if !asJSON {
		fmt.Printf("\nSummary: %d passed, %d failed, %d skipped\n", passed, failed, skipped)
	}
	if failed > 0 {
		return fmt.Errorf("%d tests failed", failed)
	}
	return nil
}

func printResult(result pagetest.SuiteResult) {
	fmt.Printf("\n%s (%s, %.2fs)\n", result.File, result.HarnessStatus, result.Duration.Seconds())
	if result.Error != "" {
		fmt.Printf("  ERROR: %s\n", result.Error)
	}
	for _, test := range result.Tests {
		fmt.Printf("  %s %s\n", statusSymbol(test.Status), test.Name)
		if test.Message != "" && test.Status != pagetest.StatusPass {
			for _, line := range strings.Split(test.Message, "\n") {
				fmt.Printf("      %s\n", line)
			}
		}
	}
}

func statusSymbol(status pagetest.TestStatus) string {
	switch status {
	case pagetest.StatusPass:
		return "✓"
	case pagetest.StatusFail:
		return "✗"
	case pagetest.StatusTimeout:
		return "⏱"
	case pagetest.StatusError:
		return "!"
	case pagetest.StatusSkip:
		return "-"
	default:
		return "?"
	}
}
