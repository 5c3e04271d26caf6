package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/chrisuehlinger/swipekit/js"
	"github.com/chrisuehlinger/swipekit/page"
)

func runCmd(g *globals) *cobra.Command {
	var advance time.Duration

	cmd := &cobra.Command{
		Use:   "run <page.html> <script.js>",
		Short: "Run a script against a page's widgets",
		Long: `Load and initialise a page, run a script with the swipekit global
available, advance the simulated clock and print the widgets.

Examples:
  swipekit run gallery.html next.js
  swipekit run --advance 5s gallery.html autoscroll.js`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd.Context(), g, args[0], args[1], advance)
		},
	}

	cmd.Flags().DurationVar(&advance, "advance", 2*time.Second, "Simulated time to run after the script")

	return cmd
}

func runScript(ctx context.Context, g *globals, src, script string, advance time.Duration) error {
	code, err := os.ReadFile(script)
	if err != nil {
		return fmt.Errorf("failed to read script: %w", err)
	}
	e, err := g.setup(src)
	if err != nil {
		return err
	}
	p, err := page.Load(ctx, src, e.pageOptions(page.WithClock(js.NewManualClock(time.Unix(0, 0))))...)
	if err != nil {
		return err
	}
	defer p.Close()

	if _, err := e.loader.Prefetch(ctx, p.Document); err != nil {
		return err
	}
	p.Start()
	p.Settle(10 * time.Second)

	if err := p.Script(string(code), script); err != nil {
		return fmt.Errorf("script failed: %w", err)
	}
	p.Loop.Advance(advance)

	printWidgets(os.Stdout, p.Registry.Snapshot())
	if errs := p.Runtime.Errors(); len(errs) > 0 {
		return fmt.Errorf("%d script errors, first: %w", len(errs), errs[0])
	}
	return nil
}
