package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/chrisuehlinger/swipekit/js"
	"github.com/chrisuehlinger/swipekit/page"
)

func inspectCmd(g *globals) *cobra.Command {
	var (
		settle   time.Duration
		prefetch bool
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <page.html>",
		Short: "Initialise a page's widgets and print them",
		Long: `Load a page, initialise its widgets on a simulated clock and print
one line per widget once every transition has finished.

Examples:
  swipekit inspect gallery.html
  swipekit inspect --width 1024 gallery.html
  swipekit inspect --json https://example.com/gallery.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), g, args[0], settle, prefetch, asJSON)
		},
	}

	cmd.Flags().DurationVar(&settle, "settle", 10*time.Second, "Simulated time allowed for widgets to settle")
	cmd.Flags().BoolVar(&prefetch, "prefetch", true, "Load every image before initialising widgets")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print widgets as JSON")

	return cmd
}

func runInspect(ctx context.Context, g *globals, src string, settle time.Duration, prefetch, asJSON bool) error {
	e, err := g.setup(src)
	if err != nil {
		return err
	}
	p, err := page.Load(ctx, src, e.pageOptions(page.WithClock(js.NewManualClock(time.Unix(0, 0))))...)
	if err != nil {
		return err
	}
	defer p.Close()

	if prefetch {
		res, err := e.loader.Prefetch(ctx, p.Document)
		if err != nil {
			return err
		}
		e.logger.Info("images loaded", "loaded", res.Loaded, "failed", res.Failed)
	}

	n := p.Start()
	elapsed := p.Settle(settle)
	e.logger.Debug("page settled", "widgets", n, "elapsed", elapsed)

	infos := p.Registry.Snapshot()
	if asJSON {
		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	printWidgets(os.Stdout, infos)
	for _, href := range p.Navigations() {
		fmt.Printf("navigated: %s\n", href)
	}
	return nil
}
