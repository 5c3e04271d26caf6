package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chrisuehlinger/swipekit/devserver"
	"github.com/chrisuehlinger/swipekit/metrics"
	"github.com/chrisuehlinger/swipekit/page"
)

func serveCmd(g *globals) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <page.html>",
		Short: "Serve a debug API for a page's widgets",
		Long: `Load a page, run its widgets in real time and serve a debug API:

  GET  /widgets
  GET  /widgets/{id}
  POST /widgets/{id}/{action}     next, prev, freeze, unfreeze, open, close,
                                  toggle, autoscroll-on, autoscroll-off
  POST /widgets/{id}/jump/{index}
  GET  /metrics

Examples:
  swipekit serve gallery.html
  swipekit serve --addr 127.0.0.1:9090 gallery.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), g, args[0], addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")

	return cmd
}

func runServe(ctx context.Context, g *globals, src, addr string) error {
	e, err := g.setup(src)
	if err != nil {
		return err
	}
	collector := metrics.New()
	p, err := page.Load(ctx, src, e.pageOptions(page.WithObserver(collector))...)
	if err != nil {
		return err
	}

	// Start before the loop runs, so this goroutine still owns the page.
	n := p.Start()
	e.logger.Info("page started", "page", src, "widgets", n)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	loopDone := make(chan error, 1)
	go func() { loopDone <- p.Loop.Run(ctx) }()

	srv := devserver.New(p.Registry,
		devserver.WithLogger(e.logger),
		devserver.WithMetrics(collector),
	)
	serveErr := srv.ListenAndServe(ctx, addr)
	cancel()
	if err := <-loopDone; err != nil && !errors.Is(err, context.Canceled) {
		e.logger.Error("loop stopped", "error", err)
	}
	// The loop has stopped, so the page can be closed from here.
	p.Close()
	if serveErr != nil {
		return fmt.Errorf("debug server: %w", serveErr)
	}
	return nil
}
