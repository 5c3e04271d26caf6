package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/chrisuehlinger/swipekit/js"
	"github.com/chrisuehlinger/swipekit/page"
	"github.com/chrisuehlinger/swipekit/ui"
)

func previewCmd(g *globals) *cobra.Command {
	var fps int

	cmd := &cobra.Command{
		Use:   "preview <page.html>",
		Short: "Open a page in a desktop window",
		Long: `Open a page in a window and drive its widgets in real time.
Drag or click carousels with the mouse, use the arrow keys to slide
the focused carousel and Ctrl+R to reload the page.

Examples:
  swipekit preview gallery.html
  swipekit preview --width 768 gallery.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd.Context(), g, args[0], fps)
		},
	}

	cmd.Flags().IntVar(&fps, "fps", 60, "Repaint rate")

	return cmd
}

func runPreview(ctx context.Context, g *globals, src string, fps int) error {
	e, err := g.setup(src)
	if err != nil {
		return err
	}
	width, height := e.cfg.Viewport.Width, e.cfg.Viewport.Height
	loop := js.NewLoop(js.WithLogger(e.logger))

	var current *page.Page
	open := func() (*ui.Session, error) {
		if current != nil {
			current.Overlay.Close()
		}
		p, err := page.Load(ctx, src, e.pageOptions(page.WithLoop(loop))...)
		if err != nil {
			return nil, err
		}
		current = p
		sess := ui.NewSession(p.Registry, e.images, width, height)
		p.Start()
		return sess, nil
	}

	preview := ui.NewPreview("swipekit - "+src, width, height, loop, open,
		ui.WithPreviewLogger(e.logger),
		ui.WithFPS(fps),
	)
	return preview.Run(ctx)
}
