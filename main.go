// Command swipekit loads pages enhanced with swipekit widgets and drives
// them headless, in a desktop preview or behind a debug server.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chrisuehlinger/swipekit/config"
	"github.com/chrisuehlinger/swipekit/network"
	"github.com/chrisuehlinger/swipekit/page"
	"github.com/chrisuehlinger/swipekit/widget"
)

// globals holds the persistent flags shared by every command.
type globals struct {
	configPath string
	logLevel   string
	width      int
	assets     string
	baseURL    string
}

// env is what a command needs to load a page.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	loader *network.Loader
	images *network.Images
}

func main() {
	g := &globals{}
	rootCmd := &cobra.Command{
		Use:   "swipekit",
		Short: "Touch widgets for mobile pages",
		Long: `swipekit enhances pages marked up with data-ss-widget attributes:
carousels, togglers, lazy images and form helpers.

The commands load a page, initialise its widgets and then inspect
them, script them, preview them in a window or serve a debug API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "swipekit.yaml", "Configuration file")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.IntVar(&g.width, "width", 0, "Viewport width in pixels")
	flags.StringVar(&g.assets, "assets", "", "Directory image paths are read from (default: the page's directory)")
	flags.StringVar(&g.baseURL, "base-url", "", "URL relative sources are resolved against")

	rootCmd.AddCommand(
		inspectCmd(g),
		runCmd(g),
		previewCmd(g),
		serveCmd(g),
		testCmd(g),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger and image loader for
// pages at src. Unless overridden, image paths are read from the page's
// directory, or resolved against the page URL for remote pages.
func (g *globals) setup(src string) (*env, error) {
	cfg, err := config.LoadOptional(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.width > 0 {
		cfg.Viewport.Width = g.width
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	client, err := network.NewClient()
	if err != nil {
		return nil, err
	}
	assets, base := g.assets, g.baseURL
	if remote(src) {
		if base == "" {
			base = src
		}
	} else if assets == "" && src != "" {
		assets = filepath.Dir(src)
	}
	loader := network.NewLoader(client,
		network.WithLocalPath(assets),
		network.WithBaseURL(base),
		network.WithLogger(logger),
	)
	return &env{
		cfg:    cfg,
		logger: logger,
		loader: loader,
		images: network.NewImages(loader),
	}, nil
}

// pageOptions returns the options every command loads pages with.
func (e *env) pageOptions(extra ...page.Option) []page.Option {
	return append([]page.Option{
		page.WithConfig(e.cfg),
		page.WithLogger(e.logger),
		page.WithLoader(e.loader),
	}, extra...)
}

func remote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// printWidgets writes one line per widget.
func printWidgets(w io.Writer, infos []widget.Info) {
	if len(infos) == 0 {
		fmt.Fprintln(w, "no widgets")
		return
	}
	for _, info := range infos {
		fmt.Fprintf(w, "%3d  %-14s %-14s", info.ID, info.Type, info.State)
		if info.Index != nil {
			fmt.Fprintf(w, " index=%d items=%d dots=%d", *info.Index, info.Items, info.Dots)
			if info.Zoomed {
				fmt.Fprint(w, " zoomed")
			}
			if info.Autoscroll {
				fmt.Fprint(w, " autoscroll")
			}
		}
		if info.Frozen {
			fmt.Fprint(w, " frozen")
		}
		if info.Orphan {
			fmt.Fprint(w, " orphan")
		}
		if info.Card != "" {
			fmt.Fprintf(w, " card=%s", info.Card)
		}
		fmt.Fprintln(w)
	}
}
