// Package page assembles everything one enhanced page needs: the parsed
// document, its event loop, the widget registry, the overlay and a script
// runtime with the swipekit global installed.
package page

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/chrisuehlinger/swipekit/config"
	"github.com/chrisuehlinger/swipekit/dom"
	"github.com/chrisuehlinger/swipekit/js"
	"github.com/chrisuehlinger/swipekit/js/bindings"
	"github.com/chrisuehlinger/swipekit/network"
	"github.com/chrisuehlinger/swipekit/overlay"
	"github.com/chrisuehlinger/swipekit/widget"
)

// Page is one loaded document and the machinery driving its widgets. Like
// the registry, it must only be used from the loop goroutine once the loop
// is running.
type Page struct {
	Document *dom.Document
	Loop     *js.Loop
	Registry *widget.Registry
	Runtime  *js.Runtime
	Overlay  *overlay.Overlay

	cfg       *config.Config
	logger    *slog.Logger
	loader    *network.Loader
	observer  widget.Observer
	clock     js.Clock
	loop      *js.Loop
	navigated []string
}

// Option configures a Page.
type Option func(*Page)

// WithConfig sets the defaults and viewport.
func WithConfig(cfg *config.Config) Option {
	return func(p *Page) { p.cfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Page) { p.logger = logger }
}

// WithLoader routes image probes, ajax fetches and page loads through l.
func WithLoader(l *network.Loader) Option {
	return func(p *Page) { p.loader = l }
}

// WithObserver receives registry and carousel notifications.
func WithObserver(o widget.Observer) Option {
	return func(p *Page) { p.observer = o }
}

// WithClock sets the loop clock. Use a js.ManualClock to drive the page
// with Advance.
func WithClock(c js.Clock) Option {
	return func(p *Page) { p.clock = c }
}

// WithLoop runs the page on an existing loop, so that a long-running host
// can replace pages without restarting it. The clock option is ignored.
func WithLoop(l *js.Loop) Option {
	return func(p *Page) { p.loop = l }
}

// Load reads the page at src, a file path or any source the loader can
// reach, and builds it.
func Load(ctx context.Context, src string, opts ...Option) (*Page, error) {
	p := newPage(opts)
	var (
		data []byte
		err  error
	)
	if p.loader != nil && !fileExists(src) {
		data, _, err = p.loader.Read(ctx, src)
	} else {
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return nil, fmt.Errorf("load page %s: %w", src, err)
	}
	doc, err := dom.ParseHTML(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", src, err)
	}
	doc.SetURL(src)
	return p.build(doc)
}

// New builds a page around an already parsed document.
func New(doc *dom.Document, opts ...Option) (*Page, error) {
	return newPage(opts).build(doc)
}

func newPage(opts []Option) *Page {
	p := &Page{
		cfg:    config.Default(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Page) build(doc *dom.Document) (*Page, error) {
	p.Document = doc
	doc.SetViewport(float64(p.cfg.Viewport.Width), float64(p.cfg.Viewport.Height))

	p.Loop = p.loop
	if p.Loop == nil {
		loopOpts := []js.LoopOption{js.WithLogger(p.logger)}
		if p.clock != nil {
			loopOpts = append(loopOpts, js.WithClock(p.clock))
		}
		p.Loop = js.NewLoop(loopOpts...)
	}

	regOpts := []widget.Option{
		widget.WithLoop(p.Loop),
		widget.WithLogger(p.logger),
		widget.WithConfig(p.cfg),
		widget.WithNavigator(navigator{p}),
	}
	if p.observer != nil {
		regOpts = append(regOpts, widget.WithObserver(p.observer))
	}
	if p.loader != nil {
		regOpts = append(regOpts,
			widget.WithImageProbe(p.loader),
			widget.WithAjax(&ajaxLoader{page: p}),
		)
	}
	p.Registry = widget.New(doc, regOpts...)
	p.Overlay = overlay.New(doc, p.Registry, p.Loop, p.cfg.Overlay, p.logger)

	p.Runtime = js.NewRuntime(p.Loop, p.logger)
	if err := bindings.Install(p.Runtime, p.Registry, bindings.WithOverlay(p.Overlay)); err != nil {
		return nil, err
	}
	for _, problem := range p.cfg.Validate() {
		p.logger.Warn("questionable configuration", "problem", problem)
	}
	return p, nil
}

// Start runs the page's startup sequence: DOM-phase lazy images, widget
// init, inline scripts, then load-phase lazy images. It returns the
// number of widgets created.
func (p *Page) Start() int {
	widget.Lateload(p.Document, widget.PhaseDOM)
	p.Registry.Init(nil, false)
	for i, script := range p.Document.QuerySelectorAll("script") {
		if script.HasAttribute("src") || !isJavaScript(script.GetAttribute("type")) {
			continue
		}
		name := fmt.Sprintf("%s#script%d", p.Document.URL(), i)
		if err := p.Runtime.ExecuteScript(script.TextContent(), name); err != nil {
			p.logger.Warn("inline script failed", "script", name, "error", err)
		}
	}
	widget.Lateload(p.Document, widget.PhaseLoad)
	return len(p.Registry.Widgets())
}

// Settle advances a manual clock until the loop is idle or limit has
// passed. Pages on a real clock must use Loop.Run instead.
func (p *Page) Settle(limit time.Duration) time.Duration {
	return p.Loop.Settle(limit)
}

// Script runs code in the page runtime.
func (p *Page) Script(code, name string) error {
	return p.Runtime.ExecuteScript(code, name)
}

// Navigations returns the links followed by carousel taps.
func (p *Page) Navigations() []string {
	return append([]string(nil), p.navigated...)
}

// Close tears down every widget.
func (p *Page) Close() {
	p.Overlay.Close()
	p.Registry.Close()
}

func isJavaScript(typ string) bool {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "", "text/javascript", "application/javascript", "module":
		return true
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

type navigator struct{ p *Page }

func (n navigator) Navigate(href string) {
	n.p.navigated = append(n.p.navigated, href)
	n.p.logger.Info("carousel link followed", "href", href)
}
