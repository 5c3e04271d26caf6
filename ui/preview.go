// Package ui shows a page's widgets in a desktop window so carousels can be
// swiped with the mouse.
package ui

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/chrisuehlinger/swipekit/js"
)

// Opener builds the page shown in the window. It runs on the loop
// goroutine, on start and on every reload.
type Opener func() (*Session, error)

// Preview is the desktop window around a Session.
type Preview struct {
	app    fyne.App
	window fyne.Window
	loop   *js.Loop
	open   Opener
	logger *slog.Logger
	fps    int

	surface   *surface
	status    *widget.Label
	prevBtn   *widget.Button
	nextBtn   *widget.Button
	reloadBtn *widget.Button

	mu      sync.Mutex
	session *Session
}

// PreviewOption configures a Preview.
type PreviewOption func(*Preview)

// WithPreviewLogger sets the logger.
func WithPreviewLogger(logger *slog.Logger) PreviewOption {
	return func(p *Preview) { p.logger = logger }
}

// WithFPS sets how often the window repaints.
func WithFPS(fps int) PreviewOption {
	return func(p *Preview) {
		if fps > 0 {
			p.fps = fps
		}
	}
}

// NewPreview creates the window. Nothing is opened until Run.
func NewPreview(title string, width, height int, loop *js.Loop, open Opener, opts ...PreviewOption) *Preview {
	a := app.New()
	w := a.NewWindow(title)
	w.Resize(fyne.NewSize(float32(width), float32(height)))

	p := &Preview{
		app:    a,
		window: w,
		loop:   loop,
		open:   open,
		logger: slog.Default(),
		fps:    60,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "preview")

	p.setupUI(width, height)
	p.setupKeyboardShortcuts()
	return p
}

func (p *Preview) setupUI(width, height int) {
	p.prevBtn = widget.NewButtonWithIcon("", theme.NavigateBackIcon(), func() { p.step(false) })
	p.nextBtn = widget.NewButtonWithIcon("", theme.NavigateNextIcon(), func() { p.step(true) })
	p.reloadBtn = widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() { go p.reload() })
	p.status = widget.NewLabel("Loading...")

	toolbar := container.NewBorder(nil, nil,
		container.NewHBox(p.prevBtn, p.nextBtn, p.reloadBtn),
		nil,
		p.status,
	)

	p.surface = newSurface(p, width, height)
	p.window.SetContent(container.NewBorder(toolbar, nil, nil, nil, p.surface))
}

func (p *Preview) setupKeyboardShortcuts() {
	// Ctrl+R: Reload
	p.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyR,
		Modifier: fyne.KeyModifierControl,
	}, func(_ fyne.Shortcut) {
		go p.reload()
	})

	p.window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		switch ev.Name {
		case fyne.KeyLeft:
			p.step(false)
		case fyne.KeyRight:
			p.step(true)
		}
	})
}

// Run opens the page, drives the loop and blocks until the window closes
// or ctx is cancelled.
func (p *Preview) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The loop outlives ctx long enough to close the page.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := p.loop.Run(loopCtx); err != nil && !errors.Is(err, context.Canceled) {
			p.logger.Error("loop stopped", "error", err)
		}
	}()
	go p.reload()
	go p.paintLoop(ctx)

	closed := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			fyne.Do(p.app.Quit)
		case <-closed:
		}
	}()

	p.window.ShowAndRun()
	close(closed)
	cancel()

	p.withSession(loopCtx, func(s *Session) { s.Registry().Close() })
	stopLoop()
	<-loopDone
	return nil
}

func (p *Preview) current() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

// withSession runs fn on the loop goroutine with the open session.
func (p *Preview) withSession(ctx context.Context, fn func(*Session)) bool {
	s := p.current()
	if s == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return p.loop.Do(ctx, func() { fn(s) }) == nil
}

func (p *Preview) reload() {
	var (
		next *Session
		err  error
	)
	old := p.current()
	doErr := p.loop.Do(context.Background(), func() {
		if old != nil {
			old.Registry().Close()
		}
		next, err = p.open()
		if err == nil {
			w, h := p.surface.pixels()
			next.Resize(w, h)
		}
	})
	if doErr != nil {
		err = doErr
	}
	if err != nil {
		p.logger.Error("open page failed", "error", err)
		fyne.Do(func() { p.status.SetText("Error: " + err.Error()) })
		return
	}
	p.mu.Lock()
	p.session = next
	p.mu.Unlock()
	p.logger.Info("page opened", "widgets", len(next.Registry().Widgets()))
}

// post queues fn for the open session. Posted input keeps its order.
func (p *Preview) post(fn func(*Session)) {
	p.loop.Post(func() {
		if s := p.current(); s != nil {
			fn(s)
		}
	})
}

func (p *Preview) step(forward bool) {
	p.post(func(s *Session) { s.Step(forward) })
}

func (p *Preview) paintLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(p.fps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		var (
			frame  *image.RGBA
			status string
		)
		ok := p.withSession(ctx, func(s *Session) {
			frame = s.Frame()
			status = s.Status()
		})
		if !ok {
			continue
		}
		fyne.Do(func() {
			p.surface.show(frame)
			p.status.SetText(status)
		})
	}
}

// surface is the painted page. It turns fyne pointer input into page
// gestures.
type surface struct {
	widget.BaseWidget
	p     *Preview
	image *canvas.Image

	mu       sync.Mutex
	w, h     int
	dragging bool
	last     fyne.Position
}

var (
	_ fyne.Draggable    = (*surface)(nil)
	_ fyne.Scrollable   = (*surface)(nil)
	_ desktop.Mouseable = (*surface)(nil)
)

func newSurface(p *Preview, width, height int) *surface {
	img := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, width, height)))
	img.FillMode = canvas.ImageFillStretch
	img.ScaleMode = canvas.ImageScalePixels
	s := &surface{p: p, image: img, w: width, h: height}
	s.ExtendBaseWidget(s)
	return s
}

func (s *surface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.image)
}

func (s *surface) show(frame *image.RGBA) {
	s.image.Image = frame
	s.image.Refresh()
}

func (s *surface) pixels() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w, s.h
}

func (s *surface) Resize(size fyne.Size) {
	s.BaseWidget.Resize(size)
	w, h := int(size.Width), int(size.Height)
	if w <= 0 || h <= 0 {
		return
	}
	s.mu.Lock()
	s.w, s.h = w, h
	s.mu.Unlock()
	s.p.post(func(sess *Session) { sess.Resize(w, h) })
}

func (s *surface) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	pos := ev.Position
	s.last = pos
	s.dragging = true
	s.p.post(func(sess *Session) {
		sess.Press(float64(pos.X), float64(pos.Y))
	})
}

func (s *surface) Dragged(ev *fyne.DragEvent) {
	pos := ev.Position
	s.last = pos
	s.p.post(func(sess *Session) {
		sess.Move(float64(pos.X), float64(pos.Y))
	})
}

func (s *surface) DragEnd() {
	s.release(s.last)
}

func (s *surface) MouseUp(ev *desktop.MouseEvent) {
	s.release(ev.Position)
}

// release ends a gesture once, whichever of DragEnd and MouseUp comes
// first.
func (s *surface) release(pos fyne.Position) {
	if !s.dragging {
		return
	}
	s.dragging = false
	s.p.post(func(sess *Session) {
		sess.Release(float64(pos.X), float64(pos.Y))
	})
}

func (s *surface) Scrolled(ev *fyne.ScrollEvent) {
	dy := float64(-ev.Scrolled.DY)
	s.p.post(func(sess *Session) { sess.Scroll(dy) })
}
