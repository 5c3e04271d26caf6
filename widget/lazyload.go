package widget

import (
	"log/slog"
	"strconv"

	"github.com/chrisuehlinger/swipekit/config"
	"github.com/chrisuehlinger/swipekit/dom"
)

// LazyloaderType is the data-ss-widget value of the lazyloader.
const LazyloaderType = "lazyloader"

// Lateload phases.
const (
	PhaseDOM  = "dom"
	PhaseLoad = "load"
)

// Lateload swaps data-ss-ll-src into src for the elements of one loading
// phase: PhaseDOM and PhaseLoad select elements whose data-ss-options name
// that phase, and the empty phase selects elements without options. It
// returns the number of elements loaded.
func Lateload(doc *dom.Document, phase string) int {
	selector := "[data-ss-ll-src]:not([data-ss-options])"
	if phase != "" {
		selector = "[data-ss-ll-src][data-ss-options=" + strconv.Quote(phase) + "]"
	}
	n := 0
	for _, el := range doc.QuerySelectorAll(selector) {
		if loadSource(el) {
			n++
		}
	}
	return n
}

func loadSource(el *dom.Element) bool {
	src := el.GetAttribute("data-ss-ll-src")
	if src == "" {
		return false
	}
	el.SetAttribute("src", src)
	el.SetAttribute("data-ss-ll-src", "")
	return true
}

// Lazyloader loads descendants with data-ss-ll-src as they come within a
// threshold of the bottom of the viewport.
type Lazyloader struct {
	id         int
	root       *dom.Element
	logger     *slog.Logger
	threshold  float64
	frozen     bool
	destroyed  bool
	lastBottom float64
	loaded     int
}

// NewLazyloader creates a lazyloader on root and loads whatever is already
// visible.
func NewLazyloader(root *dom.Element, id int, cfg config.LazyloaderConfig, logger *slog.Logger) (*Lazyloader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Lazyloader{
		id:        id,
		root:      root,
		logger:    logger.With("widget", LazyloaderType, "id", id),
		threshold: float64(cfg.Threshold),
	}
	if v, ok := root.LookupAttribute("data-ss-threshold"); ok {
		if t, err := strconv.Atoi(v); err == nil && t >= 0 {
			l.threshold = float64(t)
		} else {
			l.logger.Warn("ignoring bad threshold", "error", &ConfigError{Widget: LazyloaderType, Field: "data-ss-threshold", Reason: "not a non-negative integer"})
		}
	}
	_, l.lastBottom = root.OwnerDocument().Viewport()
	l.Update(l.lastBottom)
	return l, nil
}

// Update loads every pending descendant whose top is within the threshold
// of viewportBottom. It returns the number loaded.
func (l *Lazyloader) Update(viewportBottom float64) int {
	l.lastBottom = viewportBottom
	if l.frozen || l.destroyed {
		return 0
	}
	n := 0
	for _, el := range l.Pending() {
		if el.OffsetTop() <= viewportBottom+l.threshold {
			if loadSource(el) {
				n++
			}
		}
	}
	l.loaded += n
	if n > 0 {
		l.logger.Debug("lazy loaded", "count", n, "remaining", len(l.Pending()))
	}
	return n
}

// Pending returns the descendants still waiting to load.
func (l *Lazyloader) Pending() []*dom.Element {
	var out []*dom.Element
	for _, el := range l.root.QuerySelectorAll("[data-ss-ll-src]") {
		if el.GetAttribute("data-ss-ll-src") != "" {
			out = append(out, el)
		}
	}
	return out
}

// Complete reports whether nothing is left to load.
func (l *Lazyloader) Complete() bool { return len(l.Pending()) == 0 }

// Loaded is the number of elements this lazyloader has loaded.
func (l *Lazyloader) Loaded() int { return l.loaded }

func (l *Lazyloader) HandleResize()      { l.Update(l.lastBottom) }
func (l *Lazyloader) HandleFreeze()      { l.frozen = true }
func (l *Lazyloader) HandleUnfreeze()    { l.frozen = false }
func (l *Lazyloader) Destroy()           { l.destroyed = true }
func (l *Lazyloader) Frozen() bool       { return l.frozen }
func (l *Lazyloader) ID() int            { return l.id }
func (l *Lazyloader) Type() string       { return LazyloaderType }
func (l *Lazyloader) Root() *dom.Element { return l.root }
