// Package overlay is the full-page layer used to present content above the
// document, most often a fullscreen copy of a carousel.
package overlay

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chrisuehlinger/swipekit/carousel"
	"github.com/chrisuehlinger/swipekit/config"
	"github.com/chrisuehlinger/swipekit/dom"
	"github.com/chrisuehlinger/swipekit/js"
	"github.com/chrisuehlinger/swipekit/widget"
)

const (
	selector  = "[data-ss-utility=overlay]"
	closeText = "tap to close"
)

// Overlay owns the single overlay element of a document. Methods must be
// called on the loop goroutine.
type Overlay struct {
	doc     *dom.Document
	reg     *widget.Registry
	loop    *js.Loop
	cfg     config.OverlayConfig
	logger  *slog.Logger
	el      *dom.Element
	close   *dom.Element
	content *dom.Element

	on         bool
	activating bool
	pending    []js.TimerID
	hidden     []*dom.Element
	width      float64
	subs       []*dom.Subscription
}

// New attaches to the document's overlay element, creating it under body
// when there is none.
func New(doc *dom.Document, reg *widget.Registry, loop *js.Loop, cfg config.OverlayConfig, logger *slog.Logger) *Overlay {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Overlay{
		doc:    doc,
		reg:    reg,
		loop:   loop,
		cfg:    cfg,
		logger: logger.With("component", "overlay"),
	}

	o.el = doc.QuerySelector(selector)
	if o.el == nil {
		o.el = doc.CreateElement("div")
		o.el.SetAttribute("data-ss-utility", "overlay")
		o.el.SetAttribute("data-ss-state", "inactive")
		o.el.Style().SetProperty("display", "none")
		doc.Body().AppendElement(o.el)
	}
	o.close = o.child("close")
	if o.close.TextContent() == "" {
		o.close.SetTextContent(closeText)
	}
	o.content = o.child("content")
	o.on = o.el.GetAttribute("data-ss-state") == "active"

	o.subs = o.close.On("click", func(*dom.Event) { o.Off() })
	return o
}

func (o *Overlay) child(name string) *dom.Element {
	if el := o.el.QuerySelector("> ." + name); el != nil {
		return el
	}
	el := o.doc.CreateElement("div")
	el.SetAttribute("class", name)
	o.el.AppendElement(el)
	return el
}

// On shows the overlay and applies css on the next tick.
func (o *Overlay) On(css map[string]string, showClose bool) {
	if o.on || o.activating {
		return
	}
	o.activating = true
	o.el.Style().RemoveProperty("display")
	if showClose {
		o.close.Style().RemoveProperty("display")
	}
	o.width, _ = o.doc.Viewport()
	o.after(0, func() {
		o.activating = false
		keys := make([]string, 0, len(css))
		for k := range css {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		style := o.el.Style()
		for _, k := range keys {
			style.SetProperty(k, css[k])
		}
		o.el.SetAttribute("data-ss-state", "active")
		o.on = true
		o.logger.Debug("overlay on")
	})
}

// Off hides the overlay, destroys the widgets inside it and restores the
// page.
func (o *Overlay) Off() {
	if !o.on && !o.activating {
		return
	}
	o.cancel()
	o.on, o.activating = false, false

	o.el.SetAttribute("data-ss-state", "inactive")
	o.el.Style().SetCSSText("")
	o.el.Style().SetProperty("display", "none")

	if o.reg != nil {
		if n := o.reg.DestroyWithin(o.content); n > 0 {
			o.logger.Debug("destroyed overlay widgets", "count", n)
		}
	}
	o.content.Empty()

	body := o.doc.Body().Style()
	body.RemoveProperty("overflow")
	body.RemoveProperty("height")
	for _, el := range o.hidden {
		el.Style().RemoveProperty("display")
	}
	o.hidden = nil

	if width, _ := o.doc.Viewport(); width != o.width && o.reg != nil {
		o.reg.OrientationChange()
	}
	o.logger.Debug("overlay off")
}

// Toggle turns the overlay on with no extra css, or off.
func (o *Overlay) Toggle() {
	if o.on {
		o.Off()
		return
	}
	o.On(nil, true)
}

// InjectCarousel opens a fullscreen copy of c in the overlay and returns
// the new carousel's root. The copy is initialised once the overlay
// transition ends.
func (o *Overlay) InjectCarousel(c *carousel.Carousel, css map[string]string) *dom.Element {
	o.On(css, true)

	items := c.Items()
	var opts []string
	opts = append(opts, "overlay")
	if c.Infinite() && len(items) > 2 {
		items = items[1 : len(items)-1]
	} else {
		opts = append(opts, "finite")
	}
	if !c.Flags().Swipe {
		opts = append(opts, "noswipe")
	}

	root := o.doc.CreateElement("div")
	root.SetAttribute("data-ss-widget", carousel.Type)
	root.SetAttribute("data-ss-options", strings.Join(opts, " "))
	root.SetAttribute("data-ss-index", strconv.Itoa(c.Index()))
	for _, item := range items {
		clone := item.Clone(true)
		clone.RemoveAttribute("data-ss-state")
		clone.RemoveAttribute("style")
		root.AppendElement(clone)
	}
	o.content.AppendElement(root)

	o.after(o.cfg.Transition.D(), func() {
		root.Once(widget.ReadyEvent, func(*dom.Event) { o.hidePage() })
		if o.reg == nil || !o.reg.Init(root, false) {
			o.logger.Warn("overlay carousel was not initialised")
		}
	})
	return root
}

// hidePage hides everything but the overlay behind it.
func (o *Overlay) hidePage() {
	if !o.on {
		return
	}
	body := o.doc.Body()
	body.Style().SetProperty("overflow", "hidden")
	body.Style().SetProperty("height", "100%")
	for _, el := range body.Children() {
		if el == o.el || el.HasAttribute("data-ss-utility") {
			continue
		}
		if el.Style().GetPropertyValue("display") == "none" {
			continue
		}
		el.Style().SetProperty("display", "none")
		o.hidden = append(o.hidden, el)
	}
}

// HideAssets fades out the close control.
func (o *Overlay) HideAssets() { o.close.Style().SetProperty("opacity", "0") }

// ShowAssets fades the close control back in.
func (o *Overlay) ShowAssets() { o.close.Style().SetProperty("opacity", "1") }

func (o *Overlay) after(d time.Duration, fn func()) {
	var id js.TimerID
	id = o.loop.SetTimeout(func() {
		o.forget(id)
		fn()
	}, d)
	o.pending = append(o.pending, id)
}

func (o *Overlay) forget(id js.TimerID) {
	for i, p := range o.pending {
		if p == id {
			o.pending = append(o.pending[:i], o.pending[i+1:]...)
			return
		}
	}
}

func (o *Overlay) cancel() {
	for _, id := range o.pending {
		o.loop.ClearTimer(id)
	}
	o.pending = nil
}

// Close detaches the overlay's listeners.
func (o *Overlay) Close() {
	o.cancel()
	dom.RemoveAll(o.subs)
	o.subs = nil
}

// Element returns the overlay element.
func (o *Overlay) Element() *dom.Element { return o.el }

// Content returns the element overlay content is placed in.
func (o *Overlay) Content() *dom.Element { return o.content }

// Active reports whether the overlay is on.
func (o *Overlay) Active() bool { return o.on }

// Carousel returns the carousel currently shown in the overlay, if any.
func (o *Overlay) Carousel() *carousel.Carousel {
	if o.reg == nil {
		return nil
	}
	root := o.content.QuerySelector("[data-ss-widget=carousel]")
	c, _ := o.reg.FetchElement(root).(*carousel.Carousel)
	return c
}
