// Package toggler implements collapsible panels: accordions, tabs,
// responsive tabs and orphan togglers whose button and content live apart.
package toggler

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/chrisuehlinger/swipekit/config"
	"github.com/chrisuehlinger/swipekit/dom"
	"github.com/chrisuehlinger/swipekit/js"
)

// Type is the data-ss-widget value handled by this package.
const Type = "toggler"

// ErrNoContent is returned when a toggler has no content to reveal.
var ErrNoContent = errors.New("toggler: no content found")

// State is the open state shared by a toggler's button and content.
type State string

const (
	StateOpen    State = "open"
	StateClosed  State = "closed"
	StateAjaxing State = "ajaxing"
)

// AjaxLoader fetches the content of an ajax toggler. Fetch may call done
// from any goroutine. Complete receives the page callback name declared on
// the toggler and the fetched data.
type AjaxLoader interface {
	Fetch(url string, done func(data string, err error))
	Complete(callback, data string)
}

// Toggler is one toggler widget.
type Toggler struct {
	id     int
	root   *dom.Element
	loop   *js.Loop
	logger *slog.Logger
	cfg    config.TogglerConfig
	loader AjaxLoader
	lookup func(*dom.Element) *Toggler

	orphan   bool
	buttons  []*dom.Element
	contents []*dom.Element
	button   *dom.Element
	content  *dom.Element
	parentEl *dom.Element
	icons    []*dom.Element
	wrappers []*dom.Element

	isChild     bool
	hasTogglers bool

	state      State
	ready      bool
	frozen     bool
	opened     bool
	adjustFlag bool
	destroyed  bool

	slide     bool
	height    float64
	slideTime js.TimerID

	ajax   bool
	doAjax bool

	tab          bool
	childTabOpen bool

	responsive bool
	accordions bool
	threshold  float64

	subs []*dom.Subscription
}

// Option configures a Toggler.
type Option func(*Toggler)

// WithID sets the widget id.
func WithID(id int) Option {
	return func(t *Toggler) { t.id = id }
}

// WithLoop sets the loop slide timers run on.
func WithLoop(loop *js.Loop) Option {
	return func(t *Toggler) { t.loop = loop }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Toggler) { t.logger = logger }
}

// WithConfig sets the defaults that data-ss-* attributes override.
func WithConfig(cfg config.TogglerConfig) Option {
	return func(t *Toggler) { t.cfg = cfg }
}

// WithAjax sets the loader used by ajax togglers.
func WithAjax(loader AjaxLoader) Option {
	return func(t *Toggler) { t.loader = loader }
}

// WithParentLookup sets how a child toggler finds its parent toggler
// widget from the parent's root element.
func WithParentLookup(fn func(*dom.Element) *Toggler) Option {
	return func(t *Toggler) { t.lookup = fn }
}

// New enhances root into a toggler. An orphan toggler is built from a
// lone button carrying data-ss-toggler-id and every element sharing that
// id.
func New(root *dom.Element, orphan bool, opts ...Option) (*Toggler, error) {
	t := &Toggler{
		root:       root,
		cfg:        config.Default().Toggler,
		state:      StateClosed,
		ready:      true,
		accordions: true,
		orphan:     orphan,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.loop == nil {
		t.loop = js.NewLoop()
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if t.id == 0 {
		t.id, _ = strconv.Atoi(root.GetAttribute("data-ss-id"))
	}
	t.logger = t.logger.With("widget", Type, "id", t.id)

	t.threshold = float64(t.cfg.ResponsiveThreshold)
	if v, err := strconv.Atoi(root.GetAttribute("data-ss-responsive-threshold")); err == nil {
		t.threshold = float64(v)
	}
	for _, option := range strings.Fields(root.GetAttribute("data-ss-options")) {
		switch option {
		case "ajax":
			t.ajax = true
			t.doAjax = true
		case "tabs":
			t.tab = true
		case "slide":
			t.slide = true
		case "responsive":
			t.responsive = true
			t.tab = true
		}
	}

	if orphan {
		if err := t.setupOrphan(); err != nil {
			return nil, err
		}
		return t, nil
	}
	if err := t.setup(); err != nil {
		return nil, err
	}
	t.logger.Debug("toggler created", "panels", len(t.contents))
	return t, nil
}

func (t *Toggler) setupOrphan() error {
	togglerID := t.root.GetAttribute("data-ss-toggler-id")
	query := fmt.Sprintf("[data-ss-toggler-id=%q]", togglerID)
	for _, el := range t.root.OwnerDocument().QuerySelectorAll(query) {
		switch el.GetAttribute("data-ss-component") {
		case "button":
			t.button = el
		case "content":
			t.content = el
		}
	}
	if t.content == nil {
		t.logger.Warn("no content found for toggler id, toggler may not work", "toggler_id", togglerID)
		return fmt.Errorf("toggler %q: %w", togglerID, ErrNoContent)
	}
	if t.button == nil {
		t.button = t.root
	}
	t.subs = append(t.subs, t.button.On("click", func(ev *dom.Event) {
		t.Toggle(t.button)
	})...)
	t.SetState(StateClosed)
	return nil
}

func (t *Toggler) setup() error {
	t.buttons = t.root.QuerySelectorAll("> [data-ss-component=button]")
	t.contents = t.root.QuerySelectorAll("> [data-ss-component=content]")
	if len(t.buttons) == 0 || len(t.contents) == 0 {
		return fmt.Errorf("toggler %d: %w", t.id, ErrNoContent)
	}
	t.button = t.buttons[0]
	t.content = t.contents[0]

	doc := t.root.OwnerDocument()
	for _, b := range t.buttons {
		icon := doc.CreateElement("span")
		icon.SetAttribute("class", "icon")
		t.icons = append(t.icons, b.AppendElement(icon))
	}
	for _, c := range t.contents {
		wrapper := doc.CreateElement("div")
		wrapper.SetAttribute("data-ss-component", "wrapper")
		t.wrappers = append(t.wrappers, c.WrapInner(wrapper))
	}

	t.hasTogglers = t.root.QuerySelector("[data-ss-widget=toggler]") != nil
	if parent := t.root.ParentElement(); parent != nil {
		t.parentEl = parent.Closest("[data-ss-widget=toggler]")
	}
	t.isChild = t.parentEl != nil

	if t.root.GetAttribute("data-ss-state") == string(StateOpen) {
		t.setAll(StateOpen)
		t.opened = true
	} else {
		t.setAll(StateClosed)
		t.root.SetAttribute("data-ss-state", string(StateClosed))
	}

	if t.slide {
		if t.hasTogglers {
			var height float64
			for _, b := range t.content.QuerySelectorAll("[data-ss-component=button]") {
				height += b.OuterHeight()
			}
			t.height = height
		} else {
			for _, c := range t.contents {
				c.SetAttribute("data-ss-slide-height", strconv.FormatFloat(c.Height(), 'f', -1, 64))
			}
		}
		for _, c := range t.contents {
			c.Style().SetPixels("height", 0)
			c.SetAttribute("data-ss-state", string(StateClosed))
		}
	}

	for _, b := range t.buttons {
		button := b
		t.subs = append(t.subs, button.On("click", func(ev *dom.Event) {
			if t.ajax && t.doAjax {
				ev.Stifle()
				t.loadAjax(button)
				return
			}
			t.Toggle(button)
		})...)
	}

	t.HandleResponsive()
	return nil
}

func (t *Toggler) setAll(s State) {
	for _, b := range t.buttons {
		b.SetAttribute("data-ss-state", string(s))
	}
	for _, c := range t.contents {
		c.SetAttribute("data-ss-state", string(s))
	}
}

func (t *Toggler) parent() *Toggler {
	if t.parentEl == nil || t.lookup == nil {
		return nil
	}
	return t.lookup(t.parentEl)
}

func contentOf(button *dom.Element) *dom.Element {
	next := button.NextElementSibling()
	if next != nil && next.GetAttribute("data-ss-component") == "content" {
		return next
	}
	return nil
}

func slideHeight(content *dom.Element) float64 {
	h, _ := strconv.ParseFloat(content.GetAttribute("data-ss-slide-height"), 64)
	return h
}

// armSlide marks the toggler busy until the slide transition has run.
func (t *Toggler) armSlide(adjust bool) {
	if t.slideTime != 0 {
		t.loop.ClearTimer(t.slideTime)
	}
	t.slideTime = t.loop.SetTimeout(func() {
		t.slideTime = 0
		t.ready = true
		if adjust {
			t.adjustHeight()
		}
	}, t.cfg.SlideDuration.D())
}

// Open opens the current panel.
func (t *Toggler) Open() {
	slideOpenWithTab := t.accordions
	if t.destroyed || (!t.ready && !slideOpenWithTab) || t.content == nil {
		return
	}
	if t.slide {
		if t.responsive && !slideOpenWithTab {
			return
		}
		t.ready = false
		adjust := t.adjustFlag || slideOpenWithTab

		switch {
		case t.hasTogglers:
			// Grown by child togglers through AddHeight.
		case t.ajax && t.height == 0:
			t.height = t.naturalHeight()
		default:
			t.height = slideHeight(t.content)
		}
		t.content.Style().SetPixels("height", t.height)

		if parent := t.parent(); t.isChild && parent != nil && parent.slide {
			if t.tab {
				if !parent.childTabOpen {
					parent.AddHeight(t.height)
					parent.childTabOpen = true
				}
			} else {
				parent.AddHeight(t.height)
			}
		}
		t.armSlide(adjust)
	}
	t.opened = true
	t.SetState(StateOpen)
}

// Close closes the current panel.
func (t *Toggler) Close() {
	if t.destroyed || !t.ready || t.content == nil {
		return
	}
	if t.slide {
		t.ready = false
		if parent := t.parent(); t.isChild && parent != nil && parent.slide && !t.tab {
			parent.AddHeight(-t.height)
		}
		t.content.Style().SetPixels("height", 0)
		t.armSlide(false)
	}
	t.SetState(StateClosed)
}

// Toggle reacts to a click on button: it opens or closes the button's
// panel, switching panels in tab mode.
func (t *Toggler) Toggle(button *dom.Element) {
	if t.frozen || t.destroyed {
		return
	}
	if t.orphan {
		if t.opened {
			t.opened = false
			t.SetState(StateClosed)
		} else {
			t.opened = true
			t.SetState(StateOpen)
		}
		return
	}
	if button == nil {
		button = t.button
	}

	if t.tab {
		collapse := t.button.GetAttribute("data-ss-state") == string(StateOpen) && t.button == button
		if t.responsive && !t.accordions && t.button == button {
			return
		}
		t.Close()
		t.button = button
		t.content = contentOf(button)
		if t.slide && t.content != nil && !t.hasTogglers {
			t.height = slideHeight(t.content)
		}
		if collapse {
			t.root.SetAttribute("data-ss-state", string(StateClosed))
			t.opened = false
			return
		}
		t.Open()
		return
	}

	t.button = button
	t.content = contentOf(button)
	collapse := button.GetAttribute("data-ss-state") == string(StateOpen) &&
		len(t.root.QuerySelectorAll("[data-ss-component=button][data-ss-state=open]")) == 1
	if collapse {
		t.opened = false
	}
	if button.GetAttribute("data-ss-state") == string(StateClosed) {
		t.Open()
	} else {
		t.Close()
	}
}

func (t *Toggler) loadAjax(button *dom.Element) {
	if t.frozen {
		return
	}
	url := t.root.GetAttribute("data-ss-ajax-url")
	callback := t.root.GetAttribute("data-ss-ajax-callback")
	switch {
	case url == "":
		t.logger.Warn("data-ss-ajax-url is required, must be on the same domain")
		return
	case callback == "":
		t.logger.Warn("data-ss-ajax-callback is required")
		return
	case t.loader == nil:
		t.logger.Warn("ajax toggler without a loader", "url", url)
		return
	}

	t.button = button
	t.content = contentOf(button)
	t.SetState(StateAjaxing)
	t.ready = false
	t.loader.Fetch(url, func(data string, err error) {
		t.loop.Post(func() {
			if t.destroyed {
				return
			}
			t.ready = true
			if err != nil {
				t.logger.Warn("ajax toggler fetch failed", "url", url, "error", err)
				t.SetState(StateClosed)
				return
			}
			t.loader.Complete(callback, data)
			t.doAjax = false
			t.Open()
		})
	})
}

// SetState writes s onto the current button and content and updates the
// root's open state.
func (t *Toggler) SetState(s State) {
	t.state = s
	if t.button != nil {
		t.button.SetAttribute("data-ss-state", string(s))
	}
	if t.content != nil {
		t.content.SetAttribute("data-ss-state", string(s))
	}
	if t.orphan {
		return
	}
	if t.opened {
		t.root.SetAttribute("data-ss-state", string(StateOpen))
	} else {
		t.root.SetAttribute("data-ss-state", string(StateClosed))
	}
	if t.responsive && t.opened {
		t.HandleResponsive()
	}
}

// AddHeight grows the current content by h, never below zero.
func (t *Toggler) AddHeight(h float64) {
	t.SetHeight(t.height + h)
}

// SetHeight sets the current content height, never below zero.
func (t *Toggler) SetHeight(h float64) {
	t.height = max(h, 0)
	if t.content != nil {
		t.content.Style().SetPixels("height", t.height)
	}
}

// naturalHeight measures the current content's wrapper.
func (t *Toggler) naturalHeight() float64 {
	if w := t.content.QuerySelector("> [data-ss-component=wrapper]"); w != nil {
		return w.OuterHeight()
	}
	return 0
}

// adjustHeight re-measures an open sliding panel after a resize.
func (t *Toggler) adjustHeight() {
	t.adjustFlag = false
	if !t.slide || t.state != StateOpen || t.content == nil || t.hasTogglers {
		return
	}
	h := t.naturalHeight()
	if h == 0 {
		return
	}
	t.content.SetAttribute("data-ss-slide-height", strconv.FormatFloat(h, 'f', -1, 64))
	t.SetHeight(h)
}

// HandleResize re-measures open panels and re-evaluates responsive mode.
func (t *Toggler) HandleResize() {
	t.adjustFlag = true
	if t.state == StateOpen {
		t.adjustHeight()
	}
	if t.responsive {
		t.HandleResponsive()
	}
}

// HandleResponsive switches a responsive toggler between tabs, at or
// above the threshold width, and accordions.
func (t *Toggler) HandleResponsive() {
	if !t.responsive || t.destroyed {
		return
	}
	width, _ := t.root.OwnerDocument().Viewport()
	if width >= t.threshold {
		t.accordions = false
		t.root.SetAttribute("data-ss-responsive-type", "tabs")
		if !t.opened {
			t.button = t.buttons[0]
			t.content = t.contents[0]
			t.Open()
		}
		t.root.Style().SetPixels("min-height", t.button.OuterHeight()+t.content.OuterHeight())
	} else {
		t.accordions = true
		t.root.SetAttribute("data-ss-responsive-type", "accordions")
		t.root.Style().SetPixels("min-height", 0)
	}
}

// HandleFreeze makes clicks no-ops until HandleUnfreeze.
func (t *Toggler) HandleFreeze() { t.frozen = true }

// HandleUnfreeze re-enables clicks.
func (t *Toggler) HandleUnfreeze() { t.frozen = false }

// Destroy detaches listeners and removes the icons and wrappers.
func (t *Toggler) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true
	dom.RemoveAll(t.subs)
	t.subs = nil
	if t.slideTime != 0 {
		t.loop.ClearTimer(t.slideTime)
		t.slideTime = 0
	}
	for _, icon := range t.icons {
		icon.Remove()
	}
	for _, w := range t.wrappers {
		w.Unwrap()
	}
	for _, c := range t.contents {
		c.Style().RemoveProperty("height")
		c.RemoveAttribute("data-ss-slide-height")
	}
	t.root.Style().RemoveProperty("min-height")
	t.logger.Debug("toggler destroyed")
}

func (t *Toggler) ID() int               { return t.id }
func (t *Toggler) Type() string          { return Type }
func (t *Toggler) Root() *dom.Element    { return t.root }
func (t *Toggler) State() State          { return t.state }
func (t *Toggler) Opened() bool          { return t.opened }
func (t *Toggler) Ready() bool           { return t.ready }
func (t *Toggler) Frozen() bool          { return t.frozen }
func (t *Toggler) Orphan() bool          { return t.orphan }
func (t *Toggler) IsChild() bool         { return t.isChild }
func (t *Toggler) Height() float64       { return t.height }
func (t *Toggler) Button() *dom.Element  { return t.button }
func (t *Toggler) Content() *dom.Element { return t.content }
