// Package carousel implements the touch carousel widget: slide transitions,
// drag tracking, infinite looping with position rebasing, tap and pinch
// zoom, and autoscroll.
package carousel

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chrisuehlinger/swipekit/config"
	"github.com/chrisuehlinger/swipekit/css"
	"github.com/chrisuehlinger/swipekit/dom"
	"github.com/chrisuehlinger/swipekit/imageload"
	"github.com/chrisuehlinger/swipekit/js"
)

// Type is the data-ss-widget value for carousels.
const Type = "carousel"

const (
	axisLockRatio           = 1.2
	zoomTapDistance         = 2.0
	snapDistance            = 15.0
	interruptedSnapDistance = 25.0
	slideDistance           = 3.0
	fastVelocity            = 0.9

	autoheightSettle = 300 * time.Millisecond
	minZoomFloor     = 1.2
)

var cmsImage = regexp.MustCompile(`(?i)//[\w_./-]+-2x[\w./]+`)

// Flags are the options declared in data-ss-options.
type Flags struct {
	CMS        bool
	Peek       bool
	Infinite   bool
	Autoscroll bool
	Fullscreen bool
	Swipe      bool
	Zoom       bool
	Pinch      bool
	Use3D      bool
	Thumbs     bool
	Multi      bool
	Autoheight bool
	Overlay    bool
}

// ParseFlags reads a whitespace-separated options string. Unknown tokens
// are ignored.
func ParseFlags(options string, use3D bool) Flags {
	f := Flags{Infinite: true, Fullscreen: true, Swipe: true, Use3D: use3D}
	for _, opt := range strings.Fields(options) {
		switch opt {
		case "cms":
			f.CMS = true
		case "peek":
			f.Peek = true
		case "finite":
			f.Infinite = false
		case "autoscroll":
			f.Autoscroll = true
		case "nofullscreen":
			f.Fullscreen = false
		case "noswipe":
			f.Swipe = false
		case "zoom":
			f.Zoom = true
		case "pinch":
			f.Pinch = true
		case "3d":
			f.Use3D = true
		case "thumbs":
			f.Thumbs = true
		case "multi":
			f.Multi = true
		case "autoheight":
			f.Autoheight = true
		case "overlay":
			f.Overlay = true
		}
	}
	return f
}

// Carousel is one carousel widget. All methods must be called on the loop
// goroutine.
type Carousel struct {
	id       int
	root     *dom.Element
	loop     *js.Loop
	logger   *slog.Logger
	cfg      config.CarouselConfig
	observer Observer
	nav      Navigator
	probe    imageload.Probe
	applier  css.Applier
	flags    Flags

	container *dom.Element
	wrapper   *dom.Element
	dotsEl    *dom.Element
	prevBtn   *dom.Element
	nextBtn   *dom.Element
	zoomIcon  *dom.Element
	items     []*dom.Element
	dots      []*dom.Element
	clones    []*dom.Element

	state       State
	frozen      bool
	index       int
	maxIndex    int
	numChildren int
	multiItems  int
	itemWidth   float64
	peekWidth   float64
	links       bool

	// offset is the target translation for index; position is the
	// translation currently applied to the container.
	offset   float64
	position float64

	forward     bool
	wrapPending bool

	zoomMultiplier float64
	zoomMin        float64
	zoomMax        float64
	panCoords      Point
	panCoordsStart Point
	panMax         Point
	panMaxOriginal Point
	zoomTransform  css.Transform

	motion  *motion
	nextOp  OpID
	session *gesture

	autoscrollInterval time.Duration
	autoscrollID       js.TimerID
	restartID          js.TimerID
	restartArmed       bool
	rebaseFrame        js.TimerID
	settleID           js.TimerID
	heightID           js.TimerID
	lastSlideTime      time.Time
	images             *imageload.Waiter

	subs []*dom.Subscription
}

// Option configures a Carousel.
type Option func(*Carousel)

// WithID sets the widget id. Without it the id is read from data-ss-id.
func WithID(id int) Option {
	return func(c *Carousel) { c.id = id }
}

// WithLoop sets the event loop that drives timers and motions.
func WithLoop(loop *js.Loop) Option {
	return func(c *Carousel) { c.loop = loop }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Carousel) { c.logger = logger }
}

// WithConfig sets the defaults that data-ss-* attributes override.
func WithConfig(cfg config.CarouselConfig) Option {
	return func(c *Carousel) { c.cfg = cfg }
}

// WithObserver sets the lifecycle observer.
func WithObserver(o Observer) Option {
	return func(c *Carousel) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithNavigator sets the collaborator that follows tapped links.
func WithNavigator(n Navigator) Option {
	return func(c *Carousel) { c.nav = n }
}

// WithImageProbe sets how image load state is checked before the first
// layout.
func WithImageProbe(p imageload.Probe) Option {
	return func(c *Carousel) { c.probe = p }
}

// New enhances root into a carousel. It returns ErrNoItems, leaving root
// untouched, when root contains no [data-ss-component=item] elements.
func New(root *dom.Element, opts ...Option) (*Carousel, error) {
	c := &Carousel{
		root:     root,
		cfg:      config.Default().Carousel,
		observer: NopObserver{},
		probe:    imageload.AlwaysLoaded,
		state:    StateLoading,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.loop == nil {
		c.loop = js.NewLoop()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.id == 0 {
		c.id, _ = strconv.Atoi(root.GetAttribute("data-ss-id"))
	}
	c.logger = c.logger.With("widget", Type, "id", c.id)
	c.flags = ParseFlags(root.GetAttribute("data-ss-options"), c.cfg.Use3D)
	c.applier = css.Applier{Use3D: c.flags.Use3D}

	if c.flags.CMS {
		c.processCMS()
	}
	if len(root.QuerySelectorAll("[data-ss-component=item]")) == 0 {
		return nil, fmt.Errorf("carousel %d: %w", c.id, ErrNoItems)
	}

	c.buildMarkup()

	c.maxIndex = len(c.container.QuerySelectorAll("[data-ss-component=item]"))
	c.multiItems = 1
	if c.flags.Multi {
		c.multiItems = intAttr(root, "data-ss-multi-set", c.cfg.MultiItems)
		if c.multiItems < 1 {
			c.multiItems = 1
		}
	}
	if c.flags.Infinite {
		if c.flags.Multi {
			c.logger.Warn("multi with infinite scrolling is not supported, add the finite option")
		}
		c.createClones(1)
		c.lastSlideTime = c.loop.Now()
	}

	c.items = c.container.QuerySelectorAll("[data-ss-component=item]")
	c.numChildren = len(c.items)

	// Clones carry no listeners, so links are stifled once they exist.
	if c.flags.Swipe {
		for _, a := range root.QuerySelectorAll("a") {
			c.subs = append(c.subs, a.On("click", func(ev *dom.Event) { ev.Stifle() })...)
		}
	}

	if c.flags.Infinite || c.numChildren > 1 {
		c.nextBtn.SetAttribute("data-ss-state", "enabled")
	} else {
		c.nextBtn.SetAttribute("data-ss-state", "disabled")
	}

	c.links = c.items[0].Is("a") || len(c.container.QuerySelectorAll("[data-ss-component=item] a[href]")) > 0

	c.buildDots()

	if c.flags.Peek {
		c.peekWidth = float64(intAttr(root, "data-ss-peek-width", c.cfg.PeekWidth))
		if int(c.peekWidth)%2 != 0 {
			c.peekWidth++
			root.SetAttribute("data-ss-peek-width", strconv.Itoa(int(c.peekWidth)))
		}
	}

	for _, item := range c.items {
		item.SetAttribute("data-ss-state", "inactive")
	}
	if c.flags.Infinite {
		c.index = 1
	}
	if v, ok := root.LookupAttribute("data-ss-index"); ok {
		if i, err := strconv.Atoi(v); err == nil && c.validIndex(i) {
			c.index = i
		}
	}
	c.setActive(-1, c.index)
	c.updateButtons()

	if c.flags.Zoom {
		c.setupZoom()
	}

	c.images = imageload.Wait(c.loop, c.probe, c.container, imageload.DefaultTimeout, func(r imageload.Result) {
		if r.Failed > 0 || r.TimedOut > 0 {
			c.logger.Warn("laying out with unloaded images", "failed", r.Failed, "timed_out", r.TimedOut)
		}
		c.layout()
	})

	if c.flags.Swipe || c.flags.Zoom {
		c.subs = append(c.subs, root.On("touchstart mousedown", c.onPress)...)
	}

	if c.flags.Autoscroll {
		c.autoscrollInterval = time.Duration(intAttr(root, "data-ss-autoscroll-interval", int(c.cfg.AutoscrollInterval.D()/time.Millisecond))) * time.Millisecond
		if c.autoscrollInterval <= 0 {
			c.autoscrollInterval = c.cfg.AutoscrollInterval.D()
		}
		c.AutoscrollOn()
	}

	if c.flags.Autoheight {
		height := c.items[c.index].OuterHeight()
		root.Style().SetPixels("min-height", height)
		c.subs = append(c.subs, root.Once("widget-ready", func(*dom.Event) {
			root.Style().SetPixels("height", height)
			c.heightID = c.loop.SetTimeout(func() {
				c.heightID = 0
				root.Style().SetPixels("min-height", 0)
			}, autoheightSettle)
		})...)
	}

	c.subs = append(c.subs, root.Once("widget-ready", func(*dom.Event) {
		root.SetAttribute("data-ss-state", "ready")
	})...)

	c.logger.Debug("carousel created", "items", c.maxIndex, "infinite", c.flags.Infinite)
	return c, nil
}

// processCMS turns image URLs embedded in <style> tags into <img> items.
func (c *Carousel) processCMS() {
	for _, style := range c.root.QuerySelectorAll("style") {
		src := cmsImage.FindString(style.TextContent())
		if src == "" {
			c.logger.Warn("cms style without a 2x image", "style", style.TextContent())
			continue
		}
		img := style.OwnerDocument().CreateElement("img")
		img.SetAttribute("src", src)
		style.Before(img.AsNode())
		if li := style.Closest("li"); li != nil {
			li.SetAttribute("data-ss-component", "item")
		}
		if next := style.NextElementSibling(); next != nil && next.Is("div") {
			next.Remove()
		}
		style.Remove()
	}
}

func (c *Carousel) component(tag, name string) *dom.Element {
	el := c.root.OwnerDocument().CreateElement(tag)
	el.SetAttribute("data-ss-component", name)
	return el
}

// buildMarkup wraps the items and adds dots, buttons and the zoom icon.
// The resulting order after the wrapper is dots, prev, next, zoom_icon.
func (c *Carousel) buildMarkup() {
	c.container = c.root.WrapInner(c.component("div", "container"))
	c.wrapper = c.root.WrapInner(c.component("div", "container_wrapper"))

	c.dotsEl = c.root.AppendElement(c.component("div", "dots"))

	c.prevBtn = c.root.AppendElement(c.component("div", "button"))
	c.prevBtn.SetAttribute("data-ss-button-type", "prev")
	c.prevBtn.SetAttribute("data-ss-state", "disabled")
	c.nextBtn = c.root.AppendElement(c.component("div", "button"))
	c.nextBtn.SetAttribute("data-ss-button-type", "next")

	c.subs = append(c.subs, c.prevBtn.On("click", func(ev *dom.Event) {
		ev.Stifle()
		if c.state == StateResting && !c.frozen {
			c.SlideBackward(false)
		}
	})...)
	c.subs = append(c.subs, c.nextBtn.On("click", func(ev *dom.Event) {
		ev.Stifle()
		if c.state == StateResting && !c.frozen {
			c.SlideForward(false)
		}
	})...)

	if c.flags.Zoom {
		c.zoomIcon = c.root.AppendElement(c.component("div", "zoom_icon"))
		c.zoomIcon.SetAttribute("data-ss-state", "out")
		c.subs = append(c.subs, c.zoomIcon.On("click", func(ev *dom.Event) {
			ev.Stifle()
			if !c.frozen {
				c.toggleZoom(ev, ev, 0, 0)
			}
		})...)
	}
}

// buildDots creates one dot per logical item, holding a thumbnail when the
// thumbs option is set.
func (c *Carousel) buildDots() {
	for i, item := range c.items {
		if c.isClone(i) {
			continue
		}
		dot := c.dotsEl.AppendElement(c.component("div", "dot"))
		dot.SetAttribute("data-ss-state", "inactive")
		if c.flags.Thumbs {
			src := item.GetAttribute("src")
			if !item.Is("img") {
				if img := item.QuerySelector("img"); img != nil {
					src = img.GetAttribute("src")
				}
			}
			thumb := dot.AppendElement(c.component("img", "thumbnail"))
			thumb.SetAttribute("src", src)
		}
		c.dots = append(c.dots, dot)
	}
	for i, dot := range c.dots {
		target := i
		if c.flags.Infinite {
			target++
		}
		c.subs = append(c.subs, dot.On("click", func(ev *dom.Event) {
			if c.state != StateResting || c.frozen {
				return
			}
			ev.Stifle()
			c.JumpTo(target)
		})...)
	}
}

func (c *Carousel) setupZoom() {
	c.zoomMin = floatAttr(c.root, "data-ss-zoom-min", c.cfg.ZoomMin)
	c.zoomMax = floatAttr(c.root, "data-ss-zoom-max", c.cfg.ZoomMax)
	if c.zoomMin < minZoomFloor {
		c.zoomMin = minZoomFloor
	}
	if c.zoomMin > c.zoomMax {
		c.logger.Warn("zoom min is greater than zoom max", "min", c.zoomMin, "max", c.zoomMax)
	}
	c.zoomMultiplier = floatAttr(c.root, "data-ss-zoom-multiplier", c.cfg.ZoomMultiplier)
	if c.zoomMin <= c.zoomMax {
		c.zoomMultiplier = math.Max(c.zoomMin, math.Min(c.zoomMax, c.zoomMultiplier))
	}
	c.zoomTransform = css.Identity
}

// layout computes item geometry once the container's images have loaded,
// then moves to StateResting on the next tick.
func (c *Carousel) layout() {
	c.images = nil
	if c.state == StateDestroyed {
		return
	}
	c.itemWidth = c.root.Width() / float64(c.multiItems)
	c.container.Style().SetPixels("width", c.itemWidth*float64(c.numChildren))

	if c.flags.Peek {
		c.itemWidth -= c.peekWidth
	}
	c.sizeItems()

	c.offset = c.offsetFor(c.index)
	c.position = c.offset
	c.setContainerState("notransition")
	c.applyPosition()

	if c.flags.Zoom {
		c.panMax = Point{
			X: (c.itemWidth - c.peekWidth) / c.zoomMultiplier,
			Y: c.itemHeight() / c.zoomMultiplier,
		}
		c.panMaxOriginal = c.panMax
	}

	c.settleID = c.loop.SetTimeout(func() {
		c.settleID = 0
		c.setContainerState("ready")
		c.setState(StateResting)
	}, 0)
}

func (c *Carousel) sizeItems() {
	first := c.items[0]
	extras := first.Box("padding-left") + first.Box("padding-right") +
		first.Box("margin-left") + first.Box("margin-right")
	for _, item := range c.items {
		item.Style().SetPixels("width", c.itemWidth-extras)
	}
}

func (c *Carousel) itemHeight() float64 {
	return c.items[0].Height()
}

// offsetFor is the container translation that shows item i.
func (c *Carousel) offsetFor(i int) float64 {
	return -float64(i)*c.itemWidth + c.peekWidth/2
}

func (c *Carousel) validIndex(i int) bool {
	if c.flags.Infinite {
		return i >= 1 && i <= c.maxIndex
	}
	return i >= 0 && i <= c.maxIndex-1
}

func (c *Carousel) isClone(i int) bool {
	return c.flags.Infinite && (i == 0 || i == c.numChildren-1)
}

// dotIndex maps an item index to its dot.
func (c *Carousel) dotIndex(i int) int {
	if c.flags.Infinite {
		return i - 1
	}
	return i
}

// setActive moves the active item and dot state from item old to item
// cur. old may be -1.
func (c *Carousel) setActive(old, cur int) {
	if old >= 0 && old < len(c.items) {
		c.items[old].SetAttribute("data-ss-state", "inactive")
	}
	if d := c.dotIndex(old); old >= 0 && d >= 0 && d < len(c.dots) {
		c.dots[d].SetAttribute("data-ss-state", "inactive")
	}
	if cur >= 0 && cur < len(c.items) {
		c.items[cur].SetAttribute("data-ss-state", "active")
	}
	if d := c.dotIndex(cur); d >= 0 && d < len(c.dots) {
		c.dots[d].SetAttribute("data-ss-state", "active")
	}
}

// updateButtons enables or disables prev and next at the ends of a finite
// carousel.
func (c *Carousel) updateButtons() {
	if c.flags.Infinite {
		return
	}
	state := func(enabled bool) string {
		if enabled {
			return "enabled"
		}
		return "disabled"
	}
	c.prevBtn.SetAttribute("data-ss-state", state(c.index > 0))
	c.nextBtn.SetAttribute("data-ss-state", state(c.index < c.numChildren-1))
}

func (c *Carousel) applyAutoheight() {
	if c.flags.Autoheight {
		c.root.Style().SetPixels("height", c.items[c.index].OuterHeight())
	}
}

func (c *Carousel) setContainerState(s string) {
	c.container.SetAttribute("data-ss-state", s)
}

func (c *Carousel) applyPosition() {
	c.applier.SetTranslate(c.container, c.position, 0)
}

// setState moves to s if the transition table allows it.
func (c *Carousel) setState(s State) bool {
	if !CanTransition(c.state, s) {
		c.logger.Error("illegal carousel state transition", "from", c.state, "to", s)
		return false
	}
	c.state = s
	return true
}

// HandleFreeze stops the carousel from reacting to pointer, button and dot
// input.
func (c *Carousel) HandleFreeze() { c.frozen = true }

// HandleUnfreeze re-enables input.
func (c *Carousel) HandleUnfreeze() { c.frozen = false }

// ID returns the registry id.
func (c *Carousel) ID() int { return c.id }

// Type returns "carousel".
func (c *Carousel) Type() string { return Type }

// Root returns the widget element.
func (c *Carousel) Root() *dom.Element { return c.root }

// Container returns the element holding the items.
func (c *Carousel) Container() *dom.Element { return c.container }

// Index is the current item, counting clones.
func (c *Carousel) Index() int { return c.index }

// Offset is the translate the carousel is resting at or heading to.
func (c *Carousel) Offset() float64 { return c.offset }

// Position is the live translate, updated on every drag and animation frame.
func (c *Carousel) Position() float64 { return c.position }

// ItemWidth is the width of one item in px.
func (c *Carousel) ItemWidth() float64 { return c.itemWidth }

// NumChildren counts items including clones.
func (c *Carousel) NumChildren() int { return c.numChildren }

// MaxIndex counts items excluding clones.
func (c *Carousel) MaxIndex() int { return c.maxIndex }

// State returns the current state.
func (c *Carousel) State() State { return c.state }

// Ready reports whether the carousel is resting.
func (c *Carousel) Ready() bool { return c.state == StateResting }

// Frozen reports whether input is ignored.
func (c *Carousel) Frozen() bool { return c.frozen }

// Infinite reports whether the carousel wraps.
func (c *Carousel) Infinite() bool { return c.flags.Infinite }

// Flags returns the parsed data-ss-options.
func (c *Carousel) Flags() Flags { return c.flags }

// Items returns a copy of the item elements, clones included.
func (c *Carousel) Items() []*dom.Element { return append([]*dom.Element(nil), c.items...) }

// Dots returns a copy of the dot elements.
func (c *Carousel) Dots() []*dom.Element { return append([]*dom.Element(nil), c.dots...) }

// ZoomMultiplier is the current zoom scale.
func (c *Carousel) ZoomMultiplier() float64 { return c.zoomMultiplier }

// PanCoords is the pan offset while zoomed.
func (c *Carousel) PanCoords() Point { return c.panCoords }

// PanMax bounds PanCoords on each axis.
func (c *Carousel) PanMax() Point { return c.panMax }

// Autoscrolling reports whether the autoscroll interval is armed.
func (c *Carousel) Autoscrolling() bool { return c.autoscrollID != 0 }

// Jumping reports whether a jump is in flight.
func (c *Carousel) Jumping() bool { return c.motion != nil && c.motion.kind == motionJump }

// LogicalIndex is the index among non-clone items.
func (c *Carousel) LogicalIndex() int { return c.dotIndex(c.index) }

func intAttr(el *dom.Element, name string, def int) int {
	v := strings.TrimSpace(el.GetAttribute(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		if f, ferr := strconv.ParseFloat(v, 64); ferr == nil {
			return int(f)
		}
		return def
	}
	return n
}

func floatAttr(el *dom.Element, name string, def float64) float64 {
	v := strings.TrimSpace(el.GetAttribute(name))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) {
		return def
	}
	return f
}
