package carousel

import (
	"math"

	"github.com/chrisuehlinger/swipekit/dom"
)

type axis int

const (
	axisNone axis = iota
	axisX
	axisY
)

// gesture is the state of one press-to-release interaction.
type gesture struct {
	press       *dom.Event
	start       Coords
	lastX       float64
	base        float64
	interrupted bool
	axis        axis
	subs        []*dom.Subscription

	// pinch tracking
	panLock    bool
	second     Point
	anchor     float64
	prevSpread float64
	direction  int
}

func componentOf(ev *dom.Event) string {
	if el := ev.TargetElement(); el != nil {
		return el.GetAttribute("data-ss-component")
	}
	return ""
}

// onPress starts a gesture for presses on the carousel body. Presses on
// controls, during a jump, or while frozen are left alone.
func (c *Carousel) onPress(ev *dom.Event) {
	if c.session != nil || c.state == StateDestroyed {
		return
	}
	switch componentOf(ev) {
	case "button", "zoom_icon", "dot", "dots", "thumbnail":
		return
	}
	if c.Jumping() || c.frozen {
		return
	}
	c.handleSwipe(ev)
}

func (c *Carousel) handleSwipe(press *dom.Event) {
	if c.flags.Infinite {
		now := c.loop.Now()
		if now.Sub(c.lastSlideTime) < c.cfg.SwipeDebounce.D() {
			return
		}
		c.lastSlideTime = now
	}
	start, ok := CoordsOf(press)
	if !ok {
		return
	}
	g := &gesture{
		press:      press,
		start:      start,
		lastX:      start.X,
		panLock:    true,
		anchor:     start.Spread(),
		prevSpread: -1,
	}
	if press.Type == "mousedown" {
		press.Stifle()
	}

	var move dom.Listener
	switch c.state {
	case StateResting:
		g.base = c.position
		if c.flags.Swipe {
			move = c.onDragMove
		}
	case StateTransitioning:
		if !c.interrupt(press) {
			return
		}
		g.interrupted = true
		g.base = c.position
		move = c.onDragMove
	case StateZoomed:
		if c.flags.Zoom {
			move = c.onPanMove
		}
	default:
		press.Stifle()
		return
	}

	c.session = g
	if move != nil {
		g.subs = append(g.subs, c.root.On("touchmove mousemove", move)...)
	}
	g.subs = append(g.subs, c.root.On("touchend mouseup", c.onRelease)...)
}

// interrupt freezes an in-flight slide at its live position so a drag can
// take over. A pending wrap is folded into the base position so the drag
// continues over the real items.
func (c *Carousel) interrupt(press *dom.Event) bool {
	if !c.flags.Swipe {
		press.Stifle()
		return false
	}
	c.setState(StateInterrupted)
	c.observer.Interrupted(c.id)

	if c.flags.Autoscroll {
		c.AutoscrollOff()
		if c.restartID != 0 {
			c.loop.ClearTimer(c.restartID)
			c.restartID = 0
		}
		c.restartArmed = false
	}

	c.cancelMotion()
	if c.rebaseFrame != 0 {
		c.loop.ClearTimer(c.rebaseFrame)
		c.rebaseFrame = 0
	}
	c.setContainerState("notransition")

	if c.wrapPending {
		span := c.itemWidth * float64(c.numChildren-2)
		if c.forward {
			c.position += span
		} else {
			c.position -= span
		}
		c.wrapPending = false
	}
	c.applyPosition()
	c.offset = c.offsetFor(c.index)
	return true
}

func (c *Carousel) onDragMove(ev *dom.Event) {
	g := c.session
	if g == nil {
		return
	}
	cur, ok := CoordsOf(ev)
	if !ok {
		return
	}
	if g.axis == axisNone {
		if verticalIntent(g.start, cur) {
			g.axis = axisY
		} else {
			g.axis = axisX
		}
	}
	if g.axis == axisY {
		return
	}
	ev.Stifle()
	if c.state == StateResting {
		c.setState(StateDragging)
	}
	g.lastX = cur.X
	c.setContainerState("notransition")
	c.position = g.base - (g.start.X - cur.X)
	c.applyPosition()
}

func (c *Carousel) endSession() *gesture {
	g := c.session
	if g != nil {
		dom.RemoveAll(g.subs)
		c.session = nil
	}
	return g
}

// onRelease classifies the finished gesture. The first matching rule wins:
// link tap, zoom toggle, snap back, then slide or boundary clamp.
func (c *Carousel) onRelease(ev *dom.Event) {
	g := c.endSession()
	if g == nil || c.Jumping() {
		return
	}
	ev.Stifle()

	if c.state == StateZoomed {
		c.panCoordsStart = c.panCoords
		if img := ev.TargetElement(); img != nil && img.GetAttribute("data-ss-state") == "panning" {
			img.SetAttribute("data-ss-state", "ready")
		}
	}

	if componentOf(ev) != "button" {
		c.classify(g, ev)
	}

	if c.state == StateDragging || c.state == StateInterrupted {
		c.snapBack()
	}
}

func (c *Carousel) classify(g *gesture, release *dom.Event) {
	lastX, endY := g.lastX, g.start.Y
	if end, ok := CoordsOf(release); ok {
		lastX, endY = end.X, end.Y
	}
	xDist := g.start.X - lastX
	yDist := g.start.Y - endY
	ax, ay := math.Abs(xDist), math.Abs(yDist)
	fast := Velocity(xDist, release.TimeStamp-g.press.TimeStamp) > fastVelocity

	switch {
	case !g.interrupted && c.links && ax == 0:
		c.observer.GestureClassified(c.id, GestureLinkTap)
		c.toResting()
		c.setContainerState("ready")
		c.followLink(release)

	case !g.interrupted && c.flags.Zoom && ((ax < zoomTapDistance && ay < zoomTapDistance) || c.state == StateZoomed):
		g.press.Stifle()
		c.toResting()
		c.observer.GestureClassified(c.id, GestureZoomToggle)
		c.toggleZoom(g.press, release, ax, ay)

	case ax < snapDistance || (g.interrupted && ax < interruptedSnapDistance):
		c.observer.GestureClassified(c.id, GestureSnapBack)
		c.snapBack()

	case ax > slideDistance && c.flags.Swipe:
		if g.axis == axisY {
			c.observer.GestureClassified(c.id, GestureVerticalScroll)
			c.snapBack()
			return
		}
		c.toResting()
		if xDist > 0 {
			if !c.flags.Infinite && (c.index == c.numChildren-1 || (c.flags.Multi && c.index == c.numChildren-c.multiItems)) {
				c.observer.GestureClassified(c.id, GestureBoundaryClamp)
				c.clamp()
			} else {
				c.observer.GestureClassified(c.id, GestureSlide)
				c.SlideForward(fast)
			}
		} else {
			if !c.flags.Infinite && c.index == 0 {
				c.observer.GestureClassified(c.id, GestureBoundaryClamp)
				c.clamp()
			} else {
				c.observer.GestureClassified(c.id, GestureSlide)
				c.SlideBackward(fast)
			}
		}
	}
}

// toResting ends a drag without moving the container.
func (c *Carousel) toResting() {
	if c.state == StateDragging || c.state == StateInterrupted {
		c.setState(StateResting)
	}
}

// snapBack returns the container to offset with a fast transition. It is
// a no-op when the container is already there.
func (c *Carousel) snapBack() {
	if c.position == c.offset {
		c.setContainerState("ready")
		c.toResting()
		return
	}
	c.wrapPending = false
	c.setState(StateTransitioning)
	c.gotoPos(c.offset, motionSnap, true)
}

// clamp returns a finite carousel to its current end item.
func (c *Carousel) clamp() {
	target := c.offsetFor(c.index)
	if c.position == target {
		c.offset = target
		c.setContainerState("ready")
		return
	}
	c.wrapPending = false
	c.setState(StateTransitioning)
	c.gotoPos(target, motionClamp, false)
}

func (c *Carousel) followLink(release *dom.Event) {
	target := release.TargetElement()
	if target == nil {
		return
	}
	a := target.Closest("a")
	if a == nil {
		return
	}
	href := a.GetAttribute("href")
	if href == "" {
		return
	}
	if c.nav == nil {
		c.logger.Info("link tapped without a navigator", "href", href)
		return
	}
	c.nav.Navigate(href)
}
