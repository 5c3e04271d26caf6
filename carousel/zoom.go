package carousel

import (
	"math"

	"github.com/chrisuehlinger/swipekit/css"
	"github.com/chrisuehlinger/swipekit/dom"
)

// zoomImage is the active item when it is an image, otherwise its first
// image.
func (c *Carousel) zoomImage() *dom.Element {
	item := c.items[c.index]
	if item.Is("img") {
		return item
	}
	return item.QuerySelector("img")
}

// toggleZoom zooms the active image in around the release point, or out
// when already zoomed and the gesture was a tap. Input from a ghost mouse
// event following a touch is rejected.
func (c *Carousel) toggleZoom(press, release *dom.Event, xDist, yDist float64) bool {
	zoomedTap := c.state == StateZoomed && xDist < zoomTapDistance && yDist < zoomTapDistance
	if (c.state != StateResting && !zoomedTap) || (press.IsTouch() && release.IsMouse()) {
		press.Stifle()
		release.Stifle()
		return false
	}
	img := c.zoomImage()
	if img == nil {
		return false
	}
	img.SetAttribute("data-ss-state", "ready")
	if c.state == StateResting {
		return c.zoomIn(press, release, img)
	}
	return c.zoomOut(img)
}

func (c *Carousel) zoomIn(press, release *dom.Event, img *dom.Element) bool {
	m := c.zoomMultiplier
	if componentOf(release) == "zoom_icon" {
		c.panCoords = Point{}
		c.panCoordsStart = Point{}
	} else {
		end, ok := CoordsOf(release)
		if !ok {
			end = Coords{X: math.NaN(), Y: math.NaN()}
		}
		var offsetY float64
		if press.IsMouse() {
			offsetY = press.OffsetY
		} else if target := press.TargetElement(); target != nil {
			offsetY = press.PageY - target.OffsetTop()
		}
		pan := Point{
			X: -(end.X - c.itemWidth/2) * m,
			Y: (c.itemHeight()/m - offsetY) * m,
		}
		if math.IsNaN(pan.X) || math.IsNaN(pan.Y) {
			return false
		}
		c.panCoords = pan
		c.checkPanLimits()
		c.panCoordsStart = c.panCoords
	}

	c.dotsEl.Style().SetProperty("visibility", "hidden")
	c.nextBtn.Style().SetProperty("display", "none")
	c.prevBtn.Style().SetProperty("display", "none")
	c.setState(StateZooming)
	c.root.SetAttribute("data-ss-state", "zoomed")
	c.zoomIcon.SetAttribute("data-ss-state", "in")
	c.animateZoom(img, css.Transform{X: c.panCoords.X, Y: c.panCoords.Y, Scale: m}, func() {
		c.setState(StateZoomed)
		c.observer.ZoomChanged(c.id, true)
	})
	return true
}

func (c *Carousel) zoomOut(img *dom.Element) bool {
	c.dotsEl.Style().SetProperty("visibility", "visible")
	c.nextBtn.Style().RemoveProperty("display")
	c.prevBtn.Style().RemoveProperty("display")
	c.setState(StateZooming)
	c.root.SetAttribute("data-ss-state", "ready")
	c.zoomIcon.SetAttribute("data-ss-state", "out")
	c.animateZoom(img, css.Identity, func() {
		c.setState(StateResting)
		c.observer.ZoomChanged(c.id, false)
	})
	return true
}

// checkPanLimits clamps the pan to ±panMax and, while zoomed, applies it.
func (c *Carousel) checkPanLimits() {
	c.panCoords = clampPoint(c.panCoords, c.panMax)
	if c.state != StateZoomed {
		return
	}
	img := c.zoomImage()
	if img == nil {
		return
	}
	img.SetAttribute("data-ss-state", "panning")
	c.zoomTransform = css.Transform{X: c.panCoords.X, Y: c.panCoords.Y, Scale: c.zoomMultiplier}
	c.applier.SetTransform(img, c.zoomTransform)
}

// onPanMove pans the zoomed image, or pinch-scales it when a second touch
// is down and pinch is enabled.
func (c *Carousel) onPanMove(ev *dom.Event) {
	g := c.session
	if g == nil {
		return
	}
	ev.Stifle()
	target := ev.TargetElement()
	if target == nil || !target.Is("img") {
		return
	}
	cur, ok := CoordsOf(ev)
	if !ok {
		return
	}
	target.SetAttribute("data-ss-state", "panning")

	if c.flags.Pinch && cur.Pinch {
		g.panLock = false
		g.second = Point{X: cur.X2, Y: cur.Y2}
	}
	if !g.panLock && c.flags.Pinch {
		spread := math.Hypot(g.second.X-cur.X, g.second.Y-cur.Y)
		if !c.pinch(g, spread) {
			return
		}
	} else {
		c.panCoords = Point{
			X: c.panCoordsStart.X + cur.X - g.start.X,
			Y: c.panCoordsStart.Y + cur.Y - g.start.Y,
		}
		c.checkPanLimits()
	}
	c.zoomTransform = css.Transform{X: c.panCoords.X, Y: c.panCoords.Y, Scale: c.zoomMultiplier}
	c.applier.SetTransform(target, c.zoomTransform)
}

// pinch scales by the change in finger spread since the anchor. The
// anchor resets whenever the pinch changes direction. It returns false
// when the multiplier sits at a limit, in which case the frame is not
// applied.
func (c *Carousel) pinch(g *gesture, spread float64) bool {
	reversed := g.prevSpread != -1 &&
		((g.direction > 0 && spread < g.prevSpread) || (g.direction < 0 && spread > g.prevSpread))
	switch {
	case g.anchor == 0:
		g.anchor = spread
	case g.direction == 0 || reversed:
		g.anchor = spread
		if g.direction > 0 {
			g.direction = -1
		} else {
			g.direction = 1
		}
	}
	g.prevSpread = spread

	c.zoomMultiplier += (spread - g.anchor) / c.cfg.PinchSensitivity
	if c.zoomMultiplier >= c.zoomMax {
		c.zoomMultiplier = c.zoomMax
	} else if c.zoomMultiplier <= c.zoomMin {
		c.zoomMultiplier = c.zoomMin
	}
	c.panMax = Point{
		X: (c.zoomMultiplier - 1) * c.panMaxOriginal.X,
		Y: (c.zoomMultiplier - 1) * c.panMaxOriginal.Y,
	}
	if c.zoomMultiplier == c.zoomMax || c.zoomMultiplier == c.zoomMin {
		c.panCoords = clampPoint(c.panCoords, c.panMax)
		return false
	}
	c.checkPanLimits()
	c.panCoordsStart = c.panCoords
	return true
}

// Zoomed reports whether the active image is zoomed in.
func (c *Carousel) Zoomed() bool { return c.state == StateZoomed }
