package carousel

import (
	"github.com/chrisuehlinger/swipekit/dom"
	"github.com/chrisuehlinger/swipekit/js"
)

// HandleResize recomputes item geometry from the root's current width.
// An in-flight motion is completed first.
func (c *Carousel) HandleResize() {
	if c.state == StateDestroyed || c.state == StateLoading {
		return
	}
	c.settleMotion()

	width := c.root.Width()
	k := float64(c.multiItems)
	if c.flags.Multi {
		c.itemWidth = width / k
	}
	if c.flags.Fullscreen {
		c.itemWidth = width/k - c.peekWidth
		c.offset = c.offsetFor(c.index)
		c.position = c.offset
		c.setContainerState("notransition")
		c.applyPosition()
		c.sizeItems()
		c.loop.NextFrame(func() {
			if c.state != StateDestroyed && c.motion == nil {
				c.setContainerState("ready")
			}
		})
	}
	c.container.Style().SetPixels("width", c.itemWidth*float64(c.numChildren))

	if c.flags.Zoom && c.zoomMultiplier != 0 {
		c.panMax = Point{
			X: c.itemWidth / c.zoomMultiplier,
			Y: c.itemHeight() / c.zoomMultiplier,
		}
		c.checkPanLimits()
	}
	c.logger.Debug("resized", "width", width, "item_width", c.itemWidth)
}

// Destroy cancels every timer and motion, detaches listeners and restores
// the original markup. Later calls are no-ops.
func (c *Carousel) Destroy() {
	if c.state == StateDestroyed {
		return
	}
	c.cancelMotion()
	c.AutoscrollOff()
	for _, id := range []*js.TimerID{&c.restartID, &c.rebaseFrame, &c.settleID, &c.heightID} {
		if *id != 0 {
			c.loop.ClearTimer(*id)
			*id = 0
		}
	}
	if c.images != nil {
		c.images.Cancel()
		c.images = nil
	}
	c.endSession()
	dom.RemoveAll(c.subs)
	c.subs = nil

	for _, el := range []*dom.Element{c.dotsEl, c.prevBtn, c.nextBtn, c.zoomIcon} {
		if el != nil {
			el.Remove()
		}
	}
	for _, clone := range c.clones {
		clone.Remove()
	}
	for _, item := range c.container.QuerySelectorAll("[data-ss-component=item]") {
		item.RemoveAttribute("data-ss-state")
		item.Style().RemoveProperty("width")
		if img := item.QuerySelector("img"); img != nil {
			c.applier.Clear(img)
			img.RemoveAttribute("data-ss-state")
		}
		if item.Is("img") {
			c.applier.Clear(item)
		}
	}
	c.container.Unwrap()
	c.wrapper.Unwrap()
	c.root.RemoveAttribute("data-ss-state")

	c.setState(StateDestroyed)
	c.logger.Debug("carousel destroyed")
}
