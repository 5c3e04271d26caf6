package carousel

// SlideForward moves to the next item. It returns false unless the
// carousel is resting, and at the last item of a finite carousel. Sliding
// forward from the last real item of an infinite carousel travels onto the
// trailing clone and rebases to index 1 when the motion ends.
func (c *Carousel) SlideForward(fast bool) bool {
	if c.state != StateResting || (!c.flags.Infinite && c.index == c.numChildren-1) {
		return false
	}
	old := c.index
	c.index++
	wrap := false
	if c.flags.Infinite && c.index == c.numChildren-1 {
		c.index = 1
		wrap = true
	}
	c.forward = true
	c.slide(old, c.offset-c.itemWidth, fast, wrap)
	return true
}

// SlideBackward moves to the previous item. It returns false unless the
// carousel is resting, and at index 0 of a finite carousel.
func (c *Carousel) SlideBackward(fast bool) bool {
	if c.state != StateResting || (!c.flags.Infinite && c.index == 0) {
		return false
	}
	old := c.index
	c.index--
	wrap := false
	if c.flags.Infinite && c.index == 0 {
		c.index = c.numChildren - 2
		wrap = true
	}
	c.forward = false
	c.slide(old, c.offset+c.itemWidth, fast, wrap)
	return true
}

func (c *Carousel) slide(old int, target float64, fast, wrap bool) {
	c.setActive(old, c.index)
	c.updateButtons()
	c.applyAutoheight()
	c.setState(StateTransitioning)
	c.wrapPending = wrap
	c.observer.SlideStarted(c.id, c.forward, fast)
	c.gotoPos(target, motionSlide, fast)
}

// JumpTo moves straight to item i without rebasing. The valid range is
// [1, MaxIndex] for infinite carousels and [0, MaxIndex-1] otherwise. It
// returns false for the current index, an invalid index, or when the
// carousel is not resting.
func (c *Carousel) JumpTo(i int) bool {
	if i == c.index || !c.validIndex(i) || c.state != StateResting {
		return false
	}
	old := c.index
	c.index = i
	c.setActive(old, i)
	c.updateButtons()
	c.applyAutoheight()
	c.setState(StateTransitioning)
	c.wrapPending = false
	c.gotoPos(c.offsetFor(i), motionJump, false)
	return true
}

// transitionEnd runs when a slide, jump, snap or clamp motion completes.
func (c *Carousel) transitionEnd(moved bool) {
	if moved {
		c.root.Trigger("slide-end", c.index)
		c.observer.SlideEnded(c.id, c.index)
	}
	c.setContainerState("ready")

	if c.wrapPending {
		c.rebase()
	} else {
		c.setState(StateResting)
	}

	if c.flags.Autoscroll && !c.restartArmed {
		c.restartArmed = true
		c.restartID = c.loop.SetTimeout(func() {
			c.restartID = 0
			c.AutoscrollOn()
		}, c.cfg.AutoscrollRestart.D())
	}
}

// rebase jumps without a transition from a clone to the real item it
// duplicates, then re-enables transitions on the next frame.
func (c *Carousel) rebase() {
	c.wrapPending = false
	c.setContainerState("notransition")
	c.offset = c.offsetFor(c.index)
	c.position = c.offset
	c.applyPosition()
	c.observer.Rebased(c.id)
	c.logger.Debug("rebased", "index", c.index)
	c.rebaseFrame = c.loop.NextFrame(func() {
		c.rebaseFrame = 0
		c.commitRebase()
	})
}

func (c *Carousel) commitRebase() {
	c.setContainerState("ready")
	c.setState(StateResting)
}

// AutoscrollOn starts advancing every autoscroll interval. It returns
// false if autoscroll was already running.
func (c *Carousel) AutoscrollOn() bool {
	if c.autoscrollID != 0 || c.state == StateDestroyed {
		return false
	}
	interval := c.autoscrollInterval
	if interval <= 0 {
		interval = c.cfg.AutoscrollInterval.D()
	}
	c.autoscrollID = c.loop.SetInterval(func() { c.SlideForward(false) }, interval)
	return true
}

// AutoscrollOff stops autoscroll. It returns false if it was not running.
func (c *Carousel) AutoscrollOff() bool {
	if c.autoscrollID == 0 {
		return false
	}
	c.loop.ClearTimer(c.autoscrollID)
	c.autoscrollID = 0
	return true
}
