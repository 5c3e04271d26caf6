package carousel

import (
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/chrisuehlinger/swipekit/css"
	"github.com/chrisuehlinger/swipekit/dom"
	"github.com/chrisuehlinger/swipekit/js"
)

// OpID identifies one motion. Ids increase monotonically; a cancelled
// motion's id is never completed.
type OpID uint64

type motionKind int

const (
	motionSlide motionKind = iota
	motionJump
	motionSnap
	motionClamp
	motionZoom
)

// motion animates a set of values from their start to their targets with
// one tween per value, all sharing a duration and easing.
type motion struct {
	id      OpID
	kind    motionKind
	tweens  []*gween.Tween
	targets []float64
	apply   func(vals []float64)
	done    func(moved bool)
	frame   js.TimerID
	waiters []func(completed bool)
}

// start begins a motion on the loop. A motion whose start equals its
// target applies the target and completes at once with moved=false.
func (c *Carousel) start(kind motionKind, from, to []float64, d time.Duration, fn ease.TweenFunc, apply func([]float64), done func(moved bool)) OpID {
	c.cancelMotion()
	c.nextOp++
	m := &motion{
		id:      c.nextOp,
		kind:    kind,
		targets: to,
		apply:   apply,
		done:    done,
	}

	moved := false
	for i := range from {
		if from[i] != to[i] {
			moved = true
		}
	}
	if !moved || d <= 0 {
		apply(to)
		done(moved)
		return m.id
	}

	for i := range from {
		m.tweens = append(m.tweens, gween.New(float32(from[i]), float32(to[i]), float32(d.Seconds()), fn))
	}
	c.motion = m
	m.frame = c.loop.RequestFrame(func(dt time.Duration) bool {
		if c.motion != m {
			return false
		}
		vals := make([]float64, len(m.tweens))
		finished := true
		for i, tw := range m.tweens {
			v, ok := tw.Update(float32(dt.Seconds()))
			vals[i] = float64(v)
			finished = finished && ok
		}
		if finished {
			c.finish(m)
			return false
		}
		m.apply(vals)
		return true
	})
	return m.id
}

// finish applies m's exact targets and runs its completion.
func (c *Carousel) finish(m *motion) {
	if c.motion != m {
		return
	}
	c.motion = nil
	c.loop.ClearTimer(m.frame)
	m.apply(m.targets)
	m.done(true)
	for _, w := range m.waiters {
		w(true)
	}
}

// cancelMotion stops the in-flight motion where it is. Its id is
// invalidated and waiters are told it did not complete.
func (c *Carousel) cancelMotion() {
	m := c.motion
	if m == nil {
		return
	}
	c.motion = nil
	c.loop.ClearTimer(m.frame)
	for _, w := range m.waiters {
		w(false)
	}
}

// settleMotion completes the in-flight motion immediately, along with a
// pending rebase frame.
func (c *Carousel) settleMotion() {
	if c.motion != nil {
		c.finish(c.motion)
	}
	if c.rebaseFrame != 0 {
		c.loop.ClearTimer(c.rebaseFrame)
		c.rebaseFrame = 0
		c.commitRebase()
	}
}

// OnComplete registers fn to run when motion id ends: with true once it
// completes, with false if it is cancelled. It returns false, without
// registering fn, when id is not in flight.
func (c *Carousel) OnComplete(id OpID, fn func(completed bool)) bool {
	if c.motion == nil || c.motion.id != id {
		return false
	}
	c.motion.waiters = append(c.motion.waiters, fn)
	return true
}

// CurrentOp returns the id of the in-flight motion, or 0.
func (c *Carousel) CurrentOp() OpID {
	if c.motion == nil {
		return 0
	}
	return c.motion.id
}

// gotoPos animates the container to x and makes x the new offset.
func (c *Carousel) gotoPos(x float64, kind motionKind, fast bool) OpID {
	c.offset = x
	d, fn := c.cfg.FastTransition.D(), ease.OutQuad
	switch {
	case kind == motionSlide && fast:
		c.setContainerState("intransit-fast")
	case kind == motionSlide:
		c.setContainerState("intransit")
		d, fn = css.TransitionDuration(c.container, c.cfg.Transition.D()), ease.OutCubic
	default:
		c.setContainerState("ready")
		if !fast {
			d, fn = c.cfg.Transition.D(), ease.OutCubic
		}
	}
	return c.start(kind, []float64{c.position}, []float64{x}, d, fn,
		func(v []float64) {
			c.position = v[0]
			c.applyPosition()
		},
		c.transitionEnd)
}

// animateZoom moves img from its current transform to t.
func (c *Carousel) animateZoom(img *dom.Element, t css.Transform, done func()) OpID {
	from := c.zoomTransform
	return c.start(motionZoom,
		[]float64{from.X, from.Y, from.Scale},
		[]float64{t.X, t.Y, t.Scale},
		c.cfg.ZoomTransition.D(), ease.InOutQuad,
		func(v []float64) {
			c.zoomTransform = css.Transform{X: v[0], Y: v[1], Scale: v[2]}
			c.applier.SetTransform(img, c.zoomTransform)
		},
		func(bool) { done() })
}
