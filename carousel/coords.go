package carousel

import (
	"math"

	"github.com/chrisuehlinger/swipekit/dom"
)

// Coords is the pointer position of an input event. For a two-finger
// touch, X2/Y2 hold the second contact and Pinch is set.
type Coords struct {
	X, Y   float64
	X2, Y2 float64
	Pinch  bool
}

// CoordsOf extracts client coordinates from a mouse or touch event. Touch
// events use the current touches, falling back to the changed touches on
// touchend. ok is false when the event carries no position.
func CoordsOf(ev *dom.Event) (c Coords, ok bool) {
	if ev == nil {
		return c, false
	}
	for _, touches := range [][]dom.Touch{ev.Touches, ev.ChangedTouches} {
		switch len(touches) {
		case 0:
			continue
		case 1:
			return Coords{X: touches[0].ClientX, Y: touches[0].ClientY}, true
		default:
			return Coords{
				X: touches[0].ClientX, Y: touches[0].ClientY,
				X2: touches[1].ClientX, Y2: touches[1].ClientY,
				Pinch: true,
			}, true
		}
	}
	if ev.IsTouch() {
		return c, false
	}
	return Coords{X: ev.ClientX, Y: ev.ClientY}, true
}

// Spread is the distance between the two contacts of a pinch, or 0.
func (c Coords) Spread() float64 {
	if !c.Pinch {
		return 0
	}
	return math.Hypot(c.X2-c.X, c.Y2-c.Y)
}

// Velocity returns the horizontal speed in px/ms. An elapsed time of zero
// counts as one millisecond.
func Velocity(xDist, elapsedMs float64) float64 {
	elapsedMs = math.Abs(elapsedMs)
	if elapsedMs == 0 {
		elapsedMs = 1
	}
	return math.Abs(xDist) / elapsedMs
}

// verticalIntent reports whether a move from a to b is mostly vertical.
// A zero horizontal delta with any vertical movement counts as vertical.
func verticalIntent(a, b Coords) bool {
	return math.Abs((a.Y-b.Y)/(a.X-b.X)) > axisLockRatio
}

// Point is a 2D offset in px.
type Point struct {
	X, Y float64
}

// clampPoint limits each axis of p to [-max, max].
func clampPoint(p, max Point) Point {
	return Point{X: clampAxis(p.X, max.X), Y: clampAxis(p.Y, max.Y)}
}

func clampAxis(v, max float64) float64 {
	if math.Abs(v) > max {
		if v > 0 {
			return max
		}
		return -max
	}
	return v
}
