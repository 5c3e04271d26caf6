package carousel

// Gesture is the classification of a completed drag.
type Gesture int

const (
	GestureLinkTap Gesture = iota
	GestureZoomToggle
	GestureSnapBack
	GestureSlide
	GestureBoundaryClamp
	GestureVerticalScroll
)

var gestureNames = [...]string{
	GestureLinkTap:        "link-tap",
	GestureZoomToggle:     "zoom-toggle",
	GestureSnapBack:       "snap-back",
	GestureSlide:          "slide",
	GestureBoundaryClamp:  "boundary-clamp",
	GestureVerticalScroll: "vertical-scroll",
}

// String returns the metric label of g.
func (g Gesture) String() string {
	if int(g) < len(gestureNames) {
		return gestureNames[g]
	}
	return "unknown"
}

// Observer receives carousel lifecycle events. Methods run on the loop
// goroutine and must not block.
type Observer interface {
	SlideStarted(id int, forward, fast bool)
	SlideEnded(id int, index int)
	Rebased(id int)
	GestureClassified(id int, g Gesture)
	ZoomChanged(id int, zoomed bool)
	Interrupted(id int)
}

// NopObserver ignores every event.
type NopObserver struct{}

// SlideStarted does nothing.
func (NopObserver) SlideStarted(int, bool, bool) {}

// SlideEnded does nothing.
func (NopObserver) SlideEnded(int, int) {}

// Rebased does nothing.
func (NopObserver) Rebased(int) {}

// GestureClassified does nothing.
func (NopObserver) GestureClassified(int, Gesture) {}

// ZoomChanged does nothing.
func (NopObserver) ZoomChanged(int, bool) {}

// Interrupted does nothing.
func (NopObserver) Interrupted(int) {}

// Navigator follows links tapped inside a carousel.
type Navigator interface {
	Navigate(href string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(href string)

// Navigate calls f(href).
func (f NavigatorFunc) Navigate(href string) { f(href) }
