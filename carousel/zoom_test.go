package carousel

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/chrisuehlinger/swipekit/dom"
	"github.com/chrisuehlinger/swipekit/js"
)

// tap presses and releases the mouse at x with the given offset into the
// image.
func tap(c *Carousel, loop *js.Loop, x, offsetY float64) {
	img := activeImage(c)
	ts := stamp(loop)
	down := dom.NewMouseEvent("mousedown", x, 100, ts)
	down.OffsetY = offsetY
	img.DispatchEvent(down)
	img.DispatchEvent(dom.NewMouseEvent("mouseup", x, 100, ts+60))
}

func touches(points ...float64) []dom.Touch {
	var ts []dom.Touch
	for i := 0; i+1 < len(points); i += 2 {
		ts = append(ts, dom.Touch{ClientX: points[i], ClientY: points[i+1], PageX: points[i], PageY: points[i+1]})
	}
	return ts
}

func zoomedCarousel(t *testing.T, options string) (*Carousel, *js.Loop, *recorder) {
	t.Helper()
	c, loop, rec := newTestCarousel(t, carouselHTML(options, 3, ""))
	tap(c, loop, 200, 150)
	loop.Settle(time.Second)
	if c.State() != StateZoomed {
		t.Fatalf("Expected zoomed, got %v", c.State())
	}
	return c, loop, rec
}

func TestZoomInAndOut(t *testing.T) {
	c, loop, rec := newTestCarousel(t, carouselHTML("zoom finite", 3, ""))
	icon := c.Root().QuerySelector("[data-ss-component=zoom_icon]")

	tap(c, loop, 300, 100)
	if c.State() != StateZooming {
		t.Fatalf("Expected zooming, got %v", c.State())
	}
	if rec.lastGesture() != GestureZoomToggle {
		t.Errorf("Expected zoom toggle, got %v", rec.lastGesture())
	}
	loop.Settle(time.Second)
	if !c.Zoomed() {
		t.Fatalf("Expected zoomed, got %v", c.State())
	}
	if pan := c.PanCoords(); pan.X != -200 || pan.Y != 100 {
		t.Errorf("Expected pan (-200, 100), got %+v", pan)
	}
	img := activeImage(c)
	if got := img.Style().GetPropertyValue("transform"); got != "translate(-200px,100px) scale(2,2)" {
		t.Errorf("Unexpected zoom transform %q", got)
	}
	if c.Root().GetAttribute("data-ss-state") != "zoomed" || icon.GetAttribute("data-ss-state") != "in" {
		t.Error("Expected root zoomed and icon in")
	}
	if c.Root().QuerySelector("[data-ss-component=dots]").Style().GetPropertyValue("visibility") != "hidden" {
		t.Error("Expected dots hidden while zoomed")
	}
	if c.SlideForward(false) {
		t.Error("Expected slides to be rejected while zoomed")
	}

	tap(c, loop, 300, 100)
	loop.Settle(time.Second)
	if c.State() != StateResting {
		t.Fatalf("Expected resting after zoom out, got %v", c.State())
	}
	if icon.GetAttribute("data-ss-state") != "out" || c.Root().GetAttribute("data-ss-state") != "ready" {
		t.Error("Expected icon out and root ready")
	}
	if len(rec.zoom) != 2 || !rec.zoom[0] || rec.zoom[1] {
		t.Errorf("Expected zoom in then out, got %v", rec.zoom)
	}
}

func TestZoomIcon(t *testing.T) {
	c, loop, _ := newTestCarousel(t, carouselHTML("zoom finite", 3, ""))
	icon := c.Root().QuerySelector("[data-ss-component=zoom_icon]")
	icon.Trigger("click", nil)
	loop.Settle(time.Second)
	if !c.Zoomed() {
		t.Fatalf("Expected zoomed, got %v", c.State())
	}
	if pan := c.PanCoords(); pan.X != 0 || pan.Y != 0 {
		t.Errorf("Expected a centred zoom, got %+v", pan)
	}
	icon.Trigger("click", nil)
	loop.Settle(time.Second)
	if c.State() != StateResting {
		t.Errorf("Expected resting, got %v", c.State())
	}
}

func TestZoomTapThreshold(t *testing.T) {
	c, loop, rec := newTestCarousel(t, carouselHTML("zoom finite", 3, ""))
	drag(c, loop, 2, 80)
	if rec.lastGesture() != GestureSnapBack {
		t.Errorf("Expected a 2px drag to snap back, got %v", rec.lastGesture())
	}
	loop.Settle(time.Second)
	drag(c, loop, 1, 80)
	if rec.lastGesture() != GestureZoomToggle || c.State() != StateZooming {
		t.Errorf("Expected a 1px drag to toggle zoom, got %v in %v", rec.lastGesture(), c.State())
	}
}

func TestZoomRejectsGhostMouse(t *testing.T) {
	c, loop, rec := newTestCarousel(t, carouselHTML("zoom finite", 3, ""))
	img := activeImage(c)
	ts := stamp(loop)
	img.DispatchEvent(dom.NewTouchEvent("touchstart", touches(200, 150), touches(200, 150), ts))
	img.DispatchEvent(dom.NewMouseEvent("mouseup", 200, 150, ts+40))
	loop.Settle(time.Second)
	if c.State() != StateResting || len(rec.zoom) != 0 {
		t.Errorf("Expected a touch followed by a mouse release not to zoom, got %v", c.State())
	}
}

func TestPanClamp(t *testing.T) {
	c, loop, _ := zoomedCarousel(t, "zoom finite")
	if max := c.PanMax(); max.X != 200 || max.Y != 150 {
		t.Fatalf("Expected pan max (200, 150), got %+v", max)
	}
	img := activeImage(c)
	ts := stamp(loop)
	img.DispatchEvent(dom.NewTouchEvent("touchstart", touches(200, 150), nil, ts))
	img.DispatchEvent(dom.NewTouchEvent("touchmove", touches(1200, 1150), nil, ts+20))
	if pan := c.PanCoords(); pan != c.PanMax() {
		t.Errorf("Expected pan clamped to %+v, got %+v", c.PanMax(), pan)
	}
	img.DispatchEvent(dom.NewTouchEvent("touchmove", touches(-2000, -2000), nil, ts+40))
	if pan := c.PanCoords(); pan.X != -200 || pan.Y != -150 {
		t.Errorf("Expected pan clamped to (-200, -150), got %+v", pan)
	}
	img.DispatchEvent(dom.NewTouchEvent("touchend", nil, touches(-2000, -2000), ts+60))
	if !c.Zoomed() {
		t.Errorf("Expected a pan release to stay zoomed, got %v", c.State())
	}
}

func TestPinchClampsToZoomMax(t *testing.T) {
	c, loop, _ := zoomedCarousel(t, "zoom pinch finite")
	img := activeImage(c)
	ts := stamp(loop)
	img.DispatchEvent(dom.NewTouchEvent("touchstart", touches(100, 150, 200, 150), nil, ts))
	for spread := 100.0; spread <= 3000; spread += 100 {
		ts += 16
		img.DispatchEvent(dom.NewTouchEvent("touchmove", touches(100, 150, 100+spread, 150), nil, ts))
		if m := c.ZoomMultiplier(); m > 4 {
			t.Fatalf("Multiplier %v exceeded the maximum", m)
		}
	}
	if m := c.ZoomMultiplier(); m != 4.0 {
		t.Errorf("Expected multiplier exactly 4, got %v", m)
	}
	if max := c.PanMax(); max.X != 600 || max.Y != 450 {
		t.Errorf("Expected pan max scaled to (600, 450), got %+v", max)
	}

	// Reversing re-anchors the pinch and drives the multiplier down.
	for spread := 2900.0; spread >= 100; spread -= 200 {
		ts += 16
		img.DispatchEvent(dom.NewTouchEvent("touchmove", touches(100, 150, 100+spread, 150), nil, ts))
	}
	if m := c.ZoomMultiplier(); m != 1.2 {
		t.Errorf("Expected multiplier exactly 1.2, got %v", m)
	}
	img.DispatchEvent(dom.NewTouchEvent("touchend", nil, touches(150, 150), ts+16))
	if !c.Zoomed() {
		t.Errorf("Expected to stay zoomed after a pinch, got %v", c.State())
	}
}

func TestPinchReversalReanchors(t *testing.T) {
	c, loop, _ := zoomedCarousel(t, "zoom pinch finite")
	img := activeImage(c)
	ts := stamp(loop)
	img.DispatchEvent(dom.NewTouchEvent("touchstart", touches(100, 150, 200, 150), nil, ts))
	move := func(spread float64) float64 {
		ts += 16
		img.DispatchEvent(dom.NewTouchEvent("touchmove", touches(100, 150, 100+spread, 150), nil, ts))
		return c.ZoomMultiplier()
	}
	m0 := move(100)
	if m0 != 2 {
		t.Fatalf("Expected the first pinch frame to only anchor, got %v", m0)
	}
	m1 := move(250)
	if m1 <= m0 {
		t.Errorf("Expected spreading fingers to zoom in, got %v after %v", m1, m0)
	}
	if m2 := move(240); m2 != m1 {
		t.Errorf("Expected the reversal frame to re-anchor without scaling, got %v after %v", m2, m1)
	}
	if m3 := move(200); m3 >= m1 {
		t.Errorf("Expected closing fingers to zoom out, got %v after %v", m3, m1)
	}
}

func TestZoomLimitsUnderRandomGestures(t *testing.T) {
	c, loop, _ := zoomedCarousel(t, "zoom pinch finite")
	img := activeImage(c)
	rng := rand.New(rand.NewSource(7))
	ts := stamp(loop)

	for session := 0; session < 40; session++ {
		pinch := rng.Intn(2) == 0
		x, y := 200.0, 150.0
		if pinch {
			img.DispatchEvent(dom.NewTouchEvent("touchstart", touches(x, y, x+50, y), nil, ts))
		} else {
			img.DispatchEvent(dom.NewTouchEvent("touchstart", touches(x, y), nil, ts))
		}
		for i := 0; i < 25; i++ {
			ts += 16
			x += rng.Float64()*400 - 200
			y += rng.Float64()*400 - 200
			if pinch {
				spread := rng.Float64() * 1500
				img.DispatchEvent(dom.NewTouchEvent("touchmove", touches(x, y, x+spread, y), nil, ts))
			} else {
				img.DispatchEvent(dom.NewTouchEvent("touchmove", touches(x, y), nil, ts))
			}
			m := c.ZoomMultiplier()
			if m < 1.2 || m > 4 {
				t.Fatalf("Multiplier %v left [1.2, 4]", m)
			}
			pan, max := c.PanCoords(), c.PanMax()
			if math.Abs(pan.X) > max.X+1e-9 || math.Abs(pan.Y) > max.Y+1e-9 {
				t.Fatalf("Pan %+v left ±%+v", pan, max)
			}
		}
		ts += 16
		img.DispatchEvent(dom.NewTouchEvent("touchend", nil, touches(500, 450), ts))
		if !c.Zoomed() {
			t.Fatalf("Expected to stay zoomed, got %v", c.State())
		}
	}
}

func TestResizeWhileZoomed(t *testing.T) {
	c, _, _ := zoomedCarousel(t, "zoom finite")
	c.Root().OwnerDocument().SetViewport(300, 600)
	c.HandleResize()
	if max := c.PanMax(); max.X != 150 || max.Y != 150 {
		t.Errorf("Expected pan max (150, 150), got %+v", max)
	}
	if !c.Zoomed() {
		t.Errorf("Expected resize to keep the zoom, got %v", c.State())
	}
}
