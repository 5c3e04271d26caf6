package ui

import (
	"fmt"
	"image"
	"math"

	"github.com/chrisuehlinger/swipekit/carousel"
	"github.com/chrisuehlinger/swipekit/dom"
	"github.com/chrisuehlinger/swipekit/render"
	"github.com/chrisuehlinger/swipekit/widget"
)

// clickSlop is how far the pointer may travel between press and release
// for the release to also count as a click.
const clickSlop = 10

// Session connects pointer input and painting to one page. It has no
// toolkit dependency; every method must run on the registry's loop
// goroutine.
type Session struct {
	reg     *widget.Registry
	painter *render.Painter
	width   int
	height  int
	scrollY float64

	target *dom.Element
	startX float64
	startY float64
	lastX  float64
	lastY  float64
	moved  bool
	focus  *carousel.Carousel
}

// NewSession creates a session painting reg's document at width x height.
func NewSession(reg *widget.Registry, images render.ImageSource, width, height int) *Session {
	s := &Session{
		reg:     reg,
		painter: &render.Painter{Images: images},
		width:   width,
		height:  height,
	}
	reg.Document().SetViewport(float64(width), float64(height))
	return s
}

// Registry returns the page's widget registry.
func (s *Session) Registry() *widget.Registry { return s.reg }

// Size returns the painted size.
func (s *Session) Size() (width, height int) { return s.width, s.height }

// Frame paints the current state of the page.
func (s *Session) Frame() *image.RGBA {
	return s.painter.Paint(s.reg.Document(), s.width, s.height, s.scrollY).ToImage()
}

// Resize changes the painted size and lets widgets recompute their layout.
func (s *Session) Resize(width, height int) {
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	doc := s.reg.Document()
	doc.SetViewport(float64(width), float64(height))
	s.reg.Resize(float64(width))
	s.Scroll(0)
}

// Scroll moves the page by dy, clamped to the body height.
func (s *Session) Scroll(dy float64) {
	max := 0.0
	if body := s.reg.Document().Body(); body != nil {
		max = math.Max(0, render.Extent(body)-float64(s.height))
	}
	s.scrollY = math.Max(0, math.Min(max, s.scrollY+dy))
}

// ScrollY returns the current scroll offset.
func (s *Session) ScrollY() float64 { return s.scrollY }

func (s *Session) stamp() float64 {
	return float64(s.reg.Loop().Now().UnixNano()) / 1e6
}

// Press starts a pointer gesture at canvas coordinates x, y.
func (s *Session) Press(x, y float64) {
	s.target = s.painter.ElementAt(int(x), int(y))
	if s.target == nil {
		return
	}
	s.startX, s.startY = x, y
	s.lastX, s.lastY = x, y
	s.moved = false
	if c := s.carouselOf(s.target); c != nil {
		s.focus = c
	}
	s.target.DispatchEvent(dom.NewMouseEvent("mousedown", x, y+s.scrollY, s.stamp()))
}

// Move continues the gesture. Moves go to the pressed element, which
// keeps receiving them while the pointer is outside it.
func (s *Session) Move(x, y float64) {
	if s.target == nil {
		return
	}
	s.lastX, s.lastY = x, y
	if math.Abs(x-s.startX) > clickSlop || math.Abs(y-s.startY) > clickSlop {
		s.moved = true
	}
	s.target.DispatchEvent(dom.NewMouseEvent("mousemove", x, y+s.scrollY, s.stamp()))
}

// Release ends the gesture, following it with a click when the pointer
// stayed put.
func (s *Session) Release(x, y float64) {
	target := s.target
	if target == nil {
		return
	}
	s.target = nil
	if math.Abs(x-s.startX) > clickSlop || math.Abs(y-s.startY) > clickSlop {
		s.moved = true
	}
	ts := s.stamp()
	target.DispatchEvent(dom.NewMouseEvent("mouseup", x, y+s.scrollY, ts))
	if !s.moved {
		target.DispatchEvent(dom.NewMouseEvent("click", x, y+s.scrollY, ts))
	}
}

// Pressed reports whether a gesture is in progress.
func (s *Session) Pressed() bool { return s.target != nil }

// Last returns the last pointer position of the current gesture.
func (s *Session) Last() (x, y float64) { return s.lastX, s.lastY }

// Step slides the focused carousel, the last one pressed or else the first
// on the page.
func (s *Session) Step(forward bool) bool {
	c := s.Focused()
	if c == nil || c.State() != carousel.StateResting {
		return false
	}
	if forward {
		return c.SlideForward(false)
	}
	return c.SlideBackward(false)
}

// Focused returns the carousel the toolbar acts on.
func (s *Session) Focused() *carousel.Carousel {
	if s.focus != nil && s.reg.Fetch(s.focus.ID()) == s.focus {
		return s.focus
	}
	for _, w := range s.reg.Widgets() {
		if c, ok := w.(*carousel.Carousel); ok {
			s.focus = c
			return c
		}
	}
	return nil
}

func (s *Session) carouselOf(el *dom.Element) *carousel.Carousel {
	for cur := el; cur != nil; cur = cur.ParentElement() {
		if cur.GetAttribute("data-ss-widget") != carousel.Type {
			continue
		}
		if c, ok := s.reg.FetchElement(cur).(*carousel.Carousel); ok {
			return c
		}
	}
	return nil
}

// Status summarizes the focused carousel for the status bar.
func (s *Session) Status() string {
	c := s.Focused()
	if c == nil {
		return "no carousel"
	}
	return fmt.Sprintf("carousel %d: item %d of %d, %s", c.ID(), c.LogicalIndex()+1, len(c.Dots()), c.State())
}
