package widget

import (
	"math"
	"strings"

	"github.com/chrisuehlinger/swipekit/dom"
)

const (
	// tapBoundary is how far a touch may travel and still count as a tap.
	tapBoundary = 10
	// ghostWindow is how long after a forwarded tap a native click is
	// swallowed, in event milliseconds.
	ghostWindow = 700
	// doubleTapWindow suppresses the second of two taps in quick
	// succession.
	doubleTapWindow = 200
)

// FastClick turns taps on a layer into immediate clicks and swallows the
// delayed native click that follows.
type FastClick struct {
	layer *dom.Element
	subs  []*dom.Subscription

	tracking       bool
	trackingStart  float64
	target         *dom.Element
	startX, startY float64
	lastTap        float64
	lastForward    float64
	forwarded      bool
	cancelNext     bool
}

// AttachFastClick installs the tap shim on layer.
func AttachFastClick(layer *dom.Element) *FastClick {
	f := &FastClick{layer: layer}
	n := layer.AsNode()
	f.subs = append(f.subs,
		n.AddEventListener("click", f.onClick, dom.ListenerOptions{Capture: true}),
		n.AddEventListener("touchstart", f.onTouchStart),
		n.AddEventListener("touchmove", f.onTouchMove),
		n.AddEventListener("touchend", f.onTouchEnd),
		n.AddEventListener("touchcancel", f.onTouchCancel),
	)
	return f
}

// NeedsClick reports whether target must receive the browser's own click.
func NeedsClick(target *dom.Element) bool {
	switch strings.ToLower(target.TagName()) {
	case "a", "label", "video":
		return true
	case "button", "select", "textarea":
		if target.HasAttribute("disabled") {
			return true
		}
	case "input":
		if target.HasAttribute("disabled") || target.GetAttribute("type") == "file" {
			return true
		}
	}
	return target.HasClass("needsclick")
}

func (f *FastClick) onTouchStart(ev *dom.Event) {
	if len(ev.Touches) == 0 {
		return
	}
	f.tracking = true
	f.trackingStart = ev.TimeStamp
	f.target = ev.TargetElement()
	f.startX, f.startY = ev.Touches[0].PageX, ev.Touches[0].PageY
	if ev.TimeStamp-f.lastTap < doubleTapWindow {
		ev.PreventDefault()
	}
}

func (f *FastClick) onTouchMove(ev *dom.Event) {
	if !f.tracking || len(ev.Touches) == 0 {
		return
	}
	t := ev.Touches[0]
	if ev.TargetElement() != f.target ||
		math.Abs(t.PageX-f.startX) > tapBoundary || math.Abs(t.PageY-f.startY) > tapBoundary {
		f.tracking = false
		f.target = nil
	}
}

func (f *FastClick) onTouchEnd(ev *dom.Event) {
	if !f.tracking {
		return
	}
	if ev.TimeStamp-f.lastTap < doubleTapWindow {
		f.cancelNext = true
		return
	}
	f.lastTap = ev.TimeStamp
	f.tracking = false
	target := f.target
	if target == nil || NeedsClick(target) {
		return
	}

	click := dom.NewMouseEvent("click", f.startX, f.startY, ev.TimeStamp)
	if len(ev.ChangedTouches) > 0 {
		t := ev.ChangedTouches[0]
		click = dom.NewMouseEvent("click", t.ClientX, t.ClientY, ev.TimeStamp)
	}
	click.Forwarded = true
	f.forwarded = true
	f.lastForward = ev.TimeStamp
	ev.PreventDefault()
	target.DispatchEvent(click)
}

func (f *FastClick) onTouchCancel(*dom.Event) {
	f.tracking = false
	f.target = nil
}

func (f *FastClick) onClick(ev *dom.Event) {
	if ev.Forwarded || f.target == nil {
		return
	}
	target := f.target
	f.target = nil
	if !ev.Cancelable {
		return
	}
	ghost := f.forwarded && ev.TimeStamp-f.lastForward < ghostWindow
	if (ghost && !NeedsClick(target)) || f.cancelNext {
		f.cancelNext = false
		ev.StopImmediatePropagation()
		ev.PreventDefault()
	}
}

// Layer returns the element the shim is attached to.
func (f *FastClick) Layer() *dom.Element { return f.layer }

// Destroy detaches the shim.
func (f *FastClick) Destroy() {
	dom.RemoveAll(f.subs)
	f.subs = nil
}
