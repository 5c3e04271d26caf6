package dom

import (
	"strings"
)

// EventPhase represents the phase of event dispatch.
type EventPhase int

const (
	EventPhaseNone      EventPhase = 0
	EventPhaseCapturing EventPhase = 1
	EventPhaseAtTarget  EventPhase = 2
	EventPhaseBubbling  EventPhase = 3
)

// Touch is a single contact point of a touch event.
type Touch struct {
	ClientX, ClientY float64
	PageX, PageY     float64
}

// Event is a DOM event. Pointer fields are only meaningful for mouse and
// touch events.
type Event struct {
	Type          string
	Target        *Node
	CurrentTarget *Node
	EventPhase    EventPhase
	Bubbles       bool
	Cancelable    bool
	// Milliseconds since an arbitrary origin; only differences matter.
	TimeStamp float64

	ClientX, ClientY float64
	OffsetX, OffsetY float64
	PageX, PageY     float64

	Touches        []Touch
	ChangedTouches []Touch

	Detail any
	// Set on clicks synthesized from a tap.
	Forwarded bool

	defaultPrevented bool
	stopPropagation  bool
	stopImmediate    bool
}

// NewEvent creates a cancelable event of the given type.
func NewEvent(eventType string, bubbles bool) *Event {
	return &Event{Type: eventType, Bubbles: bubbles, Cancelable: true}
}

// NewMouseEvent creates a bubbling mouse event at client coordinates x, y.
// Page coordinates equal client coordinates (no scrolling).
func NewMouseEvent(eventType string, x, y, timeStamp float64) *Event {
	return &Event{
		Type:       eventType,
		Bubbles:    true,
		Cancelable: true,
		TimeStamp:  timeStamp,
		ClientX:    x,
		ClientY:    y,
		PageX:      x,
		PageY:      y,
	}
}

// NewTouchEvent creates a bubbling touch event. For touchend, pass the
// lifted points as changed and leave touches empty.
func NewTouchEvent(eventType string, touches, changed []Touch, timeStamp float64) *Event {
	ev := &Event{
		Type:           eventType,
		Bubbles:        true,
		Cancelable:     true,
		TimeStamp:      timeStamp,
		Touches:        touches,
		ChangedTouches: changed,
	}
	if len(touches) > 0 {
		ev.PageX, ev.PageY = touches[0].PageX, touches[0].PageY
	} else if len(changed) > 0 {
		ev.PageX, ev.PageY = changed[0].PageX, changed[0].PageY
	}
	return ev
}

// IsTouch reports whether the event came from a touch screen.
func (e *Event) IsTouch() bool {
	return strings.HasPrefix(e.Type, "touch")
}

// IsMouse reports whether the event came from a mouse.
func (e *Event) IsMouse() bool {
	return strings.HasPrefix(e.Type, "mouse") || e.Type == "click"
}

// TargetElement returns the target as an Element, or nil.
func (e *Event) TargetElement() *Element {
	return e.Target.AsElement()
}

// PreventDefault marks the default action as cancelled.
func (e *Event) PreventDefault() {
	if e.Cancelable {
		e.defaultPrevented = true
	}
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// StopPropagation stops the event from reaching further nodes.
func (e *Event) StopPropagation() {
	e.stopPropagation = true
}

// StopImmediatePropagation also skips the remaining listeners on the
// current node.
func (e *Event) StopImmediatePropagation() {
	e.stopPropagation = true
	e.stopImmediate = true
}

// Stifle prevents the default action and stops propagation.
func (e *Event) Stifle() {
	e.PreventDefault()
	e.StopPropagation()
}

// Listener handles a dispatched event.
type Listener func(*Event)

// ListenerOptions represents addEventListener options.
type ListenerOptions struct {
	Capture bool
	Once    bool
}

type eventListener struct {
	id      int
	fn      Listener
	options ListenerOptions
	removed bool
}

type eventTarget struct {
	listeners map[string][]*eventListener
	nextID    int
}

// Subscription identifies a registered listener.
type Subscription struct {
	node      *Node
	eventType string
	id        int
}

// Remove unregisters the listener. Removing twice is a no-op.
func (s *Subscription) Remove() {
	if s == nil || s.node == nil || s.node.events == nil {
		return
	}
	s.node.removeListener(s.eventType, s.id)
	s.node = nil
}

// AddEventListener registers fn for eventType on the node and returns a
// handle that removes it.
func (n *Node) AddEventListener(eventType string, fn Listener, opts ...ListenerOptions) *Subscription {
	if n.events == nil {
		n.events = &eventTarget{listeners: make(map[string][]*eventListener)}
	}
	var o ListenerOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	n.events.nextID++
	l := &eventListener{id: n.events.nextID, fn: fn, options: o}
	n.events.listeners[eventType] = append(n.events.listeners[eventType], l)
	return &Subscription{node: n, eventType: eventType, id: l.id}
}

func (n *Node) removeListener(eventType string, id int) {
	listeners := n.events.listeners[eventType]
	for i, l := range listeners {
		if l.id == id {
			l.removed = true
			n.events.listeners[eventType] = append(listeners[:i:i], listeners[i+1:]...)
			return
		}
	}
}

// HasEventListeners reports whether any listener is registered for eventType.
func (n *Node) HasEventListeners(eventType string) bool {
	return n.events != nil && len(n.events.listeners[eventType]) > 0
}

// DispatchEvent dispatches ev with n as target: capture listeners from the
// root down, then the target, then bubbling listeners back up if the event
// bubbles. It returns false if a listener called PreventDefault.
func (n *Node) DispatchEvent(ev *Event) bool {
	ev.Target = n
	ev.stopPropagation = false
	ev.stopImmediate = false

	var path []*Node
	for cur := n.parentNode; cur != nil; cur = cur.parentNode {
		path = append(path, cur)
	}

	for i := len(path) - 1; i >= 0 && !ev.stopPropagation; i-- {
		path[i].invoke(ev, EventPhaseCapturing)
	}
	if !ev.stopPropagation {
		n.invoke(ev, EventPhaseAtTarget)
	}
	if ev.Bubbles {
		for i := 0; i < len(path) && !ev.stopPropagation; i++ {
			path[i].invoke(ev, EventPhaseBubbling)
		}
	}

	ev.EventPhase = EventPhaseNone
	ev.CurrentTarget = nil
	return !ev.defaultPrevented
}

func (n *Node) invoke(ev *Event, phase EventPhase) {
	if n.events == nil {
		return
	}
	listeners := append([]*eventListener(nil), n.events.listeners[ev.Type]...)
	ev.CurrentTarget = n
	ev.EventPhase = phase
	switch phase {
	case EventPhaseAtTarget:
		// Capture listeners run before the others at the target.
		if !n.run(ev, listeners, true) {
			n.run(ev, listeners, false)
		}
	default:
		n.run(ev, listeners, phase == EventPhaseCapturing)
	}
}

// run calls the listeners whose capture flag matches and reports whether
// one stopped immediate propagation.
func (n *Node) run(ev *Event, listeners []*eventListener, capture bool) bool {
	for _, l := range listeners {
		if l.removed || l.options.Capture != capture {
			continue
		}
		if l.options.Once {
			n.removeListener(ev.Type, l.id)
		}
		l.fn(ev)
		if ev.stopImmediate {
			return true
		}
	}
	return false
}

// On registers fn for each space-separated event type and returns one
// subscription per type.
func (e *Element) On(eventTypes string, fn Listener) []*Subscription {
	var subs []*Subscription
	for _, t := range strings.Fields(eventTypes) {
		subs = append(subs, e.AsNode().AddEventListener(t, fn))
	}
	return subs
}

// Once registers fn to run at most once across all the space-separated
// event types.
func (e *Element) Once(eventTypes string, fn Listener) []*Subscription {
	var subs []*Subscription
	fired := false
	wrapped := func(ev *Event) {
		if fired {
			return
		}
		fired = true
		for _, s := range subs {
			s.Remove()
		}
		fn(ev)
	}
	for _, t := range strings.Fields(eventTypes) {
		subs = append(subs, e.AsNode().AddEventListener(t, wrapped))
	}
	return subs
}

// DispatchEvent dispatches ev with the element as target.
func (e *Element) DispatchEvent(ev *Event) bool {
	return e.AsNode().DispatchEvent(ev)
}

// Trigger dispatches a bubbling custom event carrying detail.
func (e *Element) Trigger(eventType string, detail any) bool {
	ev := NewEvent(eventType, true)
	ev.Detail = detail
	return e.DispatchEvent(ev)
}

// RemoveAll removes every subscription in subs.
func RemoveAll(subs []*Subscription) {
	for _, s := range subs {
		s.Remove()
	}
}
