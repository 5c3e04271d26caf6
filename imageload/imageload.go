// Package imageload waits for the images under an element to finish
// loading before running a callback.
package imageload

import (
	"time"

	"github.com/chrisuehlinger/swipekit/dom"
	"github.com/chrisuehlinger/swipekit/js"
)

// Status is the load state of one image source.
type Status int

const (
	Pending Status = iota
	Loaded
	Failed
)

func (s Status) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// Settled reports whether the image finished loading, successfully or not.
func (s Status) Settled() bool {
	return s != Pending
}

// Probe reports the load state of an image source. Implementations must be
// safe to call from the loop goroutine while loads complete elsewhere.
type Probe interface {
	Status(src string) Status
}

// ProbeFunc adapts a function to Probe.
type ProbeFunc func(src string) Status

// Status calls f(src).
func (f ProbeFunc) Status(src string) Status { return f(src) }

// AlwaysLoaded treats every image as already loaded.
var AlwaysLoaded Probe = ProbeFunc(func(string) Status { return Loaded })

const (
	// PollInterval is how often pending images are re-checked.
	PollInterval = 50 * time.Millisecond
	// DefaultTimeout bounds how long a Waiter waits before giving up on
	// pending images.
	DefaultTimeout = 10 * time.Second
)

// Waiter runs a callback once every image under an element has settled.
type Waiter struct {
	loop     *js.Loop
	probe    Probe
	root     *dom.Element
	fn       func(Result)
	deadline time.Time
	timer    js.TimerID
	done     bool
}

// Result summarizes the images a Waiter saw.
type Result struct {
	Loaded   int
	Failed   int
	TimedOut int
}

// Total is the number of images considered.
func (r Result) Total() int {
	return r.Loaded + r.Failed + r.TimedOut
}

// Wait calls fn on the loop once every <img> under root (root included) has
// settled according to probe, or once timeout elapses. fn never runs
// synchronously, even when there are no images. A zero timeout means
// DefaultTimeout.
func Wait(loop *js.Loop, probe Probe, root *dom.Element, timeout time.Duration, fn func(Result)) *Waiter {
	if probe == nil {
		probe = AlwaysLoaded
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	w := &Waiter{
		loop:     loop,
		probe:    probe,
		root:     root,
		fn:       fn,
		deadline: loop.Now().Add(timeout),
	}
	w.timer = loop.SetTimeout(w.check, 0)
	return w
}

// Images returns root and its descendants that are <img> elements with a
// src.
func Images(root *dom.Element) []*dom.Element {
	var imgs []*dom.Element
	if root.Is("img") && root.GetAttribute("src") != "" {
		imgs = append(imgs, root)
	}
	for _, img := range root.QuerySelectorAll("img[src]") {
		if img.GetAttribute("src") != "" {
			imgs = append(imgs, img)
		}
	}
	return imgs
}

func (w *Waiter) check() {
	w.timer = 0
	if w.done {
		return
	}
	var res Result
	pending := 0
	for _, img := range Images(w.root) {
		switch w.probe.Status(img.GetAttribute("src")) {
		case Loaded:
			res.Loaded++
		case Failed:
			res.Failed++
		default:
			pending++
		}
	}
	if pending > 0 && w.loop.Now().Before(w.deadline) {
		w.timer = w.loop.SetTimeout(w.check, PollInterval)
		return
	}
	res.TimedOut = pending
	w.done = true
	w.fn(res)
}

// Cancel stops the waiter; the callback will not run.
func (w *Waiter) Cancel() {
	w.done = true
	w.loop.ClearTimer(w.timer)
	w.timer = 0
}

// Done reports whether the callback ran or the waiter was cancelled.
func (w *Waiter) Done() bool {
	return w.done
}
