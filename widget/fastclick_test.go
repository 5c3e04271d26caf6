package widget

import (
	"testing"

	"github.com/chrisuehlinger/swipekit/dom"
)

func touch(x, y float64) []dom.Touch {
	return []dom.Touch{{ClientX: x, ClientY: y, PageX: x, PageY: y}}
}

// tapOn sends a touchstart and touchend at the same point.
func tapOn(el *dom.Element, ts float64) {
	el.DispatchEvent(dom.NewTouchEvent("touchstart", touch(10, 10), touch(10, 10), ts))
	el.DispatchEvent(dom.NewTouchEvent("touchend", nil, touch(10, 10), ts+50))
}

func clickCounter(el *dom.Element) (*int, *[]bool) {
	n := 0
	var forwarded []bool
	el.On("click", func(ev *dom.Event) {
		n++
		forwarded = append(forwarded, ev.Forwarded)
	})
	return &n, &forwarded
}

func TestFastClickForwardsTap(t *testing.T) {
	doc := parse(t, `<div id="layer"><span id="target">go</span></div>`)
	layer := doc.GetElementByID("layer")
	target := doc.GetElementByID("target")
	AttachFastClick(layer)
	n, forwarded := clickCounter(target)

	tapOn(target, 1000)
	if *n != 1 || !(*forwarded)[0] {
		t.Fatalf("Expected one forwarded click, got %d", *n)
	}

	// The browser's delayed click is a ghost.
	target.DispatchEvent(dom.NewMouseEvent("click", 10, 10, 1300))
	if *n != 1 {
		t.Errorf("Expected the ghost click swallowed, got %d clicks", *n)
	}

	target.DispatchEvent(dom.NewMouseEvent("click", 10, 10, 5000))
	if *n != 2 {
		t.Errorf("Expected a later native click to pass, got %d clicks", *n)
	}
}

func TestFastClickMovementCancels(t *testing.T) {
	doc := parse(t, `<div id="layer"><span id="target">go</span></div>`)
	target := doc.GetElementByID("target")
	AttachFastClick(doc.GetElementByID("layer"))
	n, _ := clickCounter(target)

	target.DispatchEvent(dom.NewTouchEvent("touchstart", touch(10, 10), touch(10, 10), 1000))
	target.DispatchEvent(dom.NewTouchEvent("touchmove", touch(10, 21), touch(10, 21), 1020))
	target.DispatchEvent(dom.NewTouchEvent("touchend", nil, touch(10, 21), 1050))
	if *n != 0 {
		t.Errorf("Expected an 11px move to cancel the tap, got %d clicks", *n)
	}

	target.DispatchEvent(dom.NewTouchEvent("touchstart", touch(10, 10), touch(10, 10), 2000))
	target.DispatchEvent(dom.NewTouchEvent("touchmove", touch(20, 20), touch(20, 20), 2020))
	target.DispatchEvent(dom.NewTouchEvent("touchend", nil, touch(20, 20), 2050))
	if *n != 1 {
		t.Errorf("Expected a 10px move to still tap, got %d clicks", *n)
	}
}

func TestFastClickNeedsClick(t *testing.T) {
	doc := parse(t, `<div id="layer">
<a id="link" href="/x">x</a>
<label id="label">l</label>
<input id="file" type="file">
<button id="disabled" disabled>b</button>
<span id="opt" class="big needsclick">s</span>
<span id="plain">p</span>
</div>`)
	for _, id := range []string{"link", "label", "file", "disabled", "opt"} {
		if !NeedsClick(doc.GetElementByID(id)) {
			t.Errorf("Expected #%s to need a native click", id)
		}
	}
	if NeedsClick(doc.GetElementByID("plain")) {
		t.Error("Expected a plain span to take a forwarded click")
	}

	AttachFastClick(doc.GetElementByID("layer"))
	link := doc.GetElementByID("link")
	n, _ := clickCounter(link)
	tapOn(link, 1000)
	if *n != 0 {
		t.Errorf("Expected no synthetic click on a link, got %d", *n)
	}
	link.DispatchEvent(dom.NewMouseEvent("click", 10, 10, 1300))
	if *n != 1 {
		t.Errorf("Expected the native click on a link to pass, got %d", *n)
	}
}

func TestFastClickDoubleTap(t *testing.T) {
	doc := parse(t, `<div id="layer"><span id="target">go</span></div>`)
	target := doc.GetElementByID("target")
	AttachFastClick(doc.GetElementByID("layer"))
	n, _ := clickCounter(target)

	tapOn(target, 1000)
	tapOn(target, 1080)
	if *n != 1 {
		t.Errorf("Expected the second quick tap suppressed, got %d clicks", *n)
	}
}

func TestFastClickDestroy(t *testing.T) {
	doc := parse(t, `<div id="layer"><span id="target">go</span></div>`)
	target := doc.GetElementByID("target")
	fc := AttachFastClick(doc.GetElementByID("layer"))
	fc.Destroy()
	n, _ := clickCounter(target)
	tapOn(target, 1000)
	if *n != 0 {
		t.Errorf("Expected no forwarding after destroy, got %d", *n)
	}
}

func TestRegistryTapTogglesOnce(t *testing.T) {
	r, _, _ := newRegistry(t, `<div data-ss-widget="toggler"><h2 data-ss-component="button">A</h2><div data-ss-component="content">x</div></div>`)
	r.Init(nil, false)
	button := r.Document().QuerySelector("[data-ss-component=button]")

	tapOn(button, 1000)
	if button.GetAttribute("data-ss-state") != "open" {
		t.Fatal("Expected the tap to open the toggler")
	}
	button.DispatchEvent(dom.NewMouseEvent("click", 10, 10, 1400))
	if button.GetAttribute("data-ss-state") != "open" {
		t.Error("Expected the ghost click not to close it again")
	}
}
