package bindings

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/chrisuehlinger/swipekit/config"
	"github.com/chrisuehlinger/swipekit/dom"
	"github.com/chrisuehlinger/swipekit/js"
	"github.com/chrisuehlinger/swipekit/overlay"
	"github.com/chrisuehlinger/swipekit/widget"
)

const pageHTML = `<div id="gallery" data-ss-widget="carousel" data-ss-options="finite">
<div data-ss-component="item"><img src="/a.jpg" height="300"></div>
<div data-ss-component="item"><img src="/b.jpg" height="300"></div>
<div data-ss-component="item"><img src="/c.jpg" height="300"></div>
</div>
<div id="faq" data-ss-widget="toggler"><h2 data-ss-component="button">A</h2><div data-ss-component="content">x</div></div>
<div id="later" data-ss-widget="toggler" data-ss-init="manual"><h2 data-ss-component="button">B</h2><div data-ss-component="content">y</div></div>
<img id="pic" data-ss-ll-src="/late.jpg">`

func setup(t *testing.T) (*js.Runtime, *widget.Registry, *js.Loop) {
	t.Helper()
	doc, err := dom.ParseHTMLString("<html><body>" + pageHTML + "</body></html>")
	if err != nil {
		t.Fatalf("ParseHTMLString failed: %v", err)
	}
	doc.SetViewport(400, 600)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loop := js.NewLoop(
		js.WithClock(js.NewManualClock(time.Unix(1700000000, 0))),
		js.WithLogger(logger),
	)
	reg := widget.New(doc, widget.WithLoop(loop), widget.WithLogger(logger))
	rt := js.NewRuntime(loop, logger)
	o := overlay.New(doc, reg, loop, config.Default().Overlay, logger)
	if err := Install(rt, reg, WithOverlay(o)); err != nil {
		t.Fatalf("Install failed: %v", err)
	}
	return rt, reg, loop
}

func run(t *testing.T, rt *js.Runtime, code string) any {
	t.Helper()
	v, err := rt.Execute(code)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	return v.Export()
}

func TestInitAndFetch(t *testing.T) {
	rt, reg, loop := setup(t)
	if got := run(t, rt, `swipekit.init()`); got != true {
		t.Fatalf("Expected init to create widgets, got %v", got)
	}
	loop.Settle(time.Second)

	if got := run(t, rt, `swipekit.fetch(1).type`); got != "carousel" {
		t.Errorf("Expected carousel, got %v", got)
	}
	if got := run(t, rt, `swipekit.fetch("#faq").id`); got != int64(2) {
		t.Errorf("Expected id 2, got %v", got)
	}
	if got := run(t, rt, `swipekit.fetch("2").type`); got != "toggler" {
		t.Errorf("Expected toggler, got %v", got)
	}
	if got := run(t, rt, `swipekit.fetch(42)`); got != false {
		t.Errorf("Expected false for an unknown id, got %v", got)
	}
	if got := run(t, rt, `swipekit.init("#later", true)`); got != true {
		t.Errorf("Expected a manual init to succeed, got %v", got)
	}
	if len(reg.Widgets()) != 3 {
		t.Errorf("Expected 3 widgets, got %d", len(reg.Widgets()))
	}
	if got := run(t, rt, `swipekit.widgets().map(function(w) { return w.type; }).join(",")`); got != "carousel,toggler,toggler" {
		t.Errorf("Expected the widget list, got %v", got)
	}
}

func TestCarouselMethods(t *testing.T) {
	rt, _, loop := setup(t)
	run(t, rt, `swipekit.init()`)
	loop.Settle(time.Second)

	run(t, rt, `
		var done = null;
		var c = swipekit.fetch("#gallery");
		c.slideForward();
		c.onComplete(function(ok) { done = ok; });
	`)
	if got := run(t, rt, `c.index()`); got != int64(1) {
		t.Errorf("Expected index 1, got %v", got)
	}
	loop.Settle(2 * time.Second)
	if got := run(t, rt, `done`); got != true {
		t.Errorf("Expected the completion callback, got %v", got)
	}
	if got := run(t, rt, `c.jumpTo(2) && c.info().index`); got != int64(2) {
		t.Errorf("Expected a jump to 2, got %v", got)
	}
}

func TestTogglerMethods(t *testing.T) {
	rt, _, _ := setup(t)
	run(t, rt, `swipekit.init()`)
	if got := run(t, rt, `var tg = swipekit.fetch("#faq"); tg.toggle(); tg.state()`); got != "open" {
		t.Errorf("Expected open, got %v", got)
	}
	if got := run(t, rt, `tg.close(); tg.state()`); got != "closed" {
		t.Errorf("Expected closed, got %v", got)
	}
}

func TestFreezeAndDestroy(t *testing.T) {
	rt, reg, _ := setup(t)
	run(t, rt, `swipekit.init()`)
	if got := run(t, rt, `swipekit.freeze(2) && swipekit.fetch(2).info().frozen`); got != true {
		t.Errorf("Expected the toggler frozen, got %v", got)
	}
	if got := run(t, rt, `swipekit.unfreeze("#faq") && swipekit.fetch(2).info().frozen`); got != false {
		t.Errorf("Expected the toggler unfrozen, got %v", got)
	}
	if got := run(t, rt, `swipekit.destroy(2)`); got != true {
		t.Errorf("Expected destroy to succeed, got %v", got)
	}
	if reg.Fetch(2) != nil {
		t.Error("Expected the toggler removed from the registry")
	}
}

func TestLateloadAndResize(t *testing.T) {
	rt, reg, _ := setup(t)
	if got := run(t, rt, `swipekit.lateload()`); got != int64(1) {
		t.Errorf("Expected one image loaded, got %v", got)
	}
	if reg.Document().GetElementByID("pic").GetAttribute("src") != "/late.jpg" {
		t.Error("Expected the image source swapped")
	}
	if got := run(t, rt, `swipekit.resize(800)`); got != true {
		t.Errorf("Expected a width change to broadcast, got %v", got)
	}
}

func TestOverlay(t *testing.T) {
	rt, _, loop := setup(t)
	run(t, rt, `swipekit.init()`)
	loop.Settle(time.Second)
	run(t, rt, `swipekit.overlay.injectCarousel("#gallery", {background: "black"})`)
	loop.Settle(time.Second)
	if got := run(t, rt, `swipekit.overlay.active()`); got != true {
		t.Fatalf("Expected the overlay active, got %v", got)
	}
	if got := run(t, rt, `swipekit.widgets().length`); got != int64(3) {
		t.Errorf("Expected the overlay carousel registered, got %v", got)
	}
	run(t, rt, `swipekit.overlay.off()`)
	if got := run(t, rt, `swipekit.widgets().length`); got != int64(2) {
		t.Errorf("Expected the overlay carousel destroyed, got %v", got)
	}
}
