package page

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chrisuehlinger/swipekit/carousel"
	"github.com/chrisuehlinger/swipekit/dom"
	"github.com/chrisuehlinger/swipekit/js"
	"github.com/chrisuehlinger/swipekit/network"
	"github.com/chrisuehlinger/swipekit/toggler"
)

const carouselPage = `<html><body>
<div id="gallery" data-ss-widget="carousel" data-ss-options="finite">
<div data-ss-component="item"><img src="/a.jpg" height="300"></div>
<div data-ss-component="item"><img src="/b.jpg" height="300"></div>
</div>
<script>var count = swipekit.widgets().length;</script>
<script type="text/template">this is not code</script>
</body></html>`

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func manual() Option {
	return WithClock(js.NewManualClock(time.Unix(1700000000, 0)))
}

func TestStartRunsScripts(t *testing.T) {
	doc, err := dom.ParseHTMLString(carouselPage)
	if err != nil {
		t.Fatalf("ParseHTMLString failed: %v", err)
	}
	p, err := New(doc, quiet(), manual())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if n := p.Start(); n != 1 {
		t.Fatalf("Expected 1 widget, got %d", n)
	}
	if got := p.Runtime.VM().Get("count").ToInteger(); got != 1 {
		t.Errorf("Expected the inline script to see the carousel, got %d", got)
	}
	if errs := p.Runtime.Errors(); len(errs) != 0 {
		t.Errorf("Expected the template script skipped, got errors %v", errs)
	}
	if w, _ := doc.Viewport(); w != 375 {
		t.Errorf("Expected the configured viewport width, got %v", w)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(path, []byte(carouselPage), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := Load(context.Background(), path, quiet(), manual())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	p.Start()
	p.Settle(time.Second)
	p.Loop.Advance(300 * time.Millisecond)

	c, ok := p.Registry.FetchElement(p.Document.GetElementByID("gallery")).(*carousel.Carousel)
	if !ok {
		t.Fatal("Expected the gallery carousel")
	}
	if !c.Ready() {
		t.Errorf("Expected the carousel ready, got %v", c.State())
	}
	if err := p.Script(`swipekit.fetch("#gallery").slideForward()`, "test.js"); err != nil {
		t.Fatalf("Script failed: %v", err)
	}
	if c.Index() != 1 {
		t.Errorf("Expected the script to slide, got index %d", c.Index())
	}
	p.Close()
	if len(p.Registry.Widgets()) != 0 {
		t.Error("Expected Close to destroy every widget")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.html"), quiet()); err == nil {
		t.Error("Expected an error for a missing page")
	}
}

const ajaxPage = `<html><body>
<div id="faq" data-ss-widget="toggler" data-ss-options="ajax" data-ss-ajax-url="/panel.html" data-ss-ajax-callback="fill">
<h2 data-ss-component="button">A</h2><div data-ss-component="content"></div></div>
<script>var filled = ""; function fill(html) { filled = html; }</script>
</body></html>`

func TestAjaxToggler(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "panel.html"), []byte("<p>hi</p>"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := dom.ParseHTMLString(ajaxPage)
	if err != nil {
		t.Fatalf("ParseHTMLString failed: %v", err)
	}
	p, err := New(doc, quiet(), manual(), WithLoader(network.NewLoader(nil, network.WithLocalPath(dir))))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	p.Start()
	tg, ok := p.Registry.FetchElement(doc.GetElementByID("faq")).(*toggler.Toggler)
	if !ok {
		t.Fatal("Expected the toggler")
	}
	button := doc.GetElementByID("faq").QuerySelector("[data-ss-component=button]")
	button.Trigger("click", nil)
	if tg.State() != toggler.StateAjaxing {
		t.Fatalf("Expected ajaxing, got %v", tg.State())
	}

	deadline := time.Now().Add(2 * time.Second)
	for tg.State() == toggler.StateAjaxing && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
		p.Loop.RunOnce()
	}
	p.Settle(time.Second)
	if tg.State() != toggler.StateOpen {
		t.Errorf("Expected open after the fetch, got %v", tg.State())
	}
	if got := p.Runtime.VM().Get("filled").String(); got != "<p>hi</p>" {
		t.Errorf("Expected the callback to receive the panel, got %q", got)
	}

	// Loaded once: the next click only toggles.
	button.Trigger("click", nil)
	p.Settle(time.Second)
	if tg.State() != toggler.StateClosed {
		t.Errorf("Expected closed after the second click, got %v", tg.State())
	}
}

func TestPagesShareLoop(t *testing.T) {
	loop := js.NewLoop(js.WithClock(js.NewManualClock(time.Unix(1700000000, 0))))
	var pages []*Page
	for i := 0; i < 2; i++ {
		doc, err := dom.ParseHTMLString(carouselPage)
		if err != nil {
			t.Fatalf("ParseHTMLString failed: %v", err)
		}
		p, err := New(doc, quiet(), WithLoop(loop))
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if p.Loop != loop || p.Registry.Loop() != loop {
			t.Fatal("Expected the page to run on the shared loop")
		}
		p.Start()
		pages = append(pages, p)
	}

	pages[0].Close()
	loop.Settle(5 * time.Second)
	if n := len(pages[0].Registry.Widgets()); n != 0 {
		t.Errorf("Expected the closed page to have no widgets, got %d", n)
	}
	c, ok := pages[1].Registry.Widgets()[0].(*carousel.Carousel)
	if !ok || !c.Ready() {
		t.Fatal("Expected the second page's carousel to be ready")
	}
	if !c.SlideForward(false) {
		t.Fatal("Expected the carousel to slide")
	}
	loop.Settle(5 * time.Second)
	if c.Index() != 1 {
		t.Errorf("Expected index 1, got %d", c.Index())
	}
}
