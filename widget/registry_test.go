package widget

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/chrisuehlinger/swipekit/carousel"
	"github.com/chrisuehlinger/swipekit/dom"
	"github.com/chrisuehlinger/swipekit/imageload"
	"github.com/chrisuehlinger/swipekit/js"
	"github.com/chrisuehlinger/swipekit/toggler"
)

type recorder struct {
	NopObserver
	initialized []string
	ready       []int
	destroyed   []int
	failed      []error
}

func (r *recorder) WidgetInitialized(id int, typ string) {
	r.initialized = append(r.initialized, strconv.Itoa(id)+":"+typ)
}
func (r *recorder) WidgetReady(id int, _ string)     { r.ready = append(r.ready, id) }
func (r *recorder) WidgetDestroyed(id int, _ string) { r.destroyed = append(r.destroyed, id) }
func (r *recorder) InitFailed(_ string, err error)   { r.failed = append(r.failed, err) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLoop() *js.Loop {
	return js.NewLoop(
		js.WithClock(js.NewManualClock(time.Unix(1700000000, 0))),
		js.WithLogger(quietLogger()),
	)
}

func parse(t *testing.T, markup string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseHTMLString("<html><body>" + markup + "</body></html>")
	if err != nil {
		t.Fatalf("ParseHTMLString failed: %v", err)
	}
	doc.SetViewport(400, 600)
	return doc
}

func newRegistry(t *testing.T, markup string, opts ...Option) (*Registry, *js.Loop, *recorder) {
	t.Helper()
	doc := parse(t, markup)
	loop := testLoop()
	rec := &recorder{}
	opts = append([]Option{WithLoop(loop), WithLogger(quietLogger()), WithObserver(rec)}, opts...)
	return New(doc, opts...), loop, rec
}

// fake is a minimal widget that counts broadcasts.
type fake struct {
	id        int
	root      *dom.Element
	resized   int
	frozen    bool
	destroyed bool
}

func (f *fake) ID() int            { return f.id }
func (f *fake) Type() string       { return "fake" }
func (f *fake) Root() *dom.Element { return f.root }
func (f *fake) HandleResize()      { f.resized++ }
func (f *fake) HandleFreeze()      { f.frozen = true }
func (f *fake) HandleUnfreeze()    { f.frozen = false }
func (f *fake) Destroy()           { f.destroyed = true }

func fakeFactory(r *Registry, root *dom.Element, id int) (Widget, error) {
	if root.HasAttribute("data-fail") {
		return nil, errors.New("refused")
	}
	return &fake{id: id, root: root}, nil
}

const pageHTML = `<div data-ss-widget="carousel" data-ss-options="finite">
<div data-ss-component="item"><img src="/a.jpg" height="300"></div>
<div data-ss-component="item"><img src="/b.jpg" height="300"></div>
</div>
<div data-ss-widget="bogus"></div>
<div data-ss-widget="toggler"><h2 data-ss-component="button">A</h2><div data-ss-component="content">x</div></div>
<button data-ss-component="button" data-ss-toggler-id="menu">Menu</button>
<nav data-ss-component="content" data-ss-toggler-id="menu"></nav>
<div data-ss-widget="input-clear" data-ss-init="manual"><input></div>
<div data-ss-widget="lazyloader" data-ss-defer><img data-ss-ll-src="/c.jpg"></div>`

func TestInitScan(t *testing.T) {
	r, loop, rec := newRegistry(t, pageHTML)
	if !r.Init(nil, false) {
		t.Fatal("Expected Init to create widgets")
	}
	var types []string
	for i, w := range r.Widgets() {
		types = append(types, w.Type())
		if w.ID() != i+1 {
			t.Errorf("Expected id %d, got %d", i+1, w.ID())
		}
		if w.Root().GetAttribute("data-ss-id") != strconv.Itoa(w.ID()) {
			t.Errorf("Expected data-ss-id %d on the root", w.ID())
		}
	}
	want := []string{"carousel", "toggler", "toggler", "lazyloader"}
	if len(types) != len(want) {
		t.Fatalf("Expected %v, got %v", want, types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, types)
			break
		}
	}

	doc := r.Document()
	if doc.QuerySelector("[data-ss-widget=bogus]").HasAttribute("data-ss-id") {
		t.Error("Expected the unknown type to have its id rolled back")
	}
	if len(rec.failed) != 1 || !errors.Is(rec.failed[0], ErrUnknownType) {
		t.Errorf("Expected one ErrUnknownType failure, got %v", rec.failed)
	}
	if doc.QuerySelector("[data-ss-widget=input-clear]").HasAttribute("data-ss-id") {
		t.Error("Expected the manual widget to be skipped")
	}
	if tg, ok := r.Fetch(3).(*toggler.Toggler); !ok || !tg.Orphan() {
		t.Error("Expected id 3 to be the orphan toggler")
	}

	loop.Settle(time.Second)
	if !r.Initialized(1) || !r.Initialized(2) {
		t.Error("Expected the carousel and toggler to be ready")
	}
	if c := r.Fetch(1).(*carousel.Carousel); c.Root().GetAttribute("data-ss-state") != "ready" {
		t.Error("Expected the carousel to see the ready event")
	}
	if r.Initialized(4) || !r.Deferred(4) {
		t.Error("Expected the lazyloader to be deferred")
	}
	if !r.Ready(4) {
		t.Fatal("Expected Ready to release the deferred widget")
	}
	loop.Settle(time.Second)
	if !r.Initialized(4) {
		t.Error("Expected the deferred widget to be ready")
	}
	if len(rec.ready) != 4 {
		t.Errorf("Expected 4 ready notifications, got %v", rec.ready)
	}

	if !r.Init(nil, true) {
		t.Fatal("Expected a manual Init to create the skipped widget")
	}
	if got := doc.QuerySelector("[data-ss-widget=input-clear]").GetAttribute("data-ss-id"); got != "5" {
		t.Errorf("Expected id 5 after rollback, got %q", got)
	}
	if r.Init(r.Fetch(2).Root(), false) {
		t.Error("Expected an initialized root to be rejected")
	}
	if r.Init(nil, false) {
		t.Error("Expected a second scan to find nothing")
	}
}

func TestReadyEventWaitsForImages(t *testing.T) {
	var loaded bool
	probe := imageload.ProbeFunc(func(string) imageload.Status {
		if loaded {
			return imageload.Loaded
		}
		return imageload.Pending
	})
	r, loop, _ := newRegistry(t, `<div data-ss-widget="fake"><img src="/slow.jpg"></div>`,
		WithFactory("fake", fakeFactory), WithImageProbe(probe))
	r.Init(nil, false)
	fired := 0
	r.Fetch(1).Root().On(ReadyEvent, func(*dom.Event) { fired++ })

	loop.Advance(500 * time.Millisecond)
	if fired != 0 || r.Initialized(1) {
		t.Error("Expected no ready event while the image is pending")
	}
	loaded = true
	loop.Advance(100 * time.Millisecond)
	if fired != 1 || !r.Initialized(1) {
		t.Errorf("Expected one ready event after the image loaded, got %d", fired)
	}
}

func TestFactoryErrorRollsBack(t *testing.T) {
	r, _, rec := newRegistry(t, `<div data-ss-widget="fake" data-fail></div><div data-ss-widget="fake"></div>`,
		WithFactory("fake", fakeFactory))
	r.Init(nil, false)
	ws := r.Widgets()
	if len(ws) != 1 || ws[0].ID() != 1 {
		t.Fatalf("Expected one widget with id 1, got %d widgets", len(ws))
	}
	if len(rec.failed) != 1 {
		t.Errorf("Expected one failure, got %v", rec.failed)
	}
}

func TestFetchElement(t *testing.T) {
	r, _, _ := newRegistry(t, `<div data-ss-widget="fake"><span></span></div>`, WithFactory("fake", fakeFactory))
	r.Init(nil, false)
	root := r.Document().QuerySelector("[data-ss-widget]")
	if r.FetchElement(root) != r.Fetch(1) {
		t.Error("Expected FetchElement to find the widget")
	}
	if r.FetchElement(root.QuerySelector("span")) != nil || r.FetchElement(nil) != nil {
		t.Error("Expected nil for non-widget elements")
	}
	if r.Fetch(99) != nil {
		t.Error("Expected nil for an unknown id")
	}
}

const nestedHTML = `<div data-ss-widget="fake" id="outer">
<div data-ss-widget="fake" id="inner"></div>
</div>
<div data-ss-widget="fake" id="other"></div>`

func TestFreezeUnfreeze(t *testing.T) {
	r, _, _ := newRegistry(t, nestedHTML, WithFactory("fake", fakeFactory))
	r.Init(nil, false)
	outer, inner, other := r.Fetch(1).(*fake), r.Fetch(2).(*fake), r.Fetch(3).(*fake)

	r.Freeze(1, false)
	if !outer.frozen || inner.frozen {
		t.Error("Expected only the outer widget frozen")
	}
	r.Freeze(1, true)
	if !inner.frozen || other.frozen {
		t.Error("Expected children frozen and siblings untouched")
	}
	r.Unfreeze(1)
	if outer.frozen || inner.frozen {
		t.Error("Expected unfreeze to reach children")
	}
	if r.Freeze(42, true) {
		t.Error("Expected Freeze of an unknown id to fail")
	}
}

func TestResizeBroadcast(t *testing.T) {
	r, _, _ := newRegistry(t, nestedHTML, WithFactory("fake", fakeFactory))
	r.Init(nil, false)
	w := r.Fetch(3).(*fake)

	if r.Resize(400) {
		t.Error("Expected an unchanged width not to broadcast")
	}
	if !r.Resize(500) || w.resized != 1 {
		t.Errorf("Expected one resize, got %d", w.resized)
	}
	if width, _ := r.Document().Viewport(); width != 500 {
		t.Errorf("Expected viewport width 500, got %v", width)
	}
	r.OrientationChange()
	if w.resized != 2 {
		t.Errorf("Expected orientation change to broadcast, got %d", w.resized)
	}
}

func TestDestroy(t *testing.T) {
	r, _, rec := newRegistry(t, nestedHTML, WithFactory("fake", fakeFactory))
	r.Init(nil, false)
	outer := r.Fetch(1).(*fake)

	if !r.Destroy(outer.Root()) {
		t.Fatal("Expected Destroy to succeed")
	}
	if !outer.destroyed || r.Fetch(1) != nil || outer.Root().HasAttribute("data-ss-id") {
		t.Error("Expected the widget destroyed and forgotten")
	}
	if len(r.Widgets()) != 2 || len(rec.destroyed) != 1 {
		t.Errorf("Expected 2 widgets left, got %d", len(r.Widgets()))
	}
	if r.Destroy(outer.Root()) {
		t.Error("Expected a second Destroy to fail")
	}

	// The element can be enhanced again.
	if !r.Init(outer.Root(), false) || r.FetchElement(outer.Root()) == nil {
		t.Error("Expected a destroyed element to be re-initialized")
	}
}

func TestDestroyWithin(t *testing.T) {
	r, _, _ := newRegistry(t, nestedHTML, WithFactory("fake", fakeFactory))
	r.Init(nil, false)
	if n := r.DestroyWithin(r.Document().GetElementByID("outer")); n != 1 {
		t.Errorf("Expected one widget inside outer, got %d", n)
	}
	if r.Fetch(2) != nil || r.Fetch(1) == nil {
		t.Error("Expected only the inner widget destroyed")
	}
}

func TestClose(t *testing.T) {
	r, _, _ := newRegistry(t, pageHTML)
	r.Init(nil, false)
	if r.FastClickCount() == 0 {
		t.Fatal("Expected tap shims on widget controls")
	}
	r.Close()
	if len(r.Widgets()) != 0 || r.FastClickCount() != 0 {
		t.Error("Expected Close to release everything")
	}
}

func TestDestroyReleasesTapShims(t *testing.T) {
	r, _, _ := newRegistry(t, `<div data-ss-widget="carousel">
<div data-ss-component="item"><img src="/a.jpg" height="300"></div>
<div data-ss-component="item"><img src="/b.jpg" height="300"></div>
</div>`)
	r.Init(nil, false)
	if r.FastClickCount() == 0 {
		t.Fatal("Expected tap shims on the carousel controls")
	}
	root := r.Document().QuerySelector("[data-ss-widget=carousel]")
	if !r.Destroy(root) {
		t.Fatal("Expected Destroy to succeed")
	}
	if n := r.FastClickCount(); n != 0 {
		t.Errorf("Expected Destroy to release every tap shim, got %d left", n)
	}
}

func TestSnapshot(t *testing.T) {
	r, loop, _ := newRegistry(t, pageHTML)
	r.Init(nil, false)
	loop.Settle(time.Second)
	infos := r.Snapshot()
	if len(infos) != 4 {
		t.Fatalf("Expected 4 widgets, got %d", len(infos))
	}
	c := infos[0]
	if c.Type != "carousel" || c.Index == nil || *c.Index != 0 || c.Dots != 2 || !c.Initialized {
		t.Errorf("Unexpected carousel info: %+v", c)
	}
	if c.State != carousel.StateResting.String() {
		t.Errorf("Expected state %s, got %s", carousel.StateResting, c.State)
	}
	if !infos[2].Orphan || infos[2].State != "closed" {
		t.Errorf("Expected a closed orphan toggler, got %+v", infos[2])
	}
	if l := infos[3]; l.Type != LazyloaderType || l.Initialized {
		t.Errorf("Expected a deferred lazyloader, got %+v", l)
	}
}
