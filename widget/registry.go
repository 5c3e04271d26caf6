package widget

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/chrisuehlinger/swipekit/carousel"
	"github.com/chrisuehlinger/swipekit/config"
	"github.com/chrisuehlinger/swipekit/dom"
	"github.com/chrisuehlinger/swipekit/forms"
	"github.com/chrisuehlinger/swipekit/imageload"
	"github.com/chrisuehlinger/swipekit/js"
	"github.com/chrisuehlinger/swipekit/toggler"
)

// ReadyEvent is dispatched on a widget's root once its images have loaded.
const ReadyEvent = "widget-ready"

const scanSelector = "[data-ss-widget]:not([data-ss-id]), [data-ss-component=button][data-ss-toggler-id]:not([data-ss-id])"

// fastclickSelector matches the controls that get a tap shim.
const fastclickSelector = "[data-ss-widget=toggler] > [data-ss-component=button], " +
	"[data-ss-component=button][data-ss-toggler-id], " +
	"[data-ss-widget=carousel] [data-ss-component=button], " +
	"[data-ss-widget=carousel] [data-ss-component=dots], " +
	"[data-ss-utility=overlay] [data-ss-component=close]"

// Registry owns the widgets of one document. All methods must be called on
// the loop goroutine.
type Registry struct {
	doc       *dom.Document
	loop      *js.Loop
	logger    *slog.Logger
	log       *slog.Logger
	cfg       *config.Config
	observer  Observer
	probe     imageload.Probe
	navigator carousel.Navigator
	ajax      toggler.AjaxLoader
	zips      forms.ZipLookup
	suggest   forms.SuggestSource
	factories map[string]Factory

	widgets     map[int]Widget
	order       []int
	idCount     int
	deferred    map[int]bool
	initialized map[int]bool
	waiters     map[int]*imageload.Waiter
	fastclicks  map[*dom.Element]*FastClick

	viewportWidth float64
}

// Option configures a Registry.
type Option func(*Registry)

// WithLoop sets the loop every widget schedules on.
func WithLoop(loop *js.Loop) Option {
	return func(r *Registry) { r.loop = loop }
}

// WithLogger sets the logger widgets derive theirs from.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithConfig sets the defaults handed to every widget.
func WithConfig(cfg *config.Config) Option {
	return func(r *Registry) { r.cfg = cfg }
}

// WithObserver sets the lifecycle observer.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithImageProbe sets how image load state is determined.
func WithImageProbe(p imageload.Probe) Option {
	return func(r *Registry) { r.probe = p }
}

// WithNavigator sets where carousel link taps navigate.
func WithNavigator(n carousel.Navigator) Option {
	return func(r *Registry) { r.navigator = n }
}

// WithAjax sets the loader ajax togglers use.
func WithAjax(loader toggler.AjaxLoader) Option {
	return func(r *Registry) { r.ajax = loader }
}

// WithZipLookup sets the autofill-zip table.
func WithZipLookup(z forms.ZipLookup) Option {
	return func(r *Registry) { r.zips = z }
}

// WithSuggestSource sets the autosuggest candidate source.
func WithSuggestSource(s forms.SuggestSource) Option {
	return func(r *Registry) { r.suggest = s }
}

// WithFactory registers or replaces the constructor for typ.
func WithFactory(typ string, f Factory) Option {
	return func(r *Registry) { r.factories[typ] = f }
}

// New creates an empty registry for doc.
func New(doc *dom.Document, opts ...Option) *Registry {
	r := &Registry{
		doc:         doc,
		cfg:         config.Default(),
		observer:    NopObserver{},
		probe:       imageload.AlwaysLoaded,
		factories:   map[string]Factory{},
		widgets:     map[int]Widget{},
		deferred:    map[int]bool{},
		initialized: map[int]bool{},
		waiters:     map[int]*imageload.Waiter{},
		fastclicks:  map[*dom.Element]*FastClick{},
	}
	for typ, f := range builtins() {
		r.factories[typ] = f
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.loop == nil {
		r.loop = js.NewLoop()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.log = r.logger.With("component", "registry")
	if r.zips == nil {
		r.zips = forms.ZipTable(r.cfg.Zips)
	}
	r.viewportWidth, _ = doc.Viewport()
	return r
}

func builtins() map[string]Factory {
	return map[string]Factory{
		carousel.Type: func(r *Registry, root *dom.Element, id int) (Widget, error) {
			opts := []carousel.Option{
				carousel.WithID(id),
				carousel.WithLoop(r.loop),
				carousel.WithLogger(r.logger),
				carousel.WithConfig(r.cfg.Carousel),
				carousel.WithObserver(r.observer),
				carousel.WithImageProbe(r.probe),
			}
			if r.navigator != nil {
				opts = append(opts, carousel.WithNavigator(r.navigator))
			}
			return carousel.New(root, opts...)
		},
		toggler.Type: func(r *Registry, root *dom.Element, id int) (Widget, error) {
			return r.newToggler(root, id, false)
		},
		LazyloaderType: func(r *Registry, root *dom.Element, id int) (Widget, error) {
			return NewLazyloader(root, id, r.cfg.Lazyloader, r.logger)
		},
		forms.InputClearType: func(r *Registry, root *dom.Element, id int) (Widget, error) {
			return forms.NewInputClear(root, r.formOptions(id)...)
		},
		forms.CardDetectType: func(r *Registry, root *dom.Element, id int) (Widget, error) {
			return forms.NewCardDetect(root, r.formOptions(id)...)
		},
		forms.ZipFillType: func(r *Registry, root *dom.Element, id int) (Widget, error) {
			return forms.NewZipFill(root, r.formOptions(id)...)
		},
		forms.SuggestType: func(r *Registry, root *dom.Element, id int) (Widget, error) {
			return forms.NewSuggest(root, r.formOptions(id)...)
		},
	}
}

func (r *Registry) newToggler(root *dom.Element, id int, orphan bool) (Widget, error) {
	opts := []toggler.Option{
		toggler.WithID(id),
		toggler.WithLoop(r.loop),
		toggler.WithLogger(r.logger),
		toggler.WithConfig(r.cfg.Toggler),
		toggler.WithParentLookup(func(el *dom.Element) *toggler.Toggler {
			t, _ := r.FetchElement(el).(*toggler.Toggler)
			return t
		}),
	}
	if r.ajax != nil {
		opts = append(opts, toggler.WithAjax(r.ajax))
	}
	return toggler.New(root, orphan, opts...)
}

func (r *Registry) formOptions(id int) []forms.Option {
	opts := []forms.Option{
		forms.WithID(id),
		forms.WithLogger(r.logger),
		forms.WithZipLookup(r.zips),
		forms.WithMaxResults(r.cfg.Autosuggest.MaxResults),
	}
	if r.suggest != nil {
		opts = append(opts, forms.WithSuggestSource(r.suggest))
	}
	return opts
}

// Init enhances every uninitialized widget in the document, or only root
// when it is non-nil. Elements marked data-ss-init="manual" are skipped
// unless manual is set. It reports whether any widget was created.
func (r *Registry) Init(root *dom.Element, manual bool) bool {
	var set []*dom.Element
	if root == nil {
		set = r.doc.QuerySelectorAll(scanSelector)
	} else {
		if root.HasAttribute("data-ss-id") {
			r.log.Debug("skipping initialized element", "error", ErrAlreadyInitialized, "id", root.GetAttribute("data-ss-id"))
			return false
		}
		set = []*dom.Element{root}
	}

	created := false
	for _, el := range set {
		if r.initElement(el, manual) {
			created = true
		}
	}
	r.attachFastClick()
	return created
}

func (r *Registry) initElement(el *dom.Element, manual bool) bool {
	typ := el.GetAttribute("data-ss-widget")
	orphan := false
	if typ == "" && el.HasAttribute("data-ss-toggler-id") {
		typ = toggler.Type
		orphan = true
	}
	if !manual && strings.Contains(el.GetAttribute("data-ss-init"), "manual") {
		return false
	}

	r.idCount++
	id := r.idCount
	el.SetAttribute("data-ss-id", strconv.Itoa(id))

	var (
		w   Widget
		err error
	)
	switch f, ok := r.factories[typ]; {
	case orphan:
		w, err = r.newToggler(el, id, true)
	case ok:
		w, err = f(r, el, id)
	default:
		err = fmt.Errorf("%q: %w", typ, ErrUnknownType)
	}
	if err != nil {
		el.RemoveAttribute("data-ss-id")
		r.idCount--
		r.log.Warn("widget init failed", "type", typ, "error", err)
		r.observer.InitFailed(typ, err)
		return false
	}

	r.widgets[id] = w
	r.order = append(r.order, id)
	r.observer.WidgetInitialized(id, typ)
	r.log.Debug("widget initialized", "type", typ, "id", id)

	if el.HasAttribute("data-ss-defer") {
		r.deferred[id] = true
		return true
	}
	r.waiters[id] = imageload.Wait(r.loop, r.probe, el, 0, func(imageload.Result) {
		delete(r.waiters, id)
		r.markReady(id)
	})
	return true
}

func (r *Registry) markReady(id int) {
	w, ok := r.widgets[id]
	if !ok {
		return
	}
	r.initialized[id] = true
	r.observer.WidgetReady(id, w.Type())
	w.Root().Trigger(ReadyEvent, id)
}

// Ready fires the ready signal of a deferred widget once its images load.
func (r *Registry) Ready(id int) bool {
	if !r.deferred[id] {
		return false
	}
	w, ok := r.widgets[id]
	if !ok {
		return false
	}
	delete(r.deferred, id)
	r.waiters[id] = imageload.Wait(r.loop, r.probe, w.Root(), 0, func(imageload.Result) {
		delete(r.waiters, id)
		r.markReady(id)
	})
	return true
}

// Initialized reports whether the widget has signalled ready.
func (r *Registry) Initialized(id int) bool { return r.initialized[id] }

// Deferred reports whether the widget waits for Ready.
func (r *Registry) Deferred(id int) bool { return r.deferred[id] }

func (r *Registry) attachFastClick() {
	for _, el := range r.doc.QuerySelectorAll(fastclickSelector) {
		if _, ok := r.fastclicks[el]; ok {
			continue
		}
		r.fastclicks[el] = AttachFastClick(el)
	}
}

// FastClickCount is the number of attached tap shims.
func (r *Registry) FastClickCount() int { return len(r.fastclicks) }

// Fetch returns the widget with id, or nil.
func (r *Registry) Fetch(id int) Widget {
	return r.widgets[id]
}

// FetchElement returns the widget whose root is el, or nil.
func (r *Registry) FetchElement(el *dom.Element) Widget {
	if el == nil {
		return nil
	}
	id, err := strconv.Atoi(el.GetAttribute("data-ss-id"))
	if err != nil {
		return nil
	}
	if w := r.widgets[id]; w != nil && w.Root() == el {
		return w
	}
	return nil
}

// Widgets returns every widget in creation order.
func (r *Registry) Widgets() []Widget {
	out := make([]Widget, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.widgets[id])
	}
	return out
}

// descendants returns the widgets rooted under w's root.
func (r *Registry) descendants(w Widget) []Widget {
	var out []Widget
	for _, el := range w.Root().QuerySelectorAll("[data-ss-widget][data-ss-id]") {
		if child := r.FetchElement(el); child != nil {
			out = append(out, child)
		}
	}
	return out
}

// Freeze freezes the widget and, when children is set, every widget
// inside it.
func (r *Registry) Freeze(id int, children bool) bool {
	w := r.widgets[id]
	if w == nil {
		return false
	}
	w.HandleFreeze()
	if children {
		for _, child := range r.descendants(w) {
			child.HandleFreeze()
		}
	}
	return true
}

// Unfreeze unfreezes the widget and every widget inside it.
func (r *Registry) Unfreeze(id int) bool {
	w := r.widgets[id]
	if w == nil {
		return false
	}
	w.HandleUnfreeze()
	for _, child := range r.descendants(w) {
		child.HandleUnfreeze()
	}
	return true
}

// Resize sets the viewport width and broadcasts HandleResize when it
// changed.
func (r *Registry) Resize(width float64) bool {
	_, height := r.doc.Viewport()
	r.doc.SetViewport(width, height)
	if width == r.viewportWidth {
		return false
	}
	r.viewportWidth = width
	r.broadcastResize()
	return true
}

// OrientationChange broadcasts HandleResize unconditionally.
func (r *Registry) OrientationChange() {
	r.viewportWidth, _ = r.doc.Viewport()
	r.broadcastResize()
}

func (r *Registry) broadcastResize() {
	for _, w := range r.Widgets() {
		w.HandleResize()
	}
}

// Destroy tears down the widget rooted at el and forgets it.
func (r *Registry) Destroy(el *dom.Element) bool {
	w := r.FetchElement(el)
	if w == nil {
		return false
	}
	r.remove(w)
	return true
}

// DestroyWithin tears down every widget rooted under el.
func (r *Registry) DestroyWithin(el *dom.Element) int {
	n := 0
	for _, w := range r.Widgets() {
		if el.Contains(w.Root()) && w.Root() != el {
			r.remove(w)
			n++
		}
	}
	return n
}

func (r *Registry) remove(w Widget) {
	id := w.ID()
	if waiter := r.waiters[id]; waiter != nil {
		waiter.Cancel()
		delete(r.waiters, id)
	}
	// Collected first: Destroy detaches generated controls from the root.
	var shims []*dom.Element
	for el := range r.fastclicks {
		if w.Root().Contains(el) {
			shims = append(shims, el)
		}
	}
	w.Destroy()
	w.Root().RemoveAttribute("data-ss-id")
	for _, el := range shims {
		r.fastclicks[el].Destroy()
		delete(r.fastclicks, el)
	}
	delete(r.widgets, id)
	delete(r.deferred, id)
	delete(r.initialized, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.observer.WidgetDestroyed(id, w.Type())
	r.log.Debug("widget destroyed", "type", w.Type(), "id", id)
}

// Close destroys every widget and detaches every tap shim.
func (r *Registry) Close() {
	for _, w := range r.Widgets() {
		r.remove(w)
	}
	for el, fc := range r.fastclicks {
		fc.Destroy()
		delete(r.fastclicks, el)
	}
}

// Document returns the document the registry manages.
func (r *Registry) Document() *dom.Document { return r.doc }

// Loop returns the loop widgets run on.
func (r *Registry) Loop() *js.Loop { return r.loop }

// Logger returns the registry's logger.
func (r *Registry) Logger() *slog.Logger { return r.logger }

// Config returns the configuration handed to widgets.
func (r *Registry) Config() *config.Config { return r.cfg }
