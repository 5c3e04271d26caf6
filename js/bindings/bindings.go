// Package bindings exposes a widget registry to page scripts as the global
// swipekit object.
package bindings

import (
	"fmt"
	"strconv"

	"github.com/dop251/goja"

	"github.com/chrisuehlinger/swipekit/carousel"
	"github.com/chrisuehlinger/swipekit/dom"
	"github.com/chrisuehlinger/swipekit/js"
	"github.com/chrisuehlinger/swipekit/overlay"
	"github.com/chrisuehlinger/swipekit/toggler"
	"github.com/chrisuehlinger/swipekit/widget"
)

// Global is the name of the object installed on the script global.
const Global = "swipekit"

type binder struct {
	rt      *js.Runtime
	vm      *goja.Runtime
	reg     *widget.Registry
	overlay *overlay.Overlay
}

// Option configures Install.
type Option func(*binder)

// WithOverlay also exposes swipekit.overlay.
func WithOverlay(o *overlay.Overlay) Option {
	return func(b *binder) { b.overlay = o }
}

// Install defines the swipekit global on rt. The runtime and registry must
// share a loop.
func Install(rt *js.Runtime, reg *widget.Registry, opts ...Option) error {
	b := &binder{rt: rt, vm: rt.VM(), reg: reg}
	for _, opt := range opts {
		opt(b)
	}

	obj := b.vm.NewObject()
	set := func(name string, fn func(goja.FunctionCall) goja.Value) {
		obj.Set(name, fn)
	}
	set("init", b.init)
	set("fetch", b.fetch)
	set("freeze", b.freeze)
	set("unfreeze", b.unfreeze)
	set("destroy", b.destroy)
	set("ready", b.ready)
	set("widgets", b.widgets)
	set("resize", b.resize)
	set("lateload", b.lateload)
	if b.overlay != nil {
		obj.Set("overlay", b.overlayObject())
	}

	if err := rt.Set(Global, obj); err != nil {
		return fmt.Errorf("install %s: %w", Global, err)
	}
	return nil
}

func (b *binder) init(call goja.FunctionCall) goja.Value {
	var root *dom.Element
	if sel := call.Argument(0); !goja.IsUndefined(sel) && !goja.IsNull(sel) {
		if root = b.reg.Document().QuerySelector(sel.String()); root == nil {
			return b.vm.ToValue(false)
		}
	}
	return b.vm.ToValue(b.reg.Init(root, call.Argument(1).ToBoolean()))
}

// lookup resolves a widget id or a selector for a widget root.
func (b *binder) lookup(v goja.Value) widget.Widget {
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	if n, ok := v.Export().(int64); ok {
		return b.reg.Fetch(int(n))
	}
	s := v.String()
	if id, err := strconv.Atoi(s); err == nil {
		return b.reg.Fetch(id)
	}
	el := b.reg.Document().QuerySelector(s)
	if el == nil {
		return nil
	}
	return b.reg.FetchElement(el)
}

func (b *binder) fetch(call goja.FunctionCall) goja.Value {
	w := b.lookup(call.Argument(0))
	if w == nil {
		return b.vm.ToValue(false)
	}
	return b.widgetObject(w)
}

func (b *binder) freeze(call goja.FunctionCall) goja.Value {
	w := b.lookup(call.Argument(0))
	if w == nil {
		return b.vm.ToValue(false)
	}
	children := true
	if arg := call.Argument(1); !goja.IsUndefined(arg) {
		children = arg.ToBoolean()
	}
	return b.vm.ToValue(b.reg.Freeze(w.ID(), children))
}

func (b *binder) unfreeze(call goja.FunctionCall) goja.Value {
	w := b.lookup(call.Argument(0))
	if w == nil {
		return b.vm.ToValue(false)
	}
	return b.vm.ToValue(b.reg.Unfreeze(w.ID()))
}

func (b *binder) destroy(call goja.FunctionCall) goja.Value {
	w := b.lookup(call.Argument(0))
	if w == nil {
		return b.vm.ToValue(false)
	}
	return b.vm.ToValue(b.reg.Destroy(w.Root()))
}

func (b *binder) ready(call goja.FunctionCall) goja.Value {
	w := b.lookup(call.Argument(0))
	if w == nil {
		return b.vm.ToValue(false)
	}
	return b.vm.ToValue(b.reg.Ready(w.ID()))
}

func (b *binder) widgets(goja.FunctionCall) goja.Value {
	infos := b.reg.Snapshot()
	out := make([]any, len(infos))
	for i, info := range infos {
		out[i] = infoMap(info)
	}
	return b.vm.ToValue(out)
}

func (b *binder) resize(call goja.FunctionCall) goja.Value {
	if arg := call.Argument(0); !goja.IsUndefined(arg) {
		return b.vm.ToValue(b.reg.Resize(arg.ToFloat()))
	}
	b.reg.OrientationChange()
	return b.vm.ToValue(true)
}

func (b *binder) lateload(call goja.FunctionCall) goja.Value {
	phase := ""
	if arg := call.Argument(0); !goja.IsUndefined(arg) {
		phase = arg.String()
	}
	return b.vm.ToValue(widget.Lateload(b.reg.Document(), phase))
}

// infoMap flattens an Info for scripts.
func infoMap(info widget.Info) map[string]any {
	m := map[string]any{
		"id":          info.ID,
		"type":        info.Type,
		"state":       info.State,
		"initialized": info.Initialized,
		"frozen":      info.Frozen,
	}
	if info.Index != nil {
		m["index"] = *info.Index
		m["items"] = info.Items
		m["dots"] = info.Dots
		m["zoomed"] = info.Zoomed
		m["autoscroll"] = info.Autoscroll
	}
	if info.Type == toggler.Type {
		m["orphan"] = info.Orphan
	}
	if info.Card != "" {
		m["card"] = info.Card
	}
	if info.Type == widget.LazyloaderType {
		m["pending"] = info.Pending
	}
	return m
}

func (b *binder) widgetObject(w widget.Widget) goja.Value {
	obj := b.vm.NewObject()
	obj.Set("id", w.ID())
	obj.Set("type", w.Type())
	obj.Set("info", func(goja.FunctionCall) goja.Value {
		return b.vm.ToValue(infoMap(b.reg.Describe(w)))
	})
	obj.Set("handleResize", func(goja.FunctionCall) goja.Value {
		w.HandleResize()
		return goja.Undefined()
	})

	switch w := w.(type) {
	case *carousel.Carousel:
		b.carouselMethods(obj, w)
	case *toggler.Toggler:
		b.togglerMethods(obj, w)
	}
	return obj
}

func (b *binder) carouselMethods(obj *goja.Object, c *carousel.Carousel) {
	boolFn := func(fn func() bool) func(goja.FunctionCall) goja.Value {
		return func(goja.FunctionCall) goja.Value { return b.vm.ToValue(fn()) }
	}
	obj.Set("slideForward", func(call goja.FunctionCall) goja.Value {
		return b.vm.ToValue(c.SlideForward(call.Argument(0).ToBoolean()))
	})
	obj.Set("slideBackward", func(call goja.FunctionCall) goja.Value {
		return b.vm.ToValue(c.SlideBackward(call.Argument(0).ToBoolean()))
	})
	obj.Set("jumpTo", func(call goja.FunctionCall) goja.Value {
		return b.vm.ToValue(c.JumpTo(int(call.Argument(0).ToInteger())))
	})
	obj.Set("autoscrollOn", boolFn(c.AutoscrollOn))
	obj.Set("autoscrollOff", boolFn(c.AutoscrollOff))
	obj.Set("index", func(goja.FunctionCall) goja.Value { return b.vm.ToValue(c.Index()) })
	obj.Set("ready", boolFn(c.Ready))
	obj.Set("onComplete", func(call goja.FunctionCall) goja.Value {
		callback, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			return b.vm.ToValue(false)
		}
		return b.vm.ToValue(c.OnComplete(c.CurrentOp(), func(completed bool) {
			b.rt.Call(callback, b.vm.ToValue(completed))
		}))
	})
}

func (b *binder) togglerMethods(obj *goja.Object, t *toggler.Toggler) {
	obj.Set("open", func(goja.FunctionCall) goja.Value {
		t.Open()
		return goja.Undefined()
	})
	obj.Set("close", func(goja.FunctionCall) goja.Value {
		t.Close()
		return goja.Undefined()
	})
	obj.Set("toggle", func(call goja.FunctionCall) goja.Value {
		var button *dom.Element
		if sel := call.Argument(0); !goja.IsUndefined(sel) {
			button = t.Root().QuerySelector(sel.String())
		}
		t.Toggle(button)
		return goja.Undefined()
	})
	obj.Set("state", func(goja.FunctionCall) goja.Value { return b.vm.ToValue(string(t.State())) })
	obj.Set("opened", func(goja.FunctionCall) goja.Value { return b.vm.ToValue(t.Opened()) })
}

func (b *binder) overlayObject() *goja.Object {
	o := b.overlay
	obj := b.vm.NewObject()
	obj.Set("on", func(call goja.FunctionCall) goja.Value {
		o.On(cssArg(call.Argument(0)), true)
		return goja.Undefined()
	})
	obj.Set("off", func(goja.FunctionCall) goja.Value {
		o.Off()
		return goja.Undefined()
	})
	obj.Set("toggle", func(goja.FunctionCall) goja.Value {
		o.Toggle()
		return goja.Undefined()
	})
	obj.Set("active", func(goja.FunctionCall) goja.Value { return b.vm.ToValue(o.Active()) })
	obj.Set("injectCarousel", func(call goja.FunctionCall) goja.Value {
		c, ok := b.lookup(call.Argument(0)).(*carousel.Carousel)
		if !ok {
			return b.vm.ToValue(false)
		}
		o.InjectCarousel(c, cssArg(call.Argument(1)))
		return b.vm.ToValue(true)
	})
	return obj
}

func cssArg(v goja.Value) map[string]string {
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	raw, ok := v.Export().(map[string]any)
	if !ok {
		return nil
	}
	css := make(map[string]string, len(raw))
	for k, val := range raw {
		css[k] = fmt.Sprint(val)
	}
	return css
}
