package page

import (
	"context"
	"time"

	"github.com/dop251/goja"
)

const ajaxTimeout = 15 * time.Second

// ajaxLoader serves ajax togglers through the page's loader and hands the
// response to the named page function.
type ajaxLoader struct {
	page *Page
}

func (a *ajaxLoader) Fetch(url string, done func(data string, err error)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), ajaxTimeout)
		defer cancel()
		data, _, err := a.page.loader.Read(ctx, url)
		done(string(data), err)
	}()
}

func (a *ajaxLoader) Complete(callback, data string) {
	vm := a.page.Runtime.VM()
	fn, ok := goja.AssertFunction(vm.Get(callback))
	if !ok {
		a.page.logger.Warn("ajax callback is not a function", "callback", callback)
		return
	}
	a.page.Runtime.Call(fn, vm.ToValue(data))
}
