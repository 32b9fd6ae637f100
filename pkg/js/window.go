package js

import "github.com/dop251/goja"

// registerWindow installs a window object whose geometry properties
// read live page state.
func registerWindow(ctx *domContext) {
	ctx.vm.Set("window", ctx.vm.NewDynamicObject(&windowAccessor{ctx: ctx}))
}

type windowAccessor struct {
	ctx *domContext
}

func (w *windowAccessor) Get(key string) goja.Value {
	vm := w.ctx.vm
	switch key {
	case "innerWidth":
		width, _ := w.ctx.page.WindowSize()
		return vm.ToValue(width)
	case "innerHeight":
		_, height := w.ctx.page.WindowSize()
		return vm.ToValue(height)
	case "scrollY", "pageYOffset":
		return vm.ToValue(w.ctx.page.ScrollY())
	case "scrollTo":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 2 {
				return goja.Undefined()
			}
			w.ctx.page.SetScroll(call.Arguments[1].ToFloat())
			return goja.Undefined()
		})
	}
	return goja.Undefined()
}

func (w *windowAccessor) Set(key string, val goja.Value) bool {
	return false
}

func (w *windowAccessor) Has(key string) bool {
	switch key {
	case "innerWidth", "innerHeight", "scrollY", "pageYOffset", "scrollTo":
		return true
	}
	return false
}

func (w *windowAccessor) Delete(key string) bool {
	return false
}

func (w *windowAccessor) Keys() []string {
	return []string{"innerWidth", "innerHeight", "scrollY", "pageYOffset", "scrollTo"}
}
