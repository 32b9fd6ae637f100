package js

import (
	"buoy/pkg/html"
	"buoy/pkg/overlay"

	"github.com/dop251/goja"
)

// registerBuoy installs the buoy global backing scripts with the
// overlay controller. A customPosition callback is invoked on whichever
// goroutine drives the update and must not call back into the runtime's
// other globals or the controller.
func registerBuoy(ctx *domContext, ctrl *overlay.Controller) {
	vm := ctx.vm
	obj := vm.NewObject()

	obj.Set("register", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 3 {
			panic(vm.NewTypeError("Failed to execute 'register': 3 arguments required"))
		}
		key := call.Arguments[0].String()
		elementSel := call.Arguments[1].String()
		containerSel := call.Arguments[2].String()

		opts := overlay.DefaultOptions()
		if len(call.Arguments) > 3 && hasValue(call.Arguments[3]) {
			opts = parseRegisterOptions(ctx, call.Arguments[3].ToObject(vm))
		}
		return vm.ToValue(ctrl.Register(key, elementSel, containerSel, opts))
	})

	obj.Set("unregister", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("Failed to execute 'unregister': 1 argument required"))
		}
		ctrl.Unregister(call.Arguments[0].String())
		return goja.Undefined()
	})

	obj.Set("updateElementPosition", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("Failed to execute 'updateElementPosition': 1 argument required"))
		}
		ctrl.UpdateElementPosition(call.Arguments[0].String())
		return goja.Undefined()
	})

	obj.Set("updateAllElements", func(call goja.FunctionCall) goja.Value {
		ctrl.UpdateAllElements()
		return goja.Undefined()
	})

	obj.Set("forceUpdate", func(call goja.FunctionCall) goja.Value {
		ctrl.ForceUpdate()
		return goja.Undefined()
	})

	obj.Set("destroy", func(call goja.FunctionCall) goja.Value {
		ctrl.Destroy()
		return goja.Undefined()
	})

	obj.Set("breakpoint", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(string(ctrl.Breakpoint()))
	})

	obj.Set("defaultMargin", func(call goja.FunctionCall) goja.Value {
		bp := ctrl.Breakpoint()
		if len(call.Arguments) > 0 && hasValue(call.Arguments[0]) {
			bp = overlay.Breakpoint(call.Arguments[0].String())
		}
		return vm.ToValue(overlay.DefaultMargin(bp))
	})

	obj.Set("initialPosition", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		pos, ok := ctrl.InitialPosition(call.Arguments[0].String())
		if !ok {
			return goja.Null()
		}
		return vm.ToValue(pos)
	})

	obj.Set("viewportWidth", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(ctx.page.ViewportWidth())
	})

	vm.Set("buoy", obj)
}

// parseRegisterOptions merges a JS options object over the defaults.
// Absent fields keep their default; margin accepts null to request the
// breakpoint margin explicitly.
func parseRegisterOptions(ctx *domContext, obj *goja.Object) overlay.Options {
	opts := overlay.DefaultOptions()

	if v := obj.Get("width"); hasValue(v) {
		opts.Width = v.ToFloat()
	}
	if v := obj.Get("margin"); v != nil && !goja.IsUndefined(v) {
		if goja.IsNull(v) {
			opts.Margin = nil
		} else {
			m := v.ToFloat()
			opts.Margin = &m
		}
	}
	if v := obj.Get("side"); hasValue(v) {
		if overlay.Side(v.String()) == overlay.SideRight {
			opts.Side = overlay.SideRight
		} else {
			opts.Side = overlay.SideLeft
		}
	}
	if v := obj.Get("minMargin"); hasValue(v) {
		opts.MinMargin = v.ToFloat()
	}
	if v := obj.Get("applyFlex"); hasValue(v) {
		opts.ApplyFlex = v.ToBoolean()
	}
	if v := obj.Get("customPosition"); hasValue(v) {
		if fn, ok := goja.AssertFunction(v); ok {
			opts.CustomPosition = wrapPositionFunc(ctx, fn)
		}
	}
	return opts
}

// wrapPositionFunc adapts a JS callback into a PositionFunc. The
// callback receives element and container proxies and positions the
// element through its own style writes; a thrown exception surfaces as
// a Go error and skips the element for that pass.
func wrapPositionFunc(ctx *domContext, fn goja.Callable) overlay.PositionFunc {
	return func(element, container *html.Node, bp overlay.Breakpoint) error {
		_, err := fn(goja.Undefined(),
			ctx.elementProxy(element), ctx.elementProxy(container),
			ctx.vm.ToValue(string(bp)))
		return err
	}
}

// hasValue reports whether a JS value is present and usable.
func hasValue(v goja.Value) bool {
	return v != nil && !goja.IsUndefined(v) && !goja.IsNull(v)
}
