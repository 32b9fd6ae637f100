package js

import (
	"buoy/pkg/html"

	"github.com/dop251/goja"
)

// appendChildFn returns a JS function implementing node.appendChild(child).
func (e *elementAccessor) appendChildFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'appendChild': 1 argument required"))
		}
		child := e.ctx.unwrapNode(call.Arguments[0])
		if child == nil {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'appendChild': parameter is not a Node"))
		}
		if child.Parent != nil {
			child.Parent.RemoveChild(child)
		}
		e.node.AddChild(child)
		return e.ctx.elementProxy(child)
	}
}

// removeChildFn returns a JS function implementing node.removeChild(child).
func (e *elementAccessor) removeChildFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'removeChild': 1 argument required"))
		}
		child := e.ctx.unwrapNode(call.Arguments[0])
		if child == nil {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'removeChild': parameter is not a Node"))
		}
		removed := e.node.RemoveChild(child)
		if removed == nil {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'removeChild': The node to be removed is not a child of this node"))
		}
		return e.ctx.elementProxy(removed)
	}
}

// insertBeforeFn returns a JS function implementing node.insertBefore(newNode, refNode).
func (e *elementAccessor) insertBeforeFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'insertBefore': 1 argument required"))
		}
		newChild := e.ctx.unwrapNode(call.Arguments[0])
		if newChild == nil {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'insertBefore': parameter 1 is not a Node"))
		}
		var refChild *html.Node
		if len(call.Arguments) > 1 && !goja.IsNull(call.Arguments[1]) && !goja.IsUndefined(call.Arguments[1]) {
			refChild = e.ctx.unwrapNode(call.Arguments[1])
		}
		e.node.InsertBefore(newChild, refChild)
		return e.ctx.elementProxy(newChild)
	}
}

// argNode resolves a JS argument to a node, turning plain values into
// text nodes the way append/prepend/before/after do.
func (e *elementAccessor) argNode(arg goja.Value) *html.Node {
	if node := e.ctx.unwrapNode(arg); node != nil {
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
		return node
	}
	return &html.Node{Type: html.TextNode, Text: arg.String()}
}

// appendFn returns a JS function for element.append(...nodes).
func (e *elementAccessor) appendFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		for _, arg := range call.Arguments {
			e.node.AddChild(e.argNode(arg))
		}
		return goja.Undefined()
	}
}

// prependFn returns a JS function for element.prepend(...nodes).
func (e *elementAccessor) prependFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var first *html.Node
		if len(e.node.Children) > 0 {
			first = e.node.Children[0]
		}
		for _, arg := range call.Arguments {
			e.node.InsertBefore(e.argNode(arg), first)
		}
		return goja.Undefined()
	}
}

// beforeFn returns a JS function for element.before(...nodes).
func (e *elementAccessor) beforeFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if e.node.Parent == nil {
			return goja.Undefined()
		}
		for _, arg := range call.Arguments {
			e.node.Parent.InsertBefore(e.argNode(arg), e.node)
		}
		return goja.Undefined()
	}
}

// afterFn returns a JS function for element.after(...nodes).
func (e *elementAccessor) afterFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parent := e.node.Parent
		if parent == nil {
			return goja.Undefined()
		}
		var ref *html.Node
		if idx := e.node.IndexInParent(); idx >= 0 && idx+1 < len(parent.Children) {
			ref = parent.Children[idx+1]
		}
		for _, arg := range call.Arguments {
			parent.InsertBefore(e.argNode(arg), ref)
		}
		return goja.Undefined()
	}
}

// replaceWithFn returns a JS function for element.replaceWith(...nodes).
func (e *elementAccessor) replaceWithFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parent := e.node.Parent
		if parent == nil {
			return goja.Undefined()
		}
		for _, arg := range call.Arguments {
			parent.InsertBefore(e.argNode(arg), e.node)
		}
		parent.RemoveChild(e.node)
		return goja.Undefined()
	}
}

// replaceChildrenFn returns a JS function for element.replaceChildren(...nodes).
func (e *elementAccessor) replaceChildrenFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		nodes := make([]*html.Node, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			nodes = append(nodes, e.argNode(arg))
		}
		e.node.ReplaceChildren(nodes...)
		return goja.Undefined()
	}
}
