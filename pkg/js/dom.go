package js

import (
	"strconv"
	"strings"
	"unicode"

	"buoy/pkg/css"
	"buoy/pkg/html"
	"buoy/pkg/page"

	"github.com/dop251/goja"
)

// domContext holds shared state for DOM bindings within a single
// runtime. It maintains a node-to-proxy cache so the same JS object is
// returned for the same underlying *html.Node (needed for === identity
// checks).
type domContext struct {
	vm    *goja.Runtime
	page  *page.Page
	doc   *html.Document
	cache map[*html.Node]goja.Value
}

// registerDocument sets up the global `document` object on the runtime.
func registerDocument(vm *goja.Runtime, p *page.Page) *domContext {
	ctx := &domContext{
		vm:    vm,
		page:  p,
		doc:   p.Document(),
		cache: make(map[*html.Node]goja.Value),
	}

	docObj := vm.NewObject()
	docObj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		node := getElementById(ctx.doc.Root, call.Arguments[0].String())
		if node == nil {
			return goja.Null()
		}
		return ctx.elementProxy(node)
	})
	docObj.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return ctx.elementArray(nil)
		}
		tag := strings.ToLower(call.Arguments[0].String())
		return ctx.elementArray(getElementsByTagName(ctx.doc.Root, tag))
	})
	docObj.Set("getElementsByClassName", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return ctx.elementArray(nil)
		}
		cls := call.Arguments[0].String()
		return ctx.elementArray(getElementsByClassName(ctx.doc.Root, cls))
	})
	docObj.Set("createElement", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("Failed to execute 'createElement' on 'Document': 1 argument required"))
		}
		node := &html.Node{
			Type:       html.ElementNode,
			TagName:    strings.ToLower(call.Arguments[0].String()),
			Attributes: make(map[string]string),
		}
		return ctx.elementProxy(node)
	})
	docObj.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		text := ""
		if len(call.Arguments) > 0 {
			text = call.Arguments[0].String()
		}
		return ctx.elementProxy(&html.Node{Type: html.TextNode, Text: text})
	})

	registerQuerySelectors(ctx, docObj, ctx.doc.Root)
	registerDocumentProperties(ctx, docObj)

	vm.Set("document", docObj)
	return ctx
}

// getElementById walks the tree and returns the first node with the id.
func getElementById(node *html.Node, id string) *html.Node {
	if node.Type == html.ElementNode {
		if val, ok := node.Attributes["id"]; ok && val == id {
			return node
		}
	}
	for _, child := range node.Children {
		if found := getElementById(child, id); found != nil {
			return found
		}
	}
	return nil
}

// getElementsByTagName collects all element nodes with the given tag.
func getElementsByTagName(node *html.Node, tag string) []*html.Node {
	var result []*html.Node
	if node.Type == html.ElementNode && node.TagName == tag {
		result = append(result, node)
	}
	for _, child := range node.Children {
		result = append(result, getElementsByTagName(child, tag)...)
	}
	return result
}

// getElementsByClassName collects all element nodes carrying the class.
func getElementsByClassName(node *html.Node, cls string) []*html.Node {
	var result []*html.Node
	if node.Type == html.ElementNode {
		if classes, ok := node.Attributes["class"]; ok {
			for _, c := range strings.Fields(classes) {
				if c == cls {
					result = append(result, node)
					break
				}
			}
		}
	}
	for _, child := range node.Children {
		result = append(result, getElementsByClassName(child, cls)...)
	}
	return result
}

// elementArray creates a JS array of element proxies.
func (ctx *domContext) elementArray(nodes []*html.Node) goja.Value {
	arr := ctx.vm.NewArray()
	for i, n := range nodes {
		arr.Set(strconv.Itoa(i), ctx.elementProxy(n))
	}
	arr.Set("length", len(nodes))
	return arr
}

// elementProxy creates (or retrieves from cache) a JS object wrapping
// an html.Node.
func (ctx *domContext) elementProxy(node *html.Node) goja.Value {
	if v, ok := ctx.cache[node]; ok {
		return v
	}
	v := ctx.vm.NewDynamicObject(&elementAccessor{ctx: ctx, node: node})
	ctx.cache[node] = v
	return v
}

// unwrapNode extracts the *html.Node behind a proxy value.
func (ctx *domContext) unwrapNode(val goja.Value) *html.Node {
	if val == nil || goja.IsNull(val) || goja.IsUndefined(val) {
		return nil
	}
	obj := val.ToObject(ctx.vm)
	for node, cached := range ctx.cache {
		if cached.SameAs(obj) {
			return node
		}
	}
	return nil
}

// elementAccessor implements goja.DynamicObject to intercept property
// access on DOM element proxies. All writes flow through the node's
// notifying mutators so document observers see script-driven changes.
type elementAccessor struct {
	ctx  *domContext
	node *html.Node
}

func (e *elementAccessor) Get(key string) goja.Value {
	vm := e.ctx.vm

	switch key {
	case "nodeType":
		if e.node.Type == html.TextNode {
			return vm.ToValue(3) // Node.TEXT_NODE
		}
		return vm.ToValue(1) // Node.ELEMENT_NODE
	case "nodeName":
		if e.node.Type == html.TextNode {
			return vm.ToValue("#text")
		}
		return vm.ToValue(strings.ToUpper(e.node.TagName))
	case "nodeValue":
		if e.node.Type == html.TextNode {
			return vm.ToValue(e.node.Text)
		}
		return goja.Null()
	case "tagName":
		if e.node.Type == html.TextNode {
			return goja.Undefined()
		}
		return vm.ToValue(strings.ToUpper(e.node.TagName))
	case "id":
		id, _ := e.node.GetAttribute("id")
		return vm.ToValue(id)
	case "className":
		cls, _ := e.node.GetAttribute("class")
		return vm.ToValue(cls)
	case "textContent":
		return vm.ToValue(e.node.TextContent())
	case "getAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return goja.Null()
			}
			val, ok := e.node.GetAttribute(call.Arguments[0].String())
			if !ok {
				return goja.Null()
			}
			return vm.ToValue(val)
		})
	case "setAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 2 {
				return goja.Undefined()
			}
			e.node.SetAttribute(call.Arguments[0].String(), call.Arguments[1].String())
			return goja.Undefined()
		})
	case "hasAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return vm.ToValue(false)
			}
			_, ok := e.node.GetAttribute(call.Arguments[0].String())
			return vm.ToValue(ok)
		})
	case "removeAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return goja.Undefined()
			}
			e.node.RemoveAttribute(call.Arguments[0].String())
			return goja.Undefined()
		})
	case "children":
		var elChildren []*html.Node
		for _, child := range e.node.Children {
			if child.Type == html.ElementNode {
				elChildren = append(elChildren, child)
			}
		}
		return e.ctx.elementArray(elChildren)
	case "childNodes":
		return e.ctx.elementArray(e.node.Children)
	case "parentElement":
		if e.node.Parent != nil && e.node.Parent.Type == html.ElementNode &&
			e.node.Parent.TagName != "document" {
			return e.ctx.elementProxy(e.node.Parent)
		}
		return goja.Null()
	case "parentNode":
		if e.node.Parent != nil && e.node.Parent.TagName != "document" {
			return e.ctx.elementProxy(e.node.Parent)
		}
		return goja.Null()
	case "style":
		return newStyleProxy(e.ctx, e.node)

	case "appendChild":
		return vm.ToValue(e.appendChildFn())
	case "removeChild":
		return vm.ToValue(e.removeChildFn())
	case "insertBefore":
		return vm.ToValue(e.insertBeforeFn())
	case "innerHTML":
		return vm.ToValue(e.node.Serialize())
	case "outerHTML":
		return vm.ToValue(e.node.SerializeOuter())

	case "firstChild":
		return e.firstChild()
	case "lastChild":
		return e.lastChild()
	case "firstElementChild":
		return e.firstElementChild()
	case "lastElementChild":
		return e.lastElementChild()
	case "nextSibling":
		return e.nextSibling()
	case "previousSibling":
		return e.previousSibling()
	case "nextElementSibling":
		return e.nextElementSibling()
	case "previousElementSibling":
		return e.previousElementSibling()
	case "childElementCount":
		count := 0
		for _, c := range e.node.Children {
			if c.Type == html.ElementNode {
				count++
			}
		}
		return vm.ToValue(count)

	case "querySelector":
		return vm.ToValue(querySelectorFn(e.ctx, e.node))
	case "querySelectorAll":
		return vm.ToValue(querySelectorAllFn(e.ctx, e.node))
	case "matches":
		return vm.ToValue(matchesFn(e.ctx, e.node))
	case "closest":
		return vm.ToValue(closestFn(e.ctx, e.node))

	case "classList":
		return newClassListProxy(e.ctx, e.node)

	case "getBoundingClientRect":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			// A node without a layout box reports all zeros.
			rect, _ := e.ctx.page.BoundingRect(e.node)
			obj := vm.NewObject()
			obj.Set("left", rect.Left)
			obj.Set("top", rect.Top)
			obj.Set("right", rect.Right)
			obj.Set("bottom", rect.Bottom)
			obj.Set("width", rect.Width())
			obj.Set("height", rect.Height())
			return obj
		})

	case "remove":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if e.node.Parent != nil {
				e.node.Parent.RemoveChild(e.node)
			}
			return goja.Undefined()
		})
	case "append":
		return vm.ToValue(e.appendFn())
	case "prepend":
		return vm.ToValue(e.prependFn())
	case "before":
		return vm.ToValue(e.beforeFn())
	case "after":
		return vm.ToValue(e.afterFn())
	case "replaceWith":
		return vm.ToValue(e.replaceWithFn())
	case "replaceChildren":
		return vm.ToValue(e.replaceChildrenFn())

	case "cloneNode":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			deep := false
			if len(call.Arguments) > 0 {
				deep = call.Arguments[0].ToBoolean()
			}
			return e.ctx.elementProxy(e.node.CloneNode(deep))
		})
	case "contains":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return vm.ToValue(false)
			}
			other := e.ctx.unwrapNode(call.Arguments[0])
			if other == nil {
				return vm.ToValue(false)
			}
			return vm.ToValue(e.node.Contains(other))
		})
	case "hasChildNodes":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(len(e.node.Children) > 0)
		})

	case "getElementsByTagName":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return e.ctx.elementArray(nil)
			}
			tag := strings.ToLower(call.Arguments[0].String())
			var result []*html.Node
			for _, child := range e.node.Children {
				result = append(result, getElementsByTagName(child, tag)...)
			}
			return e.ctx.elementArray(result)
		})
	case "getElementsByClassName":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return e.ctx.elementArray(nil)
			}
			cls := call.Arguments[0].String()
			var result []*html.Node
			for _, child := range e.node.Children {
				result = append(result, getElementsByClassName(child, cls)...)
			}
			return e.ctx.elementArray(result)
		})
	}
	return goja.Undefined()
}

func (e *elementAccessor) Set(key string, val goja.Value) bool {
	switch key {
	case "textContent":
		e.node.SetTextContent(val.String())
		return true
	case "className":
		e.node.SetAttribute("class", val.String())
		return true
	case "id":
		e.node.SetAttribute("id", val.String())
		return true
	case "innerHTML":
		e.node.ReplaceChildren(html.ParseFragment(val.String())...)
		return true
	case "nodeValue":
		if e.node.Type == html.TextNode {
			e.node.Text = val.String()
		}
		return true
	}
	return false
}

func (e *elementAccessor) Has(key string) bool {
	switch key {
	case "tagName", "nodeName", "nodeType", "nodeValue", "id", "className",
		"textContent", "innerHTML", "outerHTML",
		"getAttribute", "setAttribute", "hasAttribute", "removeAttribute",
		"children", "childNodes", "parentElement", "parentNode", "style",
		"appendChild", "removeChild", "insertBefore",
		"firstChild", "lastChild", "firstElementChild", "lastElementChild",
		"nextSibling", "previousSibling", "nextElementSibling", "previousElementSibling",
		"childElementCount",
		"querySelector", "querySelectorAll", "matches", "closest",
		"classList", "getBoundingClientRect",
		"remove", "append", "prepend", "before", "after", "replaceWith", "replaceChildren",
		"cloneNode", "contains", "hasChildNodes",
		"getElementsByTagName", "getElementsByClassName":
		return true
	}
	return false
}

func (e *elementAccessor) Delete(key string) bool {
	return false
}

func (e *elementAccessor) Keys() []string {
	return []string{
		"tagName", "nodeName", "nodeType", "nodeValue", "id", "className",
		"textContent", "innerHTML", "outerHTML",
		"getAttribute", "setAttribute", "hasAttribute", "removeAttribute",
		"children", "childNodes", "parentElement", "parentNode", "style",
		"appendChild", "removeChild", "insertBefore",
		"firstChild", "lastChild", "firstElementChild", "lastElementChild",
		"nextSibling", "previousSibling", "nextElementSibling", "previousElementSibling",
		"childElementCount",
		"querySelector", "querySelectorAll", "matches", "closest",
		"classList", "getBoundingClientRect",
		"remove", "append", "prepend", "before", "after", "replaceWith", "replaceChildren",
		"cloneNode", "contains", "hasChildNodes",
		"getElementsByTagName", "getElementsByClassName",
	}
}

// newStyleProxy creates a JS object that maps camelCase property access
// to kebab-case declarations on the node's inline style attribute.
func newStyleProxy(ctx *domContext, node *html.Node) goja.Value {
	return ctx.vm.NewDynamicObject(&styleAccessor{ctx: ctx, node: node})
}

type styleAccessor struct {
	ctx  *domContext
	node *html.Node
}

func (s *styleAccessor) inline() *css.Style {
	attr, _ := s.node.GetAttribute("style")
	return css.ParseInlineStyle(attr)
}

// store rewrites the style attribute, dropping it entirely when the
// last declaration is removed.
func (s *styleAccessor) store(style *css.Style) {
	if serialized := style.Serialize(); serialized != "" {
		s.node.SetAttribute("style", serialized)
	} else {
		s.node.RemoveAttribute("style")
	}
}

func (s *styleAccessor) Get(key string) goja.Value {
	if key == "cssText" {
		return s.ctx.vm.ToValue(s.inline().Serialize())
	}
	val, _ := s.inline().Get(camelToKebab(key))
	return s.ctx.vm.ToValue(val)
}

func (s *styleAccessor) Set(key string, val goja.Value) bool {
	style := s.inline()
	prop := camelToKebab(key)
	if v := val.String(); v == "" {
		style.Remove(prop)
	} else {
		style.Set(prop, v)
	}
	s.store(style)
	return true
}

func (s *styleAccessor) Has(key string) bool {
	return true
}

func (s *styleAccessor) Delete(key string) bool {
	style := s.inline()
	style.Remove(camelToKebab(key))
	s.store(style)
	return true
}

func (s *styleAccessor) Keys() []string {
	style := s.inline()
	keys := make([]string, 0, len(style.Properties))
	for k := range style.Properties {
		keys = append(keys, k)
	}
	return keys
}

// camelToKebab converts a JS camelCase property name to CSS kebab-case.
func camelToKebab(s string) string {
	if s == "cssFloat" {
		return "float"
	}
	var sb strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
