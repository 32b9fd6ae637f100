package js

import (
	"buoy/pkg/html"

	"github.com/dop251/goja"
)

func (e *elementAccessor) firstChild() goja.Value {
	if len(e.node.Children) == 0 {
		return goja.Null()
	}
	return e.ctx.elementProxy(e.node.Children[0])
}

func (e *elementAccessor) lastChild() goja.Value {
	if len(e.node.Children) == 0 {
		return goja.Null()
	}
	return e.ctx.elementProxy(e.node.Children[len(e.node.Children)-1])
}

func (e *elementAccessor) firstElementChild() goja.Value {
	for _, child := range e.node.Children {
		if child.Type == html.ElementNode {
			return e.ctx.elementProxy(child)
		}
	}
	return goja.Null()
}

func (e *elementAccessor) lastElementChild() goja.Value {
	for i := len(e.node.Children) - 1; i >= 0; i-- {
		if e.node.Children[i].Type == html.ElementNode {
			return e.ctx.elementProxy(e.node.Children[i])
		}
	}
	return goja.Null()
}

func (e *elementAccessor) nextSibling() goja.Value {
	idx := e.node.IndexInParent()
	if idx < 0 || idx+1 >= len(e.node.Parent.Children) {
		return goja.Null()
	}
	return e.ctx.elementProxy(e.node.Parent.Children[idx+1])
}

func (e *elementAccessor) previousSibling() goja.Value {
	idx := e.node.IndexInParent()
	if idx <= 0 {
		return goja.Null()
	}
	return e.ctx.elementProxy(e.node.Parent.Children[idx-1])
}

func (e *elementAccessor) nextElementSibling() goja.Value {
	idx := e.node.IndexInParent()
	if idx < 0 {
		return goja.Null()
	}
	for i := idx + 1; i < len(e.node.Parent.Children); i++ {
		if e.node.Parent.Children[i].Type == html.ElementNode {
			return e.ctx.elementProxy(e.node.Parent.Children[i])
		}
	}
	return goja.Null()
}

func (e *elementAccessor) previousElementSibling() goja.Value {
	idx := e.node.IndexInParent()
	if idx < 0 {
		return goja.Null()
	}
	for i := idx - 1; i >= 0; i-- {
		if e.node.Parent.Children[i].Type == html.ElementNode {
			return e.ctx.elementProxy(e.node.Parent.Children[i])
		}
	}
	return goja.Null()
}

// registerDocumentProperties adds document.body, document.head, and
// document.documentElement when those elements exist.
func registerDocumentProperties(ctx *domContext, docObj *goja.Object) {
	findElement := func(tag string) *html.Node {
		for _, child := range ctx.doc.Root.Children {
			if child.Type == html.ElementNode && child.TagName == tag {
				return child
			}
		}
		for _, child := range ctx.doc.Root.Children {
			if child.Type == html.ElementNode && child.TagName == "html" {
				for _, grandchild := range child.Children {
					if grandchild.Type == html.ElementNode && grandchild.TagName == tag {
						return grandchild
					}
				}
			}
		}
		return nil
	}

	for _, prop := range []struct{ name, tag string }{
		{"documentElement", "html"},
		{"head", "head"},
		{"body", "body"},
	} {
		if node := findElement(prop.tag); node != nil {
			docObj.Set(prop.name, ctx.elementProxy(node))
		} else {
			docObj.Set(prop.name, goja.Null())
		}
	}
}
