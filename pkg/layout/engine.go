package layout

import (
	"buoy/pkg/css"
	"buoy/pkg/html"
)

// Engine lays out a document against a viewport. The flow model is a
// block-only subset: in-flow elements stack vertically inside their
// parent's content box, absolutely and fixed positioned elements are
// taken out of flow and resolved against their containing block.
// Text nodes occupy no space.
type Engine struct {
	ViewportWidth  float64
	ViewportHeight float64
}

func NewEngine(viewportWidth, viewportHeight float64) *Engine {
	return &Engine{ViewportWidth: viewportWidth, ViewportHeight: viewportHeight}
}

// Layout computes box geometry for every rendered element.
func (e *Engine) Layout(doc *html.Document) *Result {
	styles := css.ApplyStylesToDocument(doc, e.ViewportWidth)

	res := &Result{boxes: make(map[*html.Node]*Box)}
	root := &Box{
		Node:   doc.Root,
		Style:  css.NewStyle(),
		Width:  e.ViewportWidth,
		Height: 0,
	}
	res.Root = root

	e.layoutChildren(root, doc.Root, styles, res)
	root.Height = stackHeight(root)

	e.placeOutOfFlow(res)
	res.ContentWidth, res.ContentHeight = documentExtent(res)
	return res
}

// layoutChildren places the in-flow element children of parentNode
// inside parent's content box and records out-of-flow boxes for the
// later pass. Returns nothing; geometry lands on the boxes.
func (e *Engine) layoutChildren(parent *Box, parentNode *html.Node, styles map[*html.Node]*css.Style, res *Result) {
	cursorY := parent.ContentY()

	for _, child := range parentNode.Children {
		if child.Type != html.ElementNode {
			continue
		}
		style := styles[child]
		if style == nil {
			style = css.NewStyle()
		}
		if style.GetDisplay() == css.DisplayNone {
			continue
		}

		box := &Box{
			Node:    child,
			Style:   style,
			Parent:  parent,
			Margin:  style.GetMargin(),
			Padding: style.GetPadding(),
			Border:  style.GetBorderWidth(),
		}
		parent.Children = append(parent.Children, box)
		res.boxes[child] = box

		pos := style.GetPosition()
		outOfFlow := pos == css.PositionAbsolute || pos == css.PositionFixed

		if outOfFlow {
			// geometry resolved in placeOutOfFlow; children follow after
			e.sizeOutOfFlow(box)
		} else {
			box.X = parent.ContentX() + box.Margin.Left
			box.Y = cursorY + box.Margin.Top
			box.Width = e.resolveBlockWidth(box, parent)
		}

		e.layoutChildren(box, child, styles, res)

		vertExtra := box.Padding.Top + box.Padding.Bottom + box.Border.Top + box.Border.Bottom
		if h, ok := style.GetLength("height"); ok {
			box.Height = h + vertExtra
		} else {
			box.Height = stackHeight(box) + vertExtra
		}

		if !outOfFlow {
			if pos == css.PositionRelative {
				off := style.GetPositionOffset()
				if off.HasLeft {
					box.X += off.Left
				} else if off.HasRight {
					box.X -= off.Right
				}
				if off.HasTop {
					box.Y += off.Top
				} else if off.HasBottom {
					box.Y -= off.Bottom
				}
				// relative offset does not move the flow cursor
				cursorY += box.Margin.Top + box.Height + box.Margin.Bottom
			} else {
				cursorY = box.Y + box.Height + box.Margin.Bottom
			}
		}
	}
}

// resolveBlockWidth gives a block either its explicit width or the
// full content width of its parent minus its own margins.
func (e *Engine) resolveBlockWidth(box *Box, parent *Box) float64 {
	extra := box.Padding.Left + box.Padding.Right + box.Border.Left + box.Border.Right
	if w, ok := box.Style.GetLength("width"); ok {
		return w + extra
	}
	avail := parent.ContentWidth() - box.Margin.Left - box.Margin.Right
	if avail < 0 {
		avail = 0
	}
	return avail
}

// sizeOutOfFlow sets the border-box width of an absolute or fixed box
// ahead of child layout. Without an explicit width the box shrinks to
// its padding and border; the left+right auto case is resolved later
// against the containing block.
func (e *Engine) sizeOutOfFlow(box *Box) {
	extra := box.Padding.Left + box.Padding.Right + box.Border.Left + box.Border.Right
	if w, ok := box.Style.GetLength("width"); ok {
		box.Width = w + extra
		return
	}
	box.Width = extra
}

// stackHeight measures how far the in-flow children of b extend below
// its content top.
func stackHeight(b *Box) float64 {
	bottom := b.ContentY()
	for _, c := range b.Children {
		pos := c.Style.GetPosition()
		if pos == css.PositionAbsolute || pos == css.PositionFixed {
			continue
		}
		if edge := c.Y + c.Height + c.Margin.Bottom; edge > bottom {
			bottom = edge
		}
	}
	return bottom - b.ContentY()
}

func documentExtent(res *Result) (w, h float64) {
	res.Walk(func(b *Box) {
		if b.Pinned() {
			return
		}
		if right := b.X + b.Width; right > w {
			w = right
		}
		if bottom := b.Y + b.Height; bottom > h {
			h = bottom
		}
	})
	return w, h
}
