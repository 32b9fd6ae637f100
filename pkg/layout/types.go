package layout

import (
	"buoy/pkg/css"
	"buoy/pkg/html"
)

// Box is the laid-out geometry of one element. X and Y locate the
// border-box top-left corner; Width and Height are border-box
// dimensions. In-flow and absolute boxes use document coordinates,
// fixed boxes use viewport coordinates.
type Box struct {
	Node   *html.Node
	Style  *css.Style
	Parent *Box

	X, Y          float64
	Width, Height float64

	Margin  css.BoxEdge
	Padding css.BoxEdge
	Border  css.BoxEdge

	Children []*Box
}

// Fixed reports whether the box is viewport-anchored.
func (b *Box) Fixed() bool {
	return b.Style != nil && b.Style.GetPosition() == css.PositionFixed
}

// Pinned reports whether scroll leaves the box in place: true for a
// fixed box and for everything laid out inside one.
func (b *Box) Pinned() bool {
	for cur := b; cur != nil; cur = cur.Parent {
		if cur.Fixed() {
			return true
		}
	}
	return false
}

// ContentX returns the left edge of the content area.
func (b *Box) ContentX() float64 {
	return b.X + b.Border.Left + b.Padding.Left
}

// ContentY returns the top edge of the content area.
func (b *Box) ContentY() float64 {
	return b.Y + b.Border.Top + b.Padding.Top
}

// ContentWidth returns the width of the content area.
func (b *Box) ContentWidth() float64 {
	w := b.Width - b.Border.Left - b.Border.Right - b.Padding.Left - b.Padding.Right
	if w < 0 {
		return 0
	}
	return w
}

// Result is one layout pass over a document.
type Result struct {
	Root  *Box
	boxes map[*html.Node]*Box

	// ContentWidth and ContentHeight are the document extent, the
	// union of in-flow and absolute boxes. Fixed boxes do not grow
	// the document.
	ContentWidth  float64
	ContentHeight float64
}

// BoxFor returns the laid-out box of a node, if the node took part in
// layout (display:none subtrees and text nodes do not).
func (r *Result) BoxFor(n *html.Node) (*Box, bool) {
	b, ok := r.boxes[n]
	return b, ok
}

// Walk visits every box in the result in tree order.
func (r *Result) Walk(visit func(*Box)) {
	var rec func(*Box)
	rec = func(b *Box) {
		visit(b)
		for _, c := range b.Children {
			rec(c)
		}
	}
	if r.Root != nil {
		rec(r.Root)
	}
}
