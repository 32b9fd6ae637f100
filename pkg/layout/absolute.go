package layout

import "buoy/pkg/css"

// contentRect is the padding box of a containing block, the area
// position offsets resolve against.
type contentRect struct {
	x, y, w, h float64
}

// placeOutOfFlow resolves absolute and fixed boxes after normal flow.
// Boxes are visited in tree order so a containing block is always
// final before its out-of-flow descendants.
func (e *Engine) placeOutOfFlow(res *Result) {
	res.Walk(func(b *Box) {
		pos := b.Style.GetPosition()
		if pos != css.PositionAbsolute && pos != css.PositionFixed {
			return
		}
		cb := e.containingBlock(b, pos)
		off := b.Style.GetPositionOffset()

		if _, explicit := b.Style.GetLength("width"); !explicit && off.HasLeft && off.HasRight {
			b.Width = cb.w - off.Left - off.Right - b.Margin.Left - b.Margin.Right
			if b.Width < 0 {
				b.Width = 0
			}
		}

		var x float64
		switch {
		case off.HasLeft:
			x = cb.x + off.Left + b.Margin.Left
		case off.HasRight:
			x = cb.x + cb.w - off.Right - b.Width - b.Margin.Right
		default:
			x = staticX(b)
		}

		var y float64
		switch {
		case off.HasTop:
			y = cb.y + off.Top + b.Margin.Top
		case off.HasBottom:
			y = cb.y + cb.h - off.Bottom - b.Height - b.Margin.Bottom
		default:
			y = staticY(b)
		}

		shiftSubtree(b, x-b.X, y-b.Y)
	})
}

// containingBlock finds the rect offsets resolve against: the viewport
// for fixed boxes, the padding box of the nearest positioned ancestor
// for absolute boxes, the initial containing block otherwise.
func (e *Engine) containingBlock(b *Box, pos css.PositionType) contentRect {
	initial := contentRect{0, 0, e.ViewportWidth, e.ViewportHeight}
	if pos == css.PositionFixed {
		return initial
	}
	for anc := b.Parent; anc != nil; anc = anc.Parent {
		if anc.Style == nil {
			break
		}
		if anc.Style.GetPosition() != css.PositionStatic {
			return contentRect{
				x: anc.X + anc.Border.Left,
				y: anc.Y + anc.Border.Top,
				w: anc.Width - anc.Border.Left - anc.Border.Right,
				h: anc.Height - anc.Border.Top - anc.Border.Bottom,
			}
		}
	}
	return initial
}

// staticX approximates the static position: where the box's border
// edge would have landed in normal flow.
func staticX(b *Box) float64 {
	if b.Parent == nil {
		return b.Margin.Left
	}
	return b.Parent.ContentX() + b.Margin.Left
}

func staticY(b *Box) float64 {
	if b.Parent == nil {
		return b.Margin.Top
	}
	// previous in-flow sibling bottom, else parent content top
	var prev *Box
	for _, sib := range b.Parent.Children {
		if sib == b {
			break
		}
		p := sib.Style.GetPosition()
		if p != css.PositionAbsolute && p != css.PositionFixed {
			prev = sib
		}
	}
	if prev != nil {
		return prev.Y + prev.Height + prev.Margin.Bottom + b.Margin.Top
	}
	return b.Parent.ContentY() + b.Margin.Top
}

func shiftSubtree(b *Box, dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	b.X += dx
	b.Y += dy
	for _, c := range b.Children {
		shiftSubtree(c, dx, dy)
	}
}
