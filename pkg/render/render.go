package render

import (
	"image"
	"sort"

	"github.com/fogleman/gg"

	"buoy/pkg/css"
	"buoy/pkg/layout"
	"buoy/pkg/page"
)

// Renderer rasterizes a page into an offscreen image the size of the
// window.
type Renderer struct {
	dc *gg.Context
}

func NewRenderer(width, height int) *Renderer {
	return &Renderer{dc: gg.NewContext(width, height)}
}

// RenderPage paints the page's current layout in viewport coordinates:
// scrolled content is shifted up, pinned content stays put, and the
// window scrollbar is drawn last.
func (r *Renderer) RenderPage(p *page.Page) {
	res := p.Layout()
	scrollY := p.ScrollY()

	r.dc.SetRGB(1, 1, 1)
	r.dc.Clear()

	boxes := flatten(res)
	sortByZIndex(boxes)
	for _, b := range boxes {
		r.drawBox(b, scrollY)
	}

	r.drawWindowScrollbar(p)
}

// Image exposes the rendered frame.
func (r *Renderer) Image() image.Image {
	return r.dc.Image()
}

// SavePNG writes the rendered frame to a file.
func (r *Renderer) SavePNG(filename string) error {
	return r.dc.SavePNG(filename)
}

// flatten collects every painted box in tree order.
func flatten(res *layout.Result) []*layout.Box {
	var out []*layout.Box
	res.Walk(func(b *layout.Box) {
		if b.Style != nil {
			out = append(out, b)
		}
	})
	return out
}

// sortByZIndex orders boxes by z-index, keeping tree order within a
// level so later siblings paint over earlier ones.
func sortByZIndex(boxes []*layout.Box) {
	sort.SliceStable(boxes, func(i, j int) bool {
		return boxes[i].Style.GetZIndex() < boxes[j].Style.GetZIndex()
	})
}

func (r *Renderer) drawBox(b *layout.Box, scrollY float64) {
	y := b.Y
	if !b.Pinned() {
		y -= scrollY
	}

	r.drawBackground(b, y)
	r.drawBorder(b, y)
}

// drawBackground fills the padding box.
func (r *Renderer) drawBackground(b *layout.Box, y float64) {
	bgColor, ok := b.Style.Get("background-color")
	if !ok {
		return
	}
	color, ok := css.ParseColor(bgColor)
	if !ok {
		return
	}

	x := b.X + b.Border.Left
	top := y + b.Border.Top
	w := b.Width - b.Border.Left - b.Border.Right
	h := b.Height - b.Border.Top - b.Border.Bottom
	if w <= 0 || h <= 0 {
		return
	}
	r.setColor(color)
	r.dc.DrawRectangle(x, top, w, h)
	r.dc.Fill()
}

// drawBorder paints each border side as a mitered trapezoid between
// the border box and the padding box.
func (r *Renderer) drawBorder(b *layout.Box, y float64) {
	if b.Border.Top <= 0 && b.Border.Right <= 0 && b.Border.Bottom <= 0 && b.Border.Left <= 0 {
		return
	}

	outerLeft := b.X
	outerTop := y
	outerRight := b.X + b.Width
	outerBottom := y + b.Height
	innerLeft := outerLeft + b.Border.Left
	innerTop := outerTop + b.Border.Top
	innerRight := outerRight - b.Border.Right
	innerBottom := outerBottom - b.Border.Bottom

	if b.Border.Top > 0 {
		r.setColor(r.borderSideColor(b, "top"))
		r.dc.MoveTo(outerLeft, outerTop)
		r.dc.LineTo(outerRight, outerTop)
		r.dc.LineTo(innerRight, innerTop)
		r.dc.LineTo(innerLeft, innerTop)
		r.dc.ClosePath()
		r.dc.Fill()
	}
	if b.Border.Right > 0 {
		r.setColor(r.borderSideColor(b, "right"))
		r.dc.MoveTo(outerRight, outerTop)
		r.dc.LineTo(outerRight, outerBottom)
		r.dc.LineTo(innerRight, innerBottom)
		r.dc.LineTo(innerRight, innerTop)
		r.dc.ClosePath()
		r.dc.Fill()
	}
	if b.Border.Bottom > 0 {
		r.setColor(r.borderSideColor(b, "bottom"))
		r.dc.MoveTo(outerLeft, outerBottom)
		r.dc.LineTo(outerRight, outerBottom)
		r.dc.LineTo(innerRight, innerBottom)
		r.dc.LineTo(innerLeft, innerBottom)
		r.dc.ClosePath()
		r.dc.Fill()
	}
	if b.Border.Left > 0 {
		r.setColor(r.borderSideColor(b, "left"))
		r.dc.MoveTo(outerLeft, outerTop)
		r.dc.LineTo(outerLeft, outerBottom)
		r.dc.LineTo(innerLeft, innerBottom)
		r.dc.LineTo(innerLeft, innerTop)
		r.dc.ClosePath()
		r.dc.Fill()
	}
}

// borderSideColor resolves per-side color, then border-color, then the
// element's color property, then black.
func (r *Renderer) borderSideColor(b *layout.Box, side string) css.Color {
	for _, prop := range []string{"border-" + side + "-color", "border-color", "color"} {
		if colorStr, ok := b.Style.Get(prop); ok {
			if color, ok := css.ParseColor(colorStr); ok {
				return color
			}
		}
	}
	return css.Color{}
}

// drawWindowScrollbar paints the vertical scrollbar track and a thumb
// sized and placed by the scroll fraction.
func (r *Renderer) drawWindowScrollbar(p *page.Page) {
	sbw := p.ScrollbarWidth()
	if sbw <= 0 {
		return
	}
	w, h := p.WindowSize()
	_, contentH := p.ContentSize()
	if contentH <= 0 {
		return
	}
	x := w - sbw

	r.dc.SetRGB(230/255.0, 230/255.0, 230/255.0)
	r.dc.DrawRectangle(x, 0, sbw, h)
	r.dc.Fill()

	thumbH := h * h / contentH
	if thumbH > h {
		thumbH = h
	}
	thumbY := p.ScrollY() / contentH * h
	if thumbY+thumbH > h {
		thumbY = h - thumbH
	}
	r.dc.SetRGB(150/255.0, 150/255.0, 150/255.0)
	r.dc.DrawRectangle(x, thumbY, sbw, thumbH)
	r.dc.Fill()
}

func (r *Renderer) setColor(c css.Color) {
	r.dc.SetRGB(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0)
}
