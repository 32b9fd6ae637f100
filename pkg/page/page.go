// Package page hosts a parsed document behind a live, queryable
// viewport: lazy re-layout on change, viewport-relative geometry,
// scrollbar accounting, and the event/observation surface the overlay
// controller consumes.
package page

import (
	"sync"
	"sync/atomic"

	"buoy/pkg/css"
	"buoy/pkg/html"
	"buoy/pkg/layout"
	"buoy/pkg/overlay"
)

// ScrollbarWidth is the width reserved by the vertical scrollbar when
// document content overflows the window height.
const ScrollbarWidth = 12.0

// Page binds a document to a window. Geometry queries lay the
// document out on demand; mutations and resizes only mark the layout
// dirty. Subscriber callbacks run synchronously and must not call
// back into the Page.
type Page struct {
	mu        sync.Mutex
	doc       *html.Document
	width     float64
	height    float64
	scrollY   float64
	result    *layout.Result
	scrollbar float64

	contentW, contentH float64
	laidOut            bool

	dirty atomic.Bool

	subMu        sync.Mutex
	nextID       int
	resizeSubs   map[int]func()
	scrollSubs   map[int]func()
	mutationSubs map[int]func()
	sizeSubs     map[int]func()
}

var (
	_ overlay.Environment        = (*Page)(nil)
	_ overlay.MutationObservable = (*Page)(nil)
	_ overlay.SizeObservable     = (*Page)(nil)
)

// New wraps doc in a page with the given window size.
func New(doc *html.Document, width, height float64) *Page {
	p := &Page{
		doc:          doc,
		width:        width,
		height:       height,
		resizeSubs:   make(map[int]func()),
		scrollSubs:   make(map[int]func()),
		mutationSubs: make(map[int]func()),
		sizeSubs:     make(map[int]func()),
	}
	p.dirty.Store(true)

	// childList edits and style/class rewrites invalidate layout and
	// feed mutation observers; other attributes are layout-inert here
	doc.Observe(func(m html.Mutation) {
		if m.Kind == html.MutationAttribute &&
			m.Attribute != "style" && m.Attribute != "class" {
			return
		}
		p.dirty.Store(true)
		p.dispatch(p.mutationSubs)
	})
	return p
}

func (p *Page) Document() *html.Document {
	return p.doc
}

// Resize sets the window size and notifies resize subscribers.
func (p *Page) Resize(width, height float64) {
	p.mu.Lock()
	if width == p.width && height == p.height {
		p.mu.Unlock()
		return
	}
	p.width = width
	p.height = height
	p.dirty.Store(true)
	p.mu.Unlock()

	p.dispatch(p.resizeSubs)
}

// SetScroll moves the vertical scroll offset and notifies scroll
// subscribers. Scrolling never invalidates layout.
func (p *Page) SetScroll(y float64) {
	p.mu.Lock()
	if y < 0 {
		y = 0
	}
	p.scrollY = y
	p.mu.Unlock()

	p.dispatch(p.scrollSubs)
}

func (p *Page) ScrollY() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrollY
}

// WindowSize returns the outer window dimensions.
func (p *Page) WindowSize() (w, h float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

// QuerySelector resolves a selector against the document.
func (p *Page) QuerySelector(selector string) *html.Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	return css.FindFirst(p.doc.Root, selector)
}

// BoundingRect reports an element's rectangle in viewport coordinates:
// document coordinates shifted by scroll for in-flow content, raw
// coordinates for fixed elements.
func (p *Page) BoundingRect(n *html.Node) (overlay.Rect, bool) {
	p.mu.Lock()
	notify := p.ensureLocked()
	box, ok := p.result.BoxFor(n)
	var rect overlay.Rect
	if ok {
		shift := p.scrollY
		if box.Pinned() {
			shift = 0
		}
		rect = overlay.Rect{
			Left:   box.X,
			Top:    box.Y - shift,
			Right:  box.X + box.Width,
			Bottom: box.Y + box.Height - shift,
		}
	}
	p.mu.Unlock()

	p.afterLayout(notify)
	return rect, ok
}

// SetStyle rewrites one property of the element's inline style. An
// empty value removes the property, and removing the last property
// drops the style attribute. The attribute write flows through the
// document's mutation observers.
func (p *Page) SetStyle(n *html.Node, property, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	attr, _ := n.GetAttribute("style")
	style := css.ParseInlineStyle(attr)
	if value == "" {
		style.Remove(property)
	} else {
		style.Set(property, value)
	}
	if serialized := style.Serialize(); serialized == "" {
		n.RemoveAttribute("style")
	} else {
		n.SetAttribute("style", serialized)
	}
}

// ViewportWidth is the usable width: the window minus the scrollbar.
func (p *Page) ViewportWidth() float64 {
	p.mu.Lock()
	notify := p.ensureLocked()
	w := p.width - p.scrollbar
	p.mu.Unlock()

	p.afterLayout(notify)
	return w
}

// ScrollbarWidth reports the current vertical scrollbar width.
func (p *Page) ScrollbarWidth() float64 {
	p.mu.Lock()
	notify := p.ensureLocked()
	sbw := p.scrollbar
	p.mu.Unlock()

	p.afterLayout(notify)
	return sbw
}

// ContentSize returns the laid-out document extent.
func (p *Page) ContentSize() (w, h float64) {
	p.mu.Lock()
	notify := p.ensureLocked()
	w, h = p.contentW, p.contentH
	p.mu.Unlock()

	p.afterLayout(notify)
	return w, h
}

// Layout returns the current layout result, recomputing if stale.
func (p *Page) Layout() *layout.Result {
	p.mu.Lock()
	notify := p.ensureLocked()
	res := p.result
	p.mu.Unlock()

	p.afterLayout(notify)
	return res
}

func (p *Page) OnResize(fn func()) (cancel func()) {
	return p.subscribe(p.resizeSubs, fn)
}

func (p *Page) OnScroll(fn func()) (cancel func()) {
	return p.subscribe(p.scrollSubs, fn)
}

// ObserveMutations reports child-list edits and style/class attribute
// writes anywhere in the document.
func (p *Page) ObserveMutations(fn func()) (cancel func()) {
	return p.subscribe(p.mutationSubs, fn)
}

// ObserveDocumentSize reports changes to the document's laid-out
// extent. Layout is lazy, so delivery happens on the first geometry
// query after the size actually changed.
func (p *Page) ObserveDocumentSize(fn func()) (cancel func()) {
	return p.subscribe(p.sizeSubs, fn)
}

// ensureLocked brings the layout up to date. It returns whether the
// document extent changed, which the caller reports through
// afterLayout once the lock is released.
func (p *Page) ensureLocked() (sizeChanged bool) {
	if !p.dirty.Swap(false) && p.result != nil {
		return false
	}

	res := layout.NewEngine(p.width, p.height).Layout(p.doc)
	sbw := 0.0
	if res.ContentHeight > p.height {
		// scrollbar narrows the viewport; lay out once more against
		// the reduced width so media queries and fills see it
		sbw = ScrollbarWidth
		res = layout.NewEngine(p.width-sbw, p.height).Layout(p.doc)
	}
	p.result = res
	p.scrollbar = sbw

	changed := p.laidOut && (res.ContentWidth != p.contentW || res.ContentHeight != p.contentH)
	p.contentW, p.contentH = res.ContentWidth, res.ContentHeight
	p.laidOut = true
	return changed
}

func (p *Page) afterLayout(sizeChanged bool) {
	if sizeChanged {
		p.dispatch(p.sizeSubs)
	}
}

func (p *Page) subscribe(m map[int]func(), fn func()) (cancel func()) {
	p.subMu.Lock()
	id := p.nextID
	p.nextID++
	m[id] = fn
	p.subMu.Unlock()
	return func() {
		p.subMu.Lock()
		delete(m, id)
		p.subMu.Unlock()
	}
}

func (p *Page) dispatch(m map[int]func()) {
	p.subMu.Lock()
	fns := make([]func(), 0, len(m))
	for _, fn := range m {
		fns = append(fns, fn)
	}
	p.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
