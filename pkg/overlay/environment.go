package overlay

import "buoy/pkg/html"

// Rect is an element's bounding rectangle in viewport coordinates.
type Rect struct {
	Left, Top, Right, Bottom float64
}

func (r Rect) Width() float64 {
	return r.Right - r.Left
}

func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Environment is the DOM-like host the Controller drives. The page
// package provides the live implementation; tests substitute fakes.
//
// SetStyle with an empty value removes the property, mirroring
// assignment of '' to a style field.
type Environment interface {
	// QuerySelector resolves a selector to an element, nil if none.
	QuerySelector(selector string) *html.Node

	// BoundingRect reports the element's rectangle in viewport
	// coordinates; ok is false when the element has no layout box.
	BoundingRect(n *html.Node) (rect Rect, ok bool)

	// SetStyle writes one inline style property on the element.
	SetStyle(n *html.Node, property, value string)

	// ViewportWidth is the usable width: window width minus any
	// vertical scrollbar.
	ViewportWidth() float64

	// ScrollbarWidth is the current vertical scrollbar width, 0 when
	// no scrollbar is shown.
	ScrollbarWidth() float64

	// OnResize and OnScroll subscribe to viewport events. The
	// returned cancel detaches the subscription.
	OnResize(fn func()) (cancel func())
	OnScroll(fn func()) (cancel func())
}

// MutationObservable is implemented by environments that can report
// document tree changes: child-list edits and style/class attribute
// writes. Environments without it fall back to the periodic poll.
type MutationObservable interface {
	ObserveMutations(fn func()) (cancel func())
}

// SizeObservable is implemented by environments that can report
// changes to the document's laid-out size.
type SizeObservable interface {
	ObserveDocumentSize(fn func()) (cancel func())
}
