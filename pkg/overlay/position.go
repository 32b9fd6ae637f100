package overlay

import (
	"strconv"

	"buoy/pkg/html"
)

// Side selects which container edge a floating element anchors to.
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// PositionFunc replaces the built-in algorithm for one element. It
// receives the registration's element and container nodes plus the
// breakpoint from the current viewport snapshot, and is responsible
// for every style write except the flex side effect, which the
// Controller applies after it returns. An error skips the element for
// this pass, flex included.
type PositionFunc func(element, container *html.Node, bp Breakpoint) error

// Options configures one registration. DefaultOptions supplies the
// documented defaults; a zero Options would disable ApplyFlex and
// request a zero width, which Register normalizes.
type Options struct {
	// Width is the floating element's horizontal size used by the
	// clamp. Non-positive means the default width.
	Width float64

	// Margin is the distance from the anchoring container edge.
	// Nil means the current breakpoint's default margin.
	Margin *float64

	// Side anchors to the container's left or right edge.
	Side Side

	// MinMargin is the minimum clearance kept from the viewport
	// edges. Negative means the default.
	MinMargin float64

	// CustomPosition, when set, replaces the built-in algorithm
	// entirely; only the flex side effect still applies.
	CustomPosition PositionFunc

	// ApplyFlex sets display:flex on the element with each update.
	ApplyFlex bool
}

const (
	defaultWidth     = 80
	defaultMinMargin = 10
)

// DefaultOptions returns the documented option defaults.
func DefaultOptions() Options {
	return Options{
		Width:     defaultWidth,
		Side:      SideLeft,
		MinMargin: defaultMinMargin,
		ApplyFlex: true,
	}
}

func (o Options) normalized() Options {
	if o.Width <= 0 {
		o.Width = defaultWidth
	}
	if o.Side != SideRight {
		o.Side = SideLeft
	}
	if o.MinMargin < 0 {
		o.MinMargin = defaultMinMargin
	}
	return o
}

// computePosition runs the clamped anchoring algorithm. The result is
// the element's offset from the viewport's left edge.
//
// Anchoring right: start at the container's right edge inset by
// margin and width, pull inside the viewport clearance, then never
// left of the container's left margin line (container bound wins).
//
// Anchoring left: start at the container's left edge plus margin,
// never closer to the viewport edge than minMargin, then cap so the
// element stays inside the container and the viewport clearance.
func computePosition(side Side, container Rect, viewportWidth, width, margin, minMargin float64) float64 {
	if side == SideRight {
		pos := container.Right - margin - width
		if limit := viewportWidth - width - minMargin; pos > limit {
			pos = limit
		}
		if floor := container.Left + margin; pos < floor {
			pos = floor
		}
		return pos
	}

	pos := container.Left + margin
	if pos < minMargin {
		pos = minMargin
	}
	if limit := container.Right - width - margin; pos > limit {
		pos = limit
	}
	if limit := viewportWidth - width - minMargin; pos > limit {
		pos = limit
	}
	return pos
}

// formatPx renders a pixel offset the way inline styles carry it,
// without a trailing decimal for whole values.
func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
