// Package overlay keeps floating panels anchored to container elements
// as the viewport changes. A Controller tracks registered elements and
// recomputes their fixed-position offsets when the environment reports
// resizes, scrolls, document mutations, or size changes, with a
// periodic poll as the fallback detector.
package overlay

// Breakpoint is a named viewport-width bucket.
type Breakpoint string

const (
	BreakpointMobile  Breakpoint = "mobile"
	BreakpointTablet  Breakpoint = "tablet"
	BreakpointDesktop Breakpoint = "desktop"
	BreakpointWide    Breakpoint = "wide"
)

// Width thresholds: a viewport narrower than the threshold belongs to
// the bucket below it.
const (
	mobileMax  = 430
	tabletMax  = 768
	desktopMax = 1024
)

// Classify buckets a viewport width. Total over all inputs.
func Classify(width float64) Breakpoint {
	switch {
	case width < mobileMax:
		return BreakpointMobile
	case width < tabletMax:
		return BreakpointTablet
	case width < desktopMax:
		return BreakpointDesktop
	default:
		return BreakpointWide
	}
}

// DefaultMargin returns the spacing used between a container edge and
// a floating element at the given breakpoint. Unrecognized breakpoints
// fall back to the widest bucket's margin.
func DefaultMargin(bp Breakpoint) float64 {
	switch bp {
	case BreakpointMobile:
		return 15
	case BreakpointTablet:
		return 25
	case BreakpointDesktop:
		return 40
	case BreakpointWide:
		return 40
	default:
		return 40
	}
}
