package overlay

import "testing"

func TestComputePositionLeftAnchored(t *testing.T) {
	container := Rect{Left: 100, Top: 0, Right: 500, Bottom: 300}
	pos := computePosition(SideLeft, container, 1280, 80, 40, 10)
	if pos != 140 {
		t.Errorf("expected 140 (container.left + margin), got %v", pos)
	}
}

func TestComputePositionRightAnchored(t *testing.T) {
	container := Rect{Left: 100, Top: 0, Right: 500, Bottom: 300}
	pos := computePosition(SideRight, container, 1280, 80, 40, 10)
	if pos != 380 {
		t.Errorf("expected 380 (container.right - margin - width), got %v", pos)
	}
}

func TestComputePositionLeftRespectsMinMargin(t *testing.T) {
	// container hugging the viewport's left edge
	container := Rect{Left: 0, Right: 300}
	pos := computePosition(SideLeft, container, 1280, 80, 5, 10)
	if pos != 10 {
		t.Errorf("expected floor at minMargin 10, got %v", pos)
	}
}

func TestComputePositionRightNearViewportEdge(t *testing.T) {
	// container flush with the viewport's right edge; clearance wins
	container := Rect{Left: 600, Right: 1280}
	pos := computePosition(SideRight, container, 1280, 80, 20, 10)
	if pos != 1190 {
		t.Errorf("expected viewport clearance cap 1190, got %v", pos)
	}
}

func TestComputePositionRightContainerBoundWins(t *testing.T) {
	// narrow container: the element may not leave it to the left
	container := Rect{Left: 100, Right: 200}
	pos := computePosition(SideRight, container, 1280, 80, 30, 10)
	// candidate 200-30-80 = 90 is left of container.left+margin = 130
	if pos != 130 {
		t.Errorf("expected container floor 130, got %v", pos)
	}
}

func TestComputePositionClampProperties(t *testing.T) {
	containers := []Rect{
		{Left: 0, Right: 200},
		{Left: 100, Right: 500},
		{Left: 900, Right: 1280},
		{Left: 50, Right: 1200},
	}
	widths := []float64{40, 80, 120}
	margins := []float64{15, 25, 40}
	const vw, minMargin = 1280.0, 10.0

	for _, c := range containers {
		for _, w := range widths {
			for _, m := range margins {
				pos := computePosition(SideLeft, c, vw, w, m, minMargin)
				if pos < minMargin {
					t.Errorf("left: pos %v below minMargin for %+v w=%v m=%v", pos, c, w, m)
				}
				if pos+w > c.Right && c.Left+m >= minMargin && c.Right-w-m >= minMargin {
					t.Errorf("left: pos %v overflows container %+v w=%v m=%v", pos, c, w, m)
				}
				if pos+w > vw-minMargin {
					t.Errorf("left: pos %v violates viewport clearance for %+v w=%v m=%v", pos, c, w, m)
				}

				rpos := computePosition(SideRight, c, vw, w, m, minMargin)
				if rpos < c.Left+m {
					t.Errorf("right: pos %v left of container floor for %+v w=%v m=%v", rpos, c, w, m)
				}
			}
		}
	}
}

func TestFormatPx(t *testing.T) {
	cases := map[float64]string{
		140:  "140px",
		380:  "380px",
		12.5: "12.5px",
		0:    "0px",
	}
	for in, want := range cases {
		if got := formatPx(in); got != want {
			t.Errorf("formatPx(%v): expected %q, got %q", in, want, got)
		}
	}
}

func TestOptionsNormalized(t *testing.T) {
	var zero Options
	n := zero.normalized()
	if n.Width != 80 || n.Side != SideLeft {
		t.Errorf("expected zero options normalized to width 80 side left, got %+v", n)
	}

	d := DefaultOptions()
	if d.Width != 80 || d.Side != SideLeft || d.MinMargin != 10 || !d.ApplyFlex {
		t.Errorf("unexpected defaults %+v", d)
	}
	if d.Margin != nil || d.CustomPosition != nil {
		t.Errorf("expected nil margin and custom position by default, got %+v", d)
	}
}
