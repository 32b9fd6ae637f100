package layout

import (
	"testing"

	"buoy/pkg/css"
	"buoy/pkg/html"
)

func layoutPage(t *testing.T, markup string, vw, vh float64) (*html.Document, *Result) {
	t.Helper()
	doc := html.Parse(markup)
	res := NewEngine(vw, vh).Layout(doc)
	return doc, res
}

func boxFor(t *testing.T, doc *html.Document, res *Result, selector string) *Box {
	t.Helper()
	n := css.FindFirst(doc.Root, selector)
	if n == nil {
		t.Fatalf("no node matches %q", selector)
	}
	b, ok := res.BoxFor(n)
	if !ok {
		t.Fatalf("no box for %q", selector)
	}
	return b
}

func TestBlockStacking(t *testing.T) {
	doc, res := layoutPage(t, `
		<div id="a" style="height: 50px"></div>
		<div id="b" style="height: 30px; margin: 10px"></div>
		<div id="c" style="height: 20px"></div>
	`, 800, 600)

	a := boxFor(t, doc, res, "#a")
	b := boxFor(t, doc, res, "#b")
	c := boxFor(t, doc, res, "#c")

	if a.Y != 0 || a.Height != 50 {
		t.Errorf("expected a at y=0 h=50, got y=%v h=%v", a.Y, a.Height)
	}
	if b.Y != 60 {
		t.Errorf("expected b at y=60 (50 + 10 margin), got %v", b.Y)
	}
	if b.X != 10 {
		t.Errorf("expected b at x=10 from margin, got %v", b.X)
	}
	if c.Y != 100 {
		t.Errorf("expected c at y=100 (60 + 30 + 10 margin), got %v", c.Y)
	}
}

func TestAutoWidthFillsParent(t *testing.T) {
	doc, res := layoutPage(t, `
		<div id="outer" style="width: 400px; padding: 20px">
			<div id="inner" style="height: 10px; margin: 0px 5px"></div>
		</div>
	`, 800, 600)

	outer := boxFor(t, doc, res, "#outer")
	inner := boxFor(t, doc, res, "#inner")

	if outer.Width != 440 {
		t.Errorf("expected outer border-box width 440 (400 + padding), got %v", outer.Width)
	}
	if inner.Width != 390 {
		t.Errorf("expected inner to fill 400 minus 5px margins, got %v", inner.Width)
	}
	if inner.X != 25 {
		t.Errorf("expected inner x=25 (padding 20 + margin 5), got %v", inner.X)
	}
	if inner.Y != 20 {
		t.Errorf("expected inner y=20 inside padding, got %v", inner.Y)
	}
}

func TestAutoHeightWrapsChildren(t *testing.T) {
	doc, res := layoutPage(t, `
		<div id="wrap" style="padding: 10px; border: 2px solid black">
			<div style="height: 30px"></div>
			<div style="height: 20px; margin: 0px 0px 8px 0px"></div>
		</div>
	`, 800, 600)

	wrap := boxFor(t, doc, res, "#wrap")
	want := 2.0 + 10 + 30 + 20 + 8 + 10 + 2
	if wrap.Height != want {
		t.Errorf("expected wrap height %v, got %v", want, wrap.Height)
	}
}

func TestDisplayNoneExcluded(t *testing.T) {
	doc, res := layoutPage(t, `
		<div id="gone" style="display: none"><p id="deep"></p></div>
		<div id="after" style="height: 10px"></div>
	`, 800, 600)

	gone := css.FindFirst(doc.Root, "#gone")
	if _, ok := res.BoxFor(gone); ok {
		t.Error("expected no box for display:none element")
	}
	deep := css.FindFirst(doc.Root, "#deep")
	if _, ok := res.BoxFor(deep); ok {
		t.Error("expected no box inside a display:none subtree")
	}
	after := boxFor(t, doc, res, "#after")
	if after.Y != 0 {
		t.Errorf("expected hidden element to take no space, got y=%v", after.Y)
	}
}

func TestAbsolutePositioning(t *testing.T) {
	doc, res := layoutPage(t, `
		<div id="container" style="position: absolute; left: 100px; top: 0px; width: 400px; height: 300px">
			<div id="child" style="position: absolute; left: 25px; top: 10px; width: 50px; height: 40px"></div>
		</div>
	`, 1280, 800)

	container := boxFor(t, doc, res, "#container")
	if container.X != 100 || container.X+container.Width != 500 {
		t.Errorf("expected container spanning 100..500, got %v..%v",
			container.X, container.X+container.Width)
	}

	child := boxFor(t, doc, res, "#child")
	if child.X != 125 || child.Y != 10 {
		t.Errorf("expected child at (125, 10) inside positioned ancestor, got (%v, %v)",
			child.X, child.Y)
	}
}

func TestAbsoluteRightOffset(t *testing.T) {
	doc, res := layoutPage(t, `
		<div id="pane" style="position: absolute; right: 40px; top: 0px; width: 80px; height: 50px"></div>
	`, 1280, 800)

	pane := boxFor(t, doc, res, "#pane")
	if pane.X != 1160 {
		t.Errorf("expected x=1160 (1280 - 40 - 80), got %v", pane.X)
	}
}

func TestAbsoluteBothOffsetsAutoWidth(t *testing.T) {
	doc, res := layoutPage(t, `
		<div id="strip" style="position: absolute; left: 100px; right: 100px; top: 0px; height: 10px"></div>
	`, 1000, 600)

	strip := boxFor(t, doc, res, "#strip")
	if strip.Width != 800 {
		t.Errorf("expected width 800 from left+right, got %v", strip.Width)
	}
}

func TestFixedPositioningUsesViewport(t *testing.T) {
	doc, res := layoutPage(t, `
		<div style="position: relative; left: 0px; width: 300px; height: 2000px">
			<div id="pin" style="position: fixed; left: 140px; top: 64px; width: 80px; height: 40px"></div>
		</div>
	`, 1280, 800)

	pin := boxFor(t, doc, res, "#pin")
	if pin.X != 140 || pin.Y != 64 {
		t.Errorf("expected fixed box at viewport (140, 64) ignoring ancestors, got (%v, %v)", pin.X, pin.Y)
	}
	if !pin.Fixed() {
		t.Error("expected Fixed() true for position:fixed box")
	}
}

func TestRelativeOffsetKeepsFlow(t *testing.T) {
	doc, res := layoutPage(t, `
		<div id="r" style="position: relative; left: 30px; top: 5px; height: 40px"></div>
		<div id="next" style="height: 10px"></div>
	`, 800, 600)

	r := boxFor(t, doc, res, "#r")
	next := boxFor(t, doc, res, "#next")
	if r.X != 30 || r.Y != 5 {
		t.Errorf("expected relative shift to (30, 5), got (%v, %v)", r.X, r.Y)
	}
	if next.Y != 40 {
		t.Errorf("expected next sibling at y=40 as if unshifted, got %v", next.Y)
	}
}

func TestContentExtent(t *testing.T) {
	_, res := layoutPage(t, `
		<div style="height: 500px"></div>
		<div style="position: absolute; left: 0px; top: 900px; width: 10px; height: 100px"></div>
		<div style="position: fixed; left: 0px; top: 5000px; width: 10px; height: 10px"></div>
	`, 800, 600)

	if res.ContentHeight != 1000 {
		t.Errorf("expected content height 1000 (absolute counted, fixed not), got %v", res.ContentHeight)
	}
}

func TestMediaQueryChangesLayoutAcrossViewports(t *testing.T) {
	markup := `
		<style>
			#bar { height: 10px; width: 50px; }
			@media (min-width: 768px) { #bar { width: 300px; } }
		</style>
		<div id="bar"></div>
	`
	doc, res := layoutPage(t, markup, 1024, 600)
	if b := boxFor(t, doc, res, "#bar"); b.Width != 300 {
		t.Errorf("expected wide rule at 1024px, got width %v", b.Width)
	}
	doc2 := html.Parse(markup)
	res2 := NewEngine(400, 600).Layout(doc2)
	b2, _ := res2.BoxFor(css.FindFirst(doc2.Root, "#bar"))
	if b2.Width != 50 {
		t.Errorf("expected base rule at 400px, got width %v", b2.Width)
	}
}
