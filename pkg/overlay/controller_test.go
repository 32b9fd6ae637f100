package overlay

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"buoy/pkg/html"
)

// fakeEnv is a scriptable Environment: selectors resolve from a map,
// geometry and viewport numbers are set directly, and events fire on
// demand.
type fakeEnv struct {
	mu        sync.Mutex
	nodes     map[string]*html.Node
	rects     map[*html.Node]Rect
	styles    map[*html.Node]map[string]string
	width     float64
	scrollbar float64

	nextID    int
	resizeFns map[int]func()
	scrollFns map[int]func()

	leftWrites map[*html.Node]int
}

func newFakeEnv(width float64) *fakeEnv {
	return &fakeEnv{
		nodes:      make(map[string]*html.Node),
		rects:      make(map[*html.Node]Rect),
		styles:     make(map[*html.Node]map[string]string),
		width:      width,
		resizeFns:  make(map[int]func()),
		scrollFns:  make(map[int]func()),
		leftWrites: make(map[*html.Node]int),
	}
}

func (e *fakeEnv) addElement(selector string, rect Rect) *html.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := &html.Node{Type: html.ElementNode, TagName: "div"}
	e.nodes[selector] = n
	e.rects[n] = rect
	return n
}

func (e *fakeEnv) QuerySelector(selector string) *html.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nodes[selector]
}

func (e *fakeEnv) BoundingRect(n *html.Node) (Rect, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.rects[n]
	return r, ok
}

func (e *fakeEnv) SetStyle(n *html.Node, property, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := e.styles[n]
	if m == nil {
		m = make(map[string]string)
		e.styles[n] = m
	}
	if value == "" {
		delete(m, property)
	} else {
		m[property] = value
	}
	if property == "left" {
		e.leftWrites[n]++
	}
}

func (e *fakeEnv) ViewportWidth() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.width
}

func (e *fakeEnv) ScrollbarWidth() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scrollbar
}

func (e *fakeEnv) OnResize(fn func()) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.resizeFns[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.resizeFns, id)
	}
}

func (e *fakeEnv) OnScroll(fn func()) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.scrollFns[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.scrollFns, id)
	}
}

func (e *fakeEnv) setWidth(w float64) {
	e.mu.Lock()
	e.width = w
	e.mu.Unlock()
}

func (e *fakeEnv) setScrollbar(w float64) {
	e.mu.Lock()
	e.scrollbar = w
	e.mu.Unlock()
}

func (e *fakeEnv) fireResize() {
	e.mu.Lock()
	fns := make([]func(), 0, len(e.resizeFns))
	for _, fn := range e.resizeFns {
		fns = append(fns, fn)
	}
	e.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (e *fakeEnv) fireScroll() {
	e.mu.Lock()
	fns := make([]func(), 0, len(e.scrollFns))
	for _, fn := range e.scrollFns {
		fns = append(fns, fn)
	}
	e.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (e *fakeEnv) style(n *html.Node, property string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.styles[n][property]
}

func (e *fakeEnv) leftWriteCount(n *html.Node) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.leftWrites[n]
}

func (e *fakeEnv) resetLeftWrites() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.leftWrites = make(map[*html.Node]int)
}

// observableEnv adds the optional observation capabilities on top of
// fakeEnv.
type observableEnv struct {
	*fakeEnv
	obsMu       sync.Mutex
	mutationFns map[int]func()
	sizeFns     map[int]func()
	obsNextID   int
}

func newObservableEnv(width float64) *observableEnv {
	return &observableEnv{
		fakeEnv:     newFakeEnv(width),
		mutationFns: make(map[int]func()),
		sizeFns:     make(map[int]func()),
	}
}

func (e *observableEnv) ObserveMutations(fn func()) func() {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	id := e.obsNextID
	e.obsNextID++
	e.mutationFns[id] = fn
	return func() {
		e.obsMu.Lock()
		defer e.obsMu.Unlock()
		delete(e.mutationFns, id)
	}
}

func (e *observableEnv) ObserveDocumentSize(fn func()) func() {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	id := e.obsNextID
	e.obsNextID++
	e.sizeFns[id] = fn
	return func() {
		e.obsMu.Lock()
		defer e.obsMu.Unlock()
		delete(e.sizeFns, id)
	}
}

func (e *observableEnv) fireMutation() {
	e.obsMu.Lock()
	fns := make([]func(), 0, len(e.mutationFns))
	for _, fn := range e.mutationFns {
		fns = append(fns, fn)
	}
	e.obsMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (e *observableEnv) fireSizeChange() {
	e.obsMu.Lock()
	fns := make([]func(), 0, len(e.sizeFns))
	for _, fn := range e.sizeFns {
		fns = append(fns, fn)
	}
	e.obsMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestController builds a controller with fast timers and a poll
// slow enough to stay quiet unless a test wants it.
func newTestController(t *testing.T, env Environment, poll time.Duration) *Controller {
	t.Helper()
	c := New(env, Config{
		DebounceDelay: 15 * time.Millisecond,
		PollInterval:  poll,
		InitialDelay:  10 * time.Millisecond,
		Logger:        testLogger(),
	})
	t.Cleanup(c.Destroy)
	return c
}

const quietPoll = time.Hour

// settle waits long enough for any pending debounce or initial timer
// in a test controller to have fired.
func settle() {
	time.Sleep(150 * time.Millisecond)
}

func standardSetup(t *testing.T, width float64) (*fakeEnv, *html.Node) {
	t.Helper()
	env := newFakeEnv(width)
	env.addElement("#panel", Rect{})
	// container occupying 100..500 horizontally
	env.addElement("#anchor", Rect{Left: 100, Top: 0, Right: 500, Bottom: 300})
	return env, env.nodes["#panel"]
}

func TestRegisterUnresolvedSelectorFails(t *testing.T) {
	env, panel := standardSetup(t, 1280)
	c := newTestController(t, env, quietPoll)

	if c.Register("a", "#missing", "#anchor", DefaultOptions()) {
		t.Error("expected false for unresolved element selector")
	}
	if c.Register("b", "#panel", "#missing", DefaultOptions()) {
		t.Error("expected false for unresolved container selector")
	}

	settle()
	if got := env.leftWriteCount(panel); got != 0 {
		t.Errorf("expected no placement for failed registrations, got %d writes", got)
	}
	if _, ok := c.InitialPosition("a"); ok {
		t.Error("expected no tracked entry for failed registration")
	}
}

func TestDeferredInitialPlacement(t *testing.T) {
	env, panel := standardSetup(t, 1280)
	c := newTestController(t, env, quietPoll)

	if !c.Register("panel", "#panel", "#anchor", DefaultOptions()) {
		t.Fatal("expected registration to succeed")
	}
	if got := env.style(panel, "left"); got != "" {
		t.Errorf("expected placement to be deferred, found left=%q immediately", got)
	}

	settle()
	if got := env.style(panel, "left"); got != "140px" {
		t.Errorf("expected left 140px (container.left + margin 40), got %q", got)
	}
	if got := env.style(panel, "position"); got != "fixed" {
		t.Errorf("expected fixed positioning, got %q", got)
	}
	if got := env.style(panel, "display"); got != "flex" {
		t.Errorf("expected display flex by default, got %q", got)
	}
	if pos, ok := c.InitialPosition("panel"); !ok || pos != 140 {
		t.Errorf("expected initial position 140 recorded, got %v %v", pos, ok)
	}
}

func TestRightSidePlacement(t *testing.T) {
	env, panel := standardSetup(t, 1280)
	c := newTestController(t, env, quietPoll)

	opts := DefaultOptions()
	opts.Side = SideRight
	c.Register("panel", "#panel", "#anchor", opts)

	settle()
	if got := env.style(panel, "left"); got != "380px" {
		t.Errorf("expected left 380px (container.right - margin - width), got %q", got)
	}
}

func TestExplicitMarginOverridesBreakpoint(t *testing.T) {
	env, panel := standardSetup(t, 1280)
	c := newTestController(t, env, quietPoll)

	opts := DefaultOptions()
	m := 5.0
	opts.Margin = &m
	c.Register("panel", "#panel", "#anchor", opts)

	settle()
	if got := env.style(panel, "left"); got != "105px" {
		t.Errorf("expected left 105px with explicit margin 5, got %q", got)
	}
}

func TestApplyFlexDisabled(t *testing.T) {
	env, panel := standardSetup(t, 1280)
	c := newTestController(t, env, quietPoll)

	opts := DefaultOptions()
	opts.ApplyFlex = false
	c.Register("panel", "#panel", "#anchor", opts)

	settle()
	if got := env.style(panel, "display"); got != "" {
		t.Errorf("expected no display write with ApplyFlex off, got %q", got)
	}
	if got := env.style(panel, "left"); got == "" {
		t.Error("expected position still applied")
	}
}

func TestRegisterReplacesExistingKey(t *testing.T) {
	env, panel := standardSetup(t, 1280)
	c := newTestController(t, env, quietPoll)

	c.Register("panel", "#panel", "#anchor", DefaultOptions())
	opts := DefaultOptions()
	opts.Side = SideRight
	c.Register("panel", "#panel", "#anchor", opts)

	settle()
	if got := env.style(panel, "left"); got != "380px" {
		t.Errorf("expected replacement registration to win, got %q", got)
	}

	c.Unregister("panel")
	env.resetLeftWrites()
	c.ForceUpdate()
	if got := env.leftWriteCount(panel); got != 0 {
		t.Errorf("expected single live registration removed, got %d writes", got)
	}
}

func TestCustomPositionDelegation(t *testing.T) {
	env, panel := standardSetup(t, 1280)
	c := newTestController(t, env, quietPoll)

	anchor := env.nodes["#anchor"]
	opts := DefaultOptions()
	var gotElement, gotContainer *html.Node
	var gotBp Breakpoint
	opts.CustomPosition = func(element, container *html.Node, bp Breakpoint) error {
		gotElement, gotContainer, gotBp = element, container, bp
		env.SetStyle(element, "left", "42px")
		return nil
	}
	c.Register("panel", "#panel", "#anchor", opts)

	settle()
	if got := env.style(panel, "left"); got != "42px" {
		t.Errorf("expected custom position 42px, got %q", got)
	}
	if got := env.style(panel, "display"); got != "flex" {
		t.Errorf("expected flex side effect to still apply, got %q", got)
	}
	if got := env.style(panel, "position"); got != "" {
		t.Errorf("expected built-in style writes to be skipped, found position=%q", got)
	}
	if gotElement != panel || gotContainer != anchor {
		t.Error("expected callback to receive the registration's nodes")
	}
	if gotBp != BreakpointWide {
		t.Errorf("expected callback to see breakpoint wide, got %q", gotBp)
	}
	if _, ok := c.InitialPosition("panel"); ok {
		t.Error("expected no initial position recorded for a custom placement")
	}
}

func TestCustomPositionErrorSkipsElement(t *testing.T) {
	env, panel := standardSetup(t, 1280)
	c := newTestController(t, env, quietPoll)

	opts := DefaultOptions()
	opts.CustomPosition = func(*html.Node, *html.Node, Breakpoint) error {
		return errors.New("no position today")
	}
	c.Register("panel", "#panel", "#anchor", opts)

	settle()
	if got := env.style(panel, "left"); got != "" {
		t.Errorf("expected no placement on callback error, got %q", got)
	}
	if got := env.style(panel, "display"); got != "" {
		t.Errorf("expected flex skipped on callback error, got %q", got)
	}
}

func TestCustomPositionPanicContained(t *testing.T) {
	env, panel := standardSetup(t, 1280)
	c := newTestController(t, env, quietPoll)

	opts := DefaultOptions()
	opts.CustomPosition = func(*html.Node, *html.Node, Breakpoint) error {
		panic("boom")
	}
	c.Register("panel", "#panel", "#anchor", opts)

	settle()
	if got := env.style(panel, "left"); got != "" {
		t.Errorf("expected panicking callback to skip the element, got %q", got)
	}
	// the controller must still be operational
	c.Unregister("panel")
	c.Register("panel", "#panel", "#anchor", DefaultOptions())
	settle()
	if got := env.style(panel, "left"); got != "140px" {
		t.Errorf("expected controller to survive the panic, got %q", got)
	}
}

func TestUpdateAllIdempotent(t *testing.T) {
	env, panel := standardSetup(t, 1280)
	c := newTestController(t, env, quietPoll)

	c.Register("panel", "#panel", "#anchor", DefaultOptions())
	settle()

	c.UpdateAllElements()
	first := env.style(panel, "left")
	c.UpdateAllElements()
	second := env.style(panel, "left")

	if first != second || first == "" {
		t.Errorf("expected identical positions across passes, got %q then %q", first, second)
	}
}

func TestUpdateElementPositionAbsentKey(t *testing.T) {
	env, _ := standardSetup(t, 1280)
	c := newTestController(t, env, quietPoll)
	// must not panic or write anything
	c.UpdateElementPosition("ghost")
}

func TestResizeDebounceSinglePass(t *testing.T) {
	env, panel := standardSetup(t, 1280)
	c := newTestController(t, env, quietPoll)

	c.Register("panel", "#panel", "#anchor", DefaultOptions())
	settle()
	env.resetLeftWrites()

	// burst of resize events crossing wide -> tablet
	env.setWidth(700)
	for i := 0; i < 6; i++ {
		env.fireResize()
		time.Sleep(3 * time.Millisecond)
	}
	settle()

	if got := env.leftWriteCount(panel); got != 1 {
		t.Errorf("expected exactly one recompute for the burst, got %d", got)
	}
	if got := env.style(panel, "left"); got != "125px" {
		t.Errorf("expected tablet margin 25 applied (left 125px), got %q", got)
	}
	if c.Breakpoint() != BreakpointTablet {
		t.Errorf("expected stored breakpoint tablet, got %s", c.Breakpoint())
	}
}

func TestResizeWithinBreakpointIgnored(t *testing.T) {
	env, panel := standardSetup(t, 1280)
	c := newTestController(t, env, quietPoll)

	c.Register("panel", "#panel", "#anchor", DefaultOptions())
	settle()
	env.resetLeftWrites()

	env.setWidth(1100) // still wide
	env.fireResize()
	settle()

	if got := env.leftWriteCount(panel); got != 0 {
		t.Errorf("expected resize path to ignore non-boundary width change, got %d writes", got)
	}
}

func TestScrollbarChangeTriggersUpdate(t *testing.T) {
	env, panel := standardSetup(t, 1280)
	c := newTestController(t, env, quietPoll)

	c.Register("panel", "#panel", "#anchor", DefaultOptions())
	settle()
	env.resetLeftWrites()

	env.setScrollbar(12)
	env.fireScroll()
	settle()
	if got := env.leftWriteCount(panel); got != 1 {
		t.Errorf("expected one update after scrollbar change, got %d", got)
	}

	env.resetLeftWrites()
	env.fireScroll() // scrollbar unchanged now
	settle()
	if got := env.leftWriteCount(panel); got != 0 {
		t.Errorf("expected no update without scrollbar change, got %d", got)
	}
}

func TestPollDetectsSilentWidthChange(t *testing.T) {
	env, panel := standardSetup(t, 1280)
	c := newTestController(t, env, 20*time.Millisecond)

	c.Register("panel", "#panel", "#anchor", DefaultOptions())
	settle()

	// no events at all: only the poll can see this
	env.setWidth(400)
	settle()

	if got := env.style(panel, "left"); got != "115px" {
		t.Errorf("expected poll to reposition for mobile margin 15, got %q", got)
	}
	if c.Breakpoint() != BreakpointMobile {
		t.Errorf("expected snapshot refreshed to mobile, got %s", c.Breakpoint())
	}
}

func TestMutationSignalRunsUnifiedCheck(t *testing.T) {
	env := newObservableEnv(1280)
	env.addElement("#panel", Rect{})
	env.addElement("#anchor", Rect{Left: 100, Top: 0, Right: 500, Bottom: 300})
	panel := env.nodes["#panel"]
	c := newTestController(t, env, quietPoll)

	c.Register("panel", "#panel", "#anchor", DefaultOptions())
	settle()
	env.resetLeftWrites()

	env.setWidth(900)
	env.fireMutation()
	settle()

	if got := env.leftWriteCount(panel); got != 1 {
		t.Errorf("expected mutation signal to drive one update, got %d", got)
	}
}

func TestSizeSignalRunsUnifiedCheck(t *testing.T) {
	env := newObservableEnv(1280)
	env.addElement("#panel", Rect{})
	env.addElement("#anchor", Rect{Left: 100, Top: 0, Right: 500, Bottom: 300})
	panel := env.nodes["#panel"]
	c := newTestController(t, env, quietPoll)

	c.Register("panel", "#panel", "#anchor", DefaultOptions())
	settle()
	env.resetLeftWrites()

	env.setScrollbar(12)
	env.fireSizeChange()
	settle()

	if got := env.leftWriteCount(panel); got != 1 {
		t.Errorf("expected size signal to drive one update, got %d", got)
	}
}

func TestUnifiedCheckWithoutDeltaIsQuiet(t *testing.T) {
	env := newObservableEnv(1280)
	env.addElement("#panel", Rect{})
	env.addElement("#anchor", Rect{Left: 100, Top: 0, Right: 500, Bottom: 300})
	panel := env.nodes["#panel"]
	c := newTestController(t, env, quietPoll)

	c.Register("panel", "#panel", "#anchor", DefaultOptions())
	settle()
	env.resetLeftWrites()

	env.fireMutation()
	env.fireSizeChange()
	settle()

	if got := env.leftWriteCount(panel); got != 0 {
		t.Errorf("expected no update without viewport delta, got %d", got)
	}
}

func TestForceUpdateRefreshesSnapshot(t *testing.T) {
	env, panel := standardSetup(t, 1280)
	c := newTestController(t, env, quietPoll)

	c.Register("panel", "#panel", "#anchor", DefaultOptions())
	settle()

	env.setWidth(500)
	c.ForceUpdate()

	if got := env.style(panel, "left"); got != "125px" {
		t.Errorf("expected synchronous recompute with tablet margin, got %q", got)
	}
	if c.Breakpoint() != BreakpointTablet {
		t.Errorf("expected snapshot refreshed, got %s", c.Breakpoint())
	}
}

func TestContainerWithoutLayoutBoxSkipped(t *testing.T) {
	env := newFakeEnv(1280)
	env.addElement("#panel", Rect{})
	anchor := env.addElement("#anchor", Rect{Left: 100, Right: 500})
	panel := env.nodes["#panel"]
	c := newTestController(t, env, quietPoll)

	c.Register("panel", "#panel", "#anchor", DefaultOptions())
	settle()

	env.mu.Lock()
	delete(env.rects, anchor)
	env.mu.Unlock()
	env.resetLeftWrites()

	c.ForceUpdate()
	if got := env.leftWriteCount(panel); got != 0 {
		t.Errorf("expected element skipped when container has no box, got %d writes", got)
	}
}

func TestDestroyStopsAllUpdates(t *testing.T) {
	env := newObservableEnv(1280)
	env.addElement("#panel", Rect{})
	env.addElement("#anchor", Rect{Left: 100, Top: 0, Right: 500, Bottom: 300})
	panel := env.nodes["#panel"]
	c := newTestController(t, env, 20*time.Millisecond)

	c.Register("panel", "#panel", "#anchor", DefaultOptions())
	settle()

	c.Destroy()
	env.resetLeftWrites()

	env.setWidth(400)
	env.fireResize()
	env.fireScroll()
	env.fireMutation()
	env.fireSizeChange()
	c.UpdateAllElements()
	c.ForceUpdate()
	settle()

	if got := env.leftWriteCount(panel); got != 0 {
		t.Errorf("expected no updates after destroy, got %d", got)
	}
	if c.Register("again", "#panel", "#anchor", DefaultOptions()) {
		t.Error("expected registration to fail on destroyed controller")
	}
	c.Destroy() // idempotent
}

func TestDestroyCancelsPendingInitialPlacement(t *testing.T) {
	env, panel := standardSetup(t, 1280)
	c := newTestController(t, env, quietPoll)

	c.Register("panel", "#panel", "#anchor", DefaultOptions())
	c.Destroy() // before the initial delay elapses

	settle()
	if got := env.leftWriteCount(panel); got != 0 {
		t.Errorf("expected pending initial placement cancelled, got %d writes", got)
	}
}

func TestUnregisterAbsentKey(t *testing.T) {
	env, _ := standardSetup(t, 1280)
	c := newTestController(t, env, quietPoll)
	c.Unregister("never-registered")
}
