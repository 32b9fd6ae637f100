package overlay

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"buoy/pkg/html"
)

// Default timing for the change-detection pipeline.
const (
	DefaultDebounceDelay = 50 * time.Millisecond
	DefaultPollInterval  = 100 * time.Millisecond
	DefaultInitialDelay  = 50 * time.Millisecond
)

// Config tunes a Controller. Zero fields take the package defaults.
type Config struct {
	// DebounceDelay is the quiet period for the resize, scroll,
	// mutation-settle, and update debouncers.
	DebounceDelay time.Duration

	// PollInterval is the cadence of the unconditional fallback
	// check.
	PollInterval time.Duration

	// InitialDelay is how long a fresh registration waits before its
	// first placement, giving surrounding layout a settling window.
	InitialDelay time.Duration

	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.DebounceDelay <= 0 {
		c.DebounceDelay = DefaultDebounceDelay
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = DefaultInitialDelay
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// viewportState is the last-observed environment snapshot change
// detection compares against.
type viewportState struct {
	width          float64
	scrollbarWidth float64
	breakpoint     Breakpoint
}

// registration binds one floating element to its container. Nodes are
// resolved once, at registration time.
type registration struct {
	key       string
	element   *html.Node
	container *html.Node
	opts      Options

	initTimer *time.Timer

	// initialPosition is the offset applied by the deferred first
	// placement, kept for callers that want the pre-drift anchor.
	initialPosition    float64
	hasInitialPosition bool
}

// signal identifies which producer woke the update task.
type signal uint8

const (
	signalResize signal = 1 << iota
	signalScroll
	signalViewport
)

// Controller tracks floating elements and keeps them positioned
// against their containers. Construct with New, stop with Destroy.
//
// Change detection follows a producer/consumer shape: resize, scroll,
// mutation, and size producers publish signals onto a coalescing
// channel consumed by one background task; a periodic poll covers
// hosts where optional observers are missing.
type Controller struct {
	env Environment
	cfg Config
	log *slog.Logger

	mu        sync.Mutex
	elements  map[string]*registration
	state     viewportState
	destroyed bool

	resizeDeb *Debouncer
	scrollDeb *Debouncer
	settleDeb *Debouncer
	updateDeb *Debouncer

	sigMu   sync.Mutex
	pending signal
	wake    chan struct{}
	done    chan struct{}

	cancels     []func()
	destroyOnce sync.Once
}

// New builds a Controller over env, detects the environment's
// observation capabilities, starts the producers it supports, and
// launches the consumer task.
func New(env Environment, cfg Config) *Controller {
	cfg = cfg.withDefaults()
	c := &Controller{
		env:       env,
		cfg:       cfg,
		log:       cfg.Logger,
		elements:  make(map[string]*registration),
		resizeDeb: NewDebouncer(cfg.DebounceDelay),
		scrollDeb: NewDebouncer(cfg.DebounceDelay),
		settleDeb: NewDebouncer(cfg.DebounceDelay),
		updateDeb: NewDebouncer(cfg.DebounceDelay),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	c.state = c.snapshot()

	c.cancels = append(c.cancels,
		env.OnResize(func() {
			c.resizeDeb.Trigger(func() { c.post(signalResize) })
		}),
		env.OnScroll(func() {
			c.scrollDeb.Trigger(func() { c.post(signalScroll) })
		}),
	)

	capabilities := []string{"resize", "scroll", "poll"}
	if mo, ok := env.(MutationObservable); ok {
		c.cancels = append(c.cancels, mo.ObserveMutations(func() {
			c.settleDeb.Trigger(func() { c.post(signalViewport) })
		}))
		capabilities = append(capabilities, "mutation")
	}
	if so, ok := env.(SizeObservable); ok {
		c.cancels = append(c.cancels, so.ObserveDocumentSize(func() {
			c.post(signalViewport)
		}))
		capabilities = append(capabilities, "size")
	}
	c.log.Debug("overlay controller started",
		"capabilities", capabilities,
		"breakpoint", c.state.breakpoint)

	go c.run()
	return c
}

func (c *Controller) snapshot() viewportState {
	w := c.env.ViewportWidth()
	return viewportState{
		width:          w,
		scrollbarWidth: c.env.ScrollbarWidth(),
		breakpoint:     Classify(w),
	}
}

func (c *Controller) post(s signal) {
	c.sigMu.Lock()
	c.pending |= s
	c.sigMu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// run is the single consumer of posted signals plus the fallback poll.
func (c *Controller) run() {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-c.wake:
			c.sigMu.Lock()
			sigs := c.pending
			c.pending = 0
			c.sigMu.Unlock()

			if sigs&signalResize != 0 {
				c.breakpointCheck()
			}
			if sigs&signalScroll != 0 {
				c.scrollbarCheck()
			}
			if sigs&signalViewport != 0 {
				c.viewportCheck()
			}
		case <-ticker.C:
			c.viewportCheck()
		}
	}
}

// breakpointCheck is the resize path: coarse and fast, it reacts only
// to breakpoint boundary crossings.
func (c *Controller) breakpointCheck() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	next := c.snapshot()
	if next.breakpoint == c.state.breakpoint {
		return
	}
	c.log.Debug("breakpoint changed",
		"from", c.state.breakpoint, "to", next.breakpoint, "width", next.width)
	c.state = next
	c.updateAllLocked()
}

// scrollbarCheck is the scroll path: a scrollbar can appear or vanish
// without the breakpoint moving.
func (c *Controller) scrollbarCheck() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	sbw := c.env.ScrollbarWidth()
	if sbw == c.state.scrollbarWidth {
		return
	}
	c.log.Debug("scrollbar width changed",
		"from", c.state.scrollbarWidth, "to", sbw)
	c.state = c.snapshot()
	c.updateAllLocked()
}

// viewportCheck is the unified fine-grained detector: any width or
// scrollbar delta refreshes the snapshot and schedules a coalesced
// update pass.
func (c *Controller) viewportCheck() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	next := c.snapshot()
	changed := next.width != c.state.width || next.scrollbarWidth != c.state.scrollbarWidth
	if changed {
		c.state = next
	}
	c.mu.Unlock()

	if changed {
		c.updateDeb.Trigger(func() { c.UpdateAllElements() })
	}
}

// Register tracks the element found by elementSelector, anchored to
// the container found by containerSelector. It returns false and logs
// a diagnostic when either selector resolves to nothing; no partial
// registration is kept. Registering an existing key replaces it.
//
// Placement is deferred by the configured initial delay rather than
// applied synchronously.
func (c *Controller) Register(key, elementSelector, containerSelector string, opts Options) bool {
	element := c.env.QuerySelector(elementSelector)
	container := c.env.QuerySelector(containerSelector)
	if element == nil || container == nil {
		c.log.Warn("overlay registration failed",
			"key", key,
			"element", elementSelector, "elementFound", element != nil,
			"container", containerSelector, "containerFound", container != nil)
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		c.log.Warn("overlay registration on destroyed controller", "key", key)
		return false
	}

	if old, ok := c.elements[key]; ok && old.initTimer != nil {
		old.initTimer.Stop()
	}

	reg := &registration{
		key:       key,
		element:   element,
		container: container,
		opts:      opts.normalized(),
	}
	c.elements[key] = reg

	reg.initTimer = time.AfterFunc(c.cfg.InitialDelay, func() {
		c.initialPlacement(key, reg)
	})

	c.log.Debug("overlay element registered",
		"key", key, "side", reg.opts.Side, "width", reg.opts.Width)
	return true
}

// initialPlacement runs one deferred first update and records the
// applied offset as the registration's initial position.
func (c *Controller) initialPlacement(key string, reg *registration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed || c.elements[key] != reg {
		return
	}
	reg.initTimer = nil
	if pos, ok := c.updateLocked(reg); ok {
		reg.initialPosition = pos
		reg.hasInitialPosition = true
	}
}

// Unregister drops a registration. Absent keys are a no-op.
func (c *Controller) Unregister(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	reg, ok := c.elements[key]
	if !ok {
		return
	}
	if reg.initTimer != nil {
		reg.initTimer.Stop()
	}
	delete(c.elements, key)
	c.log.Debug("overlay element unregistered", "key", key)
}

// UpdateElementPosition recomputes and applies one element's position.
// Absent keys are a no-op.
func (c *Controller) UpdateElementPosition(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	if reg, ok := c.elements[key]; ok {
		c.updateLocked(reg)
	}
}

// UpdateAllElements recomputes every registration. Elements are
// independent; ordering between them is unspecified.
func (c *Controller) UpdateAllElements() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	c.updateAllLocked()
}

// ForceUpdate refreshes the viewport snapshot and recomputes every
// element unconditionally, for callers that changed layout outside
// the detected signals.
func (c *Controller) ForceUpdate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	c.state = c.snapshot()
	c.updateAllLocked()
}

// InitialPosition reports the offset applied by a registration's
// deferred first placement, once it has happened. Registrations with a
// custom position callback never record one; the callback owns the
// style writes and the offset is not observable here.
func (c *Controller) InitialPosition(key string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	reg, ok := c.elements[key]
	if !ok || !reg.hasInitialPosition {
		return 0, false
	}
	return reg.initialPosition, true
}

// Breakpoint returns the classification of the current snapshot.
func (c *Controller) Breakpoint() Breakpoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.breakpoint
}

// Destroy detaches every producer, cancels every pending timer, stops
// the consumer task, and clears the registry. Idempotent. No update
// runs after Destroy returns.
func (c *Controller) Destroy() {
	c.destroyOnce.Do(func() {
		c.mu.Lock()
		c.destroyed = true
		for _, reg := range c.elements {
			if reg.initTimer != nil {
				reg.initTimer.Stop()
			}
		}
		c.elements = make(map[string]*registration)
		c.mu.Unlock()

		close(c.done)
		for _, cancel := range c.cancels {
			cancel()
		}
		c.resizeDeb.Cancel()
		c.scrollDeb.Cancel()
		c.settleDeb.Cancel()
		c.updateDeb.Cancel()
		c.log.Debug("overlay controller destroyed")
	})
}

func (c *Controller) updateAllLocked() {
	for _, reg := range c.elements {
		c.updateLocked(reg)
	}
}

// updateLocked positions one element. Returns the applied offset when
// the built-in algorithm wrote one; custom placements own their style
// writes, so no offset is reported for them.
func (c *Controller) updateLocked(reg *registration) (float64, bool) {
	viewportWidth := c.env.ViewportWidth()
	bp := Classify(viewportWidth)

	if reg.opts.CustomPosition != nil {
		if err := c.callCustomPosition(reg, bp); err != nil {
			c.log.Warn("overlay custom position failed",
				"key", reg.key, "error", err)
			return 0, false
		}
		if reg.opts.ApplyFlex {
			c.env.SetStyle(reg.element, "display", "flex")
		}
		return 0, false
	}

	container, ok := c.env.BoundingRect(reg.container)
	if !ok {
		c.log.Debug("overlay container has no layout box", "key", reg.key)
		return 0, false
	}

	margin := DefaultMargin(bp)
	if reg.opts.Margin != nil {
		margin = *reg.opts.Margin
	}
	pos := computePosition(reg.opts.Side, container, viewportWidth,
		reg.opts.Width, margin, reg.opts.MinMargin)

	el := reg.element
	c.env.SetStyle(el, "left", formatPx(pos))
	c.env.SetStyle(el, "position", "fixed")
	c.env.SetStyle(el, "transform", "")
	c.env.SetStyle(el, "margin", "")
	if reg.opts.ApplyFlex {
		c.env.SetStyle(el, "display", "flex")
	}
	return pos, true
}

// callCustomPosition shields the update pass from a misbehaving
// callback: an error or panic skips the element for this pass, the
// flex side effect included.
func (c *Controller) callCustomPosition(reg *registration, bp Breakpoint) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("custom position panicked: %v", r)
		}
	}()
	return reg.opts.CustomPosition(reg.element, reg.container, bp)
}
