package resource

import (
	"image"
	"log/slog"

	"buoy/pkg/html"
	"buoy/pkg/js"
	"buoy/pkg/overlay"
	"buoy/pkg/page"
	"buoy/pkg/render"
)

// Session owns everything a loaded document needs to keep its floating
// elements placed: the page, the overlay controller watching it, and
// the engine the document's scripts ran in.
//
// A Session is not safe for concurrent use. A caller driving it from
// more than one goroutine (a UI thread plus a file watcher, say) must
// serialize access itself.
type Session struct {
	page *page.Page
	ctrl *overlay.Controller
	eng  *js.Engine
	log  *slog.Logger
}

// SessionConfig configures NewSession. Zero Overlay fields take the
// overlay package defaults; a nil Logger falls back to slog.Default.
type SessionConfig struct {
	Width, Height float64
	Overlay       overlay.Config
	Logger        *slog.Logger
}

// NewSession parses markup, runs its scripts, and force-updates the
// controller so every element registered during script execution is
// already placed on return. Script errors are logged, not fatal; a
// broken script leaves the document in whatever state it reached.
func NewSession(markup string, cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Overlay.Logger == nil {
		cfg.Overlay.Logger = logger
	}

	p := page.New(html.Parse(markup), cfg.Width, cfg.Height)
	ctrl := overlay.New(p, cfg.Overlay)
	eng := js.New(p, ctrl, logger)

	s := &Session{page: p, ctrl: ctrl, eng: eng, log: logger}
	if err := eng.ExecuteScripts(); err != nil {
		logger.Warn("script execution failed", "err", err)
	}
	ctrl.ForceUpdate()
	return s
}

// Page returns the session's page.
func (s *Session) Page() *page.Page { return s.page }

// Controller returns the session's overlay controller.
func (s *Session) Controller() *overlay.Controller { return s.ctrl }

// Resize changes the window size and reapplies every overlay position
// immediately instead of waiting out the debounced resize path.
func (s *Session) Resize(width, height float64) {
	s.page.Resize(width, height)
	s.ctrl.ForceUpdate()
}

// SetScroll scrolls the window and reapplies overlay positions so a
// scrollbar change is reflected without the debounce wait.
func (s *Session) SetScroll(y float64) {
	s.page.SetScroll(y)
	s.ctrl.ForceUpdate()
}

// Render rasterizes the current page state.
func (s *Session) Render() image.Image {
	w, h := s.page.WindowSize()
	r := render.NewRenderer(int(w), int(h))
	r.RenderPage(s.page)
	return r.Image()
}

// RenderPNG rasterizes the current page state into a PNG file.
func (s *Session) RenderPNG(path string) error {
	w, h := s.page.WindowSize()
	r := render.NewRenderer(int(w), int(h))
	r.RenderPage(s.page)
	return r.SavePNG(path)
}

// Close stops the controller's timers. The session must not be used
// afterwards.
func (s *Session) Close() {
	s.ctrl.Destroy()
}
