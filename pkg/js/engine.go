package js

import (
	"fmt"
	"log/slog"

	"buoy/pkg/overlay"
	"buoy/pkg/page"

	"github.com/dop251/goja"
)

// Engine executes JavaScript against a page's DOM. The runtime is not
// safe for concurrent use: callers must not run scripts while the
// overlay controller is delivering updates that reach a script-provided
// callback.
type Engine struct {
	vm   *goja.Runtime
	page *page.Page
	ctrl *overlay.Controller
	log  *slog.Logger
	ctx  *domContext
}

// New creates an engine bound to the page. The controller may be nil,
// in which case the buoy global is not installed. A nil logger falls
// back to slog.Default.
func New(p *page.Page, ctrl *overlay.Controller, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	vm := goja.New()
	e := &Engine{vm: vm, page: p, ctrl: ctrl, log: logger}

	c := &consoleAPI{log: logger}
	c.register(vm)

	e.ctx = registerDocument(vm, p)
	registerWindow(e.ctx)
	if ctrl != nil {
		registerBuoy(e.ctx, ctrl)
	}
	return e
}

// Run executes a single script source.
func (e *Engine) Run(src string) error {
	_, err := e.vm.RunString(src)
	return err
}

// ExecuteScripts runs the document's scripts in order. Execution stops
// at the first failing script.
func (e *Engine) ExecuteScripts() error {
	for i, script := range e.page.Document().Scripts {
		if _, err := e.vm.RunString(script); err != nil {
			return fmt.Errorf("script %d: %w", i, err)
		}
	}
	return nil
}
