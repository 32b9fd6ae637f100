package js

import (
	"log/slog"
	"strings"

	"github.com/dop251/goja"
)

// consoleAPI routes console.log, console.warn, and console.error to the
// engine's structured logger.
type consoleAPI struct {
	log *slog.Logger
}

func (c *consoleAPI) register(vm *goja.Runtime) {
	console := vm.NewObject()
	console.Set("log", c.infoFn)
	console.Set("info", c.infoFn)
	console.Set("warn", c.warnFn)
	console.Set("error", c.errorFn)
	vm.Set("console", console)
}

func (c *consoleAPI) infoFn(call goja.FunctionCall) goja.Value {
	c.log.Info(formatArgs(call.Arguments), "source", "script")
	return goja.Undefined()
}

func (c *consoleAPI) warnFn(call goja.FunctionCall) goja.Value {
	c.log.Warn(formatArgs(call.Arguments), "source", "script")
	return goja.Undefined()
}

func (c *consoleAPI) errorFn(call goja.FunctionCall) goja.Value {
	c.log.Error(formatArgs(call.Arguments), "source", "script")
	return goja.Undefined()
}

func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return strings.Join(parts, " ")
}
