package js

import (
	"strings"

	"github.com/dop251/goja"
)

// consoleAPI implements console.log, console.warn, and console.error.
// All three reach the host through the log op; warn and error carry a
// prefix.
type consoleAPI struct {
	b *Bridge
}

func (c *consoleAPI) register(vm *goja.Runtime) {
	console := vm.NewObject()
	console.Set("log", c.log)
	console.Set("warn", c.warn)
	console.Set("error", c.errorFn)
	vm.Set("console", console)
}

func (c *consoleAPI) log(call goja.FunctionCall) goja.Value {
	c.emit("", call.Arguments)
	return goja.Undefined()
}

func (c *consoleAPI) warn(call goja.FunctionCall) goja.Value {
	c.emit("WARN: ", call.Arguments)
	return goja.Undefined()
}

func (c *consoleAPI) errorFn(call goja.FunctionCall) goja.Value {
	c.emit("ERROR: ", call.Arguments)
	return goja.Undefined()
}

func (c *consoleAPI) emit(prefix string, args []goja.Value) {
	if _, err := c.b.call(OpLog, prefix+formatArgs(args)); err != nil {
		c.b.throw(err)
	}
}

func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	return strings.Join(parts, " ")
}
