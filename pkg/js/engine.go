package js

import (
	"fmt"

	"github.com/dop251/goja"
)

// Engine runs page scripts against a Bridge.
type Engine struct {
	vm     *goja.Runtime
	bridge *Bridge
}

// NewEngine installs a bridge into vm, creating a fresh runtime when vm
// is nil.
func NewEngine(vm *goja.Runtime, gate Gate, opts ...Option) *Engine {
	if vm == nil {
		vm = goja.New()
	}
	return &Engine{vm: vm, bridge: New(vm, gate, opts...)}
}

func (e *Engine) Bridge() *Bridge {
	return e.bridge
}

// Run executes one script. name shows up in stack traces.
func (e *Engine) Run(name, src string) (goja.Value, error) {
	return e.vm.RunScript(name, src)
}

// Execute runs scripts in order and stops at the first failure.
func (e *Engine) Execute(scripts []string) error {
	for i, script := range scripts {
		if _, err := e.vm.RunString(script); err != nil {
			return fmt.Errorf("script %d: %w", i, err)
		}
	}
	return nil
}
