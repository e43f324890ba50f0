// Package js binds a goja runtime to a host that owns the real document,
// clock and network. Script code sees document, Node, Event,
// XMLHttpRequest, timers and requestAnimationFrame; every stateful
// operation is forwarded through a Gate, and asynchronous results come
// back through the Run* entry points.
//
// A Bridge is not safe for concurrent use. The host must call into it
// only from the goroutine that owns the runtime, one entry point at a
// time.
package js

import (
	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// Bridge owns every script-side registry for one runtime.
type Bridge struct {
	vm     *goja.Runtime
	gate   Gate
	logger *zap.Logger

	listeners map[Handle]map[string][]goja.Callable
	timers    map[Handle]goja.Callable
	intervals map[Handle]goja.Callable
	xhrs      map[Handle]*xhrState
	raf       []goja.Callable

	// nextHandle numbers timers, intervals and requests. It only grows,
	// so a handle held by the host never names a newer registration.
	nextHandle Handle
}

type Option func(*Bridge)

func WithLogger(logger *zap.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger.Named("bridge")
		}
	}
}

// New installs the script-facing globals into vm and returns the bridge
// that backs them.
func New(vm *goja.Runtime, gate Gate, opts ...Option) *Bridge {
	b := &Bridge{
		vm:         vm,
		gate:       gate,
		logger:     zap.NewNop(),
		listeners:  make(map[Handle]map[string][]goja.Callable),
		timers:     make(map[Handle]goja.Callable),
		intervals:  make(map[Handle]goja.Callable),
		xhrs:       make(map[Handle]*xhrState),
		nextHandle: 1,
	}
	for _, opt := range opts {
		opt(b)
	}

	c := &consoleAPI{b: b}
	c.register(vm)
	b.registerDocument()
	b.registerNode()
	b.registerEvent()
	b.registerTimers()
	b.registerXHR()
	b.registerRAF()
	return b
}

// Runtime returns the goja runtime the bridge is installed in.
func (b *Bridge) Runtime() *goja.Runtime {
	return b.vm
}

func (b *Bridge) call(op Op, args ...any) (any, error) {
	res, err := b.gate.Call(op, args...)
	if err != nil {
		b.logger.Debug("gate call failed", zap.String("op", string(op)), zap.Error(err))
		return nil, err
	}
	return res, nil
}

func (b *Bridge) allocHandle() Handle {
	h := b.nextHandle
	b.nextHandle++
	return h
}

// DefineNodeGlobal exposes the node behind h as a script global, the way
// elements with an id attribute are reachable by name.
func (b *Bridge) DefineNodeGlobal(name string, h Handle) {
	b.vm.Set(name, b.Wrap(h).Value())
}

// ClearGlobal sets a global back to undefined.
func (b *Bridge) ClearGlobal(name string) {
	b.vm.Set(name, goja.Undefined())
}

// throw turns a Go error into a script exception. Script exceptions that
// passed through Go unchanged are rethrown as they are.
func (b *Bridge) throw(err error) {
	if ex, ok := err.(*goja.Exception); ok {
		panic(ex)
	}
	panic(b.vm.NewGoError(err))
}

func (b *Bridge) callable(v goja.Value, what string) goja.Callable {
	fn, ok := goja.AssertFunction(v)
	if !ok {
		panic(b.vm.NewTypeError("%s: argument is not a function", what))
	}
	return fn
}

func argOrUndefined(args []goja.Value, i int) goja.Value {
	if i < len(args) {
		return args[i]
	}
	return goja.Undefined()
}

func isNullish(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v) || goja.IsNull(v)
}
