package js

import (
	"github.com/dop251/goja"
)

// RequestAnimationFrame queues fn for the next frame and asks the host to
// make sure one is scheduled. The host decides whether a request is
// redundant.
func (b *Bridge) RequestAnimationFrame(fn goja.Callable) error {
	b.raf = append(b.raf, fn)
	_, err := b.call(OpRequestAnimationFrame)
	return err
}

// RunRAFHandlers takes the queue as it stands and runs it in order.
// Callbacks queued while it runs wait for the next frame. If one fails,
// the rest of this frame's callbacks are dropped.
func (b *Bridge) RunRAFHandlers() error {
	queue := b.raf
	b.raf = nil
	for _, fn := range queue {
		if _, err := fn(goja.Undefined()); err != nil {
			return &EntryError{Entry: entryRAF, Err: err}
		}
	}
	return nil
}

// PendingFrames reports how many callbacks wait for the next frame.
func (b *Bridge) PendingFrames() int {
	return len(b.raf)
}

func (b *Bridge) registerRAF() {
	b.vm.Set("requestAnimationFrame", func(call goja.FunctionCall) goja.Value {
		fn := b.callable(argOrUndefined(call.Arguments, 0), "requestAnimationFrame")
		if err := b.RequestAnimationFrame(fn); err != nil {
			b.throw(err)
		}
		return goja.Undefined()
	})
}
