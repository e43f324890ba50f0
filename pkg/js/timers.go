package js

import (
	"math"

	"github.com/dop251/goja"
)

// SetTimeout registers fn and asks the host to fire it once after delay
// milliseconds. The host later calls RunSetTimeout with the handle it was
// given; script code never sees that handle.
func (b *Bridge) SetTimeout(fn goja.Callable, delay float64) error {
	h := b.allocHandle()
	b.timers[h] = fn
	if _, err := b.call(OpSetTimeout, h, delay); err != nil {
		delete(b.timers, h)
		return err
	}
	return nil
}

// SetInterval registers fn for repeated firing and returns its handle.
func (b *Bridge) SetInterval(fn goja.Callable, delay float64) (Handle, error) {
	h := b.allocHandle()
	b.intervals[h] = fn
	if _, err := b.call(OpSetInterval, h, delay); err != nil {
		delete(b.intervals, h)
		return 0, err
	}
	return h, nil
}

// ClearInterval forgets an interval. The host may still deliver fires
// already scheduled; RunSetInterval ignores them.
func (b *Bridge) ClearInterval(h Handle) {
	delete(b.intervals, h)
}

// RunSetTimeout fires the timeout registered under h. The entry is
// dropped first, so a repeated delivery is a no-op.
func (b *Bridge) RunSetTimeout(h Handle) error {
	fn, ok := b.timers[h]
	if !ok {
		return nil
	}
	delete(b.timers, h)
	if _, err := fn(goja.Undefined()); err != nil {
		return &EntryError{Entry: entryTimeout, Handle: h, Err: err}
	}
	return nil
}

// RunSetInterval fires the interval registered under h, or does nothing
// when it has been cleared.
func (b *Bridge) RunSetInterval(h Handle) error {
	fn, ok := b.intervals[h]
	if !ok {
		return nil
	}
	if _, err := fn(goja.Undefined()); err != nil {
		return &EntryError{Entry: entryInterval, Handle: h, Err: err}
	}
	return nil
}

func delayArg(call goja.FunctionCall) float64 {
	d := argOrUndefined(call.Arguments, 1)
	if isNullish(d) {
		return 0
	}
	ms := d.ToFloat()
	if math.IsNaN(ms) || ms < 0 {
		return 0
	}
	return ms
}

func (b *Bridge) registerTimers() {
	vm := b.vm
	vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		fn := b.callable(argOrUndefined(call.Arguments, 0), "setTimeout")
		if err := b.SetTimeout(fn, delayArg(call)); err != nil {
			b.throw(err)
		}
		return goja.Undefined()
	})
	vm.Set("setInterval", func(call goja.FunctionCall) goja.Value {
		fn := b.callable(argOrUndefined(call.Arguments, 0), "setInterval")
		h, err := b.SetInterval(fn, delayArg(call))
		if err != nil {
			b.throw(err)
		}
		return vm.ToValue(int64(h))
	})
	vm.Set("clearInterval", func(call goja.FunctionCall) goja.Value {
		if h := argOrUndefined(call.Arguments, 0); !isNullish(h) {
			b.ClearInterval(Handle(h.ToInteger()))
		}
		return goja.Undefined()
	})
}
