package host

import (
	"time"

	"github.com/dop251/goja"

	"tabscript/pkg/js"
)

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

func (t *Tab) scheduleTimeout(args []any) error {
	h, err := argHandle(js.OpSetTimeout, args, 0)
	if err != nil {
		return err
	}
	delay, err := argFloat(js.OpSetTimeout, args, 1)
	if err != nil {
		return err
	}
	t.loop.SetTimeout(func(*goja.Runtime) {
		if !t.isClosed() {
			t.reportError(t.bridge.RunSetTimeout(h))
		}
	}, millis(delay))
	return nil
}

// scheduleInterval keeps firing until the tab closes. Clearing happens in
// the bridge, which turns later fires into no-ops.
func (t *Tab) scheduleInterval(args []any) error {
	h, err := argHandle(js.OpSetInterval, args, 0)
	if err != nil {
		return err
	}
	delay, err := argFloat(js.OpSetInterval, args, 1)
	if err != nil {
		return err
	}
	t.loop.SetInterval(func(*goja.Runtime) {
		if !t.isClosed() {
			t.reportError(t.bridge.RunSetInterval(h))
		}
	}, millis(delay))
	return nil
}

// requestFrame schedules the next frame unless one is already pending.
func (t *Tab) requestFrame() {
	if t.framePending {
		return
	}
	t.framePending = true
	t.loop.SetTimeout(func(*goja.Runtime) { t.runFrame() }, t.cfg.FrameInterval)
}

// runFrame clears the pending flag before the callbacks run, so a
// callback that asks for another frame gets one.
func (t *Tab) runFrame() {
	t.framePending = false
	if t.isClosed() {
		return
	}
	t.reportError(t.bridge.RunRAFHandlers())
	t.frames++

	t.mu.Lock()
	observers := append(([]func(Frame))(nil), t.observers...)
	t.mu.Unlock()
	if len(observers) == 0 {
		return
	}
	frame := Frame{Number: t.frames, Image: t.snapshot()}
	for _, fn := range observers {
		fn(frame)
	}
}

// Frames reports how many animation frames have run.
func (t *Tab) Frames() (int, error) {
	var n int
	err := t.Do(func() error {
		n = t.frames
		return nil
	})
	return n, err
}
