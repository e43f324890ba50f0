package js

import (
	"github.com/dop251/goja"
)

// Event is the mutable record shared by every listener of one dispatch
// on one node.
type Event struct {
	typ             string
	doDefault       bool
	stopPropagation bool
	obj             *goja.Object
}

func NewEvent(typ string) *Event {
	return &Event{typ: typ, doDefault: true}
}

func (e *Event) Type() string { return e.typ }

func (e *Event) PreventDefault() { e.doDefault = false }

func (e *Event) StopPropagation() { e.stopPropagation = true }

func (e *Event) DefaultPrevented() bool { return !e.doDefault }

// DispatchResult is the state of the record once every listener ran.
type DispatchResult struct {
	DoDefault       bool
	StopPropagation bool
}

// AddEventListener appends fn to the listeners for (node, typ).
// Registering the same function twice makes it run twice.
func (n *Node) AddEventListener(typ string, fn goja.Callable) {
	b := n.b
	byType := b.listeners[n.handle]
	if byType == nil {
		byType = make(map[string][]goja.Callable)
		b.listeners[n.handle] = byType
	}
	byType[typ] = append(byType[typ], fn)
}

// Dispatch runs the listeners registered on n for ev's type, in
// registration order, with a wrapper for n as this. It visits exactly one
// node: walking ancestors and honouring StopPropagation is the caller's
// job. A listener error stops the dispatch and is returned as is.
func (b *Bridge) Dispatch(n *Node, ev *Event) (DispatchResult, error) {
	list := b.listeners[n.handle][ev.typ]
	if len(list) > 0 {
		list = append([]goja.Callable(nil), list...)
		this := n.Value()
		arg := ev.Value(b)
		for _, fn := range list {
			if _, err := fn(this, arg); err != nil {
				return DispatchResult{}, err
			}
		}
	}
	return DispatchResult{DoDefault: ev.doDefault, StopPropagation: ev.stopPropagation}, nil
}

// DispatchEvent dispatches a fresh event of type typ to the node behind h.
func (b *Bridge) DispatchEvent(h Handle, typ string) (DispatchResult, error) {
	return b.Dispatch(b.Wrap(h), NewEvent(typ))
}

// Value returns the script object for the record, creating it once so
// every listener sees the same object.
func (e *Event) Value(b *Bridge) *goja.Object {
	if e.obj == nil {
		e.obj = b.vm.NewDynamicObject(&eventAccessor{b: b, ev: e})
	}
	return e.obj
}

func (b *Bridge) registerEvent() {
	b.vm.Set("Event", func(call goja.ConstructorCall) *goja.Object {
		typ := argOrUndefined(call.Arguments, 0)
		if goja.IsUndefined(typ) {
			panic(b.vm.NewTypeError("Failed to construct 'Event': 1 argument required"))
		}
		return NewEvent(typ.String()).Value(b)
	})
}

type eventAccessor struct {
	b  *Bridge
	ev *Event
}

func (a *eventAccessor) Get(key string) goja.Value {
	vm := a.b.vm
	switch key {
	case "type":
		return vm.ToValue(a.ev.typ)
	case "defaultPrevented":
		return vm.ToValue(!a.ev.doDefault)
	case "preventDefault":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			a.ev.PreventDefault()
			return goja.Undefined()
		})
	case "stopPropagation":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			a.ev.StopPropagation()
			return goja.Undefined()
		})
	}
	return goja.Undefined()
}

func (a *eventAccessor) Set(key string, val goja.Value) bool {
	return false
}

func (a *eventAccessor) Has(key string) bool {
	switch key {
	case "type", "defaultPrevented", "preventDefault", "stopPropagation":
		return true
	}
	return false
}

func (a *eventAccessor) Delete(key string) bool {
	return false
}

func (a *eventAccessor) Keys() []string {
	return []string{"type", "defaultPrevented"}
}
