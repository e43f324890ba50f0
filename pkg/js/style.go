package js

import (
	"sort"

	"github.com/dop251/goja"

	"tabscript/pkg/css"
)

// Style is a point-in-time copy of a node's style taken when it was
// requested. Reads are served from that copy. Writes go straight to the
// host and do not update it; request the style again to see them.
type Style struct {
	n      *Node
	values map[string]string
}

// Style fetches a snapshot of the node's style declarations.
func (n *Node) Style() (*Style, error) {
	res, err := n.b.call(OpGetStyle, n.handle)
	if err != nil {
		return nil, err
	}
	values, err := asStyleMap(OpGetStyle, res)
	if err != nil {
		return nil, err
	}
	return &Style{n: n, values: values}, nil
}

// Get looks a property up by its CSS name or its camelCase script name.
// Missing properties read as "".
func (s *Style) Get(prop string) string {
	if v, ok := s.values[prop]; ok {
		return v
	}
	return s.values[css.CamelToKebab(prop)]
}

// Set writes one property through to the host.
func (s *Style) Set(prop, value string) error {
	_, err := s.n.b.call(OpSetStyle, s.n.handle, css.CamelToKebab(prop), value)
	return err
}

// Snapshot returns a copy of the captured declarations.
func (s *Style) Snapshot() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s *Style) Value() *goja.Object {
	return s.n.b.vm.NewDynamicObject(&styleAccessor{s: s})
}

type styleAccessor struct {
	s *Style
}

func (a *styleAccessor) Get(key string) goja.Value {
	vm := a.s.n.b.vm
	switch key {
	case "getPropertyValue":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(a.s.Get(argOrUndefined(call.Arguments, 0).String()))
		})
	case "setProperty":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			prop := argOrUndefined(call.Arguments, 0).String()
			if err := a.s.Set(prop, argOrUndefined(call.Arguments, 1).String()); err != nil {
				a.s.n.b.throw(err)
			}
			return goja.Undefined()
		})
	}
	return vm.ToValue(a.s.Get(key))
}

func (a *styleAccessor) Set(key string, val goja.Value) bool {
	if err := a.s.Set(key, val.String()); err != nil {
		a.s.n.b.throw(err)
	}
	return true
}

func (a *styleAccessor) Has(key string) bool {
	_, ok := a.s.values[key]
	if !ok {
		_, ok = a.s.values[css.CamelToKebab(key)]
	}
	return ok
}

func (a *styleAccessor) Delete(key string) bool {
	return false
}

func (a *styleAccessor) Keys() []string {
	keys := make([]string, 0, len(a.s.values))
	for k := range a.s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
