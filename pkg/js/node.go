package js

import (
	"fmt"

	"github.com/dop251/goja"
)

// Node is a local proxy for one host node. It holds no tree links; every
// traversal asks the host again. Two Nodes are the same node when their
// handles are equal.
type Node struct {
	b      *Bridge
	handle Handle
}

// Wrap returns a fresh wrapper for h.
func (b *Bridge) Wrap(h Handle) *Node {
	return &Node{b: b, handle: h}
}

func (b *Bridge) wrapAll(hs []Handle) []*Node {
	out := make([]*Node, len(hs))
	for i, h := range hs {
		out[i] = b.Wrap(h)
	}
	return out
}

func (n *Node) Handle() Handle { return n.handle }

func (n *Node) IsSameNode(other *Node) bool {
	return other != nil && other.handle == n.handle
}

// GetAttribute reports the attribute value and whether it is present.
func (n *Node) GetAttribute(name string) (string, bool, error) {
	res, err := n.b.call(OpGetAttribute, n.handle, name)
	if err != nil {
		return "", false, err
	}
	return asOptionalString(OpGetAttribute, res)
}

func (n *Node) AppendChild(child *Node) error {
	_, err := n.b.call(OpAppendChild, n.handle, child.handle)
	return err
}

// InsertBefore inserts newChild ahead of ref. A nil ref appends; it is
// sent to the host as an explicit null argument.
func (n *Node) InsertBefore(newChild, ref *Node) error {
	var refArg any
	if ref != nil {
		refArg = ref.handle
	}
	_, err := n.b.call(OpInsertBefore, n.handle, newChild.handle, refArg)
	return err
}

// RemoveChild detaches child and returns a wrapper for the detached
// subtree root, usable for reinsertion.
func (n *Node) RemoveChild(child *Node) (*Node, error) {
	res, err := n.b.call(OpRemoveChild, n.handle, child.handle)
	if err != nil {
		return nil, err
	}
	h, err := asHandle(OpRemoveChild, res)
	if err != nil {
		return nil, err
	}
	return n.b.Wrap(h), nil
}

// Children returns the element children, freshly wrapped.
func (n *Node) Children() ([]*Node, error) {
	res, err := n.b.call(OpChildren, n.handle)
	if err != nil {
		return nil, err
	}
	hs, err := asHandles(OpChildren, res)
	if err != nil {
		return nil, err
	}
	return n.b.wrapAll(hs), nil
}

func (n *Node) InnerHTML() (string, error) {
	res, err := n.b.call(OpInnerHTMLGet, n.handle)
	if err != nil {
		return "", err
	}
	return asString(OpInnerHTMLGet, res)
}

func (n *Node) SetInnerHTML(markup string) error {
	_, err := n.b.call(OpInnerHTMLSet, n.handle, markup)
	return err
}

func (n *Node) OuterHTML() (string, error) {
	res, err := n.b.call(OpOuterHTMLGet, n.handle)
	if err != nil {
		return "", err
	}
	return asString(OpOuterHTMLGet, res)
}

// Value returns a script object for this node. Each call builds a new
// object.
func (n *Node) Value() *goja.Object {
	return n.b.vm.NewDynamicObject(&nodeAccessor{n: n})
}

// nodeFromValue extracts the handle carried by a script value: a node
// wrapper, any object with a numeric handle property, or a bare number.
// Numbers must be whole.
func (b *Bridge) nodeFromValue(v goja.Value) (*Node, bool) {
	if isNullish(v) {
		return nil, false
	}
	if x, ok := v.Export().(*nodeAccessor); ok {
		return b.Wrap(x.n.handle), true
	}
	if obj, ok := v.(*goja.Object); ok {
		if v = obj.Get("handle"); isNullish(v) {
			return nil, false
		}
	}
	switch x := v.Export().(type) {
	case int64:
		return b.Wrap(Handle(x)), true
	case float64:
		if h, ok := integralHandle(x); ok {
			return b.Wrap(h), true
		}
	}
	return nil, false
}

func (b *Bridge) mustNode(v goja.Value, method string) *Node {
	n, ok := b.nodeFromValue(v)
	if !ok {
		panic(b.vm.NewTypeError("Failed to execute '%s' on 'Node': parameter is not of type 'Node'", method))
	}
	return n
}

func (b *Bridge) nodeArray(nodes []*Node) *goja.Object {
	items := make([]any, len(nodes))
	for i, n := range nodes {
		items[i] = n.Value()
	}
	return b.vm.NewArray(items...)
}

// registerNode exposes the Node constructor so script code can wrap a
// handle it already holds: new Node(h).
func (b *Bridge) registerNode() {
	b.vm.Set("Node", func(call goja.ConstructorCall) *goja.Object {
		n, ok := b.nodeFromValue(argOrUndefined(call.Arguments, 0))
		if !ok {
			panic(b.vm.NewTypeError("Node: handle required"))
		}
		return n.Value()
	})
}

// nodeAccessor implements goja.DynamicObject for node wrappers.
type nodeAccessor struct {
	n *Node
}

var nodeKeys = []string{
	"handle", "getAttribute", "appendChild", "insertBefore", "removeChild",
	"children", "innerHTML", "outerHTML", "style", "getContext",
	"addEventListener", "dispatchEvent", "isSameNode",
}

func (a *nodeAccessor) Get(key string) goja.Value {
	n := a.n
	b := n.b
	vm := b.vm

	switch key {
	case "handle":
		return vm.ToValue(int64(n.handle))
	case "getAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				panic(vm.NewTypeError("Failed to execute 'getAttribute' on 'Element': 1 argument required"))
			}
			val, ok, err := n.GetAttribute(call.Arguments[0].String())
			if err != nil {
				b.throw(err)
			}
			if !ok {
				return goja.Null()
			}
			return vm.ToValue(val)
		})
	case "appendChild":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			child := b.mustNode(argOrUndefined(call.Arguments, 0), "appendChild")
			if err := n.AppendChild(child); err != nil {
				b.throw(err)
			}
			return goja.Undefined()
		})
	case "insertBefore":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			newChild := b.mustNode(argOrUndefined(call.Arguments, 0), "insertBefore")
			var ref *Node
			if refVal := argOrUndefined(call.Arguments, 1); !isNullish(refVal) {
				ref = b.mustNode(refVal, "insertBefore")
			}
			if err := n.InsertBefore(newChild, ref); err != nil {
				b.throw(err)
			}
			return goja.Undefined()
		})
	case "removeChild":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			child := b.mustNode(argOrUndefined(call.Arguments, 0), "removeChild")
			removed, err := n.RemoveChild(child)
			if err != nil {
				b.throw(err)
			}
			return removed.Value()
		})
	case "children":
		children, err := n.Children()
		if err != nil {
			b.throw(err)
		}
		return b.nodeArray(children)
	case "innerHTML":
		s, err := n.InnerHTML()
		if err != nil {
			b.throw(err)
		}
		return vm.ToValue(s)
	case "outerHTML":
		s, err := n.OuterHTML()
		if err != nil {
			b.throw(err)
		}
		return vm.ToValue(s)
	case "style":
		st, err := n.Style()
		if err != nil {
			b.throw(err)
		}
		return st.Value()
	case "getContext":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if argOrUndefined(call.Arguments, 0).String() != "2d" {
				return goja.Null()
			}
			return n.Context2D().Value()
		})
	case "addEventListener":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			typ := argOrUndefined(call.Arguments, 0).String()
			fn := b.callable(argOrUndefined(call.Arguments, 1), "addEventListener")
			n.AddEventListener(typ, fn)
			return goja.Undefined()
		})
	case "dispatchEvent":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			arg := argOrUndefined(call.Arguments, 0)
			ev, ok := arg.Export().(*eventAccessor)
			var event *Event
			if ok {
				event = ev.ev
			} else {
				event = NewEvent(arg.String())
			}
			res, err := b.Dispatch(n, event)
			if err != nil {
				b.throw(err)
			}
			return vm.ToValue(res.DoDefault)
		})
	case "isSameNode":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			other, ok := b.nodeFromValue(argOrUndefined(call.Arguments, 0))
			return vm.ToValue(ok && n.IsSameNode(other))
		})
	}
	return goja.Undefined()
}

func (a *nodeAccessor) Set(key string, val goja.Value) bool {
	switch key {
	case "innerHTML":
		if err := a.n.SetInnerHTML(val.String()); err != nil {
			a.n.b.throw(err)
		}
		return true
	}
	return false
}

func (a *nodeAccessor) Has(key string) bool {
	for _, k := range nodeKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (a *nodeAccessor) Delete(key string) bool {
	return false
}

func (a *nodeAccessor) Keys() []string {
	return []string{"handle"}
}

func (n *Node) String() string {
	return fmt.Sprintf("Node(%d)", n.handle)
}
