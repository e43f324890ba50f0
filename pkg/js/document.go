package js

import (
	"github.com/dop251/goja"
)

// QuerySelectorAll returns fresh wrappers for every match, in document
// order.
func (b *Bridge) QuerySelectorAll(selector string) ([]*Node, error) {
	res, err := b.call(OpQuerySelectorAll, selector)
	if err != nil {
		return nil, err
	}
	hs, err := asHandles(OpQuerySelectorAll, res)
	if err != nil {
		return nil, err
	}
	return b.wrapAll(hs), nil
}

// CreateElement asks the host for a new detached element.
func (b *Bridge) CreateElement(tag string) (*Node, error) {
	res, err := b.call(OpCreateElement, tag)
	if err != nil {
		return nil, err
	}
	h, err := asHandle(OpCreateElement, res)
	if err != nil {
		return nil, err
	}
	return b.Wrap(h), nil
}

// Cookie reads document.cookie from the host on every call.
func (b *Bridge) Cookie() (string, error) {
	res, err := b.call(OpGetCookie)
	if err != nil {
		return "", err
	}
	return asString(OpGetCookie, res)
}

func (b *Bridge) SetCookie(cookie string) error {
	_, err := b.call(OpSetCookie, cookie)
	return err
}

func (b *Bridge) registerDocument() {
	vm := b.vm
	doc := vm.NewObject()

	doc.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("Failed to execute 'querySelectorAll' on 'Document': 1 argument required"))
		}
		nodes, err := b.QuerySelectorAll(call.Arguments[0].String())
		if err != nil {
			b.throw(err)
		}
		return b.nodeArray(nodes)
	})
	doc.Set("createElement", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("Failed to execute 'createElement' on 'Document': 1 argument required"))
		}
		n, err := b.CreateElement(call.Arguments[0].String())
		if err != nil {
			b.throw(err)
		}
		return n.Value()
	})

	getter := vm.ToValue(func(goja.FunctionCall) goja.Value {
		s, err := b.Cookie()
		if err != nil {
			b.throw(err)
		}
		return vm.ToValue(s)
	})
	setter := vm.ToValue(func(call goja.FunctionCall) goja.Value {
		if err := b.SetCookie(argOrUndefined(call.Arguments, 0).String()); err != nil {
			b.throw(err)
		}
		return goja.Undefined()
	})
	doc.DefineAccessorProperty("cookie", getter, setter, goja.FLAG_FALSE, goja.FLAG_TRUE)

	vm.Set("document", doc)
}
