package js

import (
	"github.com/dop251/goja"
)

const defaultFillStyle = "#000000"

// Context2D draws on a canvas element through the host. Only the fill
// style is kept locally; it travels with every draw call.
type Context2D struct {
	n         *Node
	FillStyle string
}

// Context2D returns a drawing context for the node. The host ignores
// draw calls on nodes that are not canvases.
func (n *Node) Context2D() *Context2D {
	return &Context2D{n: n, FillStyle: defaultFillStyle}
}

func (c *Context2D) FillRect(x, y, w, h float64) error {
	_, err := c.n.b.call(OpFillRect, c.n.handle, x, y, w, h, c.FillStyle)
	return err
}

func (c *Context2D) FillText(text string, x, y float64) error {
	_, err := c.n.b.call(OpFillText, c.n.handle, text, x, y, c.FillStyle)
	return err
}

func (c *Context2D) Value() *goja.Object {
	return c.n.b.vm.NewDynamicObject(&contextAccessor{c: c})
}

type contextAccessor struct {
	c *Context2D
}

func (a *contextAccessor) Get(key string) goja.Value {
	b := a.c.n.b
	vm := b.vm
	switch key {
	case "fillStyle":
		return vm.ToValue(a.c.FillStyle)
	case "canvas":
		return a.c.n.Value()
	case "fillRect":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 4 {
				panic(vm.NewTypeError("Failed to execute 'fillRect' on 'CanvasRenderingContext2D': 4 arguments required"))
			}
			args := call.Arguments
			if err := a.c.FillRect(args[0].ToFloat(), args[1].ToFloat(), args[2].ToFloat(), args[3].ToFloat()); err != nil {
				b.throw(err)
			}
			return goja.Undefined()
		})
	case "fillText":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 3 {
				panic(vm.NewTypeError("Failed to execute 'fillText' on 'CanvasRenderingContext2D': 3 arguments required"))
			}
			args := call.Arguments
			if err := a.c.FillText(args[0].String(), args[1].ToFloat(), args[2].ToFloat()); err != nil {
				b.throw(err)
			}
			return goja.Undefined()
		})
	}
	return goja.Undefined()
}

func (a *contextAccessor) Set(key string, val goja.Value) bool {
	if key == "fillStyle" {
		a.c.FillStyle = val.String()
		return true
	}
	return false
}

func (a *contextAccessor) Has(key string) bool {
	switch key {
	case "fillStyle", "canvas", "fillRect", "fillText":
		return true
	}
	return false
}

func (a *contextAccessor) Delete(key string) bool {
	return false
}

func (a *contextAccessor) Keys() []string {
	return []string{"fillStyle", "canvas"}
}
