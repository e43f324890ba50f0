package js

import (
	"strings"

	"github.com/dop251/goja"
)

type xhrState struct {
	method       string
	url          string
	async        bool
	responseText *string
	onload       goja.Value
	obj          *goja.Object
}

// XHR is the Go side of one XMLHttpRequest.
type XHR struct {
	b      *Bridge
	handle Handle
}

// NewXHR registers a request under a fresh handle. Requests start out
// asynchronous.
func (b *Bridge) NewXHR() *XHR {
	h := b.allocHandle()
	x := &XHR{b: b, handle: h}
	b.xhrs[h] = &xhrState{
		method: "GET",
		async:  true,
		onload: goja.Null(),
		obj:    b.vm.NewDynamicObject(&xhrAccessor{x: x}),
	}
	return x
}

func (x *XHR) Handle() Handle { return x.handle }

func (x *XHR) state() *xhrState {
	return x.b.xhrs[x.handle]
}

// Open records method, URL and mode. Nothing reaches the host.
func (x *XHR) Open(method, url string, async bool) {
	st := x.state()
	st.method = strings.ToUpper(method)
	st.url = url
	st.async = async
}

// Send hands the request to the host. In synchronous mode the response
// is in place when Send returns. In asynchronous mode the host answers
// later through RunXHROnload.
func (x *XHR) Send(body string) error {
	st := x.state()
	res, err := x.b.call(OpXHRSend, st.method, st.url, body, st.async, x.handle)
	if err != nil {
		return err
	}
	if st.async {
		return nil
	}
	text, err := asString(OpXHRSend, res)
	if err != nil {
		return err
	}
	st.responseText = &text
	return nil
}

// ResponseText reports the body and whether one has been delivered.
func (x *XHR) ResponseText() (string, bool) {
	st := x.state()
	if st.responseText == nil {
		return "", false
	}
	return *st.responseText, true
}

func (x *XHR) SetOnload(fn goja.Value) {
	x.state().onload = fn
}

func (x *XHR) Value() *goja.Object {
	return x.state().obj
}

// RunXHROnload delivers an asynchronous response for h: responseText is
// set, then onload runs with a load event. Unknown handles are ignored.
func (b *Bridge) RunXHROnload(body string, h Handle) error {
	st, ok := b.xhrs[h]
	if !ok {
		return nil
	}
	st.responseText = &body
	fn, ok := goja.AssertFunction(st.onload)
	if !ok {
		return nil
	}
	if _, err := fn(st.obj, NewEvent("load").Value(b)); err != nil {
		return &EntryError{Entry: entryXHR, Handle: h, Err: err}
	}
	return nil
}

func (b *Bridge) registerXHR() {
	b.vm.Set("XMLHttpRequest", func(goja.ConstructorCall) *goja.Object {
		return b.NewXHR().Value()
	})
}

type xhrAccessor struct {
	x *XHR
}

func (a *xhrAccessor) Get(key string) goja.Value {
	x := a.x
	b := x.b
	vm := b.vm
	switch key {
	case "open":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 2 {
				panic(vm.NewTypeError("Failed to execute 'open' on 'XMLHttpRequest': 2 arguments required"))
			}
			async := true
			if v := argOrUndefined(call.Arguments, 2); !goja.IsUndefined(v) {
				async = v.ToBoolean()
			}
			x.Open(call.Arguments[0].String(), call.Arguments[1].String(), async)
			return goja.Undefined()
		})
	case "send":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			body := ""
			if v := argOrUndefined(call.Arguments, 0); !isNullish(v) {
				body = v.String()
			}
			if err := x.Send(body); err != nil {
				b.throw(err)
			}
			return goja.Undefined()
		})
	case "responseText":
		if text, ok := x.ResponseText(); ok {
			return vm.ToValue(text)
		}
		return goja.Undefined()
	case "onload":
		return x.state().onload
	}
	return goja.Undefined()
}

func (a *xhrAccessor) Set(key string, val goja.Value) bool {
	if key == "onload" {
		a.x.SetOnload(val)
		return true
	}
	return false
}

func (a *xhrAccessor) Has(key string) bool {
	switch key {
	case "open", "send", "responseText", "onload":
		return true
	}
	return false
}

func (a *xhrAccessor) Delete(key string) bool {
	return false
}

func (a *xhrAccessor) Keys() []string {
	return []string{"responseText", "onload"}
}
