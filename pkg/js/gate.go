package js

import (
	"math"
)

// Op names one host operation reachable through the Gate.
type Op string

const (
	OpLog                   Op = "log"
	OpQuerySelectorAll      Op = "querySelectorAll"
	OpCreateElement         Op = "createElement"
	OpGetAttribute          Op = "getAttribute"
	OpAppendChild           Op = "appendChild"
	OpInsertBefore          Op = "insertBefore"
	OpRemoveChild           Op = "removeChild"
	OpInnerHTMLGet          Op = "innerHTML_get"
	OpInnerHTMLSet          Op = "innerHTML_set"
	OpOuterHTMLGet          Op = "outerHTML_get"
	OpChildren              Op = "children"
	OpGetStyle              Op = "getStyle"
	OpSetStyle              Op = "setStyle"
	OpFillRect              Op = "canvas.fillRect"
	OpFillText              Op = "canvas.fillText"
	OpGetCookie             Op = "get_cookie"
	OpSetCookie             Op = "set_cookie"
	OpSetTimeout            Op = "setTimeout"
	OpSetInterval           Op = "setInterval"
	OpXHRSend               Op = "XMLHttpRequest_send"
	OpRequestAnimationFrame Op = "requestAnimationFrame"
)

// Gate is the single synchronous call from script land into the host.
// Arguments are positional: strings, float64 numbers, bools, Handles, or
// nil for an explicit null. Results are nil, a string, a Handle, a slice
// of Handles or, for getStyle, a map[string]string.
//
// A Gate is only ever called from the goroutine that owns the runtime.
type Gate interface {
	Call(op Op, args ...any) (any, error)
}

// GateFunc adapts a function to the Gate interface.
type GateFunc func(op Op, args ...any) (any, error)

func (f GateFunc) Call(op Op, args ...any) (any, error) {
	return f(op, args...)
}

func asHandle(op Op, v any) (Handle, error) {
	switch h := v.(type) {
	case Handle:
		return h, nil
	case int:
		return Handle(h), nil
	case int64:
		return Handle(h), nil
	case float64:
		if hh, ok := integralHandle(h); ok {
			return hh, nil
		}
	}
	return 0, &ResultError{Op: op, Got: v}
}

// integralHandle accepts only finite whole numbers.
func integralHandle(f float64) (Handle, bool) {
	if math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return Handle(f), true
}

func asHandles(op Op, v any) ([]Handle, error) {
	switch hs := v.(type) {
	case nil:
		return nil, nil
	case []Handle:
		return hs, nil
	case []int:
		out := make([]Handle, len(hs))
		for i, h := range hs {
			out[i] = Handle(h)
		}
		return out, nil
	case []any:
		out := make([]Handle, len(hs))
		for i, h := range hs {
			conv, err := asHandle(op, h)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	}
	return nil, &ResultError{Op: op, Got: v}
}

// asString accepts nil as the empty string.
func asString(op Op, v any) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	}
	return "", &ResultError{Op: op, Got: v}
}

// asOptionalString distinguishes a missing value (nil) from "".
func asOptionalString(op Op, v any) (string, bool, error) {
	if v == nil {
		return "", false, nil
	}
	s, err := asString(op, v)
	return s, err == nil, err
}

func asStyleMap(op Op, v any) (map[string]string, error) {
	switch m := v.(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]string:
		return m, nil
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, val := range m {
			s, err := asString(op, val)
			if err != nil {
				return nil, err
			}
			out[k] = s
		}
		return out, nil
	}
	return nil, &ResultError{Op: op, Got: v}
}
