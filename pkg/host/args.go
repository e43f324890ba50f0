package host

import (
	"fmt"

	"tabscript/pkg/js"
)

// Gate arguments arrive positionally; these helpers check one slot each.

func argAt(op js.Op, args []any, i int) (any, error) {
	if i >= len(args) {
		return nil, fmt.Errorf("%w: %s wants at least %d arguments, got %d", ErrBadArgument, op, i+1, len(args))
	}
	return args[i], nil
}

func argHandle(op js.Op, args []any, i int) (js.Handle, error) {
	v, err := argAt(op, args, i)
	if err != nil {
		return 0, err
	}
	switch h := v.(type) {
	case js.Handle:
		return h, nil
	case int:
		return js.Handle(h), nil
	case int64:
		return js.Handle(h), nil
	case float64:
		return js.Handle(h), nil
	}
	return 0, fmt.Errorf("%w: %s argument %d is %T, not a handle", ErrBadArgument, op, i, v)
}

// argOptionalHandle treats an explicit nil as "no node".
func argOptionalHandle(op js.Op, args []any, i int) (js.Handle, bool, error) {
	v, err := argAt(op, args, i)
	if err != nil {
		return 0, false, err
	}
	if v == nil {
		return 0, false, nil
	}
	h, err := argHandle(op, args, i)
	return h, err == nil, err
}

func argString(op js.Op, args []any, i int) (string, error) {
	v, err := argAt(op, args, i)
	if err != nil {
		return "", err
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case nil:
		return "", nil
	}
	return "", fmt.Errorf("%w: %s argument %d is %T, not a string", ErrBadArgument, op, i, v)
}

func argFloat(op js.Op, args []any, i int) (float64, error) {
	v, err := argAt(op, args, i)
	if err != nil {
		return 0, err
	}
	switch f := v.(type) {
	case float64:
		return f, nil
	case int:
		return float64(f), nil
	case int64:
		return float64(f), nil
	}
	return 0, fmt.Errorf("%w: %s argument %d is %T, not a number", ErrBadArgument, op, i, v)
}

func argBool(op js.Op, args []any, i int) (bool, error) {
	v, err := argAt(op, args, i)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s argument %d is %T, not a bool", ErrBadArgument, op, i, v)
	}
	return b, nil
}
