package host

import (
	"fmt"

	"tabscript/pkg/js"
)

// Call implements js.Gate. It runs on the loop goroutine, inside whatever
// script code made the call.
func (t *Tab) Call(op js.Op, args ...any) (any, error) {
	switch op {
	case js.OpLog:
		msg, err := argString(op, args, 0)
		if err != nil {
			return nil, err
		}
		t.logConsole(msg)
		return nil, nil
	case js.OpQuerySelectorAll:
		return t.querySelectorAll(args)
	case js.OpCreateElement:
		return t.createElement(args)
	case js.OpGetAttribute:
		return t.getAttribute(args)
	case js.OpAppendChild:
		return nil, t.appendChild(args)
	case js.OpInsertBefore:
		return nil, t.insertBefore(args)
	case js.OpRemoveChild:
		return t.removeChild(args)
	case js.OpInnerHTMLGet:
		n, err := t.nodeArg(op, args, 0)
		if err != nil {
			return nil, err
		}
		return n.Serialize(), nil
	case js.OpInnerHTMLSet:
		return nil, t.setInnerHTML(args)
	case js.OpOuterHTMLGet:
		n, err := t.nodeArg(op, args, 0)
		if err != nil {
			return nil, err
		}
		return n.SerializeOuter(), nil
	case js.OpChildren:
		n, err := t.nodeArg(op, args, 0)
		if err != nil {
			return nil, err
		}
		return t.handles.handlesFor(n.ElementChildren()), nil
	case js.OpGetStyle:
		return t.getStyle(args)
	case js.OpSetStyle:
		return nil, t.setStyle(args)
	case js.OpFillRect:
		return nil, t.fillRect(args)
	case js.OpFillText:
		return nil, t.fillText(args)
	case js.OpGetCookie:
		return t.jar.scriptView(t.cookieHost()), nil
	case js.OpSetCookie:
		line, err := argString(op, args, 0)
		if err != nil {
			return nil, err
		}
		t.jar.setFromScript(t.cookieHost(), line)
		return nil, nil
	case js.OpSetTimeout:
		return nil, t.scheduleTimeout(args)
	case js.OpSetInterval:
		return nil, t.scheduleInterval(args)
	case js.OpXHRSend:
		return t.sendXHR(args)
	case js.OpRequestAnimationFrame:
		t.requestFrame()
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownOp, op)
}
