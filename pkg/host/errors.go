package host

import "errors"

var (
	// ErrClosed is returned once a tab has been closed.
	ErrClosed = errors.New("tab closed")

	ErrUnknownHandle = errors.New("unknown node handle")
	ErrNotChild      = errors.New("node is not a child of the parent")
	ErrCrossOrigin   = errors.New("cross-origin request refused")
	ErrBlockedByCSP  = errors.New("request blocked by content security policy")
	ErrNotCanvas     = errors.New("node is not a canvas")
	ErrBadArgument   = errors.New("bad gate argument")
	ErrUnknownOp     = errors.New("unknown host operation")
)
