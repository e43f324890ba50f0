package js

import "fmt"

// ResultError reports a gate result of the wrong shape for its op.
type ResultError struct {
	Op  Op
	Got any
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("gate %s: unexpected result %T", e.Op, e.Got)
}

// EntryError wraps a script failure raised while the host re-entered
// through one of the Run* entry points.
type EntryError struct {
	Entry  string
	Handle Handle
	Err    error
}

func (e *EntryError) Error() string {
	if e.Entry == entryRAF {
		return fmt.Sprintf("%s: %v", e.Entry, e.Err)
	}
	return fmt.Sprintf("%s(%d): %v", e.Entry, e.Handle, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

const (
	entryTimeout  = "runSetTimeout"
	entryInterval = "runSetInterval"
	entryXHR      = "runXHROnload"
	entryRAF      = "runRAFHandlers"
)
