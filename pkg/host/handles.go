package host

import (
	"fmt"

	"tabscript/pkg/html"
	"tabscript/pkg/js"
)

// handleTable numbers nodes the first time script sees them. A node keeps
// its handle for as long as the tab lives, attached or not.
type handleTable struct {
	next   js.Handle
	byNode map[*html.Node]js.Handle
	byID   map[js.Handle]*html.Node
}

func newHandleTable() *handleTable {
	return &handleTable{
		next:   1,
		byNode: make(map[*html.Node]js.Handle),
		byID:   make(map[js.Handle]*html.Node),
	}
}

func (t *handleTable) handleFor(n *html.Node) js.Handle {
	if h, ok := t.byNode[n]; ok {
		return h
	}
	h := t.next
	t.next++
	t.byNode[n] = h
	t.byID[h] = n
	return h
}

// lookup returns the handle of n without assigning one.
func (t *handleTable) lookup(n *html.Node) (js.Handle, bool) {
	h, ok := t.byNode[n]
	return h, ok
}

func (t *handleTable) node(h js.Handle) (*html.Node, error) {
	n, ok := t.byID[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	return n, nil
}

func (t *handleTable) handlesFor(nodes []*html.Node) []js.Handle {
	out := make([]js.Handle, len(nodes))
	for i, n := range nodes {
		out[i] = t.handleFor(n)
	}
	return out
}

func (t *handleTable) len() int { return len(t.byID) }
