package host

import (
	"fmt"

	"go.uber.org/zap"

	"tabscript/pkg/css"
	"tabscript/pkg/html"
	"tabscript/pkg/js"
	stdnet "tabscript/std/net"
)

// bubble dispatches typ to n and then to each ancestor, one fresh event
// per node. It stops when a node's listeners stop propagation. The
// default action survives only if no node prevented it. Nodes script has
// never seen carry no listeners and are skipped. Loop goroutine only.
func (t *Tab) bubble(n *html.Node, typ string) (bool, error) {
	doDefault := true
	for node := n; node != nil; node = node.Parent {
		h, ok := t.handles.lookup(node)
		if !ok {
			continue
		}
		res, err := t.bridge.DispatchEvent(h, typ)
		if err != nil {
			return false, err
		}
		doDefault = doDefault && res.DoDefault
		if res.StopPropagation {
			break
		}
	}
	return doDefault, nil
}

// DispatchEvent delivers typ to the node behind h and its ancestors and
// reports whether the default action should run.
func (t *Tab) DispatchEvent(h js.Handle, typ string) (bool, error) {
	var doDefault bool
	err := t.Do(func() error {
		n, err := t.handles.node(h)
		if err != nil {
			return err
		}
		doDefault, err = t.bubble(n, typ)
		return err
	})
	return doDefault, err
}

// click dispatches a click and, unless prevented, follows the nearest
// enclosing link by recording the navigation.
func (t *Tab) click(n *html.Node) error {
	doDefault, err := t.bubble(n, "click")
	if err != nil {
		return err
	}
	if !doDefault {
		return nil
	}
	for a := n; a != nil; a = a.Parent {
		if a.TagName != "a" {
			continue
		}
		href, ok := a.GetAttribute("href")
		if !ok {
			return nil
		}
		target := stdnet.ResolveURL(t.url, href)
		t.logger.Info("navigation requested", zap.String("url", target))
		t.mu.Lock()
		t.navigations = append(t.navigations, target)
		t.mu.Unlock()
		return nil
	}
	return nil
}

// Click clicks the node behind h.
func (t *Tab) Click(h js.Handle) error {
	return t.Do(func() error {
		n, err := t.handles.node(h)
		if err != nil {
			return err
		}
		return t.click(n)
	})
}

// ClickSelector clicks the first element matching selector.
func (t *Tab) ClickSelector(selector string) error {
	return t.Do(func() error {
		nodes, err := css.QueryAll(t.doc.Root, selector)
		if err != nil {
			return err
		}
		if len(nodes) == 0 {
			return fmt.Errorf("click %q: no matching element", selector)
		}
		return t.click(nodes[0])
	})
}

// ClickSnapshot clicks whichever canvas sits under (x, y) in the image
// Snapshot returns. Points between or beside canvases hit nothing.
func (t *Tab) ClickSnapshot(x, y int) error {
	return t.Do(func() error {
		top := 0
		for _, c := range t.canvases() {
			w, h := c.Surface.Width(), c.Surface.Height()
			if y >= top && y < top+h {
				if x < 0 || x >= w {
					return nil
				}
				n, err := t.handles.node(c.Handle)
				if err != nil {
					return err
				}
				return t.click(n)
			}
			top += h + stackGap
		}
		return nil
	})
}

// Query returns handles for every element matching selector.
func (t *Tab) Query(selector string) ([]js.Handle, error) {
	var out []js.Handle
	err := t.Do(func() error {
		nodes, err := css.QueryAll(t.doc.Root, selector)
		if err != nil {
			return err
		}
		out = t.handles.handlesFor(nodes)
		return nil
	})
	return out, err
}

// HTML serializes the current document.
func (t *Tab) HTML() (string, error) {
	var out string
	err := t.Do(func() error {
		out = t.doc.Root.Serialize()
		return nil
	})
	return out, err
}
