package host

import (
	"fmt"

	"github.com/dop251/goja"

	"tabscript/pkg/css"
	"tabscript/pkg/html"
	"tabscript/pkg/js"
	stdnet "tabscript/std/net"
)

func (t *Tab) nodeArg(op js.Op, args []any, i int) (*html.Node, error) {
	h, err := argHandle(op, args, i)
	if err != nil {
		return nil, err
	}
	return t.handles.node(h)
}

func (t *Tab) cookieHost() string {
	return stdnet.Host(t.url)
}

func (t *Tab) querySelectorAll(args []any) (any, error) {
	sel, err := argString(js.OpQuerySelectorAll, args, 0)
	if err != nil {
		return nil, err
	}
	nodes, err := css.QueryAll(t.doc.Root, sel)
	if err != nil {
		return nil, err
	}
	return t.handles.handlesFor(nodes), nil
}

func (t *Tab) createElement(args []any) (any, error) {
	tag, err := argString(js.OpCreateElement, args, 0)
	if err != nil {
		return nil, err
	}
	return t.handles.handleFor(html.NewElement(tag)), nil
}

func (t *Tab) getAttribute(args []any) (any, error) {
	n, err := t.nodeArg(js.OpGetAttribute, args, 0)
	if err != nil {
		return nil, err
	}
	name, err := argString(js.OpGetAttribute, args, 1)
	if err != nil {
		return nil, err
	}
	if v, ok := n.GetAttribute(name); ok {
		return v, nil
	}
	return nil, nil
}

// appendChild ignores handles it does not know, on either side.
func (t *Tab) appendChild(args []any) error {
	parent, err := t.nodeArg(js.OpAppendChild, args, 0)
	if err != nil {
		return nil
	}
	child, err := t.nodeArg(js.OpAppendChild, args, 1)
	if err != nil {
		return nil
	}
	return t.insert(parent, child, nil)
}

func (t *Tab) insertBefore(args []any) error {
	parent, err := t.nodeArg(js.OpInsertBefore, args, 0)
	if err != nil {
		return err
	}
	child, err := t.nodeArg(js.OpInsertBefore, args, 1)
	if err != nil {
		return err
	}
	refHandle, hasRef, err := argOptionalHandle(js.OpInsertBefore, args, 2)
	if err != nil {
		return err
	}
	var ref *html.Node
	if hasRef {
		if ref, err = t.handles.node(refHandle); err != nil {
			return err
		}
		if ref.Parent != parent {
			return fmt.Errorf("insertBefore reference: %w", ErrNotChild)
		}
	}
	return t.insert(parent, child, ref)
}

// insert moves child under parent ahead of ref (nil appends) and keeps
// the id globals in step with what is attached to the document.
func (t *Tab) insert(parent, child, ref *html.Node) error {
	if child == parent || child.Contains(parent) {
		return fmt.Errorf("%w: a node cannot be inserted into its own subtree", ErrBadArgument)
	}
	if t.connected(child) {
		t.removeGlobals(child)
	}
	parent.InsertBefore(child, ref)
	if t.connected(child) {
		t.addGlobals(child)
	}
	return nil
}

func (t *Tab) removeChild(args []any) (any, error) {
	parent, err := t.nodeArg(js.OpRemoveChild, args, 0)
	if err != nil {
		return nil, err
	}
	child, err := t.nodeArg(js.OpRemoveChild, args, 1)
	if err != nil {
		return nil, err
	}
	if child.Parent != parent {
		return nil, ErrNotChild
	}
	if t.connected(child) {
		t.removeGlobals(child)
	}
	parent.RemoveChild(child)
	return t.handles.handleFor(child), nil
}

// setInnerHTML replaces the children of the node with a parsed fragment.
func (t *Tab) setInnerHTML(args []any) error {
	n, err := t.nodeArg(js.OpInnerHTMLSet, args, 0)
	if err != nil {
		return err
	}
	markup, err := argString(js.OpInnerHTMLSet, args, 1)
	if err != nil {
		return err
	}
	nodes, err := html.ParseFragment(markup)
	if err != nil {
		return err
	}
	attached := t.connected(n)
	if attached {
		for _, c := range n.Children {
			t.removeGlobals(c)
		}
	}
	n.ReplaceChildren(nodes)
	if attached {
		for _, c := range nodes {
			t.addGlobals(c)
		}
	}
	return nil
}

func (t *Tab) getStyle(args []any) (any, error) {
	n, err := t.nodeArg(js.OpGetStyle, args, 0)
	if err != nil {
		return nil, err
	}
	attr, _ := n.GetAttribute("style")
	return css.ParseInlineStyle(attr).Map(), nil
}

// setStyle rewrites the style attribute, keeping the other declarations.
func (t *Tab) setStyle(args []any) error {
	n, err := t.nodeArg(js.OpSetStyle, args, 0)
	if err != nil {
		return err
	}
	prop, err := argString(js.OpSetStyle, args, 1)
	if err != nil {
		return err
	}
	value, err := argString(js.OpSetStyle, args, 2)
	if err != nil {
		return err
	}
	attr, _ := n.GetAttribute("style")
	decls := css.ParseInlineStyle(attr)
	decls.Set(prop, value)
	n.SetAttribute("style", decls.String())
	return nil
}

// addGlobals exposes every element of the subtree whose id is a valid
// identifier as a script global. Names already bound to something else
// are left alone.
func (t *Tab) addGlobals(root *html.Node) {
	vm := t.bridge.Runtime()
	for _, el := range root.Elements() {
		id := el.ID()
		if !isIdentifier(id) {
			continue
		}
		if _, taken := t.idGlobals[id]; taken {
			continue
		}
		if v := vm.Get(id); v != nil && !goja.IsUndefined(v) {
			continue
		}
		t.idGlobals[id] = el
		t.bridge.DefineNodeGlobal(id, t.handles.handleFor(el))
	}
}

func (t *Tab) removeGlobals(root *html.Node) {
	for _, el := range root.Elements() {
		id := el.ID()
		if owner, ok := t.idGlobals[id]; ok && owner == el {
			delete(t.idGlobals, id)
			t.bridge.ClearGlobal(id)
		}
	}
}
