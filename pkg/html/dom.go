package html

import (
	"sort"
	"strings"
)

// Node is one node of the host-owned document tree. Only element and
// text nodes are kept; comments and doctypes are dropped at parse time.
type Node struct {
	Type       NodeType
	TagName    string
	Attributes map[string]string
	Text       string
	Children   []*Node
	Parent     *Node
}

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

// DocumentTag is the tag name of the synthetic root every document hangs
// from. It never matches a selector and is never serialized.
const DocumentTag = "document"

// Script is one <script> element in document order. Exactly one of Src
// and Text is meaningful: external scripts carry Src, inline ones Text.
type Script struct {
	Src  string
	Text string
}

// Document owns the node tree of one page.
type Document struct {
	Root    *Node
	Scripts []Script
}

func NewDocument() *Document {
	return &Document{
		Root: &Node{
			Type:     ElementNode,
			TagName:  DocumentTag,
			Children: make([]*Node, 0),
		},
		Scripts: make([]Script, 0),
	}
}

// NewElement returns a detached element with no attributes.
func NewElement(tag string) *Node {
	return &Node{
		Type:       ElementNode,
		TagName:    strings.ToLower(tag),
		Attributes: make(map[string]string),
		Children:   make([]*Node, 0),
	}
}

// IsElement reports whether n is a real element (not text, not the root).
func (n *Node) IsElement() bool {
	return n.Type == ElementNode && n.TagName != DocumentTag
}

func (n *Node) GetAttribute(name string) (string, bool) {
	if n.Attributes == nil {
		return "", false
	}
	val, ok := n.Attributes[name]
	return val, ok
}

func (n *Node) SetAttribute(name, value string) {
	if n.Attributes == nil {
		n.Attributes = make(map[string]string)
	}
	n.Attributes[name] = value
}

// ID returns the id attribute, or "".
func (n *Node) ID() string {
	id, _ := n.GetAttribute("id")
	return id
}

// AddChild adds a child node and sets up the parent relationship
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// AppendText creates a text node and adds it as a child
func (n *Node) AppendText(text string) {
	if text == "" {
		return
	}
	n.AddChild(&Node{Type: TextNode, Text: text})
}

// RemoveChild removes the given child from this node's children list,
// clears its parent pointer, and returns the removed child.
// Returns nil if child is not found.
func (n *Node) RemoveChild(child *Node) *Node {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return child
		}
	}
	return nil
}

// InsertBefore inserts newChild before refChild in this node's children.
// If refChild is nil, appends newChild at the end.
// If newChild already has a parent, it is removed from that parent first,
// so moving a node within the same parent works in either direction.
// Inserting a node before itself changes nothing.
func (n *Node) InsertBefore(newChild, refChild *Node) *Node {
	if newChild == refChild {
		return newChild
	}
	if newChild.Parent != nil {
		newChild.Parent.RemoveChild(newChild)
	}

	if refChild == nil {
		n.AddChild(newChild)
		return newChild
	}

	for i, c := range n.Children {
		if c == refChild {
			n.Children = append(n.Children, nil)
			copy(n.Children[i+1:], n.Children[i:])
			n.Children[i] = newChild
			newChild.Parent = n
			return newChild
		}
	}

	// refChild not found, append
	n.AddChild(newChild)
	return newChild
}

// ReplaceChildren detaches every child and adopts nodes in order.
func (n *Node) ReplaceChildren(nodes []*Node) {
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = make([]*Node, 0, len(nodes))
	for _, c := range nodes {
		n.AddChild(c)
	}
}

// ElementChildren returns the element children of n, skipping text.
func (n *Node) ElementChildren() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Type == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Contains returns true if other is a descendant of n (or n itself).
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}
	return false
}

// IndexInParent returns the index of this node among its parent's children,
// or -1 if it has no parent.
func (n *Node) IndexInParent() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// Walk visits n and its descendants in document order. Returning false
// from fn skips the node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Elements returns n (when it is an element) and every element below it
// in document order.
func (n *Node) Elements() []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if c.IsElement() {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Serialize returns the innerHTML of this node: the serialized HTML of
// all child nodes, but not the node's own tags.
func (n *Node) Serialize() string {
	var sb strings.Builder
	for _, child := range n.Children {
		serializeNode(&sb, child)
	}
	return sb.String()
}

// SerializeOuter returns the outerHTML of this node, its own tags
// plus all descendants.
func (n *Node) SerializeOuter() string {
	if n.TagName == DocumentTag {
		return n.Serialize()
	}
	var sb strings.Builder
	serializeNode(&sb, n)
	return sb.String()
}

func serializeNode(sb *strings.Builder, n *Node) {
	if n.Type == TextNode {
		if n.Parent != nil && isRawTextElement(n.Parent.TagName) {
			sb.WriteString(n.Text)
			return
		}
		sb.WriteString(escapeHTML(n.Text))
		return
	}

	sb.WriteByte('<')
	sb.WriteString(n.TagName)

	// Sort attributes for deterministic output
	if len(n.Attributes) > 0 {
		keys := make([]string, 0, len(n.Attributes))
		for k := range n.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteByte(' ')
			sb.WriteString(k)
			sb.WriteString(`="`)
			sb.WriteString(escapeAttr(n.Attributes[k]))
			sb.WriteByte('"')
		}
	}

	if isVoidElement(n.TagName) {
		sb.WriteString(">")
		return
	}

	sb.WriteByte('>')
	for _, child := range n.Children {
		serializeNode(sb, child)
	}
	sb.WriteString("</")
	sb.WriteString(n.TagName)
	sb.WriteByte('>')
}

func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func escapeAttr(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func isVoidElement(tag string) bool {
	switch tag {
	case "br", "hr", "img", "input", "meta", "link", "area", "base",
		"col", "embed", "param", "source", "track", "wbr":
		return true
	}
	return false
}

func isRawTextElement(tag string) bool {
	return tag == "script" || tag == "style"
}
