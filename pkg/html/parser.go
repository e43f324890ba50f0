package html

import (
	"fmt"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse builds a Document from page source. The tree follows the HTML5
// parsing algorithm, so <html>, <head> and <body> are always present.
// Every <script> is recorded in document order.
func Parse(src string) (*Document, error) {
	root, err := xhtml.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	doc := NewDocument()
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if n := convert(c); n != nil {
			doc.Root.AddChild(n)
		}
	}
	doc.Root.Walk(func(n *Node) bool {
		if n.Type == ElementNode && n.TagName == "script" {
			doc.Scripts = append(doc.Scripts, scriptOf(n))
		}
		return true
	})
	return doc, nil
}

// ParseFragment parses markup as the content of a <body> element and
// returns the resulting top-level nodes, detached.
func ParseFragment(src string) ([]*Node, error) {
	context := &xhtml.Node{Type: xhtml.ElementNode, Data: "body", DataAtom: atom.Body}
	parsed, err := xhtml.ParseFragment(strings.NewReader(src), context)
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}
	out := make([]*Node, 0, len(parsed))
	for _, p := range parsed {
		if n := convert(p); n != nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// convert copies an x/net/html subtree into our node type, dropping
// comments and doctypes.
func convert(x *xhtml.Node) *Node {
	switch x.Type {
	case xhtml.TextNode:
		return &Node{Type: TextNode, Text: x.Data}
	case xhtml.ElementNode:
		n := NewElement(x.Data)
		for _, a := range x.Attr {
			if a.Namespace != "" {
				continue
			}
			n.Attributes[strings.ToLower(a.Key)] = a.Val
		}
		for c := x.FirstChild; c != nil; c = c.NextSibling {
			if child := convert(c); child != nil {
				n.AddChild(child)
			}
		}
		return n
	}
	return nil
}

func scriptOf(n *Node) Script {
	if src, ok := n.GetAttribute("src"); ok && strings.TrimSpace(src) != "" {
		return Script{Src: strings.TrimSpace(src)}
	}
	var sb strings.Builder
	for _, c := range n.Children {
		if c.Type == TextNode {
			sb.WriteString(c.Text)
		}
	}
	return Script{Text: sb.String()}
}

// Body returns the <body> element, or nil.
func (d *Document) Body() *Node {
	for _, n := range d.Root.Elements() {
		if n.TagName == "body" {
			return n
		}
	}
	return nil
}
