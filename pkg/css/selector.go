package css

import (
	"fmt"
	"strings"

	"tabscript/pkg/html"
)

// Selector is one complex selector: compound parts joined by combinators.
// Combinators[i] sits between Parts[i] and Parts[i+1].
type Selector struct {
	Raw         string
	Parts       []SelectorPart
	Combinators []Combinator
}

// SelectorPart is a compound selector such as div#main.note[data-x].
type SelectorPart struct {
	Element       string
	ID            string
	Classes       []string
	Attributes    []AttributeSelector
	PseudoClasses []string
}

type AttributeSelector struct {
	Name     string
	Operator string // "", "=", "~=", "|=", "^=", "$=", "*="
	Value    string
}

type Combinator int

const (
	DescendantCombinator Combinator = iota
	ChildCombinator
	AdjacentSiblingCombinator
	GeneralSiblingCombinator
)

// SyntaxError reports a selector that could not be parsed.
type SyntaxError struct {
	Selector string
	Pos      int
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid selector %q at %d: %s", e.Selector, e.Pos, e.Msg)
}

// ParseSelectorList parses a comma separated selector group.
func ParseSelectorList(src string) ([]Selector, error) {
	var out []Selector
	for _, raw := range splitTopLevel(src, ',') {
		sel, err := ParseSelector(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, sel)
	}
	if len(out) == 0 {
		return nil, &SyntaxError{Selector: src, Msg: "empty selector"}
	}
	return out, nil
}

// ParseSelector parses a single complex selector.
func ParseSelector(src string) (Selector, error) {
	p := &selectorParser{src: strings.TrimSpace(src)}
	sel := Selector{Raw: p.src}
	if p.src == "" {
		return sel, p.errorf("empty selector")
	}
	for {
		part, err := p.compound()
		if err != nil {
			return sel, err
		}
		sel.Parts = append(sel.Parts, part)

		sawSpace := p.skipSpace()
		if p.eof() {
			break
		}
		comb := DescendantCombinator
		switch p.peek() {
		case '>':
			comb = ChildCombinator
			p.pos++
		case '+':
			comb = AdjacentSiblingCombinator
			p.pos++
		case '~':
			comb = GeneralSiblingCombinator
			p.pos++
		default:
			if !sawSpace {
				return sel, p.errorf("unexpected %q", p.peek())
			}
		}
		p.skipSpace()
		if p.eof() {
			return sel, p.errorf("dangling combinator")
		}
		sel.Combinators = append(sel.Combinators, comb)
	}
	return sel, nil
}

type selectorParser struct {
	src string
	pos int
}

func (p *selectorParser) eof() bool  { return p.pos >= len(p.src) }
func (p *selectorParser) peek() byte { return p.src[p.pos] }

func (p *selectorParser) errorf(format string, args ...any) error {
	return &SyntaxError{Selector: p.src, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *selectorParser) skipSpace() bool {
	start := p.pos
	for !p.eof() && isSpace(p.peek()) {
		p.pos++
	}
	return p.pos > start
}

func (p *selectorParser) ident() string {
	start := p.pos
	for !p.eof() && isIdentChar(p.peek()) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *selectorParser) compound() (SelectorPart, error) {
	var part SelectorPart
	start := p.pos
	if !p.eof() && p.peek() == '*' {
		part.Element = "*"
		p.pos++
	} else if name := p.ident(); name != "" {
		part.Element = strings.ToLower(name)
	}
	for !p.eof() {
		switch c := p.peek(); c {
		case '#':
			p.pos++
			if part.ID = p.ident(); part.ID == "" {
				return part, p.errorf("expected id after #")
			}
		case '.':
			p.pos++
			cls := p.ident()
			if cls == "" {
				return part, p.errorf("expected class name after .")
			}
			part.Classes = append(part.Classes, cls)
		case '[':
			attr, err := p.attribute()
			if err != nil {
				return part, err
			}
			part.Attributes = append(part.Attributes, attr)
		case ':':
			p.pos++
			if !p.eof() && p.peek() == ':' {
				p.pos++
			}
			name := p.ident()
			if name == "" {
				return part, p.errorf("expected pseudo-class name")
			}
			part.PseudoClasses = append(part.PseudoClasses, strings.ToLower(name))
		default:
			if p.pos == start {
				return part, p.errorf("unexpected %q", c)
			}
			return part, nil
		}
	}
	return part, nil
}

func (p *selectorParser) attribute() (AttributeSelector, error) {
	var attr AttributeSelector
	p.pos++ // [
	p.skipSpace()
	if attr.Name = strings.ToLower(p.ident()); attr.Name == "" {
		return attr, p.errorf("expected attribute name")
	}
	p.skipSpace()
	if p.eof() {
		return attr, p.errorf("unterminated attribute selector")
	}
	if p.peek() == ']' {
		p.pos++
		return attr, nil
	}
	switch {
	case p.peek() == '=':
		attr.Operator = "="
		p.pos++
	case p.pos+1 < len(p.src) && p.src[p.pos+1] == '=' && strings.IndexByte("~|^$*", p.peek()) >= 0:
		attr.Operator = p.src[p.pos : p.pos+2]
		p.pos += 2
	default:
		return attr, p.errorf("unexpected %q in attribute selector", p.peek())
	}
	p.skipSpace()
	if p.eof() {
		return attr, p.errorf("unterminated attribute selector")
	}
	if q := p.peek(); q == '"' || q == '\'' {
		end := strings.IndexByte(p.src[p.pos+1:], q)
		if end < 0 {
			return attr, p.errorf("unterminated string")
		}
		attr.Value = p.src[p.pos+1 : p.pos+1+end]
		p.pos += end + 2
	} else {
		attr.Value = p.ident()
	}
	p.skipSpace()
	if p.eof() || p.peek() != ']' {
		return attr, p.errorf("expected ]")
	}
	p.pos++
	return attr, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isIdentChar(c byte) bool {
	return c == '-' || c == '_' || c >= 0x80 ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// splitTopLevel splits on sep outside brackets and quotes.
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth, start := 0, 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[' || c == '(':
			depth++
		case c == ']' || c == ')':
			depth--
		case c == sep && depth == 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// QueryAll returns every element under root (root itself excluded) that
// matches any selector in the group, in document order.
func QueryAll(root *html.Node, selector string) ([]*html.Node, error) {
	sels, err := ParseSelectorList(selector)
	if err != nil {
		return nil, err
	}
	var out []*html.Node
	for _, n := range root.Elements() {
		if n == root {
			continue
		}
		for _, sel := range sels {
			if MatchesSelector(n, sel) {
				out = append(out, n)
				break
			}
		}
	}
	return out, nil
}
