package css

import (
	"errors"
	"testing"

	"tabscript/pkg/html"
)

func TestParseSelector_Parts(t *testing.T) {
	sel, err := ParseSelector(`ul#nav > li.item.on[data-k="v w"]:first-child`)
	if err != nil {
		t.Fatal(err)
	}
	if len(sel.Parts) != 2 || len(sel.Combinators) != 1 || sel.Combinators[0] != ChildCombinator {
		t.Fatalf("unexpected shape: %+v", sel)
	}
	li := sel.Parts[1]
	if li.Element != "li" || len(li.Classes) != 2 || li.Classes[1] != "on" {
		t.Errorf("unexpected part: %+v", li)
	}
	if len(li.Attributes) != 1 || li.Attributes[0].Value != "v w" || li.Attributes[0].Operator != "=" {
		t.Errorf("unexpected attribute: %+v", li.Attributes)
	}
	if sel.Parts[0].ID != "nav" {
		t.Errorf("id = %q", sel.Parts[0].ID)
	}
}

func TestParseSelector_Errors(t *testing.T) {
	for _, src := range []string{"", "div >", "#", "[x", "a..b", "p!"} {
		_, err := ParseSelector(src)
		var synErr *SyntaxError
		if !errors.As(err, &synErr) {
			t.Errorf("%q: expected SyntaxError, got %v", src, err)
		}
	}
	if _, err := ParseSelectorList("p, "); err == nil {
		t.Error("trailing comma should be rejected")
	}
}

func TestQueryAll(t *testing.T) {
	doc, err := html.Parse(`<div class="c" id="one"><p class="c">x</p></div><section><p>y</p></section>`)
	if err != nil {
		t.Fatal(err)
	}

	got, err := QueryAll(doc.Root, ".c")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].TagName != "div" || got[1].TagName != "p" {
		t.Errorf("document order not preserved: %d results", len(got))
	}

	got, err = QueryAll(doc.Root, "section p, #one")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID() != "one" || got[1].Parent.TagName != "section" {
		t.Errorf("group query returned %d nodes", len(got))
	}

	div := got[0]
	inner, _ := QueryAll(div, "*")
	if len(inner) != 1 || inner[0].TagName != "p" {
		t.Error("QueryAll must exclude the root it starts from")
	}

	if _, err := QueryAll(doc.Root, "p["); err == nil {
		t.Error("expected error for invalid selector")
	}
}
