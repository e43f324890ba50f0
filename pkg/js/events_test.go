package js

import (
	"errors"
	"testing"

	"github.com/dop251/goja"
)

func TestListenerOrderIncludesDuplicates(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	runJS(t, e, `
		var order = [];
		var n = new Node(3);
		function L1() { order.push("L1"); }
		n.addEventListener("click", L1);
		n.addEventListener("click", function() { order.push("L2"); });
		n.addEventListener("click", L1);
		n.addEventListener("keydown", function() { order.push("other"); });
	`)

	res, err := e.Bridge().DispatchEvent(3, "click")
	if err != nil {
		t.Fatal(err)
	}
	if !res.DoDefault || res.StopPropagation {
		t.Errorf("untouched event should report defaults, got %+v", res)
	}
	runJS(t, e, `
		if (order.join(",") !== "L1,L2,L1") throw new Error("wrong order: " + order.join(","));
	`)
}

func TestClickScenarioPreventDefault(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	runJS(t, e, `
		var order = [];
		var n = new Node(7);
		n.addEventListener("click", function L1() { order.push("L1"); });
		n.addEventListener("click", function L2(ev) { order.push("L2"); ev.preventDefault(); });
	`)

	res, err := e.Bridge().DispatchEvent(7, "click")
	if err != nil {
		t.Fatal(err)
	}
	if res != (DispatchResult{DoDefault: false, StopPropagation: false}) {
		t.Errorf("got %+v, want doDefault=false stopPropagation=false", res)
	}
	runJS(t, e, `
		if (order.join(",") !== "L1,L2") throw new Error("wrong order: " + order.join(","));
	`)
}

func TestStopPropagationKeepsDefault(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	runJS(t, e, `
		new Node(1).addEventListener("click", function(ev) { ev.stopPropagation(); });
	`)
	res, err := e.Bridge().DispatchEvent(1, "click")
	if err != nil {
		t.Fatal(err)
	}
	if !res.DoDefault || !res.StopPropagation {
		t.Errorf("got %+v, want doDefault=true stopPropagation=true", res)
	}
}

func TestDispatchWithoutListeners(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	res, err := e.Bridge().DispatchEvent(99, "click")
	if err != nil {
		t.Fatal(err)
	}
	if !res.DoDefault || res.StopPropagation {
		t.Errorf("got %+v", res)
	}
}

func TestListenersShareOneRecord(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	runJS(t, e, `
		var seen = [];
		var n = new Node(5);
		n.addEventListener("click", function(ev) {
			if (this.handle !== 5) throw new Error("this should wrap handle 5");
			if (ev.type !== "click") throw new Error("wrong type " + ev.type);
			ev.preventDefault();
			seen.push(ev);
		});
		n.addEventListener("click", function(ev) {
			if (!ev.defaultPrevented) throw new Error("second listener should see the mutation");
			seen.push(ev);
		});
	`)
	if _, err := e.Bridge().DispatchEvent(5, "click"); err != nil {
		t.Fatal(err)
	}
	runJS(t, e, `
		if (seen.length !== 2 || seen[0] !== seen[1]) throw new Error("listeners must share one event object");
	`)
}

func TestListenerErrorPropagates(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	runJS(t, e, `
		var reached = false;
		var n = new Node(2);
		n.addEventListener("click", function() { throw new Error("listener failed"); });
		n.addEventListener("click", function() { reached = true; });
	`)
	_, err := e.Bridge().DispatchEvent(2, "click")
	var ex *goja.Exception
	if !errors.As(err, &ex) {
		t.Fatalf("expected the script exception, got %v", err)
	}
	runJS(t, e, `if (reached) throw new Error("dispatch should stop at the failing listener");`)
}

func TestScriptDispatchEvent(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	runJS(t, e, `
		var n = new Node(4);
		var count = 0;
		n.addEventListener("submit", function(ev) { count++; ev.preventDefault(); });
		n.addEventListener("ping", function() { count++; });

		if (n.dispatchEvent(new Event("submit")) !== false) throw new Error("prevented dispatch should return false");
		if (new Node(4).dispatchEvent("ping") !== true) throw new Error("string type dispatch should return true");
		if (count !== 2) throw new Error("count = " + count);

		var ev = new Event("x");
		if (ev.defaultPrevented) throw new Error("fresh event must not be prevented");
		ev.preventDefault();
		if (!ev.defaultPrevented) throw new Error("preventDefault did not stick");
	`)
}

func TestAddEventListenerFromGo(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	b := e.Bridge()
	calls := 0
	fn, ok := goja.AssertFunction(b.Runtime().ToValue(func(goja.FunctionCall) goja.Value {
		calls++
		return goja.Undefined()
	}))
	if !ok {
		t.Fatal("not callable")
	}
	n := b.Wrap(8)
	n.AddEventListener("load", fn)
	n.AddEventListener("load", fn)

	ev := NewEvent("load")
	if _, err := b.Dispatch(b.Wrap(8), ev); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	ev.StopPropagation()
	if ev.DefaultPrevented() || ev.Type() != "load" {
		t.Error("event accessors disagree")
	}
}
