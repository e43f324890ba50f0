package js

import (
	"testing"
)

func TestAsyncXHRDeliversThroughOnload(t *testing.T) {
	e, gate := newTestEngine(t, nil)
	runJS(t, e, `
		var loads = 0, seenType = null, sawSelf = false;
		var x = new XMLHttpRequest();
		x.onload = function(ev) { loads++; seenType = ev.type; sawSelf = (this === x); };
		x.open("get", "/data");
		x.send();
		if (x.responseText !== undefined) throw new Error("async responseText must be unset after send");
	`)
	sends := gate.callsTo(OpXHRSend)
	if len(sends) != 1 {
		t.Fatalf("got %d sends", len(sends))
	}
	args := sends[0].args
	if args[0] != "GET" || args[1] != "/data" || args[2] != "" || args[3] != true {
		t.Errorf("unexpected send args %v", args)
	}
	h := args[4].(Handle)

	if err := e.Bridge().RunXHROnload("payload", h); err != nil {
		t.Fatal(err)
	}
	runJS(t, e, `
		if (x.responseText !== "payload") throw new Error("responseText = " + x.responseText);
		if (loads !== 1) throw new Error("onload ran " + loads + " times");
		if (seenType !== "load") throw new Error("event type " + seenType);
		if (!sawSelf) throw new Error("onload this should be the request");
	`)
}

func TestSyncXHRFillsResponseImmediately(t *testing.T) {
	e, gate := newTestEngine(t, func(op Op, args []any) (any, error) {
		if op == OpXHRSend {
			return "body:" + args[2].(string), nil
		}
		return nil, nil
	})
	runJS(t, e, `
		var loads = 0;
		var x = new XMLHttpRequest();
		x.onload = function() { loads++; };
		x.open("POST", "/submit", false);
		x.send("hi");
		if (x.responseText !== "body:hi") throw new Error("responseText = " + x.responseText);
		if (loads !== 0) throw new Error("sync requests fire no load event");
	`)
	args := gate.callsTo(OpXHRSend)[0].args
	if args[0] != "POST" || args[3] != false {
		t.Errorf("unexpected send args %v", args)
	}
}

func TestXHRWithoutOnload(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	b := e.Bridge()
	x := b.NewXHR()
	x.Open("GET", "/a", true)
	if err := x.Send(""); err != nil {
		t.Fatal(err)
	}
	if _, ok := x.ResponseText(); ok {
		t.Fatal("response should be pending")
	}
	if err := b.RunXHROnload("done", x.Handle()); err != nil {
		t.Fatal(err)
	}
	if text, ok := x.ResponseText(); !ok || text != "done" {
		t.Errorf("ResponseText() = %q, %v", text, ok)
	}
}

func TestXHROnloadErrorIsEntryError(t *testing.T) {
	e, gate := newTestEngine(t, nil)
	runJS(t, e, `
		var x = new XMLHttpRequest();
		x.onload = function() { throw new Error("bad handler"); };
		x.open("GET", "/q");
		x.send(null);
	`)
	h := gate.callsTo(OpXHRSend)[0].args[4].(Handle)
	err := e.Bridge().RunXHROnload("r", h)
	entryErr, ok := err.(*EntryError)
	if !ok || entryErr.Entry != "runXHROnload" || entryErr.Handle != h {
		t.Fatalf("expected EntryError, got %v", err)
	}
}
