package symtab

import "testing"

func TestDeclareAndLookup(t *testing.T) {
	tab := New()
	tab.Declare("x", "i32")

	v, ok := tab.Lookup("x")
	if !ok {
		t.Fatalf("expected to find x")
	}
	if v.Reg != "%x" || v.IRType != "i32" || !v.IsPointer {
		t.Errorf("unexpected variable: %+v", v)
	}

	if _, ok := tab.Lookup("y"); ok {
		t.Errorf("did not expect to find y")
	}
}

func TestShadowing(t *testing.T) {
	tab := New()
	tab.Declare("x", "i32")

	tab.PushScope()
	tab.Declare("x", "i1")
	v, _ := tab.Lookup("x")
	if v.IRType != "i1" {
		t.Fatalf("expected inner x to shadow outer, got %s", v.IRType)
	}
	tab.PopScope()

	v, _ = tab.Lookup("x")
	if v.IRType != "i32" {
		t.Fatalf("expected outer x to reappear after pop, got %s", v.IRType)
	}
}

func TestResetClearsCountersAndScopes(t *testing.T) {
	tab := New()
	tab.Declare("x", "i32")
	tab.NewTemp()
	tab.NewTemp()
	tab.PushScope()

	tab.Reset()

	if _, ok := tab.Lookup("x"); ok {
		t.Fatalf("expected Reset to clear bindings")
	}
	if got := tab.NewTemp(); got != "%t0" {
		t.Fatalf("expected counter to reset to %%t0, got %s", got)
	}
}

func TestNewTempSequence(t *testing.T) {
	tab := New()
	if got := tab.NewTemp(); got != "%t0" {
		t.Fatalf("expected %%t0, got %s", got)
	}
	if got := tab.NewTemp(); got != "%t1" {
		t.Fatalf("expected %%t1, got %s", got)
	}
}

func TestNewLabelPerPrefix(t *testing.T) {
	tab := New()
	if got := tab.NewLabel("if.then"); got != "if.then0" {
		t.Fatalf("expected if.then0, got %s", got)
	}
	if got := tab.NewLabel("while.cond"); got != "while.cond0" {
		t.Fatalf("expected while.cond0, got %s", got)
	}
	if got := tab.NewLabel("if.then"); got != "if.then1" {
		t.Fatalf("expected if.then1, got %s", got)
	}
}
