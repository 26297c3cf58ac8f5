package emitter

import (
	"strings"
	"testing"
)

func TestHeaderAndDefaultTarget(t *testing.T) {
	e := New("")
	e.Header("test")
	out := e.Output()
	if !strings.Contains(out, "; ModuleID = 'test'") {
		t.Errorf("missing ModuleID comment: %s", out)
	}
	if !strings.Contains(out, `target triple = "arm64-apple-macosx"`) {
		t.Errorf("missing default target triple: %s", out)
	}
}

func TestAddStructTypeDedup(t *testing.T) {
	e := New("")
	e.AddStructType("Point", []string{"i32", "i32"})
	e.AddStructType("Point", []string{"i64"}) // must be ignored
	out := e.Output()
	if strings.Count(out, "%Point = type") != 1 {
		t.Errorf("expected exactly one Point struct type, got: %s", out)
	}
	if !strings.Contains(out, "%Point = type { i32, i32 }") {
		t.Errorf("unexpected struct type line: %s", out)
	}
}

func TestAddStructTypeEmptyRecord(t *testing.T) {
	e := New("")
	e.AddStructType("Empty", nil)
	out := e.Output()
	if !strings.Contains(out, "%Empty = type { }") {
		t.Errorf("expected an empty record to emit 'type { }', got: %s", out)
	}
}

func TestAddExternFunctionDedupAndVariadic(t *testing.T) {
	e := New("")
	e.AddExternFunction("printf", "i32", []Param{{Name: "fmt", IRType: "i8*"}}, true)
	e.AddExternFunction("printf", "i32", []Param{{Name: "fmt", IRType: "i8*"}}, true)
	out := e.Output()
	if strings.Count(out, "declare i32 @printf") != 1 {
		t.Errorf("expected printf declared once, got: %s", out)
	}
	if !strings.Contains(out, "declare i32 @printf(i8*, ...)") {
		t.Errorf("unexpected extern line: %s", out)
	}
}

func TestAddStringConstantInterns(t *testing.T) {
	e := New("")
	g1, l1 := e.AddStringConstant("hello")
	g2, l2 := e.AddStringConstant("hello")
	if g1 != g2 || l1 != l2 {
		t.Errorf("expected identical literal to reuse the same global")
	}
	if l1 != 6 {
		t.Errorf("expected byte length 6 (5 + NUL), got %d", l1)
	}
	g3, _ := e.AddStringConstant("world")
	if g3 == g1 {
		t.Errorf("expected a distinct literal to get a distinct global")
	}
	out := e.Output()
	if strings.Count(out, "@.str.0") != 1 {
		t.Errorf("expected @.str.0 to appear exactly once (its declaration): %s", out)
	}
}

func TestAddStringConstantEscapes(t *testing.T) {
	e := New("")
	_, length := e.AddStringConstant(`line1\n`)
	if length != len("line1")+1+1 {
		t.Errorf("expected decoded length 7, got %d", length)
	}
	out := e.Output()
	if !strings.Contains(out, `c"line1\0A\00"`) {
		t.Errorf("expected escaped newline in IR text, got: %s", out)
	}
}

func TestOnlyEscapesString(t *testing.T) {
	e := New("")
	_, length := e.AddStringConstant(`\n\t\r\\\"`)
	if length != 6 { // 5 decoded bytes + NUL
		t.Errorf("expected length 6, got %d", length)
	}
	out := e.Output()
	if !strings.Contains(out, `c"\0A\09\0D\5C\22\00"`) {
		t.Errorf("unexpected encoding: %s", out)
	}
}

func TestFunctionBodyShape(t *testing.T) {
	e := New("")
	e.Header("m")
	e.StartFunction("main", "i32", nil)
	e.Alloca("%x", "i32")
	e.Store("i32", "10", "%x")
	tmp := "%t0"
	e.Load(tmp, "i32", "%x")
	e.Ret("i32", tmp)
	e.EndFunction()

	out := e.Output()
	if !strings.Contains(out, "define i32 @main() {\nentry:\n") {
		t.Errorf("unexpected function header: %s", out)
	}
	if !strings.Contains(out, "  %t0 = load i32, i32* %x\n") {
		t.Errorf("unexpected load line: %s", out)
	}
	if !strings.Contains(out, "  ret i32 %t0\n") {
		t.Errorf("unexpected ret line: %s", out)
	}
}

func TestVariadicCall(t *testing.T) {
	e := New("")
	e.Header("m")
	e.StartFunction("main", "i32", nil)
	e.VariadicCall("%t0", "i32", "printf", []Param{{Name: "fmt", IRType: "i8*"}},
		[]Arg{{IRType: "i8*", Value: "%fmt"}, {IRType: "i32", Value: "5"}})
	e.EndFunction()

	out := e.Output()
	if !strings.Contains(out, "%t0 = call i32 (i8*, ...) @printf(i8* %fmt, i32 5)") {
		t.Errorf("unexpected variadic call line: %s", out)
	}
}
