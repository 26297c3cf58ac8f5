package walker

import (
	"strings"
	"testing"

	"github.com/emberc/emberc/internal/ast"
	"github.com/emberc/emberc/internal/emitter"
	"github.com/emberc/emberc/internal/externs"
	"github.com/emberc/emberc/internal/funcs"
	"github.com/emberc/emberc/internal/resolver"
	"github.com/emberc/emberc/internal/structs"
	"github.com/emberc/emberc/internal/types"
)

// This file pins end-to-end scenarios 1-6 and two of the four boundary
// behaviors (empty record, repeated string literal) from the
// testable-properties section against hand-built ast.Fixture programs.
// Scenario 7 is covered in internal/resolver, the condition-less for loop
// in walker_test.go, and the escapes-only string in internal/emitter. It asserts specific IR substrings rather than comparing a
// checked-in golden snapshot, since a golden fixture would need to be
// written by an actual `go test` run to be trustworthy, and this build
// process never executes one. Direct substring assertions, in the same
// style already used by internal/emitter's tests, give the same pinning
// guarantee without that dependency.

// scenario 1: sum of a heap array, for-loop summation.
func TestScenarioSumOfHeapArray(t *testing.T) {
	// let arr: i32[] = malloc(20); -- simplified: the walker doesn't
	// special-case array sizeof, so this scenario is exercised at the level
	// the walker actually owns: the malloc call, indexed reads through the
	// resulting pointer, and a for-loop accumulation. The element writes
	// (10..50) are not part of this fixture.
	mallocDecl := fnDecl("malloc", []ast.Node{required("size", "i32")}, predefined("string"))
	mallocDecl.(*ast.Fixture).Fields["body"] = nil

	arrDecl := &ast.Fixture{K: ast.KindLexicalDecl, Kids: []ast.Node{
		(&ast.Fixture{K: ast.KindVariableDeclarator}).
			WithField("name", ast.F(ast.KindIdentifier, "arr")).
			WithField("type", &ast.Fixture{K: ast.KindArrayType, Kids: []ast.Node{predefined("i32")}}).
			WithField("value", &ast.Fixture{
				K: ast.KindCallExpr,
				Fields: map[string]ast.Node{
					"function":  ast.F(ast.KindIdentifier, "malloc"),
					"arguments": &ast.Fixture{K: "arguments", Kids: []ast.Node{numberLit("20")}},
				},
			}),
	}}
	sumDecl := &ast.Fixture{K: ast.KindLexicalDecl, Kids: []ast.Node{
		(&ast.Fixture{K: ast.KindVariableDeclarator}).
			WithField("name", ast.F(ast.KindIdentifier, "sum")).
			WithField("value", numberLit("0")),
	}}
	loopBody := &ast.Fixture{K: ast.KindStatementBlock, Kids: []ast.Node{
		&ast.Fixture{K: ast.KindExpressionStatement, Kids: []ast.Node{
			&ast.Fixture{
				K: ast.KindAssignmentExpr,
				Fields: map[string]ast.Node{
					"left": ident("sum"),
					"right": &ast.Fixture{
						K: ast.KindBinaryExpr,
						Fields: map[string]ast.Node{
							"left":     ident("sum"),
							"right":    &ast.Fixture{K: ast.KindSubscriptExpr, Fields: map[string]ast.Node{"object": ident("arr"), "index": ident("i")}},
							"operator": ast.F(ast.KindIdentifier, "+"),
						},
					},
				},
			},
		}},
	}}
	forStmt := (&ast.Fixture{K: ast.KindForStatement}).
		WithField("initializer", &ast.Fixture{K: ast.KindLexicalDecl, Kids: []ast.Node{
			(&ast.Fixture{K: ast.KindVariableDeclarator}).WithField("name", ident("i")).WithField("value", numberLit("0")),
		}}).
		WithField("condition", &ast.Fixture{
			K:      ast.KindBinaryExpr,
			Fields: map[string]ast.Node{"left": ident("i"), "right": numberLit("5"), "operator": ast.F(ast.KindIdentifier, "<")},
		}).
		WithField("increment", &ast.Fixture{
			K: ast.KindAssignmentExpr,
			Fields: map[string]ast.Node{
				"left": ident("i"),
				"right": &ast.Fixture{
					K:      ast.KindBinaryExpr,
					Fields: map[string]ast.Node{"left": ident("i"), "right": numberLit("1"), "operator": ast.F(ast.KindIdentifier, "+")},
				},
			},
		}).
		WithField("body", loopBody)

	program := &ast.Fixture{K: ast.KindProgram, Kids: []ast.Node{
		mallocDecl,
		fnDecl("main", nil, predefined("i32"), arrDecl, sumDecl, forStmt, returnStmt(ident("sum"))),
	}}
	w, emit := newWalker(program)
	if err := w.Walk(); err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	out := emit.Output()
	if !strings.Contains(out, "call i8* @malloc(i32 20)") {
		t.Errorf("expected a malloc(20) call, got: %s", out)
	}
	if !strings.Contains(out, "getelementptr i32, i32* %") {
		t.Errorf("expected an array-element getelementptr, got: %s", out)
	}
	if !strings.Contains(out, "for.body0") && !strings.Contains(out, "for.cond0") {
		t.Errorf("expected the for-loop labels to appear, got: %s", out)
	}
}

// scenario 2: the while-loop shape of iterative Fibonacci. a, b and a
// counter n are declared; the loop body only advances n (the a/b update is
// not part of this fixture).
func TestScenarioFibonacciWhile(t *testing.T) {
	aDecl := &ast.Fixture{K: ast.KindLexicalDecl, Kids: []ast.Node{
		(&ast.Fixture{K: ast.KindVariableDeclarator}).WithField("name", ident("a")).WithField("value", numberLit("0")),
	}}
	bDecl := &ast.Fixture{K: ast.KindLexicalDecl, Kids: []ast.Node{
		(&ast.Fixture{K: ast.KindVariableDeclarator}).WithField("name", ident("b")).WithField("value", numberLit("1")),
	}}
	nDecl := &ast.Fixture{K: ast.KindLexicalDecl, Kids: []ast.Node{
		(&ast.Fixture{K: ast.KindVariableDeclarator}).WithField("name", ident("n")).WithField("value", numberLit("0")),
	}}
	cond := &ast.Fixture{
		K:      ast.KindBinaryExpr,
		Fields: map[string]ast.Node{"left": ident("n"), "right": numberLit("10"), "operator": ast.F(ast.KindIdentifier, "<")},
	}
	body := &ast.Fixture{K: ast.KindStatementBlock, Kids: []ast.Node{
		&ast.Fixture{K: ast.KindExpressionStatement, Kids: []ast.Node{
			&ast.Fixture{
				K: ast.KindAssignmentExpr,
				Fields: map[string]ast.Node{
					"left": ident("n"),
					"right": &ast.Fixture{
						K:      ast.KindBinaryExpr,
						Fields: map[string]ast.Node{"left": ident("n"), "right": numberLit("1"), "operator": ast.F(ast.KindIdentifier, "+")},
					},
				},
			},
		}},
	}}
	whileStmt := (&ast.Fixture{K: ast.KindWhileStatement}).WithField("condition", cond).WithField("body", body)

	program := &ast.Fixture{K: ast.KindProgram, Kids: []ast.Node{
		fnDecl("main", nil, predefined("i32"), aDecl, bDecl, nDecl, whileStmt, returnStmt(ident("b"))),
	}}
	w, emit := newWalker(program)
	if err := w.Walk(); err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	out := emit.Output()
	if !strings.Contains(out, "while.cond0") || !strings.Contains(out, "while.body0") || !strings.Contains(out, "while.end0") {
		t.Errorf("expected all three while labels, got: %s", out)
	}
	if !strings.Contains(out, "icmp slt i32") {
		t.Errorf("expected a signed less-than comparison for the loop condition, got: %s", out)
	}
}

// scenario 3: nested property write/read, Line{start,end: Point}, Point{x,y}.
func TestScenarioNestedPropertyAccess(t *testing.T) {
	point := (&ast.Fixture{K: ast.KindInterfaceDecl}).
		WithField("name", ast.F(ast.KindIdentifier, "Point")).
		WithField("body", &ast.Fixture{K: "interface_body", Kids: []ast.Node{
			(&ast.Fixture{K: ast.KindPropertySignature}).WithField("name", ident("x")).WithField("type", predefined("i32")),
			(&ast.Fixture{K: ast.KindPropertySignature}).WithField("name", ident("y")).WithField("type", predefined("i32")),
		}})
	line := (&ast.Fixture{K: ast.KindInterfaceDecl}).
		WithField("name", ast.F(ast.KindIdentifier, "Line")).
		WithField("body", &ast.Fixture{K: "interface_body", Kids: []ast.Node{
			(&ast.Fixture{K: ast.KindPropertySignature}).WithField("name", ident("start")).WithField("type", ast.F(ast.KindTypeIdentifier, "Point")),
			(&ast.Fixture{K: ast.KindPropertySignature}).WithField("name", ident("end")).WithField("type", ast.F(ast.KindTypeIdentifier, "Point")),
		}})

	lineParam := required("line", "Line")
	lineParam.(*ast.Fixture).Fields["type"] = ast.F(ast.KindTypeIdentifier, "Line")

	startX := &ast.Fixture{K: ast.KindMemberExpr, Fields: map[string]ast.Node{
		"object":   &ast.Fixture{K: ast.KindMemberExpr, Fields: map[string]ast.Node{"object": ident("line"), "property": ident("start")}},
		"property": ident("x"),
	}}
	writeStmt := &ast.Fixture{K: ast.KindExpressionStatement, Kids: []ast.Node{
		&ast.Fixture{K: ast.KindAssignmentExpr, Fields: map[string]ast.Node{"left": startX, "right": numberLit("10")}},
	}}
	readStmt := returnStmt(startX)

	program := &ast.Fixture{K: ast.KindProgram, Kids: []ast.Node{
		point, line,
		fnDecl("readStartX", []ast.Node{lineParam}, predefined("i32"), writeStmt, readStmt),
	}}
	w, emit := newWalker(program)
	if err := w.Walk(); err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	out := emit.Output()
	if !strings.Contains(out, "%Line = type { %Point*, %Point* }") {
		t.Errorf("expected Line to reference Point by pointer, got: %s", out)
	}
	pointIdx := strings.Index(out, "%Point = type {")
	lineIdx := strings.Index(out, "%Line = type {")
	if pointIdx == -1 || lineIdx == -1 || pointIdx > lineIdx {
		t.Errorf("expected Point emitted before Line (topological order), got: %s", out)
	}
	if strings.Count(out, "getelementptr") < 2 {
		t.Errorf("expected at least two nested getelementptr steps (line->start, start->x), got: %s", out)
	}
}

// scenario 4: method mangling, Rect{width,height}, area as a this-method
// (scale is not part of this fixture).
func TestScenarioMethodDispatchMangling(t *testing.T) {
	rect := (&ast.Fixture{K: ast.KindInterfaceDecl}).
		WithField("name", ast.F(ast.KindIdentifier, "Rect")).
		WithField("body", &ast.Fixture{K: "interface_body", Kids: []ast.Node{
			(&ast.Fixture{K: ast.KindPropertySignature}).WithField("name", ident("width")).WithField("type", predefined("i32")),
			(&ast.Fixture{K: ast.KindPropertySignature}).WithField("name", ident("height")).WithField("type", predefined("i32")),
		}})

	thisParam := func() ast.Node {
		return (&ast.Fixture{K: ast.KindRequiredParameter}).
			WithField("pattern", ident("this")).
			WithField("type", ast.F(ast.KindTypeIdentifier, "Rect"))
	}

	widthRead := &ast.Fixture{K: ast.KindMemberExpr, Fields: map[string]ast.Node{"object": ident("this"), "property": ident("width")}}
	heightRead := &ast.Fixture{K: ast.KindMemberExpr, Fields: map[string]ast.Node{"object": ident("this"), "property": ident("height")}}

	area := fnDecl("area", []ast.Node{thisParam()}, predefined("i32"),
		returnStmt(&ast.Fixture{
			K:      ast.KindBinaryExpr,
			Fields: map[string]ast.Node{"left": widthRead, "right": heightRead, "operator": ast.F(ast.KindIdentifier, "*")},
		}))

	program := &ast.Fixture{K: ast.KindProgram, Kids: []ast.Node{rect, area}}
	w, emit := newWalker(program)
	if err := w.Walk(); err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	out := emit.Output()
	if !strings.Contains(out, "define i32 @Rect_area(%Rect* %this.param)") {
		t.Errorf("expected Rect_area with a leading %%Rect* parameter, got: %s", out)
	}
	if !strings.Contains(out, "mul i32") {
		t.Errorf("expected a multiply instruction for width*height, got: %s", out)
	}
}

// scenario 5: module mangling — a caller in "main" invoking an imported
// function from module "math" lowers to a call against the mangled name.
func TestScenarioModuleMangledCall(t *testing.T) {
	reg := structs.New()
	tmap := types.NewMapper(reg)
	ext := externs.New()
	fns := funcs.New()
	emit := emitter.New("")
	emit.Header("main")

	// Simulates math.ts having already been walked: its add() is
	// registered in the shared FunctionTable by its local name, carrying
	// its mangled name math_add.
	fns.Register(&funcs.Function{LocalName: "add", MangledName: "math_add", ReturnIR: "i32",
		Params: []emitter.Param{{Name: "a", IRType: "i32"}, {Name: "b", IRType: "i32"}}})

	callAdd := &ast.Fixture{
		K: ast.KindCallExpr,
		Fields: map[string]ast.Node{
			"function":  ast.F(ast.KindIdentifier, "add"),
			"arguments": &ast.Fixture{K: "arguments", Kids: []ast.Node{numberLit("10"), numberLit("20")}},
		},
	}
	program := &ast.Fixture{K: ast.KindProgram, Kids: []ast.Node{
		fnDecl("main", nil, predefined("i32"), returnStmt(callAdd)),
	}}
	mod := &resolver.Module{Path: "main.ts", Name: "main", Tree: program, Imports: []resolver.Import{
		{LocalName: "add", ExportedName: "add", SourceModule: "math", SourcePath: "math.ts"},
	}}
	w := New(mod, reg, tmap, ext, fns, emit)
	if err := w.Walk(); err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	out := emit.Output()
	if !strings.Contains(out, "call i32 @math_add(i32 10, i32 20)") {
		t.Errorf("expected the imported call to resolve through the mangled name, got: %s", out)
	}
}

// scenario 6: generic monomorphization, Box<number> and Box<Box<number>>
// in the same compilation yield exactly two distinct struct types.
func TestScenarioGenericMonomorphization(t *testing.T) {
	boxTemplate := (&ast.Fixture{K: ast.KindInterfaceDecl}).
		WithField("name", ast.F(ast.KindIdentifier, "Box")).
		WithField("type_parameters", &ast.Fixture{K: ast.KindTypeParameters, Kids: []ast.Node{ast.F(ast.KindIdentifier, "T")}}).
		WithField("body", &ast.Fixture{K: "interface_body", Kids: []ast.Node{
			(&ast.Fixture{K: ast.KindPropertySignature}).WithField("name", ident("value")).WithField("type", ast.F(ast.KindTypeIdentifier, "T")),
		}})

	boxOfNumberParam := required("a", "number")
	boxOfNumberParam.(*ast.Fixture).Fields["type"] = &ast.Fixture{
		K: ast.KindGenericType,
		Fields: map[string]ast.Node{
			"name":           ast.F(ast.KindIdentifier, "Box"),
			"type_arguments": &ast.Fixture{K: ast.KindTypeArguments, Kids: []ast.Node{predefined("number")}},
		},
	}
	boxOfBoxParam := required("b", "number")
	boxOfBoxParam.(*ast.Fixture).Fields["type"] = &ast.Fixture{
		K: ast.KindGenericType,
		Fields: map[string]ast.Node{
			"name": ast.F(ast.KindIdentifier, "Box"),
			"type_arguments": &ast.Fixture{K: ast.KindTypeArguments, Kids: []ast.Node{
				&ast.Fixture{
					K: ast.KindGenericType,
					Fields: map[string]ast.Node{
						"name":           ast.F(ast.KindIdentifier, "Box"),
						"type_arguments": &ast.Fixture{K: ast.KindTypeArguments, Kids: []ast.Node{predefined("number")}},
					},
				},
			}},
		},
	}

	program := &ast.Fixture{K: ast.KindProgram, Kids: []ast.Node{
		boxTemplate,
		fnDecl("useBoxes", []ast.Node{boxOfNumberParam, boxOfBoxParam}, nil),
	}}
	w, emit := newWalker(program)
	if err := w.Walk(); err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	out := emit.Output()
	if strings.Count(out, "= type {") != 2 {
		t.Errorf("expected exactly two monomorphized struct types, got: %s", out)
	}
	if !strings.Contains(out, "%Box_i32 = type { i32 }") {
		t.Errorf("expected %%Box_i32, got: %s", out)
	}
	if !strings.Contains(out, "%Box_Box_i32 = type { %Box_i32* }") {
		t.Errorf("expected %%Box_Box_i32 to hold a pointer to %%Box_i32, got: %s", out)
	}
}

// scenario 7: import cycle detection is covered end-to-end against real
// files in internal/resolver/resolver_test.go (TestResolveImportCycle);
// nothing in internal/walker itself participates in cycle detection.

// boundary: empty record.
func TestBoundaryEmptyRecordSizeZero(t *testing.T) {
	empty := (&ast.Fixture{K: ast.KindInterfaceDecl}).
		WithField("name", ast.F(ast.KindIdentifier, "Empty")).
		WithField("body", &ast.Fixture{K: "interface_body"})
	program := &ast.Fixture{K: ast.KindProgram, Kids: []ast.Node{
		empty,
		fnDecl("sz", nil, predefined("i32"), returnStmt(&ast.Fixture{
			K: ast.KindCallExpr,
			Fields: map[string]ast.Node{
				"function":       ast.F(ast.KindIdentifier, "sizeof"),
				"type_arguments": &ast.Fixture{K: ast.KindTypeArguments, Kids: []ast.Node{ast.F(ast.KindTypeIdentifier, "Empty")}},
				"arguments":      &ast.Fixture{K: "arguments"},
			},
		})),
	}}
	w, emit := newWalker(program)
	if err := w.Walk(); err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	out := emit.Output()
	if !strings.Contains(out, "%Empty = type { }") {
		t.Errorf("expected the empty-record boundary spelling, got: %s", out)
	}
	if !strings.Contains(out, "ret i32 0") {
		t.Errorf("expected sizeof<Empty>() to fold to 0, got: %s", out)
	}
}

// boundary: repeated identical string literal reuses one global.
func TestBoundaryRepeatedStringLiteralReusesGlobal(t *testing.T) {
	callPrintf := func() ast.Node {
		return &ast.Fixture{
			K: ast.KindCallExpr,
			Fields: map[string]ast.Node{
				"function":  ast.F(ast.KindIdentifier, "printf"),
				"arguments": &ast.Fixture{K: "arguments", Kids: []ast.Node{ast.F(ast.KindString, `"hi"`)}},
			},
		}
	}
	program := &ast.Fixture{K: ast.KindProgram, Kids: []ast.Node{
		fnDecl("printf", []ast.Node{required("fmt", "string")}, predefined("i32")),
		fnDecl("main", nil, nil,
			&ast.Fixture{K: ast.KindExpressionStatement, Kids: []ast.Node{callPrintf()}},
			&ast.Fixture{K: ast.KindExpressionStatement, Kids: []ast.Node{callPrintf()}},
		),
	}}
	program.Kids[0].(*ast.Fixture).Fields["body"] = nil
	ext := externs.New()
	ext.Register(externs.Signature{Name: "printf", ReturnIR: "i32",
		Params: []emitter.Param{{Name: "fmt", IRType: "i8*"}}, Variadic: true})

	reg := structs.New()
	tmap := types.NewMapper(reg)
	fns := funcs.New()
	emit := emitter.New("")
	emit.Header("main")
	mod := &resolver.Module{Path: "main.ts", Name: "main", Tree: program}
	w := New(mod, reg, tmap, ext, fns, emit)
	if err := w.Walk(); err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	out := emit.Output()
	if strings.Count(out, "@.str.0") < 2 {
		t.Errorf("expected @.str.0 referenced at both call sites, got: %s", out)
	}
	if strings.Count(out, "private unnamed_addr constant") != 1 {
		t.Errorf("expected exactly one string global definition, got: %s", out)
	}
}
