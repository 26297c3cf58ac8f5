// Package emitter implements the buffered assembly of a well-formed LLVM
// IR text module: four independently-growable segments (struct types,
// extern declarations, string constants, function bodies) concatenated in
// a stable order at Output() time. Grounded on the teacher's
// strings.Builder-based recursive printer (internal/ast/print.go),
// generalized from one buffer to four.
package emitter

import (
	"fmt"
	"strings"
)

// Param is a function parameter's name and IR type.
type Param struct {
	Name   string
	IRType string
}

// Arg is a call-site argument's IR type and already-lowered value text
// (a register name or literal).
type Arg struct {
	IRType string
	Value  string
}

// Emitter is the IR text buffer. It performs no I/O; GetOutput (Output)
// returns the finished text for the caller to persist.
type Emitter struct {
	moduleID string
	target   string

	structLines []string
	seenStructs map[string]bool

	externLines []string
	seenExterns map[string]bool

	stringLines  []string
	internedStr  map[string]internedString
	nextStringID int

	funcs []string
	cur   *strings.Builder
}

type internedString struct {
	global string
	length int
}

// DefaultTarget is the target triple used when the caller does not
// override it, matching the spec's default.
const DefaultTarget = "arm64-apple-macosx"

// New creates an empty Emitter for the given target triple. An empty
// target falls back to DefaultTarget.
func New(target string) *Emitter {
	if target == "" {
		target = DefaultTarget
	}
	return &Emitter{
		target:      target,
		seenStructs: make(map[string]bool),
		seenExterns: make(map[string]bool),
		internedStr: make(map[string]internedString),
	}
}

// Header records the module header: a `; ModuleID` comment and the target
// triple line.
func (e *Emitter) Header(moduleID string) {
	e.moduleID = moduleID
}

// AddStructType records a `%Name = type { ... }` struct type definition.
// Re-adding a name already seen is a no-op, keyed purely on name as the
// spec requires ("once per compilation, keyed by the Emitter having not
// yet seen that name") — callers are expected to supply field types in
// dependency order already (StructRegistry.TopoOrder).
func (e *Emitter) AddStructType(name string, fieldIRTypes []string) {
	if e.seenStructs[name] {
		return
	}
	e.seenStructs[name] = true
	if len(fieldIRTypes) == 0 {
		e.structLines = append(e.structLines, fmt.Sprintf("%%%s = type { }", name))
		return
	}
	e.structLines = append(e.structLines,
		fmt.Sprintf("%%%s = type { %s }", name, strings.Join(fieldIRTypes, ", ")))
}

// AddExternFunction records a deduplicated `declare` line for an external
// C function signature.
func (e *Emitter) AddExternFunction(name, returnIR string, params []Param, variadic bool) {
	if e.seenExterns[name] {
		return
	}
	e.seenExterns[name] = true

	types := make([]string, len(params))
	for i, p := range params {
		types[i] = p.IRType
	}
	sig := strings.Join(types, ", ")
	if variadic {
		if len(types) > 0 {
			sig += ", ..."
		} else {
			sig = "..."
		}
	}
	e.externLines = append(e.externLines, fmt.Sprintf("declare %s @%s(%s)", returnIR, name, sig))
}

// AddStringConstant interns raw (the literal's decoded-escape-pending
// source text, without surrounding quotes) and returns its global name and
// decoded byte length (including the trailing NUL). A literal seen before
// returns the existing global rather than emitting a duplicate.
func (e *Emitter) AddStringConstant(raw string) (globalName string, byteLength int) {
	if existing, ok := e.internedStr[raw]; ok {
		return existing.global, existing.length
	}

	encoded, length := escapeStringLiteral(raw)
	global := fmt.Sprintf("@.str.%d", e.nextStringID)
	e.nextStringID++

	e.internedStr[raw] = internedString{global: global, length: length}
	e.stringLines = append(e.stringLines,
		fmt.Sprintf(`%s = private unnamed_addr constant [%d x i8] c"%s\00"`, global, length, encoded))
	return global, length
}

// StartFunction opens a new function body: the `define` header, named
// "%name.param" parameters, and the mandatory `entry:` label.
func (e *Emitter) StartFunction(mangledName, returnIR string, params []Param) {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s %%%s.param", p.IRType, p.Name)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "define %s @%s(%s) {\n", returnIR, mangledName, strings.Join(parts, ", "))
	sb.WriteString("entry:\n")
	e.cur = &sb
}

// EndFunction closes the current function body and appends it to the
// module's function segment.
func (e *Emitter) EndFunction() {
	e.cur.WriteString("}\n")
	e.funcs = append(e.funcs, e.cur.String())
	e.cur = nil
}

func (e *Emitter) write(line string) {
	e.cur.WriteString("  " + line + "\n")
}

// Label writes a label, dedented relative to the instructions in its
// containing block.
func (e *Emitter) Label(name string) {
	e.cur.WriteString(name + ":\n")
}

// Br writes an unconditional branch.
func (e *Emitter) Br(label string) {
	e.write(fmt.Sprintf("br label %%%s", label))
}

// CondBr writes a conditional branch on an i1 register.
func (e *Emitter) CondBr(condReg, trueLabel, falseLabel string) {
	e.write(fmt.Sprintf("br i1 %s, label %%%s, label %%%s", condReg, trueLabel, falseLabel))
}

// Alloca writes a stack allocation for a local variable's slot.
func (e *Emitter) Alloca(destReg, irType string) {
	e.write(fmt.Sprintf("%s = alloca %s", destReg, irType))
}

// Load writes a load from a typed pointer.
func (e *Emitter) Load(destReg, irType, ptrReg string) {
	e.write(fmt.Sprintf("%s = load %s, %s* %s", destReg, irType, irType, ptrReg))
}

// Store writes a store of value (of irType) into a typed pointer.
func (e *Emitter) Store(irType, value, ptrReg string) {
	e.write(fmt.Sprintf("store %s %s, %s* %s", irType, value, irType, ptrReg))
}

// Bitcast writes a pointer bitcast from fromType to toType.
func (e *Emitter) Bitcast(destReg, fromType, fromReg, toType string) {
	e.write(fmt.Sprintf("%s = bitcast %s %s to %s", destReg, fromType, fromReg, toType))
}

// Gep writes a getelementptr computing the address of one element/field
// within a base pointer. indices are pre-formatted "<ty> <value>" pairs,
// e.g. "i32 0", "i32 3".
func (e *Emitter) Gep(destReg, elemType, basePtrType, baseReg string, indices []string) {
	e.write(fmt.Sprintf("%s = getelementptr %s, %s %s, %s",
		destReg, elemType, basePtrType, baseReg, strings.Join(indices, ", ")))
}

// BinaryOp writes a binary arithmetic instruction.
func (e *Emitter) BinaryOp(destReg, instr, irType, lhs, rhs string) {
	e.write(fmt.Sprintf("%s = %s %s %s, %s", destReg, instr, irType, lhs, rhs))
}

// CompareOp writes an icmp/fcmp instruction.
func (e *Emitter) CompareOp(destReg, instr, predicate, irType, lhs, rhs string) {
	e.write(fmt.Sprintf("%s = %s %s %s %s, %s", destReg, instr, predicate, irType, lhs, rhs))
}

// Call writes a direct, non-variadic call.
func (e *Emitter) Call(destReg, returnIR, calleeName string, args []Arg) {
	argsStr := formatArgs(args)
	if destReg == "" || returnIR == "void" {
		e.write(fmt.Sprintf("call %s @%s(%s)", returnIR, calleeName, argsStr))
		return
	}
	e.write(fmt.Sprintf("%s = call %s @%s(%s)", destReg, returnIR, calleeName, argsStr))
}

// VariadicCall writes a call against a variadic signature, using the
// "(fixed..., ...)" callee-type syntax LLVM requires for varargs calls.
func (e *Emitter) VariadicCall(destReg, returnIR, calleeName string, fixedParams []Param, args []Arg) {
	fixedTypes := make([]string, len(fixedParams))
	for i, p := range fixedParams {
		fixedTypes[i] = p.IRType
	}
	var sig string
	if len(fixedTypes) > 0 {
		sig = fmt.Sprintf("%s (%s, ...)", returnIR, strings.Join(fixedTypes, ", "))
	} else {
		sig = fmt.Sprintf("%s (...)", returnIR)
	}

	argsStr := formatArgs(args)
	if destReg == "" || returnIR == "void" {
		e.write(fmt.Sprintf("call %s @%s(%s)", sig, calleeName, argsStr))
		return
	}
	e.write(fmt.Sprintf("%s = call %s @%s(%s)", destReg, sig, calleeName, argsStr))
}

// Ret writes a typed return.
func (e *Emitter) Ret(irType, value string) {
	e.write(fmt.Sprintf("ret %s %s", irType, value))
}

// RetVoid writes a void return.
func (e *Emitter) RetVoid() {
	e.write("ret void")
}

func formatArgs(args []Arg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.IRType + " " + a.Value
	}
	return strings.Join(parts, ", ")
}

// Output concatenates every segment in the stable order the module text
// requires: header, struct types, extern declarations, string constants,
// then function bodies in the order they were walked.
func (e *Emitter) Output() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; ModuleID = '%s'\n", e.moduleID)
	fmt.Fprintf(&sb, "target triple = \"%s\"\n\n", e.target)

	for _, line := range e.structLines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if len(e.structLines) > 0 {
		sb.WriteString("\n")
	}

	for _, line := range e.externLines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if len(e.externLines) > 0 {
		sb.WriteString("\n")
	}

	for _, line := range e.stringLines {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if len(e.stringLines) > 0 {
		sb.WriteString("\n")
	}

	for i, fn := range e.funcs {
		sb.WriteString(fn)
		if i != len(e.funcs)-1 {
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
