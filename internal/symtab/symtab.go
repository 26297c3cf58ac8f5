// Package symtab implements the per-function variable environment and the
// unique-name supply the walker uses while lowering a function body.
// Grounded on the scope-chain shape of the teacher's internal/eval/env.go
// (innermost-to-outermost lookup), retargeted to hold compile-time
// (register, ir-type) pairs instead of runtime values, and reshaped into an
// explicit push/pop stack rather than a parent-linked chain, since the
// walker needs to pop a scope back off at block exit.
package symtab

import "strconv"

// Variable is a stack-allocated local: a surface name bound to its IR
// register and type. IsPointer is always true under the current
// stack-allocation convention (every variable is an alloca'd slot).
type Variable struct {
	Name      string
	Reg       string // e.g. "%x"
	IRType    string
	IsPointer bool
}

// Table is the SymbolTable: a stack of name-to-variable scopes, plus the
// two monotonic counters (temporaries, labels) that reset with it on every
// function entry.
type Table struct {
	scopes        []map[string]*Variable
	tempCounter   int
	labelCounters map[string]int
}

// New creates a Table ready for a fresh function: one empty scope, counters
// at zero.
func New() *Table {
	t := &Table{}
	t.Reset()
	return t
}

// Reset clears the table back to a single empty scope and zeroes both
// counters, as happens on every function entry.
func (t *Table) Reset() {
	t.scopes = []map[string]*Variable{make(map[string]*Variable)}
	t.tempCounter = 0
	t.labelCounters = make(map[string]int)
}

// PushScope opens a new innermost scope, as happens on block entry.
func (t *Table) PushScope() {
	t.scopes = append(t.scopes, make(map[string]*Variable))
}

// PopScope closes the innermost scope, as happens on block exit. Popping
// the last remaining scope is a no-op; the table never goes empty.
func (t *Table) PopScope() {
	if len(t.scopes) > 1 {
		t.scopes = t.scopes[:len(t.scopes)-1]
	}
}

// Declare binds name to a fresh slot in the innermost scope, shadowing any
// binding for name in an outer scope for the remainder of this scope's
// lifetime. The IR register is always "%name".
func (t *Table) Declare(name, irType string) *Variable {
	v := &Variable{Name: name, Reg: "%" + name, IRType: irType, IsPointer: true}
	t.scopes[len(t.scopes)-1][name] = v
	return v
}

// Lookup searches scopes from innermost to outermost.
func (t *Table) Lookup(name string) (*Variable, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if v, ok := t.scopes[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// NewTemp returns the next unique temporary register, "%t0", "%t1", ...
func (t *Table) NewTemp() string {
	name := "%t" + strconv.Itoa(t.tempCounter)
	t.tempCounter++
	return name
}

// NewLabel returns the next unique label for the given caller-chosen
// prefix, e.g. NewLabel("if.then") -> "if.then0", then "if.then1", with
// each prefix counted independently.
func (t *Table) NewLabel(prefix string) string {
	n := t.labelCounters[prefix]
	t.labelCounters[prefix] = n + 1
	return prefix + strconv.Itoa(n)
}
