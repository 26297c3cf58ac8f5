// Package funcs implements the FunctionTable: user-defined functions keyed
// by their local (module-source) name, each carrying its mangled public
// name and IR signature, plus a per-record method table for uniform-call
// dispatch.
package funcs

import "github.com/emberc/emberc/internal/emitter"

// Function is one internal (user-defined) function's lowered signature.
type Function struct {
	LocalName   string
	MangledName string
	ReturnIR    string
	Params      []emitter.Param
}

// Table holds every function registered while walking a compilation:
// module-level functions by local name, and methods by (record, method)
// name pair.
type Table struct {
	funcs   map[string]*Function
	methods map[string]map[string]*Function
}

// New creates an empty Table.
func New() *Table {
	return &Table{
		funcs:   make(map[string]*Function),
		methods: make(map[string]map[string]*Function),
	}
}

// Register adds a module-level function, keyed by its local (unmangled)
// name.
func (t *Table) Register(fn *Function) {
	t.funcs[fn.LocalName] = fn
}

// Lookup returns the function registered under its local name.
func (t *Table) Lookup(localName string) (*Function, bool) {
	fn, ok := t.funcs[localName]
	return fn, ok
}

// RegisterMethod additionally registers fn under record's method table, for
// obj.m(args) uniform-call dispatch.
func (t *Table) RegisterMethod(record, method string, fn *Function) {
	if t.methods[record] == nil {
		t.methods[record] = make(map[string]*Function)
	}
	t.methods[record][method] = fn
}

// LookupMethod returns the method registered for (record, method).
func (t *Table) LookupMethod(record, method string) (*Function, bool) {
	methods, ok := t.methods[record]
	if !ok {
		return nil, false
	}
	fn, ok := methods[method]
	return fn, ok
}
