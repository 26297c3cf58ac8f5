// Package externs implements the ExternTable: signatures for bodiless
// (ambient) function declarations that call out to native C code.
package externs

import (
	"sort"

	"github.com/emberc/emberc/internal/emitter"
)

// Signature is one extern function's shape.
type Signature struct {
	Name     string
	ReturnIR string
	Params   []emitter.Param
	Variadic bool
}

// Table holds every extern signature seen so far in the compilation,
// whether from the prelude or a user module's bodiless declarations.
type Table struct {
	signatures map[string]Signature
}

// New creates an empty Table.
func New() *Table {
	return &Table{signatures: make(map[string]Signature)}
}

// Register adds a signature. Re-registering the same name with an
// identical signature is allowed (a module may re-declare a prelude
// extern); re-registering with a different signature overwrites it, since
// the surface language has no mechanism to detect that mismatch itself.
func (t *Table) Register(sig Signature) {
	t.signatures[sig.Name] = sig
}

// Lookup returns the signature registered under name, if any.
func (t *Table) Lookup(name string) (Signature, bool) {
	sig, ok := t.signatures[name]
	return sig, ok
}

// All returns every registered signature, sorted by name for deterministic
// output. Used to emit declare lines for prelude externs that a module's
// source never redeclares itself.
func (t *Table) All() []Signature {
	sigs := make([]Signature, 0, len(t.signatures))
	for _, sig := range t.signatures {
		sigs = append(sigs, sig)
	}
	sort.Slice(sigs, func(i, j int) bool { return sigs[i].Name < sigs[j].Name })
	return sigs
}
