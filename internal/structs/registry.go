package structs

import (
	"fmt"
	"strings"
)

// Registry is the single source of truth for record layouts, threaded
// through the whole compilation via the owning Compilation handle. It is
// mutated from exactly one thread and needs no synchronization (§5).
type Registry struct {
	records map[string]*Record
	order   []string // insertion order, for deterministic iteration
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{records: make(map[string]*Record)}
}

// Register lays out a new record from its field specs in declaration
// order, computing offsets and the total size. Re-registering an existing
// name is an error, matching the "record names unique within the process"
// invariant.
func (r *Registry) Register(name string, specs []FieldSpec) (*Record, error) {
	if _, exists := r.records[name]; exists {
		return nil, fmt.Errorf("record %q already registered", name)
	}

	seen := make(map[string]bool, len(specs))
	fields := make([]Field, len(specs))
	offset := 0
	for i, spec := range specs {
		if seen[spec.Name] {
			return nil, fmt.Errorf("record %q: duplicate field %q", name, spec.Name)
		}
		seen[spec.Name] = true

		size := r.TypeSize(spec.IRType)
		fields[i] = Field{
			Name:        spec.Name,
			SurfaceType: spec.SurfaceType,
			IRType:      spec.IRType,
			Index:       i,
			Offset:      offset,
			Size:        size,
		}
		offset += size
	}

	rec := &Record{
		Name:    name,
		Fields:  fields,
		Size:    offset,
		PtrType: "%" + name + "*",
	}
	r.records[name] = rec
	r.order = append(r.order, name)
	return rec, nil
}

// Lookup returns the record registered under name, if any.
func (r *Registry) Lookup(name string) (*Record, bool) {
	rec, ok := r.records[name]
	return rec, ok
}

// LookupField returns the field named field within record name, if both
// exist.
func (r *Registry) LookupField(name, field string) (*Field, bool) {
	rec, ok := r.records[name]
	if !ok {
		return nil, false
	}
	for i := range rec.Fields {
		if rec.Fields[i].Name == field {
			return &rec.Fields[i], true
		}
	}
	return nil, false
}

// TypeSize returns the byte size an IR type occupies as a struct field,
// per the sizing table in §3: primitives per the fixed table, any pointer
// type (including a nested-record pointer, since records are always
// manipulated by pointer) is 8. A bare "%Name" with no trailing star,
// which only ever appears when something asks for a record's own total
// size rather than its field size, resolves by looking up that record.
func (r *Registry) TypeSize(irType string) int {
	switch irType {
	case "i1", "i8":
		return 1
	case "i16":
		return 2
	case "i32", "float":
		return 4
	case "i64", "double":
		return 8
	}
	if strings.HasSuffix(irType, "*") {
		return 8
	}
	if strings.HasPrefix(irType, "%") {
		if rec, ok := r.records[strings.TrimPrefix(irType, "%")]; ok {
			return rec.Size
		}
	}
	return 8 // unknown types default to pointer width; nothing in the
	// supported subset should reach this branch.
}

// TopoOrder returns every registered record in dependency order: a record
// referencing another by field appears after that dependency. Cycles in
// record field-type references are rejected.
func (r *Registry) TopoOrder() ([]*Record, error) {
	out := make([]*Record, 0, len(r.order))
	done := make(map[string]bool, len(r.order))
	visiting := make(map[string]bool, len(r.order))

	var visit func(name string) error
	visit = func(name string) error {
		if done[name] {
			return nil
		}
		if visiting[name] {
			return fmt.Errorf("cyclic record dependency involving %q", name)
		}
		rec, ok := r.records[name]
		if !ok {
			return nil // referenced but never registered; caller's problem, not ours
		}
		visiting[name] = true
		for _, f := range rec.Fields {
			if dep := recordNameOf(f.IRType); dep != "" && dep != name {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		visiting[name] = false
		done[name] = true
		out = append(out, rec)
		return nil
	}

	for _, name := range r.order {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// recordNameOf extracts the record name referenced by a pointer IR type
// such as "%Point*", or "" if irType does not reference a record.
func recordNameOf(irType string) string {
	if !strings.HasPrefix(irType, "%") || !strings.HasSuffix(irType, "*") {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(irType, "%"), "*")
}
