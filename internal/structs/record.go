// Package structs implements the record (struct) registry: canonical
// layouts, field offsets and sizes, and the dependency-ordered emission
// sequence the Emitter needs to produce well-formed IR.
package structs

// FieldSpec is the input shape the caller (the walker's records pass, or
// the generic resolver while instantiating a template) supplies when
// registering a record.
type FieldSpec struct {
	Name        string
	SurfaceType string // textual surface type, for diagnostics
	IRType      string // already-mapped IR type, e.g. "i32", "%Point*"
}

// Field is a fully laid-out record field.
type Field struct {
	Name        string
	SurfaceType string
	IRType      string
	Index       int
	Offset      int
	Size        int
}

// Record is a canonical, laid-out struct.
type Record struct {
	Name    string
	Fields  []Field
	Size    int
	PtrType string // e.g. "%Point*"
}

// IRFieldTypes returns the record's field IR types in declaration order,
// the shape the Emitter's addStructType wants for a "%Name = type { ... }"
// line.
func (r *Record) IRFieldTypes() []string {
	out := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		out[i] = f.IRType
	}
	return out
}
