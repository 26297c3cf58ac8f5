package types

import (
	"fmt"

	"github.com/emberc/emberc/internal/errors"
	"github.com/emberc/emberc/internal/structs"
)

// TemplateField is one field of a generic record template, its type left
// unresolved until an instantiation supplies concrete type arguments.
type TemplateField struct {
	Name string
	Type *Surface
}

// Template is a generic record declaration (`interface Box<T> { ... }`)
// before monomorphization. Templates are never registered in the
// StructRegistry directly — only their concrete instantiations are.
type Template struct {
	Name       string
	TypeParams []string
	Fields     []TemplateField
}

// Mapper is the TypeMapper & Generic Resolver: it converts surface types to
// IR types and drives monomorphization of generic record instantiations,
// registering each concrete instantiation into the shared StructRegistry
// the first time it is seen.
type Mapper struct {
	structs   *structs.Registry
	templates map[string]*Template
}

// NewMapper creates a Mapper bound to the given (shared) StructRegistry.
func NewMapper(reg *structs.Registry) *Mapper {
	return &Mapper{structs: reg, templates: make(map[string]*Template)}
}

// RegisterTemplate records a generic record declaration for later
// instantiation. Re-registering a name is an error, mirroring
// StructRegistry.Register's uniqueness invariant.
func (m *Mapper) RegisterTemplate(name string, typeParams []string, fields []TemplateField) error {
	if _, exists := m.templates[name]; exists {
		return fmt.Errorf("generic template %q already registered", name)
	}
	m.templates[name] = &Template{Name: name, TypeParams: typeParams, Fields: fields}
	return nil
}

// Map converts a parsed surface type to its IR type string, instantiating
// and registering any generic record reference it encounters for the first
// time.
func (m *Mapper) Map(s *Surface) (string, error) {
	return m.mapIR(s)
}

func (m *Mapper) mapIR(s *Surface) (string, error) {
	if s.Elem != nil {
		elemIR, err := m.mapIR(s.Elem)
		if err != nil {
			return "", err
		}
		return elemIR + "*", nil
	}

	if len(s.Args) == 0 {
		if ir, ok := primitiveIR[s.Leaf]; ok {
			return ir, nil
		}
		if rec, ok := m.structs.Lookup(s.Leaf); ok {
			return rec.PtrType, nil
		}
		return "", errors.New("types", errors.TYP001,
			fmt.Sprintf("unregistered type %q", s.Leaf))
	}

	mangled := Mangle(s)
	if rec, ok := m.structs.Lookup(mangled); ok {
		return rec.PtrType, nil
	}

	tmpl, ok := m.templates[s.Leaf]
	if !ok {
		return "", errors.New("types", errors.TYP001,
			fmt.Sprintf("unknown generic template %q", s.Leaf))
	}
	if len(tmpl.TypeParams) != len(s.Args) {
		return "", errors.New("types", errors.TYP002,
			fmt.Sprintf("generic %q expects %d type argument(s), got %d",
				s.Leaf, len(tmpl.TypeParams), len(s.Args)))
	}

	bindings := make(map[string]*Surface, len(tmpl.TypeParams))
	for i, p := range tmpl.TypeParams {
		bindings[p] = s.Args[i]
	}

	specs := make([]structs.FieldSpec, len(tmpl.Fields))
	for i, f := range tmpl.Fields {
		fieldSurface := substitute(f.Type, bindings)
		irType, err := m.mapIR(fieldSurface)
		if err != nil {
			return "", err
		}
		specs[i] = structs.FieldSpec{
			Name:        f.Name,
			SurfaceType: fieldSurface.String(),
			IRType:      irType,
		}
	}

	if _, err := m.structs.Register(mangled, specs); err != nil {
		return "", err
	}
	rec, _ := m.structs.Lookup(mangled)
	return rec.PtrType, nil
}

// substitute replaces every leaf in s bound in bindings with its bound
// Surface, recursively, leaving everything else unchanged.
func substitute(s *Surface, bindings map[string]*Surface) *Surface {
	if s.Elem != nil {
		return &Surface{Elem: substitute(s.Elem, bindings)}
	}
	if len(s.Args) == 0 {
		if bound, ok := bindings[s.Leaf]; ok {
			return bound
		}
		return s
	}
	args := make([]*Surface, len(s.Args))
	for i, a := range s.Args {
		args[i] = substitute(a, bindings)
	}
	return &Surface{Leaf: s.Leaf, Args: args}
}
