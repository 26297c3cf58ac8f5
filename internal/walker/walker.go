// Package walker implements the AST-to-IR lowering walker: given one
// module's concrete syntax tree and the registries shared across a whole
// compilation, it performs the three-pass walk (records, externs, function
// bodies) that turns surface syntax into LLVM textual IR. Grounded on the
// teacher's internal/eval tree-walking evaluator (internal/eval/eval_*.go),
// generalized from interpreting an AST to emitting IR text for it.
package walker

import (
	"fmt"
	"strings"

	"github.com/emberc/emberc/internal/ast"
	"github.com/emberc/emberc/internal/emitter"
	"github.com/emberc/emberc/internal/errors"
	"github.com/emberc/emberc/internal/externs"
	"github.com/emberc/emberc/internal/funcs"
	"github.com/emberc/emberc/internal/resolver"
	"github.com/emberc/emberc/internal/structs"
	"github.com/emberc/emberc/internal/symtab"
	"github.com/emberc/emberc/internal/types"
)

const phase = "walker"

// Walker lowers a single module's concrete syntax tree, bound to the
// registries shared across the whole compilation plus that module's own
// import map.
type Walker struct {
	mod     *resolver.Module
	imports map[string]resolver.Import // local name -> binding

	structs *structs.Registry
	tmap    *types.Mapper
	ext     *externs.Table
	fns     *funcs.Table
	emit    *emitter.Emitter
	syms    *symtab.Table
}

// New constructs a Walker for mod, bound to the shared registries that
// every module in the compilation threads through.
func New(mod *resolver.Module, reg *structs.Registry, tmap *types.Mapper, ext *externs.Table, fns *funcs.Table, emit *emitter.Emitter) *Walker {
	imports := make(map[string]resolver.Import, len(mod.Imports))
	for _, imp := range mod.Imports {
		imports[imp.LocalName] = imp
	}
	return &Walker{
		mod:     mod,
		imports: imports,
		structs: reg,
		tmap:    tmap,
		ext:     ext,
		fns:     fns,
		emit:    emit,
		syms:    symtab.New(),
	}
}

// Walk performs the three ordered top-level passes over the module: record
// registration, extern declarations, then function bodies.
func (w *Walker) Walk() error {
	for _, child := range w.mod.Tree.Children() {
		if child.Kind() == ast.KindInterfaceDecl {
			if err := w.registerRecord(child); err != nil {
				return err
			}
		}
	}

	order, err := w.structs.TopoOrder()
	if err != nil {
		return errors.New("structs", errors.STR003, err.Error())
	}
	for _, rec := range order {
		w.emit.AddStructType(rec.Name, rec.IRFieldTypes())
	}

	for _, child := range w.mod.Tree.Children() {
		switch child.Kind() {
		case ast.KindFunctionDecl:
			if child.ChildByField("body") == nil {
				if err := w.registerExtern(child); err != nil {
					return err
				}
			}
		case ast.KindAmbientDecl:
			for _, inner := range child.Children() {
				switch inner.Kind() {
				case ast.KindFunctionDecl, ast.KindFunctionSignature:
					if err := w.registerExtern(inner); err != nil {
						return err
					}
				}
			}
		}
	}

	for _, child := range w.mod.Tree.Children() {
		if child.Kind() == ast.KindFunctionDecl && child.ChildByField("body") != nil {
			if err := w.lowerFunction(child); err != nil {
				return err
			}
		}
	}

	// Generic instantiations first met in a signature or body are registered
	// during the bodies pass; emit their struct types as well (already
	// emitted names are skipped by the Emitter).
	order, err = w.structs.TopoOrder()
	if err != nil {
		return errors.New("structs", errors.STR003, err.Error())
	}
	for _, rec := range order {
		w.emit.AddStructType(rec.Name, rec.IRFieldTypes())
	}
	return nil
}

// registerRecord lowers one interface declaration: a generic declaration
// (one carrying type_parameters) becomes a template in the TypeMapper; a
// concrete declaration is registered directly in the StructRegistry.
func (w *Walker) registerRecord(node ast.Node) error {
	name := node.ChildByField("name").Text()
	members := recordMembers(node)

	if typeParamsNode := node.ChildByField("type_parameters"); typeParamsNode != nil {
		var typeParams []string
		for _, p := range typeParamsNode.Children() {
			typeParams = append(typeParams, p.Text())
		}
		fields, err := w.templateFields(name, members)
		if err != nil {
			return err
		}
		if err := w.tmap.RegisterTemplate(name, typeParams, fields); err != nil {
			return errors.NewAt("types", errors.TYP001, err.Error(), errors.NodeSpan(node))
		}
		return nil
	}

	specs, err := w.fieldSpecs(name, members)
	if err != nil {
		return err
	}
	if _, err := w.structs.Register(name, specs); err != nil {
		return errors.NewAt("structs", errors.STR002, err.Error(), errors.NodeSpan(node))
	}
	return nil
}

func recordMembers(node ast.Node) []ast.Node {
	if body := node.ChildByField("body"); body != nil {
		return body.Children()
	}
	return node.Children()
}

func (w *Walker) fieldSpecs(recordName string, members []ast.Node) ([]structs.FieldSpec, error) {
	var specs []structs.FieldSpec
	for _, m := range members {
		if m.Kind() != ast.KindPropertySignature {
			continue
		}
		if isOptionalField(m) {
			return nil, errors.NewAt("structs", errors.STR001,
				fmt.Sprintf("record %q: optional fields are not supported", recordName), errors.NodeSpan(m))
		}
		fname := m.ChildByField("name").Text()
		surface, err := types.ParseSurface(m.ChildByField("type"))
		if err != nil {
			return nil, err
		}
		irType, err := w.tmap.Map(surface)
		if err != nil {
			return nil, err
		}
		specs = append(specs, structs.FieldSpec{Name: fname, SurfaceType: surface.String(), IRType: irType})
	}
	return specs, nil
}

func (w *Walker) templateFields(recordName string, members []ast.Node) ([]types.TemplateField, error) {
	var fields []types.TemplateField
	for _, m := range members {
		if m.Kind() != ast.KindPropertySignature {
			continue
		}
		if isOptionalField(m) {
			return nil, errors.NewAt("structs", errors.STR001,
				fmt.Sprintf("record %q: optional fields are not supported", recordName), errors.NodeSpan(m))
		}
		fname := m.ChildByField("name").Text()
		surface, err := types.ParseSurface(m.ChildByField("type"))
		if err != nil {
			return nil, err
		}
		fields = append(fields, types.TemplateField{Name: fname, Type: surface})
	}
	return fields, nil
}

// isOptionalField reports whether a property signature carries the `?`
// optional marker, which this language subset rejects.
func isOptionalField(m ast.Node) bool {
	return strings.Contains(m.Text(), "?:")
}

// registerExtern lowers one bodyless function declaration into the
// ExternTable and the Emitter.
func (w *Walker) registerExtern(node ast.Node) error {
	name := node.ChildByField("name").Text()

	returnIR, err := w.returnIRType(node)
	if err != nil {
		return err
	}

	params, variadic, err := w.paramList(node, "")
	if err != nil {
		return err
	}

	sig := externs.Signature{Name: name, ReturnIR: returnIR, Params: params, Variadic: variadic}
	w.ext.Register(sig)
	w.emit.AddExternFunction(name, returnIR, params, variadic)
	return nil
}

// lowerFunction lowers one function declaration with a body: determines its
// mangled name, emits the define header and parameter allocas, walks the
// body, and registers it in the FunctionTable (and method table, if
// applicable).
func (w *Walker) lowerFunction(node ast.Node) error {
	localName := node.ChildByField("name").Text()

	recordName, isMethod, err := w.methodReceiver(node)
	if err != nil {
		return err
	}

	var mangled string
	switch {
	case localName == "main":
		mangled = "main"
	case isMethod:
		mangled = recordName + "_" + localName
	default:
		mangled = w.mod.Name + "_" + localName
	}

	returnIR, err := w.returnIRType(node)
	if err != nil {
		return err
	}
	params, _, err := w.paramList(node, recordName)
	if err != nil {
		return err
	}

	w.syms.Reset()
	w.emit.StartFunction(mangled, returnIR, params)
	for _, p := range params {
		slot := w.syms.Declare(p.Name, p.IRType)
		w.emit.Alloca(slot.Reg, p.IRType)
		w.emit.Store(p.IRType, "%"+p.Name+".param", slot.Reg)
	}

	fn := &funcs.Function{LocalName: localName, MangledName: mangled, ReturnIR: returnIR, Params: params}
	w.fns.Register(fn)
	if isMethod {
		w.fns.RegisterMethod(recordName, localName, fn)
	}

	lastWasReturn, err := w.lowerBlock(node.ChildByField("body"))
	if err != nil {
		return err
	}
	if returnIR == "void" && !lastWasReturn {
		w.emit.RetVoid()
	}
	w.emit.EndFunction()
	return nil
}

// methodReceiver reports whether node's first parameter is a `this`
// parameter typed as a registered record, and if so, that record's name.
func (w *Walker) methodReceiver(node ast.Node) (recordName string, isMethod bool, err error) {
	paramsNode := node.ChildByField("parameters")
	if paramsNode == nil {
		return "", false, nil
	}
	params := paramsNode.Children()
	if len(params) == 0 || paramName(params[0]) != "this" {
		return "", false, nil
	}
	typeNode := params[0].ChildByField("type")
	if typeNode == nil {
		return "", false, nil
	}
	surface, err := types.ParseSurface(typeNode)
	if err != nil {
		return "", false, err
	}
	if surface.Leaf == "" || len(surface.Args) != 0 {
		return "", false, nil
	}
	if _, ok := w.structs.Lookup(surface.Leaf); !ok {
		return "", false, nil
	}
	return surface.Leaf, true, nil
}

// returnIRType maps node's declared return type to an IR type string, void
// when no return-type annotation is present.
func (w *Walker) returnIRType(node ast.Node) (string, error) {
	typeNode := node.ChildByField("return_type")
	if typeNode == nil {
		return "void", nil
	}
	surface, err := types.ParseSurface(typeNode)
	if err != nil {
		return "", err
	}
	return w.tmap.Map(surface)
}

// paramList lowers a function/extern declaration's parameter list.
// recordName, when non-empty, types a leading `this` parameter as that
// record's pointer type directly rather than re-resolving it through the
// TypeMapper.
func (w *Walker) paramList(node ast.Node, recordName string) (params []emitter.Param, variadic bool, err error) {
	paramsNode := node.ChildByField("parameters")
	if paramsNode == nil {
		return nil, false, nil
	}
	for _, p := range paramsNode.Children() {
		if p.Kind() == ast.KindRestParameter {
			variadic = true
			continue
		}
		name := paramName(p)
		if name == "this" && recordName != "" {
			params = append(params, emitter.Param{Name: name, IRType: "%" + recordName + "*"})
			continue
		}
		surface, err := types.ParseSurface(p.ChildByField("type"))
		if err != nil {
			return nil, false, err
		}
		irType, err := w.tmap.Map(surface)
		if err != nil {
			return nil, false, err
		}
		params = append(params, emitter.Param{Name: name, IRType: irType})
	}
	return params, variadic, nil
}

// paramName returns a parameter node's bound name.
func paramName(p ast.Node) string {
	if n := p.ChildByField("pattern"); n != nil {
		return n.Text()
	}
	if children := p.Children(); len(children) > 0 {
		return children[0].Text()
	}
	return p.Text()
}

// unquoteString strips the surrounding quote characters from a string
// literal's verbatim source text.
func unquoteString(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
