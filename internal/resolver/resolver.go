// Package resolver implements the ModuleResolver: given an entry source
// file, it discovers the transitive closure of relative-path imports and
// yields the modules in dependency order (each module after everything it
// imports). Grounded on the teacher's internal/module/loader.go and
// internal/module/resolver.go — path normalization, `.ts` suffix appending
// generalized from the teacher's `.ail` suffix, loadStack-based cycle
// detection, and EMBERC_PATH/EMBERC_STDLIB search paths mirroring the
// teacher's AILANG_PATH/AILANG_STDLIB.
package resolver

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/emberc/emberc/internal/ast"
	"github.com/emberc/emberc/internal/errors"
)

const phase = "resolver"

// Import records one named import binding: the name it is bound to in the
// importing module, the name it was exported as, the short name of the
// module it came from, and that module's absolute source path.
type Import struct {
	LocalName    string
	ExportedName string
	SourceModule string
	SourcePath   string
}

// Module is one parsed, resolved source file.
type Module struct {
	Path    string // absolute
	Name    string // basename without extension
	Tree    ast.Node
	Imports []Import
	Exports map[string]bool
	Deps    []string // absolute paths of directly imported modules
}

// Resolver discovers and orders a module dependency graph starting from an
// entry file.
type Resolver struct {
	searchPaths []string
	stdlibPath  string

	modules map[string]*Module // by absolute path
	visited map[string]bool
	stack   []string // currently-being-resolved paths, for cycle detection
}

// New creates a Resolver with search paths drawn from EMBERC_PATH and a
// stdlib path from EMBERC_STDLIB, mirroring the teacher's AILANG_PATH and
// AILANG_STDLIB.
func New() *Resolver {
	return &Resolver{
		searchPaths: defaultSearchPaths(),
		stdlibPath:  defaultStdlibPath(),
		modules:     make(map[string]*Module),
		visited:     make(map[string]bool),
	}
}

func defaultSearchPaths() []string {
	paths := []string{"."}
	if p := os.Getenv("EMBERC_PATH"); p != "" {
		paths = append(paths, strings.Split(p, string(os.PathListSeparator))...)
	}
	return paths
}

func defaultStdlibPath() string {
	if p := os.Getenv("EMBERC_STDLIB"); p != "" {
		return p
	}
	return filepath.Join(".", "stdlib")
}

// Resolve parses entry and its transitive relative imports, returning the
// modules in dependency order: each module appears after every module it
// imports.
func (r *Resolver) Resolve(entry string) ([]*Module, error) {
	absEntry, err := filepath.Abs(entry)
	if err != nil {
		return nil, errors.New(phase, errors.RES001, "cannot resolve entry path: "+entry)
	}

	var order []*Module
	if err := r.visit(absEntry, &order); err != nil {
		return nil, err
	}
	return order, nil
}

// visit performs the depth-first post-order walk: dependencies are
// resolved (and appended to order) before the visiting module itself.
func (r *Resolver) visit(path string, order *[]*Module) error {
	path = normalizeModulePath(path)

	if _, ok := r.modules[path]; ok {
		if r.visited[path] {
			return nil // already emitted
		}
		// Registered but not yet emitted: still on the visiting stack,
		// i.e. reachable from itself — an import cycle.
		return r.cycleError(path)
	}

	mod, err := r.load(path)
	if err != nil {
		return err
	}
	r.modules[path] = mod
	r.stack = append(r.stack, path)
	defer r.popStack()

	for _, dep := range mod.Deps {
		if err := r.visit(dep, order); err != nil {
			return err
		}
	}

	r.visited[path] = true
	*order = append(*order, mod)
	return nil
}

func (r *Resolver) popStack() {
	if len(r.stack) > 0 {
		r.stack = r.stack[:len(r.stack)-1]
	}
}

func (r *Resolver) cycleError(path string) error {
	cycle := append(append([]string{}, r.stack...), path)
	return errors.New(phase, errors.RES003, "import cycle detected: "+strings.Join(cycle, " -> "))
}

// load reads, parses, and extracts the import/export metadata of a single
// module file.
func (r *Resolver) load(path string) (*Module, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.New(phase, errors.RES001, "source file not found: "+path)
	}

	tree, err := ast.ParseFile(path)
	if err != nil {
		return nil, errors.New(phase, errors.RES002, "failed to parse "+path+": "+err.Error())
	}
	if tree.HasError() {
		return nil, errors.NewAt(phase, errors.RES002,
			"source file contains a syntax error: "+path, errors.NodeSpan(tree))
	}

	imports, deps, err := extractImports(tree, path)
	if err != nil {
		return nil, err
	}

	return &Module{
		Path:    path,
		Name:    moduleName(path),
		Tree:    tree,
		Imports: imports,
		Exports: extractExports(tree),
		Deps:    deps,
	}, nil
}

// extractImports walks the program's top-level import statements, resolving
// each relative specifier to an absolute path. Non-relative specifiers are
// ignored: they name an external package, which is out of scope for this
// compiler.
func extractImports(program ast.Node, fromPath string) ([]Import, []string, error) {
	var imports []Import
	var deps []string
	seen := make(map[string]bool)

	for _, child := range program.Children() {
		if child.Kind() != ast.KindImportStatement {
			continue
		}
		source := child.ChildByField("source")
		if source == nil {
			continue
		}
		spec := unquote(source.Text())
		if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") {
			continue // external package: reserved for a future story
		}

		resolvedPath, err := resolveRelative(spec, fromPath)
		if err != nil {
			return nil, nil, err
		}

		for _, name := range importedNames(child) {
			imports = append(imports, Import{
				LocalName:    name.local,
				ExportedName: name.exported,
				SourceModule: moduleName(resolvedPath),
				SourcePath:   resolvedPath,
			})
		}

		if !seen[resolvedPath] {
			seen[resolvedPath] = true
			deps = append(deps, resolvedPath)
		}
	}

	return imports, deps, nil
}

type bindingName struct {
	local    string
	exported string
}

// importedNames collects each named import binding under an
// import_statement node: a local binding name and the name it was exported
// as under its source module (identical unless the binding was aliased).
func importedNames(importStmt ast.Node) []bindingName {
	var names []bindingName
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		if n.Kind() == ast.KindImportSpecifier {
			nameNode := n.ChildByField("name")
			if nameNode == nil {
				return
			}
			exported := nameNode.Text()
			local := exported
			if alias := n.ChildByField("alias"); alias != nil {
				local = alias.Text()
			}
			names = append(names, bindingName{local: local, exported: exported})
			return
		}
		for _, child := range n.Children() {
			walk(child)
		}
	}
	walk(importStmt)
	return names
}

// extractExports collects the names exported by a module: a function
// declaration decorated with an export modifier, or the names listed in an
// `export { names… }` clause.
func extractExports(program ast.Node) map[string]bool {
	exports := make(map[string]bool)
	for _, child := range program.Children() {
		if child.Kind() != ast.KindExportStatement {
			continue
		}
		if decl := child.ChildByField("declaration"); decl != nil {
			if decl.Kind() == ast.KindFunctionDecl {
				if name := decl.ChildByField("name"); name != nil {
					exports[name.Text()] = true
				}
			}
			continue
		}
		for _, c := range child.Children() {
			if c.Kind() != ast.KindExportClause {
				continue
			}
			for _, spec := range c.Children() {
				if spec.Kind() != ast.KindExportSpecifier {
					continue
				}
				if alias := spec.ChildByField("alias"); alias != nil {
					exports[alias.Text()] = true
				} else if name := spec.ChildByField("name"); name != nil {
					exports[name.Text()] = true
				}
			}
		}
	}
	return exports
}

func resolveRelative(spec, fromPath string) (string, error) {
	dir := filepath.Dir(fromPath)
	path := filepath.Join(dir, spec)
	if !strings.HasSuffix(path, ".ts") {
		path += ".ts"
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.New(phase, errors.RES001, "cannot resolve import: "+spec)
	}
	return abs, nil
}

func moduleName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".ts")
}

func normalizeModulePath(path string) string {
	return filepath.Clean(path)
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

