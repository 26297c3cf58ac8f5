// Package compiler implements the Compilation handle: the single owning
// value for every shared registry in one invocation, threading them
// through the prelude load, module resolution, and per-module walking that
// together turn an entry source file into LLVM textual IR. Grounded on the
// teacher's internal/pipeline package, the top-level orchestrator that
// owns a run's environments and threads them through its own phases —
// collapsed here to the narrower phase list this compiler needs (prelude,
// resolve, walk, emit) instead of parse/elaborate/typecheck/link/eval.
package compiler

import (
	"os"
	"path/filepath"

	"github.com/emberc/emberc/internal/emitter"
	"github.com/emberc/emberc/internal/externs"
	"github.com/emberc/emberc/internal/funcs"
	"github.com/emberc/emberc/internal/prelude"
	"github.com/emberc/emberc/internal/resolver"
	"github.com/emberc/emberc/internal/structs"
	"github.com/emberc/emberc/internal/types"
	"github.com/emberc/emberc/internal/walker"
)

// Compilation is the single owning handle for every registry shared across
// one compilation run. Per the design note against package-level globals,
// every registry is created once here and threaded through the resolver
// and every module's Walker by reference.
type Compilation struct {
	Emitter *emitter.Emitter
	Externs *externs.Table
	Funcs   *funcs.Table
	Structs *structs.Registry
	Types   *types.Mapper
	Target  string // target triple, default arm64-apple-macosx
}

// New creates a Compilation targeting triple, falling back to
// emitter.DefaultTarget when triple is empty.
func New(triple string) *Compilation {
	if triple == "" {
		triple = emitter.DefaultTarget
	}
	reg := structs.New()
	return &Compilation{
		Emitter: emitter.New(triple),
		Externs: externs.New(),
		Funcs:   funcs.New(),
		Structs: reg,
		Types:   types.NewMapper(reg),
		Target:  triple,
	}
}

// preludePath locates the extern manifest: an EMBERC_PRELUDE override, or
// internal/prelude/stdlib.yaml relative to the working directory,
// mirroring the EMBERC_PATH/EMBERC_STDLIB convention internal/resolver
// already uses for module search paths.
func preludePath() string {
	if p := os.Getenv("EMBERC_PRELUDE"); p != "" {
		return p
	}
	return filepath.Join("internal", "prelude", "stdlib.yaml")
}

// Run is the single public entry point: it loads the prelude, resolves
// entryPath's module dependency graph, walks every module in dependency
// order, and returns the finished IR text.
func (c *Compilation) Run(entryPath string) (string, error) {
	if err := prelude.LoadInto(preludePath(), c.Externs); err != nil {
		return "", err
	}
	for _, sig := range c.Externs.All() {
		c.Emitter.AddExternFunction(sig.Name, sig.ReturnIR, sig.Params, sig.Variadic)
	}

	res := resolver.New()
	modules, err := res.Resolve(entryPath)
	if err != nil {
		return "", err
	}

	c.Emitter.Header(moduleID(entryPath))

	for _, mod := range modules {
		w := walker.New(mod, c.Structs, c.Types, c.Externs, c.Funcs, c.Emitter)
		if err := w.Walk(); err != nil {
			return "", err
		}
	}

	return c.Emitter.Output(), nil
}

func moduleID(entryPath string) string {
	base := filepath.Base(entryPath)
	return base[:len(base)-len(filepath.Ext(base))]
}
