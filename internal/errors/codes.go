// Package errors provides centralized, structured error reporting for the
// compiler. All error codes follow a consistent phase-prefixed taxonomy.
package errors

// Error code constants, organized by compiler phase. Each maps to exactly
// one of the fatal error kinds enumerated in the specification.
const (
	// ============================================================
	// Resolver errors (RES###)
	// ============================================================

	// RES001 indicates a source file could not be found on disk.
	RES001 = "RES001"

	// RES002 indicates the parser produced a tree containing an ERROR node.
	RES002 = "RES002"

	// RES003 indicates an import cycle was detected while resolving the
	// module dependency graph.
	RES003 = "RES003"

	// ============================================================
	// Struct registry errors (STR###)
	// ============================================================

	// STR001 indicates a field carries an unsupported modifier (e.g. an
	// optional field, which this language subset does not support).
	STR001 = "STR001"

	// STR002 indicates a record name was registered more than once.
	STR002 = "STR002"

	// STR003 indicates a cycle in record field types was detected during
	// the dependency-ordered emission walk.
	STR003 = "STR003"

	// ============================================================
	// Type mapper errors (TYP###)
	// ============================================================

	// TYP001 indicates a reference to an unregistered record type.
	TYP001 = "TYP001"

	// TYP002 indicates an unrecognized primitive or surface type name.
	TYP002 = "TYP002"

	// ============================================================
	// Symbol table errors (SYM###)
	// ============================================================

	// SYM001 indicates a lookup for a name not bound in any enclosing scope.
	SYM001 = "SYM001"

	// ============================================================
	// Walker errors (WLK###)
	// ============================================================

	// WLK001 indicates an unresolved identifier, function, method, or type.
	WLK001 = "WLK001"

	// WLK002 indicates an AST node kind outside the supported subset.
	WLK002 = "WLK002"

	// WLK003 indicates an assignment whose left-hand side is not an
	// identifier, array element, or property path.
	WLK003 = "WLK003"

	// WLK004 indicates misuse of the sizeof<T>() intrinsic: a missing type
	// argument or a reference to an unregistered record.
	WLK004 = "WLK004"

	// ============================================================
	// Emitter errors (EMT###)
	// ============================================================

	// EMT001 indicates an internal emitter invariant was violated (e.g. a
	// duplicate extern or string constant slipped past deduplication).
	EMT001 = "EMT001"

	// ============================================================
	// CLI driver errors (CLI###)
	// ============================================================

	// CLI001 indicates a requested driver feature needs the external LLVM
	// toolchain, which this build does not invoke.
	CLI001 = "CLI001"
)
