package types

import "strings"

// primitiveIR maps leaf primitive surface names to their IR spelling, used
// both by Map and by Mangle (a non-generic leaf's mangled form is its IR
// name).
var primitiveIR = map[string]string{
	"number":  "i32",
	"i32":     "i32",
	"i64":     "i64",
	"f32":     "float",
	"f64":     "double",
	"boolean": "i1",
	"string":  "i8*",
	"void":    "void",
}

// Mangle computes the stable mangled name for a Surface, used both as the
// monomorphized record name (Box<number> -> Box_i32) and, recursively, as
// the pieces joined into an outer mangled name (Box<Box<number>> ->
// Box_Box_i32).
//
// Non-generic leaf: the mangled form is the IR name (a primitive's IR
// spelling, or a record name verbatim). Generic reference Name<A1, ...>:
// "Name_" followed by each argument's mangled form, joined by "_",
// applied recursively for nested generics.
func Mangle(s *Surface) string {
	if s.Elem != nil {
		// Arrays never appear as generic type arguments in the supported
		// subset, but mangle consistently rather than panic if they do.
		return Mangle(s.Elem) + "_arr"
	}
	if len(s.Args) == 0 {
		if ir, ok := primitiveIR[s.Leaf]; ok {
			return ir
		}
		return s.Leaf
	}
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = Mangle(a)
	}
	return s.Leaf + "_" + strings.Join(parts, "_")
}
