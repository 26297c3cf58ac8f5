// Package types implements the TypeMapper: conversion of surface-type
// syntax to IR type strings, generic-instantiation mangling, and the
// binary/compare operator tables the walker consults while lowering
// expressions. Grounded on the fluent constructor shape of the teacher's
// internal/types/builder.go, generalized from building Type ASTs to
// building IR type strings.
package types

import (
	"fmt"
	"strings"

	"github.com/emberc/emberc/internal/ast"
)

// Surface is a parsed surface-type expression, detached from the AST node
// it was read from (per the "no AST node should need to outlive the
// compilation" design note) so it can be cached in a generic template and
// substituted freely during monomorphization.
type Surface struct {
	// Leaf is the type's base name: a primitive ("number", "i64", ...), a
	// record name, or a generic template name. Empty when Elem != nil.
	Leaf string

	// Elem is non-nil when this Surface is an array type T[]; Leaf is
	// unused in that case.
	Elem *Surface

	// Args holds the generic type arguments for a Name<A1, ..., An>
	// reference. Empty for non-generic references.
	Args []*Surface
}

func (s *Surface) String() string {
	if s.Elem != nil {
		return s.Elem.String() + "[]"
	}
	if len(s.Args) == 0 {
		return s.Leaf
	}
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", s.Leaf, strings.Join(parts, ", "))
}

// ParseSurface reads a type-annotation subtree produced by the parser into
// a Surface. node is expected to be (or directly wrap) one of:
// predefined_type, type_identifier, generic_type, or array_type.
func ParseSurface(node ast.Node) (*Surface, error) {
	if node == nil {
		return nil, fmt.Errorf("nil type node")
	}

	switch node.Kind() {
	case ast.KindTypeAnnotation:
		children := node.Children()
		if len(children) == 0 {
			return nil, fmt.Errorf("empty type annotation")
		}
		return ParseSurface(children[0])

	case ast.KindArrayType:
		children := node.Children()
		if len(children) == 0 {
			return nil, fmt.Errorf("array type with no element type")
		}
		elem, err := ParseSurface(children[0])
		if err != nil {
			return nil, err
		}
		return &Surface{Elem: elem}, nil

	case ast.KindGenericType:
		name := node.ChildByField("name")
		argsNode := node.ChildByField("type_arguments")
		if name == nil {
			children := node.Children()
			if len(children) == 0 {
				return nil, fmt.Errorf("generic type with no name")
			}
			name = children[0]
		}
		var args []*Surface
		if argsNode != nil {
			for _, c := range argsNode.Children() {
				arg, err := ParseSurface(c)
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
			}
		}
		return &Surface{Leaf: name.Text(), Args: args}, nil

	case ast.KindPredefinedType, ast.KindTypeIdentifier, ast.KindThisType, ast.KindIdentifier:
		return &Surface{Leaf: node.Text()}, nil

	default:
		// Anything else (a bare identifier-shaped node from a fixture,
		// etc.) is accepted as a leaf name on its literal text — keeps
		// ParseSurface permissive for hand-built test trees.
		if text := node.Text(); text != "" {
			return &Surface{Leaf: text}, nil
		}
		return nil, fmt.Errorf("unsupported type node kind %q", node.Kind())
	}
}
