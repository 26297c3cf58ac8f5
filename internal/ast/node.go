// Package ast defines the narrow interface the compiler uses to query a
// concrete syntax tree produced by an external parser. No package outside
// ast imports the underlying parser library directly; everything downstream
// of the module resolver sees only Node.
package ast

import "fmt"

// Kind identifies the syntactic category of a Node. Values mirror the node
// type strings produced by the tree-sitter TypeScript grammar, so the
// production adapter in treesitter.go can convert one to the other with a
// straight string cast.
type Kind string

const (
	KindProgram             Kind = "program"
	KindImportStatement     Kind = "import_statement"
	KindExportStatement     Kind = "export_statement"
	KindInterfaceDecl       Kind = "interface_declaration"
	KindPropertySignature   Kind = "property_signature"
	KindFunctionDecl        Kind = "function_declaration"
	KindFunctionSignature   Kind = "function_signature"
	KindAmbientDecl         Kind = "ambient_declaration"
	KindRequiredParameter   Kind = "required_parameter"
	KindOptionalParameter   Kind = "optional_parameter"
	KindRestParameter       Kind = "rest_pattern"
	KindStatementBlock      Kind = "statement_block"
	KindReturnStatement     Kind = "return_statement"
	KindLexicalDecl         Kind = "lexical_declaration"
	KindVariableDeclarator  Kind = "variable_declarator"
	KindExpressionStatement Kind = "expression_statement"
	KindIfStatement         Kind = "if_statement"
	KindWhileStatement      Kind = "while_statement"
	KindForStatement        Kind = "for_statement"
	KindEmptyStatement      Kind = "empty_statement"
	KindAssignmentExpr      Kind = "assignment_expression"
	KindBinaryExpr          Kind = "binary_expression"
	KindUnaryExpr           Kind = "unary_expression"
	KindParenthesizedExpr   Kind = "parenthesized_expression"
	KindCallExpr            Kind = "call_expression"
	KindMemberExpr          Kind = "member_expression"
	KindSubscriptExpr       Kind = "subscript_expression"
	KindIdentifier          Kind = "identifier"
	KindThis                Kind = "this"
	KindNumber              Kind = "number"
	KindString              Kind = "string"
	KindTrue                Kind = "true"
	KindFalse               Kind = "false"
	KindTypeAnnotation      Kind = "type_annotation"
	KindPredefinedType      Kind = "predefined_type"
	KindTypeIdentifier      Kind = "type_identifier"
	KindGenericType         Kind = "generic_type"
	KindArrayType           Kind = "array_type"
	KindTypeArguments       Kind = "type_arguments"
	KindTypeParameters      Kind = "type_parameters"
	KindThisType            Kind = "this_type"
	KindNamedImports        Kind = "named_imports"
	KindImportSpecifier     Kind = "import_specifier"
	KindExportClause        Kind = "export_clause"
	KindExportSpecifier     Kind = "export_specifier"

	// KindError marks a node tree-sitter could not parse into a known
	// production; the resolver reports it as a parse failure.
	KindError Kind = "ERROR"
)

// Pos is a single source location, one-based line/column, as produced by
// the parser.
type Pos struct {
	File   string
	Line   int
	Column int
	Byte   int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span is a half-open source range.
type Span struct {
	Start Pos
	End   Pos
}

// Node is the whole of what the compiler asks of a parsed program: its
// kind, its named children, its verbatim source text, and where it came
// from. Everything from the module resolver down is written against this
// interface; it is never aware that the nodes underneath happen to be
// tree-sitter nodes, or fixture nodes built by hand in a test.
type Node interface {
	// Kind reports the syntactic category of this node.
	Kind() Kind

	// Children returns the node's named children in source order.
	Children() []Node

	// ChildByField returns the named child bound to the given grammar
	// field (e.g. "name", "body", "value"), or nil if absent.
	ChildByField(field string) Node

	// Text returns the verbatim source text spanned by this node.
	Text() string

	// Pos returns the node's starting source position.
	Pos() Pos

	// HasError reports whether this node (or a descendant) could not be
	// parsed into a known production.
	HasError() bool
}
