package ast

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"golang.org/x/text/unicode/norm"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// normalizeSource strips a UTF-8 BOM and applies Unicode NFC normalization,
// so source files that are byte-identical after accounting for encoding
// variation parse into identical trees.
func normalizeSource(src []byte) []byte {
	src = bytes.TrimPrefix(src, bomUTF8)
	if !norm.NFC.IsNormal(src) {
		src = norm.NFC.Bytes(src)
	}
	return src
}

// ParseFile reads and parses path with the tree-sitter TypeScript grammar,
// returning the root Node of the resulting concrete syntax tree.
func ParseFile(path string) (Node, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source file: %w", err)
	}
	return Parse(content, path)
}

// Parse parses src (already read into memory) as a TypeScript source file.
// file is used only to stamp source positions and is not re-read.
func Parse(src []byte, file string) (Node, error) {
	src = normalizeSource(src)

	parser := sitter.NewParser()
	parser.SetLanguage(typescript.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}

	return newTSNode(tree.RootNode(), src, file), nil
}

// tsNode wraps a *sitter.Node together with the source bytes it was parsed
// from, so Text() can slice out verbatim source.
type tsNode struct {
	node *sitter.Node
	src  []byte
	file string
}

func newTSNode(n *sitter.Node, src []byte, file string) *tsNode {
	if n == nil {
		return nil
	}
	return &tsNode{node: n, src: src, file: file}
}

func (n *tsNode) Kind() Kind {
	if n.node.IsError() {
		return KindError
	}
	return Kind(n.node.Type())
}

func (n *tsNode) Children() []Node {
	count := int(n.node.NamedChildCount())
	out := make([]Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.node.NamedChild(i)
		if wrapped := newTSNode(child, n.src, n.file); wrapped != nil {
			out = append(out, wrapped)
		}
	}
	return out
}

func (n *tsNode) ChildByField(field string) Node {
	child := n.node.ChildByFieldName(field)
	wrapped := newTSNode(child, n.src, n.file)
	if wrapped == nil {
		return nil
	}
	return wrapped
}

func (n *tsNode) Text() string {
	return string(n.src[n.node.StartByte():n.node.EndByte()])
}

func (n *tsNode) Pos() Pos {
	point := n.node.StartPoint()
	return Pos{
		File:   n.file,
		Line:   int(point.Row) + 1,
		Column: int(point.Column) + 1,
		Byte:   int(n.node.StartByte()),
	}
}

func (n *tsNode) HasError() bool {
	// Mirrors the tree-sitter Rust binding's is_error check: an ERROR node
	// carries the sentinel symbol value math.MaxUint16.
	if n.node.Symbol() == math.MaxUint16 {
		return true
	}
	count := int(n.node.NamedChildCount())
	for i := 0; i < count; i++ {
		if child := newTSNode(n.node.NamedChild(i), n.src, n.file); child != nil && child.HasError() {
			return true
		}
	}
	return false
}
