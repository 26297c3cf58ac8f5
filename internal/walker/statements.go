package walker

import (
	"fmt"
	"strings"

	"github.com/emberc/emberc/internal/ast"
	"github.com/emberc/emberc/internal/errors"
	"github.com/emberc/emberc/internal/types"
)

// lowerBlock lowers every statement in a block, in its own pushed scope,
// and reports whether the last statement in the block was itself a direct
// return — the signal lowerFunction uses to decide whether a trailing
// `ret void` is still needed.
func (w *Walker) lowerBlock(node ast.Node) (lastWasReturn bool, err error) {
	w.syms.PushScope()
	defer w.syms.PopScope()

	stmts := node.Children()
	for i, s := range stmts {
		ret, err := w.lowerStatement(s)
		if err != nil {
			return false, err
		}
		if i == len(stmts)-1 {
			lastWasReturn = ret
		}
	}
	return lastWasReturn, nil
}

// lowerStatement lowers one statement, reporting whether it was a direct
// return (as opposed to one nested inside a branch or loop the walker
// cannot statically prove exhaustive).
func (w *Walker) lowerStatement(node ast.Node) (isReturn bool, err error) {
	switch node.Kind() {
	case ast.KindReturnStatement:
		return true, w.lowerReturn(node)
	case ast.KindLexicalDecl:
		return false, w.lowerVarDecl(node)
	case ast.KindExpressionStatement:
		return false, w.lowerExprStatement(node)
	case ast.KindIfStatement:
		return false, w.lowerIf(node)
	case ast.KindWhileStatement:
		return false, w.lowerWhile(node)
	case ast.KindForStatement:
		return false, w.lowerFor(node)
	case ast.KindStatementBlock:
		return w.lowerBlock(node)
	case ast.KindEmptyStatement:
		return false, nil
	default:
		return false, errors.NewAt(phase, errors.WLK002,
			fmt.Sprintf("unsupported statement kind %q", node.Kind()), errors.NodeSpan(node))
	}
}

// lowerReturn lowers a return statement. Per the preserved historical
// behavior of this lowering, a value-returning `return expr` always uses
// IR type i32, regardless of the enclosing function's declared return
// type — see the regression test pinning this in walker_test.go.
func (w *Walker) lowerReturn(node ast.Node) error {
	children := node.Children()
	if len(children) == 0 {
		w.emit.RetVoid()
		return nil
	}
	res, err := w.lowerExpr(children[0])
	if err != nil {
		return err
	}
	w.emit.Ret("i32", res.Reg)
	return nil
}

// lowerVarDecl lowers a `let`/`const` declaration, one or more declarators.
// A record-typed variable initialized from an i8*-valued expression (the
// `malloc(sizeof<R>())` convention) gets a bitcast inserted before the
// store.
func (w *Walker) lowerVarDecl(node ast.Node) error {
	for _, d := range node.Children() {
		if d.Kind() != ast.KindVariableDeclarator {
			continue
		}
		name := d.ChildByField("name").Text()

		var declaredType string
		if typeNode := d.ChildByField("type"); typeNode != nil {
			surface, err := types.ParseSurface(typeNode)
			if err != nil {
				return err
			}
			declaredType, err = w.tmap.Map(surface)
			if err != nil {
				return err
			}
		}

		var value exprResult
		hasValue := false
		if valueNode := d.ChildByField("value"); valueNode != nil {
			hasValue = true
			v, err := w.lowerExpr(valueNode)
			if err != nil {
				return err
			}
			value = v
		}

		irType := declaredType
		if irType == "" {
			irType = value.IRType
		}

		slot := w.syms.Declare(name, irType)
		w.emit.Alloca(slot.Reg, irType)

		if hasValue {
			val := value.Reg
			if strings.HasPrefix(irType, "%") && strings.HasSuffix(irType, "*") && value.IRType == "i8*" {
				tmp := w.syms.NewTemp()
				w.emit.Bitcast(tmp, "i8*", val, irType)
				val = tmp
			}
			w.emit.Store(irType, val, slot.Reg)
		}
	}
	return nil
}

func (w *Walker) lowerExprStatement(node ast.Node) error {
	children := node.Children()
	if len(children) == 0 {
		return nil
	}
	_, err := w.lowerExpr(children[0])
	return err
}

// lowerCondition lowers a branch condition to an i1 register: an
// already-i1 result (from a comparison) passes through; anything else is
// compared not-equal to zero.
func (w *Walker) lowerCondition(node ast.Node) (string, error) {
	res, err := w.lowerExpr(node)
	if err != nil {
		return "", err
	}
	if res.IRType == "i1" {
		return res.Reg, nil
	}
	tmp := w.syms.NewTemp()
	w.emit.CompareOp(tmp, "icmp", "ne", "i32", res.Reg, "0")
	return tmp, nil
}

func (w *Walker) lowerIf(node ast.Node) error {
	condReg, err := w.lowerCondition(node.ChildByField("condition"))
	if err != nil {
		return err
	}

	thenLabel := w.syms.NewLabel("if.then")
	endLabel := w.syms.NewLabel("if.end")
	elseNode := node.ChildByField("alternative")

	if elseNode == nil {
		w.emit.CondBr(condReg, thenLabel, endLabel)
		w.emit.Label(thenLabel)
		thenReturned, err := w.lowerStatement(node.ChildByField("consequence"))
		if err != nil {
			return err
		}
		if !thenReturned {
			w.emit.Br(endLabel)
		}
		w.emit.Label(endLabel)
		return nil
	}

	elseLabel := w.syms.NewLabel("if.else")
	w.emit.CondBr(condReg, thenLabel, elseLabel)
	w.emit.Label(thenLabel)
	thenReturned, err := w.lowerStatement(node.ChildByField("consequence"))
	if err != nil {
		return err
	}
	if !thenReturned {
		w.emit.Br(endLabel)
	}
	w.emit.Label(elseLabel)
	elseReturned, err := w.lowerStatement(elseNode)
	if err != nil {
		return err
	}
	if !elseReturned {
		w.emit.Br(endLabel)
	}
	w.emit.Label(endLabel)
	return nil
}

func (w *Walker) lowerWhile(node ast.Node) error {
	condLabel := w.syms.NewLabel("while.cond")
	bodyLabel := w.syms.NewLabel("while.body")
	endLabel := w.syms.NewLabel("while.end")

	w.emit.Br(condLabel)
	w.emit.Label(condLabel)
	condReg, err := w.lowerCondition(node.ChildByField("condition"))
	if err != nil {
		return err
	}
	w.emit.CondBr(condReg, bodyLabel, endLabel)

	w.emit.Label(bodyLabel)
	bodyReturned, err := w.lowerStatement(node.ChildByField("body"))
	if err != nil {
		return err
	}
	if !bodyReturned {
		w.emit.Br(condLabel)
	}
	w.emit.Label(endLabel)
	return nil
}

// lowerFor lowers a for loop to: initializer, a cond block that either
// conditionally branches (a condition is present) or unconditionally
// branches into the body (no condition — an infinite loop), the body, an
// optional incrementer, a branch back to cond, and the end label.
func (w *Walker) lowerFor(node ast.Node) error {
	w.syms.PushScope()
	defer w.syms.PopScope()

	if initNode := node.ChildByField("initializer"); initNode != nil {
		if err := w.lowerForInit(initNode); err != nil {
			return err
		}
	}

	condLabel := w.syms.NewLabel("for.cond")
	bodyLabel := w.syms.NewLabel("for.body")
	endLabel := w.syms.NewLabel("for.end")

	w.emit.Br(condLabel)
	w.emit.Label(condLabel)

	condNode := node.ChildByField("condition")
	if condNode == nil {
		w.emit.Br(bodyLabel)
	} else {
		condReg, err := w.lowerCondition(condNode)
		if err != nil {
			return err
		}
		w.emit.CondBr(condReg, bodyLabel, endLabel)
	}

	w.emit.Label(bodyLabel)
	bodyReturned, err := w.lowerStatement(node.ChildByField("body"))
	if err != nil {
		return err
	}
	if !bodyReturned {
		if incNode := node.ChildByField("increment"); incNode != nil {
			if _, err := w.lowerExpr(incNode); err != nil {
				return err
			}
		}
		w.emit.Br(condLabel)
	}
	w.emit.Label(endLabel)
	return nil
}

func (w *Walker) lowerForInit(node ast.Node) error {
	if node.Kind() == ast.KindLexicalDecl {
		return w.lowerVarDecl(node)
	}
	_, err := w.lowerExpr(node)
	return err
}
