package walker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/emberc/emberc/internal/ast"
	"github.com/emberc/emberc/internal/emitter"
	"github.com/emberc/emberc/internal/errors"
	"github.com/emberc/emberc/internal/types"
)

// exprResult is an expression's lowered value: a register name (or a
// literal text, for constants that need no instruction) together with its
// IR type, carried together so callers never have to re-derive a type from
// a register's spelling (the "boolean coercion heuristic" design note).
type exprResult struct {
	Reg    string
	IRType string
}

func (w *Walker) lowerExpr(node ast.Node) (exprResult, error) {
	switch node.Kind() {
	case ast.KindNumber:
		return exprResult{Reg: node.Text(), IRType: "i32"}, nil

	case ast.KindTrue:
		return exprResult{Reg: "1", IRType: "i1"}, nil

	case ast.KindFalse:
		return exprResult{Reg: "0", IRType: "i1"}, nil

	case ast.KindString:
		return w.lowerStringLiteral(node)

	case ast.KindIdentifier:
		return w.lowerIdentifierReadByName(node)

	case ast.KindThis:
		return w.lowerIdentifierReadByName(node)

	case ast.KindParenthesizedExpr:
		children := node.Children()
		if len(children) == 0 {
			return exprResult{}, errors.New(phase, errors.WLK002, "empty parenthesized expression")
		}
		return w.lowerExpr(children[0])

	case ast.KindUnaryExpr:
		return w.lowerUnary(node)

	case ast.KindBinaryExpr:
		return w.lowerBinary(node)

	case ast.KindAssignmentExpr:
		return w.lowerAssignment(node)

	case ast.KindCallExpr:
		return w.lowerCall(node)

	case ast.KindMemberExpr:
		ptr, pointeeType, err := w.addressOf(node)
		if err != nil {
			return exprResult{}, err
		}
		tmp := w.syms.NewTemp()
		w.emit.Load(tmp, pointeeType, ptr)
		return exprResult{Reg: tmp, IRType: pointeeType}, nil

	case ast.KindSubscriptExpr:
		ptr, elemType, err := w.addressOfIndex(node)
		if err != nil {
			return exprResult{}, err
		}
		tmp := w.syms.NewTemp()
		w.emit.Load(tmp, elemType, ptr)
		return exprResult{Reg: tmp, IRType: elemType}, nil

	default:
		return exprResult{}, errors.NewAt(phase, errors.WLK002,
			fmt.Sprintf("unsupported expression kind %q", node.Kind()), errors.NodeSpan(node))
	}
}

func (w *Walker) lowerStringLiteral(node ast.Node) (exprResult, error) {
	raw := unquoteString(node.Text())
	global, length := w.emit.AddStringConstant(raw)
	arrType := fmt.Sprintf("[%d x i8]", length)
	tmp := w.syms.NewTemp()
	w.emit.Gep(tmp, arrType, arrType+"*", global, []string{"i32 0", "i32 0"})
	return exprResult{Reg: tmp, IRType: "i8*"}, nil
}

func (w *Walker) lowerIdentifierReadByName(node ast.Node) (exprResult, error) {
	name := node.Text()
	v, ok := w.syms.Lookup(name)
	if !ok {
		return exprResult{}, errors.NewAt(phase, errors.WLK001,
			fmt.Sprintf("unresolved identifier %q", name), errors.NodeSpan(node))
	}
	tmp := w.syms.NewTemp()
	w.emit.Load(tmp, v.IRType, v.Reg)
	return exprResult{Reg: tmp, IRType: v.IRType}, nil
}

func (w *Walker) lowerUnary(node ast.Node) (exprResult, error) {
	op := node.ChildByField("operator").Text()
	arg, err := w.lowerExpr(node.ChildByField("argument"))
	if err != nil {
		return exprResult{}, err
	}

	switch op {
	case "-":
		tmp := w.syms.NewTemp()
		w.emit.BinaryOp(tmp, "sub", "i32", "0", arg.Reg)
		return exprResult{Reg: tmp, IRType: "i32"}, nil
	case "!":
		tmp := w.syms.NewTemp()
		w.emit.CompareOp(tmp, "icmp", "eq", "i32", arg.Reg, "0")
		return exprResult{Reg: tmp, IRType: "i1"}, nil
	}
	return exprResult{}, errors.NewAt(phase, errors.WLK002,
		fmt.Sprintf("unsupported unary operator %q", op), errors.NodeSpan(node))
}

func (w *Walker) lowerBinary(node ast.Node) (exprResult, error) {
	op := node.ChildByField("operator").Text()
	left, err := w.lowerExpr(node.ChildByField("left"))
	if err != nil {
		return exprResult{}, err
	}
	right, err := w.lowerExpr(node.ChildByField("right"))
	if err != nil {
		return exprResult{}, err
	}

	irType := left.IRType
	switch op {
	case "<", ">", "<=", ">=", "==", "===", "!=", "!==":
		instr, pred, err := types.GetCompareOp(op, irType)
		if err != nil {
			return exprResult{}, err
		}
		tmp := w.syms.NewTemp()
		w.emit.CompareOp(tmp, instr, pred, irType, left.Reg, right.Reg)
		return exprResult{Reg: tmp, IRType: "i1"}, nil
	default:
		instr, err := types.GetBinaryOp(op, irType)
		if err != nil {
			return exprResult{}, err
		}
		tmp := w.syms.NewTemp()
		w.emit.BinaryOp(tmp, instr, irType, left.Reg, right.Reg)
		return exprResult{Reg: tmp, IRType: irType}, nil
	}
}

// lowerAssignment lowers an assignment expression. An assignment's value is
// the expression's result, mirroring the surface language's
// expression-assignment semantics.
func (w *Walker) lowerAssignment(node ast.Node) (exprResult, error) {
	target := node.ChildByField("left")
	val, err := w.lowerExpr(node.ChildByField("right"))
	if err != nil {
		return exprResult{}, err
	}

	switch target.Kind() {
	case ast.KindIdentifier:
		v, ok := w.syms.Lookup(target.Text())
		if !ok {
			return exprResult{}, errors.NewAt(phase, errors.WLK001,
				fmt.Sprintf("unresolved identifier %q", target.Text()), errors.NodeSpan(target))
		}
		w.emit.Store(v.IRType, val.Reg, v.Reg)
		return val, nil

	case ast.KindSubscriptExpr:
		ptr, elemType, err := w.addressOfIndex(target)
		if err != nil {
			return exprResult{}, err
		}
		w.emit.Store(elemType, val.Reg, ptr)
		return val, nil

	case ast.KindMemberExpr:
		ptr, pointeeType, err := w.addressOf(target)
		if err != nil {
			return exprResult{}, err
		}
		w.emit.Store(pointeeType, val.Reg, ptr)
		return val, nil

	default:
		return exprResult{}, errors.NewAt(phase, errors.WLK003,
			"assignment target must be an identifier, array element, or property path", errors.NodeSpan(target))
	}
}

// addressOf computes the address and pointee IR type (without its trailing
// `*`) of an l-value expression: an identifier or `this` reference loads
// the record pointer out of its slot; a property access recurses into its
// object and computes a getelementptr off the resolved field index.
func (w *Walker) addressOf(node ast.Node) (ptrReg, pointeeIRType string, err error) {
	switch node.Kind() {
	case ast.KindIdentifier, ast.KindThis:
		return w.loadSlotAsAddress(node)

	case ast.KindMemberExpr:
		parentPtr, parentType, err := w.addressOf(node.ChildByField("object"))
		if err != nil {
			return "", "", err
		}
		propNode := node.ChildByField("property")
		propName := propNode.Text()
		recordName := strings.TrimPrefix(parentType, "%")
		field, ok := w.structs.LookupField(recordName, propName)
		if !ok {
			return "", "", errors.NewAt(phase, errors.WLK001,
				fmt.Sprintf("record %q has no field %q", recordName, propName), errors.NodeSpan(propNode))
		}
		fieldAddr := w.syms.NewTemp()
		w.emit.Gep(fieldAddr, parentType, parentType+"*", parentPtr, []string{"i32 0", fmt.Sprintf("i32 %d", field.Index)})

		if !strings.HasSuffix(field.IRType, "*") {
			return fieldAddr, field.IRType, nil
		}
		// field itself stores a pointer (a nested record reference):
		// dereference it once so the result composes as a base for the
		// next level of member access, same as the identifier base case.
		deref := w.syms.NewTemp()
		w.emit.Load(deref, field.IRType, fieldAddr)
		return deref, strings.TrimSuffix(field.IRType, "*"), nil

	default:
		return "", "", errors.NewAt(phase, errors.WLK003, "unsupported l-value expression", errors.NodeSpan(node))
	}
}

func (w *Walker) loadSlotAsAddress(node ast.Node) (ptrReg, pointeeIRType string, err error) {
	name := node.Text()
	v, ok := w.syms.Lookup(name)
	if !ok {
		return "", "", errors.NewAt(phase, errors.WLK001,
			fmt.Sprintf("unresolved identifier %q", name), errors.NodeSpan(node))
	}
	tmp := w.syms.NewTemp()
	w.emit.Load(tmp, v.IRType, v.Reg)
	return tmp, strings.TrimSuffix(v.IRType, "*"), nil
}

func (w *Walker) addressOfIndex(node ast.Node) (ptrReg, elemIRType string, err error) {
	base, err := w.lowerExpr(node.ChildByField("object"))
	if err != nil {
		return "", "", err
	}
	idx, err := w.lowerExpr(node.ChildByField("index"))
	if err != nil {
		return "", "", err
	}
	elemType := strings.TrimSuffix(base.IRType, "*")
	tmp := w.syms.NewTemp()
	w.emit.Gep(tmp, elemType, base.IRType, base.Reg, []string{"i32 " + idx.Reg})
	return tmp, elemType, nil
}

// lowerCall lowers a call expression: the sizeof<T>() intrinsic, a uniform
// method call (obj.m(args)), or an ordinary function/extern call.
func (w *Walker) lowerCall(node ast.Node) (exprResult, error) {
	callee := node.ChildByField("function")
	argsNode := node.ChildByField("arguments")

	if callee.Kind() == ast.KindIdentifier && callee.Text() == "sizeof" {
		return w.lowerSizeof(node, node.ChildByField("type_arguments"))
	}

	if callee.Kind() == ast.KindMemberExpr {
		return w.lowerMethodCall(callee, argsNode)
	}

	if callee.Kind() != ast.KindIdentifier {
		return exprResult{}, errors.NewAt(phase, errors.WLK002, "unsupported call target", errors.NodeSpan(callee))
	}
	name := callee.Text()

	mangled, returnIR, params, variadic, found := w.resolveCallee(name)
	if !found {
		return exprResult{}, errors.NewAt(phase, errors.WLK001,
			fmt.Sprintf("unresolved function %q", name), errors.NodeSpan(callee))
	}

	args, err := w.lowerArgs(argsNode, params, variadic)
	if err != nil {
		return exprResult{}, err
	}

	var destReg string
	if returnIR != "void" {
		destReg = w.syms.NewTemp()
	}
	if variadic {
		w.emit.VariadicCall(destReg, returnIR, mangled, params, args)
	} else {
		w.emit.Call(destReg, returnIR, mangled, args)
	}
	return exprResult{Reg: destReg, IRType: returnIR}, nil
}

// resolveCallee looks up a plain-identifier call target in the order the
// spec requires: the import map (confirming the binding, then resolving it
// through the FunctionTable by its local name), the FunctionTable directly
// for a same-module call, then the ExternTable.
func (w *Walker) resolveCallee(name string) (mangled, returnIR string, params []emitter.Param, variadic bool, found bool) {
	if _, imported := w.imports[name]; imported {
		if fn, ok := w.fns.Lookup(name); ok {
			return fn.MangledName, fn.ReturnIR, fn.Params, false, true
		}
		return "", "", nil, false, false
	}
	if fn, ok := w.fns.Lookup(name); ok {
		return fn.MangledName, fn.ReturnIR, fn.Params, false, true
	}
	if sig, ok := w.ext.Lookup(name); ok {
		return sig.Name, sig.ReturnIR, sig.Params, sig.Variadic, true
	}
	return "", "", nil, false, false
}

// lowerArgs lowers a call's argument list. Each argument's IR type is the
// callee's declared parameter type at that position; positions beyond the
// declared arity (only reachable for variadic externs) fall back to i32,
// or i8* when the argument is itself a string literal.
func (w *Walker) lowerArgs(argsNode ast.Node, params []emitter.Param, variadic bool) ([]emitter.Arg, error) {
	var argNodes []ast.Node
	if argsNode != nil {
		argNodes = argsNode.Children()
	}
	args := make([]emitter.Arg, 0, len(argNodes))
	for i, a := range argNodes {
		res, err := w.lowerExpr(a)
		if err != nil {
			return nil, err
		}
		irType := res.IRType
		switch {
		case i < len(params):
			irType = params[i].IRType
		case variadic && a.Kind() == ast.KindString:
			irType = "i8*"
		case variadic:
			irType = "i32"
		}
		args = append(args, emitter.Arg{IRType: irType, Value: res.Reg})
	}
	return args, nil
}

// lowerMethodCall lowers obj.m(args) as a direct call to the mangled
// Record_m, with the receiver's address prepended as the first argument.
// Resolution is entirely static: there are no vtables.
func (w *Walker) lowerMethodCall(member, argsNode ast.Node) (exprResult, error) {
	recv, err := w.lowerExpr(member.ChildByField("object"))
	if err != nil {
		return exprResult{}, err
	}
	propNode := member.ChildByField("property")
	methodName := propNode.Text()
	recordName := strings.TrimSuffix(strings.TrimPrefix(recv.IRType, "%"), "*")

	fn, ok := w.fns.LookupMethod(recordName, methodName)
	if !ok {
		return exprResult{}, errors.NewAt(phase, errors.WLK001,
			fmt.Sprintf("unknown method %s.%s", recordName, methodName), errors.NodeSpan(propNode))
	}

	var restParams []emitter.Param
	if len(fn.Params) > 1 {
		restParams = fn.Params[1:]
	}
	restArgs, err := w.lowerArgs(argsNode, restParams, false)
	if err != nil {
		return exprResult{}, err
	}

	args := append([]emitter.Arg{{IRType: recv.IRType, Value: recv.Reg}}, restArgs...)

	var destReg string
	if fn.ReturnIR != "void" {
		destReg = w.syms.NewTemp()
	}
	w.emit.Call(destReg, fn.ReturnIR, fn.MangledName, args)
	return exprResult{Reg: destReg, IRType: fn.ReturnIR}, nil
}

// lowerSizeof evaluates the sizeof<T>() intrinsic to an integer literal:
// the sum of T's field sizes, per the StructRegistry's layout.
func (w *Walker) lowerSizeof(callNode, typeArgsNode ast.Node) (exprResult, error) {
	if typeArgsNode == nil || len(typeArgsNode.Children()) == 0 {
		return exprResult{}, errors.NewAt(phase, errors.WLK004,
			"sizeof<T>() requires a type argument", errors.NodeSpan(callNode))
	}
	argNode := typeArgsNode.Children()[0]
	surface, err := types.ParseSurface(argNode)
	if err != nil {
		return exprResult{}, err
	}
	name := surface.Leaf
	if len(surface.Args) > 0 {
		name = types.Mangle(surface)
	}
	rec, ok := w.structs.Lookup(name)
	if !ok {
		return exprResult{}, errors.NewAt(phase, errors.WLK004,
			fmt.Sprintf("sizeof: unregistered type %q", name), errors.NodeSpan(argNode))
	}
	return exprResult{Reg: strconv.Itoa(rec.Size), IRType: "i32"}, nil
}
