package types

import (
	"fmt"

	"github.com/emberc/emberc/internal/errors"
)

func isFloatIR(irType string) bool {
	return irType == "float" || irType == "double"
}

func isIntegerIR(irType string) bool {
	switch irType {
	case "i1", "i8", "i16", "i32", "i64":
		return true
	}
	return false
}

// GetCompareOp maps a surface comparison operator and an operand IR type to
// the LLVM comparison instruction and predicate to use. Strict ("===") and
// loose ("==") equality (and their negations) are treated as equivalent.
func GetCompareOp(op, irType string) (instr, predicate string, err error) {
	if isFloatIR(irType) {
		instr = "fcmp"
		switch op {
		case "<":
			return instr, "olt", nil
		case ">":
			return instr, "ogt", nil
		case "<=":
			return instr, "ole", nil
		case ">=":
			return instr, "oge", nil
		case "==", "===":
			return instr, "oeq", nil
		case "!=", "!==":
			return instr, "one", nil
		}
		return "", "", errors.New("types", errors.TYP002, fmt.Sprintf("unsupported comparison operator %q", op))
	}

	if isIntegerIR(irType) {
		instr = "icmp"
		switch op {
		case "<":
			return instr, "slt", nil
		case ">":
			return instr, "sgt", nil
		case "<=":
			return instr, "sle", nil
		case ">=":
			return instr, "sge", nil
		case "==", "===":
			return instr, "eq", nil
		case "!=", "!==":
			return instr, "ne", nil
		}
		return "", "", errors.New("types", errors.TYP002, fmt.Sprintf("unsupported comparison operator %q", op))
	}

	return "", "", errors.New("types", errors.TYP002,
		fmt.Sprintf("comparison unsupported for IR type %q", irType))
}

// GetBinaryOp maps a surface arithmetic operator and an operand IR type to
// the LLVM instruction to use. Division and remainder are signed for
// integers.
func GetBinaryOp(op, irType string) (instr string, err error) {
	if isFloatIR(irType) {
		switch op {
		case "+":
			return "fadd", nil
		case "-":
			return "fsub", nil
		case "*":
			return "fmul", nil
		case "/":
			return "fdiv", nil
		case "%":
			return "frem", nil
		}
		return "", errors.New("types", errors.TYP002, fmt.Sprintf("unsupported binary operator %q", op))
	}

	if isIntegerIR(irType) {
		switch op {
		case "+":
			return "add", nil
		case "-":
			return "sub", nil
		case "*":
			return "mul", nil
		case "/":
			return "sdiv", nil
		case "%":
			return "srem", nil
		}
		return "", errors.New("types", errors.TYP002, fmt.Sprintf("unsupported binary operator %q", op))
	}

	return "", errors.New("types", errors.TYP002,
		fmt.Sprintf("binary op unsupported for IR type %q", irType))
}
