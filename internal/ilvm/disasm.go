package ilvm

import (
	"fmt"
	"strings"
)

// disassemble renders body's assembled instruction stream as plain text,
// one line per instruction (offset, opcode mnemonic, operands), the same
// shape the teacher's own Disassembler.DisassembleInstruction produces —
// this module just has far fewer opcode families to special-case since
// the emitter's own vocabulary is already small and closed.
func disassemble(body *methodBody) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "locals: %d\n", body.numLocals)
	for i, in := range body.instrs {
		fmt.Fprintf(&sb, "%04d  %-10s %s\n", i, in.op, operandString(in))
	}
	return sb.String()
}

func operandString(in instr) string {
	switch in.op {
	case opLoadArg, opStoreArg, opLoadLocal, opStoreLocal, opReleaseLocal,
		opLoadField, opStoreField, opCall, opLoadToken, opNewObject,
		opBranch, opBranchIfTrue, opBranchIfFalse, opLeave:
		return fmt.Sprintf("%d", in.a)
	case opLoadI32:
		return fmt.Sprintf("%d", in.i32)
	case opLoadI64:
		return fmt.Sprintf("%d", in.i64)
	case opLoadF64:
		return fmt.Sprintf("%g", in.f64)
	case opLoadBool:
		return fmt.Sprintf("%t", in.boo)
	case opLoadString, opGetProperty, opSetProperty, opDeleteProperty:
		return fmt.Sprintf("%q", in.str)
	case opLoadStringOrNull:
		if in.boo {
			return fmt.Sprintf("%q", in.str)
		}
		return "<null>"
	case opBinary:
		return fmt.Sprintf("bin#%d", in.a)
	case opUnary:
		return fmt.Sprintf("un#%d", in.a)
	case opSwitch:
		return fmt.Sprintf("%v", in.targets)
	case opSeqPoint:
		return fmt.Sprintf("line %d col %d", in.a, in.i32)
	default:
		return ""
	}
}
