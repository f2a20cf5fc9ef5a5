package ilvm

import "github.com/bablakeluke/nitrassic-go/internal/types"

// op is this package's own fixed-width instruction opcode, one per
// internal/emit.Emitter method (plus the implicit patched branch targets
// BeginCatchBlock inserts on codegen's behalf). Unlike the teacher's 116
// opcodes split by static operand type, this set stays close to the
// Emitter's own already-small vocabulary — operator dispatch on the
// runtime kind tag happens inside evalBinary/evalUnary at run time instead
// of being pre-selected by a family of type-specific opcodes, since the
// abstract Emitter contract never hands ilvm enough to pick the
// specialized opcode at emit time anyway.
type op uint8

const (
	opLoadArg op = iota
	opStoreArg
	opLoadLocal
	opStoreLocal
	opReleaseLocal
	opLoadField
	opStoreField
	opLoadI32
	opLoadI64
	opLoadF64
	opLoadBool
	opLoadString
	opLoadStringOrNull
	opLoadNull
	opLoadUndefined
	opNewArray
	opNewObject
	opStoreElement
	opLoadElement
	opBinary
	opUnary
	opGetProperty
	opSetProperty
	opGetElement
	opSetElement
	opDeleteProperty
	opDeleteElement
	opCall
	opLoadToken
	opDuplicate
	opPop
	opBranch
	opBranchIfTrue
	opBranchIfFalse
	opLeave
	opThrow
	opSwitch
	opConvertToBool
	opConvertToAny
	opConvertToString
	opConvertGeneric
	opBreakpoint
	opNop
	opSeqPoint
)

var opNames = map[op]string{
	opLoadArg: "load.arg", opStoreArg: "store.arg",
	opLoadLocal: "load.local", opStoreLocal: "store.local", opReleaseLocal: "release.local",
	opLoadField: "load.field", opStoreField: "store.field",
	opLoadI32: "load.i32", opLoadI64: "load.i64", opLoadF64: "load.f64",
	opLoadBool: "load.bool", opLoadString: "load.str", opLoadStringOrNull: "load.strn",
	opLoadNull: "load.null", opLoadUndefined: "load.undef",
	opNewArray: "new.array", opNewObject: "new.object",
	opStoreElement: "store.elem", opLoadElement: "load.elem",
	opBinary: "bin", opUnary: "un",
	opGetProperty: "get.prop", opSetProperty: "set.prop",
	opGetElement: "get.elem", opSetElement: "set.elem",
	opDeleteProperty: "del.prop", opDeleteElement: "del.elem",
	opCall: "call", opLoadToken: "load.token",
	opDuplicate: "dup", opPop: "pop",
	opBranch: "br", opBranchIfTrue: "br.true", opBranchIfFalse: "br.false",
	opLeave: "leave", opThrow: "throw", opSwitch: "switch",
	opConvertToBool: "conv.bool", opConvertToAny: "conv.any", opConvertToString: "conv.str",
	opConvertGeneric: "conv", opBreakpoint: "break", opNop: "nop", opSeqPoint: "seqpt",
}

func (o op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return "op?"
}

// instr is one instruction. Only the operand fields a given op actually
// uses are meaningful; the rest sit at their zero value. targets holds
// switch's per-case label list, resolved to instruction offsets the same
// way a is for every other branch-family op.
type instr struct {
	op   op
	a    int // local/field/arg index, binop/unop code, branch target offset
	str  string
	i32  int32
	i64  int64
	f64  float64
	boo  bool
	typ  types.Type
	typ2 types.Type
	targets []int
	line, col int
}
