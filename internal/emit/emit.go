// Package emit defines the abstract stack-IL emitter contract (spec §6).
// The emitter itself is an external collaborator — a runtime built-in
// library and its concrete instruction encoding are explicitly out of
// scope (spec §1) — this package carries only the fixed vocabulary the
// core (C9, internal/codegen) calls against, plus the opaque handle types
// the emitter hands back for locals, labels and fields.
//
// internal/ilvm provides the one concrete implementation in this module,
// used by tests and by "nitrassic compile --disassemble"; production
// embedders are expected to supply their own against a real host VM.
package emit

import "github.com/bablakeluke/nitrassic-go/internal/types"

// Local is an opaque handle to a declared local or temporary slot.
type Local struct{ id int }

// NewLocal constructs a Local handle from an emitter-assigned id. Emitters
// outside this module should use their own id space; the zero Local is
// never valid and is used as a sentinel by callers that haven't yet
// requested a slot.
func NewLocal(id int) Local { return Local{id} }

func (l Local) Valid() bool { return l.id != 0 }
func (l Local) ID() int     { return l.id }

// Label is an opaque handle to a branch target created by CreateLabel and
// fixed in place by DefineLabelPosition.
type Label struct{ id int }

func NewLabel(id int) Label { return Label{id} }
func (l Label) Valid() bool { return l.id != 0 }
func (l Label) ID() int     { return l.id }

// Field is an opaque handle to a field slot on a synthesized host class
// (spec §4.9's per-prototype typed fields, §4.7's global fields).
type Field struct{ id int }

func NewField(id int) Field { return Field{id} }
func (f Field) ID() int     { return f.id }

// Method is an opaque handle to a compiled, callable target: a built-in
// overload or a user-function specialization (spec §3, "Method cache
// entry"/"compiled specialization").
type Method struct{ id int }

func NewMethod(id int) Method { return Method{id} }
func (m Method) ID() int      { return m.id }

// ExceptionRegion is an opaque handle returned by BeginExceptionBlock,
// threaded through BeginCatchBlock/BeginFinallyBlock/EndExceptionBlock.
type ExceptionRegion struct{ id int }

func NewExceptionRegion(id int) ExceptionRegion { return ExceptionRegion{id} }

// BinOp is the closed set of binary operators the emitter evaluates
// directly against its two stack operands' runtime type tags (the same
// abstract-relational/equality-algorithm territory spec's ECMAScript
// subset covers), rather than one opcode per operator: the vocabulary
// stays fixed and small while still letting a concrete emitter special-
// case the native-typed fast paths (I32/U32/F64) however it likes.
type BinOp uint8

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShl
	OpShr
	OpUshr
	OpBitAnd
	OpBitOr
	OpBitXor
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpLooseEq
	OpLooseNe
	OpStrictEq
	OpStrictNe
	OpInstanceOf
	OpIn
)

// UnOp is the closed set of unary operators with no dedicated Emitter
// method of their own (negation, bitwise complement, typeof, void).
// delete is handled separately, through DeleteProperty/DeleteElement,
// since it needs the property name/key rather than just a value.
type UnOp uint8

const (
	OpNeg UnOp = iota
	OpPos
	OpNot
	OpBitNot
	OpTypeOf
	OpVoidOf
)

// Emitter is the fixed vocabulary spec §6 names. internal/codegen (C9)
// calls only these methods; it never inspects a concrete instruction
// encoding.
type Emitter interface {
	// Arguments and locals.
	LoadArgument(i int)
	StoreArgument(i int)
	DeclareVariable(t types.Type, name string) Local
	LoadVariable(h Local)
	StoreVariable(h Local)
	ReleaseTemporaryVariable(h Local)

	// Fields (globals and prototype properties).
	LoadField(f Field)
	StoreField(f Field)

	// Constants.
	LoadInt32(v int32)
	LoadInt64(v int64)
	LoadDouble(v float64)
	LoadBoolean(v bool)
	LoadString(v string)
	LoadStringOrNull(v *string)
	LoadNull()
	LoadUndefined()

	// Arrays and objects.
	NewArray(elem types.Type)
	NewObject(ctor Method)
	StoreArrayElement(elem types.Type)
	LoadArrayElement(elem types.Type)

	// Operators. BinaryOp pops two operands and pushes one result;
	// UnaryOp pops one and pushes one. Property access has no static
	// Field handle to go through when the object's shape isn't a
	// synthesized host class (spec §4.9's typed-field optimization
	// applies only when dispatch has bound a member to one; anything
	// else — a dynamic object, a `with` target, a computed index —
	// goes through these generic named/keyed accessors instead).
	BinaryOp(op BinOp)
	UnaryOp(op UnOp)
	GetProperty(name string) // [obj] -> [value]
	SetProperty(name string) // [obj, value] -> []
	GetElement()              // [obj, key] -> [value]
	SetElement()              // [obj, key, value] -> []
	DeleteProperty(name string) // [obj] -> [bool]
	DeleteElement()              // [obj, key] -> [bool]

	// Calls.
	Call(m Method)
	LoadToken(m Method) // pushes a method handle value, e.g. for a function-pointer constant

	// Stack shuffling.
	Duplicate()
	Pop()

	// Control flow.
	CreateLabel() Label
	DefineLabelPosition(l Label)
	Branch(l Label)
	BranchIfTrue(l Label)
	BranchIfFalse(l Label)
	Leave(l Label) // branch form valid from inside a try/catch/finally region
	Throw()
	Switch(labels []Label)

	// Exceptions.
	BeginExceptionBlock() ExceptionRegion
	BeginCatchBlock(excType types.Type) Local
	BeginFinallyBlock()
	EndExceptionBlock()

	// Conversions.
	ConvertToBool()
	ConvertToAny()
	ConvertToString()
	ConvertGeneric(src, dst types.Type)

	// Diagnostics / misc.
	Breakpoint()
	NoOperation()
	SequencePoint(line, column int)
	Complete() Method
}
