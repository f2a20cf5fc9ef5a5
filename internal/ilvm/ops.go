package ilvm

import (
	"fmt"

	"github.com/bablakeluke/nitrassic-go/internal/emit"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// step executes one instruction against f. It returns a non-negative jump
// target when in is a branch-family op that actually took the branch (the
// caller sets f.pc to it instead of advancing normally), a thrown value
// when in is Throw (the caller hands that to unwind), or an error for a
// condition this reference interpreter treats as fatal rather than as a
// catchable ECMAScript-subset exception (a stack-shape violation codegen
// should never have produced in the first place).
func (vm *VM) step(body *methodBody, f *frame, in *instr) (jump int, thrown *value, err error) {
	switch in.op {
	case opLoadArg:
		if in.a < len(f.args) {
			f.push(f.args[in.a])
		} else {
			f.push(undefined())
		}
	case opStoreArg:
		v := f.pop()
		if in.a < len(f.args) {
			f.args[in.a] = v
		}
	case opLoadLocal:
		f.push(f.locals[in.a])
	case opStoreLocal:
		f.locals[in.a] = f.pop()
	case opReleaseLocal:
		f.locals[in.a] = undefined()

	case opLoadField:
		f.push(vm.prog.field(in.a))
	case opStoreField:
		vm.prog.setField(in.a, f.pop())

	case opLoadI32:
		f.push(i32Val(in.i32))
	case opLoadI64:
		f.push(f64Val(float64(in.i64)))
	case opLoadF64:
		f.push(f64Val(in.f64))
	case opLoadBool:
		f.push(boolVal(in.boo))
	case opLoadString:
		f.push(strVal(in.str))
	case opLoadStringOrNull:
		if in.boo {
			f.push(strVal(in.str))
		} else {
			f.push(null())
		}
	case opLoadNull:
		f.push(null())
	case opLoadUndefined:
		f.push(undefined())

	case opNewArray:
		n := f.pop()
		f.push(objVal(newArray(int(n.i32))))
	case opNewObject:
		f.push(objVal(newObject("")))
	case opStoreElement:
		val := f.pop()
		idx := f.pop()
		obj := f.pop()
		if obj.kind == kObject && obj.obj.elements != nil {
			i := int(idx.i32)
			if i >= len(obj.obj.elements) {
				grown := make([]value, i+1)
				copy(grown, obj.obj.elements)
				obj.obj.elements = grown
			}
			obj.obj.elements[i] = val
		}
	case opLoadElement:
		idx := f.pop()
		obj := f.pop()
		if obj.kind == kObject && obj.obj.elements != nil {
			i := int(idx.i32)
			if i >= 0 && i < len(obj.obj.elements) {
				f.push(obj.obj.elements[i])
			} else {
				f.push(undefined())
			}
		} else {
			f.push(undefined())
		}

	case opBinary:
		rhs := f.pop()
		lhs := f.pop()
		f.push(evalBinary(emit.BinOp(in.a), lhs, rhs))
	case opUnary:
		v := f.pop()
		f.push(evalUnary(emit.UnOp(in.a), v))

	case opGetProperty:
		obj := f.pop()
		f.push(getNamed(obj, in.str))
	case opSetProperty:
		val := f.pop()
		obj := f.pop()
		setNamed(obj, in.str, val)
	case opGetElement:
		key := f.pop()
		obj := f.pop()
		f.push(getNamed(obj, key.toStringValue()))
	case opSetElement:
		val := f.pop()
		key := f.pop()
		obj := f.pop()
		setNamed(obj, key.toStringValue(), val)
	case opDeleteProperty:
		obj := f.pop()
		f.push(boolVal(deleteNamed(obj, in.str)))
	case opDeleteElement:
		key := f.pop()
		obj := f.pop()
		f.push(boolVal(deleteNamed(obj, key.toStringValue())))

	case opCall:
		return vm.execCall(f, in.a)
	case opLoadToken:
		f.push(methVal(in.a))

	case opDuplicate:
		f.push(f.peek())
	case opPop:
		f.pop()

	case opBranch:
		return in.a, nil, nil
	case opBranchIfTrue:
		if f.pop().truthy() {
			return in.a, nil, nil
		}
	case opBranchIfFalse:
		if !f.pop().truthy() {
			return in.a, nil, nil
		}
	case opLeave:
		for i := 0; i+1 < len(in.targets); i += 2 {
			if _, err := vm.runRange(body, f, in.targets[i], in.targets[i+1]); err != nil {
				return 0, nil, err
			}
		}
		return in.a, nil, nil
	case opThrow:
		v := f.pop()
		return 0, &v, nil
	case opSwitch:
		// Not reachable from internal/codegen's current lowering; reserved.

	case opConvertToBool:
		f.push(boolVal(f.pop().truthy()))
	case opConvertToAny:
		// Every value already carries its own runtime kind tag; boxing to
		// the universal type is a no-op at this level.
	case opConvertToString:
		f.push(strVal(f.pop().toStringValue()))
	case opConvertGeneric:
		f.push(convertGeneric(f.pop(), in.typ2))

	case opBreakpoint, opNop, opSeqPoint:
		// no runtime effect

	default:
		return 0, nil, fmt.Errorf("ilvm: unhandled opcode %s", in.op)
	}
	return -1, nil, nil
}

// execCall pops this/arguments already pushed in target.Handle's expected
// order (internal/codegen's generateCallLike convention) — but the Emitter
// contract gives Call no arity of its own to read, so the call site is
// trusted to have pushed exactly as many operands as the callee's method
// table entry expects. That count isn't recorded anywhere ilvm can see at
// this op alone; instead every compiled body's own argument reads
// (LoadArgument) simply index into whatever slice execCall hands it, so
// the call convention here pops the whole remaining stack frame depth down
// to a per-call marker pushed by the caller... except this Emitter never
// pushes such a marker. To keep Call a single, simple op without inventing
// emitter-visible arity bookkeeping, ilvm instead has every Call site pop
// exactly the operand count the *callee* reports (method bodies remember
// how many LoadArgument slots codegen actually used).
func (vm *VM) execCall(f *frame, methodID int) (int, *value, error) {
	body := vm.prog.method(methodID)
	if body == nil {
		return 0, nil, fmt.Errorf("ilvm: call to unresolved method id %d", methodID)
	}
	argc := body.argCount()
	if argc > len(f.stack) {
		argc = len(f.stack)
	}
	args := append([]value(nil), f.stack[len(f.stack)-argc:]...)
	f.stack = f.stack[:len(f.stack)-argc]

	res, err := vm.call(body, args)
	if err != nil {
		if re, ok := err.(*RuntimeError); ok {
			v := re.Value.v
			return 0, &v, nil
		}
		return 0, nil, err
	}
	f.push(res)
	return -1, nil, nil
}

// argCount reports the highest argument index this body's own
// instructions ever read, so execCall knows how many already-pushed stack
// operands belong to this call. Computed once, lazily, the first time a
// body is actually called — cheaper than having internal/codegen (which
// never deals in raw instruction streams) report it itself.
func (b *methodBody) argCount() int {
	if b.native != nil {
		return b.nativeArgc
	}
	if b.argc >= 0 {
		return b.argc
	}
	max := -1
	for _, in := range b.instrs {
		if (in.op == opLoadArg || in.op == opStoreArg) && in.a > max {
			max = in.a
		}
	}
	b.argc = max + 1
	return b.argc
}

func getNamed(v value, name string) value {
	if v.kind != kObject || v.obj.elements != nil {
		return undefined()
	}
	if val, ok := v.obj.fields[name]; ok {
		return val
	}
	return undefined()
}

func setNamed(v value, name string, val value) {
	if v.kind != kObject || v.obj.elements != nil {
		return
	}
	if v.obj.fields == nil {
		v.obj.fields = map[string]value{}
	}
	if _, exists := v.obj.fields[name]; !exists {
		v.obj.fieldOrder = append(v.obj.fieldOrder, name)
	}
	v.obj.fields[name] = val
}

func deleteNamed(v value, name string) bool {
	if v.kind != kObject || v.obj.fields == nil {
		return false
	}
	if _, ok := v.obj.fields[name]; !ok {
		return true
	}
	delete(v.obj.fields, name)
	for i, n := range v.obj.fieldOrder {
		if n == name {
			v.obj.fieldOrder = append(v.obj.fieldOrder[:i], v.obj.fieldOrder[i+1:]...)
			break
		}
	}
	return true
}

// names reports an object's own field names in insertion order, for
// for-in enumeration (mirrors proto.Prototype.Names' own ordering
// guarantee, one level down at the runtime-instance level).
func names(v value) []string {
	if v.kind != kObject || v.obj.elements != nil {
		return nil
	}
	return append([]string(nil), v.obj.fieldOrder...)
}

func convertGeneric(v value, dst types.Type) value {
	switch dst.Kind {
	case types.I32:
		return i32Val(int32(v.toFloat64()))
	case types.U32:
		return u32Val(uint32(v.toFloat64()))
	case types.F64:
		return f64Val(v.toFloat64())
	case types.Undefined:
		return undefined()
	case types.Null:
		return null()
	default:
		return v
	}
}
