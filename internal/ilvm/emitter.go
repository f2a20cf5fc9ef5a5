package ilvm

import (
	"github.com/bablakeluke/nitrassic-go/internal/emit"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// region is one open BeginExceptionBlock...EndExceptionBlock nest, tracked
// on Emitter.regions the same way internal/codegen's own tryDepth counts
// nesting: regions[len-1] is always the innermost currently-open block.
type region struct {
	tryStart, tryEnd       int
	hasCatch               bool
	catchLocal             int
	catchStart, catchEnd   int
	hasFinally             bool
	finallyStart, finallyEnd int
	skipCatchLabel         emit.Label // branches past the catch when the try falls through clean
}

// Emitter is internal/ilvm's concrete internal/emit.Emitter: it records
// every call as an instr in a flat per-method slice, resolving label
// operands to instruction offsets only once, in Complete, the same
// two-phase (append now, patch at assembly time) shape the teacher's own
// compiler passes use between its AST walk and its Chunk.
type Emitter struct {
	prog *Program
	id   int

	instrs     []instr
	locals     []types.Type // index 0 unused, Local id 0 is the invalid sentinel
	localNames []string
	labels  []int        // label id -> resolved instruction offset, -1 until defined
	pending map[int][]int // label id -> indices into instrs whose branch target needs patching once defined via that slot

	regions         []*region
	finishedRegions []handlerRange

	line, col int
}

func newEmitter(prog *Program, id int) *Emitter {
	return &Emitter{
		prog:       prog,
		id:         id,
		locals:     make([]types.Type, 1),
		localNames: make([]string, 1),
		pending:    map[int][]int{},
	}
}

func (e *Emitter) emit(in instr) int {
	in.line, in.col = e.line, e.col
	e.instrs = append(e.instrs, in)
	return len(e.instrs) - 1
}

// --- arguments and locals ---------------------------------------------------

func (e *Emitter) LoadArgument(i int)  { e.emit(instr{op: opLoadArg, a: i}) }
func (e *Emitter) StoreArgument(i int) { e.emit(instr{op: opStoreArg, a: i}) }

func (e *Emitter) DeclareVariable(t types.Type, name string) emit.Local {
	e.locals = append(e.locals, t)
	e.localNames = append(e.localNames, name)
	return emit.NewLocal(len(e.locals) - 1)
}

func (e *Emitter) LoadVariable(h emit.Local)  { e.emit(instr{op: opLoadLocal, a: h.ID()}) }
func (e *Emitter) StoreVariable(h emit.Local) { e.emit(instr{op: opStoreLocal, a: h.ID()}) }

func (e *Emitter) ReleaseTemporaryVariable(h emit.Local) {
	e.emit(instr{op: opReleaseLocal, a: h.ID()})
}

// --- fields ------------------------------------------------------------------

func (e *Emitter) LoadField(f emit.Field)  { e.emit(instr{op: opLoadField, a: f.ID()}) }
func (e *Emitter) StoreField(f emit.Field) { e.emit(instr{op: opStoreField, a: f.ID()}) }

// --- constants -----------------------------------------------------------

func (e *Emitter) LoadInt32(v int32)   { e.emit(instr{op: opLoadI32, i32: v}) }
func (e *Emitter) LoadInt64(v int64)   { e.emit(instr{op: opLoadI64, i64: v}) }
func (e *Emitter) LoadDouble(v float64) { e.emit(instr{op: opLoadF64, f64: v}) }
func (e *Emitter) LoadBoolean(v bool)  { e.emit(instr{op: opLoadBool, boo: v}) }
func (e *Emitter) LoadString(v string) { e.emit(instr{op: opLoadString, str: v}) }

func (e *Emitter) LoadStringOrNull(v *string) {
	if v == nil {
		e.emit(instr{op: opLoadStringOrNull, boo: false})
		return
	}
	e.emit(instr{op: opLoadStringOrNull, boo: true, str: *v})
}

func (e *Emitter) LoadNull()      { e.emit(instr{op: opLoadNull}) }
func (e *Emitter) LoadUndefined() { e.emit(instr{op: opLoadUndefined}) }

// --- arrays and objects ----------------------------------------------------

func (e *Emitter) NewArray(elem types.Type)  { e.emit(instr{op: opNewArray, typ: elem}) }
func (e *Emitter) NewObject(ctor emit.Method) { e.emit(instr{op: opNewObject, a: ctor.ID()}) }

func (e *Emitter) StoreArrayElement(elem types.Type) { e.emit(instr{op: opStoreElement, typ: elem}) }
func (e *Emitter) LoadArrayElement(elem types.Type)  { e.emit(instr{op: opLoadElement, typ: elem}) }

// --- operators ---------------------------------------------------------------

func (e *Emitter) BinaryOp(op emit.BinOp) { e.emit(instr{op: opBinary, a: int(op)}) }
func (e *Emitter) UnaryOp(op emit.UnOp)   { e.emit(instr{op: opUnary, a: int(op)}) }

func (e *Emitter) GetProperty(name string) { e.emit(instr{op: opGetProperty, str: name}) }
func (e *Emitter) SetProperty(name string) { e.emit(instr{op: opSetProperty, str: name}) }
func (e *Emitter) GetElement()             { e.emit(instr{op: opGetElement}) }
func (e *Emitter) SetElement()             { e.emit(instr{op: opSetElement}) }
func (e *Emitter) DeleteProperty(name string) { e.emit(instr{op: opDeleteProperty, str: name}) }
func (e *Emitter) DeleteElement()             { e.emit(instr{op: opDeleteElement}) }

// --- calls -------------------------------------------------------------------

func (e *Emitter) Call(m emit.Method)      { e.emit(instr{op: opCall, a: m.ID()}) }
func (e *Emitter) LoadToken(m emit.Method) { e.emit(instr{op: opLoadToken, a: m.ID()}) }

// --- stack shuffling -----------------------------------------------------

func (e *Emitter) Duplicate() { e.emit(instr{op: opDuplicate}) }
func (e *Emitter) Pop()       { e.emit(instr{op: opPop}) }

// --- control flow --------------------------------------------------------

func (e *Emitter) CreateLabel() emit.Label {
	e.labels = append(e.labels, -1)
	return emit.NewLabel(len(e.labels))
}

func (e *Emitter) DefineLabelPosition(l emit.Label) {
	idx := l.ID() - 1
	e.labels[idx] = len(e.instrs)
	for _, at := range e.pending[l.ID()] {
		e.patchTarget(at, len(e.instrs))
	}
	delete(e.pending, l.ID())
}

// patchTarget fills in a previously-emitted branch's unresolved target,
// either through its single-target `a` operand or, for Switch, the
// matching slot of its targets list (marked -1 until resolved).
func (e *Emitter) patchTarget(at, offset int) {
	in := &e.instrs[at]
	if in.op == opSwitch {
		for i, t := range in.targets {
			if t == -1 {
				in.targets[i] = offset
				return
			}
		}
		return
	}
	in.a = offset
}

// branchTo emits a branch-family instruction, recording its target inline
// if the label is already defined or queuing it for DefineLabelPosition to
// patch otherwise — labels are routinely used before they're defined (a
// forward jump past a not-yet-generated else/end block).
func (e *Emitter) branchTo(o op, l emit.Label) {
	idx := e.emit(instr{op: o, a: -1})
	e.resolveOrQueue(idx, l)
}

func (e *Emitter) resolveOrQueue(instrIdx int, l emit.Label) {
	pos := e.labels[l.ID()-1]
	if pos >= 0 {
		e.instrs[instrIdx].a = pos
		return
	}
	e.pending[l.ID()] = append(e.pending[l.ID()], instrIdx)
}

func (e *Emitter) Branch(l emit.Label)        { e.branchTo(opBranch, l) }
func (e *Emitter) BranchIfTrue(l emit.Label)  { e.branchTo(opBranchIfTrue, l) }
func (e *Emitter) BranchIfFalse(l emit.Label) { e.branchTo(opBranchIfFalse, l) }

// Leave closes out whatever try/catch/finally regions the jump to l
// crosses. Which regions those are isn't known until Complete resolves
// every label to an offset, so the instruction records only the label for
// now; Complete back-fills the list of finally ranges to run first.
func (e *Emitter) Leave(l emit.Label) {
	idx := e.emit(instr{op: opLeave, a: -1})
	e.resolveOrQueue(idx, l)
}

func (e *Emitter) Throw() { e.emit(instr{op: opThrow}) }

// Switch is unused by internal/codegen today (reserved for a future dense-
// integer jump table; the current switch-statement lowering is a plain
// sequential strict-equality chain) but implemented here for completeness.
// patchTarget resolves a still-open slot in targets' left-to-right order,
// so this assumes DefineLabelPosition for each case label is itself called
// in the same order the labels were passed here.
func (e *Emitter) Switch(labels []emit.Label) {
	targets := make([]int, len(labels))
	idx := e.emit(instr{op: opSwitch})
	for i, l := range labels {
		pos := e.labels[l.ID()-1]
		if pos >= 0 {
			targets[i] = pos
		} else {
			targets[i] = -1
			e.pending[l.ID()] = append(e.pending[l.ID()], idx)
		}
	}
	e.instrs[idx].targets = targets
}

// --- exceptions ------------------------------------------------------------

func (e *Emitter) BeginExceptionBlock() emit.ExceptionRegion {
	r := &region{tryStart: len(e.instrs), catchLocal: -1}
	e.regions = append(e.regions, r)
	return emit.NewExceptionRegion(len(e.regions))
}

func (e *Emitter) BeginCatchBlock(excType types.Type) emit.Local {
	r := e.regions[len(e.regions)-1]
	r.tryEnd = len(e.instrs)
	r.hasCatch = true
	r.skipCatchLabel = e.CreateLabel()
	e.branchTo(opBranch, r.skipCatchLabel) // normal try completion skips the catch body
	r.catchStart = len(e.instrs)
	e.locals = append(e.locals, excType)
	e.localNames = append(e.localNames, "$catch")
	r.catchLocal = len(e.locals) - 1
	return emit.NewLocal(r.catchLocal)
}

func (e *Emitter) BeginFinallyBlock() {
	r := e.regions[len(e.regions)-1]
	if r.hasCatch {
		r.catchEnd = len(e.instrs)
		e.DefineLabelPosition(r.skipCatchLabel) // falls straight into finally either way
	} else {
		r.tryEnd = len(e.instrs) // try/finally with no catch: try body ends right here
	}
	r.hasFinally = true
	r.finallyStart = len(e.instrs)
}

func (e *Emitter) EndExceptionBlock() {
	r := e.regions[len(e.regions)-1]
	e.regions = e.regions[:len(e.regions)-1]
	end := len(e.instrs)
	switch {
	case r.hasFinally:
		r.finallyEnd = end
	case r.hasCatch:
		r.catchEnd = end
		e.DefineLabelPosition(r.skipCatchLabel)
	default:
		r.tryEnd = end // bare try with neither catch nor finally (rejected upstream, kept defensive)
	}
	catchLocal := r.catchLocal
	if catchLocal < 0 {
		catchLocal = 0
	}
	e.finishedRegions = append(e.finishedRegions, handlerRange{
		tryStart: r.tryStart, tryEnd: r.tryEnd,
		hasCatch: r.hasCatch, catchStart: r.catchStart, catchEnd: r.catchEnd,
		catchLocal: catchLocal,
		hasFinally: r.hasFinally, finallyStart: r.finallyStart, finallyEnd: r.finallyEnd,
	})
}

// --- conversions ---------------------------------------------------------

func (e *Emitter) ConvertToBool()   { e.emit(instr{op: opConvertToBool}) }
func (e *Emitter) ConvertToAny()    { e.emit(instr{op: opConvertToAny}) }
func (e *Emitter) ConvertToString() { e.emit(instr{op: opConvertToString}) }

func (e *Emitter) ConvertGeneric(src, dst types.Type) {
	e.emit(instr{op: opConvertGeneric, typ: src, typ2: dst})
}

// --- diagnostics -----------------------------------------------------------

func (e *Emitter) Breakpoint() { e.emit(instr{op: opBreakpoint}) }
func (e *Emitter) NoOperation() { e.emit(instr{op: opNop}) }

func (e *Emitter) SequencePoint(line, column int) {
	e.line, e.col = line, column
	e.emit(instr{op: opSeqPoint, a: line, i32: int32(column)})
}

// Complete resolves every Leave's crossed-region finally list against the
// now-fixed instruction offsets, writes the assembled body into the
// Program's method table under this Emitter's reserved id, and hands back
// that id as the opaque handle the rest of the pipeline threads around.
func (e *Emitter) Complete() emit.Method {
	for i := range e.instrs {
		if e.instrs[i].op != opLeave {
			continue
		}
		target := e.instrs[i].a
		var crossed []int
		for _, h := range e.finishedRegions {
			regionEnd := h.tryEnd
			if h.hasCatch {
				regionEnd = h.catchEnd
			}
			if h.hasFinally {
				regionEnd = h.finallyEnd
			}
			if i < h.tryStart || i >= regionEnd {
				continue // Leave isn't lexically inside this region at all
			}
			if !h.hasFinally {
				continue
			}
			if target >= h.finallyStart && target < h.finallyEnd {
				continue // jumping within/into the same finally, nothing to run first
			}
			crossed = append(crossed, h.finallyStart, h.finallyEnd)
		}
		e.instrs[i].targets = crossed
	}

	body := e.prog.method(e.id)
	body.instrs = e.instrs
	body.handlers = e.finishedRegions
	body.numLocals = len(e.locals)
	body.localNames = e.localNames
	return emit.NewMethod(e.id)
}

// Disassembly renders this specialization's assembled body for
// "nitrassic compile --disassemble"; internal/cache only calls it through
// the optional `interface{ Disassembly() string }` assertion after
// Complete, so it reads back whatever Complete already wrote to the
// Program rather than e's own (still being recorded) instrs slice.
func (e *Emitter) Disassembly() string {
	body := e.prog.method(e.id)
	if body == nil {
		return ""
	}
	return disassemble(body)
}
