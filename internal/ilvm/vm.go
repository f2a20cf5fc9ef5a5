package ilvm

import (
	"fmt"

	"github.com/bablakeluke/nitrassic-go/internal/emit"
)

// VM runs one compiled method at a time against a shared Program's method
// table and global fields. It carries no state of its own between calls —
// every call gets a fresh frame — the same "VM struct holds only the
// shared chunk/globals, the call itself owns its stack and locals" split
// the teacher's own bytecode.VM/vm_exec.go draws between interpreter and
// call frame.
type VM struct {
	prog *Program
}

// New creates a VM against prog. Multiple VMs may share one Program (and
// so its global fields) safely; each Call only ever touches its own frame.
func New(prog *Program) *VM {
	return &VM{prog: prog}
}

// frame is one call's working state: its argument vector, its local-slot
// array (sized to the method's own numLocals) and the operand stack calls
// push to and return from.
type frame struct {
	args   []value
	locals []value
	stack  []value
	pc     int
}

func (f *frame) push(v value) { f.stack = append(f.stack, v) }

func (f *frame) pop() value {
	v := f.stack[len(f.stack)-1]
	f.stack = f.stack[:len(f.stack)-1]
	return v
}

func (f *frame) peek() value { return f.stack[len(f.stack)-1] }

// RuntimeError is an uncaught exception (a thrown value with no enclosing
// catch anywhere up the call chain) surfacing out of Call as a Go error.
type RuntimeError struct {
	Value Value
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("uncaught exception: %s", e.Value.String())
}

// Call invokes m (an emit.Method handle produced by some Emitter.Complete,
// or a Program.Register native registration) with args, returning its
// result value or the *RuntimeError that escaped it unhandled.
func (vm *VM) Call(m emit.Method, args ...Value) (Value, error) {
	body := vm.prog.method(m.ID())
	if body == nil {
		return Value{}, fmt.Errorf("ilvm: call to unresolved method id %d", m.ID())
	}
	raw := make([]value, len(args))
	for i, a := range args {
		raw[i] = a.v
	}
	v, err := vm.call(body, raw)
	return Value{v}, err
}

func (vm *VM) call(body *methodBody, args []value) (value, error) {
	if body.native != nil {
		res, err := body.native(vm, args)
		if err != nil {
			return undefined(), err
		}
		return res, nil
	}

	f := &frame{
		args:   args,
		locals: make([]value, body.numLocals),
	}
	return vm.run(body, f)
}

// run executes body's instruction stream against f from the start until it
// falls off the end (the last pushed value is the return value, matching
// codegen's own epilogue convention of always leaving exactly one value on
// the stack) or an uncaught exception propagates out.
func (vm *VM) run(body *methodBody, f *frame) (value, error) {
	return vm.runRange(body, f, 0, len(body.instrs))
}

// runRange executes body's instructions from start up to (not including)
// end, honoring absolute branch-target offsets throughout. A finally body
// is run this way — in place, against the same instruction indices codegen
// recorded — rather than through a re-sliced copy, so a branch or nested
// try inside a finally block still lands where it's supposed to.
func (vm *VM) runRange(body *methodBody, f *frame, start, end int) (value, error) {
	f.pc = start
	for f.pc < end {
		in := &body.instrs[f.pc]
		jump, thrown, err := vm.step(body, f, in)
		if err != nil {
			return undefined(), err
		}
		if thrown != nil {
			target, handlerErr := vm.unwind(body, f, f.pc, *thrown)
			if handlerErr != nil {
				return undefined(), handlerErr
			}
			f.pc = target
			continue
		}
		if jump >= 0 {
			f.pc = jump
			continue
		}
		f.pc++
	}
	if len(f.stack) == 0 {
		return undefined(), nil
	}
	return f.peek(), nil
}

// unwind finds the innermost handler covering pc, runs its catch body
// (storing thrown into the catch local) if one matches, or — if only a
// finally covers pc — runs that finally and keeps propagating. Returns the
// instruction offset execution should resume at, or a *RuntimeError once
// nothing in body's own handler table covers pc anymore.
func (vm *VM) unwind(body *methodBody, f *frame, pc int, thrown value) (int, error) {
	for {
		h, ok := innermostHandler(body.handlers, pc)
		if !ok {
			return 0, &RuntimeError{Value: Value{thrown}}
		}
		if h.hasCatch && pc < h.catchStart {
			f.locals[h.catchLocal] = thrown
			f.stack = f.stack[:0]
			return h.catchStart, nil
		}
		if h.hasFinally {
			sub := &frame{args: f.args, locals: f.locals}
			if _, err := vm.runRange(body, sub, h.finallyStart, h.finallyEnd); err != nil {
				return 0, err
			}
		}
		pc = h.tryEnd // keep unwinding from just past this region, toward any enclosing one
	}
}

// innermostHandler picks the handler whose try/catch/finally span contains
// pc and is narrowest (most deeply nested), the same "smallest enclosing
// range wins" rule a linear, un-nested handler table needs since nothing
// else records explicit parent/child links between regions.
func innermostHandler(handlers []handlerRange, pc int) (handlerRange, bool) {
	best := -1
	bestWidth := -1
	for i, h := range handlers {
		end := h.tryEnd
		if h.hasCatch {
			end = h.catchEnd
		}
		if h.hasFinally {
			end = h.finallyEnd
		}
		if pc < h.tryStart || pc >= end {
			continue
		}
		width := end - h.tryStart
		if best == -1 || width < bestWidth {
			best, bestWidth = i, width
		}
	}
	if best == -1 {
		return handlerRange{}, false
	}
	return handlers[best], true
}
