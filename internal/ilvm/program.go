package ilvm

import (
	"sync"

	"github.com/bablakeluke/nitrassic-go/internal/emit"
)

// methodBody is one compiled or native callable, addressed by the same
// emit.Method id every Generator specialization's Complete() hands back.
// Native lets internal/stdproto (and tests) register a built-in directly as
// a Go closure rather than a hand-assembled instruction stream — the same
// role the teacher's evaluator gives its Go-native builtin functions
// alongside interpreted DWScript bodies.
type methodBody struct {
	name       string
	instrs     []instr
	handlers   []handlerRange
	numLocals  int
	localNames []string
	native     func(vm *VM, args []value) (value, error)

	argc       int // cached by argCount; -1 until computed
	nativeArgc int
}

// handlerRange is one try/catch/finally region, recorded as half-open
// instruction-index ranges so Throw (at run time) and Leave (baked in at
// Complete time, see emitter.go) can both ask "which regions does pc sit
// inside".
type handlerRange struct {
	tryStart, tryEnd     int
	hasCatch             bool
	catchStart, catchEnd int
	catchLocal           int
	hasFinally           bool
	finallyStart, finallyEnd int
}

// Program is the shared store every Emitter internal/ilvm hands out
// (internal/cache.Cache.NewEmitter is invoked once per specialization)
// writes its completed method into, plus the flat global-field table
// internal/codegen's KindGlobal bindings address through LoadField/
// StoreField. One Program backs one running engine instance; tests
// construct their own with NewProgram.
type Program struct {
	mu      sync.Mutex
	methods []*methodBody // index 0 unused; emit.Method id 0 is the invalid sentinel
	globals []value
}

// NewProgram creates an empty method table and global-field table.
func NewProgram() *Program {
	return &Program{methods: make([]*methodBody, 1)}
}

// NewEmitterFactory returns the func() emit.Emitter internal/cache.Cache's
// NewEmitter field expects: each call reserves the next method id up front
// so a recursive specialization (internal/cache registers its table entry
// before compiling the body) can still hand out a LoadToken/Call reference
// to itself before Complete ever runs.
func (p *Program) NewEmitterFactory() func() emit.Emitter {
	return func() emit.Emitter {
		p.mu.Lock()
		id := len(p.methods)
		p.methods = append(p.methods, &methodBody{argc: -1})
		p.mu.Unlock()
		return newEmitter(p, id)
	}
}

// Register installs a Go-native callable under a freshly minted method id,
// for a built-in prototype member (internal/stdproto's job) that has no
// ECMAScript-subset body of its own to compile — the same role the
// teacher's evaluator gives its Go-native builtin functions alongside
// interpreted DWScript bodies. arity is how many already-pushed operands
// execCall hands fn; a variadic built-in still declares a fixed arity here
// and reads any extra positional arguments out of codegen's own
// params-array convention the way any other variadic overload does.
func (p *Program) Register(name string, arity int, fn func(vm *VM, args []Value) (Value, error)) emit.Method {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := len(p.methods)
	p.methods = append(p.methods, &methodBody{
		name:       name,
		nativeArgc: arity,
		native: func(vm *VM, args []value) (value, error) {
			wrapped := make([]Value, len(args))
			for i, a := range args {
				wrapped[i] = Value{a}
			}
			res, err := fn(vm, wrapped)
			return res.v, err
		},
	})
	return emit.NewMethod(id)
}

func (p *Program) method(id int) *methodBody {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id <= 0 || id >= len(p.methods) {
		return nil
	}
	return p.methods[id]
}

func (p *Program) field(index int) value {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index < 0 || index >= len(p.globals) {
		return undefined()
	}
	return p.globals[index]
}

func (p *Program) setField(index int, v value) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if index >= len(p.globals) {
		grown := make([]value, index+1)
		copy(grown, p.globals)
		p.globals = grown
	}
	p.globals[index] = v
}

// AllocField reserves the next global slot and hands back the emit.Field
// handle internal/scope.NewGlobal pairs with a KindGlobal Variable — used
// for the program entry point's top-level var bindings today; a
// synthesized host class's own typed instance fields would reserve their
// slots the same way once that's wired (see DESIGN.md).
func (p *Program) AllocField() emit.Field {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.globals = append(p.globals, undefined())
	return emit.NewField(len(p.globals) - 1)
}

// GetField/SetField let an embedder (pkg/engine) read or seed a global
// field from outside any compiled method body, e.g. exposing a script's
// top-level `var` to host code after Execute returns.
func (p *Program) GetField(f emit.Field) Value { return Value{p.field(f.ID())} }
func (p *Program) SetField(f emit.Field, v Value) { p.setField(f.ID(), v.v) }
