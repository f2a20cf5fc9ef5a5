// Package codegen implements C9: GenerateCode, the driver that walks a
// resolved AST a second time and emits against an internal/emit.Emitter.
// It depends on internal/ctx for the optimization context ResolveVariables
// produced (return-type accumulator, break/continue stack shape,
// root-expression pop elision, long-jump table) and on internal/ast for
// the Target/Type fields internal/ctx and internal/dispatch already
// filled in; it never re-resolves a name or re-scores an overload.
package codegen

import (
	"fmt"

	"github.com/bablakeluke/nitrassic-go/internal/ast"
	"github.com/bablakeluke/nitrassic-go/internal/cerr"
	"github.com/bablakeluke/nitrassic-go/internal/ctx"
	"github.com/bablakeluke/nitrassic-go/internal/emit"
	"github.com/bablakeluke/nitrassic-go/internal/scope"
	"github.com/bablakeluke/nitrassic-go/internal/token"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// Generator drives one function specialization's (or one top-level
// program's) code generation. A fresh Generator is created per
// specialization by internal/cache.GetCompiled, pairing the Ctx that
// specialization's ResolveVariables pass produced with a fresh Emitter.
type Generator struct {
	Ctx *ctx.Ctx
	E   emit.Emitter

	tempSeq int
	tryDepth int // number of enclosing try regions; Leave replaces Branch while positive
}

func newGenerator(c *ctx.Ctx, e emit.Emitter) *Generator {
	return &Generator{Ctx: c, E: e}
}

// GenerateProgram emits a top-level source unit's statements as a
// zero-argument method body, the way spec's top-level
// GlobalMethodGenerator drives compilation of a script.
func GenerateProgram(c *ctx.Ctx, e emit.Emitter, prog *ast.Program) (emit.Method, error) {
	g := newGenerator(c, e)
	for _, stmt := range prog.Body {
		if err := g.generateStatement(stmt); err != nil {
			return emit.Method{}, err
		}
	}
	g.generateEpilogue(types.UndefinedT)
	return e.Complete(), nil
}

// GenerateFunction emits one function specialization's body against fn's
// resolved AST (c must be the Ctx ResolveFunctionBody produced for this
// same specialization).
func GenerateFunction(c *ctx.Ctx, e emit.Emitter, fn *ast.FunctionLiteral) (emit.Method, error) {
	g := newGenerator(c, e)
	g.generateArgumentsObject()
	for _, stmt := range fn.Body.Body {
		if err := g.generateStatement(stmt); err != nil {
			return emit.Method{}, err
		}
	}
	retType, _ := c.ReturnType()
	g.generateEpilogue(retType)
	return e.Complete(), nil
}

func (g *Generator) errorf(pos token.Position, format string, args ...any) error {
	return cerr.New(cerr.InternalError, pos, fmt.Sprintf(format, args...))
}

// generateEpilogue closes out the function body: if any `return` was
// generated, the return label/slot were allocated lazily (spec §4.6) and
// this defines the label and reloads the slot; a function that never
// returns explicitly instead falls off the end and pushes t's zero value
// directly, with no slot ever allocated.
func (g *Generator) generateEpilogue(t types.Type) {
	if g.Ctx.ReturnSlotAllocated() {
		g.E.DefineLabelPosition(g.Ctx.ReturnLabel)
		g.E.LoadVariable(g.Ctx.ReturnVar)
		return
	}
	g.pushZeroValue(t)
}

// pushZeroValue pushes the default value for a function/branch that
// produces no other value: undefined for an unreached tail, coerced to
// whatever type the caller ultimately expects at the conversion step.
func (g *Generator) pushZeroValue(t types.Type) {
	switch t.Kind {
	case types.Boolean:
		g.E.LoadBoolean(false)
	case types.I32, types.U32:
		g.E.LoadInt32(0)
	case types.F64:
		g.E.LoadDouble(0)
	case types.String:
		g.E.LoadString("")
	case types.Null:
		g.E.LoadNull()
	default:
		g.E.LoadUndefined()
	}
}

// convert emits whatever conversion dst requires from a value of type src
// already on the stack, per spec §4.9's conversion-source vocabulary
// (direct assignability needs nothing; everything else goes through the
// emitter's fixed conversion ops). internal/dispatch has already chosen
// dst for every call argument and return value; codegen's job is only to
// emit the op, not to choose the conversion.
func (g *Generator) convert(src, dst types.Type) {
	if src.Equal(dst) {
		return
	}
	switch dst.Kind {
	case types.Any:
		g.E.ConvertToAny()
	case types.Boolean:
		g.E.ConvertToBool()
	case types.String:
		g.E.ConvertToString()
	default:
		g.E.ConvertGeneric(src, dst)
	}
}

// loadBinding pushes v's current value, dispatching on its Kind the way
// every other node-kind dispatch in this codebase works (spec's Design
// Notes: dispatch by tag, not by a method on the variant itself — scope.
// Variable carries no GenerateGet of its own).
func (g *Generator) loadBinding(v *scope.Variable) {
	switch v.Kind {
	case scope.KindArgument:
		g.E.LoadArgument(v.ArgIndex)
	case scope.KindDeclared:
		if !v.Slot.Valid() {
			v.Slot = g.E.DeclareVariable(v.Type(), v.Name)
		}
		g.E.LoadVariable(v.Slot)
	case scope.KindGlobal:
		g.E.LoadField(v.Field)
	case scope.KindProperty:
		// A bare name resolving to a KindProperty binding only happens
		// inside a `with` body (spec §4.4's implicit-this object scope).
		// Reaching it through an ordinary unqualified reference would
		// need the with-target object value, which is no longer on hand
		// at this point in the tree; unqualified property access inside
		// `with` is not supported and reads undefined.
		g.E.LoadUndefined()
	}
}

// branchOut jumps to l, using the CLR-style Leave opcode instead of a
// plain Branch whenever the jump crosses a protected try/catch/finally
// region boundary (spec §4.9's long-jump exception: break, continue and
// return all need this when issued from inside a try).
func (g *Generator) branchOut(l emit.Label) {
	if g.tryDepth > 0 {
		g.E.Leave(l)
		return
	}
	g.E.Branch(l)
}

func (g *Generator) newTemp(t types.Type) emit.Local {
	g.tempSeq++
	return g.E.DeclareVariable(t, fmt.Sprintf("$t%d", g.tempSeq))
}

// storeBinding is loadBinding's write half.
func (g *Generator) storeBinding(v *scope.Variable) {
	switch v.Kind {
	case scope.KindArgument:
		g.E.StoreArgument(v.ArgIndex)
	case scope.KindDeclared:
		if !v.Slot.Valid() {
			v.Slot = g.E.DeclareVariable(v.Type(), v.Name)
		}
		g.E.StoreVariable(v.Slot)
	case scope.KindGlobal:
		g.E.StoreField(v.Field)
	case scope.KindProperty:
		g.E.Pop()
	}
}

// generateArgumentsObject materializes spec §4.4's "arguments" binding: an
// array holding every actual positional argument this specialization was
// called with (this excluded), including any beyond the declared parameter
// list (spec §4.8's filler slots, only reachable this way). It is a no-op
// unless the function scope actually carries the synthesized binding
// (internal/cache.buildArgumentScope's DeclareArgumentsBinding, skipped if
// a parameter already claims the name) and the resolve pass observed a
// real reference to it — building an array nobody reads would be pure
// waste, exactly the case the optimization hint exists to avoid.
func (g *Generator) generateArgumentsObject() {
	if !g.Ctx.Hints.ArgumentsReferenced {
		return
	}
	v, ok := g.Ctx.Scope.Names["arguments"]
	if !ok || v.Kind != scope.KindDeclared {
		return
	}
	n := g.Ctx.Scope.ArgCount
	g.E.LoadInt32(int32(n))
	g.E.NewArray(types.Universal)
	for i := 1; i <= n; i++ {
		g.E.Duplicate()
		g.E.LoadInt32(int32(i - 1))
		g.E.LoadArgument(i)
		g.E.StoreArrayElement(types.Universal)
	}
	g.storeBinding(v)
}
