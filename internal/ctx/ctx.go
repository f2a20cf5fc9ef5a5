// Package ctx implements C7: the optimization context threaded through
// ResolveVariables and GenerateCode (spec §4.6), and ResolveVariables
// itself, the post-order name-resolution / bottom-up type-inference /
// constant-tracking pass (spec §4.7). It depends on internal/ast,
// internal/scope, internal/proto, internal/types and internal/emit, and
// declares the CallResolver interface that internal/dispatch implements
// — ctx never imports dispatch directly, since dispatch's specialization
// of a callee recursively calls back into ResolveVariables (spec §4.8's
// caller/callee mutual recursion).
package ctx

import (
	"github.com/bablakeluke/nitrassic-go/internal/ast"
	"github.com/bablakeluke/nitrassic-go/internal/cerr"
	"github.com/bablakeluke/nitrassic-go/internal/emit"
	"github.com/bablakeluke/nitrassic-go/internal/proto"
	"github.com/bablakeluke/nitrassic-go/internal/scope"
	"github.com/bablakeluke/nitrassic-go/internal/token"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// MethodHints are the per-specialization optimization facts spec §4.6
// names: "this was referenced", "arguments was referenced", "contains
// nested function", and the set of encountered variable names.
type MethodHints struct {
	ThisReferenced      bool
	ArgumentsReferenced bool
	HasNestedFunction   bool
	VarNames            map[string]bool
}

func newHints() *MethodHints { return &MethodHints{VarNames: map[string]bool{}} }

func (h *MethodHints) sawVar(name string) { h.VarNames[name] = true }

// LoopFrame is one entry of the break/continue stack: the labels that
// reach this loop (its own LabelledStatement chain, if any) plus its
// break/continue branch targets and whether unlabeled break/continue
// defaults to it (spec §4.6: "a flag indicating whether label
// defaulting applies").
type LoopFrame struct {
	Labels         map[string]bool
	BreakTarget    emit.Label
	ContinueTarget emit.Label
	IsDefault      bool
}

// Generator is the constant value a function literal or declaration
// resolves to (spec §4.7 point 2: "name/property loads return the
// variable's current type"; for a function binding that value is this
// Generator, not a primitive). internal/dispatch keys its specialization
// table off the Generator's identity; internal/cache stores the table.
type Generator struct {
	Literal *ast.FunctionLiteral
	Name    string
	Closure *scope.Scope // the scope chain active where the literal was written, for free-variable lookup
}

// LongJumpTable assigns small integer ids to branch targets that must be
// reached by unwinding a try/finally region (spec §4.9's long-jump
// exception). Ids are stable within one function compilation.
type LongJumpTable struct {
	ids  map[emit.Label]int
	next int
}

func newLongJumpTable() *LongJumpTable { return &LongJumpTable{ids: map[emit.Label]int{}} }

// IDFor returns the stable id for target, allocating one on first use.
func (t *LongJumpTable) IDFor(target emit.Label) int {
	if id, ok := t.ids[target]; ok {
		return id
	}
	id := t.next
	t.next++
	t.ids[target] = id
	return id
}

// CallResolver is implemented by internal/dispatch (C8) and injected into
// every Ctx. ResolveVariables calls it to lower a call site to a concrete
// target and learn its result type, without internal/ctx importing
// internal/dispatch — dispatch depends on ctx (to resolve a callee's body
// before reporting its return type), so the dependency can only run one
// way; this interface is the seam spec's Design Notes ask for ("the
// polymorphism ... implement as an interface abstraction").
type CallResolver interface {
	// ResolveMemberCall lowers `obj.member(args...)` (or, for an indexer,
	// a computed member). isNew distinguishes `new obj.Member(...)`.
	ResolveMemberCall(c *Ctx, objType types.Type, member string, computed bool, argTypes []types.Type, isNew bool) (ast.CallTarget, types.Type)

	// ResolveBareCall lowers `f(args...)` / `new f(...)` where calleeConst,
	// if non-nil, is the callee's tracked constant value (possibly a
	// *Generator).
	ResolveBareCall(c *Ctx, calleeType types.Type, calleeConst any, argTypes []types.Type, isNew bool) (ast.CallTarget, types.Type)
}

// Ctx is the optimization context (spec §4.6): a single mutable record
// threaded through one function specialization's ResolveVariables pass
// (and, later, its GenerateCode pass). A fresh Ctx is created per
// specialization by internal/cache.GetCompiled; it is not reused across
// functions.
type Ctx struct {
	Strict bool
	Root   ast.Node
	Scope  *scope.Scope

	Hints *MethodHints

	returnType    types.Type
	returnTypeSet bool
	ReturnVar     emit.Local
	ReturnLabel   emit.Label
	returnAlloc   bool

	loops         []*LoopFrame
	pendingLabels []string

	RootExpr        ast.Expression
	IsConstructCall bool

	LongJump *LongJumpTable
	Resolver CallResolver

	Source string // full source text, threaded into diagnostics for caret formatting
	Path   string

	Errors []*cerr.CompileError
}

// New creates a Ctx for one function (or top-level program) compilation,
// rooted at scope sc.
func New(sc *scope.Scope, resolver CallResolver, strict bool) *Ctx {
	return &Ctx{
		Strict:   strict,
		Scope:    sc,
		Hints:    newHints(),
		LongJump: newLongJumpTable(),
		Resolver: resolver,
	}
}

func (c *Ctx) addError(kind cerr.Kind, pos token.Position, msg string) {
	c.Errors = append(c.Errors, &cerr.CompileError{Kind: kind, Message: msg, Pos: pos, Source: c.Source})
}

// ReturnType returns the function's accumulated return type and whether
// any `return` with an operand has been seen yet.
func (c *Ctx) ReturnType() (types.Type, bool) { return c.returnType, c.returnTypeSet }

// AccumulateReturn applies spec §4.7's return-type accumulation rule: the
// first contribution sets the type, a later disagreeing one collapses it
// to Universal.
func (c *Ctx) AccumulateReturn(t types.Type) {
	if c.returnTypeSet && c.returnType.Kind == types.Any {
		return
	}
	if !c.returnTypeSet {
		c.returnType = t
		c.returnTypeSet = true
		return
	}
	if !c.returnType.Equal(t) {
		c.returnType = types.Universal
	}
}

// AllocateReturnSlot lazily allocates the return-variable local and
// return label on the first `return` codegen lowers (every return,
// including a tail return, goes through them), per spec §4.6.
func (c *Ctx) AllocateReturnSlot(e emit.Emitter, t types.Type) (emit.Local, emit.Label) {
	if !c.returnAlloc {
		c.ReturnVar = e.DeclareVariable(t, "$return")
		c.ReturnLabel = e.CreateLabel()
		c.returnAlloc = true
	}
	return c.ReturnVar, c.ReturnLabel
}

// ReturnSlotAllocated reports whether AllocateReturnSlot has run yet.
func (c *Ctx) ReturnSlotAllocated() bool { return c.returnAlloc }

// PushLoop pushes a break/continue frame, claiming any labels pending
// from preceding LabelledStatement wrappers (spec §4.6's "current-labels
// list attached to the next statement").
func (c *Ctx) PushLoop(breakTarget, continueTarget emit.Label) *LoopFrame {
	labels := map[string]bool{}
	for _, l := range c.pendingLabels {
		labels[l] = true
	}
	c.pendingLabels = nil
	f := &LoopFrame{Labels: labels, BreakTarget: breakTarget, ContinueTarget: continueTarget, IsDefault: true}
	c.loops = append(c.loops, f)
	return f
}

// PopLoop removes the innermost loop frame.
func (c *Ctx) PopLoop() {
	if len(c.loops) > 0 {
		c.loops = c.loops[:len(c.loops)-1]
	}
}

// PushLabel attaches label to the next statement parsed (a bare
// LabelledStatement around a non-loop, non-switch statement has no
// frame of its own — its label only matters if that statement is
// itself a loop or switch, both of which PushLoop will claim).
func (c *Ctx) PushLabel(label string) { c.pendingLabels = append(c.pendingLabels, label) }

// ClearPendingLabels discards any pending labels not claimed by a loop
// or switch (spec is silent on this edge case; unclaimed labels simply
// label a plain statement and never participate in break-target lookup).
func (c *Ctx) ClearPendingLabels() { c.pendingLabels = nil }

// FindLoop resolves a break/continue label (empty string for the
// unlabeled, innermost-default form) to its frame.
func (c *Ctx) FindLoop(label string) (*LoopFrame, bool) {
	if label == "" {
		for i := len(c.loops) - 1; i >= 0; i-- {
			if c.loops[i].IsDefault {
				return c.loops[i], true
			}
		}
		return nil, false
	}
	for i := len(c.loops) - 1; i >= 0; i-- {
		if c.loops[i].Labels[label] {
			return c.loops[i], true
		}
	}
	return nil, false
}

// declareVariable introduces name in the nearest scope that can declare
// vars, refining its type if it already exists. scope.DeclareVariable
// returns nil for a name it can't find on an object-backed (global)
// scope, since materializing a new global property means constructing a
// proto.Property and internal/scope stays free of a dependency on
// internal/proto's concrete Prototype type — that materialization
// happens here instead, one level up.
func (c *Ctx) declareVariable(name string, t types.Type) *scope.Variable {
	if v := c.Scope.DeclareVariable(name, t); v != nil {
		return v
	}
	target := c.Scope
	for !target.CanDeclareVars {
		target = target.Parent
	}
	declType := t
	if declType == (types.Type{}) {
		declType = types.Universal
	}
	if p, ok := target.Object.(*proto.Prototype); ok {
		return p.AddProperty(name, declType, proto.DefaultAttrs)
	}
	return scope.NewDeclared(name)
}

// EnterScope swaps in sc as the active scope, returning the previous one
// so the caller can restore it on exit (function/catch/with boundaries).
func (c *Ctx) EnterScope(sc *scope.Scope) *scope.Scope {
	prev := c.Scope
	c.Scope = sc
	return prev
}

// ExitScope restores a scope saved by EnterScope.
func (c *Ctx) ExitScope(prev *scope.Scope) { c.Scope = prev }
