package ctx

import (
	"fmt"

	"github.com/bablakeluke/nitrassic-go/internal/ast"
	"github.com/bablakeluke/nitrassic-go/internal/cerr"
	"github.com/bablakeluke/nitrassic-go/internal/emit"
	"github.com/bablakeluke/nitrassic-go/internal/scope"
	"github.com/bablakeluke/nitrassic-go/internal/token"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// zeroLabel stands in for the break/continue branch targets during
// ResolveVariables, which runs before any emitter exists (spec's ordering
// guarantee: ResolveVariables completes fully before GenerateCode starts).
// GenerateCode pushes its own loop frames with real emit.CreateLabel()
// targets when it walks the same statements a second time; the frames
// pushed here only matter for break/continue legality and label lookup.
var zeroLabel emit.Label

// ResolveProgram runs ResolveVariables over a top-level source unit,
// treating its statement list the way a zero-argument top-level function
// body is treated (spec: "a top-level GlobalMethodGenerator ... drive
// compilation"). global is the engine's global object scope.
func ResolveProgram(prog *ast.Program, global *scope.Scope, resolver CallResolver) *Ctx {
	c := New(global, resolver, prog.StrictAll)
	c.Root = prog
	c.hoistFunctionDeclarations(prog.Body)
	for _, stmt := range prog.Body {
		c.resolveStatement(stmt)
	}
	return c
}

// ResolveFunctionBody runs ResolveVariables over one function
// specialization: fnScope must already carry the argument bindings for
// this specialization's argument-type vector (spec §4.8's
// "ArgVariable vector reusing the generator's declared arguments").
func ResolveFunctionBody(fn *ast.FunctionLiteral, fnScope *scope.Scope, resolver CallResolver) *Ctx {
	c := New(fnScope, resolver, fn.IsStrict)
	c.Root = fn.Body
	c.hoistFunctionDeclarations(fn.Body.Body)
	for _, stmt := range fn.Body.Body {
		c.resolveStatement(stmt)
	}
	if !c.returnTypeSet {
		c.returnType = types.UndefinedT
		c.returnTypeSet = true
	}
	return c
}

// hoistFunctionDeclarations implements the function hoisting pass that
// runs before any statement is resolved in source order: function
// declarations are bound before their first use regardless of textual
// position. `var` declarations are not hoisted here; they are declared
// when their statement is resolved.
func (c *Ctx) hoistFunctionDeclarations(body []ast.Statement) {
	for _, stmt := range body {
		if fd, ok := stmt.(*ast.FunctionDeclaration); ok {
			gen := &Generator{Literal: fd.Function, Name: fd.Function.Name, Closure: c.Scope}
			v := c.declareVariable(fd.Function.Name, types.ObjectOf("Function"))
			v.TrySetConstant(gen)
			c.Hints.HasNestedFunction = true
		}
	}
}

// resolveStatement is the statement half of the post-order traversal.
func (c *Ctx) resolveStatement(stmt ast.Statement) {
	if stmt == nil {
		return
	}
	switch s := stmt.(type) {
	case *ast.BlockStatement:
		c.resolveBlockStatement(s)
	case *ast.ExpressionStatement:
		c.resolveExpressionStatement(s)
	case *ast.VarStatement:
		c.resolveVarStatement(s)
	case *ast.IfStatement:
		c.resolveIfStatement(s)
	case *ast.WhileStatement:
		c.resolveWhileStatement(s)
	case *ast.DoWhileStatement:
		c.resolveDoWhileStatement(s)
	case *ast.ForStatement:
		c.resolveForStatement(s)
	case *ast.ForInStatement:
		c.resolveForInStatement(s)
	case *ast.ForOfStatement:
		c.resolveForOfStatement(s)
	case *ast.SwitchStatement:
		c.resolveSwitchStatement(s)
	case *ast.TryStatement:
		c.resolveTryStatement(s)
	case *ast.BreakStatement:
		c.resolveBreakStatement(s)
	case *ast.ContinueStatement:
		c.resolveContinueStatement(s)
	case *ast.ReturnStatement:
		c.resolveReturnStatement(s)
	case *ast.ThrowStatement:
		c.resolveExpression(s.Value)
	case *ast.WithStatement:
		c.resolveWithStatement(s)
	case *ast.LabelledStatement:
		c.resolveLabelledStatement(s)
	case *ast.FunctionDeclaration:
		// Already bound by hoistFunctionDeclarations; its body resolves
		// lazily per specialization (spec §4.8), not here.
	case *ast.EmptyStatement, *ast.DebuggerStatement:
		// no-op
	default:
		c.addError(cerr.InternalError, stmt.Pos(), fmt.Sprintf("unresolved statement type %T", stmt))
	}
}

func (c *Ctx) resolveBlockStatement(b *ast.BlockStatement) {
	c.hoistFunctionDeclarations(b.Body)
	for _, st := range b.Body {
		c.resolveStatement(st)
	}
}

// resolveExpressionStatement marks its own expression as the
// pop-elision root (spec §4.6) before resolving it.
func (c *Ctx) resolveExpressionStatement(e *ast.ExpressionStatement) {
	prevRoot := c.RootExpr
	c.RootExpr = e.Expr
	c.resolveExpression(e.Expr)
	markRoot(e.Expr)
	c.RootExpr = prevRoot
}

// markRoot flags the expression(s) whose own code generation can omit
// pushing a value entirely rather than pushing one for internal/codegen's
// ExpressionStatement lowering to Pop (spec §4.6's pop elision): a plain
// or compound assignment, and pre/post increment/decrement, each have a
// natural "store only" form when their result feeds nothing else. A
// sequence expression's elided-ness follows its last element, since only
// that element's value would otherwise reach the discarding statement.
func markRoot(e ast.Expression) {
	switch v := e.(type) {
	case *ast.AssignmentExpression:
		v.IsRoot = true
	case *ast.UnaryExpression:
		if v.Op == token.INC || v.Op == token.DEC {
			v.IsRoot = true
		}
	case *ast.SequenceExpression:
		if len(v.Expressions) > 0 {
			markRoot(v.Expressions[len(v.Expressions)-1])
		}
	}
}

// resolveVarStatement declares each name (in the function/catch/with
// scope var and let/const both target today, per DESIGN.md's recorded
// Open Question decision) and, for an initialized declarator, applies
// the initializer's type.
func (c *Ctx) resolveVarStatement(v *ast.VarStatement) {
	for i := range v.Declarations {
		d := &v.Declarations[i]
		var t types.Type
		hasType := false
		if d.Init != nil {
			t = c.resolveExpression(d.Init)
			hasType = true
		}
		variable := c.declareVariable(d.Name.Name, t)
		d.Binding = variable
		c.Hints.sawVar(d.Name.Name)
		if hasType {
			variable.ApplyType(t)
			if constVal, ok := constantOf(d.Init); ok {
				variable.TrySetConstant(constVal)
			}
		}
	}
}

// resolveIfStatement implements spec §4.7's constant-condition
// short-circuit: a definite boolean test only resolves (and, later,
// emits) its live branch.
func (c *Ctx) resolveIfStatement(ifs *ast.IfStatement) {
	c.resolveExpression(ifs.Test)
	if b, ok := constantBool(ifs.Test); ok {
		if b {
			c.resolveStatement(ifs.Consequent)
		} else if ifs.Alternate != nil {
			c.resolveStatement(ifs.Alternate)
		}
		return
	}
	c.resolveStatement(ifs.Consequent)
	if ifs.Alternate != nil {
		c.resolveStatement(ifs.Alternate)
	}
}

func (c *Ctx) resolveWhileStatement(w *ast.WhileStatement) {
	c.resolveExpression(w.Test)
	c.PushLoop(zeroLabel, zeroLabel)
	c.resolveStatement(w.Body)
	c.PopLoop()
}

func (c *Ctx) resolveDoWhileStatement(d *ast.DoWhileStatement) {
	c.PushLoop(zeroLabel, zeroLabel)
	c.resolveStatement(d.Body)
	c.PopLoop()
	c.resolveExpression(d.Test)
}

func (c *Ctx) resolveForStatement(f *ast.ForStatement) {
	if f.Init != nil {
		switch init := f.Init.(type) {
		case ast.Statement:
			c.resolveStatement(init)
		case ast.Expression:
			c.resolveExpression(init)
		}
	}
	if f.Test != nil {
		c.resolveExpression(f.Test)
	}
	c.PushLoop(zeroLabel, zeroLabel)
	c.resolveStatement(f.Body)
	c.PopLoop()
	if f.Update != nil {
		c.resolveExpression(f.Update)
	}
}

// resolveForInStatement/resolveForOfStatement resolve the enumerated
// object, then resolve the three-call enumerate/MoveNext/GetCurrent
// protocol (spec §4.9) against its type the same way a plain method call
// would be, before declaring the per-iteration loop binding.
func (c *Ctx) resolveForInStatement(f *ast.ForInStatement) {
	objType := c.resolveExpression(f.Object)
	f.Enumerator = c.resolveSyntheticCall(objType, "GetEnumerator", f.Pos())
	f.MoveNext = c.resolveSyntheticCall(f.Enumerator.Type, "MoveNext", f.Pos())
	f.Current = c.resolveSyntheticCall(f.Enumerator.Type, "GetCurrent", f.Pos())
	c.bindForLoopVariable(f.Binding, f.IsVarDecl, types.Type{Kind: types.String})
	c.PushLoop(zeroLabel, zeroLabel)
	c.resolveStatement(f.Body)
	c.PopLoop()
}

func (c *Ctx) resolveForOfStatement(f *ast.ForOfStatement) {
	objType := c.resolveExpression(f.Object)
	f.Enumerator = c.resolveSyntheticCall(objType, "GetEnumerator", f.Pos())
	f.MoveNext = c.resolveSyntheticCall(f.Enumerator.Type, "MoveNext", f.Pos())
	f.Current = c.resolveSyntheticCall(f.Enumerator.Type, "GetCurrent", f.Pos())
	c.bindForLoopVariable(f.Binding, f.IsVarDecl, types.Universal)
	c.PushLoop(zeroLabel, zeroLabel)
	c.resolveStatement(f.Body)
	c.PopLoop()
}

// resolveSyntheticCall lowers a zero-argument method call internal/ctx
// itself needs (not written by the programmer) through the same
// CallResolver a CallExpression uses, so built-in enumerator protocols
// participate in ordinary overload resolution instead of needing a
// bespoke lookup path.
func (c *Ctx) resolveSyntheticCall(objType types.Type, member string, pos token.Position) ast.ResolvedCall {
	if c.Resolver == nil {
		return ast.ResolvedCall{Target: ast.CallTarget{Unresolved: true}, Type: types.Universal}
	}
	target, resultType := c.Resolver.ResolveMemberCall(c, objType, member, false, nil, false)
	if target.Unresolved {
		c.addError(cerr.TypeError, pos, fmt.Sprintf("%s is not enumerable (no %s available)", objType, member))
	}
	return ast.ResolvedCall{Target: target, Type: resultType}
}

func (c *Ctx) bindForLoopVariable(binding ast.Expression, isVarDecl bool, elemType types.Type) {
	name, ok := binding.(*ast.NameExpression)
	if !ok {
		c.resolveExpression(binding)
		return
	}
	if isVarDecl {
		v := c.declareVariable(name.Name, elemType)
		name.Binding = v
		name.Type = v.Type()
		return
	}
	c.resolveExpression(name)
	if name.Binding != nil {
		name.Binding.ApplyType(elemType)
	}
}

func (c *Ctx) resolveSwitchStatement(s *ast.SwitchStatement) {
	c.resolveExpression(s.Discriminant)
	seenDefault := false
	for _, cs := range s.Cases {
		if cs.Test == nil {
			if seenDefault {
				c.addError(cerr.SyntaxError, s.Pos(), "more than one default clause in switch statement")
			}
			seenDefault = true
		} else {
			c.resolveExpression(cs.Test)
		}
	}
	c.PushLoop(zeroLabel, zeroLabel)
	for _, cs := range s.Cases {
		for _, st := range cs.Body {
			c.resolveStatement(st)
		}
	}
	c.PopLoop()
}

func (c *Ctx) resolveTryStatement(t *ast.TryStatement) {
	c.resolveBlockStatement(t.Block)
	if t.Catch != nil {
		var catchScope *scope.Scope
		if t.Catch.Param != nil {
			catchScope = scope.NewCatchScope(c.Scope, t.Catch.Param.Name)
			t.Catch.Binding, _, _ = catchScope.Lookup(t.Catch.Param.Name)
		} else {
			catchScope = scope.NewDeclarative(c.Scope, scope.KindCatch)
		}
		prev := c.EnterScope(catchScope)
		c.resolveBlockStatement(t.Catch.Body)
		c.ExitScope(prev)
	}
	if t.Finally != nil {
		c.resolveBlockStatement(t.Finally)
	}
}

func (c *Ctx) resolveBreakStatement(b *ast.BreakStatement) {
	if _, ok := c.FindLoop(b.Label); !ok {
		c.addError(cerr.SyntaxError, b.Pos(), "illegal break statement")
	}
}

func (c *Ctx) resolveContinueStatement(ct *ast.ContinueStatement) {
	if _, ok := c.FindLoop(ct.Label); !ok {
		c.addError(cerr.SyntaxError, ct.Pos(), "illegal continue statement")
	}
}

// resolveReturnStatement implements spec §4.7's return-type accumulator:
// a bare `return;` contributes the undefined type, `return e;`
// contributes typeOf(e).
func (c *Ctx) resolveReturnStatement(r *ast.ReturnStatement) {
	if r.Value == nil {
		c.AccumulateReturn(types.UndefinedT)
		return
	}
	t := c.resolveExpression(r.Value)
	c.AccumulateReturn(t)
}

func (c *Ctx) resolveWithStatement(w *ast.WithStatement) {
	c.resolveExpression(w.Object)
	if c.Strict {
		c.addError(cerr.SyntaxError, w.Pos(), "'with' statements are not allowed in strict mode code")
		return
	}
	// ctx records the scope shape but leaves Object nil, and nothing
	// fills it in later: names inside the body resolve through the
	// enclosing scopes, not through the `with` target's properties.
	withScope := scope.NewObjectScope(c.Scope, scope.KindWith, nil, false, true)
	prev := c.EnterScope(withScope)
	c.resolveStatement(w.Body)
	c.ExitScope(prev)
}

func (c *Ctx) resolveLabelledStatement(l *ast.LabelledStatement) {
	c.PushLabel(l.Label)
	c.resolveStatement(l.Body)
	c.ClearPendingLabels()
}
