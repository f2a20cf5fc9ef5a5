package codegen

import (
	"github.com/bablakeluke/nitrassic-go/internal/ast"
	"github.com/bablakeluke/nitrassic-go/internal/emit"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// generateStatement is the statement half of GenerateCode (§4.9): a
// second, emitting walk of the same tree ResolveVariables already
// annotated. It never re-resolves a name, re-infers a type, or re-scores
// an overload — every decision it needs (Binding, Type, Target, Constant,
// IsRoot) was already written onto the node by internal/ctx.
func (g *Generator) generateStatement(stmt ast.Statement) error {
	if stmt == nil {
		return nil
	}
	switch s := stmt.(type) {
	case *ast.BlockStatement:
		return g.generateBlock(s)
	case *ast.ExpressionStatement:
		g.generateForEffect(s.Expr)
		return nil
	case *ast.VarStatement:
		return g.generateVarStatement(s)
	case *ast.IfStatement:
		return g.generateIf(s)
	case *ast.WhileStatement:
		return g.generateWhile(s)
	case *ast.DoWhileStatement:
		return g.generateDoWhile(s)
	case *ast.ForStatement:
		return g.generateFor(s)
	case *ast.ForInStatement:
		return g.generateForIn(s)
	case *ast.ForOfStatement:
		return g.generateForOf(s)
	case *ast.SwitchStatement:
		return g.generateSwitch(s)
	case *ast.TryStatement:
		return g.generateTry(s)
	case *ast.BreakStatement:
		return g.generateBreak(s)
	case *ast.ContinueStatement:
		return g.generateContinue(s)
	case *ast.ReturnStatement:
		return g.generateReturn(s)
	case *ast.ThrowStatement:
		g.generateExpressionValue(s.Value)
		g.convert(s.Value.GetResultType(), types.Universal)
		g.E.Throw()
		return nil
	case *ast.WithStatement:
		return g.generateWith(s)
	case *ast.LabelledStatement:
		return g.generateLabelled(s)
	case *ast.FunctionDeclaration:
		// Already bound during ResolveVariables; its body compiles lazily,
		// once per argument-type vector, when internal/cache first calls it.
		return nil
	case *ast.EmptyStatement, *ast.DebuggerStatement:
		if _, ok := s.(*ast.DebuggerStatement); ok {
			g.E.Breakpoint()
		}
		return nil
	default:
		return g.errorf(stmt.Pos(), "unhandled statement type %T", stmt)
	}
}

func (g *Generator) generateBlock(b *ast.BlockStatement) error {
	for _, st := range b.Body {
		if err := g.generateStatement(st); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) generateVarStatement(v *ast.VarStatement) error {
	for _, d := range v.Declarations {
		if d.Init == nil {
			continue
		}
		g.generateExpressionValue(d.Init)
		g.convert(d.Init.GetResultType(), d.Binding.Type())
		g.storeBinding(d.Binding)
	}
	return nil
}

// generateIf implements the constant-condition elision ResolveVariables
// already applied to its resolved tree (§4.7): a literal-boolean test only
// ever resolved its live branch, so the dead one was never even type-
// checked and must not be emitted either.
func (g *Generator) generateIf(i *ast.IfStatement) error {
	if b, ok := constantBoolValue(i.Test); ok {
		if b {
			return g.generateStatement(i.Consequent)
		}
		if i.Alternate != nil {
			return g.generateStatement(i.Alternate)
		}
		return nil
	}
	elseLabel := g.E.CreateLabel()
	g.generateExpressionValue(i.Test)
	g.E.ConvertToBool()
	g.E.BranchIfFalse(elseLabel)
	if err := g.generateStatement(i.Consequent); err != nil {
		return err
	}
	if i.Alternate == nil {
		g.E.DefineLabelPosition(elseLabel)
		return nil
	}
	end := g.E.CreateLabel()
	g.E.Branch(end)
	g.E.DefineLabelPosition(elseLabel)
	if err := g.generateStatement(i.Alternate); err != nil {
		return err
	}
	g.E.DefineLabelPosition(end)
	return nil
}

// generateWhile is the test-at-top loop template (§4.11): test, branch
// past the body if false, body, branch back to the test.
func (g *Generator) generateWhile(w *ast.WhileStatement) error {
	top := g.E.CreateLabel()
	done := g.E.CreateLabel()
	g.E.DefineLabelPosition(top)
	g.generateExpressionValue(w.Test)
	g.E.ConvertToBool()
	g.E.BranchIfFalse(done)
	g.Ctx.PushLoop(done, top)
	err := g.generateStatement(w.Body)
	g.Ctx.PopLoop()
	if err != nil {
		return err
	}
	g.E.Branch(top)
	g.E.DefineLabelPosition(done)
	return nil
}

// generateDoWhile is the test-at-bottom template: body runs once
// unconditionally before the first test.
func (g *Generator) generateDoWhile(d *ast.DoWhileStatement) error {
	top := g.E.CreateLabel()
	continueLabel := g.E.CreateLabel()
	done := g.E.CreateLabel()
	g.E.DefineLabelPosition(top)
	g.Ctx.PushLoop(done, continueLabel)
	err := g.generateStatement(d.Body)
	g.Ctx.PopLoop()
	if err != nil {
		return err
	}
	g.E.DefineLabelPosition(continueLabel)
	g.generateExpressionValue(d.Test)
	g.E.ConvertToBool()
	g.E.BranchIfTrue(top)
	g.E.DefineLabelPosition(done)
	return nil
}

// generateFor is the classic three-clause loop: init once, test-at-top,
// body, update, back to test. continue targets the update clause, not the
// test, so a `continue` still runs it before re-testing.
func (g *Generator) generateFor(f *ast.ForStatement) error {
	if f.Init != nil {
		switch init := f.Init.(type) {
		case ast.Statement:
			if err := g.generateStatement(init); err != nil {
				return err
			}
		case ast.Expression:
			g.generateForEffect(init)
		}
	}
	top := g.E.CreateLabel()
	continueLabel := g.E.CreateLabel()
	done := g.E.CreateLabel()
	g.E.DefineLabelPosition(top)
	if f.Test != nil {
		g.generateExpressionValue(f.Test)
		g.E.ConvertToBool()
		g.E.BranchIfFalse(done)
	}
	g.Ctx.PushLoop(done, continueLabel)
	err := g.generateStatement(f.Body)
	g.Ctx.PopLoop()
	if err != nil {
		return err
	}
	g.E.DefineLabelPosition(continueLabel)
	if f.Update != nil {
		g.generateForEffect(f.Update)
	}
	g.E.Branch(top)
	g.E.DefineLabelPosition(done)
	return nil
}

// generateForIn/generateForOf both lower to the same enumerate/MoveNext/
// assign-current/body/loop shape (§4.9), calling the three resolved
// GetEnumerator/MoveNext/GetCurrent targets ResolveVariables already
// bound onto the statement as ordinary method calls.
func (g *Generator) generateForIn(f *ast.ForInStatement) error {
	return g.generateForEach(f.Object, f.Binding, f.IsVarDecl, f.Body, f.Enumerator, f.MoveNext, f.Current)
}

func (g *Generator) generateForOf(f *ast.ForOfStatement) error {
	return g.generateForEach(f.Object, f.Binding, f.IsVarDecl, f.Body, f.Enumerator, f.MoveNext, f.Current)
}

func (g *Generator) generateForEach(
	object, binding ast.Expression,
	isVarDecl bool,
	body ast.Statement,
	enumerate, moveNext, current ast.ResolvedCall,
) error {
	g.generateExpressionValue(object)
	g.generateSyntheticCall(enumerate)
	enumTemp := g.newTemp(enumerate.Type)
	g.E.StoreVariable(enumTemp)

	top := g.E.CreateLabel()
	continueLabel := g.E.CreateLabel()
	done := g.E.CreateLabel()
	g.E.DefineLabelPosition(top)
	g.E.LoadVariable(enumTemp)
	g.generateSyntheticCall(moveNext)
	g.E.ConvertToBool()
	g.E.BranchIfFalse(done)

	g.E.LoadVariable(enumTemp)
	g.generateSyntheticCall(current)
	g.assignLoopBinding(binding, isVarDecl)

	g.Ctx.PushLoop(done, continueLabel)
	err := g.generateStatement(body)
	g.Ctx.PopLoop()
	if err != nil {
		return err
	}
	g.E.DefineLabelPosition(continueLabel)
	g.E.Branch(top)
	g.E.DefineLabelPosition(done)
	g.E.ReleaseTemporaryVariable(enumTemp)
	return nil
}

// generateSyntheticCall invokes one leg of the enumerate/MoveNext/
// GetCurrent protocol against a value already on the stack (the
// enumerator, or the object being enumerated); call.Target carries no
// arguments of its own, so this is the same CallTarget lowering
// generateCallLike does minus argument handling.
func (g *Generator) generateSyntheticCall(call ast.ResolvedCall) {
	if call.Target.Unresolved {
		g.E.Pop()
		g.E.LoadUndefined()
		return
	}
	g.E.Call(call.Target.Handle)
}

// assignLoopBinding stores the current enumerated value into the loop
// binding by writing through its single statically-allocated slot — the
// same slot for every iteration, whether declared by `var`/`let`/`const`
// or an existing reference. There is no per-iteration rebinding here.
func (g *Generator) assignLoopBinding(binding ast.Expression, isVarDecl bool) {
	switch b := binding.(type) {
	case *ast.NameExpression:
		g.convert(types.Universal, b.Binding.Type())
		g.storeBinding(b.Binding)
	case *ast.MemberAccess:
		// A member-access binding target (`for (obj.x in y)`) is legal but
		// rare; stage it through the same object/key temp protocol
		// generateMemberAssignment uses.
		valTemp := g.newTemp(types.Universal)
		g.E.StoreVariable(valTemp)
		g.generateExpressionValue(b.Object)
		if b.Computed {
			g.generateExpressionValue(b.Index)
			g.E.LoadVariable(valTemp)
			g.E.SetElement()
		} else {
			g.E.LoadVariable(valTemp)
			g.E.SetProperty(b.Property)
		}
		g.E.ReleaseTemporaryVariable(valTemp)
	default:
		g.E.Pop()
	}
	_ = isVarDecl // declaration already happened during ResolveVariables; codegen only ever stores
}

// generateSwitch tests the discriminant against each case by strict
// equality in source order (a general value switch, not the dense-integer
// jump table Emitter.Switch models) and falls through between cases
// exactly like the source does; a `break` branches to the end label.
func (g *Generator) generateSwitch(s *ast.SwitchStatement) error {
	discTemp := g.newTemp(types.Universal)
	g.generateExpressionValue(s.Discriminant)
	g.E.StoreVariable(discTemp)

	end := g.E.CreateLabel()
	labels := make([]emit.Label, len(s.Cases))
	defaultIndex := -1
	for i, cs := range s.Cases {
		labels[i] = g.E.CreateLabel()
		if cs.Test == nil {
			defaultIndex = i
		}
	}
	for i, cs := range s.Cases {
		if cs.Test == nil {
			continue
		}
		g.E.LoadVariable(discTemp)
		g.generateExpressionValue(cs.Test)
		g.E.BinaryOp(emit.OpStrictEq)
		g.E.BranchIfTrue(labels[i])
	}
	if defaultIndex >= 0 {
		g.E.Branch(labels[defaultIndex])
	} else {
		g.E.Branch(end)
	}

	// continue inside a switch (with no enclosing loop) isn't legal source,
	// but ResolveVariables' loops stack doesn't distinguish a switch frame
	// from a loop frame (see DESIGN.md); codegen mirrors that by aiming an
	// unlabeled continue at the same place as break rather than crashing.
	g.Ctx.PushLoop(end, end)
	for i, cs := range s.Cases {
		g.E.DefineLabelPosition(labels[i])
		for _, st := range cs.Body {
			if err := g.generateStatement(st); err != nil {
				g.Ctx.PopLoop()
				return err
			}
		}
	}
	g.Ctx.PopLoop()
	g.E.DefineLabelPosition(end)
	g.E.ReleaseTemporaryVariable(discTemp)
	return nil
}

// generateTry wires BeginExceptionBlock/BeginCatchBlock/BeginFinallyBlock/
// EndExceptionBlock around the block/catch/finally bodies, the same
// nested-region shape System.Reflection.Emit's ILGenerator exposes. A
// break/continue/return issued from inside any of these bodies uses
// branchOut (Leave) rather than a plain Branch, since it's crossing a
// protected region boundary.
func (g *Generator) generateTry(t *ast.TryStatement) error {
	g.tryDepth++
	defer func() { g.tryDepth-- }()

	g.E.BeginExceptionBlock()
	if err := g.generateBlock(t.Block); err != nil {
		return err
	}
	if t.Catch != nil {
		local := g.E.BeginCatchBlock(types.Universal)
		if t.Catch.Binding != nil {
			t.Catch.Binding.Slot = local
		}
		if err := g.generateBlock(t.Catch.Body); err != nil {
			return err
		}
	}
	if t.Finally != nil {
		g.E.BeginFinallyBlock()
		if err := g.generateBlock(t.Finally); err != nil {
			return err
		}
	}
	g.E.EndExceptionBlock()
	return nil
}

func (g *Generator) generateBreak(b *ast.BreakStatement) error {
	frame, ok := g.Ctx.FindLoop(b.Label)
	if !ok {
		return g.errorf(b.Pos(), "illegal break statement")
	}
	g.branchOut(frame.BreakTarget)
	return nil
}

func (g *Generator) generateContinue(c *ast.ContinueStatement) error {
	frame, ok := g.Ctx.FindLoop(c.Label)
	if !ok {
		return g.errorf(c.Pos(), "illegal continue statement")
	}
	g.branchOut(frame.ContinueTarget)
	return nil
}

// generateReturn stores through the lazily-allocated return slot and
// branches to the epilogue label (§4.6): every return uses this uniform
// path, even one that's syntactically a function's last statement — there
// is no special-cased tail-return fast path.
func (g *Generator) generateReturn(r *ast.ReturnStatement) error {
	retType, _ := g.Ctx.ReturnType()
	slot, label := g.Ctx.AllocateReturnSlot(g.E, retType)
	if r.Value != nil {
		g.generateExpressionValue(r.Value)
		g.convert(r.Value.GetResultType(), retType)
	} else {
		g.pushZeroValue(retType)
	}
	g.E.StoreVariable(slot)
	g.branchOut(label)
	return nil
}

// generateWith still evaluates Object for its side effects (a `with`
// target can be an arbitrary expression, e.g. `with (load())`), then
// generates Body unchanged — unqualified name resolution inside Body
// already fell back to KindProperty/undefined during ResolveVariables
// (see loadBinding's documented limitation).
func (g *Generator) generateWith(w *ast.WithStatement) error {
	g.generateExpressionValue(w.Object)
	g.E.Pop()
	return g.generateStatement(w.Body)
}

func (g *Generator) generateLabelled(l *ast.LabelledStatement) error {
	g.Ctx.PushLabel(l.Label)
	err := g.generateStatement(l.Body)
	g.Ctx.ClearPendingLabels()
	return err
}
