package codegen

import (
	"github.com/bablakeluke/nitrassic-go/internal/ast"
	"github.com/bablakeluke/nitrassic-go/internal/emit"
	"github.com/bablakeluke/nitrassic-go/internal/token"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// generateExpressionValue emits e so that exactly one value is left on the
// stack, regardless of whether e's own IsRoot flag is set — a caller that
// needs e's value (an operand, an argument, a nested sub-expression) always
// gets one. generateForEffect is the sibling entry point for a context that
// may discard it.
func (g *Generator) generateExpressionValue(e ast.Expression) {
	switch v := e.(type) {
	case *ast.PrimitiveLiteral:
		g.generatePrimitive(v)
	case *ast.ArrayLiteral:
		g.generateArrayLiteral(v)
	case *ast.ObjectLiteral:
		g.generateObjectLiteral(v)
	case *ast.TemplateLiteral:
		g.generateTemplateLiteral(v)
	case *ast.NameExpression:
		g.loadBinding(v.Binding)
	case *ast.MemberAccess:
		g.generateMemberRead(v)
	case *ast.CallExpression:
		g.generateCallLike(v.Callee, v.Arguments, v.Target)
	case *ast.NewExpression:
		g.generateCallLike(v.Callee, v.Arguments, v.Target)
	case *ast.AssignmentExpression:
		g.generateAssignment(v)
	case *ast.UnaryExpression:
		g.generateUnary(v)
	case *ast.BinaryExpression:
		g.generateBinary(v)
	case *ast.ConditionalExpression:
		g.generateConditional(v)
	case *ast.SequenceExpression:
		g.generateSequenceValue(v)
	case *ast.FunctionLiteral:
		g.generateFunctionValue(v)
	default:
		g.E.LoadUndefined()
	}
}

// generateForEffect emits e for its side effects only. An assignment or
// increment/decrement whose IsRoot was set by ResolveVariables (§4.6's pop
// elision) never pushes a value in the first place; anything else is
// generated normally and popped.
func (g *Generator) generateForEffect(e ast.Expression) {
	switch v := e.(type) {
	case *ast.AssignmentExpression:
		g.generateAssignment(v)
		if !v.IsRoot {
			g.E.Pop()
		}
	case *ast.UnaryExpression:
		if v.Op == token.INC || v.Op == token.DEC {
			g.generateIncDec(v)
			if !v.IsRoot {
				g.E.Pop()
			}
			return
		}
		g.generateExpressionValue(e)
		g.E.Pop()
	case *ast.SequenceExpression:
		for _, el := range v.Expressions {
			g.generateForEffect(el)
		}
	default:
		g.generateExpressionValue(e)
		g.E.Pop()
	}
}

func (g *Generator) generatePrimitive(l *ast.PrimitiveLiteral) {
	switch l.Token.Type {
	case token.NUMBER:
		if l.Kind == token.KindInt {
			g.E.LoadInt32(int32(toFloat64(l.Value)))
		} else {
			g.E.LoadDouble(toFloat64(l.Value))
		}
	case token.STRING:
		s, _ := l.Value.(string)
		g.E.LoadString(s)
	case token.TRUE:
		g.E.LoadBoolean(true)
	case token.FALSE:
		g.E.LoadBoolean(false)
	case token.NULL:
		g.E.LoadNull()
	default:
		g.E.LoadUndefined()
	}
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// generateArrayLiteral builds the array at its literal-tracked "Array"
// type (spec's typed-field specialization doesn't reach array-literal
// elements, so every slot is boxed as the universal type).
func (g *Generator) generateArrayLiteral(a *ast.ArrayLiteral) {
	g.E.LoadInt32(int32(len(a.Elements)))
	g.E.NewArray(types.Universal)
	for i, el := range a.Elements {
		if el == nil {
			continue // elision ("[1,,3]") leaves the slot at its default
		}
		g.E.Duplicate()
		g.E.LoadInt32(int32(i))
		g.generateExpressionValue(el)
		g.convert(el.GetResultType(), types.Universal)
		g.E.StoreArrayElement(types.Universal)
	}
}

// generateObjectLiteral builds a plain object and assigns each property in
// source order, same as the engine's own object-construction semantics
// (later duplicate keys overwrite earlier ones).
func (g *Generator) generateObjectLiteral(o *ast.ObjectLiteral) {
	g.E.NewObject(emit.Method{})
	for _, p := range o.Properties {
		g.E.Duplicate()
		g.generateExpressionValue(p.Value)
		g.convert(p.Value.GetResultType(), types.Universal)
		if p.Computed {
			// SetElement expects [obj, key, value]; key goes between the
			// duplicated object reference and the already-pushed value, so
			// it's generated through a temp to keep the stack in order.
			valTemp := g.newTemp(types.Universal)
			g.E.StoreVariable(valTemp)
			g.generateExpressionValue(p.KeyExpr)
			g.convert(p.KeyExpr.GetResultType(), types.Type{Kind: types.String})
			g.E.LoadVariable(valTemp)
			g.E.ReleaseTemporaryVariable(valTemp)
			g.E.SetElement()
		} else {
			g.E.SetProperty(p.Key)
		}
	}
}

// generateTemplateLiteral concatenates quasis and substitution values
// left to right, converting each substitution through ToString the way
// the ECMAScript template-literal evaluation semantics require.
func (g *Generator) generateTemplateLiteral(t *ast.TemplateLiteral) {
	g.E.LoadString(t.Quasis[0])
	for i, expr := range t.Expressions {
		g.generateExpressionValue(expr)
		g.E.ConvertToString()
		g.E.BinaryOp(emit.OpAdd)
		g.E.LoadString(t.Quasis[i+1])
		g.E.BinaryOp(emit.OpAdd)
	}
}

func (g *Generator) generateMemberRead(m *ast.MemberAccess) {
	g.generateExpressionValue(m.Object)
	if m.Computed {
		g.generateExpressionValue(m.Index)
		g.E.GetElement()
		return
	}
	g.E.GetProperty(m.Property)
}

// generateCallLike lowers both CallExpression and NewExpression against
// the CallTarget internal/dispatch already resolved: push `this` if the
// target needs one, push each fixed argument converted to its declared
// parameter type, materialize a trailing params array for a variadic
// built-in, then call the resolved handle. An unresolved target (dispatch
// could prove no concrete overload) still evaluates every sub-expression
// for its side effects and yields undefined, rather than silently
// dropping them.
func (g *Generator) generateCallLike(callee ast.Expression, args []ast.Expression, target ast.CallTarget) {
	if target.Unresolved {
		if ma, ok := callee.(*ast.MemberAccess); ok {
			g.generateExpressionValue(ma.Object)
			g.E.Pop()
		} else {
			g.generateExpressionValue(callee)
			g.E.Pop()
		}
		for _, a := range args {
			g.generateExpressionValue(a)
			g.E.Pop()
		}
		g.E.LoadUndefined()
		return
	}

	if target.HasThisObj {
		if ma, ok := callee.(*ast.MemberAccess); ok {
			g.generateExpressionValue(ma.Object)
		} else {
			g.E.LoadUndefined()
		}
	}

	fixed := len(target.ParamTypes)
	for i := 0; i < fixed; i++ {
		if i < len(args) {
			g.generateExpressionValue(args[i])
			g.convert(args[i].GetResultType(), target.ParamTypes[i])
		} else {
			g.pushZeroValue(target.ParamTypes[i])
		}
	}
	if target.ParamsArray {
		extra := args[min(fixed, len(args)):]
		g.E.LoadInt32(int32(len(extra)))
		g.E.NewArray(types.Universal)
		for i, a := range extra {
			g.E.Duplicate()
			g.E.LoadInt32(int32(i))
			g.generateExpressionValue(a)
			g.convert(a.GetResultType(), types.Universal)
			g.E.StoreArrayElement(types.Universal)
		}
	}
	g.E.Call(target.Handle)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// generateAssignment lowers `lhs = rhs` and the compound variants. It
// consults a.IsRoot (set only when this node is an ExpressionStatement's
// discarded tail, possibly through a chain of trailing comma expressions)
// to decide whether the stored value needs to survive as this
// expression's own result.
func (g *Generator) generateAssignment(a *ast.AssignmentExpression) {
	switch lhs := a.Left.(type) {
	case *ast.NameExpression:
		g.generateNameAssignment(a, lhs)
	case *ast.MemberAccess:
		g.generateMemberAssignment(a, lhs)
	}
}

func (g *Generator) generateNameAssignment(a *ast.AssignmentExpression, lhs *ast.NameExpression) {
	if a.Op == token.ASSIGN {
		g.generateExpressionValue(a.Right)
	} else {
		g.loadBinding(lhs.Binding)
		g.generateExpressionValue(a.Right)
		g.E.BinaryOp(compoundOp(a.Op))
	}
	g.convert(a.Right.GetResultType(), a.Type)
	if !a.IsRoot {
		g.E.Duplicate()
	}
	g.storeBinding(lhs.Binding)
}

// generateMemberAssignment evaluates the object (and, for a computed
// member, the key) exactly once into temporaries, since Emitter.Duplicate
// only copies a single stack slot and can't re-stage a two-part reference;
// the value to store gets its own temp too so it can be both stored and,
// when the expression's result is needed, reloaded afterward.
func (g *Generator) generateMemberAssignment(a *ast.AssignmentExpression, lhs *ast.MemberAccess) {
	g.generateExpressionValue(lhs.Object)
	objTemp := g.newTemp(types.Universal)
	g.E.StoreVariable(objTemp)

	var idxTemp emit.Local
	if lhs.Computed {
		g.generateExpressionValue(lhs.Index)
		idxTemp = g.newTemp(types.Universal)
		g.E.StoreVariable(idxTemp)
	}

	if a.Op == token.ASSIGN {
		g.generateExpressionValue(a.Right)
	} else {
		g.E.LoadVariable(objTemp)
		if lhs.Computed {
			g.E.LoadVariable(idxTemp)
			g.E.GetElement()
		} else {
			g.E.GetProperty(lhs.Property)
		}
		g.generateExpressionValue(a.Right)
		g.E.BinaryOp(compoundOp(a.Op))
	}
	g.convert(a.Right.GetResultType(), a.Type)

	valTemp := g.newTemp(types.Universal)
	g.E.StoreVariable(valTemp)

	g.E.LoadVariable(objTemp)
	if lhs.Computed {
		g.E.LoadVariable(idxTemp)
		g.E.LoadVariable(valTemp)
		g.E.SetElement()
	} else {
		g.E.LoadVariable(valTemp)
		g.E.SetProperty(lhs.Property)
	}
	if !a.IsRoot {
		g.E.LoadVariable(valTemp)
	}
	g.E.ReleaseTemporaryVariable(valTemp)
	g.E.ReleaseTemporaryVariable(objTemp)
	if lhs.Computed {
		g.E.ReleaseTemporaryVariable(idxTemp)
	}
}

func compoundOp(op token.TokenType) emit.BinOp {
	switch op {
	case token.PLUS_ASSIGN:
		return emit.OpAdd
	case token.MINUS_ASSIGN:
		return emit.OpSub
	case token.STAR_ASSIGN:
		return emit.OpMul
	case token.SLASH_ASSIGN:
		return emit.OpDiv
	case token.PCT_ASSIGN:
		return emit.OpMod
	case token.SHL_ASSIGN:
		return emit.OpShl
	case token.SHR_ASSIGN:
		return emit.OpShr
	case token.USHR_ASSIGN:
		return emit.OpUshr
	case token.AMP_ASSIGN:
		return emit.OpBitAnd
	case token.PIPE_ASSIGN:
		return emit.OpBitOr
	case token.CARET_ASSIGN:
		return emit.OpBitXor
	default:
		return emit.OpAdd
	}
}

// generateIncDec lowers prefix/postfix ++/-- (§4.9): a name target uses a
// single Duplicate (postfix keeps the pre-increment copy, prefix keeps the
// post-increment one); a member target stages object/key/old/new through
// temporaries for the same reason generateMemberAssignment does.
func (g *Generator) generateIncDec(u *ast.UnaryExpression) {
	switch t := u.Operand.(type) {
	case *ast.NameExpression:
		g.loadBinding(t.Binding)
		if u.Postfix && !u.IsRoot {
			g.E.Duplicate()
		}
		g.E.LoadInt32(1)
		g.E.BinaryOp(incDecOp(u.Op))
		if !u.Postfix && !u.IsRoot {
			g.E.Duplicate()
		}
		g.storeBinding(t.Binding)
	case *ast.MemberAccess:
		g.generateExpressionValue(t.Object)
		objTemp := g.newTemp(types.Universal)
		g.E.StoreVariable(objTemp)
		var idxTemp emit.Local
		if t.Computed {
			g.generateExpressionValue(t.Index)
			idxTemp = g.newTemp(types.Universal)
			g.E.StoreVariable(idxTemp)
		}
		g.E.LoadVariable(objTemp)
		if t.Computed {
			g.E.LoadVariable(idxTemp)
			g.E.GetElement()
		} else {
			g.E.GetProperty(t.Property)
		}
		oldTemp := g.newTemp(types.Universal)
		g.E.StoreVariable(oldTemp)
		g.E.LoadVariable(oldTemp)
		g.E.LoadInt32(1)
		g.E.BinaryOp(incDecOp(u.Op))
		newTemp := g.newTemp(types.Universal)
		g.E.StoreVariable(newTemp)
		g.E.LoadVariable(objTemp)
		if t.Computed {
			g.E.LoadVariable(idxTemp)
			g.E.LoadVariable(newTemp)
			g.E.SetElement()
		} else {
			g.E.LoadVariable(newTemp)
			g.E.SetProperty(t.Property)
		}
		if !u.IsRoot {
			if u.Postfix {
				g.E.LoadVariable(oldTemp)
			} else {
				g.E.LoadVariable(newTemp)
			}
		}
		g.E.ReleaseTemporaryVariable(oldTemp)
		g.E.ReleaseTemporaryVariable(newTemp)
		g.E.ReleaseTemporaryVariable(objTemp)
		if t.Computed {
			g.E.ReleaseTemporaryVariable(idxTemp)
		}
	}
}

func incDecOp(op token.TokenType) emit.BinOp {
	if op == token.DEC {
		return emit.OpSub
	}
	return emit.OpAdd
}

func (g *Generator) generateUnary(u *ast.UnaryExpression) {
	switch u.Op {
	case token.INC, token.DEC:
		g.generateIncDec(u)
	case token.DELETE:
		g.generateDelete(u)
	case token.BANG:
		g.generateExpressionValue(u.Operand)
		g.E.ConvertToBool()
		g.E.UnaryOp(emit.OpNot)
	case token.TYPEOF:
		g.generateExpressionValue(u.Operand)
		g.E.UnaryOp(emit.OpTypeOf)
	case token.VOID:
		g.generateExpressionValue(u.Operand)
		g.E.Pop()
		g.E.LoadUndefined()
	case token.TILDE:
		g.generateExpressionValue(u.Operand)
		g.E.UnaryOp(emit.OpBitNot)
	case token.MINUS:
		g.generateExpressionValue(u.Operand)
		g.E.UnaryOp(emit.OpNeg)
	case token.PLUS:
		g.generateExpressionValue(u.Operand)
		g.E.UnaryOp(emit.OpPos)
	default:
		g.generateExpressionValue(u.Operand)
	}
}

// generateDelete only has a reference to delete when the operand is a
// member access; ES5 `delete` of anything else (a plain value, a bare
// name) always reports success without touching any binding.
func (g *Generator) generateDelete(u *ast.UnaryExpression) {
	ma, ok := u.Operand.(*ast.MemberAccess)
	if !ok {
		g.generateExpressionValue(u.Operand)
		g.E.Pop()
		g.E.LoadBoolean(true)
		return
	}
	g.generateExpressionValue(ma.Object)
	if ma.Computed {
		g.generateExpressionValue(ma.Index)
		g.E.DeleteElement()
		return
	}
	g.E.DeleteProperty(ma.Property)
}

func (g *Generator) generateBinary(b *ast.BinaryExpression) {
	if b.Op == token.AND || b.Op == token.OR {
		g.generateLogical(b)
		return
	}
	g.generateExpressionValue(b.Left)
	g.generateExpressionValue(b.Right)
	g.E.BinaryOp(mapBinOp(b.Op))
}

// generateLogical short-circuits && and || (§4.9): the left operand's
// value survives on the stack across the branch so it can serve as the
// whole expression's result without re-evaluating it.
func (g *Generator) generateLogical(b *ast.BinaryExpression) {
	end := g.E.CreateLabel()
	g.generateExpressionValue(b.Left)
	g.E.Duplicate()
	g.E.ConvertToBool()
	if b.Op == token.AND {
		g.E.BranchIfFalse(end)
	} else {
		g.E.BranchIfTrue(end)
	}
	g.E.Pop()
	g.generateExpressionValue(b.Right)
	g.E.DefineLabelPosition(end)
}

func mapBinOp(op token.TokenType) emit.BinOp {
	switch op {
	case token.PLUS:
		return emit.OpAdd
	case token.MINUS:
		return emit.OpSub
	case token.STAR:
		return emit.OpMul
	case token.SLASH:
		return emit.OpDiv
	case token.PCT:
		return emit.OpMod
	case token.SHL:
		return emit.OpShl
	case token.SHR:
		return emit.OpShr
	case token.USHR:
		return emit.OpUshr
	case token.AMP:
		return emit.OpBitAnd
	case token.PIPE:
		return emit.OpBitOr
	case token.CARET:
		return emit.OpBitXor
	case token.LT:
		return emit.OpLess
	case token.LE:
		return emit.OpLessEq
	case token.GT:
		return emit.OpGreater
	case token.GE:
		return emit.OpGreaterEq
	case token.EQ:
		return emit.OpLooseEq
	case token.NE:
		return emit.OpLooseNe
	case token.EQEQ:
		return emit.OpStrictEq
	case token.NEQEQ:
		return emit.OpStrictNe
	case token.INSTANCEOF:
		return emit.OpInstanceOf
	case token.IN:
		return emit.OpIn
	default:
		return emit.OpAdd
	}
}

// generateConditional implements the constant-condition elision
// ResolveVariables already recorded in Constant/Value for the test — when
// the test is a literal boolean, only the live branch is ever generated.
func (g *Generator) generateConditional(c *ast.ConditionalExpression) {
	if b, ok := constantBoolValue(c.Test); ok {
		if b {
			g.generateExpressionValue(c.Consequent)
			g.convert(c.Consequent.GetResultType(), c.Type)
		} else {
			g.generateExpressionValue(c.Alternate)
			g.convert(c.Alternate.GetResultType(), c.Type)
		}
		return
	}
	elseLabel := g.E.CreateLabel()
	end := g.E.CreateLabel()
	g.generateExpressionValue(c.Test)
	g.E.ConvertToBool()
	g.E.BranchIfFalse(elseLabel)
	g.generateExpressionValue(c.Consequent)
	g.convert(c.Consequent.GetResultType(), c.Type)
	g.E.Branch(end)
	g.E.DefineLabelPosition(elseLabel)
	g.generateExpressionValue(c.Alternate)
	g.convert(c.Alternate.GetResultType(), c.Type)
	g.E.DefineLabelPosition(end)
}

func constantBoolValue(e ast.Expression) (bool, bool) {
	lit, ok := e.(*ast.PrimitiveLiteral)
	if !ok {
		return false, false
	}
	b, ok := lit.Value.(bool)
	return b, ok
}

func (g *Generator) generateSequenceValue(s *ast.SequenceExpression) {
	for _, el := range s.Expressions[:len(s.Expressions)-1] {
		g.generateForEffect(el)
	}
	g.generateExpressionValue(s.Expressions[len(s.Expressions)-1])
}

// generateFunctionValue pushes a zero emit.Method token for a function
// expression used as a value; no compiled specialization from
// internal/cache is bound to it here.
func (g *Generator) generateFunctionValue(f *ast.FunctionLiteral) {
	g.E.LoadToken(emit.Method{})
}
