package ctx

import (
	"fmt"

	"github.com/bablakeluke/nitrassic-go/internal/ast"
	"github.com/bablakeluke/nitrassic-go/internal/cerr"
	"github.com/bablakeluke/nitrassic-go/internal/token"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// resolveExpression is the bottom-up half of ResolveVariables (spec
// §4.7 point 2): it dispatches on the concrete expression type, recurses
// into children first, and writes the inferred type (and, where
// applicable, the tracked constant value) back into the node's embedded
// `resolved` fields before returning the type to its caller.
func (c *Ctx) resolveExpression(expr ast.Expression) types.Type {
	if expr == nil {
		return types.UndefinedT
	}
	switch e := expr.(type) {
	case *ast.PrimitiveLiteral:
		return c.resolvePrimitiveLiteral(e)
	case *ast.ArrayLiteral:
		return c.resolveArrayLiteral(e)
	case *ast.ObjectLiteral:
		return c.resolveObjectLiteral(e)
	case *ast.TemplateLiteral:
		return c.resolveTemplateLiteral(e)
	case *ast.NameExpression:
		return c.resolveNameExpression(e)
	case *ast.MemberAccess:
		return c.resolveMemberAccess(e)
	case *ast.CallExpression:
		return c.resolveCallExpression(e)
	case *ast.NewExpression:
		return c.resolveNewExpression(e)
	case *ast.AssignmentExpression:
		return c.resolveAssignmentExpression(e)
	case *ast.UnaryExpression:
		return c.resolveUnaryExpression(e)
	case *ast.BinaryExpression:
		return c.resolveBinaryExpression(e)
	case *ast.ConditionalExpression:
		return c.resolveConditionalExpression(e)
	case *ast.SequenceExpression:
		return c.resolveSequenceExpression(e)
	case *ast.FunctionLiteral:
		return c.resolveFunctionLiteralAsValue(e)
	default:
		c.addError(cerr.InternalError, expr.Pos(), fmt.Sprintf("unresolved expression type %T", expr))
		return types.Universal
	}
}

func (c *Ctx) resolvePrimitiveLiteral(l *ast.PrimitiveLiteral) types.Type {
	var t types.Type
	switch l.Token.Type {
	case token.NUMBER:
		if l.Kind == token.KindInt {
			t = types.Type{Kind: types.I32}
		} else {
			t = types.Type{Kind: types.F64}
		}
	case token.STRING:
		t = types.Type{Kind: types.String}
	case token.TRUE, token.FALSE:
		t = types.Type{Kind: types.Boolean}
	case token.NULL:
		t = types.Type{Kind: types.Null}
	default:
		t = types.Type{Kind: types.Undefined}
	}
	l.Type = t
	l.Constant = true
	return t
}

func (c *Ctx) resolveArrayLiteral(a *ast.ArrayLiteral) types.Type {
	for _, el := range a.Elements {
		if el != nil {
			c.resolveExpression(el)
		}
	}
	a.Type = types.ObjectOf("Array")
	return a.Type
}

func (c *Ctx) resolveObjectLiteral(o *ast.ObjectLiteral) types.Type {
	for _, p := range o.Properties {
		if p.Computed {
			c.resolveExpression(p.KeyExpr)
		}
		c.resolveExpression(p.Value)
	}
	o.Type = types.ObjectOf("Object")
	return o.Type
}

func (c *Ctx) resolveTemplateLiteral(t *ast.TemplateLiteral) types.Type {
	for _, e := range t.Expressions {
		c.resolveExpression(e)
	}
	t.Type = types.Type{Kind: types.String}
	return t.Type
}

// resolveNameExpression implements spec §4.7 point 1: binds to the
// nearest enclosing scope entry, creating a global property if the name
// is unbound and the scope chain permits implicit global creation
// (non-strict code only — strict mode leaves it unresolved and reports a
// ReferenceError, per spec's strict-mode binding rules).
func (c *Ctx) resolveNameExpression(n *ast.NameExpression) types.Type {
	if n.Name == "this" {
		c.Hints.ThisReferenced = true
	}
	if n.Name == "arguments" {
		c.Hints.ArgumentsReferenced = true
	}
	v, _, ok := c.Scope.Lookup(n.Name)
	if !ok {
		if c.Strict {
			c.addError(cerr.ReferenceError, n.Pos(), fmt.Sprintf("%s is not defined", n.Name))
			n.Type = types.Universal
			return n.Type
		}
		v = c.declareVariable(n.Name, types.Universal)
	}
	n.Binding = v
	n.Type = v.Type()
	if val, isConst := v.ConstantValue(); isConst {
		n.Constant = true
		_ = val
	}
	return n.Type
}

// resolveMemberAccess resolves a.b / a[b] outside of call position. Full
// prototype-walk resolution to a concrete property (spec §4.8) only
// happens at a call site through CallResolver; a bare property read here
// gets the universal type — codegen falls back to a runtime property
// lookup, which is always valid even if less specialized.
func (c *Ctx) resolveMemberAccess(m *ast.MemberAccess) types.Type {
	c.resolveExpression(m.Object)
	if m.Computed {
		c.resolveExpression(m.Index)
	}
	m.Type = types.Universal
	return m.Type
}

func (c *Ctx) argTypes(args []ast.Expression) []types.Type {
	ts := make([]types.Type, len(args))
	for i, a := range args {
		ts[i] = c.resolveExpression(a)
	}
	return ts
}

func (c *Ctx) resolveCallExpression(call *ast.CallExpression) types.Type {
	argTypes := c.argTypes(call.Arguments)
	if c.Resolver == nil {
		call.Target = ast.CallTarget{Unresolved: true}
		call.Type = types.Universal
		return call.Type
	}
	var target ast.CallTarget
	var resultType types.Type
	if ma, ok := call.Callee.(*ast.MemberAccess); ok {
		objType := c.resolveExpression(ma.Object)
		member := ma.Property
		target, resultType = c.Resolver.ResolveMemberCall(c, objType, member, ma.Computed, argTypes, false)
	} else {
		calleeType := c.resolveExpression(call.Callee)
		var constVal any
		if name, ok := call.Callee.(*ast.NameExpression); ok && name.Binding != nil {
			constVal, _ = name.Binding.ConstantValue()
		}
		target, resultType = c.Resolver.ResolveBareCall(c, calleeType, constVal, argTypes, false)
	}
	call.Target = target
	if target.Unresolved {
		c.addError(cerr.TypeError, call.Pos(), "no matching overload for call")
		resultType = types.Universal
	}
	call.Type = resultType
	return call.Type
}

func (c *Ctx) resolveNewExpression(n *ast.NewExpression) types.Type {
	argTypes := c.argTypes(n.Arguments)
	c.IsConstructCall = true
	defer func() { c.IsConstructCall = false }()
	if c.Resolver == nil {
		n.Target = ast.CallTarget{Unresolved: true}
		n.Type = types.Universal
		return n.Type
	}
	var target ast.CallTarget
	var resultType types.Type
	if ma, ok := n.Callee.(*ast.MemberAccess); ok {
		objType := c.resolveExpression(ma.Object)
		target, resultType = c.Resolver.ResolveMemberCall(c, objType, ma.Property, ma.Computed, argTypes, true)
	} else {
		calleeType := c.resolveExpression(n.Callee)
		var constVal any
		if name, ok := n.Callee.(*ast.NameExpression); ok && name.Binding != nil {
			constVal, _ = name.Binding.ConstantValue()
		}
		target, resultType = c.Resolver.ResolveBareCall(c, calleeType, constVal, argTypes, true)
	}
	n.Target = target
	if target.Unresolved {
		c.addError(cerr.TypeError, n.Pos(), "no matching constructor overload")
		resultType = types.Universal
	}
	n.Type = resultType
	return n.Type
}

// resolveAssignmentExpression implements spec §4.7 point 3: ApplyType is
// called on the LHS reference with the RHS's (possibly operator-combined)
// type; the result is the LHS's new static type.
func (c *Ctx) resolveAssignmentExpression(a *ast.AssignmentExpression) types.Type {
	var lhsType types.Type
	switch a.Left.(type) {
	case *ast.NameExpression, *ast.MemberAccess:
		lhsType = c.resolveExpression(a.Left)
	default:
		c.addError(cerr.SyntaxError, a.Pos(), "invalid assignment target")
		c.resolveExpression(a.Right)
		a.Type = types.Universal
		return a.Type
	}

	rhsType := c.resolveExpression(a.Right)

	newType := rhsType
	if a.Op != token.ASSIGN {
		newType = combinedAssignType(a.Op, lhsType, rhsType)
	}

	if lhs, ok := a.Left.(*ast.NameExpression); ok && lhs.Binding != nil {
		// A collapsing ApplyType on a global schedules its recorded users
		// for recompilation; that bookkeeping lives in internal/cache
		// (C10), which owns the Users set's consumers.
		lhs.Binding.ApplyType(newType)
		if a.Op == token.ASSIGN {
			if constVal, ok := constantOf(a.Right); ok {
				lhs.Binding.TrySetConstant(constVal)
			} else {
				forceNonConstant(lhs.Binding)
			}
		}
		c.Hints.sawVar(lhs.Name)
	}
	a.Type = newType
	return a.Type
}

// forceNonConstant drives a variable's constant lattice straight to
// NON-CONSTANT, for an assignment whose RHS isn't itself a literal: two
// TrySetConstant calls with distinct, never-naturally-occurring string
// values collapse DEFAULT (or any prior concrete constant) in one step —
// the first call sets or disagrees-and-collapses, the second always
// disagrees with the first.
func forceNonConstant(v interface{ TrySetConstant(any) }) {
	v.TrySetConstant("\x00nonconst\x001")
	v.TrySetConstant("\x00nonconst\x002")
}

// constantOf recursively folds e to a concrete Go value if every leaf it
// reaches is itself a literal or a variable already tracked as constant
// (spec §4.7's "literal expressions and reads from constant-marked
// variables are constant"). It mirrors resolveBinaryExpression/
// resolveUnaryExpression's own type rules, except that `/` always folds
// to a float64 value, even where the node's static type is an integer
// kind.
func constantOf(e ast.Expression) (any, bool) {
	switch v := e.(type) {
	case *ast.PrimitiveLiteral:
		return v.Value, true
	case *ast.NameExpression:
		if v.Binding != nil {
			return v.Binding.ConstantValue()
		}
	case *ast.BinaryExpression:
		l, lok := constantOf(v.Left)
		if !lok {
			return nil, false
		}
		r, rok := constantOf(v.Right)
		if !rok {
			return nil, false
		}
		return foldBinary(v.Op, l, r)
	case *ast.UnaryExpression:
		operand, ok := constantOf(v.Operand)
		if !ok {
			return nil, false
		}
		return foldUnary(v.Op, operand)
	}
	return nil, false
}

func toF64(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// foldBinary computes op's result over two already-folded operands,
// following the same operator table resolveBinaryExpression uses for
// static types. Returns ok == false for any operator/operand
// combination this fold doesn't (yet) cover — the caller then treats
// the whole expression as non-constant rather than guessing.
func foldBinary(op token.TokenType, l, r any) (any, bool) {
	_, lIsStr := l.(string)
	_, rIsStr := r.(string)
	if op == token.PLUS && (lIsStr || rIsStr) {
		return fmt.Sprint(l) + fmt.Sprint(r), true
	}
	lf, lok := toF64(l)
	rf, rok := toF64(r)
	if !lok || !rok {
		return nil, false
	}
	_, lBothInt := l.(int64)
	_, rBothInt := r.(int64)
	bothInt := lBothInt && rBothInt
	switch op {
	case token.PLUS:
		if bothInt {
			return lf2i(lf + rf), true
		}
		return lf + rf, true
	case token.MINUS:
		if bothInt {
			return lf2i(lf - rf), true
		}
		return lf - rf, true
	case token.STAR:
		if bothInt {
			return lf2i(lf * rf), true
		}
		return lf * rf, true
	case token.SLASH:
		if rf == 0 {
			return nil, false
		}
		return lf / rf, true
	case token.PCT:
		if rf == 0 {
			return nil, false
		}
		if bothInt {
			return lf2i(float64(int64(lf) % int64(rf))), true
		}
		return nil, false
	case token.LT:
		return lf < rf, true
	case token.GT:
		return lf > rf, true
	case token.LE:
		return lf <= rf, true
	case token.GE:
		return lf >= rf, true
	case token.EQ, token.EQEQ:
		return lf == rf, true
	case token.NE, token.NEQEQ:
		return lf != rf, true
	}
	return nil, false
}

func lf2i(f float64) int64 { return int64(f) }

// foldUnary computes a prefix operator over an already-folded operand.
func foldUnary(op token.TokenType, operand any) (any, bool) {
	switch op {
	case token.MINUS:
		if i, ok := operand.(int64); ok {
			return -i, true
		}
		if f, ok := operand.(float64); ok {
			return -f, true
		}
	case token.PLUS:
		return operand, true
	case token.BANG:
		switch v := operand.(type) {
		case bool:
			return !v, true
		}
	}
	return nil, false
}

func combinedAssignType(op token.TokenType, lhs, rhs types.Type) types.Type {
	switch op {
	case token.PLUS_ASSIGN:
		return arithmeticOrConcat(lhs, rhs)
	case token.MINUS_ASSIGN, token.STAR_ASSIGN, token.SLASH_ASSIGN, token.PCT_ASSIGN:
		return types.CommonNumeric(lhs, rhs)
	case token.SHL_ASSIGN, token.SHR_ASSIGN, token.USHR_ASSIGN, token.AMP_ASSIGN, token.PIPE_ASSIGN, token.CARET_ASSIGN:
		return types.Type{Kind: types.I32}
	default:
		return types.Universal
	}
}

func (c *Ctx) resolveUnaryExpression(u *ast.UnaryExpression) types.Type {
	operandType := c.resolveExpression(u.Operand)
	switch u.Op {
	case token.BANG:
		u.Type = types.Type{Kind: types.Boolean}
	case token.TYPEOF:
		u.Type = types.Type{Kind: types.String}
	case token.VOID:
		u.Type = types.UndefinedT
	case token.DELETE:
		u.Type = types.Type{Kind: types.Boolean}
	case token.TILDE:
		u.Type = types.Type{Kind: types.I32}
	case token.MINUS, token.PLUS:
		if operandType.IsNumeric() {
			u.Type = operandType
		} else {
			u.Type = types.Type{Kind: types.F64}
		}
	case token.INC, token.DEC:
		u.Type = operandType
		if name, ok := u.Operand.(*ast.NameExpression); ok && name.Binding != nil {
			name.Binding.ApplyType(operandType)
		}
	default:
		u.Type = types.Universal
	}
	if _, ok := constantOf(u); ok {
		u.Constant = true
	}
	return u.Type
}

func arithmeticOrConcat(l, r types.Type) types.Type {
	if l.Kind == types.String || r.Kind == types.String {
		return types.Type{Kind: types.String}
	}
	return types.CommonNumeric(l, r)
}

// resolveBinaryExpression applies spec §4.7's operator table: arithmetic
// to the common numeric type (string `+` is concatenation), comparisons
// to boolean, bitwise to i32.
func (c *Ctx) resolveBinaryExpression(b *ast.BinaryExpression) types.Type {
	l := c.resolveExpression(b.Left)
	r := c.resolveExpression(b.Right)
	switch b.Op {
	case token.PLUS:
		b.Type = arithmeticOrConcat(l, r)
	case token.MINUS, token.STAR, token.SLASH, token.PCT:
		b.Type = types.CommonNumeric(l, r)
	case token.LT, token.GT, token.LE, token.GE, token.EQ, token.NE, token.EQEQ, token.NEQEQ, token.INSTANCEOF, token.IN:
		b.Type = types.Type{Kind: types.Boolean}
	case token.SHL, token.SHR, token.USHR, token.AMP, token.PIPE, token.CARET:
		b.Type = types.Type{Kind: types.I32}
	case token.AND, token.OR:
		// Logical operators are short-circuited by the code generator
		// (spec §4.9); their static type is whichever operand's type could
		// survive, which in the general case is the universal type unless
		// both branches agree.
		if l.Equal(r) {
			b.Type = l
		} else {
			b.Type = types.Universal
		}
	default:
		b.Type = types.Universal
	}
	if _, ok := constantOf(b); ok {
		b.Constant = true
	}
	return b.Type
}

// resolveConditionalExpression implements spec §4.7's constant-condition
// short-circuit for the ternary operator: if the test is a definite
// boolean constant, only the live branch is resolved.
func (c *Ctx) resolveConditionalExpression(cond *ast.ConditionalExpression) types.Type {
	c.resolveExpression(cond.Test)
	if b, ok := constantBool(cond.Test); ok {
		if b {
			cond.Type = c.resolveExpression(cond.Consequent)
		} else {
			cond.Type = c.resolveExpression(cond.Alternate)
		}
		return cond.Type
	}
	consType := c.resolveExpression(cond.Consequent)
	altType := c.resolveExpression(cond.Alternate)
	if consType.Equal(altType) {
		cond.Type = consType
	} else {
		cond.Type = types.Universal
	}
	return cond.Type
}

func constantBool(e ast.Expression) (bool, bool) {
	lit, ok := e.(*ast.PrimitiveLiteral)
	if !ok {
		return false, false
	}
	b, ok := lit.Value.(bool)
	return b, ok
}

func (c *Ctx) resolveSequenceExpression(s *ast.SequenceExpression) types.Type {
	var last types.Type
	for _, e := range s.Expressions {
		last = c.resolveExpression(e)
	}
	s.Type = last
	return last
}

// resolveFunctionLiteralAsValue resolves a function *expression* appearing
// as a value (e.g. `var f = function() {...}`): it does not descend into
// the body — per spec §4.8, the body is resolved lazily, once per
// argument-type vector, by internal/dispatch driving a fresh Ctx through
// ResolveFunctionBody. Here it only records a Generator as the constant
// value flowing out of this expression.
func (c *Ctx) resolveFunctionLiteralAsValue(f *ast.FunctionLiteral) types.Type {
	c.Hints.HasNestedFunction = true
	f.Type = types.ObjectOf("Function")
	f.Constant = true
	return f.Type
}
