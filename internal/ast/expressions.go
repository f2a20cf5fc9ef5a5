package ast

import (
	"strings"

	"github.com/bablakeluke/nitrassic-go/internal/emit"
	"github.com/bablakeluke/nitrassic-go/internal/scope"
	"github.com/bablakeluke/nitrassic-go/internal/token"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// resolved carries the fields every expression node accumulates during
// ResolveVariables (C7) and reads back during GenerateCode (C9). It is
// embedded (not referenced by pointer indirection through another
// package) so that internal/ast has no import-time dependency on
// internal/ctx or internal/dispatch — those higher packages only ever
// write into fields already declared here.
type resolved struct {
	Type     types.Type
	Constant bool
	IsRoot   bool // true once internal/ctx marks this node as the value-discarding statement's root (pop elision, §4.6)
}

func (r *resolved) GetResultType() types.Type { return r.Type }

// --- Identifier / name ------------------------------------------------------

// Identifier names a binding target syntactically; NameExpression is the
// expression that reads it.
type Identifier struct {
	Token token.Token
	Name  string
}

func (i *Identifier) Pos() token.Position { return i.Token.Pos }
func (i *Identifier) String() string      { return i.Name }
func (i *Identifier) ChildNodes() []Node  { return nil }

// NameExpression reads (or is assigned through) a bound name. Binding is
// populated by ResolveVariables (spec §4.7 point 1): it resolves to the
// nearest enclosing scope entry, creating a global property if none is
// found and the context permits it.
type NameExpression struct {
	resolved
	Token   token.Token
	Name    string
	Binding *scope.Variable
}

func (n *NameExpression) expressionNode()      {}
func (n *NameExpression) Pos() token.Position  { return n.Token.Pos }
func (n *NameExpression) String() string       { return n.Name }
func (n *NameExpression) ChildNodes() []Node   { return nil }

// --- Literals ---------------------------------------------------------------

// PrimitiveLiteral covers number, string, boolean and null literals; Kind
// distinguishes them and Value holds the parsed Go value.
type PrimitiveLiteral struct {
	resolved
	Token token.Token
	Kind  token.LiteralKind
	Value any
}

func (l *PrimitiveLiteral) expressionNode()     {}
func (l *PrimitiveLiteral) Pos() token.Position { return l.Token.Pos }
func (l *PrimitiveLiteral) String() string      { return l.Token.Literal }
func (l *PrimitiveLiteral) ChildNodes() []Node   { return nil }

// ArrayLiteral is `[e1, e2, ...]`.
type ArrayLiteral struct {
	resolved
	Token    token.Token
	Elements []Expression // a nil element denotes an elision ("[1,,3]")
}

func (a *ArrayLiteral) expressionNode()     {}
func (a *ArrayLiteral) Pos() token.Position { return a.Token.Pos }
func (a *ArrayLiteral) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		if e != nil {
			parts[i] = e.String()
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (a *ArrayLiteral) ChildNodes() []Node {
	ns := make([]Node, 0, len(a.Elements))
	for _, e := range a.Elements {
		if e != nil {
			ns = append(ns, e)
		}
	}
	return ns
}

// ObjectProperty is one `key: value` (or shorthand `key`) entry of an
// ObjectLiteral.
type ObjectProperty struct {
	Key       string
	KeyExpr   Expression // set instead of Key when Computed
	Value     Expression
	Computed  bool // `[expr]: value`
	Shorthand bool // ES6 `{x}` sugar for `{x: x}`
}

// ObjectLiteral is `{ k: v, ... }`.
type ObjectLiteral struct {
	resolved
	Token      token.Token
	Properties []ObjectProperty
}

func (o *ObjectLiteral) expressionNode()     {}
func (o *ObjectLiteral) Pos() token.Position { return o.Token.Pos }
func (o *ObjectLiteral) String() string {
	parts := make([]string, len(o.Properties))
	for i, p := range o.Properties {
		switch {
		case p.Shorthand:
			parts[i] = p.Key
		case p.Computed:
			parts[i] = "[" + p.KeyExpr.String() + "]: " + p.Value.String()
		default:
			parts[i] = p.Key + ": " + p.Value.String()
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (o *ObjectLiteral) ChildNodes() []Node {
	ns := make([]Node, 0, len(o.Properties)*2)
	for _, p := range o.Properties {
		if p.Computed {
			ns = append(ns, p.KeyExpr)
		}
		ns = append(ns, p.Value)
	}
	return ns
}

// TemplateLiteral is a backtick template: Quasis has len(Expressions)+1
// entries, interleaved as Quasis[0] Expressions[0] Quasis[1] ...
type TemplateLiteral struct {
	resolved
	Token       token.Token
	Quasis      []string
	Expressions []Expression
}

func (t *TemplateLiteral) expressionNode()     {}
func (t *TemplateLiteral) Pos() token.Position { return t.Token.Pos }
func (t *TemplateLiteral) String() string {
	var sb strings.Builder
	sb.WriteByte('`')
	for i, q := range t.Quasis {
		sb.WriteString(q)
		if i < len(t.Expressions) {
			sb.WriteString("${")
			sb.WriteString(t.Expressions[i].String())
			sb.WriteString("}")
		}
	}
	sb.WriteByte('`')
	return sb.String()
}
func (t *TemplateLiteral) ChildNodes() []Node {
	ns := make([]Node, len(t.Expressions))
	for i, e := range t.Expressions {
		ns[i] = e
	}
	return ns
}

// --- Member access -----------------------------------------------------------

// MemberAccess is `a.b` (Computed == false) or `a[b]` (Computed == true).
// PropertyBinding can hold a resolved property's scope.Variable, but
// internal/ctx leaves it nil; code generation reads and writes members
// dynamically (GetProperty/SetProperty, GetElement/SetElement) rather
// than through a typed field or a prototype's indexer.
type MemberAccess struct {
	resolved
	Token           token.Token
	Object          Expression
	Property        string // set when !Computed
	Index           Expression // set when Computed
	Computed        bool
	PropertyBinding *scope.Variable
}

func (m *MemberAccess) expressionNode()     {}
func (m *MemberAccess) Pos() token.Position { return m.Token.Pos }
func (m *MemberAccess) String() string {
	if m.Computed {
		return m.Object.String() + "[" + m.Index.String() + "]"
	}
	return m.Object.String() + "." + m.Property
}
func (m *MemberAccess) ChildNodes() []Node {
	if m.Computed {
		return []Node{m.Object, m.Index}
	}
	return []Node{m.Object}
}

// --- Calls and construction ---------------------------------------------------

// CallTarget is filled in by internal/dispatch during ResolveVariables
// (spec §4.8/§4.9): once a single concrete target is proved, Handle names
// it directly so internal/codegen never has to re-resolve the call.
type CallTarget struct {
	Handle       emit.Method
	ParamTypes   []types.Type
	ParamsArray  bool
	HasEngine    bool
	HasThisObj   bool
	Unresolved   bool // no single concrete target could be proved; codegen evaluates the operands for their side effects and yields undefined
}

// ResolvedCall pairs a lowered CallTarget with its static result type, for
// call sites internal/ctx synthesizes outside of an ordinary
// CallExpression node — for-in/for-of's enumerate/MoveNext/get-current
// protocol (spec §4.9), each implemented as an ordinary prototype method
// call so internal/dispatch's overload machinery resolves them exactly
// like any other member call.
type ResolvedCall struct {
	Target CallTarget
	Type   types.Type
}

// CallExpression is `callee(args...)`.
type CallExpression struct {
	resolved
	Token     token.Token
	Callee    Expression
	Arguments []Expression
	Target    CallTarget
}

func (c *CallExpression) expressionNode()     {}
func (c *CallExpression) Pos() token.Position { return c.Token.Pos }
func (c *CallExpression) String() string {
	parts := make([]string, len(c.Arguments))
	for i, a := range c.Arguments {
		parts[i] = a.String()
	}
	return c.Callee.String() + "(" + strings.Join(parts, ", ") + ")"
}
func (c *CallExpression) ChildNodes() []Node {
	ns := make([]Node, 0, len(c.Arguments)+1)
	ns = append(ns, c.Callee)
	for _, a := range c.Arguments {
		ns = append(ns, a)
	}
	return ns
}

// NewExpression is `new Callee(args...)`.
type NewExpression struct {
	resolved
	Token     token.Token
	Callee    Expression
	Arguments []Expression
	Target    CallTarget
}

func (n *NewExpression) expressionNode()     {}
func (n *NewExpression) Pos() token.Position { return n.Token.Pos }
func (n *NewExpression) String() string {
	parts := make([]string, len(n.Arguments))
	for i, a := range n.Arguments {
		parts[i] = a.String()
	}
	return "new " + n.Callee.String() + "(" + strings.Join(parts, ", ") + ")"
}
func (n *NewExpression) ChildNodes() []Node {
	ns := make([]Node, 0, len(n.Arguments)+1)
	ns = append(ns, n.Callee)
	for _, a := range n.Arguments {
		ns = append(ns, a)
	}
	return ns
}

// --- Assignment ---------------------------------------------------------------

// AssignmentExpression is `lhs op rhs`, where op is one of ASSIGN or the
// compound variants (PLUS_ASSIGN, ...). The LHS must be a reference
// expression (NameExpression or MemberAccess).
type AssignmentExpression struct {
	resolved
	Token token.Token
	Op    token.TokenType
	Left  Expression
	Right Expression
}

func (a *AssignmentExpression) expressionNode()     {}
func (a *AssignmentExpression) Pos() token.Position { return a.Token.Pos }
func (a *AssignmentExpression) String() string {
	return a.Left.String() + " " + a.Op.String() + " " + a.Right.String()
}
func (a *AssignmentExpression) ChildNodes() []Node { return []Node{a.Left, a.Right} }

// --- Operators -----------------------------------------------------------------

// UnaryExpression is a prefix or postfix unary operator (`!x`, `-x`,
// `x++`, `typeof x`, `delete x.y`, ...).
type UnaryExpression struct {
	resolved
	Token    token.Token
	Op       token.TokenType
	Operand  Expression
	Postfix  bool
}

func (u *UnaryExpression) expressionNode()     {}
func (u *UnaryExpression) Pos() token.Position { return u.Token.Pos }
func (u *UnaryExpression) String() string {
	if u.Postfix {
		return u.Operand.String() + u.Op.String()
	}
	return u.Op.String() + u.Operand.String()
}
func (u *UnaryExpression) ChildNodes() []Node { return []Node{u.Operand} }

// BinaryExpression is a binary operator application, including logical
// `&&`/`||` (which the code generator must short-circuit rather than
// evaluate eagerly, per §4.9's control-flow contract).
type BinaryExpression struct {
	resolved
	Token token.Token
	Op    token.TokenType
	Left  Expression
	Right Expression
}

func (b *BinaryExpression) expressionNode()     {}
func (b *BinaryExpression) Pos() token.Position { return b.Token.Pos }
func (b *BinaryExpression) String() string {
	return "(" + b.Left.String() + " " + b.Op.String() + " " + b.Right.String() + ")"
}
func (b *BinaryExpression) ChildNodes() []Node { return []Node{b.Left, b.Right} }

// ConditionalExpression is the ternary `test ? cons : alt`.
type ConditionalExpression struct {
	resolved
	Token       token.Token
	Test        Expression
	Consequent  Expression
	Alternate   Expression
}

func (c *ConditionalExpression) expressionNode()     {}
func (c *ConditionalExpression) Pos() token.Position { return c.Token.Pos }
func (c *ConditionalExpression) String() string {
	return c.Test.String() + " ? " + c.Consequent.String() + " : " + c.Alternate.String()
}
func (c *ConditionalExpression) ChildNodes() []Node {
	return []Node{c.Test, c.Consequent, c.Alternate}
}

// SequenceExpression is the comma operator `e1, e2, ...`; only the last
// element's value survives.
type SequenceExpression struct {
	resolved
	Token       token.Token
	Expressions []Expression
}

func (s *SequenceExpression) expressionNode()     {}
func (s *SequenceExpression) Pos() token.Position { return s.Token.Pos }
func (s *SequenceExpression) String() string {
	parts := make([]string, len(s.Expressions))
	for i, e := range s.Expressions {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
func (s *SequenceExpression) ChildNodes() []Node {
	ns := make([]Node, len(s.Expressions))
	for i, e := range s.Expressions {
		ns[i] = e
	}
	return ns
}

// FunctionLiteral is a function expression or declaration body. The
// method cache (C10) owns one FunctionMethodGenerator per FunctionLiteral,
// keyed by this node's identity.
type FunctionLiteral struct {
	resolved
	Token      token.Token
	Name       string // "" for an anonymous function expression
	Params     []*Identifier
	Defaults   []Expression // parallel to Params; nil entry means no default
	Body       *BlockStatement
	IsStrict   bool // own "use strict" directive prologue
}

func (f *FunctionLiteral) expressionNode()     {}
func (f *FunctionLiteral) Pos() token.Position { return f.Token.Pos }
func (f *FunctionLiteral) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.Name
	}
	return "function " + f.Name + "(" + strings.Join(parts, ", ") + ") " + f.Body.String()
}
func (f *FunctionLiteral) ChildNodes() []Node {
	ns := make([]Node, 0, len(f.Params)+1)
	for _, p := range f.Params {
		ns = append(ns, p)
	}
	ns = append(ns, f.Body)
	return ns
}
