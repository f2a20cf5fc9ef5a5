package ast

import (
	"strings"

	"github.com/bablakeluke/nitrassic-go/internal/scope"
	"github.com/bablakeluke/nitrassic-go/internal/token"
)

// stmtRoot is embedded by every Statement to carry the labels attached to
// it, without each statement type re-declaring the field. Pop-elision
// marking (§4.6) lives on the expression nodes' IsRoot field instead.
type stmtRoot struct {
	Labels []string // labels attached to this statement by a preceding LabelledStatement chain
}

// BlockStatement is `{ stmt; stmt; ... }`.
type BlockStatement struct {
	stmtRoot
	Token token.Token
	Body  []Statement
}

func (b *BlockStatement) statementNode()     {}
func (b *BlockStatement) Pos() token.Position { return b.Token.Pos }
func (b *BlockStatement) String() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range b.Body {
		sb.WriteString("  " + s.String() + "\n")
	}
	sb.WriteString("}")
	return sb.String()
}
func (b *BlockStatement) ChildNodes() []Node {
	ns := make([]Node, len(b.Body))
	for i, s := range b.Body {
		ns[i] = s
	}
	return ns
}

// ExpressionStatement wraps a value-discarding expression. internal/ctx
// sets IsRoot on an assignment or increment/decrement Expr (or on the last
// element of a sequence) so its code generator omits the final push
// (§4.6); any other expression's value is pushed and then popped.
type ExpressionStatement struct {
	stmtRoot
	Token token.Token
	Expr  Expression
}

func (e *ExpressionStatement) statementNode()     {}
func (e *ExpressionStatement) Pos() token.Position { return e.Token.Pos }
func (e *ExpressionStatement) String() string       { return e.Expr.String() + ";" }
func (e *ExpressionStatement) ChildNodes() []Node   { return []Node{e.Expr} }

// VarDeclarator is one `name = init` entry of a VarStatement. Binding is
// filled in by internal/ctx's ResolveVariables the same way CatchClause's
// is: Name is a plain Identifier with nowhere of its own to cache a
// resolution, so the declarator carries it instead.
type VarDeclarator struct {
	Name    *Identifier
	Init    Expression // nil if uninitialized
	Binding *scope.Variable
}

// VarKind distinguishes var/let/const for the scope the declaration
// targets (function-scoped var vs. block-scoped let/const) and for
// reassignment validation of const.
type VarKind uint8

const (
	VarVar VarKind = iota
	VarLet
	VarConst
)

// VarStatement is `var|let|const d1, d2, ...;`.
type VarStatement struct {
	stmtRoot
	Token        token.Token
	Kind         VarKind
	Declarations []VarDeclarator
}

func (v *VarStatement) statementNode()     {}
func (v *VarStatement) Pos() token.Position { return v.Token.Pos }
func (v *VarStatement) String() string {
	kw := [...]string{"var", "let", "const"}[v.Kind]
	parts := make([]string, len(v.Declarations))
	for i, d := range v.Declarations {
		if d.Init != nil {
			parts[i] = d.Name.Name + " = " + d.Init.String()
		} else {
			parts[i] = d.Name.Name
		}
	}
	return kw + " " + strings.Join(parts, ", ") + ";"
}
func (v *VarStatement) ChildNodes() []Node {
	ns := make([]Node, 0, len(v.Declarations)*2)
	for _, d := range v.Declarations {
		ns = append(ns, d.Name)
		if d.Init != nil {
			ns = append(ns, d.Init)
		}
	}
	return ns
}

// IfStatement is `if (test) cons [else alt]`.
type IfStatement struct {
	stmtRoot
	Token       token.Token
	Test        Expression
	Consequent  Statement
	Alternate   Statement // nil if no else clause
}

func (i *IfStatement) statementNode()     {}
func (i *IfStatement) Pos() token.Position { return i.Token.Pos }
func (i *IfStatement) String() string {
	s := "if (" + i.Test.String() + ") " + i.Consequent.String()
	if i.Alternate != nil {
		s += " else " + i.Alternate.String()
	}
	return s
}
func (i *IfStatement) ChildNodes() []Node {
	if i.Alternate != nil {
		return []Node{i.Test, i.Consequent, i.Alternate}
	}
	return []Node{i.Test, i.Consequent}
}

// WhileStatement is `while (test) body`.
type WhileStatement struct {
	stmtRoot
	Token token.Token
	Test  Expression
	Body  Statement
}

func (w *WhileStatement) statementNode()     {}
func (w *WhileStatement) Pos() token.Position { return w.Token.Pos }
func (w *WhileStatement) String() string       { return "while (" + w.Test.String() + ") " + w.Body.String() }
func (w *WhileStatement) ChildNodes() []Node   { return []Node{w.Test, w.Body} }

// DoWhileStatement is `do body while (test);`.
type DoWhileStatement struct {
	stmtRoot
	Token token.Token
	Body  Statement
	Test  Expression
}

func (d *DoWhileStatement) statementNode()     {}
func (d *DoWhileStatement) Pos() token.Position { return d.Token.Pos }
func (d *DoWhileStatement) String() string       { return "do " + d.Body.String() + " while (" + d.Test.String() + ");" }
func (d *DoWhileStatement) ChildNodes() []Node   { return []Node{d.Body, d.Test} }

// ForStatement is the classic three-clause `for (init; test; update) body`.
// Any clause may be nil.
type ForStatement struct {
	stmtRoot
	Token  token.Token
	Init   Node // *VarStatement or an ExpressionStatement's Expression, or nil
	Test   Expression
	Update Expression
	Body   Statement
}

func (f *ForStatement) statementNode()     {}
func (f *ForStatement) Pos() token.Position { return f.Token.Pos }
func (f *ForStatement) String() string {
	init, test, update := "", "", ""
	if f.Init != nil {
		init = f.Init.String()
	}
	if f.Test != nil {
		test = f.Test.String()
	}
	if f.Update != nil {
		update = f.Update.String()
	}
	return "for (" + init + "; " + test + "; " + update + ") " + f.Body.String()
}
func (f *ForStatement) ChildNodes() []Node {
	ns := []Node{}
	if f.Init != nil {
		ns = append(ns, f.Init)
	}
	if f.Test != nil {
		ns = append(ns, f.Test)
	}
	if f.Update != nil {
		ns = append(ns, f.Update)
	}
	return append(ns, f.Body)
}

// ForInStatement is `for (var? name in object) body`; ForOfStatement is
// the ES6 `for (var? name of iterable) body`. Both lower to the same
// enumerate/MoveNext/assign-current/body/loop shape (§4.9), differing
// only in which engine enumerator they acquire. Both write every
// iteration's value into one statically allocated binding slot; for-of
// has no fresh per-iteration binding (the decision is recorded in
// DESIGN.md).
type ForInStatement struct {
	stmtRoot
	Token    token.Token
	IsVarDecl bool // binding introduced with `var`/`let`/`const` rather than an existing reference
	Binding  Expression // NameExpression or MemberAccess, the per-iteration assignment target
	Object   Expression
	Body     Statement

	// Enumerator/MoveNext/Current implement spec §4.9's enumerate/
	// MoveNext/assign-current/body/loop lowering as three ordinary
	// resolved method calls (GetEnumerator/MoveNext/GetCurrent), filled
	// in by internal/ctx's ResolveVariables via the same CallResolver a
	// plain CallExpression uses.
	Enumerator ResolvedCall
	MoveNext   ResolvedCall
	Current    ResolvedCall
}

func (f *ForInStatement) statementNode()     {}
func (f *ForInStatement) Pos() token.Position { return f.Token.Pos }
func (f *ForInStatement) String() string {
	return "for (" + f.Binding.String() + " in " + f.Object.String() + ") " + f.Body.String()
}
func (f *ForInStatement) ChildNodes() []Node { return []Node{f.Binding, f.Object, f.Body} }

type ForOfStatement struct {
	stmtRoot
	Token     token.Token
	IsVarDecl bool
	Binding   Expression
	Object    Expression
	Body      Statement

	Enumerator ResolvedCall
	MoveNext   ResolvedCall
	Current    ResolvedCall
}

func (f *ForOfStatement) statementNode()     {}
func (f *ForOfStatement) Pos() token.Position { return f.Token.Pos }
func (f *ForOfStatement) String() string {
	return "for (" + f.Binding.String() + " of " + f.Object.String() + ") " + f.Body.String()
}
func (f *ForOfStatement) ChildNodes() []Node { return []Node{f.Binding, f.Object, f.Body} }

// SwitchCase is one `case test:`/`default:` clause; Test == nil marks the
// default clause (spec: "at most one default clause").
type SwitchCase struct {
	Test Expression
	Body []Statement
}

// SwitchStatement is `switch (disc) { case ...: ... }`.
type SwitchStatement struct {
	stmtRoot
	Token       token.Token
	Discriminant Expression
	Cases       []SwitchCase
}

func (s *SwitchStatement) statementNode()     {}
func (s *SwitchStatement) Pos() token.Position { return s.Token.Pos }
func (s *SwitchStatement) String() string {
	var sb strings.Builder
	sb.WriteString("switch (" + s.Discriminant.String() + ") {\n")
	for _, c := range s.Cases {
		if c.Test != nil {
			sb.WriteString("case " + c.Test.String() + ":\n")
		} else {
			sb.WriteString("default:\n")
		}
		for _, st := range c.Body {
			sb.WriteString("  " + st.String() + "\n")
		}
	}
	sb.WriteString("}")
	return sb.String()
}
func (s *SwitchStatement) ChildNodes() []Node {
	ns := []Node{s.Discriminant}
	for _, c := range s.Cases {
		if c.Test != nil {
			ns = append(ns, c.Test)
		}
		for _, st := range c.Body {
			ns = append(ns, st)
		}
	}
	return ns
}

// CatchClause is try's optional `catch (name) { ... }`. Binding is filled
// in by internal/ctx's ResolveVariables alongside the catch scope it
// creates for Body — internal/codegen stores the caught value there
// directly rather than re-deriving the scope the resolve pass built.
type CatchClause struct {
	Param   *Identifier // nil for a parameterless catch
	Body    *BlockStatement
	Binding *scope.Variable
}

// TryStatement is `try { } [catch (e) { }] [finally { }]`; spec requires
// at least one of Catch/Finally.
type TryStatement struct {
	stmtRoot
	Token   token.Token
	Block   *BlockStatement
	Catch   *CatchClause
	Finally *BlockStatement
}

func (t *TryStatement) statementNode()     {}
func (t *TryStatement) Pos() token.Position { return t.Token.Pos }
func (t *TryStatement) String() string {
	s := "try " + t.Block.String()
	if t.Catch != nil {
		name := ""
		if t.Catch.Param != nil {
			name = t.Catch.Param.Name
		}
		s += " catch (" + name + ") " + t.Catch.Body.String()
	}
	if t.Finally != nil {
		s += " finally " + t.Finally.String()
	}
	return s
}
func (t *TryStatement) ChildNodes() []Node {
	ns := []Node{t.Block}
	if t.Catch != nil {
		ns = append(ns, t.Catch.Body)
	}
	if t.Finally != nil {
		ns = append(ns, t.Finally)
	}
	return ns
}

// BreakStatement / ContinueStatement carry an optional Label.
type BreakStatement struct {
	stmtRoot
	Token token.Token
	Label string
}

func (b *BreakStatement) statementNode()     {}
func (b *BreakStatement) Pos() token.Position { return b.Token.Pos }
func (b *BreakStatement) String() string {
	if b.Label != "" {
		return "break " + b.Label + ";"
	}
	return "break;"
}
func (b *BreakStatement) ChildNodes() []Node { return nil }

type ContinueStatement struct {
	stmtRoot
	Token token.Token
	Label string
}

func (c *ContinueStatement) statementNode()     {}
func (c *ContinueStatement) Pos() token.Position { return c.Token.Pos }
func (c *ContinueStatement) String() string {
	if c.Label != "" {
		return "continue " + c.Label + ";"
	}
	return "continue;"
}
func (c *ContinueStatement) ChildNodes() []Node { return nil }

// ReturnStatement is `return [expr];`.
type ReturnStatement struct {
	stmtRoot
	Token token.Token
	Value Expression // nil for a bare `return;`
}

func (r *ReturnStatement) statementNode()     {}
func (r *ReturnStatement) Pos() token.Position { return r.Token.Pos }
func (r *ReturnStatement) String() string {
	if r.Value != nil {
		return "return " + r.Value.String() + ";"
	}
	return "return;"
}
func (r *ReturnStatement) ChildNodes() []Node {
	if r.Value != nil {
		return []Node{r.Value}
	}
	return nil
}

// ThrowStatement is `throw expr;`.
type ThrowStatement struct {
	stmtRoot
	Token token.Token
	Value Expression
}

func (t *ThrowStatement) statementNode()     {}
func (t *ThrowStatement) Pos() token.Position { return t.Token.Pos }
func (t *ThrowStatement) String() string       { return "throw " + t.Value.String() + ";" }
func (t *ThrowStatement) ChildNodes() []Node   { return []Node{t.Value} }

// WithStatement is `with (object) body`; forbidden in strict mode.
type WithStatement struct {
	stmtRoot
	Token  token.Token
	Object Expression
	Body   Statement
}

func (w *WithStatement) statementNode()     {}
func (w *WithStatement) Pos() token.Position { return w.Token.Pos }
func (w *WithStatement) String() string       { return "with (" + w.Object.String() + ") " + w.Body.String() }
func (w *WithStatement) ChildNodes() []Node   { return []Node{w.Object, w.Body} }

// LabelledStatement is `label: stmt`.
type LabelledStatement struct {
	stmtRoot
	Token token.Token
	Label string
	Body  Statement
}

func (l *LabelledStatement) statementNode()     {}
func (l *LabelledStatement) Pos() token.Position { return l.Token.Pos }
func (l *LabelledStatement) String() string       { return l.Label + ": " + l.Body.String() }
func (l *LabelledStatement) ChildNodes() []Node   { return []Node{l.Body} }

// EmptyStatement is a bare `;`.
type EmptyStatement struct {
	stmtRoot
	Token token.Token
}

func (e *EmptyStatement) statementNode()     {}
func (e *EmptyStatement) Pos() token.Position { return e.Token.Pos }
func (e *EmptyStatement) String() string       { return ";" }
func (e *EmptyStatement) ChildNodes() []Node   { return nil }

// DebuggerStatement is the `debugger;` statement; the code generator
// emits an Emitter.Breakpoint() for it.
type DebuggerStatement struct {
	stmtRoot
	Token token.Token
}

func (d *DebuggerStatement) statementNode()     {}
func (d *DebuggerStatement) Pos() token.Position { return d.Token.Pos }
func (d *DebuggerStatement) String() string       { return "debugger;" }
func (d *DebuggerStatement) ChildNodes() []Node   { return nil }

// FunctionDeclaration is a named `function f(...) {...}` in statement
// position; it hoists to the top of its containing scope.
type FunctionDeclaration struct {
	stmtRoot
	Token    token.Token
	Function *FunctionLiteral
}

func (f *FunctionDeclaration) statementNode()     {}
func (f *FunctionDeclaration) Pos() token.Position { return f.Token.Pos }
func (f *FunctionDeclaration) String() string       { return f.Function.String() }
func (f *FunctionDeclaration) ChildNodes() []Node   { return []Node{f.Function} }
