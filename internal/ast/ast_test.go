package ast

import (
	"testing"

	"github.com/bablakeluke/nitrassic-go/internal/token"
)

func ident(name string) *Identifier {
	return &Identifier{Token: token.Token{Type: token.IDENT, Literal: name}, Name: name}
}

func name(n string) *NameExpression {
	return &NameExpression{Token: token.Token{Type: token.IDENT, Literal: n}, Name: n}
}

func num(lit string) *PrimitiveLiteral {
	return &PrimitiveLiteral{Token: token.Token{Type: token.NUMBER, Literal: lit}, Kind: token.KindInt}
}

func TestProgramStringJoinsStatementsWithNewlines(t *testing.T) {
	empty := &Program{}
	if got := empty.String(); got != "" {
		t.Fatalf("expected an empty program to render as empty, got %q", got)
	}

	prog := &Program{Body: []Statement{
		&ExpressionStatement{Expr: name("x")},
		&ExpressionStatement{Expr: name("y")},
	}}
	if got, want := prog.String(), "x;\ny;\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if len(prog.ChildNodes()) != 2 {
		t.Fatalf("expected ChildNodes to expose both statements")
	}
}

func TestIdentifierAndNameExpressionStringIsTheirName(t *testing.T) {
	if got := ident("foo").String(); got != "foo" {
		t.Fatalf("got %q, want %q", got, "foo")
	}
	if got := name("bar").String(); got != "bar" {
		t.Fatalf("got %q, want %q", got, "bar")
	}
	if ident("foo").ChildNodes() != nil {
		t.Fatalf("expected Identifier to have no child nodes")
	}
}

func TestPrimitiveLiteralStringIsItsTokenLiteral(t *testing.T) {
	if got := num("42").String(); got != "42" {
		t.Fatalf("got %q, want %q", got, "42")
	}
}

func TestArrayLiteralStringJoinsElementsAndSkipsElisions(t *testing.T) {
	a := &ArrayLiteral{Elements: []Expression{num("1"), nil, num("3")}}
	if got, want := a.String(), "[1, , 3]"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := len(a.ChildNodes()); got != 2 {
		t.Fatalf("expected elided elements to be dropped from ChildNodes, got %d entries", got)
	}
}

func TestObjectLiteralStringRendersShorthandComputedAndOrdinaryKeys(t *testing.T) {
	o := &ObjectLiteral{Properties: []ObjectProperty{
		{Key: "a", Value: num("1")},
		{Key: "b", Shorthand: true, Value: name("b")},
		{Computed: true, KeyExpr: name("k"), Value: num("2")},
	}}
	want := "{a: 1, b, [k]: 2}"
	if got := o.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := len(o.ChildNodes()); got != 4 {
		t.Fatalf("expected a computed key's KeyExpr plus every Value, got %d child nodes", got)
	}
}

func TestMemberAccessStringSwitchesOnComputed(t *testing.T) {
	plain := &MemberAccess{Object: name("obj"), Property: "field"}
	if got, want := plain.String(), "obj.field"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := len(plain.ChildNodes()); got != 1 {
		t.Fatalf("expected a non-computed access to expose only Object, got %d", got)
	}

	computed := &MemberAccess{Object: name("obj"), Index: num("0"), Computed: true}
	if got, want := computed.String(), "obj[0]"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := len(computed.ChildNodes()); got != 2 {
		t.Fatalf("expected a computed access to expose Object and Index, got %d", got)
	}
}

func TestCallAndNewExpressionStringRenderArguments(t *testing.T) {
	call := &CallExpression{Callee: name("f"), Arguments: []Expression{num("1"), num("2")}}
	if got, want := call.String(), "f(1, 2)"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := len(call.ChildNodes()); got != 3 {
		t.Fatalf("expected callee plus both arguments, got %d", got)
	}

	newExpr := &NewExpression{Callee: name("Point"), Arguments: []Expression{num("1")}}
	if got, want := newExpr.String(), "new Point(1)"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestBinaryUnaryAndAssignmentStringsMirrorOperatorPlacement(t *testing.T) {
	bin := &BinaryExpression{Op: token.PLUS, Left: num("1"), Right: num("2")}
	if got, want := bin.String(), "(1 + 2)"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	prefix := &UnaryExpression{Op: token.MINUS, Operand: num("1")}
	if got, want := prefix.String(), "-1"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	postfix := &UnaryExpression{Op: token.INC, Operand: name("i"), Postfix: true}
	if got, want := postfix.String(), "i++"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	assign := &AssignmentExpression{Op: token.ASSIGN, Left: name("x"), Right: num("5")}
	if got, want := assign.String(), "x = 5"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestConditionalAndSequenceExpressionStrings(t *testing.T) {
	cond := &ConditionalExpression{Test: name("a"), Consequent: num("1"), Alternate: num("2")}
	if got, want := cond.String(), "a ? 1 : 2"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	seq := &SequenceExpression{Expressions: []Expression{name("a"), name("b"), name("c")}}
	if got, want := seq.String(), "a, b, c"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFunctionLiteralStringIncludesNameParamsAndBody(t *testing.T) {
	fn := &FunctionLiteral{
		Name:   "add",
		Params: []*Identifier{ident("a"), ident("b")},
		Body:   &BlockStatement{Body: []Statement{&ReturnStatement{Value: name("a")}}},
	}
	want := "function add(a, b) {\n  return a;\n}"
	if got := fn.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := len(fn.ChildNodes()); got != 3 {
		t.Fatalf("expected both params plus the body, got %d", got)
	}
}

func TestVarStatementStringUsesKeywordForEachKind(t *testing.T) {
	cases := []struct {
		kind VarKind
		want string
	}{
		{VarVar, "var x = 1;"},
		{VarLet, "let x = 1;"},
		{VarConst, "const x = 1;"},
	}
	for _, c := range cases {
		v := &VarStatement{Kind: c.kind, Declarations: []VarDeclarator{{Name: ident("x"), Init: num("1")}}}
		if got := v.String(); got != c.want {
			t.Errorf("got %q, want %q", got, c.want)
		}
	}

	uninitialized := &VarStatement{Kind: VarVar, Declarations: []VarDeclarator{{Name: ident("x")}}}
	if got, want := uninitialized.String(), "var x;"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := len(uninitialized.ChildNodes()); got != 1 {
		t.Fatalf("expected an uninitialized declarator to contribute only its name, got %d child nodes", got)
	}
}

func TestIfStatementStringOmitsElseWhenAbsent(t *testing.T) {
	withElse := &IfStatement{
		Test:       name("cond"),
		Consequent: &ExpressionStatement{Expr: num("1")},
		Alternate:  &ExpressionStatement{Expr: num("2")},
	}
	if got, want := withElse.String(), "if (cond) 1; else 2;"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := len(withElse.ChildNodes()); got != 3 {
		t.Fatalf("expected test+consequent+alternate, got %d", got)
	}

	withoutElse := &IfStatement{Test: name("cond"), Consequent: &ExpressionStatement{Expr: num("1")}}
	if got, want := withoutElse.String(), "if (cond) 1;"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := len(withoutElse.ChildNodes()); got != 2 {
		t.Fatalf("expected a missing else clause to shrink ChildNodes to test+consequent, got %d", got)
	}
}

func TestBreakContinueStringsIncludeLabelWhenSet(t *testing.T) {
	if got, want := (&BreakStatement{}).String(), "break;"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got, want := (&BreakStatement{Label: "outer"}).String(), "break outer;"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got, want := (&ContinueStatement{Label: "outer"}).String(), "continue outer;"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if (&BreakStatement{}).ChildNodes() != nil {
		t.Fatalf("expected break to have no child nodes")
	}
}

func TestReturnStatementStringOmitsValueWhenBare(t *testing.T) {
	if got, want := (&ReturnStatement{}).String(), "return;"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	withValue := &ReturnStatement{Value: num("1")}
	if got, want := withValue.String(), "return 1;"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := len(withValue.ChildNodes()); got != 1 {
		t.Fatalf("expected a non-bare return to expose its value, got %d", got)
	}
	if (&ReturnStatement{}).ChildNodes() != nil {
		t.Fatalf("expected a bare return to have no child nodes")
	}
}

func TestWhileAndDoWhileStringsRoundTripTheirClauses(t *testing.T) {
	w := &WhileStatement{Test: name("a"), Body: &ExpressionStatement{Expr: name("b")}}
	if got, want := w.String(), "while (a) b;"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	d := &DoWhileStatement{Body: &ExpressionStatement{Expr: name("b")}, Test: name("a")}
	if got, want := d.String(), "do b; while (a);"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestThrowAndFunctionDeclarationStrings(t *testing.T) {
	th := &ThrowStatement{Value: name("e")}
	if got, want := th.String(), "throw e;"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	fd := &FunctionDeclaration{Function: &FunctionLiteral{Name: "f", Body: &BlockStatement{}}}
	if got, want := fd.String(), "function f() {\n}"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got := len(fd.ChildNodes()); got != 1 {
		t.Fatalf("expected a FunctionDeclaration to expose its FunctionLiteral as its sole child, got %d", got)
	}
}
