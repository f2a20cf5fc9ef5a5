package optable

import (
	"testing"

	"github.com/bablakeluke/nitrassic-go/internal/ast"
	"github.com/bablakeluke/nitrassic-go/internal/token"
)

func name(n string) ast.Expression { return &ast.NameExpression{Name: n} }

func tok(tt token.TokenType) token.Token { return token.Token{Type: tt, Literal: tt.String()} }

// build drives a Builder through an alternating operand/operator/.../operand
// sequence, the same shape internal/parser's expression loop feeds it one
// token at a time, and returns the finished expression's String().
func build(t *testing.T, ops []string, names []string) string {
	t.Helper()
	b := NewBuilder()
	if err := b.PushOperand(name(names[0])); err != nil {
		t.Fatalf("PushOperand(%s): %v", names[0], err)
	}
	for i, opLit := range ops {
		tt := opTokenType(t, opLit)
		desc, ok := Lookup(tt)
		if !ok {
			t.Fatalf("Lookup(%s): not found", opLit)
		}
		if err := b.PushOperator(tok(tt), desc); err != nil {
			t.Fatalf("PushOperator(%s): %v", opLit, err)
		}
		if err := b.PushOperand(name(names[i+1])); err != nil {
			t.Fatalf("PushOperand(%s): %v", names[i+1], err)
		}
	}
	expr, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	return expr.String()
}

func opTokenType(t *testing.T, lit string) token.TokenType {
	t.Helper()
	switch lit {
	case "+":
		return token.PLUS
	case "-":
		return token.MINUS
	case "*":
		return token.STAR
	case "/":
		return token.SLASH
	case "=":
		return token.ASSIGN
	case ",":
		return token.COMMA
	}
	t.Fatalf("opTokenType: unknown operator literal %q", lit)
	return 0
}

func TestPushOperatorRespectsPrecedenceCase4(t *testing.T) {
	// a + b * c: '*' binds tighter than the open '+', so it nests as the
	// right operand of '+' rather than displacing it (case 4, tighter
	// precedence steals '+'s right operand rather than re-rooting).
	got := build(t, []string{"+", "*"}, []string{"a", "b", "c"})
	want := "(a + (b * c))"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPushOperatorStealsOperandCase3(t *testing.T) {
	// a * b + c: '+' is looser than the root '*', so it re-roots, taking
	// the whole '*' tree as its left operand (case 3).
	got := build(t, []string{"*", "+"}, []string{"a", "b", "c"})
	want := "((a * b) + c)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	// a = b = c should nest as a = (b = c): PushOperator's binds() treats
	// a second '=' at the same precedence as still binding tighter because
	// AssignPrec is right-associative.
	b := NewBuilder()
	if err := b.PushOperand(name("a")); err != nil {
		t.Fatalf("PushOperand: %v", err)
	}
	assignDesc, _ := Lookup(token.ASSIGN)
	if err := b.PushOperator(tok(token.ASSIGN), assignDesc); err != nil {
		t.Fatalf("PushOperator: %v", err)
	}
	if err := b.PushOperand(name("b")); err != nil {
		t.Fatalf("PushOperand: %v", err)
	}
	if err := b.PushOperator(tok(token.ASSIGN), assignDesc); err != nil {
		t.Fatalf("PushOperator: %v", err)
	}
	if err := b.PushOperand(name("c")); err != nil {
		t.Fatalf("PushOperand: %v", err)
	}
	expr, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	want := "a = b = c"
	if expr.String() != want {
		t.Fatalf("got %q, want %q", expr.String(), want)
	}
	assign, ok := expr.(*ast.AssignmentExpression)
	if !ok {
		t.Fatalf("expected the top-level node to be an AssignmentExpression, got %T", expr)
	}
	if _, ok := assign.Right.(*ast.AssignmentExpression); !ok {
		t.Fatalf("expected a = b = c to nest as a = (b = c), got right operand %T", assign.Right)
	}
}

func TestAdditionIsLeftAssociative(t *testing.T) {
	// a - b - c should nest as (a - b) - c, not a - (b - c).
	got := build(t, []string{"-", "-"}, []string{"a", "b", "c"})
	want := "((a - b) - c)"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTernaryViaPushSecondary(t *testing.T) {
	b := NewBuilder()
	if err := b.PushOperand(name("a")); err != nil {
		t.Fatalf("PushOperand: %v", err)
	}
	qDesc, _ := Lookup(token.QMARK)
	if err := b.PushOperator(tok(token.QMARK), qDesc); err != nil {
		t.Fatalf("PushOperator(?): %v", err)
	}
	if err := b.PushOperand(name("b")); err != nil {
		t.Fatalf("PushOperand(b): %v", err)
	}
	if err := b.PushSecondary(token.COLON); err != nil {
		t.Fatalf("PushSecondary: %v", err)
	}
	if err := b.PushOperand(name("c")); err != nil {
		t.Fatalf("PushOperand(c): %v", err)
	}
	expr, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	want := "a ? b : c"
	if expr.String() != want {
		t.Fatalf("got %q, want %q", expr.String(), want)
	}
}

func TestPushPrefixAttachesAsOperandThenBecomesOpen(t *testing.T) {
	b := NewBuilder()
	bangDesc, ok := PrefixDescriptor(token.BANG)
	if !ok {
		t.Fatalf("expected BANG to have a prefix descriptor")
	}
	if err := b.PushPrefix(tok(token.BANG), bangDesc); err != nil {
		t.Fatalf("PushPrefix: %v", err)
	}
	if err := b.PushOperand(name("a")); err != nil {
		t.Fatalf("PushOperand: %v", err)
	}
	expr, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if got, want := expr.String(), "!a"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPushPostfixSplicesOntoRightmostOperand(t *testing.T) {
	b := NewBuilder()
	if err := b.PushOperand(name("a")); err != nil {
		t.Fatalf("PushOperand: %v", err)
	}
	incDesc, _ := Lookup(token.INC)
	if err := b.PushPostfix(tok(token.INC), incDesc); err != nil {
		t.Fatalf("PushPostfix: %v", err)
	}
	expr, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if got, want := expr.String(), "a++"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCommaBuildsSequenceExpressionFlattened(t *testing.T) {
	got := build(t, []string{",", ","}, []string{"a", "b", "c"})
	want := "a, b, c"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFinishErrorsOnEmptyExpression(t *testing.T) {
	b := NewBuilder()
	if _, err := b.Finish(); err == nil {
		t.Fatalf("expected Finish to error on an empty builder")
	}
}

func TestFinishErrorsOnDanglingOperator(t *testing.T) {
	b := NewBuilder()
	if err := b.PushOperand(name("a")); err != nil {
		t.Fatalf("PushOperand: %v", err)
	}
	plusDesc, _ := Lookup(token.PLUS)
	if err := b.PushOperator(tok(token.PLUS), plusDesc); err != nil {
		t.Fatalf("PushOperator: %v", err)
	}
	if _, err := b.Finish(); err == nil {
		t.Fatalf("expected Finish to error when an operator is missing its right operand")
	}
}

func TestLookupRejectsPrefixOnlyOperators(t *testing.T) {
	if _, ok := Lookup(token.TYPEOF); ok {
		t.Fatalf("expected Lookup to reject a prefix-only operator")
	}
	if _, ok := PrefixDescriptor(token.TYPEOF); !ok {
		t.Fatalf("expected PrefixDescriptor to accept typeof")
	}
}
