package lexer

import (
	"testing"

	"github.com/bablakeluke/nitrassic-go/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `var x = 5;
	x = x + 10;
	`

	tests := []struct {
		expectedLiteral string
		expectedType    token.TokenType
	}{
		{"var", token.VAR},
		{"x", token.IDENT},
		{"=", token.ASSIGN},
		{"5", token.NUMBER},
		{";", token.SEMICOLON},
		{"x", token.IDENT},
		{"=", token.ASSIGN},
		{"x", token.IDENT},
		{"+", token.PLUS},
		{"10", token.NUMBER},
		{";", token.SEMICOLON},
		{"", token.EOF},
	}

	l := New(input, "test.js")

	for i, tt := range tests {
		tok, err := l.Next(ExprOperand)
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestKeywords(t *testing.T) {
	input := `break case catch const continue debugger default delete do else
		false finally for function if in instanceof let new null of return
		switch this throw true try typeof var void while with`

	expected := []token.TokenType{
		token.BREAK, token.CASE, token.CATCH, token.CONST, token.CONTINUE,
		token.DEBUGGER, token.DEFAULT, token.DELETE, token.DO, token.ELSE,
		token.FALSE, token.FINALLY, token.FOR, token.FUNCTION, token.IF,
		token.IN, token.INSTANCEOF, token.LET, token.NEW, token.NULL,
		token.OF, token.RETURN, token.SWITCH, token.THIS, token.THROW,
		token.TRUE, token.TRY, token.TYPEOF, token.VAR, token.VOID,
		token.WHILE, token.WITH,
	}

	l := New(input, "test.js")
	for i, want := range expected {
		tok, err := l.Next(ExprOperand)
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		if tok.Type != want {
			t.Fatalf("tests[%d] - expected=%q, got=%q (literal=%q)", i, want, tok.Type, tok.Literal)
		}
	}
}

func TestRegexVsDivideAmbiguity(t *testing.T) {
	l := New(`/abc/`, "test.js")
	tok, err := l.Next(ExprOperand)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Type != token.REGEX {
		t.Fatalf("expected REGEX when an operand is expected, got %q", tok.Type)
	}

	l2 := New(`a / b`, "test.js")
	_, err = l2.Next(ExprOperand)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tok2, err := l2.Next(ExprOperator)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok2.Type != token.SLASH {
		t.Fatalf("expected SLASH when an operator is expected, got %q", tok2.Type)
	}
}

func TestLineTerminatorCrossingForASI(t *testing.T) {
	l := New("a\nb", "test.js")
	first, err := l.Next(ExprOperand)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.PrecededByNewline {
		t.Fatalf("first token should not report a preceding newline")
	}
	second, err := l.Next(ExprOperator)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.PrecededByNewline {
		t.Fatalf("second token should report the line terminator crossed before it")
	}
}

func TestStrictModeRejectsOctalLiteral(t *testing.T) {
	l := New(`0755`, "test.js")
	l.SetStrict(true)
	if _, err := l.Next(ExprOperand); err == nil {
		t.Fatalf("expected a strict-mode error for an octal integer literal")
	}

	l2 := New(`0755`, "test.js")
	if _, err := l2.Next(ExprOperand); err != nil {
		t.Fatalf("non-strict mode should accept an octal-looking literal: %v", err)
	}
}

func TestTemplateLiteralSubstitution(t *testing.T) {
	l := New("`a${b}c`", "test.js")
	head, err := l.Next(ExprOperand)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if head.Type != token.TEMPLATE || head.Kind != token.KindTemplateHead {
		t.Fatalf("expected a template head, got %q kind=%v", head.Type, head.Kind)
	}
	if !head.SubstitutionFollows {
		t.Fatalf("expected SubstitutionFollows on a head immediately followed by ${")
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input string
		kind  token.LiteralKind
	}{
		{"42", token.KindInt},
		{"3.14", token.KindFloat},
	}
	for _, tt := range tests {
		l := New(tt.input, "test.js")
		tok, err := l.Next(ExprOperand)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.input, err)
		}
		if tok.Type != token.NUMBER {
			t.Fatalf("%q: expected NUMBER, got %q", tt.input, tok.Type)
		}
		if tok.Kind != tt.kind {
			t.Fatalf("%q: expected kind=%v, got %v", tt.input, tt.kind, tok.Kind)
		}
	}
}
