package token

import "testing"

func TestLookupIdentClassifiesKeywordsAndIdentifiers(t *testing.T) {
	cases := map[string]TokenType{
		"function": FUNCTION,
		"return":   RETURN,
		"for":      FOR,
		"typeof":   TYPEOF,
		"foo":      IDENT,
		"myVar":    IDENT,
	}
	for lit, want := range cases {
		if got := LookupIdent(lit); got != want {
			t.Errorf("LookupIdent(%q) = %v, want %v", lit, got, want)
		}
	}
}

func TestLookupIdentClassifiesStrictReservedWordsAsTheirOwnType(t *testing.T) {
	// eval/arguments/yield are real keyword-typed tokens, not IDENT, so the
	// parser can reject them as binding names when strict mode is active
	// via IsStrictReserved rather than LookupIdent.
	if got := LookupIdent("eval"); got != EVAL {
		t.Fatalf("expected LookupIdent(\"eval\") to resolve to EVAL, got %v", got)
	}
	if !EVAL.IsStrictReserved() {
		t.Fatalf("expected EVAL to be flagged strict-reserved")
	}
	if FUNCTION.IsStrictReserved() {
		t.Fatalf("expected an ordinary keyword to not be flagged strict-reserved")
	}
}

func TestTokenTypeClassification(t *testing.T) {
	if !NUMBER.IsLiteral() {
		t.Errorf("expected NUMBER to be a literal token type")
	}
	if FUNCTION.IsLiteral() {
		t.Errorf("expected FUNCTION to not be a literal token type")
	}
	if !FUNCTION.IsKeyword() {
		t.Errorf("expected FUNCTION to be a keyword")
	}
	if NUMBER.IsKeyword() {
		t.Errorf("expected NUMBER to not be a keyword")
	}
	if !PLUS.IsPunctuator() {
		t.Errorf("expected PLUS to be a punctuator")
	}
	if FUNCTION.IsPunctuator() {
		t.Errorf("expected FUNCTION to not be a punctuator")
	}
}

func TestTokenTypeStringRendersCanonicalForm(t *testing.T) {
	if got := PLUS.String(); got != "+" {
		t.Fatalf("expected PLUS.String() to be %q, got %q", "+", got)
	}
	if got := ASSIGN.String(); got != "=" {
		t.Fatalf("expected ASSIGN.String() to be %q, got %q", "=", got)
	}
}

func TestTokenStringPrefersLiteralOverTypeName(t *testing.T) {
	tok := Token{Type: IDENT, Literal: "myVar"}
	if got := tok.String(); got != "myVar" {
		t.Fatalf("expected a token with a literal to print it verbatim, got %q", got)
	}

	tok2 := Token{Type: PLUS}
	if got := tok2.String(); got != "+" {
		t.Fatalf("expected an empty-literal token to fall back to its type's String(), got %q", got)
	}
}

func TestIsAssignOpCoversAllCompoundOperators(t *testing.T) {
	assignOps := []TokenType{
		ASSIGN, PLUS_ASSIGN, MINUS_ASSIGN, STAR_ASSIGN, SLASH_ASSIGN,
		PCT_ASSIGN, SHL_ASSIGN, SHR_ASSIGN, USHR_ASSIGN, AMP_ASSIGN,
		PIPE_ASSIGN, CARET_ASSIGN,
	}
	for _, tt := range assignOps {
		if !(Token{Type: tt}).IsAssignOp() {
			t.Errorf("expected %v to be classified as an assignment operator", tt)
		}
	}
	if (Token{Type: PLUS}).IsAssignOp() {
		t.Fatalf("expected plain PLUS to not be an assignment operator")
	}
}

func TestPositionStringOmitsPathWhenEmpty(t *testing.T) {
	if got, want := (Position{Line: 3, Column: 7}).String(), "3:7"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if got, want := (Position{Path: "a.js", Line: 3, Column: 7}).String(), "a.js:3:7"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
