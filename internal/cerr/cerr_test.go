package cerr

import (
	"strings"
	"testing"

	"github.com/bablakeluke/nitrassic-go/internal/parser"
	"github.com/bablakeluke/nitrassic-go/internal/token"
)

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		SyntaxError:    "SyntaxError",
		TypeError:      "TypeError",
		RangeError:     "RangeError",
		ReferenceError: "ReferenceError",
		InternalError:  "InternalError",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}

func TestFormatIncludesHeaderPositionAndCaretLine(t *testing.T) {
	e := New(TypeError, token.Position{Path: "a.js", Line: 2, Column: 5}, "no matching overload")
	e.Source = "var x = 1;\nfoo(bar);\n"
	out := e.Format(false)

	if !strings.Contains(out, "TypeError: no matching overload") {
		t.Fatalf("expected header line, got %q", out)
	}
	if !strings.Contains(out, "a.js:2:5") {
		t.Fatalf("expected the position to be rendered, got %q", out)
	}
	if !strings.Contains(out, "foo(bar);") {
		t.Fatalf("expected the offending source line to be quoted, got %q", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("expected a caret line, got %q", out)
	}
}

func TestFormatIncludesFuncNameWhenSet(t *testing.T) {
	e := New(TypeError, token.Position{Line: 1, Column: 1}, "boom")
	e.FuncName = "add"
	out := e.Format(false)
	if !strings.Contains(out, "(in add)") {
		t.Fatalf("expected the enclosing function name to be annotated, got %q", out)
	}
}

func TestFormatOmitsSourceLineWhenSourceIsEmpty(t *testing.T) {
	e := New(SyntaxError, token.Position{Line: 1, Column: 1}, "unexpected token")
	out := e.Format(false)
	if strings.Contains(out, "^") {
		t.Fatalf("expected no caret line without source text, got %q", out)
	}
}

func TestFromParseErrorClassifiesStrictReservedAsReferenceError(t *testing.T) {
	pe := &parser.ParseError{Code: parser.ErrStrictReserved, Message: "eval used as binding name", Pos: token.Position{Line: 1, Column: 1}}
	e := FromParseError(pe, "")
	if e.Kind != ReferenceError {
		t.Fatalf("expected ErrStrictReserved to map to ReferenceError, got %v", e.Kind)
	}

	pe2 := &parser.ParseError{Code: parser.ErrMissingSemicolon, Message: "expected ;", Pos: token.Position{Line: 1, Column: 1}}
	e2 := FromParseError(pe2, "")
	if e2.Kind != SyntaxError {
		t.Fatalf("expected an ordinary parse error to map to SyntaxError, got %v", e2.Kind)
	}
}

func TestFormatAllNumbersMultipleErrors(t *testing.T) {
	errs := []*CompileError{
		New(SyntaxError, token.Position{Line: 1, Column: 1}, "first"),
		New(TypeError, token.Position{Line: 2, Column: 1}, "second"),
	}
	out := FormatAll(errs, false)
	if !strings.Contains(out, "compilation failed with 2 errors") {
		t.Fatalf("expected a summary header, got %q", out)
	}
	if !strings.Contains(out, "[1/2]") || !strings.Contains(out, "[2/2]") {
		t.Fatalf("expected both errors to be numbered, got %q", out)
	}
}

func TestFormatAllReturnsEmptyStringForNoErrors(t *testing.T) {
	if got := FormatAll(nil, false); got != "" {
		t.Fatalf("expected FormatAll(nil) to return an empty string, got %q", got)
	}
}

func TestFormatAllSkipsNumberingForASingleError(t *testing.T) {
	errs := []*CompileError{New(SyntaxError, token.Position{Line: 1, Column: 1}, "solo")}
	out := FormatAll(errs, false)
	if strings.Contains(out, "[1/1]") {
		t.Fatalf("expected a single error to not be numbered, got %q", out)
	}
}
