// Package cerr formats the five structured error kinds the compiler can
// report (spec §7): SyntaxError, TypeError, RangeError, ReferenceError,
// InternalError. It carries the same position-plus-source-context
// formatting idiom the teacher's internal/errors package uses, swapping
// raw ANSI escapes for github.com/fatih/color so terminal/non-terminal
// detection and NO_COLOR handling come from the library instead of being
// hand-rolled.
package cerr

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/bablakeluke/nitrassic-go/internal/parser"
	"github.com/bablakeluke/nitrassic-go/internal/token"
)

// Kind is the closed set of error categories spec §7 names.
type Kind uint8

const (
	SyntaxError Kind = iota
	TypeError
	RangeError
	ReferenceError
	InternalError
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "SyntaxError"
	case TypeError:
		return "TypeError"
	case RangeError:
		return "RangeError"
	case ReferenceError:
		return "ReferenceError"
	case InternalError:
		return "InternalError"
	}
	return "Error"
}

// CompileError is one reported diagnostic, carrying enough context to
// print a source-pointing caret the way the teacher's CompilerError does.
// Pos.Path carries the source file, if any.
type CompileError struct {
	Kind     Kind
	Message  string
	Pos      token.Position
	FuncName string // enclosing function's name, "" at top level
	Source   string // full source text, for the caret line
}

func New(kind Kind, pos token.Position, message string) *CompileError {
	return &CompileError{Kind: kind, Pos: pos, Message: message}
}

// FromParseError lifts a parser.ParseError into a CompileError, tagging
// the handful of parse error codes that represent a reference rather
// than a syntax problem (e.g. a strict-mode reserved word used as a
// binding name) so callers downstream of parsing see a consistent Kind
// taxonomy regardless of which pass raised the diagnostic.
func FromParseError(pe *parser.ParseError, source string) *CompileError {
	kind := SyntaxError
	switch pe.Code {
	case parser.ErrStrictReserved, parser.ErrWithInStrictMode:
		kind = ReferenceError
	}
	return &CompileError{Kind: kind, Message: pe.Message, Pos: pe.Pos, Source: source}
}

func (e *CompileError) Error() string { return e.Format(false) }

var (
	boldRed = color.New(color.Bold, color.FgRed)
	bold    = color.New(color.Bold)
	dim     = color.New(color.Faint)
)

// Format renders the error as a header line (kind, message and, if set,
// the function name), a "-->" position line, then, when the source line
// is available, that line with a caret under the column; colorize
// selects whether fatih/color emits ANSI codes (it also auto-detects a
// non-terminal writer and no-ops there).
func (e *CompileError) Format(colorize bool) string {
	var sb strings.Builder

	header := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.FuncName != "" {
		header = fmt.Sprintf("%s: %s (in %s)", e.Kind, e.Message, e.FuncName)
	}
	sb.WriteString(fmt.Sprintf("%s\n  --> %s\n", header, e.Pos))

	if line := sourceLine(e.Source, e.Pos.Line); line != "" {
		gutter := fmt.Sprintf("%4d | ", e.Pos.Line)
		if colorize {
			dim.Fprint(&sb, gutter)
		} else {
			sb.WriteString(gutter)
		}
		sb.WriteString(line + "\n")
		sb.WriteString(strings.Repeat(" ", len(gutter)+max0(e.Pos.Column-1, 0)))
		if colorize {
			boldRed.Fprintln(&sb, "^")
		} else {
			sb.WriteString("^\n")
		}
	}
	return sb.String()
}

func max0(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func sourceLine(source string, line int) string {
	if source == "" || line < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// FormatAll renders every error in errs, numbering them when there is
// more than one (mirrors the teacher's FormatErrors).
func FormatAll(errs []*CompileError, colorize bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(colorize)
	}
	var sb strings.Builder
	header := fmt.Sprintf("compilation failed with %d errors:\n\n", len(errs))
	if colorize {
		bold.Fprint(&sb, header)
	} else {
		sb.WriteString(header)
	}
	for i, e := range errs {
		sb.WriteString(fmt.Sprintf("[%d/%d] ", i+1, len(errs)))
		sb.WriteString(e.Format(colorize))
		if i < len(errs)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
