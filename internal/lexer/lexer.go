// Package lexer streams token.Token values from ECMAScript source text.
//
// # Expression context and the regex/divide ambiguity
//
// `/` begins either a division operator or a regular-expression literal
// depending on what token could syntactically precede it. The lexer does
// not parse, so the parser feeds back an ExpressionContext hint before
// requesting each token: Literal means an operand or prefix operator is
// expected next (so `/` opens a regex), Operator means a binary/postfix
// operator or end of expression is expected (so `/` is division),
// TemplateContinuation means the lexer should resume scanning the body of
// a template literal after a `${...}` substitution closes.
//
// # Unicode and column positions
//
// Column positions are rune counts from the start of the line, not byte
// offsets: a multi-byte identifier character counts as one column, the
// same simplifying tradeoff the teacher lexer documents for its own
// Unicode handling.
package lexer

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/rangetable"

	"github.com/bablakeluke/nitrassic-go/internal/token"
)

// idStartTable/idContinueTable implement ECMAScript's ID_Start/ID_Continue
// productions: ID_Start is Unicode letters plus letter-numbers plus '$'/'_';
// ID_Continue additionally admits combining marks, decimal digits,
// connector punctuation, and the zero-width joiner/non-joiner. Built with
// x/text/unicode/rangetable instead of a hand-rolled switch so the
// category set reads as the grammar productions themselves.
var (
	idStartTable    = rangetable.Merge(unicode.Letter, unicode.Nl, rangetable.New('$', '_'))
	idContinueTable = rangetable.Merge(idStartTable, unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc, rangetable.New('‌', '‍'))
)

// ExpressionContext is the parser's hint about what kind of token it
// expects next; it resolves the regex-vs-divide and template-continuation
// ambiguities that a context-free lexer cannot.
type ExpressionContext int

const (
	ExprOperand ExpressionContext = iota // operand or prefix operator expected ("/" opens a regex)
	ExprOperator                         // binary/postfix operator or end-of-expression expected
	ExprTemplateContinuation             // resume a template literal body after "${...}"
)

// Error describes a lexical failure at a specific source location.
type Error struct {
	Pos     token.Position
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: syntax error: %s", e.Pos, e.Message)
}

// Lexer is a forward-only, backtrackable scanner over ECMAScript source.
type Lexer struct {
	src    []rune
	path   string
	pos    int // index of ch within src
	rdPos  int // index of next rune to read
	ch     rune
	line   int
	column int

	strict         bool
	templateDepths []int // brace-nesting depth at which each open "${" was entered
}

// State is a saved lexer position, restorable for speculative parses (the
// parser backtracks across "for"'s three dialects and arrow-function
// lookahead using this).
type State struct {
	pos, rdPos, line, column int
	ch                       rune
	templateDepths           []int
}

// New creates a Lexer over src. A UTF-8 BOM at the very start is stripped,
// matching how source files are read elsewhere in the pipeline.
func New(src, path string) *Lexer {
	src = strings.TrimPrefix(src, "\xef\xbb\xbf")
	l := &Lexer{src: []rune(src), path: path, line: 1, column: 0}
	l.advance()
	return l
}

// SetStrict toggles strict-mode lexing rules (octal integer literals
// become errors; eval/arguments/etc. are lexed as their own token types,
// flagged via TokenType.IsStrictReserved for the parser to reject).
func (l *Lexer) SetStrict(strict bool) { l.strict = strict }

// Save captures the current scan position.
func (l *Lexer) Save() State {
	return State{l.pos, l.rdPos, l.line, l.column, l.ch, append([]int(nil), l.templateDepths...)}
}

// Restore rewinds the scanner to a previously Saved position.
func (l *Lexer) Restore(s State) {
	l.pos, l.rdPos, l.line, l.column = s.pos, s.rdPos, s.line, s.column
	l.templateDepths = s.templateDepths
	if l.pos < len(l.src) {
		l.ch = l.src[l.pos]
	} else {
		l.ch = 0
	}
}

func (l *Lexer) advance() {
	if l.rdPos >= len(l.src) {
		l.ch = 0
		l.pos = l.rdPos
		l.rdPos++
		return
	}
	l.ch = l.src[l.rdPos]
	l.pos = l.rdPos
	l.rdPos++
	l.column++
}

func (l *Lexer) peek() rune {
	if l.rdPos >= len(l.src) {
		return 0
	}
	return l.src[l.rdPos]
}

func (l *Lexer) peekAt(offset int) rune {
	i := l.rdPos + offset - 1
	if i < 0 || i >= len(l.src) {
		return 0
	}
	return l.src[i]
}

func (l *Lexer) newlinePos() {
	l.line++
	l.column = 0
}

func isIDStart(r rune) bool {
	return unicode.In(r, idStartTable)
}

func isIDPart(r rune) bool {
	return unicode.In(r, idContinueTable)
}

// Next scans and returns the next significant token under ctx. EOF is
// returned repeatedly once reached, never an error.
func (l *Lexer) Next(ctx ExpressionContext) (token.Token, error) {
	if ctx == ExprTemplateContinuation {
		return l.scanTemplateContinuation()
	}

	crossedNewline := l.skipWhitespaceAndComments()
	pos := token.Position{Path: l.path, Line: l.line, Column: l.column}

	if l.ch == 0 {
		return token.Token{Type: token.EOF, Pos: pos, PrecededByNewline: crossedNewline}, nil
	}

	var tok token.Token
	var err error
	switch {
	case isIDStart(l.ch):
		tok = l.scanIdentifier(pos)
	case unicode.IsDigit(l.ch) || (l.ch == '.' && unicode.IsDigit(l.peek())):
		tok, err = l.scanNumber(pos)
	case l.ch == '\'' || l.ch == '"':
		tok, err = l.scanString(pos)
	case l.ch == '`':
		tok, err = l.scanTemplateHead(pos)
	case l.ch == '/' && ctx == ExprOperand:
		tok, err = l.scanRegex(pos)
	default:
		tok, err = l.scanPunctuator(pos)
	}
	if err != nil {
		return token.Token{}, err
	}
	tok.PrecededByNewline = crossedNewline
	return tok, nil
}

func (l *Lexer) skipWhitespaceAndComments() bool {
	crossed := false
	for {
		switch {
		case l.ch == '\n':
			crossed = true
			l.advance()
			l.newlinePos()
		case l.ch == '\r':
			l.advance()
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\v' || l.ch == '\f' || l.ch == ' ':
			l.advance()
		case l.ch == '/' && l.peek() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.advance()
			}
		case l.ch == '/' && l.peek() == '*':
			l.advance()
			l.advance()
			for !(l.ch == '*' && l.peek() == '/') && l.ch != 0 {
				if l.ch == '\n' {
					crossed = true
					l.advance()
					l.newlinePos()
					continue
				}
				l.advance()
			}
			l.advance()
			l.advance()
		default:
			return crossed
		}
	}
}

func (l *Lexer) scanIdentifier(pos token.Position) token.Token {
	start := l.pos
	for isIDPart(l.ch) {
		l.advance()
	}
	lit := string(l.src[start:l.pos])
	tt := token.LookupIdent(lit)
	return token.Token{Type: tt, Literal: lit, Pos: pos}
}

func (l *Lexer) scanNumber(pos token.Position) (token.Token, error) {
	start := l.pos
	kind := token.KindInt
	if l.ch == '0' && (l.peek() == 'x' || l.peek() == 'X') {
		l.advance()
		l.advance()
		for isHex(l.ch) {
			l.advance()
		}
		lit := string(l.src[start:l.pos])
		return token.Token{Type: token.NUMBER, Literal: lit, Pos: pos, Kind: kind}, nil
	}
	if l.ch == '0' && isOctalDigit(l.peek()) && l.strict {
		return token.Token{}, &Error{pos, "octal literals are not allowed in strict mode"}
	}
	for unicode.IsDigit(l.ch) {
		l.advance()
	}
	if l.ch == '.' {
		kind = token.KindFloat
		l.advance()
		for unicode.IsDigit(l.ch) {
			l.advance()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		kind = token.KindFloat
		l.advance()
		if l.ch == '+' || l.ch == '-' {
			l.advance()
		}
		for unicode.IsDigit(l.ch) {
			l.advance()
		}
	}
	lit := string(l.src[start:l.pos])
	return token.Token{Type: token.NUMBER, Literal: lit, Pos: pos, Kind: kind}, nil
}

func isHex(r rune) bool {
	return unicode.IsDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isOctalDigit(r rune) bool { return r >= '0' && r <= '7' }

func (l *Lexer) scanString(pos token.Position) (token.Token, error) {
	quote := l.ch
	kind := token.KindSingleQuoted
	if quote == '"' {
		kind = token.KindDoubleQuoted
	}
	l.advance()
	var sb strings.Builder
	escapes, continuations := 0, 0
	for l.ch != quote {
		if l.ch == 0 || l.ch == '\n' {
			return token.Token{}, &Error{pos, "unterminated string literal"}
		}
		if l.ch == '\\' {
			l.advance()
			if l.ch == '\n' {
				continuations++
				l.advance()
				l.newlinePos()
				continue
			}
			escapes++
			sb.WriteRune(l.unescape())
			continue
		}
		sb.WriteRune(l.ch)
		l.advance()
	}
	l.advance() // closing quote
	return token.Token{
		Type: token.STRING, Literal: sb.String(), Value: sb.String(), Pos: pos,
		Kind: kind, EscapeSequenceCount: escapes, LineContinuationCount: continuations,
	}, nil
}

func (l *Lexer) unescape() rune {
	switch l.ch {
	case 'n':
		l.advance()
		return '\n'
	case 't':
		l.advance()
		return '\t'
	case 'r':
		l.advance()
		return '\r'
	case 'b':
		l.advance()
		return '\b'
	case 'f':
		l.advance()
		return '\f'
	case 'v':
		l.advance()
		return '\v'
	case 'u':
		l.advance()
		return l.unescapeUnicode()
	case 'x':
		l.advance()
		v := 0
		for i := 0; i < 2 && isHex(l.ch); i++ {
			v = v*16 + hexVal(l.ch)
			l.advance()
		}
		return rune(v)
	default:
		r := l.ch
		l.advance()
		return r
	}
}

func (l *Lexer) unescapeUnicode() rune {
	if l.ch == '{' {
		l.advance()
		v := 0
		for l.ch != '}' && l.ch != 0 {
			v = v*16 + hexVal(l.ch)
			l.advance()
		}
		l.advance()
		return rune(v)
	}
	v := 0
	for i := 0; i < 4 && isHex(l.ch); i++ {
		v = v*16 + hexVal(l.ch)
		l.advance()
	}
	return rune(v)
}

func hexVal(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10
	}
	return 0
}

// scanTemplateHead scans from the opening backtick through either the
// closing backtick (no substitutions) or the first "${".
func (l *Lexer) scanTemplateHead(pos token.Position) (token.Token, error) {
	l.advance() // consume `
	return l.scanTemplatePart(pos, token.KindTemplateHead, token.KindTemplateNoSubstitution)
}

func (l *Lexer) scanTemplateContinuation() (token.Token, error) {
	pos := token.Position{Path: l.path, Line: l.line, Column: l.column}
	return l.scanTemplatePart(pos, token.KindTemplateMiddle, token.KindTemplateTail)
}

func (l *Lexer) scanTemplatePart(pos token.Position, midKind, endKind token.LiteralKind) (token.Token, error) {
	var sb strings.Builder
	for {
		switch l.ch {
		case 0:
			return token.Token{}, &Error{pos, "unterminated template literal"}
		case '`':
			l.advance()
			return token.Token{Type: token.TEMPLATE, Literal: sb.String(), Value: sb.String(), Pos: pos, Kind: endKind}, nil
		case '\\':
			l.advance()
			sb.WriteRune(l.unescape())
		case '$':
			if l.peek() == '{' {
				l.advance()
				l.advance()
				return token.Token{
					Type: token.TEMPLATE, Literal: sb.String(), Value: sb.String(), Pos: pos,
					Kind: midKind, SubstitutionFollows: true,
				}, nil
			}
			sb.WriteRune(l.ch)
			l.advance()
		case '\n':
			sb.WriteRune(l.ch)
			l.advance()
			l.newlinePos()
		default:
			sb.WriteRune(l.ch)
			l.advance()
		}
	}
}

func (l *Lexer) scanRegex(pos token.Position) (token.Token, error) {
	start := l.pos
	l.advance() // consume /
	inClass := false
	for {
		switch l.ch {
		case 0, '\n':
			return token.Token{}, &Error{pos, "unterminated regular expression literal"}
		case '\\':
			l.advance()
			l.advance()
			continue
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '/':
			if !inClass {
				l.advance()
				for isIDPart(l.ch) { // flags
					l.advance()
				}
				return token.Token{Type: token.REGEX, Literal: string(l.src[start:l.pos]), Pos: pos}, nil
			}
		}
		l.advance()
	}
}

// punctuators ordered longest-match-first within each starting rune.
func (l *Lexer) scanPunctuator(pos token.Position) (token.Token, error) {
	ch := l.ch
	three := string(ch) + string(l.peek()) + string(l.peekAt(2))
	two := string(ch) + string(l.peek())

	switch three {
	case "===":
		l.advance()
		l.advance()
		l.advance()
		return token.Token{Type: token.EQEQ, Literal: three, Pos: pos}, nil
	case "!==":
		l.advance()
		l.advance()
		l.advance()
		return token.Token{Type: token.NEQEQ, Literal: three, Pos: pos}, nil
	case ">>>":
		l.advance()
		l.advance()
		l.advance()
		if l.ch == '=' {
			l.advance()
			return token.Token{Type: token.USHR_ASSIGN, Literal: ">>>=", Pos: pos}, nil
		}
		return token.Token{Type: token.USHR, Literal: three, Pos: pos}, nil
	case "...":
		l.advance()
		l.advance()
		l.advance()
		return token.Token{Type: token.ELLIPSIS, Literal: three, Pos: pos}, nil
	}

	if tt, ok := twoCharPunct[two]; ok {
		l.advance()
		l.advance()
		return token.Token{Type: tt, Literal: two, Pos: pos}, nil
	}
	if tt, ok := oneCharPunct[ch]; ok {
		l.advance()
		return token.Token{Type: tt, Literal: string(ch), Pos: pos}, nil
	}
	lit := string(ch)
	if ch == 0 {
		lit = ""
	}
	l.advance()
	return token.Token{}, &Error{pos, fmt.Sprintf("unexpected character %q", lit)}
}

var twoCharPunct = map[string]token.TokenType{
	"<=": token.LE, ">=": token.GE, "==": token.EQ, "!=": token.NE,
	"++": token.INC, "--": token.DEC, "<<": token.SHL, ">>": token.SHR,
	"&&": token.AND, "||": token.OR, "=>": token.ARROW,
	"+=": token.PLUS_ASSIGN, "-=": token.MINUS_ASSIGN, "*=": token.STAR_ASSIGN,
	"/=": token.SLASH_ASSIGN, "%=": token.PCT_ASSIGN, "&=": token.AMP_ASSIGN,
	"|=": token.PIPE_ASSIGN, "^=": token.CARET_ASSIGN,
}

var oneCharPunct = map[rune]token.TokenType{
	'{': token.LBRACE, '}': token.RBRACE, '(': token.LPAREN, ')': token.RPAREN,
	'[': token.LBRACKET, ']': token.RBRACKET, '.': token.DOT, ';': token.SEMICOLON,
	',': token.COMMA, '<': token.LT, '>': token.GT, '+': token.PLUS, '-': token.MINUS,
	'*': token.STAR, '/': token.SLASH, '%': token.PCT, '&': token.AMP, '|': token.PIPE,
	'^': token.CARET, '!': token.BANG, '~': token.TILDE, '?': token.QMARK,
	':': token.COLON, '=': token.ASSIGN,
}

// ByteOffset converts a rune index back into the rune's width-1 position
// for diagnostics that need a UTF-8 byte length (rarely needed; sequence
// point sinks for the IL emitter only need line/column).
func ByteOffset(src string, runeIndex int) int {
	count := 0
	for i := range src {
		if count == runeIndex {
			return i
		}
		count++
	}
	return len(src)
}

// IsValidIdentifier reports whether s is a lexically valid identifier in
// its entirety (used by the parser for destructured cases and by the
// semantic pass when synthesizing property names).
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	rs := []rune(s)
	if !isIDStart(rs[0]) {
		return false
	}
	for _, r := range rs[1:] {
		if !isIDPart(r) {
			return false
		}
	}
	return true
}
