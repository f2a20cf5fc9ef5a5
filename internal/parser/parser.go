// Package parser implements C4: a single recursive-descent statement
// parser paired with internal/optable's four-case expression tree
// builder for C3. It produces a bare internal/ast tree with no scope
// bindings attached; internal/ctx builds the scope tree and resolves
// names in its own post-order pass over the finished tree. parser never
// imports internal/scope, internal/ctx, internal/cache or
// internal/dispatch.
package parser

import (
	"fmt"

	"github.com/bablakeluke/nitrassic-go/internal/ast"
	"github.com/bablakeluke/nitrassic-go/internal/lexer"
	"github.com/bablakeluke/nitrassic-go/internal/token"
)

// ParseError is a structured syntax error with position and a stable
// code for programmatic matching (mirrors cerr.CompileError's Kind but
// stays dependency-free of internal/cerr, which lives above parser in
// the import order).
type ParseError struct {
	Message string
	Code    string
	Pos     token.Position
}

func (e *ParseError) Error() string { return fmt.Sprintf("%s at %s", e.Message, e.Pos) }

// Stable error codes, used by tests and by internal/cerr's translation
// of a ParseError into a cerr.CompileError.
const (
	ErrUnexpectedToken     = "E_UNEXPECTED_TOKEN"
	ErrExpectedIdent       = "E_EXPECTED_IDENT"
	ErrNoPrefixParse       = "E_NO_PREFIX_PARSE"
	ErrInvalidAssignTarget = "E_INVALID_ASSIGN_TARGET"
	ErrMissingRParen       = "E_MISSING_RPAREN"
	ErrMissingRBrace       = "E_MISSING_RBRACE"
	ErrMissingRBracket     = "E_MISSING_RBRACKET"
	ErrMissingSemicolon    = "E_MISSING_SEMICOLON"
	ErrMultipleDefault     = "E_MULTIPLE_DEFAULT_CLAUSE"
	ErrEmptyTryClauses     = "E_EMPTY_TRY_CLAUSES"
	ErrStrictReserved      = "E_STRICT_RESERVED_WORD"
	ErrWithInStrictMode    = "E_WITH_IN_STRICT_MODE"
)

// Parser holds the two-token lookahead window. It produces a bare AST
// with no scope bindings attached; internal/ctx's ResolveVariables
// builds the scope tree over FunctionLiteral/CatchClause boundaries in
// its own post-order pass (spec §4.7), so the parser never imports
// internal/scope.
type Parser struct {
	lex *lexer.Lexer

	curToken  token.Token
	peekToken token.Token
	nextCtx   lexer.ExpressionContext // expectation fed to lex.Next for the *next* token after peek

	errors []*ParseError

	strict bool
}

// New creates a Parser reading from lex.
func New(lex *lexer.Lexer) *Parser {
	p := &Parser{lex: lex}
	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns every syntax error accumulated during parsing.
func (p *Parser) Errors() []*ParseError { return p.errors }

func (p *Parser) addError(msg, code string) {
	p.errors = append(p.errors, &ParseError{Message: msg, Code: code, Pos: p.curToken.Pos})
}

// nextToken advances the lookahead window by one token, requesting ctx
// (operand-vs-operator expectation) for the token after the new peek —
// the same "next-token expectation" hand-off spec §4.2 describes between
// parser and lexer.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	tok, err := p.lex.Next(p.nextCtx)
	if err != nil {
		p.addError(err.Error(), ErrUnexpectedToken)
		tok = token.Token{Type: token.ILLEGAL, Pos: p.curToken.Pos}
	}
	p.peekToken = tok
	p.nextCtx = p.contextAfter(tok)
}

// contextAfter decides whether the token following tok should be
// lexed as an operand (a literal, prefix operator, or regex) or an
// operator (binary/postfix, or `/` as division) — spec §4.2's
// ExpressionContext distinction.
func (p *Parser) contextAfter(tok token.Token) lexer.ExpressionContext {
	switch {
	case tok.Type.IsLiteral(), tok.Type == token.IDENT, tok.Type == token.THIS,
		tok.Type == token.RPAREN, tok.Type == token.RBRACKET, tok.Type == token.INC, tok.Type == token.DEC:
		return lexer.ExprOperator
	default:
		return lexer.ExprOperand
	}
}

func (p *Parser) curTokenIs(tt token.TokenType) bool  { return p.curToken.Type == tt }
func (p *Parser) peekTokenIs(tt token.TokenType) bool { return p.peekToken.Type == tt }

// expect advances past tt if it is the peek token, recording an error
// and leaving position unchanged otherwise. Returns whether it matched.
func (p *Parser) expect(tt token.TokenType) bool {
	if p.peekTokenIs(tt) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf("expected %s, got %s", tt, p.peekToken.Type), ErrUnexpectedToken)
	return false
}

// expectIdentifier expects an IDENT (or, outside strict mode, a
// strict-reserved word used as a plain identifier) in peek position and
// returns the Identifier it builds.
func (p *Parser) expectIdentifier() *ast.Identifier {
	if !p.peekTokenIs(token.IDENT) && !p.peekToken.Type.IsStrictReserved() {
		p.addError(fmt.Sprintf("expected identifier, got %s", p.peekToken.Type), ErrExpectedIdent)
		return nil
	}
	p.nextToken()
	if p.strict && p.curToken.Type.IsStrictReserved() {
		p.addError(fmt.Sprintf("%q is a reserved word in strict mode", p.curToken.Literal), ErrStrictReserved)
	}
	return &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
}

// atValidEndOfStatement reports whether the current position is a valid
// automatic-semicolon-insertion point: an explicit `;`, a `}` closing the
// enclosing block, end of file, or a line terminator was crossed before
// the next token (spec §4.1/§4.3's ASI support).
func (p *Parser) atValidEndOfStatement() bool {
	return p.peekTokenIs(token.SEMICOLON) || p.peekTokenIs(token.RBRACE) ||
		p.peekTokenIs(token.EOF) || p.peekToken.PrecededByNewline
}

// expectEndOfStatement consumes a trailing `;` if present; ASI otherwise
// silently accepts the statement boundary per atValidEndOfStatement.
func (p *Parser) expectEndOfStatement() {
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return
	}
	if !p.atValidEndOfStatement() {
		p.addError(fmt.Sprintf("expected ; or newline, got %s", p.peekToken.Type), ErrMissingSemicolon)
	}
}

// ParseProgram parses a complete source unit.
func ParseProgram(lex *lexer.Lexer) (*ast.Program, []*ParseError) {
	p := New(lex)
	prog := &ast.Program{}
	prog.StrictAll = p.parseDirectivePrologue()
	for !p.curTokenIs(token.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			prog.Body = append(prog.Body, stmt)
		}
		p.nextToken()
	}
	return prog, p.errors
}

// parseDirectivePrologue consumes a leading run of string-literal
// expression statements, switching on strict mode the first time it
// sees the literal "use strict" exactly (spec: strict mode is
// "toggleable by the parser after reading \"use strict\"").
func (p *Parser) parseDirectivePrologue() bool {
	sawUseStrict := false
	for p.curTokenIs(token.STRING) && p.peekTokenIs(token.SEMICOLON) || p.curTokenIs(token.STRING) && p.peekToken.PrecededByNewline {
		if p.curToken.Literal == "use strict" {
			p.strict = true
			sawUseStrict = true
		}
		p.nextToken()
		if p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
		}
	}
	return sawUseStrict
}
