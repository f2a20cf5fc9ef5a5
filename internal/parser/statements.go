package parser

import (
	"fmt"

	"github.com/bablakeluke/nitrassic-go/internal/ast"
	"github.com/bablakeluke/nitrassic-go/internal/token"
)

// parseStatement dispatches on curToken.Type. This is the dense
// dispatch table spec §4.2 calls for — one case per statement-leading
// keyword/punctuator, rather than per-node-type virtual dispatch.
func (p *Parser) parseStatement() ast.Statement {
	labels := p.parseLabelPrefix()

	var stmt ast.Statement
	switch p.curToken.Type {
	case token.LBRACE:
		stmt = p.parseBlockBody()
	case token.VAR:
		stmt = p.parseVarStatement(ast.VarVar)
	case token.LET:
		stmt = p.parseVarStatement(ast.VarLet)
	case token.CONST:
		stmt = p.parseVarStatement(ast.VarConst)
	case token.IF:
		stmt = p.parseIfStatement()
	case token.WHILE:
		stmt = p.parseWhileStatement()
	case token.DO:
		stmt = p.parseDoWhileStatement()
	case token.FOR:
		stmt = p.parseForStatement()
	case token.SWITCH:
		stmt = p.parseSwitchStatement()
	case token.BREAK:
		stmt = p.parseBreakStatement()
	case token.CONTINUE:
		stmt = p.parseContinueStatement()
	case token.RETURN:
		stmt = p.parseReturnStatement()
	case token.THROW:
		stmt = p.parseThrowStatement()
	case token.TRY:
		stmt = p.parseTryStatement()
	case token.WITH:
		stmt = p.parseWithStatement()
	case token.FUNCTION:
		stmt = p.parseFunctionDeclaration()
	case token.SEMICOLON:
		stmt = &ast.EmptyStatement{Token: p.curToken}
	case token.DEBUGGER:
		stmt = &ast.DebuggerStatement{Token: p.curToken}
		p.expectEndOfStatement()
	default:
		stmt = p.parseExpressionStatement()
	}

	if len(labels) > 0 && stmt != nil {
		for i := len(labels) - 1; i >= 0; i-- {
			stmt = &ast.LabelledStatement{Token: labels[i], Label: labels[i].Literal, Body: stmt}
		}
	}
	return stmt
}

// parseLabelPrefix consumes any run of `ident:` label prefixes before a
// statement, returning the label tokens outermost-first.
func (p *Parser) parseLabelPrefix() []token.Token {
	var labels []token.Token
	for p.curTokenIs(token.IDENT) && p.peekTokenIs(token.COLON) {
		labels = append(labels, p.curToken)
		p.nextToken() // curToken = ':'
		p.nextToken() // curToken = first token of labelled statement
	}
	return labels
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expr = p.parseExpression(endTokens{})
	p.expectEndOfStatement()
	return stmt
}

// parseVarStatement parses `var|let|const d1 [= e1], d2 [= e2], ...;`.
// PRE: curToken is VAR/LET/CONST. POST: curToken is the last token of the
// statement (the trailing `;` if present, else the last declarator).
func (p *Parser) parseVarStatement(kind ast.VarKind) *ast.VarStatement {
	stmt := &ast.VarStatement{Token: p.curToken, Kind: kind}
	for {
		id := p.expectIdentifier()
		if id == nil {
			break
		}
		decl := ast.VarDeclarator{Name: id}
		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			decl.Init = p.parseExpression(noCommaEnd())
		} else if kind == ast.VarConst {
			p.addError("missing initializer in const declaration", ErrUnexpectedToken)
		}
		stmt.Declarations = append(stmt.Declarations, decl)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		break
	}
	p.expectEndOfStatement()
	return stmt
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	stmt := &ast.IfStatement{Token: p.curToken}
	if !p.expect(token.LPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Test = p.parseExpression(endTokens{})
	if !p.expect(token.RPAREN) {
		p.addError("expected ) after if condition", ErrMissingRParen)
	}
	p.nextToken()
	stmt.Consequent = p.parseStatement()
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		p.nextToken()
		stmt.Alternate = p.parseStatement()
	}
	return stmt
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	stmt := &ast.WhileStatement{Token: p.curToken}
	if !p.expect(token.LPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Test = p.parseExpression(endTokens{})
	if !p.expect(token.RPAREN) {
		p.addError("expected ) after while condition", ErrMissingRParen)
	}
	p.nextToken()
	stmt.Body = p.parseStatement()
	return stmt
}

func (p *Parser) parseDoWhileStatement() *ast.DoWhileStatement {
	stmt := &ast.DoWhileStatement{Token: p.curToken}
	p.nextToken()
	stmt.Body = p.parseStatement()
	if !p.expect(token.WHILE) {
		return stmt
	}
	if !p.expect(token.LPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Test = p.parseExpression(endTokens{})
	if !p.expect(token.RPAREN) {
		p.addError("expected ) after do-while condition", ErrMissingRParen)
	}
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

// parseForStatement disambiguates the three for-dialects (classic,
// for-in, for-of) by scanning past the init clause for an IN/OF token
// before the matching close-paren, per spec §4.2's note that `for`
// parsing "has its own dialects co-located with the token".
func (p *Parser) parseForStatement() ast.Statement {
	forTok := p.curToken
	if !p.expect(token.LPAREN) {
		return &ast.ForStatement{Token: forTok}
	}
	p.nextToken() // curToken = first token of init clause, or ';'

	declKind, isDecl := -1, false
	switch p.curToken.Type {
	case token.VAR:
		declKind, isDecl = int(ast.VarVar), true
	case token.LET:
		declKind, isDecl = int(ast.VarLet), true
	case token.CONST:
		declKind, isDecl = int(ast.VarConst), true
	}
	if isDecl {
		p.nextToken()
	}

	if p.curTokenIs(token.SEMICOLON) {
		return p.finishClassicFor(forTok, nil)
	}

	bindingID := p.curToken
	var binding ast.Expression = &ast.NameExpression{Token: bindingID, Name: bindingID.Literal}

	if p.peekTokenIs(token.IN) || p.peekTokenIs(token.OF) {
		isOf := p.peekToken.Type == token.OF
		p.nextToken() // curToken = 'in'/'of'
		p.nextToken() // curToken = first token of object expression
		object := p.parseExpression(endTokens{})
		if !p.expect(token.RPAREN) {
			p.addError("expected ) after for-in/for-of object expression", ErrMissingRParen)
		}
		p.nextToken()
		body := p.parseStatement()
		if isOf {
			return &ast.ForOfStatement{Token: forTok, IsVarDecl: isDecl, Binding: binding, Object: object, Body: body}
		}
		return &ast.ForInStatement{Token: forTok, IsVarDecl: isDecl, Binding: binding, Object: object, Body: body}
	}

	// Classic for: re-parse the init clause as a full expression/var
	// statement now that for-in/for-of has been ruled out.
	var init ast.Node
	if isDecl {
		declStmt := &ast.VarStatement{Token: forTok, Kind: ast.VarKind(declKind)}
		for {
			id := &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
			decl := ast.VarDeclarator{Name: id}
			if p.peekTokenIs(token.ASSIGN) {
				p.nextToken()
				p.nextToken()
				decl.Init = p.parseExpression(noCommaEnd())
			}
			declStmt.Declarations = append(declStmt.Declarations, decl)
			if p.peekTokenIs(token.COMMA) {
				p.nextToken()
				p.nextToken()
				continue
			}
			break
		}
		init = declStmt
	} else {
		init = p.parseExpression(endTokens{})
	}
	return p.finishClassicFor(forTok, init)
}

// finishClassicFor parses the `; test; update)` tail of a classic
// three-clause for, assuming init has already been parsed and curToken
// sits on the first `;` (or on init's last token if init is nil).
func (p *Parser) finishClassicFor(forTok token.Token, init ast.Node) *ast.ForStatement {
	stmt := &ast.ForStatement{Token: forTok, Init: init}
	if !p.expect(token.SEMICOLON) {
		return stmt
	}
	if !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		stmt.Test = p.parseExpression(endTokens{})
	}
	if !p.expect(token.SEMICOLON) {
		return stmt
	}
	if !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		stmt.Update = p.parseExpression(endTokens{})
	}
	if !p.expect(token.RPAREN) {
		p.addError("expected ) to close for clauses", ErrMissingRParen)
	}
	p.nextToken()
	stmt.Body = p.parseStatement()
	return stmt
}

func (p *Parser) parseSwitchStatement() *ast.SwitchStatement {
	stmt := &ast.SwitchStatement{Token: p.curToken}
	if !p.expect(token.LPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Discriminant = p.parseExpression(endTokens{})
	if !p.expect(token.RPAREN) {
		p.addError("expected ) after switch discriminant", ErrMissingRParen)
	}
	if !p.expect(token.LBRACE) {
		return stmt
	}
	p.nextToken()
	sawDefault := false
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		var c ast.SwitchCase
		switch p.curToken.Type {
		case token.CASE:
			p.nextToken()
			c.Test = p.parseExpression(endTokens{})
			if !p.expect(token.COLON) {
				p.addError("expected : after case expression", ErrUnexpectedToken)
			}
		case token.DEFAULT:
			if sawDefault {
				p.addError("a switch statement may have at most one default clause", ErrMultipleDefault)
			}
			sawDefault = true
			if !p.expect(token.COLON) {
				p.addError("expected : after default", ErrUnexpectedToken)
			}
		default:
			p.addError(fmt.Sprintf("expected case or default, got %s", p.curToken.Type), ErrUnexpectedToken)
			p.nextToken()
			continue
		}
		p.nextToken()
		for !p.curTokenIs(token.CASE) && !p.curTokenIs(token.DEFAULT) && !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
			if s := p.parseStatement(); s != nil {
				c.Body = append(c.Body, s)
			}
			p.nextToken()
		}
		stmt.Cases = append(stmt.Cases, c)
	}
	if !p.curTokenIs(token.RBRACE) {
		p.addError("expected } to close switch", ErrMissingRBrace)
	}
	return stmt
}

func (p *Parser) parseBreakStatement() *ast.BreakStatement {
	stmt := &ast.BreakStatement{Token: p.curToken}
	if p.peekTokenIs(token.IDENT) && !p.peekToken.PrecededByNewline {
		p.nextToken()
		stmt.Label = p.curToken.Literal
	}
	p.expectEndOfStatement()
	return stmt
}

func (p *Parser) parseContinueStatement() *ast.ContinueStatement {
	stmt := &ast.ContinueStatement{Token: p.curToken}
	if p.peekTokenIs(token.IDENT) && !p.peekToken.PrecededByNewline {
		p.nextToken()
		stmt.Label = p.curToken.Literal
	}
	p.expectEndOfStatement()
	return stmt
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	if !p.atValidEndOfStatement() {
		p.nextToken()
		stmt.Value = p.parseExpression(endTokens{})
	}
	p.expectEndOfStatement()
	return stmt
}

func (p *Parser) parseThrowStatement() *ast.ThrowStatement {
	stmt := &ast.ThrowStatement{Token: p.curToken}
	if p.peekToken.PrecededByNewline {
		p.addError("illegal newline after throw", ErrUnexpectedToken)
	}
	p.nextToken()
	stmt.Value = p.parseExpression(endTokens{})
	p.expectEndOfStatement()
	return stmt
}

// parseTryStatement parses `try{} [catch(e){}] [finally{}]`, requiring
// at least one of catch/finally (spec §4.2's `try` dialect note).
func (p *Parser) parseTryStatement() *ast.TryStatement {
	stmt := &ast.TryStatement{Token: p.curToken}
	if !p.expect(token.LBRACE) {
		return stmt
	}
	stmt.Block = p.parseBlockBody()

	if p.peekTokenIs(token.CATCH) {
		p.nextToken()
		clause := &ast.CatchClause{}
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			clause.Param = p.expectIdentifier()
			if !p.expect(token.RPAREN) {
				p.addError("expected ) after catch parameter", ErrMissingRParen)
			}
		}
		if !p.expect(token.LBRACE) {
			return stmt
		}
		clause.Body = p.parseBlockBody()
		stmt.Catch = clause
	}
	if p.peekTokenIs(token.FINALLY) {
		p.nextToken()
		if !p.expect(token.LBRACE) {
			return stmt
		}
		stmt.Finally = p.parseBlockBody()
	}
	if stmt.Catch == nil && stmt.Finally == nil {
		p.addError("a try statement requires a catch or finally clause", ErrEmptyTryClauses)
	}
	return stmt
}

// parseWithStatement parses `with (object) body`, reporting
// ErrWithInStrictMode when the parser is already in strict mode;
// ResolveVariables also rejects `with` in strict code.
func (p *Parser) parseWithStatement() *ast.WithStatement {
	stmt := &ast.WithStatement{Token: p.curToken}
	if p.strict {
		p.addError("'with' is not allowed in strict mode", ErrWithInStrictMode)
	}
	if !p.expect(token.LPAREN) {
		return stmt
	}
	p.nextToken()
	stmt.Object = p.parseExpression(endTokens{})
	if !p.expect(token.RPAREN) {
		p.addError("expected ) after with object", ErrMissingRParen)
	}
	p.nextToken()
	stmt.Body = p.parseStatement()
	return stmt
}

func (p *Parser) parseFunctionDeclaration() *ast.FunctionDeclaration {
	tok := p.curToken
	fnExpr := p.parseFunctionLiteral()
	fn, _ := fnExpr.(*ast.FunctionLiteral)
	return &ast.FunctionDeclaration{Token: tok, Function: fn}
}
