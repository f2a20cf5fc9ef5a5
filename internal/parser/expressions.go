package parser

import (
	"fmt"
	"strconv"

	"github.com/bablakeluke/nitrassic-go/internal/ast"
	"github.com/bablakeluke/nitrassic-go/internal/lexer"
	"github.com/bablakeluke/nitrassic-go/internal/optable"
	"github.com/bablakeluke/nitrassic-go/internal/token"
)

// endTokens is a small set the caller supplies to parseExpression so a
// top-level comma (the sequence operator) isn't swallowed where the
// grammar wants a plain non-sequence expression, e.g. inside a call's
// argument list or a for-statement's clauses (spec §4.3: `ParseExpression(endTokens…)`).
type endTokens map[token.TokenType]bool

func noCommaEnd() endTokens { return endTokens{token.COMMA: true} }

// parseExpression drives internal/optable's Builder one token at a time
// until it reaches a token in stop, a statement terminator, or a token
// with no infix/postfix meaning.
func (p *Parser) parseExpression(stop endTokens) ast.Expression {
	b := optable.NewBuilder()
	if !p.parseOperand(b) {
		return nil
	}

	for {
		nextType := p.peekToken.Type
		if stop[nextType] || nextType == token.SEMICOLON || nextType == token.EOF {
			break
		}
		if p.peekToken.PrecededByNewline && isASIBoundary(nextType) {
			break
		}

		switch nextType {
		case token.QMARK:
			p.nextToken()
			tok := p.curToken
			desc, _ := optable.Lookup(token.QMARK)
			if err := b.PushOperator(tok, desc); err != nil {
				p.addError(err.Error(), ErrInvalidAssignTarget)
				return p.finish(b)
			}
			p.nextToken()
			if !p.parseOperand(b) {
				return p.finish(b)
			}
			if !p.expect(token.COLON) {
				return p.finish(b)
			}
			if err := b.PushSecondary(token.COLON); err != nil {
				p.addError(err.Error(), ErrUnexpectedToken)
				return p.finish(b)
			}
			p.nextToken()
			if !p.parseOperand(b) {
				return p.finish(b)
			}
			continue
		case token.LPAREN:
			callTok := p.peekToken
			p.nextToken() // curToken = '('
			p.nextToken() // curToken = first arg token, or ')'
			args := p.parseArgumentList()
			err := b.WrapRightmost(func(callee ast.Expression) (ast.Expression, error) {
				return &ast.CallExpression{Token: callTok, Callee: callee, Arguments: args}, nil
			})
			if err != nil {
				p.addError(err.Error(), ErrInvalidExpression())
				return nil
			}
			continue
		case token.LBRACKET:
			idxTok := p.peekToken
			p.nextToken() // curToken = '['
			p.nextToken() // curToken = first token of index expression
			idx := p.parseExpression(endTokens{})
			if !p.expect(token.RBRACKET) {
				p.addError("expected ]", ErrMissingRBracket)
			}
			err := b.WrapRightmost(func(obj ast.Expression) (ast.Expression, error) {
				return &ast.MemberAccess{Token: idxTok, Object: obj, Index: idx, Computed: true}, nil
			})
			if err != nil {
				p.addError(err.Error(), ErrInvalidExpression())
				return nil
			}
			continue
		case token.DOT:
			dotTok := p.peekToken
			p.nextToken() // curToken = '.'
			if !p.peekTokenIs(token.IDENT) && !p.peekToken.Type.IsStrictReserved() {
				p.addError(fmt.Sprintf("expected property name, got %s", p.peekToken.Type), ErrExpectedIdent)
				return p.finish(b)
			}
			p.nextToken() // curToken = property name
			propName := p.curToken.Literal
			err := b.WrapRightmost(func(obj ast.Expression) (ast.Expression, error) {
				return &ast.MemberAccess{Token: dotTok, Object: obj, Property: propName}, nil
			})
			if err != nil {
				p.addError(err.Error(), ErrInvalidExpression())
				return nil
			}
			continue
		case token.INC, token.DEC:
			if p.peekToken.PrecededByNewline {
				return p.finish(b)
			}
			p.nextToken()
			desc, _ := optable.Lookup(p.curToken.Type)
			if err := b.PushPostfix(p.curToken, desc); err != nil {
				p.addError(err.Error(), ErrUnexpectedToken)
			}
			continue
		}

		desc, ok := optable.Lookup(nextType)
		if !ok {
			break
		}
		p.nextToken()
		tok := p.curToken
		if err := b.PushOperator(tok, desc); err != nil {
			p.addError(err.Error(), ErrUnexpectedToken)
			return p.finish(b)
		}
		p.nextToken()
		if !p.parseOperand(b) {
			return p.finish(b)
		}
	}
	return p.finish(b)
}

func (p *Parser) finish(b *optable.Builder) ast.Expression {
	e, err := b.Finish()
	if err != nil {
		p.addError(err.Error(), ErrInvalidExpression())
		return nil
	}
	return e
}

// ErrInvalidExpression is a function, not a const, only so it can share
// the ErrXxx naming convention without colliding with the string-literal
// const block above (its value is used identically either way).
func ErrInvalidExpression() string { return "E_INVALID_EXPRESSION" }

// isASIBoundary reports whether tt, appearing after a crossed newline,
// should terminate the current expression under Automatic Semicolon
// Insertion rather than being consumed as a continuing operator. Only
// `++` and `--` are such boundaries; every other token, including infix
// operators such as `+`, continues the expression across the line break.
func isASIBoundary(tt token.TokenType) bool {
	switch tt {
	case token.INC, token.DEC:
		return true
	}
	return false
}

// parseOperand consumes one prefix-operator run followed by a single
// primary expression (literal, identifier, grouping, array/object/
// function literal) and feeds it into b.
func (p *Parser) parseOperand(b *optable.Builder) bool {
	if desc, ok := optable.PrefixDescriptor(p.curToken.Type); ok {
		tok := p.curToken
		if err := b.PushPrefix(tok, desc); err != nil {
			p.addError(err.Error(), ErrUnexpectedToken)
			return false
		}
		p.nextToken()
		return p.parseOperand(b)
	}
	prim := p.parsePrimary()
	if prim == nil {
		return false
	}
	if err := b.PushOperand(prim); err != nil {
		p.addError(err.Error(), ErrUnexpectedToken)
		return false
	}
	return true
}

// parsePrimary parses a single terminal: literal, identifier, grouped
// expression, array/object literal, template literal, function
// expression or `new` expression. Member access and call suffixes are
// layered on afterward by parseExpression's infix loop.
func (p *Parser) parsePrimary() ast.Expression {
	switch p.curToken.Type {
	case token.NUMBER:
		return p.parseNumberLiteral()
	case token.STRING:
		return &ast.PrimitiveLiteral{Token: p.curToken, Kind: p.curToken.Kind, Value: p.curToken.Literal}
	case token.TRUE, token.FALSE:
		return &ast.PrimitiveLiteral{Token: p.curToken, Kind: token.KindNone, Value: p.curToken.Type == token.TRUE}
	case token.NULL:
		return &ast.PrimitiveLiteral{Token: p.curToken, Kind: token.KindNone, Value: nil}
	case token.THIS:
		return &ast.NameExpression{Token: p.curToken, Name: "this"}
	case token.IDENT:
		return &ast.NameExpression{Token: p.curToken, Name: p.curToken.Literal}
	case token.LPAREN:
		p.nextToken()
		e := p.parseExpression(endTokens{})
		if !p.expect(token.RPAREN) {
			p.addError("expected )", ErrMissingRParen)
		}
		return e
	case token.LBRACKET:
		return p.parseArrayLiteral()
	case token.LBRACE:
		return p.parseObjectLiteral()
	case token.TEMPLATE:
		return p.parseTemplateLiteral()
	case token.FUNCTION:
		return p.parseFunctionLiteral()
	case token.NEW:
		return p.parseNewExpression()
	default:
		if p.curToken.Type.IsStrictReserved() {
			return &ast.NameExpression{Token: p.curToken, Name: p.curToken.Literal}
		}
		p.addError(fmt.Sprintf("unexpected token %s in expression", p.curToken.Type), ErrNoPrefixParse)
		return nil
	}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	tok := p.curToken
	if tok.Kind == token.KindFloat {
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.addError(err.Error(), ErrInvalidExpression())
		}
		return &ast.PrimitiveLiteral{Token: tok, Kind: tok.Kind, Value: f}
	}
	i, err := strconv.ParseInt(tok.Literal, 0, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(tok.Literal, 64)
		if ferr != nil {
			p.addError(err.Error(), ErrInvalidExpression())
			return nil
		}
		return &ast.PrimitiveLiteral{Token: tok, Kind: token.KindFloat, Value: f}
	}
	return &ast.PrimitiveLiteral{Token: tok, Kind: tok.Kind, Value: i}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	lit := &ast.ArrayLiteral{Token: p.curToken}
	for !p.peekTokenIs(token.RBRACKET) {
		if p.peekTokenIs(token.COMMA) {
			lit.Elements = append(lit.Elements, nil) // elision
			p.nextToken()
			continue
		}
		p.nextToken()
		lit.Elements = append(lit.Elements, p.parseExpression(noCommaEnd()))
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expect(token.RBRACKET) {
		p.addError("expected ]", ErrMissingRBracket)
	}
	return lit
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	lit := &ast.ObjectLiteral{Token: p.curToken}
	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		prop := ast.ObjectProperty{}
		if p.curTokenIs(token.LBRACKET) {
			p.nextToken()
			prop.Computed = true
			prop.KeyExpr = p.parseExpression(endTokens{})
			if !p.expect(token.RBRACKET) {
				p.addError("expected ]", ErrMissingRBracket)
			}
			if !p.expect(token.COLON) {
				p.addError("expected :", ErrUnexpectedToken)
			}
			p.nextToken()
			prop.Value = p.parseExpression(noCommaEnd())
		} else {
			prop.Key = p.curToken.Literal
			if p.peekTokenIs(token.COLON) {
				p.nextToken()
				p.nextToken()
				prop.Value = p.parseExpression(noCommaEnd())
			} else {
				prop.Shorthand = true
				prop.Value = &ast.NameExpression{Token: p.curToken, Name: p.curToken.Literal}
			}
		}
		lit.Properties = append(lit.Properties, prop)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expect(token.RBRACE) {
		p.addError("expected }", ErrMissingRBrace)
	}
	return lit
}

// parseTemplateLiteral assembles a backtick template from the sequence
// of TEMPLATE-kind tokens the lexer produces, each optionally followed
// by a substitution expression when SubstitutionFollows is set.
func (p *Parser) parseTemplateLiteral() ast.Expression {
	lit := &ast.TemplateLiteral{Token: p.curToken}
	for {
		lit.Quasis = append(lit.Quasis, p.curToken.Literal)
		if !p.curToken.SubstitutionFollows {
			break
		}
		p.nextToken()
		lit.Expressions = append(lit.Expressions, p.parseExpression(endTokens{}))
		if !p.expect(token.RBRACE) {
			p.addError("expected } to resume template", ErrMissingRBrace)
			break
		}
		cont, err := p.lex.Next(lexer.ExprTemplateContinuation)
		if err != nil {
			p.addError(err.Error(), ErrUnexpectedToken)
		}
		p.curToken = cont
		p.peekToken, err = p.lex.Next(p.contextAfter(cont))
		if err != nil {
			p.addError(err.Error(), ErrUnexpectedToken)
		}
		p.nextCtx = p.contextAfter(p.peekToken)
	}
	return lit
}

func (p *Parser) parseArgumentList() []ast.Expression {
	var args []ast.Expression
	if p.curTokenIs(token.RPAREN) {
		return args
	}
	args = append(args, p.parseExpression(noCommaEnd()))
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		args = append(args, p.parseExpression(noCommaEnd()))
	}
	if !p.expect(token.RPAREN) {
		p.addError("expected ) to close argument list", ErrMissingRParen)
	}
	return args
}

func (p *Parser) parseNewExpression() ast.Expression {
	tok := p.curToken
	p.nextToken()
	callee := p.parseExpression(endTokens{token.LPAREN: true})
	var args []ast.Expression
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		p.nextToken()
		args = p.parseArgumentList()
	}
	return &ast.NewExpression{Token: tok, Callee: callee, Arguments: args}
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	fn := &ast.FunctionLiteral{Token: p.curToken, IsStrict: p.strict}
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		fn.Name = p.curToken.Literal
	}
	if !p.expect(token.LPAREN) {
		p.addError("expected ( after function name", ErrUnexpectedToken)
		return nil
	}
	fn.Params, fn.Defaults = p.parseParamList()
	if !p.expect(token.LBRACE) {
		p.addError("expected { to open function body", ErrUnexpectedToken)
		return nil
	}
	fn.Body = p.parseBlockBody()
	return fn
}

func (p *Parser) parseParamList() ([]*ast.Identifier, []ast.Expression) {
	var params []*ast.Identifier
	var defaults []ast.Expression
	for !p.peekTokenIs(token.RPAREN) {
		id := p.expectIdentifier()
		params = append(params, id)
		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			defaults = append(defaults, p.parseExpression(noCommaEnd()))
		} else {
			defaults = append(defaults, nil)
		}
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		} else {
			break
		}
	}
	if !p.expect(token.RPAREN) {
		p.addError("expected ) to close parameter list", ErrMissingRParen)
	}
	return params, defaults
}

// parseBlockBody parses `{ stmt... }` assuming curToken == '{', leaving
// curToken on the closing '}'.
func (p *Parser) parseBlockBody() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	p.nextToken()
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if stmt := p.parseStatement(); stmt != nil {
			block.Body = append(block.Body, stmt)
		}
		p.nextToken()
	}
	if !p.curTokenIs(token.RBRACE) {
		p.addError("expected } to close block", ErrMissingRBrace)
	}
	return block
}

