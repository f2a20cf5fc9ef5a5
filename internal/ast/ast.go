// Package ast defines the typed AST produced by internal/parser (C4) and
// consumed by internal/ctx (C7, ResolveVariables) and internal/codegen
// (C9, GenerateCode). Node kinds are a closed tagged-variant set — one
// concrete Go type per AST shape, no subclass hierarchy — behind the
// Node/Expression/Statement interfaces; internal/ctx and internal/codegen
// dispatch on the concrete node type with type switches.
package ast

import (
	"github.com/bablakeluke/nitrassic-go/internal/token"
	"github.com/bablakeluke/nitrassic-go/internal/types"
)

// Node is the root interface every AST node implements.
type Node interface {
	Pos() token.Position
	String() string
	ChildNodes() []Node
}

// Expression is any node that produces a value. GetResultType is only
// meaningful after ResolveVariables has run; it returns the static type
// the code generator will leave on the stack.
type Expression interface {
	Node
	expressionNode()
	GetResultType() types.Type
}

// Statement is a node that performs an action without itself producing a
// value. For pop elision (§4.6), internal/ctx sets IsRoot on an
// ExpressionStatement's assignment or increment/decrement expression so
// that expression's code generator omits the push the statement would
// otherwise have to Pop.
type Statement interface {
	Node
	statementNode()
}

// Program is the root node produced by parsing one source unit.
type Program struct {
	Body      []Statement
	StrictAll bool // a "use strict" directive prologue was present at the top level
}

func (p *Program) Pos() token.Position { return token.Position{} }
func (p *Program) String() string {
	s := ""
	for _, st := range p.Body {
		s += st.String() + "\n"
	}
	return s
}
func (p *Program) ChildNodes() []Node {
	ns := make([]Node, len(p.Body))
	for i, st := range p.Body {
		ns[i] = st
	}
	return ns
}
