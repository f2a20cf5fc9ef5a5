// Package optable is the operator descriptor table and n-ary expression
// tree builder (spec §3/§4.3, "C3"). It knows precedence, associativity,
// fixity and the LHS-required flag for every operator token, and
// implements the four-case shunt algorithm the parser (C4) drives one
// token at a time. It depends on internal/ast for the leaf/result
// expression types but nothing above it, so internal/parser can sit
// beside it without creating a cycle back into internal/ctx or
// internal/dispatch.
package optable

import (
	"fmt"

	"github.com/bablakeluke/nitrassic-go/internal/ast"
	"github.com/bablakeluke/nitrassic-go/internal/token"
)

// Assoc is an operator's associativity.
type Assoc uint8

const (
	LeftAssoc Assoc = iota
	RightAssoc
)

// Fixity distinguishes where an operator's operand(s) sit relative to the
// token.
type Fixity uint8

const (
	Infix Fixity = iota
	Prefix
	Postfix
	Ternary // e.g. `?:`; Secondary names the token that closes it
)

// Descriptor is one operator's full entry: precedence, associativity,
// fixity, and (for assignment/increment operators) whether the left
// operand must be a reference expression.
type Descriptor struct {
	Precedence           int
	Assoc                Assoc
	Fixity               Fixity
	Secondary            token.TokenType // Ternary's closing token (COLON); zero otherwise
	RequiresLHSReference bool
}

// Precedence levels, lowest to highest. Comma binds loosest of all so a
// SequenceExpression only forms at the top of an unparenthesized
// expression; assignment is next-to-loosest and right-associative so
// `a = b = c` nests as `a = (b = c)`.
const (
	_ int = iota
	Lowest
	CommaPrec
	AssignPrec
	ConditionalPrec
	LogicalOrPrec
	LogicalAndPrec
	BitOrPrec
	BitXorPrec
	BitAndPrec
	EqualityPrec
	RelationalPrec
	ShiftPrec
	AdditivePrec
	MultiplicativePrec
	UnaryPrec
	PostfixPrec
)

var table = map[token.TokenType]Descriptor{
	token.COMMA: {Precedence: CommaPrec, Assoc: LeftAssoc, Fixity: Infix},

	token.ASSIGN:       {Precedence: AssignPrec, Assoc: RightAssoc, Fixity: Infix, RequiresLHSReference: true},
	token.PLUS_ASSIGN:  {Precedence: AssignPrec, Assoc: RightAssoc, Fixity: Infix, RequiresLHSReference: true},
	token.MINUS_ASSIGN: {Precedence: AssignPrec, Assoc: RightAssoc, Fixity: Infix, RequiresLHSReference: true},
	token.STAR_ASSIGN:  {Precedence: AssignPrec, Assoc: RightAssoc, Fixity: Infix, RequiresLHSReference: true},
	token.SLASH_ASSIGN: {Precedence: AssignPrec, Assoc: RightAssoc, Fixity: Infix, RequiresLHSReference: true},
	token.PCT_ASSIGN:   {Precedence: AssignPrec, Assoc: RightAssoc, Fixity: Infix, RequiresLHSReference: true},
	token.SHL_ASSIGN:   {Precedence: AssignPrec, Assoc: RightAssoc, Fixity: Infix, RequiresLHSReference: true},
	token.SHR_ASSIGN:   {Precedence: AssignPrec, Assoc: RightAssoc, Fixity: Infix, RequiresLHSReference: true},
	token.USHR_ASSIGN:  {Precedence: AssignPrec, Assoc: RightAssoc, Fixity: Infix, RequiresLHSReference: true},
	token.AMP_ASSIGN:   {Precedence: AssignPrec, Assoc: RightAssoc, Fixity: Infix, RequiresLHSReference: true},
	token.PIPE_ASSIGN:  {Precedence: AssignPrec, Assoc: RightAssoc, Fixity: Infix, RequiresLHSReference: true},
	token.CARET_ASSIGN: {Precedence: AssignPrec, Assoc: RightAssoc, Fixity: Infix, RequiresLHSReference: true},

	token.QMARK: {Precedence: ConditionalPrec, Assoc: RightAssoc, Fixity: Ternary, Secondary: token.COLON},

	token.OR:  {Precedence: LogicalOrPrec, Assoc: LeftAssoc, Fixity: Infix},
	token.AND: {Precedence: LogicalAndPrec, Assoc: LeftAssoc, Fixity: Infix},

	token.PIPE:  {Precedence: BitOrPrec, Assoc: LeftAssoc, Fixity: Infix},
	token.CARET: {Precedence: BitXorPrec, Assoc: LeftAssoc, Fixity: Infix},
	token.AMP:   {Precedence: BitAndPrec, Assoc: LeftAssoc, Fixity: Infix},

	token.EQEQ:  {Precedence: EqualityPrec, Assoc: LeftAssoc, Fixity: Infix},
	token.NEQEQ: {Precedence: EqualityPrec, Assoc: LeftAssoc, Fixity: Infix},
	token.EQ:    {Precedence: EqualityPrec, Assoc: LeftAssoc, Fixity: Infix},
	token.NE:    {Precedence: EqualityPrec, Assoc: LeftAssoc, Fixity: Infix},

	token.LT:         {Precedence: RelationalPrec, Assoc: LeftAssoc, Fixity: Infix},
	token.GT:         {Precedence: RelationalPrec, Assoc: LeftAssoc, Fixity: Infix},
	token.LE:         {Precedence: RelationalPrec, Assoc: LeftAssoc, Fixity: Infix},
	token.GE:         {Precedence: RelationalPrec, Assoc: LeftAssoc, Fixity: Infix},
	token.INSTANCEOF: {Precedence: RelationalPrec, Assoc: LeftAssoc, Fixity: Infix},
	token.IN:         {Precedence: RelationalPrec, Assoc: LeftAssoc, Fixity: Infix},

	token.SHL:  {Precedence: ShiftPrec, Assoc: LeftAssoc, Fixity: Infix},
	token.SHR:  {Precedence: ShiftPrec, Assoc: LeftAssoc, Fixity: Infix},
	token.USHR: {Precedence: ShiftPrec, Assoc: LeftAssoc, Fixity: Infix},

	token.PLUS:  {Precedence: AdditivePrec, Assoc: LeftAssoc, Fixity: Infix},
	token.MINUS: {Precedence: AdditivePrec, Assoc: LeftAssoc, Fixity: Infix},

	token.STAR:  {Precedence: MultiplicativePrec, Assoc: LeftAssoc, Fixity: Infix},
	token.SLASH: {Precedence: MultiplicativePrec, Assoc: LeftAssoc, Fixity: Infix},
	token.PCT:   {Precedence: MultiplicativePrec, Assoc: LeftAssoc, Fixity: Infix},

	// Prefix-only operators; precedence governs how tightly they bind to
	// their single operand, not how they combine with an existing root.
	token.BANG:   {Precedence: UnaryPrec, Fixity: Prefix},
	token.TILDE:  {Precedence: UnaryPrec, Fixity: Prefix},
	token.TYPEOF: {Precedence: UnaryPrec, Fixity: Prefix},
	token.VOID:   {Precedence: UnaryPrec, Fixity: Prefix},
	token.DELETE: {Precedence: UnaryPrec, Fixity: Prefix, RequiresLHSReference: true},

	// PLUS/MINUS/INC/DEC are context-dependent: the lexer's ExprOperand
	// mode plus the parser's "is this token starting an expression"
	// decision chooses Prefix vs the Infix/Postfix entries above/below.
	token.INC: {Precedence: PostfixPrec, Fixity: Postfix, RequiresLHSReference: true},
	token.DEC: {Precedence: PostfixPrec, Fixity: Postfix, RequiresLHSReference: true},
}

// PrefixDescriptor returns tt's descriptor when used as a prefix operator
// (unary +, -, ++, -- share a token with their infix/postfix forms).
func PrefixDescriptor(tt token.TokenType) (Descriptor, bool) {
	switch tt {
	case token.PLUS, token.MINUS:
		return Descriptor{Precedence: UnaryPrec, Fixity: Prefix}, true
	case token.INC, token.DEC:
		return Descriptor{Precedence: UnaryPrec, Fixity: Prefix, RequiresLHSReference: true}, true
	}
	d, ok := table[tt]
	if ok && d.Fixity == Prefix {
		return d, true
	}
	return Descriptor{}, false
}

// Lookup returns tt's infix/ternary/postfix descriptor, if any.
func Lookup(tt token.TokenType) (Descriptor, bool) {
	d, ok := table[tt]
	if ok && d.Fixity == Prefix {
		return Descriptor{}, false
	}
	return d, ok
}

// node is the builder's internal n-ary tree representation. Leaf nodes
// wrap an already-parsed ast.Expression (an operand); interior nodes
// represent one operator application awaiting operands.
type node struct {
	leaf ast.Expression

	tok    token.Token
	desc   Descriptor
	parent *node

	// Infix/ternary operands.
	left  *node
	right *node // ternary: the consequent; infix: the right operand
	extra *node // ternary only: the alternate, filled by the secondary ':' token

	// Prefix/postfix single operand.
	operand *node
}

func leafNode(e ast.Expression) *node { return &node{leaf: e} }

// Builder assembles one expression via spec §4.3's "(root,
// last-unbound-operator)" loop: PushOperand/PushPrefix/PushOperator/
// PushSecondary are called once per token in source order; Finish
// converts the completed shape into a concrete ast.Expression.
type Builder struct {
	root *node
	// open is the most recently attached operator still missing its
	// final operand — spec's "last unbound operator".
	open *node
}

// NewBuilder starts a fresh expression tree.
func NewBuilder() *Builder { return &Builder{} }

// PushOperand attaches a parsed literal/identifier/parenthesized-group
// result as the next operand: the new root if none exists yet, otherwise
// the pending operand slot of the open operator.
func (b *Builder) PushOperand(e ast.Expression) error {
	n := leafNode(e)
	if b.root == nil {
		b.root = n
		return nil
	}
	if b.open == nil {
		return fmt.Errorf("optable: operand %s with no pending operator", e.String())
	}
	return b.attachOperand(b.open, n)
}

// attachOperand fills op's next empty operand slot with n, per op's
// fixity, and advances b.open to n if n is itself an operator-in-waiting
// (never true here: n is always a leaf from PushOperand, but PushPrefix/
// PushOperator reuse this to splice operator nodes together too).
func (b *Builder) attachOperand(op *node, n *node) error {
	n.parent = op
	switch op.desc.Fixity {
	case Prefix:
		if op.operand != nil {
			return fmt.Errorf("optable: prefix operator %s already has an operand", op.tok.Literal)
		}
		op.operand = n
	case Infix:
		if op.left == nil {
			op.left = n
		} else if op.right == nil {
			op.right = n
		} else {
			return fmt.Errorf("optable: infix operator %s already has both operands", op.tok.Literal)
		}
	case Ternary:
		if op.left == nil {
			op.left = n
		} else if op.right == nil {
			op.right = n
		} else if op.extra == nil {
			op.extra = n
		} else {
			return fmt.Errorf("optable: ternary operator already has all three operands")
		}
	case Postfix:
		if op.operand == nil {
			op.operand = n
		} else {
			return fmt.Errorf("optable: postfix operator %s already has an operand", op.tok.Literal)
		}
	}
	return nil
}

// PushPrefix implements case 2: a prefix operator attaches as an operand
// of the currently open operator (or becomes the new root if none is
// open yet) and itself becomes open, awaiting its own operand.
func (b *Builder) PushPrefix(tok token.Token, desc Descriptor) error {
	n := &node{tok: tok, desc: desc}
	if b.root == nil {
		b.root = n
	} else {
		if b.open == nil {
			return fmt.Errorf("optable: prefix operator %s with no pending slot", tok.Literal)
		}
		if err := b.attachOperand(b.open, n); err != nil {
			return err
		}
	}
	b.open = n
	return nil
}

// PushPostfix attaches as the postfix consumer of the most recently
// completed operand (the current rightmost leaf under the open operator,
// or the root if nothing is open), then itself takes that slot's place.
func (b *Builder) PushPostfix(tok token.Token, desc Descriptor) error {
	target, slot := b.rightmostSlot()
	if slot == nil || *slot == nil {
		return fmt.Errorf("optable: postfix operator %s with nothing to apply to", tok.Literal)
	}
	n := &node{tok: tok, desc: desc}
	cur := *slot
	n.operand = cur
	if cur != nil {
		cur.parent = n
	}
	*slot = n
	n.parent = target
	return nil
}

// PushOperator implements cases 3 and 4 of the four-case discipline for a
// new infix or ternary-opening operator tok/desc.
func (b *Builder) PushOperator(tok token.Token, desc Descriptor) error {
	n := &node{tok: tok, desc: desc}

	// Case 3: not higher precedence than every parent on the right
	// spine. The right spine's precedence is non-decreasing from root
	// to tip (case 4 always inserts below the first looser-or-equal
	// ancestor), so the root alone — the spine's loosest operator — is
	// sufficient to test "not higher than every parent" against.
	if b.open == nil || !binds(desc, b.root.desc) {
		n.left = b.root
		if b.root != nil {
			b.root.parent = n
		}
		b.root = n
		b.open = n
		return nil
	}

	// Case 4: walk the right spine to the shallowest operator whose
	// precedence is lower (or, for right-assoc, lower-or-equal) than
	// desc, and steal its last operand.
	// binds(desc, b.root.desc) holds here, so the walk stops at the root
	// at the latest.
	cur := b.open
	for !binds(desc, cur.desc) {
		cur = cur.parent
	}
	target, slot := lastOperandSlot(cur)
	stolen := *slot
	n.left = stolen
	if stolen != nil {
		stolen.parent = n
	}
	*slot = n
	n.parent = target
	b.open = n
	return nil
}

// PushSecondary implements case 1: a secondary token (ternary's `:`)
// walks the right spine from the open operator to the nearest
// unclosed operator expecting it and marks that slot ready to receive
// the alternate operand via subsequent PushOperand calls.
func (b *Builder) PushSecondary(tt token.TokenType) error {
	for cur := b.open; cur != nil; cur = cur.parent {
		if cur.desc.Fixity == Ternary && cur.desc.Secondary == tt && cur.right != nil && cur.extra == nil {
			b.open = cur
			return nil
		}
	}
	return fmt.Errorf("optable: unmatched secondary token %s", tt)
}

// binds reports whether a new operator with descriptor next should bind
// more tightly than (i.e. nest inside) an existing operator with
// descriptor existing — strict-less-than for left-associative, and
// less-or-equal for right-associative, per spec §4.3 case 4.
func binds(next, existing Descriptor) bool {
	if next.Assoc == RightAssoc {
		return next.Precedence >= existing.Precedence
	}
	return next.Precedence > existing.Precedence
}

// lastOperandSlot returns the address of n's rightmost-operand field
// (the slot case 4 steals from) along with n itself.
func lastOperandSlot(n *node) (*node, **node) {
	switch n.desc.Fixity {
	case Infix:
		return n, &n.right
	case Ternary:
		if n.extra != nil {
			return n, &n.extra
		}
		return n, &n.right
	default:
		return n, &n.operand
	}
}

// rightmostSlot returns the parent and the field address holding the
// deepest rightmost node reachable from the current tree, the slot a
// postfix operator splices itself into.
func (b *Builder) rightmostSlot() (*node, **node) {
	if b.open == nil {
		if b.root == nil {
			return nil, nil
		}
		return nil, &b.root
	}
	n, slot := lastOperandSlot(b.open)
	return n, slot
}

// WrapRightmost replaces the most recently completed operand (the
// deepest rightmost node in the tree so far) with build(operand). Member
// access, indexing and call suffixes all bind at maximal precedence to
// exactly the adjacent primary — never participating in case 3/4's
// tree-splicing — so the parser applies them directly through this
// rather than pushing them as ordinary operators.
func (b *Builder) WrapRightmost(build func(ast.Expression) (ast.Expression, error)) error {
	_, slot := b.rightmostSlot()
	if slot == nil || *slot == nil {
		return fmt.Errorf("optable: no operand to apply a suffix to")
	}
	operand, err := toExpr(*slot)
	if err != nil {
		return err
	}
	wrapped, err := build(operand)
	if err != nil {
		return err
	}
	parent := (*slot).parent
	n := leafNode(wrapped)
	n.parent = parent
	*slot = n
	return nil
}

// Finish converts the completed operator tree into a concrete
// ast.Expression, erroring if any operator is still missing an operand.
func (b *Builder) Finish() (ast.Expression, error) {
	if b.root == nil {
		return nil, fmt.Errorf("optable: empty expression")
	}
	return toExpr(b.root)
}

func toExpr(n *node) (ast.Expression, error) {
	if n.leaf != nil {
		return n.leaf, nil
	}
	switch n.desc.Fixity {
	case Prefix, Postfix:
		if n.operand == nil {
			return nil, fmt.Errorf("optable: operator %s missing operand", n.tok.Literal)
		}
		operand, err := toExpr(n.operand)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Token: n.tok, Op: n.tok.Type, Operand: operand, Postfix: n.desc.Fixity == Postfix}, nil
	case Ternary:
		if n.left == nil || n.right == nil || n.extra == nil {
			return nil, fmt.Errorf("optable: ternary operator missing an operand")
		}
		test, err := toExpr(n.left)
		if err != nil {
			return nil, err
		}
		cons, err := toExpr(n.right)
		if err != nil {
			return nil, err
		}
		alt, err := toExpr(n.extra)
		if err != nil {
			return nil, err
		}
		return &ast.ConditionalExpression{Token: n.tok, Test: test, Consequent: cons, Alternate: alt}, nil
	case Infix:
		if n.left == nil || n.right == nil {
			return nil, fmt.Errorf("optable: operator %s missing an operand", n.tok.Literal)
		}
		left, err := toExpr(n.left)
		if err != nil {
			return nil, err
		}
		right, err := toExpr(n.right)
		if err != nil {
			return nil, err
		}
		if n.tok.Type == token.COMMA {
			seq := &ast.SequenceExpression{Token: n.tok}
			if ls, ok := left.(*ast.SequenceExpression); ok {
				seq.Expressions = append(seq.Expressions, ls.Expressions...)
			} else {
				seq.Expressions = append(seq.Expressions, left)
			}
			seq.Expressions = append(seq.Expressions, right)
			return seq, nil
		}
		if n.tok.IsAssignOp() {
			return &ast.AssignmentExpression{Token: n.tok, Op: n.tok.Type, Left: left, Right: right}, nil
		}
		return &ast.BinaryExpression{Token: n.tok, Op: n.tok.Type, Left: left, Right: right}, nil
	}
	return nil, fmt.Errorf("optable: unreachable node shape")
}
