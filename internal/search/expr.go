package search

import (
	"context"
	"fmt"
	"strings"
)

// Expression tokens.
const (
	tokOpen  = "("
	tokClose = ")"
	tokTrue  = "--true"
	tokFalse = "--false"
	tokAnd   = "--and"
	tokOr    = "--or"
	tokNot   = "--not"
	tokName  = "--name"
	tokType  = "--type"
	tokRegex = "--regex"
	tokAll   = "--all"
)

type operandKind int

const (
	operandLiteral operandKind = iota
	operandLeaf
	operandGroup
)

// operand is one atom of a sequence: a literal, a leaf test or a
// parenthesised sub-sequence.
type operand struct {
	kind    operandKind
	literal bool
	pred    Predicate
	group   *sequence
}

type operator int

const (
	opNone operator = iota
	opAnd
	opOr
	opNot
)

// sequence is a run of operands evaluated left to right, each overwriting
// the carried result, optionally followed by an operator that applies to
// the carried result and everything after it.
type sequence struct {
	operands []operand
	op       operator
	rest     *sequence
}

func (s *sequence) empty() bool {
	return len(s.operands) == 0 && s.op == opNone
}

// Expr is a parsed expression. It is immutable and safe to evaluate more
// than once.
type Expr struct {
	root *sequence
}

// LeafFunc runs a leaf test and reports whether it produced any match.
type LeafFunc func(ctx context.Context, pred Predicate) (bool, error)

// Parse validates tokens and builds the expression tree. Every predicate is
// constructed here, so a bad regex or type mask fails before any I/O.
func Parse(tokens []string) (*Expr, error) {
	if len(tokens) == 0 {
		return nil, ErrEmptyExpression
	}
	p := &parser{tokens: tokens}
	root, err := p.sequence(false)
	if err != nil {
		return nil, err
	}
	if root.empty() {
		return nil, ErrEmptyExpression
	}
	return &Expr{root: root}, nil
}

type parser struct {
	tokens []string
	pos    int
}

// sequence parses until the end of input or, inside a group, until the
// closing paren, which is left for the caller to consume.
func (p *parser) sequence(inGroup bool) (*sequence, error) {
	s := &sequence{}
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]
		switch tok {
		case tokClose:
			if !inGroup {
				return nil, fmt.Errorf("%w (token %d)", ErrStrayParen, p.pos+1)
			}
			return s, nil

		case tokOpen:
			start := p.pos
			p.pos++
			inner, err := p.sequence(true)
			if err != nil {
				return nil, err
			}
			if p.pos >= len(p.tokens) {
				return nil, fmt.Errorf("%w (opened at token %d)", ErrUnmatchedParen, start+1)
			}
			p.pos++
			if inner.empty() {
				return nil, fmt.Errorf("%w (token %d)", ErrEmptyGroup, start+1)
			}
			s.operands = append(s.operands, operand{kind: operandGroup, group: inner})

		case tokTrue, tokFalse:
			p.pos++
			s.operands = append(s.operands, operand{kind: operandLiteral, literal: tok == tokTrue})

		case tokAnd, tokOr, tokNot:
			p.pos++
			rest, err := p.sequence(inGroup)
			if err != nil {
				return nil, err
			}
			if rest.empty() {
				return nil, fmt.Errorf("%w after %s", ErrMissingOperand, tok)
			}
			s.op = operatorOf(tok)
			s.rest = rest
			return s, nil

		case tokAll:
			p.pos++
			s.operands = append(s.operands, operand{kind: operandLeaf, pred: AllTest()})

		case tokName, tokType, tokRegex:
			if p.pos+1 >= len(p.tokens) {
				return nil, fmt.Errorf("%w after %s", ErrMissingOperand, tok)
			}
			pred, err := newPredicate(tok, p.tokens[p.pos+1])
			if err != nil {
				return nil, err
			}
			p.pos += 2
			s.operands = append(s.operands, operand{kind: operandLeaf, pred: pred})

		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownToken, tok)
		}
	}
	return s, nil
}

func operatorOf(tok string) operator {
	switch tok {
	case tokAnd:
		return opAnd
	case tokOr:
		return opOr
	default:
		return opNot
	}
}

func newPredicate(tok, value string) (Predicate, error) {
	switch tok {
	case tokName:
		return NameTest(value), nil
	case tokType:
		return TypeTest(value)
	default:
		return RegexTest(value)
	}
}

// Eval evaluates the expression, calling leaf for every leaf test reached.
// Operators short-circuit: the right-hand side of a decided --and/--or is
// never evaluated.
func (e *Expr) Eval(ctx context.Context, leaf LeafFunc) (bool, error) {
	return e.root.eval(ctx, leaf)
}

func (s *sequence) eval(ctx context.Context, leaf LeafFunc) (bool, error) {
	carried := false
	for _, o := range s.operands {
		v, err := o.eval(ctx, leaf)
		if err != nil {
			return false, err
		}
		carried = v
	}

	switch s.op {
	case opAnd:
		if !carried {
			return false, nil
		}
		return s.rest.eval(ctx, leaf)
	case opOr:
		if carried {
			return true, nil
		}
		return s.rest.eval(ctx, leaf)
	case opNot:
		v, err := s.rest.eval(ctx, leaf)
		if err != nil {
			return false, err
		}
		return !v, nil
	default:
		return carried, nil
	}
}

func (o operand) eval(ctx context.Context, leaf LeafFunc) (bool, error) {
	switch o.kind {
	case operandLiteral:
		return o.literal, nil
	case operandLeaf:
		return leaf(ctx, o.pred)
	default:
		return o.group.eval(ctx, leaf)
	}
}

// Leaves returns every leaf test in the order it appears.
func (e *Expr) Leaves() []Predicate {
	var out []Predicate
	var visit func(s *sequence)
	visit = func(s *sequence) {
		for _, o := range s.operands {
			switch o.kind {
			case operandLeaf:
				out = append(out, o.pred)
			case operandGroup:
				visit(o.group)
			}
		}
		if s.rest != nil {
			visit(s.rest)
		}
	}
	visit(e.root)
	return out
}

// String renders the tree with the scope of every operator made explicit,
// e.g. "--name a --and { --not { --type d } }".
func (e *Expr) String() string {
	var sb strings.Builder
	e.root.write(&sb)
	return sb.String()
}

func (s *sequence) write(sb *strings.Builder) {
	for i, o := range s.operands {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch o.kind {
		case operandLiteral:
			if o.literal {
				sb.WriteString(tokTrue)
			} else {
				sb.WriteString(tokFalse)
			}
		case operandLeaf:
			sb.WriteString(o.pred.String())
		case operandGroup:
			sb.WriteString("( ")
			o.group.write(sb)
			sb.WriteString(" )")
		}
	}
	if s.op == opNone {
		return
	}
	if len(s.operands) > 0 {
		sb.WriteByte(' ')
	}
	switch s.op {
	case opAnd:
		sb.WriteString(tokAnd)
	case opOr:
		sb.WriteString(tokOr)
	case opNot:
		sb.WriteString(tokNot)
	}
	sb.WriteString(" { ")
	s.rest.write(sb)
	sb.WriteString(" }")
}
