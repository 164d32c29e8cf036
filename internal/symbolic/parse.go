package symbolic

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// ============================================================
// Parser
// ============================================================

// ErrNotExpression is returned by ParseExpr when the input parses to an
// equation, relation or tuple.
var ErrNotExpression = errors.New("not an expression")

// SyntaxError reports malformed input at a byte offset.
type SyntaxError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

const (
	maxDepth    = 200
	maxExponent = 400
)

var relations = map[string]bool{"=": true, "==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true}

type parser struct {
	src   string
	toks  []token
	pos   int
	depth int
}

// Parse reads src into a Node. Sums, products, powers (^ or **), unary
// signs, parentheses, decimal numbers, symbols, pi and the builtin
// functions are expressions; a top-level relation yields an *Equation and
// a top-level comma list yields a *Tuple.
func Parse(src string) (Node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	if p.peek().kind == tokEOF {
		return nil, p.errorf(p.peek(), "empty expression")
	}
	node, err := p.list()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		if t.text == ")" {
			return nil, p.errorf(t, "unbalanced parenthesis")
		}
		return nil, p.errorf(t, "unexpected %s", t)
	}
	return node, nil
}

// ParseExpr is Parse restricted to expressions.
func ParseExpr(src string) (Expr, error) {
	node, err := Parse(src)
	if err != nil {
		return nil, err
	}
	e, ok := node.(Expr)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotExpression, node.String())
	}
	return e, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) accept(op string) bool {
	if t := p.peek(); t.kind == tokOp && t.text == op {
		p.pos++
		return true
	}
	return false
}

func (p *parser) errorf(t token, format string, args ...interface{}) error {
	return &SyntaxError{Input: p.src, Pos: t.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) list() (Node, error) {
	first, err := p.relation()
	if err != nil {
		return nil, err
	}
	if !p.accept(",") {
		return first, nil
	}
	items := []Node{first}
	for {
		n, err := p.relation()
		if err != nil {
			return nil, err
		}
		items = append(items, n)
		if !p.accept(",") {
			return &Tuple{Items: items}, nil
		}
	}
}

func (p *parser) relation() (Node, error) {
	lhs, err := p.sum()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	if t.kind != tokOp || !relations[t.text] {
		return lhs, nil
	}
	p.next()
	rhs, err := p.sum()
	if err != nil {
		return nil, err
	}
	return &Equation{LHS: lhs, RHS: rhs, Op: t.text}, nil
}

func (p *parser) sum() (Expr, error) {
	left, err := p.product()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept("+"):
			right, err := p.product()
			if err != nil {
				return nil, err
			}
			left = AddOf(left, right)
		case p.accept("-"):
			right, err := p.product()
			if err != nil {
				return nil, err
			}
			left = AddOf(left, MulOf(N(-1), right))
		default:
			return left, nil
		}
	}
}

func (p *parser) product() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept("*"):
			right, err := p.unary()
			if err != nil {
				return nil, err
			}
			left = MulOf(left, right)
		case p.accept("/"):
			right, err := p.unary()
			if err != nil {
				return nil, err
			}
			left = MulOf(left, PowOf(right, N(-1)))
		default:
			return left, nil
		}
	}
}

func (p *parser) unary() (Expr, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		return nil, p.errorf(p.peek(), "expression nested too deeply")
	}
	switch {
	case p.accept("-"):
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return MulOf(N(-1), operand), nil
	case p.accept("+"):
		return p.unary()
	}
	return p.power()
}

func (p *parser) power() (Expr, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.accept("^") || p.accept("**") {
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil
	}
	return base, nil
}

func (p *parser) primary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return parseNumber(t, p)
	case tokIdent:
		if p.accept("(") {
			build, ok := builtins[t.text]
			if !ok {
				return nil, p.errorf(t, "unknown function %q", t.text)
			}
			arg, err := p.sum()
			if err != nil {
				return nil, err
			}
			if p.peek().text == "," {
				return nil, p.errorf(p.peek(), "%s takes exactly one argument", t.text)
			}
			if !p.accept(")") {
				return nil, p.errorf(p.peek(), "unbalanced parenthesis: expected \")\" to close %s(", t.text)
			}
			return build(arg), nil
		}
		if _, ok := builtins[t.text]; ok {
			return nil, p.errorf(t, "function %s needs an argument", t.text)
		}
		if _, ok := constants[t.text]; ok {
			return &Const{name: t.text}, nil
		}
		return S(t.text), nil
	case tokOp:
		if t.text == "(" {
			inner, err := p.sum()
			if err != nil {
				return nil, err
			}
			if !p.accept(")") {
				return nil, p.errorf(p.peek(), "unbalanced parenthesis: expected \")\"")
			}
			return inner, nil
		}
		if t.text == ")" {
			return nil, p.errorf(t, "unbalanced parenthesis")
		}
	case tokEOF:
		return nil, p.errorf(t, "unexpected end of input")
	}
	return nil, p.errorf(t, "unexpected %s", t)
}

func parseNumber(t token, p *parser) (Expr, error) {
	text := normalizeNumber(t.text)
	if i := strings.IndexAny(text, "eE"); i >= 0 {
		if e, err := strconv.Atoi(text[i+1:]); err != nil || e > maxExponent || e < -maxExponent {
			return nil, p.errorf(t, "number %q out of range", t.text)
		}
	}
	r, ok := new(big.Rat).SetString(text)
	if !ok {
		return nil, p.errorf(t, "invalid number %q", t.text)
	}
	return &Num{val: r}, nil
}

// normalizeNumber turns ".5" and "5." into forms big.Rat accepts.
func normalizeNumber(s string) string {
	mant, exp := s, ""
	for i := 0; i < len(s); i++ {
		if s[i] == 'e' || s[i] == 'E' {
			mant, exp = s[:i], s[i:]
			break
		}
	}
	if len(mant) > 0 && mant[0] == '.' {
		mant = "0" + mant
	}
	if len(mant) > 0 && mant[len(mant)-1] == '.' {
		mant = mant[:len(mant)-1]
	}
	return mant + exp
}
