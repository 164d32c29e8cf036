package symbolic

import (
	"math"
)

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

// maxFoldBits bounds the size of a numeric power folded into a single
// number. Larger powers stay symbolic.
const maxFoldBits = 1024

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	if en, ok := exp.(*Num); ok && en.IsZero() {
		if DividesByZero(base) {
			return &Pow{base: base, exp: exp}
		}
		return N(1)
	}
	if en, ok := exp.(*Num); ok && en.IsOne() {
		return base
	}

	// Handle 0^exp carefully.
	if bn, ok := base.(*Num); ok && bn.IsZero() {
		if en, ok2 := exp.(*Num); ok2 {
			// 0^0 is indeterminate; 0^negative is division by zero.
			if en.IsZero() || en.IsNegative() {
				return &Pow{base: base, exp: exp}
			}
			return N(0)
		}
		return &Pow{base: base, exp: exp}
	}

	if bn, ok := base.(*Num); ok && bn.IsOne() {
		return N(1)
	}
	if bn, ok := base.(*Num); ok {
		if en, ok2 := exp.(*Num); ok2 && en.IsInteger() {
			if bn.IsNegOne() {
				if en.val.Num().Bit(0) == 0 {
					return N(1)
				}
				return N(-1)
			}
			if e, small := en.smallInt(maxFoldBits); small && int64(bn.bitLen())*abs64(e) <= maxFoldBits {
				return numPow(bn, e)
			}
		}
	}

	en, intExp := exp.(*Num)
	intExp = intExp && en.IsInteger()
	// (a^b)^c = a^(b*c) holds for integer c only: sqrt(x^2) is |x|, not x.
	if inner, ok := base.(*Pow); ok && intExp {
		return PowOf(inner.base, MulOf(inner.exp, exp))
	}
	// (a*b)^n = a^n * b^n for integer n.
	if m, ok := base.(*Mul); ok && intExp {
		factors := make([]Expr, len(m.factors))
		for i, f := range m.factors {
			factors[i] = PowOf(f, exp)
		}
		return MulOf(factors...)
	}
	return &Pow{base: base, exp: exp}
}

// dividesByZero reports 0 raised to a negative number.
func (p *Pow) dividesByZero() bool {
	b, ok := p.base.(*Num)
	e, ok2 := p.exp.(*Num)
	return ok && ok2 && b.IsZero() && e.IsNegative()
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// negIntExp reports k when the exponent is the negative integer -k.
func (p *Pow) negIntExp() (int64, bool) {
	en, ok := p.exp.(*Num)
	if !ok || !en.IsNegative() {
		return 0, false
	}
	k, ok := en.smallInt(math.MaxInt64)
	if !ok {
		return 0, false
	}
	return -k, true
}

func (p *Pow) String() string {
	if k, ok := p.negIntExp(); ok {
		return "1/" + divisorString(p.base, k)
	}
	return baseString(p.base) + "^" + expString(p.exp)
}

// divisorString prints base^k as it appears after a '/'.
func divisorString(base Expr, k int64) string {
	if k == 1 {
		return baseString(base)
	}
	return baseString(base) + "^" + N(k).String()
}

func baseString(base Expr) string {
	switch b := base.(type) {
	case *Add, *Mul, *Pow:
		return "(" + b.String() + ")"
	case *Num:
		if b.IsNegative() || !b.IsInteger() {
			return "(" + b.String() + ")"
		}
	}
	return base.String()
}

func expString(exp Expr) string {
	switch e := exp.(type) {
	case *Sym, *Const, *Func:
		return e.String()
	case *Num:
		if e.IsInteger() && !e.IsNegative() {
			return e.String()
		}
	}
	return "(" + exp.String() + ")"
}

func (p *Pow) LaTeX() string {
	baseStr := p.base.LaTeX()
	switch p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	if k, ok := p.negIntExp(); ok {
		den := baseStr
		if k != 1 {
			den = baseStr + "^{" + N(k).LaTeX() + "}"
		}
		return "\\frac{1}{" + den + "}"
	}
	if en, ok := p.exp.(*Num); ok && en.Equal(F(1, 2)) {
		return "\\sqrt{" + p.base.LaTeX() + "}"
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	_, expIsNum := p.exp.(*Num)
	if expIsNum {
		newExp := AddOf(p.exp, N(-1))
		return MulOf(p.exp, PowOf(p.base, newExp), du)
	}
	_, baseIsNum := p.base.(*Num)
	if baseIsNum {
		return MulOf(PowOf(p.base, p.exp), LnOf(p.base), dv)
	}
	logTerm := MulOf(dv, LnOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if ok1 && ok2 {
		return NFloat(math.Pow(b.Float64(), e.Float64()))
	}
	return nil, false
}

func (p *Pow) Float(env Env) float64 {
	return math.Pow(p.base.Float(env), p.exp.Float(env))
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
