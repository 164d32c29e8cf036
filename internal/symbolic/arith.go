package symbolic

import (
	"sort"
	"strings"
)

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// Simplify flattens nested sums, folds numbers and combines like terms
// (terms equal up to a numeric coefficient). Bare symbols come first in
// natural order, then the remaining terms by printed form, then the number.
func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	numAccum := N(0)
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		if v, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, v)
			continue
		}
		coeff, rest := extractCoefficient(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			coeffs[key] = N(0)
			rests[key] = rest
		}
		coeffs[key] = numAdd(coeffs[key], coeff)
	}
	sort.Slice(order, func(i, j int) bool {
		si, iSym := rests[order[i]].(*Sym)
		sj, jSym := rests[order[j]].(*Sym)
		switch {
		case iSym && jSym:
			return NaturalLess(si.name, sj.name)
		case iSym != jSym:
			return iSym
		}
		return order[i] < order[j]
	})
	result := []Expr{}
	for _, key := range order {
		coeff := coeffs[key]
		if coeff.IsZero() && !DividesByZero(rests[key]) {
			continue
		}
		if coeff.IsOne() {
			result = append(result, rests[key])
		} else {
			result = append(result, MulOf(coeff, rests[key]))
		}
	}
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	var b strings.Builder
	for i, t := range a.terms {
		if i == 0 {
			b.WriteString(t.String())
			continue
		}
		if neg, ok := negated(t); ok {
			b.WriteString(" - ")
			if _, isAdd := neg.(*Add); isAdd {
				b.WriteString("(" + neg.String() + ")")
			} else {
				b.WriteString(neg.String())
			}
			continue
		}
		b.WriteString(" + ")
		b.WriteString(t.String())
	}
	return b.String()
}

// negated returns -t when t carries a negative numeric coefficient.
func negated(t Expr) (Expr, bool) {
	switch v := t.(type) {
	case *Num:
		if v.IsNegative() {
			return numNeg(v), true
		}
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.IsNegative() {
			return MulOf(append([]Expr{numNeg(c)}, v.factors[1:]...)...), true
		}
	}
	return nil, false
}

func (a *Add) LaTeX() string {
	var b strings.Builder
	for i, t := range a.terms {
		if i == 0 {
			b.WriteString(t.LaTeX())
			continue
		}
		if neg, ok := negated(t); ok {
			b.WriteString(" - ")
			if _, isAdd := neg.(*Add); isAdd {
				b.WriteString("\\left(" + neg.LaTeX() + "\\right)")
			} else {
				b.WriteString(neg.LaTeX())
			}
			continue
		}
		b.WriteString(" + ")
		b.WriteString(t.LaTeX())
	}
	return b.String()
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Diff(varName string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(varName)
	}
	return AddOf(dTerms...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Float(env Env) float64 {
	sum := 0.0
	for _, t := range a.terms {
		sum += t.Float(env)
	}
	return sum
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) exprType() string { return "add" }
func (a *Add) toJSON() map[string]interface{} {
	ts := make([]map[string]interface{}, len(a.terms))
	for i, t := range a.terms {
		ts[i] = t.toJSON()
	}
	return map[string]interface{}{"type": "add", "terms": ts}
}

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

// Simplify flattens nested products, folds the numeric coefficient to the
// front and merges powers of a common base (x*x^2 -> x^3).
func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := N(1)
	bases := map[string]Expr{}
	exps := map[string]Expr{}
	order := []string{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			continue
		}
		base, exp := f, Expr(N(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		key := base.String()
		if _, seen := bases[key]; !seen {
			order = append(order, key)
			bases[key] = base
			exps[key] = N(0)
		}
		exps[key] = AddOf(exps[key], exp)
	}
	others := make([]Expr, 0, len(order))
	for _, key := range order {
		f := PowOf(bases[key], exps[key])
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			continue
		}
		others = append(others, f)
	}
	// 0*x is 0 unless another factor divides by zero.
	if coeff.IsZero() && !dividesByZero(others) {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}

	// Precompute sort keys to avoid repeated String() calls in comparator.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.Slice(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	for i := range ks {
		others[i] = ks[i].e
	}

	if coeff.IsOne() {
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

// String prints the coefficient first and factors with a negative integer
// exponent as divisors: 2*x/y^2.
func (m *Mul) String() string {
	coeff, rest := m.split()
	var num, den []string
	for _, f := range rest {
		if p, ok := f.(*Pow); ok {
			if k, ok := p.negIntExp(); ok {
				den = append(den, divisorString(p.base, k))
				continue
			}
		}
		if _, isAdd := f.(*Add); isAdd {
			num = append(num, "("+f.String()+")")
		} else {
			num = append(num, f.String())
		}
	}
	var b strings.Builder
	switch {
	case len(num) == 0:
		b.WriteString(coeff.String())
	case coeff.IsOne():
	case coeff.IsNegOne():
		b.WriteString("-")
	default:
		b.WriteString(coeff.String() + "*")
	}
	b.WriteString(strings.Join(num, "*"))
	for _, d := range den {
		b.WriteString("/" + d)
	}
	return b.String()
}

func (m *Mul) LaTeX() string {
	coeff, rest := m.split()
	var num, den []string
	for _, f := range rest {
		if p, ok := f.(*Pow); ok {
			if k, ok := p.negIntExp(); ok {
				den = append(den, PowOf(p.base, N(k)).LaTeX())
				continue
			}
		}
		if _, isAdd := f.(*Add); isAdd {
			num = append(num, "\\left("+f.LaTeX()+"\\right)")
		} else {
			num = append(num, f.LaTeX())
		}
	}
	sign := ""
	if coeff.IsNegative() {
		sign = "-"
		coeff = numNeg(coeff)
	}
	if !coeff.IsOne() || len(num) == 0 {
		num = append([]string{coeff.LaTeX()}, num...)
	}
	top := strings.Join(num, " ")
	if len(den) == 0 {
		return sign + top
	}
	return sign + "\\frac{" + top + "}{" + strings.Join(den, " ") + "}"
}

func (m *Mul) split() (*Num, []Expr) {
	if c, ok := m.factors[0].(*Num); ok {
		return c, m.factors[1:]
	}
	return N(1), m.factors
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		others := make([]Expr, 0, len(m.factors)-1)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		if len(others) == 0 {
			terms[i] = dfi
		} else {
			terms[i] = MulOf(append([]Expr{dfi}, others...)...)
		}
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Float(env Env) float64 {
	prod := 1.0
	for _, f := range m.factors {
		prod *= f.Float(env)
	}
	return prod
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) exprType() string { return "mul" }
func (m *Mul) toJSON() map[string]interface{} {
	fs := make([]map[string]interface{}, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.toJSON()
	}
	return map[string]interface{}{"type": "mul", "factors": fs}
}

func dividesByZero(factors []Expr) bool {
	for _, f := range factors {
		if p, ok := f.(*Pow); ok && p.dividesByZero() {
			return true
		}
	}
	return false
}

func extractCoefficient(e Expr) (*Num, Expr) {
	if m, ok := e.(*Mul); ok && len(m.factors) >= 2 {
		if coeff, ok2 := m.factors[0].(*Num); ok2 {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return coeff, rest[0]
			}
			return coeff, &Mul{factors: rest}
		}
	}
	return N(1), e
}
