package symbolic

import (
	"encoding/json"
	"sort"
	"strings"
)

// ============================================================
// Equation and Tuple: parse results that are not expressions
// ============================================================

// Equation is a relation between two expressions: lhs op rhs.
type Equation struct {
	LHS, RHS Expr
	Op       string
}

func (e *Equation) String() string {
	return e.LHS.String() + " " + e.Op + " " + e.RHS.String()
}
func (e *Equation) LaTeX() string { return e.LHS.LaTeX() + " " + e.Op + " " + e.RHS.LaTeX() }

// Residual returns LHS - RHS.
func (e *Equation) Residual() Expr {
	return AddOf(e.LHS, MulOf(N(-1), e.RHS))
}

// Tuple is a comma separated sequence of nodes.
type Tuple struct{ Items []Node }

func (t *Tuple) String() string {
	parts := make([]string, len(t.Items))
	for i, it := range t.Items {
		parts[i] = it.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ============================================================
// Free Symbols
// ============================================================

func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}

// DividesByZero reports whether e raises 0 to a negative power anywhere.
func DividesByZero(e Expr) bool {
	switch v := e.(type) {
	case *Pow:
		return v.dividesByZero() || DividesByZero(v.base) || DividesByZero(v.exp)
	case *Add:
		for _, t := range v.terms {
			if DividesByZero(t) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if DividesByZero(f) {
				return true
			}
		}
	case *Func:
		return DividesByZero(v.arg)
	}
	return false
}

// SortedSymbols returns the free symbol names of e in natural order.
func SortedSymbols(e Expr) []string {
	syms := FreeSymbols(e)
	names := make([]string, 0, len(syms))
	for name := range syms {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return NaturalLess(names[i], names[j]) })
	return names
}

// NaturalLess orders shorter names first, so c2 sorts before c10.
func NaturalLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// ============================================================
// Top-level convenience functions
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

func Diff(expr Expr, varName string) Expr {
	return expr.Diff(varName).Simplify()
}

// ============================================================
// JSON Serialization
// ============================================================

// Tree returns the expression as nested maps, ready for encoding.
func Tree(e Expr) map[string]interface{} { return e.toJSON() }

func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}
