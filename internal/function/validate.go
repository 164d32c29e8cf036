// Package function turns user input into canonical, storable functions of
// one variable and manages their lifecycle.
package function

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/njchilds90/fixpoint-explorer/internal/symbolic"
)

// Variable is the symbol every stored function is written in.
const Variable = "z"

// MaxExpressionLength bounds both the normalized input and the canonical
// string, matching the width of the expression column.
const MaxExpressionLength = 1024

var (
	variables    = map[string]bool{"x": true, "y": true, "z": true}
	constantName = regexp.MustCompile(`^c[0-9]+$`)
)

// Canonical is a validated function in canonical form.
type Canonical struct {
	Expr       symbolic.Expr
	Expression string
	// Variable is the name the input used for its variable.
	Variable  string
	Constants []string
}

// Canonicalize validates raw and rewrites it in the canonical variable.
// Rejections are *ValidationError. It has no side effects; duplicate
// detection happens in Service.Create.
func Canonicalize(raw string) (Canonical, error) {
	cleaned := normalizeInput(raw)
	if len(cleaned) > MaxExpressionLength {
		return Canonical{}, invalid(KindTooLong, "", nil,
			"input is longer than %d characters", MaxExpressionLength)
	}

	expr, err := symbolic.ParseExpr(cleaned)
	if err != nil {
		var se *symbolic.SyntaxError
		switch {
		case errors.As(err, &se):
			return Canonical{}, invalid(KindSyntax, raw, err, "invalid syntax at offset %d: %s", se.Pos, se.Msg)
		case errors.Is(err, symbolic.ErrNotExpression):
			return Canonical{}, invalid(KindNotExpression, raw, err, "input is not a single expression")
		}
		return Canonical{}, invalid(KindSyntax, raw, err, "cannot parse input")
	}
	if symbolic.DividesByZero(expr) {
		return Canonical{}, invalid(KindUndefined, raw, nil, "expression divides by zero")
	}

	var vars, consts []string
	for _, name := range symbolic.SortedSymbols(expr) {
		switch {
		case variables[name]:
			vars = append(vars, name)
		case constantName.MatchString(name):
			consts = append(consts, name)
		default:
			return Canonical{}, invalid(KindConstantName, raw, nil,
				"symbol %s is neither a variable (x, y, z) nor a constant c<digits>", name)
		}
	}
	if len(vars) != 1 {
		return Canonical{}, invalid(KindVariableCount, raw, nil,
			"expected exactly one of x, y, z, found %d", len(vars))
	}

	canonical := symbolic.Sub(expr, vars[0], symbolic.S(Variable))
	expression := canonical.String()
	if len(expression) > MaxExpressionLength {
		return Canonical{}, invalid(KindTooLong, raw, nil,
			"canonical form is longer than %d characters", MaxExpressionLength)
	}
	return Canonical{
		Expr:       canonical,
		Expression: expression,
		Variable:   vars[0],
		Constants:  consts,
	}, nil
}

// Constants returns the constant names of a stored canonical expression.
func Constants(expression string) ([]string, error) {
	c, err := Canonicalize(expression)
	if err != nil {
		return nil, err
	}
	return c.Constants, nil
}

func normalizeInput(raw string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, raw)
}
