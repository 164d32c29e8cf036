package function_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/fixpoint-explorer/internal/function"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in        string
		want      string
		variable  string
		constants []string
	}{
		{"sin(x)", "sin(z)", "x", nil},
		{"y + c1", "z + c1", "y", []string{"c1"}},
		{"  SIN( X ) ", "sin(z)", "x", nil},
		{"z", "z", "z", nil},
		{"c2*x^2 + c10", "c10 + c2*z^2", "x", []string{"c2", "c10"}},
		{"x*pi", "pi*z", "x", nil},
		{"cos(y)", "cos(z)", "y", nil},
		{"sqrt(x^2)", "(z^2)^(1/2)", "x", nil},
		{"(y/2)^-1", "2/z", "y", nil},
		{"2/x", "2/z", "x", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := function.Canonicalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Expression)
			assert.Equal(t, tt.want, c.Expr.String())
			assert.Equal(t, tt.variable, c.Variable)
			assert.Equal(t, tt.constants, c.Constants)
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{"sin(x)", "y + c1", "x^2 - 2*x + 1", "c1*exp(-y/c2)", "1/(x+c3)", "abs(x) - x"}
	for _, in := range inputs {
		first, err := function.Canonicalize(in)
		require.NoError(t, err, in)
		second, err := function.Canonicalize(first.Expression)
		require.NoError(t, err, first.Expression)
		assert.Equal(t, first.Expression, second.Expression, in)
		assert.Equal(t, "z", second.Variable)
	}
}

func TestCanonicalize_Rejects(t *testing.T) {
	tests := []struct {
		in       string
		sentinel error
		kind     function.Kind
	}{
		{"sin(x", function.ErrSyntax, function.KindSyntax},
		{"sin(x+u))", function.ErrSyntax, function.KindSyntax},
		{"((_o", function.ErrSyntax, function.KindSyntax},
		{"x $ 2", function.ErrSyntax, function.KindSyntax},
		{"", function.ErrSyntax, function.KindSyntax},
		{"x = 1", function.ErrNotExpression, function.KindNotExpression},
		{"x, y", function.ErrNotExpression, function.KindNotExpression},
		{"42", function.ErrVariableCount, function.KindVariableCount},
		{"c1 + 2", function.ErrVariableCount, function.KindVariableCount},
		{"x + y", function.ErrVariableCount, function.KindVariableCount},
		{"x*y*z", function.ErrVariableCount, function.KindVariableCount},
		{"x + a", function.ErrConstantName, function.KindConstantName},
		{"x + c", function.ErrConstantName, function.KindConstantName},
		{"x + cx", function.ErrConstantName, function.KindConstantName},
		{"x + _1", function.ErrConstantName, function.KindConstantName},
		{"x-(-(1/2-0.5))^(-2)", function.ErrUndefined, function.KindUndefined},
		{"(c2-c2)^(-2)+x", function.ErrUndefined, function.KindUndefined},
		{"0/0", function.ErrUndefined, function.KindUndefined},
		{"x*0/0", function.ErrUndefined, function.KindUndefined},
		{"x + 1/(y-y)", function.ErrUndefined, function.KindUndefined},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := function.Canonicalize(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var ve *function.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.kind, ve.Kind)
			assert.Equal(t, tt.in, ve.Input)
			assert.NotEmpty(t, ve.Message)
		})
	}
}

func TestCanonicalize_SquareRootKeepsSign(t *testing.T) {
	c, err := function.Canonicalize("sqrt(x^2)")
	require.NoError(t, err)
	assert.Equal(t, 2.0, c.Expr.Float(map[string]float64{"z": -2}))
	assert.NotEqual(t, "z", c.Expression)

	same, err := function.Canonicalize("(y^2)^(1/2)")
	require.NoError(t, err)
	assert.Equal(t, c.Expression, same.Expression)
}

func TestCanonicalize_NestedNumericPowers(t *testing.T) {
	for _, in := range []string{
		"(((((2^20)^20)^20)^20)^20)*x",
		"((((((2^20)^20)^20)^20)^20)^20)*x",
	} {
		c, err := function.Canonicalize(in)
		require.NoError(t, err, in)
		assert.LessOrEqual(t, len(c.Expression), 256, in)

		again, err := function.Canonicalize(c.Expression)
		require.NoError(t, err)
		assert.Equal(t, c.Expression, again.Expression)
	}
}

func TestCanonicalize_TooLong(t *testing.T) {
	_, err := function.Canonicalize(strings.Repeat("x+", 600) + "x")
	assert.ErrorIs(t, err, function.ErrTooLong)

	// short input, long canonical form: every factor gains an exponent
	factors := make([]string, 0, 201)
	for i := 1; i <= 200; i++ {
		factors = append(factors, fmt.Sprintf("c%d", i))
	}
	in := "(" + strings.Join(append(factors, "x"), "*") + ")^22"
	require.LessOrEqual(t, len(in), function.MaxExpressionLength)
	_, err = function.Canonicalize(in)
	assert.ErrorIs(t, err, function.ErrTooLong)

	var ve *function.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "too_long", ve.Kind.String())
}

func FuzzCanonicalize(f *testing.F) {
	for _, seed := range []string{
		"sin(x)",
		"y + c1",
		"x^2 - 2*x + 1",
		"c1*exp(-y/c2)",
		"1/(x+c3)",
		"sqrt(x^2)",
		"(x/2)^-1",
		"2^600*x",
		"(((((2^20)^20)^20)^20)^20)*x",
		"x-(-(1/2-0.5))^(-2)",
		"(c2-c2)^(-2)+x",
		"0/0",
		"sin(x",
	} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, in string) {
		c, err := function.Canonicalize(in)
		if err != nil {
			var ve *function.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("%q: error is not a *ValidationError: %v", in, err)
			}
			return
		}
		if len(c.Expression) > function.MaxExpressionLength {
			t.Fatalf("%q: canonical form has %d bytes", in, len(c.Expression))
		}
		again, err := function.Canonicalize(c.Expression)
		if err != nil {
			t.Fatalf("%q canonicalized to %q, which is rejected: %v", in, c.Expression, err)
		}
		if again.Expression != c.Expression {
			t.Fatalf("%q: %q canonicalized again to %q", in, c.Expression, again.Expression)
		}
	})
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "syntax", function.KindSyntax.String())
	assert.Equal(t, "undefined", function.KindUndefined.String())
	assert.Equal(t, "duplicate", function.KindDuplicate.String())
	assert.Equal(t, "kind(99)", function.Kind(99).String())
}

func TestConstants(t *testing.T) {
	cs, err := function.Constants("c3*z + c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c3"}, cs)
}
