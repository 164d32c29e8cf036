package symbolic_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/njchilds90/fixpoint-explorer/internal/symbolic"
)

func TestParseExpr_CanonicalForms(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"sin(x)", "sin(x)"},
		{"y + c1", "y + c1"},
		{"c1 + y", "y + c1"},
		{"x - 3", "x - 3"},
		{"2*x/y", "2*x/y"},
		{"x^-1", "1/x"},
		{"(x+1)^2", "(x + 1)^2"},
		{"sqrt(x)", "x^(1/2)"},
		{"-x^2", "-x^2"},
		{"2**3", "8"},
		{"1.5*x", "3/2*x"},
		{".5*x", "1/2*x"},
		{"exp(ln(x))", "x"},
		{"x*x*x", "x^3"},
		{"x/x", "1"},
		{"x*2*pi", "2*pi*x"},
		{"log(x)", "ln(x)"},
		{"-(x+1)", "-(x + 1)"},
		{"x - (y + 1)", "x - (y + 1)"},
		{"(x^2)^3", "x^6"},
		{"1e2*x", "100*x"},
		{"sqrt(x^2)", "(x^2)^(1/2)"},
		{"(x^2)^(1/2)", "(x^2)^(1/2)"},
		{"(x^(1/2))^2", "x"},
		{"(x/2)^-1", "2/x"},
		{"2/x", "2/x"},
		{"(2*x)^2", "4*x^2"},
		{"1/(x*y)", "1/x/y"},
		{"(-1)^1001*x", "-x"},
		{"3^21", "10460353203"},
		{"2^600", "2^600"},
	}
	for _, tc := range cases {
		e, err := symbolic.ParseExpr(tc.in)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tc.in, err)
			continue
		}
		if got := e.String(); got != tc.want {
			t.Errorf("%q: want %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestParseExpr_PrintedFormIsStable(t *testing.T) {
	inputs := []string{
		"sin(x)^2 + cos(x)^2",
		"x*y - 2/y",
		"c1*z/(z+1)",
		"-1/x",
		"(-2)^x",
		"x - 1/2",
		"x^y*x",
		"2^x*2^y",
		"2*2^x",
		"-x/2",
		"abs(-z) + floor(z/2) - ceil(c1)",
		"tanh(c2*z) + c10",
		"exp(-z^2)",
		"z^(c1 - 1)",
		"sqrt(z^2)",
		"(z/2)^-1",
		"2^600*z/3^700",
		"(((((2^20)^20)^20)^20)^20)*x",
	}
	for _, in := range inputs {
		e, err := symbolic.ParseExpr(in)
		if err != nil {
			t.Errorf("%q: unexpected error %v", in, err)
			continue
		}
		first := e.String()
		again, err := symbolic.ParseExpr(first)
		if err != nil {
			t.Errorf("%q printed as %q which does not parse: %v", in, first, err)
			continue
		}
		if again.String() != first {
			t.Errorf("%q: printed form not stable: %q then %q", in, first, again.String())
		}
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	inputs := []string{
		"sin(x",
		"sin(x+u))",
		"((_o",
		"",
		"   ",
		"2x",
		"x +",
		"x $ 1",
		"foo(x)",
		"sin",
		"atan(x, y)",
		"1e999",
		")",
	}
	for _, in := range inputs {
		_, err := symbolic.Parse(in)
		var se *symbolic.SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("%q: want *SyntaxError, got %v", in, err)
		}
	}
}

func TestParse_UnbalancedMessage(t *testing.T) {
	_, err := symbolic.Parse("sin(x+u))")
	if err == nil || !strings.Contains(err.Error(), "unbalanced parenthesis") {
		t.Errorf("want unbalanced parenthesis error, got %v", err)
	}
}

func TestParse_NestingLimit(t *testing.T) {
	deep := strings.Repeat("(", 500) + "x" + strings.Repeat(")", 500)
	_, err := symbolic.Parse(deep)
	var se *symbolic.SyntaxError
	if !errors.As(err, &se) {
		t.Errorf("want *SyntaxError for deep nesting, got %v", err)
	}
	shallow := strings.Repeat("(", 20) + "x" + strings.Repeat(")", 20)
	if _, err := symbolic.Parse(shallow); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestParse_NonExpressions(t *testing.T) {
	node, err := symbolic.Parse("x = 1")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := node.(*symbolic.Equation); !ok {
		t.Errorf("want *Equation, got %T", node)
	}
	node, err = symbolic.Parse("x, y")
	if err != nil {
		t.Fatal(err)
	}
	if tup, ok := node.(*symbolic.Tuple); !ok || len(tup.Items) != 2 {
		t.Errorf("want 2-tuple, got %v", node)
	}

	for _, in := range []string{"x=1", "x,y", "x<=y", "x != 2"} {
		_, err := symbolic.ParseExpr(in)
		if !errors.Is(err, symbolic.ErrNotExpression) {
			t.Errorf("%q: want ErrNotExpression, got %v", in, err)
		}
	}
}

func TestParseExpr_SquareRootOfSquare(t *testing.T) {
	e, err := symbolic.ParseExpr("sqrt(x^2)")
	if err != nil {
		t.Fatal(err)
	}
	if got := e.Float(symbolic.Env{"x": -2}); got != 2 {
		t.Errorf("sqrt(x^2) at -2: want 2, got %v", got)
	}
	if e.Equal(symbolic.S("x")) {
		t.Error("sqrt(x^2) must not simplify to x")
	}
}

func TestParseExpr_NumericPowersStayBounded(t *testing.T) {
	for _, in := range []string{
		"(((((2^20)^20)^20)^20)^20)*x",
		"((((((2^20)^20)^20)^20)^20)^20)*x",
		"(2*x)^1000",
		"2^(10^30)",
	} {
		e, err := symbolic.ParseExpr(in)
		if err != nil {
			t.Errorf("%q: unexpected error %v", in, err)
			continue
		}
		if n := len(e.String()); n > 256 {
			t.Errorf("%q: printed form has %d bytes", in, n)
		}
	}
}

func TestDividesByZero(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"1/x", false},
		{"0^x", false},
		{"0^2 + x", false},
		{"1/(x-x)", true},
		{"0/0", true},
		{"x*0/0", true},
		{"x + 1/0 - 1/0", true},
		{"x-(-(1/2-0.5))^(-2)", true},
		{"(c2-c2)^(-2)+x", true},
		{"sin(1/(2-2))", true},
		{"(1/0)^0", true},
	}
	for _, tc := range cases {
		e, err := symbolic.ParseExpr(tc.in)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tc.in, err)
			continue
		}
		if got := symbolic.DividesByZero(e); got != tc.want {
			t.Errorf("%q (printed %q): want %v, got %v", tc.in, e.String(), tc.want, got)
		}
	}
}

func TestMul_ZeroKeepsDivisionByZero(t *testing.T) {
	e, err := symbolic.ParseExpr("0/0")
	if err != nil {
		t.Fatal(err)
	}
	if e.String() != "0/0" {
		t.Errorf("want 0/0, got %q", e.String())
	}
	if v := e.Float(nil); v == v {
		t.Errorf("0/0 should evaluate to NaN, got %v", v)
	}
}
