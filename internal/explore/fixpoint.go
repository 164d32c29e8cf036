package explore

import (
	"errors"
	"fmt"
	"math"

	"github.com/njchilds90/fixpoint-explorer/internal/symbolic"
)

var ErrNoLimit = errors.New("explore: no limit")

// Options bound a fixed-point iteration.
type Options struct {
	MaxIterations   int
	Tolerance       float64
	DivergenceBound float64
}

func DefaultOptions() Options {
	return Options{MaxIterations: 1000, Tolerance: 1e-12, DivergenceBound: 1e6}
}

// Result describes a converged iteration.
type Result struct {
	Value      float64 `json:"value"`
	Iterations int     `json:"iterations"`
	// Derivative is |f'(Value)|; NaN where f is not differentiable.
	Derivative float64 `json:"-"`
	Attracting bool    `json:"attracting"`
}

// Iterate runs z_{n+1} = f(z_n) from z0 until two iterates are closer than
// opts.Tolerance. Runs that leave the divergence bound, hit an undefined
// value or exhaust opts.MaxIterations fail with ErrNoLimit.
func Iterate(expr symbolic.Expr, env symbolic.Env, z0 float64, opts Options) (Result, error) {
	if opts.MaxIterations <= 0 || opts.Tolerance <= 0 || opts.DivergenceBound <= 0 {
		opts = DefaultOptions()
	}
	local := withVariable(env, z0)
	z := z0
	for i := 1; i <= opts.MaxIterations; i++ {
		local[Variable] = z
		next := expr.Float(local)
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return Result{}, fmt.Errorf("%w: undefined after %d iterations", ErrNoLimit, i)
		}
		if math.Abs(next) > opts.DivergenceBound {
			return Result{}, fmt.Errorf("%w: diverged after %d iterations", ErrNoLimit, i)
		}
		if math.Abs(next-z) < opts.Tolerance {
			local[Variable] = next
			d := math.Abs(symbolic.Diff(expr, Variable).Float(local))
			return Result{Value: next, Iterations: i, Derivative: d, Attracting: d < 1}, nil
		}
		z = next
	}
	return Result{}, fmt.Errorf("%w: no convergence in %d iterations", ErrNoLimit, opts.MaxIterations)
}
