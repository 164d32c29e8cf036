// Package explore evaluates stored functions numerically: sampling for
// plots and fixed-point iteration for the limit grid.
package explore

import (
	"errors"
	"fmt"
	"math"

	"github.com/njchilds90/fixpoint-explorer/internal/symbolic"
)

// Variable is the symbol stored functions are written in.
const Variable = "z"

var ErrRange = errors.New("explore: invalid range")

// Range is an evenly spaced grid over the variable, both ends included.
type Range struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Points int     `json:"points"`
}

func (r Range) Validate() error {
	switch {
	case math.IsNaN(r.Min) || math.IsInf(r.Min, 0) || math.IsNaN(r.Max) || math.IsInf(r.Max, 0):
		return fmt.Errorf("%w: bounds must be finite", ErrRange)
	case r.Min >= r.Max:
		return fmt.Errorf("%w: min %v must be below max %v", ErrRange, r.Min, r.Max)
	case r.Points < 2:
		return fmt.Errorf("%w: need at least 2 points, got %d", ErrRange, r.Points)
	}
	return nil
}

// Point is one sample of a function.
type Point struct {
	Z     float64 `json:"z"`
	Value float64 `json:"value"`
}

// Sample evaluates expr over r with the constants bound by env. Points where
// the function is undefined or infinite are skipped.
func Sample(expr symbolic.Expr, env symbolic.Env, r Range) ([]Point, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	local := withVariable(env, 0)
	step := (r.Max - r.Min) / float64(r.Points-1)
	points := make([]Point, 0, r.Points)
	for i := 0; i < r.Points; i++ {
		z := r.Min + float64(i)*step
		if i == r.Points-1 {
			z = r.Max
		}
		local[Variable] = z
		v := expr.Float(local)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		points = append(points, Point{Z: z, Value: v})
	}
	return points, nil
}

func withVariable(env symbolic.Env, z float64) symbolic.Env {
	local := make(symbolic.Env, len(env)+1)
	for k, v := range env {
		local[k] = v
	}
	local[Variable] = z
	return local
}
