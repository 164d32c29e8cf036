package function

import (
	"math"
	"strconv"
	"strings"

	"github.com/njchilds90/fixpoint-explorer/internal/symbolic"
)

// ParseParams builds an evaluation environment from user supplied constant
// values. Every constant must be present and a finite number.
func ParseParams(constants []string, values map[string]string) (symbolic.Env, error) {
	env := make(symbolic.Env, len(constants))
	for _, name := range constants {
		raw, ok := values[name]
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			return nil, invalid(KindParameter, "", nil, "missing value for %s", name)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, invalid(KindParameter, raw, err, "value for %s is not a finite number", name)
		}
		env[name] = v
	}
	return env, nil
}

// FloatParams is ParseParams for already decoded numbers.
func FloatParams(constants []string, values map[string]float64) (symbolic.Env, error) {
	env := make(symbolic.Env, len(constants))
	for _, name := range constants {
		v, ok := values[name]
		if !ok {
			return nil, invalid(KindParameter, "", nil, "missing value for %s", name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, invalid(KindParameter, "", nil, "value for %s is not a finite number", name)
		}
		env[name] = v
	}
	return env, nil
}
