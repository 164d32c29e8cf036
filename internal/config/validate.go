package config

import (
	"fmt"
	"math"
	"strings"
)

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	// ------------------------------------------------------------
	// SERVER
	// ------------------------------------------------------------

	s := cfg.Server
	if strings.TrimSpace(s.Addr) == "" {
		return fmt.Errorf("server.addr must be set")
	}
	if s.ReadTimeoutMs < 0 || s.WriteTimeoutMs < 0 || s.IdleTimeoutMs < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}
	if s.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive, got %d", s.MaxBodyBytes)
	}
	if s.RateLimit.PerSecond < 0 || s.RateLimit.Burst < 0 {
		return fmt.Errorf("server.rate_limit values must not be negative")
	}
	if s.RateLimit.PerSecond > 0 && s.RateLimit.Burst == 0 {
		return fmt.Errorf("server.rate_limit.burst must be set when per_second is set")
	}

	// ------------------------------------------------------------
	// DATABASE / LOG
	// ------------------------------------------------------------

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return fmt.Errorf("database.dsn must be set")
	}
	if cfg.Log.Level != "" && !logLevels[strings.ToLower(cfg.Log.Level)] {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Log.Level)
	}

	// ------------------------------------------------------------
	// PLOT
	// ------------------------------------------------------------

	p := cfg.Plot
	if !finite(p.Min) || !finite(p.Max) || p.Min >= p.Max {
		return fmt.Errorf("plot range [%v, %v] is invalid", p.Min, p.Max)
	}
	if p.Points < 2 || p.Points > 10000 {
		return fmt.Errorf("plot.points must be in [2, 10000], got %d", p.Points)
	}

	// ------------------------------------------------------------
	// EXPLORE
	// ------------------------------------------------------------

	e := cfg.Explore
	if e.MaxIterations <= 0 {
		return fmt.Errorf("explore.max_iterations must be positive, got %d", e.MaxIterations)
	}
	if !finite(e.Tolerance) || e.Tolerance <= 0 {
		return fmt.Errorf("explore.tolerance must be positive, got %v", e.Tolerance)
	}
	// limits are stored with 20 integer digits
	if !finite(e.DivergenceBound) || e.DivergenceBound <= 0 || e.DivergenceBound >= 1e20 {
		return fmt.Errorf("explore.divergence_bound must be in (0, 1e20), got %v", e.DivergenceBound)
	}

	// ------------------------------------------------------------
	// DEDUP
	// ------------------------------------------------------------

	if cfg.Dedup.ExpectedFunctions == 0 {
		return fmt.Errorf("dedup.expected_functions must be positive")
	}
	if r := cfg.Dedup.FalsePositiveRate; r <= 0 || r >= 1 {
		return fmt.Errorf("dedup.false_positive_rate must be in (0, 1), got %v", r)
	}

	return nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
