package config

import "strings"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	cfg.Server.Addr = strings.TrimSpace(cfg.Server.Addr)
	cfg.Database.DSN = strings.TrimSpace(cfg.Database.DSN)

	// Zero per_second disables throttling; keep burst consistent with it.
	if cfg.Server.RateLimit.PerSecond == 0 {
		cfg.Server.RateLimit.Burst = 0
	}
}
