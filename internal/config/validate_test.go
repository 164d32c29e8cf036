package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- tests ----

func TestValidate_Defaults(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = " " }},
		{"negative timeout", func(c *Config) { c.Server.ReadTimeoutMs = -1 }},
		{"zero body", func(c *Config) { c.Server.MaxBodyBytes = 0 }},
		{"rate without burst", func(c *Config) { c.Server.RateLimit = RateLimit{PerSecond: 3} }},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }},
		{"bad level", func(c *Config) { c.Log.Level = "verbose" }},
		{"inverted plot", func(c *Config) { c.Plot.Min, c.Plot.Max = 1, -1 }},
		{"infinite plot", func(c *Config) { c.Plot.Max = math.Inf(1) }},
		{"one point", func(c *Config) { c.Plot.Points = 1 }},
		{"no iterations", func(c *Config) { c.Explore.MaxIterations = 0 }},
		{"zero tolerance", func(c *Config) { c.Explore.Tolerance = 0 }},
		{"huge bound", func(c *Config) { c.Explore.DivergenceBound = 1e21 }},
		{"no expected", func(c *Config) { c.Dedup.ExpectedFunctions = 0 }},
		{"rate one", func(c *Config) { c.Dedup.FalsePositiveRate = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
	assert.Error(t, Validate(nil))
}

func TestValidate_DoesNotMutate(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "DEBUG"
	before := *cfg
	require.NoError(t, Validate(cfg))
	assert.Equal(t, before, *cfg)
}

func TestNormalize(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "WARN"
	cfg.Server.Addr = " :9000 "
	cfg.Server.RateLimit = RateLimit{PerSecond: 0, Burst: 4}
	require.NoError(t, Validate(cfg))
	Normalize(cfg)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 0, cfg.Server.RateLimit.Burst)

	Normalize(nil)
}

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
server:
  addr: "127.0.0.1:9999"
  rate_limit:
    per_second: 1
    burst: 2
database:
  dsn: ":memory:"
plot:
  points: 11
`))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.Equal(t, RateLimit{PerSecond: 1, Burst: 2}, cfg.Server.RateLimit)
	assert.Equal(t, ":memory:", cfg.Database.DSN)
	assert.Equal(t, 11, cfg.Plot.Points)
	assert.Equal(t, -5.0, cfg.Plot.Min)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	require.NoError(t, Validate(cfg))
}

func TestParse_UnknownKey(t *testing.T) {
	_, err := Parse([]byte("server:\n  adress: x\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "explorer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	cfg, err = Load(empty)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
