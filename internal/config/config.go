// Package config loads the explorer's YAML configuration.
package config

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Plot     PlotConfig     `yaml:"plot"`
	Explore  ExploreConfig  `yaml:"explore"`
	Dedup    DedupConfig    `yaml:"dedup"`
}

// ---- SERVER ----

type ServerConfig struct {
	Addr           string    `yaml:"addr"`
	ReadTimeoutMs  int       `yaml:"read_timeout_ms"`
	WriteTimeoutMs int       `yaml:"write_timeout_ms"`
	IdleTimeoutMs  int       `yaml:"idle_timeout_ms"`
	MaxBodyBytes   int64     `yaml:"max_body_bytes"`
	RateLimit      RateLimit `yaml:"rate_limit"`
}

// RateLimit throttles state-changing requests per client address.
type RateLimit struct {
	PerSecond int `yaml:"per_second"`
	Burst     int `yaml:"burst"`
}

// ---- DATABASE ----

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// ---- LOG ----

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// ---- PLOT ----

type PlotConfig struct {
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Points int     `yaml:"points"`
}

// ---- EXPLORE ----

type ExploreConfig struct {
	MaxIterations   int     `yaml:"max_iterations"`
	Tolerance       float64 `yaml:"tolerance"`
	DivergenceBound float64 `yaml:"divergence_bound"`
}

// ---- DEDUP ----

type DedupConfig struct {
	ExpectedFunctions uint    `yaml:"expected_functions"`
	FalsePositiveRate float64 `yaml:"false_positive_rate"`
}

// Default returns the configuration used for every key the file omits.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			ReadTimeoutMs:  15000,
			WriteTimeoutMs: 15000,
			IdleTimeoutMs:  60000,
			MaxBodyBytes:   1 << 20,
			RateLimit:      RateLimit{PerSecond: 5, Burst: 10},
		},
		Database: DatabaseConfig{DSN: "explorer.db"},
		Log:      LogConfig{Level: "info"},
		Plot:     PlotConfig{Min: -5, Max: 5, Points: 201},
		Explore:  ExploreConfig{MaxIterations: 1000, Tolerance: 1e-12, DivergenceBound: 1e6},
		Dedup:    DedupConfig{ExpectedFunctions: 10000, FalsePositiveRate: 0.01},
	}
}
